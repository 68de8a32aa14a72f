// internal/repository/locale/file_store.go
package locale

import (
	"fmt"
	"os"
	"path/filepath"

	"visrec-admin/internal/domain/translation"

	"github.com/spf13/afero"
)

// File is one locale document to persist.
type File struct {
	Lang string
	Doc  translation.Document
}

// FileStore keeps one <lang>.json file per language under dir.
type FileStore struct {
	fs     afero.Fs
	dir    string
	atomic bool
}

func NewFileStore(fs afero.Fs, dir string, atomic bool) *FileStore {
	return &FileStore{fs: fs, dir: dir, atomic: atomic}
}

func (s *FileStore) path(lang string) string {
	return filepath.Join(s.dir, lang+".json")
}

// Read loads and parses the locale file for lang.
func (s *FileStore) Read(lang string) (translation.Document, error) {
	data, err := afero.ReadFile(s.fs, s.path(lang))
	if err != nil {
		return translation.Document{}, err
	}
	return translation.ParseDocument(data)
}

// Write replaces the locale file for lang.
func (s *FileStore) Write(lang string, doc translation.Document) error {
	return s.WriteAll(File{Lang: lang, Doc: doc})
}

// WriteAll persists every file. In atomic mode all files are written to temp
// files and synced before any is renamed into place, so a failed write leaves
// every locale untouched. Otherwise files are overwritten one after another.
func (s *FileStore) WriteAll(files ...File) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create locales dir: %w", err)
	}

	if !s.atomic {
		for _, f := range files {
			if err := afero.WriteFile(s.fs, s.path(f.Lang), f.Doc.Bytes(), 0o644); err != nil {
				return err
			}
		}
		return nil
	}

	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range temps {
			_ = s.fs.Remove(t)
		}
	}

	for _, f := range files {
		tmp, err := s.writeTemp(f)
		if err != nil {
			cleanup()
			return err
		}
		temps = append(temps, tmp)
	}

	for i, f := range files {
		if err := s.fs.Rename(temps[i], s.path(f.Lang)); err != nil {
			cleanup()
			return fmt.Errorf("rename %s.json: %w", f.Lang, err)
		}
	}
	return nil
}

func (s *FileStore) writeTemp(f File) (string, error) {
	tmp, err := afero.TempFile(s.fs, s.dir, "."+f.Lang+".json.tmp-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	if _, err := tmp.Write(f.Doc.Bytes()); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(name)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(name)
		return "", err
	}
	if err := s.fs.Chmod(name, 0o644); err != nil && !os.IsNotExist(err) {
		_ = s.fs.Remove(name)
		return "", err
	}
	return name, nil
}
