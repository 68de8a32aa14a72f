// internal/service/translation/translation.go
package translation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"visrec-admin/internal/domain/translation"
	xerrors "visrec-admin/internal/pkg/errors"
	"visrec-admin/internal/repository/locale"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	msgInvalidLanguage  = `Invalid language. Must be "en" or "th"`
	msgInvalidObject    = "Invalid translations object"
	msgMissingFields    = "Missing required fields: page, section, key"
	msgSaveFailed       = "Failed to save translation"
	msgSavedTranslation = "Translation saved successfully"
)

type TranslationService struct {
	// mu serializes writers so concurrent saves never interleave their
	// read-modify-write of the locale files.
	mu sync.Mutex

	store         *locale.FileStore
	defaultLocale string
	logger        *zap.Logger
}

func NewTranslationService(store *locale.FileStore, defaultLocale string, logger *zap.Logger) *TranslationService {
	return &TranslationService{
		store:         store,
		defaultLocale: normalizeLocale(defaultLocale),
		logger:        logger,
	}
}

// normalizeLocale reduces a configured tag such as "th-TH" to its base
// language; anything unsupported falls back to en.
func normalizeLocale(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return translation.LangEN
	}
	base, _ := t.Base()
	if !translation.IsSupported(base.String()) {
		return translation.LangEN
	}
	return base.String()
}

// ResolveLang validates an explicit language. An empty one means the
// configured default, never a guess from the request.
func (s *TranslationService) ResolveLang(requested string) (string, error) {
	if requested == "" {
		return s.defaultLocale, nil
	}
	if !translation.IsSupported(requested) {
		return "", xerrors.Validation(msgInvalidLanguage)
	}
	return requested, nil
}

// Load returns the locale document for lang as stored.
func (s *TranslationService) Load(ctx context.Context, lang string) (*translation.LoadResponse, error) {
	if !translation.IsSupported(lang) {
		return nil, xerrors.Validation(msgInvalidLanguage)
	}

	doc, err := s.store.Read(lang)
	if err != nil {
		s.logger.Error("error reading translation file", zap.String("lang", lang), zap.Error(err))
		return nil, xerrors.IO(fmt.Sprintf("Failed to read %s.json: %s", lang, err.Error()), err)
	}

	return &translation.LoadResponse{
		Lang:         lang,
		Translations: doc.Raw(),
	}, nil
}

// SaveNew replaces a whole locale document.
func (s *TranslationService) SaveNew(ctx context.Context, req *translation.SaveNewRequest) (string, error) {
	if !translation.IsSupported(req.Lang) {
		return "", xerrors.Validation(msgInvalidLanguage)
	}

	doc, err := translation.ParseDocument(req.Translations)
	if err != nil {
		return "", xerrors.Validation(msgInvalidObject)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Write(req.Lang, doc); err != nil {
		s.logger.Error("error saving translation file", zap.String("lang", req.Lang), zap.Error(err))
		return "", xerrors.IO(fmt.Sprintf("Failed to save translations: %s", err.Error()), err)
	}

	s.logger.Info("locale replaced", zap.String("lang", req.Lang))
	return fmt.Sprintf("Successfully saved %s.json", req.Lang), nil
}

// Save sets one key in both locales and writes both files.
func (s *TranslationService) Save(ctx context.Context, req *translation.SaveRequest) (string, error) {
	path := req.Path()
	if !path.Valid() {
		return "", xerrors.Validation(msgMissingFields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	en, err := s.store.Read(translation.LangEN)
	if err != nil {
		return "", s.saveFailed(path, err)
	}
	th, err := s.store.Read(translation.LangTH)
	if err != nil {
		return "", s.saveFailed(path, err)
	}

	if err := en.SetLeaf(path, req.EnValue); err != nil {
		return "", s.saveFailed(path, err)
	}
	if err := th.SetLeaf(path, req.ThValue); err != nil {
		return "", s.saveFailed(path, err)
	}

	err = s.store.WriteAll(
		locale.File{Lang: translation.LangEN, Doc: en},
		locale.File{Lang: translation.LangTH, Doc: th},
	)
	if err != nil {
		return "", s.saveFailed(path, err)
	}

	s.logger.Info("translation saved", zap.String("path", path.String()))
	return msgSavedTranslation, nil
}

// Diff reports keys that exist in one locale but not the other.
func (s *TranslationService) Diff(ctx context.Context) (*translation.DiffResponse, error) {
	en, err := s.store.Read(translation.LangEN)
	if err != nil {
		return nil, xerrors.IO(fmt.Sprintf("Failed to read en.json: %s", err.Error()), err)
	}
	th, err := s.store.Read(translation.LangTH)
	if err != nil {
		return nil, xerrors.IO(fmt.Sprintf("Failed to read th.json: %s", err.Error()), err)
	}

	resp := &translation.DiffResponse{
		MissingInTH: en.MissingKeys(th),
		MissingInEN: th.MissingKeys(en),
	}
	resp.InSync = len(resp.MissingInTH) == 0 && len(resp.MissingInEN) == 0
	return resp, nil
}

func (s *TranslationService) saveFailed(path translation.Path, err error) error {
	s.logger.Error("error saving translation", zap.String("path", path.String()), zap.Error(err))
	var categorized *xerrors.Error
	if errors.As(err, &categorized) {
		return err
	}
	return xerrors.IO(msgSaveFailed, err)
}
