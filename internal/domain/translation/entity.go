// internal/domain/translation/entity.go
package translation

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Supported language codes, one locale file each.
const (
	LangEN = "en"
	LangTH = "th"
)

var SupportedLanguages = []string{LangEN, LangTH}

func IsSupported(lang string) bool {
	return lang == LangEN || lang == LangTH
}

var ErrNotObject = errors.New("locale document is not a JSON object")

// Path addresses one translation string: page -> section -> key.
type Path struct {
	Page    string
	Section string
	Key     string
}

func (p Path) Valid() bool {
	return p.Page != "" && p.Section != "" && p.Key != ""
}

func (p Path) String() string {
	return p.Page + "." + p.Section + "." + p.Key
}

// Document is one locale file. It keeps the raw JSON so key order and any
// values this service does not touch survive a rewrite unchanged.
type Document struct {
	raw []byte
}

// ParseDocument accepts any JSON object.
func ParseDocument(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return Document{}, errors.New("invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return Document{}, ErrNotObject
	}
	return Document{raw: append([]byte(nil), data...)}, nil
}

// Raw returns the document as stored.
func (d Document) Raw() json.RawMessage {
	if len(d.raw) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(d.raw)
}

var prettyOptions = &pretty.Options{
	Width:  0, // arrays are never collapsed onto one line
	Indent: "  ",
}

// Bytes returns the document with 2-space indentation.
func (d Document) Bytes() []byte {
	return pretty.PrettyOptions(d.Raw(), prettyOptions)
}

// Get returns the string at p.
func (d Document) Get(p Path) (string, bool) {
	r := gjson.GetBytes(d.Raw(), pathOf(p.Page, p.Section, p.Key))
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// SetLeaf sets p to value. Missing page or section objects are created, and
// one holding a non-object value is replaced by an empty object first.
func (d *Document) SetLeaf(p Path, value string) error {
	raw := []byte(d.Raw())

	var err error
	for _, parent := range []string{pathOf(p.Page), pathOf(p.Page, p.Section)} {
		if gjson.GetBytes(raw, parent).IsObject() {
			continue
		}
		raw, err = sjson.SetRawBytes(raw, parent, []byte("{}"))
		if err != nil {
			return err
		}
	}

	encoded, err := encodeString(value)
	if err != nil {
		return err
	}
	raw, err = sjson.SetRawBytes(raw, pathOf(p.Page, p.Section, p.Key), encoded)
	if err != nil {
		return err
	}

	d.raw = raw
	return nil
}

// LeafPaths lists the dotted path of every non-object value, sorted.
func (d Document) LeafPaths() []string {
	var out []string
	var walk func(prefix string, r gjson.Result)
	walk = func(prefix string, r gjson.Result) {
		r.ForEach(func(k, v gjson.Result) bool {
			path := k.String()
			if prefix != "" {
				path = prefix + "." + path
			}
			if v.IsObject() {
				walk(path, v)
			} else {
				out = append(out, path)
			}
			return true
		})
	}
	walk("", gjson.ParseBytes(d.Raw()))
	sort.Strings(out)
	return out
}

// MissingKeys returns the leaf paths present in d but absent from other.
func (d Document) MissingKeys(other Document) []string {
	have := make(map[string]struct{})
	for _, p := range other.LeafPaths() {
		have[p] = struct{}{}
	}

	missing := []string{}
	for _, p := range d.LeafPaths() {
		if _, ok := have[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// encodeString quotes value as JSON without HTML escaping.
func encodeString(value string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func pathOf(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = escapeComponent(p)
	}
	return strings.Join(escaped, ".")
}

// escapeComponent backslash-escapes every character that has a meaning in
// gjson/sjson paths so the key is matched literally.
func escapeComponent(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !isPlainKeyRune(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isPlainKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == ' ':
		return true
	case r > 0x7f:
		return true
	}
	return false
}
