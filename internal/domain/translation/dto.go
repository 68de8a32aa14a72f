// internal/domain/translation/dto.go
package translation

import "encoding/json"

type LoadResponse struct {
	Lang         string          `json:"lang"`
	Translations json.RawMessage `json:"translations"`
}

type SaveNewRequest struct {
	Lang         string          `json:"lang"`
	Translations json.RawMessage `json:"translations"`
}

type SaveRequest struct {
	Page    string `json:"page"`
	Section string `json:"section"`
	Key     string `json:"key"`
	EnValue string `json:"enValue"`
	ThValue string `json:"thValue"`
}

func (r SaveRequest) Path() Path {
	return Path{Page: r.Page, Section: r.Section, Key: r.Key}
}

// DiffResponse lists keys present in one locale but missing from the other.
type DiffResponse struct {
	MissingInEN []string `json:"missingInEn"`
	MissingInTH []string `json:"missingInTh"`
	InSync      bool     `json:"inSync"`
}
