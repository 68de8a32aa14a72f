// internal/domain/draft/dto.go
package draft

type GenerateRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

// EffectivePrompt prefixes the task with its context when one is given.
func (r GenerateRequest) EffectivePrompt() string {
	if r.Context == "" {
		return r.Prompt
	}
	return "Context: " + r.Context + "\n\nTask: " + r.Prompt
}
