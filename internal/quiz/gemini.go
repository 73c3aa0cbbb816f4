package quiz

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// GeminiBackend calls the Gemini API. A client is created per call because
// the key may change between calls.
type GeminiBackend struct{}

// GenerateJSON asks model for an application/json response to prompt.
func (GeminiBackend) GenerateJSON(ctx context.Context, apiKey, model, prompt string) (string, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return "", err
	}
	resp, err := cli.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
