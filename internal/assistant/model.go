package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

// GeminiModel implements TextModel against the Gemini API. The API key
// is taken from the environment (GEMINI_API_KEY / GOOGLE_API_KEY) by the
// genai client.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini-backed text model.
func NewGeminiModel(ctx context.Context) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiModel: create genai client: %w", err)
	}
	return &GeminiModel{client: client, model: DefaultModelName}, nil
}

// GenerateText sends one prompt and returns the raw reply text. The call
// blocks until the model answers or the context is done; no retry here.
func (m *GeminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenerateText: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GenerateText: empty response from model")
	}
	return text, nil
}
