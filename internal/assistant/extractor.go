package assistant

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// Extraction is the outcome of one model round-trip: either drafts
// (possibly zero of them) or a clarification question deferring back to
// the user. Raw keeps the model reply for the audit trail.
type Extraction struct {
	Drafts        []domain.Draft
	Clarification string
	Raw           string
}

// NeedsClarification reports whether the model deferred to the user
// instead of structuring the request.
func (e *Extraction) NeedsClarification() bool {
	return e.Clarification != ""
}

// Extractor turns free text into transaction drafts via the completion
// service. It performs no persistence and no reference resolution.
type Extractor struct {
	model      TextModel
	categories CategorySource
	log        zerolog.Logger
}

// NewExtractor wires a text model and a category source. categories may
// be nil; the prompt then falls back to the built-in closed set.
func NewExtractor(model TextModel, categories CategorySource, log zerolog.Logger) *Extractor {
	return &Extractor{model: model, categories: categories, log: log}
}

// Extract sends the user's text through the fixed instruction template
// and schema-validates the reply. Failures return *ExtractionError.
func (x *Extractor) Extract(ctx context.Context, userID, promptText string) (*Extraction, error) {
	prompt := buildExtractionPrompt(x.categoryNames(ctx, userID), promptText)

	raw, err := x.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, &ExtractionError{Reason: "model call failed", Err: err}
	}

	clean := stripCodeFence(raw)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, &ExtractionError{Reason: "reply is not valid JSON", Raw: raw, Err: err}
	}

	if q, ok := payload["clarification_question"].(string); ok && q != "" {
		return &Extraction{Clarification: q, Raw: raw}, nil
	}

	items, ok := payload["transactions"].([]interface{})
	if !ok {
		return nil, &ExtractionError{Reason: "reply has neither transactions nor clarification_question", Raw: raw}
	}

	// An empty array is a valid answer meaning "nothing to record".
	return &Extraction{Drafts: draftsFromPayload(items), Raw: raw}, nil
}

func (x *Extractor) categoryNames(ctx context.Context, userID string) []string {
	if x.categories == nil {
		return nil
	}
	names, err := x.categories.ListCategoryNames(ctx, userID)
	if err != nil {
		x.log.Warn().Err(err).Msg("Falling back to built-in category set")
		return nil
	}
	return names
}
