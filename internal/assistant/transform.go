package assistant

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// draftsFromPayload maps the decoded transactions array into drafts.
// Mapping is deliberately lenient: element values pass through as-is and
// are rejected later, during validation and resolution. Only the
// top-level shape is enforced by the extractor.
func draftsFromPayload(items []interface{}) []domain.Draft {
	drafts := make([]domain.Draft, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			// Not an object at all; keep a zero draft so the committer
			// reports it instead of dropping it silently.
			drafts = append(drafts, domain.Draft{})
			continue
		}
		drafts = append(drafts, domain.Draft{
			Amount:       amountField(obj, "amount"),
			Description:  stringField(obj, "description"),
			TypeName:     stringField(obj, "type"),
			CategoryName: stringField(obj, "category"),
		})
	}
	return drafts
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// amountField accepts a JSON number, or a numeric string since models
// sometimes quote amounts. Anything else becomes zero and fails draft
// validation downstream.
func amountField(m map[string]interface{}, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// stripCodeFence removes Markdown fence wrappers the model may add
// despite instructions, then trims to the outermost JSON object.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
