package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestExtractor(model TextModel, categories CategorySource) *Extractor {
	return NewExtractor(model, categories, zerolog.Nop())
}

func TestExtractSingleDraft(t *testing.T) {
	model := &stubModel{
		reply: `{"transactions":[{"amount":500,"description":"salary","type":"credit","category":"Salary"}]}`,
	}
	x := newTestExtractor(model, newFakeStore())

	got, err := x.Extract(context.Background(), "user-1", "I got 500 salary")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.NeedsClarification() {
		t.Fatalf("unexpected clarification: %q", got.Clarification)
	}
	if len(got.Drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(got.Drafts))
	}

	draft := got.Drafts[0]
	if !draft.Amount.Equal(dec("500")) {
		t.Errorf("amount = %s, want 500", draft.Amount)
	}
	if draft.TypeName != "credit" {
		t.Errorf("type = %q, want credit", draft.TypeName)
	}
	if draft.Description != "salary" || draft.CategoryName != "Salary" {
		t.Errorf("unexpected draft: %+v", draft)
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	model := &stubModel{
		reply: "```json\n{\"transactions\":[{\"amount\":12.5,\"description\":\"bus\",\"type\":\"debit\",\"category\":\"Transport\"}]}\n```",
	}
	x := newTestExtractor(model, nil)

	got, err := x.Extract(context.Background(), "user-1", "spent 12.50 on the bus")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got.Drafts) != 1 || !got.Drafts[0].Amount.Equal(dec("12.5")) {
		t.Fatalf("unexpected drafts: %+v", got.Drafts)
	}
}

func TestExtractClarification(t *testing.T) {
	model := &stubModel{reply: `{"clarification_question":"How much did you spend?"}`}
	x := newTestExtractor(model, nil)

	got, err := x.Extract(context.Background(), "user-1", "I bought stuff")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !got.NeedsClarification() || got.Clarification != "How much did you spend?" {
		t.Fatalf("unexpected extraction: %+v", got)
	}
}

func TestExtractEmptyTransactionsArray(t *testing.T) {
	model := &stubModel{reply: `{"transactions":[]}`}
	x := newTestExtractor(model, nil)

	got, err := x.Extract(context.Background(), "user-1", "nothing happened")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.NeedsClarification() || len(got.Drafts) != 0 {
		t.Fatalf("want zero drafts and no clarification, got %+v", got)
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *stubModel
	}{
		{"non-JSON reply", &stubModel{reply: "I cannot help with that."}},
		{"missing recognized keys", &stubModel{reply: `{"answer":42}`}},
		{"transactions not an array", &stubModel{reply: `{"transactions":"none"}`}},
		{"model call fails", &stubModel{err: errors.New("upstream unavailable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTestExtractor(tt.model, nil)
			_, err := x.Extract(context.Background(), "user-1", "whatever")
			var xerr *ExtractionError
			if !errors.As(err, &xerr) {
				t.Fatalf("want *ExtractionError, got %v", err)
			}
		})
	}
}

func TestExtractLenientElementValues(t *testing.T) {
	// Element-level garbage passes through for the committer to reject;
	// only the top-level shape is enforced here.
	model := &stubModel{
		reply: `{"transactions":[{"amount":"abc","description":7,"type":"refund","category":"Lottery"}]}`,
	}
	x := newTestExtractor(model, nil)

	got, err := x.Extract(context.Background(), "user-1", "text")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got.Drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(got.Drafts))
	}
	draft := got.Drafts[0]
	if !draft.Amount.IsZero() || draft.Description != "" || draft.TypeName != "refund" {
		t.Errorf("unexpected pass-through draft: %+v", draft)
	}
}

func TestExtractPromptCarriesCategoriesAndText(t *testing.T) {
	model := &stubModel{reply: `{"transactions":[]}`}
	x := newTestExtractor(model, newFakeStore())

	if _, err := x.Extract(context.Background(), "user-1", "I spent 500 on groceries"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, `User's request: "I spent 500 on groceries"`) {
		t.Errorf("prompt does not embed the user text verbatim:\n%s", prompt)
	}
	// user-1 sees global categories but not user-2's private one.
	if !strings.Contains(prompt, "Salary") || strings.Contains(prompt, "Hobby") {
		t.Errorf("prompt category set wrong:\n%s", prompt)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure, here you go:\n{\"a\":1}\nHope that helps!", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
