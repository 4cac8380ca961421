package assistant

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned before any model call when no user is
// identified.
var ErrAuthRequired = errors.New("authentication required")

// ErrAccountNotFound is returned when the acting user owns no account,
// or the explicitly selected account does not belong to them.
var ErrAccountNotFound = errors.New("account not found")

// ExtractionError means the model reply could not be turned into drafts:
// the upstream call failed, the reply was not valid JSON, or the JSON
// carried neither a transactions array nor a clarification question.
type ExtractionError struct {
	Reason string
	Raw    string // model reply as received, for the audit trail
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// LookupError means a symbolic name from a draft did not resolve against
// the store. Kind is "category" or "type".
type LookupError struct {
	Kind string
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}
