// Package assistant implements the natural-language transaction
// pipeline: free text goes to the completion service, the structured
// reply becomes drafts, and drafts are resolved and committed to the
// ledger. The clarification path defers to the user instead of guessing.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Response is the caller-facing outcome of the whole pipeline: a flag
// and a single natural-language message, nothing structured.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Canned messages, kept deliberately generic at this boundary.
const (
	msgAuthRequired  = "You must be signed in to use the assistant."
	msgNotUnderstood = "Sorry, I could not understand that."
	msgInternalError = "An error occurred while processing your request."
)

// Assistant orchestrates extract → commit for one user action.
type Assistant struct {
	extractor *Extractor
	committer *Committer
	runs      RunRecorder // optional audit trail
	log       zerolog.Logger

	// OnCommit, when set, is called after a batch that persisted at
	// least one transaction. It is the hook for cache invalidation and
	// export publishing and must not block.
	OnCommit func(userID string, transactionIDs []string)
}

// New assembles the pipeline. runs may be nil to skip audit recording.
func New(extractor *Extractor, committer *Committer, runs RunRecorder, log zerolog.Logger) *Assistant {
	return &Assistant{extractor: extractor, committer: committer, runs: runs, log: log}
}

// HandlePrompt runs one prompt through the pipeline. It never returns
// an error: every outcome is folded into a Response, and an unidentified
// user short-circuits before any model call.
func (a *Assistant) HandlePrompt(ctx context.Context, userID, promptText string) Response {
	if userID == "" {
		return Response{Success: false, Message: msgAuthRequired}
	}

	runID := a.startRun(ctx, userID, promptText)

	extraction, err := a.extractor.Extract(ctx, userID, promptText)
	if err != nil {
		a.finishRun(ctx, runID, rawOf(err), err)
		a.log.Error().Err(err).Msg("Extraction failed")
		return Response{Success: false, Message: msgNotUnderstood}
	}
	a.recordOutput(ctx, runID, extraction.Raw)

	if extraction.NeedsClarification() {
		a.finishRun(ctx, runID, "", nil)
		return Response{Success: false, Message: extraction.Clarification}
	}

	result, err := a.committer.Commit(ctx, userID, extraction.Drafts, CommitOptions{})
	if err != nil {
		a.finishRun(ctx, runID, "", err)
		a.log.Error().Err(err).Msg("Commit failed")
		return Response{Success: false, Message: msgInternalError}
	}

	if failed := result.Failed(); len(failed) > 0 {
		a.finishRun(ctx, runID, "", failed[0].Err)
		a.notifyCommit(userID, result)
		return Response{
			Success: false,
			Message: fmt.Sprintf("Added %d of %d transactions; %d failed.",
				result.Committed, len(result.Results), len(failed)),
		}
	}

	a.finishRun(ctx, runID, "", nil)
	a.notifyCommit(userID, result)
	return Response{
		Success: true,
		Message: fmt.Sprintf("Successfully added %d transactions!", result.Committed),
	}
}

func (a *Assistant) notifyCommit(userID string, result *CommitResult) {
	if a.OnCommit == nil || result.Committed == 0 {
		return
	}
	ids := make([]string, 0, result.Committed)
	for _, res := range result.Results {
		if res.Err == nil {
			ids = append(ids, res.TransactionID)
		}
	}
	a.OnCommit(userID, ids)
}

// Run recording is best-effort: a broken audit trail must never fail
// the user-visible pipeline.

func (a *Assistant) startRun(ctx context.Context, userID, promptText string) string {
	if a.runs == nil {
		return ""
	}
	runID, err := a.runs.StartExtractionRun(ctx, userID, promptText)
	if err != nil {
		a.log.Warn().Err(err).Msg("Could not start extraction run")
		return ""
	}
	return runID
}

func (a *Assistant) recordOutput(ctx context.Context, runID, raw string) {
	if a.runs == nil || runID == "" || raw == "" {
		return
	}
	if err := a.runs.RecordModelOutput(ctx, runID, raw); err != nil {
		a.log.Warn().Err(err).Msg("Could not record model output")
	}
}

func (a *Assistant) finishRun(ctx context.Context, runID, raw string, runErr error) {
	if a.runs == nil || runID == "" {
		return
	}
	if raw != "" {
		a.recordOutput(ctx, runID, raw)
	}
	if runErr != nil {
		a.runs.MarkExtractionRunFailed(ctx, runID, runErr)
		return
	}
	if err := a.runs.MarkExtractionRunSucceeded(ctx, runID); err != nil {
		a.log.Warn().Err(err).Msg("Could not mark extraction run succeeded")
	}
}

func rawOf(err error) string {
	var xerr *ExtractionError
	if errors.As(err, &xerr) {
		return xerr.Raw
	}
	return ""
}
