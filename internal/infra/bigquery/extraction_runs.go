package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
)

// Extraction runs are written with query INSERT/UPDATE rather than the
// streaming inserter. Streamed rows sit in the streaming buffer and
// cannot be updated, and a run's status changes after it is created.

type ExtractionRunRow struct {
	RunID       string                 `bigquery:"run_id"`      // REQUIRED
	UserID      string                 `bigquery:"user_id"`     // REQUIRED
	PromptText  string                 `bigquery:"prompt_text"` // REQUIRED, the user's request verbatim
	Status      string                 `bigquery:"status"`      // REQUIRED: running, failed, succeeded
	Error       bigquery.NullString    `bigquery:"error"`       // NULLABLE
	StartedTS   time.Time              `bigquery:"started_ts"`  // REQUIRED
	CompletedTS bigquery.NullTimestamp `bigquery:"completed_ts"`
}

type ModelOutputRow struct {
	OutputID  string    `bigquery:"output_id"` // REQUIRED
	RunID     string    `bigquery:"run_id"`    // REQUIRED
	RawText   string    `bigquery:"raw_text"`  // REQUIRED, the model reply verbatim
	CreatedTS time.Time `bigquery:"created_ts"`
}

const maxRunErrorLen = 2000

// StartExtractionRun records that an extraction attempt began and
// returns the run ID used to tie the model output and outcome to it.
func (r *Repository) StartExtractionRun(ctx context.Context, userID, promptText string) (string, error) {
	runID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (run_id, user_id, prompt_text, status, started_ts)
		VALUES (@run_id, @user_id, @prompt_text, 'running', CURRENT_TIMESTAMP())
	`, r.qualified(extractionRunsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "user_id", Value: userID},
		{Name: "prompt_text", Value: promptText},
	}

	if err := r.runDML(ctx, q); err != nil {
		return "", fmt.Errorf("StartExtractionRun: %w", err)
	}
	return runID, nil
}

// RecordModelOutput stores the raw model reply for a run. Outputs are
// append-only, so the streaming inserter is fine here.
func (r *Repository) RecordModelOutput(ctx context.Context, runID, raw string) error {
	row := &ModelOutputRow{
		OutputID:  uuid.NewString(),
		RunID:     runID,
		RawText:   raw,
		CreatedTS: time.Now().UTC(),
	}
	if err := r.table(modelOutputsTable).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("RecordModelOutput: inserting row: %w", err)
	}
	return nil
}

// MarkExtractionRunFailed sets the terminal failed state with a
// truncated error message. Best-effort: failures are logged, never
// returned, so the audit trail cannot break the pipeline.
func (r *Repository) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	errMsg := runErr.Error()
	if len(errMsg) > maxRunErrorLen {
		errMsg = errMsg[:maxRunErrorLen]
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = 'failed',
		    error = @error,
		    completed_ts = CURRENT_TIMESTAMP()
		WHERE run_id = @run_id
	`, r.qualified(extractionRunsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "error", Value: errMsg},
	}

	if err := r.runDML(ctx, q); err != nil {
		r.log.Warn().Err(err).Str("run_id", runID).Msg("Could not mark extraction run failed")
	}
}

// MarkExtractionRunSucceeded sets the terminal succeeded state.
func (r *Repository) MarkExtractionRunSucceeded(ctx context.Context, runID string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = 'succeeded',
		    completed_ts = CURRENT_TIMESTAMP()
		WHERE run_id = @run_id
	`, r.qualified(extractionRunsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	if err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("MarkExtractionRunSucceeded: %w", err)
	}
	return nil
}

func (r *Repository) runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if status.Err() != nil {
		return fmt.Errorf("job: %w", status.Err())
	}
	return nil
}
