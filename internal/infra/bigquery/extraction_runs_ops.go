package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/titorm/shop-wise-sub000/internal/logger"
)

const (
	extractorType    = "GEMINI_STRUCTURED"
	maxErrorMsgBytes = 2000
)

// StartExtractionRunWithClient inserts a run with status=RUNNING and returns its run_id.
func StartExtractionRunWithClient(ctx context.Context, client *bigquery.Client, datasetID, documentID, modelName string) (string, error) {
	runID := uuid.NewString()

	q := client.Query(fmt.Sprintf(`
		INSERT %s (
			run_id,
			document_id,
			started_ts,
			extractor_type,
			model_name,
			status
		)
		VALUES (
			@run_id,
			@document_id,
			@started_ts,
			@extractor_type,
			@model_name,
			@status
		)
	`, tableRef(client, datasetID, extractionRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "document_id", Value: documentID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "extractor_type", Value: extractorType},
		{Name: "model_name", Value: modelName},
		{Name: "status", Value: RunStatusRunning},
	}

	if err := runDML(ctx, q); err != nil {
		return "", fmt.Errorf("StartExtractionRun: %w", err)
	}
	return runID, nil
}

// MarkExtractionRunFailedWithClient sets status=FAILED, finished_ts and
// error_message. Failures are logged, never returned: the run error is what
// the caller reports.
func MarkExtractionRunFailedWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorMsgBytes {
			errMsg = errMsg[:maxErrorMsgBytes]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, tableRef(client, datasetID, extractionRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := runDML(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkExtractionRunFailed: update failed")
	}
}

// MarkExtractionRunSucceededWithClient sets status=SUCCESS, finished_ts and the run metrics.
func MarkExtractionRunSucceededWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string, res RunResult) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    tokens_input = @tokens_input,
		    tokens_output = @tokens_output,
		    product_count = @product_count
		WHERE run_id = @run_id
	`, tableRef(client, datasetID, extractionRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "tokens_input", Value: res.TokensInput},
		{Name: "tokens_output", Value: res.TokensOutput},
		{Name: "product_count", Value: res.ProductCount},
		{Name: "run_id", Value: runID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("MarkExtractionRunSucceeded: %w", err)
	}
	return nil
}
