// Package bigquery records the extraction audit trail: uploaded receipt
// documents, extraction runs, and raw model outputs.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// DefaultDatasetID is used when no dataset is configured.
const DefaultDatasetID = "shopwise_audit"

const (
	documentsTable      = "receipt_documents"
	extractionRunsTable = "extraction_runs"
	modelOutputsTable   = "model_outputs"
)

// BigQueryAuditRepository holds a shared BigQuery client to avoid creating a
// new connection for each operation.
type BigQueryAuditRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewBigQueryAuditRepository creates a repository writing to datasetID in projectID.
func NewBigQueryAuditRepository(ctx context.Context, projectID, datasetID string) (*BigQueryAuditRepository, error) {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryAuditRepository: creating client: %w", err)
	}
	return &BigQueryAuditRepository{client: client, datasetID: datasetID}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryAuditRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *BigQueryAuditRepository) InsertDocument(ctx context.Context, row *ReceiptDocumentRow) error {
	return InsertDocumentWithClient(ctx, r.client, r.datasetID, row)
}

func (r *BigQueryAuditRepository) FindDocumentByChecksum(ctx context.Context, checksum string) (*ReceiptDocumentRow, error) {
	return FindDocumentByChecksumWithClient(ctx, r.client, r.datasetID, checksum)
}

func (r *BigQueryAuditRepository) StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error) {
	return StartExtractionRunWithClient(ctx, r.client, r.datasetID, documentID, modelName)
}

func (r *BigQueryAuditRepository) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	MarkExtractionRunFailedWithClient(ctx, r.client, r.datasetID, runID, runErr)
}

func (r *BigQueryAuditRepository) MarkExtractionRunSucceeded(ctx context.Context, runID string, res RunResult) error {
	return MarkExtractionRunSucceededWithClient(ctx, r.client, r.datasetID, runID, res)
}

func (r *BigQueryAuditRepository) InsertModelOutput(ctx context.Context, row *ModelOutputRow) error {
	return InsertModelOutputWithClient(ctx, r.client, r.datasetID, row)
}

// tableRef renders a fully qualified, backquoted table name.
func tableRef(client *bigquery.Client, datasetID, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), datasetID, table)
}

// runDML runs a parameterized statement and waits for it to finish.
func runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
