package pipeline

import (
	"context"

	infra "github.com/titorm/shop-wise-sub000/internal/infra/bigquery"
)

// StorageService fetches uploaded receipt files.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// AuditRepository records documents, extraction runs and raw model outputs.
// *infra.BigQueryAuditRepository implements it.
type AuditRepository interface {
	InsertDocument(ctx context.Context, row *infra.ReceiptDocumentRow) error
	FindDocumentByChecksum(ctx context.Context, checksum string) (*infra.ReceiptDocumentRow, error)
	StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error)
	MarkExtractionRunFailed(ctx context.Context, runID string, runErr error)
	MarkExtractionRunSucceeded(ctx context.Context, runID string, res infra.RunResult) error
	InsertModelOutput(ctx context.Context, row *infra.ModelOutputRow) error
}

// NopAuditRepository discards every record. Used when no audit dataset is configured.
type NopAuditRepository struct{}

func (NopAuditRepository) InsertDocument(ctx context.Context, row *infra.ReceiptDocumentRow) error {
	return nil
}

func (NopAuditRepository) FindDocumentByChecksum(ctx context.Context, checksum string) (*infra.ReceiptDocumentRow, error) {
	return nil, nil
}

func (NopAuditRepository) StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error) {
	return "", nil
}

func (NopAuditRepository) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {}

func (NopAuditRepository) MarkExtractionRunSucceeded(ctx context.Context, runID string, res infra.RunResult) error {
	return nil
}

func (NopAuditRepository) InsertModelOutput(ctx context.Context, row *infra.ModelOutputRow) error {
	return nil
}
