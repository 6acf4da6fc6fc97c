package pipeline

import (
	"context"

	"github.com/titorm/shop-wise-sub000/internal/extraction"
	infra "github.com/titorm/shop-wise-sub000/internal/infra/bigquery"
)

type mockAudit struct {
	InsertDocumentFunc             func(ctx context.Context, row *infra.ReceiptDocumentRow) error
	FindDocumentByChecksumFunc     func(ctx context.Context, checksum string) (*infra.ReceiptDocumentRow, error)
	StartExtractionRunFunc         func(ctx context.Context, documentID, modelName string) (string, error)
	MarkExtractionRunSucceededFunc func(ctx context.Context, runID string, res infra.RunResult) error
	InsertModelOutputFunc          func(ctx context.Context, row *infra.ModelOutputRow) error

	documents []*infra.ReceiptDocumentRow
	outputs   []*infra.ModelOutputRow
	failed    []string
	succeeded []infra.RunResult
}

func (m *mockAudit) InsertDocument(ctx context.Context, row *infra.ReceiptDocumentRow) error {
	if m.InsertDocumentFunc != nil {
		return m.InsertDocumentFunc(ctx, row)
	}
	m.documents = append(m.documents, row)
	return nil
}

func (m *mockAudit) FindDocumentByChecksum(ctx context.Context, checksum string) (*infra.ReceiptDocumentRow, error) {
	if m.FindDocumentByChecksumFunc != nil {
		return m.FindDocumentByChecksumFunc(ctx, checksum)
	}
	return nil, nil
}

func (m *mockAudit) StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error) {
	if m.StartExtractionRunFunc != nil {
		return m.StartExtractionRunFunc(ctx, documentID, modelName)
	}
	return "run-1", nil
}

func (m *mockAudit) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	m.failed = append(m.failed, runID)
}

func (m *mockAudit) MarkExtractionRunSucceeded(ctx context.Context, runID string, res infra.RunResult) error {
	if m.MarkExtractionRunSucceededFunc != nil {
		return m.MarkExtractionRunSucceededFunc(ctx, runID, res)
	}
	m.succeeded = append(m.succeeded, res)
	return nil
}

func (m *mockAudit) InsertModelOutput(ctx context.Context, row *infra.ModelOutputRow) error {
	if m.InsertModelOutputFunc != nil {
		return m.InsertModelOutputFunc(ctx, row)
	}
	m.outputs = append(m.outputs, row)
	return nil
}

type mockStorage struct {
	FetchFromGCSFunc func(ctx context.Context, gcsURI string) ([]byte, error)
}

func (m *mockStorage) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if m.FetchFromGCSFunc != nil {
		return m.FetchFromGCSFunc(ctx, gcsURI)
	}
	return []byte("%PDF-1.4"), nil
}

type mockExtractor struct {
	ExtractFunc func(ctx context.Context, c extraction.Channel, doc extraction.Document) (*extraction.Result, error)
	lastDoc     extraction.Document
}

func (m *mockExtractor) Extract(ctx context.Context, c extraction.Channel, doc extraction.Document) (*extraction.Result, error) {
	m.lastDoc = doc
	return m.ExtractFunc(ctx, c, doc)
}
