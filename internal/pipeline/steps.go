package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	infra "github.com/titorm/shop-wise-sub000/internal/infra/bigquery"
	"github.com/titorm/shop-wise-sub000/internal/logger"
	"github.com/titorm/shop-wise-sub000/internal/storage"
	"github.com/titorm/shop-wise-sub000/internal/unify"
)

// PipelineStep represents a single step of a receipt import.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	HouseholdID string
	Channel     extraction.Channel
	GCSURI      string
	Document    extraction.Document

	DocumentID string
	RunID      string
	Result     *extraction.Result
	Items      []domain.UnifiedLineItem
}

// sourceURI is what identifies the receipt in the audit trail.
func (s *PipelineState) sourceURI() string {
	if s.GCSURI != "" {
		return s.GCSURI
	}
	return s.Document.URL
}

// Step 1: CreateDocumentStep records the receipt document. Inline uploads
// already recorded with the same checksum reuse the existing document.
type CreateDocumentStep struct {
	Audit AuditRepository
}

func (s *CreateDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	checksum := ""
	if len(state.Document.Data) > 0 {
		sum := sha256.Sum256(state.Document.Data)
		checksum = hex.EncodeToString(sum[:])

		existing, err := s.Audit.FindDocumentByChecksum(ctx, checksum)
		if err != nil {
			return fmt.Errorf("CreateDocumentStep: find by checksum: %w", err)
		}
		if existing != nil {
			log.Info().Str("document_id", existing.DocumentID).Msg("Receipt already recorded, reusing document")
			state.DocumentID = existing.DocumentID
			return nil
		}
	}

	row := &infra.ReceiptDocumentRow{
		DocumentID:     uuid.NewString(),
		HouseholdID:    state.HouseholdID,
		SourceURI:      state.sourceURI(),
		Channel:        string(state.Channel),
		UploadTS:       time.Now(),
		FileMimeType:   state.Document.MIMEType,
		ChecksumSHA256: checksum,
		Metadata:       bigquery.NullJSON{Valid: false},
	}
	if state.GCSURI != "" {
		row.OriginalFilename = storage.ExtractFilenameFromGCSURI(state.GCSURI)
	}

	if err := s.Audit.InsertDocument(ctx, row); err != nil {
		return fmt.Errorf("CreateDocumentStep: inserting row: %w", err)
	}
	state.DocumentID = row.DocumentID
	return nil
}

// Step 2: StartRunStep starts an extraction run (status=RUNNING).
type StartRunStep struct {
	Audit     AuditRepository
	ModelName string
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	runID, err := s.Audit.StartExtractionRun(ctx, state.DocumentID, s.ModelName)
	if err != nil {
		return fmt.Errorf("StartRunStep: %w", err)
	}
	state.RunID = runID
	return nil
}

// Step 3: FetchDocumentStep downloads the receipt when it lives in GCS.
type FetchDocumentStep struct {
	Audit   AuditRepository
	Storage StorageService
}

func (s *FetchDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.GCSURI == "" || len(state.Document.Data) > 0 {
		return nil
	}
	if s.Storage == nil {
		err := fmt.Errorf("FetchDocumentStep: no storage configured for %s", state.GCSURI)
		s.Audit.MarkExtractionRunFailed(ctx, state.RunID, err)
		return err
	}

	data, err := s.Storage.FetchFromGCS(ctx, state.GCSURI)
	if err != nil {
		s.Audit.MarkExtractionRunFailed(ctx, state.RunID, err)
		return fmt.Errorf("FetchDocumentStep: %w", err)
	}
	state.Document.Data = data
	if state.Document.MIMEType == "" {
		state.Document.MIMEType = storage.ContentTypeFor(state.GCSURI)
	}
	return nil
}

// Step 4: ExtractStep calls the extractor.
type ExtractStep struct {
	Audit     AuditRepository
	Extractor extraction.Extractor
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := s.Extractor.Extract(ctx, state.Channel, state.Document)
	if err != nil {
		s.Audit.MarkExtractionRunFailed(ctx, state.RunID, err)
		return err
	}
	state.Result = res
	return nil
}

// Step 5: StoreModelOutputStep stores the raw model output in model_outputs.
type StoreModelOutputStep struct {
	Audit AuditRepository
}

func (s *StoreModelOutputStep) Execute(ctx context.Context, state *PipelineState) error {
	row := &infra.ModelOutputRow{
		OutputID:   uuid.NewString(),
		RunID:      state.RunID,
		DocumentID: state.DocumentID,
		ModelName:  state.Result.Usage.Model,
		CreatedTS:  time.Now(),
	}
	if state.Result.Raw != nil {
		b, err := json.Marshal(state.Result.Raw)
		if err != nil {
			s.Audit.MarkExtractionRunFailed(ctx, state.RunID, err)
			return fmt.Errorf("StoreModelOutputStep: marshal raw output: %w", err)
		}
		row.RawJSON = bigquery.NullJSON{JSONVal: string(b), Valid: true}
	}
	if state.Result.RawText != "" {
		row.RawText = bigquery.NullString{StringVal: state.Result.RawText, Valid: true}
	}

	if err := s.Audit.InsertModelOutput(ctx, row); err != nil {
		s.Audit.MarkExtractionRunFailed(ctx, state.RunID, err)
		return fmt.Errorf("StoreModelOutputStep: %w", err)
	}
	return nil
}

// Step 6: UnifyStep merges duplicate barcodes into the draft item list.
type UnifyStep struct{}

func (s *UnifyStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Items = unify.LineItems(state.Result.Products)
	return nil
}

// Step 7: MarkSuccessStep marks the extraction run as SUCCESS.
type MarkSuccessStep struct {
	Audit AuditRepository
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	res := infra.RunResult{
		TokensInput:  int64(state.Result.Usage.PromptTokens),
		TokensOutput: int64(state.Result.Usage.OutputTokens),
		ProductCount: int64(len(state.Result.Products)),
	}
	if err := s.Audit.MarkExtractionRunSucceeded(ctx, state.RunID, res); err != nil {
		return fmt.Errorf("MarkSuccessStep: %w", err)
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before step %d: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Draft is the unified, not yet persisted result of an import.
type Draft struct {
	DocumentID string                   `json:"documentId,omitempty"`
	RunID      string                   `json:"runId,omitempty"`
	Channel    extraction.Channel       `json:"channel"`
	Store      *domain.StoreInfo        `json:"store,omitempty"`
	Date       *civil.Date              `json:"date,omitempty"`
	Items      []domain.UnifiedLineItem `json:"items"`
}
