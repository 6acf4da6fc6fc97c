// Package pipeline imports a receipt: it records the document, runs the
// extractor, keeps the raw model output for audit and unifies the product
// lines into a draft. It never writes purchase data, so an abandoned import
// needs no cleanup.
package pipeline

import (
	"context"
	"errors"

	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// ImportRequest describes one receipt to import. Exactly one of GCSURI,
// Document.Data or Document.URL identifies the source.
type ImportRequest struct {
	HouseholdID string
	Channel     extraction.Channel
	GCSURI      string
	Document    extraction.Document
}

// Importer runs the import pipeline.
type Importer struct {
	extractor extraction.Extractor
	storage   StorageService
	audit     AuditRepository
	modelName string
}

// NewImporter wires an Importer. storage may be nil when no bucket is
// configured; audit may be nil to disable the audit trail.
func NewImporter(extractor extraction.Extractor, storage StorageService, audit AuditRepository, modelName string) *Importer {
	if audit == nil {
		audit = NopAuditRepository{}
	}
	return &Importer{extractor: extractor, storage: storage, audit: audit, modelName: modelName}
}

func (imp *Importer) pipeline() *Pipeline {
	return NewPipeline(
		&CreateDocumentStep{Audit: imp.audit},
		&StartRunStep{Audit: imp.audit, ModelName: imp.modelName},
		&FetchDocumentStep{Audit: imp.audit, Storage: imp.storage},
		&ExtractStep{Audit: imp.audit, Extractor: imp.extractor},
		&StoreModelOutputStep{Audit: imp.audit},
		&UnifyStep{},
		&MarkSuccessStep{Audit: imp.audit},
	)
}

// Import runs the pipeline and returns the unified draft.
func (imp *Importer) Import(ctx context.Context, req ImportRequest) (*Draft, error) {
	if !req.Channel.Valid() {
		return nil, &extraction.ExtractionError{Channel: req.Channel, Reason: extraction.ReasonUnknownChannel}
	}
	if req.GCSURI == "" && len(req.Document.Data) == 0 && req.Document.URL == "" {
		return nil, errors.New("Import: no receipt source given")
	}

	ctx = logger.WithContext(ctx, logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"household_id": req.HouseholdID,
		"channel":      string(req.Channel),
	}))
	log := logger.FromContext(ctx)

	state := &PipelineState{
		HouseholdID: req.HouseholdID,
		Channel:     req.Channel,
		GCSURI:      req.GCSURI,
		Document:    req.Document,
	}

	if err := imp.pipeline().Execute(ctx, state); err != nil {
		log.Error().Err(err).Str("document_id", state.DocumentID).Msg("Receipt import failed")
		return nil, err
	}

	log.Info().
		Str("document_id", state.DocumentID).
		Int("raw_products", len(state.Result.Products)).
		Int("items", len(state.Items)).
		Msg("Receipt imported")

	return &Draft{
		DocumentID: state.DocumentID,
		RunID:      state.RunID,
		Channel:    state.Channel,
		Store:      state.Result.Store,
		Date:       state.Result.Date,
		Items:      state.Items,
	}, nil
}
