// Package app wires configuration into the concrete stores and services
// shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/titorm/shop-wise-sub000/internal/catalog"
	"github.com/titorm/shop-wise-sub000/internal/config"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	infraBQ "github.com/titorm/shop-wise-sub000/internal/infra/bigquery"
	infraFS "github.com/titorm/shop-wise-sub000/internal/infra/firestore"
	"github.com/titorm/shop-wise-sub000/internal/infra/memory"
	"github.com/titorm/shop-wise-sub000/internal/pipeline"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
	"github.com/titorm/shop-wise-sub000/internal/storage"
	"github.com/titorm/shop-wise-sub000/internal/suggest"
)

// App holds every wired service. Optional services are nil when their
// configuration is missing.
type App struct {
	Taxonomy  *extraction.Taxonomy
	Extractor extraction.Extractor
	Suggester suggest.Suggester
	Importer  *pipeline.Importer
	Purchases *purchase.Service
	Storage   *storage.GCSStore

	closers []func() error
}

// New builds an App from cfg. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Taxonomy: extraction.DefaultTaxonomy()}

	if err := a.wireStores(ctx, cfg, log); err != nil {
		a.Close()
		return nil, err
	}

	genaiClient, err := extraction.NewGenAIClient(ctx, cfg.GeminiAPIKey, cfg.ProjectID)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini client unavailable, extraction and suggestions are disabled")
	} else {
		a.Extractor = extraction.NewGeminiExtractor(genaiClient.Models, cfg.ModelName, a.Taxonomy)
		a.Suggester = suggest.NewGeminiSuggester(genaiClient.Models, cfg.ModelName)
	}

	if cfg.Bucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.Bucket)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		a.Storage = gcs
		a.closers = append(a.closers, gcs.Close)
	} else {
		log.Warn().Msg("No GCS bucket configured - receipt uploads are disabled")
	}

	var audit pipeline.AuditRepository
	if cfg.AuditEnabled() {
		repo, err := infraBQ.NewBigQueryAuditRepository(ctx, cfg.ProjectID, cfg.AuditDataset)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		audit = repo
		a.closers = append(a.closers, repo.Close)
	}

	if a.Extractor != nil {
		var fetcher pipeline.StorageService
		if a.Storage != nil {
			fetcher = a.Storage
		}
		a.Importer = pipeline.NewImporter(a.Extractor, fetcher, audit, cfg.ModelName)
	}

	return a, nil
}

func (a *App) wireStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		products  catalog.Store
		purchases purchase.Store
	)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory stores, data is lost on restart")
		products = memory.NewCatalogStore()
		purchases = memory.NewPurchaseStore()
	default:
		client, err := infraFS.NewClient(ctx, cfg.ProjectID, cfg.FirestoreDatabase)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		products = infraFS.NewCatalogStore(client)
		purchases = infraFS.NewPurchaseStore(client)
	}

	if cfg.RedisURL != "" {
		rdb, err := catalog.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, catalog cache calls will fall through")
		}
		a.closers = append(a.closers, rdb.Close)
		products = catalog.NewRedisCache(products, rdb, catalog.DefaultCacheTTL)
	}

	a.Purchases = purchase.NewService(purchases, catalog.NewResolver(products))
	return nil
}

// Close releases every client in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
