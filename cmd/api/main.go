package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/titorm/shop-wise-sub000/internal/api"
	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/app"
	"github.com/titorm/shop-wise-sub000/internal/config"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/jobs"
	"github.com/titorm/shop-wise-sub000/internal/jobs/inmemory"
	"github.com/titorm/shop-wise-sub000/internal/logger"
	"github.com/titorm/shop-wise-sub000/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		port    = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		workers = flag.Int("workers", 5, "Concurrent extraction workers")
	)
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	services, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire services")
	}
	defer services.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, importHandler(services.Importer)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start extraction workers")
	}

	deps := api.Deps{
		Taxonomy:  services.Taxonomy,
		Publisher: jobQueue,
		Jobs:      jobStore,
		Purchases: services.Purchases,
	}
	if services.Suggester != nil {
		deps.Suggester = services.Suggester
	}
	if services.Storage != nil {
		deps.Uploader = services.Storage
	}

	router := api.NewRouter(deps, middleware.NewRateLimiter(cfg.RateLimitPerMinute))

	server := &http.Server{
		Addr:              ":" + *port,
		Handler:           api.NewHandler(router, log),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("backend", cfg.StoreBackend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// importHandler runs the import pipeline for a queued job and stores the
// draft on it. Extraction failures are final; only infrastructure errors
// such as a document fetch are retried.
func importHandler(importer *pipeline.Importer) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.ExtractionJob) error {
		log := logger.FromContext(ctx)

		if importer == nil {
			return jobs.Permanent(errors.New("extraction is not configured"))
		}

		log.Info().
			Str("channel", string(job.Channel)).
			Str("household_id", job.HouseholdID).
			Msg("Processing extraction job")

		draft, err := importer.Import(ctx, job.Request())
		if err != nil {
			if extraction.IsExtractionError(err) {
				return jobs.Permanent(err)
			}
			return err
		}

		job.Draft = draft
		log.Info().Int("items", len(draft.Items)).Msg("Extraction job completed")
		return nil
	}
}
