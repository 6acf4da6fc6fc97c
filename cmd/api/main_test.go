package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/jobs"
	"github.com/titorm/shop-wise-sub000/internal/jobs/inmemory"
	"github.com/titorm/shop-wise-sub000/internal/pipeline"
)

type countingExtractor struct {
	calls int32
	err   error
}

func (m *countingExtractor) Extract(ctx context.Context, c extraction.Channel, doc extraction.Document) (*extraction.Result, error) {
	atomic.AddInt32(&m.calls, 1)
	return nil, m.err
}

type countingStorage struct {
	calls int32
}

func (m *countingStorage) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	atomic.AddInt32(&m.calls, 1)
	return nil, errors.New("bucket unavailable")
}

func runJob(t *testing.T, importer *pipeline.Importer, job *jobs.ExtractionJob) *jobs.ExtractionJob {
	t.Helper()

	store := inmemory.NewStore()
	q := inmemory.NewQueue(10, 1, store)
	q.Backoff = func(int) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := q.Start(ctx, importHandler(importer)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer q.Stop(context.Background())

	if err := q.Publish(ctx, job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusFailed {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	got, _ := store.GetJob(ctx, job.JobID)
	t.Fatalf("job never failed, last state %+v", got)
	return nil
}

func TestImportHandler_ExtractionErrorsAreFinal(t *testing.T) {
	reasons := []string{
		extraction.ReasonModelCall,
		extraction.ReasonEmptyResponse,
		extraction.ReasonInvalidJSON,
		extraction.ReasonSchemaValidation,
	}
	for _, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			ext := &countingExtractor{err: &extraction.ExtractionError{Channel: extraction.ChannelURL, Reason: reason}}
			importer := pipeline.NewImporter(ext, nil, nil, "gemini-test")

			got := runJob(t, importer, &jobs.ExtractionJob{
				HouseholdID: "h1",
				Channel:     extraction.ChannelURL,
				Document:    extraction.Document{URL: "https://store.example/receipt"},
			})

			// Give a wrongly scheduled retry time to run.
			time.Sleep(50 * time.Millisecond)
			if n := atomic.LoadInt32(&ext.calls); n != 1 {
				t.Errorf("extractor called %d times, want 1", n)
			}
			if got.RetryCount != 0 {
				t.Errorf("RetryCount = %d, want 0", got.RetryCount)
			}
		})
	}
}

func TestImportHandler_InfrastructureErrorsAreRetried(t *testing.T) {
	storage := &countingStorage{}
	ext := &countingExtractor{}
	importer := pipeline.NewImporter(ext, storage, nil, "gemini-test")

	got := runJob(t, importer, &jobs.ExtractionJob{
		HouseholdID: "h1",
		Channel:     extraction.ChannelPDFPage,
		GCSURI:      "gs://receipts/h1/a.pdf",
	})

	if got.RetryCount != jobs.DefaultMaxRetries {
		t.Errorf("RetryCount = %d, want %d", got.RetryCount, jobs.DefaultMaxRetries)
	}
	if n := atomic.LoadInt32(&storage.calls); n != int32(jobs.DefaultMaxRetries+1) {
		t.Errorf("fetch called %d times, want %d", n, jobs.DefaultMaxRetries+1)
	}
	if n := atomic.LoadInt32(&ext.calls); n != 0 {
		t.Errorf("extractor called %d times, want 0", n)
	}
}

func TestImportHandler_NotConfigured(t *testing.T) {
	got := runJob(t, nil, &jobs.ExtractionJob{
		HouseholdID: "h1",
		Channel:     extraction.ChannelURL,
		Document:    extraction.Document{URL: "https://store.example/receipt"},
	})
	if got.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", got.RetryCount)
	}
}
