package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Extraction run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

type ReceiptDocumentRow struct {
	DocumentID  string `bigquery:"document_id"`  // REQUIRED
	HouseholdID string `bigquery:"household_id"` // NULLABLE

	SourceURI string `bigquery:"source_uri"` // REQUIRED (gs:// URI or receipt URL)
	Channel   string `bigquery:"channel"`    // REQUIRED

	UploadTS time.Time `bigquery:"upload_ts"` // REQUIRED

	OriginalFilename string `bigquery:"original_filename"` // NULLABLE
	FileMimeType     string `bigquery:"file_mime_type"`    // NULLABLE
	ChecksumSHA256   string `bigquery:"checksum_sha256"`   // NULLABLE

	Metadata bigquery.NullJSON `bigquery:"metadata"` // NULLABLE
}

type ExtractionRunRow struct {
	RunID      string `bigquery:"run_id"`      // REQUIRED
	DocumentID string `bigquery:"document_id"` // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	ExtractorType string `bigquery:"extractor_type"` // NULLABLE
	ModelName     string `bigquery:"model_name"`     // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	TokensInput  bigquery.NullInt64 `bigquery:"tokens_input"`  // NULLABLE
	TokensOutput bigquery.NullInt64 `bigquery:"tokens_output"` // NULLABLE
	ProductCount bigquery.NullInt64 `bigquery:"product_count"` // NULLABLE
}

type ModelOutputRow struct {
	OutputID   string `bigquery:"output_id"`   // REQUIRED
	RunID      string `bigquery:"run_id"`      // REQUIRED
	DocumentID string `bigquery:"document_id"` // REQUIRED

	ModelName string `bigquery:"model_name"` // REQUIRED

	RawJSON bigquery.NullJSON   `bigquery:"raw_json"` // NULLABLE
	RawText bigquery.NullString `bigquery:"raw_text"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// RunResult carries the metrics written when a run succeeds.
type RunResult struct {
	TokensInput  int64
	TokensOutput int64
	ProductCount int64
}
