package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertDocumentWithClient streams a single ReceiptDocumentRow into receipt_documents.
func InsertDocumentWithClient(ctx context.Context, client *bigquery.Client, datasetID string, row *ReceiptDocumentRow) error {
	inserter := client.Dataset(datasetID).Table(documentsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDocument: inserting row: %w", err)
	}
	return nil
}

// FindDocumentByChecksumWithClient returns the most recent document with the
// given SHA-256 checksum, or nil if there is none.
func FindDocumentByChecksumWithClient(ctx context.Context, client *bigquery.Client, datasetID, checksum string) (*ReceiptDocumentRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			document_id,
			household_id,
			source_uri,
			channel,
			upload_ts,
			original_filename,
			file_mime_type,
			checksum_sha256,
			metadata
		FROM %s
		WHERE checksum_sha256 = @checksum
		ORDER BY upload_ts DESC
		LIMIT 1
	`, tableRef(client, datasetID, documentsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "checksum", Value: checksum},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksum: reading query: %w", err)
	}

	var row ReceiptDocumentRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksum: reading row: %w", err)
	}

	return &row, nil
}
