package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// InsertModelOutputWithClient inserts a single ModelOutputRow. Uses DML INSERT
// so the row is immediately visible to UPDATE statements.
func InsertModelOutputWithClient(ctx context.Context, client *bigquery.Client, datasetID string, row *ModelOutputRow) error {
	q := client.Query(fmt.Sprintf(`
		INSERT INTO %s (
			output_id, run_id, document_id,
			model_name, raw_json, raw_text, created_ts
		)
		VALUES (
			@output_id, @run_id, @document_id,
			@model_name, @raw_json, @raw_text, @created_ts
		)
	`, tableRef(client, datasetID, modelOutputsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "output_id", Value: row.OutputID},
		{Name: "run_id", Value: row.RunID},
		{Name: "document_id", Value: row.DocumentID},
		{Name: "model_name", Value: row.ModelName},
		{Name: "raw_json", Value: row.RawJSON},
		{Name: "raw_text", Value: row.RawText},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertModelOutput: %w", err)
	}
	return nil
}
