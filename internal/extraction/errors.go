package extraction

import "fmt"

// ExtractionError means the extractor failed or returned output that does not
// match the channel contract. No partial result accompanies it.
type ExtractionError struct {
	Channel Channel
	Reason  string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed on channel %s: %s: %v", e.Channel, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed on channel %s: %s", e.Channel, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Failure reasons.
const (
	ReasonUnknownChannel   = "unknown channel"
	ReasonInvalidDocument  = "invalid document"
	ReasonModelCall        = "model call failed"
	ReasonEmptyResponse    = "empty response from model"
	ReasonInvalidJSON      = "invalid JSON"
	ReasonSchemaValidation = "schema validation failed"
)

func newError(c Channel, reason string, err error) *ExtractionError {
	return &ExtractionError{Channel: c, Reason: reason, Err: err}
}
