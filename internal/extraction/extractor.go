package extraction

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

// Extractor turns one document into raw product lines.
// Any failure is returned as *ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, c Channel, doc Document) (*Result, error)
}

// Usage reports model token consumption for one call.
type Usage struct {
	Model        string `json:"model"`
	PromptTokens int32  `json:"promptTokens"`
	OutputTokens int32  `json:"outputTokens"`
}

// Result is a validated extraction. Store and Date are set only on channels
// that carry a store header.
type Result struct {
	Channel  Channel                `json:"channel"`
	Store    *domain.StoreInfo      `json:"store,omitempty"`
	Date     *civil.Date            `json:"date,omitempty"`
	Products []domain.RawLineItem   `json:"products"`
	Raw      map[string]interface{} `json:"-"`
	RawText  string                 `json:"-"`
	Usage    Usage                  `json:"usage"`
}
