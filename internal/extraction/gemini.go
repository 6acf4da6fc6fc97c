package extraction

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// ContentGenerator is the part of the genai client the extractors call.
// *genai.Models implements it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGenAIClient creates a Gemini client. With an API key it talks to the
// Gemini API, otherwise to Vertex AI in project.
func NewGenAIClient(ctx context.Context, apiKey, project string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{}
	if apiKey != "" {
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	} else {
		cfg.Project = project
		cfg.Backend = genai.BackendVertexAI
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewGenAIClient: %w", err)
	}
	return client, nil
}

// GeminiExtractor implements Extractor with structured Gemini output.
type GeminiExtractor struct {
	models   ContentGenerator
	model    string
	taxonomy *Taxonomy
}

// NewGeminiExtractor creates an extractor. An empty model selects DefaultModelName
// and a nil taxonomy selects DefaultTaxonomy.
func NewGeminiExtractor(models ContentGenerator, model string, taxonomy *Taxonomy) *GeminiExtractor {
	if model == "" {
		model = DefaultModelName
	}
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &GeminiExtractor{models: models, model: model, taxonomy: taxonomy}
}

// Extract sends doc with the channel prompt and schema and validates the answer.
func (g *GeminiExtractor) Extract(ctx context.Context, c Channel, doc Document) (*Result, error) {
	if !c.Valid() {
		return nil, newError(c, ReasonUnknownChannel, nil)
	}
	if err := doc.Validate(c); err != nil {
		return nil, newError(c, ReasonInvalidDocument, err)
	}

	log := logger.FromContext(ctx).With().Str("channel", string(c)).Str("model", g.model).Logger()

	parts := []*genai.Part{{Text: buildPrompt(c, g.taxonomy, doc)}}
	if c != ChannelURL {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(c, g.taxonomy),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		log.Error().Err(err).Msg("Model call failed")
		return nil, newError(c, ReasonModelCall, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, newError(c, ReasonEmptyResponse, nil)
	}

	raw, err := decodeObject(rawText)
	if err != nil {
		log.Warn().Err(err).Str("raw", truncate(rawText, 500)).Msg("Model returned invalid JSON")
		return nil, newError(c, ReasonInvalidJSON, err)
	}

	result, err := transformModelOutput(c, g.taxonomy, raw)
	if err != nil {
		log.Warn().Err(err).Msg("Model output failed validation")
		return nil, newError(c, ReasonSchemaValidation, err)
	}

	result.RawText = rawText
	result.Usage.Model = g.model
	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = resp.UsageMetadata.PromptTokenCount
		result.Usage.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}

	log.Info().Int("products", len(result.Products)).Msg("Extraction completed")
	return result, nil
}

// IsExtractionError reports whether err is or wraps an *ExtractionError.
func IsExtractionError(err error) bool {
	var extErr *ExtractionError
	return errors.As(err, &extErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
