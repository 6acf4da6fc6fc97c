package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/titorm/shop-wise-sub000/internal/extraction"
)

// GeminiSuggester implements Suggester with a JSON string-array response.
type GeminiSuggester struct {
	models extraction.ContentGenerator
	model  string
}

// NewGeminiSuggester creates a suggester. An empty model selects the extraction default.
func NewGeminiSuggester(models extraction.ContentGenerator, model string) *GeminiSuggester {
	if model == "" {
		model = extraction.DefaultModelName
	}
	return &GeminiSuggester{models: models, model: model}
}

var listSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

func (g *GeminiSuggester) Suggest(ctx context.Context, history string, familySize int) ([]string, error) {
	prompt := fmt.Sprintf(
		"You help a household plan its next grocery shopping list.\n\n"+
			"Household size: %d people.\n\n"+
			"Recent purchase history:\n%s\n\n"+
			"Suggest the items this household will likely need next, considering how often "+
			"items were bought and the household size.\n"+
			"Return ONLY a JSON array of item names (strings), most important first.\n",
		familySize, strings.TrimSpace(history))

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   listSchema,
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Suggest: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("Suggest: empty response from model")
	}

	var items []string
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("Suggest: unmarshal JSON: %w", err)
	}
	return items, nil
}
