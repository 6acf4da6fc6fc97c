package suggest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"google.golang.org/genai"
)

type mockSuggester struct {
	SuggestFunc func(ctx context.Context, history string, familySize int) ([]string, error)
}

func (m *mockSuggester) Suggest(ctx context.Context, history string, familySize int) ([]string, error) {
	return m.SuggestFunc(ctx, history, familySize)
}

type mockGenerator struct {
	text string
	err  error

	lastConfig *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastConfig = config
	if m.err != nil {
		return nil, m.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: m.text}}}}},
	}, nil
}

func TestIntake_ReturnsOutputVerbatim(t *testing.T) {
	want := []string{"Milk", "milk", "Bread"}
	s := &mockSuggester{SuggestFunc: func(ctx context.Context, history string, familySize int) ([]string, error) {
		if familySize != 3 {
			t.Errorf("Expected family size 3, got %d", familySize)
		}
		if history != "coffee weekly" {
			t.Errorf("Unexpected history %q", history)
		}
		return want, nil
	}}

	got, err := Intake(context.Background(), s, "coffee weekly", FamilySize{Adults: 2, Children: 1})
	if err != nil {
		t.Fatalf("Intake returned error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intake = %v, want %v", got, want)
	}
}

func TestIntake_WrapsFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	s := &mockSuggester{SuggestFunc: func(ctx context.Context, history string, familySize int) ([]string, error) {
		return nil, boom
	}}

	_, err := Intake(context.Background(), s, "", FamilySize{Adults: 1})

	var sugErr *SuggestionError
	if !errors.As(err, &sugErr) || !errors.Is(err, boom) {
		t.Errorf("Expected SuggestionError wrapping cause, got %v", err)
	}
}

func TestIntake_RejectsNegativeFamily(t *testing.T) {
	s := &mockSuggester{SuggestFunc: func(ctx context.Context, history string, familySize int) ([]string, error) {
		t.Error("Suggester should not be called")
		return nil, nil
	}}

	_, err := Intake(context.Background(), s, "", FamilySize{Adults: -1})
	var sugErr *SuggestionError
	if !errors.As(err, &sugErr) {
		t.Errorf("Expected SuggestionError, got %v", err)
	}
}

func TestMergeNew(t *testing.T) {
	tests := []struct {
		name      string
		existing  []string
		suggested []string
		want      []string
	}{
		{"skips existing case-insensitively", []string{"Milk", "bread"}, []string{"milk", "Eggs", "BREAD"}, []string{"Eggs"}},
		{"dedupes suggestions", nil, []string{"Eggs", "eggs ", " Rice"}, []string{"Eggs", "Rice"}},
		{"drops blanks", nil, []string{"", "  "}, nil},
		{"nothing new", []string{"a"}, []string{"A"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeNew(tt.existing, tt.suggested); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeNew() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeminiSuggester(t *testing.T) {
	gen := &mockGenerator{text: `["Milk","Bread"]`}

	got, err := NewGeminiSuggester(gen, "").Suggest(context.Background(), "milk twice a week", 4)
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Milk", "Bread"}) {
		t.Errorf("Suggest = %v", got)
	}
	if gen.lastConfig.ResponseSchema.Type != genai.TypeArray {
		t.Error("Expected array response schema")
	}
}

func TestGeminiSuggester_Errors(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGenerator
	}{
		{"model error", &mockGenerator{err: errors.New("boom")}},
		{"empty", &mockGenerator{text: ""}},
		{"not a list", &mockGenerator{text: `{"items":[]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGeminiSuggester(tt.gen, "").Suggest(context.Background(), "", 1); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
