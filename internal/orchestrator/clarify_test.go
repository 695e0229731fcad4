package orchestrator

import (
	"context"
	"dataweave/internal/models"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func ambiguous() models.Classification {
	return models.Classification{
		Domain:    models.DomainUnclear,
		Intent:    models.IntentClarify,
		QueryType: models.QueryTypeAmbiguous,
	}
}

func TestClarifyUsesServiceSuggestions(t *testing.T) {
	lang := &stubLanguage{suggestions: []string{"one", "two", "three", "four"}}
	c := NewClarifier(lang, nil)

	result := c.Handle(context.Background(), "vague", ambiguous())
	if !result.Success {
		t.Fatal("clarification must succeed")
	}
	if !reflect.DeepEqual(result.Suggestions, lang.suggestions) {
		t.Errorf("suggestions = %v, want service output", result.Suggestions)
	}
}

func TestClarifyFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		lang *stubLanguage
	}{
		{"service error", &stubLanguage{suggestErr: errors.New("unreachable")}},
		{"too few suggestions", &stubLanguage{suggestions: []string{"only", "two"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClarifier(tt.lang, nil)
			result := c.Handle(context.Background(), "vague", ambiguous())

			if !reflect.DeepEqual(result.Suggestions, defaultSuggestions) {
				t.Errorf("suggestions = %v, want defaults", result.Suggestions)
			}
			if n := len(result.Suggestions); n < 3 || n > 5 {
				t.Errorf("default suggestion count = %d, want 3..5", n)
			}
		})
	}
}

func TestClarifyCapsSuggestions(t *testing.T) {
	lang := &stubLanguage{suggestions: []string{"a", "b", "c", "d", "e", "f", "g"}}
	c := NewClarifier(lang, nil)

	result := c.Handle(context.Background(), "vague", ambiguous())
	if len(result.Suggestions) != 5 {
		t.Errorf("suggestion count = %d, want capped at 5", len(result.Suggestions))
	}
}

func TestClarifyGuidancePerQueryType(t *testing.T) {
	lang := &stubLanguage{suggestions: []string{"a", "b", "c"}}
	c := NewClarifier(lang, nil)

	tests := []struct {
		queryType string
		fragment  string
	}{
		{models.QueryTypeAmbiguous, "too vague"},
		{models.QueryTypeNonDomain, "outside those datasets"},
		{models.QueryTypeTechnical, "administrative or technical"},
	}

	for _, tt := range tests {
		cls := ambiguous()
		cls.QueryType = tt.queryType
		result := c.Handle(context.Background(), "q", cls)
		if !strings.Contains(result.Guidance, tt.fragment) {
			t.Errorf("%s guidance = %q, want it to mention %q", tt.queryType, result.Guidance, tt.fragment)
		}
	}
}
