package orchestrator

import (
	"context"
	"dataweave/internal/models"
	"dataweave/internal/services"
	"log"
)

// defaultSuggestions is the canned list served when the language service
// cannot produce tailored suggestions. Each entry targets a real backend.
var defaultSuggestions = []string{
	"Show all employees in the company",
	"Find action movies with high ratings",
	"Display all departments and their budgets",
	"Show movies from 2020",
	"List PDF documents in the archive",
}

// Clarifier produces guidance and example queries for requests the
// classifier could not route to a backend.
type Clarifier struct {
	language LanguageService
	metrics  *services.Metrics
}

// NewClarifier creates a clarifier. metrics may be nil in tests.
func NewClarifier(language LanguageService, metrics *services.Metrics) *Clarifier {
	return &Clarifier{language: language, metrics: metrics}
}

// Handle builds the clarification response for an unroutable query.
// The result is always successful: a clarification is a valid answer,
// not a pipeline failure.
func (c *Clarifier) Handle(ctx context.Context, query string, cls models.Classification) models.CombinedResult {
	if c.metrics != nil {
		c.metrics.Clarifications.WithLabelValues(cls.QueryType).Inc()
	}

	suggestions, err := c.language.Suggest(ctx, query, cls.Issues)
	if err != nil || len(suggestions) < 3 {
		if err != nil {
			log.Printf("⚠️  [CLARIFY] Suggestion service unusable (%v), using defaults", err)
			if c.metrics != nil {
				c.metrics.LanguageFallbacks.WithLabelValues("suggest").Inc()
			}
		}
		suggestions = defaultSuggestions
	}
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}

	return models.CombinedResult{
		Success:     true,
		Guidance:    guidanceFor(cls.QueryType),
		Suggestions: suggestions,
	}
}

// guidanceFor maps the classifier's query type to a human-readable
// explanation of what the system can and cannot answer.
func guidanceFor(queryType string) string {
	switch queryType {
	case models.QueryTypeNonDomain:
		return "This system answers questions about employee records, movie data, and the document archive. " +
			"It cannot help with topics outside those datasets. Try one of the suggestions below."
	case models.QueryTypeTechnical:
		return "This system runs data queries rather than performing administrative or technical operations. " +
			"Rephrase the request as a question about employees, movies, or documents."
	default:
		return "The query is too vague to route to a data backend. " +
			"Be specific about what you want to see: employees, departments, movies, ratings, or documents."
	}
}
