package orchestrator

import (
	"context"
	"dataweave/internal/backends"
	"dataweave/internal/models"
	"dataweave/internal/services"
	"fmt"
	"log"
	"strings"
)

// LanguageService is the slice of the language understanding contract the
// pipeline stages consume. All calls are unreliable by contract; every
// caller has a deterministic fallback.
type LanguageService interface {
	Classify(ctx context.Context, query, contextSummary string) (models.Classification, error)
	Decompose(ctx context.Context, query string) (sqlQuery, nosqlQuery string, err error)
	Suggest(ctx context.Context, query string, issues []string) ([]string, error)
}

// Classifier assigns a query to a domain and intent. It never returns an
// error: classification failure degrades to Unclear/Clarify.
type Classifier struct {
	language LanguageService
	metrics  *services.Metrics
}

// NewClassifier creates a classifier. metrics may be nil in tests.
func NewClassifier(language LanguageService, metrics *services.Metrics) *Classifier {
	return &Classifier{language: language, metrics: metrics}
}

// Classify runs the two-tier decision: deterministic native-syntax fast
// paths first, then the language service, then the keyword table when the
// service is unusable. history may be empty (cold session).
func (c *Classifier) Classify(ctx context.Context, query string, history []models.InteractionRecord) models.Classification {
	// Fast path: already-structured input routes deterministically, with no
	// language service call.
	if backends.IsNativeSQL(query) {
		return models.Classification{Domain: models.DomainSQL, Intent: models.IntentSelect, Complexity: models.ComplexitySimple, QueryType: models.QueryTypeClear}
	}
	if backends.IsNativeMongo(query) {
		return models.Classification{Domain: models.DomainNoSQL, Intent: models.IntentSelect, Complexity: models.ComplexitySimple, QueryType: models.QueryTypeClear}
	}
	if backends.IsNativeFileCommand(query) {
		return models.Classification{Domain: models.DomainFiles, Intent: models.IntentSelect, Complexity: models.ComplexitySimple, QueryType: models.QueryTypeClear}
	}

	cls, err := c.language.Classify(ctx, query, contextSummary(history))
	if err != nil {
		log.Printf("⚠️  [CLASSIFY] Language service unusable (%v), using keyword fallback", err)
		if c.metrics != nil {
			c.metrics.LanguageFallbacks.WithLabelValues("classify").Inc()
		}
		return c.keywordFallback(query)
	}

	// Any non-clear verdict routes to clarification instead of execution.
	if cls.QueryType != models.QueryTypeClear {
		cls.Domain = models.DomainUnclear
		cls.Intent = models.IntentClarify
		return cls
	}

	// A "clear" verdict with no routable domain is still unanswerable;
	// give the keyword table a chance before clarifying.
	if cls.Domain == models.DomainUnclear {
		return c.keywordFallback(query)
	}

	return cls
}

// keywordFallback classifies from the keyword table alone. No-hit queries
// become ambiguous clarification candidates.
func (c *Classifier) keywordFallback(query string) models.Classification {
	domain := classifyByKeywords(query)
	if domain == models.DomainUnclear {
		return models.Classification{
			Domain:    models.DomainUnclear,
			Intent:    models.IntentClarify,
			QueryType: models.QueryTypeAmbiguous,
			Issues:    []string{"could not match the query to any backend"},
		}
	}
	return models.Classification{
		Domain:    domain,
		Intent:    models.IntentSelect,
		QueryType: models.QueryTypeClear,
	}
}

// contextSummary renders the last few interaction records for the language
// service. An empty history yields an empty summary.
func contextSummary(history []models.InteractionRecord) string {
	if len(history) == 0 {
		return ""
	}
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	var sb strings.Builder
	sb.WriteString("Recent context:\n")
	for _, rec := range recent {
		q := rec.Query
		if len(q) > 50 {
			q = q[:50] + "..."
		}
		sb.WriteString(fmt.Sprintf("- Query: %s (Domain: %s)\n", q, rec.Domain))
	}
	return sb.String()
}
