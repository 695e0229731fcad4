package orchestrator

import (
	"context"
	"dataweave/internal/models"
	"dataweave/internal/services"
	"log"
	"strings"
)

// Decomposer splits hybrid queries into independent, backend-scoped
// sub-queries. Non-hybrid domains never reach it.
type Decomposer struct {
	language LanguageService
	metrics  *services.Metrics
}

// NewDecomposer creates a decomposer. metrics may be nil in tests.
func NewDecomposer(language LanguageService, metrics *services.Metrics) *Decomposer {
	return &Decomposer{language: language, metrics: metrics}
}

// Decompose asks the language service for a two-way split and validates it:
// both sub-queries non-empty and textually distinct. A degenerate split
// falls back to the deterministic keyword decomposition, so this stage can
// never stall the pipeline.
func (d *Decomposer) Decompose(ctx context.Context, query string) map[string]string {
	sqlQuery, nosqlQuery, err := d.language.Decompose(ctx, query)
	if err != nil || degenerate(sqlQuery, nosqlQuery) {
		if err != nil {
			log.Printf("⚠️  [DECOMPOSE] Language service unusable (%v), using keyword fallback", err)
		} else {
			log.Printf("⚠️  [DECOMPOSE] Degenerate split (sql=%q nosql=%q), using keyword fallback", sqlQuery, nosqlQuery)
		}
		if d.metrics != nil {
			d.metrics.LanguageFallbacks.WithLabelValues("decompose").Inc()
		}
		return fallbackDecompose(query)
	}

	return map[string]string{
		models.BackendSQL:   sqlQuery,
		models.BackendNoSQL: nosqlQuery,
	}
}

// degenerate reports whether a split is unusable: empty on either side or
// the same text on both.
func degenerate(sqlQuery, nosqlQuery string) bool {
	return sqlQuery == "" || nosqlQuery == "" ||
		strings.EqualFold(strings.TrimSpace(sqlQuery), strings.TrimSpace(nosqlQuery))
}

// fallbackDecompose synthesizes one sub-query per data backend from the
// phrase rule tables. The rule defaults guarantee two non-empty, distinct
// sub-queries for any input.
func fallbackDecompose(query string) map[string]string {
	return map[string]string{
		models.BackendSQL:   applyPhraseRules(query, sqlPhraseRules),
		models.BackendNoSQL: applyPhraseRules(query, nosqlPhraseRules),
	}
}
