package orchestrator

import (
	"dataweave/internal/models"
	"strings"
)

// domainKeywords is the data-driven keyword-to-backend table behind the
// deterministic classification and decomposition fallbacks. Keeping it as a
// table (rather than inline conditionals) makes the fallback policy
// independently testable and extensible.
var domainKeywords = map[models.Domain][]string{
	models.DomainSQL: {
		"employee", "employees", "staff", "department", "departments",
		"salary", "salaries", "attendance", "project", "projects",
		"manager", "managers", "hire", "hired", "title", "titles",
		"position", "positions", "order", "orders", "budget",
	},
	models.DomainNoSQL: {
		"movie", "movies", "rating", "ratings", "comment", "comments",
		"theater", "theaters", "cast", "director", "directors",
		"genre", "genres", "award", "awards",
	},
	models.DomainFiles: {
		"file", "files", "folder", "folders", "document", "documents",
		"pdf", "spreadsheet", "report", "archive", "upload", "download",
	},
}

// keywordHits counts how many keywords of each data domain appear in the query.
func keywordHits(query string) map[models.Domain]int {
	lower := strings.ToLower(query)
	hits := make(map[models.Domain]int, len(domainKeywords))
	for domain, words := range domainKeywords {
		for _, word := range words {
			if strings.Contains(lower, word) {
				hits[domain]++
			}
		}
	}
	return hits
}

// classifyByKeywords is the deterministic classifier fallback. A query that
// hits both data domains is hybrid; a query that hits nothing (or mixes the
// file domain with a data domain ambiguously) is unclear.
func classifyByKeywords(query string) models.Domain {
	hits := keywordHits(query)
	sql, nosql, files := hits[models.DomainSQL], hits[models.DomainNoSQL], hits[models.DomainFiles]

	switch {
	case sql > 0 && nosql > 0:
		return models.DomainHybrid
	case sql > 0 && files == 0:
		return models.DomainSQL
	case nosql > 0 && files == 0:
		return models.DomainNoSQL
	case files > 0 && sql == 0 && nosql == 0:
		return models.DomainFiles
	default:
		return models.DomainUnclear
	}
}

// Phrase rules for the decomposition fallback: the first matching rule per
// backend wins, the final entry is the backend's fetch-everything default.
type phraseRule struct {
	phrases  []string // all must appear; empty means unconditional default
	subQuery string
}

var sqlPhraseRules = []phraseRule{
	{phrases: []string{"perfect", "attendance"}, subQuery: "Find employees with perfect attendance records"},
	{phrases: []string{"order"}, subQuery: "Find employees and their orders"},
	{phrases: []string{"budget"}, subQuery: "Get department budgets"},
	{phrases: []string{"department"}, subQuery: "Get employee and department information"},
	{subQuery: "Get employee information"},
}

var nosqlPhraseRules = []phraseRule{
	{phrases: []string{"action", "movie"}, subQuery: "Find action movies"},
	{phrases: []string{"high", "rating"}, subQuery: "Find movies with high ratings"},
	{phrases: []string{"rating"}, subQuery: "Calculate average movie ratings"},
	{phrases: []string{"comment"}, subQuery: "Find movie comments"},
	{subQuery: "Get movie information"},
}

// applyPhraseRules returns the sub-query of the first rule whose phrases all
// appear in the query.
func applyPhraseRules(query string, rules []phraseRule) string {
	lower := strings.ToLower(query)
	for _, rule := range rules {
		matched := true
		for _, phrase := range rule.phrases {
			if !strings.Contains(lower, phrase) {
				matched = false
				break
			}
		}
		if matched {
			return rule.subQuery
		}
	}
	return ""
}
