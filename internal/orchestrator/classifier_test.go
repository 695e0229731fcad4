package orchestrator

import (
	"context"
	"dataweave/internal/models"
	"errors"
	"strings"
	"testing"
)

func TestClassifyNativeFastPaths(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.Domain
	}{
		{"sql statement", "SELECT name, salary FROM employees WHERE salary > 50000", models.DomainSQL},
		{"sql lowercase", "select * from departments", models.DomainSQL},
		{"mongo filter", `{"year": 2020}`, models.DomainNoSQL},
		{"mongo pipeline", `[{"$match": {"genres": "Action"}}]`, models.DomainNoSQL},
		{"file command", "list reports", models.DomainFiles},
		{"file read", "read summary.pdf", models.DomainFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang := &stubLanguage{}
			c := NewClassifier(lang, nil)

			got := c.Classify(context.Background(), tt.query, nil)
			if got.Domain != tt.want {
				t.Errorf("domain = %v, want %v", got.Domain, tt.want)
			}
			if got.QueryType != models.QueryTypeClear {
				t.Errorf("query type = %q, want clear", got.QueryType)
			}
			if lang.classifyCalls != 0 {
				t.Error("native input must bypass the language service")
			}
		})
	}
}

func TestClassifyKeywordFallback(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.Domain
	}{
		{"sql keywords", "show me employee salaries by department", models.DomainSQL},
		{"nosql keywords", "which directors won awards", models.DomainNoSQL},
		{"file keywords", "find the quarterly report document", models.DomainFiles},
		{"hybrid keywords", "compare employee attendance with movie ratings", models.DomainHybrid},
		{"no keywords", "what is the weather like today", models.DomainUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang := &stubLanguage{classifyErr: errors.New("connection refused")}
			c := NewClassifier(lang, nil)

			got := c.Classify(context.Background(), tt.query, nil)
			if got.Domain != tt.want {
				t.Errorf("domain = %v, want %v", got.Domain, tt.want)
			}
			if tt.want == models.DomainUnclear {
				if got.Intent != models.IntentClarify {
					t.Errorf("intent = %v, want clarify", got.Intent)
				}
				if len(got.Issues) == 0 {
					t.Error("unmatched query must carry an issue")
				}
			}
		})
	}
}

func TestClassifyNonClearVerdictClarifies(t *testing.T) {
	for _, queryType := range []string{models.QueryTypeAmbiguous, models.QueryTypeNonDomain, models.QueryTypeTechnical} {
		t.Run(queryType, func(t *testing.T) {
			lang := &stubLanguage{classification: models.Classification{
				Domain:    models.DomainSQL,
				QueryType: queryType,
			}}
			c := NewClassifier(lang, nil)

			got := c.Classify(context.Background(), "something vague", nil)
			if got.Domain != models.DomainUnclear {
				t.Errorf("domain = %v, want unclear for query type %s", got.Domain, queryType)
			}
			if got.Intent != models.IntentClarify {
				t.Errorf("intent = %v, want clarify", got.Intent)
			}
		})
	}
}

func TestClassifyClearButUnroutableUsesKeywords(t *testing.T) {
	lang := &stubLanguage{classification: models.Classification{
		Domain:    models.DomainUnclear,
		QueryType: models.QueryTypeClear,
	}}
	c := NewClassifier(lang, nil)

	got := c.Classify(context.Background(), "show all employees", nil)
	if got.Domain != models.DomainSQL {
		t.Errorf("domain = %v, want sql via keyword rescue", got.Domain)
	}
}

func TestContextSummary(t *testing.T) {
	if got := contextSummary(nil); got != "" {
		t.Errorf("empty history summary = %q, want empty", got)
	}

	history := []models.InteractionRecord{
		{Query: "q1", Domain: "sql"},
		{Query: "q2", Domain: "nosql"},
		{Query: "q3", Domain: "sql"},
		{Query: "q4", Domain: "hybrid"},
	}
	summary := contextSummary(history)
	if strings.Contains(summary, "q1") {
		t.Error("summary must keep only the most recent records")
	}
	for _, q := range []string{"q2", "q3", "q4"} {
		if !strings.Contains(summary, q) {
			t.Errorf("summary missing %s:\n%s", q, summary)
		}
	}

	long := strings.Repeat("x", 80)
	summary = contextSummary([]models.InteractionRecord{{Query: long, Domain: "sql"}})
	if strings.Contains(summary, long) {
		t.Error("long queries must be truncated in the summary")
	}
}
