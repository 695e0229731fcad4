package orchestrator

import (
	"context"
	"dataweave/internal/models"
	"errors"
	"testing"
)

func TestDecomposeUsesLanguageSplit(t *testing.T) {
	lang := &stubLanguage{
		sqlQuery:   "Find employees with perfect attendance records",
		nosqlQuery: "Find movies with high ratings",
	}
	d := NewDecomposer(lang, nil)

	subs := d.Decompose(context.Background(), "employees with perfect attendance and highly rated movies")
	if subs[models.BackendSQL] != lang.sqlQuery {
		t.Errorf("sql sub-query = %q, want %q", subs[models.BackendSQL], lang.sqlQuery)
	}
	if subs[models.BackendNoSQL] != lang.nosqlQuery {
		t.Errorf("nosql sub-query = %q, want %q", subs[models.BackendNoSQL], lang.nosqlQuery)
	}
}

func TestDecomposeFallsBack(t *testing.T) {
	tests := []struct {
		name string
		lang *stubLanguage
	}{
		{"service error", &stubLanguage{decomposeErr: errors.New("timeout")}},
		{"empty sql side", &stubLanguage{nosqlQuery: "Find movies"}},
		{"empty nosql side", &stubLanguage{sqlQuery: "Find employees"}},
		{"identical sides", &stubLanguage{sqlQuery: "Get all data", nosqlQuery: "Get all data"}},
		{"identical ignoring case", &stubLanguage{sqlQuery: "get ALL data", nosqlQuery: "Get all data "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecomposer(tt.lang, nil)
			subs := d.Decompose(context.Background(), "show department budgets and average movie ratings")

			if len(subs) != 2 {
				t.Fatalf("expected 2 sub-queries, got %d", len(subs))
			}
			sql, nosql := subs[models.BackendSQL], subs[models.BackendNoSQL]
			if sql == "" || nosql == "" {
				t.Fatalf("fallback produced empty sub-query: sql=%q nosql=%q", sql, nosql)
			}
			if sql == nosql {
				t.Fatalf("fallback sub-queries must differ, both %q", sql)
			}
			if sql != "Get department budgets" {
				t.Errorf("sql fallback = %q, want budget rule", sql)
			}
			if nosql != "Calculate average movie ratings" {
				t.Errorf("nosql fallback = %q, want rating rule", nosql)
			}
		})
	}
}

func TestPhraseRuleDefaults(t *testing.T) {
	subs := fallbackDecompose("combine everything somehow")
	if subs[models.BackendSQL] != "Get employee information" {
		t.Errorf("sql default = %q", subs[models.BackendSQL])
	}
	if subs[models.BackendNoSQL] != "Get movie information" {
		t.Errorf("nosql default = %q", subs[models.BackendNoSQL])
	}
}
