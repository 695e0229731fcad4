package backends

import (
	"context"
	"dataweave/internal/database"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE employees (id INTEGER PRIMARY KEY, first_name TEXT, last_name TEXT, salary INTEGER, department_id INTEGER)`,
		`INSERT INTO employees (first_name, last_name, salary, department_id) VALUES ('Ada', 'Byron', 95000, 1)`,
		`INSERT INTO employees (first_name, last_name, salary, department_id) VALUES ('Alan', 'Turing', 88000, 2)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestSQLExecutorNativeQuery(t *testing.T) {
	e := NewSQLExecutor(newTestDB(t), &stubTranslator{})

	result := e.Execute(context.Background(), "SELECT first_name, salary FROM employees ORDER BY id")
	if !result.Success {
		t.Fatalf("execute failed: %s", result.Error)
	}
	if result.RowCount != 2 || len(result.Data) != 2 {
		t.Fatalf("row count = %d, want 2", result.RowCount)
	}
	if result.Data[0]["first_name"] != "Ada" {
		t.Errorf("first row = %v", result.Data[0])
	}
}

func TestSQLExecutorTranslatesFreeText(t *testing.T) {
	tr := &stubTranslator{native: "SELECT first_name FROM employees WHERE salary > 90000;"}
	e := NewSQLExecutor(newTestDB(t), tr)

	result := e.Execute(context.Background(), "who earns more than ninety thousand")
	if !result.Success {
		t.Fatalf("execute failed: %s", result.Error)
	}
	if tr.calls != 1 {
		t.Errorf("translator calls = %d, want 1", tr.calls)
	}
	if strings.HasSuffix(result.NativeQuery, ";") {
		t.Errorf("trailing semicolon not stripped: %q", result.NativeQuery)
	}
	if result.RowCount != 1 {
		t.Errorf("row count = %d, want 1", result.RowCount)
	}
}

func TestSQLExecutorRejectsWrites(t *testing.T) {
	e := NewSQLExecutor(newTestDB(t), &stubTranslator{})

	result := e.Execute(context.Background(), "DELETE FROM employees WHERE id = 1")
	if result.Success {
		t.Fatal("write statement must be rejected")
	}
	if !strings.Contains(result.Error, "only read statements") {
		t.Errorf("error = %q", result.Error)
	}
}

func TestSQLExecutorUnavailable(t *testing.T) {
	e := NewSQLExecutor(nil, &stubTranslator{})

	if e.Available() {
		t.Fatal("nil db must report unavailable")
	}
	result := e.Execute(context.Background(), "SELECT 1 FROM employees")
	if result.Success || result.Error != "backend unavailable" {
		t.Errorf("result = %+v, want unavailable failure", result)
	}
}
