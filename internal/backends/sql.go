package backends

import (
	"context"
	"dataweave/internal/database"
	"dataweave/internal/models"
	"log"
	"strings"
	"time"
)

// SQLExecutor runs queries against the relational backend. Natural-language
// input is translated to SQL first; native SQL is executed as-is. Only
// read statements are allowed through.
type SQLExecutor struct {
	db         *database.DB
	translator Translator
}

// NewSQLExecutor creates the relational backend adapter. db may be nil when
// initialization failed upstream; the executor then reports unavailable.
func NewSQLExecutor(db *database.DB, translator Translator) *SQLExecutor {
	return &SQLExecutor{db: db, translator: translator}
}

// Name returns the backend key
func (e *SQLExecutor) Name() string { return models.BackendSQL }

// Available reports whether the relational connection was initialized
func (e *SQLExecutor) Available() bool { return e.db != nil }

// readOnlySQL reports whether the statement is one of the allowed read forms.
func readOnlySQL(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "SHOW", "DESCRIBE", "EXPLAIN"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// Execute translates (if needed) and runs the query, returning rows as maps.
func (e *SQLExecutor) Execute(ctx context.Context, query string) models.ExecutionResult {
	start := time.Now()

	if e.db == nil {
		return failure("", 0, "backend unavailable")
	}

	native := strings.TrimSpace(query)
	if !IsNativeSQL(native) {
		translated, err := e.translator.Translate(ctx, query, database.SchemaContext)
		if err != nil {
			return failure("", time.Since(start).Milliseconds(), "failed to translate query: %v", err)
		}
		native = strings.TrimSuffix(strings.TrimSpace(translated), ";")
		log.Printf("🔄 [SQL] Translated %q -> %q", query, native)
	}

	if !readOnlySQL(native) {
		return failure(native, time.Since(start).Milliseconds(), "only read statements are allowed")
	}

	rows, err := e.db.QueryContext(ctx, native)
	if err != nil {
		return failure(native, time.Since(start).Milliseconds(), "query failed: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return failure(native, time.Since(start).Milliseconds(), "failed to read columns: %v", err)
	}

	var data []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return failure(native, time.Since(start).Milliseconds(), "failed to scan row: %v", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			// Drivers hand back []byte for text columns; keep JSON output readable.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return failure(native, time.Since(start).Milliseconds(), "row iteration failed: %v", err)
	}

	return models.ExecutionResult{
		Success:     true,
		NativeQuery: native,
		RowCount:    len(data),
		Data:        data,
		ElapsedMs:   time.Since(start).Milliseconds(),
	}
}
