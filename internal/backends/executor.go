package backends

import (
	"context"
	"dataweave/internal/models"
	"fmt"
	"sort"
	"strings"
)

// Translator turns a natural-language query into a backend-native query
// string. Satisfied by the language service client.
type Translator interface {
	Translate(ctx context.Context, query, schemaContext string) (string, error)
}

// Executor is the uniform contract every backend adapter satisfies.
// Execute must be idempotent-safe for read queries and must never raise
// past its boundary: all failures surface inside the ExecutionResult.
type Executor interface {
	Name() string
	Available() bool
	Execute(ctx context.Context, query string) models.ExecutionResult
}

// Registry maps backend keys to executors
type Registry struct {
	executors map[string]Executor
}

// NewRegistry creates an empty executor registry
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds an executor under a backend key
func (r *Registry) Register(key string, executor Executor) {
	r.executors[key] = executor
}

// Get retrieves an executor for a backend key
func (r *Registry) Get(key string) (Executor, error) {
	exec, ok := r.executors[key]
	if !ok {
		return nil, fmt.Errorf("no executor registered for backend: %s", key)
	}
	return exec, nil
}

// Status reports availability per registered backend.
func (r *Registry) Status() map[string]bool {
	status := make(map[string]bool, len(r.executors))
	for key, exec := range r.executors {
		status[key] = exec.Available()
	}
	return status
}

// Keys returns the registered backend keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.executors))
	for key := range r.executors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sqlKeywords are statement openers that mark input as native SQL.
var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "DESCRIBE", "EXPLAIN", "SHOW", "USE"}

// IsNativeSQL reports whether the query is already SQL: it must open with a
// SQL keyword and carry SQL structure (a clause keyword or a trailing
// semicolon), so ordinary English starting with "select" alone does not
// match.
func IsNativeSQL(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	if upper == "" {
		return false
	}

	startsWithKeyword := false
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(upper, kw+" ") || upper == kw {
			startsWithKeyword = true
			break
		}
	}
	if !startsWithKeyword {
		return false
	}

	return strings.Contains(upper, " FROM ") ||
		strings.Contains(upper, " WHERE ") ||
		strings.Contains(upper, " JOIN ") ||
		strings.Contains(upper, "GROUP BY") ||
		strings.Contains(upper, "ORDER BY") ||
		strings.Contains(upper, " LIMIT ") ||
		strings.Contains(upper, ";")
}

// IsNativeMongo reports whether the query is already a native document-store
// query: a JSON array (aggregation pipeline) or a JSON object (find spec).
func IsNativeMongo(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return true
	}
	return strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")
}

// IsNativeFileCommand reports whether the query is already a file backend
// command (list/search/read/stat).
func IsNativeFileCommand(query string) bool {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "list":
		return true
	case "search", "read", "stat":
		return len(fields) > 1
	default:
		return false
	}
}

// failure builds a failed ExecutionResult with the elapsed time attached.
func failure(native string, elapsedMs int64, format string, args ...any) models.ExecutionResult {
	return models.ExecutionResult{
		Success:     false,
		NativeQuery: native,
		Error:       fmt.Sprintf(format, args...),
		ElapsedMs:   elapsedMs,
	}
}
