package models

import (
	"fmt"
	"time"
)

// Domain identifies which backend (or combination) a query targets.
// It is a closed set: the router matches it exhaustively and there is no
// catch-all branch.
type Domain int

const (
	DomainUnclear Domain = iota
	DomainSQL
	DomainNoSQL
	DomainFiles
	DomainHybrid
)

// Backend keys used in sub-query and result maps, and as the wire form of
// Domain. Hybrid never appears as a key: a hybrid request fans out into the
// sql and nosql keys.
const (
	BackendSQL   = "sql"
	BackendNoSQL = "nosql"
	BackendFiles = "files"
)

// String returns the wire form of the domain.
func (d Domain) String() string {
	switch d {
	case DomainSQL:
		return BackendSQL
	case DomainNoSQL:
		return BackendNoSQL
	case DomainFiles:
		return BackendFiles
	case DomainHybrid:
		return "hybrid"
	default:
		return "unclear"
	}
}

// Key returns the backend key for a single-backend domain. Hybrid and
// Unclear have no single key.
func (d Domain) Key() (string, bool) {
	switch d {
	case DomainSQL, DomainNoSQL, DomainFiles:
		return d.String(), true
	default:
		return "", false
	}
}

// ParseDomain maps a wire string to a Domain. Unknown values map to
// DomainUnclear so a misbehaving language service can never inject an
// unroutable domain.
func ParseDomain(s string) Domain {
	switch s {
	case BackendSQL, "employee", "relational":
		return DomainSQL
	case BackendNoSQL, "movies", "document":
		return DomainNoSQL
	case BackendFiles, "drive", "storage":
		return DomainFiles
	case "hybrid":
		return DomainHybrid
	default:
		return DomainUnclear
	}
}

// Intent describes what the query wants done with the data.
type Intent int

const (
	IntentSelect Intent = iota
	IntentAnalyze
	IntentCompare
	IntentAggregate
	IntentClarify
)

func (i Intent) String() string {
	switch i {
	case IntentAnalyze:
		return "analyze"
	case IntentCompare:
		return "compare"
	case IntentAggregate:
		return "aggregate"
	case IntentClarify:
		return "clarify"
	default:
		return "select"
	}
}

// ParseIntent maps a wire string to an Intent, defaulting to select.
func ParseIntent(s string) Intent {
	switch s {
	case "analyze":
		return IntentAnalyze
	case "compare":
		return IntentCompare
	case "aggregate":
		return IntentAggregate
	case "clarify":
		return IntentClarify
	default:
		return IntentSelect
	}
}

// Complexity is advisory only: it feeds logging and metrics, never routing.
type Complexity int

const (
	ComplexitySimple Complexity = iota
	ComplexityMedium
	ComplexityComplex
)

func (c Complexity) String() string {
	switch c {
	case ComplexityMedium:
		return "medium"
	case ComplexityComplex:
		return "complex"
	default:
		return "simple"
	}
}

// ParseComplexity maps a wire string to a Complexity, defaulting to simple.
func ParseComplexity(s string) Complexity {
	switch s {
	case "medium":
		return ComplexityMedium
	case "complex":
		return ComplexityComplex
	default:
		return ComplexitySimple
	}
}

// Query types reported by the language service's classify call.
const (
	QueryTypeClear     = "clear"
	QueryTypeAmbiguous = "ambiguous"
	QueryTypeNonDomain = "non_domain"
	QueryTypeTechnical = "technical"
)

// Classification is the language service's verdict on a query.
type Classification struct {
	Domain     Domain     `json:"domain"`
	Intent     Intent     `json:"intent"`
	Complexity Complexity `json:"complexity"`
	QueryType  string     `json:"query_type"`
	Issues     []string   `json:"issues,omitempty"`
}

// TaskStatus tracks a dispatched task through its lifecycle.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is one unit of the execution plan: a sub-query bound to a backend.
type Task struct {
	Backend string     `json:"backend"`
	Query   string     `json:"query"`
	Status  TaskStatus `json:"status"`
}

// ExecutionResult is what a backend executor returns. Immutable once
// produced; executors never raise past their boundary, so failures are
// carried inside the result.
type ExecutionResult struct {
	Success     bool             `json:"success"`
	NativeQuery string           `json:"native_query,omitempty"`
	RowCount    int              `json:"row_count"`
	Data        []map[string]any `json:"data,omitempty"`
	Error       string           `json:"error,omitempty"`
	ElapsedMs   int64            `json:"elapsed_ms"`
}

// CombinedResult is the merged outcome of a request. Success is true iff at
// least one backend succeeded (or the clarification path produced guidance).
type CombinedResult struct {
	Success     bool                       `json:"success"`
	DataSources []string                   `json:"data_sources"`
	Backends    map[string]ExecutionResult `json:"backends,omitempty"`
	Guidance    string                     `json:"guidance,omitempty"`
	Suggestions []string                   `json:"suggestions,omitempty"`
	Error       string                     `json:"error,omitempty"`
}

// InteractionRecord is one entry in a session's bounded history.
type InteractionRecord struct {
	Query         string    `json:"query"`
	Domain        string    `json:"domain"`
	Intent        string    `json:"intent"`
	ExecutionPath []string  `json:"execution_path"`
	Timestamp     time.Time `json:"timestamp"`
}

// RequestState carries one query through the pipeline. It is owned
// exclusively by the engine for the request's lifetime: stages return
// deltas, the engine merges them.
type RequestState struct {
	RequestID  string     `json:"request_id"`
	SessionID  string     `json:"session_id,omitempty"`
	Query      string     `json:"query"`
	Domain     Domain     `json:"-"`
	Intent     Intent     `json:"-"`
	Complexity Complexity `json:"-"`

	SubQueries  map[string]string          `json:"sub_queries,omitempty"`
	TaskResults map[string]ExecutionResult `json:"task_results,omitempty"`
	Combined    *CombinedResult            `json:"combined_result,omitempty"`

	ExecutionPath []string `json:"execution_path"`
	Error         string   `json:"error,omitempty"`
	Suggestions   []string `json:"clarification_suggestions,omitempty"`
}

// Visited appends a stage name to the execution path.
func (s *RequestState) Visited(stage string) {
	s.ExecutionPath = append(s.ExecutionPath, stage)
}

// Failf sets the request's fatal error. Only the aggregator's
// all-backends-failed path and an empty query use this.
func (s *RequestState) Failf(format string, args ...any) {
	s.Error = fmt.Sprintf(format, args...)
}
