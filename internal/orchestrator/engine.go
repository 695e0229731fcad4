package orchestrator

import (
	"context"
	"dataweave/internal/logging"
	"dataweave/internal/models"
	"dataweave/internal/services"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine drives a query through the full pipeline: classification,
// decomposition, routing, execution and aggregation, with clarification as
// the exit for unroutable queries. Every collaborator is injected, so the
// engine holds no global state.
type Engine struct {
	classifier     *Classifier
	decomposer     *Decomposer
	router         *Router
	clarifier      *Clarifier
	contextMgr     *ContextManager
	metrics        *services.Metrics
	contextRecords int
}

// EngineOptions collects the engine's collaborators.
type EngineOptions struct {
	Classifier     *Classifier
	Decomposer     *Decomposer
	Router         *Router
	Clarifier      *Clarifier
	ContextManager *ContextManager
	Metrics        *services.Metrics
	ContextRecords int
}

// NewEngine wires the pipeline together.
func NewEngine(opts EngineOptions) *Engine {
	records := opts.ContextRecords
	if records <= 0 {
		records = 3
	}
	return &Engine{
		classifier:     opts.Classifier,
		decomposer:     opts.Decomposer,
		router:         opts.Router,
		clarifier:      opts.Clarifier,
		contextMgr:     opts.ContextManager,
		metrics:        opts.Metrics,
		contextRecords: records,
	}
}

// Process runs one query end to end and returns the full request state,
// including the stages the request actually visited.
func (e *Engine) Process(ctx context.Context, query, sessionID string) *models.RequestState {
	start := time.Now()
	state := &models.RequestState{
		RequestID:  uuid.New().String(),
		SessionID:  sessionID,
		Query:      strings.TrimSpace(query),
		SubQueries: make(map[string]string),
	}
	logger := logging.WithRequest(state.RequestID, sessionID)

	if state.Query == "" {
		state.Failf("query must not be empty")
		return state
	}

	history := e.history(ctx, sessionID)

	cls := e.classifier.Classify(ctx, state.Query, history)
	state.Domain = cls.Domain
	state.Intent = cls.Intent
	state.Complexity = cls.Complexity
	state.Visited("classify")
	logger.Info("query classified",
		"domain", cls.Domain.String(),
		"intent", cls.Intent.String(),
		"queryType", cls.QueryType)

	if e.metrics != nil {
		e.metrics.Requests.WithLabelValues(cls.Domain.String()).Inc()
		defer func() {
			e.metrics.RequestLatency.Observe(time.Since(start).Seconds())
		}()
	}

	if cls.Domain == models.DomainUnclear {
		combined := e.clarifier.Handle(ctx, state.Query, cls)
		state.Combined = &combined
		state.Suggestions = combined.Suggestions
		state.Visited("clarify")
		e.remember(ctx, state)
		return state
	}

	if cls.Domain == models.DomainHybrid {
		state.SubQueries = e.decomposer.Decompose(ctx, state.Query)
		state.Visited("decompose")
	} else if key, ok := cls.Domain.Key(); ok {
		state.SubQueries[key] = state.Query
	}

	tasks := e.router.BuildPlan(cls.Domain, state.SubQueries)
	if len(tasks) == 0 {
		state.Failf("no executable plan for domain %s", cls.Domain)
		return state
	}
	state.Visited("route")

	state.TaskResults = e.router.Dispatch(ctx, tasks)
	combined := Combine(state.TaskResults)
	state.Combined = &combined
	state.Visited("aggregate")

	if !combined.Success {
		state.Error = combined.Error
		logger.Warn("all backends failed", "error", combined.Error)
	} else {
		logger.Info("query completed",
			"sources", strings.Join(combined.DataSources, ","),
			"elapsed", time.Since(start).String())
	}

	e.remember(ctx, state)
	return state
}

// history loads the most recent interactions for classification context.
func (e *Engine) history(ctx context.Context, sessionID string) []models.InteractionRecord {
	if e.contextMgr == nil || sessionID == "" {
		return nil
	}
	return e.contextMgr.Recent(ctx, sessionID, e.contextRecords)
}

// History exposes a session's stored interactions, oldest first.
func (e *Engine) History(ctx context.Context, sessionID string, k int) []models.InteractionRecord {
	if e.contextMgr == nil {
		return nil
	}
	return e.contextMgr.Recent(ctx, sessionID, k)
}

func (e *Engine) remember(ctx context.Context, state *models.RequestState) {
	if e.contextMgr == nil || state.SessionID == "" {
		return
	}
	e.contextMgr.Append(ctx, state.SessionID, models.InteractionRecord{
		Query:         state.Query,
		Domain:        state.Domain.String(),
		Intent:        state.Intent.String(),
		ExecutionPath: state.ExecutionPath,
		Timestamp:     time.Now().UTC(),
	})
}
