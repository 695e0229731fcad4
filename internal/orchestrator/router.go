package orchestrator

import (
	"context"
	"dataweave/internal/backends"
	"dataweave/internal/models"
	"dataweave/internal/services"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Router builds execution plans and dispatches tasks to backend executors.
type Router struct {
	registry    *backends.Registry
	metrics     *services.Metrics
	taskTimeout time.Duration
}

// NewRouter creates a router. metrics may be nil in tests.
func NewRouter(registry *backends.Registry, metrics *services.Metrics, taskTimeout time.Duration) *Router {
	if taskTimeout <= 0 {
		taskTimeout = 60 * time.Second
	}
	return &Router{registry: registry, metrics: metrics, taskTimeout: taskTimeout}
}

// BuildPlan maps a classified domain and its sub-queries to backend tasks.
// The returned order is stable: sql before nosql for hybrid plans.
func (r *Router) BuildPlan(domain models.Domain, subQueries map[string]string) []models.Task {
	switch domain {
	case models.DomainSQL:
		return []models.Task{{Backend: models.BackendSQL, Query: subQueries[models.BackendSQL], Status: models.TaskPending}}
	case models.DomainNoSQL:
		return []models.Task{{Backend: models.BackendNoSQL, Query: subQueries[models.BackendNoSQL], Status: models.TaskPending}}
	case models.DomainFiles:
		return []models.Task{{Backend: models.BackendFiles, Query: subQueries[models.BackendFiles], Status: models.TaskPending}}
	case models.DomainHybrid:
		return []models.Task{
			{Backend: models.BackendSQL, Query: subQueries[models.BackendSQL], Status: models.TaskPending},
			{Backend: models.BackendNoSQL, Query: subQueries[models.BackendNoSQL], Status: models.TaskPending},
		}
	case models.DomainUnclear:
		return nil
	}
	return nil
}

// Dispatch runs every task concurrently and blocks until all finish.
// Each task gets its own timeout; an unavailable backend fails immediately
// without consuming its timeout budget.
func (r *Router) Dispatch(ctx context.Context, tasks []models.Task) map[string]models.ExecutionResult {
	results := make(map[string]models.ExecutionResult, len(tasks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range tasks {
		task := tasks[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("❌ [ROUTER] Panic in %s task: %v\n%s", task.Backend, rec, debug.Stack())
					mu.Lock()
					results[task.Backend] = models.ExecutionResult{
						Success: false,
						Error:   "internal error during execution",
					}
					mu.Unlock()
				}
			}()

			result := r.runTask(ctx, task)
			mu.Lock()
			results[task.Backend] = result
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

func (r *Router) runTask(ctx context.Context, task models.Task) models.ExecutionResult {
	executor, err := r.registry.Get(task.Backend)
	if err != nil {
		r.observeFailure(task.Backend, "unknown_backend")
		return models.ExecutionResult{Success: false, Error: "backend unavailable"}
	}

	if !executor.Available() {
		log.Printf("⚠️  [ROUTER] Backend %s unavailable, failing task", task.Backend)
		r.observeFailure(task.Backend, "unavailable")
		return models.ExecutionResult{Success: false, Error: "backend unavailable"}
	}

	taskCtx, cancel := context.WithTimeout(ctx, r.taskTimeout)
	defer cancel()

	start := time.Now()
	result := executor.Execute(taskCtx, task.Query)
	elapsed := time.Since(start)

	if !result.Success && taskCtx.Err() == context.DeadlineExceeded {
		result.Error = "timeout"
		r.observeFailure(task.Backend, "timeout")
	} else if !result.Success {
		r.observeFailure(task.Backend, "execution")
	}

	if r.metrics != nil {
		r.metrics.TaskDuration.WithLabelValues(task.Backend).Observe(elapsed.Seconds())
	}
	return result
}

func (r *Router) observeFailure(backend, reason string) {
	if r.metrics != nil {
		r.metrics.TaskFailures.WithLabelValues(backend, reason).Inc()
	}
}
