package orchestrator

import (
	"context"
	"dataweave/internal/backends"
	"dataweave/internal/models"
	"testing"
	"time"
)

func newTestRouter(timeout time.Duration, executors ...backends.Executor) *Router {
	registry := backends.NewRegistry()
	for _, e := range executors {
		registry.Register(e.Name(), e)
	}
	return NewRouter(registry, nil, timeout)
}

func TestBuildPlan(t *testing.T) {
	subs := map[string]string{
		models.BackendSQL:   "sql sub",
		models.BackendNoSQL: "nosql sub",
		models.BackendFiles: "files sub",
	}
	r := newTestRouter(time.Second)

	tests := []struct {
		domain models.Domain
		want   []string
	}{
		{models.DomainSQL, []string{models.BackendSQL}},
		{models.DomainNoSQL, []string{models.BackendNoSQL}},
		{models.DomainFiles, []string{models.BackendFiles}},
		{models.DomainHybrid, []string{models.BackendSQL, models.BackendNoSQL}},
		{models.DomainUnclear, nil},
	}

	for _, tt := range tests {
		tasks := r.BuildPlan(tt.domain, subs)
		if len(tasks) != len(tt.want) {
			t.Errorf("%v: got %d tasks, want %d", tt.domain, len(tasks), len(tt.want))
			continue
		}
		for i, task := range tasks {
			if task.Backend != tt.want[i] {
				t.Errorf("%v: task %d backend = %s, want %s", tt.domain, i, task.Backend, tt.want[i])
			}
			if task.Query != subs[tt.want[i]] {
				t.Errorf("%v: task %d query = %q", tt.domain, i, task.Query)
			}
			if task.Status != models.TaskPending {
				t.Errorf("%v: task %d status = %s, want pending", tt.domain, i, task.Status)
			}
		}
	}
}

func TestDispatchConcurrent(t *testing.T) {
	r := newTestRouter(time.Second,
		&stubExecutor{name: models.BackendSQL, available: true, result: okResult(1), delay: 100 * time.Millisecond},
		&stubExecutor{name: models.BackendNoSQL, available: true, result: okResult(2), delay: 100 * time.Millisecond},
	)
	tasks := r.BuildPlan(models.DomainHybrid, map[string]string{
		models.BackendSQL:   "a",
		models.BackendNoSQL: "b",
	})

	start := time.Now()
	results := r.Dispatch(context.Background(), tasks)
	elapsed := time.Since(start)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[models.BackendSQL].Success || !results[models.BackendNoSQL].Success {
		t.Fatalf("expected both tasks to succeed: %+v", results)
	}
	// Sequential execution would take 200ms+.
	if elapsed > 180*time.Millisecond {
		t.Errorf("dispatch took %v, tasks do not appear to run concurrently", elapsed)
	}
}

func TestDispatchUnavailableBackend(t *testing.T) {
	r := newTestRouter(time.Second,
		&stubExecutor{name: models.BackendSQL, available: false},
	)
	results := r.Dispatch(context.Background(), []models.Task{
		{Backend: models.BackendSQL, Query: "q", Status: models.TaskPending},
	})

	got := results[models.BackendSQL]
	if got.Success {
		t.Fatal("unavailable backend must fail")
	}
	if got.Error != "backend unavailable" {
		t.Errorf("error = %q, want %q", got.Error, "backend unavailable")
	}
}

func TestDispatchUnknownBackend(t *testing.T) {
	r := newTestRouter(time.Second)
	results := r.Dispatch(context.Background(), []models.Task{
		{Backend: "tape", Query: "q", Status: models.TaskPending},
	})

	if got := results["tape"]; got.Success || got.Error != "backend unavailable" {
		t.Errorf("unknown backend result = %+v, want unavailable failure", got)
	}
}

func TestDispatchTimeout(t *testing.T) {
	r := newTestRouter(30*time.Millisecond,
		&stubExecutor{name: models.BackendSQL, available: true, result: okResult(1), delay: 500 * time.Millisecond},
	)
	results := r.Dispatch(context.Background(), []models.Task{
		{Backend: models.BackendSQL, Query: "q", Status: models.TaskPending},
	})

	got := results[models.BackendSQL]
	if got.Success {
		t.Fatal("timed-out task must fail")
	}
	if got.Error != "timeout" {
		t.Errorf("error = %q, want %q", got.Error, "timeout")
	}
}
