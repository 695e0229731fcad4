package orchestrator

import (
	"dataweave/internal/models"
	"fmt"
	"strings"
)

// backendOrder fixes the reporting order of data sources in combined
// results regardless of goroutine completion order.
var backendOrder = []string{models.BackendSQL, models.BackendNoSQL, models.BackendFiles}

// Combine folds per-backend results into a single response. Success is the
// OR over task successes: one working backend is enough for a useful answer.
// Failed slots stay in Backends so callers can see which source degraded.
func Combine(results map[string]models.ExecutionResult) models.CombinedResult {
	combined := models.CombinedResult{
		Backends: make(map[string]models.ExecutionResult, len(results)),
	}

	var failures []string
	for _, backend := range backendOrder {
		result, ok := results[backend]
		if !ok {
			continue
		}
		combined.Backends[backend] = result
		if result.Success {
			combined.Success = true
			combined.DataSources = append(combined.DataSources, backend)
		} else {
			failures = append(failures, fmt.Sprintf("%s: %s", backend, result.Error))
		}
	}

	if !combined.Success {
		if len(failures) == 0 {
			combined.Error = "no backend produced a result"
		} else {
			combined.Error = "all backends failed: " + strings.Join(failures, "; ")
		}
	}
	return combined
}
