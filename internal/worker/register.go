package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/hefgen/metricgen/internal/generation"
	"github.com/hefgen/metricgen/internal/workflow"
)

// RegisterAll registers the metrics workflow and its activities with
// the Temporal worker. Call once during worker startup before the
// worker runs; registration is not thread-safe.
func RegisterAll(w sdkworker.Worker, planner *generation.Planner) {
	activities := generation.NewActivities(planner)

	w.RegisterWorkflow(workflow.MetricsWorkflow)
	w.RegisterActivity(activities.GenerateMetrics)
}
