// Package workflow orchestrates metric generation using Temporal
// workflows. Control flow is deterministic; all side effects live in
// activities.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/hefgen/metricgen/internal/domain"
	"github.com/hefgen/metricgen/internal/generation"
)

const (
	// generationTimeout bounds one full generation pass, including
	// literature search and model attempts.
	generationTimeout = 15 * time.Minute

	// maxActivityAttempts caps regeneration at the Temporal level, on
	// top of the planner's own in-activity attempts.
	maxActivityAttempts = 3
)

// MetricsWorkflow runs one metric generation pass for a task and
// returns the validated metrics. Invalid task input fails the workflow
// without retries; transient generation trouble is retried per the
// activity retry policy.
func MetricsWorkflow(
	ctx workflow.Context,
	task domain.TaskContext,
) (*generation.GenerateMetricsOutput, error) {
	// Version gate enables safe evolution of the orchestration logic.
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "metrics.v", workflow.DefaultVersion, currentVersion)

	if err := task.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid task context",
			"Validation",
			err,
		)
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: generationTimeout,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    maxActivityAttempts,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var activities *generation.Activities
	var output generation.GenerateMetricsOutput
	err := workflow.ExecuteActivity(ctx, activities.GenerateMetrics, generation.GenerateMetricsInput{
		Task: task,
	}).Get(ctx, &output)
	if err != nil {
		return nil, err
	}

	return &output, nil
}
