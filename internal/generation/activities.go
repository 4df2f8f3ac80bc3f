package generation

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/hefgen/metricgen/internal/domain"
	"github.com/hefgen/metricgen/internal/llm"
)

// GenerateMetricsInput is the activity input: the task to design
// metrics for.
type GenerateMetricsInput struct {
	Task domain.TaskContext `json:"task"`
}

// GenerateMetricsOutput is the activity result: the accepted metrics
// plus audit metadata.
type GenerateMetricsOutput struct {
	Metrics      []domain.Metric `json:"metrics"`
	Attempts     int             `json:"attempts"`
	PromptHash   string          `json:"prompt_hash"`
	RequestIDs   []string        `json:"request_ids"`
	QueryLogPath string          `json:"query_log_path,omitempty"`
	Usage        llm.Usage       `json:"usage"`
}

// Activities exposes the generation planner as Temporal activities.
type Activities struct {
	planner *Planner
}

// NewActivities wraps a planner for worker registration.
func NewActivities(planner *Planner) *Activities {
	return &Activities{planner: planner}
}

// GenerateMetrics runs one full generation pass for the task.
//
// Error classification drives the Temporal retry policy: bad task input
// is non-retryable, exhausted validation attempts and transient provider
// trouble are retryable so a fresh activity attempt can regenerate, and
// permanent provider faults (auth, quota) are non-retryable.
func (a *Activities) GenerateMetrics(
	ctx context.Context,
	input GenerateMetricsInput,
) (*GenerateMetricsOutput, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()
	logger.Info("Starting GenerateMetrics",
		"task_domain", input.Task.TaskDomain,
		"task_type", input.Task.TaskType)

	result, err := a.planner.Generate(ctx, input.Task)
	if err != nil {
		return nil, classify(err)
	}

	logger.Info("GenerateMetrics completed",
		"metrics", result.Batch.Len(),
		"attempts", result.Attempts,
		"latency_ms", time.Since(start).Milliseconds())

	return &GenerateMetricsOutput{
		Metrics:      result.Batch.Metrics,
		Attempts:     result.Attempts,
		PromptHash:   result.PromptHash,
		RequestIDs:   result.RequestIDs,
		QueryLogPath: result.QueryLogPath,
		Usage:        result.Usage,
	}, nil
}

// classify maps planner errors onto Temporal retry semantics.
func classify(err error) error {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return nonRetryable("GenerateMetrics", err, "invalid task configuration")
	}

	var provErr *llm.ProviderError
	if errors.As(err, &provErr) && !provErr.IsRetryable() {
		return nonRetryable("GenerateMetrics", err, provErr.Message)
	}

	if errors.Is(err, ErrAttemptsExhausted) {
		return retryable("GenerateMetrics", err, "all attempts produced invalid batches")
	}

	return retryable("GenerateMetrics", err, "generation failed")
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal retryable application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
