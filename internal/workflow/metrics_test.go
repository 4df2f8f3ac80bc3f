package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/hefgen/metricgen/internal/domain"
	"github.com/hefgen/metricgen/internal/generation"
)

func validTask() domain.TaskContext {
	return domain.TaskContext{
		TaskDomain:          "healthcare",
		TaskField:           "radiology",
		TaskType:            "report generation",
		NumMetrics:          2,
		MinSourcesPerMetric: 1,
	}
}

func TestMetricsWorkflow(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}

	t.Run("returns activity output", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		var activities *generation.Activities
		want := &generation.GenerateMetricsOutput{
			Metrics: []domain.Metric{
				{Name: "Accuracy", Min: 1, Max: 5},
				{Name: "Clarity", Min: 1, Max: 5},
			},
			Attempts:   1,
			PromptHash: "abc123def456",
		}
		env.RegisterActivity(activities.GenerateMetrics)
		env.OnActivity(activities.GenerateMetrics, mock.Anything, generation.GenerateMetricsInput{
			Task: validTask(),
		}).Return(want, nil)

		env.ExecuteWorkflow(MetricsWorkflow, validTask())

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var got generation.GenerateMetricsOutput
		require.NoError(t, env.GetWorkflowResult(&got))
		assert.Equal(t, *want, got)
	})

	t.Run("invalid task fails without activity call", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		task := validTask()
		task.NumMetrics = 0

		env.ExecuteWorkflow(MetricsWorkflow, task)

		require.True(t, env.IsWorkflowCompleted())
		err := env.GetWorkflowError()
		require.Error(t, err)

		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Validation", appErr.Type())
		assert.True(t, appErr.NonRetryable())
	})

	t.Run("non-retryable activity error fails the workflow", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		var activities *generation.Activities
		env.RegisterActivity(activities.GenerateMetrics)
		env.OnActivity(activities.GenerateMetrics, mock.Anything, mock.Anything).
			Return(nil, temporal.NewNonRetryableApplicationError(
				"invalid api key", "GenerateMetrics", nil))

		env.ExecuteWorkflow(MetricsWorkflow, validTask())

		require.True(t, env.IsWorkflowCompleted())
		err := env.GetWorkflowError()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid api key")
	})
}
