package domain //nolint:testpackage // Need access to unexported helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTaskContext() TaskContext {
	return TaskContext{
		TaskDomain:          "healthcare",
		TaskField:           "oncology",
		TaskType:            "question answering",
		NumMetrics:          10,
		MinSourcesPerMetric: 3,
	}
}

func TestDefaultConstraints(t *testing.T) {
	c := DefaultConstraints()
	assert.Equal(t, DefaultNumMetrics, c.NumMetrics)
	assert.Equal(t, DefaultMinSourcesPerMetric, c.MinSourcesPerMetric)
	require.NoError(t, c.Validate())
}

func TestConstraintSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       ConstraintSet
		wantErr bool
	}{
		{"minimum bounds", ConstraintSet{NumMetrics: 1, MinSourcesPerMetric: 1}, false},
		{"maximum bounds", ConstraintSet{NumMetrics: 50, MinSourcesPerMetric: 20}, false},
		{"num metrics too low", ConstraintSet{NumMetrics: 0, MinSourcesPerMetric: 1}, true},
		{"num metrics too high", ConstraintSet{NumMetrics: 51, MinSourcesPerMetric: 1}, true},
		{"min sources too low", ConstraintSet{NumMetrics: 1, MinSourcesPerMetric: 0}, true},
		{"min sources too high", ConstraintSet{NumMetrics: 1, MinSourcesPerMetric: 21}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				var cfgErr *ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTaskContext_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*TaskContext)
		wantErr bool
	}{
		{"valid", func(_ *TaskContext) {}, false},
		{"domain with digits", func(c *TaskContext) { c.TaskDomain = "web3" }, true},
		{"field with punctuation", func(c *TaskContext) { c.TaskField = "Q&A" }, true},
		{"single-char type", func(c *TaskContext) { c.TaskType = "x" }, true},
		{"empty domain", func(c *TaskContext) { c.TaskDomain = "" }, true},
		{"num metrics out of range", func(c *TaskContext) { c.NumMetrics = 99 }, true},
		{"min sources out of range", func(c *TaskContext) { c.MinSourcesPerMetric = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := validTaskContext()
			tt.modify(&ctx)

			err := ctx.Validate()
			if tt.wantErr {
				var cfgErr *ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, KindConfiguration, cfgErr.Kind())
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTaskContext_Constraints(t *testing.T) {
	ctx := validTaskContext()
	c := ctx.Constraints()
	assert.Equal(t, ctx.NumMetrics, c.NumMetrics)
	assert.Equal(t, ctx.MinSourcesPerMetric, c.MinSourcesPerMetric)
}
