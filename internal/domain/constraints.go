package domain

import "fmt"

// Default batch requirements, mirrored in the generation prompt.
const (
	DefaultNumMetrics          = 10
	DefaultMinSourcesPerMetric = 3

	MinNumMetrics = 1
	MaxNumMetrics = 50

	MinSourcesLowerBound = 1
	MinSourcesUpperBound = 20
)

// ConstraintSet is the immutable pair of batch-level requirements a
// candidate batch must satisfy. It is supplied by the caller per
// invocation and never derived from the batch itself.
type ConstraintSet struct {
	// NumMetrics is the exact number of metrics the batch must contain.
	NumMetrics int `json:"num_metrics" validate:"required,min=1,max=50"`

	// MinSourcesPerMetric is the minimum source count each metric must
	// cite.
	MinSourcesPerMetric int `json:"min_sources_per_metric" validate:"required,min=1,max=20"`
}

// DefaultConstraints returns the standard batch requirements: ten metrics,
// three sources each.
func DefaultConstraints() ConstraintSet {
	return ConstraintSet{
		NumMetrics:          DefaultNumMetrics,
		MinSourcesPerMetric: DefaultMinSourcesPerMetric,
	}
}

// Validate checks the constraint ranges. Violations are fatal
// configuration errors: the caller must fix inputs before retrying.
func (c ConstraintSet) Validate() error {
	if c.NumMetrics < MinNumMetrics || c.NumMetrics > MaxNumMetrics {
		return &ConfigurationError{
			Field:  "num_metrics",
			Value:  c.NumMetrics,
			Reason: fmt.Sprintf("must be between %d and %d", MinNumMetrics, MaxNumMetrics),
		}
	}
	if c.MinSourcesPerMetric < MinSourcesLowerBound || c.MinSourcesPerMetric > MinSourcesUpperBound {
		return &ConfigurationError{
			Field:  "min_sources_per_metric",
			Value:  c.MinSourcesPerMetric,
			Reason: fmt.Sprintf("must be between %d and %d", MinSourcesLowerBound, MinSourcesUpperBound),
		}
	}
	return nil
}

// TaskContext carries the evaluation task labels and the generation
// controls for one run. Labels describe the task the metrics will grade
// (e.g. domain "healthcare", field "oncology", type "question answering")
// and feed directly into the generation prompt.
type TaskContext struct {
	TaskDomain string `json:"task_domain" validate:"required,alphaspace,min=2,max=100"`
	TaskField  string `json:"task_field" validate:"required,alphaspace,min=2,max=100"`
	TaskType   string `json:"task_type" validate:"required,alphaspace,min=2,max=100"`

	NumMetrics          int `json:"num_metrics" validate:"required,min=1,max=50"`
	MinSourcesPerMetric int `json:"min_sources_per_metric" validate:"required,min=1,max=20"`
}

// Constraints extracts the batch requirements from the task context.
func (t TaskContext) Constraints() ConstraintSet {
	return ConstraintSet{
		NumMetrics:          t.NumMetrics,
		MinSourcesPerMetric: t.MinSourcesPerMetric,
	}
}

// Validate checks label format (letters and spaces, 2-100 chars) and the
// control ranges. Any failure is a ConfigurationError.
func (t TaskContext) Validate() error {
	if err := validate.Struct(t); err != nil {
		return &ConfigurationError{
			Field:  "task_context",
			Value:  fmt.Sprintf("%s/%s/%s", t.TaskDomain, t.TaskField, t.TaskType),
			Reason: err.Error(),
		}
	}
	return t.Constraints().Validate()
}
