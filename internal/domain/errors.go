package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind categorizes batch validation failures. Kinds let a calling
// retry loop branch on the class of defect without parsing messages.
type ErrorKind string

const (
	// KindConfiguration indicates constraint values outside their allowed
	// ranges. Fatal: the caller must fix inputs before retrying.
	KindConfiguration ErrorKind = "configuration"

	// KindSchema indicates a single metric record failed structural rules.
	KindSchema ErrorKind = "schema_violation"

	// KindCountMismatch indicates the validated metric count differs from
	// the required num_metrics.
	KindCountMismatch ErrorKind = "count_mismatch"

	// KindInsufficientSources indicates a metric has fewer sources than
	// min_sources_per_metric.
	KindInsufficientSources ErrorKind = "insufficient_sources"

	// KindDuplicateName indicates two or more metrics share a name.
	KindDuplicateName ErrorKind = "duplicate_metric_name"
)

// KindedError is implemented by every validation error the batch validator
// can surface, tagging it with its taxonomy kind.
type KindedError interface {
	error
	Kind() ErrorKind
}

// ConfigurationError reports a ConstraintSet or TaskContext field outside
// its allowed range. It is never aggregated with record-level violations:
// a bad configuration aborts validation before any record is inspected.
type ConfigurationError struct {
	Field  string `json:"field"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Kind returns KindConfiguration.
func (e *ConfigurationError) Kind() ErrorKind { return KindConfiguration }

// SchemaViolation reports a structural rule failure on one metric record.
// Index is the zero-based position of the record in the candidate batch,
// or -1 when a metric is validated standalone. Field names the offending
// field using JSON-path style (e.g. "sources[2].url").
type SchemaViolation struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *SchemaViolation) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("schema violation: field %q (got %q): %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("schema violation at metric %d: field %q (got %q): %s",
		e.Index, e.Field, e.Value, e.Reason)
}

// Kind returns KindSchema.
func (e *SchemaViolation) Kind() ErrorKind { return KindSchema }

// CountMismatchError reports that the number of validated metrics differs
// from the exact count the constraints require.
type CountMismatchError struct {
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("expected exactly %d metrics, got %d", e.Expected, e.Actual)
}

// Kind returns KindCountMismatch.
func (e *CountMismatchError) Kind() ErrorKind { return KindCountMismatch }

// InsufficientSourcesError reports one metric that cites fewer sources
// than the per-metric minimum. The batch validator emits one instance per
// offending metric so a regeneration attempt can address each of them.
type InsufficientSourcesError struct {
	Metric   string `json:"metric"`
	Actual   int    `json:"actual"`
	Required int    `json:"required"`
}

func (e *InsufficientSourcesError) Error() string {
	return fmt.Sprintf("metric %q has %d sources, but requires at least %d",
		e.Metric, e.Actual, e.Required)
}

// Kind returns KindInsufficientSources.
func (e *InsufficientSourcesError) Kind() ErrorKind { return KindInsufficientSources }

// DuplicateMetricNameError reports every metric name that appears more
// than once in the batch. Names are sorted for deterministic messages.
type DuplicateMetricNameError struct {
	Names []string `json:"names"`
}

func (e *DuplicateMetricNameError) Error() string {
	return fmt.Sprintf("duplicate metric names: %s", strings.Join(e.Names, ", "))
}

// Kind returns KindDuplicateName.
func (e *DuplicateMetricNameError) Kind() ErrorKind { return KindDuplicateName }

// BatchValidationError aggregates every violation detected in a single
// validation pass. The validator never stops at the first record-level
// defect: surfacing the complete report in one shot lets a generation
// retry loop fix all defects in its next attempt instead of discovering
// them one at a time.
type BatchValidationError struct {
	Violations []KindedError
}

func (e *BatchValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("batch validation failed: %s", e.Violations[0].Error())
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("batch validation failed with %d violations:\n  - %s",
		len(e.Violations), strings.Join(msgs, "\n  - "))
}

// ByKind returns the subset of violations tagged with the given kind.
func (e *BatchValidationError) ByKind(kind ErrorKind) []KindedError {
	var out []KindedError
	for _, v := range e.Violations {
		if v.Kind() == kind {
			out = append(out, v)
		}
	}
	return out
}

// HasKind reports whether at least one violation carries the given kind.
func (e *BatchValidationError) HasKind(kind ErrorKind) bool {
	for _, v := range e.Violations {
		if v.Kind() == kind {
			return true
		}
	}
	return false
}

// MarshalJSON renders the report as an array of kind-tagged violation
// objects, the structured form handed back across the output boundary so
// an automated retry can be driven without human intervention.
func (e *BatchValidationError) MarshalJSON() ([]byte, error) {
	type tagged struct {
		Kind    ErrorKind `json:"kind"`
		Message string    `json:"message"`
		Detail  any       `json:"detail"`
	}
	out := make([]tagged, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = tagged{Kind: v.Kind(), Message: v.Error(), Detail: v}
	}
	return json.Marshal(out)
}
