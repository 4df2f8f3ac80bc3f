package domain //nolint:testpackage // Need access to unexported helpers

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawMetricNamed builds a valid candidate record with the given name and
// source count, each source carrying a distinct URL.
func rawMetricNamed(name string, numSources int) RawMetric {
	raw := validRawMetric()
	raw.Name = name
	raw.Sources = make([]RawSource, numSources)
	for i := range raw.Sources {
		raw.Sources[i] = RawSource{
			Title: fmt.Sprintf("Paper %s %d", name, i),
			URL:   fmt.Sprintf("https://arxiv.org/abs/24%02d.%05d", i, len(name)*100+i),
		}
	}
	return raw
}

func TestValidateBatch_Acceptance(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 2, MinSourcesPerMetric: 1}
	raws := []RawMetric{
		rawMetricNamed("Accuracy", 1),
		rawMetricNamed("Clarity", 1),
	}

	batch, err := ValidateBatch(raws, constraints)
	require.NoError(t, err)
	require.NotNil(t, batch)

	assert.Equal(t, 2, batch.Len())
	assert.Equal(t, "Accuracy", batch.Metrics[0].Name)
	assert.Equal(t, "Clarity", batch.Metrics[1].Name)
	assert.Equal(t, constraints, batch.Constraints)
}

func TestValidateBatch_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name        string
		constraints ConstraintSet
		wantField   string
	}{
		{"zero metrics", ConstraintSet{NumMetrics: 0, MinSourcesPerMetric: 3}, "num_metrics"},
		{"too many metrics", ConstraintSet{NumMetrics: 51, MinSourcesPerMetric: 3}, "num_metrics"},
		{"zero min sources", ConstraintSet{NumMetrics: 10, MinSourcesPerMetric: 0}, "min_sources_per_metric"},
		{"too many min sources", ConstraintSet{NumMetrics: 10, MinSourcesPerMetric: 21}, "min_sources_per_metric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBatch([]RawMetric{rawMetricNamed("Accuracy", 3)}, tt.constraints)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Equal(t, KindConfiguration, cfgErr.Kind())
		})
	}
}

func TestValidateBatch_CountMismatch(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 10, MinSourcesPerMetric: 1}

	names := []string{
		"Accuracy", "Clarity", "Coherence", "Completeness", "Fluency",
		"Helpfulness", "Relevance", "Safety", "Specificity",
	}
	raws := make([]RawMetric, len(names))
	for i, n := range names {
		raws[i] = rawMetricNamed(n, 1)
	}

	_, err := ValidateBatch(raws, constraints)

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)
	require.Len(t, report.Violations, 1)

	var mismatch *CountMismatchError
	require.ErrorAs(t, report.Violations[0], &mismatch)
	assert.Equal(t, 10, mismatch.Expected)
	assert.Equal(t, 9, mismatch.Actual)
}

func TestValidateBatch_NeverTruncatesOversizedBatch(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 2, MinSourcesPerMetric: 1}
	raws := []RawMetric{
		rawMetricNamed("Accuracy", 1),
		rawMetricNamed("Clarity", 1),
		rawMetricNamed("Fluency", 1),
	}

	batch, err := ValidateBatch(raws, constraints)
	assert.Nil(t, batch)

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)
	assert.True(t, report.HasKind(KindCountMismatch))
}

func TestValidateBatch_InsufficientSources(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 2, MinSourcesPerMetric: 5}
	raws := []RawMetric{
		rawMetricNamed("Accuracy", 3),
		rawMetricNamed("Clarity", 5),
	}

	_, err := ValidateBatch(raws, constraints)

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)

	offenders := report.ByKind(KindInsufficientSources)
	require.Len(t, offenders, 1)

	var insufficient *InsufficientSourcesError
	require.ErrorAs(t, offenders[0], &insufficient)
	assert.Equal(t, "Accuracy", insufficient.Metric)
	assert.Equal(t, 3, insufficient.Actual)
	assert.Equal(t, 5, insufficient.Required)
}

func TestValidateBatch_DuplicateNames(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 3, MinSourcesPerMetric: 1}
	raws := []RawMetric{
		rawMetricNamed("Clarity", 1),
		rawMetricNamed("Accuracy", 1),
		rawMetricNamed("Clarity", 2),
	}

	_, err := ValidateBatch(raws, constraints)

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)

	var dup *DuplicateMetricNameError
	require.ErrorAs(t, report.ByKind(KindDuplicateName)[0], &dup)
	assert.Equal(t, []string{"Clarity"}, dup.Names)
}

func TestValidateBatch_NameUniquenessIsCaseSensitive(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 2, MinSourcesPerMetric: 1}
	raws := []RawMetric{
		rawMetricNamed("Clarity", 1),
		rawMetricNamed("clarity", 1),
	}

	// Exact-match comparison: differing case is two distinct names.
	batch, err := ValidateBatch(raws, constraints)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Len())
}

func TestValidateBatch_SchemaFailuresCollectedAcrossRecords(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 3, MinSourcesPerMetric: 1}

	bad1 := rawMetricNamed("Accuracy", 1)
	bad1.Name = "Accuracy 2"
	good := rawMetricNamed("Clarity", 1)
	bad2 := rawMetricNamed("Fluency", 1)
	bad2.Min = f64(0)
	bad2.Max = f64(10)

	_, err := ValidateBatch([]RawMetric{bad1, good, bad2}, constraints)

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)
	require.Len(t, report.Violations, 2)

	first := report.Violations[0].(*SchemaViolation)
	second := report.Violations[1].(*SchemaViolation)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "metric", first.Field)
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "scale", second.Field)

	// Batch-level checks are withheld while any record is malformed.
	assert.False(t, report.HasKind(KindCountMismatch))
}

func TestValidateBatch_AggregatesBatchLevelViolations(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 3, MinSourcesPerMetric: 2}
	raws := []RawMetric{
		rawMetricNamed("Clarity", 1), // too few sources
		rawMetricNamed("Clarity", 2), // duplicate name
	}

	_, err := ValidateBatch(raws, constraints)

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)

	// One pass reports the count mismatch, the source shortfall, and the
	// duplicate name together.
	assert.True(t, report.HasKind(KindCountMismatch))
	assert.True(t, report.HasKind(KindInsufficientSources))
	assert.True(t, report.HasKind(KindDuplicateName))
	assert.Len(t, report.Violations, 3)
}

func TestValidateBatch_Idempotent(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 2, MinSourcesPerMetric: 1}
	raws := []RawMetric{
		rawMetricNamed("Accuracy", 2),
		rawMetricNamed("Clarity", 1),
	}

	batch, err := ValidateBatch(raws, constraints)
	require.NoError(t, err)

	revalidated, err := ValidateBatch(batch.Raw(), constraints)
	require.NoError(t, err)
	assert.Equal(t, batch, revalidated)
}

func TestBatch_MarshalJSON(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 1, MinSourcesPerMetric: 1}
	batch, err := ValidateBatch([]RawMetric{rawMetricNamed("Accuracy", 1)}, constraints)
	require.NoError(t, err)

	data, err := json.Marshal(batch)
	require.NoError(t, err)

	// The output contract is an array of metric objects.
	var arr []map[string]any
	require.NoError(t, json.Unmarshal(data, &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, "Accuracy", arr[0]["metric"])
	assert.Equal(t, float64(1), arr[0]["min"])
	assert.Equal(t, float64(5), arr[0]["max"])
}

func TestValidateBatchJSON_RoundTrip(t *testing.T) {
	constraints := ConstraintSet{NumMetrics: 1, MinSourcesPerMetric: 1}
	batch, err := ValidateBatch([]RawMetric{rawMetricNamed("Accuracy", 1)}, constraints)
	require.NoError(t, err)

	data, err := json.Marshal(batch)
	require.NoError(t, err)

	again, err := ValidateBatchJSON(data, constraints)
	require.NoError(t, err)
	assert.Equal(t, batch.Metrics, again.Metrics)
}

func TestValidateBatchJSON_MalformedPayload(t *testing.T) {
	_, err := ValidateBatchJSON([]byte(`not json at all`), ConstraintSet{NumMetrics: 1, MinSourcesPerMetric: 1})

	var report *BatchValidationError
	require.ErrorAs(t, err, &report)
	assert.True(t, report.HasKind(KindSchema))
}

func TestBatchValidationError_MarshalJSON(t *testing.T) {
	report := &BatchValidationError{Violations: []KindedError{
		&CountMismatchError{Expected: 10, Actual: 9},
		&InsufficientSourcesError{Metric: "Accuracy", Actual: 3, Required: 5},
	}}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var arr []struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &arr))
	require.Len(t, arr, 2)
	assert.Equal(t, string(KindCountMismatch), arr[0].Kind)
	assert.Contains(t, arr[0].Message, "expected exactly 10")
	assert.Equal(t, string(KindInsufficientSources), arr[1].Kind)
}
