// Package domain implements the batch validation core: typed records for
// sources, metrics and constraints, the per-record schema validator, and
// the cross-record batch validator that decides, deterministically and
// without I/O, whether a candidate batch satisfies its constraint set.
//
// Everything in this package is pure and synchronous. Each invocation
// operates only on its own input, so concurrent validation runs need no
// coordination.
package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Batch is the normalized, fully-validated output collection: the metrics
// in their original order plus the constraint set they were validated
// against. A Batch is a terminal, read-only artifact; a new one is always
// constructed from a fresh candidate.
type Batch struct {
	Metrics     []Metric      `json:"metrics"`
	Constraints ConstraintSet `json:"constraints"`
}

// Len returns the number of metrics in the batch.
func (b *Batch) Len() int { return len(b.Metrics) }

// Raw converts the batch back to untyped candidate records. Revalidating
// the result against the same constraints succeeds and yields an
// equivalent batch.
func (b *Batch) Raw() []RawMetric {
	raws := make([]RawMetric, len(b.Metrics))
	for i := range b.Metrics {
		raws[i] = b.Metrics[i].Raw()
	}
	return raws
}

// MarshalJSON renders the documented output contract: a JSON array of
// metric objects. The constraint set is caller-supplied configuration and
// is not part of the serialized output.
func (b *Batch) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Metrics)
}

// ValidateBatch runs the full validation pass over a candidate batch:
//
//  1. The constraint set itself is validated; a violation aborts with a
//     ConfigurationError before any record is inspected.
//  2. Every raw record goes through the schema validator. All per-record
//     failures are collected rather than stopping at the first.
//  3. Only if every record parsed: the metric count must equal
//     NumMetrics exactly, each metric must cite at least
//     MinSourcesPerMetric sources, and metric names must be pairwise
//     distinct (exact comparison after trimming, case-sensitive). These
//     checks all run and their violations are aggregated.
//
// On success the normalized Batch is returned. On failure the error is a
// *BatchValidationError carrying every violation found in this pass;
// nothing is dropped, truncated, or repaired to force a fit.
func ValidateBatch(raws []RawMetric, constraints ConstraintSet) (*Batch, error) {
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	var violations []KindedError

	metrics := make([]Metric, 0, len(raws))
	for i, raw := range raws {
		m, err := ParseMetric(i, raw)
		if err != nil {
			// ParseMetric only returns *SchemaViolation.
			violations = append(violations, err.(*SchemaViolation))
			continue
		}
		metrics = append(metrics, m)
	}
	if len(violations) > 0 {
		return nil, &BatchValidationError{Violations: violations}
	}

	if len(metrics) != constraints.NumMetrics {
		violations = append(violations, &CountMismatchError{
			Expected: constraints.NumMetrics,
			Actual:   len(metrics),
		})
	}

	for i := range metrics {
		if n := len(metrics[i].Sources); n < constraints.MinSourcesPerMetric {
			violations = append(violations, &InsufficientSourcesError{
				Metric:   metrics[i].Name,
				Actual:   n,
				Required: constraints.MinSourcesPerMetric,
			})
		}
	}

	if dupes := duplicateNames(metrics); len(dupes) > 0 {
		violations = append(violations, &DuplicateMetricNameError{Names: dupes})
	}

	if len(violations) > 0 {
		return nil, &BatchValidationError{Violations: violations}
	}

	return &Batch{Metrics: metrics, Constraints: constraints}, nil
}

// ValidateBatchJSON decodes a JSON array of candidate records and
// validates it. Decoding failures surface as a single-violation
// *BatchValidationError so callers see one error taxonomy end to end.
func ValidateBatchJSON(data []byte, constraints ConstraintSet) (*Batch, error) {
	raws, err := DecodeRawMetrics(data)
	if err != nil {
		if err := constraints.Validate(); err != nil {
			return nil, err
		}
		return nil, &BatchValidationError{Violations: []KindedError{err.(*SchemaViolation)}}
	}
	return ValidateBatch(raws, constraints)
}

// duplicateNames returns the sorted set of metric names appearing more
// than once. Comparison is exact after trimming; ParseMetric has already
// trimmed the names.
func duplicateNames(metrics []Metric) []string {
	seen := make(map[string]struct{}, len(metrics))
	dupeSet := make(map[string]struct{})
	for i := range metrics {
		name := strings.TrimSpace(metrics[i].Name)
		if _, ok := seen[name]; ok {
			dupeSet[name] = struct{}{}
			continue
		}
		seen[name] = struct{}{}
	}
	if len(dupeSet) == 0 {
		return nil
	}
	dupes := make([]string, 0, len(dupeSet))
	for name := range dupeSet {
		dupes = append(dupes, name)
	}
	sort.Strings(dupes)
	return dupes
}
