package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Allowed scale pairs. Any other (min, max) combination is rejected.
const (
	ScaleLikertMin = 1
	ScaleLikertMax = 5
	ScaleBinaryMin = 0
	ScaleBinaryMax = 1
)

// Metric is one validated evaluation dimension: a bounded numeric scale, a
// description of what it measures, why it matters for the task, the
// sources evidencing it, and the search queries that surfaced them.
//
// Metrics are constructed exclusively by ParseMetric from a raw candidate
// record and are never mutated after validation passes. The JSON shape is
// the documented output contract:
//
//	{"metric": ..., "min": ..., "max": ..., "description": ...,
//	 "relevance": ..., "sources": [...], "search_queries": [...]}
type Metric struct {
	Name          string   `json:"metric" validate:"required,alphaspace,max=100"`
	Min           int      `json:"min"`
	Max           int      `json:"max"`
	Description   string   `json:"description" validate:"required,max=500"`
	Relevance     string   `json:"relevance" validate:"required,max=500"`
	Sources       []Source `json:"sources" validate:"required,min=1,dive"`
	SearchQueries []string `json:"search_queries" validate:"required,min=1,dive,required"`
}

// Scale returns the (min, max) bounds pair.
func (m *Metric) Scale() (min, max int) { return m.Min, m.Max }

// Validate re-runs the full schema rules on an already-constructed metric.
// Validation is idempotent: any metric produced by ParseMetric passes.
func (m *Metric) Validate() error {
	if err := validate.Struct(m); err != nil {
		return &SchemaViolation{Index: -1, Field: "metric", Value: m.Name, Reason: err.Error()}
	}
	_, err := ParseMetric(-1, m.Raw())
	return err
}

// Raw converts the metric back to its untyped candidate form, primarily so
// callers can demonstrate or test revalidation round-trips.
func (m *Metric) Raw() RawMetric {
	minV, maxV := float64(m.Min), float64(m.Max)
	raw := RawMetric{
		Name:          m.Name,
		Min:           &minV,
		Max:           &maxV,
		Description:   m.Description,
		Relevance:     m.Relevance,
		Sources:       make([]RawSource, len(m.Sources)),
		SearchQueries: append([]string(nil), m.SearchQueries...),
	}
	for i, s := range m.Sources {
		raw.Sources[i] = RawSource{Title: s.Title, URL: s.URL}
	}
	return raw
}

// RawSource is one untrusted {title, url} record as produced by the
// generator, before any validation.
type RawSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RawMetric is one untrusted candidate record from the generator. Scale
// bounds are pointers so that absent fields are distinguishable from
// zero values, and float64 so that non-integer bounds can be rejected
// rather than silently truncated.
type RawMetric struct {
	Name          string      `json:"metric"`
	Min           *float64    `json:"min"`
	Max           *float64    `json:"max"`
	Description   string      `json:"description"`
	Relevance     string      `json:"relevance"`
	Sources       []RawSource `json:"sources"`
	SearchQueries []string    `json:"search_queries"`
}

// DecodeRawMetrics parses a JSON array of candidate metric objects.
// Any malformed input is reported as a SchemaViolation rather than a raw
// decoding fault, so callers see a single error taxonomy.
func DecodeRawMetrics(data []byte) ([]RawMetric, error) {
	var raws []RawMetric
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &SchemaViolation{
			Index:  -1,
			Field:  "metrics",
			Value:  truncateForError(string(data)),
			Reason: fmt.Sprintf("not a JSON array of metric objects: %v", err),
		}
	}
	return raws, nil
}

// ParseMetric validates one raw record and constructs the typed Metric.
// Checks run in a fixed order and fail fast on the first violation, so an
// identical bad input always yields the identical error. Text fields are
// trimmed in the returned metric; nothing else is repaired.
//
// Duplicate source URLs are detected by exact string comparison after
// trimming (no case folding or trailing-slash normalization).
func ParseMetric(index int, raw RawMetric) (Metric, error) {
	fail := func(field, value, reason string) (Metric, error) {
		return Metric{}, &SchemaViolation{Index: index, Field: field, Value: value, Reason: reason}
	}

	name, err := checkMetricName(raw.Name)
	if err != nil {
		return fail("metric", raw.Name, err.Error())
	}

	minV, maxV, scaleErr := checkScale(raw.Min, raw.Max)
	if scaleErr != nil {
		return fail(scaleErr.field, scaleErr.value, scaleErr.reason)
	}

	description, err := checkGeneralText(raw.Description, MaxTextLen)
	if err != nil {
		return fail("description", raw.Description, err.Error())
	}
	relevance, err := checkGeneralText(raw.Relevance, MaxTextLen)
	if err != nil {
		return fail("relevance", raw.Relevance, err.Error())
	}

	if len(raw.Sources) == 0 {
		return fail("sources", "[]", "must contain at least one source")
	}
	sources := make([]Source, len(raw.Sources))
	seenURLs := make(map[string]struct{}, len(raw.Sources))
	for i, rs := range raw.Sources {
		title, err := checkGeneralText(rs.Title, MaxSourceTitleLen)
		if err != nil {
			return fail(fmt.Sprintf("sources[%d].title", i), rs.Title, err.Error())
		}
		u, err := checkAbsoluteURL(rs.URL)
		if err != nil {
			return fail(fmt.Sprintf("sources[%d].url", i), rs.URL, err.Error())
		}
		if _, dup := seenURLs[u]; dup {
			return fail(fmt.Sprintf("sources[%d].url", i), u, "duplicate source url within metric")
		}
		seenURLs[u] = struct{}{}
		sources[i] = Source{Title: title, URL: u}
	}

	if len(raw.SearchQueries) == 0 {
		return fail("search_queries", "[]", "must contain at least one query")
	}
	queries := make([]string, len(raw.SearchQueries))
	for i, q := range raw.SearchQueries {
		trimmed := strings.TrimSpace(q)
		if trimmed == "" {
			return fail(fmt.Sprintf("search_queries[%d]", i), q, "must be non-empty")
		}
		queries[i] = trimmed
	}

	return Metric{
		Name:          name,
		Min:           minV,
		Max:           maxV,
		Description:   description,
		Relevance:     relevance,
		Sources:       sources,
		SearchQueries: queries,
	}, nil
}

// scaleFault carries field attribution for a scale check failure.
type scaleFault struct {
	field  string
	value  string
	reason string
}

// checkScale validates the (min, max) pair: both present, both integers,
// min < max, and the pair equal to (1,5) or (0,1) exactly.
func checkScale(rawMin, rawMax *float64) (min, max int, fault *scaleFault) {
	if rawMin == nil {
		return 0, 0, &scaleFault{field: "min", value: "", reason: "is missing"}
	}
	if rawMax == nil {
		return 0, 0, &scaleFault{field: "max", value: "", reason: "is missing"}
	}
	if *rawMin != math.Trunc(*rawMin) {
		return 0, 0, &scaleFault{field: "min", value: formatFloat(*rawMin), reason: "must be an integer"}
	}
	if *rawMax != math.Trunc(*rawMax) {
		return 0, 0, &scaleFault{field: "max", value: formatFloat(*rawMax), reason: "must be an integer"}
	}
	minV, maxV := int(*rawMin), int(*rawMax)
	if minV >= maxV {
		return 0, 0, &scaleFault{
			field:  "scale",
			value:  formatScale(minV, maxV),
			reason: "min must be strictly less than max",
		}
	}
	binary := minV == ScaleBinaryMin && maxV == ScaleBinaryMax
	likert := minV == ScaleLikertMin && maxV == ScaleLikertMax
	if !binary && !likert {
		return 0, 0, &scaleFault{
			field:  "scale",
			value:  formatScale(minV, maxV),
			reason: "allowed pairs are (1,5) or (0,1)",
		}
	}
	return minV, maxV, nil
}

func formatScale(min, max int) string { return fmt.Sprintf("(%d,%d)", min, max) }

func formatFloat(f float64) string { return fmt.Sprintf("%g", f) }

// truncateForError bounds a received value embedded in an error message.
func truncateForError(s string) string {
	const maxLen = 120
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
