package domain

// Source is one tool-retrieved citation evidencing a metric's grounding in
// the literature. It is a value object: constructed by the schema
// validator, never mutated afterwards, and owned exclusively by the metric
// that cites it.
type Source struct {
	// Title is the retrieved document title, non-empty after trimming.
	Title string `json:"title" validate:"required"`

	// URL is the document location. Must parse as an absolute http(s)
	// URI with a host.
	URL string `json:"url" validate:"required,url"`
}

// Validate checks the source standalone, outside a batch pass. The schema
// validator performs the same checks with record/field attribution.
func (s Source) Validate() error {
	if _, err := checkGeneralText(s.Title, MaxSourceTitleLen); err != nil {
		return &SchemaViolation{Index: -1, Field: "title", Value: s.Title, Reason: err.Error()}
	}
	if _, err := checkAbsoluteURL(s.URL); err != nil {
		return &SchemaViolation{Index: -1, Field: "url", Value: s.URL, Reason: err.Error()}
	}
	return nil
}
