package domain

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Shared field limits. Kept here to avoid drift between the schema
// validator and the prompt that tells the generator what to produce.
const (
	// MaxMetricNameLen bounds the metric name length after trimming.
	MaxMetricNameLen = 100

	// MaxSourceTitleLen bounds a cited source title.
	MaxSourceTitleLen = 300

	// MaxTextLen bounds free-text fields (description, relevance).
	MaxTextLen = 500

	minLabelLen = 2
	maxLabelLen = 100
)

var (
	alphaSpaceRe = regexp.MustCompile(`^[A-Za-z ]+$`)
	anyLetterRe  = regexp.MustCompile(`[A-Za-z]`)
)

// validate is the package-level validator instance used for struct
// validation. The custom "alphaspace" rule backs the letters-and-spaces
// constraint on task labels and metric names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tags or nil funcs.
	if err := v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRe.MatchString(strings.TrimSpace(fl.Field().String()))
	}); err != nil {
		panic(fmt.Sprintf("domain: register alphaspace validation: %v", err))
	}
	return v
}

// checkMetricName enforces the metric-name rule: non-empty after trimming,
// letters and spaces only, bounded length. Returns the trimmed name.
func checkMetricName(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errors.New("must be a non-empty string")
	}
	if len(v) > MaxMetricNameLen {
		return "", fmt.Errorf("is too long (>%d chars)", MaxMetricNameLen)
	}
	if !alphaSpaceRe.MatchString(v) {
		return "", errors.New("must contain only letters and spaces (no digits or punctuation)")
	}
	return v, nil
}

// checkGeneralText enforces free-text sanity: non-empty after trimming,
// contains at least one letter, within maxLen. Punctuation and digits are
// allowed since paper titles and descriptions need them.
func checkGeneralText(value string, maxLen int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errors.New("must be non-empty")
	}
	if len(v) > maxLen {
		return "", fmt.Errorf("is unreasonably long (>%d chars)", maxLen)
	}
	if !anyLetterRe.MatchString(v) {
		return "", errors.New("must contain at least one letter")
	}
	return v, nil
}

// checkAbsoluteURL requires a syntactically valid absolute http(s) URL
// with a host. Returns the trimmed URL string.
func checkAbsoluteURL(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errors.New("must be non-empty")
	}
	u, err := url.Parse(v)
	if err != nil {
		return "", fmt.Errorf("is not a well-formed URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("must use http or https, got scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("must be absolute with a host")
	}
	return v, nil
}
