package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hefgen/metricgen/internal/domain"
)

const promptHashLength = 12

// systemPromptTemplate instructs the model to emit a bare JSON array of
// metric definitions satisfying every batch constraint. Output shape is
// restated twice because models drift toward wrapping objects.
const systemPromptTemplate = `You are an expert in human evaluation of large language models.

Design evaluation metrics for the following task:
- Domain: %s
- Field: %s
- Task type: %s

Produce EXACTLY %d metrics. Each metric must satisfy ALL of these rules:
- "metric": a unique name using only English letters and spaces, at most 100 characters.
- "min" and "max": an integer rating scale, either 1 to 5 (Likert) or 0 to 1 (binary). "min" must be less than "max".
- "description": what the metric measures, non-empty, at most 500 characters.
- "relevance": why this metric matters for the task above, non-empty, at most 500 characters.
- "sources": at least %d distinct literature sources, each with a non-empty "title" (at most 300 characters) and an absolute http(s) "url". Do not repeat a URL within one metric. Prefer the evidence listed below.
- "search_queries": the non-empty search queries that motivated the metric.

Respond with ONLY a JSON array of metric objects. No prose, no markdown fences, no wrapping object.`

// evidenceHeader precedes the gathered literature listing in the user
// prompt.
const evidenceHeader = "Evidence gathered from literature search (title | url):"

// repairTemplate feeds the previous attempt's validation report back to
// the model so the next attempt can correct it.
const repairTemplate = `Your previous response failed validation:

%s

Regenerate the FULL corrected JSON array. Fix every reported violation and keep everything that was already valid.`

// BuildSystemPrompt renders the system prompt for a generation attempt.
func BuildSystemPrompt(task domain.TaskContext) string {
	c := task.Constraints()
	return fmt.Sprintf(systemPromptTemplate,
		task.TaskDomain, task.TaskField, task.TaskType,
		c.NumMetrics, c.MinSourcesPerMetric)
}

// BuildUserPrompt renders the user prompt: the generation instruction
// plus the evidence listing.
func BuildUserPrompt(task domain.TaskContext, evidence []domain.Source) string {
	var b strings.Builder
	c := task.Constraints()
	fmt.Fprintf(&b, "Generate the %d evaluation metrics now.\n", c.NumMetrics)

	if len(evidence) > 0 {
		b.WriteString("\n")
		b.WriteString(evidenceHeader)
		b.WriteString("\n")
		for _, src := range evidence {
			fmt.Fprintf(&b, "- %s | %s\n", src.Title, src.URL)
		}
	}
	return b.String()
}

// BuildRepairPrompt renders the follow-up prompt after a failed
// validation attempt.
func BuildRepairPrompt(report error) string {
	return fmt.Sprintf(repairTemplate, report.Error())
}

// PromptHash returns a short stable hash of the prompt pair for audit
// correlation across attempts and retries.
func PromptHash(system, user string) string {
	hash := sha256.Sum256([]byte(system + "\x00" + user))
	return hex.EncodeToString(hash[:])[:promptHashLength]
}
