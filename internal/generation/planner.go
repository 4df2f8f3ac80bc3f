// Package generation turns a task context into a validated batch of
// evaluation metrics. The planner gathers literature evidence through
// the search tools, prompts the model, and validates each attempt,
// feeding violation reports back until a batch passes or attempts run
// out.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hefgen/metricgen/internal/domain"
	"github.com/hefgen/metricgen/internal/llm"
	"github.com/hefgen/metricgen/internal/querylog"
	"github.com/hefgen/metricgen/internal/relevance"
	"github.com/hefgen/metricgen/internal/tools"
)

// MinToolQueries is the minimum number of search queries issued per
// generation run. Broad evidence before drafting keeps source lists
// grounded instead of hallucinated.
const MinToolQueries = 20

// ErrAttemptsExhausted indicates every generation attempt produced an
// invalid batch. The last validation report is wrapped alongside.
var ErrAttemptsExhausted = errors.New("generation attempts exhausted")

// queryTemplates are the search phrasings fanned out across every
// registered tool during evidence gathering. %s slots take the task
// description.
var queryTemplates = []string{
	"%s evaluation metrics",
	"%s quality criteria",
	"%s human evaluation",
	"%s assessment rubric",
	"%s benchmark evaluation",
	"evaluating %s with LLMs",
	"%s rating scale reliability",
}

// Result is the outcome of one successful generation run.
type Result struct {
	Batch        domain.Batch
	Attempts     int
	PromptHash   string
	RequestIDs   []string
	QueryLogPath string
	Usage        llm.Usage
}

// Planner drives the evidence-gather, draft, validate loop.
type Planner struct {
	client      llm.Client
	registry    *tools.Registry
	filter      *relevance.Filter
	queryLog    *querylog.Log
	maxAttempts int
	logger      *slog.Logger
}

// NewPlanner creates a planner. The relevance filter may be nil to skip
// source screening; a nil logger falls back to slog.Default.
func NewPlanner(
	client llm.Client,
	registry *tools.Registry,
	filter *relevance.Filter,
	queryLog *querylog.Log,
	maxAttempts int,
	logger *slog.Logger,
) *Planner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		client:      client,
		registry:    registry,
		filter:      filter,
		queryLog:    queryLog,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "planner"),
	}
}

// Generate produces a validated metrics batch for the task. The
// returned error is a *domain.ConfigurationError for bad input, a
// provider error for transport failures, or ErrAttemptsExhausted
// wrapping the final validation report.
func (p *Planner) Generate(ctx context.Context, task domain.TaskContext) (*Result, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	constraints := task.Constraints()

	evidence, err := p.gatherEvidence(ctx, task, logger)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "evidence gathered",
		"sources", len(evidence),
		"queries", p.queryLog.Count())

	if p.filter != nil {
		evidence = p.filter.Keep(ctx, task, "evidence pool", evidence)
	}

	system := BuildSystemPrompt(task)
	user := BuildUserPrompt(task, evidence)
	result := &Result{PromptHash: PromptHash(system, user)}

	var lastReport error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result.Attempts = attempt

		prompt := user
		if lastReport != nil {
			prompt = user + "\n" + BuildRepairPrompt(lastReport)
		}

		resp, err := p.client.Complete(ctx, llm.Request{
			System:      system,
			User:        prompt,
			Temperature: 0.2,
		})
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		result.RequestIDs = append(result.RequestIDs, resp.RequestID)
		result.Usage.PromptTokens += resp.Usage.PromptTokens
		result.Usage.CompletionTokens += resp.Usage.CompletionTokens
		result.Usage.TotalTokens += resp.Usage.TotalTokens

		batch, report := p.validateAttempt(resp.Content, constraints)
		if report == nil {
			result.Batch = *batch
			if path, err := p.queryLog.Save(); err != nil {
				logger.WarnContext(ctx, "query log save failed", "error", err)
			} else {
				result.QueryLogPath = path
			}
			logger.InfoContext(ctx, "batch accepted",
				"attempt", attempt,
				"metrics", batch.Len(),
				"prompt_hash", result.PromptHash)
			return result, nil
		}

		lastReport = report
		logger.WarnContext(ctx, "batch rejected",
			"attempt", attempt,
			"error", report)
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, p.maxAttempts, lastReport)
}

// validateAttempt extracts, decodes, and batch-validates one model
// response. A nil report means the batch was accepted.
func (p *Planner) validateAttempt(content string, constraints domain.ConstraintSet) (*domain.Batch, error) {
	payload, err := llm.ExtractJSONArray(content)
	if err != nil {
		return nil, err
	}
	batch, err := domain.ValidateBatchJSON([]byte(payload), constraints)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// gatherEvidence fans the query templates out across every registered
// tool, logging each query. Individual tool failures are logged and
// skipped; the run only fails when no evidence at all could be
// collected.
func (p *Planner) gatherEvidence(ctx context.Context, task domain.TaskContext, logger *slog.Logger) ([]domain.Source, error) {
	subject := fmt.Sprintf("%s %s %s", task.TaskDomain, task.TaskField, task.TaskType)

	var evidence []domain.Source
	seen := make(map[string]struct{})

	for _, template := range queryTemplates {
		query := fmt.Sprintf(template, subject)
		for _, tool := range p.registry.All() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p.queryLog.Record(tool.Name(), query)

			sources, err := tool.Search(ctx, query)
			if err != nil {
				if !errors.Is(err, tools.ErrNoResults) {
					logger.WarnContext(ctx, "search failed",
						"tool", tool.Name(),
						"query", query,
						"error", err)
				}
				continue
			}
			for _, src := range sources {
				if _, ok := seen[src.URL]; ok {
					continue
				}
				seen[src.URL] = struct{}{}
				evidence = append(evidence, src)
			}
		}
		if p.queryLog.Count() >= MinToolQueries && len(evidence) >= evidenceTarget(task) {
			break
		}
	}

	if len(evidence) == 0 {
		return nil, fmt.Errorf("evidence gathering: %w", tools.ErrNoResults)
	}
	return evidence, nil
}

// evidenceTarget is the number of distinct sources worth collecting
// before drafting: enough to cite every metric at its minimum.
func evidenceTarget(task domain.TaskContext) int {
	c := task.Constraints()
	return c.NumMetrics * c.MinSourcesPerMetric
}
