// main is the command-line entry point for the metric generation
// pipeline: run a generation pass directly, validate an existing batch
// file, or serve as a Temporal worker.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/hefgen/metricgen/internal/config"
	"github.com/hefgen/metricgen/internal/domain"
	"github.com/hefgen/metricgen/internal/generation"
	"github.com/hefgen/metricgen/internal/worker"
	"github.com/hefgen/metricgen/internal/workflow"
)

var (
	flagDomain     string
	flagField      string
	flagType       string
	flagNumMetrics int
	flagMinSources int
	flagOutput     string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "metricgen",
	Short:         "Generate and validate LLM evaluation metric batches",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one metric generation pass for a task",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		task := domain.TaskContext{
			TaskDomain:          flagDomain,
			TaskField:           flagField,
			TaskType:            flagType,
			NumMetrics:          flagNumMetrics,
			MinSourcesPerMetric: flagMinSources,
		}
		if err := task.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		planner := worker.NewPlanner(cfg, logger)
		result, err := planner.Generate(ctx, task)
		if err != nil {
			return err
		}

		logger.Info("generation complete",
			"metrics", result.Batch.Len(),
			"attempts", result.Attempts,
			"prompt_hash", result.PromptHash,
			"query_log", result.QueryLogPath)

		return writeBatch(result.Batch, flagOutput)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <batch.json>",
	Short: "Validate a metrics batch file against the constraints",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read batch file: %w", err)
		}

		constraints := domain.ConstraintSet{
			NumMetrics:          flagNumMetrics,
			MinSourcesPerMetric: flagMinSources,
		}

		batch, err := domain.ValidateBatchJSON(data, constraints)
		if err != nil {
			var report *domain.BatchValidationError
			if errors.As(err, &report) {
				out, marshalErr := json.MarshalIndent(report, "", "  ")
				if marshalErr == nil {
					fmt.Fprintln(os.Stdout, string(out))
				}
			}
			return err
		}

		fmt.Fprintf(os.Stdout, "ok: %d metrics\n", batch.Len())
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a Temporal worker serving the metrics workflow",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := slog.Default()
		c, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			return fmt.Errorf("connect to temporal: %w", err)
		}
		defer c.Close()

		w := sdkworker.New(c, cfg.Temporal.TaskQueue, sdkworker.Options{})
		worker.RegisterAll(w, worker.NewPlanner(cfg, logger))

		logger.Info("worker starting",
			"host_port", cfg.Temporal.HostPort,
			"task_queue", cfg.Temporal.TaskQueue)
		return w.Run(sdkworker.InterruptCh())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a metrics workflow on Temporal and wait for the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		task := domain.TaskContext{
			TaskDomain:          flagDomain,
			TaskField:           flagField,
			TaskType:            flagType,
			NumMetrics:          flagNumMetrics,
			MinSourcesPerMetric: flagMinSources,
		}
		if err := task.Validate(); err != nil {
			return err
		}

		c, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			return fmt.Errorf("connect to temporal: %w", err)
		}
		defer c.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflow.MetricsWorkflow, task)
		if err != nil {
			return fmt.Errorf("start workflow: %w", err)
		}

		var output generation.GenerateMetricsOutput
		if err := run.Get(ctx, &output); err != nil {
			return fmt.Errorf("workflow failed: %w", err)
		}

		return writeBatch(domain.Batch{
			Metrics: output.Metrics,
			Constraints: domain.ConstraintSet{
				NumMetrics:          flagNumMetrics,
				MinSourcesPerMetric: flagMinSources,
			},
		}, flagOutput)
	},
}

// writeBatch emits the accepted batch as a JSON array, to a file or
// stdout.
func writeBatch(batch domain.Batch, path string) error {
	out, err := json.MarshalIndent(&batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write batch file: %w", err)
	}
	return nil
}

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDomain, "domain", "", "task domain, e.g. healthcare")
	cmd.Flags().StringVar(&flagField, "field", "", "task field, e.g. radiology")
	cmd.Flags().StringVar(&flagType, "type", "", "task type, e.g. report generation")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("type")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagNumMetrics, "num-metrics", domain.DefaultNumMetrics, "number of metrics per batch")
	rootCmd.PersistentFlags().IntVar(&flagMinSources, "min-sources", domain.DefaultMinSourcesPerMetric, "minimum sources per metric")

	addTaskFlags(generateCmd)
	addTaskFlags(runCmd)

	rootCmd.AddCommand(generateCmd, validateCmd, workerCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
