package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/pipeline"
	"github.com/ppiankov/wildaware/internal/worker"
)

var (
	concurrency  int
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify many messages from a file in parallel",
	Long: `Batch classifies messages concurrently:
- Read messages from input file (one per line, # starts a comment)
- Classify in parallel with configurable worker count
- Print one line per message in input order, or write JSON

Example:
  wildaware batch messages.txt
  wildaware batch messages.txt --concurrency 8 --out results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write results as JSON to this file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := buildCatalogProvider(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer closeProvider(provider, logger)
	classifier, err := pipeline.New(provider, pipeline.WithLowConfidenceThreshold(cfg.Classifier.LowConfidenceThreshold)).Classifier(ctx)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(classifier, cfg.Concurrency.Workers)

	start := time.Now()
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
		}
	}
	logger.Info("Batch complete",
		zap.String("file", file),
		zap.Int("messages", len(results)),
		zap.Int("failures", failures),
		zap.Int("workers", cfg.Concurrency.Workers),
		zap.Duration("elapsed", time.Since(start)))

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if batchOut == "" {
		return renderer.RenderBatch(cmd.OutOrStdout(), results)
	}

	f, err := os.Create(batchOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := renderer.RenderJSON(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d results to %s\n", len(results), batchOut)
	return nil
}
