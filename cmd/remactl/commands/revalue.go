package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"remarket/server/internal/ml"
	"remarket/server/internal/processor"
)

var revalueBatchSize int

var revalueCmd = &cobra.Command{
	Use:   "revalue",
	Short: "Re-score every stored listing against the current model",
	Long: `Sweep the stored listing pool, recomputing the predicted price and
valuation label for every priced listing. Each batch commits on its own, so
an interrupted run keeps its progress.`,
	RunE: runRevalue,
}

func init() {
	revalueCmd.Flags().IntVar(&revalueBatchSize, "batch-size", 0, "listings per checkpoint commit (defaults to config)")
	rootCmd.AddCommand(revalueCmd)
}

func runRevalue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Log.Level)

	db, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	predictor := ml.NewPredictor(cfg.Model.ArtifactPath, cfg.Model.MetaPath, logger)
	if err := predictor.Ready(); err != nil {
		return fmt.Errorf("prediction model: %w", err)
	}

	batchSize := revalueBatchSize
	if batchSize <= 0 {
		batchSize = cfg.Batch.CommitSize
	}

	revaluator := processor.NewRevaluator(db, predictor, batchSize, logger)

	bar := newBar(-1, "revaluing listings")
	revaluator.OnProgress = func(processed, total int) {
		bar.ChangeMax(total)
		bar.Set(processed)
	}

	stats, err := revaluator.Run(cmd.Context())
	bar.Finish()
	if err != nil {
		return fmt.Errorf("revaluation: %w", err)
	}

	fmt.Printf("Revalued %d of %d listings (%d skipped, %d failed)\n",
		stats.Updated, stats.Total, stats.Skipped, stats.Failed)
	return nil
}
