package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"remarket/server/internal/models"
	"remarket/server/internal/valuation"
)

// Individual listing failures past this count are tallied silently.
const warnFailures = 5

// RevalStats summarizes one revaluation sweep.
type RevalStats struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Predictor is the slice of the prediction engine the revaluator needs.
type Predictor interface {
	Predict(attrs models.ListingAttributes) (*models.PredictionResult, error)
	Ready() error
}

// Revaluator re-scores the stored listing pool against the current model.
type Revaluator struct {
	db        *gorm.DB
	predictor Predictor
	logger    *logrus.Logger
	batchSize int

	// OnProgress, when set, is called after every processed listing.
	OnProgress func(processed, total int)
}

func NewRevaluator(db *gorm.DB, predictor Predictor, batchSize int, logger *logrus.Logger) *Revaluator {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Revaluator{
		db:        db,
		predictor: predictor,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run sweeps every listing, recomputing predicted price and valuation label
// for the priced ones. Each batch commits on its own, so an interrupted run
// keeps the progress made so far, and a rerun on an unchanged pool writes
// the same labels again. Single-listing failures are logged and counted,
// never fatal.
func (r *Revaluator) Run(ctx context.Context) (*RevalStats, error) {
	if err := r.predictor.Ready(); err != nil {
		return nil, fmt.Errorf("prediction model not ready: %w", err)
	}

	stats := &RevalStats{}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Property{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	stats.Total = int(total)
	if stats.Total == 0 {
		r.logger.Info("No listings to revalue")
		return stats, nil
	}

	started := time.Now()
	var batch []models.Property
	result := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, r.batchSize, func(_ *gorm.DB, _ int) error {
		if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i := range batch {
				r.revalue(tx, &batch[i], stats)
			}
			return nil
		}); err != nil {
			return err
		}
		r.logProgress(stats, started)
		return nil
	})
	if result.Error != nil {
		return stats, fmt.Errorf("revaluation sweep failed: %w", result.Error)
	}

	r.logger.Infof("Revaluation complete: %d updated, %d skipped, %d failed of %d listings",
		stats.Updated, stats.Skipped, stats.Failed, stats.Total)
	return stats, nil
}

func (r *Revaluator) revalue(tx *gorm.DB, p *models.Property, stats *RevalStats) {
	stats.Processed++
	if r.OnProgress != nil {
		r.OnProgress(stats.Processed, stats.Total)
	}

	if p.Price == nil || *p.Price <= 0 {
		stats.Skipped++
		return
	}

	pred, err := r.predictor.Predict(p.Attributes())
	if err != nil {
		r.fail(p.ID, err, stats)
		return
	}

	updates := map[string]interface{}{
		"predicted_price":      pred.PredictedPrice,
		"valuation":            nil,
		"valuation_percentage": nil,
	}
	if v := valuation.Classify(*p.Price, float64(pred.PredictedPrice)); v != nil {
		updates["valuation"] = v.Label
		updates["valuation_percentage"] = v.Percent
	}

	if err := tx.Model(&models.Property{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		r.fail(p.ID, err, stats)
		return
	}
	stats.Updated++
}

func (r *Revaluator) fail(id int64, err error, stats *RevalStats) {
	stats.Failed++
	if stats.Failed <= warnFailures {
		r.logger.WithError(err).Warnf("Failed to revalue property %d", id)
	}
}

func (r *Revaluator) logProgress(stats *RevalStats, started time.Time) {
	elapsed := time.Since(started)
	var remaining time.Duration
	if stats.Processed > 0 {
		perItem := elapsed / time.Duration(stats.Processed)
		remaining = perItem * time.Duration(stats.Total-stats.Processed)
	}
	r.logger.Infof("Revalued %d/%d listings (ETA %s)", stats.Processed, stats.Total, remaining.Round(time.Second))
}
