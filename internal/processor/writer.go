// Package processor holds the batch side of the engine: persisting imported
// listing batches and re-scoring the stored pool against the current model.
package processor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"remarket/server/config"
	"remarket/server/internal/models"
	"remarket/server/internal/queue"
)

// BatchWriter persists imported listing batches from the queue.
type BatchWriter struct {
	db         *gorm.DB
	logger     *logrus.Logger
	maxRetries int
	retryDelay time.Duration
}

func NewBatchWriter(db *gorm.DB, cfg config.BatchConfig, logger *logrus.Logger) *BatchWriter {
	return &BatchWriter{
		db:         db,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelay) * time.Second,
	}
}

// Register subscribes the writer to the import queue.
func (w *BatchWriter) Register(q *queue.ImportQueue) {
	q.Subscribe(w.writeBatch)
}

// writeBatch stores a single batch with transaction and retry logic.
func (w *BatchWriter) writeBatch(batch []*models.Property) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Infof("Retrying batch write, attempt %d of %d", attempt, w.maxRetries)
			time.Sleep(w.retryDelay)
		}

		err = w.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&batch).Error; err != nil {
				return fmt.Errorf("failed to insert listing batch: %w", err)
			}
			return nil
		})

		if err == nil {
			w.logger.Infof("Stored batch of %d listings", len(batch))
			return nil
		}

		w.logger.Errorf("Batch write failed: %v", err)
	}

	return fmt.Errorf("failed to store batch after %d attempts: %w", w.maxRetries, err)
}
