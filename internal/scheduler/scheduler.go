// Package scheduler runs the periodic batch jobs on cron schedules: the
// nightly revaluation sweep and the market digest.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"remarket/server/config"
	"remarket/server/internal/models"
	"remarket/server/internal/notify"
	"remarket/server/internal/processor"
)

// Store is the slice of the listing store the digest job reads.
type Store interface {
	GetOpportunities(minDiscount float64, limit int) ([]models.Property, error)
	GetMarketStats() (*models.MarketStats, error)
}

// Scheduler manages the periodic revaluation and digest jobs.
type Scheduler struct {
	cron       *cron.Cron
	revaluator *processor.Revaluator
	store      Store
	notifiers  []notify.Notifier
	cfg        config.SchedulerConfig
	digestCfg  config.DigestConfig
	logger     *logrus.Logger
	jobMutex   sync.Mutex // Ensures sequential job execution
}

func NewScheduler(revaluator *processor.Revaluator, store Store, notifiers []notify.Notifier, cfg config.SchedulerConfig, digestCfg config.DigestConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		revaluator: revaluator,
		store:      store,
		notifiers:  notifiers,
		cfg:        cfg,
		digestCfg:  digestCfg,
		logger:     logger,
	}
}

// Start registers the cron entries and begins running them.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RevaluationSpec, s.runRevaluation); err != nil {
		return fmt.Errorf("invalid revaluation schedule %q: %w", s.cfg.RevaluationSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.DigestSpec, s.runDigest); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.cfg.DigestSpec, err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"revaluation": s.cfg.RevaluationSpec,
		"digest":      s.cfg.DigestSpec,
	}).Info("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runRevaluation() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("job", "revaluation").Info("Starting scheduled job")
	stats, err := s.revaluator.Run(context.Background())
	if err != nil {
		s.logger.WithError(err).WithField("job", "revaluation").Error("Scheduled job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"job":     "revaluation",
		"updated": stats.Updated,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
	}).Info("Scheduled job completed")
}

func (s *Scheduler) runDigest() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("job", "digest").Info("Starting scheduled job")
	digest, err := s.BuildDigest()
	if err != nil {
		s.logger.WithError(err).WithField("job", "digest").Error("Scheduled job failed")
		return
	}

	for _, n := range s.notifiers {
		if err := n.SendDigest(digest); err != nil {
			s.logger.WithError(err).WithField("channel", n.Name()).Error("Digest delivery failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"job":           "digest",
		"opportunities": len(digest.Opportunities),
		"channels":      len(s.notifiers),
	}).Info("Scheduled job completed")
}

// BuildDigest assembles the current market digest: undervalued listings past
// the configured discount, narrowed by the optional digest filters.
func (s *Scheduler) BuildDigest() (*models.Digest, error) {
	opportunities, err := s.store.GetOpportunities(s.digestCfg.MinDiscount, s.digestCfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load opportunities: %w", err)
	}

	filters := s.digestFilters()
	kept := make([]models.Property, 0, len(opportunities))
	for i := range opportunities {
		if filters.IsPropertyAllowed(&opportunities[i]) {
			kept = append(kept, opportunities[i])
		}
	}

	stats, err := s.store.GetMarketStats()
	if err != nil {
		return nil, fmt.Errorf("failed to load market stats: %w", err)
	}

	return &models.Digest{
		GeneratedAt:   time.Now(),
		Opportunities: kept,
		TotalListings: stats.TotalProperties,
		MinDiscount:   s.digestCfg.MinDiscount,
	}, nil
}

func (s *Scheduler) digestFilters() *models.DigestFilters {
	if len(s.digestCfg.Cities) == 0 && s.digestCfg.Listing == "" {
		return nil
	}
	return &models.DigestFilters{
		Cities:  s.digestCfg.Cities,
		Listing: s.digestCfg.Listing,
	}
}
