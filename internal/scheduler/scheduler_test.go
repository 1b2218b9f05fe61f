package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remarket/server/config"
	"remarket/server/internal/models"
	"remarket/server/internal/notify"
)

type stubStore struct {
	opportunities []models.Property
	stats         *models.MarketStats
	oppErr        error
	statsErr      error

	gotDiscount float64
	gotLimit    int
}

func (s *stubStore) GetOpportunities(minDiscount float64, limit int) ([]models.Property, error) {
	s.gotDiscount = minDiscount
	s.gotLimit = limit
	return s.opportunities, s.oppErr
}

func (s *stubStore) GetMarketStats() (*models.MarketStats, error) {
	return s.stats, s.statsErr
}

type recordingNotifier struct {
	mu      sync.Mutex
	name    string
	err     error
	digests []*models.Digest
}

func (n *recordingNotifier) Name() string {
	return n.name
}

func (n *recordingNotifier) SendDigest(digest *models.Digest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, digest)
	return n.err
}

func opportunity(city, listing string, price float64) models.Property {
	predicted := int64(100000)
	pct := -20.0
	return models.Property{
		City:                city,
		Neighborhood:        "Abdoun",
		PropertyType:        models.TypeApartment,
		Listing:             listing,
		Price:               &price,
		PredictedPrice:      &predicted,
		ValuationPercentage: &pct,
	}
}

func newTestScheduler(store Store, notifiers []notify.Notifier, digestCfg config.DigestConfig) *Scheduler {
	cfg := config.SchedulerConfig{
		Enabled:         true,
		RevaluationSpec: "0 3 * * *",
		DigestSpec:      "0 8 * * *",
	}
	return NewScheduler(nil, store, notifiers, cfg, digestCfg, logrus.New())
}

func TestBuildDigest(t *testing.T) {
	store := &stubStore{
		opportunities: []models.Property{
			opportunity("Amman", models.ListingSale, 80000),
			opportunity("Irbid", models.ListingSale, 60000),
		},
		stats: &models.MarketStats{TotalProperties: 240},
	}
	s := newTestScheduler(store, nil, config.DigestConfig{MinDiscount: 15, Limit: 10})

	digest, err := s.BuildDigest()
	require.NoError(t, err)

	assert.Equal(t, 15.0, store.gotDiscount)
	assert.Equal(t, 10, store.gotLimit)
	assert.Len(t, digest.Opportunities, 2)
	assert.Equal(t, 240, digest.TotalListings)
	assert.Equal(t, 15.0, digest.MinDiscount)
	assert.WithinDuration(t, time.Now(), digest.GeneratedAt, 5*time.Second)
}

func TestBuildDigest_CityFilter(t *testing.T) {
	store := &stubStore{
		opportunities: []models.Property{
			opportunity("Amman", models.ListingSale, 80000),
			opportunity("Irbid", models.ListingSale, 60000),
			opportunity("Zarqa", models.ListingSale, 50000),
		},
		stats: &models.MarketStats{TotalProperties: 240},
	}
	s := newTestScheduler(store, nil, config.DigestConfig{
		MinDiscount: 15,
		Limit:       10,
		Cities:      []string{"amman", "zarqa"},
	})

	digest, err := s.BuildDigest()
	require.NoError(t, err)

	require.Len(t, digest.Opportunities, 2)
	assert.Equal(t, "Amman", digest.Opportunities[0].City)
	assert.Equal(t, "Zarqa", digest.Opportunities[1].City)
}

func TestBuildDigest_ListingFilter(t *testing.T) {
	store := &stubStore{
		opportunities: []models.Property{
			opportunity("Amman", models.ListingSale, 80000),
			opportunity("Amman", models.ListingRent, 700),
		},
		stats: &models.MarketStats{TotalProperties: 240},
	}
	s := newTestScheduler(store, nil, config.DigestConfig{
		MinDiscount: 15,
		Limit:       10,
		Listing:     models.ListingSale,
	})

	digest, err := s.BuildDigest()
	require.NoError(t, err)

	require.Len(t, digest.Opportunities, 1)
	assert.Equal(t, models.ListingSale, digest.Opportunities[0].Listing)
}

func TestBuildDigest_StoreErrors(t *testing.T) {
	s := newTestScheduler(&stubStore{oppErr: errors.New("db closed")}, nil, config.DigestConfig{MinDiscount: 15})
	_, err := s.BuildDigest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load opportunities")

	s = newTestScheduler(&stubStore{statsErr: errors.New("db closed")}, nil, config.DigestConfig{MinDiscount: 15})
	_, err = s.BuildDigest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load market stats")
}

func TestDigestFilters(t *testing.T) {
	s := newTestScheduler(&stubStore{}, nil, config.DigestConfig{MinDiscount: 15})
	assert.Nil(t, s.digestFilters())

	s = newTestScheduler(&stubStore{}, nil, config.DigestConfig{MinDiscount: 15, Cities: []string{"Amman"}})
	filters := s.digestFilters()
	require.NotNil(t, filters)
	assert.Equal(t, []string{"Amman"}, filters.Cities)

	s = newTestScheduler(&stubStore{}, nil, config.DigestConfig{MinDiscount: 15, Listing: models.ListingRent})
	filters = s.digestFilters()
	require.NotNil(t, filters)
	assert.Equal(t, models.ListingRent, filters.Listing)
}

func TestRunDigest_DeliversToAllChannels(t *testing.T) {
	store := &stubStore{
		opportunities: []models.Property{opportunity("Amman", models.ListingSale, 80000)},
		stats:         &models.MarketStats{TotalProperties: 240},
	}
	failing := &recordingNotifier{name: "telegram", err: errors.New("bot was blocked by the user or chat")}
	working := &recordingNotifier{name: "email"}
	s := newTestScheduler(store, []notify.Notifier{failing, working}, config.DigestConfig{MinDiscount: 15, Limit: 10})

	s.runDigest()

	require.Len(t, failing.digests, 1)
	require.Len(t, working.digests, 1)
	assert.Len(t, working.digests[0].Opportunities, 1)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(&stubStore{}, nil, config.DigestConfig{})

	require.NoError(t, s.Start())
	s.Stop()
}

func TestScheduler_InvalidSpecs(t *testing.T) {
	s := NewScheduler(nil, &stubStore{}, nil, config.SchedulerConfig{
		RevaluationSpec: "not a cron spec",
		DigestSpec:      "0 8 * * *",
	}, config.DigestConfig{}, logrus.New())
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid revaluation schedule")

	s = NewScheduler(nil, &stubStore{}, nil, config.SchedulerConfig{
		RevaluationSpec: "0 3 * * *",
		DigestSpec:      "every sunrise",
	}, config.DigestConfig{}, logrus.New())
	err = s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid digest schedule")
}
