package ml

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dmitryikh/leaves"
	"github.com/sirupsen/logrus"

	"remarket/server/internal/models"
)

// ErrModelUnavailable reports that the trained artifact could not be loaded.
// This is a configuration failure: it is not retried, and callers surface it
// as a service-unavailable condition.
var ErrModelUnavailable = errors.New("prediction model unavailable")

// Predictor evaluates the trained price model. The artifact is loaded at
// most once per process; concurrent first callers block on the single load
// and every later call reads the same immutable handle.
type Predictor struct {
	artifactPath string
	metaPath     string
	logger       *logrus.Logger

	once     sync.Once
	ensemble *leaves.Ensemble
	meta     *ModelMeta
	loadErr  error
}

func NewPredictor(artifactPath, metaPath string, logger *logrus.Logger) *Predictor {
	return &Predictor{
		artifactPath: artifactPath,
		metaPath:     metaPath,
		logger:       logger,
	}
}

func (p *Predictor) load() {
	ensemble, err := leaves.XGEnsembleFromFile(p.artifactPath, false)
	if err != nil {
		p.loadErr = fmt.Errorf("%w: loading %s: %v", ErrModelUnavailable, p.artifactPath, err)
		return
	}

	meta, err := LoadModelMeta(p.metaPath)
	if err != nil {
		p.loadErr = fmt.Errorf("%w: loading %s: %v", ErrModelUnavailable, p.metaPath, err)
		return
	}

	if ensemble.NFeatures() > len(meta.Features) {
		p.loadErr = fmt.Errorf("%w: artifact expects %d features but metadata lists %d",
			ErrModelUnavailable, ensemble.NFeatures(), len(meta.Features))
		return
	}

	p.ensemble = ensemble
	p.meta = meta
	p.logger.WithFields(logrus.Fields{
		"artifact": p.artifactPath,
		"trees":    ensemble.NEstimators(),
		"features": len(meta.Features),
	}).Info("Prediction model loaded")
}

// Ready forces the lazy load and reports whether the model is usable.
func (p *Predictor) Ready() error {
	p.once.Do(p.load)
	return p.loadErr
}

// Predict normalizes the attributes, evaluates the model and inverts its
// log-scale output into a whole-JOD price. Deterministic for a fixed
// artifact and fixed input.
func (p *Predictor) Predict(attrs models.ListingAttributes) (*models.PredictionResult, error) {
	if err := p.Ready(); err != nil {
		return nil, err
	}

	row := p.meta.EncodeRow(Normalize(attrs))
	raw := p.ensemble.PredictSingle(row, 0)
	price := inversePrice(raw)

	result := &models.PredictionResult{
		PredictedPrice: price,
		Confidence:     confidenceFor(attrs.SurfaceArea),
	}

	if price <= 0 {
		p.logger.WithFields(logrus.Fields{
			"raw_output": raw,
			"city":       attrs.City,
			"area":       attrs.SurfaceArea,
		}).Warn("Model produced a non-positive price")
		result.Warning = "predicted price fell at or below zero; the attributes are likely outside the training range"
		if price < 0 {
			result.PredictedPrice = 0
		}
	}

	return result, nil
}

// inversePrice undoes the log1p transform the target was trained under.
func inversePrice(logPrice float64) int64 {
	return int64(math.Round(math.Exp(logPrice) - 1))
}

func confidenceFor(surfaceArea float64) string {
	if surfaceArea > 50 && surfaceArea < 500 {
		return "high"
	}
	return "medium"
}
