// Package tools implements the calculations the engine can surface: catalog
// search, price prediction, comparable ranking, side-by-side comparison and
// the financial projections. Every tool returns a structured envelope the
// presentation layer renders from.
package tools

import (
	"math"

	"github.com/sirupsen/logrus"

	"remarket/server/internal/models"
)

// Display types the presentation layer switches on.
const (
	DisplayText          = "text"
	DisplayPropertyCards = "property_cards"
	DisplayPrediction    = "prediction"
	DisplayComparison    = "comparison_table"
	DisplayMortgage      = "mortgage_breakdown"
	DisplayROIChart      = "roi_chart"
)

// Store is the listing-store surface the tools consume.
type Store interface {
	GetProperty(id int64) (*models.Property, error)
	SearchProperties(filter models.SearchFilter) ([]models.Property, error)
	GetCandidates(city string, excludeID int64) ([]models.Property, error)
}

// Predictor evaluates the trained price model.
type Predictor interface {
	Predict(attrs models.ListingAttributes) (*models.PredictionResult, error)
	Ready() error
}

// Toolbox bundles the tools with their collaborators.
type Toolbox struct {
	store     Store
	predictor Predictor
	logger    *logrus.Logger
}

func NewToolbox(store Store, predictor Predictor, logger *logrus.Logger) *Toolbox {
	return &Toolbox{
		store:     store,
		predictor: predictor,
		logger:    logger,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundJOD rounds to the nearest whole dinar for the envelope fields.
func roundJOD(v float64) int64 {
	return int64(math.Round(v))
}
