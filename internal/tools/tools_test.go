package tools

import (
	"github.com/sirupsen/logrus"

	"remarket/server/internal/models"
)

// fakeStore serves fixed listings to the tools under test.
type fakeStore struct {
	properties map[int64]*models.Property
	candidates []models.Property
	searched   []models.Property
	err        error
}

func (f *fakeStore) GetProperty(id int64) (*models.Property, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SearchProperties(filter models.SearchFilter) ([]models.Property, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.searched, nil
}

func (f *fakeStore) GetCandidates(city string, excludeID int64) ([]models.Property, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

// fakePredictor answers every prediction with a fixed price.
type fakePredictor struct {
	price int64
	err   error
}

func (f *fakePredictor) Predict(attrs models.ListingAttributes) (*models.PredictionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PredictionResult{PredictedPrice: f.price, Confidence: "high"}, nil
}

func (f *fakePredictor) Ready() error {
	return f.err
}

func newTestToolbox(store Store, predictor Predictor) *Toolbox {
	return NewToolbox(store, predictor, logrus.New())
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
