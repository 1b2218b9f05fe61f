package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remarket/server/internal/models"
	"remarket/server/internal/valuation"
)

func predictAttrs(price *float64) models.ListingAttributes {
	return models.ListingAttributes{
		City:         "Amman",
		Neighborhood: "Abdoun",
		PropertyType: "apartment",
		SurfaceArea:  150,
		Price:        price,
	}
}

func TestPredict_NoListedPrice(t *testing.T) {
	toolbox := newTestToolbox(nil, &fakePredictor{price: 100000})

	result, err := toolbox.Predict(predictAttrs(nil))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(100000), result.PredictedPrice)
	assert.Equal(t, "150m² apartment in Abdoun, Amman", result.InputSummary)
	assert.Equal(t, "high", result.Confidence)
	assert.Nil(t, result.ListedPrice)
	assert.Empty(t, result.Valuation)
	assert.Equal(t, "Based on the property features, the predicted price is **100000 JOD**.", result.Message)
	assert.Equal(t, DisplayPrediction, result.DisplayType)
}

func TestPredict_Undervalued(t *testing.T) {
	toolbox := newTestToolbox(nil, &fakePredictor{price: 100000})

	result, err := toolbox.Predict(predictAttrs(floatPtr(80000)))

	require.NoError(t, err)
	assert.Equal(t, valuation.LabelUndervalued, result.Valuation)
	require.NotNil(t, result.ValuationPercentage)
	assert.Equal(t, -20.0, *result.ValuationPercentage)
	assert.Equal(t, "This property is **undervalued**! The listed price of 80000 JOD is 20.0% below the predicted market value of 100000 JOD.", result.Message)
}

func TestPredict_Overvalued(t *testing.T) {
	toolbox := newTestToolbox(nil, &fakePredictor{price: 100000})

	result, err := toolbox.Predict(predictAttrs(floatPtr(130000)))

	require.NoError(t, err)
	assert.Equal(t, valuation.LabelOvervalued, result.Valuation)
	assert.Equal(t, 30.0, *result.ValuationPercentage)
	assert.Contains(t, result.Message, "**overvalued**")
	assert.Contains(t, result.Message, "30.0% above")
}

func TestPredict_FairlyPriced(t *testing.T) {
	toolbox := newTestToolbox(nil, &fakePredictor{price: 100000})

	result, err := toolbox.Predict(predictAttrs(floatPtr(105000)))

	require.NoError(t, err)
	assert.Equal(t, valuation.LabelFair, result.Valuation)
	assert.Equal(t, "This property is **fairly priced**. The listed price of 105000 JOD is close to the predicted market value of 100000 JOD.", result.Message)
}

func TestPredict_PredictorError(t *testing.T) {
	toolbox := newTestToolbox(nil, &fakePredictor{err: errors.New("model unavailable")})

	result, err := toolbox.Predict(predictAttrs(nil))

	require.Error(t, err)
	assert.Nil(t, result)
}
