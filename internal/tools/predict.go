package tools

import (
	"fmt"
	"math"

	"remarket/server/internal/models"
	"remarket/server/internal/valuation"
)

type PredictResult struct {
	Success             bool     `json:"success"`
	PredictedPrice      int64    `json:"predicted_price"`
	InputSummary        string   `json:"input_summary"`
	Confidence          string   `json:"confidence"`
	ListedPrice         *float64 `json:"listed_price,omitempty"`
	Valuation           string   `json:"valuation,omitempty"`
	ValuationPercentage *float64 `json:"valuation_percentage,omitempty"`
	Warning             string   `json:"warning,omitempty"`
	Message             string   `json:"message"`
	DisplayType         string   `json:"display_type"`
}

// Predict estimates the market value of a listing and, when an asking price
// is known, labels it against the estimate.
func (t *Toolbox) Predict(attrs models.ListingAttributes) (*PredictResult, error) {
	prediction, err := t.predictor.Predict(attrs)
	if err != nil {
		return nil, err
	}

	result := &PredictResult{
		Success:        true,
		PredictedPrice: prediction.PredictedPrice,
		InputSummary: fmt.Sprintf("%gm² %s in %s, %s",
			attrs.SurfaceArea, attrs.PropertyType, attrs.Neighborhood, attrs.City),
		Confidence:  prediction.Confidence,
		Warning:     prediction.Warning,
		Message:     fmt.Sprintf("Based on the property features, the predicted price is **%d JOD**.", prediction.PredictedPrice),
		DisplayType: DisplayPrediction,
	}

	if attrs.Price == nil {
		return result, nil
	}

	v := valuation.Classify(*attrs.Price, float64(prediction.PredictedPrice))
	if v == nil {
		return result, nil
	}

	result.ListedPrice = attrs.Price
	result.Valuation = v.Label
	result.ValuationPercentage = &v.Percent

	switch v.Label {
	case valuation.LabelUndervalued:
		result.Message = fmt.Sprintf("This property is **undervalued**! The listed price of %.0f JOD is %.1f%% below the predicted market value of %d JOD.",
			*attrs.Price, math.Abs(v.Percent), prediction.PredictedPrice)
	case valuation.LabelOvervalued:
		result.Message = fmt.Sprintf("This property appears **overvalued**. The listed price of %.0f JOD is %.1f%% above the predicted market value of %d JOD.",
			*attrs.Price, math.Abs(v.Percent), prediction.PredictedPrice)
	default:
		result.Message = fmt.Sprintf("This property is **fairly priced**. The listed price of %.0f JOD is close to the predicted market value of %d JOD.",
			*attrs.Price, prediction.PredictedPrice)
	}
	return result, nil
}
