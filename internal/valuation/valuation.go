// Package valuation labels an asking price against the model's prediction.
//
// One sign convention applies everywhere: the percentage is positive when
// the asking price is above the prediction. Every consumer (live prediction,
// batch revaluation, opportunity queries) reads this package, so the label a
// listing gets cannot depend on which code path computed it.
package valuation

import "math"

// FairBandPercent is the symmetric band around the predicted price inside
// which an asking price counts as fair.
const FairBandPercent = 15.0

const (
	LabelUndervalued = "undervalued"
	LabelFair        = "fair"
	LabelOvervalued  = "overvalued"
)

type Valuation struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// Classify compares an asking price to a predicted price. Both must be
// positive; otherwise there is no valuation and Classify returns nil.
func Classify(listed, predicted float64) *Valuation {
	if listed <= 0 || predicted <= 0 {
		return nil
	}

	percent := round2((listed - predicted) / predicted * 100)

	label := LabelFair
	switch {
	case percent > FairBandPercent:
		label = LabelOvervalued
	case percent < -FairBandPercent:
		label = LabelUndervalued
	}

	return &Valuation{Label: label, Percent: percent}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
