package tools

import "fmt"

// Projection defaults applied when a request leaves the assumptions unset.
const (
	DefaultHorizonYears     = 10
	DefaultAppreciationRate = 0.05
	DefaultExpenseRatio     = 0.20
)

type ROIParams struct {
	PurchasePrice    float64  `json:"purchase_price"`
	MonthlyRent      float64  `json:"monthly_rent"`
	Years            *int     `json:"years"`
	AppreciationRate *float64 `json:"appreciation_rate"`
	ExpenseRatio     *float64 `json:"expense_ratio"`
}

type ROIInput struct {
	PurchasePrice    float64 `json:"purchase_price"`
	MonthlyRent      float64 `json:"monthly_rent"`
	Years            int     `json:"years"`
	AppreciationRate float64 `json:"appreciation_rate"`
	ExpenseRatio     float64 `json:"expense_ratio"`
}

type ROIYear struct {
	Year             int     `json:"year"`
	PropertyValue    int64   `json:"property_value"`
	YearlyRent       int64   `json:"yearly_rent"`
	CumulativeIncome int64   `json:"cumulative_income"`
	CapitalGain      int64   `json:"capital_gain"`
	TotalReturn      int64   `json:"total_return"`
	ROIPercent       float64 `json:"roi_percent"`
}

type ROISummary struct {
	FinalPropertyValue int64   `json:"final_property_value"`
	TotalRentalIncome  int64   `json:"total_rental_income"`
	TotalCapitalGain   int64   `json:"total_capital_gain"`
	TotalReturn        int64   `json:"total_return"`
	TotalROI           float64 `json:"total_roi"`
}

type ROIResult struct {
	Success         bool        `json:"success"`
	Input           *ROIInput   `json:"input,omitempty"`
	YearlyBreakdown []ROIYear   `json:"yearly_breakdown,omitempty"`
	Summary         *ROISummary `json:"summary,omitempty"`
	Message         string      `json:"message"`
	DisplayType     string      `json:"display_type"`
}

// CalculateROI projects rental income and appreciation year by year. Every
// year stays in the output so the caller can chart the whole horizon.
func CalculateROI(params ROIParams) *ROIResult {
	if params.PurchasePrice <= 0 {
		return &ROIResult{
			Success:     false,
			Message:     "Purchase price must be positive.",
			DisplayType: DisplayText,
		}
	}
	if params.MonthlyRent < 0 {
		return &ROIResult{
			Success:     false,
			Message:     "Monthly rent cannot be negative.",
			DisplayType: DisplayText,
		}
	}

	years := DefaultHorizonYears
	if params.Years != nil && *params.Years > 0 {
		years = *params.Years
	}
	appreciation := DefaultAppreciationRate
	if params.AppreciationRate != nil {
		appreciation = *params.AppreciationRate
	}
	expenses := DefaultExpenseRatio
	if params.ExpenseRatio != nil {
		expenses = *params.ExpenseRatio
	}

	price := params.PurchasePrice
	annualNet := params.MonthlyRent * 12 * (1 - expenses)

	value := price
	cumulative := 0.0
	breakdown := make([]ROIYear, 0, years)
	for year := 1; year <= years; year++ {
		cumulative += annualNet
		value *= 1 + appreciation
		gain := value - price
		total := cumulative + gain

		breakdown = append(breakdown, ROIYear{
			Year:             year,
			PropertyValue:    roundJOD(value),
			YearlyRent:       roundJOD(annualNet),
			CumulativeIncome: roundJOD(cumulative),
			CapitalGain:      roundJOD(gain),
			TotalReturn:      roundJOD(total),
			ROIPercent:       round2(total / price * 100),
		})
	}

	last := breakdown[len(breakdown)-1]
	summary := &ROISummary{
		FinalPropertyValue: last.PropertyValue,
		TotalRentalIncome:  last.CumulativeIncome,
		TotalCapitalGain:   last.CapitalGain,
		TotalReturn:        last.TotalReturn,
		TotalROI:           last.ROIPercent,
	}

	return &ROIResult{
		Success: true,
		Input: &ROIInput{
			PurchasePrice:    price,
			MonthlyRent:      params.MonthlyRent,
			Years:            years,
			AppreciationRate: appreciation,
			ExpenseRatio:     expenses,
		},
		YearlyBreakdown: breakdown,
		Summary:         summary,
		Message:         fmt.Sprintf("After %d years, your projected total ROI is %.2f%%", years, summary.TotalROI),
		DisplayType:     DisplayROIChart,
	}
}
