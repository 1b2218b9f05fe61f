package tools

import (
	"fmt"
	"math"
)

// Market defaults applied when a request leaves the terms unset.
const (
	DefaultDownPaymentPct = 0.20
	DefaultAnnualRate     = 0.085
	DefaultTermYears      = 20
)

// MortgageParams uses pointers for the optional terms so an explicit zero
// rate stays distinguishable from an absent one.
type MortgageParams struct {
	PropertyPrice      float64  `json:"property_price"`
	DownPaymentPercent *float64 `json:"down_payment_percent"`
	AnnualRate         *float64 `json:"annual_rate"`
	TermYears          *int     `json:"term_years"`
}

// MortgageBreakdown carries whole-JOD figures; fractions of a dinar mean
// nothing to a buyer.
type MortgageBreakdown struct {
	PropertyPrice      int64   `json:"property_price"`
	DownPayment        int64   `json:"down_payment"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
	LoanAmount         int64   `json:"loan_amount"`
	AnnualRate         float64 `json:"annual_rate"`
	TermYears          int     `json:"term_years"`
	NumPayments        int     `json:"num_payments"`
	MonthlyPayment     int64   `json:"monthly_payment"`
	TotalPaid          int64   `json:"total_paid"`
	TotalInterest      int64   `json:"total_interest"`
}

type MortgageResult struct {
	Success     bool               `json:"success"`
	Breakdown   *MortgageBreakdown `json:"breakdown,omitempty"`
	Summary     string             `json:"summary,omitempty"`
	Message     string             `json:"message"`
	DisplayType string             `json:"display_type"`
}

// CalculateMortgage amortizes a loan with the standard fixed-payment
// formula. Arithmetic stays in floating point; rounding to whole JOD
// happens only when filling the envelope, and total interest is derived
// from the rounded figures so the breakdown always adds up.
func CalculateMortgage(params MortgageParams) *MortgageResult {
	if params.PropertyPrice <= 0 {
		return &MortgageResult{
			Success:     false,
			Message:     "Property price must be positive.",
			DisplayType: DisplayText,
		}
	}

	downPct := DefaultDownPaymentPct
	if params.DownPaymentPercent != nil {
		downPct = *params.DownPaymentPercent
	}
	annualRate := DefaultAnnualRate
	if params.AnnualRate != nil {
		annualRate = *params.AnnualRate
	}
	years := DefaultTermYears
	if params.TermYears != nil && *params.TermYears > 0 {
		years = *params.TermYears
	}

	price := params.PropertyPrice
	down := price * downPct
	loan := price - down
	n := years * 12
	r := annualRate / 12

	var monthly float64
	if r == 0 {
		monthly = loan / float64(n)
	} else {
		pow := math.Pow(1+r, float64(n))
		monthly = loan * r * pow / (pow - 1)
	}
	total := monthly * float64(n)

	breakdown := &MortgageBreakdown{
		PropertyPrice:      roundJOD(price),
		DownPayment:        roundJOD(down),
		DownPaymentPercent: downPct,
		LoanAmount:         roundJOD(loan),
		AnnualRate:         annualRate,
		TermYears:          years,
		NumPayments:        n,
		MonthlyPayment:     roundJOD(monthly),
		TotalPaid:          roundJOD(total),
	}
	breakdown.TotalInterest = breakdown.TotalPaid - breakdown.LoanAmount

	return &MortgageResult{
		Success:   true,
		Breakdown: breakdown,
		Summary:   fmt.Sprintf("Monthly payment: %d JOD for %d years", breakdown.MonthlyPayment, years),
		Message: fmt.Sprintf("For a %.0f JOD property with %.0f%% down, your monthly payment would be approximately %d JOD.",
			price, downPct*100, breakdown.MonthlyPayment),
		DisplayType: DisplayMortgage,
	}
}
