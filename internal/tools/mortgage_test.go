package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMortgage_Defaults(t *testing.T) {
	result := CalculateMortgage(MortgageParams{PropertyPrice: 100000})

	require.True(t, result.Success)
	require.NotNil(t, result.Breakdown)

	b := result.Breakdown
	assert.Equal(t, int64(100000), b.PropertyPrice)
	assert.Equal(t, int64(20000), b.DownPayment)
	assert.Equal(t, DefaultDownPaymentPct, b.DownPaymentPercent)
	assert.Equal(t, int64(80000), b.LoanAmount)
	assert.Equal(t, DefaultAnnualRate, b.AnnualRate)
	assert.Equal(t, DefaultTermYears, b.TermYears)
	assert.Equal(t, 240, b.NumPayments)

	// 80k at 8.5% over 20 years lands just under 700 a month.
	assert.Greater(t, b.MonthlyPayment, int64(690))
	assert.Less(t, b.MonthlyPayment, int64(700))
	assert.Equal(t, b.TotalPaid-b.LoanAmount, b.TotalInterest)

	assert.Equal(t, DisplayMortgage, result.DisplayType)
	assert.Contains(t, result.Summary, "for 20 years")
	assert.Contains(t, result.Message, "100000 JOD property with 20% down")
}

func TestCalculateMortgage_ZeroRate(t *testing.T) {
	rate := 0.0
	years := 10
	result := CalculateMortgage(MortgageParams{
		PropertyPrice: 120000,
		AnnualRate:    &rate,
		TermYears:     &years,
	})

	require.True(t, result.Success)
	b := result.Breakdown
	assert.Equal(t, int64(96000), b.LoanAmount)
	assert.Equal(t, int64(24000), b.DownPayment)
	assert.Equal(t, 120, b.NumPayments)
	assert.Equal(t, int64(800), b.MonthlyPayment)
	assert.Equal(t, int64(96000), b.TotalPaid)
	assert.Equal(t, int64(0), b.TotalInterest)
}

func TestCalculateMortgage_CustomTerms(t *testing.T) {
	downPct := 0.30
	rate := 0.06
	years := 15
	result := CalculateMortgage(MortgageParams{
		PropertyPrice:      200000,
		DownPaymentPercent: &downPct,
		AnnualRate:         &rate,
		TermYears:          &years,
	})

	require.True(t, result.Success)
	b := result.Breakdown
	assert.Equal(t, int64(60000), b.DownPayment)
	assert.Equal(t, int64(140000), b.LoanAmount)
	assert.Equal(t, 180, b.NumPayments)
	assert.Equal(t, 0.06, b.AnnualRate)
	assert.Equal(t, b.TotalPaid-b.LoanAmount, b.TotalInterest)
	assert.Contains(t, result.Message, "30% down")
}

func TestCalculateMortgage_NonPositiveTermFallsBack(t *testing.T) {
	years := 0
	result := CalculateMortgage(MortgageParams{PropertyPrice: 100000, TermYears: &years})

	require.True(t, result.Success)
	assert.Equal(t, DefaultTermYears, result.Breakdown.TermYears)
	assert.Equal(t, 240, result.Breakdown.NumPayments)
}

func TestCalculateMortgage_InvalidPrice(t *testing.T) {
	for _, price := range []float64{0, -50000} {
		result := CalculateMortgage(MortgageParams{PropertyPrice: price})

		assert.False(t, result.Success)
		assert.Nil(t, result.Breakdown)
		assert.Equal(t, "Property price must be positive.", result.Message)
		assert.Equal(t, DisplayText, result.DisplayType)
	}
}
