package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remarket/server/internal/models"
)

func TestExtractCity(t *testing.T) {
	assert.Equal(t, "Amman", extractCity("apartments in amman please"))
	assert.Equal(t, "Ma'an", extractCity("anything in maan"))
	assert.Equal(t, "", extractCity("somewhere nice"))
}

func TestExtractPropertyType(t *testing.T) {
	assert.Equal(t, models.TypeApartment, extractPropertyType("a flat downtown"))
	assert.Equal(t, models.TypeVilla, extractPropertyType("looking for a villa"))
	assert.Equal(t, models.TypeTownHouse, extractPropertyType("a town house with a garden"))
	assert.Equal(t, models.TypeFarm, extractPropertyType("a chalet near the dead sea"))
	assert.Equal(t, models.TypeWholeBuilding, extractPropertyType("an entire building"))
	assert.Equal(t, "", extractPropertyType("something"))
}

func TestExtractBedrooms(t *testing.T) {
	assert.Equal(t, "3", extractBedrooms("3 bedrooms minimum"))
	assert.Equal(t, "2+", extractBedrooms("2+ beds"))
	assert.Equal(t, "studio", extractBedrooms("a studio in abdoun"))
	assert.Equal(t, "", extractBedrooms("lots of space"))
}

func TestExtractSearchFilter(t *testing.T) {
	filter := extractSearchFilter("find apartments in amman for rent with 2 bedrooms under 120k")

	assert.Equal(t, "Amman", filter.City)
	assert.Equal(t, models.TypeApartment, filter.Type)
	assert.Equal(t, models.ListingRent, filter.Listing)
	assert.Equal(t, "2", filter.Bedrooms)
	require.NotNil(t, filter.MaxPrice)
	assert.Equal(t, 120000.0, *filter.MaxPrice)
	assert.Nil(t, filter.MinPrice)
	assert.Equal(t, 5, filter.Limit)
}

func TestExtractSearchFilter_MinPrice(t *testing.T) {
	filter := extractSearchFilter("villas for sale above 250,000")

	assert.Equal(t, models.TypeVilla, filter.Type)
	assert.Equal(t, models.ListingSale, filter.Listing)
	require.NotNil(t, filter.MinPrice)
	assert.Equal(t, 250000.0, *filter.MinPrice)
}

func TestExtractAttributes(t *testing.T) {
	attrs := extractAttributes("predict the price of a 150m2 apartment in amman with 2 bathrooms, semi-furnished, listed at 130,000")

	assert.Equal(t, "Amman", attrs.City)
	assert.Equal(t, models.TypeApartment, attrs.PropertyType)
	assert.Equal(t, 150.0, attrs.SurfaceArea)
	assert.Equal(t, 2, attrs.Bathroom)
	assert.Equal(t, "semi furnished", attrs.Furnishing)
	require.NotNil(t, attrs.Price)
	assert.Equal(t, 130000.0, *attrs.Price)
}

func TestExtractAttributes_SuffixedNumbersAreNotPrices(t *testing.T) {
	// The area and the bathroom count must not be mistaken for an
	// asking price.
	attrs := extractAttributes("a 150m2 apartment with 2 bathrooms")

	assert.Nil(t, attrs.Price)
	assert.Equal(t, 150.0, attrs.SurfaceArea)
}

func TestExtractMortgageParams(t *testing.T) {
	params := extractMortgageParams("mortgage for 120k with 25% down at rate of 6% over 15 years", nil)

	assert.Equal(t, 120000.0, params.PropertyPrice)
	require.NotNil(t, params.DownPaymentPercent)
	assert.Equal(t, 0.25, *params.DownPaymentPercent)
	require.NotNil(t, params.AnnualRate)
	assert.Equal(t, 0.06, *params.AnnualRate)
	require.NotNil(t, params.TermYears)
	assert.Equal(t, 15, *params.TermYears)
}

func TestExtractMortgageParams_DownPaymentOf(t *testing.T) {
	params := extractMortgageParams("what's the mortgage on 90,000 with a down payment of 30%", nil)

	assert.Equal(t, 90000.0, params.PropertyPrice)
	require.NotNil(t, params.DownPaymentPercent)
	assert.Equal(t, 0.30, *params.DownPaymentPercent)
	assert.Nil(t, params.AnnualRate)
	assert.Nil(t, params.TermYears)
}

func TestExtractMortgageParams_FallbackPrice(t *testing.T) {
	price := 85000.0
	params := extractMortgageParams("calculate the mortgage on this one", &price)

	assert.Equal(t, 85000.0, params.PropertyPrice)
}

func TestExtractROIParams(t *testing.T) {
	params := extractROIParams("roi on 100k with rent of 800 over 5 years, appreciation at 4% and expenses of 25%", nil)

	assert.Equal(t, 100000.0, params.PurchasePrice)
	assert.Equal(t, 800.0, params.MonthlyRent)
	require.NotNil(t, params.Years)
	assert.Equal(t, 5, *params.Years)
	require.NotNil(t, params.AppreciationRate)
	assert.Equal(t, 0.04, *params.AppreciationRate)
	require.NotNil(t, params.ExpenseRatio)
	assert.Equal(t, 0.25, *params.ExpenseRatio)
}

func TestExtractROIParams_PerMonthRent(t *testing.T) {
	params := extractROIParams("roi for a 100,000 property renting at 800 per month", nil)

	assert.Equal(t, 100000.0, params.PurchasePrice)
	assert.Equal(t, 800.0, params.MonthlyRent)
}

func TestExtractIDs(t *testing.T) {
	// Explicit references.
	assert.Equal(t, []int64{3, 7}, extractIDs("compare property 3 and property 7"))

	// One explicit reference plus a bare number.
	assert.Equal(t, []int64{12, 15}, extractIDs("compare properties 12 and 15"))

	// Bare numbers only, duplicates dropped.
	assert.Equal(t, []int64{5, 9}, extractIDs("compare 5, 9 and 5"))

	assert.Empty(t, extractIDs("compare my options"))
}

func TestLargestAmount(t *testing.T) {
	// The price dominates counts and durations.
	v, ok := largestAmount("a 3 bedroom place around 95,000 held for 10 years", 1000)
	require.True(t, ok)
	assert.Equal(t, 95000.0, v)

	_, ok = largestAmount("3 bedrooms and 2 bathrooms", 1000)
	assert.False(t, ok)
}
