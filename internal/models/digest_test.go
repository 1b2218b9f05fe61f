package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPropertyAllowed_NilFilters(t *testing.T) {
	var filters *DigestFilters

	assert.True(t, filters.IsPropertyAllowed(&Property{City: "Amman"}))
}

func TestIsPropertyAllowed_EmptyFilters(t *testing.T) {
	filters := &DigestFilters{}

	assert.True(t, filters.IsPropertyAllowed(&Property{City: "Amman"}))
}

func TestIsPropertyAllowed_PriceBounds(t *testing.T) {
	filters := &DigestFilters{MinPrice: floatPtr(50000), MaxPrice: floatPtr(150000)}

	assert.True(t, filters.IsPropertyAllowed(&Property{Price: floatPtr(50000)}))
	assert.True(t, filters.IsPropertyAllowed(&Property{Price: floatPtr(150000)}))
	assert.False(t, filters.IsPropertyAllowed(&Property{Price: floatPtr(49999)}))
	assert.False(t, filters.IsPropertyAllowed(&Property{Price: floatPtr(150001)}))
}

func TestIsPropertyAllowed_PriceFilterNeedsPrice(t *testing.T) {
	filters := &DigestFilters{MinPrice: floatPtr(50000)}

	assert.False(t, filters.IsPropertyAllowed(&Property{}))
}

func TestIsPropertyAllowed_AreaBounds(t *testing.T) {
	filters := &DigestFilters{MinArea: floatPtr(100), MaxArea: floatPtr(300)}

	assert.True(t, filters.IsPropertyAllowed(&Property{SurfaceArea: floatPtr(150)}))
	assert.False(t, filters.IsPropertyAllowed(&Property{SurfaceArea: floatPtr(99)}))
	assert.False(t, filters.IsPropertyAllowed(&Property{SurfaceArea: floatPtr(301)}))
	assert.False(t, filters.IsPropertyAllowed(&Property{}))
}

func TestIsPropertyAllowed_Listing(t *testing.T) {
	filters := &DigestFilters{Listing: "Sale"}

	assert.True(t, filters.IsPropertyAllowed(&Property{Listing: ListingSale}))
	assert.False(t, filters.IsPropertyAllowed(&Property{Listing: ListingRent}))
}

func TestIsPropertyAllowed_Cities(t *testing.T) {
	filters := &DigestFilters{Cities: []string{"amman", "Irbid"}}

	assert.True(t, filters.IsPropertyAllowed(&Property{City: "Amman"}))
	assert.True(t, filters.IsPropertyAllowed(&Property{City: "irbid"}))
	assert.False(t, filters.IsPropertyAllowed(&Property{City: "Zarqa"}))
}
