package database

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remarket/server/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func makeProperty(city, neighborhood, ptype, listing string, price float64) *models.Property {
	p := &models.Property{
		City:         city,
		Neighborhood: neighborhood,
		PropertyType: ptype,
		Bedroom:      "3",
		Bathroom:     2,
		Furnishing:   "furnished",
		Floor:        "2nd Floor",
		Listing:      listing,
	}
	area := 150.0
	p.SurfaceArea = &area
	if price > 0 {
		p.Price = &price
	}
	return p
}

// setValuation fills the model-owned columns the import path leaves empty.
func setValuation(t *testing.T, db *Database, id int64, predicted int64, label string, pct float64) {
	t.Helper()
	_, err := db.db.Exec(
		`UPDATE properties SET predicted_price = ?, valuation = ?, valuation_percentage = ? WHERE id = ?`,
		predicted, label, pct, id,
	)
	require.NoError(t, err)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.Ping())
}

func TestInsertAndGetProperty(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "Abdoun", "apartment", "sale", 100000),
		makeProperty("Irbid", "University District", "villas and palaces", "rent", 0),
	}))

	p, err := db.GetProperty(1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Amman", p.City)
	assert.Equal(t, "Abdoun", p.Neighborhood)
	assert.Equal(t, "apartment", p.PropertyType)
	assert.Equal(t, "3", p.Bedroom)
	assert.Equal(t, 2, p.Bathroom)
	require.NotNil(t, p.SurfaceArea)
	assert.Equal(t, 150.0, *p.SurfaceArea)
	require.NotNil(t, p.Price)
	assert.Equal(t, 100000.0, *p.Price)
	assert.Nil(t, p.PredictedPrice)
	assert.Nil(t, p.Valuation)

	unpriced, err := db.GetProperty(2)
	require.NoError(t, err)
	require.NotNil(t, unpriced)
	assert.Nil(t, unpriced.Price)

	missing, err := db.GetProperty(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListProperties_Pagination(t *testing.T) {
	db := newTestDatabase(t)

	batch := make([]*models.Property, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, makeProperty("Amman", fmt.Sprintf("Area %d", i), "apartment", "sale", float64(50000+i*1000)))
	}
	require.NoError(t, db.InsertProperties(batch))

	page, err := db.ListProperties(models.PropertyFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Properties, 10)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)

	// Default sort is newest first.
	assert.Equal(t, int64(25), page.Properties[0].ID)

	last, err := db.ListProperties(models.PropertyFilter{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Properties, 5)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	// Out-of-range values fall back to page 1, limit 20.
	fallback, err := db.ListProperties(models.PropertyFilter{Page: 0, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.Page)
	assert.Equal(t, 20, fallback.Limit)
}

func TestListProperties_Filters(t *testing.T) {
	db := newTestDatabase(t)

	studio := makeProperty("Amman", "Jabal Amman", "apartment", "rent", 400)
	studio.Bedroom = "Studio"
	big := makeProperty("Amman", "Dabouq", "villas and palaces", "sale", 350000)
	big.Bedroom = "5"
	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "Abdoun", "apartment", "sale", 100000),
		makeProperty("Irbid", "City Center", "apartment", "sale", 60000),
		studio,
		big,
	}))

	byCity, err := db.ListProperties(models.PropertyFilter{City: "amman"})
	require.NoError(t, err)
	assert.Equal(t, 3, byCity.Total)

	byBedrooms, err := db.ListProperties(models.PropertyFilter{Bedrooms: "5+"})
	require.NoError(t, err)
	require.Equal(t, 1, byBedrooms.Total)
	assert.Equal(t, "Dabouq", byBedrooms.Properties[0].Neighborhood)

	byStudio, err := db.ListProperties(models.PropertyFilter{Bedrooms: "studio"})
	require.NoError(t, err)
	require.Equal(t, 1, byStudio.Total)
	assert.Equal(t, "Jabal Amman", byStudio.Properties[0].Neighborhood)

	minPrice := 90000.0
	maxPrice := 200000.0
	byPrice, err := db.ListProperties(models.PropertyFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Equal(t, 1, byPrice.Total)
	assert.Equal(t, "Abdoun", byPrice.Properties[0].Neighborhood)

	bySearch, err := db.ListProperties(models.PropertyFilter{Search: "dabouq"})
	require.NoError(t, err)
	assert.Equal(t, 1, bySearch.Total)
}

func TestListProperties_SortByPrice(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "A", "apartment", "sale", 120000),
		makeProperty("Amman", "B", "apartment", "sale", 80000),
		makeProperty("Amman", "C", "apartment", "rent", 0), // no price
	}))

	page, err := db.ListProperties(models.PropertyFilter{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, page.Properties, 3)
	assert.Equal(t, "B", page.Properties[0].Neighborhood)
	assert.Equal(t, "A", page.Properties[1].Neighborhood)
	// Unpriced listings sort last, not first.
	assert.Nil(t, page.Properties[2].Price)
}

func TestSearchProperties_NewestFirst(t *testing.T) {
	db := newTestDatabase(t)

	batch := make([]*models.Property, 0, 8)
	for i := 0; i < 8; i++ {
		batch = append(batch, makeProperty("Amman", fmt.Sprintf("Area %d", i), "apartment", "sale", 100000))
	}
	require.NoError(t, db.InsertProperties(batch))

	results, err := db.SearchProperties(models.SearchFilter{City: "Amman"})
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, int64(8), results[0].ID)

	limited, err := db.SearchProperties(models.SearchFilter{City: "Amman", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetCandidates(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "Abdoun", "apartment", "sale", 100000),
		makeProperty("Amman", "Sweifieh", "apartment", "sale", 95000),
		makeProperty("Irbid", "City Center", "apartment", "sale", 60000),
	}))

	candidates, err := db.GetCandidates("amman", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, int64(2), candidates[0].ID)

	all, err := db.GetCandidates("", 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetOpportunities(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "A", "apartment", "sale", 80000),
		makeProperty("Amman", "B", "apartment", "sale", 84000),
		makeProperty("Amman", "C", "apartment", "sale", 90000),
		makeProperty("Amman", "D", "apartment", "sale", 70000),
		makeProperty("Amman", "E", "apartment", "sale", 120000),
	}))
	setValuation(t, db, 1, 100000, "undervalued", -20)
	setValuation(t, db, 2, 100000, "undervalued", -16)
	setValuation(t, db, 3, 100000, "undervalued", -10)
	setValuation(t, db, 4, 100000, "fair", -30) // label wins over the number
	setValuation(t, db, 5, 100000, "overvalued", 20)

	opportunities, err := db.GetOpportunities(15, 20)
	require.NoError(t, err)
	require.Len(t, opportunities, 2)
	assert.Equal(t, "A", opportunities[0].Neighborhood)
	assert.Equal(t, "B", opportunities[1].Neighborhood)

	top, err := db.GetOpportunities(15, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "A", top[0].Neighborhood)
}

func TestGetMarketStats(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "A", "apartment", "sale", 100000),
		makeProperty("Amman", "B", "apartment", "rent", 80000),
		makeProperty("Irbid", "C", "apartment", "sale", 0),
	}))
	setValuation(t, db, 1, 120000, "undervalued", -16.67)
	setValuation(t, db, 2, 70000, "overvalued", 14.29)

	stats, err := db.GetMarketStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProperties)
	assert.Equal(t, 2, stats.ForSale)
	assert.Equal(t, 1, stats.ForRent)
	assert.Equal(t, 2, stats.Predicted)
	assert.Equal(t, 1, stats.Undervalued)
	assert.Equal(t, 1, stats.Overvalued)
	assert.Equal(t, 0, stats.Fair)
	assert.Equal(t, 90000.0, stats.AveragePrice)
	assert.Equal(t, 2, stats.Cities)
}

func TestAdminSearchProperties(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "Abdoun", "apartment", "sale", 100000),
		makeProperty("Irbid", "City Center", "villas and palaces", "sale", 200000),
	}))

	byID, err := db.AdminSearchProperties("2", 20)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, int64(2), byID[0].ID)

	missing, err := db.AdminSearchProperties("999", 20)
	require.NoError(t, err)
	assert.Empty(t, missing)

	byText, err := db.AdminSearchProperties("abdoun", 20)
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "Abdoun", byText[0].Neighborhood)

	byType, err := db.AdminSearchProperties("villas", 20)
	require.NoError(t, err)
	assert.Len(t, byType, 1)
}

func TestUpdateProperty(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "Abdoun", "apartment", "sale", 100000),
	}))

	newPrice := 95000.0
	newCity := "Irbid"
	err := db.UpdateProperty(1, models.PropertyUpdate{Price: &newPrice, City: &newCity})
	require.NoError(t, err)

	p, err := db.GetProperty(1)
	require.NoError(t, err)
	assert.Equal(t, "Irbid", p.City)
	assert.Equal(t, 95000.0, *p.Price)
	// Untouched fields survive.
	assert.Equal(t, "Abdoun", p.Neighborhood)

	err = db.UpdateProperty(999, models.PropertyUpdate{Price: &newPrice})
	assert.ErrorIs(t, err, ErrNotFound)

	// An empty update is a no-op, not an error.
	assert.NoError(t, db.UpdateProperty(1, models.PropertyUpdate{}))
}

func TestDeleteProperty(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertProperties([]*models.Property{
		makeProperty("Amman", "Abdoun", "apartment", "sale", 100000),
	}))

	require.NoError(t, db.DeleteProperty(1))

	p, err := db.GetProperty(1)
	require.NoError(t, err)
	assert.Nil(t, p)

	assert.ErrorIs(t, db.DeleteProperty(1), ErrNotFound)
}
