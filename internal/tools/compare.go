package tools

import (
	"fmt"
	"math"

	"remarket/server/internal/models"
)

// ComparisonRow is one column of the side-by-side table.
type ComparisonRow struct {
	ID          int64    `json:"id"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	Price       int64    `json:"price"`
	Size        *float64 `json:"size"`
	PricePerSqm int64    `json:"price_per_sqm"`
	Bedrooms    string   `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Furnishing  string   `json:"furnishing"`
	Listing     string   `json:"listing"`
}

type CompareRecommendation struct {
	BestValueID       int64  `json:"best_value_id"`
	BestValueLocation string `json:"best_value_location"`
	Reason            string `json:"reason"`
}

type CompareResult struct {
	Success        bool                   `json:"success"`
	Properties     []ComparisonRow        `json:"properties"`
	Recommendation *CompareRecommendation `json:"recommendation,omitempty"`
	Message        string                 `json:"message"`
	DisplayType    string                 `json:"display_type"`
}

// Compare puts 2-3 listings side by side and flags the best value by price
// per square meter. Listings without an area never win the recommendation.
func (t *Toolbox) Compare(ids []int64) (*CompareResult, error) {
	if len(ids) < 2 {
		return &CompareResult{
			Success:     false,
			Properties:  []ComparisonRow{},
			Message:     "Need at least 2 properties to compare.",
			DisplayType: DisplayText,
		}, nil
	}
	if len(ids) > 3 {
		ids = ids[:3]
	}

	rows := make([]ComparisonRow, 0, len(ids))
	for _, id := range ids {
		p, err := t.store.GetProperty(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load property %d: %w", id, err)
		}
		if p == nil {
			continue
		}

		row := ComparisonRow{
			ID:          p.ID,
			Location:    fmt.Sprintf("%s, %s", p.Neighborhood, p.City),
			Type:        p.PropertyType,
			Size:        p.SurfaceArea,
			PricePerSqm: roundJOD(p.PricePerSqm()),
			Bedrooms:    p.Bedroom,
			Bathrooms:   p.Bathroom,
			Furnishing:  p.Furnishing,
			Listing:     p.Listing,
		}
		if p.Price != nil {
			row.Price = int64(*p.Price)
		}
		rows = append(rows, row)
	}

	if len(rows) < 2 {
		return &CompareResult{
			Success:     false,
			Properties:  []ComparisonRow{},
			Message:     "Could not find enough properties for comparison.",
			DisplayType: DisplayText,
		}, nil
	}

	bestIdx := -1
	best := math.Inf(1)
	for i, row := range rows {
		if row.PricePerSqm <= 0 {
			continue
		}
		if float64(row.PricePerSqm) < best {
			best = float64(row.PricePerSqm)
			bestIdx = i
		}
	}

	result := &CompareResult{
		Success:     true,
		Properties:  rows,
		Message:     fmt.Sprintf("Compared %d properties.", len(rows)),
		DisplayType: DisplayComparison,
	}
	if bestIdx >= 0 {
		b := rows[bestIdx]
		result.Recommendation = &CompareRecommendation{
			BestValueID:       b.ID,
			BestValueLocation: b.Location,
			Reason:            fmt.Sprintf("Best value at %d JOD/m²", b.PricePerSqm),
		}
		result.Message = fmt.Sprintf("Compared %d properties. **%s** offers the best value at %d JOD per square meter.",
			len(rows), b.Location, b.PricePerSqm)
	}
	return result, nil
}
