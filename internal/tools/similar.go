package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"remarket/server/internal/models"
)

type SimilarResult struct {
	Success           bool              `json:"success"`
	SourceProperty    *models.Property  `json:"source_property,omitempty"`
	SimilarProperties []models.Property `json:"similar_properties"`
	Count             int               `json:"count"`
	Message           string            `json:"message"`
	DisplayType       string            `json:"display_type"`
}

// FindSimilar ranks the catalog against a reference listing. A missing
// reference id and a reference with zero comparables are distinct outcomes.
func (t *Toolbox) FindSimilar(propertyID int64, limit int) (*SimilarResult, error) {
	if limit <= 0 {
		limit = 3
	}

	ref, err := t.store.GetProperty(propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference property: %w", err)
	}
	if ref == nil {
		return &SimilarResult{
			Success:           false,
			SimilarProperties: []models.Property{},
			Message:           fmt.Sprintf("Property %d not found.", propertyID),
			DisplayType:       DisplayText,
		}, nil
	}

	candidates, err := t.store.GetCandidates(ref.City, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	matches := RankComparables(ref, candidates, limit)
	if len(matches) == 0 {
		return &SimilarResult{
			Success:           false,
			SimilarProperties: []models.Property{},
			Message:           "No similar properties found.",
			DisplayType:       DisplayText,
		}, nil
	}

	ref.Images = ref.PlaceholderImages()
	for i := range matches {
		matches[i].Images = matches[i].PlaceholderImages()
	}

	return &SimilarResult{
		Success:           true,
		SourceProperty:    ref,
		SimilarProperties: matches,
		Count:             len(matches),
		Message: fmt.Sprintf("Found %d properties similar to the one in %s, %s.",
			len(matches), ref.Neighborhood, ref.City),
		DisplayType: DisplayPropertyCards,
	}, nil
}

// RankComparables applies the constraint chain in fixed order and returns at
// most limit candidates:
//
//  1. the reference itself is excluded
//  2. same city, when the reference has one
//  3. same property type, kept only while it leaves at least limit
//     candidates
//  4. asking price within [0.5x, 1.5x] of the reference price, never relaxed
//  5. ascending absolute price distance; without a reference price the
//     incoming order is kept
func RankComparables(ref *models.Property, candidates []models.Property, limit int) []models.Property {
	pool := make([]models.Property, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == ref.ID {
			continue
		}
		if ref.City != "" && !strings.EqualFold(c.City, ref.City) {
			continue
		}
		pool = append(pool, c)
	}

	if ref.PropertyType != "" {
		sameType := make([]models.Property, 0, len(pool))
		for _, c := range pool {
			if strings.EqualFold(c.PropertyType, ref.PropertyType) {
				sameType = append(sameType, c)
			}
		}
		// Only narrow by type when enough candidates survive; a thin
		// type segment should widen the pool, not empty the result.
		if len(sameType) >= limit {
			pool = sameType
		}
	}

	if ref.Price != nil {
		refPrice := *ref.Price
		low, high := 0.5*refPrice, 1.5*refPrice
		inWindow := make([]models.Property, 0, len(pool))
		for _, c := range pool {
			if c.Price == nil {
				continue
			}
			if *c.Price >= low && *c.Price <= high {
				inWindow = append(inWindow, c)
			}
		}
		pool = inWindow

		sort.SliceStable(pool, func(i, j int) bool {
			return math.Abs(*pool[i].Price-refPrice) < math.Abs(*pool[j].Price-refPrice)
		})
	}

	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
