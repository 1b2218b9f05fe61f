package models

import (
	"strings"
	"time"
)

// Digest is the periodic market summary pushed to the configured
// notification channels.
type Digest struct {
	GeneratedAt   time.Time  `json:"generated_at"`
	Opportunities []Property `json:"opportunities"`
	TotalListings int        `json:"total_listings"`
	MinDiscount   float64    `json:"min_discount"`
}

// DigestFilters narrows which opportunities make it into a digest.
type DigestFilters struct {
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
	MinArea  *float64 `json:"min_area"`
	MaxArea  *float64 `json:"max_area"`
	Cities   []string `json:"cities"`
	Listing  string   `json:"listing"`
}

// IsPropertyAllowed checks if a property matches the filter criteria.
func (f *DigestFilters) IsPropertyAllowed(property *Property) bool {
	if f == nil {
		return true // No filters means allow all
	}

	if property.Price != nil {
		if f.MinPrice != nil && *property.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && *property.Price > *f.MaxPrice {
			return false
		}
	} else if f.MinPrice != nil || f.MaxPrice != nil {
		return false // Filter requires a price but property has none
	}

	if property.SurfaceArea != nil {
		if f.MinArea != nil && *property.SurfaceArea < *f.MinArea {
			return false
		}
		if f.MaxArea != nil && *property.SurfaceArea > *f.MaxArea {
			return false
		}
	} else if f.MinArea != nil || f.MaxArea != nil {
		return false // Filter requires an area but property has none
	}

	if f.Listing != "" && !strings.EqualFold(f.Listing, property.Listing) {
		return false
	}

	if len(f.Cities) > 0 {
		allowed := false
		for _, city := range f.Cities {
			if strings.EqualFold(city, property.City) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}
