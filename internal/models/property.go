package models

import (
	"crypto/md5"
	"encoding/binary"
	"math/rand"
	"strconv"
	"time"
)

// Property types the market catalog carries. The ordinal encoding the
// prediction model expects lives in the ml package.
const (
	TypeApartment     = "apartment"
	TypeTownHouse     = "town house"
	TypeVilla         = "villas and palaces"
	TypeWholeBuilding = "whole building"
	TypeFarm          = "farms and chalets"
)

// Listing kinds.
const (
	ListingRent = "rent"
	ListingSale = "sale"
)

type Property struct {
	ID                  int64     `json:"id" gorm:"primaryKey"`
	City                string    `json:"city"`
	Neighborhood        string    `json:"neighborhood"`
	PropertyType        string    `json:"type" gorm:"column:type"`
	SurfaceArea         *float64  `json:"surface_area"`
	Bedroom             string    `json:"bedroom"`
	Bathroom            int       `json:"bathroom"`
	Furnishing          string    `json:"furnishing"`
	Floor               string    `json:"floor"`
	Listing             string    `json:"listing"`
	Price               *float64  `json:"price"`
	PredictedPrice      *int64    `json:"predicted_price"`
	Valuation           *string   `json:"valuation"`
	ValuationPercentage *float64  `json:"valuation_percentage"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Images              []string  `json:"images,omitempty" gorm:"-"`
}

func (Property) TableName() string {
	return "properties"
}

// Attributes projects the stored record onto the raw attribute set the
// prediction pipeline consumes.
func (p *Property) Attributes() ListingAttributes {
	attrs := ListingAttributes{
		City:         p.City,
		Neighborhood: p.Neighborhood,
		PropertyType: p.PropertyType,
		Bedroom:      p.Bedroom,
		Bathroom:     p.Bathroom,
		Furnishing:   p.Furnishing,
		Floor:        p.Floor,
		Listing:      p.Listing,
		Price:        p.Price,
	}
	if p.SurfaceArea != nil {
		attrs.SurfaceArea = *p.SurfaceArea
	}
	return attrs
}

// PricePerSqm returns the asking price divided by surface area, or 0 when
// either is missing or the area is zero.
func (p *Property) PricePerSqm() float64 {
	if p.Price == nil || p.SurfaceArea == nil || *p.SurfaceArea <= 0 {
		return 0
	}
	return *p.Price / *p.SurfaceArea
}

// ListingAttributes is the raw attribute set a prediction request carries.
// A composite Location ("city, neighborhood") may stand in for the separate
// city/neighborhood fields.
type ListingAttributes struct {
	City         string   `json:"city" form:"city"`
	Neighborhood string   `json:"neighborhood" form:"neighborhood"`
	Location     string   `json:"location,omitempty" form:"location"`
	PropertyType string   `json:"type" form:"type"`
	SurfaceArea  float64  `json:"surface_area" form:"surface_area"`
	Bedroom      string   `json:"bedroom" form:"bedroom"`
	Bathroom     int      `json:"bathroom" form:"bathroom"`
	Furnishing   string   `json:"furnishing" form:"furnishing"`
	Floor        string   `json:"floor" form:"floor"`
	Listing      string   `json:"listing" form:"listing"`
	Price        *float64 `json:"price,omitempty" form:"price"`
}

// PredictionResult is the engine's answer for a single listing.
type PredictionResult struct {
	PredictedPrice int64  `json:"predicted_price"`
	Confidence     string `json:"confidence"`
	Warning        string `json:"warning,omitempty"`
}

// PropertyFilter drives the paginated catalog listing.
type PropertyFilter struct {
	City      string   `form:"city"`
	Type      string   `form:"type"`
	Listing   string   `form:"listing"`
	Bedrooms  string   `form:"bedrooms"`
	Bathrooms string   `form:"bathrooms"`
	MinPrice  *float64 `form:"min_price"`
	MaxPrice  *float64 `form:"max_price"`
	Search    string   `form:"search"`
	Sort      string   `form:"sort"`
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
}

// PropertyUpdate carries the fields an admin edit may change. Nil fields
// are left untouched.
type PropertyUpdate struct {
	City         *string  `json:"city"`
	Neighborhood *string  `json:"neighborhood"`
	PropertyType *string  `json:"type"`
	SurfaceArea  *float64 `json:"surface_area"`
	Bedroom      *string  `json:"bedroom"`
	Bathroom     *int     `json:"bathroom"`
	Furnishing   *string  `json:"furnishing"`
	Floor        *string  `json:"floor"`
	Listing      *string  `json:"listing"`
	Price        *float64 `json:"price"`
}

// SearchFilter is the narrower filter set the conversational search tool
// uses.
type SearchFilter struct {
	City     string
	Type     string
	Listing  string
	Bedrooms string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
}

// PropertyPage wraps one page of catalog results.
type PropertyPage struct {
	Properties []Property `json:"properties"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}

// MarketStats summarizes the catalog for the admin dashboard.
type MarketStats struct {
	TotalProperties int     `json:"total_properties"`
	ForSale         int     `json:"for_sale"`
	ForRent         int     `json:"for_rent"`
	Predicted       int     `json:"predicted"`
	Undervalued     int     `json:"undervalued"`
	Fair            int     `json:"fair"`
	Overvalued      int     `json:"overvalued"`
	AveragePrice    float64 `json:"average_price"`
	Cities          int     `json:"cities"`
}

var propertyImages = map[string][]string{
	TypeApartment: {
		"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?w=800",
		"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?w=800",
		"https://images.unsplash.com/photo-1493809842364-78817add7ffb?w=800",
		"https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=800",
		"https://images.unsplash.com/photo-1484154218962-a197022b5858?w=800",
		"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=800",
	},
	TypeTownHouse: {
		"https://images.unsplash.com/photo-1570129477492-45c003edd2be?w=800",
		"https://images.unsplash.com/photo-1580587771525-78b9dba3b914?w=800",
		"https://images.unsplash.com/photo-1576941089067-2de3c901e126?w=800",
		"https://images.unsplash.com/photo-1605276374104-dee2a0ed3cd6?w=800",
		"https://images.unsplash.com/photo-1598228723793-52759bba239c?w=800",
	},
	TypeVilla: {
		"https://images.unsplash.com/photo-1613490493576-7fde63acd811?w=800",
		"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=800",
		"https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?w=800",
		"https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=800",
		"https://images.unsplash.com/photo-1600047509807-ba8f99d2cdde?w=800",
	},
	TypeWholeBuilding: {
		"https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?w=800",
		"https://images.unsplash.com/photo-1554469384-e58fac16e23a?w=800",
		"https://images.unsplash.com/photo-1545324418-cc1a3fa10c00?w=800",
		"https://images.unsplash.com/photo-1460317442991-0ec209397118?w=800",
	},
	TypeFarm: {
		"https://images.unsplash.com/photo-1500382017468-9049fed747ef?w=800",
		"https://images.unsplash.com/photo-1464822759023-fed622ff2c3b?w=800",
		"https://images.unsplash.com/photo-1510798831971-661eb04b3739?w=800",
		"https://images.unsplash.com/photo-1475113548554-5a36f1f523d6?w=800",
	},
}

var defaultImages = []string{
	"https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800",
	"https://images.unsplash.com/photo-1582407947304-fd86f028f716?w=800",
	"https://images.unsplash.com/photo-1512918728675-ed5a9ecdebfd?w=800",
	"https://images.unsplash.com/photo-1523217582562-09d0def993a6?w=800",
}

// PlaceholderImages deterministically picks 3-5 stock photos for a listing.
// The md5 of the id seeds the selection so the same property always shows
// the same gallery.
func (p *Property) PlaceholderImages() []string {
	pool, ok := propertyImages[p.PropertyType]
	if !ok {
		pool = defaultImages
	}

	sum := md5.Sum([]byte(strconv.FormatInt(p.ID, 10)))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	count := 3 + rng.Intn(3)
	if count > len(pool) {
		count = len(pool)
	}

	images := make([]string, 0, count)
	for _, idx := range rng.Perm(len(pool))[:count] {
		images = append(images, pool[idx])
	}
	return images
}
