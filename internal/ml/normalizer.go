package ml

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"remarket/server/internal/models"
)

// FeatureVector is the canonical encoding the prediction model consumes.
// Bedroom is NaN when the source text is unparsable; the model treats NaN
// as a missing value.
type FeatureVector struct {
	SurfaceArea  float64
	Bedroom      float64
	Bathroom     float64
	Floor        float64
	Furnishing   float64
	TypeOrdinal  float64
	City         string
	Neighborhood string
	Listing      string
}

var furnishingLevels = map[string]float64{
	"unfurnished":    0,
	"semi furnished": 0.5,
	"furnished":      1,
}

var typeOrdinals = map[string]float64{
	models.TypeApartment:     0,
	models.TypeTownHouse:     1,
	models.TypeVilla:         2,
	models.TypeWholeBuilding: 3,
	models.TypeFarm:          4,
}

var digitRun = regexp.MustCompile(`\d+`)

// Normalize maps raw listing attributes onto the feature vector the model
// was trained against. It is total: any input, including unrecognized text,
// produces a defined vector.
func Normalize(attrs models.ListingAttributes) FeatureVector {
	city, neighborhood := attrs.City, attrs.Neighborhood
	if attrs.Location != "" && city == "" {
		city, neighborhood = SplitLocation(attrs.Location)
	}

	return FeatureVector{
		SurfaceArea:  attrs.SurfaceArea,
		Bedroom:      bedroomValue(attrs.Bedroom),
		Bathroom:     float64(attrs.Bathroom),
		Floor:        floorValue(attrs.Floor),
		Furnishing:   furnishingLevels[strings.ToLower(strings.TrimSpace(attrs.Furnishing))],
		TypeOrdinal:  typeOrdinals[strings.ToLower(strings.TrimSpace(attrs.PropertyType))],
		City:         normalizePlace(city),
		Neighborhood: normalizePlace(neighborhood),
		Listing:      strings.ToLower(strings.TrimSpace(attrs.Listing)),
	}
}

// SplitLocation splits a composite "city, neighborhood" value on the first
// comma. The neighborhood defaults to "Unknown" when absent.
func SplitLocation(location string) (string, string) {
	parts := strings.SplitN(location, ",", 2)
	city := strings.TrimSpace(parts[0])
	neighborhood := "Unknown"
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		neighborhood = strings.TrimSpace(parts[1])
	}
	return city, neighborhood
}

func bedroomValue(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(s, "studio") {
		return 0.5
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return math.NaN()
}

func floorValue(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "basement"):
		return -1
	case strings.Contains(s, "ground") && strings.Contains(s, "semi"):
		return 0.5
	case strings.Contains(s, "ground"):
		return 0
	}
	if m := digitRun.FindString(s); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			return float64(v)
		}
	}
	return 0
}

func normalizePlace(s string) string {
	s = titleCase(strings.TrimSpace(s))
	// Title-casing treats the apostrophe as a word break, so the one
	// apostrophe city in the catalog needs putting back.
	return strings.ReplaceAll(s, "Ma'An", "Ma'an")
}

// titleCase uppercases every letter that follows a non-letter and lowercases
// the rest, the casing the training data was stored with.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
