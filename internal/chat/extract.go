package chat

import (
	"regexp"
	"strconv"
	"strings"

	"remarket/server/internal/models"
	"remarket/server/internal/tools"
)

// jordanCities maps the spellings the extractor recognizes to the casing the
// catalog stores.
var jordanCities = map[string]string{
	"amman":   "Amman",
	"irbid":   "Irbid",
	"zarqa":   "Zarqa",
	"aqaba":   "Aqaba",
	"madaba":  "Madaba",
	"salt":    "Salt",
	"jerash":  "Jerash",
	"ajloun":  "Ajloun",
	"karak":   "Karak",
	"mafraq":  "Mafraq",
	"tafilah": "Tafilah",
	"ma'an":   "Ma'an",
	"maan":    "Ma'an",
}

// The suffix groups exist because RE2 has no lookahead: "over 5 years" and
// "over 100k" both match the number pattern, and the captured suffix tells
// them apart.
var (
	amountRe   = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(k\b|thousand|%|percent|years?|m2|m²|sqm)?`)
	maxPriceRe = regexp.MustCompile(`(?:under|below|less than|up to|cheaper than|max(?:imum)?(?: of)?)\s+(\d[\d,]*(?:\.\d+)?)\s*(k\b|thousand|%|percent|years?)?`)
	minPriceRe = regexp.MustCompile(`(?:above|more than|at least|starting (?:at|from)|min(?:imum)?(?: of)?)\s+(\d[\d,]*(?:\.\d+)?)\s*(k\b|thousand|%|percent|years?)?`)
	bedroomRe  = regexp.MustCompile(`(\d+)\s*(\+)?\s*bed(?:room)?s?`)
	bathroomRe = regexp.MustCompile(`(\d+)\s*(\+)?\s*bath(?:room)?s?`)
	areaRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:m2|m²|sqm|square\s*met(?:er|re)s?)`)
	yearsRe    = regexp.MustCompile(`(\d+)\s*[- ]?\s*(?:years?|yrs?)\b`)
	downRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|percent)\s*down|down\s*(?:payment)?\s*(?:of\s*)?(\d+(?:\.\d+)?)\s*(?:%|percent)`)
	rateRe     = regexp.MustCompile(`(?:rate|interest)\s*(?:of\s*|at\s*)?(\d+(?:\.\d+)?)\s*(?:%|percent)`)
	apprecRe   = regexp.MustCompile(`appreciat\w*\s*(?:of\s*|at\s*|rate\s*(?:of\s*)?)?(\d+(?:\.\d+)?)\s*(?:%|percent)`)
	expenseRe  = regexp.MustCompile(`expenses?\s*(?:of\s*|at\s*|ratio\s*(?:of\s*)?)?(\d+(?:\.\d+)?)\s*(?:%|percent)`)
	rentRe     = regexp.MustCompile(`rent(?:al)?(?:\s+income)?\s*(?:of|is|at)?\s*(\d[\d,]*(?:\.\d+)?)|(\d[\d,]*(?:\.\d+)?)\s*(?:jod\s*)?(?:per|a|/)\s*month`)
	idRe       = regexp.MustCompile(`(?:propert(?:y|ies)|listing|id)\s*#?\s*(\d+)`)
	bareIntRe  = regexp.MustCompile(`\b\d{1,7}\b`)
)

func parseAmount(num, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch {
	case suffix == "k" || suffix == "thousand":
		v *= 1000
	case suffix != "":
		// A percent, duration or area reading, not a price.
		return 0, false
	}
	return v, true
}

func extractCity(msg string) string {
	for spelling, canonical := range jordanCities {
		if strings.Contains(msg, spelling) {
			return canonical
		}
	}
	return ""
}

func extractPropertyType(msg string) string {
	switch {
	case strings.Contains(msg, "townhouse") || strings.Contains(msg, "town house"):
		return models.TypeTownHouse
	case strings.Contains(msg, "villa") || strings.Contains(msg, "palace"):
		return models.TypeVilla
	case strings.Contains(msg, "whole building") || strings.Contains(msg, "building"):
		return models.TypeWholeBuilding
	case strings.Contains(msg, "farm") || strings.Contains(msg, "chalet"):
		return models.TypeFarm
	case strings.Contains(msg, "apartment") || strings.Contains(msg, "flat"):
		return models.TypeApartment
	}
	return ""
}

func extractListing(msg string) string {
	switch {
	case strings.Contains(msg, "rent"):
		return models.ListingRent
	case strings.Contains(msg, "sale") || strings.Contains(msg, "buy") || strings.Contains(msg, "purchase"):
		return models.ListingSale
	}
	return ""
}

func extractBedrooms(msg string) string {
	if strings.Contains(msg, "studio") {
		return "studio"
	}
	if m := bedroomRe.FindStringSubmatch(msg); m != nil {
		if m[2] == "+" {
			return m[1] + "+"
		}
		return m[1]
	}
	return ""
}

// largestAmount returns the biggest standalone number at or above floor.
// Prices dominate every other number in these messages, so the maximum is
// the asking/purchase price whenever one was typed at all.
func largestAmount(msg string, floor float64) (float64, bool) {
	best := 0.0
	found := false
	for _, m := range amountRe.FindAllStringSubmatch(msg, -1) {
		v, ok := parseAmount(m[1], strings.TrimSpace(m[2]))
		if !ok || v < floor {
			continue
		}
		if v > best {
			best = v
			found = true
		}
	}
	return best, found
}

func extractSearchFilter(msg string) models.SearchFilter {
	filter := models.SearchFilter{
		City:     extractCity(msg),
		Type:     extractPropertyType(msg),
		Listing:  extractListing(msg),
		Bedrooms: extractBedrooms(msg),
		Limit:    5,
	}
	if m := maxPriceRe.FindStringSubmatch(msg); m != nil {
		if v, ok := parseAmount(m[1], strings.TrimSpace(m[2])); ok {
			filter.MaxPrice = &v
		}
	}
	if m := minPriceRe.FindStringSubmatch(msg); m != nil {
		if v, ok := parseAmount(m[1], strings.TrimSpace(m[2])); ok {
			filter.MinPrice = &v
		}
	}
	return filter
}

func extractAttributes(msg string) models.ListingAttributes {
	attrs := models.ListingAttributes{
		City:         extractCity(msg),
		PropertyType: extractPropertyType(msg),
		Bedroom:      extractBedrooms(msg),
		Listing:      extractListing(msg),
	}
	if m := areaRe.FindStringSubmatch(msg); m != nil {
		attrs.SurfaceArea, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := bathroomRe.FindStringSubmatch(msg); m != nil {
		attrs.Bathroom, _ = strconv.Atoi(m[1])
	}
	switch {
	case strings.Contains(msg, "unfurnished"):
		attrs.Furnishing = "unfurnished"
	case strings.Contains(msg, "semi furnished") || strings.Contains(msg, "semi-furnished"):
		attrs.Furnishing = "semi furnished"
	case strings.Contains(msg, "furnished"):
		attrs.Furnishing = "furnished"
	}
	if price, ok := largestAmount(msg, 1000); ok {
		attrs.Price = &price
	}
	return attrs
}

func extractMortgageParams(msg string, fallbackPrice *float64) tools.MortgageParams {
	params := tools.MortgageParams{}
	if price, ok := largestAmount(msg, 1000); ok {
		params.PropertyPrice = price
	} else if fallbackPrice != nil {
		params.PropertyPrice = *fallbackPrice
	}
	if m := downRe.FindStringSubmatch(msg); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			pct := v / 100
			params.DownPaymentPercent = &pct
		}
	}
	if m := rateRe.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rate := v / 100
			params.AnnualRate = &rate
		}
	}
	if m := yearsRe.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			params.TermYears = &v
		}
	}
	return params
}

func extractROIParams(msg string, fallbackPrice *float64) tools.ROIParams {
	params := tools.ROIParams{}
	if price, ok := largestAmount(msg, 1000); ok {
		params.PurchasePrice = price
	} else if fallbackPrice != nil {
		params.PurchasePrice = *fallbackPrice
	}
	if m := rentRe.FindStringSubmatch(msg); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			params.MonthlyRent = v
		}
	}
	if m := yearsRe.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			params.Years = &v
		}
	}
	if m := apprecRe.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rate := v / 100
			params.AppreciationRate = &rate
		}
	}
	if m := expenseRe.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			ratio := v / 100
			params.ExpenseRatio = &ratio
		}
	}
	return params
}

// extractIDs pulls property ids for comparison. Explicit "property 12"
// references win; otherwise any small standalone numbers are taken in order.
func extractIDs(msg string) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	add := func(raw string) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	for _, m := range idRe.FindAllStringSubmatch(msg, -1) {
		add(m[1])
	}
	if len(ids) >= 2 {
		return ids
	}
	for _, m := range bareIntRe.FindAllString(msg, -1) {
		add(m)
	}
	return ids
}
