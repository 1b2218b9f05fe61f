package chat

import (
	"fmt"
	"math"
	"strings"

	"remarket/server/internal/models"
)

const globalSystemPrompt = `You are a helpful real estate AI assistant specializing in the Jordanian property market.

## Your Capabilities:
- Search and find properties based on user criteria (city, type, price, bedrooms)
- Predict property prices using ML models
- Calculate ROI and investment returns
- Calculate mortgage payments
- Compare properties side-by-side
- Provide market insights

## Rules:
1. NEVER make up property listings - only describe data you were given
2. NEVER calculate math yourself - calculation results are provided to you
3. Be concise but helpful
4. If you don't know something, admit it
5. Prices are in JOD (Jordanian Dinars)

## Response Format:
- Be conversational but professional
- When showing properties, format them nicely
- When showing calculations, break them down clearly

You are knowledgeable about:
- Jordanian cities: Amman, Irbid, Zarqa, Aqaba, etc.
- Property types: apartments, villas, studios, whole buildings, farms
- Real estate investment strategies
- Mortgage calculations`

// propertySystemPrompt pins the conversation to one listing, including the
// persisted valuation so the model answers pricing questions from data
// instead of guessing.
func propertySystemPrompt(p *models.Property) string {
	var b strings.Builder

	b.WriteString("You are a helpful real estate AI assistant answering questions about a SPECIFIC property.\n\n")
	b.WriteString("## Current Property Details:\n")
	fmt.Fprintf(&b, "- **ID**: %d\n", p.ID)
	fmt.Fprintf(&b, "- **Location**: %s, %s\n", p.Neighborhood, p.City)
	fmt.Fprintf(&b, "- **Type**: %s\n", p.PropertyType)
	if p.Price != nil {
		fmt.Fprintf(&b, "- **Price**: %.0f JOD (%s)\n", *p.Price, p.Listing)
	} else {
		fmt.Fprintf(&b, "- **Price**: unknown (%s)\n", p.Listing)
	}
	if p.SurfaceArea != nil {
		fmt.Fprintf(&b, "- **Size**: %g m²\n", *p.SurfaceArea)
	}
	fmt.Fprintf(&b, "- **Bedrooms**: %s\n", p.Bedroom)
	fmt.Fprintf(&b, "- **Bathrooms**: %d\n", p.Bathroom)
	fmt.Fprintf(&b, "- **Furnishing**: %s\n", p.Furnishing)
	fmt.Fprintf(&b, "- **Floor**: %s\n", p.Floor)

	if p.PredictedPrice != nil && p.Price != nil && p.Valuation != nil {
		direction := "at"
		switch *p.Valuation {
		case "undervalued":
			direction = "below"
		case "overvalued":
			direction = "above"
		}
		pct := 0.0
		if p.ValuationPercentage != nil {
			pct = math.Abs(*p.ValuationPercentage)
		}
		b.WriteString("\n## AI Valuation Analysis:\n")
		fmt.Fprintf(&b, "- **Predicted Market Value**: %d JOD\n", *p.PredictedPrice)
		fmt.Fprintf(&b, "- **Listed Price**: %.0f JOD\n", *p.Price)
		fmt.Fprintf(&b, "- **Valuation Status**: %s\n", strings.ToUpper(*p.Valuation))
		fmt.Fprintf(&b, "- **Price Difference**: %.1f%% %s market value\n", pct, direction)
		b.WriteString("\n**Important**: When asked if this property is undervalued, overvalued, or fairly priced, use the valuation status above to answer accurately.\n")
	}

	b.WriteString(`
## Rules:
1. ONLY answer questions about THIS property
2. When asked about valuation, use the valuation data provided above
3. If asked about other properties, suggest switching to the general assistant
4. Be helpful and informative about this specific listing`)

	return b.String()
}

// buildPrompt folds the recent history into the prompt the way the model
// expects a transcript: prior turns first, the new message last.
func buildPrompt(history []Message, message string) string {
	if len(history) == 0 {
		return message
	}

	recent := history
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, m := range recent {
		role := "User"
		if m.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	fmt.Fprintf(&b, "\nUser: %s", message)
	return b.String()
}

// buildToolPrompt hands the model a calculation result to phrase. The model
// narrates; the numbers come from the tool.
func buildToolPrompt(message, toolSummary string) string {
	return fmt.Sprintf(`The user asked: %q

A calculation produced this result:
%s

Answer the user in one or two short paragraphs using only the numbers above. Do not invent figures.`,
		message, toolSummary)
}
