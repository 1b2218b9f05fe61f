package chat

import "regexp"

// Intent names the tool a chat message should be routed to.
type Intent string

const (
	IntentPropertySearch  Intent = "property_search"
	IntentPricePrediction Intent = "price_prediction"
	IntentROICalculation  Intent = "roi_calculation"
	IntentMortgage        Intent = "mortgage_calculation"
	IntentFindSimilar     Intent = "find_similar"
	IntentCompare         Intent = "compare_properties"
	IntentPropertyDetails Intent = "property_details"
	IntentDefault         Intent = "default"
)

type intentRule struct {
	pattern *regexp.Regexp
	intent  Intent
}

// Rules are checked top to bottom and the first match wins, so the more
// specific calculators sit above the generic compare rule.
var intentRules = []intentRule{
	{regexp.MustCompile(`(?i)search(?:ing)?.*propert(?:y|ies)|find(?:ing)?.*propert(?:y|ies)|show(?:ing)?.*propert(?:y|ies)`), IntentPropertySearch},
	{regexp.MustCompile(`(?i)predict(?:ing)?.*price|price.*prediction|worth|value`), IntentPricePrediction},
	{regexp.MustCompile(`(?i)roi|return.*investment|investment.*return`), IntentROICalculation},
	{regexp.MustCompile(`(?i)mortgage|monthly.*payment|loan`), IntentMortgage},
	{regexp.MustCompile(`(?i)similar.*propert(?:y|ies)`), IntentFindSimilar},
	{regexp.MustCompile(`(?i)compare|comparison`), IntentCompare},
}

// DetectIntent classifies a message. A conversation that carries a property
// context always routes to property_details; context takes precedence over
// whatever the text happens to mention.
func DetectIntent(message string, hasPropertyContext bool) Intent {
	if hasPropertyContext {
		return IntentPropertyDetails
	}
	for _, rule := range intentRules {
		if rule.pattern.MatchString(message) {
			return rule.intent
		}
	}
	return IntentDefault
}

var followups = map[Intent][]string{
	IntentPropertySearch: {
		"Show me cheaper options",
		"What about in a different area?",
		"Compare top 3 properties",
	},
	IntentPricePrediction: {
		"Is this a good investment?",
		"Calculate ROI over 5 years",
		"Find similar undervalued properties",
	},
	IntentROICalculation: {
		"What if I hold for 10 years?",
		"Show me the breakdown",
		"Compare to market average",
	},
	IntentMortgage: {
		"What if I put 30% down?",
		"Compare 15 vs 25 year terms",
		"What's the maximum I can afford?",
	},
	IntentPropertyDetails: {
		"Is this property undervalued?",
		"Calculate monthly mortgage",
		"Find similar properties",
	},
	IntentDefault: {
		"Find me properties in Amman",
		"Calculate a property price",
		"What areas have the best value?",
	},
}

// FollowupSuggestions returns the canned next questions for an intent.
func FollowupSuggestions(intent Intent) []string {
	if s, ok := followups[intent]; ok {
		return s
	}
	return followups[IntentDefault]
}
