// Package notify delivers opportunity digests over the configured channels.
package notify

import (
	"fmt"
	"math"

	"remarket/server/internal/models"
)

// Notifier delivers a rendered digest to one channel.
type Notifier interface {
	Name() string
	SendDigest(digest *models.Digest) error
}

// opportunityLine renders one digest entry as plain text. The Telegram
// notifier wraps its own HTML around the same figures.
func opportunityLine(p *models.Property) string {
	price := 0.0
	if p.Price != nil {
		price = *p.Price
	}
	var predicted int64
	if p.PredictedPrice != nil {
		predicted = *p.PredictedPrice
	}
	pct := 0.0
	if p.ValuationPercentage != nil {
		pct = math.Abs(*p.ValuationPercentage)
	}
	return fmt.Sprintf("%s, %s (%s, %s): listed %.0f JOD, predicted %d JOD, %.1f%% below market",
		p.Neighborhood, p.City, p.PropertyType, p.Listing, price, predicted, pct)
}
