package tools

import (
	"fmt"

	"remarket/server/internal/models"
)

type SearchResult struct {
	Success     bool              `json:"success"`
	Properties  []models.Property `json:"properties"`
	Count       int               `json:"count"`
	Message     string            `json:"message"`
	DisplayType string            `json:"display_type"`
}

// Search returns the newest listings matching the filter. An empty result is
// a distinct, explained outcome rather than a bare empty list.
func (t *Toolbox) Search(filter models.SearchFilter) (*SearchResult, error) {
	properties, err := t.store.SearchProperties(filter)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if len(properties) == 0 {
		return &SearchResult{
			Success:     false,
			Properties:  []models.Property{},
			Message:     "No properties found matching your criteria.",
			DisplayType: DisplayText,
		}, nil
	}

	for i := range properties {
		properties[i].Images = properties[i].PlaceholderImages()
	}

	return &SearchResult{
		Success:     true,
		Properties:  properties,
		Count:       len(properties),
		Message:     fmt.Sprintf("Found %d properties matching your criteria.", len(properties)),
		DisplayType: DisplayPropertyCards,
	}, nil
}
