package importer

import (
	"fmt"

	"github.com/beevik/etree"

	"remarket/server/internal/models"
)

// xmlFields lists the child elements read from each <property> node.
var xmlFields = []string{
	"city", "neighborhood", "location", "type", "surface_area",
	"bedroom", "bathroom", "furnishing", "floor", "listing", "price",
}

// ImportXML reads a portal XML feed and queues its listings. Feeds carry a
// <properties> root with one <property> element per listing; listings
// without a usable location are logged and skipped.
func (im *Importer) ImportXML(path string) (*Stats, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read XML feed: %w", err)
	}

	elements := doc.FindElements("//properties/property")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no property elements found in %s", path)
	}

	stats := &Stats{}
	batch := make([]*models.Property, 0, im.batchSize)
	for i, el := range elements {
		fields := make(map[string]string, len(xmlFields))
		for _, name := range xmlFields {
			if child := el.FindElement("./" + name); child != nil {
				fields[name] = child.Text()
			}
		}

		p, ok := buildProperty(fields)
		if !ok {
			im.logger.Warnf("Skipping XML listing %d: no location", i+1)
			stats.Skipped++
			continue
		}

		stats.Parsed++
		if im.OnProgress != nil {
			im.OnProgress(stats.Parsed)
		}

		batch = append(batch, p)
		if len(batch) >= im.batchSize {
			if err := im.push(batch, stats); err != nil {
				return stats, err
			}
			batch = make([]*models.Property, 0, im.batchSize)
		}
	}

	if err := im.push(batch, stats); err != nil {
		return stats, err
	}

	im.logger.Infof("XML import finished: %d parsed, %d skipped", stats.Parsed, stats.Skipped)
	return stats, nil
}
