// Package importer reads listing feeds (CSV exports and XML portal feeds)
// and publishes them in batches to the import queue.
package importer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"remarket/server/internal/ml"
	"remarket/server/internal/models"
	"remarket/server/internal/queue"
)

// Stats summarizes one import run.
type Stats struct {
	Parsed  int `json:"parsed"`
	Skipped int `json:"skipped"`
	Batches int `json:"batches"`
}

// Importer parses feed files into listing batches.
type Importer struct {
	logger    *logrus.Logger
	queue     *queue.ImportQueue
	batchSize int

	// OnProgress, when set, is called after every parsed row with the
	// running total.
	OnProgress func(parsed int)
}

func New(q *queue.ImportQueue, batchSize int, logger *logrus.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Importer{
		logger:    logger,
		queue:     q,
		batchSize: batchSize,
	}
}

// ImportFile dispatches on the format, or on the file extension when the
// format is empty.
func (im *Importer) ImportFile(path, format string) (*Stats, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	switch strings.ToLower(format) {
	case "csv":
		return im.ImportCSV(path)
	case "xml":
		return im.ImportXML(path)
	default:
		return nil, fmt.Errorf("unsupported feed format %q (want csv or xml)", format)
	}
}

// push delivers a batch, backing off while the queue is full.
func (im *Importer) push(batch []*models.Property, stats *Stats) error {
	if len(batch) == 0 {
		return nil
	}
	for {
		err := im.queue.Push(batch)
		if err == nil {
			stats.Batches++
			return nil
		}
		if err == queue.ErrQueueFull {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		return err
	}
}

// buildProperty assembles a listing from raw feed fields. Missing or
// unparsable optional values stay unknown; a row with no location at all is
// rejected.
func buildProperty(fields map[string]string) (*models.Property, bool) {
	get := func(key string) string {
		return strings.TrimSpace(fields[key])
	}

	p := &models.Property{
		City:         get("city"),
		Neighborhood: get("neighborhood"),
		PropertyType: strings.ToLower(get("type")),
		Bedroom:      get("bedroom"),
		Furnishing:   strings.ToLower(get("furnishing")),
		Floor:        get("floor"),
		Listing:      strings.ToLower(get("listing")),
	}

	// Portal exports often ship a combined "location" column instead of
	// separate city/neighborhood fields.
	if p.City == "" {
		if loc := get("location"); loc != "" {
			p.City, p.Neighborhood = ml.SplitLocation(loc)
		}
	}
	if p.City == "" && p.Neighborhood == "" {
		return nil, false
	}

	if raw := get("surface_area"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			p.SurfaceArea = &v
		}
	}
	if raw := get("bathroom"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Bathroom = v
		}
	}
	if raw := get("price"); raw != "" {
		raw = strings.ReplaceAll(raw, ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			p.Price = &v
		}
	}

	return p, true
}
