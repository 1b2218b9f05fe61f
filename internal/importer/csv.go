package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"remarket/server/internal/models"
)

// ImportCSV reads a header-mapped CSV export and queues its rows. Column
// order does not matter; names are matched case-insensitively. Malformed
// rows are logged and skipped.
func (im *Importer) ImportCSV(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV feed: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	stats := &Stats{}
	batch := make([]*models.Property, 0, im.batchSize)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			im.logger.WithError(err).Warnf("Skipping malformed CSV row %d", line)
			stats.Skipped++
			continue
		}

		fields := make(map[string]string, len(columns))
		for name, idx := range columns {
			if idx < len(record) {
				fields[name] = record[idx]
			}
		}

		p, ok := buildProperty(fields)
		if !ok {
			im.logger.Warnf("Skipping CSV row %d: no location", line)
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

	im.logger.Infof("CSV import finished: %d parsed, %d skipped", stats.Parsed, stats.Skipped)
	return stats, nil
}
