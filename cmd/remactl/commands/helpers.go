package commands

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"gorm.io/gorm"

	"remarket/server/config"
	"remarket/server/internal/database"
)

// openStore migrates the listing store and opens it for the batch pipeline.
// The returned cleanup closes the underlying connection.
func openStore(cfg *config.Config) (*gorm.DB, func(), error) {
	store, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.RunMigrations(); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	store.Close()

	db, err := database.OpenGorm(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// newBar builds a progress bar on stderr. A total of -1 renders a spinner
// until the real total is known.
func newBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}
