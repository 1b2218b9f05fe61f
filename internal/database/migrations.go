package database

import "fmt"

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT,
			neighborhood TEXT,
			type TEXT,
			surface_area REAL,
			bedroom TEXT,
			bathroom INTEGER,
			furnishing TEXT,
			floor TEXT,
			listing TEXT,
			price REAL,
			predicted_price INTEGER,
			valuation TEXT,
			valuation_percentage REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %w", err)
	}

	// Valuation columns arrived after the first catalog import; older
	// databases need them added in place.
	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN predicted_price INTEGER;
	`)
	if err != nil && err.Error() != "duplicate column name: predicted_price" {
		return err
	}

	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN valuation TEXT;
	`)
	if err != nil && err.Error() != "duplicate column name: valuation" {
		return err
	}

	_, err = d.db.Exec(`
		ALTER TABLE properties
		ADD COLUMN valuation_percentage REAL;
	`)
	if err != nil && err.Error() != "duplicate column name: valuation_percentage" {
		return err
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city)",
		"CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(type)",
		"CREATE INDEX IF NOT EXISTS idx_properties_listing ON properties(listing)",
		"CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price)",
		"CREATE INDEX IF NOT EXISTS idx_properties_valuation ON properties(valuation)",
	}
	for _, stmt := range indexes {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
