package database

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"remarket/server/internal/models"
)

// ErrNotFound reports that a requested property id does not exist, as
// opposed to a query that matched zero rows.
var ErrNotFound = errors.New("property not found")

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) Ping() error {
	return d.db.Ping()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

const propertyColumns = `
        id, city, neighborhood, type, surface_area, bedroom, bathroom,
        furnishing, floor, listing, price, predicted_price, valuation,
        valuation_percentage,
        COALESCE(created_at, CURRENT_TIMESTAMP) as created_at,
        COALESCE(updated_at, CURRENT_TIMESTAMP) as updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	var city, neighborhood, propertyType, bedroom, furnishing, floor, listing sql.NullString
	var surfaceArea, price, valuationPct sql.NullFloat64
	var bathroom, predictedPrice sql.NullInt64
	var valuation sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&city,
		&neighborhood,
		&propertyType,
		&surfaceArea,
		&bedroom,
		&bathroom,
		&furnishing,
		&floor,
		&listing,
		&price,
		&predictedPrice,
		&valuation,
		&valuationPct,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if city.Valid {
		p.City = city.String
	}
	if neighborhood.Valid {
		p.Neighborhood = neighborhood.String
	}
	if propertyType.Valid {
		p.PropertyType = propertyType.String
	}
	if bedroom.Valid {
		p.Bedroom = bedroom.String
	}
	if furnishing.Valid {
		p.Furnishing = furnishing.String
	}
	if floor.Valid {
		p.Floor = floor.String
	}
	if listing.Valid {
		p.Listing = listing.String
	}
	if bathroom.Valid {
		p.Bathroom = int(bathroom.Int64)
	}
	if surfaceArea.Valid {
		area := surfaceArea.Float64
		p.SurfaceArea = &area
	}
	if price.Valid {
		v := price.Float64
		p.Price = &v
	}
	if predictedPrice.Valid {
		v := predictedPrice.Int64
		p.PredictedPrice = &v
	}
	if valuation.Valid {
		v := valuation.String
		p.Valuation = &v
	}
	if valuationPct.Valid {
		v := valuationPct.Float64
		p.ValuationPercentage = &v
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}

	return &p, nil
}

// GetProperty returns a single listing, or (nil, nil) when the id is unknown.
func (d *Database) GetProperty(id int64) (*models.Property, error) {
	row := d.db.QueryRow(`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)

	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}
	return p, nil
}

// ListProperties returns one page of the catalog honoring the filter set.
func (d *Database) ListProperties(filter models.PropertyFilter) (*models.PropertyPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	where, args := buildFilterClauses(filter)
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM properties"+whereSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	orderSQL := orderClause(filter.Sort)
	offset := (filter.Page - 1) * filter.Limit

	query := `SELECT ` + propertyColumns + ` FROM properties` + whereSQL + orderSQL + ` LIMIT ? OFFSET ?`
	rows, err := d.db.Query(query, append(args, filter.Limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	return &models.PropertyPage{
		Properties: properties,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		HasNext:    filter.Page < totalPages,
		HasPrev:    filter.Page > 1,
	}, nil
}

func buildFilterClauses(filter models.PropertyFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if filter.City != "" {
		where = append(where, "LOWER(city) = LOWER(?)")
		args = append(args, filter.City)
	}
	if filter.Type != "" {
		where = append(where, "LOWER(type) = LOWER(?)")
		args = append(args, filter.Type)
	}
	if filter.Listing != "" {
		where = append(where, "LOWER(listing) = LOWER(?)")
		args = append(args, filter.Listing)
	}
	if filter.Bedrooms != "" {
		switch {
		case strings.EqualFold(filter.Bedrooms, "studio"):
			where = append(where, "LOWER(bedroom) LIKE '%studio%'")
		case strings.HasSuffix(filter.Bedrooms, "+"):
			if n, err := strconv.ParseFloat(strings.TrimSuffix(filter.Bedrooms, "+"), 64); err == nil {
				where = append(where, "CAST(bedroom AS REAL) >= ?")
				args = append(args, n)
			}
		default:
			if n, err := strconv.ParseFloat(filter.Bedrooms, 64); err == nil {
				where = append(where, "CAST(bedroom AS REAL) = ?")
				args = append(args, n)
			}
		}
	}
	if filter.Bathrooms != "" {
		if strings.HasSuffix(filter.Bathrooms, "+") {
			if n, err := strconv.Atoi(strings.TrimSuffix(filter.Bathrooms, "+")); err == nil {
				where = append(where, "bathroom >= ?")
				args = append(args, n)
			}
		} else if n, err := strconv.Atoi(filter.Bathrooms); err == nil {
			where = append(where, "bathroom = ?")
			args = append(args, n)
		}
	}
	if filter.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.Search != "" {
		where = append(where, "(LOWER(city) LIKE ? OR LOWER(neighborhood) LIKE ? OR LOWER(type) LIKE ?)")
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	return where, args
}

func orderClause(sort string) string {
	switch sort {
	case "price_asc":
		return " ORDER BY price IS NULL, price ASC"
	case "price_desc":
		return " ORDER BY price IS NULL, price DESC"
	case "valuation":
		return " ORDER BY valuation_percentage IS NULL, valuation_percentage ASC"
	default: // date_desc
		return " ORDER BY id DESC"
	}
}

// SearchProperties returns the newest listings matching the filter, for the
// conversational search tool.
func (d *Database) SearchProperties(filter models.SearchFilter) ([]models.Property, error) {
	if filter.Limit <= 0 {
		filter.Limit = 5
	}

	pf := models.PropertyFilter{
		City:     filter.City,
		Type:     filter.Type,
		Listing:  filter.Listing,
		Bedrooms: filter.Bedrooms,
		MinPrice: filter.MinPrice,
		MaxPrice: filter.MaxPrice,
	}
	where, args := buildFilterClauses(pf)
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	query := `SELECT ` + propertyColumns + ` FROM properties` + whereSQL + ` ORDER BY id DESC LIMIT ?`
	rows, err := d.db.Query(query, append(args, filter.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// GetCandidates returns every listing in a city except the reference itself,
// the raw pool the comparable ranking works from. An empty city returns the
// whole catalog minus the reference.
func (d *Database) GetCandidates(city string, excludeID int64) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id != ?`
	args := []interface{}{excludeID}

	if city != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, city)
	}
	query += " ORDER BY id ASC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// GetOpportunities returns undervalued listings whose discount against the
// predicted price is at least minDiscount percent, most discounted first.
func (d *Database) GetOpportunities(minDiscount float64, limit int) ([]models.Property, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(`
        SELECT `+propertyColumns+`
        FROM properties
        WHERE valuation = 'undervalued'
        AND valuation_percentage IS NOT NULL
        AND valuation_percentage <= ?
        ORDER BY valuation_percentage ASC
        LIMIT ?
    `, -minDiscount, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// GetMarketStats summarizes the catalog for the admin dashboard.
func (d *Database) GetMarketStats() (*models.MarketStats, error) {
	var stats models.MarketStats
	err := d.db.QueryRow(`
        SELECT
            COUNT(*) as total_properties,
            COALESCE(SUM(CASE WHEN listing = 'sale' THEN 1 ELSE 0 END), 0) as for_sale,
            COALESCE(SUM(CASE WHEN listing = 'rent' THEN 1 ELSE 0 END), 0) as for_rent,
            COALESCE(SUM(CASE WHEN predicted_price IS NOT NULL THEN 1 ELSE 0 END), 0) as predicted,
            COALESCE(SUM(CASE WHEN valuation = 'undervalued' THEN 1 ELSE 0 END), 0) as undervalued,
            COALESCE(SUM(CASE WHEN valuation = 'fair' THEN 1 ELSE 0 END), 0) as fair,
            COALESCE(SUM(CASE WHEN valuation = 'overvalued' THEN 1 ELSE 0 END), 0) as overvalued,
            COALESCE(ROUND(AVG(price)), 0) as average_price,
            COUNT(DISTINCT LOWER(city)) as cities
        FROM properties
    `).Scan(
		&stats.TotalProperties,
		&stats.ForSale,
		&stats.ForRent,
		&stats.Predicted,
		&stats.Undervalued,
		&stats.Fair,
		&stats.Overvalued,
		&stats.AveragePrice,
		&stats.Cities,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query market stats: %w", err)
	}
	return &stats, nil
}

// AdminSearchProperties finds listings by numeric id or by a substring of
// city, neighborhood or type.
func (d *Database) AdminSearchProperties(q string, limit int) ([]models.Property, error) {
	if limit <= 0 {
		limit = 20
	}

	if id, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64); err == nil {
		p, err := d.GetProperty(id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return []models.Property{}, nil
		}
		return []models.Property{*p}, nil
	}

	pattern := "%" + strings.ToLower(q) + "%"
	rows, err := d.db.Query(`
        SELECT `+propertyColumns+`
        FROM properties
        WHERE LOWER(city) LIKE ? OR LOWER(neighborhood) LIKE ? OR LOWER(type) LIKE ?
        ORDER BY id DESC
        LIMIT ?
    `, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// UpdateProperty applies the non-nil fields of the update to a listing.
func (d *Database) UpdateProperty(id int64, update models.PropertyUpdate) error {
	var sets []string
	var args []interface{}

	appendSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.City != nil {
		appendSet("city", *update.City)
	}
	if update.Neighborhood != nil {
		appendSet("neighborhood", *update.Neighborhood)
	}
	if update.PropertyType != nil {
		appendSet("type", *update.PropertyType)
	}
	if update.SurfaceArea != nil {
		appendSet("surface_area", *update.SurfaceArea)
	}
	if update.Bedroom != nil {
		appendSet("bedroom", *update.Bedroom)
	}
	if update.Bathroom != nil {
		appendSet("bathroom", *update.Bathroom)
	}
	if update.Furnishing != nil {
		appendSet("furnishing", *update.Furnishing)
	}
	if update.Floor != nil {
		appendSet("floor", *update.Floor)
	}
	if update.Listing != nil {
		appendSet("listing", *update.Listing)
	}
	if update.Price != nil {
		appendSet("price", *update.Price)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	result, err := d.db.Exec(
		"UPDATE properties SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		append(args, id)...,
	)
	if err != nil {
		return fmt.Errorf("failed to update property %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProperty removes a listing.
func (d *Database) DeleteProperty(id int64) error {
	result, err := d.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete property %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertProperties inserts a batch of listings in one transaction.
func (d *Database) InsertProperties(properties []*models.Property) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT INTO properties
        (city, neighborhood, type, surface_area, bedroom, bathroom,
         furnishing, floor, listing, price)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range properties {
		var surface, price interface{}
		if p.SurfaceArea != nil {
			surface = *p.SurfaceArea
		}
		if p.Price != nil {
			price = *p.Price
		}

		_, err = stmt.Exec(
			p.City,
			p.Neighborhood,
			p.PropertyType,
			surface,
			p.Bedroom,
			p.Bathroom,
			p.Furnishing,
			p.Floor,
			p.Listing,
			price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert property: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func collectProperties(rows *sql.Rows) ([]models.Property, error) {
	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return properties, nil
}
