// Package postgis stores enriched layers in a PostGIS table
package postgis

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/1F47E/point-within-poly/pkg/models"
)

// DefaultTable is used when no table name is configured
const DefaultTable = "placemark_zones"

type Sink struct {
	db    *sql.DB
	table string
}

// NewSink opens a PostGIS connection
func NewSink(dsn, table string) (*Sink, error) {
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Sink{db: db, table: table}, nil
}

// InitSchema creates the table and its spatial index if they do not exist
func (s *Sink) InitSchema(ctx context.Context) error {
	for _, query := range schemaQueries(s.table) {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// WriteLayer replaces the rows of the layer in one transaction
func (s *Sink) WriteLayer(ctx context.Context, layer models.Layer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteQuery(s.table), layer.ID); err != nil {
		return fmt.Errorf("failed to clear layer %s: %w", layer.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery(s.table))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, record := range layer.Records {
		loc, err := record.Location()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		alt, err := record.AltitudeValue()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		_, err = stmt.ExecContext(ctx,
			layer.ID, i, record.Name, record.Description, record.Folder, record.Zone,
			alt, loc[0], loc[1],
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit layer %s: %w", layer.ID, err)
	}
	return nil
}

// Count returns the number of rows stored for a layer
func (s *Sink) Count(ctx context.Context, layerID string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE layer = $1", pq.QuoteIdentifier(s.table))
	if err := s.db.QueryRowContext(ctx, query, layerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Sink) Close() error {
	return s.db.Close()
}

func schemaQueries(table string) []string {
	t := pq.QuoteIdentifier(table)
	idx := pq.QuoteIdentifier("idx_" + table + "_location")
	return []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			layer TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			folder TEXT NOT NULL,
			zone TEXT NOT NULL,
			altitude DOUBLE PRECISION NOT NULL,
			location GEOMETRY(POINT, 4326) NOT NULL,
			PRIMARY KEY (layer, position)
		);`, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIST(location);`, idx, t),
	}
}

func deleteQuery(table string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE layer = $1`, pq.QuoteIdentifier(table))
}

func insertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (layer, position, name, description, folder, zone, altitude, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326))
	`, pq.QuoteIdentifier(table))
}
