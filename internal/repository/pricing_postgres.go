// Package repository provides PostgreSQL-backed storage. The database is
// optional: it holds curated price tables that override the built-in
// catalog, so deployments can keep rates current without redeploying.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PricingRepository loads hourly rate overrides.
type PricingRepository interface {
	// Rates returns the full price table as size -> hourly USD rate.
	Rates(ctx context.Context) (map[string]float64, error)

	// UpsertRate inserts or updates one rate.
	UpsertRate(ctx context.Context, size string, hourlyRate float64) error
}

// PostgresPricingRepository implements PricingRepository for PostgreSQL.
type PostgresPricingRepository struct {
	db *sql.DB
}

// NewPostgresPricingRepository creates a new PostgresPricingRepository.
func NewPostgresPricingRepository(db *sql.DB) *PostgresPricingRepository {
	return &PostgresPricingRepository{db: db}
}

// Schema is the DDL for the pricing table, applied by deployments that
// manage the database out of band.
const Schema = `
CREATE TABLE IF NOT EXISTS pricing_rates (
    size        TEXT PRIMARY KEY,
    hourly_rate DOUBLE PRECISION NOT NULL CHECK (hourly_rate >= 0),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (r *PostgresPricingRepository) Rates(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT size, hourly_rate FROM pricing_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var size string
		var rate float64
		if err := rows.Scan(&size, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan pricing rate: %w", err)
		}
		rates[size] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pricing rates: %w", err)
	}
	return rates, nil
}

func (r *PostgresPricingRepository) UpsertRate(ctx context.Context, size string, hourlyRate float64) error {
	if hourlyRate < 0 {
		return fmt.Errorf("hourly rate must not be negative, got %g", hourlyRate)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pricing_rates (size, hourly_rate, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (size) DO UPDATE SET hourly_rate = EXCLUDED.hourly_rate, updated_at = EXCLUDED.updated_at
	`, size, hourlyRate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert pricing rate: %w", err)
	}
	return nil
}
