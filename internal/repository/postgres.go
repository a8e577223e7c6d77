package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/datemap/internal/cache"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS geocoding_cache (
			address      TEXT PRIMARY KEY,
			latitude     DOUBLE PRECISION NOT NULL,
			longitude    DOUBLE PRECISION NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	selectEntriesQuery = `
		SELECT address, latitude, longitude, display_name
		FROM geocoding_cache
		ORDER BY address;
	`
	upsertEntryQuery = `
		INSERT INTO geocoding_cache (address, latitude, longitude, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE
		SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			display_name = EXCLUDED.display_name;
	`
)

// EnsureSchema creates the cache table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create geocoding cache table: %w", err)
	}

	return nil
}

// Load reads every cached address from the database.
func (r *Repository) Load(ctx context.Context) (*cache.Cache, error) {
	rows, err := r.db.Query(ctx, selectEntriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query geocoding cache: %w", err)
	}
	defer rows.Close()

	result := cache.New()
	for rows.Next() {
		var key string
		var entry cache.Entry
		if errScan := rows.Scan(&key, &entry.Latitude, &entry.Longitude, &entry.DisplayName); errScan != nil {
			return nil, fmt.Errorf("failed to scan geocoding cache entry: %w", errScan)
		}
		entry.Address = key
		result.Put(key, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Cache loaded from database", "entries", result.Len())

	return result, nil
}

// Save writes the whole cache in a single transaction.
func (r *Repository) Save(ctx context.Context, c *cache.Cache) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, address := range c.Addresses() {
		entry, _ := c.Get(address)
		if _, err = tx.Exec(ctx, upsertEntryQuery, address, entry.Latitude, entry.Longitude, entry.DisplayName); err != nil {
			if errRollback := tx.Rollback(ctx); errRollback != nil {
				r.log.ErrorContext(ctx, "Failed to rollback transaction", "error", errRollback)
			}
			return fmt.Errorf("failed to save geocoding cache entry %q: %w", address, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit geocoding cache: %w", err)
	}

	r.log.InfoContext(ctx, "Cache saved to database", "entries", c.Len())

	return nil
}
