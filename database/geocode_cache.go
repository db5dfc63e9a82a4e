package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pank-su/zin-lab-data/geocoding"
)

// geocodeCacheMigrations схема кэша геокодирования; новые шаги добавляются в конец
var geocodeCacheMigrations = []migration{
	{
		name: "001_geocode_cache",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS geocode_cache (
				key TEXT PRIMARY KEY,
				country TEXT NOT NULL DEFAULT '',
				region TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
	},
}

// GeocodeCacheStore постоянное хранилище кэша геокодирования в SQLite
type GeocodeCacheStore struct {
	db *DB
}

// NewGeocodeCacheStore создает хранилище и при необходимости таблицу geocode_cache
func NewGeocodeCacheStore(db *DB) (*GeocodeCacheStore, error) {
	if _, err := applyMigrations(context.Background(), db.conn, geocodeCacheMigrations); err != nil {
		return nil, fmt.Errorf("failed to initialize geocode cache schema: %w", err)
	}

	return &GeocodeCacheStore{db: db}, nil
}

// Load читает все записи кэша
func (s *GeocodeCacheStore) Load(ctx context.Context) (map[string]geocoding.Place, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT key, country, region FROM geocode_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to query geocode cache: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]geocoding.Place)
	for rows.Next() {
		var key string
		var place geocoding.Place
		if err := rows.Scan(&key, &place.Country, &place.Region); err != nil {
			return nil, fmt.Errorf("failed to scan geocode cache entry: %w", err)
		}
		entries[key] = place
	}

	return entries, rows.Err()
}

// Save сохраняет запись; существующая запись не перезаписывается
func (s *GeocodeCacheStore) Save(ctx context.Context, key string, place geocoding.Place) error {
	_, err := s.db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO geocode_cache (key, country, region, created_at)
		VALUES (?, ?, ?, ?)
	`, key, place.Country, place.Region, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save geocode cache entry: %w", err)
	}
	return nil
}

// Get возвращает одну запись кэша
func (s *GeocodeCacheStore) Get(ctx context.Context, key string) (geocoding.Place, bool, error) {
	var place geocoding.Place
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT country, region FROM geocode_cache WHERE key = ?`, key,
	).Scan(&place.Country, &place.Region)
	if err == sql.ErrNoRows {
		return geocoding.Place{}, false, nil
	}
	if err != nil {
		return geocoding.Place{}, false, fmt.Errorf("failed to get geocode cache entry: %w", err)
	}
	return place, true, nil
}

// Count количество записей в кэше
func (s *GeocodeCacheStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count geocode cache entries: %w", err)
	}
	return count, nil
}
