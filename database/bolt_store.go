package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pank-su/zin-lab-data/geocoding"
)

var geocodeBucket = []byte("geocode")

// BoltCacheStore хранилище кэша геокодирования в файле bbolt
// Значения хранятся как JSON {"country":..,"region":..}
type BoltCacheStore struct {
	db *bolt.DB
}

// OpenBoltCacheStore открывает (или создает) файл кэша
func OpenBoltCacheStore(path string) (*BoltCacheStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(geocodeBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create geocode bucket: %w", err)
	}

	return &BoltCacheStore{db: db}, nil
}

// Load читает все записи; одна нечитаемая запись делает нечитаемым весь кэш
func (s *BoltCacheStore) Load(ctx context.Context) (map[string]geocoding.Place, error) {
	entries := make(map[string]geocoding.Place)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(geocodeBucket).ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var place geocoding.Place
			if err := json.Unmarshal(v, &place); err != nil {
				return fmt.Errorf("corrupt entry %q: %w", k, err)
			}
			entries[string(k)] = place
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bolt cache: %w", err)
	}
	return entries, nil
}

// Save сохраняет запись; существующая запись не перезаписывается
func (s *BoltCacheStore) Save(ctx context.Context, key string, place geocoding.Place) error {
	value, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("failed to encode geocode cache entry: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(geocodeBucket)
		if b.Get([]byte(key)) != nil {
			return nil
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to save geocode cache entry: %w", err)
	}
	return nil
}

// Get возвращает одну запись кэша
func (s *BoltCacheStore) Get(ctx context.Context, key string) (geocoding.Place, bool, error) {
	var place geocoding.Place
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(geocodeBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &place)
	})
	if err != nil {
		return geocoding.Place{}, false, fmt.Errorf("failed to get geocode cache entry: %w", err)
	}
	return place, found, nil
}

// Count количество записей в кэше
func (s *BoltCacheStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(geocodeBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close закрывает файл кэша
func (s *BoltCacheStore) Close() error {
	return s.db.Close()
}
