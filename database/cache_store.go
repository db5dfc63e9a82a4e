package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pank-su/zin-lab-data/geocoding"
)

// Поддерживаемые хранилища кэша геокодирования
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendBolt   = "bolt"
	CacheBackendMemory = "memory"
)

// CacheStore хранилище кэша геокодирования с чтением отдельных записей
type CacheStore interface {
	geocoding.Store
	Get(ctx context.Context, key string) (geocoding.Place, bool, error)
	Count(ctx context.Context) (int, error)
}

var (
	_ CacheStore = (*GeocodeCacheStore)(nil)
	_ CacheStore = (*BoltCacheStore)(nil)
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenCacheStore открывает хранилище кэша по имени backend
// Для "memory" возвращается nil-хранилище: кэш живет только в течение запуска.
// Нечитаемый файл кэша переименовывается в <path>.corrupt-<время> и создается заново;
// если и это не удалось, кэш работает в памяти. Ошибка возвращается только
// для неизвестного backend.
func OpenCacheStore(backend, path string) (CacheStore, io.Closer, error) {
	var open func(path string) (CacheStore, io.Closer, error)
	switch backend {
	case CacheBackendSQLite:
		open = openSQLiteCacheStore
	case CacheBackendBolt:
		open = openBoltCacheStore
	case CacheBackendMemory:
		return nil, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown geocode cache backend: %s", backend)
	}

	store, closer, err := open(path)
	if err == nil {
		return store, closer, nil
	}
	log.Printf("[Cache] Warning: Failed to open %s cache %s: %v", backend, path, err)

	if errors.Is(err, bolt.ErrTimeout) {
		log.Printf("[Cache] Warning: %s is locked by another process, using in-memory cache", path)
		return nil, nopCloser{}, nil
	}

	moved, err := moveAside(path)
	if err != nil {
		log.Printf("[Cache] Warning: Failed to move %s aside: %v, using in-memory cache", path, err)
		return nil, nopCloser{}, nil
	}
	if moved == "" {
		log.Printf("[Cache] Warning: using in-memory cache")
		return nil, nopCloser{}, nil
	}
	log.Printf("[Cache] Unreadable cache moved to %s, starting a new one", moved)

	store, closer, err = open(path)
	if err != nil {
		log.Printf("[Cache] Warning: Failed to recreate %s cache %s: %v, using in-memory cache", backend, path, err)
		return nil, nopCloser{}, nil
	}
	return store, closer, nil
}

func openSQLiteCacheStore(path string) (CacheStore, io.Closer, error) {
	db, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewGeocodeCacheStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func openBoltCacheStore(path string) (CacheStore, io.Closer, error) {
	store, err := OpenBoltCacheStore(path)
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}

// cacheSidecarSuffixes служебные файлы SQLite рядом с основным файлом
var cacheSidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// moveAside переименовывает файл кэша и его служебные файлы
// Пустая строка без ошибки означает, что файла нет
func moveAside(path string) (string, error) {
	if path == "" || isInMemory(path) {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	target := path + ".corrupt-" + time.Now().UTC().Format("20060102-150405.000000000")
	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	for _, suffix := range cacheSidecarSuffixes {
		if _, err := os.Stat(path + suffix); err == nil {
			if err := os.Rename(path+suffix, target+suffix); err != nil {
				log.Printf("[Cache] Warning: Failed to move %s: %v", path+suffix, err)
			}
		}
	}
	return target, nil
}
