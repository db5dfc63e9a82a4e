package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Cache кэш результатов геокодирования
// Записи неизменяемы: повторная запись по существующему ключу игнорируется
type Cache struct {
	data   map[string]Place
	store  Store
	mutex  sync.RWMutex
	stats  CacheStats
	logger *slog.Logger
}

// CacheStats статистика кэша
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
	Loaded int   `json:"loaded"` // записей прочитано из хранилища при открытии
}

// NewCache создает кэш и заполняет его из хранилища
// Нечитаемое хранилище означает холодный кэш, а не ошибку
func NewCache(ctx context.Context, store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	cache := &Cache{
		data:   make(map[string]Place),
		store:  store,
		logger: logger,
	}

	if store != nil {
		entries, err := store.Load(ctx)
		if err != nil {
			logger.Warn("geocode cache store unreadable, starting with a cold cache", "error", err)
		} else {
			for key, place := range entries {
				cache.data[key] = place
			}
		}
	}
	cache.stats.Loaded = len(cache.data)

	return cache
}

// Get возвращает результат из кэша
func (c *Cache) Get(key string) (Place, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	place, exists := c.data[key]
	if !exists {
		c.stats.Misses++
		return Place{}, false
	}

	c.stats.Hits++
	return place, true
}

// Set сохраняет результат в память и в хранилище
// Если ключ уже есть, ничего не меняется и возвращается ранее сохраненное значение
func (c *Cache) Set(ctx context.Context, key string, place Place) (Place, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, ok := c.data[key]; ok {
		return existing, nil
	}

	c.data[key] = place
	if c.store != nil {
		if err := c.store.Save(ctx, key, place); err != nil {
			return place, fmt.Errorf("failed to persist geocode cache entry: %w", err)
		}
	}
	return place, nil
}

// Peek возвращает запись без учета в статистике
func (c *Cache) Peek(key string) (Place, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	place, ok := c.data[key]
	return place, ok
}

// Len количество записей
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// GetStats возвращает статистику кэша
func (c *Cache) GetStats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}
