package geocoding

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// DefaultQueryOverrides составные запросы, на которые сервис отвечает неверно,
// и исправленные запросы для них
var DefaultQueryOverrides = map[string]string{
	"Байкал, Россия":                "Иркутская область, Россия",
	"Алтай, Россия":                 "Республика Алтай, Россия",
	"Кавказский заповедник, Россия": "Кавказский заповедник, Краснодарский край, Россия",
	"Памир, Таджикистан":            "Горно-Бадахшанская автономная область, Таджикистан",
	"Джунгарский Алатау, Казахстан": "Алматинская область, Казахстан",
}

// ResolverConfig настройки резолвера
type ResolverConfig struct {
	Backoff   BackoffPolicy
	Sleep     SleepFunc         // nil - реальное ожидание
	Overrides map[string]string // nil - DefaultQueryOverrides
	Logger    *slog.Logger
}

// ResolverStats статистика резолвера
type ResolverStats struct {
	Cache    CacheStats `json:"cache"`
	Calls    int64      `json:"calls"`
	Failures int64      `json:"failures"`
}

// Resolver определяет страну и регион по координатам или тексту
// Сначала проверяется кэш; при промахе вызывается сервис с повторами до успеха
type Resolver struct {
	service   Service
	cache     *Cache
	retrier   *Retrier
	overrides map[string]string
	logger    *slog.Logger

	calls    atomic.Int64
	failures atomic.Int64
}

// NewResolver создает резолвер
func NewResolver(service Service, cache *Cache, config ResolverConfig) *Resolver {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Backoff.Initial <= 0 {
		config.Backoff = DefaultBackoffPolicy()
	}
	if config.Overrides == nil {
		config.Overrides = DefaultQueryOverrides
	}

	overrides := make(map[string]string, len(config.Overrides))
	for from, to := range config.Overrides {
		overrides[TextQuery(from).Text] = TextQuery(to).Text
	}

	return &Resolver{
		service:   service,
		cache:     cache,
		retrier:   NewRetrier(config.Backoff, config.Sleep, config.Logger),
		overrides: overrides,
		logger:    config.Logger,
	}
}

// ResolveByPosition обратное геокодирование точки
func (r *Resolver) ResolveByPosition(ctx context.Context, lat, lon float64) (Place, error) {
	return r.resolve(ctx, PositionQuery(lat, lon), func(ctx context.Context) (Address, error) {
		return r.service.Reverse(ctx, lat, lon)
	})
}

// ResolveByText прямое геокодирование описания места
// Пустой запрос не отправляется и дает пустой результат
func (r *Resolver) ResolveByText(ctx context.Context, query string) (Place, error) {
	q := TextQuery(query)
	// Кэш ведется по исходному запросу, сервис получает исправленный
	text := q.Text
	if corrected, ok := r.overrides[q.Text]; ok {
		r.logger.Debug("geocode query overridden", "query", q.Text, "corrected", corrected)
		text = corrected
	}
	if q.Text == "" || text == "" {
		return Place{}, nil
	}

	return r.resolve(ctx, q, func(ctx context.Context) (Address, error) {
		return r.service.Search(ctx, text)
	})
}

func (r *Resolver) resolve(ctx context.Context, q Query, call func(ctx context.Context) (Address, error)) (Place, error) {
	key := q.Key()
	if place, ok := r.cache.Get(key); ok {
		return place, nil
	}

	var addr Address
	failures, err := r.retrier.Do(ctx, "geocode "+q.Type, func(ctx context.Context) error {
		r.calls.Add(1)
		a, err := call(ctx)
		if err != nil {
			return err
		}
		addr = a
		return nil
	})
	r.failures.Add(int64(failures))
	if err != nil {
		return Place{}, err
	}

	place, err := r.cache.Set(ctx, key, ExtractPlace(addr))
	if err != nil {
		r.logger.Warn("geocode result kept in memory only", "key", key, "error", err)
	}
	r.logger.Debug("geocoded", "key", key, "country", place.Country, "region", place.Region)

	return place, nil
}

// Stats возвращает статистику резолвера и кэша
func (r *Resolver) Stats() ResolverStats {
	return ResolverStats{
		Cache:    r.cache.GetStats(),
		Calls:    r.calls.Load(),
		Failures: r.failures.Load(),
	}
}
