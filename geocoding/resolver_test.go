package geocoding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pank-su/zin-lab-data/internal/logging"
)

// fakeService сервис геокодирования для тестов
type fakeService struct {
	mu       sync.Mutex
	reverse  func(lat, lon float64) (Address, error)
	search   func(query string) (Address, error)
	queries  []string
	reverses int
}

func (f *fakeService) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	f.mu.Lock()
	f.reverses++
	f.mu.Unlock()
	return f.reverse(lat, lon)
}

func (f *fakeService) Search(ctx context.Context, query string) (Address, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return f.search(query)
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestResolver(service Service, store Store) *Resolver {
	cache := NewCache(context.Background(), store, logging.Discard())
	return NewResolver(service, cache, ResolverConfig{
		Sleep:  noSleep,
		Logger: logging.Discard(),
	})
}

func TestResolver_ResolveByPosition(t *testing.T) {
	svc := &fakeService{
		reverse: func(lat, lon float64) (Address, error) {
			return Address{"country": "Россия", "state": "Приморский край", "city": "Владивосток"}, nil
		},
	}
	r := newTestResolver(svc, nil)

	place, err := r.ResolveByPosition(context.Background(), 43.1, 131.9)
	require.NoError(t, err)
	assert.Equal(t, Place{Country: "Россия", Region: "Приморский край"}, place)

	again, err := r.ResolveByPosition(context.Background(), 43.1, 131.9)
	require.NoError(t, err)
	assert.Equal(t, place, again)
	assert.Equal(t, 1, svc.reverses, "second lookup must be served from cache")
	assert.Equal(t, int64(1), r.Stats().Calls)
}

func TestResolver_CachedStoreMeansNoNetwork(t *testing.T) {
	store := newMemoryStore()
	store.entries[TextQuery("Приморский край, Россия").Key()] = Place{Country: "Россия", Region: "Приморский край"}

	svc := &fakeService{
		search: func(query string) (Address, error) {
			t.Fatalf("unexpected network call for %q", query)
			return nil, nil
		},
	}
	r := newTestResolver(svc, store)

	place, err := r.ResolveByText(context.Background(), "  Приморский   край, Россия ")
	require.NoError(t, err)
	assert.Equal(t, "Приморский край", place.Region)
	assert.Empty(t, svc.queries)
}

func TestResolver_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	svc := &fakeService{
		search: func(query string) (Address, error) {
			attempts++
			if attempts < 4 {
				return nil, errors.New("503")
			}
			return Address{"country": "Казахстан", "county": "Алматинская область"}, nil
		},
	}
	r := newTestResolver(svc, nil)

	place, err := r.ResolveByText(context.Background(), "Алматинская область, Казахстан")
	require.NoError(t, err)
	assert.Equal(t, Place{Country: "Казахстан", Region: "Алматинская область"}, place)

	stats := r.Stats()
	assert.Equal(t, int64(4), stats.Calls)
	assert.Equal(t, int64(3), stats.Failures)
}

func TestResolver_EmptyQueryDoesNotCallService(t *testing.T) {
	svc := &fakeService{
		search: func(query string) (Address, error) {
			t.Fatal("empty query must not reach the service")
			return nil, nil
		},
	}
	r := newTestResolver(svc, nil)

	place, err := r.ResolveByText(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, Place{}, place)
	assert.Equal(t, 0, r.Stats().Cache.Size)
}

func TestResolver_AppliesQueryOverrides(t *testing.T) {
	svc := &fakeService{
		search: func(query string) (Address, error) {
			return Address{"country": "Россия", "state": "Иркутская область"}, nil
		},
	}
	store := newMemoryStore()
	r := newTestResolver(svc, store)

	_, err := r.ResolveByText(context.Background(), "Байкал, Россия")
	require.NoError(t, err)
	assert.Equal(t, []string{"Иркутская область, Россия"}, svc.queries)

	original := TextQuery("Байкал, Россия").Key()
	assert.Contains(t, store.entries, original, "entry is keyed by the query as written")
	assert.NotContains(t, store.entries, TextQuery("Иркутская область, Россия").Key())

	place, err := r.ResolveByText(context.Background(), "  Байкал,   Россия ")
	require.NoError(t, err)
	assert.Equal(t, Place{Country: "Россия", Region: "Иркутская область"}, place)
	assert.Len(t, svc.queries, 1, "second lookup is served from cache")
}

func TestResolver_EmptyAnswerIsCached(t *testing.T) {
	svc := &fakeService{
		search: func(query string) (Address, error) {
			return Address{}, nil
		},
	}
	r := newTestResolver(svc, nil)

	for i := 0; i < 3; i++ {
		place, err := r.ResolveByText(context.Background(), "Атлантида")
		require.NoError(t, err)
		assert.Equal(t, Place{}, place)
	}
	assert.Len(t, svc.queries, 1)
}

func TestResolver_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &fakeService{
		search: func(query string) (Address, error) {
			cancel()
			return nil, errors.New("timeout")
		},
	}
	r := newTestResolver(svc, nil)

	_, err := r.ResolveByText(ctx, "Приморский край")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.Stats().Cache.Size)
}

func TestExtractPlace(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want Place
	}{
		{"state first", Address{"country": "Россия", "state": "Приморский край", "city": "Владивосток"}, Place{"Россия", "Приморский край"}},
		{"county when no state", Address{"country": "Казахстан", "county": "Алматинская область"}, Place{"Казахстан", "Алматинская область"}},
		{"village fallback", Address{"country": "Монголия", "village": "Цэцэрлэг"}, Place{"Монголия", "Цэцэрлэг"}},
		{"blank fields skipped", Address{"country": "Россия", "state": " ", "province": "Камчатка"}, Place{"Россия", "Камчатка"}},
		{"empty", Address{}, Place{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPlace(tt.addr))
		})
	}
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, `{"type":"position","lat":43.1,"lon":131.9}`, PositionQuery(43.1, 131.9).Key())
	assert.Equal(t, `{"type":"geocode","text":"Приморский край"}`, TextQuery(" Приморский  край ").Key())
	assert.NotEqual(t, TextQuery("a").Key(), PositionQuery(0, 0).Key())
}
