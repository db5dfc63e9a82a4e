package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL:   srv.URL + "/",
		UserAgent: "zin-lab-data/test",
		Language:  "ru",
		Timeout:   5 * time.Second,
		RateLimit: rate.Inf,
	})
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	assert.Equal(t, "https://nominatim.openstreetmap.org", client.baseURL)
	assert.NotEmpty(t, client.userAgent)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, rate.Every(time.Second), client.limiter.Limit())
}

func TestClientReverse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "43.1155", r.URL.Query().Get("lat"))
		assert.Equal(t, "131.8855", r.URL.Query().Get("lon"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "ru", r.URL.Query().Get("accept-language"))
		assert.Equal(t, "zin-lab-data/test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Владивосток","address":{"city":"Владивосток","state":"Приморский край","country":"Россия","place_rank":16}}`))
	})

	addr, err := client.Reverse(context.Background(), 43.1155, 131.8855)
	require.NoError(t, err)
	assert.Equal(t, "Россия", addr["country"])
	assert.Equal(t, "Приморский край", addr["state"])
	assert.Equal(t, "16", addr["place_rank"])
}

func TestClientReverseUnableToGeocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	})

	addr, err := client.Reverse(context.Background(), 0.5, -30)
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestClientReverseErrorFieldIsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Internal error, please retry later"}`))
	})

	addr, err := client.Reverse(context.Background(), 43.1, 131.9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please retry later")
	assert.Nil(t, addr)
}

func TestResolver_RetriesErrorFieldAndCachesOnlySuccess(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"error":"Internal error, please retry later"}`))
			return
		}
		_, _ = w.Write([]byte(`{"address":{"state":"Приморский край","country":"Россия"}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL, RateLimit: rate.Inf})
	store := newMemoryStore()
	r := newTestResolver(client, store)

	place, err := r.ResolveByPosition(context.Background(), 43.1, 131.9)
	require.NoError(t, err)
	assert.Equal(t, Place{Country: "Россия", Region: "Приморский край"}, place)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(1), r.Stats().Failures)
	assert.Equal(t, place, store.entries[PositionQuery(43.1, 131.9).Key()])
}

func TestClientSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Приморский край, Россия", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		_, _ = w.Write([]byte(`[{"address":{"state":"Приморский край","country":"Россия"}}]`))
	})

	addr, err := client.Search(context.Background(), "Приморский край, Россия")
	require.NoError(t, err)
	assert.Equal(t, ExtractPlace(addr), Place{Country: "Россия", Region: "Приморский край"})
}

func TestClientSearchNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	addr, err := client.Search(context.Background(), "нигде")
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantErr: "unexpected status code: 503",
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr: "unexpected status code: 429",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			wantErr: "failed to decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Search(context.Background(), "Приморский край")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
