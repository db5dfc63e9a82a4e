package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client клиент Nominatim-совместимого сервиса геокодирования
type Client struct {
	baseURL    string
	userAgent  string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientConfig конфигурация клиента
type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	Language   string
	Timeout    time.Duration
	RateLimit  rate.Limit
	HTTPClient *http.Client
}

// NewClient создает новый клиент геокодирования
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if config.UserAgent == "" {
		config.UserAgent = "zin-lab-data/1.0"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(time.Second) // политика публичного Nominatim: 1 запрос в секунду
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		userAgent:  config.UserAgent,
		language:   config.Language,
		httpClient: config.HTTPClient,
		limiter:    rate.NewLimiter(config.RateLimit, 1),
	}
}

// nominatimPlace элемент ответа /search и ответ /reverse
type nominatimPlace struct {
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
	Error       string  `json:"error,omitempty"`
}

// Reverse выполняет обратное геокодирование
// Точка без адреса (например, в море) возвращает пустой адрес без ошибки,
// другие ошибки в теле ответа со статусом 200 возвращаются как ошибка
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var place nominatimPlace
	if err := c.get(ctx, "/reverse", params, &place); err != nil {
		return nil, err
	}
	if place.Error != "" {
		if isNoAddressError(place.Error) {
			return Address{}, nil
		}
		return nil, fmt.Errorf("geocoder error: %s", place.Error)
	}
	return place.Address, nil
}

// isNoAddressError ответ сервиса "у точки нет адреса": это результат, а не сбой
// Остальные сообщения в поле error считаются сбоем и повторяются
func isNoAddressError(message string) bool {
	return strings.Contains(strings.ToLower(message), "unable to geocode")
}

// Search выполняет прямое геокодирование, берется первый результат
func (c *Client) Search(ctx context.Context, query string) (Address, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")

	var places []nominatimPlace
	if err := c.get(ctx, "/search", params, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return Address{}, nil
	}
	return places[0].Address, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	// Проверка лимита запросов
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
