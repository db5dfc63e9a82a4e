package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pank-su/zin-lab-data/normalization"
)

// Config конфигурация пайплайна нормализации коллекции
type Config struct {
	// Входные и выходные данные
	InputPath      string `json:"input_path"`
	OutputDir      string `json:"output_dir"`
	OutputWorkbook string `json:"output_workbook"`
	OutputDatabase string `json:"output_database"`

	// Логирование
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	// Нормализация
	InvalidValues  []string `json:"invalid_values"`
	DefaultCountry string   `json:"default_country"`

	// Геокодирование
	Geocoder *GeocoderConfig `json:"geocoder"`

	// HTTP API
	APIPort string `json:"api_port"`
}

// GeocoderConfig конфигурация геокодера и его кэша
type GeocoderConfig struct {
	BaseURL        string        `json:"base_url"`
	UserAgent      string        `json:"user_agent"`
	Language       string        `json:"language"`
	Timeout        time.Duration `json:"timeout"`
	RatePerSecond  float64       `json:"rate_per_second"`
	BackoffInitial time.Duration `json:"backoff_initial"`
	BackoffFactor  float64       `json:"backoff_factor"`
	BackoffMax     time.Duration `json:"backoff_max"`  // 0 - без ограничения
	MaxAttempts    int           `json:"max_attempts"` // 0 - повторять бесконечно
	CacheBackend   string        `json:"cache_backend"`
	CachePath      string        `json:"cache_path"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		InputPath:      getEnv("INPUT_PATH", "input_data/collection.xlsx"),
		OutputDir:      getEnv("OUTPUT_DIR", "output_data"),
		OutputWorkbook: os.Getenv("OUTPUT_WORKBOOK"),
		OutputDatabase: os.Getenv("OUTPUT_DATABASE"),

		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		InvalidValues:  getEnvList("INVALID_VALUES", normalization.DefaultInvalidValues),
		DefaultCountry: getEnv("DEFAULT_COUNTRY", "Россия"),

		Geocoder: LoadGeocoderConfig(),

		APIPort: getEnv("API_PORT", "9999"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadGeocoderConfig загружает конфигурацию геокодера
func LoadGeocoderConfig() *GeocoderConfig {
	return &GeocoderConfig{
		BaseURL:        getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:      getEnv("GEOCODER_USER_AGENT", "zin-lab-data/1.0"),
		Language:       getEnv("GEOCODER_LANGUAGE", "ru"),
		Timeout:        getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second),
		RatePerSecond:  getEnvFloat("GEOCODER_RATE_PER_SEC", 1),
		BackoffInitial: getEnvDuration("GEOCODER_BACKOFF_INITIAL", 800*time.Millisecond),
		BackoffFactor:  getEnvFloat("GEOCODER_BACKOFF_FACTOR", 2),
		BackoffMax:     getEnvDuration("GEOCODER_BACKOFF_MAX", 0),
		MaxAttempts:    getEnvInt("GEOCODER_MAX_ATTEMPTS", 0),
		CacheBackend:   getEnv("GEOCODE_CACHE_BACKEND", "sqlite"),
		CachePath:      getEnv("GEOCODE_CACHE_PATH", "geocode_cache.db"),
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList получает список значений, разделенных "|"
// Запятая не подходит: она встречается в самих значениях
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	parts := strings.Split(value, "|")
	list := make([]string, 0, len(parts)+1)
	list = append(list, "")
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
