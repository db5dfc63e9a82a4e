package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var validLogLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

var validCacheBackends = []string{"sqlite", "bolt", "memory"}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	if c.InputPath == "" {
		errors = append(errors, "input path is required")
	}
	if c.OutputDir == "" && c.OutputWorkbook == "" && c.OutputDatabase == "" {
		errors = append(errors, "at least one output (dir, workbook or database) is required")
	}

	// Валидация уровня логирования
	if c.LogLevel != "" && !contains(validLogLevels, strings.ToUpper(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", ")))
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "text" {
		errors = append(errors, fmt.Sprintf("invalid log format: %s (valid: json, text)", c.LogFormat))
	}

	if c.APIPort != "" {
		port, err := strconv.Atoi(c.APIPort)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid api port: %s", c.APIPort))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("api port must be between 1 and 65535, got %d", port))
		}
	}

	if c.Geocoder == nil {
		errors = append(errors, "geocoder config is required")
	} else {
		errors = append(errors, c.Geocoder.validate()...)
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (g *GeocoderConfig) validate() []string {
	var errors []string

	if u, err := url.Parse(g.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid geocoder base url: %q", g.BaseURL))
	}
	if g.UserAgent == "" {
		errors = append(errors, "geocoder user agent is required")
	}
	if g.Timeout < time.Second {
		errors = append(errors, "geocoder timeout must be at least 1 second")
	}
	if g.RatePerSecond <= 0 {
		errors = append(errors, "geocoder rate must be positive")
	}
	if g.BackoffInitial <= 0 {
		errors = append(errors, "geocoder backoff initial delay must be positive")
	}
	if g.BackoffFactor < 1 {
		errors = append(errors, "geocoder backoff factor must be at least 1")
	}
	if g.BackoffMax < 0 {
		errors = append(errors, "geocoder backoff max must not be negative")
	}
	if g.BackoffMax > 0 && g.BackoffMax < g.BackoffInitial {
		errors = append(errors, "geocoder backoff max cannot be less than the initial delay")
	}
	if g.MaxAttempts < 0 {
		errors = append(errors, "geocoder max attempts must not be negative")
	}
	if !contains(validCacheBackends, g.CacheBackend) {
		errors = append(errors, fmt.Sprintf("invalid geocode cache backend: %s (valid: %s)",
			g.CacheBackend, strings.Join(validCacheBackends, ", ")))
	}
	if g.CacheBackend != "memory" && g.CachePath == "" {
		errors = append(errors, "geocode cache path is required")
	}

	return errors
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
