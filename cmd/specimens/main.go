// Команда specimens читает таблицу экземпляров коллекции, нормализует и геокодирует
// записи и выгружает нормализованные таблицы в CSV, XLSX и/или SQLite
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/pank-su/zin-lab-data/database"
	"github.com/pank-su/zin-lab-data/export"
	"github.com/pank-su/zin-lab-data/geocoding"
	"github.com/pank-su/zin-lab-data/importer"
	"github.com/pank-su/zin-lab-data/internal/config"
	"github.com/pank-su/zin-lab-data/internal/logging"
	"github.com/pank-su/zin-lab-data/pipeline"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	flag.StringVar(&cfg.InputPath, "input", cfg.InputPath, "Path to the specimens table (.xlsx or .csv)")
	flag.StringVar(&cfg.OutputDir, "out-dir", cfg.OutputDir, "Directory for CSV tables (empty to skip)")
	flag.StringVar(&cfg.OutputWorkbook, "workbook", cfg.OutputWorkbook, "Path to the output XLSX workbook (empty to skip)")
	flag.StringVar(&cfg.OutputDatabase, "db", cfg.OutputDatabase, "Path to the output SQLite database (empty to skip)")
	flag.StringVar(&cfg.Geocoder.CacheBackend, "cache-backend", cfg.Geocoder.CacheBackend, "Geocode cache backend: sqlite, bolt or memory")
	flag.StringVar(&cfg.Geocoder.CachePath, "cache", cfg.Geocoder.CachePath, "Path to the geocode cache file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	logger, runID := logging.WithRunID(logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := database.OpenCacheStore(cfg.Geocoder.CacheBackend, cfg.Geocoder.CachePath)
	if err != nil {
		log.Fatalf("Ошибка открытия кэша геокодирования: %v", err)
	}
	defer closer.Close()

	client := geocoding.NewClient(geocoding.ClientConfig{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Language:  cfg.Geocoder.Language,
		Timeout:   cfg.Geocoder.Timeout,
		RateLimit: rate.Limit(cfg.Geocoder.RatePerSecond),
	})
	cache := geocoding.NewCache(ctx, store, logger)
	resolver := geocoding.NewResolver(client, cache, geocoding.ResolverConfig{
		Backoff: geocoding.BackoffPolicy{
			Initial:     cfg.Geocoder.BackoffInitial,
			Factor:      cfg.Geocoder.BackoffFactor,
			Max:         cfg.Geocoder.BackoffMax,
			MaxAttempts: cfg.Geocoder.MaxAttempts,
		},
		Logger: logger,
	})

	started := time.Now()
	logger.Info("Reading specimens", "input", cfg.InputPath)
	records, err := importer.ReadFile(cfg.InputPath)
	if err != nil {
		log.Fatalf("Ошибка чтения входной таблицы: %v", err)
	}

	assembler := pipeline.NewAssembler(resolver, pipeline.Config{
		InvalidValues:  cfg.InvalidValues,
		DefaultCountry: cfg.DefaultCountry,
		Logger:         logger,
	})
	if err := assembler.Run(ctx, records); err != nil {
		log.Fatalf("Ошибка обработки записей: %v", err)
	}

	tables := export.Tables(assembler.State())
	err = export.Write(ctx, tables, export.Targets{
		Dir:      cfg.OutputDir,
		Workbook: cfg.OutputWorkbook,
		Database: cfg.OutputDatabase,
	})
	if err != nil {
		log.Fatalf("Ошибка выгрузки таблиц: %v", err)
	}

	report := struct {
		RunID    string                  `json:"run_id"`
		Duration string                  `json:"duration"`
		Tables   pipeline.Summary        `json:"tables"`
		Geocoder geocoding.ResolverStats `json:"geocoder"`
	}{
		RunID:    runID,
		Duration: time.Since(started).Round(time.Millisecond).String(),
		Tables:   assembler.State().Summary(),
		Geocoder: resolver.Stats(),
	}
	data, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(data))
}
