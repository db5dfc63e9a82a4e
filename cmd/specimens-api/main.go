// Команда specimens-api отдает нормализованную коллекцию и кэш геокодирования по HTTP
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pank-su/zin-lab-data/database"
	"github.com/pank-su/zin-lab-data/internal/config"
	"github.com/pank-su/zin-lab-data/internal/logging"
	"github.com/pank-su/zin-lab-data/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	dbPath := flag.String("db", cfg.OutputDatabase, "Path to the SQLite database written by specimens")
	port := flag.String("port", cfg.APIPort, "HTTP port")
	withCache := flag.Bool("cache", true, "Serve the geocode cache configured by GEOCODE_CACHE_*")
	flag.Parse()

	if *dbPath == "" {
		log.Fatalf("Не указана база данных коллекции (-db или OUTPUT_DATABASE)")
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()
	log.Printf("[API] Используется база данных: %s", *dbPath)

	var cache database.CacheStore
	if *withCache {
		store, closer, err := database.OpenCacheStore(cfg.Geocoder.CacheBackend, cfg.Geocoder.CachePath)
		if err != nil {
			log.Fatalf("Ошибка открытия кэша геокодирования: %v", err)
		}
		defer closer.Close()
		cache = store
	}

	srv := server.New(db, cache, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(*port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("[API] Получен сигнал %v, останавливаем сервер", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("[API] Ошибка остановки сервера: %v", err)
		}
	}
}
