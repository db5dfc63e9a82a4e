// Package server предоставляет HTTP API только для чтения результатов пайплайна:
// нормализованных таблиц коллекции и кэша геокодирования
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pank-su/zin-lab-data/database"
	"github.com/pank-su/zin-lab-data/server/middleware"
)

// Server HTTP сервер API коллекции
type Server struct {
	db         *database.DB
	cache      database.CacheStore // nil, если кэш геокодирования не подключен
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// New создает сервер поверх выходной базы коллекции
// cache может быть nil: тогда эндпоинты кэша отвечают 503
func New(db *database.DB, cache database.CacheStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		db:        db,
		cache:     cache,
		logger:    logger,
		startedAt: time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(s.logger))
	router.Use(middleware.GinRecoveryMiddleware(s.logger))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/tables", s.handleListTables)
		api.GET("/tables/:name", s.handleTableRows)
		api.GET("/collections/:id", s.handleGetCollection)
		api.GET("/geocode/cache", s.handleGeocodeCache)
	}

	router.NoRoute(func(c *gin.Context) {
		s.writeError(c, errNotFound("Маршрут не найден"))
	})

	return router
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("[Server] Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Printf("[Server] Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
