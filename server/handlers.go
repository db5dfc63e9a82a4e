package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pank-su/zin-lab-data/database"
	"github.com/pank-su/zin-lab-data/geocoding"
	apperrors "github.com/pank-su/zin-lab-data/server/errors"
	"github.com/pank-su/zin-lab-data/server/middleware"
)

// Ограничения постраничного вывода таблиц
const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

func errNotFound(message string) error {
	return apperrors.NewNotFoundError(message, nil)
}

func (s *Server) writeError(c *gin.Context, err error) {
	middleware.WriteGinError(c, s.logger, err)
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		s.writeError(c, apperrors.NewServiceUnavailableError("База данных недоступна", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": s.db.Path(),
		"cache":    s.cache != nil,
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleListTables(c *gin.Context) {
	tables, err := s.db.ListTables(c.Request.Context())
	if err != nil {
		s.writeError(c, apperrors.WrapError(err, "listing tables"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (s *Server) handleTableRows(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil || limit < 1 || limit > maxPageLimit {
		s.writeError(c, apperrors.NewValidationError("limit должен быть числом от 1 до 1000", err))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		s.writeError(c, apperrors.NewValidationError("offset должен быть неотрицательным числом", err))
		return
	}

	name := c.Param("name")
	rows, err := s.db.TableRows(c.Request.Context(), name, limit, offset)
	if errors.Is(err, database.ErrUnknownTable) {
		s.writeError(c, apperrors.NewNotFoundError("Таблица не найдена: "+name, err))
		return
	}
	if err != nil {
		s.writeError(c, apperrors.WrapError(err, "reading table rows"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":  name,
		"limit":  limit,
		"offset": offset,
		"rows":   rows,
	})
}

func (s *Server) handleGetCollection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.writeError(c, apperrors.NewValidationError("id должен быть целым числом", err))
		return
	}

	view, err := s.db.GetCollection(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		s.writeError(c, apperrors.NewNotFoundError("Запись коллекции не найдена", err))
		return
	}
	if err != nil {
		s.writeError(c, apperrors.WrapError(err, "reading collection"))
		return
	}

	c.JSON(http.StatusOK, view)
}

// handleGeocodeCache ищет запись кэша по ключу, тексту запроса или координатам
// Без параметров возвращает число записей
func (s *Server) handleGeocodeCache(c *gin.Context) {
	if s.cache == nil {
		s.writeError(c, apperrors.NewServiceUnavailableError("Кэш геокодирования не подключен", nil))
		return
	}
	ctx := c.Request.Context()

	key, ok, err := cacheKeyFromQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		count, err := s.cache.Count(ctx)
		if err != nil {
			s.writeError(c, apperrors.WrapError(err, "counting cache entries"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": count})
		return
	}

	place, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.writeError(c, apperrors.WrapError(err, "reading cache entry"))
		return
	}
	if !found {
		s.writeError(c, errNotFound("Запись кэша не найдена"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "place": place})
}

// cacheKeyFromQuery строит ключ кэша тем же способом, что и резолвер
func cacheKeyFromQuery(c *gin.Context) (string, bool, error) {
	if key := c.Query("key"); key != "" {
		return key, true, nil
	}
	if text := c.Query("text"); text != "" {
		return geocoding.TextQuery(text).Key(), true, nil
	}

	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw == "" && lonRaw == "" {
		return "", false, nil
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if err := errors.Join(latErr, lonErr); err != nil {
		return "", false, apperrors.NewValidationError("lat и lon должны быть числами", err)
	}
	return geocoding.PositionQuery(lat, lon).Key(), true, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
