package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"exoplanet-finder-api/middleware"
	"exoplanet-finder-api/models"
	"exoplanet-finder-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Observation lists page by creation time, newest first. The catalog grows
// one row per distinct feature tuple, so a modest page size keeps the cached
// payloads small.
const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type listParams struct {
	Limit  int
	Before *time.Time
}

// ObservationPage is one cursor-paginated slice of the catalog. NextCursor
// is the created_at of the last row, fed back via ?before= for the next page.
type ObservationPage struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

func parseListParams(c *gin.Context) listParams {
	p := listParams{Limit: defaultPageSize}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}

	if beforeStr := c.Query("before"); beforeStr != "" {
		if t, err := time.Parse(time.RFC3339Nano, beforeStr); err == nil {
			p.Before = &t
		}
	}

	return p
}

// pageOf trims an over-fetched row slice (limit+1) down to one page and
// derives the continuation cursor.
func pageOf[T any](rows []T, limit int, ts func(T) time.Time) ObservationPage {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = ts(rows[len(rows)-1]).Format(time.RFC3339Nano)
	}

	return ObservationPage{Data: rows, NextCursor: nextCursor, HasMore: hasMore}
}

type ObservationsHandler struct {
	db    *gorm.DB
	cache *services.CacheService
}

func NewObservationsHandler(db *gorm.DB, cache *services.CacheService) *ObservationsHandler {
	return &ObservationsHandler{db: db, cache: cache}
}

// GetObservations lists all labeled full-schema candidates, newest first.
func (h *ObservationsHandler) GetObservations(c *gin.Context) {
	p := parseListParams(c)

	beforeStr := ""
	if p.Before != nil {
		beforeStr = p.Before.Format(time.RFC3339Nano)
	}
	cacheKey := fmt.Sprintf("exoplanets:%d:%s", p.Limit, beforeStr)

	var cached ObservationPage
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	query := h.db.Model(&models.Observation{}).Order("created_at DESC").Limit(p.Limit + 1)
	if p.Before != nil {
		query = query.Where("created_at < ?", *p.Before)
	}

	var rows []models.Observation
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	resp := pageOf(rows, p.Limit, func(o models.Observation) time.Time { return o.CreatedAt })
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}

// GetReducedObservations lists all labeled reduced-schema candidates.
func (h *ObservationsHandler) GetReducedObservations(c *gin.Context) {
	p := parseListParams(c)

	beforeStr := ""
	if p.Before != nil {
		beforeStr = p.Before.Format(time.RFC3339Nano)
	}
	cacheKey := fmt.Sprintf("exoplanets_noob:%d:%s", p.Limit, beforeStr)

	var cached ObservationPage
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	query := h.db.Model(&models.ReducedObservation{}).Order("created_at DESC").Limit(p.Limit + 1)
	if p.Before != nil {
		query = query.Where("created_at < ?", *p.Before)
	}

	var rows []models.ReducedObservation
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	resp := pageOf(rows, p.Limit, func(o models.ReducedObservation) time.Time { return o.CreatedAt })
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}

// GetMyObservations returns both schemas' records owned by the caller.
func (h *ObservationsHandler) GetMyObservations(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var full []models.Observation
	if err := h.db.Where("user_id = ?", *userID).Order("created_at DESC").Find(&full).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	var reduced []models.ReducedObservation
	if err := h.db.Where("user_id = ?", *userID).Order("created_at DESC").Find(&reduced).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exoplanets":      full,
		"exoplanets_noob": reduced,
	})
}
