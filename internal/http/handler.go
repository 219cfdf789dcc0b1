package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/oil-tenders/internal/filter"
	"github.com/nurpe/oil-tenders/internal/http/middleware"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/service"
	"github.com/nurpe/oil-tenders/internal/source"
	"github.com/nurpe/oil-tenders/internal/unit"
)

// UpstreamChecker is satisfied by *source.Client.
type UpstreamChecker interface {
	Health(ctx context.Context) (source.Health, error)
}

type Handler struct {
	dashboard *service.DashboardService
	upstream  UpstreamChecker
	log       zerolog.Logger
}

// NewHandler builds the handler. upstream may be nil.
func NewHandler(dashboard *service.DashboardService, upstream UpstreamChecker, log zerolog.Logger) *Handler {
	return &Handler{dashboard: dashboard, upstream: upstream, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", h.health)
	router.GET("/health/upstream", h.upstreamHealth)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/dashboard", h.getDashboard)
	protected.GET("/dashboard/options", h.getOptions)
	protected.GET("/dashboard/export", h.exportExcel)
	protected.GET("/dashboard/export/pdf", h.exportPDF)
	protected.GET("/filters", h.getFilter)
	protected.PUT("/filters", h.saveFilter)
	protected.DELETE("/filters", h.clearFilter)
	protected.POST("/offers/refresh", h.refreshOffers)
	protected.GET("/exports", h.listExports)
	protected.GET("/exports/:id", h.getExport)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) upstreamHealth(c *gin.Context) {
	if h.upstream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream not configured"})
		return
	}
	health, err := h.upstream.Health(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("upstream health check failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": health.Status, "detail": health.Detail})
}

func (h *Handler) getDashboard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	state, displayUnit, ok := h.parseDashboardQuery(c)
	if !ok {
		return
	}

	result, err := h.dashboard.Dashboard(c.Request.Context(), service.DashboardInput{
		Principal: principal,
		Filter:    state,
		Unit:      displayUnit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getOptions(c *gin.Context) {
	choices, err := h.dashboard.Choices(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, choices)
}

func (h *Handler) exportExcel(c *gin.Context) {
	h.export(c, model.ExportFormatXLSX)
}

func (h *Handler) exportPDF(c *gin.Context) {
	h.export(c, model.ExportFormatPDF)
}

func (h *Handler) export(c *gin.Context, format model.ExportFormat) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	state, displayUnit, ok := h.parseDashboardQuery(c)
	if !ok {
		return
	}

	result, err := h.dashboard.Export(c.Request.Context(), service.ExportInput{
		Principal: principal,
		Filter:    state,
		Unit:      displayUnit,
		Format:    format,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) getFilter(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	state, err := h.dashboard.GetFilter(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) saveFilter(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req filter.State
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, ok = normalizeBounds(c, req)
	if !ok {
		return
	}

	state, err := h.dashboard.SaveFilter(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) clearFilter(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	if err := h.dashboard.ClearFilter(c.Request.Context(), principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) refreshOffers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	result, err := h.dashboard.Refresh(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type exportResponse struct {
	ID             uuid.UUID  `json:"id"`
	Format         string     `json:"format"`
	FileName       string     `json:"file_name"`
	FilterQuery    string     `json:"filter_query"`
	Unit           string     `json:"unit"`
	OfferCount     int        `json:"offer_count"`
	TenderedVolume float64    `json:"tendered_volume"`
	OrgID          *uuid.UUID `json:"org_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toExportResponse(export model.Export) exportResponse {
	return exportResponse{
		ID:             export.ID,
		Format:         string(export.Format),
		FileName:       export.FileName,
		FilterQuery:    export.FilterQuery,
		Unit:           export.Unit,
		OfferCount:     export.OfferCount,
		TenderedVolume: export.TenderedVolume,
		OrgID:          export.OrgID,
		CreatedAt:      export.CreatedAt,
	}
}

func (h *Handler) listExports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	exports, err := h.dashboard.ListExports(c.Request.Context(), principal, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	items := make([]exportResponse, 0, len(exports))
	for _, export := range exports {
		items = append(items, toExportResponse(export))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getExport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	export, err := h.dashboard.GetExport(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExportResponse(*export))
}

// parseDashboardQuery reads the filter and display unit from the query
// string. It writes a 400 response and returns false on malformed input.
func (h *Handler) parseDashboardQuery(c *gin.Context) (filter.State, unit.Unit, bool) {
	state, ok := normalizeBounds(c, filter.FromQuery(c.Request.URL.Query()))
	if !ok {
		return filter.State{}, "", false
	}

	var displayUnit unit.Unit
	if raw := strings.TrimSpace(c.Query("unit")); raw != "" {
		parsed, err := unit.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit"})
			return filter.State{}, "", false
		}
		displayUnit = parsed
	}
	return state, displayUnit, true
}

func normalizeBounds(c *gin.Context, state filter.State) (filter.State, bool) {
	if raw := strings.TrimSpace(state.From); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return filter.State{}, false
		}
		state.From = from.Format("2006-01-02")
	}
	if raw := strings.TrimSpace(state.To); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return filter.State{}, false
		}
		state.To = to.Format("2006-01-02")
	}
	return state, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoOffers):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSourceUnavailable):
		h.log.Warn().Err(err).Msg("offer source unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrSourceUnavailable.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
