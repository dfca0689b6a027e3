package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
)

const maxLookbackDays = 366

type MetricsHandler struct {
	svc    *services.MetricsService
	loc    *time.Location
	logger *zap.Logger
}

// NewMetricsHandler reads zone-less dates in loc unless the request names a
// tz. loc should match the location the service computes in.
func NewMetricsHandler(svc *services.MetricsService, loc *time.Location, logger *zap.Logger) *MetricsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{svc: svc, loc: loc, logger: logger}
}

type computeRequest struct {
	Habits       []domain.HabitRecord `json:"habits" binding:"required"`
	Now          string               `json:"now"`
	TZ           string               `json:"tz"`
	LookbackDays int                  `json:"lookback_days"`
}

func (h *MetricsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/habits/:id/metrics", h.HabitMetrics)
	router.GET("/metrics/dashboard", h.Dashboard)
	router.POST("/analytics/compute", h.Compute)
}

// location resolves tz, falling back to the handler's location.
func (h *MetricsHandler) location(tz string) (*time.Location, bool) {
	if tz == "" {
		return h.loc, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, false
	}
	return loc, true
}

func parseLookback(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLookbackDays {
		return 0, false
	}
	return n, true
}

// HabitMetrics godoc
// @Summary  Metrics for a single habit
// @Tags     metrics
// @Produce  json
// @Param    id    path  string true  "habit id"
// @Param    month query string false "calendar month, YYYY-MM"
// @Param    tz    query string false "IANA time zone"
// @Success  200 {object} domain.HabitMetrics
// @Security BearerAuth
// @Router   /habits/{id}/metrics [get]
func (h *MetricsHandler) HabitMetrics(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	loc, ok := h.location(c.Query("tz"))
	if !ok {
		badRequest(c, "invalid tz")
		return
	}

	q := services.MetricsQuery{
		UserID:   userID,
		HabitID:  c.Param("id"),
		Location: loc,
	}

	if raw := c.Query("month"); raw != "" {
		month, err := time.ParseInLocation("2006-01", raw, loc)
		if err != nil {
			badRequest(c, "invalid month, use YYYY-MM")
			return
		}
		q.CalendarMonth = month
	}

	metrics, err := h.svc.GetHabitMetrics(c.Request.Context(), q)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// Dashboard godoc
// @Summary  Aggregate metrics over the caller's habits
// @Tags     metrics
// @Produce  json
// @Param    lookback_days    query int    false "category histogram window"
// @Param    include_archived query bool   false "include archived habits"
// @Param    tz               query string false "IANA time zone"
// @Success  200 {object} domain.DashboardMetrics
// @Security BearerAuth
// @Router   /metrics/dashboard [get]
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	loc, ok := h.location(c.Query("tz"))
	if !ok {
		badRequest(c, "invalid tz")
		return
	}

	lookback, ok := parseLookback(c.Query("lookback_days"))
	if !ok {
		badRequest(c, "invalid lookback_days")
		return
	}

	includeArchived := false
	if raw := c.Query("include_archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid include_archived")
			return
		}
		includeArchived = v
	}

	dashboard, err := h.svc.GetDashboard(c.Request.Context(), services.MetricsQuery{
		UserID:          userID,
		Location:        loc,
		LookbackDays:    lookback,
		IncludeArchived: includeArchived,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Compute godoc
// @Summary  Run the engine over client-supplied habit records
// @Tags     metrics
// @Accept   json
// @Produce  json
// @Param    body body computeRequest true "habit records"
// @Success  200 {object} domain.DashboardMetrics
// @Security BearerAuth
// @Router   /analytics/compute [post]
func (h *MetricsHandler) Compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	loc, ok := h.location(req.TZ)
	if !ok {
		badRequest(c, "invalid tz")
		return
	}
	if req.LookbackDays < 0 || req.LookbackDays > maxLookbackDays {
		badRequest(c, "invalid lookback_days")
		return
	}

	q := services.MetricsQuery{Location: loc, LookbackDays: req.LookbackDays}
	if req.Now != "" {
		now, ok := analytics.ParseTimestamp(req.Now, loc)
		if !ok {
			badRequest(c, "invalid now")
			return
		}
		q.Now = now
	}

	dashboard, err := h.svc.ComputeFromRecords(req.Habits, q)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
