package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
)

type CompletionHandler struct {
	svc    *services.CompletionService
	loc    *time.Location
	logger *zap.Logger
}

// NewCompletionHandler reads zone-less query timestamps in loc.
func NewCompletionHandler(svc *services.CompletionService, loc *time.Location, logger *zap.Logger) *CompletionHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionHandler{svc: svc, loc: loc, logger: logger}
}

type completeRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/habits/:id/completions", h.Complete)
	router.DELETE("/habits/:id/completions", h.Undo)
	router.GET("/habits/:id/completions", h.List)

	completions := router.Group("/completions")
	{
		completions.GET("/sync", h.Sync)
		completions.DELETE("/:id", h.Delete)
	}
}

func (h *CompletionHandler) queryTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, ok := analytics.ParseTimestamp(raw, h.loc)
	if !ok {
		badRequest(c, "invalid "+name+", use YYYY-MM-DD or RFC3339")
	}
	return t, ok
}

// Complete godoc
// @Summary  Log a completion
// @Tags     completions
// @Accept   json
// @Produce  json
// @Param    id   path string          true  "habit id"
// @Param    body body completeRequest false "completion time, defaults to now"
// @Success  201 {object} domain.Completion
// @Security BearerAuth
// @Router   /habits/{id}/completions [post]
func (h *CompletionHandler) Complete(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var req completeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	input := services.CompleteInput{HabitID: c.Param("id"), UserID: userID}
	if req.CompletedAt != nil {
		input.CompletedAt = *req.CompletedAt
	}

	completion, err := h.svc.Complete(c.Request.Context(), input)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, completion)
}

// Undo removes the latest completion of the day given by ?date= (today by default).
func (h *CompletionHandler) Undo(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	day, ok := h.queryTime(c, "date")
	if !ok {
		return
	}

	removed, err := h.svc.Undo(c.Request.Context(), c.Param("id"), userID, day)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, removed)
}

func (h *CompletionHandler) List(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	from, ok := h.queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := h.queryTime(c, "to")
	if !ok {
		return
	}
	if !to.IsZero() && to.Before(from) {
		badRequest(c, "from cannot be after to")
		return
	}

	list, err := h.svc.ListByHabitID(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CompletionHandler) Delete(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CompletionHandler) Sync(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		var err error
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid since format, use RFC3339")
			return
		}
	}

	changes, err := h.svc.GetDelta(c.Request.Context(), userID, since)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	})
}
