package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/middleware"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
	"github.com/noah-isme/sma-evaluasi-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, bool, error)
	Suggestions(ctx context.Context) (*dto.Suggestions, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Evaluation dashboard
// @Description Issue board, discipline rollups, health score and alerts computed for today.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, middleware.ResponseMeta(c, cacheHit, start))
}

// Suggestions godoc
// @Summary Form autocomplete values
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/suggestions [get]
func (h *DashboardHandler) Suggestions(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	suggestions, cacheHit, err := h.service.Suggestions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, middleware.ResponseMeta(c, cacheHit, start))
}
