package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/service"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
	"github.com/noah-isme/sma-evaluasi-api/pkg/response"
)

type disciplineService interface {
	List(ctx context.Context) ([]models.DisciplineLog, error)
	Create(ctx context.Context, req service.DisciplineLogRequest) (*models.DisciplineLog, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, name string) (*dto.StudentHistoryResponse, error)
}

// DisciplineHandler exposes discipline log endpoints.
type DisciplineHandler struct {
	logs disciplineService
}

// NewDisciplineHandler constructs DisciplineHandler.
func NewDisciplineHandler(logs disciplineService) *DisciplineHandler {
	return &DisciplineHandler{logs: logs}
}

// List godoc
// @Summary List discipline logs
// @Tags Discipline
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /discipline-logs [get]
func (h *DisciplineHandler) List(c *gin.Context) {
	logs, err := h.logs.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, logs)
}

// Create godoc
// @Summary Record discipline log
// @Description Points are derived from type and magnitude (1, 2 or 5).
// @Tags Discipline
// @Accept json
// @Produce json
// @Param payload body service.DisciplineLogRequest true "Log payload"
// @Success 201 {object} response.Envelope
// @Router /discipline-logs [post]
func (h *DisciplineHandler) Create(c *gin.Context) {
	var req service.DisciplineLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	log, err := h.logs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, log)
}

// Delete godoc
// @Summary Delete discipline log
// @Tags Discipline
// @Param id path string true "Log ID"
// @Success 204
// @Router /discipline-logs/{id} [delete]
func (h *DisciplineHandler) Delete(c *gin.Context) {
	if err := h.logs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// History godoc
// @Summary Student log history
// @Tags Discipline
// @Produce json
// @Param name path string true "Student name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /discipline-logs/students/{name} [get]
func (h *DisciplineHandler) History(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student name is required"))
		return
	}
	history, err := h.logs.History(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}
