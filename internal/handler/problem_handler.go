package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/service"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
	"github.com/noah-isme/sma-evaluasi-api/pkg/response"
)

type problemService interface {
	List(ctx context.Context) ([]models.Problem, error)
	Get(ctx context.Context, id string) (*models.Problem, error)
	Create(ctx context.Context, req service.ProblemRequest) (*models.Problem, error)
	Update(ctx context.Context, id string, req service.ProblemRequest) (*models.Problem, error)
	Delete(ctx context.Context, id string) error
	Clone(ctx context.Context, id string) (*models.Problem, error)
}

// ProblemHandler exposes problem endpoints.
type ProblemHandler struct {
	problems problemService
}

// NewProblemHandler constructs ProblemHandler.
func NewProblemHandler(problems problemService) *ProblemHandler {
	return &ProblemHandler{problems: problems}
}

// List godoc
// @Summary List problems
// @Tags Problems
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /problems [get]
func (h *ProblemHandler) List(c *gin.Context) {
	problems, err := h.problems.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, problems)
}

// Get godoc
// @Summary Get problem
// @Tags Problems
// @Produce json
// @Param id path string true "Problem ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /problems/{id} [get]
func (h *ProblemHandler) Get(c *gin.Context) {
	problem, err := h.problems.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, problem)
}

// Create godoc
// @Summary Create problem
// @Tags Problems
// @Accept json
// @Produce json
// @Param payload body service.ProblemRequest true "Problem payload"
// @Success 201 {object} response.Envelope
// @Router /problems [post]
func (h *ProblemHandler) Create(c *gin.Context) {
	var req service.ProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	problem, err := h.problems.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, problem)
}

// Update godoc
// @Summary Update problem
// @Tags Problems
// @Accept json
// @Produce json
// @Param id path string true "Problem ID"
// @Param payload body service.ProblemRequest true "Problem payload"
// @Success 200 {object} response.Envelope
// @Router /problems/{id} [put]
func (h *ProblemHandler) Update(c *gin.Context) {
	var req service.ProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	problem, err := h.problems.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, problem)
}

// Delete godoc
// @Summary Delete problem
// @Tags Problems
// @Param id path string true "Problem ID"
// @Success 204
// @Router /problems/{id} [delete]
func (h *ProblemHandler) Delete(c *gin.Context) {
	if err := h.problems.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clone godoc
// @Summary Duplicate problem
// @Description Stores a copy with " (Salinan)" appended to the title.
// @Tags Problems
// @Produce json
// @Param id path string true "Problem ID"
// @Success 201 {object} response.Envelope
// @Router /problems/{id}/clone [post]
func (h *ProblemHandler) Clone(c *gin.Context) {
	problem, err := h.problems.Clone(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, problem)
}
