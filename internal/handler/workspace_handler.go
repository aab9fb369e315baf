package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/workspace"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
	"github.com/noah-isme/sma-evaluasi-api/pkg/response"
)

type workspaceSessions interface {
	Open(ctx context.Context) *workspace.Controller
	Get(id string) (*workspace.Controller, error)
	Close(id string)
}

// WorkspaceHandler drives server-held dashboard sessions over HTTP. Every
// action answers with the full session state.
type WorkspaceHandler struct {
	sessions workspaceSessions
}

// NewWorkspaceHandler constructs WorkspaceHandler.
func NewWorkspaceHandler(sessions workspaceSessions) *WorkspaceHandler {
	return &WorkspaceHandler{sessions: sessions}
}

// Open godoc
// @Summary Open workspace session
// @Description Creates a session and loads all three collections.
// @Tags Workspace
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /workspaces [post]
func (h *WorkspaceHandler) Open(c *gin.Context) {
	ctrl := h.sessions.Open(c.Request.Context())
	response.Created(c, ctrl.State())
}

// Get godoc
// @Summary Workspace state
// @Tags Workspace
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workspaces/{id} [get]
func (h *WorkspaceHandler) Get(c *gin.Context) {
	h.apply(c, func(*workspace.Controller) error { return nil })
}

// Close godoc
// @Summary Close workspace session
// @Tags Workspace
// @Param id path string true "Workspace ID"
// @Success 204
// @Router /workspaces/{id} [delete]
func (h *WorkspaceHandler) Close(c *gin.Context) {
	h.sessions.Close(c.Param("id"))
	response.NoContent(c)
}

// Reload godoc
// @Summary Refetch all collections
// @Tags Workspace
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/reload [post]
func (h *WorkspaceHandler) Reload(c *gin.Context) {
	h.apply(c, func(ctrl *workspace.Controller) error {
		ctrl.Load(c.Request.Context())
		return nil
	})
}

// View godoc
// @Summary Switch active view
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.ViewRequest true "View"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/view [post]
func (h *WorkspaceHandler) View(c *gin.Context) {
	var req dto.ViewRequest
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		return ctrl.SetView(req.View)
	})
}

// MeetingMode godoc
// @Summary Toggle or set meeting mode
// @Description Meeting mode hides every record action. An empty body toggles.
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.MeetingModeRequest false "Explicit value"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/meeting-mode [post]
func (h *WorkspaceHandler) MeetingMode(c *gin.Context) {
	var req dto.MeetingModeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		if req.Enabled == nil {
			ctrl.ToggleMeetingMode()
			return nil
		}
		ctrl.SetMeetingMode(*req.Enabled)
		return nil
	})
}

// ModalNew godoc
// @Summary Open modal for a new record
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.ModalNewRequest false "Record type, defaults to the view"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/modal/new [post]
func (h *WorkspaceHandler) ModalNew(c *gin.Context) {
	var req dto.ModalNewRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		if req.Type != "" {
			if err := ctrl.SetView(req.Type); err != nil {
				return err
			}
		}
		return ctrl.OpenNew()
	})
}

// ModalEdit godoc
// @Summary Open modal on an existing record
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.ModalEditRequest true "Record reference"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/modal/edit [post]
func (h *WorkspaceHandler) ModalEdit(c *gin.Context) {
	var req dto.ModalEditRequest
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		entity, err := parseEntity(string(req.Type))
		if err != nil {
			return err
		}
		return ctrl.OpenEdit(entity, req.ID)
	})
}

// ModalType godoc
// @Summary Switch modal record type
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.ModalTypeRequest true "Record type"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/modal/type [post]
func (h *WorkspaceHandler) ModalType(c *gin.Context) {
	var req dto.ModalTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		return ctrl.SwitchType(req.Type)
	})
}

// ModalDraft godoc
// @Summary Save unsaved modal input
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.DraftRequest true "Draft form"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/modal/draft [post]
func (h *WorkspaceHandler) ModalDraft(c *gin.Context) {
	var req dto.DraftRequest
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		return ctrl.SaveDraft(workspace.Form(req.Form))
	})
}

// ModalSubmit godoc
// @Summary Save the modal
// @Description Without a form the saved draft over the edited record is submitted.
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.DraftRequest false "Form values"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/modal/submit [post]
func (h *WorkspaceHandler) ModalSubmit(c *gin.Context) {
	var req dto.DraftRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		return ctrl.Submit(c.Request.Context(), workspace.Form(req.Form))
	})
}

// ModalCancel godoc
// @Summary Close the modal
// @Tags Workspace
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/modal/cancel [post]
func (h *WorkspaceHandler) ModalCancel(c *gin.Context) {
	h.apply(c, func(ctrl *workspace.Controller) error {
		ctrl.Cancel()
		return nil
	})
}

// Escalate godoc
// @Summary Escalate a student to a problem
// @Description Opens the problem modal prefilled from the student's discipline rollup.
// @Tags Workspace
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.EscalateRequest true "Student"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/escalate [post]
func (h *WorkspaceHandler) Escalate(c *gin.Context) {
	var req dto.EscalateRequest
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, func(ctrl *workspace.Controller) error {
		return ctrl.Escalate(req.StudentName)
	})
}

// CloneRecord godoc
// @Summary Clone a record inside the session
// @Tags Workspace
// @Produce json
// @Param id path string true "Workspace ID"
// @Param entity path string true "problems or programs"
// @Param recordId path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/records/{entity}/{recordId}/clone [post]
func (h *WorkspaceHandler) CloneRecord(c *gin.Context) {
	h.apply(c, func(ctrl *workspace.Controller) error {
		entity, err := parseEntity(c.Param("entity"))
		if err != nil {
			return err
		}
		return ctrl.Clone(c.Request.Context(), entity, c.Param("recordId"))
	})
}

// DeleteRecord godoc
// @Summary Delete a record inside the session
// @Description Requires confirm=true; otherwise answers 428 and nothing is deleted.
// @Tags Workspace
// @Produce json
// @Param id path string true "Workspace ID"
// @Param entity path string true "problems, programs or discipline"
// @Param recordId path string true "Record ID"
// @Param confirm query bool true "Confirmation"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /workspaces/{id}/records/{entity}/{recordId} [delete]
func (h *WorkspaceHandler) DeleteRecord(c *gin.Context) {
	confirmed := strings.EqualFold(c.Query("confirm"), "true")
	h.apply(c, func(ctrl *workspace.Controller) error {
		entity, err := parseEntity(c.Param("entity"))
		if err != nil {
			return err
		}
		return ctrl.Delete(c.Request.Context(), entity, c.Param("recordId"), workspace.ConfirmFunc(func(string) bool {
			return confirmed
		}))
	})
}

func (h *WorkspaceHandler) apply(c *gin.Context, fn func(ctrl *workspace.Controller) error) {
	ctrl, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := fn(ctrl); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ctrl.State())
}

func parseEntity(raw string) (models.EntityType, error) {
	entity, err := models.ParseEntityType(raw)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unknown record type")
	}
	return entity, nil
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dest interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
