package dto

import (
	"time"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

// Actions a client may offer, depending on meeting mode.
const (
	ActionCreate   = "create"
	ActionEdit     = "edit"
	ActionClone    = "clone"
	ActionDelete   = "delete"
	ActionEscalate = "escalate"
)

// ModalState is the entry modal as seen by the client.
type ModalState struct {
	Open      bool              `json:"open"`
	Type      models.EntityType `json:"type,omitempty"`
	EditingID string            `json:"editingId,omitempty"`
	Editing   interface{}       `json:"editing,omitempty"`
	Draft     map[string]string `json:"draft,omitempty"`
}

// WorkspaceState is the snapshot of one dashboard session.
type WorkspaceState struct {
	ID             string                 `json:"id"`
	View           models.EntityType      `json:"view"`
	MeetingMode    bool                   `json:"meetingMode"`
	Loading        bool                   `json:"loading"`
	Modal          ModalState             `json:"modal"`
	AllowedActions []string               `json:"allowedActions"`
	Problems       []models.Problem       `json:"problems"`
	Programs       []ProgramView          `json:"programs"`
	Logs           []models.DisciplineLog `json:"logs"`
	Dashboard      DashboardResponse      `json:"dashboard"`
	LastError      string                 `json:"lastError,omitempty"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// ViewRequest switches the active view.
type ViewRequest struct {
	View models.EntityType `json:"view" binding:"required"`
}

// MeetingModeRequest sets meeting mode explicitly; omitted toggles it.
type MeetingModeRequest struct {
	Enabled *bool `json:"enabled"`
}

// ModalNewRequest opens the modal for a new record; Type defaults to the view.
type ModalNewRequest struct {
	Type models.EntityType `json:"type"`
}

// ModalEditRequest opens the modal for an existing record.
type ModalEditRequest struct {
	Type models.EntityType `json:"type" binding:"required"`
	ID   string            `json:"id" binding:"required"`
}

// ModalTypeRequest switches the modal entity type while creating.
type ModalTypeRequest struct {
	Type models.EntityType `json:"type" binding:"required"`
}

// DraftRequest carries unsaved form input.
type DraftRequest struct {
	Form map[string]string `json:"form"`
}

// EscalateRequest opens a problem prefilled from a student rollup.
type EscalateRequest struct {
	StudentName string `json:"studentName" binding:"required"`
}
