package dto

import "github.com/noah-isme/sma-evaluasi-api/internal/models"

// ExportRequest captures POST /dashboard/exports payload.
type ExportRequest struct {
	Dataset models.ExportDataset `json:"dataset" validate:"required,oneof=summary issues discipline programs"`
	Format  string               `json:"format" validate:"required,oneof=csv pdf xlsx"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string               `json:"id"`
	Dataset   models.ExportDataset `json:"dataset"`
	Format    string               `json:"format"`
	Status    models.ExportStatus  `json:"status"`
	Progress  int                  `json:"progress"`
	ResultURL *string              `json:"resultUrl,omitempty"`
	Error     *string              `json:"error,omitempty"`
}
