package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/stats"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type disciplineLogRepository interface {
	List(ctx context.Context) ([]models.DisciplineLog, error)
	FindByID(ctx context.Context, id string) (*models.DisciplineLog, error)
	Insert(ctx context.Context, log models.DisciplineLog) (*models.DisciplineLog, error)
	Delete(ctx context.Context, id string) error
}

// DisciplineLogRequest records a conduct event. Points are derived from
// Type and Magnitude, never supplied directly.
type DisciplineLogRequest struct {
	StudentName  string         `json:"studentName" validate:"required"`
	StudentClass string         `json:"studentClass"`
	Type         models.LogType `json:"type" validate:"required,oneof=violation appreciation"`
	Magnitude    int            `json:"magnitude" validate:"oneof=1 2 5"`
	Note         string         `json:"note"`
	Officer      string         `json:"officer"`
	Date         string         `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Model converts the request into an unsaved log with signed points.
func (r DisciplineLogRequest) Model() (models.DisciplineLog, error) {
	points, err := models.SignedPoints(r.Type, r.Magnitude)
	if err != nil {
		return models.DisciplineLog{}, err
	}
	return models.DisciplineLog{
		StudentName:  r.StudentName,
		StudentClass: r.StudentClass,
		Type:         r.Type,
		Points:       points,
		Note:         r.Note,
		Officer:      r.Officer,
		Date:         r.Date,
	}, nil
}

// DisciplineService handles discipline log use-cases.
type DisciplineService struct {
	repo        disciplineLogRepository
	invalidator dashboardInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDisciplineService constructs the discipline service.
func NewDisciplineService(repo disciplineLogRepository, invalidator dashboardInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DisciplineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplineService{repo: repo, invalidator: invalidator, metrics: metrics, validator: validate, logger: logger}
}

// List returns logs newest first.
func (s *DisciplineService) List(ctx context.Context) ([]models.DisciplineLog, error) {
	start := time.Now()
	logs, err := s.repo.List(ctx)
	s.metrics.ObserveStoreOperation("discipline_logs", "list", time.Since(start), err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list discipline logs")
	}
	return logs, nil
}

// Create validates the request, derives points and stores the log.
func (s *DisciplineService) Create(ctx context.Context, req DisciplineLogRequest) (*models.DisciplineLog, error) {
	req.StudentName = strings.TrimSpace(req.StudentName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid discipline log payload")
	}
	log, err := req.Model()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid discipline log payload")
	}

	start := time.Now()
	created, err := s.repo.Insert(ctx, log)
	s.metrics.ObserveStoreOperation("discipline_logs", "insert", time.Since(start), err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create discipline log")
	}
	invalidateDashboard(ctx, s.invalidator, s.logger)
	return created, nil
}

// Delete removes a log. Deleting an unknown id succeeds.
func (s *DisciplineService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStoreOperation("discipline_logs", "delete", time.Since(start), err)
	if err != nil {
		return appErrors.Internal(err, "failed to delete discipline log")
	}
	invalidateDashboard(ctx, s.invalidator, s.logger)
	return nil
}

// History returns the rollup and every log of one student.
func (s *DisciplineService) History(ctx context.Context, name string) (*dto.StudentHistoryResponse, error) {
	logs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	rollup, ok := stats.Student(logs, name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no discipline logs")
	}
	return &dto.StudentHistoryResponse{Student: rollup, Logs: stats.StudentHistory(logs, name)}, nil
}
