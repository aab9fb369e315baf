package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/repository"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type problemRepository interface {
	List(ctx context.Context) ([]models.Problem, error)
	FindByID(ctx context.Context, id string) (*models.Problem, error)
	Insert(ctx context.Context, problem models.Problem) (*models.Problem, error)
	Update(ctx context.Context, id string, problem models.Problem) error
	Delete(ctx context.Context, id string) error
}

// dashboardInvalidator drops cached dashboards after a write.
type dashboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ProblemRequest is the editable part of a problem.
type ProblemRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	RootCause string `json:"rootCause"`
	Impact    string `json:"impact"`
	Solution  string `json:"solution"`
	PJ        string `json:"pj"`
	Deadline  string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Status    string `json:"status" validate:"omitempty,oneof=Open Progress Selesai"`
	Priority  string `json:"priority"`
}

// Model converts the request into an unsaved problem.
func (r ProblemRequest) Model() models.Problem {
	return models.Problem{
		Title:     r.Title,
		Category:  r.Category,
		RootCause: r.RootCause,
		Impact:    r.Impact,
		Solution:  r.Solution,
		PJ:        r.PJ,
		Deadline:  r.Deadline,
		Status:    r.Status,
		Priority:  r.Priority,
	}
}

// ProblemService handles problem use-cases.
type ProblemService struct {
	repo        problemRepository
	invalidator dashboardInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProblemService constructs the problem service. invalidator may be nil.
func NewProblemService(repo problemRepository, invalidator dashboardInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ProblemService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProblemService{repo: repo, invalidator: invalidator, metrics: metrics, validator: validate, logger: logger}
}

// List returns problems newest first.
func (s *ProblemService) List(ctx context.Context) ([]models.Problem, error) {
	start := time.Now()
	problems, err := s.repo.List(ctx)
	s.metrics.ObserveStoreOperation("problems", "list", time.Since(start), err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list problems")
	}
	return problems, nil
}

// Get returns a single problem.
func (s *ProblemService) Get(ctx context.Context, id string) (*models.Problem, error) {
	start := time.Now()
	problem, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveStoreOperation("problems", "get", time.Since(start), err)
	if err != nil {
		return nil, translateStoreError(err, "problem not found", "failed to load problem")
	}
	return problem, nil
}

// Create validates and stores a new problem.
func (s *ProblemService) Create(ctx context.Context, req ProblemRequest) (*models.Problem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid problem payload")
	}
	return s.insert(ctx, req.Model())
}

// Update replaces the editable fields of a problem and returns the stored row.
func (s *ProblemService) Update(ctx context.Context, id string, req ProblemRequest) (*models.Problem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid problem payload")
	}
	start := time.Now()
	err := s.repo.Update(ctx, id, req.Model())
	s.metrics.ObserveStoreOperation("problems", "update", time.Since(start), err)
	if err != nil {
		return nil, translateStoreError(err, "problem not found", "failed to update problem")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes a problem. Deleting an unknown id succeeds.
func (s *ProblemService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStoreOperation("problems", "delete", time.Since(start), err)
	if err != nil {
		return appErrors.Internal(err, "failed to delete problem")
	}
	s.invalidate(ctx)
	return nil
}

// Clone stores a copy of an existing problem with a suffixed title.
func (s *ProblemService) Clone(ctx context.Context, id string) (*models.Problem, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Duplicate(ctx, *source)
}

// Duplicate stores a copy of the given problem with a suffixed title.
func (s *ProblemService) Duplicate(ctx context.Context, problem models.Problem) (*models.Problem, error) {
	return s.insert(ctx, problem.Clone())
}

func (s *ProblemService) insert(ctx context.Context, problem models.Problem) (*models.Problem, error) {
	start := time.Now()
	created, err := s.repo.Insert(ctx, problem)
	s.metrics.ObserveStoreOperation("problems", "insert", time.Since(start), err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create problem")
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *ProblemService) invalidate(ctx context.Context) {
	invalidateDashboard(ctx, s.invalidator, s.logger)
}

func invalidateDashboard(ctx context.Context, invalidator dashboardInvalidator, logger *zap.Logger) {
	if invalidator == nil {
		return
	}
	if err := invalidator.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func translateStoreError(err error, notFound, internal string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}
