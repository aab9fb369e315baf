package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Insert(ctx context.Context, program models.Program) (*models.Program, error)
	Update(ctx context.Context, id string, program models.Program) error
	Delete(ctx context.Context, id string) error
}

// ProgramRequest is the editable part of a program. Progress values outside
// 0..100 are stored as given.
type ProgramRequest struct {
	Title        string `json:"title"`
	ImplProgress int    `json:"implProgress"`
	GoalProgress int    `json:"goalProgress"`
	ProblemNote  string `json:"problemNote"`
	SolutionNote string `json:"solutionNote"`
	PJ           string `json:"pj"`
	Deadline     string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// Model converts the request into an unsaved program.
func (r ProgramRequest) Model() models.Program {
	return models.Program{
		Title:        r.Title,
		ImplProgress: r.ImplProgress,
		GoalProgress: r.GoalProgress,
		ProblemNote:  r.ProblemNote,
		SolutionNote: r.SolutionNote,
		PJ:           r.PJ,
		Deadline:     r.Deadline,
	}
}

// ProgramService handles program use-cases.
type ProgramService struct {
	repo        programRepository
	invalidator dashboardInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgramService constructs the program service.
func NewProgramService(repo programRepository, invalidator dashboardInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, invalidator: invalidator, metrics: metrics, validator: validate, logger: logger}
}

// List returns programs newest first.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	start := time.Now()
	programs, err := s.repo.List(ctx)
	s.metrics.ObserveStoreOperation("programs", "list", time.Since(start), err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list programs")
	}
	return programs, nil
}

// Get returns a single program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	start := time.Now()
	program, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveStoreOperation("programs", "get", time.Since(start), err)
	if err != nil {
		return nil, translateStoreError(err, "program not found", "failed to load program")
	}
	return program, nil
}

// Create validates and stores a new program.
func (s *ProgramService) Create(ctx context.Context, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	return s.insert(ctx, req.Model())
}

// Update replaces the editable fields of a program and returns the stored row.
func (s *ProgramService) Update(ctx context.Context, id string, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	start := time.Now()
	err := s.repo.Update(ctx, id, req.Model())
	s.metrics.ObserveStoreOperation("programs", "update", time.Since(start), err)
	if err != nil {
		return nil, translateStoreError(err, "program not found", "failed to update program")
	}
	invalidateDashboard(ctx, s.invalidator, s.logger)
	return s.Get(ctx, id)
}

// Delete removes a program. Deleting an unknown id succeeds.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStoreOperation("programs", "delete", time.Since(start), err)
	if err != nil {
		return appErrors.Internal(err, "failed to delete program")
	}
	invalidateDashboard(ctx, s.invalidator, s.logger)
	return nil
}

// Clone stores a copy of an existing program with a suffixed title.
func (s *ProgramService) Clone(ctx context.Context, id string) (*models.Program, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Duplicate(ctx, *source)
}

// Duplicate stores a copy of the given program with a suffixed title.
func (s *ProgramService) Duplicate(ctx context.Context, program models.Program) (*models.Program, error) {
	return s.insert(ctx, program.Clone())
}

func (s *ProgramService) insert(ctx context.Context, program models.Program) (*models.Program, error) {
	start := time.Now()
	created, err := s.repo.Insert(ctx, program)
	s.metrics.ObserveStoreOperation("programs", "insert", time.Since(start), err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create program")
	}
	invalidateDashboard(ctx, s.invalidator, s.logger)
	return created, nil
}
