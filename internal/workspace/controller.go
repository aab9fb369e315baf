// Package workspace holds the server-side state of dashboard sessions: the
// active view, the entry modal and the record snapshots it computes from.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/service"
	"github.com/noah-isme/sma-evaluasi-api/internal/stats"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

// DeletePrompt is shown to the Confirmer before a delete.
const DeletePrompt = "Hapus data ini?"

// Escalation placeholders for problems raised from a student rollup.
const (
	escalationCategory  = "Disiplin Bahasa"
	escalationRootCause = "Perlu analisis mendalam pada individu/kelompok"
)

// ProblemStore is the problem side of the record services.
type ProblemStore interface {
	List(ctx context.Context) ([]models.Problem, error)
	Create(ctx context.Context, req service.ProblemRequest) (*models.Problem, error)
	Update(ctx context.Context, id string, req service.ProblemRequest) (*models.Problem, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, problem models.Problem) (*models.Problem, error)
}

// ProgramStore is the program side of the record services.
type ProgramStore interface {
	List(ctx context.Context) ([]models.Program, error)
	Create(ctx context.Context, req service.ProgramRequest) (*models.Program, error)
	Update(ctx context.Context, id string, req service.ProgramRequest) (*models.Program, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, program models.Program) (*models.Program, error)
}

// DisciplineStore is the discipline log side of the record services.
type DisciplineStore interface {
	List(ctx context.Context) ([]models.DisciplineLog, error)
	Create(ctx context.Context, req service.DisciplineLogRequest) (*models.DisciplineLog, error)
	Delete(ctx context.Context, id string) error
}

// Stores bundles the three record stores a controller writes through.
type Stores struct {
	Problems ProblemStore
	Programs ProgramStore
	Logs     DisciplineStore
}

// Confirmer approves destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Options tune a controller.
type Options struct {
	// KeepModalOpenOnFailure keeps the modal and its draft when a submit fails.
	KeepModalOpenOnFailure bool
	Location               *time.Location
	Logger                 *zap.Logger
	Now                    func() time.Time
}

type modal struct {
	open      bool
	entity    models.EntityType
	editingID string
	editing   interface{}
	draft     Form
}

// Controller owns one dashboard session. All methods are safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	id     string
	stores Stores
	opts   Options
	logger *zap.Logger

	view      models.EntityType
	meeting   bool
	loading   bool
	modal     modal
	problems  []models.Problem
	programs  []models.Program
	logs      []models.DisciplineLog
	dashboard dto.DashboardResponse
	lastErr   string
	updatedAt time.Time
}

// NewController builds an empty controller on the problems view.
func NewController(id string, stores Stores, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		id:       id,
		stores:   stores,
		opts:     opts,
		logger:   opts.Logger.With(zap.String("workspace_id", id)),
		view:     models.EntityProblems,
		problems: []models.Problem{},
		programs: []models.Program{},
		logs:     []models.DisciplineLog{},
	}
	c.recompute()
	return c
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.id
}

// Load fetches the three collections concurrently. A failed fetch leaves
// that collection empty; the other two still load.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var (
		problems []models.Problem
		programs []models.Program
		logs     []models.DisciplineLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.stores.Problems.List(gctx)
		if err != nil {
			c.logger.Warn("load problems failed", zap.Error(err))
			items = nil
		}
		problems = items
		return nil
	})
	g.Go(func() error {
		items, err := c.stores.Programs.List(gctx)
		if err != nil {
			c.logger.Warn("load programs failed", zap.Error(err))
			items = nil
		}
		programs = items
		return nil
	})
	g.Go(func() error {
		items, err := c.stores.Logs.List(gctx)
		if err != nil {
			c.logger.Warn("load discipline logs failed", zap.Error(err))
			items = nil
		}
		logs = items
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.problems = orEmpty(problems)
	c.programs = orEmpty(programs)
	c.logs = orEmpty(logs)
	c.loading = false
	c.recompute()
}

// Create stores a new record from form input and reloads that collection.
func (c *Controller) Create(ctx context.Context, entity models.EntityType, form Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.create(ctx, entity, form)
}

// Update replaces a record from form input and reloads that collection.
func (c *Controller) Update(ctx context.Context, entity models.EntityType, id string, form Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update(ctx, entity, id, form)
}

// Delete removes a record once confirm approves. The local list is patched
// without a refetch.
func (c *Controller) Delete(ctx context.Context, entity models.EntityType, id string, confirm Confirmer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(dto.ActionDelete); err != nil {
		return err
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return appErrors.ErrNotConfirmed
	}

	var err error
	switch entity {
	case models.EntityProblems:
		err = c.stores.Problems.Delete(ctx, id)
	case models.EntityPrograms:
		err = c.stores.Programs.Delete(ctx, id)
	case models.EntityDiscipline:
		err = c.stores.Logs.Delete(ctx, id)
	default:
		return unknownEntity(entity)
	}
	if err != nil {
		return c.fail("delete", entity, err)
	}
	return c.reconcile(ctx, Mutation{Entity: entity, Kind: MutationDelete, ID: id})
}

// Clone stores a copy of a locally known problem or program.
func (c *Controller) Clone(ctx context.Context, entity models.EntityType, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(dto.ActionClone); err != nil {
		return err
	}

	var err error
	switch entity {
	case models.EntityProblems:
		source, ok := find(c.problems, func(p models.Problem) bool { return p.ID == id })
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "problem not found")
		}
		_, err = c.stores.Problems.Duplicate(ctx, source)
	case models.EntityPrograms:
		source, ok := find(c.programs, func(p models.Program) bool { return p.ID == id })
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		_, err = c.stores.Programs.Duplicate(ctx, source)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "only problems and programs can be cloned")
	}
	if err != nil {
		return c.fail("clone", entity, err)
	}
	return c.reconcile(ctx, Mutation{Entity: entity, Kind: MutationInsert})
}

// Escalate opens the problem modal prefilled from a student's rollup.
// Nothing is stored until Submit.
func (c *Controller) Escalate(studentName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(dto.ActionEscalate); err != nil {
		return err
	}
	student, ok := stats.Student(c.logs, studentName)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	prefill := models.Problem{
		Title:     "Pola Disiplin: " + student.Name,
		Category:  escalationCategory,
		RootCause: escalationRootCause,
		Impact:    fmt.Sprintf("Total Poin %d dengan %d pelanggaran.", student.TotalPoints, student.ViolationCount),
		Priority:  models.PriorityHigh,
		Status:    models.ProblemStatusOpen,
	}
	c.modal = modal{open: true, entity: models.EntityProblems, editing: prefill}
	c.touch()
	return nil
}

// OpenNew opens the modal for a new record of the current view's type.
// A draft left by Cancel is carried over.
func (c *Controller) OpenNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(dto.ActionCreate); err != nil {
		return err
	}
	c.modal = modal{open: true, entity: c.view, draft: c.modal.draft}
	c.touch()
	return nil
}

// OpenEdit opens the modal on an existing problem or program with a fresh draft.
func (c *Controller) OpenEdit(entity models.EntityType, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(dto.ActionEdit); err != nil {
		return err
	}

	var editing interface{}
	switch entity {
	case models.EntityProblems:
		p, ok := find(c.problems, func(p models.Problem) bool { return p.ID == id })
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "problem not found")
		}
		editing = p
	case models.EntityPrograms:
		p, ok := find(c.programs, func(p models.Program) bool { return p.ID == id })
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		editing = p
	default:
		return appErrors.Clone(appErrors.ErrValidation, "discipline logs cannot be edited")
	}
	c.modal = modal{open: true, entity: entity, editingID: id, editing: editing}
	c.touch()
	return nil
}

// SwitchType changes the modal's entity type. Only allowed for new records.
func (c *Controller) SwitchType(entity models.EntityType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modal.open {
		return appErrors.Clone(appErrors.ErrValidation, "modal is closed")
	}
	if c.modal.editing != nil {
		return appErrors.Clone(appErrors.ErrValidation, "type is fixed while editing")
	}
	parsed, err := models.ParseEntityType(string(entity))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entity type")
	}
	c.modal.entity = parsed
	c.touch()
	return nil
}

// SaveDraft keeps unsaved modal input so it survives type switches.
func (c *Controller) SaveDraft(form Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modal.open {
		return appErrors.Clone(appErrors.ErrValidation, "modal is closed")
	}
	c.modal.draft = form.clone()
	c.touch()
	return nil
}

// Submit saves the modal. An explicit form wins; otherwise the editing
// record's values overlaid with the draft are used. The draft is cleared
// and the modal closes even on failure unless KeepModalOpenOnFailure is set.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modal.open {
		return appErrors.Clone(appErrors.ErrValidation, "modal is closed")
	}

	current := c.modal
	if len(form) == 0 {
		form = overlay(editingForm(current.editing), current.draft)
	}
	c.modal.draft = nil

	var err error
	if current.editingID != "" {
		err = c.update(ctx, current.entity, current.editingID, form)
	} else {
		err = c.create(ctx, current.entity, form)
	}
	if err != nil && c.opts.KeepModalOpenOnFailure {
		current.draft = form.clone()
		c.modal = current
		return err
	}
	c.modal = modal{}
	return err
}

// Cancel closes the modal. The draft is kept for the next open.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = modal{draft: c.modal.draft}
	c.touch()
}

// ToggleMeetingMode flips meeting mode and returns the new value.
func (c *Controller) ToggleMeetingMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meeting = !c.meeting
	c.touch()
	return c.meeting
}

// SetMeetingMode sets meeting mode explicitly.
func (c *Controller) SetMeetingMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meeting = on
	c.touch()
}

// SetView switches the active view.
func (c *Controller) SetView(view models.EntityType) error {
	parsed, err := models.ParseEntityType(string(view))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid view")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = parsed
	c.touch()
	return nil
}

// AllowedActions lists the record actions the client may offer.
func (c *Controller) AllowedActions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allowedActions()
}

// State returns a snapshot of the session.
func (c *Controller) State() dto.WorkspaceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dto.WorkspaceState{
		ID:          c.id,
		View:        c.view,
		MeetingMode: c.meeting,
		Loading:     c.loading,
		Modal: dto.ModalState{
			Open:      c.modal.open,
			Type:      c.modal.entity,
			EditingID: c.modal.editingID,
			Editing:   c.modal.editing,
			Draft:     c.modal.draft.clone(),
		},
		AllowedActions: c.allowedActions(),
		Problems:       append([]models.Problem{}, c.problems...),
		Programs:       dto.ProgramViews(c.programs),
		Logs:           append([]models.DisciplineLog{}, c.logs...),
		Dashboard:      c.dashboard,
		LastError:      c.lastErr,
		UpdatedAt:      c.updatedAt,
	}
}

func (c *Controller) create(ctx context.Context, entity models.EntityType, form Form) error {
	var err error
	switch entity {
	case models.EntityProblems:
		_, err = c.stores.Problems.Create(ctx, problemRequest(form))
	case models.EntityPrograms:
		_, err = c.stores.Programs.Create(ctx, programRequest(form))
	case models.EntityDiscipline:
		_, err = c.stores.Logs.Create(ctx, disciplineRequest(form))
	default:
		return unknownEntity(entity)
	}
	if err != nil {
		return c.fail("create", entity, err)
	}
	return c.reconcile(ctx, Mutation{Entity: entity, Kind: MutationInsert})
}

func (c *Controller) update(ctx context.Context, entity models.EntityType, id string, form Form) error {
	var err error
	switch entity {
	case models.EntityProblems:
		_, err = c.stores.Problems.Update(ctx, id, problemRequest(form))
	case models.EntityPrograms:
		_, err = c.stores.Programs.Update(ctx, id, programRequest(form))
	case models.EntityDiscipline:
		return appErrors.Clone(appErrors.ErrValidation, "discipline logs cannot be edited")
	default:
		return unknownEntity(entity)
	}
	if err != nil {
		return c.fail("update", entity, err)
	}
	return c.reconcile(ctx, Mutation{Entity: entity, Kind: MutationUpdate, ID: id})
}

func (c *Controller) guard(action string) error {
	if c.meeting {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is disabled in meeting mode", action))
	}
	return nil
}

func (c *Controller) allowedActions() []string {
	if c.meeting {
		return []string{}
	}
	return []string{dto.ActionCreate, dto.ActionEdit, dto.ActionClone, dto.ActionDelete, dto.ActionEscalate}
}

func (c *Controller) fail(op string, entity models.EntityType, err error) error {
	c.logger.Warn("workspace mutation failed",
		zap.String("op", op),
		zap.String("entity", string(entity)),
		zap.Error(err))
	c.lastErr = err.Error()
	c.touch()
	return err
}

func (c *Controller) recompute() {
	c.dashboard = stats.Compute(stats.Snapshot{Problems: c.problems, Programs: c.programs, Logs: c.logs}, stats.Today(c.opts.Now(), c.opts.Location))
	c.dashboard.GeneratedAt = c.opts.Now().UTC()
	c.touch()
}

func (c *Controller) touch() {
	c.updatedAt = c.opts.Now().UTC()
}

func editingForm(editing interface{}) Form {
	switch v := editing.(type) {
	case models.Problem:
		return problemForm(v)
	case models.Program:
		return programForm(v)
	default:
		return nil
	}
}

func unknownEntity(entity models.EntityType) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown entity type %q", entity))
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
