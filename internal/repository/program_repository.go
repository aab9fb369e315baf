package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

const programColumns = `id, title, COALESCE(impl_progress, 0) AS impl_progress, COALESCE(goal_progress, 0) AS goal_progress,
COALESCE(problem_note, '') AS problem_note, COALESCE(solution_note, '') AS solution_note, COALESCE(pj, '') AS pj,
COALESCE(deadline::text, '') AS deadline, created_at`

// ProgramRepository stores programs in PostgreSQL.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns every program, newest first.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	query := "SELECT " + programColumns + " FROM programs ORDER BY created_at DESC"
	var records []ProgramRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programsFromRecords(records), nil
}

// FindByID returns a single program.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	query := "SELECT " + programColumns + " FROM programs WHERE id = $1"
	var record ProgramRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get program: %w", err)
	}
	program := ProgramFromRecord(record)
	return &program, nil
}

// Insert stores a new program and returns it with its generated identity.
func (r *ProgramRepository) Insert(ctx context.Context, program models.Program) (*models.Program, error) {
	record := ProgramToRecord(program)
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO programs (id, title, impl_progress, goal_progress, problem_note, solution_note, pj, deadline, created_at)
VALUES (:id, :title, :impl_progress, :goal_progress, :problem_note, :solution_note, :pj, CAST(NULLIF(:deadline, '') AS date), :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return nil, fmt.Errorf("insert program: %w", err)
	}
	created := ProgramFromRecord(record)
	return &created, nil
}

// Update overwrites the writable fields of a program.
func (r *ProgramRepository) Update(ctx context.Context, id string, program models.Program) error {
	record := ProgramToRecord(program)
	record.ID = id

	const query = `UPDATE programs SET title = :title, impl_progress = :impl_progress, goal_progress = :goal_progress,
problem_note = :problem_note, solution_note = :solution_note, pj = :pj, deadline = CAST(NULLIF(:deadline, '') AS date)
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return requireAffected(res, "update program")
}

// Delete removes a program. Deleting a missing id is not an error.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM programs WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return nil
}
