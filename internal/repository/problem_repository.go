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

const problemColumns = `id, title, COALESCE(category, '') AS category, COALESCE(root_cause, '') AS root_cause,
COALESCE(impact, '') AS impact, COALESCE(solution, '') AS solution, COALESCE(pj, '') AS pj,
COALESCE(deadline::text, '') AS deadline, COALESCE(status, '') AS status, COALESCE(priority, '') AS priority, created_at`

// ProblemRepository stores problems in PostgreSQL.
type ProblemRepository struct {
	db *sqlx.DB
}

// NewProblemRepository constructs the repository.
func NewProblemRepository(db *sqlx.DB) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// List returns every problem, newest first.
func (r *ProblemRepository) List(ctx context.Context) ([]models.Problem, error) {
	query := "SELECT " + problemColumns + " FROM problems ORDER BY created_at DESC"
	var records []ProblemRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	return problemsFromRecords(records), nil
}

// FindByID returns a single problem.
func (r *ProblemRepository) FindByID(ctx context.Context, id string) (*models.Problem, error) {
	query := "SELECT " + problemColumns + " FROM problems WHERE id = $1"
	var record ProblemRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get problem: %w", err)
	}
	problem := ProblemFromRecord(record)
	return &problem, nil
}

// Insert stores a new problem and returns it with its generated identity.
func (r *ProblemRepository) Insert(ctx context.Context, problem models.Problem) (*models.Problem, error) {
	record := ProblemToRecord(problem)
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO problems (id, title, category, root_cause, impact, solution, pj, deadline, status, priority, created_at)
VALUES (:id, :title, :category, :root_cause, :impact, :solution, :pj, CAST(NULLIF(:deadline, '') AS date), :status, :priority, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return nil, fmt.Errorf("insert problem: %w", err)
	}
	created := ProblemFromRecord(record)
	return &created, nil
}

// Update overwrites the writable fields of a problem.
func (r *ProblemRepository) Update(ctx context.Context, id string, problem models.Problem) error {
	record := ProblemToRecord(problem)
	record.ID = id

	const query = `UPDATE problems SET title = :title, category = :category, root_cause = :root_cause, impact = :impact,
solution = :solution, pj = :pj, deadline = CAST(NULLIF(:deadline, '') AS date), status = :status, priority = :priority
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update problem: %w", err)
	}
	return requireAffected(res, "update problem")
}

// Delete removes a problem. Deleting a missing id is not an error.
func (r *ProblemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM problems WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
