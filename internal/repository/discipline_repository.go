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

const disciplineColumns = `id, student_name, COALESCE(student_class, '') AS student_class, type, points,
COALESCE(note, '') AS note, COALESCE(officer, '') AS officer, COALESCE(date::text, '') AS date, created_at`

// DisciplineLogRepository stores discipline logs in PostgreSQL. Logs are
// append-only apart from deletion.
type DisciplineLogRepository struct {
	db *sqlx.DB
}

// NewDisciplineLogRepository constructs the repository.
func NewDisciplineLogRepository(db *sqlx.DB) *DisciplineLogRepository {
	return &DisciplineLogRepository{db: db}
}

// List returns every log ordered by event date, newest first.
func (r *DisciplineLogRepository) List(ctx context.Context) ([]models.DisciplineLog, error) {
	query := "SELECT " + disciplineColumns + " FROM discipline_logs ORDER BY date DESC, created_at DESC"
	var records []DisciplineLogRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list discipline logs: %w", err)
	}
	return disciplineLogsFromRecords(records), nil
}

// FindByID returns a single log.
func (r *DisciplineLogRepository) FindByID(ctx context.Context, id string) (*models.DisciplineLog, error) {
	query := "SELECT " + disciplineColumns + " FROM discipline_logs WHERE id = $1"
	var record DisciplineLogRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get discipline log: %w", err)
	}
	log := DisciplineLogFromRecord(record)
	return &log, nil
}

// Insert stores a new log. A blank date falls back to the database's current date.
func (r *DisciplineLogRepository) Insert(ctx context.Context, log models.DisciplineLog) (*models.DisciplineLog, error) {
	record := DisciplineLogToRecord(log)
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO discipline_logs (id, student_name, student_class, type, points, note, officer, date, created_at)
VALUES (:id, :student_name, :student_class, :type, :points, :note, :officer, COALESCE(CAST(NULLIF(:date, '') AS date), CURRENT_DATE), :created_at)
RETURNING CAST(date AS text)`
	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return nil, fmt.Errorf("insert discipline log: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	if rows.Next() {
		if err := rows.Scan(&record.Date); err != nil {
			return nil, fmt.Errorf("scan discipline log date: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("insert discipline log: %w", err)
	}
	created := DisciplineLogFromRecord(record)
	return &created, nil
}

// Delete removes a log. Deleting a missing id is not an error.
func (r *DisciplineLogRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM discipline_logs WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete discipline log: %w", err)
	}
	return nil
}
