package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

func TestProgramRepositoryListAndGet(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	columns := []string{"id", "title", "impl_progress", "goal_progress", "problem_note", "solution_note", "pj", "deadline", "created_at"}
	mock.ExpectQuery(`FROM programs ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("g-1", "Literasi", 60, 100, "butuh guru", "", "Pak Budi", "", time.Now()))

	programs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, 60, programs[0].ImplProgress)
	assert.Equal(t, "butuh guru", programs[0].ProblemNote)

	mock.ExpectQuery(`FROM programs WHERE id = \$1`).WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("g-1", "Literasi", 60, 100, "", "", "", "2026-03-01", time.Now()))
	program, err := repo.FindByID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", program.Deadline)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryInsertAndUpdate(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO programs")).
		WithArgs(sqlmock.AnyArg(), "Literasi", 10, 0, "", "", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	created, err := repo.Insert(context.Background(), models.Program{Title: "Literasi", ImplProgress: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE programs SET")).
		WithArgs("Literasi", 100, 100, "", "", "", "", created.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), created.ID, models.Program{Title: "Literasi", ImplProgress: 100, GoalProgress: 100}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryPropagatesDriverErrors(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM programs")).WillReturnError(errors.New("connection reset"))
	err := repo.Delete(context.Background(), "g-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete program")
	require.NoError(t, mock.ExpectationsWereMet())
}
