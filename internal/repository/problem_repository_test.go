package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

func newRecordRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var problemRowColumns = []string{"id", "title", "category", "root_cause", "impact", "solution", "pj", "deadline", "status", "priority", "created_at"}

func TestProblemRepositoryList(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProblemRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(problemRowColumns).
		AddRow("p-2", "Baru", "Fasilitas", "Piket", "", "", "", "", "Open", "Tinggi", now).
		AddRow("p-1", "Lama", "", "", "", "", "", "2026-01-02", "Selesai", "", now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT id, title, .* FROM problems ORDER BY created_at DESC`).WillReturnRows(rows)

	problems, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, "p-2", problems[0].ID)
	assert.Equal(t, "Piket", problems[0].RootCause)
	assert.Equal(t, "2026-01-02", problems[1].Deadline)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProblemRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProblemRepository(db)

	mock.ExpectQuery(`FROM problems WHERE id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProblemRepositoryInsertAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProblemRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO problems")).
		WithArgs(sqlmock.AnyArg(), "Kelas kotor", "Fasilitas", "Piket", "", "", "Bu Sari", "", "Open", "Tinggi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.Insert(context.Background(), models.Problem{
		ID: "client-id", Title: "Kelas kotor", Category: "Fasilitas", RootCause: "Piket", PJ: "Bu Sari", Status: "Open", Priority: "Tinggi",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-id", created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProblemRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProblemRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE problems SET")).
		WithArgs("Judul", "", "", "", "", "", "2026-12-01", "Selesai", "", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), "p-1", models.Problem{Title: "Judul", Deadline: "2026-12-01", Status: "Selesai"}))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE problems SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), "missing", models.Problem{Title: "x"}), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProblemRepositoryDeleteMissingIsNotAnError(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()
	repo := NewProblemRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM problems WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "missing"))
	require.NoError(t, mock.ExpectationsWereMet())
}
