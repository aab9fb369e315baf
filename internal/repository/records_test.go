package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

func TestProblemRecordRoundTrip(t *testing.T) {
	rec := ProblemRecord{
		ID: "p-1", Title: "Kelas kotor", Category: "Fasilitas", RootCause: "Piket", Impact: "Belajar terganggu",
		Solution: "Jadwal baru", PJ: "Bu Sari", Deadline: "2026-11-01", Status: "Open", Priority: "Tinggi",
		CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	p := ProblemFromRecord(rec)
	assert.Equal(t, "Piket", p.RootCause)
	assert.Equal(t, rec.CreatedAt, p.CreatedAt)

	back := ProblemToRecord(p)
	assert.Empty(t, back.ID)
	assert.True(t, back.CreatedAt.IsZero())
	back.ID, back.CreatedAt = rec.ID, rec.CreatedAt
	assert.Equal(t, rec, back)
}

func TestProgramRecordRoundTrip(t *testing.T) {
	rec := ProgramRecord{ID: "g-1", Title: "Literasi", ImplProgress: 60, GoalProgress: 130, ProblemNote: "butuh guru", SolutionNote: "rekrut", PJ: "Pak Budi", Deadline: ""}
	back := ProgramToRecord(ProgramFromRecord(rec))
	back.ID = rec.ID
	assert.Equal(t, rec, back)
}

func TestDisciplineLogRecordRoundTrip(t *testing.T) {
	rec := DisciplineLogRecord{ID: "l-1", StudentName: "Ali", StudentClass: "X-1", Type: "violation", Points: 5, Note: "terlambat", Officer: "OSIS", Date: "2026-10-15"}
	l := DisciplineLogFromRecord(rec)
	assert.Equal(t, models.LogTypeViolation, l.Type)
	back := DisciplineLogToRecord(l)
	back.ID = rec.ID
	assert.Equal(t, rec, back)
}

func TestRecordsUseSnakeCaseWireNames(t *testing.T) {
	raw, err := json.Marshal(ProgramRecord{ImplProgress: 1})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"impl_progress":1`)
	assert.Contains(t, string(raw), `"problem_note"`)

	raw, err = json.Marshal(DisciplineLogRecord{StudentName: "Ali"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"student_name":"Ali"`)
}
