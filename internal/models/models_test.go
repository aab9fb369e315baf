package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemCloneKeepsFieldsExceptIdentity(t *testing.T) {
	src := Problem{ID: "p-1", Title: "Kelas kotor", Category: "Fasilitas", RootCause: "Jadwal piket", Status: ProblemStatusOpen, Priority: PriorityHigh}
	clone := src.Clone()

	assert.Empty(t, clone.ID)
	assert.True(t, clone.CreatedAt.IsZero())
	assert.Equal(t, "Kelas kotor (Salinan)", clone.Title)
	clone.Title = src.Title
	clone.ID = src.ID
	assert.Equal(t, src, clone)
}

func TestProgramDisplayProgressClamps(t *testing.T) {
	p := Program{ImplProgress: 140, GoalProgress: -5}
	assert.Equal(t, 100, p.DisplayImplProgress())
	assert.Equal(t, 0, p.DisplayGoalProgress())
	assert.Equal(t, 140, p.ImplProgress)
	assert.False(t, p.Perfect())
	assert.True(t, Program{ImplProgress: 100, GoalProgress: 100}.Perfect())
}

func TestSignedPoints(t *testing.T) {
	pts, err := SignedPoints(LogTypeViolation, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, pts)

	pts, err = SignedPoints(LogTypeAppreciation, 2)
	require.NoError(t, err)
	assert.Equal(t, -2, pts)

	_, err = SignedPoints(LogTypeViolation, 3)
	assert.Error(t, err)
	_, err = SignedPoints("other", 1)
	assert.Error(t, err)
}

func TestProgramIssueOf(t *testing.T) {
	_, ok := ProgramIssueOf(Program{ImplProgress: 100, GoalProgress: 100, ProblemNote: "x"})
	assert.False(t, ok)
	_, ok = ProgramIssueOf(Program{ImplProgress: 50, GoalProgress: 100})
	assert.False(t, ok)

	issue, ok := ProgramIssueOf(Program{Title: "Literasi", ImplProgress: 60, GoalProgress: 100, ProblemNote: "butuh guru", SolutionNote: "rekrut"})
	require.True(t, ok)
	f := issue.Fields()
	assert.Equal(t, "Isu Program: Literasi", f.Title)
	assert.Equal(t, "Efektivitas Program", f.Category)
	assert.Equal(t, "butuh guru", f.RootCause)
	assert.Equal(t, "rekrut", f.Solution)
	assert.Equal(t, ProblemStatusOpen, f.Status)
	assert.Equal(t, PriorityHigh, f.Priority)
	assert.Equal(t, IssueSourceProgram, f.Source)

	issue.Program.Deadline = "2026-01-01"
	assert.Equal(t, ProblemStatusProgress, issue.Fields().Status)
}

func TestParseEntityType(t *testing.T) {
	for raw, want := range map[string]EntityType{
		"problems":        EntityProblems,
		"programs":        EntityPrograms,
		"discipline":      EntityDiscipline,
		"discipline-logs": EntityDiscipline,
	} {
		got, err := ParseEntityType(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEntityType("grades")
	assert.Error(t, err)
	assert.Equal(t, "discipline_logs", EntityDiscipline.Collection())
}

func TestExportJobParamsScan(t *testing.T) {
	var p ExportJobParams
	require.NoError(t, p.Scan([]byte(`{"format":"xlsx","today":"2026-10-15"}`)))
	assert.Equal(t, ExportJobParams{Format: "xlsx", Today: "2026-10-15"}, p)
	require.NoError(t, p.Scan(nil))
	assert.Equal(t, ExportJobParams{}, p)
	assert.Error(t, p.Scan(42))
}
