package stats

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

const today = "2026-10-15"

func TestIssuesEmptyInputsHaveNoHealthScore(t *testing.T) {
	s := Issues(nil, nil, today)
	assert.Nil(t, s.HealthScore)
	assert.Empty(t, s.HealthBand)
	assert.Nil(t, s.DominantRoot)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 100.0, s.ProgramScore)
	assert.Equal(t, 100.0, s.ProblemScore)
}

func TestIssuesSingleDoneProblem(t *testing.T) {
	s := Issues([]models.Problem{{Status: models.ProblemStatusDone}}, nil, today)
	require.NotNil(t, s.HealthScore)
	assert.Equal(t, 100.0, s.ProblemScore)
	assert.Equal(t, 100.0, s.ProgramScore)
	assert.Equal(t, 0, s.Penalty)
	assert.Equal(t, 100, *s.HealthScore)
	assert.Equal(t, dto.HealthBandGood, s.HealthBand)
	assert.Equal(t, dto.ActionMatrix{Done: 1}, s.Matrix)
}

func TestIssuesProgramDerivedIssue(t *testing.T) {
	programs := []models.Program{{ID: "g-1", Title: "Literasi", ImplProgress: 60, GoalProgress: 100, ProblemNote: "butuh guru"}}

	issues := UnifiedIssues(nil, programs)
	require.Len(t, issues, 1)
	f := issues[0].Fields()
	assert.Equal(t, "Efektivitas Program", f.Category)
	assert.Equal(t, models.ProblemStatusOpen, f.Status)

	programs[0].Deadline = "2027-01-01"
	f = UnifiedIssues(nil, programs)[0].Fields()
	assert.Equal(t, models.ProblemStatusProgress, f.Status)

	s := Issues(nil, programs, today)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.Critical)
	assert.Equal(t, 5, s.Penalty)
	// (100 + 100) / 2 - 5
	assert.Equal(t, 95, *s.HealthScore)
}

func TestIssuesCriticalCountsOverdueAndHighPriority(t *testing.T) {
	problems := []models.Problem{
		{Title: "a", Priority: models.PriorityHigh, Status: models.ProblemStatusOpen},
		{Title: "b", Deadline: "2026-10-14", Status: models.ProblemStatusProgress},
		{Title: "c", Deadline: today, Status: models.ProblemStatusOpen, Solution: "ada", PJ: "Bu Sari"},
		{Title: "d", Priority: models.PriorityHigh, Status: models.ProblemStatusDone, Solution: "  ", PJ: " "},
	}
	s := Issues(problems, nil, today)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Active)
	assert.Equal(t, 2, s.Critical)
	assert.Equal(t, 3, s.NoSolution)
	assert.Equal(t, 3, s.NoPJ)
	assert.Equal(t, dto.ActionMatrix{Critical: 2, Planned: 1, Done: 1}, s.Matrix)
	// programScore 100, problemScore 25, penalty 10 -> 52.5 rounds up to 53
	assert.Equal(t, 53, *s.HealthScore)
	assert.Equal(t, dto.HealthBandWarning, s.HealthBand)
}

func TestIssuesPenaltyIsCapped(t *testing.T) {
	problems := make([]models.Problem, 10)
	for i := range problems {
		problems[i] = models.Problem{Priority: models.PriorityHigh}
	}
	s := Issues(problems, []models.Program{{GoalProgress: 10}}, today)
	assert.Equal(t, 20, s.Penalty)
	// (10 + 0) / 2 - 20 is negative
	assert.Equal(t, 0, *s.HealthScore)
	assert.Equal(t, dto.HealthBandCritical, s.HealthBand)
}

func TestRootCausesGroupCaseAndWhitespace(t *testing.T) {
	problems := []models.Problem{
		{RootCause: "Malas "},
		{RootCause: "Fasilitas"},
		{RootCause: "malas"},
		{RootCause: ""},
	}
	programs := []models.Program{{ImplProgress: 10, GoalProgress: 10, ProblemNote: "MALAS"}}

	s := Issues(problems, programs, today)
	require.Len(t, s.RootCauses, 2)
	assert.Equal(t, dto.FrequencyEntry{Label: "Malas ", Count: 3}, s.RootCauses[0])
	assert.Equal(t, dto.FrequencyEntry{Label: "Fasilitas", Count: 1}, s.RootCauses[1])
	require.NotNil(t, s.DominantRoot)
	assert.Equal(t, "Malas ", s.DominantRoot.Label)
}

func TestCategoriesStableOrderAndUncategorized(t *testing.T) {
	problems := []models.Problem{
		{Category: "Fasilitas "},
		{Category: ""},
		{Category: "Kurikulum"},
		{Category: "Fasilitas"},
		{Category: "Kurikulum"},
	}
	s := Issues(problems, nil, today)
	assert.Equal(t, []dto.FrequencyEntry{
		{Label: "Fasilitas", Count: 2},
		{Label: "Kurikulum", Count: 2},
		{Label: "Uncategorized", Count: 1},
	}, s.Categories)
}

func TestHealthScoreStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	statuses := []string{"", models.ProblemStatusOpen, models.ProblemStatusProgress, models.ProblemStatusDone}
	for n := 0; n < 500; n++ {
		problems := make([]models.Problem, rng.Intn(6))
		for i := range problems {
			problems[i] = models.Problem{Status: statuses[rng.Intn(len(statuses))], Priority: []string{"", models.PriorityHigh}[rng.Intn(2)]}
		}
		programs := make([]models.Program, rng.Intn(6))
		for i := range programs {
			programs[i] = models.Program{ImplProgress: rng.Intn(150) - 20, GoalProgress: rng.Intn(150) - 20, ProblemNote: "x"}
		}
		s := Issues(problems, programs, today)
		if len(problems) == 0 && len(programs) == 0 {
			assert.Nil(t, s.HealthScore)
			continue
		}
		require.NotNil(t, s.HealthScore)
		assert.GreaterOrEqual(t, *s.HealthScore, 0)
		assert.LessOrEqual(t, *s.HealthScore, 100)
	}
}

func TestDisciplineScenario(t *testing.T) {
	logs := []models.DisciplineLog{
		{StudentName: "Ali", Points: 5, Date: today},
		{StudentName: "Ali", Points: -2, Date: "2026-10-10"},
	}
	s := Discipline(logs, today)
	require.Len(t, s.Students, 1)
	ali := s.Students[0]
	assert.Equal(t, 3, ali.TotalPoints)
	assert.Equal(t, 1, ali.ViolationCount)
	assert.Equal(t, 1, ali.AppreciationCount)
	assert.Equal(t, "N/A", ali.Class)
	assert.Equal(t, today, ali.LastLog)
	assert.Equal(t, dto.RiskWarning, ali.RiskLevel)
	assert.Equal(t, 1, s.NegativeCount)
	assert.Equal(t, 1, s.PositiveCount)
	assert.Equal(t, 1, s.TodayCount)
	assert.Len(t, s.AttentionList, 1)
}

func TestDisciplineUsesPointSignNotType(t *testing.T) {
	logs := []models.DisciplineLog{{StudentName: "Budi", Type: models.LogTypeAppreciation, Points: 2}}
	s := Discipline(logs, today)
	assert.Equal(t, 1, s.Students[0].ViolationCount)
	assert.Equal(t, 1, s.NegativeCount)
}

func TestDisciplineSortingAndAttentionList(t *testing.T) {
	var logs []models.DisciplineLog
	for i, pts := range []int{2, 12, -5, 5, 1, 1, 5} {
		logs = append(logs, models.DisciplineLog{StudentName: fmt.Sprintf("S%d", i), StudentClass: "X", Points: pts})
	}
	s := Discipline(logs, today)

	names := make([]string, 0, len(s.Students))
	for _, st := range s.Students {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"S1", "S3", "S6", "S0", "S4", "S5", "S2"}, names)
	require.Len(t, s.AttentionList, 5)
	assert.Equal(t, "S4", s.AttentionList[4].Name)
	assert.Equal(t, dto.RiskHigh, s.Students[0].RiskLevel)
	assert.Equal(t, dto.RiskSafe, s.Students[6].RiskLevel)
}

func TestDisciplineTotalsMatchLogs(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	names := []string{"Ali", "Budi", "Citra", "Dewi"}
	for n := 0; n < 300; n++ {
		logs := make([]models.DisciplineLog, rng.Intn(20))
		sum, violations := 0, 0
		for i := range logs {
			mag := models.Magnitudes[rng.Intn(len(models.Magnitudes))]
			if rng.Intn(2) == 0 {
				mag = -mag
			} else {
				violations++
			}
			logs[i] = models.DisciplineLog{StudentName: names[rng.Intn(len(names))], Points: mag}
			sum += mag
		}
		s := Discipline(logs, today)

		rolled := 0
		for _, st := range s.Students {
			rolled += st.TotalPoints
		}
		assert.Equal(t, sum, rolled)
		assert.Equal(t, len(logs), s.NegativeCount+s.PositiveCount)
		assert.Equal(t, violations, s.NegativeCount)
	}
}

func TestStudentHistoryAndRollup(t *testing.T) {
	logs := []models.DisciplineLog{
		{ID: "3", StudentName: "Ali", StudentClass: "XI-2", Points: 2, Date: "2026-10-14"},
		{ID: "2", StudentName: "Budi", Points: 5},
		{ID: "1", StudentName: "Ali", StudentClass: "X-1", Points: 5, Date: "2026-09-01"},
	}
	history := StudentHistory(logs, "Ali")
	require.Len(t, history, 2)
	assert.Equal(t, "3", history[0].ID)

	rollup, ok := Student(logs, "Ali")
	require.True(t, ok)
	assert.Equal(t, 7, rollup.TotalPoints)
	assert.Equal(t, "XI-2", rollup.Class)
	assert.Equal(t, "2026-10-14", rollup.LastLog)

	_, ok = Student(logs, "Zaki")
	assert.False(t, ok)
	assert.Empty(t, StudentHistory(logs, "Zaki"))
}

func TestSuggestions(t *testing.T) {
	problems := []models.Problem{
		{Category: "Fasilitas", RootCause: "Piket", PJ: "Bu Sari"},
		{Category: "Fasilitas", RootCause: "", PJ: "Pak Budi"},
	}
	programs := []models.Program{{PJ: "Bu Sari"}, {PJ: "Pak Joko"}}
	logs := []models.DisciplineLog{{StudentName: "Ali"}, {StudentName: "Ali"}, {StudentName: "Citra"}}

	s := Suggestions(problems, programs, logs)
	assert.Equal(t, []string{"Fasilitas"}, s.Categories)
	assert.Equal(t, []string{"Piket"}, s.RootCauses)
	assert.Equal(t, []string{"Bu Sari", "Pak Budi", "Pak Joko"}, s.PJs)
	assert.Equal(t, []string{"Ali", "Citra"}, s.Students)
}

func TestComputeLinksIssuesToSources(t *testing.T) {
	snap := Snapshot{
		Problems: []models.Problem{{ID: "p-1", Title: "Kelas kotor"}},
		Programs: []models.Program{{ID: "g-1", Title: "Literasi", GoalProgress: 50, ProblemNote: "butuh guru"}},
		Logs:     []models.DisciplineLog{{StudentName: "Ali", Points: 1, Date: today}},
	}
	d := Compute(snap, today)
	assert.Equal(t, today, d.Today)
	assert.Equal(t, dto.RecordCounts{Problems: 1, Programs: 1, Logs: 1}, d.Counts)
	require.Len(t, d.Issues, 2)
	assert.Equal(t, "p-1", d.Issues[0].SourceID)
	assert.Equal(t, models.IssueSourceManual, d.Issues[0].Source)
	assert.Equal(t, "g-1", d.Issues[1].SourceID)
	assert.Equal(t, "Isu Program: Literasi", d.Issues[1].Title)
	assert.Equal(t, 1, d.Discipline.TodayCount)
	require.Len(t, d.Programs, 1)
	assert.Equal(t, 50, d.Programs[0].DisplayGoalProgress)
}

func TestComputeClampsProgramDisplayProgress(t *testing.T) {
	snap := Snapshot{Programs: []models.Program{{ID: "g-1", ImplProgress: 150, GoalProgress: -5}}}
	d := Compute(snap, today)
	require.Len(t, d.Programs, 1)
	assert.Equal(t, 100, d.Programs[0].DisplayImplProgress)
	assert.Equal(t, 0, d.Programs[0].DisplayGoalProgress)
	assert.Equal(t, 150, d.Programs[0].ImplProgress)
	assert.Equal(t, -5, d.Programs[0].GoalProgress)

	empty := Compute(Snapshot{}, today)
	assert.NotNil(t, empty.Programs)
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-15", Today(now, nil))
	assert.Equal(t, "2026-10-16", Today(now, time.FixedZone("WIB", 7*3600)))
}
