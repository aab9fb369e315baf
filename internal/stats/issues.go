package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

const (
	uncategorized  = "Uncategorized"
	penaltyPerItem = 5
	maxPenalty     = 20
)

// UnifiedIssues concatenates manual problems and program-derived issues,
// preserving input order within each group.
func UnifiedIssues(problems []models.Problem, programs []models.Program) []models.Issue {
	issues := make([]models.Issue, 0, len(problems)+len(programs))
	for _, p := range problems {
		issues = append(issues, models.ManualIssue{Problem: p})
	}
	for _, p := range programs {
		if issue, ok := models.ProgramIssueOf(p); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

// IssueViews flattens issues for presentation, linking each to its source record.
func IssueViews(issues []models.Issue) []dto.IssueView {
	views := make([]dto.IssueView, 0, len(issues))
	for _, issue := range issues {
		view := dto.IssueView{IssueFields: issue.Fields()}
		switch v := issue.(type) {
		case models.ManualIssue:
			view.SourceID = v.Problem.ID
		case models.ProgramIssue:
			view.SourceID = v.Program.ID
		}
		views = append(views, view)
	}
	return views
}

// Issues computes issue aggregates and the health score. today is an ISO
// date used to detect overdue deadlines.
func Issues(problems []models.Problem, programs []models.Program, today string) dto.IssueStats {
	issues := UnifiedIssues(problems, programs)

	var out dto.IssueStats
	out.Total = len(issues)
	for _, issue := range issues {
		f := issue.Fields()
		if f.Status != models.ProblemStatusDone {
			out.Active++
			if f.Priority == models.PriorityHigh || (f.Deadline != "" && f.Deadline < today) {
				out.Critical++
			}
		}
		if strings.TrimSpace(f.Solution) == "" {
			out.NoSolution++
		}
		if strings.TrimSpace(f.PJ) == "" {
			out.NoPJ++
		}
	}

	out.ProgramScore = programScore(programs)
	out.ProblemScore = problemScore(problems)
	out.Penalty = min(out.Critical*penaltyPerItem, maxPenalty)
	if len(problems) > 0 || len(programs) > 0 {
		score := healthScore(out.ProgramScore, out.ProblemScore, out.Penalty)
		out.HealthScore = &score
		out.HealthBand = HealthBand(score)
	}

	out.RootCauses = rootCauses(issues)
	if len(out.RootCauses) > 0 {
		top := out.RootCauses[0]
		out.DominantRoot = &top
	}
	out.Categories = categories(issues)
	out.Matrix = dto.ActionMatrix{
		Critical: out.Critical,
		Planned:  out.Active - out.Critical,
		Done:     out.Total - out.Active,
	}
	return out
}

// HealthBand classifies a health score for display.
func HealthBand(score int) string {
	switch {
	case score >= 80:
		return dto.HealthBandGood
	case score >= 60:
		return dto.HealthBandFair
	case score >= 40:
		return dto.HealthBandWarning
	default:
		return dto.HealthBandCritical
	}
}

func programScore(programs []models.Program) float64 {
	if len(programs) == 0 {
		return 100
	}
	sum := 0
	for _, p := range programs {
		sum += p.GoalProgress
	}
	return float64(sum) / float64(len(programs))
}

func problemScore(problems []models.Problem) float64 {
	if len(problems) == 0 {
		return 100
	}
	done := 0
	for _, p := range problems {
		if p.Done() {
			done++
		}
	}
	return float64(done) / float64(len(problems)) * 100
}

// healthScore rounds half up and keeps the result within [0,100] even when
// stored goal progress is out of range.
func healthScore(programScore, problemScore float64, penalty int) int {
	score := int(roundHalfUp((programScore+problemScore)/2 - float64(penalty)))
	return max(0, min(score, 100))
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// frequency counts keys in first-seen order and labels each with the first
// raw value that produced it.
type frequency struct {
	order  []string
	labels map[string]string
	counts map[string]int
}

func newFrequency() *frequency {
	return &frequency{labels: map[string]string{}, counts: map[string]int{}}
}

func (f *frequency) add(key, label string) {
	if _, seen := f.counts[key]; !seen {
		f.order = append(f.order, key)
		f.labels[key] = label
	}
	f.counts[key]++
}

// sorted returns entries by descending count; ties keep first-seen order.
func (f *frequency) sorted() []dto.FrequencyEntry {
	entries := make([]dto.FrequencyEntry, 0, len(f.order))
	for _, key := range f.order {
		entries = append(entries, dto.FrequencyEntry{Label: f.labels[key], Count: f.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries
}

func rootCauses(issues []models.Issue) []dto.FrequencyEntry {
	freq := newFrequency()
	for _, issue := range issues {
		raw := issue.Fields().RootCause
		if raw == "" {
			continue
		}
		freq.add(strings.ToLower(strings.TrimSpace(raw)), raw)
	}
	return freq.sorted()
}

func categories(issues []models.Issue) []dto.FrequencyEntry {
	freq := newFrequency()
	for _, issue := range issues {
		key := uncategorized
		if raw := issue.Fields().Category; raw != "" {
			key = strings.TrimSpace(raw)
		}
		freq.add(key, key)
	}
	return freq.sorted()
}
