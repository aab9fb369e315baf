// Package stats derives the dashboard aggregates from record snapshots.
// Every function is pure; callers pass the current date explicitly.
package stats

import (
	"time"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

// Snapshot is one read of the three collections. Failed names the
// collections that could not be read and were left empty.
type Snapshot struct {
	Problems []models.Problem
	Programs []models.Program
	Logs     []models.DisciplineLog
	Failed   []models.EntityType
}

// Today formats now as an ISO date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(time.DateOnly)
}

// Compute builds the full dashboard for a snapshot.
func Compute(snap Snapshot, today string) dto.DashboardResponse {
	return dto.DashboardResponse{
		Today: today,
		Counts: dto.RecordCounts{
			Problems: len(snap.Problems),
			Programs: len(snap.Programs),
			Logs:     len(snap.Logs),
		},
		Issues:      IssueViews(UnifiedIssues(snap.Problems, snap.Programs)),
		IssueStats:  Issues(snap.Problems, snap.Programs, today),
		Programs:    dto.ProgramViews(snap.Programs),
		Discipline:  Discipline(snap.Logs, today),
		Suggestions: Suggestions(snap.Problems, snap.Programs, snap.Logs),
		Degraded:    snap.Failed,
	}
}
