package dto

import (
	"time"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

// Health bands used to colour the health score.
const (
	HealthBandGood     = "good"
	HealthBandFair     = "fair"
	HealthBandWarning  = "warning"
	HealthBandCritical = "critical"
)

// Student risk levels shown on the discipline leaderboard.
const (
	RiskHigh    = "high"
	RiskWarning = "warning"
	RiskSafe    = "safe"
)

// IssueView is one row of the unified issue list.
type IssueView struct {
	models.IssueFields
	SourceID string `json:"sourceId,omitempty"`
}

// FrequencyEntry is a labelled count in a frequency table.
type FrequencyEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ActionMatrix splits issues into what needs action now, what is planned and what is done.
type ActionMatrix struct {
	Critical int `json:"critical"`
	Planned  int `json:"planned"`
	Done     int `json:"done"`
}

// IssueStats aggregates the unified issue list.
type IssueStats struct {
	Total        int              `json:"total"`
	Active       int              `json:"active"`
	Critical     int              `json:"critical"`
	NoSolution   int              `json:"noSolution"`
	NoPJ         int              `json:"noPJ"`
	ProgramScore float64          `json:"programScore"`
	ProblemScore float64          `json:"problemScore"`
	Penalty      int              `json:"penalty"`
	HealthScore  *int             `json:"healthScore"`
	HealthBand   string           `json:"healthBand,omitempty"`
	RootCauses   []FrequencyEntry `json:"rootCauses"`
	DominantRoot *FrequencyEntry  `json:"dominantRoot"`
	Categories   []FrequencyEntry `json:"categories"`
	Matrix       ActionMatrix     `json:"matrix"`
}

// StudentRollup aggregates all logs of one student.
type StudentRollup struct {
	Name              string `json:"name"`
	Class             string `json:"class"`
	TotalPoints       int    `json:"totalPoints"`
	ViolationCount    int    `json:"violationCount"`
	AppreciationCount int    `json:"appreciationCount"`
	LastLog           string `json:"lastLog"`
	RiskLevel         string `json:"riskLevel"`
}

// DisciplineStats summarises discipline logs. NegativeCount counts logs with
// positive points and PositiveCount logs with negative points.
type DisciplineStats struct {
	Students      []StudentRollup `json:"students"`
	AttentionList []StudentRollup `json:"attentionList"`
	NegativeCount int             `json:"negativeCount"`
	PositiveCount int             `json:"positiveCount"`
	TodayCount    int             `json:"todayCount"`
	TotalLogs     int             `json:"totalLogs"`
}

// Suggestions feeds the autocomplete lists of the entry forms.
type Suggestions struct {
	Categories []string `json:"categories"`
	RootCauses []string `json:"rootCauses"`
	PJs        []string `json:"pjs"`
	Students   []string `json:"students"`
}

// RecordCounts reports the size of each input collection.
type RecordCounts struct {
	Problems int `json:"problems"`
	Programs int `json:"programs"`
	Logs     int `json:"logs"`
}

// DashboardResponse is the complete computed dashboard.
type DashboardResponse struct {
	Today       string          `json:"today"`
	Counts      RecordCounts    `json:"counts"`
	Issues      []IssueView     `json:"issues"`
	IssueStats  IssueStats      `json:"issueStats"`
	Programs    []ProgramView   `json:"programs"`
	Discipline  DisciplineStats `json:"discipline"`
	Suggestions Suggestions     `json:"suggestions"`
	GeneratedAt time.Time       `json:"generatedAt"`

	// Degraded lists collections that failed to load and count as empty.
	Degraded []models.EntityType `json:"degraded,omitempty"`
}

// StudentHistoryResponse lists the logs of one student with their rollup.
type StudentHistoryResponse struct {
	Student StudentRollup          `json:"student"`
	Logs    []models.DisciplineLog `json:"logs"`
}
