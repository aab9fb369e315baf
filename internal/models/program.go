package models

import "time"

const maxProgress = 100

// Program is a tracked initiative with implementation and goal progress.
type Program struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	ImplProgress int       `json:"implProgress"`
	GoalProgress int       `json:"goalProgress"`
	ProblemNote  string    `json:"problemNote"`
	SolutionNote string    `json:"solutionNote"`
	PJ           string    `json:"pj"`
	Deadline     string    `json:"deadline"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Perfect reports whether both progress metrics are complete.
func (p Program) Perfect() bool {
	return p.ImplProgress == maxProgress && p.GoalProgress == maxProgress
}

// DisplayImplProgress clamps implementation progress to [0,100].
func (p Program) DisplayImplProgress() int {
	return clampProgress(p.ImplProgress)
}

// DisplayGoalProgress clamps goal progress to [0,100].
func (p Program) DisplayGoalProgress() int {
	return clampProgress(p.GoalProgress)
}

// Draft reports whether the program has not been persisted yet.
func (p Program) Draft() bool {
	return p.ID == ""
}

// Clone returns an unsaved copy with the title suffixed.
func (p Program) Clone() Program {
	p.ID = ""
	p.CreatedAt = time.Time{}
	p.Title += CloneSuffix
	return p
}

func clampProgress(v int) int {
	switch {
	case v < 0:
		return 0
	case v > maxProgress:
		return maxProgress
	default:
		return v
	}
}
