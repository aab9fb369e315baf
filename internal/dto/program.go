package dto

import "github.com/noah-isme/sma-evaluasi-api/internal/models"

// ProgramView is a program as served to clients. The display fields are
// clamped to [0,100]; the embedded values stay as stored.
type ProgramView struct {
	models.Program
	DisplayImplProgress int  `json:"displayImplProgress"`
	DisplayGoalProgress int  `json:"displayGoalProgress"`
	Perfect             bool `json:"perfect"`
}

// NewProgramView wraps p with its display values.
func NewProgramView(p models.Program) ProgramView {
	return ProgramView{
		Program:             p,
		DisplayImplProgress: p.DisplayImplProgress(),
		DisplayGoalProgress: p.DisplayGoalProgress(),
		Perfect:             p.Perfect(),
	}
}

// ProgramViews maps a program list, never returning nil.
func ProgramViews(programs []models.Program) []ProgramView {
	views := make([]ProgramView, 0, len(programs))
	for _, p := range programs {
		views = append(views, NewProgramView(p))
	}
	return views
}
