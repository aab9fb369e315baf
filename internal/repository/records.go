package repository

import (
	"time"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

// ProblemRecord is the stored shape of a problem.
type ProblemRecord struct {
	ID        string    `db:"id" bson:"_id" json:"id"`
	Title     string    `db:"title" bson:"title" json:"title"`
	Category  string    `db:"category" bson:"category" json:"category"`
	RootCause string    `db:"root_cause" bson:"root_cause" json:"root_cause"`
	Impact    string    `db:"impact" bson:"impact" json:"impact"`
	Solution  string    `db:"solution" bson:"solution" json:"solution"`
	PJ        string    `db:"pj" bson:"pj" json:"pj"`
	Deadline  string    `db:"deadline" bson:"deadline" json:"deadline"`
	Status    string    `db:"status" bson:"status" json:"status"`
	Priority  string    `db:"priority" bson:"priority" json:"priority"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// ProgramRecord is the stored shape of a program.
type ProgramRecord struct {
	ID           string    `db:"id" bson:"_id" json:"id"`
	Title        string    `db:"title" bson:"title" json:"title"`
	ImplProgress int       `db:"impl_progress" bson:"impl_progress" json:"impl_progress"`
	GoalProgress int       `db:"goal_progress" bson:"goal_progress" json:"goal_progress"`
	ProblemNote  string    `db:"problem_note" bson:"problem_note" json:"problem_note"`
	SolutionNote string    `db:"solution_note" bson:"solution_note" json:"solution_note"`
	PJ           string    `db:"pj" bson:"pj" json:"pj"`
	Deadline     string    `db:"deadline" bson:"deadline" json:"deadline"`
	CreatedAt    time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// DisciplineLogRecord is the stored shape of a discipline log.
type DisciplineLogRecord struct {
	ID           string    `db:"id" bson:"_id" json:"id"`
	StudentName  string    `db:"student_name" bson:"student_name" json:"student_name"`
	StudentClass string    `db:"student_class" bson:"student_class" json:"student_class"`
	Type         string    `db:"type" bson:"type" json:"type"`
	Points       int       `db:"points" bson:"points" json:"points"`
	Note         string    `db:"note" bson:"note" json:"note"`
	Officer      string    `db:"officer" bson:"officer" json:"officer"`
	Date         string    `db:"date" bson:"date" json:"date"`
	CreatedAt    time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// ProblemFromRecord maps a stored problem to the domain model.
func ProblemFromRecord(r ProblemRecord) models.Problem {
	return models.Problem{
		ID:        r.ID,
		Title:     r.Title,
		Category:  r.Category,
		RootCause: r.RootCause,
		Impact:    r.Impact,
		Solution:  r.Solution,
		PJ:        r.PJ,
		Deadline:  r.Deadline,
		Status:    r.Status,
		Priority:  r.Priority,
		CreatedAt: r.CreatedAt,
	}
}

// ProblemToRecord maps a problem to its writable stored fields.
// ID and CreatedAt are owned by the store and never copied.
func ProblemToRecord(p models.Problem) ProblemRecord {
	return ProblemRecord{
		Title:     p.Title,
		Category:  p.Category,
		RootCause: p.RootCause,
		Impact:    p.Impact,
		Solution:  p.Solution,
		PJ:        p.PJ,
		Deadline:  p.Deadline,
		Status:    p.Status,
		Priority:  p.Priority,
	}
}

// ProgramFromRecord maps a stored program to the domain model.
func ProgramFromRecord(r ProgramRecord) models.Program {
	return models.Program{
		ID:           r.ID,
		Title:        r.Title,
		ImplProgress: r.ImplProgress,
		GoalProgress: r.GoalProgress,
		ProblemNote:  r.ProblemNote,
		SolutionNote: r.SolutionNote,
		PJ:           r.PJ,
		Deadline:     r.Deadline,
		CreatedAt:    r.CreatedAt,
	}
}

// ProgramToRecord maps a program to its writable stored fields.
func ProgramToRecord(p models.Program) ProgramRecord {
	return ProgramRecord{
		Title:        p.Title,
		ImplProgress: p.ImplProgress,
		GoalProgress: p.GoalProgress,
		ProblemNote:  p.ProblemNote,
		SolutionNote: p.SolutionNote,
		PJ:           p.PJ,
		Deadline:     p.Deadline,
	}
}

// DisciplineLogFromRecord maps a stored log to the domain model.
func DisciplineLogFromRecord(r DisciplineLogRecord) models.DisciplineLog {
	return models.DisciplineLog{
		ID:           r.ID,
		StudentName:  r.StudentName,
		StudentClass: r.StudentClass,
		Type:         models.LogType(r.Type),
		Points:       r.Points,
		Note:         r.Note,
		Officer:      r.Officer,
		Date:         r.Date,
		CreatedAt:    r.CreatedAt,
	}
}

// DisciplineLogToRecord maps a log to its writable stored fields.
func DisciplineLogToRecord(l models.DisciplineLog) DisciplineLogRecord {
	return DisciplineLogRecord{
		StudentName:  l.StudentName,
		StudentClass: l.StudentClass,
		Type:         string(l.Type),
		Points:       l.Points,
		Note:         l.Note,
		Officer:      l.Officer,
		Date:         l.Date,
	}
}

func problemsFromRecords(records []ProblemRecord) []models.Problem {
	out := make([]models.Problem, 0, len(records))
	for _, r := range records {
		out = append(out, ProblemFromRecord(r))
	}
	return out
}

func programsFromRecords(records []ProgramRecord) []models.Program {
	out := make([]models.Program, 0, len(records))
	for _, r := range records {
		out = append(out, ProgramFromRecord(r))
	}
	return out
}

func disciplineLogsFromRecords(records []DisciplineLogRecord) []models.DisciplineLog {
	out := make([]models.DisciplineLog, 0, len(records))
	for _, r := range records {
		out = append(out, DisciplineLogFromRecord(r))
	}
	return out
}
