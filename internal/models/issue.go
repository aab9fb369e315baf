package models

// IssueSource tells where a unified issue came from.
type IssueSource string

const (
	IssueSourceManual  IssueSource = "manual"
	IssueSourceProgram IssueSource = "program"
)

const (
	programIssuePrefix   = "Isu Program: "
	programIssueCategory = "Efektivitas Program"
)

// Issue is either a ManualIssue or a ProgramIssue. The set is closed.
type Issue interface {
	Fields() IssueFields
	issue()
}

// IssueFields is the common view of an issue used for aggregation.
type IssueFields struct {
	Title     string      `json:"title"`
	Category  string      `json:"category"`
	RootCause string      `json:"rootCause"`
	Solution  string      `json:"solution"`
	PJ        string      `json:"pj"`
	Deadline  string      `json:"deadline"`
	Status    string      `json:"status"`
	Priority  string      `json:"priority"`
	Source    IssueSource `json:"sourceType"`
}

// ManualIssue wraps a persisted problem.
type ManualIssue struct {
	Problem Problem
}

// ProgramIssue is derived from an unfinished program with a problem note.
// It has no identity of its own.
type ProgramIssue struct {
	Program Program
}

func (ManualIssue) issue()  {}
func (ProgramIssue) issue() {}

// Fields implements Issue.
func (m ManualIssue) Fields() IssueFields {
	p := m.Problem
	return IssueFields{
		Title:     p.Title,
		Category:  p.Category,
		RootCause: p.RootCause,
		Solution:  p.Solution,
		PJ:        p.PJ,
		Deadline:  p.Deadline,
		Status:    p.Status,
		Priority:  p.Priority,
		Source:    IssueSourceManual,
	}
}

// Fields implements Issue.
func (pi ProgramIssue) Fields() IssueFields {
	p := pi.Program
	status := ProblemStatusOpen
	if p.Deadline != "" {
		status = ProblemStatusProgress
	}
	return IssueFields{
		Title:     programIssuePrefix + p.Title,
		Category:  programIssueCategory,
		RootCause: p.ProblemNote,
		Solution:  p.SolutionNote,
		PJ:        p.PJ,
		Deadline:  p.Deadline,
		Status:    status,
		Priority:  PriorityHigh,
		Source:    IssueSourceProgram,
	}
}

// ProgramIssueOf returns the derived issue for a program, if it raises one.
func ProgramIssueOf(p Program) (ProgramIssue, bool) {
	if (p.ImplProgress < maxProgress || p.GoalProgress < maxProgress) && p.ProblemNote != "" {
		return ProgramIssue{Program: p}, true
	}
	return ProgramIssue{}, false
}
