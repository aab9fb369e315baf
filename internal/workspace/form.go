package workspace

import (
	"strconv"
	"strings"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/service"
)

// Form is raw modal input keyed by field name.
type Form map[string]string

func (f Form) get(key string) string {
	return f[key]
}

func (f Form) number(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(f[key]))
	if err != nil {
		return 0
	}
	return n
}

func (f Form) clone() Form {
	if f == nil {
		return nil
	}
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// overlay returns base with every non-empty value of top applied over it.
func overlay(base, top Form) Form {
	out := base.clone()
	if out == nil {
		out = Form{}
	}
	for k, v := range top {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func problemRequest(f Form) service.ProblemRequest {
	return service.ProblemRequest{
		Title:     f.get("title"),
		Category:  f.get("category"),
		RootCause: f.get("rootCause"),
		Impact:    f.get("impact"),
		Solution:  f.get("solution"),
		PJ:        f.get("pj"),
		Deadline:  f.get("deadline"),
		Status:    f.get("status"),
		Priority:  f.get("priority"),
	}
}

// Unparseable progress values are stored as 0.
func programRequest(f Form) service.ProgramRequest {
	return service.ProgramRequest{
		Title:        f.get("title"),
		ImplProgress: f.number("implProgress"),
		GoalProgress: f.number("goalProgress"),
		ProblemNote:  f.get("problemNote"),
		SolutionNote: f.get("solutionNote"),
		PJ:           f.get("pj"),
		Deadline:     f.get("deadline"),
	}
}

// Anything other than "violation" is recorded as an appreciation.
func disciplineRequest(f Form) service.DisciplineLogRequest {
	logType := models.LogTypeAppreciation
	if f.get("type") == string(models.LogTypeViolation) {
		logType = models.LogTypeViolation
	}
	magnitudeKey := "pointValue"
	if _, ok := f[magnitudeKey]; !ok {
		magnitudeKey = "magnitude"
	}
	return service.DisciplineLogRequest{
		StudentName:  f.get("studentName"),
		StudentClass: f.get("studentClass"),
		Type:         logType,
		Magnitude:    f.number(magnitudeKey),
		Note:         f.get("note"),
		Officer:      f.get("officer"),
		Date:         f.get("date"),
	}
}

func problemForm(p models.Problem) Form {
	return Form{
		"title":     p.Title,
		"category":  p.Category,
		"rootCause": p.RootCause,
		"impact":    p.Impact,
		"solution":  p.Solution,
		"pj":        p.PJ,
		"deadline":  p.Deadline,
		"status":    p.Status,
		"priority":  p.Priority,
	}
}

func programForm(p models.Program) Form {
	return Form{
		"title":        p.Title,
		"implProgress": strconv.Itoa(p.ImplProgress),
		"goalProgress": strconv.Itoa(p.GoalProgress),
		"problemNote":  p.ProblemNote,
		"solutionNote": p.SolutionNote,
		"pj":           p.PJ,
		"deadline":     p.Deadline,
	}
}
