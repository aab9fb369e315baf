package stats

import (
	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

type distinct struct {
	seen   map[string]struct{}
	values []string
}

func newDistinct() *distinct {
	return &distinct{seen: map[string]struct{}{}, values: []string{}}
}

func (d *distinct) add(v string) {
	if v == "" {
		return
	}
	if _, ok := d.seen[v]; ok {
		return
	}
	d.seen[v] = struct{}{}
	d.values = append(d.values, v)
}

// Suggestions collects distinct non-empty values for form autocomplete in
// first-seen order.
func Suggestions(problems []models.Problem, programs []models.Program, logs []models.DisciplineLog) dto.Suggestions {
	categories, roots, pjs, students := newDistinct(), newDistinct(), newDistinct(), newDistinct()
	for _, p := range problems {
		categories.add(p.Category)
		roots.add(p.RootCause)
		pjs.add(p.PJ)
	}
	for _, p := range programs {
		pjs.add(p.PJ)
	}
	for _, l := range logs {
		students.add(l.StudentName)
	}
	return dto.Suggestions{
		Categories: categories.values,
		RootCauses: roots.values,
		PJs:        pjs.values,
		Students:   students.values,
	}
}
