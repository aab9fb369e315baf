package workspace

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

// MutationKind is the kind of write a mutation performed.
type MutationKind string

const (
	MutationInsert MutationKind = "insert"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation describes a successful write so local snapshots can catch up.
type Mutation struct {
	Entity models.EntityType
	Kind   MutationKind
	ID     string
}

// reconcile patches deletes in place and refetches the entity's list for
// inserts and updates. A failed refetch leaves the previous list untouched.
// Callers hold c.mu.
func (c *Controller) reconcile(ctx context.Context, m Mutation) error {
	if m.Kind == MutationDelete {
		c.removeLocal(m.Entity, m.ID)
		c.recompute()
		return nil
	}

	var err error
	switch m.Entity {
	case models.EntityProblems:
		var problems []models.Problem
		if problems, err = c.stores.Problems.List(ctx); err == nil {
			c.problems = problems
		}
	case models.EntityPrograms:
		var programs []models.Program
		if programs, err = c.stores.Programs.List(ctx); err == nil {
			c.programs = programs
		}
	case models.EntityDiscipline:
		var logs []models.DisciplineLog
		if logs, err = c.stores.Logs.List(ctx); err == nil {
			c.logs = logs
		}
	}
	if err != nil {
		c.logger.Warn("refetch after mutation failed",
			zap.String("entity", string(m.Entity)),
			zap.String("kind", string(m.Kind)),
			zap.Error(err))
		return err
	}
	c.recompute()
	return nil
}

func (c *Controller) removeLocal(entity models.EntityType, id string) {
	switch entity {
	case models.EntityProblems:
		c.problems = without(c.problems, func(p models.Problem) bool { return p.ID == id })
	case models.EntityPrograms:
		c.programs = without(c.programs, func(p models.Program) bool { return p.ID == id })
	case models.EntityDiscipline:
		c.logs = without(c.logs, func(l models.DisciplineLog) bool { return l.ID == id })
	}
}

func without[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}
