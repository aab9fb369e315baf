package models

import "fmt"

// EntityType names one of the three record collections. It doubles as the
// dashboard view and the entry modal type.
type EntityType string

const (
	EntityProblems   EntityType = "problems"
	EntityPrograms   EntityType = "programs"
	EntityDiscipline EntityType = "discipline"
)

// ParseEntityType accepts the collection name or its URL alias.
func ParseEntityType(raw string) (EntityType, error) {
	switch raw {
	case string(EntityProblems):
		return EntityProblems, nil
	case string(EntityPrograms):
		return EntityPrograms, nil
	case string(EntityDiscipline), "discipline-logs", "discipline_logs":
		return EntityDiscipline, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", raw)
	}
}

// Collection returns the storage collection backing the entity.
func (e EntityType) Collection() string {
	if e == EntityDiscipline {
		return "discipline_logs"
	}
	return string(e)
}
