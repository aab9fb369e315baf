package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

// ProblemStore persists problems.
type ProblemStore interface {
	List(ctx context.Context) ([]models.Problem, error)
	FindByID(ctx context.Context, id string) (*models.Problem, error)
	Insert(ctx context.Context, problem models.Problem) (*models.Problem, error)
	Update(ctx context.Context, id string, problem models.Problem) error
	Delete(ctx context.Context, id string) error
}

// ProgramStore persists programs.
type ProgramStore interface {
	List(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Insert(ctx context.Context, program models.Program) (*models.Program, error)
	Update(ctx context.Context, id string, program models.Program) error
	Delete(ctx context.Context, id string) error
}

// DisciplineLogStore persists discipline logs. Logs are never updated.
type DisciplineLogStore interface {
	List(ctx context.Context) ([]models.DisciplineLog, error)
	FindByID(ctx context.Context, id string) (*models.DisciplineLog, error)
	Insert(ctx context.Context, log models.DisciplineLog) (*models.DisciplineLog, error)
	Delete(ctx context.Context, id string) error
}

// Stores bundles one backend's record stores.
type Stores struct {
	Problems ProblemStore
	Programs ProgramStore
	Logs     DisciplineLogStore
}

// NewPostgresStores backs every collection with Postgres tables.
func NewPostgresStores(db *sqlx.DB) Stores {
	return Stores{
		Problems: NewProblemRepository(db),
		Programs: NewProgramRepository(db),
		Logs:     NewDisciplineLogRepository(db),
	}
}

// NewMongoStores backs every collection with Mongo collections. loc decides
// the default date of logs stored without one.
func NewMongoStores(db *mongo.Database, loc *time.Location) Stores {
	return Stores{
		Problems: NewMongoProblemRepository(db),
		Programs: NewMongoProgramRepository(db),
		Logs:     NewMongoDisciplineLogRepository(db, loc),
	}
}
