package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

func newestFirst(fields ...string) *options.FindOptions {
	sort := bson.D{}
	for _, f := range fields {
		sort = append(sort, bson.E{Key: f, Value: -1})
	}
	return options.Find().SetSort(sort)
}

func findOne(ctx context.Context, coll *mongo.Collection, id string, dest interface{}) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func updateOne(ctx context.Context, coll *mongo.Collection, id string, set bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoProblemRepository stores problems in a MongoDB collection.
type MongoProblemRepository struct {
	coll *mongo.Collection
}

// NewMongoProblemRepository binds the repository to the "problems" collection.
func NewMongoProblemRepository(db *mongo.Database) *MongoProblemRepository {
	return &MongoProblemRepository{coll: db.Collection(models.EntityProblems.Collection())}
}

// List returns every problem, newest first.
func (r *MongoProblemRepository) List(ctx context.Context) ([]models.Problem, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, newestFirst("created_at"))
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	var records []ProblemRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode problems: %w", err)
	}
	return problemsFromRecords(records), nil
}

// FindByID returns a single problem.
func (r *MongoProblemRepository) FindByID(ctx context.Context, id string) (*models.Problem, error) {
	var record ProblemRecord
	if err := findOne(ctx, r.coll, id, &record); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get problem: %w", err)
	}
	problem := ProblemFromRecord(record)
	return &problem, nil
}

// Insert stores a new problem and returns it with its generated identity.
func (r *MongoProblemRepository) Insert(ctx context.Context, problem models.Problem) (*models.Problem, error) {
	record := ProblemToRecord(problem)
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return nil, fmt.Errorf("insert problem: %w", err)
	}
	created := ProblemFromRecord(record)
	return &created, nil
}

// Update overwrites the writable fields of a problem.
func (r *MongoProblemRepository) Update(ctx context.Context, id string, problem models.Problem) error {
	rec := ProblemToRecord(problem)
	err := updateOne(ctx, r.coll, id, bson.M{
		"title":      rec.Title,
		"category":   rec.Category,
		"root_cause": rec.RootCause,
		"impact":     rec.Impact,
		"solution":   rec.Solution,
		"pj":         rec.PJ,
		"deadline":   rec.Deadline,
		"status":     rec.Status,
		"priority":   rec.Priority,
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update problem: %w", err)
	}
	return err
}

// Delete removes a problem. Deleting a missing id is not an error.
func (r *MongoProblemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}
	return nil
}

// MongoProgramRepository stores programs in a MongoDB collection.
type MongoProgramRepository struct {
	coll *mongo.Collection
}

// NewMongoProgramRepository binds the repository to the "programs" collection.
func NewMongoProgramRepository(db *mongo.Database) *MongoProgramRepository {
	return &MongoProgramRepository{coll: db.Collection(models.EntityPrograms.Collection())}
}

// List returns every program, newest first.
func (r *MongoProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, newestFirst("created_at"))
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	var records []ProgramRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode programs: %w", err)
	}
	return programsFromRecords(records), nil
}

// FindByID returns a single program.
func (r *MongoProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	var record ProgramRecord
	if err := findOne(ctx, r.coll, id, &record); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get program: %w", err)
	}
	program := ProgramFromRecord(record)
	return &program, nil
}

// Insert stores a new program and returns it with its generated identity.
func (r *MongoProgramRepository) Insert(ctx context.Context, program models.Program) (*models.Program, error) {
	record := ProgramToRecord(program)
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return nil, fmt.Errorf("insert program: %w", err)
	}
	created := ProgramFromRecord(record)
	return &created, nil
}

// Update overwrites the writable fields of a program.
func (r *MongoProgramRepository) Update(ctx context.Context, id string, program models.Program) error {
	rec := ProgramToRecord(program)
	err := updateOne(ctx, r.coll, id, bson.M{
		"title":         rec.Title,
		"impl_progress": rec.ImplProgress,
		"goal_progress": rec.GoalProgress,
		"problem_note":  rec.ProblemNote,
		"solution_note": rec.SolutionNote,
		"pj":            rec.PJ,
		"deadline":      rec.Deadline,
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update program: %w", err)
	}
	return err
}

// Delete removes a program. Deleting a missing id is not an error.
func (r *MongoProgramRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return nil
}

// MongoDisciplineLogRepository stores discipline logs in a MongoDB collection.
type MongoDisciplineLogRepository struct {
	coll *mongo.Collection
	loc  *time.Location
	now  func() time.Time
}

// NewMongoDisciplineLogRepository binds the repository to the
// "discipline_logs" collection. loc decides the default log date.
func NewMongoDisciplineLogRepository(db *mongo.Database, loc *time.Location) *MongoDisciplineLogRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &MongoDisciplineLogRepository{
		coll: db.Collection(models.EntityDiscipline.Collection()),
		loc:  loc,
		now:  time.Now,
	}
}

// List returns every log ordered by event date, newest first.
func (r *MongoDisciplineLogRepository) List(ctx context.Context) ([]models.DisciplineLog, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, newestFirst("date", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list discipline logs: %w", err)
	}
	var records []DisciplineLogRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode discipline logs: %w", err)
	}
	return disciplineLogsFromRecords(records), nil
}

// FindByID returns a single log.
func (r *MongoDisciplineLogRepository) FindByID(ctx context.Context, id string) (*models.DisciplineLog, error) {
	var record DisciplineLogRecord
	if err := findOne(ctx, r.coll, id, &record); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get discipline log: %w", err)
	}
	log := DisciplineLogFromRecord(record)
	return &log, nil
}

// Insert stores a new log. A blank date defaults to today.
func (r *MongoDisciplineLogRepository) Insert(ctx context.Context, log models.DisciplineLog) (*models.DisciplineLog, error) {
	record := DisciplineLogToRecord(log)
	record.ID = uuid.NewString()
	now := r.now()
	record.CreatedAt = now.UTC()
	if record.Date == "" {
		record.Date = now.In(r.loc).Format(time.DateOnly)
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return nil, fmt.Errorf("insert discipline log: %w", err)
	}
	created := DisciplineLogFromRecord(record)
	return &created, nil
}

// Delete removes a log. Deleting a missing id is not an error.
func (r *MongoDisciplineLogRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete discipline log: %w", err)
	}
	return nil
}
