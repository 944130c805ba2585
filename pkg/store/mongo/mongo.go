// Package mongo implements the project and task repositories on MongoDB.
//
// Projects live in the "projects" collection keyed by project ID. Tasks live
// in the "tasks" collection, one document per task, unique on
// (project_id, task_id) and ordered by a sequence number that preserves
// the input order the graph relies on.
//
// Batch updates and whole-project writes run inside a multi-document
// transaction, so the deployment must be a replica set or sharded cluster.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/critpath/pkg/schedule"
	"github.com/matzehuels/critpath/pkg/store"
)

// Collection names.
const (
	ProjectsCollection = "projects"
	TasksCollection    = "tasks"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "critpath"

// Config holds connection settings.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration // connect and ping timeout; default 10s
}

// Store is a MongoDB-backed [store.Store].
type Store struct {
	client   *mongo.Client
	projects *mongo.Collection
	tasks    *mongo.Collection
}

// Open connects to MongoDB, verifies the connection and ensures the task
// index exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		projects: db.Collection(ProjectsCollection),
		tasks:    db.Collection(TasksCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "task_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "seq", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}
	return nil
}

// Get returns the project or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, projectID string) (*schedule.Project, error) {
	var doc projectDoc
	err := s.projects.FindOne(ctx, bson.M{"_id": projectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("project %s: %w", projectID, store.ErrNotFound)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("mongo get project %s: %w", projectID, err))
	}
	p := doc.toProject()
	return &p, nil
}

// List returns the project's tasks in sequence order.
func (s *Store) List(ctx context.Context, projectID string) ([]schedule.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, classify(fmt.Errorf("mongo list tasks: %w", err))
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(fmt.Errorf("mongo decode tasks: %w", err))
	}
	tasks := make([]schedule.Task, len(docs))
	for i, d := range docs {
		tasks[i] = d.toTask()
	}
	return tasks, nil
}

// BatchUpdate writes all updates in one transaction. If any update does not
// match a stored task, the transaction is aborted and store.ErrConflict is
// returned.
func (s *Store) BatchUpdate(ctx context.Context, projectID string, updates []schedule.TaskUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(updates))
	for i, u := range updates {
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"project_id": projectID, "task_id": u.ID}).
			SetUpdate(bson.M{"$set": updateFields(u)})
	}

	return s.transaction(ctx, func(sc mongo.SessionContext) error {
		res, err := s.tasks.BulkWrite(sc, models, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return fmt.Errorf("mongo batch update: %w", err)
		}
		if int(res.MatchedCount) != len(updates) {
			return fmt.Errorf("%w: matched %d of %d tasks", store.ErrConflict, res.MatchedCount, len(updates))
		}
		return nil
	})
}

// SaveTask replaces one task document, keeping its sequence number.
func (s *Store) SaveTask(ctx context.Context, task schedule.Task) error {
	filter := bson.M{"project_id": task.ProjectID, "task_id": task.ID}
	var existing taskDoc
	err := s.tasks.FindOne(ctx, filter).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("task %s: %w", task.ID, store.ErrNotFound)
	}
	if err != nil {
		return classify(fmt.Errorf("mongo find task %s: %w", task.ID, err))
	}

	doc := newTaskDoc(task, existing.Seq)
	if _, err := s.tasks.ReplaceOne(ctx, filter, doc); err != nil {
		return fmt.Errorf("mongo save task %s: %w", task.ID, err)
	}
	return nil
}

// Put replaces the project and all of its tasks in one transaction.
func (s *Store) Put(ctx context.Context, project schedule.Project, tasks []schedule.Task) error {
	docs := make([]any, len(tasks))
	for i, t := range tasks {
		if t.ProjectID == "" {
			t.ProjectID = project.ID
		}
		docs[i] = newTaskDoc(t, i)
	}

	return s.transaction(ctx, func(sc mongo.SessionContext) error {
		_, err := s.projects.ReplaceOne(sc, bson.M{"_id": project.ID}, newProjectDoc(project),
			options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("mongo put project: %w", err)
		}
		if _, err := s.tasks.DeleteMany(sc, bson.M{"project_id": project.ID}); err != nil {
			return fmt.Errorf("mongo clear tasks: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if _, err := s.tasks.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("mongo insert tasks: %w", err)
		}
		return nil
	})
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) transaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// classify marks transient driver errors as retryable. Only read paths use
// it; writes must surface failures as they are.
func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return store.Retryable(err)
	}
	return err
}

var _ store.Store = (*Store)(nil)
