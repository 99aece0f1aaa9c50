package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/drblury/todoweaver/probe"
	"github.com/drblury/todoweaver/todo"
)

// Store is a todo.Store backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// New wraps an existing collection. The caller keeps ownership of the
// client; Close is a no-op.
func New(coll *mongo.Collection) *Store {
	if coll == nil {
		panic("mongostore: collection cannot be nil")
	}
	return &Store{client: coll.Database().Client(), coll: coll}
}

// Connect dials MongoDB, verifies the connection with a ping and returns a
// Store that owns the client.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		owned:  true,
	}, nil
}

// Create inserts a new todo document in one command.
func (s *Store) Create(ctx context.Context, body todo.Todo, baseURL string) (todo.Todo, error) {
	if body == nil {
		return nil, todo.InvalidInput("body must be a JSON object")
	}
	if err := checkFieldNames(body); err != nil {
		return nil, err
	}
	if err := todo.CheckContext(ctx, "create"); err != nil {
		return nil, err
	}

	oid := primitive.NewObjectID()
	item := todo.Prepare(body, oid.Hex(), baseURL)

	if _, err := s.coll.InsertOne(ctx, toDocument(item, oid)); err != nil {
		return nil, wrapError(ctx, "insert todo", err)
	}
	return item, nil
}

// List returns every todo document.
func (s *Store) List(ctx context.Context) ([]todo.Todo, error) {
	if err := todo.CheckContext(ctx, "list"); err != nil {
		return nil, err
	}

	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, wrapError(ctx, "find todos", err)
	}
	defer cur.Close(context.WithoutCancel(ctx))

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapError(ctx, "read todos", err)
	}

	out := make([]todo.Todo, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out, nil
}

// Get returns the todo document with the given id.
func (s *Store) Get(ctx context.Context, id string) (todo.Todo, error) {
	if err := todo.RequireID(id); err != nil {
		return nil, err
	}
	oid, ok := parseID(id)
	if !ok {
		return nil, todo.NotFound(id)
	}
	if err := todo.CheckContext(ctx, "get"); err != nil {
		return nil, err
	}

	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{fieldObjectID: oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, todo.NotFound(id)
	}
	if err != nil {
		return nil, wrapError(ctx, "find todo", err)
	}
	return fromDocument(doc), nil
}

// MergeUpdate applies patch with $set and returns the document as written.
func (s *Store) MergeUpdate(ctx context.Context, id string, patch todo.Todo) (todo.Todo, error) {
	if err := todo.RequireID(id); err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, todo.InvalidInput("patch must be a JSON object")
	}
	if err := checkFieldNames(patch); err != nil {
		return nil, err
	}
	oid, ok := parseID(id)
	if !ok {
		return nil, todo.NotFound(id)
	}

	set := setDocument(todo.WithoutImmutable(patch))
	if len(set) == 0 {
		return s.Get(ctx, id)
	}
	if err := todo.CheckContext(ctx, "merge update"); err != nil {
		return nil, err
	}

	var doc bson.M
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{fieldObjectID: oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, todo.NotFound(id)
	}
	if err != nil {
		return nil, wrapError(ctx, "update todo", err)
	}
	return fromDocument(doc), nil
}

// Delete removes the todo document with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := todo.RequireID(id); err != nil {
		return err
	}
	oid, ok := parseID(id)
	if !ok {
		return todo.NotFound(id)
	}
	if err := todo.CheckContext(ctx, "delete"); err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{fieldObjectID: oid})
	if err != nil {
		return wrapError(ctx, "delete todo", err)
	}
	if res.DeletedCount == 0 {
		return todo.NotFound(id)
	}
	return nil
}

// DeleteAll drops the collection. Dropping a missing collection succeeds.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := todo.CheckContext(ctx, "delete all"); err != nil {
		return err
	}
	if err := s.coll.Drop(ctx); err != nil {
		return wrapError(ctx, "drop todos", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return wrapError(ctx, "ping", err)
	}
	return nil
}

// Probe returns a readiness probe pinging the store's client.
func (s *Store) Probe() probe.Func {
	return probe.NewMongoPingProbe(s.client, nil)
}

// Close disconnects the client when the store created it.
func (s *Store) Close(ctx context.Context) error {
	if !s.owned || s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongostore: disconnect: %w", err)
	}
	return nil
}

// wrapError classifies driver failures. A done context is the caller giving
// up, not the backend failing.
func wrapError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return todo.Internal(op, errors.Join(ctxErr, err))
	}
	return todo.Unavailable(op, err)
}

var (
	_ todo.Store  = (*Store)(nil)
	_ todo.Pinger = (*Store)(nil)
	_ todo.Closer = (*Store)(nil)
)
