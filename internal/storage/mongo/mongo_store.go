package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	arenasCollection       = "arenas"
	participantsCollection = "participants"
	completionsCollection  = "completions"
	usersCollection        = "users"

	connectTimeout = 10 * time.Second
)

// Store is a document store backed by MongoDB, one collection per entity.
type Store struct {
	client *mongo.Client
	dbName string
}

// Open connects to the MongoDB server at uri and ensures the indexes the
// query patterns rely on, including the unique partial index that enforces
// at most one active participant per (user, arena) pair.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	s := &Store{client: client, dbName: dbName}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	completions := s.collection(completionsCollection)
	_, err := completions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "arena_id", Value: 1}, {Key: "completed_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating completion indexes: %w", err)
	}

	participants := s.collection(participantsCollection)
	_, err = participants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "arena_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating participant indexes: %w", err)
	}

	arenas := s.collection(arenasCollection)
	_, err = arenas.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating arena indexes: %w", err)
	}

	return nil
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) PutArena(ctx context.Context, a *arena.Arena) error {
	_, err := s.collection(arenasCollection).ReplaceOne(ctx,
		bson.M{"_id": a.ID}, a, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetArena(ctx context.Context, id string) (*arena.Arena, error) {
	var a arena.Arena
	err := s.collection(arenasCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListArenas(ctx context.Context, f storage.ArenaFilter) ([]arena.Arena, error) {
	filter := bson.M{}
	if f.CreatedBy != "" {
		filter["created_by"] = f.CreatedBy
	}
	if f.PublicOnly {
		filter["is_public"] = true
	}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": f.IDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection(arenasCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []arena.Arena
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteArena(ctx context.Context, id string) error {
	res, err := s.collection(arenasCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) PutParticipant(ctx context.Context, p *arena.Participant) error {
	_, err := s.collection(participantsCollection).ReplaceOne(ctx,
		bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) ListParticipants(ctx context.Context, f storage.ParticipantFilter) ([]arena.Participant, error) {
	filter := bson.M{}
	if f.ArenaID != "" {
		filter["arena_id"] = f.ArenaID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}

	cursor, err := s.collection(participantsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []arena.Participant
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateParticipant(ctx context.Context, p *arena.Participant) error {
	res, err := s.collection(participantsCollection).UpdateOne(ctx,
		bson.M{"_id": p.ID, "version": p.Version},
		bson.M{
			"$set": bson.M{
				"current_streak":    p.CurrentStreak,
				"longest_streak":    p.LongestStreak,
				"total_completions": p.TotalCompletions,
				"last_completed_at": p.LastCompletedAt,
				"is_active":         p.Active,
				"reminder_time":     p.ReminderTime,
			},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// distinguish a stale version from a missing document
		count, err := s.collection(participantsCollection).CountDocuments(ctx, bson.M{"_id": p.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return storage.ErrNotFound
		}
		return storage.ErrConflict
	}
	p.Version++
	return nil
}

func (s *Store) PutCompletion(ctx context.Context, c *arena.Completion) error {
	_, err := s.collection(completionsCollection).InsertOne(ctx, c)
	return err
}

func (s *Store) ListCompletions(ctx context.Context, f storage.CompletionFilter) ([]arena.Completion, bool, error) {
	limit := f.Limit
	if limit <= 0 || limit > storage.QueryLimit {
		limit = storage.QueryLimit
	}

	filter := bson.M{}
	if f.ArenaID != "" {
		filter["arena_id"] = f.ArenaID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if !f.Since.IsZero() {
		filter["completed_at"] = bson.M{"$gte": f.Since}
	}

	// fetch one past the limit so truncation is detectable
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(int64(limit) + 1)
	cursor, err := s.collection(completionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cursor.Close(ctx)

	var out []arena.Completion
	if err := cursor.All(ctx, &out); err != nil {
		return nil, false, err
	}

	truncated := len(out) > limit
	if truncated {
		out = out[:limit]
	}
	return out, truncated, nil
}

func (s *Store) PutUser(ctx context.Context, u *arena.User) error {
	_, err := s.collection(usersCollection).ReplaceOne(ctx,
		bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*arena.User, error) {
	var u arena.User
	err := s.collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, ids []string) ([]arena.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []arena.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
