// internal/repository/mongo/session_repo.go
package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository.
//
// Each aggregate is a single document (domain.SessionSnapshot) so exercises, sets,
// renumbering and updatedAt commit atomically. Writes are guarded by the version field.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new WorkoutSession repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a freshly started session at version 1.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) error {
	if session.ID() == primitive.NilObjectID || session.UserID() == primitive.NilObjectID {
		return errors.New("session requires id and userId")
	}
	snap := session.Snapshot()
	snap.Version = 1

	if _, err := r.collection.InsertOne(ctx, snap); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	session.SetVersion(snap.Version)
	return nil
}

// Load retrieves a session owned by the user.
func (r *mongoSessionRepository) Load(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	var snap domain.SessionSnapshot
	filter := bson.M{"_id": sessionID, "userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return domain.RestoreSession(snap), nil
}

// LoadWithHistory retrieves completed sessions of the same program started before `before`.
func (r *mongoSessionRepository) LoadWithHistory(ctx context.Context, userID, programID primitive.ObjectID, before time.Time) ([]*domain.WorkoutSession, error) {
	filter := bson.M{
		"userId":      userID,
		"programId":   programID,
		"completedAt": bson.M{"$ne": nil},
		"startedAt":   bson.M{"$lt": before},
	}
	// Completed sessions always carry completedAt; startedAt only breaks ties.
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}, {Key: "startedAt", Value: -1}})
	return r.find(ctx, filter, findOptions)
}

// ListCompleted retrieves all completed sessions of a program, oldest first.
func (r *mongoSessionRepository) ListCompleted(ctx context.Context, userID, programID primitive.ObjectID) ([]*domain.WorkoutSession, error) {
	filter := bson.M{
		"userId":      userID,
		"programId":   programID,
		"completedAt": bson.M{"$ne": nil},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, filter, findOptions)
}

// List returns one page of the user's sessions, newest first by startedAt, plus the
// total number of matches.
func (r *mongoSessionRepository) List(ctx context.Context, userID primitive.ObjectID, f repository.SessionFilter) ([]*domain.WorkoutSession, int64, error) {
	filter := bson.M{"userId": userID}

	switch f.Status {
	case repository.SessionStatusActive:
		filter["completedAt"] = nil // matches missing and null
	case repository.SessionStatusCompleted:
		filter["completedAt"] = bson.M{"$ne": nil}
	}

	startedAt := bson.M{}
	if f.From != nil {
		startedAt["$gte"] = *f.From
	}
	if f.To != nil {
		startedAt["$lte"] = *f.To
	}
	if len(startedAt) > 0 {
		filter["startedAt"] = startedAt
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"programName": pattern},
			bson.M{"notes": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		findOptions.SetSkip(int64((page - 1) * f.PageSize)).SetLimit(int64(f.PageSize))
	}

	sessions, err := r.find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// Save replaces the stored document if its version still matches the aggregate's.
func (r *mongoSessionRepository) Save(ctx context.Context, session *domain.WorkoutSession) error {
	expected := session.Version()
	snap := session.Snapshot()
	snap.Version = expected + 1

	filter := bson.M{"_id": session.ID(), "userId": session.UserID(), "version": expected}
	result, err := r.collection.ReplaceOne(ctx, filter, snap)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either gone or someone else saved first.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": session.ID(), "userId": session.UserID()})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return &repository.ConflictError{Entity: "WorkoutSession", ID: session.ID(), ExpectedVersion: expected}
	}
	session.SetVersion(snap.Version)
	return nil
}

// Delete removes a session owned by the user.
func (r *mongoSessionRepository) Delete(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	filter := bson.M{"_id": sessionID, "userId": userID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Not found OR not owned by this user.
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.WorkoutSession, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snaps []domain.SessionSnapshot
	if err = cursor.All(ctx, &snaps); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	sessions := make([]*domain.WorkoutSession, 0, len(snaps))
	for _, snap := range snaps {
		sessions = append(sessions, domain.RestoreSession(snap))
	}
	return sessions, nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// History and progression lookups
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "programId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Session list, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
