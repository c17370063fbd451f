package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mediaCollectionName = "session_media"

// mongoMediaRepository implements repository.MediaRepository
type mongoMediaRepository struct {
	collection *mongo.Collection
}

// NewMongoMediaRepository creates a new media metadata repository backed by MongoDB.
func NewMongoMediaRepository(db *mongo.Database) repository.MediaRepository {
	return &mongoMediaRepository{
		collection: db.Collection(mediaCollectionName),
	}
}

// Create inserts new media metadata into the database.
func (r *mongoMediaRepository) Create(ctx context.Context, media *domain.SessionMedia) (primitive.ObjectID, error) {
	if media.SessionID == primitive.NilObjectID ||
		media.SessionExerciseID == primitive.NilObjectID ||
		media.UserID == primitive.NilObjectID ||
		media.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("media requires sessionId, sessionExerciseId, userId, and objectKey")
	}

	media.ID = primitive.NewObjectID()
	media.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, media)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves media metadata by its ID.
func (r *mongoMediaRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionMedia, error) {
	var media domain.SessionMedia
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&media)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &media, nil
}

// ListBySession retrieves all media of a session in upload order.
func (r *mongoMediaRepository) ListBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error) {
	filter := bson.M{"sessionId": sessionID, "userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var media []domain.SessionMedia
	if err = cursor.All(ctx, &media); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if media == nil {
		media = []domain.SessionMedia{}
	}
	return media, nil
}

// DeleteBySession removes all media metadata of a session and returns what was
// removed so the caller can delete the stored objects.
func (r *mongoMediaRepository) DeleteBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error) {
	media, err := r.ListBySession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(media) == 0 {
		return media, nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID, "userId": userID}); err != nil {
		return nil, err
	}
	return media, nil
}

// EnsureMediaIndexes creates necessary indexes for the media collection.
func EnsureMediaIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "userId", Value: 1}, {Key: "uploadedAt", Value: 1}},
			Options: options.Index(),
		},
		{
			// Object keys are unique within the bucket
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
