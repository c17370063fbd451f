package repository

import (
	"alcyxob/workout-tracker/internal/domain" // Import our defined domain models
	"context"                                 // Standard for request-scoped deadlines, cancellation signals, etc.
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrConflict  = RepositoryError("version conflict")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ConflictError is returned by a version-checked save when the stored version is no
// longer the one the caller loaded. It matches ErrConflict with errors.Is.
type ConflictError struct {
	Entity          string
	ID              primitive.ObjectID
	ExpectedVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: expected version %d: %s", e.Entity, e.ID.Hex(), e.ExpectedVersion, ErrConflict)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// IsConflict reports whether err is (or wraps) a version conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// SessionStatus filters sessions by completion state.
type SessionStatus string

const (
	SessionStatusAll       SessionStatus = "all"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// SessionFilter narrows List. From/To bound startedAt (inclusive); Search is a
// case-insensitive substring match over programName and notes. Page is 1-based.
type SessionFilter struct {
	Status   SessionStatus
	From     *time.Time
	To       *time.Time
	Search   string
	Page     int
	PageSize int
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ExerciseRepository defines the interface for interacting with catalog exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error)
}

// ProgramRepository defines the interface for workout program templates.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.WorkoutProgram) (primitive.ObjectID, error)
	// GetOwned returns ErrNotFound for missing and foreign programs alike.
	GetOwned(ctx context.Context, userID, programID primitive.ObjectID) (*domain.WorkoutProgram, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutProgram, error)
}

// SessionRepository persists WorkoutSession aggregates. Every read is scoped by the
// owning user; a foreign session is indistinguishable from a missing one.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) error
	Load(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)
	// LoadWithHistory returns the user's completed sessions of the program that
	// started strictly before the given instant, newest first by completedAt
	// (startedAt when completedAt is missing).
	LoadWithHistory(ctx context.Context, userID, programID primitive.ObjectID, before time.Time) ([]*domain.WorkoutSession, error)
	// ListCompleted returns the user's completed sessions of the program, oldest first.
	ListCompleted(ctx context.Context, userID, programID primitive.ObjectID) ([]*domain.WorkoutSession, error)
	List(ctx context.Context, userID primitive.ObjectID, filter SessionFilter) ([]*domain.WorkoutSession, int64, error)
	// Save writes the aggregate if the stored version still equals session.Version()
	// and then advances the aggregate to the new version. Returns *ConflictError otherwise.
	Save(ctx context.Context, session *domain.WorkoutSession) error
	Delete(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

// MediaRepository defines the interface for session media metadata.
type MediaRepository interface {
	Create(ctx context.Context, media *domain.SessionMedia) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionMedia, error)
	ListBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error)
	DeleteBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error)
}
