package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository stores users in memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
}

// NewUserRepository constructs an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Create implements repository.UserRepository.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

// GetByEmail implements repository.UserRepository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetByID implements repository.UserRepository.
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// ExerciseRepository stores catalog exercises in memory.
type ExerciseRepository struct {
	mu        sync.RWMutex
	exercises map[primitive.ObjectID]domain.Exercise
}

// NewExerciseRepository constructs an empty store.
func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

var _ repository.ExerciseRepository = (*ExerciseRepository)(nil)

// Create implements repository.ExerciseRepository.
func (r *ExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and owner ID are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

// GetByID implements repository.ExerciseRepository.
func (r *ExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

// GetByIDs implements repository.ExerciseRepository.
func (r *ExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Exercise, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetByOwnerID implements repository.ExerciseRepository.
func (r *ExerciseRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Exercise, 0)
	for _, e := range r.exercises {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ProgramRepository stores workout programs in memory.
type ProgramRepository struct {
	mu       sync.RWMutex
	programs map[primitive.ObjectID]domain.WorkoutProgram
}

// NewProgramRepository constructs an empty store.
func NewProgramRepository() *ProgramRepository {
	return &ProgramRepository{programs: make(map[primitive.ObjectID]domain.WorkoutProgram)}
}

var _ repository.ProgramRepository = (*ProgramRepository)(nil)

// Create implements repository.ProgramRepository.
func (r *ProgramRepository) Create(ctx context.Context, program *domain.WorkoutProgram) (primitive.ObjectID, error) {
	if program.UserID == primitive.NilObjectID || program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires userId and name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	for i := range program.Exercises {
		if program.Exercises[i].ID.IsZero() {
			program.Exercises[i].ID = primitive.NewObjectID()
		}
		for j := range program.Exercises[i].Sets {
			if program.Exercises[i].Sets[j].ID.IsZero() {
				program.Exercises[i].Sets[j].ID = primitive.NewObjectID()
			}
		}
	}
	r.programs[program.ID] = cloneProgram(*program)
	return program.ID, nil
}

// GetOwned implements repository.ProgramRepository.
func (r *ProgramRepository) GetOwned(ctx context.Context, userID, programID primitive.ObjectID) (*domain.WorkoutProgram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.programs[programID]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	c := cloneProgram(p)
	return &c, nil
}

// GetByUserID implements repository.ProgramRepository.
func (r *ProgramRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.WorkoutProgram, 0)
	for _, p := range r.programs {
		if p.UserID == userID {
			out = append(out, cloneProgram(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// cloneProgram copies the exercise and set slices; set targets are never mutated
// in place so their pointers can be shared.
func cloneProgram(p domain.WorkoutProgram) domain.WorkoutProgram {
	c := p
	c.Exercises = make([]domain.ProgramExercise, len(p.Exercises))
	for i, pe := range p.Exercises {
		c.Exercises[i] = pe
		c.Exercises[i].Sets = append([]domain.ProgramSet(nil), pe.Sets...)
	}
	return c
}

// MediaRepository stores session media metadata in memory.
type MediaRepository struct {
	mu    sync.RWMutex
	media map[primitive.ObjectID]domain.SessionMedia
}

// NewMediaRepository constructs an empty store.
func NewMediaRepository() *MediaRepository {
	return &MediaRepository{media: make(map[primitive.ObjectID]domain.SessionMedia)}
}

var _ repository.MediaRepository = (*MediaRepository)(nil)

// Create implements repository.MediaRepository.
func (r *MediaRepository) Create(ctx context.Context, media *domain.SessionMedia) (primitive.ObjectID, error) {
	if media.SessionID == primitive.NilObjectID || media.UserID == primitive.NilObjectID || media.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("media requires sessionId, userId, and objectKey")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.media {
		if m.ObjectKey == media.ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	media.ID = primitive.NewObjectID()
	media.UploadedAt = time.Now().UTC()
	r.media[media.ID] = *media
	return media.ID, nil
}

// GetByID implements repository.MediaRepository.
func (r *MediaRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionMedia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.media[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

// ListBySession implements repository.MediaRepository.
func (r *MediaRepository) ListBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bySession(userID, sessionID), nil
}

// DeleteBySession implements repository.MediaRepository.
func (r *MediaRepository) DeleteBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.bySession(userID, sessionID)
	for _, m := range removed {
		delete(r.media, m.ID)
	}
	return removed, nil
}

func (r *MediaRepository) bySession(userID, sessionID primitive.ObjectID) []domain.SessionMedia {
	out := make([]domain.SessionMedia, 0)
	for _, m := range r.media {
		if m.SessionID == sessionID && m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out
}
