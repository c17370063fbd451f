package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository" // Import repository package
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNameRequired = fmt.Errorf("%w: exercise name is required", domain.ErrValidation)
)

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, ownerID primitive.ObjectID, name, category, primaryMuscle, description string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error)
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	catalog      CatalogLookup
}

// NewExerciseService creates a new instance of exerciseService. Reads go through
// the cached catalog lookup.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, catalog CatalogLookup) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		catalog:      catalog,
	}
}

// CreateExercise adds a new exercise to the catalog.
func (s *exerciseService) CreateExercise(ctx context.Context, ownerID primitive.ObjectID, name, category, primaryMuscle, description string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrExerciseNameRequired
	}
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		OwnerID:       ownerID,
		Name:          name,
		Category:      strings.TrimSpace(category),
		PrimaryMuscle: strings.TrimSpace(primaryMuscle),
		Description:   strings.TrimSpace(description),
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again to get the timestamps set by the repository
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single catalog exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	return s.catalog.GetExercise(ctx, exerciseID)
}

// GetExercisesByOwner retrieves all exercises a user added, newest first.
func (s *exerciseService) GetExercisesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID cannot be nil")
	}
	return s.exerciseRepo.GetByOwnerID(ctx, ownerID)
}
