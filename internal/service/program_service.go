package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNameRequired  = fmt.Errorf("%w: program name is required", domain.ErrValidation)
	ErrProgramExerciseUnset = fmt.Errorf("%w: every program exercise needs a catalog exercise", domain.ErrValidation)
)

// ProgramSetInput holds the targets of one planned set.
type ProgramSetInput struct {
	TargetWeight          *float64
	TargetReps            *int
	TargetDurationSeconds *int
	RestSeconds           *int
}

// ProgramExerciseInput is one exercise slot of a new program.
type ProgramExerciseInput struct {
	ExerciseID primitive.ObjectID
	Notes      string
	Sets       []ProgramSetInput
}

// --- Service Interface ---
type ProgramService interface {
	CreateProgram(ctx context.Context, userID primitive.ObjectID, name, description string, exercises []ProgramExerciseInput) (*domain.WorkoutProgram, error)
	GetProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.WorkoutProgram, error)
	GetPrograms(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutProgram, error)
}

// --- Service Implementation ---

type programService struct {
	programRepo repository.ProgramRepository
	catalog     CatalogLookup
}

// NewProgramService creates a new instance of programService.
func NewProgramService(programRepo repository.ProgramRepository, catalog CatalogLookup) ProgramService {
	return &programService{
		programRepo: programRepo,
		catalog:     catalog,
	}
}

// CreateProgram stores a new template. Exercises keep the given order as their
// displayOrder and sets their position as sequence.
func (s *programService) CreateProgram(ctx context.Context, userID primitive.ObjectID, name, description string, exercises []ProgramExerciseInput) (*domain.WorkoutProgram, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProgramNameRequired
	}

	ids := make([]primitive.ObjectID, 0, len(exercises))
	for _, e := range exercises {
		if e.ExerciseID.IsZero() {
			return nil, ErrProgramExerciseUnset
		}
		ids = append(ids, e.ExerciseID)
	}
	known, err := s.catalog.GetExercises(ctx, ids)
	if err != nil {
		return nil, err
	}

	program := &domain.WorkoutProgram{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Exercises:   make([]domain.ProgramExercise, 0, len(exercises)),
	}
	for i, e := range exercises {
		if _, ok := known[e.ExerciseID]; !ok {
			return nil, fmt.Errorf("%w: exercise %s", domain.ErrExerciseNotFound, e.ExerciseID.Hex())
		}
		pe := domain.ProgramExercise{
			ExerciseID:   e.ExerciseID,
			DisplayOrder: i + 1,
			Notes:        strings.TrimSpace(e.Notes),
			Sets:         make([]domain.ProgramSet, 0, len(e.Sets)),
		}
		for j, set := range e.Sets {
			pe.Sets = append(pe.Sets, domain.ProgramSet{
				Sequence:              j + 1,
				TargetWeight:          set.TargetWeight,
				TargetReps:            set.TargetReps,
				TargetDurationSeconds: set.TargetDurationSeconds,
				RestSeconds:           set.RestSeconds,
			})
		}
		program.Exercises = append(program.Exercises, pe)
	}

	// IDs for the program, its exercises and sets are set by the repository
	programID, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	return s.GetProgram(ctx, userID, programID)
}

func (s *programService) GetProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.WorkoutProgram, error) {
	program, err := s.programRepo.GetOwned(ctx, userID, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

func (s *programService) GetPrograms(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutProgram, error) {
	return s.programRepo.GetByUserID(ctx, userID)
}
