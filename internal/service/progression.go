package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramProgressionPoint is the total weight lifted in one completed session.
type ProgramProgressionPoint struct {
	SessionID           primitive.ObjectID `json:"sessionId"`
	CompletedAt         time.Time          `json:"completedAt"`
	TotalWeightLiftedKg float64            `json:"totalWeightLiftedKg"`
}

// ExerciseProgressionPoint is the weight lifted for one exercise in one completed session.
type ExerciseProgressionPoint struct {
	SessionID           primitive.ObjectID `json:"sessionId"`
	SessionExerciseID   primitive.ObjectID `json:"sessionExerciseId"`
	CompletedAt         time.Time          `json:"completedAt"`
	OrderPerformed      int                `json:"orderPerformed"`
	TotalWeightLiftedKg float64            `json:"totalWeightLiftedKg"`
}

type ProgressionService interface {
	ProgramProgression(ctx context.Context, userID, programID primitive.ObjectID) ([]ProgramProgressionPoint, error)
	ExerciseProgression(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID) ([]ExerciseProgressionPoint, error)
}

type progressionService struct {
	sessionRepo repository.SessionRepository
	programRepo repository.ProgramRepository
}

// NewProgressionService creates the progression aggregator.
func NewProgressionService(sessionRepo repository.SessionRepository, programRepo repository.ProgramRepository) ProgressionService {
	return &progressionService{sessionRepo: sessionRepo, programRepo: programRepo}
}

// ProgramProgression lists the stored totals of the program's completed sessions,
// oldest first. Sessions without a total are skipped.
func (s *progressionService) ProgramProgression(ctx context.Context, userID, programID primitive.ObjectID) ([]ProgramProgressionPoint, error) {
	if _, err := s.programRepo.GetOwned(ctx, userID, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}

	sessions, err := s.sessionRepo.ListCompleted(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	points := make([]ProgramProgressionPoint, 0, len(sessions))
	for _, session := range sessions {
		total := session.TotalWeightLiftedKg()
		completedAt := session.CompletedAt()
		if total == nil || completedAt == nil {
			continue
		}
		points = append(points, ProgramProgressionPoint{
			SessionID:           session.ID(),
			CompletedAt:         *completedAt,
			TotalWeightLiftedKg: *total,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].CompletedAt.Before(points[j].CompletedAt) })
	return points, nil
}

// ExerciseProgression follows the referenced exercise across the completed sessions
// of its program, matching by MatchKey.
func (s *progressionService) ExerciseProgression(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID) ([]ExerciseProgressionPoint, error) {
	reference, err := s.sessionRepo.Load(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	exercise, ok := reference.Exercise(sessionExerciseID)
	if !ok {
		return nil, domain.ErrSessionExerciseNotFound
	}
	key := exercise.MatchKey()
	if key.IsEmpty() {
		return []ExerciseProgressionPoint{}, nil
	}

	sessions, err := s.sessionRepo.ListCompleted(ctx, userID, reference.ProgramID())
	if err != nil {
		return nil, err
	}
	points := make([]ExerciseProgressionPoint, 0)
	for _, session := range sessions {
		completedAt := session.CompletedAt()
		if completedAt == nil {
			continue
		}
		for _, e := range session.Exercises() {
			if e.MatchKey() != key {
				continue
			}
			points = append(points, ExerciseProgressionPoint{
				SessionID:           session.ID(),
				SessionExerciseID:   e.ID,
				CompletedAt:         *completedAt,
				OrderPerformed:      e.OrderPerformed,
				TotalWeightLiftedKg: domain.TotalWeightLifted(e.Sets),
			})
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].CompletedAt.Equal(points[j].CompletedAt) {
			return points[i].CompletedAt.Before(points[j].CompletedAt)
		}
		return points[i].OrderPerformed < points[j].OrderPerformed
	})
	return points, nil
}
