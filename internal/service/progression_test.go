package service

import (
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// completeWith starts a session of program at the current clock time, logs the
// first set of the first exercise and completes it an hour later.
func (f *fixture) completeWith(t *testing.T, userID, programID primitive.ObjectID, weight float64, reps int) *SessionView {
	t.Helper()
	view, err := f.sessions.StartSession(f.ctx, userID, programID, nil)
	require.NoError(t, err)
	_, err = f.sessions.UpdateSetActuals(f.ctx, userID, view.ID, view.Exercises[0].Sets[0].ID, SetActuals{Weight: fptr(weight), Reps: iptr(reps)})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	view, err = f.sessions.CompleteSession(f.ctx, userID, view.ID)
	require.NoError(t, err)
	return view
}

func TestProgressionService_ProgramProgression(t *testing.T) {
	f := newFixture(t)
	squat := f.exercise(t, "Squat", "Strength")
	program := f.program(t, f.userID, 1, squat)
	unrelated := f.program(t, f.userID, 1, squat)

	first := f.completeWith(t, f.userID, program.ID, 100, 5)
	f.clock.Advance(24 * time.Hour)
	f.completeWith(t, f.userID, unrelated.ID, 200, 5)
	f.clock.Advance(24 * time.Hour)
	third := f.completeWith(t, f.userID, program.ID, 105, 5)

	// Active sessions never contribute.
	_, err := f.sessions.StartSession(f.ctx, f.userID, program.ID, nil)
	require.NoError(t, err)

	points, err := f.progression.ProgramProgression(f.ctx, f.userID, program.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, first.ID, points[0].SessionID)
	require.Equal(t, 500.0, points[0].TotalWeightLiftedKg)
	require.Equal(t, third.ID, points[1].SessionID)
	require.Equal(t, 525.0, points[1].TotalWeightLiftedKg)
	require.True(t, points[0].CompletedAt.Before(points[1].CompletedAt))

	_, err = f.progression.ProgramProgression(f.ctx, primitive.NewObjectID(), program.ID)
	require.ErrorIs(t, err, domain.ErrProgramNotFound)
}

func TestProgressionService_ExerciseProgression(t *testing.T) {
	f := newFixture(t)
	squat := f.exercise(t, "Squat", "Strength")
	program := f.program(t, f.userID, 1, squat)

	first := f.completeWith(t, f.userID, program.ID, 100, 5)
	f.clock.Advance(24 * time.Hour)
	second := f.completeWith(t, f.userID, program.ID, 110, 3)

	points, err := f.progression.ExerciseProgression(f.ctx, f.userID, second.ID, second.Exercises[0].ID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, first.ID, points[0].SessionID)
	require.Equal(t, first.Exercises[0].ID, points[0].SessionExerciseID)
	require.Equal(t, 500.0, points[0].TotalWeightLiftedKg)
	require.Equal(t, 330.0, points[1].TotalWeightLiftedKg)

	_, err = f.progression.ExerciseProgression(f.ctx, f.userID, second.ID, primitive.NewObjectID())
	require.ErrorIs(t, err, domain.ErrSessionExerciseNotFound)

	_, err = f.progression.ExerciseProgression(f.ctx, primitive.NewObjectID(), second.ID, second.Exercises[0].ID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

// plantForeign stores a completed copy of session under another owner, with
// every logged set at 999kg.
func (f *fixture) plantForeign(t *testing.T, sessionID, owner primitive.ObjectID) {
	t.Helper()
	session, err := f.sessionRepo.Load(f.ctx, f.userID, sessionID)
	require.NoError(t, err)
	snap := session.Snapshot()
	snap.ID = primitive.NewObjectID()
	snap.UserID = owner
	snap.Version = 0
	total := 9999.0
	snap.TotalWeightLiftedKg = &total
	for i := range snap.Exercises {
		snap.Exercises[i].ID = primitive.NewObjectID()
		snap.Exercises[i].SessionID = snap.ID
		for j := range snap.Exercises[i].Sets {
			snap.Exercises[i].Sets[j].ID = primitive.NewObjectID()
			snap.Exercises[i].Sets[j].SessionExerciseID = snap.Exercises[i].ID
			snap.Exercises[i].Sets[j].ActualWeight = fptr(999)
		}
	}
	require.NoError(t, f.sessionRepo.Create(f.ctx, domain.RestoreSession(snap)))
}

func TestProgressionService_ExcludesOtherUsers(t *testing.T) {
	f := newFixture(t)
	squat := f.exercise(t, "Squat", "Strength")
	program := f.program(t, f.userID, 1, squat)
	mine := f.completeWith(t, f.userID, program.ID, 100, 5)

	other := primitive.NewObjectID()
	f.plantForeign(t, mine.ID, other)
	foreign, err := f.sessionRepo.ListCompleted(f.ctx, other, program.ID)
	require.NoError(t, err)
	require.Len(t, foreign, 1)

	points, err := f.progression.ProgramProgression(f.ctx, f.userID, program.ID)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, mine.ID, points[0].SessionID)
	require.Equal(t, 500.0, points[0].TotalWeightLiftedKg)

	exercisePoints, err := f.progression.ExerciseProgression(f.ctx, f.userID, mine.ID, mine.Exercises[0].ID)
	require.NoError(t, err)
	require.Len(t, exercisePoints, 1)
	require.Equal(t, mine.ID, exercisePoints[0].SessionID)
	require.Equal(t, 500.0, exercisePoints[0].TotalWeightLiftedKg)
}

func TestProgressionService_ExerciseWithoutIdentity(t *testing.T) {
	f := newFixture(t)
	program := f.program(t, f.userID, 1, f.exercise(t, "Squat", "Strength"))
	f.completeWith(t, f.userID, program.ID, 100, 5)

	sessionID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	completedAt := f.clock.Now()
	require.NoError(t, f.sessionRepo.Create(f.ctx, domain.RestoreSession(domain.SessionSnapshot{
		ID:          sessionID,
		ProgramID:   program.ID,
		ProgramName: program.Name,
		UserID:      f.userID,
		StartedAt:   completedAt.Add(-time.Hour),
		CompletedAt: &completedAt,
		CreatedAt:   completedAt.Add(-time.Hour),
		UpdatedAt:   completedAt,
		Exercises: []domain.SessionExercise{{
			ID:             exerciseID,
			SessionID:      sessionID,
			IsAdHoc:        true,
			OrderPerformed: 1,
			Sets: []domain.SessionSet{{
				ID:                primitive.NewObjectID(),
				SessionExerciseID: exerciseID,
				SetIndex:          1,
				ActualWeight:      fptr(100),
				ActualReps:        iptr(5),
			}},
		}},
	})))

	points, err := f.progression.ExerciseProgression(f.ctx, f.userID, sessionID, exerciseID)
	require.NoError(t, err)
	require.NotNil(t, points)
	require.Empty(t, points)
}
