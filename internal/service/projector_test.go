package service

import (
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDisplayName(t *testing.T) {
	catalogID := primitive.NewObjectID()
	entry := &domain.Exercise{ID: catalogID, Name: "Bench Press"}

	cases := []struct {
		name     string
		exercise domain.SessionExercise
		entry    *domain.Exercise
		want     string
	}{
		{"ad-hoc custom name", domain.SessionExercise{IsAdHoc: true, CustomExerciseName: sptr("Sled Push")}, nil, "Sled Push"},
		{"ad-hoc catalog", domain.SessionExercise{IsAdHoc: true, ExerciseID: &catalogID}, entry, "Bench Press"},
		{"ad-hoc unresolved", domain.SessionExercise{IsAdHoc: true, ExerciseID: &catalogID}, nil, "Custom Exercise"},
		{"planned catalog", domain.SessionExercise{ExerciseID: &catalogID, CustomExerciseName: sptr("old")}, entry, "Bench Press"},
		{"planned unresolved", domain.SessionExercise{ExerciseID: &catalogID}, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, displayName(tc.exercise, tc.entry))
		})
	}
}

func TestSessionProjector_Project(t *testing.T) {
	start := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	catalogID := primitive.NewObjectID()
	program := &domain.WorkoutProgram{
		ID:     primitive.NewObjectID(),
		UserID: primitive.NewObjectID(),
		Name:   "Legs",
		Exercises: []domain.ProgramExercise{{
			ID:           primitive.NewObjectID(),
			ExerciseID:   catalogID,
			DisplayOrder: 1,
			Sets: []domain.ProgramSet{
				{ID: primitive.NewObjectID(), Sequence: 1, TargetReps: iptr(5)},
				{ID: primitive.NewObjectID(), Sequence: 2, TargetReps: iptr(5)},
			},
		}},
	}
	session, err := domain.StartSession(program, program.UserID, nil, start)
	require.NoError(t, err)
	exercise := session.Exercises()[0]
	require.NoError(t, session.UpdateSetActuals(exercise.Sets[0].ID, fptr(80), iptr(5), nil, start.Add(time.Minute)))

	catalog := map[primitive.ObjectID]domain.Exercise{
		catalogID: {ID: catalogID, Name: "Front Squat", Category: "Strength", PrimaryMuscle: "Quads"},
	}
	hints := SessionHints{exercise.ID: {2: {Weight: fptr(75), Reps: iptr(6)}}}

	view := SessionProjector{}.Project(session, catalog, hints, start.Add(10*time.Minute))
	require.Equal(t, "Legs", view.ProgramName)
	require.False(t, view.IsCompleted)
	require.Equal(t, int64(600), view.Summary.DurationSeconds)
	require.Equal(t, 1, view.Summary.LoggedSets)
	require.Equal(t, 2, view.Summary.TotalSets)

	ev := view.Exercises[0]
	require.Equal(t, "Front Squat", ev.DisplayName)
	require.Equal(t, "Strength", ev.Category)
	require.Equal(t, "Quads", ev.PrimaryMuscle)
	require.True(t, ev.Sets[0].IsLogged)
	require.Nil(t, ev.Sets[0].LastWeight)
	require.Equal(t, 75.0, *ev.Sets[1].LastWeight)
	require.Equal(t, 6, *ev.Sets[1].LastReps)
}

func TestSessionProjector_SetsFollowSetIndex(t *testing.T) {
	start := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	sessionID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	session := domain.RestoreSession(domain.SessionSnapshot{
		ID:        sessionID,
		ProgramID: primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		StartedAt: start,
		Exercises: []domain.SessionExercise{{
			ID:                 exerciseID,
			SessionID:          sessionID,
			IsAdHoc:            true,
			CustomExerciseName: sptr("Dips"),
			OrderPerformed:     1,
			Sets: []domain.SessionSet{
				{ID: primitive.NewObjectID(), SessionExerciseID: exerciseID, SetIndex: 3, PlannedReps: iptr(6)},
				{ID: primitive.NewObjectID(), SessionExerciseID: exerciseID, SetIndex: 1, PlannedReps: iptr(10)},
				{ID: primitive.NewObjectID(), SessionExerciseID: exerciseID, SetIndex: 2, PlannedReps: iptr(8)},
			},
		}},
	})

	view := SessionProjector{}.Project(session, nil, nil, start)
	sets := view.Exercises[0].Sets
	require.Len(t, sets, 3)
	for i, want := range []int{10, 8, 6} {
		require.Equal(t, i+1, sets[i].SetIndex)
		require.Equal(t, want, *sets[i].PlannedReps)
	}
}
