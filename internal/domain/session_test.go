package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pgregory.net/rapid"
)

var testNow = time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
func ptrS(v string) *string   { return &v }

// testProgram builds a program with exercises x sets, deliberately stored out of
// display order so StartSession has to sort.
func testProgram(userID primitive.ObjectID, exercises, sets int) *WorkoutProgram {
	p := &WorkoutProgram{ID: primitive.NewObjectID(), UserID: userID, Name: "Push Day"}
	for i := exercises; i >= 1; i-- {
		pe := ProgramExercise{ID: primitive.NewObjectID(), ExerciseID: primitive.NewObjectID(), DisplayOrder: i * 10}
		for j := sets; j >= 1; j-- {
			pe.Sets = append(pe.Sets, ProgramSet{
				ID:           primitive.NewObjectID(),
				Sequence:     j,
				TargetWeight: ptrF(float64(20 * j)),
				TargetReps:   ptrI(5 + j),
				RestSeconds:  ptrI(90),
			})
		}
		p.Exercises = append(p.Exercises, pe)
	}
	return p
}

func orderedExercises(s *WorkoutSession) []SessionExercise {
	out := s.Exercises()
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].OrderPerformed < out[j-1].OrderPerformed; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func requireDenseOrder(t require.TestingT, s *WorkoutSession) {
	seen := map[int]bool{}
	exercises := s.Exercises()
	for _, e := range exercises {
		require.GreaterOrEqual(t, e.OrderPerformed, 1)
		require.LessOrEqual(t, e.OrderPerformed, len(exercises))
		require.False(t, seen[e.OrderPerformed], "duplicate orderPerformed %d", e.OrderPerformed)
		seen[e.OrderPerformed] = true
	}
}

func requireDenseSets(t require.TestingT, e SessionExercise) {
	for i, set := range e.Sets {
		require.Equal(t, i+1, set.SetIndex)
	}
}

func TestStartSession_CopiesProgramStructure(t *testing.T) {
	userID := primitive.NewObjectID()
	program := testProgram(userID, 3, 4)

	s, err := StartSession(program, userID, ptrS("  leg day  "), testNow)
	require.NoError(t, err)
	require.Equal(t, program.ID, s.ProgramID())
	require.Equal(t, "Push Day", s.ProgramName())
	require.Equal(t, "leg day", *s.Notes())
	require.False(t, s.IsCompleted())
	require.Nil(t, s.TotalWeightLiftedKg())

	exercises := orderedExercises(s)
	require.Len(t, exercises, 3)
	for i, e := range exercises {
		require.Equal(t, i+1, e.OrderPerformed)
		require.False(t, e.IsAdHoc)
		require.Equal(t, s.ID(), e.SessionID)

		// Display order 10, 20, 30 was stored reversed in the program.
		pe := program.Exercises[len(program.Exercises)-1-i]
		require.Equal(t, pe.ID, *e.ProgramExerciseID)
		require.Equal(t, pe.ExerciseID, *e.ExerciseID)

		require.Len(t, e.Sets, 4)
		for j, set := range e.Sets {
			require.Equal(t, j+1, set.SetIndex)
			require.Equal(t, float64(20*(j+1)), *set.PlannedWeight)
			require.Equal(t, 5+j+1, *set.PlannedReps)
			require.Equal(t, 90, *set.RestSeconds)
			require.Nil(t, set.ActualWeight)
			require.Nil(t, set.ActualReps)
			require.Nil(t, set.ActualDurationSeconds)
			require.False(t, set.IsUserAdded)
			require.Equal(t, e.ID, set.SessionExerciseID)
		}
	}
}

func TestStartSession_ForeignProgram(t *testing.T) {
	program := testProgram(primitive.NewObjectID(), 1, 1)

	_, err := StartSession(program, primitive.NewObjectID(), nil, testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddExercise_Identity(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)

	_, err = s.AddExercise(NewExercise{CustomName: ptrS("   ")}, testNow)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrExerciseIdentityRequired)

	custom, err := s.AddExercise(NewExercise{CustomName: ptrS(" Farmer Carry ")}, testNow)
	require.NoError(t, err)
	require.True(t, custom.IsAdHoc)
	require.Equal(t, "Farmer Carry", *custom.CustomExerciseName)
	require.Equal(t, 2, custom.OrderPerformed)
	require.Len(t, custom.Sets, 1, "a default set is synthesized")
	require.True(t, custom.Sets[0].IsUserAdded)
	require.Equal(t, 1, custom.Sets[0].SetIndex)

	catalogID := primitive.NewObjectID()
	catalog, err := s.AddExercise(NewExercise{
		ExerciseID: &catalogID,
		CustomName: ptrS("ignored"),
		Sets:       []PlannedSet{{Weight: ptrF(40)}, {Weight: ptrF(45)}},
	}, testNow)
	require.NoError(t, err)
	require.Nil(t, catalog.CustomExerciseName)
	require.Equal(t, catalogID, *catalog.ExerciseID)
	require.Equal(t, 3, catalog.OrderPerformed)
	require.Len(t, catalog.Sets, 2)
	require.Equal(t, 2, catalog.Sets[1].SetIndex)
	require.Equal(t, 45.0, *catalog.Sets[1].PlannedWeight)
}

func TestRemoveExercise_PlannedIsRejected(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 2, 1), userID, nil, testNow)
	require.NoError(t, err)
	planned := orderedExercises(s)[0]

	err = s.RemoveExercise(planned.ID, testNow)
	require.ErrorIs(t, err, ErrValidation)
	require.Len(t, s.Exercises(), 2)

	err = s.RemoveExercise(primitive.NewObjectID(), testNow)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveExercise_RenumbersByCreationOrder(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)

	a, err := s.AddExercise(NewExercise{CustomName: ptrS("A")}, testNow.Add(time.Minute))
	require.NoError(t, err)
	b, err := s.AddExercise(NewExercise{CustomName: ptrS("B")}, testNow.Add(2*time.Minute))
	require.NoError(t, err)
	c, err := s.AddExercise(NewExercise{CustomName: ptrS("C")}, testNow.Add(3*time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.RemoveExercise(b.ID, testNow.Add(4*time.Minute)))

	exercises := orderedExercises(s)
	require.Len(t, exercises, 3)
	require.Equal(t, a.ID, exercises[1].ID)
	require.Equal(t, c.ID, exercises[2].ID)
	require.Equal(t, 3, exercises[2].OrderPerformed)
	require.Equal(t, testNow.Add(4*time.Minute), s.UpdatedAt())
}

func TestReorderExercises(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 3, 1), userID, nil, testNow)
	require.NoError(t, err)
	ex := orderedExercises(s)

	t.Run("omitted id", func(t *testing.T) {
		err := s.ReorderExercises([]primitive.ObjectID{ex[2].ID, ex[0].ID}, testNow)
		require.ErrorIs(t, err, ErrValidation)
	})
	t.Run("foreign id", func(t *testing.T) {
		err := s.ReorderExercises([]primitive.ObjectID{ex[2].ID, ex[0].ID, primitive.NewObjectID()}, testNow)
		require.ErrorIs(t, err, ErrValidation)
	})
	t.Run("duplicate id", func(t *testing.T) {
		err := s.ReorderExercises([]primitive.ObjectID{ex[2].ID, ex[0].ID, ex[0].ID}, testNow)
		require.ErrorIs(t, err, ErrValidation)
	})

	// Failed attempts leave the order untouched.
	unchanged := orderedExercises(s)
	for i := range ex {
		require.Equal(t, ex[i].ID, unchanged[i].ID)
	}

	require.NoError(t, s.ReorderExercises([]primitive.ObjectID{ex[2].ID, ex[0].ID, ex[1].ID}, testNow))
	reordered := orderedExercises(s)
	require.Equal(t, ex[2].ID, reordered[0].ID)
	require.Equal(t, ex[0].ID, reordered[1].ID)
	require.Equal(t, ex[1].ID, reordered[2].ID)
}

func TestUpdateExercise_PartialNotes(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)
	id := s.Exercises()[0].ID

	require.NoError(t, s.UpdateExercise(id, ptrS("elbows in"), testNow))
	require.NoError(t, s.UpdateExercise(id, nil, testNow))

	e, ok := s.Exercise(id)
	require.True(t, ok)
	require.Equal(t, "elbows in", *e.Notes)
}

func TestRemoveSet_Rules(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 3), userID, nil, testNow)
	require.NoError(t, err)
	ex := s.Exercises()[0]

	err = s.RemoveSet(ex.Sets[0].ID, false, testNow)
	require.ErrorIs(t, err, ErrPlannedSetRemoval)

	added, err := s.AddSet(ex.ID, PlannedSet{Reps: ptrI(12)}, testNow)
	require.NoError(t, err)
	require.Equal(t, 4, added.SetIndex)
	require.True(t, added.IsUserAdded)
	require.Nil(t, added.PlannedWeight)

	require.NoError(t, s.RemoveSet(added.ID, false, testNow))
	require.NoError(t, s.RemoveSet(ex.Sets[1].ID, true, testNow))

	after, _ := s.Exercise(ex.ID)
	require.Len(t, after.Sets, 2)
	require.Equal(t, ex.Sets[0].ID, after.Sets[0].ID)
	require.Equal(t, ex.Sets[2].ID, after.Sets[1].ID)
	requireDenseSets(t, after)
}

func TestUpdateSetActuals_FullReplace(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)
	setID := s.Exercises()[0].Sets[0].ID

	require.NoError(t, s.UpdateSetActuals(setID, ptrF(100), ptrI(5), ptrI(40), testNow))
	require.NoError(t, s.UpdateSetActuals(setID, ptrF(105), nil, nil, testNow.Add(time.Minute)))

	set, ok := s.Set(setID)
	require.True(t, ok)
	require.Equal(t, 105.0, *set.ActualWeight)
	require.Nil(t, set.ActualReps)
	require.Nil(t, set.ActualDurationSeconds)
	require.Equal(t, testNow.Add(time.Minute), set.UpdatedAt)
}

func TestUpdateSet_PartialPlanned(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)
	setID := s.Exercises()[0].Sets[0].ID

	require.NoError(t, s.UpdateSet(setID, PlannedSet{Reps: ptrI(3)}, testNow))

	set, _ := s.Set(setID)
	require.Equal(t, 3, *set.PlannedReps)
	require.Equal(t, 20.0, *set.PlannedWeight)
}

func TestComplete_TotalWeightLifted(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 4), userID, nil, testNow)
	require.NoError(t, err)
	sets := s.Exercises()[0].Sets

	require.NoError(t, s.UpdateSetActuals(sets[0].ID, ptrF(100), ptrI(5), nil, testNow))
	require.NoError(t, s.UpdateSetActuals(sets[1].ID, nil, ptrI(5), nil, testNow))
	require.NoError(t, s.UpdateSetActuals(sets[2].ID, ptrF(80), nil, nil, testNow))
	require.NoError(t, s.UpdateSetActuals(sets[3].ID, ptrF(60), ptrI(3), nil, testNow))

	done := testNow.Add(time.Hour)
	require.NoError(t, s.Complete(done))
	require.True(t, s.IsCompleted())
	require.Equal(t, done, *s.CompletedAt())
	require.Equal(t, 680.0, *s.TotalWeightLiftedKg())

	err = s.Complete(done.Add(time.Minute))
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, 680.0, *s.TotalWeightLiftedKg())
	require.Equal(t, done, *s.CompletedAt())
}

func TestTotalWeightLifted_RoundsToHundredths(t *testing.T) {
	sets := []SessionSet{
		{ActualWeight: ptrF(2.333), ActualReps: ptrI(3)},
		{ActualWeight: ptrF(0.1), ActualReps: ptrI(3)},
	}
	require.Equal(t, 7.3, TotalWeightLifted(sets))
	require.Equal(t, 7.0, TotalWeightLifted(sets[:1]))
	require.Equal(t, 0.0, TotalWeightLifted(nil))
}

func TestComplete_NoQualifyingSetsYieldsZero(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 2), userID, nil, testNow)
	require.NoError(t, err)
	sets := s.Exercises()[0].Sets
	require.NoError(t, s.UpdateSetActuals(sets[0].ID, ptrF(50), nil, nil, testNow))

	require.NoError(t, s.Complete(testNow))
	require.NotNil(t, s.TotalWeightLiftedKg())
	require.Equal(t, 0.0, *s.TotalWeightLiftedKg())
}

func TestCompletedSessionRejectsMutations(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)
	ex := s.Exercises()[0]
	require.NoError(t, s.Complete(testNow))

	checks := map[string]error{
		"add exercise":  func() error { _, err := s.AddExercise(NewExercise{CustomName: ptrS("x")}, testNow); return err }(),
		"remove":        s.RemoveExercise(ex.ID, testNow),
		"reorder":       s.ReorderExercises([]primitive.ObjectID{ex.ID}, testNow),
		"update":        s.UpdateExercise(ex.ID, ptrS("n"), testNow),
		"add set":       func() error { _, err := s.AddSet(ex.ID, PlannedSet{}, testNow); return err }(),
		"update set":    s.UpdateSet(ex.Sets[0].ID, PlannedSet{}, testNow),
		"remove set":    s.RemoveSet(ex.Sets[0].ID, true, testNow),
		"set actuals":   s.UpdateSetActuals(ex.Sets[0].ID, ptrF(1), ptrI(1), nil, testNow),
		"session notes": s.UpdateNotes(ptrS("n"), testNow),
	}
	for name, err := range checks {
		require.Truef(t, errors.Is(err, ErrSessionCompleted), "%s: got %v", name, err)
	}
}

func TestExercisesAreCopies(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 1, 1), userID, nil, testNow)
	require.NoError(t, err)

	view := s.Exercises()
	view[0].OrderPerformed = 99
	*view[0].Sets[0].PlannedWeight = 999
	view[0].Sets = nil

	again := s.Exercises()
	require.Equal(t, 1, again[0].OrderPerformed)
	require.Len(t, again[0].Sets, 1)
	require.Equal(t, 20.0, *again[0].Sets[0].PlannedWeight)
}

func TestSnapshotRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	s, err := StartSession(testProgram(userID, 2, 2), userID, ptrS("n"), testNow)
	require.NoError(t, err)
	s.SetVersion(7)

	restored := RestoreSession(s.Snapshot())
	require.Equal(t, s.Snapshot(), restored.Snapshot())
	require.Equal(t, int64(7), restored.Version())
}

// Any sequence of add/remove exercise operations keeps orderPerformed dense.
func TestExerciseOrderStaysDense(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		userID := primitive.NewObjectID()
		s, err := StartSession(testProgram(userID, rapid.IntRange(0, 4).Draw(r, "planned"), 1), userID, nil, testNow)
		require.NoError(r, err)

		steps := rapid.IntRange(1, 30).Draw(r, "steps")
		for i := 0; i < steps; i++ {
			now := testNow.Add(time.Duration(i) * time.Second)
			exercises := s.Exercises()
			switch rapid.IntRange(0, 2).Draw(r, "op") {
			case 0:
				_, err := s.AddExercise(NewExercise{CustomName: ptrS("x")}, now)
				require.NoError(r, err)
			case 1:
				if len(exercises) == 0 {
					continue
				}
				target := exercises[rapid.IntRange(0, len(exercises)-1).Draw(r, "target")]
				err := s.RemoveExercise(target.ID, now)
				if target.IsAdHoc {
					require.NoError(r, err)
				} else {
					require.ErrorIs(r, err, ErrValidation)
				}
			case 2:
				ids := make([]primitive.ObjectID, len(exercises))
				for j, e := range exercises {
					ids[j] = e.ID
				}
				perm := rapid.Permutation(ids).Draw(r, "perm")
				require.NoError(r, s.ReorderExercises(perm, now))
			}
			requireDenseOrder(r, s)
		}
	})
}

// Any sequence of add/remove set operations keeps setIndex dense.
func TestSetIndexStaysDense(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		userID := primitive.NewObjectID()
		s, err := StartSession(testProgram(userID, 1, rapid.IntRange(0, 5).Draw(r, "planned")), userID, nil, testNow)
		require.NoError(r, err)
		exerciseID := s.Exercises()[0].ID

		steps := rapid.IntRange(1, 30).Draw(r, "steps")
		for i := 0; i < steps; i++ {
			ex, _ := s.Exercise(exerciseID)
			if len(ex.Sets) == 0 || rapid.Bool().Draw(r, "add") {
				_, err := s.AddSet(exerciseID, PlannedSet{}, testNow)
				require.NoError(r, err)
			} else {
				target := ex.Sets[rapid.IntRange(0, len(ex.Sets)-1).Draw(r, "target")]
				allow := rapid.Bool().Draw(r, "allow")
				err := s.RemoveSet(target.ID, allow, testNow)
				if target.IsUserAdded || allow {
					require.NoError(r, err)
				} else {
					require.ErrorIs(r, err, ErrPlannedSetRemoval)
				}
			}
			ex, _ = s.Exercise(exerciseID)
			requireDenseSets(r, ex)
		}
	})
}
