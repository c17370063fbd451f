package domain

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannedSet carries target values for a set created during a session. For
// UpdateSet every nil field means "leave unchanged".
type PlannedSet struct {
	Weight          *float64
	Reps            *int
	DurationSeconds *int
	RestSeconds     *int
}

// NewExercise describes an ad-hoc exercise to append to a session.
// ExerciseID must already be verified against the catalog by the caller; when it is
// set the custom name is ignored.
type NewExercise struct {
	ExerciseID    *primitive.ObjectID
	CustomName    *string
	Category      *string
	PrimaryMuscle *string
	Notes         *string
	Sets          []PlannedSet
}

// StartSession builds a new session by copying the program's exercises and sets.
func StartSession(program *WorkoutProgram, userID primitive.ObjectID, notes *string, now time.Time) (*WorkoutSession, error) {
	if program == nil || program.UserID != userID {
		return nil, ErrProgramNotFound
	}

	s := &WorkoutSession{
		id:          primitive.NewObjectID(),
		programID:   program.ID,
		programName: program.Name,
		userID:      userID,
		startedAt:   now,
		notes:       trimmedOrNil(notes),
		createdAt:   now,
		updatedAt:   now,
	}

	// Program exercises in display order; position in the program breaks ties.
	order := make([]int, len(program.Exercises))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return program.Exercises[order[a]].DisplayOrder < program.Exercises[order[b]].DisplayOrder
	})

	for pos, idx := range order {
		pe := program.Exercises[idx]
		exerciseID := pe.ExerciseID
		programExerciseID := pe.ID
		ex := SessionExercise{
			ID:                primitive.NewObjectID(),
			SessionID:         s.id,
			ExerciseID:        &exerciseID,
			ProgramExerciseID: &programExerciseID,
			Notes:             trimmedOrNil(&pe.Notes),
			OrderPerformed:    pos + 1,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		sets := make([]ProgramSet, len(pe.Sets))
		copy(sets, pe.Sets)
		sort.SliceStable(sets, func(a, b int) bool { return sets[a].Sequence < sets[b].Sequence })
		for i, ps := range sets {
			ex.Sets = append(ex.Sets, SessionSet{
				ID:                     primitive.NewObjectID(),
				SessionExerciseID:      ex.ID,
				SetIndex:               i + 1,
				PlannedWeight:          cloneFloat(ps.TargetWeight),
				PlannedReps:            cloneInt(ps.TargetReps),
				PlannedDurationSeconds: cloneInt(ps.TargetDurationSeconds),
				RestSeconds:            cloneInt(ps.RestSeconds),
				CreatedAt:              now,
				UpdatedAt:              now,
			})
		}
		s.exercises = append(s.exercises, ex)
	}
	return s, nil
}

// AddExercise appends an ad-hoc exercise after the current last one.
func (s *WorkoutSession) AddExercise(in NewExercise, now time.Time) (SessionExercise, error) {
	if err := s.ensureActive(); err != nil {
		return SessionExercise{}, err
	}

	ex := SessionExercise{
		ID:                  primitive.NewObjectID(),
		SessionID:           s.id,
		IsAdHoc:             true,
		CustomCategory:      trimmedOrNil(in.Category),
		CustomPrimaryMuscle: trimmedOrNil(in.PrimaryMuscle),
		Notes:               cloneString(in.Notes),
		OrderPerformed:      s.maxOrderPerformed() + 1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	switch {
	case in.ExerciseID != nil && !in.ExerciseID.IsZero():
		ex.ExerciseID = cloneID(in.ExerciseID)
	case trimmedOrNil(in.CustomName) != nil:
		ex.CustomExerciseName = trimmedOrNil(in.CustomName)
	default:
		return SessionExercise{}, ErrExerciseIdentityRequired
	}

	planned := in.Sets
	if len(planned) == 0 {
		planned = []PlannedSet{{}}
	}
	for i, p := range planned {
		ex.Sets = append(ex.Sets, newUserSet(ex.ID, i+1, p, now))
	}

	s.exercises = append(s.exercises, ex)
	s.renumberExercises()
	s.touch(now)
	return ex.clone(), nil
}

// RemoveExercise deletes an ad-hoc exercise with all of its sets.
func (s *WorkoutSession) RemoveExercise(exerciseID primitive.ObjectID, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	i := s.exerciseIndex(exerciseID)
	if i < 0 {
		return ErrSessionExerciseNotFound
	}
	if s.exercises[i].IsPlanned() {
		return ErrPlannedExerciseRemoval
	}

	s.exercises = append(s.exercises[:i], s.exercises[i+1:]...)
	s.renumberExercises()
	s.touch(now)
	return nil
}

// ReorderExercises assigns orderPerformed from the position of each id in orderedIDs.
// The list must be an exact permutation of the session's exercise ids.
func (s *WorkoutSession) ReorderExercises(orderedIDs []primitive.ObjectID, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if len(orderedIDs) != len(s.exercises) {
		return ErrInvalidExerciseOrder
	}
	position := make(map[primitive.ObjectID]int, len(orderedIDs))
	for i, id := range orderedIDs {
		if _, dup := position[id]; dup {
			return ErrInvalidExerciseOrder
		}
		position[id] = i + 1
	}
	for _, e := range s.exercises {
		if _, ok := position[e.ID]; !ok {
			return ErrInvalidExerciseOrder
		}
	}

	for i := range s.exercises {
		s.exercises[i].OrderPerformed = position[s.exercises[i].ID]
		s.exercises[i].UpdatedAt = now
	}
	s.renumberExercises()
	s.touch(now)
	return nil
}

// UpdateExercise sets the notes when provided.
func (s *WorkoutSession) UpdateExercise(exerciseID primitive.ObjectID, notes *string, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	i := s.exerciseIndex(exerciseID)
	if i < 0 {
		return ErrSessionExerciseNotFound
	}
	if notes != nil {
		s.exercises[i].Notes = cloneString(notes)
	}
	s.exercises[i].UpdatedAt = now
	s.touch(now)
	return nil
}

// AddSet appends a user-added set to the exercise.
func (s *WorkoutSession) AddSet(exerciseID primitive.ObjectID, in PlannedSet, now time.Time) (SessionSet, error) {
	if err := s.ensureActive(); err != nil {
		return SessionSet{}, err
	}
	i := s.exerciseIndex(exerciseID)
	if i < 0 {
		return SessionSet{}, ErrSessionExerciseNotFound
	}
	ex := &s.exercises[i]

	next := 0
	for _, set := range ex.Sets {
		if set.SetIndex > next {
			next = set.SetIndex
		}
	}
	set := newUserSet(ex.ID, next+1, in, now)
	ex.Sets = append(ex.Sets, set)
	ex.UpdatedAt = now
	renumberSets(ex)
	s.touch(now)
	return set.clone(), nil
}

// UpdateSet patches the planned values of a set; nil fields stay unchanged.
func (s *WorkoutSession) UpdateSet(setID primitive.ObjectID, in PlannedSet, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	ei, si := s.setIndex(setID)
	if ei < 0 {
		return ErrSessionSetNotFound
	}
	set := &s.exercises[ei].Sets[si]
	if in.Weight != nil {
		set.PlannedWeight = cloneFloat(in.Weight)
	}
	if in.Reps != nil {
		set.PlannedReps = cloneInt(in.Reps)
	}
	if in.DurationSeconds != nil {
		set.PlannedDurationSeconds = cloneInt(in.DurationSeconds)
	}
	if in.RestSeconds != nil {
		set.RestSeconds = cloneInt(in.RestSeconds)
	}
	set.UpdatedAt = now
	s.touch(now)
	return nil
}

// RemoveSet deletes a set. Planned sets of planned exercises are only removable
// when allowPlannedRemoval is set.
func (s *WorkoutSession) RemoveSet(setID primitive.ObjectID, allowPlannedRemoval bool, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	ei, si := s.setIndex(setID)
	if ei < 0 {
		return ErrSessionSetNotFound
	}
	ex := &s.exercises[ei]
	if !ex.Sets[si].IsUserAdded && !ex.IsAdHoc && !allowPlannedRemoval {
		return ErrPlannedSetRemoval
	}

	ex.Sets = append(ex.Sets[:si], ex.Sets[si+1:]...)
	ex.UpdatedAt = now
	renumberSets(ex)
	s.touch(now)
	return nil
}

// UpdateSetActuals replaces the logged weight, reps and duration of a set.
// A nil value clears the field.
func (s *WorkoutSession) UpdateSetActuals(setID primitive.ObjectID, weight *float64, reps, durationSeconds *int, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	ei, si := s.setIndex(setID)
	if ei < 0 {
		return ErrSessionSetNotFound
	}
	set := &s.exercises[ei].Sets[si]
	set.ActualWeight = cloneFloat(weight)
	set.ActualReps = cloneInt(reps)
	set.ActualDurationSeconds = cloneInt(durationSeconds)
	set.UpdatedAt = now
	s.touch(now)
	return nil
}

// UpdateNotes sets the session notes when provided.
func (s *WorkoutSession) UpdateNotes(notes *string, now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if notes != nil {
		s.notes = cloneString(notes)
	}
	s.touch(now)
	return nil
}

// Complete marks the session completed and freezes the total weight lifted.
func (s *WorkoutSession) Complete(now time.Time) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	var sets []SessionSet
	for _, e := range s.exercises {
		sets = append(sets, e.Sets...)
	}
	total := TotalWeightLifted(sets)
	completedAt := now
	s.completedAt = &completedAt
	s.totalWeightLiftedKg = &total
	s.touch(now)
	return nil
}

func (s *WorkoutSession) ensureActive() error {
	if s.completedAt != nil {
		return ErrSessionCompleted
	}
	return nil
}

func (s *WorkoutSession) touch(now time.Time) {
	s.updatedAt = now
}

func (s *WorkoutSession) maxOrderPerformed() int {
	highest := 0
	for _, e := range s.exercises {
		if e.OrderPerformed > highest {
			highest = e.OrderPerformed
		}
	}
	return highest
}

// renumberExercises rewrites orderPerformed to 1..N following the current
// (orderPerformed, createdAt, creation position) order. Running it twice is a no-op.
func (s *WorkoutSession) renumberExercises() {
	order := make([]int, len(s.exercises))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := s.exercises[order[a]], s.exercises[order[b]]
		if ea.OrderPerformed != eb.OrderPerformed {
			return ea.OrderPerformed < eb.OrderPerformed
		}
		return ea.CreatedAt.Before(eb.CreatedAt)
	})
	for pos, idx := range order {
		s.exercises[idx].OrderPerformed = pos + 1
	}
}

// renumberSets sorts sets by their prior index and rewrites setIndex to 1..M.
func renumberSets(ex *SessionExercise) {
	sort.SliceStable(ex.Sets, func(a, b int) bool {
		return ex.Sets[a].SetIndex < ex.Sets[b].SetIndex
	})
	for i := range ex.Sets {
		ex.Sets[i].SetIndex = i + 1
	}
}

func newUserSet(exerciseID primitive.ObjectID, index int, p PlannedSet, now time.Time) SessionSet {
	return SessionSet{
		ID:                     primitive.NewObjectID(),
		SessionExerciseID:      exerciseID,
		SetIndex:               index,
		PlannedWeight:          cloneFloat(p.Weight),
		PlannedReps:            cloneInt(p.Reps),
		PlannedDurationSeconds: cloneInt(p.DurationSeconds),
		RestSeconds:            cloneInt(p.RestSeconds),
		IsUserAdded:            true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
