// internal/domain/session.go
package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionSet is one performed (or to-be-performed) set of a session exercise.
type SessionSet struct {
	ID                     primitive.ObjectID `bson:"_id" json:"id"`
	SessionExerciseID      primitive.ObjectID `bson:"sessionExerciseId" json:"sessionExerciseId"` // Parent key, not an owning reference
	SetIndex               int                `bson:"setIndex" json:"setIndex"`                   // 1-based, dense within the exercise
	PlannedWeight          *float64           `bson:"plannedWeight,omitempty" json:"plannedWeight,omitempty"`
	PlannedReps            *int               `bson:"plannedReps,omitempty" json:"plannedReps,omitempty"`
	PlannedDurationSeconds *int               `bson:"plannedDurationSeconds,omitempty" json:"plannedDurationSeconds,omitempty"`
	RestSeconds            *int               `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	ActualWeight           *float64           `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	ActualReps             *int               `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	ActualDurationSeconds  *int               `bson:"actualDurationSeconds,omitempty" json:"actualDurationSeconds,omitempty"`
	IsUserAdded            bool               `bson:"isUserAdded" json:"isUserAdded"` // Appended during the session rather than copied from the program
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsLogged reports whether any actual value has been recorded.
func (s SessionSet) IsLogged() bool {
	return s.ActualWeight != nil || s.ActualReps != nil || s.ActualDurationSeconds != nil
}

// WeightLifted is actualWeight*actualReps, or false when either is missing.
func (s SessionSet) WeightLifted() (float64, bool) {
	if s.ActualWeight == nil || s.ActualReps == nil {
		return 0, false
	}
	return *s.ActualWeight * float64(*s.ActualReps), true
}

func (s SessionSet) clone() SessionSet {
	c := s
	c.PlannedWeight = cloneFloat(s.PlannedWeight)
	c.PlannedReps = cloneInt(s.PlannedReps)
	c.PlannedDurationSeconds = cloneInt(s.PlannedDurationSeconds)
	c.RestSeconds = cloneInt(s.RestSeconds)
	c.ActualWeight = cloneFloat(s.ActualWeight)
	c.ActualReps = cloneInt(s.ActualReps)
	c.ActualDurationSeconds = cloneInt(s.ActualDurationSeconds)
	return c
}

// SessionExercise is one exercise slot performed within a session.
type SessionExercise struct {
	ID                  primitive.ObjectID  `bson:"_id" json:"id"`
	SessionID           primitive.ObjectID  `bson:"sessionId" json:"sessionId"`                                       // Parent key, not an owning reference
	ExerciseID          *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`               // Catalog exercise
	ProgramExerciseID   *primitive.ObjectID `bson:"programExerciseId,omitempty" json:"programExerciseId,omitempty"` // Program slot it was copied from
	IsAdHoc             bool                `bson:"isAdHoc" json:"isAdHoc"`
	CustomExerciseName  *string             `bson:"customExerciseName,omitempty" json:"customExerciseName,omitempty"`
	CustomCategory      *string             `bson:"customCategory,omitempty" json:"customCategory,omitempty"`
	CustomPrimaryMuscle *string             `bson:"customPrimaryMuscle,omitempty" json:"customPrimaryMuscle,omitempty"`
	Notes               *string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderPerformed      int                 `bson:"orderPerformed" json:"orderPerformed"` // 1-based, dense within the session
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
	Sets                []SessionSet        `bson:"sets" json:"sets"`
}

// MatchKey returns the identity used to correlate this exercise with other sessions.
func (e SessionExercise) MatchKey() MatchKey {
	return NewMatchKey(e.ProgramExerciseID, e.ExerciseID, e.CustomExerciseName)
}

// IsPlanned is true for exercises copied from the program at session start.
func (e SessionExercise) IsPlanned() bool {
	return !e.IsAdHoc
}

func (e SessionExercise) clone() SessionExercise {
	c := e
	c.ExerciseID = cloneID(e.ExerciseID)
	c.ProgramExerciseID = cloneID(e.ProgramExerciseID)
	c.CustomExerciseName = cloneString(e.CustomExerciseName)
	c.CustomCategory = cloneString(e.CustomCategory)
	c.CustomPrimaryMuscle = cloneString(e.CustomPrimaryMuscle)
	c.Notes = cloneString(e.Notes)
	c.Sets = make([]SessionSet, len(e.Sets))
	for i, s := range e.Sets {
		c.Sets[i] = s.clone()
	}
	return c
}

// SessionSnapshot is the persisted shape of a WorkoutSession. Repositories store and
// load snapshots; the aggregate itself never hands out its internal collections.
type SessionSnapshot struct {
	ID                  primitive.ObjectID `bson:"_id"`
	ProgramID           primitive.ObjectID `bson:"programId"`
	ProgramName         string             `bson:"programName"`
	UserID              primitive.ObjectID `bson:"userId"`
	StartedAt           time.Time          `bson:"startedAt"`
	CompletedAt         *time.Time         `bson:"completedAt,omitempty"`
	Notes               *string            `bson:"notes,omitempty"`
	TotalWeightLiftedKg *float64           `bson:"totalWeightLiftedKg,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt"`
	Version             int64              `bson:"version"`
	Exercises           []SessionExercise  `bson:"exercises"`
}

// WorkoutSession is the aggregate root for one performed instance of a program.
// All state changes go through its methods (see session_mutations.go).
type WorkoutSession struct {
	id                  primitive.ObjectID
	programID           primitive.ObjectID
	programName         string
	userID              primitive.ObjectID
	startedAt           time.Time
	completedAt         *time.Time
	notes               *string
	totalWeightLiftedKg *float64
	createdAt           time.Time
	updatedAt           time.Time
	version             int64
	exercises           []SessionExercise // creation order; display order is OrderPerformed
}

// RestoreSession rebuilds an aggregate from its persisted snapshot.
func RestoreSession(snap SessionSnapshot) *WorkoutSession {
	s := &WorkoutSession{
		id:                  snap.ID,
		programID:           snap.ProgramID,
		programName:         snap.ProgramName,
		userID:              snap.UserID,
		startedAt:           snap.StartedAt,
		completedAt:         cloneTime(snap.CompletedAt),
		notes:               cloneString(snap.Notes),
		totalWeightLiftedKg: cloneFloat(snap.TotalWeightLiftedKg),
		createdAt:           snap.CreatedAt,
		updatedAt:           snap.UpdatedAt,
		version:             snap.Version,
		exercises:           make([]SessionExercise, len(snap.Exercises)),
	}
	for i, e := range snap.Exercises {
		s.exercises[i] = e.clone()
	}
	return s
}

// Snapshot returns a deep copy of the aggregate state for persistence.
func (s *WorkoutSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:                  s.id,
		ProgramID:           s.programID,
		ProgramName:         s.programName,
		UserID:              s.userID,
		StartedAt:           s.startedAt,
		CompletedAt:         cloneTime(s.completedAt),
		Notes:               cloneString(s.notes),
		TotalWeightLiftedKg: cloneFloat(s.totalWeightLiftedKg),
		CreatedAt:           s.createdAt,
		UpdatedAt:           s.updatedAt,
		Version:             s.version,
		Exercises:           s.Exercises(),
	}
}

func (s *WorkoutSession) ID() primitive.ObjectID        { return s.id }
func (s *WorkoutSession) ProgramID() primitive.ObjectID { return s.programID }
func (s *WorkoutSession) ProgramName() string           { return s.programName }
func (s *WorkoutSession) UserID() primitive.ObjectID    { return s.userID }
func (s *WorkoutSession) StartedAt() time.Time          { return s.startedAt }
func (s *WorkoutSession) CompletedAt() *time.Time       { return cloneTime(s.completedAt) }
func (s *WorkoutSession) IsCompleted() bool             { return s.completedAt != nil }
func (s *WorkoutSession) Notes() *string                { return cloneString(s.notes) }
func (s *WorkoutSession) TotalWeightLiftedKg() *float64 { return cloneFloat(s.totalWeightLiftedKg) }
func (s *WorkoutSession) CreatedAt() time.Time          { return s.createdAt }
func (s *WorkoutSession) UpdatedAt() time.Time          { return s.updatedAt }
func (s *WorkoutSession) Version() int64                { return s.version }

// SetVersion records the version the store assigned on save.
func (s *WorkoutSession) SetVersion(v int64) { s.version = v }

// RecencyTime orders completed sessions for history lookups: completedAt, else startedAt.
func (s *WorkoutSession) RecencyTime() time.Time {
	if s.completedAt != nil {
		return *s.completedAt
	}
	return s.startedAt
}

// Exercises returns deep copies of the session's exercises in creation order.
func (s *WorkoutSession) Exercises() []SessionExercise {
	out := make([]SessionExercise, len(s.exercises))
	for i, e := range s.exercises {
		out[i] = e.clone()
	}
	return out
}

// Exercise returns a copy of the exercise with the given id.
func (s *WorkoutSession) Exercise(id primitive.ObjectID) (SessionExercise, bool) {
	if i := s.exerciseIndex(id); i >= 0 {
		return s.exercises[i].clone(), true
	}
	return SessionExercise{}, false
}

// HasExercise reports whether the session contains the exercise.
func (s *WorkoutSession) HasExercise(id primitive.ObjectID) bool {
	return s.exerciseIndex(id) >= 0
}

// Set returns a copy of the set with the given id.
func (s *WorkoutSession) Set(id primitive.ObjectID) (SessionSet, bool) {
	if ei, si := s.setIndex(id); ei >= 0 {
		return s.exercises[ei].Sets[si].clone(), true
	}
	return SessionSet{}, false
}

// SetCounts returns the number of logged sets and the total number of sets.
func (s *WorkoutSession) SetCounts() (logged, total int) {
	for _, e := range s.exercises {
		for _, set := range e.Sets {
			total++
			if set.IsLogged() {
				logged++
			}
		}
	}
	return logged, total
}

func (s *WorkoutSession) exerciseIndex(id primitive.ObjectID) int {
	for i := range s.exercises {
		if s.exercises[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WorkoutSession) setIndex(id primitive.ObjectID) (int, int) {
	for ei := range s.exercises {
		for si := range s.exercises[ei].Sets {
			if s.exercises[ei].Sets[si].ID == id {
				return ei, si
			}
		}
	}
	return -1, -1
}

// TotalWeightLifted sums actualWeight*actualReps over sets where both are logged.
// The result is rounded to two decimals and is 0 when nothing qualifies.
func TotalWeightLifted(sets []SessionSet) float64 {
	var total float64
	for _, set := range sets {
		if w, ok := set.WeightLifted(); ok {
			total += w
		}
	}
	return math.Round(total*100) / 100
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneID(v *primitive.ObjectID) *primitive.ObjectID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
