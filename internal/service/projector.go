package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// customExerciseFallback names an ad-hoc exercise that has neither a custom name
// nor a resolvable catalog entry.
const customExerciseFallback = "Custom Exercise"

// SessionView is the read model returned by every session operation.
type SessionView struct {
	ID                  primitive.ObjectID `json:"id"`
	ProgramID           primitive.ObjectID `json:"programId"`
	ProgramName         string             `json:"programName"`
	StartedAt           time.Time          `json:"startedAt"`
	CompletedAt         *time.Time         `json:"completedAt,omitempty"`
	IsCompleted         bool               `json:"isCompleted"`
	Notes               *string            `json:"notes,omitempty"`
	TotalWeightLiftedKg *float64           `json:"totalWeightLiftedKg,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
	Version             int64              `json:"version"`
	Summary             SessionStats       `json:"summary"`
	Exercises           []ExerciseView     `json:"exercises"`
}

// SessionStats is the derived summary of a session.
type SessionStats struct {
	DurationSeconds     int64    `json:"durationSeconds"`
	LoggedSets          int      `json:"loggedSets"`
	TotalSets           int      `json:"totalSets"`
	TotalWeightLiftedKg *float64 `json:"totalWeightLiftedKg,omitempty"`
}

type ExerciseView struct {
	ID                 primitive.ObjectID  `json:"id"`
	ExerciseID         *primitive.ObjectID `json:"exerciseId,omitempty"`
	ProgramExerciseID  *primitive.ObjectID `json:"programExerciseId,omitempty"`
	IsAdHoc            bool                `json:"isAdHoc"`
	IsCatalogExercise  bool                `json:"isCatalogExercise"`
	DisplayName        string              `json:"displayName"`
	CustomExerciseName *string             `json:"customExerciseName,omitempty"`
	Category           string              `json:"category,omitempty"`
	PrimaryMuscle      string              `json:"primaryMuscle,omitempty"`
	Notes              *string             `json:"notes,omitempty"`
	OrderPerformed     int                 `json:"orderPerformed"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	Sets               []SetView           `json:"sets"`
}

type SetView struct {
	ID                     primitive.ObjectID `json:"id"`
	SetIndex               int                `json:"setIndex"`
	PlannedWeight          *float64           `json:"plannedWeight,omitempty"`
	PlannedReps            *int               `json:"plannedReps,omitempty"`
	PlannedDurationSeconds *int               `json:"plannedDurationSeconds,omitempty"`
	RestSeconds            *int               `json:"restSeconds,omitempty"`
	ActualWeight           *float64           `json:"actualWeight,omitempty"`
	ActualReps             *int               `json:"actualReps,omitempty"`
	ActualDurationSeconds  *int               `json:"actualDurationSeconds,omitempty"`
	IsUserAdded            bool               `json:"isUserAdded"`
	IsLogged               bool               `json:"isLogged"`
	LastWeight             *float64           `json:"lastWeight"`
	LastReps               *int               `json:"lastReps"`
	LastDurationSeconds    *int               `json:"lastDurationSeconds"`
	CreatedAt              time.Time          `json:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt"`
}

// SessionProjector turns an aggregate plus catalog entries and history hints into
// a SessionView. It performs no I/O.
type SessionProjector struct{}

// Project builds the view. now is only used for the duration of an active session.
func (SessionProjector) Project(session *domain.WorkoutSession, catalog map[primitive.ObjectID]domain.Exercise, hints SessionHints, now time.Time) SessionView {
	logged, total := session.SetCounts()
	view := SessionView{
		ID:                  session.ID(),
		ProgramID:           session.ProgramID(),
		ProgramName:         session.ProgramName(),
		StartedAt:           session.StartedAt(),
		CompletedAt:         session.CompletedAt(),
		IsCompleted:         session.IsCompleted(),
		Notes:               session.Notes(),
		TotalWeightLiftedKg: session.TotalWeightLiftedKg(),
		CreatedAt:           session.CreatedAt(),
		UpdatedAt:           session.UpdatedAt(),
		Version:             session.Version(),
		Summary: SessionStats{
			DurationSeconds:     sessionDuration(session, now),
			LoggedSets:          logged,
			TotalSets:           total,
			TotalWeightLiftedKg: session.TotalWeightLiftedKg(),
		},
	}

	exercises := byOrderPerformed(session.Exercises())
	view.Exercises = make([]ExerciseView, 0, len(exercises))
	for _, e := range exercises {
		view.Exercises = append(view.Exercises, projectExercise(e, catalog, hints[e.ID]))
	}
	return view
}

func projectExercise(e domain.SessionExercise, catalog map[primitive.ObjectID]domain.Exercise, hints map[int]SetHint) ExerciseView {
	var entry *domain.Exercise
	if e.ExerciseID != nil {
		if found, ok := catalog[*e.ExerciseID]; ok {
			entry = &found
		}
	}

	view := ExerciseView{
		ID:                 e.ID,
		ExerciseID:         e.ExerciseID,
		ProgramExerciseID:  e.ProgramExerciseID,
		IsAdHoc:            e.IsAdHoc,
		IsCatalogExercise:  e.ExerciseID != nil,
		DisplayName:        displayName(e, entry),
		CustomExerciseName: e.CustomExerciseName,
		Notes:              e.Notes,
		OrderPerformed:     e.OrderPerformed,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
		Sets:               make([]SetView, 0, len(e.Sets)),
	}
	view.Category = valueOr(e.CustomCategory, func() string {
		if entry != nil {
			return entry.Category
		}
		return ""
	})
	view.PrimaryMuscle = valueOr(e.CustomPrimaryMuscle, func() string {
		if entry != nil {
			return entry.PrimaryMuscle
		}
		return ""
	})

	sets := append([]domain.SessionSet(nil), e.Sets...)
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].SetIndex < sets[j].SetIndex })
	for _, set := range sets {
		sv := SetView{
			ID:                     set.ID,
			SetIndex:               set.SetIndex,
			PlannedWeight:          set.PlannedWeight,
			PlannedReps:            set.PlannedReps,
			PlannedDurationSeconds: set.PlannedDurationSeconds,
			RestSeconds:            set.RestSeconds,
			ActualWeight:           set.ActualWeight,
			ActualReps:             set.ActualReps,
			ActualDurationSeconds:  set.ActualDurationSeconds,
			IsUserAdded:            set.IsUserAdded,
			IsLogged:               set.IsLogged(),
			CreatedAt:              set.CreatedAt,
			UpdatedAt:              set.UpdatedAt,
		}
		if hint, ok := hints[set.SetIndex]; ok {
			sv.LastWeight = hint.Weight
			sv.LastReps = hint.Reps
			sv.LastDurationSeconds = hint.DurationSeconds
		}
		view.Sets = append(view.Sets, sv)
	}
	return view
}

// displayName prefers the custom name for ad-hoc exercises and the catalog name for
// planned ones.
func displayName(e domain.SessionExercise, entry *domain.Exercise) string {
	catalogName := ""
	if entry != nil {
		catalogName = entry.Name
	}
	customName := ""
	if e.CustomExerciseName != nil {
		customName = *e.CustomExerciseName
	}

	if e.IsAdHoc {
		switch {
		case customName != "":
			return customName
		case catalogName != "":
			return catalogName
		default:
			return customExerciseFallback
		}
	}
	if catalogName != "" {
		return catalogName
	}
	return customName
}

func sessionDuration(session *domain.WorkoutSession, now time.Time) int64 {
	end := now
	if completedAt := session.CompletedAt(); completedAt != nil {
		end = *completedAt
	}
	d := end.Sub(session.StartedAt())
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func valueOr(v *string, fallback func() string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback()
}
