package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/observability"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Inputs ---

// AddExerciseInput selects the identity of an ad-hoc exercise: a catalog exercise id
// or a custom name. When both are given the catalog exercise wins.
type AddExerciseInput struct {
	ExerciseID    *primitive.ObjectID
	CustomName    *string
	Category      *string
	PrimaryMuscle *string
	Notes         *string
	Sets          []domain.PlannedSet
}

// SetActuals is the logged result of a set. Nil fields are cleared.
type SetActuals struct {
	Weight          *float64
	Reps            *int
	DurationSeconds *int
}

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID                  primitive.ObjectID `json:"id"`
	ProgramID           primitive.ObjectID `json:"programId"`
	ProgramName         string             `json:"programName"`
	StartedAt           time.Time          `json:"startedAt"`
	CompletedAt         *time.Time         `json:"completedAt,omitempty"`
	Notes               *string            `json:"notes,omitempty"`
	TotalWeightLiftedKg *float64           `json:"totalWeightLiftedKg,omitempty"`
	ExerciseCount       int                `json:"exerciseCount"`
	LoggedSets          int                `json:"loggedSets"`
	TotalSets           int                `json:"totalSets"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// SessionPage is one page of SessionSummary rows.
type SessionPage struct {
	Items    []SessionSummary `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// MediaCleaner removes the media attached to a session when the session is deleted.
type MediaCleaner interface {
	DeleteSessionMedia(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

// --- Service Interface ---
type SessionService interface {
	StartSession(ctx context.Context, userID, programID primitive.ObjectID, notes *string) (*SessionView, error)
	GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionView, error)
	ListSessions(ctx context.Context, userID primitive.ObjectID, filter repository.SessionFilter) (*SessionPage, error)

	AddExercise(ctx context.Context, userID, sessionID primitive.ObjectID, in AddExerciseInput) (*SessionView, error)
	RemoveExercise(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID) (*SessionView, error)
	ReorderExercises(ctx context.Context, userID, sessionID primitive.ObjectID, orderedIDs []primitive.ObjectID) (*SessionView, error)
	UpdateExercise(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID, notes *string) (*SessionView, error)

	AddSet(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID, in domain.PlannedSet) (*SessionView, error)
	UpdateSet(ctx context.Context, userID, sessionID, setID primitive.ObjectID, in domain.PlannedSet) (*SessionView, error)
	RemoveSet(ctx context.Context, userID, sessionID, setID primitive.ObjectID, allowPlannedRemoval bool) (*SessionView, error)
	UpdateSetActuals(ctx context.Context, userID, sessionID, setID primitive.ObjectID, in SetActuals) (*SessionView, error)

	UpdateSessionNotes(ctx context.Context, userID, sessionID primitive.ObjectID, notes *string) (*SessionView, error)
	CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionView, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

// --- Service Implementation ---

type sessionService struct {
	sessionRepo repository.SessionRepository
	programRepo repository.ProgramRepository
	catalog     CatalogLookup
	history     *HistoryMatcher
	projector   SessionProjector
	media       MediaCleaner
	clock       Clock
	log         *logger.Logger
}

// NewSessionService wires the session engine. media may be nil when no object
// storage is configured.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	programRepo repository.ProgramRepository,
	catalog CatalogLookup,
	media MediaCleaner,
	clock Clock,
	log *logger.Logger,
) SessionService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &sessionService{
		sessionRepo: sessionRepo,
		programRepo: programRepo,
		catalog:     catalog,
		history:     NewHistoryMatcher(sessionRepo),
		media:       media,
		clock:       clock,
		log:         log,
	}
}

// StartSession copies the user's program into a new active session.
func (s *sessionService) StartSession(ctx context.Context, userID, programID primitive.ObjectID, notes *string) (*SessionView, error) {
	const op = "start_session"

	program, err := s.programRepo.GetOwned(ctx, userID, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = domain.ErrProgramNotFound
		}
		return nil, s.fail(op, err)
	}

	session, err := domain.StartSession(program, userID, notes, s.clock.Now())
	if err != nil {
		return nil, s.fail(op, err)
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, s.fail(op, err)
	}
	observability.RecordSessionMutation(op, observability.ResultOK)
	s.log.Info("session started", "sessionId", session.ID().Hex(), "programId", programID.Hex(), "exercises", len(program.Exercises))
	return s.view(ctx, userID, session.ID())
}

func (s *sessionService) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionView, error) {
	return s.view(ctx, userID, sessionID)
}

// ListSessions returns the user's sessions, newest first.
func (s *sessionService) ListSessions(ctx context.Context, userID primitive.ObjectID, filter repository.SessionFilter) (*SessionPage, error) {
	switch filter.Status {
	case "":
		filter.Status = repository.SessionStatusAll
	case repository.SessionStatusAll, repository.SessionStatusActive, repository.SessionStatusCompleted:
	default:
		return nil, domain.ErrInvalidStatusFilter
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.ErrInvalidDateRange
	}

	sessions, total, err := s.sessionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	page := &SessionPage{
		Items:    make([]SessionSummary, 0, len(sessions)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for _, session := range sessions {
		logged, totalSets := session.SetCounts()
		page.Items = append(page.Items, SessionSummary{
			ID:                  session.ID(),
			ProgramID:           session.ProgramID(),
			ProgramName:         session.ProgramName(),
			StartedAt:           session.StartedAt(),
			CompletedAt:         session.CompletedAt(),
			Notes:               session.Notes(),
			TotalWeightLiftedKg: session.TotalWeightLiftedKg(),
			ExerciseCount:       len(session.Exercises()),
			LoggedSets:          logged,
			TotalSets:           totalSets,
			UpdatedAt:           session.UpdatedAt(),
		})
	}
	return page, nil
}

// AddExercise appends an ad-hoc exercise. A catalog id must resolve; it is looked up
// only once the session is known to be owned and active.
func (s *sessionService) AddExercise(ctx context.Context, userID, sessionID primitive.ObjectID, in AddExerciseInput) (*SessionView, error) {
	return s.mutate(ctx, "add_exercise", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		if session.IsCompleted() {
			return domain.ErrSessionCompleted
		}
		next := domain.NewExercise{
			CustomName:    in.CustomName,
			Category:      in.Category,
			PrimaryMuscle: in.PrimaryMuscle,
			Notes:         in.Notes,
			Sets:          in.Sets,
		}
		if in.ExerciseID != nil && !in.ExerciseID.IsZero() {
			entry, err := s.catalog.GetExercise(ctx, *in.ExerciseID)
			if err != nil {
				if errors.Is(err, domain.ErrExerciseNotFound) {
					return domain.ErrExerciseIdentityRequired
				}
				return err
			}
			next.ExerciseID = &entry.ID
			if next.Category == nil && entry.Category != "" {
				next.Category = &entry.Category
			}
			if next.PrimaryMuscle == nil && entry.PrimaryMuscle != "" {
				next.PrimaryMuscle = &entry.PrimaryMuscle
			}
		}
		_, err := session.AddExercise(next, now)
		return err
	})
}

func (s *sessionService) RemoveExercise(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID) (*SessionView, error) {
	return s.mutate(ctx, "remove_exercise", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.RemoveExercise(exerciseID, now)
	})
}

func (s *sessionService) ReorderExercises(ctx context.Context, userID, sessionID primitive.ObjectID, orderedIDs []primitive.ObjectID) (*SessionView, error) {
	return s.mutate(ctx, "reorder_exercises", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.ReorderExercises(orderedIDs, now)
	})
}

func (s *sessionService) UpdateExercise(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID, notes *string) (*SessionView, error) {
	return s.mutate(ctx, "update_exercise", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.UpdateExercise(exerciseID, notes, now)
	})
}

func (s *sessionService) AddSet(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID, in domain.PlannedSet) (*SessionView, error) {
	return s.mutate(ctx, "add_set", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		_, err := session.AddSet(exerciseID, in, now)
		return err
	})
}

func (s *sessionService) UpdateSet(ctx context.Context, userID, sessionID, setID primitive.ObjectID, in domain.PlannedSet) (*SessionView, error) {
	return s.mutate(ctx, "update_set", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.UpdateSet(setID, in, now)
	})
}

func (s *sessionService) RemoveSet(ctx context.Context, userID, sessionID, setID primitive.ObjectID, allowPlannedRemoval bool) (*SessionView, error) {
	return s.mutate(ctx, "remove_set", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.RemoveSet(setID, allowPlannedRemoval, now)
	})
}

func (s *sessionService) UpdateSetActuals(ctx context.Context, userID, sessionID, setID primitive.ObjectID, in SetActuals) (*SessionView, error) {
	return s.mutate(ctx, "update_set_actuals", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.UpdateSetActuals(setID, in.Weight, in.Reps, in.DurationSeconds, now)
	})
}

func (s *sessionService) UpdateSessionNotes(ctx context.Context, userID, sessionID primitive.ObjectID, notes *string) (*SessionView, error) {
	return s.mutate(ctx, "update_session_notes", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.UpdateNotes(notes, now)
	})
}

// CompleteSession freezes the session and its total weight lifted.
func (s *sessionService) CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionView, error) {
	view, err := s.mutate(ctx, "complete_session", userID, sessionID, func(session *domain.WorkoutSession, now time.Time) error {
		return session.Complete(now)
	})
	if err != nil {
		return nil, err
	}
	observability.RecordSessionCompleted()
	return view, nil
}

// DeleteSession removes the session, then its media. Completed sessions may be deleted.
func (s *sessionService) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	const op = "delete_session"

	if err := s.sessionRepo.Delete(ctx, userID, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = domain.ErrSessionNotFound
		}
		return s.fail(op, err)
	}
	if s.media != nil {
		if err := s.media.DeleteSessionMedia(ctx, userID, sessionID); err != nil {
			// The session is gone already; orphaned media is only logged.
			s.log.Error("failed to delete session media", "sessionId", sessionID.Hex(), "error", err)
		}
	}
	observability.RecordSessionMutation(op, observability.ResultOK)
	return nil
}

// mutate runs one load -> apply -> save transaction and returns the reloaded view.
func (s *sessionService) mutate(ctx context.Context, op string, userID, sessionID primitive.ObjectID, apply func(*domain.WorkoutSession, time.Time) error) (*SessionView, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if err := apply(session, s.clock.Now()); err != nil {
		return nil, s.fail(op, err)
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, s.fail(op, s.saveError(op, session, err))
	}
	observability.RecordSessionMutation(op, observability.ResultOK)
	return s.view(ctx, userID, sessionID)
}

func (s *sessionService) load(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.Load(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// view reloads the session and projects it with catalog entries and history hints.
func (s *sessionService) view(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionView, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for _, e := range session.Exercises() {
		if e.ExerciseID != nil {
			ids = append(ids, *e.ExerciseID)
		}
	}
	catalog, err := s.catalog.GetExercises(ctx, ids)
	if err != nil {
		return nil, err
	}
	hints, err := s.history.Hints(ctx, session)
	if err != nil {
		return nil, err
	}

	view := s.projector.Project(session, catalog, hints, s.clock.Now())
	return &view, nil
}

// saveError translates store failures. Version conflicts are logged with the
// pending state and are not retried.
func (s *sessionService) saveError(op string, session *domain.WorkoutSession, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrSessionNotFound
	}
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		observability.RecordSessionSaveConflict()
		logged, total := session.SetCounts()
		s.log.Warn("session save conflict",
			"operation", op,
			"entity", conflict.Entity,
			"id", conflict.ID.Hex(),
			"expectedVersion", conflict.ExpectedVersion,
			"exercises", len(session.Exercises()),
			"sets", total,
			"loggedSets", logged,
			"completed", session.IsCompleted(),
		)
		return domain.ErrSessionModified
	}
	return err
}

// fail records the outcome and logs unexpected errors.
func (s *sessionService) fail(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		observability.RecordSessionMutation(op, observability.ResultNotFound)
		s.log.Debug("session operation rejected", "operation", op, "error", err)
	case errors.Is(err, domain.ErrValidation):
		observability.RecordSessionMutation(op, observability.ResultValidation)
		s.log.Debug("session operation rejected", "operation", op, "error", err)
	case errors.Is(err, domain.ErrConflict):
		observability.RecordSessionMutation(op, observability.ResultConflict)
		s.log.Debug("session operation rejected", "operation", op, "error", err)
	default:
		observability.RecordSessionMutation(op, observability.ResultError)
		s.log.Error("session operation failed", "operation", op, "error", err)
	}
	return err
}
