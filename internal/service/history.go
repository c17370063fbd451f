package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetHint is the "last time" value shown next to a set: what was actually done in
// the most recent matching session, or what was planned when nothing was logged.
type SetHint struct {
	Weight          *float64
	Reps            *int
	DurationSeconds *int
}

// SessionHints maps a current session exercise id to its hints by setIndex.
type SessionHints map[primitive.ObjectID]map[int]SetHint

// HistoryMatcher finds, for each exercise of a session, the same exercise in the
// user's most recent earlier completed session of the same program.
type HistoryMatcher struct {
	sessionRepo repository.SessionRepository
}

// NewHistoryMatcher creates a HistoryMatcher reading from the session store.
func NewHistoryMatcher(sessionRepo repository.SessionRepository) *HistoryMatcher {
	return &HistoryMatcher{sessionRepo: sessionRepo}
}

// Hints loads the session's history and matches it.
func (m *HistoryMatcher) Hints(ctx context.Context, session *domain.WorkoutSession) (SessionHints, error) {
	history, err := m.sessionRepo.LoadWithHistory(ctx, session.UserID(), session.ProgramID(), session.StartedAt())
	if err != nil {
		return nil, err
	}
	return MatchHistory(session, history), nil
}

// MatchHistory builds hints from history ordered newest first. The first historical
// exercise seen for a match key wins; exercises with an empty key never match.
func MatchHistory(current *domain.WorkoutSession, history []*domain.WorkoutSession) SessionHints {
	latest := make(map[domain.MatchKey]domain.SessionExercise)
	for _, past := range history {
		if past.ID() == current.ID() {
			continue
		}
		for _, e := range byOrderPerformed(past.Exercises()) {
			key := e.MatchKey()
			if key.IsEmpty() {
				continue
			}
			if _, seen := latest[key]; !seen {
				latest[key] = e
			}
		}
	}

	hints := make(SessionHints)
	for _, e := range current.Exercises() {
		key := e.MatchKey()
		if key.IsEmpty() {
			continue
		}
		match, ok := latest[key]
		if !ok {
			continue
		}
		hints[e.ID] = setHints(match.Sets)
	}
	return hints
}

// setHints picks, per setIndex, the most recently updated set.
func setHints(sets []domain.SessionSet) map[int]SetHint {
	newest := make(map[int]domain.SessionSet, len(sets))
	for _, set := range sets {
		if prev, ok := newest[set.SetIndex]; ok && !set.UpdatedAt.After(prev.UpdatedAt) {
			continue
		}
		newest[set.SetIndex] = set
	}

	out := make(map[int]SetHint, len(newest))
	for idx, set := range newest {
		out[idx] = SetHint{
			Weight:          firstFloat(set.ActualWeight, set.PlannedWeight),
			Reps:            firstInt(set.ActualReps, set.PlannedReps),
			DurationSeconds: firstInt(set.ActualDurationSeconds, set.PlannedDurationSeconds),
		}
	}
	return out
}

// byOrderPerformed sorts exercises the way they are displayed.
func byOrderPerformed(exercises []domain.SessionExercise) []domain.SessionExercise {
	sort.SliceStable(exercises, func(i, j int) bool {
		if exercises[i].OrderPerformed != exercises[j].OrderPerformed {
			return exercises[i].OrderPerformed < exercises[j].OrderPerformed
		}
		return exercises[i].CreatedAt.Before(exercises[j].CreatedAt)
	})
	return exercises
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			c := *v
			return &c
		}
	}
	return nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			c := *v
			return &c
		}
	}
	return nil
}
