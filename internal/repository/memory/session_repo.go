// Package memory provides in-memory repositories for local development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionRepository stores session snapshots in memory. It applies the same
// version rule as the Mongo implementation.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[primitive.ObjectID]domain.SessionSnapshot
}

// NewSessionRepository constructs an empty store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[primitive.ObjectID]domain.SessionSnapshot)}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// Create implements repository.SessionRepository.
func (r *SessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID()]; exists {
		return repository.ErrDuplicate
	}
	snap := session.Snapshot()
	snap.Version = 1
	r.sessions[snap.ID] = snap
	session.SetVersion(snap.Version)
	return nil
}

// Load implements repository.SessionRepository.
func (r *SessionRepository) Load(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.sessions[sessionID]
	if !ok || snap.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return domain.RestoreSession(snap), nil
}

// LoadWithHistory implements repository.SessionRepository.
func (r *SessionRepository) LoadWithHistory(ctx context.Context, userID, programID primitive.ObjectID, before time.Time) ([]*domain.WorkoutSession, error) {
	sessions := r.collect(func(s domain.SessionSnapshot) bool {
		return s.UserID == userID && s.ProgramID == programID && s.CompletedAt != nil && s.StartedAt.Before(before)
	})
	sort.SliceStable(sessions, func(i, j int) bool {
		ri, rj := sessions[i].RecencyTime(), sessions[j].RecencyTime()
		if !ri.Equal(rj) {
			return ri.After(rj)
		}
		return sessions[i].StartedAt().After(sessions[j].StartedAt())
	})
	return sessions, nil
}

// ListCompleted implements repository.SessionRepository.
func (r *SessionRepository) ListCompleted(ctx context.Context, userID, programID primitive.ObjectID) ([]*domain.WorkoutSession, error) {
	sessions := r.collect(func(s domain.SessionSnapshot) bool {
		return s.UserID == userID && s.ProgramID == programID && s.CompletedAt != nil
	})
	sort.SliceStable(sessions, func(i, j int) bool {
		ci, cj := *sessions[i].CompletedAt(), *sessions[j].CompletedAt()
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return sessions[i].ID().Hex() < sessions[j].ID().Hex()
	})
	return sessions, nil
}

// List implements repository.SessionRepository.
func (r *SessionRepository) List(ctx context.Context, userID primitive.ObjectID, f repository.SessionFilter) ([]*domain.WorkoutSession, int64, error) {
	search := strings.ToLower(f.Search)
	sessions := r.collect(func(s domain.SessionSnapshot) bool {
		if s.UserID != userID {
			return false
		}
		switch f.Status {
		case repository.SessionStatusActive:
			if s.CompletedAt != nil {
				return false
			}
		case repository.SessionStatusCompleted:
			if s.CompletedAt == nil {
				return false
			}
		}
		if f.From != nil && s.StartedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && s.StartedAt.After(*f.To) {
			return false
		}
		if search != "" {
			notes := ""
			if s.Notes != nil {
				notes = *s.Notes
			}
			if !strings.Contains(strings.ToLower(s.ProgramName), search) && !strings.Contains(strings.ToLower(notes), search) {
				return false
			}
		}
		return true
	})
	sort.SliceStable(sessions, func(i, j int) bool {
		si, sj := sessions[i].StartedAt(), sessions[j].StartedAt()
		if !si.Equal(sj) {
			return si.After(sj)
		}
		return sessions[i].ID().Hex() > sessions[j].ID().Hex()
	})

	total := int64(len(sessions))
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start >= len(sessions) {
			return []*domain.WorkoutSession{}, total, nil
		}
		end := start + f.PageSize
		if end > len(sessions) {
			end = len(sessions)
		}
		sessions = sessions[start:end]
	}
	return sessions, total, nil
}

// Save implements repository.SessionRepository.
func (r *SessionRepository) Save(ctx context.Context, session *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID()]
	if !ok || stored.UserID != session.UserID() {
		return repository.ErrNotFound
	}
	expected := session.Version()
	if stored.Version != expected {
		return &repository.ConflictError{Entity: "WorkoutSession", ID: session.ID(), ExpectedVersion: expected}
	}
	snap := session.Snapshot()
	snap.Version = expected + 1
	r.sessions[snap.ID] = snap
	session.SetVersion(snap.Version)
	return nil
}

// Delete implements repository.SessionRepository.
func (r *SessionRepository) Delete(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.sessions[sessionID]
	if !ok || snap.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *SessionRepository) collect(keep func(domain.SessionSnapshot) bool) []*domain.WorkoutSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.WorkoutSession, 0)
	for _, snap := range r.sessions {
		if keep(snap) {
			out = append(out, domain.RestoreSession(snap))
		}
	}
	return out
}
