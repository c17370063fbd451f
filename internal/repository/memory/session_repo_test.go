package memory

import (
	"context"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var base = time.Date(2025, time.January, 10, 7, 0, 0, 0, time.UTC)

func startSession(t *testing.T, userID, programID primitive.ObjectID, name string, startedAt time.Time) *domain.WorkoutSession {
	t.Helper()
	program := &domain.WorkoutProgram{ID: programID, UserID: userID, Name: name}
	s, err := domain.StartSession(program, userID, nil, startedAt)
	require.NoError(t, err)
	return s
}

func TestSessionRepository_VersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	userID := primitive.NewObjectID()

	s := startSession(t, userID, primitive.NewObjectID(), "Legs", base)
	require.NoError(t, repo.Create(ctx, s))
	require.Equal(t, int64(1), s.Version())

	first, err := repo.Load(ctx, userID, s.ID())
	require.NoError(t, err)
	second, err := repo.Load(ctx, userID, s.ID())
	require.NoError(t, err)

	require.NoError(t, first.UpdateNotes(strPtr("first"), base))
	require.NoError(t, repo.Save(ctx, first))
	require.Equal(t, int64(2), first.Version())

	require.NoError(t, second.UpdateNotes(strPtr("second"), base))
	err = repo.Save(ctx, second)
	require.ErrorIs(t, err, repository.ErrConflict)
	var conflict *repository.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, s.ID(), conflict.ID)
	require.Equal(t, int64(1), conflict.ExpectedVersion)

	stored, err := repo.Load(ctx, userID, s.ID())
	require.NoError(t, err)
	require.Equal(t, "first", *stored.Notes())
}

func TestSessionRepository_ForeignUserIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	s := startSession(t, primitive.NewObjectID(), primitive.NewObjectID(), "Legs", base)
	require.NoError(t, repo.Create(ctx, s))

	stranger := primitive.NewObjectID()
	_, err := repo.Load(ctx, stranger, s.ID())
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, stranger, s.ID()), repository.ErrNotFound)
}

func TestSessionRepository_LoadWithHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	userID, programID := primitive.NewObjectID(), primitive.NewObjectID()

	older := startSession(t, userID, programID, "Legs", base)
	require.NoError(t, older.Complete(base.Add(time.Hour)))
	newer := startSession(t, userID, programID, "Legs", base.Add(24*time.Hour))
	require.NoError(t, newer.Complete(base.Add(25*time.Hour)))
	active := startSession(t, userID, programID, "Legs", base.Add(48*time.Hour))
	otherProgram := startSession(t, userID, primitive.NewObjectID(), "Arms", base.Add(2*time.Hour))
	require.NoError(t, otherProgram.Complete(base.Add(3*time.Hour)))
	for _, s := range []*domain.WorkoutSession{older, newer, active, otherProgram} {
		require.NoError(t, repo.Create(ctx, s))
	}

	history, err := repo.LoadWithHistory(ctx, userID, programID, active.StartedAt())
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, newer.ID(), history[0].ID())
	require.Equal(t, older.ID(), history[1].ID())

	// Strictly before: a session starting at the cut-off is excluded.
	history, err = repo.LoadWithHistory(ctx, userID, programID, newer.StartedAt())
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, older.ID(), history[0].ID())

	completed, err := repo.ListCompleted(ctx, userID, programID)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	require.Equal(t, older.ID(), completed[0].ID())
}

func TestSessionRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	userID := primitive.NewObjectID()

	for i := 0; i < 7; i++ {
		name := "Push Day"
		if i%2 == 1 {
			name = "Pull Day"
		}
		s := startSession(t, userID, primitive.NewObjectID(), name, base.Add(time.Duration(i)*time.Hour))
		if i < 3 {
			require.NoError(t, s.Complete(s.StartedAt().Add(time.Minute)))
		}
		require.NoError(t, repo.Create(ctx, s))
	}
	require.NoError(t, repo.Create(ctx, startSession(t, primitive.NewObjectID(), primitive.NewObjectID(), "Push Day", base)))

	page, total, err := repo.List(ctx, userID, repository.SessionFilter{Status: repository.SessionStatusAll, Page: 1, PageSize: 5})
	require.NoError(t, err)
	require.Equal(t, int64(7), total)
	require.Len(t, page, 5)
	require.Equal(t, base.Add(6*time.Hour), page[0].StartedAt())

	page, total, err = repo.List(ctx, userID, repository.SessionFilter{Status: repository.SessionStatusAll, Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Equal(t, int64(7), total)
	require.Len(t, page, 2)

	_, total, err = repo.List(ctx, userID, repository.SessionFilter{Status: repository.SessionStatusCompleted})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	_, total, err = repo.List(ctx, userID, repository.SessionFilter{Status: repository.SessionStatusActive, Search: "PULL"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total) // hours 3 and 5

	from, to := base.Add(2*time.Hour), base.Add(4*time.Hour)
	_, total, err = repo.List(ctx, userID, repository.SessionFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
}

func strPtr(s string) *string { return &s }
