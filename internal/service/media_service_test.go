package service

import (
	"strings"
	"testing"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/storage"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMediaService_UploadLifecycle(t *testing.T) {
	f := newFixture(t)
	program := f.program(t, f.userID, 1, f.exercise(t, "Deadlift", "Strength"))
	view, err := f.sessions.StartSession(f.ctx, f.userID, program.ID, nil)
	require.NoError(t, err)
	exerciseID := view.Exercises[0].ID

	files := storage.NewMemoryStorage("https://files.test")
	media := NewMediaService(memory.NewMediaRepository(), f.sessionRepo, files, logger.Nop())
	sessions := NewSessionService(f.sessionRepo, f.programRepo, f.catalog, media, f.clock, logger.Nop())

	_, err = media.RequestUploadURL(f.ctx, f.userID, view.ID, exerciseID, "image/png")
	require.ErrorIs(t, err, domain.ErrInvalidMediaContentType)
	_, err = media.RequestUploadURL(f.ctx, f.userID, view.ID, primitive.NewObjectID(), "video/mp4")
	require.ErrorIs(t, err, domain.ErrSessionExerciseNotFound)

	upload, err := media.RequestUploadURL(f.ctx, f.userID, view.ID, exerciseID, "video/mp4")
	require.NoError(t, err)
	prefix := "sessions/" + f.userID.Hex() + "/" + view.ID.Hex() + "/" + exerciseID.Hex() + "/"
	require.True(t, strings.HasPrefix(upload.ObjectKey, prefix), upload.ObjectKey)
	require.True(t, strings.HasSuffix(upload.ObjectKey, ".mp4"))
	require.True(t, strings.HasPrefix(upload.UploadURL, "https://files.test/"))

	_, err = media.ConfirmUpload(f.ctx, f.userID, view.ID, exerciseID, "sessions/elsewhere.mp4", "set1.mp4", 1024, "video/mp4")
	require.ErrorIs(t, err, domain.ErrInvalidMediaObjectKey)

	stored, err := media.ConfirmUpload(f.ctx, f.userID, view.ID, exerciseID, upload.ObjectKey, "set1.mp4", 1024, "video/mp4")
	require.NoError(t, err)
	require.False(t, stored.ID.IsZero())

	_, err = media.ConfirmUpload(f.ctx, f.userID, view.ID, exerciseID, upload.ObjectKey, "set1.mp4", 1024, "video/mp4")
	require.ErrorIs(t, err, domain.ErrConflict)

	listed, err := media.ListMedia(f.ctx, f.userID, view.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	stranger := primitive.NewObjectID()
	_, err = media.GetDownloadURL(f.ctx, stranger, stored.ID)
	require.ErrorIs(t, err, domain.ErrMediaNotFound)
	download, err := media.GetDownloadURL(f.ctx, f.userID, stored.ID)
	require.NoError(t, err)
	require.Contains(t, download, "method=GET")

	require.NoError(t, sessions.DeleteSession(f.ctx, f.userID, view.ID))
	require.Equal(t, []string{upload.ObjectKey}, files.Deleted())
	_, err = media.GetDownloadURL(f.ctx, f.userID, stored.ID)
	require.ErrorIs(t, err, domain.ErrMediaNotFound)
}
