package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"path" // For constructing object keys
	"strings"

	"github.com/google/uuid" // For generating unique identifiers for object keys
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUploadURLError   = errors.New("failed to generate upload URL")
	ErrDownloadURLError = errors.New("failed to generate download URL")
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key the client reports back on confirm
}

// --- Service Interface ---

// MediaService attaches form-check videos to session exercises. Media never mutates
// the session aggregate, so it is allowed on completed sessions too.
type MediaService interface {
	RequestUploadURL(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.SessionMedia, error)
	ListMedia(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error)
	GetDownloadURL(ctx context.Context, userID, mediaID primitive.ObjectID) (string, error)
	DeleteSessionMedia(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

// --- Service Implementation ---

type mediaService struct {
	mediaRepo   repository.MediaRepository
	sessionRepo repository.SessionRepository
	fileStorage storage.FileStorage
	log         *logger.Logger
}

// NewMediaService creates a new instance of mediaService.
func NewMediaService(
	mediaRepo repository.MediaRepository,
	sessionRepo repository.SessionRepository,
	fileStorage storage.FileStorage,
	log *logger.Logger,
) MediaService {
	return &mediaService{
		mediaRepo:   mediaRepo,
		sessionRepo: sessionRepo,
		fileStorage: fileStorage,
		log:         log,
	}
}

// RequestUploadURL generates a pre-signed PUT URL for a video of a session exercise.
func (s *mediaService) RequestUploadURL(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if !isVideo(contentType) {
		return nil, domain.ErrInvalidMediaContentType
	}
	if err := s.verifyExercise(ctx, userID, sessionID, sessionExerciseID); err != nil {
		return nil, err
	}

	// Unique object key: sessions/<user>/<session>/<exercise>/<uuid>.<ext>
	fileExtension := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join(mediaPrefix(userID, sessionID, sessionExerciseID), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		s.log.Error("presign upload failed", "objectKey", objectKey, "error", err)
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmUpload records the metadata after the client finished the upload.
func (s *mediaService) ConfirmUpload(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.SessionMedia, error) {
	if !isVideo(contentType) {
		return nil, domain.ErrInvalidMediaContentType
	}
	if !strings.HasPrefix(objectKey, mediaPrefix(userID, sessionID, sessionExerciseID)+"/") {
		return nil, domain.ErrInvalidMediaObjectKey
	}
	if err := s.verifyExercise(ctx, userID, sessionID, sessionExerciseID); err != nil {
		return nil, err
	}

	media := &domain.SessionMedia{
		SessionID:         sessionID,
		SessionExerciseID: sessionExerciseID,
		UserID:            userID,
		ObjectKey:         objectKey,
		FileName:          fileName,
		ContentType:       contentType,
		Size:              fileSize,
		// ID, UploadedAt set by repository
	}
	if _, err := s.mediaRepo.Create(ctx, media); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: upload already confirmed", domain.ErrConflict)
		}
		return nil, err
	}
	s.log.Info("session media stored", "sessionId", sessionID.Hex(), "mediaId", media.ID.Hex(), "size", fileSize)
	return media, nil
}

// ListMedia lists the media of a session the user owns.
func (s *mediaService) ListMedia(ctx context.Context, userID, sessionID primitive.ObjectID) ([]domain.SessionMedia, error) {
	if _, err := s.sessionRepo.Load(ctx, userID, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return s.mediaRepo.ListBySession(ctx, userID, sessionID)
}

// GetDownloadURL generates a temporary GET URL for one of the user's videos.
func (s *mediaService) GetDownloadURL(ctx context.Context, userID, mediaID primitive.ObjectID) (string, error) {
	media, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.ErrMediaNotFound
		}
		return "", err
	}
	if media.UserID != userID {
		return "", domain.ErrMediaNotFound
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, media.ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		s.log.Error("presign download failed", "mediaId", mediaID.Hex(), "error", err)
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}

// DeleteSessionMedia removes the metadata and the stored objects of a session.
// Object deletion is best effort; every failure is logged and the first is returned.
func (s *mediaService) DeleteSessionMedia(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	removed, err := s.mediaRepo.DeleteBySession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, m := range removed {
		if err := s.fileStorage.DeleteObject(ctx, m.ObjectKey); err != nil {
			s.log.Warn("failed to delete media object", "objectKey", m.ObjectKey, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *mediaService) verifyExercise(ctx context.Context, userID, sessionID, sessionExerciseID primitive.ObjectID) error {
	session, err := s.sessionRepo.Load(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrSessionNotFound
		}
		return err
	}
	if !session.HasExercise(sessionExerciseID) {
		return domain.ErrSessionExerciseNotFound
	}
	return nil
}

func mediaPrefix(userID, sessionID, sessionExerciseID primitive.ObjectID) string {
	return path.Join("sessions", userID.Hex(), sessionID.Hex(), sessionExerciseID.Hex())
}

func isVideo(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "video/") && len(ct) > len("video/")
}
