package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MediaHandler serves form-check videos attached to session exercises.
type MediaHandler struct {
	mediaService service.MediaService
}

func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// --- DTOs ---

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
	ContentType string `json:"contentType" binding:"required"`
}

type MediaResponse struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"sessionId"`
	SessionExerciseID string    `json:"sessionExerciseId"`
	FileName          string    `json:"fileName"`
	ContentType       string    `json:"contentType"`
	Size              int64     `json:"size"`
	UploadedAt        time.Time `json:"uploadedAt"`
}

// MapMediaToResponse converts a domain.SessionMedia to its DTO. The object key stays internal.
func MapMediaToResponse(m *domain.SessionMedia) MediaResponse {
	if m == nil {
		return MediaResponse{}
	}
	return MediaResponse{
		ID:                m.ID.Hex(),
		SessionID:         m.SessionID.Hex(),
		SessionExerciseID: m.SessionExerciseID.Hex(),
		FileName:          m.FileName,
		ContentType:       m.ContentType,
		Size:              m.Size,
		UploadedAt:        m.UploadedAt,
	}
}

// --- Handler Methods ---

// RequestUploadURL godoc
// @Summary Get a pre-signed URL to upload a video for a session exercise
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uploadRequest body RequestUploadURLRequest true "Upload content type"
// @Success 200 {object} service.UploadURLResponse "Pre-signed URL and object key"
// @Failure 400 {object} gin.H "Content type is not a video"
// @Router /sessions/{sessionId}/exercises/{exerciseId}/media/upload-url [post]
func (h *MediaHandler) RequestUploadURL(c *gin.Context) {
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	resp, err := h.mediaService.RequestUploadURL(c.Request.Context(), userID, sessionID, exerciseID, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload godoc
// @Summary Record a finished upload
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confirmRequest body ConfirmUploadRequest true "Upload confirmation details"
// @Success 201 {object} MediaResponse
// @Failure 409 {object} gin.H "Upload already confirmed"
// @Router /sessions/{sessionId}/exercises/{exerciseId}/media [post]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	media, err := h.mediaService.ConfirmUpload(c.Request.Context(), userID, sessionID, exerciseID, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapMediaToResponse(media))
}

// ListMedia godoc
// @Summary List the videos of a session
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Success 200 {array} MediaResponse
// @Router /sessions/{sessionId}/media [get]
func (h *MediaHandler) ListMedia(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	media, err := h.mediaService.ListMedia(c.Request.Context(), userID, sessionID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := make([]MediaResponse, len(media))
	for i := range media {
		resp[i] = MapMediaToResponse(&media[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetDownloadURL godoc
// @Summary Get a pre-signed URL to view a video
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param mediaId path string true "Media ID"
// @Success 200 {object} gin.H "downloadUrl"
// @Failure 404 {object} gin.H "Media not found"
// @Router /media/{mediaId}/download-url [get]
func (h *MediaHandler) GetDownloadURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	mediaID, ok := objectIDParam(c, "mediaId")
	if !ok {
		return
	}

	url, err := h.mediaService.GetDownloadURL(c.Request.Context(), userID, mediaID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
