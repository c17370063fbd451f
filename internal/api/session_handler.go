package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/service"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page size bounds for GET /sessions.
const (
	defaultPageSize = 20
	minPageSize     = 5
	maxPageSize     = 50
)

// SessionHandler exposes the workout session engine.
type SessionHandler struct {
	sessionService     service.SessionService
	progressionService service.ProgressionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, progressionService service.ProgressionService) *SessionHandler {
	return &SessionHandler{
		sessionService:     sessionService,
		progressionService: progressionService,
	}
}

// --- Request DTOs ---

type StartSessionRequest struct {
	ProgramID string  `json:"programId" binding:"required"`
	Notes     *string `json:"notes"`
}

type UpdateNotesRequest struct {
	Notes *string `json:"notes"`
}

// SetValuesRequest carries planned values. On PATCH nil fields stay unchanged.
type SetValuesRequest struct {
	Weight          *float64 `json:"weight" binding:"omitempty,gte=0"`
	Reps            *int     `json:"reps" binding:"omitempty,gte=0"`
	DurationSeconds *int     `json:"durationSeconds" binding:"omitempty,gte=0"`
	RestSeconds     *int     `json:"restSeconds" binding:"omitempty,gte=0"`
}

func (r SetValuesRequest) planned() domain.PlannedSet {
	return domain.PlannedSet{
		Weight:          r.Weight,
		Reps:            r.Reps,
		DurationSeconds: r.DurationSeconds,
		RestSeconds:     r.RestSeconds,
	}
}

// AddExerciseRequest needs either exerciseId or customName.
type AddExerciseRequest struct {
	ExerciseID    *string            `json:"exerciseId"`
	CustomName    *string            `json:"customName"`
	Category      *string            `json:"category"`
	PrimaryMuscle *string            `json:"primaryMuscle"`
	Notes         *string            `json:"notes"`
	Sets          []SetValuesRequest `json:"sets" binding:"dive"`
}

type ReorderExercisesRequest struct {
	ExerciseIDs []string `json:"exerciseIds" binding:"required"`
}

// SetActualsRequest replaces all logged values; omitted fields are cleared.
type SetActualsRequest struct {
	Weight          *float64 `json:"weight" binding:"omitempty,gte=0"`
	Reps            *int     `json:"reps" binding:"omitempty,gte=0"`
	DurationSeconds *int     `json:"durationSeconds" binding:"omitempty,gte=0"`
}

// --- Handler Methods ---

// StartSession godoc
// @Summary Start a session from a program
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body StartSessionRequest true "Program to start"
// @Success 201 {object} service.SessionView
// @Failure 404 {object} gin.H "Program not found"
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid programId format")
		return
	}

	view, err := h.sessionService.StartSession(c.Request.Context(), userID, programID, req.Notes)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListSessions godoc
// @Summary List sessions, newest first
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, completed or all"
// @Param from query string false "RFC3339 timestamp or YYYY-MM-DD"
// @Param to query string false "RFC3339 timestamp or YYYY-MM-DD"
// @Param search query string false "Matches program name and notes"
// @Param page query int false "Page number, from 1"
// @Param pageSize query int false "Between 5 and 50"
// @Success 200 {object} service.SessionPage
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	filter := repository.SessionFilter{
		Status:   repository.SessionStatus(strings.ToLower(c.DefaultQuery("status", string(repository.SessionStatusAll)))),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     max(queryInt(c, "page", 1), 1),
		PageSize: clamp(queryInt(c, "pageSize", defaultPageSize), minPageSize, maxPageSize),
	}
	var err error
	if filter.From, err = queryTime(c, "from", false); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid 'from' date")
		return
	}
	if filter.To, err = queryTime(c, "to", true); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid 'to' date")
		return
	}

	page, err := h.sessionService.ListSessions(c.Request.Context(), userID, filter)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetSession godoc
// @Summary Get a session with history hints
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} service.SessionView
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	view, err := h.sessionService.GetSession(c.Request.Context(), userID, sessionID)
	respondWithView(c, view, err)
}

// UpdateSession godoc
// @Summary Update session notes
// @Tags Sessions
// @Router /sessions/{sessionId} [patch]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	view, err := h.sessionService.UpdateSessionNotes(c.Request.Context(), userID, sessionID, req.Notes)
	respondWithView(c, view, err)
}

// CompleteSession godoc
// @Summary Complete a session and freeze its total weight lifted
// @Tags Sessions
// @Failure 409 {object} gin.H "Session already completed"
// @Router /sessions/{sessionId}/complete [post]
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	view, err := h.sessionService.CompleteSession(c.Request.Context(), userID, sessionID)
	respondWithView(c, view, err)
}

// DeleteSession godoc
// @Summary Delete a session and its media
// @Tags Sessions
// @Success 204
// @Router /sessions/{sessionId} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	if err := h.sessionService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise godoc
// @Summary Add an ad-hoc exercise
// @Tags Sessions
// @Accept json
// @Param exercise body AddExerciseRequest true "Catalog exercise or custom name"
// @Success 201 {object} service.SessionView
// @Router /sessions/{sessionId}/exercises [post]
func (h *SessionHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	in := service.AddExerciseInput{
		CustomName:    req.CustomName,
		Category:      req.Category,
		PrimaryMuscle: req.PrimaryMuscle,
		Notes:         req.Notes,
	}
	if req.ExerciseID != nil && *req.ExerciseID != "" {
		exerciseID, err := primitive.ObjectIDFromHex(*req.ExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
			return
		}
		in.ExerciseID = &exerciseID
	}
	for _, s := range req.Sets {
		in.Sets = append(in.Sets, s.planned())
	}

	view, err := h.sessionService.AddExercise(c.Request.Context(), userID, sessionID, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ReorderExercises godoc
// @Summary Reorder all exercises of a session
// @Tags Sessions
// @Accept json
// @Param order body ReorderExercisesRequest true "Every session exercise id exactly once"
// @Router /sessions/{sessionId}/exercises/order [put]
func (h *SessionHandler) ReorderExercises(c *gin.Context) {
	var req ReorderExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.ExerciseIDs))
	for _, raw := range req.ExerciseIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise id in order: "+raw)
			return
		}
		ids = append(ids, id)
	}
	view, err := h.sessionService.ReorderExercises(c.Request.Context(), userID, sessionID, ids)
	respondWithView(c, view, err)
}

// UpdateExercise godoc
// @Summary Update the notes of a session exercise
// @Tags Sessions
// @Router /sessions/{sessionId}/exercises/{exerciseId} [patch]
func (h *SessionHandler) UpdateExercise(c *gin.Context) {
	var req UpdateNotesRequest
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
	view, err := h.sessionService.UpdateExercise(c.Request.Context(), userID, sessionID, exerciseID, req.Notes)
	respondWithView(c, view, err)
}

// RemoveExercise godoc
// @Summary Remove an ad-hoc exercise
// @Tags Sessions
// @Failure 400 {object} gin.H "Exercise is part of the program"
// @Router /sessions/{sessionId}/exercises/{exerciseId} [delete]
func (h *SessionHandler) RemoveExercise(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	view, err := h.sessionService.RemoveExercise(c.Request.Context(), userID, sessionID, exerciseID)
	respondWithView(c, view, err)
}

// GetExerciseProgression godoc
// @Summary Weight lifted for this exercise across completed sessions of the program
// @Tags Sessions
// @Success 200 {array} service.ExerciseProgressionPoint
// @Router /sessions/{sessionId}/exercises/{exerciseId}/progression [get]
func (h *SessionHandler) GetExerciseProgression(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	points, err := h.progressionService.ExerciseProgression(c.Request.Context(), userID, sessionID, exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// AddSet godoc
// @Summary Append a set to a session exercise
// @Tags Sessions
// @Accept json
// @Param set body SetValuesRequest false "Planned values"
// @Success 201 {object} service.SessionView
// @Router /sessions/{sessionId}/exercises/{exerciseId}/sets [post]
func (h *SessionHandler) AddSet(c *gin.Context) {
	var req SetValuesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	view, err := h.sessionService.AddSet(c.Request.Context(), userID, sessionID, exerciseID, req.planned())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateSet godoc
// @Summary Patch the planned values of a set
// @Tags Sessions
// @Router /sessions/{sessionId}/sets/{setId} [patch]
func (h *SessionHandler) UpdateSet(c *gin.Context) {
	var req SetValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	setID, ok := objectIDParam(c, "setId")
	if !ok {
		return
	}
	view, err := h.sessionService.UpdateSet(c.Request.Context(), userID, sessionID, setID, req.planned())
	respondWithView(c, view, err)
}

// RemoveSet godoc
// @Summary Remove a set
// @Tags Sessions
// @Param allowPlannedRemoval query bool false "Allow removing sets copied from the program"
// @Router /sessions/{sessionId}/sets/{setId} [delete]
func (h *SessionHandler) RemoveSet(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	setID, ok := objectIDParam(c, "setId")
	if !ok {
		return
	}
	allowPlanned, _ := strconv.ParseBool(c.DefaultQuery("allowPlannedRemoval", "false"))
	view, err := h.sessionService.RemoveSet(c.Request.Context(), userID, sessionID, setID, allowPlanned)
	respondWithView(c, view, err)
}

// UpdateSetActuals godoc
// @Summary Log the actual weight, reps and duration of a set
// @Tags Sessions
// @Router /sessions/{sessionId}/sets/{setId}/actuals [put]
func (h *SessionHandler) UpdateSetActuals(c *gin.Context) {
	var req SetActualsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}
	setID, ok := objectIDParam(c, "setId")
	if !ok {
		return
	}
	view, err := h.sessionService.UpdateSetActuals(c.Request.Context(), userID, sessionID, setID, service.SetActuals{
		Weight:          req.Weight,
		Reps:            req.Reps,
		DurationSeconds: req.DurationSeconds,
	})
	respondWithView(c, view, err)
}

// --- Helpers ---

func sessionParams(c *gin.Context) (userID, sessionID primitive.ObjectID, ok bool) {
	if userID, ok = userIDFromContext(c); !ok {
		return
	}
	sessionID, ok = objectIDParam(c, "sessionId")
	return
}

func respondWithView(c *gin.Context, view *service.SessionView, err error) {
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// queryTime accepts RFC3339 or a bare date. A bare 'to' date covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
