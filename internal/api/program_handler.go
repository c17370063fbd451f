package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler serves workout programs and their progression.
type ProgramHandler struct {
	programService     service.ProgramService
	progressionService service.ProgressionService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService, progressionService service.ProgressionService) *ProgramHandler {
	return &ProgramHandler{
		programService:     programService,
		progressionService: progressionService,
	}
}

// --- DTOs ---

type ProgramSetRequest struct {
	TargetWeight          *float64 `json:"targetWeight" binding:"omitempty,gte=0"`
	TargetReps            *int     `json:"targetReps" binding:"omitempty,gte=0"`
	TargetDurationSeconds *int     `json:"targetDurationSeconds" binding:"omitempty,gte=0"`
	RestSeconds           *int     `json:"restSeconds" binding:"omitempty,gte=0"`
}

type ProgramExerciseRequest struct {
	ExerciseID string              `json:"exerciseId" binding:"required"`
	Notes      string              `json:"notes"`
	Sets       []ProgramSetRequest `json:"sets" binding:"dive"`
}

// CreateProgramRequest lists exercises in display order and their sets in sequence order.
type CreateProgramRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Exercises   []ProgramExerciseRequest `json:"exercises" binding:"dive"`
}

type ProgramSetResponse struct {
	ID                    string   `json:"id"`
	Sequence              int      `json:"sequence"`
	TargetWeight          *float64 `json:"targetWeight,omitempty"`
	TargetReps            *int     `json:"targetReps,omitempty"`
	TargetDurationSeconds *int     `json:"targetDurationSeconds,omitempty"`
	RestSeconds           *int     `json:"restSeconds,omitempty"`
}

type ProgramExerciseResponse struct {
	ID           string               `json:"id"`
	ExerciseID   string               `json:"exerciseId"`
	DisplayOrder int                  `json:"displayOrder"`
	Notes        string               `json:"notes,omitempty"`
	Sets         []ProgramSetResponse `json:"sets"`
}

type ProgramResponse struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Exercises   []ProgramExerciseResponse `json:"exercises"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// MapProgramToResponse converts a domain.WorkoutProgram to its DTO.
func MapProgramToResponse(p *domain.WorkoutProgram) ProgramResponse {
	if p == nil {
		return ProgramResponse{}
	}
	resp := ProgramResponse{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Exercises:   make([]ProgramExerciseResponse, 0, len(p.Exercises)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, e := range p.Exercises {
		er := ProgramExerciseResponse{
			ID:           e.ID.Hex(),
			ExerciseID:   e.ExerciseID.Hex(),
			DisplayOrder: e.DisplayOrder,
			Notes:        e.Notes,
			Sets:         make([]ProgramSetResponse, 0, len(e.Sets)),
		}
		for _, s := range e.Sets {
			er.Sets = append(er.Sets, ProgramSetResponse{
				ID:                    s.ID.Hex(),
				Sequence:              s.Sequence,
				TargetWeight:          s.TargetWeight,
				TargetReps:            s.TargetReps,
				TargetDurationSeconds: s.TargetDurationSeconds,
				RestSeconds:           s.RestSeconds,
			})
		}
		resp.Exercises = append(resp.Exercises, er)
	}
	return resp
}

// --- Handler Methods ---

// CreateProgram godoc
// @Summary Create a workout program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param program body CreateProgramRequest true "Program template"
// @Success 201 {object} ProgramResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	inputs := make([]service.ProgramExerciseInput, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		exerciseID, err := primitive.ObjectIDFromHex(e.ExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
			return
		}
		in := service.ProgramExerciseInput{ExerciseID: exerciseID, Notes: e.Notes}
		for _, s := range e.Sets {
			in.Sets = append(in.Sets, service.ProgramSetInput{
				TargetWeight:          s.TargetWeight,
				TargetReps:            s.TargetReps,
				TargetDurationSeconds: s.TargetDurationSeconds,
				RestSeconds:           s.RestSeconds,
			})
		}
		inputs = append(inputs, in)
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), userID, req.Name, req.Description, inputs)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapProgramToResponse(program))
}

// GetPrograms godoc
// @Summary List the authenticated user's programs
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProgramResponse
// @Router /programs [get]
func (h *ProgramHandler) GetPrograms(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	programs, err := h.programService.GetPrograms(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := make([]ProgramResponse, len(programs))
	for i := range programs {
		resp[i] = MapProgramToResponse(&programs[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetProgram godoc
// @Summary Get one program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} ProgramResponse
// @Failure 404 {object} gin.H "Program not found"
// @Router /programs/{programId} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	program, err := h.programService.GetProgram(c.Request.Context(), userID, programID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProgramToResponse(program))
}

// GetProgramProgression godoc
// @Summary Total weight lifted per completed session of a program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {array} service.ProgramProgressionPoint
// @Router /programs/{programId}/progression [get]
func (h *ProgramHandler) GetProgramProgression(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	points, err := h.progressionService.ProgramProgression(c.Request.Context(), userID, programID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
