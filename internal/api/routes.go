package api

import (
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Exercises   service.ExerciseService
	Programs    service.ProgramService
	Sessions    service.SessionService
	Progression service.ProgressionService
	Media       service.MediaService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, log *logger.Logger, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercises)
	programHandler := NewProgramHandler(svc.Programs, svc.Progression)
	sessionHandler := NewSessionHandler(svc.Sessions, svc.Progression)
	mediaHandler := NewMediaHandler(svc.Media)

	router.Use(RequestLogger(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := userIDFromContext(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		// --- Exercise catalog ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExerciseByID)
		}

		// --- Programs ---
		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", programHandler.CreateProgram)
			programGroup.GET("", programHandler.GetPrograms)
			programGroup.GET("/:programId", programHandler.GetProgram)
			programGroup.GET("/:programId/progression", programHandler.GetProgramProgression)
		}

		// --- Sessions ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.StartSession)
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.GET("/:sessionId", sessionHandler.GetSession)
			sessionGroup.PATCH("/:sessionId", sessionHandler.UpdateSession)
			sessionGroup.DELETE("/:sessionId", sessionHandler.DeleteSession)
			sessionGroup.POST("/:sessionId/complete", sessionHandler.CompleteSession)

			sessionGroup.POST("/:sessionId/exercises", sessionHandler.AddExercise)
			sessionGroup.PUT("/:sessionId/exercises/order", sessionHandler.ReorderExercises)
			sessionGroup.PATCH("/:sessionId/exercises/:exerciseId", sessionHandler.UpdateExercise)
			sessionGroup.DELETE("/:sessionId/exercises/:exerciseId", sessionHandler.RemoveExercise)
			sessionGroup.GET("/:sessionId/exercises/:exerciseId/progression", sessionHandler.GetExerciseProgression)

			sessionGroup.POST("/:sessionId/exercises/:exerciseId/sets", sessionHandler.AddSet)
			sessionGroup.PATCH("/:sessionId/sets/:setId", sessionHandler.UpdateSet)
			sessionGroup.DELETE("/:sessionId/sets/:setId", sessionHandler.RemoveSet)
			sessionGroup.PUT("/:sessionId/sets/:setId/actuals", sessionHandler.UpdateSetActuals)

			sessionGroup.POST("/:sessionId/exercises/:exerciseId/media/upload-url", mediaHandler.RequestUploadURL)
			sessionGroup.POST("/:sessionId/exercises/:exerciseId/media", mediaHandler.ConfirmUpload)
			sessionGroup.GET("/:sessionId/media", mediaHandler.ListMedia)
		}

		protected.GET("/media/:mediaId/download-url", mediaHandler.GetDownloadURL)
	}
}
