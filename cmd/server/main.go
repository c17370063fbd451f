package main

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// repositories is the storage backend selected by database.driver.
type repositories struct {
	users     repository.UserRepository
	exercises repository.ExerciseRepository
	programs  repository.ProgramRepository
	sessions  repository.SessionRepository
	media     repository.MediaRepository
	close     func()
}

// @title Workout Tracker API
// @version 1.0
// @description Workout programs, live sessions, progression and form-check videos.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret must be set (JWT_SECRET)")
	}
	log.Info("starting workout tracker", "address", cfg.Server.Address, "driver", cfg.Database.Driver)

	// --- Repositories ---
	repos, err := openRepositories(cfg.Database, log)
	if err != nil {
		log.Fatal("could not open storage", "driver", cfg.Database.Driver, "error", err)
	}
	defer repos.close()

	// --- File storage ---
	fileStorage, err := openFileStorage(cfg.S3, log)
	if err != nil {
		log.Fatal("failed to initialize file storage", "error", err)
	}

	// --- Services ---
	catalog := service.NewCatalogLookup(repos.exercises, cfg.Catalog.CacheTTL)
	mediaService := service.NewMediaService(repos.media, repos.sessions, fileStorage, log.With("component", "media"))
	services := api.Services{
		Auth:        service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Exercises:   service.NewExerciseService(repos.exercises, catalog),
		Programs:    service.NewProgramService(repos.programs, catalog),
		Sessions:    service.NewSessionService(repos.sessions, repos.programs, catalog, mediaService, service.SystemClock{}, log.With("component", "sessions")),
		Progression: service.NewProgressionService(repos.sessions, repos.programs),
		Media:       mediaService,
	}

	// --- Gin Engine ---
	if strings.EqualFold(cfg.Log.Mode, "production") || strings.EqualFold(cfg.Log.Mode, "prod") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, log.With("component", "http"), services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}

func openRepositories(cfg config.DatabaseConfig, log *logger.Logger) (*repositories, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		return &repositories{
			users:     memory.NewUserRepository(),
			exercises: memory.NewExerciseRepository(),
			programs:  memory.NewProgramRepository(),
			sessions:  memory.NewSessionRepository(),
			media:     memory.NewMediaRepository(),
			close:     func() {},
		}, nil
	case "", "mongo":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			log.Warn("index creation failed", "error", err)
		}

		return &repositories{
			users:     mongo.NewMongoUserRepository(db),
			exercises: mongo.NewMongoExerciseRepository(db),
			programs:  mongo.NewMongoProgramRepository(db),
			sessions:  mongo.NewMongoSessionRepository(db),
			media:     mongo.NewMongoMediaRepository(db),
			close: func() {
				if err := mongo.DisconnectDB(client); err != nil {
					log.Error("failed to disconnect MongoDB", "error", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// openFileStorage uses S3 when a bucket is configured and keeps media URLs
// in process otherwise.
func openFileStorage(cfg config.S3Config, log *logger.Logger) (storage.FileStorage, error) {
	if cfg.BucketName == "" {
		log.Warn("no S3 bucket configured, media URLs are not backed by real storage")
		return storage.NewMemoryStorage("http://localhost/media"), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return storage.NewS3Storage(ctx, cfg, log.With("component", "s3"))
}
