package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/database"
	"github.com/stemsi/attendance-backend/internal/faceclient"
	"github.com/stemsi/attendance-backend/internal/handler"
	"github.com/stemsi/attendance-backend/internal/logger"
	"github.com/stemsi/attendance-backend/internal/media"
	"github.com/stemsi/attendance-backend/internal/middleware"
	"github.com/stemsi/attendance-backend/internal/notify"
	"github.com/stemsi/attendance-backend/internal/router"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreBackend).
		Str("mail", cfg.MailBackend).
		Str("media", cfg.MediaBackend).
		Msg("Starting Attendance Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Credential Store ───────────────────────────────────
	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open credential store")
	}
	defer store.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Mail Transport ────────────────────────────────────────────────
	var dispatcher notify.Dispatcher
	switch cfg.MailBackend {
	case config.MailSendGrid:
		dispatcher = notify.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddress, log)
	case config.MailLog:
		dispatcher = notify.NewLog(log)
	default:
		log.Fatal().Str("backend", cfg.MailBackend).Msg("Unknown MAIL_BACKEND")
	}

	// ─── Media Host ────────────────────────────────────────────────────
	var mediaStore media.Store
	switch cfg.MediaBackend {
	case config.MediaCloudinary:
		cld, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure Cloudinary")
		}
		mediaStore = cld
	case config.MediaLocal:
		mediaStore = media.NewLocal(cfg.UploadDir)
	default:
		log.Fatal().Str("backend", cfg.MediaBackend).Msg("Unknown MEDIA_BACKEND")
	}

	// ─── Face Verification (optional) ──────────────────────────────────
	var (
		faces      service.FaceMatcher
		faceHealth handler.HealthChecker
	)
	if cfg.FaceServiceURL != "" {
		fc := faceclient.New(cfg.FaceServiceURL)
		if err := fc.Health(ctx); err != nil {
			log.Warn().Err(err).Msg("Face service not reachable at startup")
		}
		faces = fc
		faceHealth = fc.Health
		log.Info().Str("url", cfg.FaceServiceURL).Msg("Face verification enabled")
	} else {
		log.Info().Msg("Face verification disabled, captures are stored as evidence only")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(store.Teachers, tokens, cfg.BcryptCost, log)
	rosterService := service.NewRosterService(store.Students, log)
	attendanceService := service.NewAttendanceService(cfg, store.Teachers, store.Students, dispatcher, mediaStore, faces, log)
	mediaService := service.NewMediaService(store.Teachers, mediaStore, cfg.MaxUploadBytes, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Teacher:    handler.NewTeacherHandler(authService),
		Student:    handler.NewStudentHandler(rosterService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Media:      handler.NewMediaHandler(mediaService),
		System:     handler.NewSystemHandler(store.Ping, rdb, faceHealth, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{
		Tokens:       tokens,
		Teachers:     store.Teachers,
		LoginLimiter: middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute, rdb, log),
		Log:          log,
	}, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Str("prefix", cfg.APIPrefix).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Stop accepting new HTTP requests and let in-flight batches finish (10s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
