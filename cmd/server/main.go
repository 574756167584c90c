package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	"github.com/openbanana/studio-server-go/internal/database"
	"github.com/openbanana/studio-server-go/internal/handler"
	"github.com/openbanana/studio-server-go/internal/jobs"
	"github.com/openbanana/studio-server-go/internal/mail"
	"github.com/openbanana/studio-server-go/internal/middleware"
	redisclient "github.com/openbanana/studio-server-go/internal/redis"
	"github.com/openbanana/studio-server-go/internal/repository"
	"github.com/openbanana/studio-server-go/internal/service"
	"github.com/openbanana/studio-server-go/internal/storage"
	"github.com/openbanana/studio-server-go/internal/token"
	"github.com/openbanana/studio-server-go/internal/upstream"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("APP_ENV") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}
	log.Info().Msg("database connected")

	redisClient, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	creationRepo := repository.NewCreationRepository(db.DB)
	apiConfigRepo := repository.NewAPIConfigRepository(db.DB)
	announcementRepo := repository.NewAnnouncementRepository(db.DB)
	inspirationRepo := repository.NewInspirationRepository(db.DB)

	store, localStore := buildStore(cfg)

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	} else {
		mailer = mail.NewLogMailer()
	}

	tokens := token.NewManager(cfg.JWTSecret)
	codes := redisclient.NewCodeStore(redisClient)
	upstreamClient := upstream.NewHTTPClient(cfg.UpstreamTimeout())
	downloader := storage.NewHTTPDownloader(0)
	systemCred := upstream.Credential{APIKey: cfg.AIAPIKey, BaseURL: cfg.AIAPIBaseURL}

	authService := service.NewAuthService(userRepo, codes, mailer, tokens)
	checkInService := service.NewCheckInService(userRepo)
	userService := service.NewUserService(userRepo, apiConfigRepo, checkInService)
	genService := service.NewGenerationService(
		userRepo, creationRepo, apiConfigRepo, upstreamClient, store, downloader, systemCred,
	)
	adminService := service.NewAdminService(userRepo, creationRepo)
	announcementService := service.NewAnnouncementService(announcementRepo)
	inspirationService := service.NewInspirationService(inspirationRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokens)
	generateRateLimit := middleware.NewGenerateRateLimitMiddleware(redisClient.Client, cfg.GenerateRatePerMin)
	loginLimiter := middleware.NewLoginRateLimiter()
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxUploadBodyBytes)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, checkInService)
	imageHandler := handler.NewImageHandler(genService, announcementService, inspirationService)
	adminHandler := handler.NewAdminHandler(adminService, announcementService, inspirationService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(securityHeadersMiddleware.Handler)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Get("/api/announcement", imageHandler.LatestAnnouncement)
	r.Get("/api/inspirations", imageHandler.Inspirations)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		r.Mount("/", authHandler.Routes())
		r.With(authMiddleware.Handler).Get("/me", authHandler.Me)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Mount("/", userHandler.Routes())
	})

	r.Route("/api/image", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Use(generateRateLimit.Handler)
		r.Mount("/", imageHandler.Routes())
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Use(middleware.RequireAdmin)
		r.Mount("/", adminHandler.Routes())
	})

	if localStore != nil {
		uploadsFS := http.StripPrefix("/uploads/", http.FileServer(http.Dir(localStore.Dir())))
		r.Get("/uploads/*", uploadsFS.ServeHTTP)
	}

	r.Get("/*", handler.StaticFileServer("static").ServeHTTP)

	var cleanupJob *jobs.CleanupJob
	if localStore != nil {
		cleanupJob = jobs.NewCleanupJob(creationRepo, localStore, config.CleanupJobInterval)
		cleanupJob.Start()
		defer cleanupJob.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildStore picks the artifact backend. localStore is non-nil only for the
// local backend, which also enables the /uploads file server and the
// orphan sweep.
func buildStore(cfg *config.Config) (storage.Store, *storage.LocalStore) {
	if cfg.StorageBackend == "s3" {
		s3Store, err := storage.NewS3Store(storage.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init s3 storage")
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("using s3 artifact storage")
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init local storage")
	}
	log.Info().Str("dir", localStore.Dir()).Msg("using local artifact storage")
	return localStore, localStore
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
