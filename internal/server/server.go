// Package server holds the application container: configuration, loggers,
// the Postgres pool, Redis, the job worker and the HTTP server they share.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/config"
	"github.com/javaniecampbell/storymap/internal/database"
	"github.com/javaniecampbell/storymap/internal/lib/cache"
	"github.com/javaniecampbell/storymap/internal/lib/job"
	"github.com/javaniecampbell/storymap/internal/lib/llm"
	loggerPkg "github.com/javaniecampbell/storymap/internal/logger"
	"github.com/javaniecampbell/storymap/internal/session"
)

type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database
	Redis         *redis.Client
	Job           *job.JobService

	// Sessions signs and reads the login cookie.
	Sessions *session.Manager

	// LLM completes suggestion prompts; it fails every call when no API key
	// is configured.
	LLM         llm.Completer
	Suggestions *cache.SuggestionCache

	httpServer *http.Server
}

// New connects to Postgres and Redis and starts the job worker. A Redis that
// cannot be reached is logged and tolerated; the suggestion cache and jobs
// degrade with it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without Redis")
	}

	jobService := job.NewJobService(logger, cfg)
	jobService.InitHandlers(cfg, logger)

	if err := jobService.Start(); err != nil {
		return nil, err
	}

	var completer llm.Completer = llm.Unconfigured{}
	if cfg.Integration.GenAIAPIKey != "" {
		genai, err := llm.NewGenAI(ctx, cfg.Integration.GenAIAPIKey, cfg.Integration.GenAIModel)
		if err != nil {
			return nil, err
		}
		completer = genai
	} else {
		logger.Warn().Msg("GenAI API key not provided, suggestions are disabled")
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Job:           jobService,
		Sessions:      session.NewManager(cfg.Auth.SessionSecret, cfg.Auth.SessionMaxAge, cfg.IsProduction()),
		LLM:           completer,
		Suggestions:   cache.NewSuggestionCache(redisClient, cache.DefaultTTL),
	}

	return server, nil
}

// SetupHTTPServer wraps handler in an http.Server with the configured
// timeouts.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the pool, Redis and the
// job worker.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	return nil
}
