package testutil

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/config"
	"github.com/javaniecampbell/storymap/internal/handler"
	"github.com/javaniecampbell/storymap/internal/lib/cache"
	"github.com/javaniecampbell/storymap/internal/lib/password"
	loggerPkg "github.com/javaniecampbell/storymap/internal/logger"
	"github.com/javaniecampbell/storymap/internal/router"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
	"github.com/javaniecampbell/storymap/internal/session"
)

const SessionSecret = "0123456789abcdef0123456789abcdef"

// App is the full HTTP stack over in-memory infrastructure.
type App struct {
	Echo      *echo.Echo
	Server    *server.Server
	Store     *Store
	Jobs      *Jobs
	Completer *Completer
}

func NewApp() *App {
	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Server:        config.ServerConfig{CORSAllowedOrigins: []string{"http://localhost:3000"}},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:        &logger,
		LoggerService: &loggerPkg.LoggerService{},
		Sessions:      session.NewManager(SessionSecret, time.Hour, false),
	}

	app := &App{
		Server:    s,
		Store:     NewStore(),
		Jobs:      &Jobs{},
		Completer: &Completer{Reply: "  Let shoppers save carts  "},
	}
	services := service.New(app.Store.Stores(), service.Deps{
		Logger:      &logger,
		Hasher:      password.NewHasher(1000),
		Jobs:        app.Jobs,
		LLM:         app.Completer,
		Suggestions: cache.NewSuggestionCache(NewRedisStore(), time.Minute),
	})
	app.Echo = router.NewRouter(s, handler.NewHandlers(s, services))
	return app
}
