package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/diewo77/go-users/auth"
	"github.com/diewo77/go-users/httpx"
	"github.com/diewo77/go-users/i18n"
	"github.com/diewo77/go-users/internal/breach"
	"github.com/diewo77/go-users/internal/config"
	"github.com/diewo77/go-users/internal/handlers"
	"github.com/diewo77/go-users/internal/metrics"
	"github.com/diewo77/go-users/internal/policy"
	"github.com/diewo77/go-users/internal/users"
	"github.com/diewo77/go-users/validation"
)

// App is the main application handler that sets up all routes.
type App struct {
	router   chi.Router
	db       *gorm.DB
	authGate *policy.AuthGate
	tokens   *auth.Tokens
	users    *handlers.UserHandler
	login    *handlers.AuthHandler
	metrics  bool
}

// NewApp wires the authorization gate, the users service and the handlers.
func NewApp(db *gorm.DB, cfg *config.Config) (*App, error) {
	tokens, err := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	engine, err := policy.New(cfg.App.AuthzEngine)
	if err != nil {
		return nil, err
	}
	userPolicy := policy.NewInstrumented(engine, cfg.App.AuthzEngine, metrics.RecordDecision)
	var resolver policy.ActorResolver = policy.NewDBActorResolver(db)
	var onRemoved func(uint)
	if cfg.Auth.ActorCacheTTL > 0 {
		cached := policy.NewCachedActorResolver(resolver, cfg.Auth.ActorCacheTTL)
		resolver, onRemoved = cached, cached.Invalidate
	}
	authGate := policy.NewAuthGate(resolver, userPolicy)

	var checker validation.BreachChecker
	if cfg.Password.BreachCheck {
		checker = breach.New(cfg.Breach.URL, cfg.Breach.Timeout)
	}

	svc := users.NewService(users.Config{
		Repo:   users.NewGormRepository(db),
		Hasher: users.BcryptHasher{},
		Gate:   authGate.Gate,
		Tokens: tokens,
		Breach: checker,
		Password: validation.PasswordRule{
			Min:       cfg.Password.MinLength,
			MixedCase: cfg.Password.MixedCase,
			Numbers:   cfg.Password.Numbers,
			Symbols:   cfg.Password.Symbols,
		},
		OnValidationFailure: metrics.RecordValidationFailure,
		OnRemoved:           onRemoved,
	})

	if cfg.App.MetricsEnabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	app := &App{
		router:   chi.NewRouter(),
		db:       db,
		authGate: authGate,
		tokens:   tokens,
		users:    handlers.NewUserHandler(svc),
		login:    handlers.NewAuthHandler(svc),
		metrics:  cfg.App.MetricsEnabled,
	}
	app.setupRoutes()
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	r := a.router
	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(withLogging)
	if a.metrics {
		r.Use(metrics.Middleware)
	}
	r.Use(i18n.Middleware)
	r.Use(a.tokens.Middleware)
	r.Use(a.authGate.Middleware)

	// Public routes
	r.Get("/healthz", a.healthz)
	if a.metrics {
		r.Handle("/metrics", metrics.Handler())
	}
	r.Post("/api/login", a.login.Login)

	// Authenticated routes; per-operation authorization happens in the service
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(policy.Verify))

		r.Get("/api/user", a.users.Me)
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", a.users.List)
			r.Post("/", a.users.Create)
			r.Get("/{id}", a.users.Show)
			r.Put("/{id}", a.users.Update)
			r.Patch("/{id}", a.users.Update)
			r.Delete("/{id}", a.users.Delete)
			r.Post("/{id}/restore", a.users.Restore)
			r.Delete("/{id}/force", a.users.ForceDelete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", i18n.Tc(r.Context(), "not_found"))
	})
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "db_unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
