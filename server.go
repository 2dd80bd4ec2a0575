package heritage

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/uptrace/bun"
)

// Server assembles the fiber app with every controller mounted. It is
// the single place routes, guards and the error handler come together,
// so tests can spin the full surface against an in-memory database.
type Server struct {
	app    *fiber.App
	config Config
	logger Logger
}

type ServerOption func(*Server)

func WithServerLogger(l Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer wires repositories, auth and controllers into a ready app.
func NewServer(cfg Config, db *bun.DB, opts ...ServerOption) *Server {
	s := &Server{
		config: cfg,
		logger: defLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	repo := NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		panic(err)
	}

	store := NewTokenStore(repo, cfg.TokenTTL, cfg.SessionMaxAge).
		WithLogger(s.logger)

	provider := NewUserProvider(userTrackerAdapter{users: repo.Users()}).
		WithLogger(s.logger)

	auth := NewAuthenticator(provider, store, repo)
	guard := NewGuard(auth).WithLogger(s.logger)

	engine := django.New("./views", ".html")

	app := fiber.New(fiber.Config{
		AppName:      "heritage",
		Views:        engine,
		ErrorHandler: NewErrorHandler(s.logger),
	})

	authController := NewAuthController(func(c *AuthController) *AuthController {
		c.Logger = s.logger
		c.Repo = repo
		c.Auth = auth
		c.Config = cfg
		return c
	})

	usersController := &UsersController{Logger: s.logger, Repo: repo, Store: store}
	catalogController := &CatalogController{Logger: s.logger, Repo: repo}
	contentController := &ContentController{Logger: s.logger, Repo: repo}
	eventsController := &EventsController{Logger: s.logger, Repo: repo}
	socialController := &SocialController{Logger: s.logger, Repo: repo}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Browser-facing reset form behind the emailed link.
	app.Get("/password-reset/:token", authController.PasswordResetForm)

	api := app.Group("/api/v1")
	RegisterAuthRoutes(api, authController, guard)
	RegisterUserRoutes(api, usersController, guard)
	RegisterCatalogRoutes(api, catalogController, guard)
	RegisterContentRoutes(api, contentController, guard)
	RegisterEventRoutes(api, eventsController, guard)
	RegisterSocialRoutes(api, socialController, guard)

	s.app = app

	return s
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on the configured address.
func (s *Server) Listen() error {
	s.logger.Info("listening on %s", s.config.HTTPAddr)
	return s.app.Listen(s.config.HTTPAddr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type userTrackerAdapter struct {
	users Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.users.TrackSuccessfulLogin(ctx, user)
}
