// Package api exposes progress tracking over a JSON HTTP API.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/identity"
	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/tutor"
)

// TokenVerifier checks bearer tokens. identity.Provider satisfies it.
type TokenVerifier interface {
	Verify(token string) (identity.Claims, error)
}

// Asker answers tutor questions. tutor.Tutor satisfies it.
type Asker interface {
	Ask(ctx context.Context, userID, subject, question string) (*tutor.Answer, error)
}

type Deps struct {
	Progress *progress.Service
	Auth     TokenVerifier
	// Tutor is optional; without it /api/tutor/ask answers 503.
	Tutor        Asker
	Log          *zap.Logger
	AllowOrigins string
	// Grade picks topic counts when subjects are initialized without one.
	DefaultGrade string
}

type Server struct {
	app     *fiber.App
	deps    Deps
	metrics *metrics
}

func New(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.AllowOrigins == "" {
		deps.AllowOrigins = "*"
	}
	s := &Server{deps: deps, metrics: newMetrics()}
	s.app = fiber.New(fiber.Config{
		AppName:               "studypulse",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: deps.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	s.app.Use(requestLogger(deps.Log.Named("http")))
	s.app.Use(s.metrics.middleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", s.metrics.handler())

	api := s.app.Group("/api", requireUser(s.deps.Auth))
	api.Post("/sessions", s.recordSession)

	api.Get("/progress/stats", s.stats)
	api.Get("/progress/streak", s.streak)

	api.Get("/analytics/weekly", s.weekly)
	api.Get("/analytics/monthly", s.monthly)
	api.Get("/analytics/insights", s.insights)

	api.Get("/subjects", s.listSubjects)
	api.Post("/subjects", s.initSubjects)
	api.Put("/subjects", s.replaceSubjects)

	api.Post("/tutor/ask", s.askTutor)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }
