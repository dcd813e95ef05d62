package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"justdo/internal/feedback"
	"justdo/internal/profile"
	"justdo/internal/task"
)

// Server is the thin HTTP facade over the task store. It mirrors the CLI
// operations one-to-one; AI enrichment is best-effort and never blocks a
// mutation from succeeding.
type Server struct {
	store        *task.Store
	orchestrator *feedback.Orchestrator
	profilePath  string
	log          *logrus.Logger
	aiEnabled    bool
}

// New builds the server. orchestrator may operate unconfigured; aiEnabled
// tells the server whether to attempt enrichment at all.
func New(store *task.Store, orchestrator *feedback.Orchestrator, profilePath string, aiEnabled bool, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		store:        store,
		orchestrator: orchestrator,
		profilePath:  profilePath,
		log:          log,
		aiEnabled:    aiEnabled,
	}
}

// App assembles the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "justdo",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(s.requestLogger())

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/todos", s.handleList)
	api.Post("/todos", s.handleAdd)
	api.Post("/todos/:id/done", s.handleDone)
	api.Post("/todos/:id/toggle", s.handleToggle)
	api.Delete("/todos/:id", s.handleDelete)
	api.Post("/clear", s.handleClear)
	api.Get("/suggest", s.handleSuggest)
	api.Post("/chat", s.handleChat)

	return app
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)

		start := time.Now()
		err := c.Next()

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
		}).Info("request")

		return err
	}
}

// recordProfile applies one mutation to the behavioral profile and persists
// it. Profile failures are logged and swallowed: analytics must never fail a
// task operation.
func (s *Server) recordProfile(text string, action profile.Action) {
	store := profile.Open(s.profilePath)
	store.Record(text, action)
	if err := store.Save(); err != nil {
		s.log.WithError(err).Warn("saving profile")
	}
}
