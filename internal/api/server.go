// ABOUTME: Local JSON HTTP API over the state store using fiber.
// ABOUTME: Wires middleware, the error handler, and every route group.
package api

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
	"github.com/harperreed/healhub/internal/toast"
)

// Options configures the API server.
type Options struct {
	Location *time.Location
	Logger   *log.Logger
	// BodyLimit caps request bodies in bytes. Zero means 4 MiB.
	BodyLimit int
}

// Server serves the local API.
type Server struct {
	app    *fiber.App
	store  *state.Store
	toasts *toast.Queue
	loc    *time.Location
	logger *log.Logger
}

// New builds the fiber app and registers all routes.
func New(store *state.Store, toasts *toast.Queue, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 4 * 1024 * 1024
	}
	if toasts == nil {
		toasts = toast.NewQueue(store.Clock(), 0)
	}

	s := &Server{
		store:  store,
		toasts: toasts,
		loc:    opts.Location,
		logger: opts.Logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "healhub",
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger)

	s.routes()
	return s
}

// App exposes the fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("api listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "hydration": s.store.Status().String()})
	})

	api.Post("/badges/compute", s.computeBadges)

	mount(api, "/medicines", resource[models.Medicine]{coll: s.store.Medicines(), check: checkMedicine})
	mount(api, "/reminders", resource[models.Reminder]{coll: s.store.Reminders(), check: s.checkReminder})
	mount(api, "/trackers", resource[models.TrackerEntry]{coll: s.store.Trackers(), check: checkTracker})
	mount(api, "/appointments", resource[models.Appointment]{coll: s.store.Appointments(), check: checkAppointment})
	mount(api, "/badges", resource[models.Badge]{coll: s.store.Badges(), check: checkBadge})

	api.Get("/settings", s.getSettings)
	api.Put("/settings", s.putSettings)
	api.Get("/theme", s.getTheme)
	api.Post("/theme/toggle", s.toggleTheme)

	api.Get("/toasts", s.listToasts)
	api.Delete("/toasts/:id", s.dismissToast)

	api.Get("/reports/today", s.today)
	api.Get("/reports/trackers/:type", s.trackerSeries)
	api.Get("/reports/bmi", s.bmi)

	api.Get("/export/:collection", s.export)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
		"request_id", c.Locals("requestid"),
	)
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		s.logger.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "err", err)
		message = "Internal server error"
	}

	return c.Status(code).JSON(ErrorResponse{Error: true, Message: message})
}
