// Package httpapi exposes the ledger, reports and review workflows over a Fiber JSON API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"storeroom/pkg/account"
	"storeroom/pkg/deletion"
	"storeroom/pkg/latency"
	"storeroom/pkg/ledger"
	"storeroom/pkg/sl"
)

// callTimeout bounds every call into the owning services.
const callTimeout = 5 * time.Second

// Deps are the services the API routes to.
type Deps struct {
	Ledger    *ledger.Service
	Deletions *deletion.Service
	Accounts  *account.Directory
	Tokens    *account.Issuer
	Latency   latency.Simulator
}

// Options tune the transport without touching the services.
type Options struct {
	CORSOrigins  string
	LoginLimit   int
	LoginWindow  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.CORSOrigins == "" {
		o.CORSOrigins = "*"
	}
	if o.LoginLimit <= 0 {
		o.LoginLimit = 10
	}
	if o.LoginWindow <= 0 {
		o.LoginWindow = time.Minute
	}
	return o
}

// Server wires HTTP endpoints to the channel-owned services.
type Server struct {
	lifetime  context.Context
	ledger    *ledger.Service
	deletions *deletion.Service
	accounts  *account.Directory
	tokens    *account.Issuer
	latency   latency.Simulator
	options   Options
	logger    *slog.Logger
	app       *fiber.App
}

// New builds the Fiber app. lifetime ends pending simulated delays when the server shuts down.
func New(lifetime context.Context, deps Deps, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = sl.Discard()
	}
	s := &Server{
		lifetime:  lifetime,
		ledger:    deps.Ledger,
		deletions: deps.Deletions,
		accounts:  deps.Accounts,
		tokens:    deps.Tokens,
		latency:   deps.Latency,
		options:   opts.withDefaults(),
		logger:    logger.With(slog.String("component", "httpapi")),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "storeroom",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           s.options.ReadTimeout,
		WriteTimeout:          s.options.WriteTimeout,
		IdleTimeout:           s.options.IdleTimeout,
	})
	s.routes()
	return s
}

// App exposes the Fiber app for Listen and for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.options.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))
	s.app.Use(s.requestLogger())

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := s.app.Group("/api", s.identify())
	api.Post("/auth/login", s.loginLimiter(), s.login)
	api.Get("/me", requireUser, s.me)

	api.Get("/items", s.listItems)
	api.Get("/units", s.listUnits)
	api.Get("/dashboard", s.dashboard)
	api.Get("/inventory/summary", s.inventorySummary)
	api.Get("/transactions", s.listTransactions)
	api.Post("/transactions", s.createTransaction)
	api.Get("/reports", s.report)
	api.Get("/reports/export", s.exportReport)

	api.Get("/deletion-requests", requireUser, s.listDeletionRequests)
	api.Post("/deletion-requests", requireUser, s.createDeletionRequest)
	api.Post("/deletion-requests/:id/approve", requireUser, s.approveDeletionRequest)
	api.Post("/deletion-requests/:id/reject", requireUser, s.rejectDeletionRequest)

	api.Get("/admin/users", requireUser, s.listUsers)
	api.Put("/admin/users/:email/role", requireUser, s.changeRole)
}

// errorHandler keeps the {"error": "..."} shape for every failure, including Fiber's own.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case ledger.IsValidation(err),
		errors.Is(err, deletion.ErrReasonRequired),
		errors.Is(err, account.ErrUnknownRole),
		errors.Is(err, account.ErrOwnRole):
		return fiber.StatusBadRequest
	case errors.Is(err, account.ErrInvalidCredentials), errors.Is(err, account.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, account.ErrForbidden), errors.Is(err, deletion.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, deletion.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, deletion.ErrAlreadyPending), errors.Is(err, deletion.ErrNotPending):
		return fiber.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail logs the outcome and converts err into a *fiber.Error for the error handler.
func (s *Server) fail(c *fiber.Ctx, msg string, err error) error {
	code := statusFor(err)
	log := s.logger.With(
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", code),
		sl.Err(err),
	)
	if code >= fiber.StatusInternalServerError {
		log.Error(msg)
	} else {
		log.Warn(msg)
	}
	return fiber.NewError(code, err.Error())
}

// badRequest is for transport-level problems such as malformed JSON.
func (s *Server) badRequest(c *fiber.Ctx, msg, reason string) error {
	s.logger.Warn(msg,
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("reason", reason),
	)
	return fiber.NewError(fiber.StatusBadRequest, reason)
}

// callContext bounds one service call by the server lifetime and callTimeout.
func (s *Server) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.lifetime, callTimeout)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug("request served",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return err
	}
}

func (s *Server) loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        s.options.LoginLimit,
		Expiration: s.options.LoginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			s.logger.Warn("login rate limit reached", slog.String("ip", c.IP()))
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})
}
