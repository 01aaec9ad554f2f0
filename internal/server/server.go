package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lukasa-pay/lukasa/internal/middleware"
)

// Options tunes the shared HTTP server shell.
type Options struct {
	AppName string
	// MaxWorkers bounds how many requests are handled concurrently.
	MaxWorkers int
}

// Server wraps the Fiber application hosting one of the two services.
type Server struct {
	app  *fiber.App
	addr string
}

// New instantiates the HTTP server shell with the shared middleware stack.
// Route wiring is left to the hosting daemon.
func New(addr string, opts Options) *Server {
	cfg := fiber.Config{
		AppName:      opts.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if opts.MaxWorkers > 0 {
		cfg.Concurrency = opts.MaxWorkers
	}

	app := fiber.New(cfg)
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	return &Server{app: app, addr: addr}
}

// App exposes the underlying Fiber application for route registration.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.addr)
}

// Shutdown stops accepting new requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
