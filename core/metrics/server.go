package metrics

import (
	"github.com/gofiber/fiber/v2"
)

// NewApp builds the standalone Fiber app that serves the exposition on "/" and
// on cfg.Path.
func NewApp(cfg Config, m *Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h := m.Handler()
	app.Get("/", h)
	if cfg.Path != "" && cfg.Path != "/" {
		app.Get(cfg.Path, h)
	}
	return app
}
