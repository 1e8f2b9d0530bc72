package rayid

import (
	"net/http/httptest"
	"strings"
	"testing"

	"rank-api/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp() *fiber.App {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(logger.RayIDKey).(string))
	})
	return app
}

func TestNew_GeneratesID(t *testing.T) {
	resp, err := setupApp().Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	rid := resp.Header.Get(HeaderName)
	_, parseErr := uuid.Parse(rid)
	assert.NoError(t, parseErr)
}

func TestNew_PropagatesInbound(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderName, "upstream-id")

	resp, err := setupApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "upstream-id", resp.Header.Get(HeaderName))
}

func TestNew_ReplacesOversizedInbound(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderName, strings.Repeat("x", maxLength+1))

	resp, err := setupApp().Test(req)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderName), 36)
}
