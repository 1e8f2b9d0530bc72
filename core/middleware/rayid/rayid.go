package rayid

import (
	"rank-api/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName carries the request id in both directions.
const HeaderName = "X-Ray-ID"

// maxLength bounds an inbound id so clients cannot stuff the logs.
const maxLength = 128

// New returns a middleware that assigns every request a RayID. An inbound
// X-Ray-ID is reused; otherwise a UUID is generated. The id is stored in the
// Fiber locals under logger.RayIDKey and echoed in the response header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" || len(rid) > maxLength {
			rid = uuid.NewString()
		}
		c.Locals(logger.RayIDKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
