package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEmail(t *testing.T) {
	before := testutil.ToFloat64(EmailsTotal.WithLabelValues("feedback", "failed"))
	RecordEmail("feedback", errors.New("smtp down"))
	assert.Equal(t, before+1, testutil.ToFloat64(EmailsTotal.WithLabelValues("feedback", "failed")))
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/jobs/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/jobs/:id", "204")
	before := testutil.ToFloat64(counter)

	resp, err := app.Test(httptest.NewRequest("GET", "/jobs/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
