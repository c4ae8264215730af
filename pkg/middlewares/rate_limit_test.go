package middlewares

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowWithinWindow(t *testing.T) {
	l := NewRateLimiter(time.Second, 3)

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("conn-1")
		assert.True(t, ok)
	}

	ok, retryAfter := l.Allow("conn-1")
	assert.False(t, ok)
	assert.Equal(t, time.Second, retryAfter)

	// other keys keep their own budget
	ok, _ = l.Allow("conn-2")
	assert.True(t, ok)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	l := NewRateLimiter(150*time.Millisecond, 2)

	ok, _ := l.Allow("conn-1")
	assert.True(t, ok)
	ok, _ = l.Allow("conn-1")
	assert.True(t, ok)
	ok, _ = l.Allow("conn-1")
	assert.False(t, ok)

	time.Sleep(200 * time.Millisecond)

	ok, _ = l.Allow("conn-1")
	assert.True(t, ok)
}

func TestRateLimiter_ZeroValuesFallBackToDefaults(t *testing.T) {
	l := NewRateLimiter(0, 0)
	assert.Equal(t, DefaultRateLimitWindow, l.window)
	assert.Equal(t, DefaultRateLimitMax, l.max)
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(time.Minute, 2)

	app := fiber.New()
	app.Use(l.Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
