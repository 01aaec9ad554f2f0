package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lukasa-pay/lukasa/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *atomic.Int64, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))

	var handled atomic.Int64
	app.Post("/purchase", func(c *fiber.Ctx) error {
		n := handled.Add(1)
		return c.JSON(fiber.Map{"status": 0, "order_id": n})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &handled, cleanup
}

func postPurchase(t *testing.T, app *fiber.App, key string) (int, map[string]int64) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/purchase", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]int64
	if resp.StatusCode == fiber.StatusOK {
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", payload, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestIdempotencyReplaysRecordedResponse(t *testing.T) {
	app, handled, cleanup := setupTestApp(t)
	defer cleanup()

	status, first := postPurchase(t, app, "key-1")
	if status != fiber.StatusOK {
		t.Fatalf("first request: http %d", status)
	}

	status, second := postPurchase(t, app, "key-1")
	if status != fiber.StatusOK {
		t.Fatalf("replayed request: http %d", status)
	}
	if first["order_id"] != second["order_id"] {
		t.Fatalf("replay produced a different response: %v vs %v", first, second)
	}
	if handled.Load() != 1 {
		t.Fatalf("handler ran %d times, expected once", handled.Load())
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, handled, cleanup := setupTestApp(t)
	defer cleanup()

	postPurchase(t, app, "")
	postPurchase(t, app, "")

	if handled.Load() != 2 {
		t.Fatalf("handler ran %d times, expected twice without a key", handled.Load())
	}
}

func TestIdempotencyDistinctKeysAreIndependent(t *testing.T) {
	app, handled, cleanup := setupTestApp(t)
	defer cleanup()

	_, first := postPurchase(t, app, "key-a")
	_, second := postPurchase(t, app, "key-b")

	if first["order_id"] == second["order_id"] {
		t.Fatalf("distinct keys replayed the same response: %v", first)
	}
	if handled.Load() != 2 {
		t.Fatalf("handler ran %d times, expected twice", handled.Load())
	}
}
