package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

var secret = []byte("test-secret")

func makeGuardedApp() *fiber.App {
	log, _ := test.NewNullLogger()
	app := fiber.New()
	app.Use(RequestLogger(log))
	whoami := func(c *fiber.Ctx) error {
		p, err := CurrentPrincipal(c)
		if err != nil {
			return err
		}
		return c.SendString(p.Role)
	}
	app.Get("/admin", With([]fiber.Handler{Auth(secret), AdminOnly()}, whoami)...)
	app.Get("/cart", With([]fiber.Handler{Auth(secret), CustomerOnly()}, whoami)...)
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestGuards(t *testing.T) {
	app := makeGuardedApp()
	now := time.Now()
	admin, err := IssueToken(secret, model.User{ID: 1, Role: model.RoleAdmin}, time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	customer, _ := IssueToken(secret, model.User{ID: 2, Role: model.RoleCustomer}, time.Hour, now)
	expired, _ := IssueToken(secret, model.User{ID: 2, Role: model.RoleCustomer}, time.Hour, now.Add(-2*time.Hour))
	forged, _ := IssueToken([]byte("other"), model.User{ID: 1, Role: model.RoleAdmin}, time.Hour, now)

	cases := []struct {
		path, token string
		status      int
	}{
		{"/admin", "", fiber.StatusUnauthorized},
		{"/admin", expired, fiber.StatusUnauthorized},
		{"/admin", forged, fiber.StatusUnauthorized},
		{"/admin", customer, fiber.StatusForbidden},
		{"/admin", admin, fiber.StatusOK},
		{"/cart", admin, fiber.StatusForbidden},
		{"/cart", customer, fiber.StatusOK},
	}
	for _, tc := range cases {
		status, body := get(t, app, tc.path, tc.token)
		if status != tc.status {
			t.Errorf("%s: expected %d, got %d (%s)", tc.path, tc.status, status, body)
		}
		if status == fiber.StatusForbidden && !strings.Contains(body, `"message"`) {
			t.Errorf("%s: 403 body should be an envelope, got %s", tc.path, body)
		}
	}
}

func TestCurrentPrincipal_ClaimTypes(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		for _, raw := range []any{float64(5), 5, int64(5), "5"} {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": raw, "role": "customer"}})
			p, err := CurrentPrincipal(c)
			if err != nil || p.UserID != 5 || p.Role != model.RoleCustomer {
				t.Errorf("claim %T: got %+v, %v", raw, p, err)
			}
		}
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": "x"}})
		if _, err := CurrentPrincipal(c); err == nil {
			t.Errorf("non-numeric user_id should be rejected")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatal(err)
	}
}
