package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

// Principal is the caller identified by the bearer token.
type Principal struct {
	UserID int
	Role   string
}

// RequestLogger logs one line per request after it has been handled.
func RequestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":     c.Method(),
			"url":        c.OriginalURL(),
			"status":     c.Response().StatusCode(),
			"elapsed":    time.Since(start).String(),
			"request_id": c.Get("X-Request-ID"),
		})
		if err != nil {
			entry.WithError(err).Warn("request failed")
		} else {
			entry.Info("request handled")
		}
		return err
	}
}

// Auth verifies the bearer token and stores it in c.Locals("user").
func Auth(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
		},
	})
}

// IssueToken signs the claims CurrentPrincipal reads back.
func IssueToken(secret []byte, u model.User, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"email":   u.Email,
		"name":    u.Name,
		"exp":     now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// CurrentPrincipal extracts the user_id and role claims from the token stored
// in c.Locals("user").
func CurrentPrincipal(c *fiber.Ctx) (Principal, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Principal{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fiber.ErrUnauthorized
	}
	var p Principal
	switch v := claims["user_id"].(type) {
	case float64:
		p.UserID = int(v)
	case int:
		p.UserID = v
	case int64:
		p.UserID = int(v)
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return Principal{}, fiber.ErrUnauthorized
		}
		p.UserID = id
	default:
		return Principal{}, fiber.ErrUnauthorized
	}
	p.Role, _ = claims["role"].(string)
	return p, nil
}

// RequireRole answers 403 unless the caller has one of the roles.
func RequireRole(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := CurrentPrincipal(c)
		if err != nil {
			return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
		}
		for _, r := range roles {
			if p.Role == r {
				c.Locals("principal", p)
				return c.Next()
			}
		}
		return respond.Fail(c, fiber.StatusForbidden, message)
	}
}

// AdminOnly and CustomerOnly are the two guards the routes use.
func AdminOnly() fiber.Handler {
	return RequireRole("This action is for admins only.", model.RoleAdmin)
}

func CustomerOnly() fiber.Handler {
	return RequireRole("Admins cannot shop.", model.RoleCustomer)
}

// With builds a handler chain of guards followed by h.
func With(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}
