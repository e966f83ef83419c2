package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func NewHandler(service *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/login", h.login)
	r.Post("/register", h.register)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(payload.Email) == "" {
		return respond.Invalid(c, "email", "The email field is required.")
	}
	if payload.Password == "" {
		return respond.Invalid(c, "password", "The password field is required.")
	}

	a, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	token, err := h.service.IssueToken(a.User)
	if err != nil {
		h.log.WithError(err).Error("sign token")
		return respond.Fail(c, fiber.StatusInternalServerError, "failed to generate token")
	}
	return respond.OK(c, "Login successful", authPayload{Token: token, User: a.User})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	switch {
	case strings.TrimSpace(payload.Name) == "":
		return respond.Invalid(c, "name", "The name field is required.")
	case !strings.Contains(payload.Email, "@"):
		return respond.Invalid(c, "email", "The email must be a valid email address.")
	case len(payload.Password) < MinPasswordLength:
		return respond.Invalid(c, "password", "The password must be at least 8 characters.")
	}

	a, err := h.service.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		if err == ErrEmailExists {
			return respond.Invalid(c, "email", "The email has already been taken.")
		}
		return respond.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	token, err := h.service.IssueToken(a.User)
	if err != nil {
		return respond.Fail(c, fiber.StatusInternalServerError, "failed to generate token")
	}
	h.log.WithField("email", a.Email).Info("account registered")
	return respond.Created(c, "Registration successful", authPayload{Token: token, User: a.User})
}
