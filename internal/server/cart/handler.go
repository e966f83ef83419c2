package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

// Handler serves the customer cart.
type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(s *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: s, log: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router, guards ...fiber.Handler) {
	r.Get("/cart", middleware.With(guards, h.getCart)...)
	r.Post("/cart", middleware.With(guards, h.addToCart)...)
	r.Put("/cart/:id<int>", middleware.With(guards, h.updateLine)...)
	r.Delete("/cart/:id<int>", middleware.With(guards, h.removeLine)...)
}

type addRequest struct {
	Items []Item `json:"items"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	lines, err := h.service.Get(p.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Cart retrieved", lines)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	if len(payload.Items) == 0 {
		return respond.Invalid(c, "items", "The items field is required.")
	}
	lines, err := h.service.Add(p.UserID, payload.Items)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Added to cart", lines)
}

func (h *Handler) updateLine(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	line, err := h.service.SetQuantity(p.UserID, id, payload.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Cart updated", line)
}

func (h *Handler) removeLine(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Remove(p.UserID, id); err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Removed from cart", nil)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return respond.Fail(c, fiber.StatusNotFound, "Cart item not found")
	case ErrInvalidQuantity:
		return respond.Invalid(c, "quantity", "The quantity must be at least 1.")
	case ErrUnknownBook:
		return respond.Invalid(c, "book_id", "The selected book is invalid.")
	default:
		h.log.WithError(err).Error("cart request failed")
		return respond.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
}
