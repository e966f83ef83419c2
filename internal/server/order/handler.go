package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(s *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: s, log: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router, guards ...fiber.Handler) {
	r.Post("/checkout", middleware.With(guards, h.checkout)...)
	r.Get("/my-orders", middleware.With(guards, h.myOrders)...)
	r.Delete("/orders/:id<int>/cancel", middleware.With(guards, h.cancel)...)
}

type checkoutRequest struct {
	CartIDs []int `json:"cart_ids"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	o, err := h.service.Checkout(p.UserID, payload.CartIDs)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.Created(c, "Order created", o)
}

func (h *Handler) myOrders(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	orders, err := h.service.MyOrders(p.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Orders retrieved", orders)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return respond.Fail(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	o, err := h.service.Cancel(p.UserID, id)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Order cancelled", o)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch errors.Cause(err) {
	case ErrNotFound:
		return respond.Fail(c, fiber.StatusNotFound, "Order not found")
	case ErrEmptySelection:
		return respond.Invalid(c, "cart_ids", "The cart ids field is required.")
	case ErrInvalidSelection:
		return respond.Invalid(c, "cart_ids", "The selected cart ids are invalid.")
	case ErrNotCancellable:
		return respond.Invalid(c, "status", "Only pending orders can be cancelled.")
	default:
		h.log.WithError(err).Error("order request failed")
		return respond.Fail(c, fiber.StatusInternalServerError, "could not process the order")
	}
}
