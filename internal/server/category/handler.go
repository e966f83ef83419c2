package category

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

type Handler struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewHandler(repo Repository, log logrus.FieldLogger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/categories", h.getCategories)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	rows, err := h.repo.List()
	if err != nil {
		h.log.WithError(err).Error("list categories")
		return respond.Fail(c, fiber.StatusInternalServerError, "could not load categories")
	}
	return respond.OK(c, "Categories retrieved", Tree(rows))
}
