package book

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
	"github.com/wichananm65/bookstore-storefront/internal/server/respond"
)

const maxCoverBytes = 2 << 20

type Handler struct {
	service *Service
	perPage int
	log     logrus.FieldLogger
}

func NewHandler(service *Service, perPage int, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, perPage: perPage, log: log}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/books", h.getBooks)
	r.Get("/books/:id<int>", h.getBook)
}

// RegisterAdminRoutes mounts the catalog management endpoints behind guards.
func (h *Handler) RegisterAdminRoutes(r fiber.Router, guards ...fiber.Handler) {
	r.Post("/admin/books", middleware.With(guards, h.createBook)...)
	r.Post("/admin/books/:id<int>", middleware.With(guards, h.updateBook)...)
	r.Put("/admin/books/:id<int>", middleware.With(guards, h.updateBook)...)
	r.Delete("/admin/books/:id<int>", middleware.With(guards, h.deleteBook)...)
}

func (h *Handler) getBooks(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	f := Filter{Search: strings.TrimSpace(c.Query("search")), Category: strings.TrimSpace(c.Query("category"))}
	result, err := h.service.List(f, page, h.perPage)
	if err != nil {
		h.log.WithError(err).Error("list books")
		return respond.Fail(c, fiber.StatusInternalServerError, "could not load books")
	}
	return respond.OK(c, "Books retrieved", result)
}

func (h *Handler) getBook(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	b, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return respond.Fail(c, fiber.StatusNotFound, "Book not found")
		}
		return respond.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return respond.OK(c, "Book retrieved", b)
}

func (h *Handler) createBook(c *fiber.Ctx) error {
	b, img, field, msg := h.parseForm(c)
	if field != "" {
		return respond.Invalid(c, field, msg)
	}
	created, err := h.service.Create(b, img)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.Created(c, "Book created", created)
}

func (h *Handler) updateBook(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost && !strings.EqualFold(c.FormValue("_method"), fiber.MethodPut) {
		return respond.Fail(c, fiber.StatusMethodNotAllowed, "use _method=PUT to update a book")
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	b, img, field, msg := h.parseForm(c)
	if field != "" {
		return respond.Invalid(c, field, msg)
	}
	updated, err := h.service.Update(id, b, img)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Book updated", updated)
}

func (h *Handler) deleteBook(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(id); err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, "Book deleted", nil)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return respond.Fail(c, fiber.StatusNotFound, "Book not found")
	case ErrUnsupportedImage:
		return respond.Invalid(c, "image", err.Error())
	default:
		h.log.WithError(err).Error("book write failed")
		return respond.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
}

// parseForm reads the admin form. A non-empty field names the first invalid input.
func (h *Handler) parseForm(c *fiber.Ctx) (model.Book, *Upload, string, string) {
	// form values point into the request buffer; books outlive the request
	field := func(k string) string { return strings.TrimSpace(utils.CopyString(c.FormValue(k))) }
	b := model.Book{
		Title:       field("title"),
		Author:      field("author"),
		Publisher:   field("publisher"),
		Language:    field("language"),
		Category:    CategoryOf(field("category")),
		Description: field("description"),
	}
	if b.Title == "" {
		return b, nil, "title", "The title field is required."
	}
	if b.Author == "" {
		return b, nil, "author", "The author field is required."
	}
	if b.Category.Name == "" {
		return b, nil, "category", "The category field is required."
	}
	price, err := decimal.NewFromString(field("price"))
	if err != nil || !price.IsPositive() {
		return b, nil, "price", "The price must be a positive number."
	}
	b.Price = price
	if v := field("published_year"); v != "" {
		if b.PublishedYear, err = strconv.Atoi(v); err != nil || b.PublishedYear < 0 {
			return b, nil, "published_year", "The published year must be a year."
		}
	}
	if v := field("pages"); v != "" {
		if b.Pages, err = strconv.Atoi(v); err != nil || b.Pages < 0 {
			return b, nil, "pages", "The pages must be a positive integer."
		}
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return b, nil, "", ""
	}
	if fh.Size > maxCoverBytes {
		return b, nil, "image", "The image may not be greater than 2048 kilobytes."
	}
	f, err := fh.Open()
	if err != nil {
		return b, nil, "image", "The image failed to upload."
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return b, nil, "image", "The image failed to upload."
	}
	return b, &Upload{Filename: fh.Filename, Data: data}, "", ""
}
