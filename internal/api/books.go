package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// Languages offered by the book form.
var Languages = []string{"Indonesia", "English", "Arabic"}

// FormCategories offered by the book form. Teknologi exists only here, not on the dashboard.
var FormCategories = append(append([]string(nil), model.DashboardCategories...), "Teknologi")

// BookQuery filters the catalog. Zero fields are omitted from the request.
type BookQuery struct {
	Search   string
	Category string
	Page     int
}

func (q BookQuery) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

func (c *Client) ListBooks(ctx context.Context, q BookQuery) (model.Page[model.Book], error) {
	var out model.Page[model.Book]
	err := c.do(ctx, request{method: http.MethodGet, path: "/books", query: q.Values()}, &out)
	return out, err
}

func (c *Client) GetBook(ctx context.Context, id int) (model.Book, error) {
	var out model.Book
	err := c.do(ctx, request{method: http.MethodGet, path: "/books/" + strconv.Itoa(id)}, &out)
	return out, err
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.do(ctx, request{method: http.MethodGet, path: "/categories"}, &out)
	return out, err
}

// Upload is a file attached to a multipart form. Data is kept in memory so a
// failed submission can be resent unchanged.
type Upload struct {
	Filename string
	Data     []byte
}

// BookInput is the admin add/edit form.
type BookInput struct {
	Title         string
	Author        string
	Publisher     string
	PublishedYear int
	Language      string
	Pages         int
	Price         decimal.Decimal
	Category      string
	Description   string
	Image         *Upload
}

// InputFromBook pre-fills the edit form. The current cover is kept unless a new Image is set.
func InputFromBook(b model.Book) BookInput {
	return BookInput{
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		PublishedYear: b.PublishedYear,
		Language:      b.Language,
		Pages:         b.Pages,
		Price:         b.Price,
		Category:      b.Category.Name,
		Description:   b.Description,
	}
}

// Validate applies the checks the form does before submitting.
func (in BookInput) Validate() error {
	fields := map[string][]string{}
	add := func(name, msg string) { fields[name] = append(fields[name], msg) }

	if strings.TrimSpace(in.Title) == "" {
		add("title", "title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		add("author", "author is required")
	}
	if in.Category == "" {
		add("category", "category is required")
	}
	if !in.Price.IsPositive() {
		add("price", "price must be greater than zero")
	}
	if in.Pages < 0 {
		add("pages", "pages cannot be negative")
	}
	if in.PublishedYear < 0 {
		add("published_year", "published year cannot be negative")
	}
	if in.Language != "" && !contains(Languages, in.Language) {
		add("language", "unsupported language")
	}
	if len(fields) == 0 {
		return nil
	}
	e := &Error{Kind: KindValidation, Fields: fields}
	e.Message = e.FirstField()
	return e
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (in BookInput) multipart(methodOverride string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"title", in.Title},
		{"author", in.Author},
		{"publisher", in.Publisher},
		{"language", in.Language},
		{"price", in.Price.String()},
		{"category", in.Category},
		{"description", in.Description},
	}
	if in.PublishedYear > 0 {
		fields = append(fields, [2]string{"published_year", strconv.Itoa(in.PublishedYear)})
	}
	if in.Pages > 0 {
		fields = append(fields, [2]string{"pages", strconv.Itoa(in.Pages)})
	}
	if methodOverride != "" {
		fields = append(fields, [2]string{"_method", methodOverride})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if in.Image != nil {
		part, err := w.CreateFormFile("image", in.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) CreateBook(ctx context.Context, in BookInput) (model.Book, error) {
	if err := in.Validate(); err != nil {
		return model.Book{}, err
	}
	body, ct, err := in.multipart("")
	if err != nil {
		return model.Book{}, &Error{Kind: KindTransport, Message: "encode form", Err: err}
	}
	var out model.Book
	err = c.do(ctx, request{method: http.MethodPost, path: "/admin/books", body: body, contentType: ct, want: http.StatusCreated}, &out)
	return out, err
}

// UpdateBook posts the form with _method=PUT, which is how the backend accepts multipart updates.
func (c *Client) UpdateBook(ctx context.Context, id int, in BookInput) (model.Book, error) {
	if err := in.Validate(); err != nil {
		return model.Book{}, err
	}
	body, ct, err := in.multipart(http.MethodPut)
	if err != nil {
		return model.Book{}, &Error{Kind: KindTransport, Message: "encode form", Err: err}
	}
	var out model.Book
	err = c.do(ctx, request{method: http.MethodPost, path: "/admin/books/" + strconv.Itoa(id), body: body, contentType: ct}, &out)
	return out, err
}

func (c *Client) DeleteBook(ctx context.Context, id int) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/admin/books/" + strconv.Itoa(id)}, nil)
}

func (c *Client) Statistics(ctx context.Context) (model.Statistics, error) {
	var out model.Statistics
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/statistics"}, &out)
	return out, err
}
