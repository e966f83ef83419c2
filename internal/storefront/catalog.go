package storefront

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/debounce"
	"github.com/wichananm65/bookstore-storefront/internal/listview"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// PageInfo describes the page of results currently shown.
type PageInfo struct {
	Current int
	Last    int
	Total   int
}

func bookKey(b model.Book) int { return b.ID }

// Catalog is the home page: book grid, search box and category filter.
type Catalog struct {
	app        *App
	ctx        context.Context
	cancel     context.CancelFunc
	books      *listview.List[int, model.Book]
	debouncer  *debounce.Debouncer[api.BookQuery]
	mu         sync.Mutex
	query      api.BookQuery
	page       PageInfo
	categories []model.Category
}

// OpenCatalog loads the categories and the first page of books.
func (a *App) OpenCatalog(ctx context.Context) (*Catalog, error) {
	base, cancel := context.WithCancel(context.Background())
	c := &Catalog{app: a, ctx: base, cancel: cancel, books: listview.New(bookKey)}
	c.debouncer = debounce.New(a.Clock, a.Debounce, func(q api.BookQuery) { _ = c.load(c.ctx, q) })

	cats, err := a.API.ListCategories(ctx)
	if err != nil {
		a.Log.WithError(err).Warn("could not load categories")
	} else {
		c.categories = cats
	}
	if err := c.load(ctx, api.BookQuery{}); err != nil && !errors.Is(err, listview.ErrSuperseded) {
		return c, err
	}
	return c, nil
}

// SetSearch updates the search text. The fetch waits for input to settle.
func (c *Catalog) SetSearch(s string) {
	c.mu.Lock()
	c.query.Search = s
	c.query.Page = 1
	q := c.query
	c.mu.Unlock()
	c.debouncer.Trigger(q)
}

// SetCategory selects a category name; "" shows every category.
func (c *Catalog) SetCategory(name string) {
	c.mu.Lock()
	c.query.Category = strings.TrimSpace(name)
	c.query.Page = 1
	q := c.query
	c.mu.Unlock()
	c.debouncer.Trigger(q)
}

// GoToPage loads another page of the current query right away.
func (c *Catalog) GoToPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.query.Page = page
	q := c.query
	c.mu.Unlock()
	c.debouncer.Cancel()
	return c.load(ctx, q)
}

func (c *Catalog) load(ctx context.Context, q api.BookQuery) error {
	var info PageInfo
	err := c.books.Load(ctx, func(ctx context.Context) ([]model.Book, error) {
		p, err := c.app.API.ListBooks(ctx, q)
		if err != nil {
			return nil, err
		}
		info = PageInfo{Current: p.CurrentPage, Last: p.LastPage, Total: p.Total}
		return p.Data, nil
	})
	switch {
	case err == nil:
		c.mu.Lock()
		c.page = info
		c.mu.Unlock()
	case errors.Is(err, listview.ErrSuperseded):
	default:
		c.app.Log.WithError(err).WithField("search", q.Search).Warn("catalog load failed, keeping previous results")
		c.app.Report(err)
	}
	return err
}

// AddToCart adds one copy of the book and tells the rest of the app.
func (c *Catalog) AddToCart(ctx context.Context, bookID int) error {
	return addToCart(ctx, c.app, bookID, 1, "catalog")
}

func (c *Catalog) Books() []model.Book { return c.books.Items() }

func (c *Catalog) Categories() []model.Category { return c.categories }

func (c *Catalog) Query() api.BookQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Catalog) Page() PageInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Close cancels a pending search and any load it started.
func (c *Catalog) Close() {
	c.debouncer.Stop()
	c.cancel()
}

func addToCart(ctx context.Context, a *App, bookID, qty int, source string) error {
	lines, err := a.API.AddToCart(ctx, api.CartItemInput{BookID: bookID, Quantity: qty})
	if err != nil {
		a.Report(err)
		return err
	}
	title := "Buku"
	for _, l := range lines {
		if l.BookID == bookID && l.Book.Title != "" {
			title = l.Book.Title
		}
	}
	a.success("Berhasil!", title+" masuk keranjang")
	a.publishCart(source)
	return nil
}
