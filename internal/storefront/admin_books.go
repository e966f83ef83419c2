package storefront

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/debounce"
	"github.com/wichananm65/bookstore-storefront/internal/listview"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// AdminBooks is the admin catalog table.
type AdminBooks struct {
	app       *App
	ctx       context.Context
	cancel    context.CancelFunc
	books     *listview.List[int, model.Book]
	debouncer *debounce.Debouncer[api.BookQuery]

	mu    sync.Mutex
	query api.BookQuery
	page  PageInfo
}

func (a *App) OpenAdminBooks(ctx context.Context) (*AdminBooks, error) {
	if err := a.guard(model.RoleAdmin); err != nil {
		return nil, err
	}
	base, cancel := context.WithCancel(context.Background())
	p := &AdminBooks{app: a, ctx: base, cancel: cancel, books: listview.New(bookKey)}
	p.debouncer = debounce.New(a.Clock, a.Debounce, func(q api.BookQuery) { _ = p.load(p.ctx, q) })
	if err := p.load(ctx, api.BookQuery{}); err != nil && !errors.Is(err, listview.ErrSuperseded) {
		return p, err
	}
	return p, nil
}

func (p *AdminBooks) SetSearch(s string) {
	p.mu.Lock()
	p.query.Search = s
	p.query.Page = 1
	q := p.query
	p.mu.Unlock()
	p.debouncer.Trigger(q)
}

func (p *AdminBooks) GoToPage(ctx context.Context, page int) error {
	p.mu.Lock()
	p.query.Page = page
	q := p.query
	p.mu.Unlock()
	p.debouncer.Cancel()
	return p.load(ctx, q)
}

// Refresh reloads the current query.
func (p *AdminBooks) Refresh(ctx context.Context) error {
	return p.load(ctx, p.Query())
}

func (p *AdminBooks) load(ctx context.Context, q api.BookQuery) error {
	var info PageInfo
	err := p.books.Load(ctx, func(ctx context.Context) ([]model.Book, error) {
		pg, err := p.app.API.ListBooks(ctx, q)
		if err != nil {
			return nil, err
		}
		info = PageInfo{Current: pg.CurrentPage, Last: pg.LastPage, Total: pg.Total}
		return pg.Data, nil
	})
	switch {
	case err == nil:
		p.mu.Lock()
		p.page = info
		p.mu.Unlock()
	case errors.Is(err, listview.ErrSuperseded):
	default:
		p.app.Report(err)
	}
	return err
}

// Delete confirms, deletes, then reloads the table so pagination stays right.
func (p *AdminBooks) Delete(ctx context.Context, id int) (bool, error) {
	b, ok := p.books.Get(id)
	if !ok {
		return false, listview.ErrNotFound
	}
	yes, err := p.app.Confirm.Confirm(ctx, Prompt{
		Title:   "Hapus Buku?",
		Message: b.Title + " akan dihapus permanen",
		Confirm: "Ya, hapus",
	})
	if err != nil || !yes {
		return false, err
	}
	if err := p.app.API.DeleteBook(ctx, id); err != nil {
		p.app.Report(err)
		return false, err
	}
	p.app.success("Terhapus!", b.Title+" telah dihapus")
	if err := p.Refresh(ctx); err != nil && !errors.Is(err, listview.ErrSuperseded) {
		return true, err
	}
	return true, nil
}

// Edit opens the edit form route for a book.
func (p *AdminBooks) Edit(id int) {
	p.app.Nav.Go(EditRoute(id))
}

func (p *AdminBooks) Books() []model.Book { return p.books.Items() }

func (p *AdminBooks) Query() api.BookQuery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

func (p *AdminBooks) Page() PageInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *AdminBooks) Close() {
	p.debouncer.Stop()
	p.cancel()
}
