package storefront

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// EditRoute is the admin edit page for a book.
func EditRoute(id int) string { return RouteAdmin + "/edit/" + strconv.Itoa(id) }

// BookForm backs both the add and the edit page. ID is 0 when adding.
type BookForm struct {
	app *App
	ID  int

	Input  api.BookInput
	Fields map[string][]string
	// Current is the stored cover of the book being edited.
	Current string
}

func (a *App) OpenAddBook(ctx context.Context) (*BookForm, error) {
	if err := a.guard(model.RoleAdmin); err != nil {
		return nil, err
	}
	return &BookForm{app: a}, nil
}

// OpenEditBook pre-fills the form from the stored book.
func (a *App) OpenEditBook(ctx context.Context, id int) (*BookForm, error) {
	if err := a.guard(model.RoleAdmin); err != nil {
		return nil, err
	}
	b, err := a.API.GetBook(ctx, id)
	if err != nil {
		a.Report(err)
		return nil, err
	}
	return &BookForm{app: a, ID: id, Input: api.InputFromBook(b), Current: b.Image}, nil
}

func (f *BookForm) Editing() bool { return f.ID != 0 }

// Submit saves the form. On failure the input is left as typed so it can be
// corrected and resent.
func (f *BookForm) Submit(ctx context.Context) (model.Book, error) {
	f.Fields = nil
	if err := f.Input.Validate(); err != nil {
		f.keepFields(err)
		f.app.Report(err)
		return model.Book{}, err
	}

	var (
		b   model.Book
		err error
	)
	if f.Editing() {
		b, err = f.app.API.UpdateBook(ctx, f.ID, f.Input)
	} else {
		b, err = f.app.API.CreateBook(ctx, f.Input)
	}
	if err != nil {
		f.keepFields(err)
		f.app.Report(err)
		return model.Book{}, err
	}

	if f.Editing() {
		f.app.success("Perubahan Disimpan!", b.Title+" berhasil diperbarui")
	} else {
		f.app.success("Berhasil!", b.Title+" berhasil ditambahkan")
	}
	f.app.Nav.Go(RouteAdmin)
	return b, nil
}

func (f *BookForm) keepFields(err error) {
	var e *api.Error
	if errors.As(err, &e) {
		f.Fields = e.Fields
	}
}
