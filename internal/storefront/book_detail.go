package storefront

import (
	"context"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

type BookDetail struct {
	app  *App
	book model.Book
}

func (a *App) OpenBookDetail(ctx context.Context, id int) (*BookDetail, error) {
	b, err := a.API.GetBook(ctx, id)
	if err != nil {
		a.Report(err)
		return nil, err
	}
	return &BookDetail{app: a, book: b}, nil
}

func (d *BookDetail) Book() model.Book { return d.book }

func (d *BookDetail) CoverURL() string { return d.app.API.CoverURL(d.book.Image) }

func (d *BookDetail) AddToCart(ctx context.Context, qty int) error {
	if qty < model.MinQuantity {
		return ErrBelowMinimum
	}
	return addToCart(ctx, d.app, d.book.ID, qty, "book-detail")
}

// BuyNow adds one copy and opens the cart.
func (d *BookDetail) BuyNow(ctx context.Context) error {
	if err := addToCart(ctx, d.app, d.book.ID, 1, "book-detail"); err != nil {
		return err
	}
	d.app.Nav.Go(RouteCart)
	return nil
}
