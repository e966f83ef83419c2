package storefront

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-storefront/internal/listview"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// ErrBelowMinimum is returned, without a request, for quantities under 1.
var ErrBelowMinimum = errors.New("quantity must be at least 1")

// localRefusal reports errors raised by the list itself, before any request.
func localRefusal(err error) bool {
	return errors.Is(err, listview.ErrPending) || errors.Is(err, listview.ErrNotFound)
}

func lineKey(l model.CartLine) int { return l.ID }

type Cart struct {
	app   *App
	lines *listview.List[int, model.CartLine]
}

// OpenCart is customer only.
func (a *App) OpenCart(ctx context.Context) (*Cart, error) {
	if err := a.guard(model.RoleCustomer); err != nil {
		return nil, err
	}
	c := &Cart{app: a, lines: listview.New(lineKey)}
	if err := c.Reload(ctx); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Cart) Reload(ctx context.Context) error {
	err := c.lines.Load(ctx, c.app.API.GetCart)
	if err != nil && !errors.Is(err, listview.ErrSuperseded) {
		c.app.Report(err)
		return err
	}
	return nil
}

func (c *Cart) Lines() []model.CartLine { return c.lines.Items() }

func (c *Cart) Total() decimal.Decimal { return model.CartTotal(c.lines.Items()) }

func (c *Cart) State(id int) listview.State { return c.lines.State(id) }

// MutateQuantity sets a line's quantity. The line changes only after the
// server accepted the new value.
func (c *Cart) MutateQuantity(ctx context.Context, id, qty int) error {
	if qty < model.MinQuantity {
		return ErrBelowMinimum
	}
	var updated model.CartLine
	err := c.lines.Mutate(ctx, id,
		func(ctx context.Context) (err error) {
			updated, err = c.app.API.UpdateCartLine(ctx, id, qty)
			return err
		},
		func(l model.CartLine) model.CartLine {
			l.Quantity = qty
			if updated.Quantity >= model.MinQuantity {
				l.Quantity = updated.Quantity
			}
			return l
		})
	if err != nil {
		if !localRefusal(err) {
			c.app.Report(err)
		}
		return err
	}
	c.app.publishCart("cart")
	return nil
}

func (c *Cart) Increment(ctx context.Context, id int) error {
	l, ok := c.lines.Get(id)
	if !ok {
		return listview.ErrNotFound
	}
	return c.MutateQuantity(ctx, id, l.Quantity+1)
}

// Decrement does nothing at quantity 1.
func (c *Cart) Decrement(ctx context.Context, id int) error {
	l, ok := c.lines.Get(id)
	if !ok {
		return listview.ErrNotFound
	}
	if l.Quantity <= model.MinQuantity {
		return nil
	}
	return c.MutateQuantity(ctx, id, l.Quantity-1)
}

// Remove asks for confirmation before deleting the line.
func (c *Cart) Remove(ctx context.Context, id int) (bool, error) {
	l, ok := c.lines.Get(id)
	if !ok {
		return false, listview.ErrNotFound
	}
	removed, err := c.lines.Remove(ctx, id,
		func(ctx context.Context) (bool, error) {
			return c.app.Confirm.Confirm(ctx, Prompt{
				Title:   "Hapus Buku?",
				Message: l.Book.Title + " akan dihapus dari keranjang",
				Confirm: "Ya, hapus",
			})
		},
		func(ctx context.Context) error { return c.app.API.RemoveCartLine(ctx, id) })
	if err != nil {
		if !localRefusal(err) {
			c.app.Report(err)
		}
		return false, err
	}
	if removed {
		c.app.success("Terhapus", "Item telah dihapus dari keranjang")
		c.app.publishCart("cart")
	}
	return removed, nil
}

// Checkout orders the selected lines. An empty selection does nothing.
func (c *Cart) Checkout(ctx context.Context, selected []int) (*model.Order, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	o, err := c.app.API.Checkout(ctx, selected)
	if err != nil {
		c.app.Report(err)
		return nil, err
	}
	c.lines.Drop(selected...)
	c.app.publishCart("checkout")
	c.app.success("Checkout Berhasil!", "Pesanan "+o.OrderNumber+" telah dibuat")
	c.app.Nav.Go(RouteOrders)
	return &o, nil
}
