package storefront

import (
	"context"

	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/listview"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// ErrNotCancellable is returned, without a request, for orders past pending.
var ErrNotCancellable = errors.New("only pending orders can be cancelled")

func orderKey(o model.Order) int { return o.ID }

type Orders struct {
	app    *App
	orders *listview.List[int, model.Order]
}

func (a *App) OpenOrders(ctx context.Context) (*Orders, error) {
	if err := a.guard(model.RoleCustomer); err != nil {
		return nil, err
	}
	o := &Orders{app: a, orders: listview.New(orderKey)}
	if err := o.Reload(ctx); err != nil {
		return o, err
	}
	return o, nil
}

func (o *Orders) Reload(ctx context.Context) error {
	err := o.orders.Load(ctx, o.app.API.MyOrders)
	if err != nil && !errors.Is(err, listview.ErrSuperseded) {
		o.app.Report(err)
		return err
	}
	return nil
}

func (o *Orders) Orders() []model.Order { return o.orders.Items() }

// Cancel asks for confirmation, then marks the order cancelled once the
// server agreed.
func (o *Orders) Cancel(ctx context.Context, id int) (bool, error) {
	ord, ok := o.orders.Get(id)
	if !ok {
		return false, listview.ErrNotFound
	}
	if !ord.CanCancel() {
		return false, ErrNotCancellable
	}
	yes, err := o.app.Confirm.Confirm(ctx, Prompt{
		Title:   "Batalkan Pesanan?",
		Message: "Pesanan yang dibatalkan tidak dapat dikembalikan",
		Confirm: "Ya, batalkan",
	})
	if err != nil || !yes {
		return false, err
	}
	err = o.orders.Mutate(ctx, id,
		func(ctx context.Context) error {
			_, err := o.app.API.CancelOrder(ctx, id)
			return err
		},
		func(ord model.Order) model.Order {
			ord.Status = model.OrderStatusCancelled
			return ord
		})
	if err != nil {
		if !localRefusal(err) {
			o.app.Report(err)
		}
		return false, err
	}
	o.app.success("Dibatalkan", "Pesanan berhasil dibatalkan")
	return true, nil
}
