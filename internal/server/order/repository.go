package order

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrEmptySelection   = errors.New("no cart items selected")
	ErrInvalidSelection = errors.New("selected cart items are invalid")
	ErrNotCancellable   = errors.New("only pending orders can be cancelled")
)

// Repository stores orders with their items. Items carry the book id and the
// title and price at purchase time.
type Repository interface {
	Create(userID int, o model.Order) (model.Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(userID int) ([]model.Order, error)
	Get(userID, id int) (model.Order, error)
	// Transition moves the order from one status to another. It fails with
	// ErrNotCancellable when the order is no longer in status from.
	Transition(userID, id int, from, to string) (model.Order, error)
	Count() (int, error)
}

type stored struct {
	userID int
	order  model.Order
}

type InMemoryRepository struct {
	mu         sync.RWMutex
	orders     []stored
	nextID     int
	nextItemID int
	now        func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, nextItemID: 1, now: time.Now}
}

func (r *InMemoryRepository) Create(userID int, o model.Order) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	items := make([]model.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.ID = r.nextItemID
		r.nextItemID++
		items[i] = it
	}
	o.Items = items
	r.orders = append(r.orders, stored{userID: userID, order: o})
	return o, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Order, 0)
	for _, s := range r.orders {
		if s.userID == userID {
			out = append(out, s.order)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Get(userID, id int) (model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.orders {
		if s.userID == userID && s.order.ID == id {
			return s.order, nil
		}
	}
	return model.Order{}, ErrNotFound
}

func (r *InMemoryRepository) Transition(userID, id int, from, to string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.orders {
		if s.userID != userID || s.order.ID != id {
			continue
		}
		if s.order.Status != from {
			return model.Order{}, ErrNotCancellable
		}
		r.orders[i].order.Status = to
		return r.orders[i].order, nil
	}
	return model.Order{}, ErrNotFound
}

func (r *InMemoryRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders), nil
}
