package order

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/cart"
)

// CartTaker hands over cart lines for checkout and takes them back when the
// order cannot be written.
type CartTaker interface {
	Take(userID int, ids []int) ([]model.CartLine, []cart.Line, error)
	Restore(lines []cart.Line) error
}

// BookLookup refreshes the book shown with each order item.
type BookLookup interface {
	ListByIDs(ids []int) ([]model.Book, error)
}

type Service struct {
	repo  Repository
	carts CartTaker
	books BookLookup
	log   logrus.FieldLogger
}

func NewService(repo Repository, carts CartTaker, books BookLookup, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, carts: carts, books: books, log: log}
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// Checkout turns the selected cart lines into a pending order priced at the
// books' current prices. The lines leave the cart only if the order is written.
func (s *Service) Checkout(userID int, cartIDs []int) (model.Order, error) {
	if len(cartIDs) == 0 {
		return model.Order{}, ErrEmptySelection
	}
	lines, taken, err := s.carts.Take(userID, cartIDs)
	if err != nil {
		if errors.Cause(err) == cart.ErrNotFound {
			return model.Order{}, ErrInvalidSelection
		}
		return model.Order{}, errors.Wrap(err, "take cart lines")
	}
	if len(lines) != len(taken) {
		// a selected book left the catalog
		s.restore(taken)
		return model.Order{}, ErrInvalidSelection
	}

	o := model.Order{
		OrderNumber: newOrderNumber(),
		Status:      model.OrderStatusPending,
		TotalPrice:  decimal.Zero,
		Items:       make([]model.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		o.Items = append(o.Items, model.OrderItem{
			BookID:   l.BookID,
			Book:     l.Book,
			Quantity: l.Quantity,
			Price:    l.Book.Price,
		})
		o.TotalPrice = o.TotalPrice.Add(l.Subtotal())
	}

	created, err := s.repo.Create(userID, o)
	if err != nil {
		s.restore(taken)
		return model.Order{}, errors.Wrap(err, "create order")
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "order": created.OrderNumber, "items": len(created.Items)}).Info("order placed")
	return s.withBooks(created)
}

// MyOrders lists the user's orders newest first.
func (s *Service) MyOrders(userID int) ([]model.Order, error) {
	orders, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i], err = s.withBooks(orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// Cancel moves a pending order to cancelled.
func (s *Service) Cancel(userID, id int) (model.Order, error) {
	o, err := s.repo.Transition(userID, id, model.OrderStatusPending, model.OrderStatusCancelled)
	if err != nil {
		return model.Order{}, err
	}
	return s.withBooks(o)
}

func (s *Service) Count() (int, error) { return s.repo.Count() }

// withBooks replaces the stored title snapshot with the live book when it
// still exists.
func (s *Service) withBooks(o model.Order) (model.Order, error) {
	if len(o.Items) == 0 {
		return o, nil
	}
	ids := make([]int, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.BookID)
	}
	books, err := s.books.ListByIDs(ids)
	if err != nil {
		return model.Order{}, err
	}
	byID := make(map[int]model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	items := make([]model.OrderItem, len(o.Items))
	for i, it := range o.Items {
		if b, ok := byID[it.BookID]; ok {
			it.Book = b
		}
		items[i] = it
	}
	o.Items = items
	return o, nil
}

func (s *Service) restore(lines []cart.Line) {
	if err := s.carts.Restore(lines); err != nil {
		s.log.WithError(err).Error("could not restore cart lines after failed checkout")
	}
}
