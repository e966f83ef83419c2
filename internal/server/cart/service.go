package cart

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// BookLookup resolves the books referenced by cart lines.
type BookLookup interface {
	GetByID(id int) (model.Book, error)
	ListByIDs(ids []int) ([]model.Book, error)
}

// Item is one entry of an add-to-cart request.
type Item struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

type Service struct {
	repo  Repository
	books BookLookup
	log   logrus.FieldLogger
}

func NewService(repo Repository, books BookLookup, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, books: books, log: log}
}

// Get returns the user's cart with each line's book attached.
func (s *Service) Get(userID int) ([]model.CartLine, error) {
	lines, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}
	return s.attach(lines)
}

// Add merges items into the cart and returns the affected lines.
func (s *Service) Add(userID int, items []Item) ([]model.CartLine, error) {
	for _, it := range items {
		if it.Quantity < model.MinQuantity {
			return nil, ErrInvalidQuantity
		}
		if _, err := s.books.GetByID(it.BookID); err != nil {
			return nil, ErrUnknownBook
		}
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		l, err := s.repo.Add(userID, it.BookID, it.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return s.attach(lines)
}

func (s *Service) SetQuantity(userID, id, qty int) (model.CartLine, error) {
	if qty < model.MinQuantity {
		return model.CartLine{}, ErrInvalidQuantity
	}
	l, err := s.repo.SetQuantity(userID, id, qty)
	if err != nil {
		return model.CartLine{}, err
	}
	out, err := s.attach([]Line{l})
	if err != nil {
		return model.CartLine{}, err
	}
	if len(out) == 0 {
		// the book left the catalog
		return model.CartLine{}, ErrNotFound
	}
	return out[0], nil
}

func (s *Service) Remove(userID, id int) error {
	return s.repo.Remove(userID, id)
}

// Take removes the given lines for checkout and returns them with books attached.
func (s *Service) Take(userID int, ids []int) ([]model.CartLine, []Line, error) {
	lines, err := s.repo.Take(userID, ids)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.attach(lines)
	if err != nil {
		if rerr := s.repo.Restore(lines); rerr != nil {
			s.log.WithError(rerr).WithField("user_id", userID).Error("could not restore cart lines")
		}
		return nil, nil, errors.Wrap(err, "attach books")
	}
	return out, lines, nil
}

// Restore puts back lines taken by a checkout that failed.
func (s *Service) Restore(lines []Line) error {
	return s.repo.Restore(lines)
}

// RemoveBook drops the book from every cart. It runs when the book is deleted.
func (s *Service) RemoveBook(bookID int) error {
	n, err := s.repo.RemoveBook(bookID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.WithFields(logrus.Fields{"book_id": bookID, "lines": n}).Info("removed deleted book from carts")
	}
	return nil
}

func (s *Service) attach(lines []Line) ([]model.CartLine, error) {
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.BookID)
	}
	books, err := s.books.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		b, ok := byID[l.BookID]
		if !ok {
			// the book was deleted from the catalog after it was added
			continue
		}
		out = append(out, model.CartLine{ID: l.ID, BookID: l.BookID, Book: b, Quantity: l.Quantity})
	}
	return out, nil
}
