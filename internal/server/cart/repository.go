package cart

import (
	"errors"
	"sync"
)

var (
	ErrNotFound        = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownBook     = errors.New("book does not exist")
)

// Line is one stored cart row.
type Line struct {
	ID       int
	UserID   int
	BookID   int
	Quantity int
}

// Repository stores cart lines. A user holds at most one line per book.
type Repository interface {
	List(userID int) ([]Line, error)
	// Add increases the quantity of the user's line for bookID, creating it if needed.
	Add(userID, bookID, qty int) (Line, error)
	SetQuantity(userID, id, qty int) (Line, error)
	Remove(userID, id int) error
	// Take removes and returns the given lines. Either all of them are taken
	// or none, in which case ErrNotFound is returned.
	Take(userID int, ids []int) ([]Line, error)
	// Restore puts back lines returned by Take.
	Restore(lines []Line) error
	// RemoveBook drops every user's line for bookID.
	RemoveBook(bookID int) (int, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	lines  []Line
	nextID int
}

func NewInMemoryRepository(seed []Line) *InMemoryRepository {
	r := &InMemoryRepository{lines: make([]Line, 0, len(seed)), nextID: 1}
	for _, l := range seed {
		r.lines = append(r.lines, l)
		if l.ID >= r.nextID {
			r.nextID = l.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(userID int) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Line, 0)
	for _, l := range r.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Add(userID, bookID, qty int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.UserID == userID && l.BookID == bookID {
			r.lines[i].Quantity += qty
			return r.lines[i], nil
		}
	}
	l := Line{ID: r.nextID, UserID: userID, BookID: bookID, Quantity: qty}
	r.nextID++
	r.lines = append(r.lines, l)
	return l, nil
}

func (r *InMemoryRepository) SetQuantity(userID, id, qty int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.ID == id && l.UserID == userID {
			r.lines[i].Quantity = qty
			return r.lines[i], nil
		}
	}
	return Line{}, ErrNotFound
}

func (r *InMemoryRepository) Remove(userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.ID == id && l.UserID == userID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Take(userID int, ids []int) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	taken := make([]Line, 0, len(want))
	kept := make([]Line, 0, len(r.lines))
	for _, l := range r.lines {
		if l.UserID == userID && want[l.ID] {
			taken = append(taken, l)
			continue
		}
		kept = append(kept, l)
	}
	if len(taken) != len(want) {
		return nil, ErrNotFound
	}
	r.lines = kept
	return taken, nil
}

func (r *InMemoryRepository) Restore(lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, lines...)
	return nil
}

func (r *InMemoryRepository) RemoveBook(bookID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.lines[:0]
	for _, l := range r.lines {
		if l.BookID != bookID {
			kept = append(kept, l)
		}
	}
	removed := len(r.lines) - len(kept)
	r.lines = kept
	return removed, nil
}
