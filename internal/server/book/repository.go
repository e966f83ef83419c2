package book

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

var ErrNotFound = errors.New("book not found")

// Repository stores books. List returns matches newest first.
type Repository interface {
	List(f Filter) ([]model.Book, error)
	GetByID(id int) (model.Book, error)
	ListByIDs(ids []int) ([]model.Book, error)
	Create(b model.Book) (model.Book, error)
	Update(id int, b model.Book) (model.Book, error)
	Delete(id int) error
	Count() (int, error)
	CountByCategory() (map[string]int, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	books  []model.Book
	nextID int
}

func NewInMemoryRepository(seed []model.Book) *InMemoryRepository {
	repo := &InMemoryRepository{books: make([]model.Book, 0, len(seed)), nextID: 1}
	maxID := 0
	for _, b := range seed {
		if b.ID == 0 {
			maxID++
			b.ID = maxID
		}
		repo.books = append(repo.books, b)
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List(f Filter) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.books {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Book{}, ErrNotFound
}

func (r *InMemoryRepository) ListByIDs(ids []int) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Book, 0, len(ids))
	for _, id := range ids {
		for _, b := range r.books {
			if b.ID == id {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(b model.Book) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b.ID = r.nextID
	r.nextID++
	r.books = append(r.books, b)
	return b, nil
}

func (r *InMemoryRepository) Update(id int, b model.Book) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.books {
		if existing.ID == id {
			b.ID = id
			if b.Image == "" {
				b.Image = existing.Image
			}
			r.books[i] = b
			return b, nil
		}
	}
	return model.Book{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.books {
		if b.ID == id {
			r.books = append(r.books[:i], r.books[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books), nil
}

func (r *InMemoryRepository) CountByCategory() (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, b := range r.books {
		out[strings.TrimSpace(b.Category.Name)]++
	}
	return out, nil
}
