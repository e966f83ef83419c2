package category

import (
	"sync"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// Row is one stored category; ParentID is 0 for top-level categories.
type Row struct {
	ID       int
	ParentID int
	Name     string
	Slug     string
}

// Repository provides access to category rows.
type Repository interface {
	List() ([]Row, error)
}

type InMemoryRepository struct {
	mu   sync.RWMutex
	rows []Row
}

func NewInMemoryRepository(seed []Row) *InMemoryRepository {
	return &InMemoryRepository{rows: append([]Row(nil), seed...)}
}

func (r *InMemoryRepository) List() ([]Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Row(nil), r.rows...), nil
}

// Tree nests rows under their parents, keeping input order. Rows whose parent
// is missing are promoted to the top level.
func Tree(rows []Row) []model.Category {
	known := make(map[int]bool, len(rows))
	for _, r := range rows {
		known[r.ID] = true
	}
	children := make(map[int][]model.Category)
	var roots []Row
	for _, r := range rows {
		if r.ParentID == 0 || !known[r.ParentID] {
			roots = append(roots, r)
			continue
		}
		children[r.ParentID] = append(children[r.ParentID], model.Category{ID: r.ID, Name: r.Name, Slug: r.Slug})
	}
	out := make([]model.Category, 0, len(roots))
	for _, r := range roots {
		out = append(out, model.Category{ID: r.ID, Name: r.Name, Slug: r.Slug, Children: children[r.ID]})
	}
	return out
}
