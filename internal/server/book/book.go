package book

import (
	"strings"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// Filter narrows the catalog. Search matches title or author, case-insensitively;
// Category matches the category name exactly, ignoring case.
type Filter struct {
	Search   string
	Category string
}

func (f Filter) Match(b model.Book) bool {
	if f.Category != "" && !strings.EqualFold(b.Category.Name, f.Category) {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q)
}

// CategoryOf builds the nested category a book carries from its name.
func CategoryOf(name string) model.BookCategory {
	name = strings.TrimSpace(name)
	return model.BookCategory{Name: name, Slug: Slugify(name)}
}

func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
