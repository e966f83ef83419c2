package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MinQuantity is the smallest quantity a cart line may hold.
const MinQuantity = 1

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusSuccess   = "success"
	OrderStatusCancelled = "cancelled"
	OrderStatusFailed    = "failed"
)

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// BookCategory is how a book refers to its category. The backend may send it
// either as a bare name or as a nested object.
type BookCategory struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func (c *BookCategory) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = BookCategory{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*c = BookCategory{Name: name}
		return nil
	}
	type plain BookCategory
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = BookCategory(p)
	return nil
}

type Book struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Publisher     string          `json:"publisher,omitempty"`
	PublishedYear int             `json:"published_year,omitempty"`
	Language      string          `json:"language,omitempty"`
	Pages         int             `json:"pages,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Category      BookCategory    `json:"category"`
	Description   string          `json:"description,omitempty"`
	Image         string          `json:"image,omitempty"`
}

type CartLine struct {
	ID       int  `json:"id"`
	BookID   int  `json:"book_id"`
	Book     Book `json:"book"`
	Quantity int  `json:"quantity"`
}

// Subtotal is the line price at the book's current price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Book.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums the subtotals of the given lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

type OrderItem struct {
	ID       int             `json:"id"`
	BookID   int             `json:"book_id"`
	Book     Book            `json:"book"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID          int             `json:"id"`
	OrderNumber string          `json:"order_number,omitempty"`
	Status      string          `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"order_items"`
}

// CanCancel reports whether the customer may still cancel the order.
func (o Order) CanCancel() bool { return o.Status == OrderStatusPending }

type Category struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Children []Category `json:"children,omitempty"`
}

// Flatten returns the categories depth first, parents before their children.
func Flatten(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		children := c.Children
		c.Children = nil
		out = append(out, c)
		out = append(out, Flatten(children)...)
	}
	return out
}

type Activity struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Time  string `json:"time"`
}

const (
	ActivityAdded   = "Ditambahkan"
	ActivityUpdated = "Diperbarui"
	ActivityDeleted = "Dihapus"
)

type Statistics struct {
	TotalBooks     int            `json:"total_books"`
	TotalUsers     int            `json:"total_users"`
	TotalOrders    int            `json:"total_orders"`
	CategoryCounts map[string]int `json:"category_counts"`
	BookActivities []Activity     `json:"book_activities"`
}

// DashboardCategories is the fixed category set charted on the admin dashboard.
var DashboardCategories = []string{"Novel", "Sejarah", "Filosofi", "Pendidikan", "Biografi"}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Envelope is the body shape of every API response.
type Envelope[T any] struct {
	Message string              `json:"message,omitempty"`
	Data    T                   `json:"data"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
