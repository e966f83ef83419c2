package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

type CartItemInput struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) ([]model.CartLine, error) {
	var out []model.CartLine
	err := c.do(ctx, request{method: http.MethodGet, path: "/cart"}, &out)
	return out, err
}

// AddToCart adds the items; a book already in the cart has its quantity increased.
// It returns the affected cart lines.
func (c *Client) AddToCart(ctx context.Context, items ...CartItemInput) ([]model.CartLine, error) {
	if len(items) == 0 {
		return nil, invalid("items", "nothing to add")
	}
	for _, it := range items {
		if it.Quantity < model.MinQuantity {
			return nil, invalid("quantity", "quantity must be at least 1")
		}
	}
	body, err := jsonBody(struct {
		Items []CartItemInput `json:"items"`
	}{items})
	if err != nil {
		return nil, err
	}
	var out []model.CartLine
	err = c.do(ctx, request{method: http.MethodPost, path: "/cart", body: body, contentType: "application/json"}, &out)
	return out, err
}

// UpdateCartLine sets the quantity of one line. Quantities below 1 are refused
// without contacting the backend.
func (c *Client) UpdateCartLine(ctx context.Context, id, quantity int) (model.CartLine, error) {
	if quantity < model.MinQuantity {
		return model.CartLine{}, invalid("quantity", "quantity must be at least 1")
	}
	body, err := jsonBody(map[string]int{"quantity": quantity})
	if err != nil {
		return model.CartLine{}, err
	}
	var out model.CartLine
	err = c.do(ctx, request{method: http.MethodPut, path: "/cart/" + strconv.Itoa(id), body: body, contentType: "application/json"}, &out)
	return out, err
}

func (c *Client) RemoveCartLine(ctx context.Context, id int) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/cart/" + strconv.Itoa(id)}, nil)
}
