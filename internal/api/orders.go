package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// Checkout turns the given cart lines into one order. Only 201 counts as success.
func (c *Client) Checkout(ctx context.Context, cartIDs []int) (model.Order, error) {
	if len(cartIDs) == 0 {
		return model.Order{}, invalid("cart_ids", "select at least one item")
	}
	body, err := jsonBody(map[string][]int{"cart_ids": cartIDs})
	if err != nil {
		return model.Order{}, err
	}
	var out model.Order
	err = c.do(ctx, request{method: http.MethodPost, path: "/checkout", body: body, contentType: "application/json", want: http.StatusCreated}, &out)
	return out, err
}

func (c *Client) MyOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.do(ctx, request{method: http.MethodGet, path: "/my-orders"}, &out)
	return out, err
}

func (c *Client) CancelOrder(ctx context.Context, id int) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, request{method: http.MethodDelete, path: "/orders/" + strconv.Itoa(id) + "/cancel"}, &out)
	return out, err
}
