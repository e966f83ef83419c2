package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what login and register hand back.
type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, cred Credentials) (AuthResult, error) {
	if strings.TrimSpace(cred.Email) == "" {
		return AuthResult{}, invalid("email", "email is required")
	}
	if cred.Password == "" {
		return AuthResult{}, invalid("password", "password is required")
	}
	body, err := jsonBody(cred)
	if err != nil {
		return AuthResult{}, err
	}
	var out AuthResult
	err = c.do(ctx, request{method: http.MethodPost, path: "/login", body: body, contentType: "application/json"}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	switch {
	case strings.TrimSpace(reg.Name) == "":
		return AuthResult{}, invalid("name", "name is required")
	case strings.TrimSpace(reg.Email) == "":
		return AuthResult{}, invalid("email", "email is required")
	case len(reg.Password) < 8:
		return AuthResult{}, invalid("password", "password must be at least 8 characters")
	}
	body, err := jsonBody(reg)
	if err != nil {
		return AuthResult{}, err
	}
	var out AuthResult
	err = c.do(ctx, request{method: http.MethodPost, path: "/register", body: body, contentType: "application/json"}, &out)
	return out, err
}
