package auth

import (
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// Account is a stored user with its password hash.
type Account struct {
	model.User
	PasswordHash string `json:"-"`
}
