package auth

import (
	"strings"
	"time"

	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/middleware"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(repo Repository, secret []byte, ttl time.Duration) *Service {
	return &Service{repo: repo, secret: secret, ttl: ttl, now: time.Now}
}

// Register creates a customer account. Admins are only ever seeded.
func (s *Service) Register(name, email, password string) (Account, error) {
	email = strings.TrimSpace(email)
	if _, err := s.repo.GetByEmail(email); err == nil {
		return Account{}, ErrEmailExists
	} else if err != ErrNotFound {
		return Account{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(Account{
		User:         model.User{Name: strings.TrimSpace(name), Email: email, Role: model.RoleCustomer},
		PasswordHash: string(hashed),
	})
}

func (s *Service) Authenticate(email, password string) (Account, error) {
	a, err := s.repo.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) IssueToken(u model.User) (string, error) {
	return middleware.IssueToken(s.secret, u, s.ttl, s.now())
}

func (s *Service) Count() (int, error) {
	return s.repo.Count()
}

// Seed creates the account unless the email is already taken.
func (s *Service) Seed(u model.User, password string) error {
	if _, err := s.repo.GetByEmail(u.Email); err == nil {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	_, err = s.repo.Create(Account{User: u, PasswordHash: string(hashed)})
	return err
}
