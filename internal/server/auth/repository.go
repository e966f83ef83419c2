package auth

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
)

type Repository interface {
	GetByID(id int) (Account, error)
	GetByEmail(email string) (Account, error)
	Create(a Account) (Account, error)
	Count() (int, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts []Account
	nextID   int
}

func NewInMemoryRepository(seed []Account) *InMemoryRepository {
	repo := &InMemoryRepository{
		accounts: make([]Account, 0, len(seed)),
		nextID:   1,
	}

	maxID := 0
	for _, a := range seed {
		repo.accounts = append(repo.accounts, a)
		if a.ID > maxID {
			maxID = a.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *InMemoryRepository) Create(a Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return Account{}, ErrEmailExists
		}
	}
	if a.ID == 0 {
		a.ID = r.nextID
		r.nextID++
	}
	r.accounts = append(r.accounts, a)
	return a, nil
}

func (r *InMemoryRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts), nil
}
