// Package session holds the identity of the signed-in user for the lifetime of
// the client and persists it between runs.
package session

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/notify"
)

// Identity is the persisted record of a signed-in user.
type Identity struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (i Identity) Role() string { return i.User.Role }

// Change is published on Changed whenever the identity is saved or cleared.
// Identity is nil after a clear.
type Change struct {
	Identity *Identity
}

var Changed = notify.NewTopic[Change]("session-changed")

// Decision is the outcome of a route guard.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

type Holder struct {
	store Store
	bus   *notify.Bus
	log   logrus.FieldLogger

	mu      sync.RWMutex
	current *Identity
}

// Open loads the stored identity. A corrupt record is removed and treated as absent.
func Open(store Store, bus *notify.Bus, log logrus.FieldLogger) *Holder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Holder{store: store, bus: bus, log: log}
	id, err := store.Load()
	switch {
	case err == nil:
		h.current = &id
	case err == ErrNoSession:
	default:
		log.WithError(err).Warn("stored session is unreadable, discarding it")
		if err := store.Clear(); err != nil {
			log.WithError(err).Warn("could not remove stored session")
		}
	}
	return h
}

// Current returns the signed-in identity without touching storage.
func (h *Holder) Current() (Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Identity{}, false
	}
	return *h.current, true
}

// Token returns the bearer token or "" when nobody is signed in.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return ""
	}
	return h.current.Token
}

func (h *Holder) Save(id Identity) error {
	if err := h.store.Save(id); err != nil {
		return err
	}
	h.mu.Lock()
	h.current = &id
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{"email": id.User.Email, "role": id.User.Role}).Info("session started")
	if h.bus != nil {
		copied := id
		notify.Publish(h.bus, Changed, Change{Identity: &copied})
	}
	return nil
}

// Clear forgets the identity. Clearing an empty holder is a no-op.
func (h *Holder) Clear() error {
	h.mu.Lock()
	had := h.current != nil
	h.current = nil
	h.mu.Unlock()

	err := h.store.Clear()
	if had {
		h.log.Info("session cleared")
		if h.bus != nil {
			notify.Publish(h.bus, Changed, Change{})
		}
	}
	return err
}

// Require guards a view. With no roles any signed-in user is allowed; with roles
// the user's role must be one of them.
func (h *Holder) Require(roles ...string) Decision {
	id, ok := h.Current()
	if !ok {
		return RedirectLogin
	}
	if len(roles) == 0 {
		return Allow
	}
	for _, r := range roles {
		if id.Role() == r {
			return Allow
		}
	}
	return RedirectHome
}
