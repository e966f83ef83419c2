package storefront

import (
	"context"
	"sync"

	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/notify"
	"github.com/wichananm65/bookstore-storefront/internal/session"
	"golang.org/x/sync/singleflight"
)

type Link struct {
	Label string
	Route string
}

// Navbar keeps the cart badge current while mounted.
type Navbar struct {
	app    *App
	ctx    context.Context
	cancel context.CancelFunc
	subs   []*notify.Subscription
	group  singleflight.Group

	mu    sync.Mutex
	count int
}

func (a *App) MountNavbar(ctx context.Context) *Navbar {
	base, cancel := context.WithCancel(context.Background())
	n := &Navbar{app: a, ctx: base, cancel: cancel}
	n.subs = append(n.subs,
		notify.Subscribe(a.Bus, CartUpdated, func(CartChange) { n.Refresh(n.ctx) }),
		notify.Subscribe(a.Bus, session.Changed, func(session.Change) { n.Refresh(n.ctx) }),
	)
	n.Refresh(ctx)
	return n
}

// Refresh reloads the badge. Concurrent calls share one request.
func (n *Navbar) Refresh(ctx context.Context) {
	id, ok := n.app.Session.Current()
	if !ok || id.User.IsAdmin() {
		n.set(0)
		return
	}
	// one flight per session so a new login never reads the old user's cart
	v, err, _ := n.group.Do("cart-count:"+id.Token, func() (any, error) {
		lines, err := n.app.API.GetCart(ctx)
		return len(lines), err
	})
	if err != nil {
		n.app.Log.WithError(err).Warn("could not refresh cart count")
		return
	}
	if n.app.Session.Token() != id.Token {
		return
	}
	n.set(v.(int))
}

func (n *Navbar) set(c int) {
	n.mu.Lock()
	n.count = c
	n.mu.Unlock()
}

func (n *Navbar) CartCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func (n *Navbar) Links() []Link {
	id, ok := n.app.Session.Current()
	switch {
	case !ok:
		return []Link{{"Beranda", RouteHome}, {"Masuk", RouteLogin}, {"Daftar", RouteRegister}}
	case id.User.Role == model.RoleAdmin:
		return []Link{{"Dashboard", RouteDashboard}, {"Kelola Buku", RouteAdmin}, {"Profil", RouteProfile}}
	default:
		return []Link{{"Beranda", RouteHome}, {"Keranjang", RouteCart}, {"Pesanan Saya", RouteOrders}, {"Profil", RouteProfile}}
	}
}

func (n *Navbar) Logout() { n.app.Logout() }

func (n *Navbar) Close() {
	for _, s := range n.subs {
		s.Cancel()
	}
	n.cancel()
}
