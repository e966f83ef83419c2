// Package storefront holds the page view-models of the storefront client and
// the App that composes them.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/clock"
	"github.com/wichananm65/bookstore-storefront/internal/config"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/notify"
	"github.com/wichananm65/bookstore-storefront/internal/session"
)

const (
	RouteHome      = "/"
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteCart      = "/cart"
	RouteOrders    = "/orders"
	RouteProfile   = "/profile"
	RouteDashboard = "/admin/dashboard"
	RouteAdmin     = "/admin/books"
	RouteAddBook   = "/admin/books/add"
)

// ErrRedirected is returned by pages whose guard sent the user elsewhere.
// No data request was made.
var ErrRedirected = errors.New("redirected by guard")

// CartChange is published after any successful cart mutation.
type CartChange struct {
	Source string
}

var CartUpdated = notify.NewTopic[CartChange]("cart-updated")

type Navigator interface {
	Go(route string)
}

type Notifier interface {
	Notify(Notice)
}

type Prompt struct {
	Title   string
	Message string
	Confirm string
}

// Confirmer blocks until the user answers the prompt.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type Deps struct {
	Store      session.Store
	HTTPClient *http.Client
	Clock      clock.Clock
	Nav        Navigator
	Notices    Notifier
	Confirm    Confirmer
	Log        logrus.FieldLogger
}

// App owns every process-wide collaborator. Pages receive it on open.
type App struct {
	API      *api.Client
	Session  *session.Holder
	Bus      *notify.Bus
	Clock    clock.Clock
	Nav      Navigator
	Notices  Notifier
	Confirm  Confirmer
	Log      logrus.FieldLogger
	Debounce time.Duration
}

func New(cfg config.Client, d Deps) *App {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Store == nil {
		d.Store = session.NewMemoryStore()
	}
	a := &App{
		Bus:      notify.NewBus(),
		Clock:    d.Clock,
		Nav:      d.Nav,
		Notices:  d.Notices,
		Confirm:  d.Confirm,
		Log:      d.Log,
		Debounce: cfg.Debounce,
	}
	a.Session = session.Open(d.Store, a.Bus, d.Log)

	opts := []api.Option{
		api.WithTokenSource(a.Session),
		api.WithLogger(d.Log),
		api.WithUnauthorizedHandler(a.forceLogout),
	}
	if cfg.StorageURL != "" {
		opts = append(opts, api.WithStorageURL(cfg.StorageURL))
	}
	if d.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(d.HTTPClient))
	} else if cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.Timeout))
	}
	a.API = api.New(cfg.APIURL, opts...)
	return a
}

// forceLogout runs when a request carrying our token was answered 401.
func (a *App) forceLogout() {
	a.Log.Info("token rejected, clearing session")
	if err := a.Session.Clear(); err != nil {
		a.Log.WithError(err).Warn("could not clear session")
	}
}

// guard redirects and returns ErrRedirected unless the session satisfies roles.
func (a *App) guard(roles ...string) error {
	switch a.Session.Require(roles...) {
	case session.RedirectLogin:
		a.Nav.Go(RouteLogin)
		return ErrRedirected
	case session.RedirectHome:
		a.Nav.Go(RouteHome)
		return ErrRedirected
	}
	return nil
}

// Report turns a failed call into a notice. A 401 also sends the user to login.
func (a *App) Report(err error) {
	if err == nil {
		return
	}
	n := Translate(err)
	a.Log.WithError(err).WithField("kind", api.KindOf(err).String()).Debug("request failed")
	a.Notices.Notify(n)
	if api.IsKind(err, api.KindUnauthorized) {
		a.Nav.Go(RouteLogin)
	}
}

func (a *App) success(title, message string) {
	a.Notices.Notify(Notice{Level: LevelSuccess, Title: title, Message: message})
}

func (a *App) publishCart(source string) {
	notify.Publish(a.Bus, CartUpdated, CartChange{Source: source})
}

// Landing is where a user goes after login.
func Landing(u model.User) string {
	if u.IsAdmin() {
		return RouteDashboard
	}
	return RouteHome
}
