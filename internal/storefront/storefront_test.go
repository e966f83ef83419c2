package storefront

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/bookstore-storefront/internal/clock"
	"github.com/wichananm65/bookstore-storefront/internal/config"
	"github.com/wichananm65/bookstore-storefront/internal/server/database"
	"github.com/wichananm65/bookstore-storefront/internal/server/router"
)

// call is one request seen by the backend.
type call struct {
	Method string
	Path   string
	Query  string
}

// backend serves client requests from an in-process devapi and records them.
type backend struct {
	app *fiber.App

	mu    sync.Mutex
	calls []call
	// hold, when set, runs before the request is served.
	hold func(*http.Request)
}

func (b *backend) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	b.calls = append(b.calls, call{Method: req.Method, Path: req.URL.Path, Query: req.URL.RawQuery})
	hold := b.hold
	b.mu.Unlock()
	if hold != nil {
		hold(req)
	}
	return b.app.Test(req, -1)
}

func (b *backend) Calls() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]call(nil), b.calls...)
}

func (b *backend) Reset() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

type navigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *navigator) Go(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

type notices struct {
	mu   sync.Mutex
	list []Notice
}

func (n *notices) Notify(x Notice) {
	n.mu.Lock()
	n.list = append(n.list, x)
	n.mu.Unlock()
}

func (n *notices) Last() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.list) == 0 {
		return Notice{}
	}
	return n.list[len(n.list)-1]
}

// answer confirms every prompt with the same answer and keeps the prompts.
type answer struct {
	yes     bool
	prompts []Prompt
}

func (a *answer) Confirm(_ context.Context, p Prompt) (bool, error) {
	a.prompts = append(a.prompts, p)
	return a.yes, nil
}

type confirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

type harness struct {
	app     *App
	backend *backend
	nav     *navigator
	notices *notices
	confirm *answer
	clock   *clock.Fake
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	srv, err := router.New(context.Background(), config.Server{
		JWTSecret:  "storefront-test",
		TokenTTL:   time.Hour,
		StorageDir: t.TempDir(),
		PageSize:   12,
		Seed:       true,
	}, nil, log)
	require.NoError(t, err)

	h := &harness{
		backend: &backend{app: srv},
		nav:     &navigator{},
		notices: &notices{},
		confirm: &answer{yes: true},
		clock:   clock.NewFake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)),
	}
	h.app = New(config.Client{
		APIURL:     "http://devapi.test/api",
		StorageURL: "http://devapi.test/storage",
		Debounce:   500 * time.Millisecond,
	}, Deps{
		HTTPClient: &http.Client{Transport: h.backend},
		Clock:      h.clock,
		Nav:        h.nav,
		Notices:    h.notices,
		Confirm:    h.confirm,
		Log:        log,
	})
	return h
}

func (h *harness) login(t *testing.T, a database.Account) {
	t.Helper()
	require.NoError(t, h.app.Login(context.Background(), a.User.Email, a.Password))
	h.backend.Reset()
}

var (
	adminAccount    = database.Accounts[0]
	customerAccount = database.Accounts[1]
)
