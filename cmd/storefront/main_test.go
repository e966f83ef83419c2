package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/wichananm65/bookstore-storefront/internal/api"
	"github.com/wichananm65/bookstore-storefront/internal/config"
	"github.com/wichananm65/bookstore-storefront/internal/server/database"
	"github.com/wichananm65/bookstore-storefront/internal/server/router"
	"github.com/wichananm65/bookstore-storefront/internal/storefront"
)

type fiberTransport struct{ app *fiber.App }

func (f fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return f.app.Test(req, -1)
}

// newShop signs in as account against an in-process devapi.
func newShop(t *testing.T, account database.Account) (*shop, *bytes.Buffer) {
	t.Helper()
	log, _ := test.NewNullLogger()
	srv, err := router.New(context.Background(), config.Server{
		JWTSecret:  "cli-test",
		TokenTTL:   time.Hour,
		StorageDir: t.TempDir(),
		PageSize:   12,
		Seed:       true,
	}, nil, log)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	term := newTerminal(strings.NewReader(""), out, true)
	a := storefront.New(config.Client{
		APIURL:     "http://devapi.test/api",
		StorageURL: "http://devapi.test/storage",
		Debounce:   500 * time.Millisecond,
	}, storefront.Deps{
		HTTPClient: &http.Client{Transport: fiberTransport{srv}},
		Nav:        term,
		Notices:    term,
		Confirm:    term,
		Log:        log,
	})
	require.NoError(t, a.Login(context.Background(), account.User.Email, account.Password))
	out.Reset()
	return &shop{App: a, term: term}, out
}

func run(s *shop, args ...string) error {
	app := newApp()
	app.Before = func(c *cli.Context) error {
		c.App.Metadata = map[string]any{"shop": s}
		return nil
	}
	return app.Run(append([]string{"storefront"}, args...))
}

func TestAdminAddThenEdit(t *testing.T) {
	s, out := newShop(t, database.Accounts[0])
	ctx := context.Background()
	cover := filepath.Join(t.TempDir(), "ronggeng.png")
	require.NoError(t, os.WriteFile(cover, pngPixel, 0o600))

	err := run(s, "admin", "add",
		"--title", "Ronggeng Dukuh Paruk",
		"--author", "Ahmad Tohari",
		"--publisher", "Gramedia",
		"--year", "1982",
		"--pages", "408",
		"--price", "99000",
		"--category", "Novel",
		"--description", "Srintil dan Dukuh Paruk",
		"--image", cover)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Berhasil!")

	found, err := s.API.ListBooks(ctx, api.BookQuery{Search: "Ronggeng"})
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	created := found.Data[0]
	assert.Equal(t, "Indonesia", created.Language)
	assert.NotEmpty(t, created.Image)

	out.Reset()
	require.NoError(t, run(s, "admin", "edit", "--price", "120000", strconv.Itoa(created.ID)))
	assert.Contains(t, out.String(), "Perubahan Disimpan!")

	edited, err := s.API.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "120000", edited.Price.StringFixed(0))
	assert.Equal(t, "Ronggeng Dukuh Paruk", edited.Title, "unset flags keep the stored value")
	assert.Equal(t, "Ahmad Tohari", edited.Author)
	assert.Equal(t, 408, edited.Pages)
}

func TestAdminAddPrintsFieldErrors(t *testing.T) {
	s, out := newShop(t, database.Accounts[0])

	err := run(s, "admin", "add", "--author", "Anonim", "--price", "0")
	require.Error(t, err)
	assert.Contains(t, out.String(), "title")
	assert.Contains(t, out.String(), "price")
}

func TestAdminAddRejectsBadPrice(t *testing.T) {
	s, _ := newShop(t, database.Accounts[0])

	err := run(s, "admin", "add", "--title", "X", "--author", "Y", "--category", "Novel", "--price", "murah")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestAdminDeleteWithSearch(t *testing.T) {
	s, out := newShop(t, database.Accounts[0])

	err := run(s, "admin", "delete", "--search", "Sapiens", "1")
	require.Error(t, err, "book 1 is filtered out by the search")
	assert.Contains(t, err.Error(), "not on the first page")

	require.NoError(t, run(s, "admin", "delete", "--search", "Laskar", "1"))
	assert.Contains(t, out.String(), "Terhapus!")
	_, err = s.API.GetBook(context.Background(), 1)
	assert.Error(t, err)
}

func TestAdminCommandsSendCustomersHome(t *testing.T) {
	s, out := newShop(t, database.Accounts[1])

	require.NoError(t, run(s, "admin", "add", "--title", "X"))
	assert.Contains(t, out.String(), "-> "+storefront.RouteHome)
}

func TestPrintLinksShowsBadge(t *testing.T) {
	s, out := newShop(t, database.Accounts[1])
	ctx := context.Background()
	_, err := s.API.AddToCart(ctx, api.CartItemInput{BookID: 1, Quantity: 2}, api.CartItemInput{BookID: 4, Quantity: 1})
	require.NoError(t, err)

	n := s.MountNavbar(ctx)
	defer n.Close()
	printLinks(s.term, n)
	assert.Contains(t, out.String(), "Keranjang "+storefront.RouteCart)
	assert.Contains(t, out.String(), "cart: 2")
}

// pngPixel is a 1x1 transparent PNG.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
