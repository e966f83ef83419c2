package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_SearchWaitsForInputToSettle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	c, err := h.app.OpenCatalog(ctx)
	require.NoError(t, err)
	defer c.Close()
	assert.Len(t, c.Books(), 11)
	assert.NotEmpty(t, c.Categories())
	h.backend.Reset()

	for _, s := range []string{"L", "La", "Las", "Laskar"} {
		c.SetSearch(s)
		h.clock.Advance(100 * time.Millisecond)
	}
	c.SetCategory("Novel")
	h.clock.Advance(499 * time.Millisecond)
	assert.Empty(t, h.backend.Calls(), "nothing is sent before the input has been quiet for the whole window")

	h.clock.Advance(time.Millisecond)
	calls := h.backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "GET", calls[0].Method)
	assert.Equal(t, "/api/books", calls[0].Path)
	assert.Equal(t, "category=Novel&search=Laskar", calls[0].Query)

	require.Len(t, c.Books(), 1)
	assert.Equal(t, "Laskar Pelangi", c.Books()[0].Title)
	assert.Equal(t, PageInfo{Current: 1, Last: 1, Total: 1}, c.Page())
}

func TestCatalog_GoToPageSkipsTheWindow(t *testing.T) {
	h := newHarness(t)
	c, err := h.app.OpenCatalog(context.Background())
	require.NoError(t, err)
	defer c.Close()

	c.SetSearch("ignored")
	h.backend.Reset()
	require.NoError(t, c.GoToPage(context.Background(), 2))

	calls := h.backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "page=2&search=ignored", calls[0].Query)

	// the pending search was dropped
	h.clock.Advance(time.Second)
	assert.Len(t, h.backend.Calls(), 1)
}

func TestCatalog_CloseDropsPendingSearch(t *testing.T) {
	h := newHarness(t)
	c, err := h.app.OpenCatalog(context.Background())
	require.NoError(t, err)
	h.backend.Reset()

	c.SetSearch("Sapiens")
	c.Close()
	h.clock.Advance(time.Second)
	assert.Empty(t, h.backend.Calls())
	assert.Len(t, c.Books(), 11)
}

func TestCatalog_AddToCartNeedsLogin(t *testing.T) {
	h := newHarness(t)
	c, err := h.app.OpenCatalog(context.Background())
	require.NoError(t, err)
	defer c.Close()

	err = c.AddToCart(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "Harus Login", h.notices.Last().Title)
	assert.Equal(t, RouteLogin, h.nav.Last())
}

func TestCatalog_AdminCannotShop(t *testing.T) {
	h := newHarness(t)
	h.login(t, adminAccount)
	c, err := h.app.OpenCatalog(context.Background())
	require.NoError(t, err)
	defer c.Close()

	err = c.AddToCart(context.Background(), 1)
	require.Error(t, err)
	n := h.notices.Last()
	assert.Equal(t, "Akses Ditolak", n.Title)
	assert.Equal(t, "Admins cannot shop.", n.Message)
	assert.True(t, n.Blocking)
	_, ok := h.app.Session.Current()
	assert.True(t, ok, "a 403 keeps the session")
}

func TestBookDetail(t *testing.T) {
	h := newHarness(t)
	h.login(t, customerAccount)
	ctx := context.Background()

	d, err := h.app.OpenBookDetail(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Sapiens", d.Book().Title)

	h.backend.Reset()
	assert.ErrorIs(t, d.AddToCart(ctx, 0), ErrBelowMinimum)
	assert.Empty(t, h.backend.Calls())

	require.NoError(t, d.BuyNow(ctx))
	assert.Equal(t, RouteCart, h.nav.Last())

	_, err = h.app.OpenBookDetail(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, "Tidak Ditemukan", h.notices.Last().Title)
}
