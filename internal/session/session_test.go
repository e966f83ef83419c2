package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/notify"
)

var customer = Identity{User: model.User{ID: 7, Name: "Siti", Email: "siti@example.com", Role: model.RoleCustomer}, Token: "tok-customer"}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestFileStore_RoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.Equal(t, ErrNoSession, err)

	require.NoError(t, store.Save(customer))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, customer, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.Equal(t, ErrNoSession, err)
}

func TestOpen_DiscardsCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	log, hook := test.NewNullLogger()
	h := Open(NewFileStore(path), nil, log)

	_, ok := h.Current()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestHolder_SaveClearPublishChanges(t *testing.T) {
	bus := notify.NewBus()
	var changes []Change
	notify.Subscribe(bus, Changed, func(c Change) { changes = append(changes, c) })

	h := Open(NewMemoryStore(), bus, quietLogger())
	assert.Equal(t, "", h.Token())

	require.NoError(t, h.Save(customer))
	assert.Equal(t, "tok-customer", h.Token())
	id, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, customer, id)

	require.NoError(t, h.Clear())
	require.NoError(t, h.Clear())
	assert.Equal(t, "", h.Token())

	require.Len(t, changes, 2)
	require.NotNil(t, changes[0].Identity)
	assert.Equal(t, model.RoleCustomer, changes[0].Identity.Role())
	assert.Nil(t, changes[1].Identity)
}

func TestHolder_Require(t *testing.T) {
	h := Open(NewMemoryStore(), nil, quietLogger())
	assert.Equal(t, RedirectLogin, h.Require())
	assert.Equal(t, RedirectLogin, h.Require(model.RoleAdmin))

	require.NoError(t, h.Save(customer))
	assert.Equal(t, Allow, h.Require())
	assert.Equal(t, Allow, h.Require(model.RoleCustomer))
	assert.Equal(t, RedirectHome, h.Require(model.RoleAdmin))

	admin := Identity{User: model.User{ID: 1, Role: model.RoleAdmin}, Token: "tok-admin"}
	require.NoError(t, h.Save(admin))
	assert.Equal(t, Allow, h.Require(model.RoleAdmin))
	assert.Equal(t, RedirectHome, h.Require(model.RoleCustomer))
}

func TestOpen_RestoresPersistedIdentity(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(customer))

	h := Open(store, nil, quietLogger())
	id, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "siti@example.com", id.User.Email)
}
