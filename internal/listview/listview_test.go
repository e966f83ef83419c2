package listview

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID  int
	Qty int
}

func lineKey(l line) int { return l.ID }

func snapshot(items ...line) FetchFunc[line] {
	return func(context.Context) ([]line, error) { return items, nil }
}

func loaded(t *testing.T, items ...line) *List[int, line] {
	t.Helper()
	l := New(lineKey)
	require.NoError(t, l.Load(context.Background(), snapshot(items...)))
	return l
}

func TestLoad_LaterRequestWinsWhenEarlierResolvesLast(t *testing.T) {
	l := New(lineKey)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- l.Load(ctx, func(context.Context) ([]line, error) {
			close(started)
			<-release
			return []line{{ID: 1, Qty: 1}}, nil
		})
	}()
	<-started

	require.NoError(t, l.Load(ctx, snapshot(line{ID: 2, Qty: 2}, line{ID: 3, Qty: 3})))
	close(release)

	assert.Equal(t, ErrSuperseded, <-done)
	assert.Equal(t, []line{{ID: 2, Qty: 2}, {ID: 3, Qty: 3}}, l.Items())
}

func TestLoad_FailureKeepsPreviousSnapshot(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2})
	boom := errors.New("boom")

	err := l.Load(context.Background(), func(context.Context) ([]line, error) { return nil, boom })
	assert.Equal(t, boom, err)
	assert.Equal(t, []line{{ID: 1, Qty: 2}}, l.Items())
	assert.True(t, l.Loaded())
}

func TestItems_ReturnsCopy(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2})
	items := l.Items()
	items[0].Qty = 99
	got, ok := l.Get(1)
	require.True(t, ok)
	assert.Equal(t, 2, got.Qty)
}

func TestMutate_PatchesOnlyAfterSuccess(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2}, line{ID: 2, Qty: 5})
	ctx := context.Background()

	err := l.Mutate(ctx, 1, func(context.Context) error {
		assert.Equal(t, Pending, l.State(1))
		got, _ := l.Get(1)
		assert.Equal(t, 2, got.Qty, "entry must not change before the server answers")
		return nil
	}, func(x line) line { x.Qty = 1; return x })
	require.NoError(t, err)

	assert.Equal(t, []line{{ID: 1, Qty: 1}, {ID: 2, Qty: 5}}, l.Items())
	assert.Equal(t, Applied, l.State(1))
	assert.Equal(t, Idle, l.State(2))
}

func TestMutate_RejectedLeavesEntry(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2})
	boom := errors.New("422")

	err := l.Mutate(context.Background(), 1, func(context.Context) error { return boom },
		func(x line) line { x.Qty = 9; return x })
	assert.Equal(t, boom, err)
	assert.Equal(t, []line{{ID: 1, Qty: 2}}, l.Items())
	assert.Equal(t, Rejected, l.State(1))
}

func TestMutate_RefusesWhilePending(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2})
	ctx := context.Background()
	var nested error
	calls := 0

	err := l.Mutate(ctx, 1, func(context.Context) error {
		calls++
		nested = l.Mutate(ctx, 1, func(context.Context) error { calls++; return nil }, func(x line) line { return x })
		return nil
	}, func(x line) line { x.Qty = 3; return x })

	require.NoError(t, err)
	assert.Equal(t, ErrPending, nested)
	assert.Equal(t, 1, calls)
}

func TestMutate_UnknownKey(t *testing.T) {
	l := loaded(t)
	err := l.Mutate(context.Background(), 42, func(context.Context) error {
		t.Fatal("call must not run")
		return nil
	}, func(x line) line { return x })
	assert.Equal(t, ErrNotFound, err)
}

func TestRemove_DeclinedSendsNothing(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2})
	removed, err := l.Remove(context.Background(), 1,
		func(context.Context) (bool, error) { return false, nil },
		func(context.Context) error {
			t.Fatal("call must not run without confirmation")
			return nil
		})
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, l.Len())
}

func TestRemove_ConfirmedThenCalled(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2}, line{ID: 2, Qty: 1})
	var order []string

	removed, err := l.Remove(context.Background(), 1,
		func(context.Context) (bool, error) { order = append(order, "confirm"); return true, nil },
		func(context.Context) error { order = append(order, "call"); return nil })
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"confirm", "call"}, order)
	assert.Equal(t, []line{{ID: 2, Qty: 1}}, l.Items())
}

func TestRemove_FailureKeepsEntry(t *testing.T) {
	l := loaded(t, line{ID: 1, Qty: 2})
	boom := errors.New("403")
	removed, err := l.Remove(context.Background(), 1,
		func(context.Context) (bool, error) { return true, nil },
		func(context.Context) error { return boom })
	assert.Equal(t, boom, err)
	assert.False(t, removed)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, Rejected, l.State(1))
}

func TestDrop(t *testing.T) {
	l := loaded(t, line{ID: 1}, line{ID: 2}, line{ID: 3})
	l.Drop(1, 3, 7)
	assert.Equal(t, []line{{ID: 2}}, l.Items())
}
