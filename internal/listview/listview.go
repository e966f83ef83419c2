// Package listview holds a fetched collection for one view and reconciles it
// with the server. Loads are last-issued-wins; mutations are applied locally
// only after the server has accepted them.
package listview

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrSuperseded is returned by Load when a newer Load was issued before this one finished.
	ErrSuperseded = errors.New("load superseded by a newer request")
	ErrPending    = errors.New("a change to this entry is already in progress")
	ErrNotFound   = errors.New("entry not in list")
)

// State is the mutation state of a single entry.
type State int

const (
	Idle State = iota
	Pending
	Applied
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// FetchFunc returns one complete server snapshot.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(ctx context.Context) (bool, error)

type List[K comparable, T any] struct {
	keyOf func(T) K

	mu     sync.Mutex
	items  []T
	states map[K]State
	seq    uint64
	loaded bool
}

func New[K comparable, T any](keyOf func(T) K) *List[K, T] {
	return &List[K, T]{keyOf: keyOf, states: make(map[K]State)}
}

// Load replaces the collection with the snapshot returned by fetch. If another
// Load was issued while fetch was running, the result is dropped and
// ErrSuperseded is returned. On a fetch error the previous collection is kept.
func (l *List[K, T]) Load(ctx context.Context, fetch FetchFunc[T]) error {
	l.mu.Lock()
	l.seq++
	token := l.seq
	l.mu.Unlock()

	items, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if token != l.seq {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	l.items = append([]T(nil), items...)
	l.loaded = true
	present := make(map[K]struct{}, len(l.items))
	for _, it := range l.items {
		present[l.keyOf(it)] = struct{}{}
	}
	for k, s := range l.states {
		if _, ok := present[k]; !ok || s != Pending {
			delete(l.states, k)
		}
	}
	return nil
}

// Mutate runs call and, only if it succeeds, replaces the entry with patch(entry).
// The entry is Pending while call runs; a second Mutate or Remove on it fails with ErrPending.
func (l *List[K, T]) Mutate(ctx context.Context, key K, call func(ctx context.Context) error, patch func(T) T) error {
	if err := l.begin(key); err != nil {
		return err
	}
	if err := call(ctx); err != nil {
		l.finish(key, Rejected)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(key); i >= 0 {
		l.items[i] = patch(l.items[i])
	}
	l.states[key] = Applied
	return nil
}

// Remove asks confirm first; a declined confirmation returns (false, nil) and
// sends nothing. The entry is dropped only after call succeeds.
func (l *List[K, T]) Remove(ctx context.Context, key K, confirm ConfirmFunc, call func(ctx context.Context) error) (bool, error) {
	if err := l.check(key); err != nil {
		return false, err
	}
	ok, err := confirm(ctx)
	if err != nil || !ok {
		return false, err
	}
	if err := l.begin(key); err != nil {
		return false, err
	}
	if err := call(ctx); err != nil {
		l.finish(key, Rejected)
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(key); i >= 0 {
		l.items = append(l.items[:i:i], l.items[i+1:]...)
	}
	delete(l.states, key)
	return true, nil
}

// Drop removes entries locally. It is used after a server operation that
// consumed them as a side effect, e.g. checkout consuming cart lines.
func (l *List[K, T]) Drop(keys ...K) {
	drop := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0:0]
	for _, it := range l.items {
		k := l.keyOf(it)
		if _, ok := drop[k]; ok {
			delete(l.states, k)
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
}

// Items returns a copy of the collection in server order.
func (l *List[K, T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

func (l *List[K, T]) Get(key K) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(key); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

func (l *List[K, T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Loaded reports whether any Load has been applied.
func (l *List[K, T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *List[K, T]) State(key K) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[key]
}

func (l *List[K, T]) check(key K) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index(key) < 0 {
		return ErrNotFound
	}
	if l.states[key] == Pending {
		return ErrPending
	}
	return nil
}

func (l *List[K, T]) begin(key K) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index(key) < 0 {
		return ErrNotFound
	}
	if l.states[key] == Pending {
		return ErrPending
	}
	l.states[key] = Pending
	return nil
}

func (l *List[K, T]) finish(key K, s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[key] = s
}

func (l *List[K, T]) index(key K) int {
	for i, it := range l.items {
		if l.keyOf(it) == key {
			return i
		}
	}
	return -1
}
