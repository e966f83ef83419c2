package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/wichananm65/bookstore-storefront/internal/storefront"
)

// terminal prints notices and navigation and reads confirmations from in.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
	yes bool
}

func newTerminal(in io.Reader, out io.Writer, yes bool) *terminal {
	return &terminal{out: out, in: bufio.NewReader(in), yes: yes}
}

func (t *terminal) Go(route string) {
	t.printf("-> %s\n", route)
}

func (t *terminal) Notify(n storefront.Notice) {
	mark := map[storefront.Level]string{
		storefront.LevelInfo:    "i",
		storefront.LevelSuccess: "+",
		storefront.LevelWarning: "!",
		storefront.LevelError:   "x",
	}[n.Level]
	t.printf("[%s] %s: %s\n", mark, n.Title, n.Message)
}

func (t *terminal) Confirm(ctx context.Context, p storefront.Prompt) (bool, error) {
	if t.yes {
		return true, nil
	}
	t.printf("%s %s [%s? y/N] ", p.Title, p.Message, p.Confirm)
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		ch <- result{line, err}
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.err != nil && r.err != io.EOF {
			return false, r.err
		}
		answer := strings.ToLower(strings.TrimSpace(r.line))
		return answer == "y" || answer == "ya" || answer == "yes", nil
	}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}
