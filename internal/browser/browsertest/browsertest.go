// Package browsertest provides in-memory browser.Tab and browser.Launcher
// implementations for tests.
package browsertest

import (
	"context"
	"sync"

	"github.com/joescharf/abacus/internal/browser"
	"github.com/joescharf/abacus/internal/vaadin/vaadintest"
)

// Tab is a scripted tab that counts session saves.
type Tab struct {
	*vaadintest.Surface
	Headless bool
	Saves    int
	Closed   bool
	SaveErr  error
	// SaveDeadlines records, per save, whether the context carried a deadline.
	SaveDeadlines []bool
}

func (t *Tab) SaveState(ctx context.Context) error {
	_, has := ctx.Deadline()
	t.SaveDeadlines = append(t.SaveDeadlines, has)
	if t.SaveErr != nil {
		return t.SaveErr
	}
	t.Saves++
	return nil
}

func (t *Tab) Close() error {
	t.Closed = true
	return nil
}

// Launcher hands out tabs built by New, in launch order.
type Launcher struct {
	mu   sync.Mutex
	New  func(headless bool, n int) *vaadintest.Surface
	Tabs []*Tab
	Err  error
}

func (l *Launcher) Launch(_ context.Context, headless bool) (browser.Tab, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	s := vaadintest.New()
	if l.New != nil {
		s = l.New(headless, len(l.Tabs))
	}
	tab := &Tab{Surface: s, Headless: headless}
	l.Tabs = append(l.Tabs, tab)
	return tab, nil
}

// Launched returns the tabs launched so far.
func (l *Launcher) Launched() []*Tab {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Tab(nil), l.Tabs...)
}

var (
	_ browser.Tab      = (*Tab)(nil)
	_ browser.Launcher = (*Launcher)(nil)
)
