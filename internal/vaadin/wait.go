package vaadin

import (
	"context"
	"time"
)

// PollInterval is how often wait conditions are re-checked.
const PollInterval = 100 * time.Millisecond

// Default budgets used by the page layer.
const (
	IdleTimeout    = 15 * time.Second
	ElementTimeout = 10 * time.Second
)

// idleScript is true once no Flow client has a server round-trip in flight.
// A page without Flow clients counts as idle.
var idleScript = Script("vaadin-idle", `(() => {
  const v = window.Vaadin;
  if (!v || !v.Flow || !v.Flow.clients) return true;
  return Object.values(v.Flow.clients).every((c) => !(c.isActive && c.isActive()));
})()`)

// IdleScript exposes the idle probe for fakes.
func IdleScript() string { return idleScript }

// Poll re-evaluates cond until it reports true or the budget is spent.
// The budget is counted in poll intervals slept on the surface so fakes
// run instantly.
func Poll(ctx context.Context, s Surface, timeout time.Duration, what, selector string, cond func(context.Context) (bool, error)) error {
	var waited time.Duration
	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if waited >= timeout {
			return &TimeoutError{What: what, Selector: selector, Timeout: timeout}
		}
		if err := s.Sleep(ctx, PollInterval); err != nil {
			return err
		}
		waited += PollInterval
	}
}

// WaitForIdle blocks until the Flow client registry reports no active
// round-trips. Network idle alone is not enough: the server can keep a
// request open while it is still processing.
func WaitForIdle(ctx context.Context, s Surface, timeout time.Duration) error {
	return Poll(ctx, s, timeout, "server round-trips to finish", "", func(ctx context.Context) (bool, error) {
		var idle bool
		if err := s.Eval(ctx, idleScript, &idle); err != nil {
			return false, err
		}
		return idle, nil
	})
}

// IsVisible reports whether selector matches a visible element. Lookup
// failures count as not visible.
func IsVisible(ctx context.Context, s Surface, selector string) bool {
	el, err := s.Query(ctx, selector)
	return err == nil && el != nil && el.Visible
}

// WaitVisible waits for selector to match a visible element.
func WaitVisible(ctx context.Context, s Surface, selector, what string, timeout time.Duration) (*Element, error) {
	var found *Element
	err := Poll(ctx, s, timeout, what, selector, func(ctx context.Context) (bool, error) {
		el, err := s.Query(ctx, selector)
		if err != nil {
			return false, err
		}
		if el != nil && el.Visible {
			found = el
			return true, nil
		}
		return false, nil
	})
	return found, err
}

// WaitHidden waits until selector matches nothing visible.
func WaitHidden(ctx context.Context, s Surface, selector, what string, timeout time.Duration) error {
	return Poll(ctx, s, timeout, what+" to close", selector, func(ctx context.Context) (bool, error) {
		el, err := s.Query(ctx, selector)
		if err != nil {
			return false, err
		}
		return el == nil || !el.Visible, nil
	})
}

// WaitURL waits until match accepts the current URL.
func WaitURL(ctx context.Context, s Surface, what string, timeout time.Duration, match func(string) bool) error {
	return Poll(ctx, s, timeout, what, "", func(ctx context.Context) (bool, error) {
		u, err := s.URL(ctx)
		if err != nil {
			return false, err
		}
		return match(u), nil
	})
}
