// Package captcha recovers from the edge filter's CAPTCHA interstitial by
// handing the challenge to the user in a visible browser window.
package captcha

import (
	"context"
	"fmt"
	"time"

	"github.com/joescharf/abacus/internal/browser"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/vaadin"
)

// DefaultTimeout is how long the user has to solve the challenge.
const DefaultTimeout = 120 * time.Second

// Phase is the progress of one recovery.
type Phase int

const (
	Headless Phase = iota
	Detected
	HeadedOpen
	Solved
	Retrying
)

func (p Phase) String() string {
	switch p {
	case Headless:
		return "headless"
	case Detected:
		return "detected"
	case HeadedOpen:
		return "headed-open"
	case Solved:
		return "solved"
	case Retrying:
		return "retrying"
	}
	return "unknown"
}

// Error reports a recovery that stopped before Retrying.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("captcha recovery failed after %s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Recoverer reopens the portal in a visible window, waits for the user to
// solve the challenge and persists the refreshed session.
type Recoverer struct {
	Launcher    browser.Launcher
	UI          *output.UI
	Timeout     time.Duration
	IdleTimeout time.Duration
}

// NewRecoverer returns a Recoverer with the default budgets.
func NewRecoverer(l browser.Launcher, ui *output.UI) *Recoverer {
	return &Recoverer{Launcher: l, UI: ui, Timeout: DefaultTimeout, IdleTimeout: vaadin.IdleTimeout}
}

// Recover closes the tab that hit the challenge and runs the headed
// recovery. On success it returns Retrying and the caller must start its
// operation over from the beginning.
func (r *Recoverer) Recover(ctx context.Context, blocked browser.Tab, targetURL string) (Phase, error) {
	phase := Detected
	r.UI.Warning("Captcha detected. Reopening in a visible browser window...")
	if blocked != nil {
		if err := blocked.SaveState(ctx); err != nil {
			r.UI.VerboseLog("saving session before captcha: %v", err)
		}
		_ = blocked.Close()
	}

	tab, err := r.Launcher.Launch(ctx, false)
	if err != nil {
		return phase, &Error{Phase: phase, Err: err}
	}
	defer tab.Close()
	phase = HeadedOpen

	if err := tab.Navigate(ctx, targetURL); err != nil {
		return phase, &Error{Phase: phase, Err: err}
	}
	r.UI.Info("Please solve the captcha in the browser window.")
	r.UI.Step("Waiting for portal to load...")

	solved := func(u string) bool { return !page.IsCaptchaURL(u) }
	if err := vaadin.WaitURL(ctx, tab, "captcha to be solved", r.Timeout, solved); err != nil {
		return phase, &Error{Phase: phase, Err: err}
	}
	if err := vaadin.WaitForIdle(ctx, tab, r.IdleTimeout); err != nil {
		return phase, &Error{Phase: phase, Err: err}
	}
	phase = Solved

	if err := tab.SaveState(ctx); err != nil {
		return phase, &Error{Phase: phase, Err: fmt.Errorf("save session: %w", err)}
	}
	r.UI.Success("Captcha solved. Retrying...")
	return Retrying, nil
}
