// Package page drives the portal's time-entry pages: navigation, filters,
// the entry form, the entries grid and the weekly report panels.
package page

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/vaadin"
)

// MenuTimeout bounds the wait for the portal menu after loading the root.
const MenuTimeout = 15 * time.Second

// Navigator drives one browser tab through the portal. It tracks the
// remote UI state and the render generation that row references belong to.
type Navigator struct {
	s       vaadin.Surface
	baseURL string
	ui      *output.UI

	// IdleTimeout bounds every wait for server round-trips.
	IdleTimeout time.Duration

	state      State
	form       FormKind
	view       View
	generation int
	// invalidFrom is the lowest row index of the current generation that
	// a deletion has shifted.
	invalidFrom int
	openRef     *RowRef
}

// New returns a Navigator for the portal rooted at baseURL.
func New(s vaadin.Surface, baseURL string, ui *output.UI) *Navigator {
	return &Navigator{
		s:           s,
		baseURL:     baseURL,
		ui:          ui,
		IdleTimeout: vaadin.IdleTimeout,
		invalidFrom: math.MaxInt,
	}
}

// State returns the current UI state.
func (n *Navigator) State() State { return n.state }

// Form returns the surface of the open edit form.
func (n *Navigator) Form() FormKind { return n.form }

// View returns the applied date-range granularity.
func (n *Navigator) View() View { return n.view }

// Generation returns the current render generation.
func (n *Navigator) Generation() int { return n.generation }

// Authenticated reports whether the portal menu has been reached, which is
// when the session is worth persisting.
func (n *Navigator) Authenticated() bool {
	switch n.state {
	case StateStart, StatePortalLoaded, StateCaptchaChallenge, StateSessionExpired:
		return false
	}
	return true
}

// Surface returns the tab the navigator drives.
func (n *Navigator) Surface() vaadin.Surface { return n.s }

func (n *Navigator) move(to State) error {
	if !canMove(n.state, to) {
		return &TransitionError{From: n.state, To: to}
	}
	n.state = to
	return nil
}

func (n *Navigator) require(what string, ok func(State) bool) error {
	if !ok(n.state) {
		return fmt.Errorf("%s: not possible in state %s", what, n.state)
	}
	return nil
}

// rerender starts a new render generation, invalidating every row
// reference handed out so far.
func (n *Navigator) rerender() {
	n.generation++
	n.invalidFrom = math.MaxInt
	n.openRef = nil
}

func (n *Navigator) idle(ctx context.Context) error {
	return vaadin.WaitForIdle(ctx, n.s, n.IdleTimeout)
}

func (n *Navigator) step(msg string) {
	if n.ui != nil {
		n.ui.Step("%s", msg)
	}
}

// IsCaptchaURL reports whether u is the edge filter's challenge page.
func IsCaptchaURL(u string) bool {
	return strings.Contains(u, CaptchaPathMarker)
}

// LoadPortal navigates to the portal root and classifies where it landed:
// the menu, or the CAPTCHA interstitial. A missing menu is a
// SessionExpiredError.
func (n *Navigator) LoadPortal(ctx context.Context) (Landing, error) {
	n.step("Navigating to portal...")
	n.rerender()
	n.view = ViewNone
	n.form = FormNone
	if err := n.move(StatePortalLoaded); err != nil {
		return LandingMenu, err
	}
	if err := n.s.Navigate(ctx, n.baseURL); err != nil {
		return LandingMenu, err
	}

	u, err := n.s.URL(ctx)
	if err != nil {
		return LandingMenu, err
	}
	if IsCaptchaURL(u) {
		return LandingCaptcha, n.move(StateCaptchaChallenge)
	}
	if err := n.idle(ctx); err != nil {
		return LandingMenu, err
	}

	if _, err := vaadin.WaitVisible(ctx, n.s, MenuButton, "portal menu", MenuTimeout); err != nil {
		var te *vaadin.TimeoutError
		if errors.As(err, &te) {
			u, _ = n.s.URL(ctx)
			if IsCaptchaURL(u) {
				return LandingCaptcha, n.move(StateCaptchaChallenge)
			}
			_ = n.move(StateSessionExpired)
			return LandingMenu, &SessionExpiredError{URL: u}
		}
		return LandingMenu, err
	}
	return LandingMenu, n.move(StateMenuReady)
}

// expandMenu opens the time-tracking menu group unless already expanded.
func (n *Navigator) expandMenu(ctx context.Context) error {
	v, _, err := vaadin.Attribute(ctx, n.s, MenuButton, "aria-expanded")
	if err != nil {
		return err
	}
	if v == "true" {
		return nil
	}
	n.step("Opening time tracking...")
	if err := vaadin.Click(ctx, n.s, MenuButton, "time tracking menu"); err != nil {
		return err
	}
	return n.idle(ctx)
}

// OpenEntriesGrid loads the portal and opens the time-entries view.
// LandingCaptcha is returned without error when the challenge page
// intercepted the load; the caller has to recover and start over.
func (n *Navigator) OpenEntriesGrid(ctx context.Context) (Landing, error) {
	landing, err := n.LoadPortal(ctx)
	if err != nil || landing == LandingCaptcha {
		return landing, err
	}
	if err := n.showEntries(ctx); err != nil {
		return LandingMenu, err
	}
	return LandingMenu, nil
}

func (n *Navigator) showEntries(ctx context.Context) error {
	if err := n.expandMenu(ctx); err != nil {
		return err
	}
	n.step("Opening services...")
	if err := vaadin.Click(ctx, n.s, EntriesLink, "services link"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	n.rerender()
	n.view = ViewNone
	return n.move(StateGridView)
}

func (n *Navigator) setFilter(ctx context.Context, position int, date string) error {
	if err := n.require("set filter", func(s State) bool { return s == StateGridView || s == StateSaved || s == StateDeleted }); err != nil {
		return err
	}
	if err := vaadin.SelectItemByPosition(ctx, n.s, DateRangeComboID, position, n.IdleTimeout); err != nil {
		return err
	}
	n.step(fmt.Sprintf("Setting date to %s...", date))
	if err := vaadin.TypeAndConfirm(ctx, n.s, FilterDateInput, "filter date", date); err != nil {
		return err
	}
	if err := n.s.Sleep(ctx, vaadin.DateSettle); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	n.rerender()
	return n.move(StateGridView)
}

// SetMonthFilter shows the whole month in the grid.
func (n *Navigator) SetMonthFilter(ctx context.Context, year int, month time.Month) error {
	n.step("Setting view to month...")
	if err := n.setFilter(ctx, MonthOption, fmt.Sprintf("01.%02d.%04d", int(month), year)); err != nil {
		return fmt.Errorf("set month filter: %w", err)
	}
	n.view = ViewMonth
	return nil
}

// SetWeekFilter shows the week containing date in the grid.
func (n *Navigator) SetWeekFilter(ctx context.Context, date time.Time) error {
	n.step("Setting view to week...")
	if err := n.setFilter(ctx, WeekOption, dates.Display(date)); err != nil {
		return fmt.Errorf("set week filter: %w", err)
	}
	n.view = ViewWeek
	return nil
}
