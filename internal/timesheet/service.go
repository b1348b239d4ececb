// Package timesheet implements the user-facing time-entry operations on top
// of the page navigator. Every operation holds the session lock, runs in
// its own browser and is retried once after a CAPTCHA has been solved.
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/browser"
	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/captcha"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/prompt"
	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/store"
)

// ErrCaptchaRepeated is returned when the portal demands a CAPTCHA again
// right after one was solved.
var ErrCaptchaRepeated = errors.New("captcha appeared again after it was solved, try again later")

// ErrReportNotFound means the weekly report grid was not shown.
var ErrReportNotFound = errors.New("time report not found")

// Recoverer runs the headed CAPTCHA recovery for a blocked tab.
type Recoverer interface {
	Recover(ctx context.Context, blocked browser.Tab, targetURL string) (captcha.Phase, error)
}

// Service runs the time-entry operations. All collaborators are explicit;
// nothing is read from package state.
type Service struct {
	Launcher  browser.Launcher
	Recoverer Recoverer
	Prompt    prompt.Prompter
	Loc       *i18n.Localizer
	UI        *output.UI
	Cache     *cache.Cache
	Aliases   *aliases.Set
	// Journal records bookings. Nil disables the journal.
	Journal store.Store
	// Lock serialises browser use across processes. Nil disables locking.
	Lock     *session.Lock
	LockWait time.Duration

	BaseURL string
	// Headed shows the browser window for every operation.
	Headed bool
	// SemiManual makes Log stop after filling the form and wait for the
	// user to save it in a visible window.
	SemiManual  bool
	IdleTimeout time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) today() time.Time { return dates.Day(s.now()) }

// outcomeKind tags an operation body's result.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeCaptcha
	outcomeFailure
)

// outcome is what one attempt of an operation produced. A CAPTCHA is not an
// error: it asks run to recover and start over.
type outcome[T any] struct {
	kind  outcomeKind
	value T
	err   error
}

func success[T any](v T) outcome[T] { return outcome[T]{kind: outcomeSuccess, value: v} }

func captchaRequired[T any]() outcome[T] { return outcome[T]{kind: outcomeCaptcha} }

func failure[T any](err error) outcome[T] { return outcome[T]{kind: outcomeFailure, err: err} }

// conn is one launched browser and the navigator driving it.
type conn struct {
	tab browser.Tab
	nav *page.Navigator
}

func (s *Service) launch(ctx context.Context, headless bool) (*conn, error) {
	tab, err := s.Launcher.Launch(ctx, headless)
	if err != nil {
		return nil, err
	}
	nav := page.New(tab, s.BaseURL, s.UI)
	if s.IdleTimeout > 0 {
		nav.IdleTimeout = s.IdleTimeout
	}
	return &conn{tab: tab, nav: nav}, nil
}

// release persists the session when the portal was reached and closes the
// browser.
func (s *Service) release(ctx context.Context, c *conn) {
	if c.nav.Authenticated() {
		if err := c.tab.SaveState(ctx); err != nil {
			s.UI.VerboseLog("saving session: %v", err)
		}
	}
	if err := c.tab.Close(); err != nil {
		s.UI.VerboseLog("closing browser: %v", err)
	}
}

func (s *Service) acquire(ctx context.Context, wait time.Duration) (func(), error) {
	if s.Lock == nil {
		return func() {}, nil
	}
	if err := s.Lock.Acquire(ctx, wait); err != nil {
		return nil, err
	}
	return func() {
		if err := s.Lock.Release(); err != nil {
			s.UI.VerboseLog("releasing session lock: %v", err)
		}
	}, nil
}

// run executes body in a fresh browser. When body reports a CAPTCHA the
// browser is handed to the Recoverer and body runs again from the start,
// exactly once.
func run[T any](ctx context.Context, s *Service, headless bool, body func(context.Context, *page.Navigator) outcome[T]) (T, error) {
	var zero T
	unlock, err := s.acquire(ctx, s.LockWait)
	if err != nil {
		return zero, err
	}
	defer unlock()

	for attempt := 0; ; attempt++ {
		res, blocked, err := runOnce(ctx, s, headless, attempt == 0, body)
		if err != nil {
			return zero, err
		}
		if blocked == nil {
			if res.kind == outcomeCaptcha {
				return zero, ErrCaptchaRepeated
			}
			return res.value, res.err
		}
		// Recover closes the blocked browser itself.
		if _, err := s.Recoverer.Recover(ctx, blocked.tab, s.BaseURL); err != nil {
			return zero, err
		}
	}
}

// runOnce launches a browser and runs body in it. The browser is always
// released, including on panic, except when body hit a CAPTCHA that may
// still be recovered: then it is returned as blocked for the Recoverer.
func runOnce[T any](ctx context.Context, s *Service, headless, recoverable bool, body func(context.Context, *page.Navigator) outcome[T]) (res outcome[T], blocked *conn, err error) {
	c, err := s.launch(ctx, headless)
	if err != nil {
		return res, nil, err
	}
	handOff := false
	defer func() {
		if !handOff {
			s.release(ctx, c)
		}
	}()

	res = body(ctx, c.nav)
	if res.kind == outcomeCaptcha && recoverable {
		handOff = true
		return res, c, nil
	}
	return res, nil, nil
}

// openGrid loads the portal and the entries view. ok is false when the
// CAPTCHA page intercepted the load.
func openGrid(ctx context.Context, nav *page.Navigator) (ok bool, err error) {
	landing, err := nav.OpenEntriesGrid(ctx)
	if err != nil {
		return false, err
	}
	return landing == page.LandingMenu, nil
}

func readMonth(ctx context.Context, nav *page.Navigator, m dates.Month) (*page.Grid, error) {
	if err := nav.SetMonthFilter(ctx, m.Year, m.Month); err != nil {
		return nil, err
	}
	return nav.ReadGridRows(ctx)
}

// refreshCache re-reads the current month and rewrites the status cache.
// Failures are logged and swallowed.
func (s *Service) refreshCache(ctx context.Context, nav *page.Navigator) {
	if s.Cache == nil {
		return
	}
	s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgUpdatingCache))
	m := dates.MonthOf(s.today())
	g, err := readMonth(ctx, nav, m)
	if err == nil {
		err = s.Cache.UpdateFromEntries(g.Entries(), m, s.Loc.ShortDay)
	}
	if err != nil {
		s.UI.VerboseLog("status cache refresh failed: %v", err)
	}
}

// record writes a journal line. Failures are logged and swallowed.
func (s *Service) record(ctx context.Context, b models.Booking) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.RecordBooking(ctx, &b); err != nil {
		s.UI.VerboseLog("journal: %v", err)
	}
}

func entryBooking(action models.BookingAction, e models.TimeEntry) models.Booking {
	return models.Booking{
		Action:      action,
		Date:        dates.ISO(e.Date),
		Project:     e.Project,
		ServiceType: e.ServiceType,
		Hours:       page.FormatHours(e.Hours),
		Text:        e.Description,
	}
}

func rowBooking(action models.BookingAction, e models.ExistingEntry) models.Booking {
	return models.Booking{
		Action:      action,
		Date:        dates.DisplayToISO(e.Date),
		Project:     e.Project,
		ServiceType: e.ServiceType,
		Hours:       hoursValue(e.Hours),
		Text:        e.Text,
	}
}

// FetchExistingEntries reads the grid rows of every month touched by days.
func (s *Service) FetchExistingEntries(ctx context.Context, days []time.Time) ([]models.ExistingEntry, error) {
	return run(ctx, s, !s.Headed, func(ctx context.Context, nav *page.Navigator) outcome[[]models.ExistingEntry] {
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return failure[[]models.ExistingEntry](err)
		}
		if !ok {
			return captchaRequired[[]models.ExistingEntry]()
		}
		var all []models.ExistingEntry
		for _, m := range distinctMonths(days) {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingExisting))
			g, err := readMonth(ctx, nav, m)
			if err != nil {
				return failure[[]models.ExistingEntry](fmt.Errorf("read %s: %w", m, err))
			}
			all = append(all, g.Entries()...)
		}
		return success(all)
	})
}

// distinctMonths returns the months of days in first-seen order.
func distinctMonths(days []time.Time) []dates.Month {
	seen := map[dates.Month]bool{}
	var out []dates.Month
	for _, d := range days {
		m := dates.MonthOf(d)
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
