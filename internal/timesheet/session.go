package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/vaadin"
)

// LoginTimeout bounds the wait for the user to finish logging in.
const LoginTimeout = 5 * time.Minute

// RefreshTimeout bounds a background session refresh.
const RefreshTimeout = 90 * time.Second

var errEnterPressed = errors.New("enter pressed")

// LoginResult is what an interactive login learned.
type LoginResult struct {
	// Locale is the portal's display language, when it could be detected.
	Locale   i18n.Locale
	Detected bool
}

// Login opens a visible browser on the portal and waits until the user has
// logged in, either by the portal menu appearing or by pressing Enter.
// The session is saved afterwards.
func (s *Service) Login(ctx context.Context) (*LoginResult, error) {
	unlock, err := s.acquire(ctx, s.LockWait)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tab, err := s.Launcher.Launch(ctx, false)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, s.BaseURL); err != nil {
		return nil, fmt.Errorf("open portal: %w", err)
	}
	s.UI.Info("Log in to the portal in the browser window. Press Enter here once you are done.")

	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	// WaitEnter cannot be interrupted; when the menu shows up first the
	// goroutine stays blocked on stdin until the process exits.
	go func() {
		if err := s.Prompt.WaitEnter(""); err == nil {
			cancel(errEnterPressed)
		}
	}()
	if _, err := vaadin.WaitVisible(waitCtx, tab, page.MenuButton, "portal menu", LoginTimeout); err != nil {
		if !errors.Is(context.Cause(waitCtx), errEnterPressed) {
			return nil, fmt.Errorf("waiting for login: %w", err)
		}
	}

	res := &LoginResult{}
	nav := page.New(tab, s.BaseURL, s.UI)
	if ui, err := nav.DetectLanguage(ctx); err == nil {
		res.Locale, res.Detected = i18n.FromUI(ui.Lang, ui.NavTitle)
	} else {
		s.UI.VerboseLog("%v", err)
	}

	if err := tab.SaveState(ctx); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.UI.Success("Session saved.")
	return res, nil
}

// RefreshStatus is the result of a background session refresh.
type RefreshStatus string

const (
	RefreshOK      RefreshStatus = "ok"
	RefreshBusy    RefreshStatus = "busy"
	RefreshCaptcha RefreshStatus = "captcha"
	RefreshExpired RefreshStatus = "expired"
)

// Refresh loads the portal headlessly so the server extends the session,
// then saves the refreshed cookies. It never waits for the session lock: a
// running user command means the session is being used anyway. A CAPTCHA
// cannot be solved unattended and is reported, not recovered.
func (s *Service) Refresh(ctx context.Context, timeout time.Duration) (RefreshStatus, error) {
	unlock, err := s.acquire(ctx, 0)
	if err != nil {
		var le *session.LockedError
		if errors.As(err, &le) {
			return RefreshBusy, nil
		}
		return "", err
	}
	defer unlock()

	// The session is saved even after the timeout fired.
	saveCtx := context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := s.launch(ctx, true)
	if err != nil {
		return "", err
	}
	defer s.release(saveCtx, c)

	landing, err := c.nav.LoadPortal(ctx)
	if err != nil {
		var se *page.SessionExpiredError
		if errors.As(err, &se) {
			return RefreshExpired, err
		}
		return "", err
	}
	if landing == page.LandingCaptcha {
		return RefreshCaptcha, nil
	}
	return RefreshOK, nil
}
