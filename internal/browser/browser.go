// Package browser runs the Chrome instance that drives the portal, using
// chromedp over the DevTools protocol.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/vaadin"
)

// UserAgent is sent by every launched browser. The portal's edge filter is
// stricter with headless user agents.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var stealthFlags = []chromedp.ExecAllocatorOption{
	chromedp.Flag("disable-blink-features", "AutomationControlled"),
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.Flag("disable-gpu", true),
	chromedp.Flag("disable-extensions", true),
	chromedp.Flag("disable-infobars", true),
	chromedp.Flag("disable-background-networking", true),
	chromedp.Flag("disable-sync", true),
	chromedp.Flag("disable-translate", true),
	chromedp.Flag("metrics-recording-only", true),
	chromedp.NoFirstRun,
	chromedp.NoSandbox,
}

var clientHints = network.Headers{
	"sec-ch-ua":          `"Chromium";v="131", "Google Chrome";v="131", "Not_A Brand";v="99"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"macOS"`,
}

const hideWebdriver = `Object.defineProperty(navigator, "webdriver", { get: () => undefined });`

// Tab is a launched browser with one page.
type Tab interface {
	vaadin.Surface
	// SaveState writes cookies and local storage to the session store.
	SaveState(ctx context.Context) error
	Close() error
}

// Launcher starts browsers from the stored session.
type Launcher interface {
	Launch(ctx context.Context, headless bool) (Tab, error)
}

// ChromeLauncher launches Chrome via chromedp.
type ChromeLauncher struct {
	Store *session.Store
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
	// ProfileDir keeps a persistent Chrome profile in addition to the
	// storage-state file.
	ProfileDir string
	// RequireSession makes Launch fail with a ConfigError when no session
	// has been saved yet. Login launches without it.
	RequireSession bool
}

// Launch starts Chrome, restores the saved session and returns its tab.
func (l *ChromeLauncher) Launch(ctx context.Context, headless bool) (Tab, error) {
	var state *session.State
	if l.RequireSession || l.Store.Exists() {
		st, err := l.Store.Load()
		if err != nil {
			return nil, err
		}
		state = st
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, stealthFlags...)
	opts = append(opts,
		chromedp.Flag("headless", headless),
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(1280, 800),
	)
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}
	if l.ProfileDir != "" {
		opts = append(opts, chromedp.UserDataDir(l.ProfileDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{ctx: tabCtx, store: l.Store, cancel: func() {
		tabCancel()
		allocCancel()
	}}

	setup := []chromedp.Action{
		network.Enable(),
		network.SetExtraHTTPHeaders(clientHints),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriver).Do(ctx)
			return err
		}),
	}
	if state != nil {
		setup = append(setup, restoreState(state))
	}
	if err := chromedp.Run(tabCtx, setup...); err != nil {
		c.cancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	return c, nil
}

// Chrome is a chromedp-backed Tab.
type Chrome struct {
	ctx    context.Context
	cancel func()
	store  *session.Store
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(c.ctx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) URL(ctx context.Context) (string, error) {
	var u string
	err := c.run(ctx, chromedp.Location(&u))
	return u, err
}

func (c *Chrome) Query(ctx context.Context, selector string) (*vaadin.Element, error) {
	var el *vaadin.Element
	if err := c.Eval(ctx, queryScript(selector), &el); err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	return el, nil
}

func (c *Chrome) Focus(ctx context.Context, selector string, selectAll bool) error {
	var ok bool
	if err := c.Eval(ctx, focusScript(selector, selectAll), &ok); err != nil {
		return fmt.Errorf("focus %s: %w", selector, err)
	}
	if !ok {
		return &vaadin.NotFoundError{What: "element", Selector: selector, RowIndex: -1}
	}
	return nil
}

func (c *Chrome) Eval(ctx context.Context, script string, out any) error {
	// Serialise in the page so undefined and null come back as "null"
	// instead of evaluation errors.
	var raw string
	if err := c.run(ctx, chromedp.Evaluate("JSON.stringify(("+script+") ?? null)", &raw)); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func (c *Chrome) ClickAt(ctx context.Context, x, y float64) error {
	return c.run(ctx, chromedp.MouseClickXY(x, y))
}

func (c *Chrome) PressKey(ctx context.Context, key vaadin.Key) error {
	k, ok := keyCodes[key]
	if !ok {
		return fmt.Errorf("unsupported key %q", key)
	}
	return c.run(ctx, chromedp.KeyEvent(k))
}

func (c *Chrome) TypeText(ctx context.Context, text string, delay time.Duration) error {
	for _, r := range text {
		if err := c.run(ctx, chromedp.KeyEvent(string(r))); err != nil {
			return err
		}
		if err := c.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chrome) InsertText(ctx context.Context, text string) error {
	return c.run(ctx, insertText(text))
}

func (c *Chrome) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *Chrome) SaveState(ctx context.Context) error {
	st, err := captureState(ctx, c)
	if err != nil {
		return fmt.Errorf("capture session: %w", err)
	}
	if st.Empty() {
		return nil
	}
	return c.store.Save(st)
}

// Close shuts the browser down. It is safe to call more than once.
func (c *Chrome) Close() error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

var _ Tab = (*Chrome)(nil)
