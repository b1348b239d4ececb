// Package vaadin holds generic primitives for driving a Vaadin Flow UI
// through a browser surface. It knows nothing about the pages it drives.
package vaadin

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Key is a special keyboard key.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeyTab       Key = "Tab"
	KeyBackspace Key = "Backspace"
	KeyEscape    Key = "Escape"
)

// Element is the observable state of a DOM element.
type Element struct {
	Visible bool              `json:"visible"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Attrs   map[string]string `json:"attrs"`
}

// Center returns the element's centre point in viewport coordinates.
func (e *Element) Center() (float64, float64) {
	return e.X + e.Width/2, e.Y + e.Height/2
}

// Surface is a browser tab. Selectors are CSS selectors resolved through
// open shadow roots.
type Surface interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	// Query returns nil when no element matches.
	Query(ctx context.Context, selector string) (*Element, error)
	// Focus focuses the element, optionally selecting its current text.
	Focus(ctx context.Context, selector string, selectAll bool) error
	// Eval evaluates a JavaScript expression and decodes its JSON result into out.
	Eval(ctx context.Context, script string, out any) error
	// ClickAt dispatches a real pointer click at viewport coordinates.
	ClickAt(ctx context.Context, x, y float64) error
	PressKey(ctx context.Context, key Key) error
	// TypeText sends one key event per rune with delay between them.
	TypeText(ctx context.Context, text string, delay time.Duration) error
	// InsertText inserts text into the focused element in one step.
	InsertText(ctx context.Context, text string) error
	Sleep(ctx context.Context, d time.Duration) error
}

// Script tags a JavaScript expression with a name so fakes and logs can
// identify it.
func Script(name, body string) string {
	return "/*" + name + "*/" + body
}

// ScriptName returns the tag set by Script, or "".
func ScriptName(script string) string {
	if !strings.HasPrefix(script, "/*") {
		return ""
	}
	end := strings.Index(script, "*/")
	if end < 0 {
		return ""
	}
	return script[2:end]
}

// JSString quotes s as a JavaScript string literal.
func JSString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
