// Package vaadintest provides a scripted in-memory vaadin.Surface for tests.
package vaadintest

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/joescharf/abacus/internal/vaadin"
)

// Handler answers an Eval call. The returned value is JSON round-tripped
// into the caller's destination.
type Handler func(script string) (any, error)

// Surface is a fake browser tab. Elements are keyed by their exact selector
// string; clicks are resolved back to selectors through the coordinates the
// fake assigns each element.
type Surface struct {
	mu sync.Mutex

	url      string
	elements map[string]*vaadin.Element
	order    []string
	targets  map[[2]float64]string
	handlers map[string]Handler
	onClick  map[string]func()
	onKey    map[vaadin.Key]func()
	onNav    func(url string)
	onSleep  func(d time.Duration)
	onType   func(text string)

	// Log records every interaction in order, e.g. "click <selector>",
	// "key Enter", "type 2025", "eval vaadin-idle".
	Log   []string
	Slept time.Duration
}

// New returns an empty fake that reports the framework as idle.
func New() *Surface {
	s := &Surface{
		elements: map[string]*vaadin.Element{},
		targets:  map[[2]float64]string{},
		handlers: map[string]Handler{},
		onClick:  map[string]func(){},
		onKey:    map[vaadin.Key]func(){},
	}
	s.handlers["vaadin-idle"] = func(string) (any, error) { return true, nil }
	return s
}

// Show makes selector match a visible element.
func (s *Surface) Show(selector string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showLocked(selector, attrs)
}

func (s *Surface) showLocked(selector string, attrs map[string]string) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	if el, ok := s.elements[selector]; ok {
		el.Visible = true
		el.Attrs = attrs
		return
	}
	n := float64(len(s.order) + 1)
	el := &vaadin.Element{Visible: true, X: n * 100, Y: 10, Width: 20, Height: 20, Attrs: attrs}
	s.elements[selector] = el
	s.order = append(s.order, selector)
	x, y := el.Center()
	s.targets[[2]float64{x, y}] = selector
}

// Hide removes selector from the page.
func (s *Surface) Hide(selector string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.elements[selector]; ok {
		el.Visible = false
	}
}

// SetURL sets the current location.
func (s *Surface) SetURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = u
}

// Handle registers an Eval handler for scripts tagged with name.
func (s *Surface) Handle(name string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = h
}

// Target maps a viewport point to a label for ClickAt.
func (s *Surface) Target(x, y float64, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[[2]float64{x, y}] = label
}

// OnClick runs fn after a click on the element or target label.
func (s *Surface) OnClick(label string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick[label] = fn
}

// OnKey runs fn after key is pressed.
func (s *Surface) OnKey(key vaadin.Key, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onKey[key] = fn
}

// OnNavigate runs fn after every navigation.
func (s *Surface) OnNavigate(fn func(url string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNav = fn
}

// OnSleep runs fn after every Sleep, letting tests change the page while a
// caller polls.
func (s *Surface) OnSleep(fn func(d time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSleep = fn
}

// OnType runs fn after TypeText or InsertText delivered text.
func (s *Surface) OnType(fn func(text string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onType = fn
}

// Calls returns a copy of the interaction log.
func (s *Surface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Log...)
}

func (s *Surface) record(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

func (s *Surface) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.url = url
	s.record("navigate %s", url)
	fn := s.onNav
	s.mu.Unlock()
	if fn != nil {
		fn(url)
	}
	return ctx.Err()
}

func (s *Surface) URL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, ctx.Err()
}

func (s *Surface) Query(ctx context.Context, selector string) (*vaadin.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[selector]
	if !ok {
		return nil, ctx.Err()
	}
	cp := *el
	return &cp, ctx.Err()
}

func (s *Surface) Focus(ctx context.Context, selector string, selectAll bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.elements[selector]; !ok || !el.Visible {
		return fmt.Errorf("focus: no element matches %s", selector)
	}
	if selectAll {
		s.record("select %s", selector)
	} else {
		s.record("focus %s", selector)
	}
	return ctx.Err()
}

func (s *Surface) Eval(ctx context.Context, script string, out any) error {
	name := vaadin.ScriptName(script)
	s.mu.Lock()
	h, ok := s.handlers[name]
	if name != "vaadin-idle" {
		s.record("eval %s", name)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("eval: no handler for script %q", name)
	}
	v, err := h(script)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *Surface) ClickAt(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	label, ok := s.targets[[2]float64{x, y}]
	if !ok {
		label = fmt.Sprintf("(%g,%g)", x, y)
	}
	s.record("click %s", label)
	fn := s.onClick[label]
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return ctx.Err()
}

func (s *Surface) PressKey(ctx context.Context, key vaadin.Key) error {
	s.mu.Lock()
	s.record("key %s", key)
	fn := s.onKey[key]
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return ctx.Err()
}

func (s *Surface) TypeText(ctx context.Context, text string, _ time.Duration) error {
	s.mu.Lock()
	s.record("type %s", text)
	fn := s.onType
	s.mu.Unlock()
	if fn != nil {
		fn(text)
	}
	return ctx.Err()
}

func (s *Surface) InsertText(ctx context.Context, text string) error {
	s.mu.Lock()
	s.record("insert %s", text)
	fn := s.onType
	s.mu.Unlock()
	if fn != nil {
		fn(text)
	}
	return ctx.Err()
}

func (s *Surface) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.Slept += d
	fn := s.onSleep
	s.mu.Unlock()
	if fn != nil {
		fn(d)
	}
	return nil
}

var indexRe = regexp.MustCompile(`const index = (-?\d+);`)

// ScriptIndex extracts the row index a row-scoped script was built for.
func ScriptIndex(script string) (int, bool) {
	m := indexRe.FindStringSubmatch(script)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

var _ vaadin.Surface = (*Surface)(nil)
