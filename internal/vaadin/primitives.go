package vaadin

import (
	"context"
	"fmt"
	"time"
)

// Settle delays required by the remote framework's event timing.
const (
	MenuSettle    = 300 * time.Millisecond
	DateSettle    = 500 * time.Millisecond
	FilterSettle  = 1000 * time.Millisecond
	SaveSettle    = 1000 * time.Millisecond
	TypeDelay     = 50 * time.Millisecond
	DateTypeDelay = 30 * time.Millisecond
)

// Click waits for selector to be visible and clicks its centre with a real
// pointer event.
func Click(ctx context.Context, s Surface, selector, what string) error {
	el, err := WaitVisible(ctx, s, selector, what, ElementTimeout)
	if err != nil {
		return err
	}
	x, y := el.Center()
	if err := s.ClickAt(ctx, x, y); err != nil {
		return fmt.Errorf("click %s: %w", what, err)
	}
	return nil
}

// Attribute returns an attribute of the element matching selector.
func Attribute(ctx context.Context, s Surface, selector, name string) (string, bool, error) {
	el, err := s.Query(ctx, selector)
	if err != nil {
		return "", false, err
	}
	if el == nil {
		return "", false, &NotFoundError{What: "element", Selector: selector, RowIndex: -1}
	}
	v, ok := el.Attrs[name]
	return v, ok, nil
}

// clearField clicks the input, selects its content and deletes it.
func clearField(ctx context.Context, s Surface, inputSelector, what string) error {
	if err := Click(ctx, s, inputSelector, what); err != nil {
		return err
	}
	if err := s.Focus(ctx, inputSelector, true); err != nil {
		return fmt.Errorf("focus %s: %w", what, err)
	}
	return s.PressKey(ctx, KeyBackspace)
}

// TypeAndConfirm clears the field, types value key by key and presses Enter.
// Used for date pickers, which parse on Enter.
func TypeAndConfirm(ctx context.Context, s Surface, inputSelector, what, value string) error {
	if err := clearField(ctx, s, inputSelector, what); err != nil {
		return err
	}
	if err := s.TypeText(ctx, value, DateTypeDelay); err != nil {
		return fmt.Errorf("type into %s: %w", what, err)
	}
	return s.PressKey(ctx, KeyEnter)
}

// Fill overwrites the field content in one step.
func Fill(ctx context.Context, s Surface, inputSelector, what, value string) error {
	if err := clearField(ctx, s, inputSelector, what); err != nil {
		return err
	}
	if err := s.InsertText(ctx, value); err != nil {
		return fmt.Errorf("fill %s: %w", what, err)
	}
	return nil
}

// ComboBoxSelector returns the selector of a combo box by movie id.
func ComboBoxSelector(movieID string) string {
	return fmt.Sprintf(`vaadin-combo-box[movie-id="%s"]`, movieID)
}

// TypeIntoFilterField types value into a filtering combo box one rune at a
// time, lets the server-side filter settle, then accepts the top
// suggestion with Enter. Committing without the settle delay can pick a
// result that belongs to an earlier keystroke.
func TypeIntoFilterField(ctx context.Context, s Surface, movieID, value string, idle time.Duration) error {
	input := ComboBoxSelector(movieID) + " input"
	if err := clearField(ctx, s, input, movieID); err != nil {
		return err
	}
	if err := s.TypeText(ctx, value, TypeDelay); err != nil {
		return fmt.Errorf("type into %s: %w", movieID, err)
	}
	if err := s.Sleep(ctx, FilterSettle); err != nil {
		return err
	}
	if err := WaitForIdle(ctx, s, idle); err != nil {
		return err
	}
	if err := s.PressKey(ctx, KeyEnter); err != nil {
		return err
	}
	return WaitForIdle(ctx, s, idle)
}

// SelectItemByPosition opens a combo box and clicks the item at the given
// 1-based position. Positions are stable across display languages where
// labels are not.
func SelectItemByPosition(ctx context.Context, s Surface, movieID string, position int, idle time.Duration) error {
	if err := Click(ctx, s, ComboBoxSelector(movieID)+" input", movieID); err != nil {
		return err
	}
	if err := s.Sleep(ctx, MenuSettle); err != nil {
		return err
	}
	item := fmt.Sprintf(`vaadin-combo-box-item[aria-posinset="%d"]`, position)
	if err := Click(ctx, s, item, fmt.Sprintf("%s option %d", movieID, position)); err != nil {
		return err
	}
	return WaitForIdle(ctx, s, idle)
}

// RenderedRowsJS is a JavaScript expression yielding the rendered <tr>
// elements of a vaadin-grid in logical order. Physical rows are recycled
// while scrolling, so DOM order is not display order.
func RenderedRowsJS(gridSelector string) string {
	return fmt.Sprintf(`(() => {
  const grid = document.querySelector(%s);
  if (!grid || !grid.shadowRoot) return [];
  const body = grid.shadowRoot.querySelector("#items");
  if (!body) return [];
  const rows = Array.from(body.querySelectorAll("tr")).filter((r) => !r.hidden);
  return rows
    .map((r, i) => ({ r, k: typeof r.index === "number" ? r.index : i }))
    .sort((a, b) => a.k - b.k)
    .map((x) => x.r);
})()`, JSString(gridSelector))
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func rowCenterScript(gridSelector string, rowIndex int) string {
	return Script("grid-row-center", fmt.Sprintf(`(() => {
  const index = %d;
  const row = %s[index];
  if (!row) return null;
  const r = row.getBoundingClientRect();
  if (r.width === 0 || r.height === 0) return null;
  return { x: r.x + r.width / 2, y: r.y + r.height / 2 };
})()`, rowIndex, RenderedRowsJS(gridSelector)))
}

// ClickGridRow clicks the centre of a rendered grid row with a real pointer
// event. Synthetic DOM clicks do not trigger the grid's selection handling.
func ClickGridRow(ctx context.Context, s Surface, gridSelector string, rowIndex int) error {
	var p *point
	if err := s.Eval(ctx, rowCenterScript(gridSelector, rowIndex), &p); err != nil {
		return fmt.Errorf("locate grid row %d: %w", rowIndex, err)
	}
	if p == nil {
		return &NotFoundError{What: "grid row", Selector: gridSelector, RowIndex: rowIndex}
	}
	return s.ClickAt(ctx, p.X, p.Y)
}
