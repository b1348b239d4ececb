package page

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/vaadin"
)

// deleteSettle lets the grid re-render after an inline deletion.
const deleteSettle = 500 * time.Millisecond

// detectForm records whether the open form lives in the side panel or in
// a modal dialog. Both reuse the same field identifiers.
func (n *Navigator) detectForm(ctx context.Context) {
	if vaadin.IsVisible(ctx, n.s, SidePanel) {
		n.form = FormPanel
	} else {
		n.form = FormDialog
	}
}

// OpenRowForEdit opens the edit form of a grid row.
func (n *Navigator) OpenRowForEdit(ctx context.Context, ref RowRef) error {
	if err := n.require("open row", gridVisible); err != nil {
		return err
	}
	if err := n.check(ref); err != nil {
		return err
	}
	n.step("Opening existing entry...")
	if err := vaadin.ClickGridRow(ctx, n.s, GridSelector, ref.Index); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	if _, err := vaadin.WaitVisible(ctx, n.s, FormDatePicker, "entry form", vaadin.ElementTimeout); err != nil {
		return err
	}
	n.detectForm(ctx)
	r := ref
	n.openRef = &r
	return n.move(StateRowOpen)
}

// CreateEntry opens a blank entry form and fills it.
func (n *Navigator) CreateEntry(ctx context.Context, e models.TimeEntry) error {
	if err := n.require("create entry", gridVisible); err != nil {
		return err
	}
	n.step("Creating new entry...")
	if err := vaadin.Click(ctx, n.s, NewEntryButton, "new entry button"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	if _, err := vaadin.WaitVisible(ctx, n.s, vaadin.ComboBoxSelector(ProjectComboID), "project field", vaadin.ElementTimeout); err != nil {
		return err
	}
	n.detectForm(ctx)
	n.openRef = nil
	if err := n.move(StateRowOpen); err != nil {
		return err
	}
	return n.FillEntryForm(ctx, e)
}

// FormatHours renders hours the way the hours field accepts them.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// FillEntryForm sets every field of the open form in order. The service
// type field only renders once a project is selected.
func (n *Navigator) FillEntryForm(ctx context.Context, e models.TimeEntry) error {
	if err := n.require("fill form", func(s State) bool { return s == StateRowOpen || s == StateFilled }); err != nil {
		return err
	}

	date := dates.Display(e.Date)
	n.step(fmt.Sprintf("Setting date: %s", date))
	if err := vaadin.TypeAndConfirm(ctx, n.s, FormDateInput, "date field", date); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}

	n.step(fmt.Sprintf("Setting project: %s", e.Project))
	if err := vaadin.TypeIntoFilterField(ctx, n.s, ProjectComboID, e.Project, n.IdleTimeout); err != nil {
		return err
	}

	n.step(fmt.Sprintf("Setting service type: %s", e.ServiceType))
	if _, err := vaadin.WaitVisible(ctx, n.s, vaadin.ComboBoxSelector(ServiceComboID), "service type field", vaadin.ElementTimeout); err != nil {
		return err
	}
	if err := vaadin.TypeIntoFilterField(ctx, n.s, ServiceComboID, e.ServiceType, n.IdleTimeout); err != nil {
		return err
	}

	n.step(fmt.Sprintf("Setting hours: %s", FormatHours(e.Hours)))
	if _, err := vaadin.WaitVisible(ctx, n.s, HoursInput, "hours field", vaadin.ElementTimeout); err != nil {
		return err
	}
	if err := vaadin.Fill(ctx, n.s, HoursInput, "hours field", FormatHours(e.Hours)); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}

	if e.Description != "" {
		n.step(fmt.Sprintf("Setting description: %s", e.Description))
		if err := vaadin.Fill(ctx, n.s, DescriptionInput, "description field", e.Description); err != nil {
			return err
		}
		if err := n.idle(ctx); err != nil {
			return err
		}
	}
	return n.move(StateFilled)
}

// SaveOpenEntry commits the open form. Tab is pressed first so the field
// that still has focus sends its value to the server before Save.
func (n *Navigator) SaveOpenEntry(ctx context.Context) error {
	if err := n.require("save entry", func(s State) bool { return s == StateFilled }); err != nil {
		return err
	}
	n.step("Saving...")
	if err := n.s.PressKey(ctx, vaadin.KeyTab); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}

	var button string
	switch {
	case vaadin.IsVisible(ctx, n.s, PanelSaveButton):
		button = PanelSaveButton
	case vaadin.IsVisible(ctx, n.s, PrimaryButton):
		button = PrimaryButton
	default:
		return &SaveButtonNotFoundError{}
	}
	if err := vaadin.Click(ctx, n.s, button, "save button"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	if err := n.s.Sleep(ctx, vaadin.SaveSettle); err != nil {
		return err
	}
	// A saved entry can land anywhere in the sorted grid.
	n.rerender()
	return n.move(StateSaved)
}

// DeleteOpenEntry deletes the entry whose form is open through the
// panel's more-actions menu.
func (n *Navigator) DeleteOpenEntry(ctx context.Context) error {
	if err := n.require("delete entry", func(s State) bool { return s == StateRowOpen || s == StateFilled }); err != nil {
		return err
	}
	if err := vaadin.Click(ctx, n.s, PanelActions, "more actions menu"); err != nil {
		return err
	}
	if err := n.s.Sleep(ctx, vaadin.MenuSettle); err != nil {
		return err
	}
	if err := vaadin.Click(ctx, n.s, PanelDeleteItem, "delete action"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	if err := vaadin.Click(ctx, n.s, PrimaryButton, "delete confirmation"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}

	if n.openRef != nil {
		n.invalidateFrom(n.openRef.Index)
		n.openRef = nil
	} else {
		n.rerender()
	}
	n.form = FormNone
	return n.move(StateDeleted)
}

type menuPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// rowMenuScript locates the inline menu button inside a row's slotted
// cell content.
func rowMenuScript(index int) string {
	return vaadin.Script("row-menu-button", fmt.Sprintf(`(() => {
  const index = %d;
  const row = %s[index];
  if (!row) return null;
  for (const cell of Array.from(row.querySelectorAll("td"))) {
    const slot = cell.querySelector("slot");
    if (!slot) continue;
    for (const el of slot.assignedElements()) {
      const btn = el.matches(%s) ? el : el.querySelector(%s);
      if (btn) {
        const r = btn.getBoundingClientRect();
        return { x: r.x + r.width / 2, y: r.y + r.height / 2 };
      }
    }
  }
  return null;
})()`, index, vaadin.RenderedRowsJS(GridSelector), vaadin.JSString(RowMenuButton), vaadin.JSString(RowMenuButton)))
}

// DeleteRowInline deletes a grid row through its inline context menu
// without opening the form.
func (n *Navigator) DeleteRowInline(ctx context.Context, ref RowRef) error {
	if err := n.require("delete row", gridVisible); err != nil {
		return err
	}
	if err := n.check(ref); err != nil {
		return err
	}

	var p *menuPoint
	if err := n.s.Eval(ctx, rowMenuScript(ref.Index), &p); err != nil {
		return fmt.Errorf("locate row menu %d: %w", ref.Index, err)
	}
	if p == nil {
		return &vaadin.NotFoundError{What: "menu button on row", Selector: RowMenuButton, RowIndex: ref.Index}
	}
	if err := n.s.ClickAt(ctx, p.X, p.Y); err != nil {
		return err
	}
	if err := vaadin.Click(ctx, n.s, InlineDeleteItem, "delete action"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	if err := vaadin.Click(ctx, n.s, PrimaryButton, "delete confirmation"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	if err := vaadin.WaitHidden(ctx, n.s, PrimaryButton, "delete confirmation", vaadin.ElementTimeout); err != nil {
		return err
	}
	if err := n.s.Sleep(ctx, deleteSettle); err != nil {
		return err
	}
	n.invalidateFrom(ref.Index)
	return n.move(StateDeleted)
}

// CloseSidePanelIfOpen closes a lingering side panel so the next action
// starts from the grid.
func (n *Navigator) CloseSidePanelIfOpen(ctx context.Context) error {
	if vaadin.IsVisible(ctx, n.s, SidePanel) {
		if err := vaadin.Click(ctx, n.s, SidePanelClose, "side panel close button"); err != nil {
			return err
		}
		if err := n.idle(ctx); err != nil {
			return err
		}
	}
	n.form = FormNone
	n.openRef = nil
	if n.state == StateGridView {
		return nil
	}
	return n.move(StateGridView)
}
