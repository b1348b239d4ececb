package page

import (
	"context"
	"fmt"

	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/vaadin"
)

// RowRef identifies a grid row within one render. It must be re-acquired
// after any navigation, filter change, save or deletion at or above its
// index.
type RowRef struct {
	Generation int
	Index      int
}

// Row is a scraped grid row with its render-scoped reference.
type Row struct {
	models.ExistingEntry
	Ref RowRef
}

// Grid is one snapshot of the entries grid.
type Grid struct {
	Generation int
	Rows       []Row
}

// Entries returns the scraped records without their references.
func (g *Grid) Entries() []models.ExistingEntry {
	out := make([]models.ExistingEntry, 0, len(g.Rows))
	for _, r := range g.Rows {
		out = append(out, r.ExistingEntry)
	}
	return out
}

// Reacquire maps previously scraped entries onto rows of this snapshot by
// content. Identical entries map to distinct rows. Entries that are no
// longer shown are returned in missing.
func (g *Grid) Reacquire(entries []models.ExistingEntry) (refs []RowRef, missing []models.ExistingEntry) {
	used := make(map[int]bool, len(entries))
	for _, e := range entries {
		found := false
		for _, r := range g.Rows {
			if used[r.Ref.Index] || !r.SameRow(e) {
				continue
			}
			used[r.Ref.Index] = true
			refs = append(refs, r.Ref)
			found = true
			break
		}
		if !found {
			missing = append(missing, e)
		}
	}
	return refs, missing
}

type rawRow struct {
	Position int      `json:"position"`
	Card     []string `json:"card"`
	Text     string   `json:"text"`
	Hours    string   `json:"hours"`
	Status   string   `json:"status"`
}

// gridRowsScript reads each rendered row's slotted cell content. Cell 0 is
// a card holding date, project and service type; cells 1 to 3 hold text,
// hours and status. A slot's own textContent is empty, so the assigned
// elements are read instead.
func gridRowsScript() string {
	return vaadin.Script("grid-rows", fmt.Sprintf(`(() => {
  const rows = %s;
  const out = [];
  rows.forEach((row, position) => {
    const cells = Array.from(row.querySelectorAll("td"));
    const slotted = (i) => {
      if (i >= cells.length) return null;
      const slot = cells[i].querySelector("slot");
      if (!slot) return null;
      const assigned = slot.assignedElements();
      return assigned.length > 0 ? assigned[0] : null;
    };
    const text = (el) => (el && el.textContent ? el.textContent.trim() : "");
    const cardEl = slotted(0);
    const card = [];
    if (cardEl) {
      const blocks = cardEl.querySelectorAll(".dl-slot-row");
      const parts = blocks.length > 0 ? Array.from(blocks) : Array.from(cardEl.children);
      parts.forEach((b) => card.push(text(b)));
    }
    out.push({ position, card, text: text(slotted(1)), hours: text(slotted(2)), status: text(slotted(3)) });
  });
  return out;
})()`, vaadin.RenderedRowsJS(GridSelector)))
}

// ReadGridRows scrapes the rendered rows of the entries grid. Rows with no
// content are skipped. The returned references start a new render
// generation.
func (n *Navigator) ReadGridRows(ctx context.Context) (*Grid, error) {
	if err := n.require("read grid", gridVisible); err != nil {
		return nil, err
	}
	n.rerender()
	n.state = StateGridView
	g := &Grid{Generation: n.generation}

	if vaadin.IsVisible(ctx, n.s, EmptyState) {
		return g, nil
	}

	var raw []rawRow
	if err := n.s.Eval(ctx, gridRowsScript(), &raw); err != nil {
		return nil, fmt.Errorf("read grid rows: %w", err)
	}
	for _, r := range raw {
		if len(r.Card) == 0 && r.Text == "" && r.Hours == "" {
			continue
		}
		e := models.ExistingEntry{
			Date:        cardPart(r.Card, 0),
			Project:     cardPart(r.Card, 1),
			ServiceType: cardPart(r.Card, 2),
			Text:        r.Text,
			Hours:       r.Hours,
			Status:      r.Status,
			RowIndex:    r.Position,
		}
		g.Rows = append(g.Rows, Row{ExistingEntry: e, Ref: RowRef{Generation: n.generation, Index: r.Position}})
	}
	return g, nil
}

func cardPart(card []string, i int) string {
	if i < len(card) {
		return card[i]
	}
	return ""
}

// check rejects references from an earlier render or shifted by a deletion.
func (n *Navigator) check(ref RowRef) error {
	if ref.Generation != n.generation || ref.Index >= n.invalidFrom {
		return &StaleRowError{Ref: ref, Generation: n.generation}
	}
	return nil
}

// invalidateFrom marks rows at or after index as shifted.
func (n *Navigator) invalidateFrom(index int) {
	if index < n.invalidFrom {
		n.invalidFrom = index
	}
}
