package page

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/vaadin"
	"github.com/joescharf/abacus/internal/vaadin/vaadintest"
)

const testURL = "https://erp.example.com/portal/"

var (
	rangeInput   = vaadin.ComboBoxSelector(DateRangeComboID) + " input"
	projectCombo = vaadin.ComboBoxSelector(ProjectComboID)
	serviceCombo = vaadin.ComboBoxSelector(ServiceComboID)
)

// newPortal returns a fake tab that behaves like the portal for the happy
// path: menu, entries view, filters, entry form and row menus.
func newPortal() *vaadintest.Surface {
	s := vaadintest.New()
	s.OnNavigate(func(string) {
		s.Show(MenuButton, map[string]string{"aria-expanded": "false"})
	})
	s.OnClick(MenuButton, func() {
		s.Show(MenuButton, map[string]string{"aria-expanded": "true"})
		s.Show(EntriesLink, nil)
		s.Show(WeeklyReportLink, nil)
	})
	s.OnClick(EntriesLink, func() {
		s.Show(rangeInput, nil)
		s.Show(FilterDateInput, nil)
		s.Show(NewEntryButton, nil)
	})
	s.OnClick(rangeInput, func() {
		s.Show(`vaadin-combo-box-item[aria-posinset="2"]`, nil)
		s.Show(`vaadin-combo-box-item[aria-posinset="3"]`, nil)
	})
	s.OnClick(NewEntryButton, func() { showForm(s, true) })
	s.OnClick(PanelActions, func() { s.Show(PanelDeleteItem, nil) })
	s.OnClick(PanelDeleteItem, func() { s.Show(PrimaryButton, nil) })
	s.OnClick(InlineDeleteItem, func() { s.Show(PrimaryButton, nil) })
	s.OnClick(PrimaryButton, func() {
		s.Hide(PrimaryButton)
		s.Hide(SidePanel)
	})
	s.OnClick(SidePanelClose, func() { s.Hide(SidePanel) })
	return s
}

func showForm(s *vaadintest.Surface, panel bool) {
	for _, sel := range []string{
		FormDatePicker, FormDateInput,
		projectCombo, projectCombo + " input",
		serviceCombo, serviceCombo + " input",
		HoursInput, DescriptionInput,
	} {
		s.Show(sel, nil)
	}
	if panel {
		s.Show(SidePanel, nil)
		s.Show(SidePanelClose, nil)
		s.Show(PanelSaveButton, nil)
		s.Show(PanelActions, nil)
	} else {
		s.Show(PrimaryButton, nil)
	}
}

// withRows serves grid rows as date, project, service type, text, hours,
// status tuples and makes every row and its menu button clickable.
func withRows(s *vaadintest.Surface, rows ...[6]string) {
	s.Handle("grid-rows", func(string) (any, error) {
		out := make([]map[string]any, 0, len(rows))
		for i, r := range rows {
			card := []string{}
			for _, c := range r[:3] {
				if c != "" {
					card = append(card, c)
				}
			}
			out = append(out, map[string]any{
				"position": i, "card": card, "text": r[3], "hours": r[4], "status": r[5],
			})
		}
		return out, nil
	})
	s.Handle("grid-row-center", func(script string) (any, error) {
		i, ok := vaadintest.ScriptIndex(script)
		if !ok || i >= len(rows) {
			return nil, nil
		}
		return map[string]float64{"x": 1000, "y": float64(1000 + i*10)}, nil
	})
	s.Handle("row-menu-button", func(script string) (any, error) {
		i, ok := vaadintest.ScriptIndex(script)
		if !ok || i >= len(rows) {
			return nil, nil
		}
		return map[string]float64{"x": 2000, "y": float64(1000 + i*10)}, nil
	})
	for i := range rows {
		s.Target(1000, float64(1000+i*10), fmt.Sprintf("row %d", i))
		s.Target(2000, float64(1000+i*10), fmt.Sprintf("row menu %d", i))
		s.OnClick(fmt.Sprintf("row %d", i), func() { showForm(s, true) })
		s.OnClick(fmt.Sprintf("row menu %d", i), func() { s.Show(InlineDeleteItem, nil) })
	}
}

func openGrid(t *testing.T, s *vaadintest.Surface) *Navigator {
	t.Helper()
	n := New(s, testURL, nil)
	n.IdleTimeout = time.Second
	landing, err := n.OpenEntriesGrid(context.Background())
	require.NoError(t, err)
	require.Equal(t, LandingMenu, landing)
	return n
}
