package page

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/vaadin"
)

var ctx = context.Background()

func TestOpenEntriesGrid_ExpandsMenuAndOpensServices(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)

	assert.Equal(t, StateGridView, n.State())
	assert.True(t, n.Authenticated())
	assert.Equal(t, []string{
		"navigate " + testURL,
		"click " + MenuButton,
		"click " + EntriesLink,
	}, s.Calls())
}

func TestOpenEntriesGrid_MenuAlreadyExpanded(t *testing.T) {
	s := newPortal()
	s.OnNavigate(func(string) {
		s.Show(MenuButton, map[string]string{"aria-expanded": "true"})
		s.Show(EntriesLink, nil)
	})
	openGrid(t, s)
	assert.NotContains(t, s.Calls(), "click "+MenuButton)
}

func TestOpenEntriesGrid_Captcha(t *testing.T) {
	s := newPortal()
	s.OnNavigate(func(string) { s.SetURL("https://erp.example.com/fortiadc_captcha?x=1") })

	n := New(s, testURL, nil)
	landing, err := n.OpenEntriesGrid(ctx)
	require.NoError(t, err)
	assert.Equal(t, LandingCaptcha, landing)
	assert.Equal(t, StateCaptchaChallenge, n.State())
	assert.False(t, n.Authenticated())
}

func TestOpenEntriesGrid_SessionExpired(t *testing.T) {
	s := newPortal()
	s.OnNavigate(func(string) { s.SetURL("https://login.example.com/sso") })

	n := New(s, testURL, nil)
	_, err := n.OpenEntriesGrid(ctx)
	var se *SessionExpiredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "https://login.example.com/sso", se.URL)
	assert.Equal(t, StateSessionExpired, n.State())
	assert.Equal(t, MenuTimeout, s.Slept)
}

func TestSetMonthFilter(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)
	gen := n.Generation()

	require.NoError(t, n.SetMonthFilter(ctx, 2025, time.January))
	assert.Equal(t, ViewMonth, n.View())
	assert.Greater(t, n.Generation(), gen)

	calls := s.Calls()
	assert.Contains(t, calls, `click vaadin-combo-box-item[aria-posinset="3"]`)
	assert.Contains(t, calls, "type 01.01.2025")
	assert.Equal(t, "key Enter", calls[len(calls)-1])
}

func TestSetWeekFilter(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)

	require.NoError(t, n.SetWeekFilter(ctx, time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, ViewWeek, n.View())
	assert.Contains(t, s.Calls(), `click vaadin-combo-box-item[aria-posinset="2"]`)
	assert.Contains(t, s.Calls(), "type 08.01.2025")
}

func TestReadGridRows(t *testing.T) {
	s := newPortal()
	withRows(s,
		[6]string{"06.01.2025", "71100000001 – Internal", "1435 – Development", "Sprint", "8.00", "Open"},
		[6]string{"", "", "", "", "", ""},
		[6]string{"07.01.2025", "71100000001 – Internal", "1435 – Development", "", "4,50", "Open"},
	)
	n := openGrid(t, s)

	g, err := n.ReadGridRows(ctx)
	require.NoError(t, err)
	require.Len(t, g.Rows, 2)
	assert.Equal(t, "06.01.2025", g.Rows[0].Date)
	assert.Equal(t, "1435 – Development", g.Rows[0].ServiceType)
	assert.Equal(t, 2, g.Rows[1].RowIndex, "position in the render is kept when empty rows are skipped")
	assert.Equal(t, RowRef{Generation: n.Generation(), Index: 2}, g.Rows[1].Ref)
	assert.Len(t, g.Entries(), 2)
}

func TestReadGridRows_EmptyState(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)
	s.Show(EmptyState, nil)

	g, err := n.ReadGridRows(ctx)
	require.NoError(t, err)
	assert.Empty(t, g.Rows)
	assert.NotContains(t, s.Calls(), "eval grid-rows")
}

func TestReadGridRows_RequiresGrid(t *testing.T) {
	n := New(newPortal(), testURL, nil)
	_, err := n.ReadGridRows(ctx)
	assert.Error(t, err)
}

func TestRowRef_StaleAfterFilterChange(t *testing.T) {
	s := newPortal()
	withRows(s, [6]string{"06.01.2025", "711", "1435", "", "8.00", ""})
	n := openGrid(t, s)

	g, err := n.ReadGridRows(ctx)
	require.NoError(t, err)
	require.NoError(t, n.SetMonthFilter(ctx, 2025, time.January))

	err = n.OpenRowForEdit(ctx, g.Rows[0].Ref)
	var stale *StaleRowError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, 0, stale.Ref.Index)
}

func TestDeleteRowInline_InvalidatesShiftedRows(t *testing.T) {
	s := newPortal()
	rows := make([][6]string, 6)
	for i := range rows {
		rows[i] = [6]string{"06.01.2025", "711", "1435", "", "1.00", ""}
	}
	withRows(s, rows...)
	n := openGrid(t, s)
	g, err := n.ReadGridRows(ctx)
	require.NoError(t, err)

	require.NoError(t, n.DeleteRowInline(ctx, g.Rows[5].Ref))
	assert.Equal(t, StateDeleted, n.State())
	assert.Contains(t, s.Calls(), "click row menu 5")
	assert.Contains(t, s.Calls(), "click "+InlineDeleteItem)

	// Rows above the deleted one keep their place.
	require.NoError(t, n.DeleteRowInline(ctx, g.Rows[3].Ref))

	var stale *StaleRowError
	assert.True(t, errors.As(n.DeleteRowInline(ctx, g.Rows[4].Ref), &stale))
	assert.True(t, errors.As(n.DeleteRowInline(ctx, g.Rows[5].Ref), &stale))
	assert.NoError(t, n.DeleteRowInline(ctx, g.Rows[1].Ref))
}

func TestDeleteRowInline_MissingMenuButton(t *testing.T) {
	s := newPortal()
	withRows(s, [6]string{"06.01.2025", "711", "1435", "", "1.00", ""})
	n := openGrid(t, s)
	g, err := n.ReadGridRows(ctx)
	require.NoError(t, err)
	s.Handle("row-menu-button", func(string) (any, error) { return nil, nil })

	err = n.DeleteRowInline(ctx, g.Rows[0].Ref)
	var nf *vaadin.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 0, nf.RowIndex)
}

func TestCreateEntry_FillsFieldsInOrder(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)

	e := models.TimeEntry{
		Project: "71100000001", ServiceType: "1435", Hours: 8.5,
		Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local), Description: "Sprint review",
	}
	require.NoError(t, n.CreateEntry(ctx, e))
	assert.Equal(t, StateFilled, n.State())
	assert.Equal(t, FormPanel, n.Form())

	var typed []string
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, "type ") || strings.HasPrefix(c, "insert ") {
			typed = append(typed, c)
		}
	}
	assert.Equal(t, []string{
		"type 06.01.2025",
		"type 71100000001",
		"type 1435",
		"insert 8.5",
		"insert Sprint review",
	}, typed)
}

func TestFillEntryForm_SkipsEmptyDescription(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)
	e := models.TimeEntry{Project: "711", ServiceType: "1435", Hours: 8, Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)}
	require.NoError(t, n.CreateEntry(ctx, e))
	assert.NotContains(t, s.Calls(), "select "+DescriptionInput)
	assert.Contains(t, s.Calls(), "insert 8")
}

func TestSaveOpenEntry_PanelButton(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)
	e := models.TimeEntry{Project: "711", ServiceType: "1435", Hours: 8, Date: time.Now()}
	require.NoError(t, n.CreateEntry(ctx, e))

	require.NoError(t, n.SaveOpenEntry(ctx))
	calls := s.Calls()
	assert.Equal(t, []string{"key Tab", "click " + PanelSaveButton}, calls[len(calls)-2:])
	assert.Equal(t, StateSaved, n.State())
}

func TestSaveOpenEntry_DialogButton(t *testing.T) {
	s := newPortal()
	s.OnClick(NewEntryButton, func() { showForm(s, false) })
	n := openGrid(t, s)
	e := models.TimeEntry{Project: "711", ServiceType: "1435", Hours: 8, Date: time.Now()}
	require.NoError(t, n.CreateEntry(ctx, e))
	assert.Equal(t, FormDialog, n.Form())

	require.NoError(t, n.SaveOpenEntry(ctx))
	assert.Contains(t, s.Calls(), "click "+PrimaryButton)
}

func TestSaveOpenEntry_NoButton(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)
	e := models.TimeEntry{Project: "711", ServiceType: "1435", Hours: 8, Date: time.Now()}
	require.NoError(t, n.CreateEntry(ctx, e))
	s.Hide(PanelSaveButton)

	err := n.SaveOpenEntry(ctx)
	var nb *SaveButtonNotFoundError
	require.True(t, errors.As(err, &nb))
	assert.Equal(t, StateFilled, n.State())
}

func TestSaveOpenEntry_IllegalFromGrid(t *testing.T) {
	n := openGrid(t, newPortal())
	assert.Error(t, n.SaveOpenEntry(ctx))
}

func TestOpenRowForEditAndDelete(t *testing.T) {
	s := newPortal()
	withRows(s,
		[6]string{"06.01.2025", "711", "1435", "", "1.00", ""},
		[6]string{"06.01.2025", "711", "1435", "", "2.00", ""},
	)
	n := openGrid(t, s)
	g, err := n.ReadGridRows(ctx)
	require.NoError(t, err)

	require.NoError(t, n.OpenRowForEdit(ctx, g.Rows[1].Ref))
	assert.Equal(t, StateRowOpen, n.State())
	require.NoError(t, n.DeleteOpenEntry(ctx))
	assert.Equal(t, StateDeleted, n.State())

	require.NoError(t, n.OpenRowForEdit(ctx, g.Rows[0].Ref))
	require.NoError(t, n.DeleteOpenEntry(ctx))

	calls := s.Calls()
	assert.Contains(t, calls, "click row 1")
	assert.Contains(t, calls, "click "+PanelDeleteItem)
}

func TestCloseSidePanelIfOpen(t *testing.T) {
	s := newPortal()
	n := openGrid(t, s)
	e := models.TimeEntry{Project: "711", ServiceType: "1435", Hours: 8, Date: time.Now()}
	require.NoError(t, n.CreateEntry(ctx, e))
	require.NoError(t, n.SaveOpenEntry(ctx))

	require.NoError(t, n.CloseSidePanelIfOpen(ctx))
	assert.Equal(t, StateGridView, n.State())
	assert.Contains(t, s.Calls(), "click "+SidePanelClose)

	// Nothing to close the second time.
	before := len(s.Calls())
	require.NoError(t, n.CloseSidePanelIfOpen(ctx))
	assert.Len(t, s.Calls(), before)
}

func TestGridReacquire(t *testing.T) {
	a := models.ExistingEntry{Date: "06.01.2025", Project: "711", Hours: "1.00"}
	b := models.ExistingEntry{Date: "07.01.2025", Project: "711", Hours: "1.00"}
	g := &Grid{Generation: 4, Rows: []Row{
		{ExistingEntry: b, Ref: RowRef{4, 0}},
		{ExistingEntry: a, Ref: RowRef{4, 1}},
		{ExistingEntry: a, Ref: RowRef{4, 2}},
	}}

	refs, missing := g.Reacquire([]models.ExistingEntry{a, a, b, {Date: "08.01.2025"}})
	assert.Equal(t, []RowRef{{4, 1}, {4, 2}, {4, 0}}, refs)
	assert.Len(t, missing, 1)
}
