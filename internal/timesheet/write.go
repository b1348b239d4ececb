package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/page"
)

// Log books entry. When the day already has an entry for the project the
// user chooses between updating it and adding another one.
func (s *Service) Log(ctx context.Context, e models.TimeEntry) (models.BookingAction, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	headless := !s.Headed && !s.SemiManual
	return run(ctx, s, headless, func(ctx context.Context, nav *page.Navigator) outcome[models.BookingAction] {
		fail := failure[models.BookingAction]
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return fail(err)
		}
		if !ok {
			return captchaRequired[models.BookingAction]()
		}
		s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingExisting))
		g, err := readMonth(ctx, nav, dates.MonthOf(e.Date))
		if err != nil {
			return fail(err)
		}

		action := models.BookingCreated
		if dups := matching(g.Rows, e.Date, e.Project); len(dups) > 0 {
			m := dups[0]
			s.UI.Println("")
			s.UI.Warning("%s", s.Loc.Sprintf(i18n.MsgAlreadyBooked, m.Hours, m.Date, m.Project))
			s.describe(m.ExistingEntry)
			s.UI.Println("")
			answer, err := s.Prompt.Ask(s.Loc.Sprintf(i18n.MsgUpdateOrNew, s.Loc.UpdateKey()))
			if err != nil {
				return fail(err)
			}
			if strings.EqualFold(answer, s.Loc.UpdateKey()) {
				action = models.BookingUpdated
			}
			if action == models.BookingUpdated {
				s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgOpeningExisting))
				if err := nav.OpenRowForEdit(ctx, m.Ref); err != nil {
					return fail(err)
				}
				if err := nav.FillEntryForm(ctx, e); err != nil {
					return fail(err)
				}
			}
		}
		if action == models.BookingCreated {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgCreatingNew))
			if err := nav.CreateEntry(ctx, e); err != nil {
				return fail(err)
			}
		}

		if s.SemiManual {
			if err := s.Prompt.WaitEnter(s.Loc.Sprintf(i18n.MsgSaveManually)); err != nil {
				return fail(err)
			}
			if err := nav.CloseSidePanelIfOpen(ctx); err != nil {
				s.UI.VerboseLog("closing side panel: %v", err)
			}
		} else {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgSaving))
			if err := nav.SaveOpenEntry(ctx); err != nil {
				return fail(err)
			}
		}
		s.UI.Success("%s", s.Loc.Sprintf(i18n.MsgSaved))
		s.record(ctx, entryBooking(action, e))
		s.refreshCache(ctx, nav)
		return success(action)
	})
}

func (s *Service) describe(e models.ExistingEntry) {
	s.UI.Println("  %s: %s", s.Loc.Sprintf(i18n.MsgHeaderServiceType), e.ServiceType)
	if e.Text != "" {
		s.UI.Println("  %s: %s", s.Loc.Sprintf(i18n.MsgHeaderText), e.Text)
	}
}

// Delete removes the entry booked on the given day for project. Several
// matches are listed and the user picks one or all; all are deleted from
// the highest grid position down.
func (s *Service) Delete(ctx context.Context, e models.TimeEntry) (int, error) {
	return run(ctx, s, !s.Headed, func(ctx context.Context, nav *page.Navigator) outcome[int] {
		fail := failure[int]
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return fail(err)
		}
		if !ok {
			return captchaRequired[int]()
		}
		s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingEntries))
		g, err := readMonth(ctx, nav, dates.MonthOf(e.Date))
		if err != nil {
			return fail(err)
		}
		day := dates.Display(e.Date)
		matches := matching(g.Rows, e.Date, e.Project)

		var targets []page.Row
		switch len(matches) {
		case 0:
			s.UI.Info("%s", s.Loc.Sprintf(i18n.MsgNoEntryFound, day, e.Project))
			return success(0)
		case 1:
			m := matches[0]
			s.UI.Println("%s", s.Loc.Sprintf(i18n.MsgFoundEntry, m.Hours, m.Date, m.Project))
			s.describe(m.ExistingEntry)
			s.UI.Println("")
			answer, err := s.Prompt.Ask(s.Loc.ConfirmPrompt(i18n.MsgReallyDelete))
			if err != nil {
				return fail(err)
			}
			if !strings.EqualFold(answer, s.Loc.ConfirmKey()) {
				s.UI.Info("%s", s.Loc.Sprintf(i18n.MsgCancelled))
				return success(0)
			}
			targets = matches
		default:
			n := strconv.Itoa(len(matches))
			s.UI.Println("%s", s.Loc.Sprintf(i18n.MsgMultipleFound, n, day, e.Project))
			s.UI.Println("")
			for i, m := range matches {
				text := m.Text
				if text == "" {
					text = s.Loc.Sprintf(i18n.MsgNoText)
				}
				s.UI.Println("  [%d] %s  %s  %s", i+1, m.Hours, m.ServiceType, text)
			}
			s.UI.Println("")
			answer, err := s.Prompt.Ask(s.Loc.Sprintf(i18n.MsgWhichDelete, n))
			if err != nil {
				return fail(err)
			}
			switch strings.ToLower(answer) {
			case "n":
				s.UI.Info("%s", s.Loc.Sprintf(i18n.MsgCancelled))
				return success(0)
			case "a":
				targets = matches
			default:
				i, err := strconv.Atoi(answer)
				if err != nil || i < 1 || i > len(matches) {
					s.UI.Warning("%s", s.Loc.Sprintf(i18n.MsgInvalidSelection))
					return success(0)
				}
				targets = matches[i-1 : i]
			}
		}

		byRef := make(map[page.RowRef]models.ExistingEntry, len(targets))
		refs := make([]page.RowRef, len(targets))
		for i, t := range targets {
			refs[i] = t.Ref
			byRef[t.Ref] = t.ExistingEntry
		}
		ordered := descending(refs)
		total := strconv.Itoa(len(ordered))
		for i, ref := range ordered {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgDeletingEntry, strconv.Itoa(i+1), total))
			if err := nav.OpenRowForEdit(ctx, ref); err != nil {
				return fail(fmt.Errorf("open row %d: %w", ref.Index, err))
			}
			if err := nav.DeleteOpenEntry(ctx); err != nil {
				return fail(fmt.Errorf("delete row %d: %w", ref.Index, err))
			}
			s.record(ctx, rowBooking(models.BookingDeleted, byRef[ref]))
		}
		if len(ordered) == 1 {
			s.UI.Success("%s", s.Loc.Sprintf(i18n.MsgEntryDeleted))
		} else {
			s.UI.Success("%s", s.Loc.Sprintf(i18n.MsgEntriesDeleted, total))
		}
		s.refreshCache(ctx, nav)
		return success(len(ordered))
	})
}

// MonthSession keeps a browser open on the current month's grid while the
// user picks entries to delete.
type MonthSession struct {
	Month   dates.Month
	Entries []models.ExistingEntry

	s      *Service
	c      *conn
	unlock func()
}

// LoadMonthEntries opens the current month and returns its entries. The
// caller must Close the session.
func (s *Service) LoadMonthEntries(ctx context.Context) (*MonthSession, error) {
	unlock, err := s.acquire(ctx, s.LockWait)
	if err != nil {
		return nil, err
	}
	month := dates.MonthOf(s.today())
	for attempt := 0; ; attempt++ {
		c, err := s.launch(ctx, !s.Headed)
		if err != nil {
			unlock()
			return nil, err
		}
		ok, err := openGrid(ctx, c.nav)
		if err == nil && !ok {
			if attempt > 0 {
				s.release(ctx, c)
				unlock()
				return nil, ErrCaptchaRepeated
			}
			if _, err := s.Recoverer.Recover(ctx, c.tab, s.BaseURL); err != nil {
				unlock()
				return nil, err
			}
			continue
		}
		var g *page.Grid
		if err == nil {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingEntries))
			g, err = readMonth(ctx, c.nav, month)
		}
		if err != nil {
			s.release(ctx, c)
			unlock()
			return nil, err
		}
		return &MonthSession{Month: month, Entries: g.Entries(), s: s, c: c, unlock: unlock}, nil
	}
}

// Delete removes the entries at the given positions of Entries. The grid
// is reloaded first because the user may have taken a while to choose;
// the chosen entries are located again by content and deleted through
// their row menus from the bottom up.
func (m *MonthSession) Delete(ctx context.Context, indices []int) (int, error) {
	s, nav := m.s, m.c.nav
	var chosen []models.ExistingEntry
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(m.Entries) {
			return 0, fmt.Errorf("entry %d out of range", i)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		chosen = append(chosen, m.Entries[i])
	}
	if len(chosen) == 0 {
		return 0, nil
	}

	ok, err := openGrid(ctx, nav)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New(s.Loc.Sprintf(i18n.MsgCaptchaRunAgain))
	}
	g, err := readMonth(ctx, nav, m.Month)
	if err != nil {
		return 0, err
	}
	refs, missing := g.Reacquire(chosen)
	for _, e := range missing {
		s.UI.Warning("%s", s.Loc.Sprintf(i18n.MsgNoLongerListed, e.Date, e.Project, e.Hours))
	}
	byRef := make(map[page.RowRef]models.ExistingEntry, len(refs))
	for _, r := range g.Rows {
		byRef[r.Ref] = r.ExistingEntry
	}

	ordered := descending(refs)
	total := strconv.Itoa(len(ordered))
	for i, ref := range ordered {
		s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgDeletingEntry, strconv.Itoa(i+1), total))
		if err := nav.DeleteRowInline(ctx, ref); err != nil {
			return i, fmt.Errorf("delete row %d: %w", ref.Index, err)
		}
		s.record(ctx, rowBooking(models.BookingDeleted, byRef[ref]))
	}
	s.UI.Success("%s", s.Loc.Sprintf(i18n.MsgEntriesDeleted, total))
	s.refreshCache(ctx, nav)
	return len(ordered), nil
}

// Close releases the browser and the session lock.
func (m *MonthSession) Close(ctx context.Context) {
	if m.c != nil {
		m.s.release(ctx, m.c)
		m.c = nil
	}
	if m.unlock != nil {
		m.unlock()
		m.unlock = nil
	}
}

// BatchResult counts what BatchLog did.
type BatchResult struct {
	Created int
	Skipped int
}

// groupByMonth splits entries by month, keeping first-seen month order and
// the entries' order within each month.
func groupByMonth(entries []models.TimeEntry) ([]dates.Month, map[dates.Month][]models.TimeEntry) {
	groups := map[dates.Month][]models.TimeEntry{}
	var order []dates.Month
	for _, e := range entries {
		m := dates.MonthOf(e.Date)
		if _, ok := groups[m]; !ok {
			order = append(order, m)
		}
		groups[m] = append(groups[m], e)
	}
	return order, groups
}

// BatchLog books entries in one browser session. Each month's grid is
// read once; entries whose day already has one for the same project are
// skipped.
func (s *Service) BatchLog(ctx context.Context, entries []models.TimeEntry) (BatchResult, error) {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return BatchResult{}, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	order, groups := groupByMonth(entries)
	total := strconv.Itoa(len(entries))

	return run(ctx, s, !s.Headed, func(ctx context.Context, nav *page.Navigator) outcome[BatchResult] {
		var res BatchResult
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return failure[BatchResult](err)
		}
		if !ok {
			return captchaRequired[BatchResult]()
		}
		n := 0
		for _, m := range order {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingExisting))
			g, err := readMonth(ctx, nav, m)
			if err != nil {
				return failure[BatchResult](err)
			}
			for _, e := range groups[m] {
				n++
				day := dates.Display(e.Date)
				if len(matching(g.Rows, e.Date, e.Project)) > 0 {
					s.UI.Warning("%s", s.Loc.Sprintf(i18n.MsgBatchSkipping, day, e.Project))
					s.record(ctx, entryBooking(models.BookingSkipped, e))
					res.Skipped++
					continue
				}
				s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgBatchCreating, strconv.Itoa(n), total, day))
				if err := nav.CreateEntry(ctx, e); err != nil {
					return failure[BatchResult](fmt.Errorf("create entry for %s: %w", day, err))
				}
				s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgSaving))
				if err := nav.SaveOpenEntry(ctx); err != nil {
					return failure[BatchResult](fmt.Errorf("save entry for %s: %w", day, err))
				}
				if err := nav.CloseSidePanelIfOpen(ctx); err != nil {
					return failure[BatchResult](err)
				}
				s.record(ctx, entryBooking(models.BookingCreated, e))
				res.Created++
			}
		}
		s.UI.Success("%s", s.Loc.Sprintf(i18n.MsgBatchSummary, strconv.Itoa(res.Created), strconv.Itoa(res.Skipped)))
		if res.Created > 0 {
			s.refreshCache(ctx, nav)
		}
		return success(res)
	})
}

