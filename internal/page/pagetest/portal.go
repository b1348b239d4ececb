// Package pagetest provides a stateful fake of the portal's time-entry
// pages for tests above the page package.
package pagetest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/vaadin"
	"github.com/joescharf/abacus/internal/vaadin/vaadintest"
)

// URL is the portal root the fake answers for.
const URL = "https://erp.example.com/portal/"

// CaptchaURL is where a challenged navigation lands.
const CaptchaURL = "https://erp.example.com/fortiadc_captcha?redirect=%2Fportal%2F"

var (
	rangeInput   = vaadin.ComboBoxSelector(page.DateRangeComboID) + " input"
	projectInput = vaadin.ComboBoxSelector(page.ProjectComboID) + " input"
	serviceInput = vaadin.ComboBoxSelector(page.ServiceComboID) + " input"
)

// Entry is one booked row as the grid renders it. Date is DD.MM.YYYY.
type Entry struct {
	Date        string
	Project     string
	ServiceType string
	Text        string
	Hours       string
	Status      string
}

// Portal is a fake tab that keeps a list of entries, filters them like the
// date-range combo box does and applies creates, updates and deletions made
// through the form and row menus.
type Portal struct {
	*vaadintest.Surface

	mu      sync.Mutex
	entries []Entry

	// Captcha makes every navigation land on the challenge page.
	Captcha bool
	// Weekly holds worked, target and difference as the report shows them.
	Weekly []string
	// Overtime and Vacation hold the balance panel values.
	Overtime []string
	Vacation []string
	// Lang and NavTitle are what language detection reads.
	Lang     string
	NavTitle string

	// Created, Updated and Deleted record the changes made, in order.
	Created []Entry
	Updated []Entry
	Deleted []Entry

	rangePos      int
	filter        string
	pendingFilter string
	field         string
	open          int
	draft         Entry
	confirming    bool
	pendingDelete int
	targets       int
}

const (
	openNone = -1
	openNew  = -2
)

// New returns a Portal showing entries.
func New(entries ...Entry) *Portal {
	p := &Portal{
		Surface: vaadintest.New(),
		entries: append([]Entry(nil), entries...),
		Lang:    "de",
		open:    openNone,
	}
	p.wire()
	return p
}

// Entries returns every entry currently booked.
func (p *Portal) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Entry(nil), p.entries...)
}

// Filter returns the last applied filter date.
func (p *Portal) Filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// visible returns indices into entries matching the applied filter.
func (p *Portal) visible() []int {
	var out []int
	var from, to time.Time
	filtered := false
	if d, err := dates.ParseDisplay(p.filter); err == nil {
		switch p.rangePos {
		case page.MonthOption:
			m := dates.MonthOf(d)
			from, to, filtered = m.First(), m.Last(), true
		case page.WeekOption:
			monday, _ := dates.WeekBounds(d)
			from, to, filtered = monday, monday.AddDate(0, 0, 6), true
		}
	}
	for i, e := range p.entries {
		if filtered {
			d, err := dates.ParseDisplay(e.Date)
			if err != nil || d.Before(from) || d.After(to) {
				continue
			}
		}
		out = append(out, i)
	}
	return out
}

func (p *Portal) wire() {
	s := p.Surface
	s.OnNavigate(func(string) {
		p.mu.Lock()
		captcha := p.Captcha
		p.mu.Unlock()
		if captcha {
			s.SetURL(CaptchaURL)
			return
		}
		s.Show(page.MenuButton, map[string]string{"aria-expanded": "false"})
	})
	s.OnClick(page.MenuButton, func() {
		s.Show(page.MenuButton, map[string]string{"aria-expanded": "true"})
		s.Show(page.EntriesLink, nil)
		s.Show(page.WeeklyReportLink, nil)
	})
	s.OnClick(page.EntriesLink, func() {
		s.Hide(page.ReportContent)
		s.Show(rangeInput, nil)
		s.Show(page.FilterDateInput, nil)
		s.Show(page.NewEntryButton, nil)
		p.mu.Lock()
		p.rangePos, p.filter = 0, ""
		p.mu.Unlock()
		p.sync()
	})
	s.OnClick(page.WeeklyReportLink, func() {
		s.Show(page.ReportContent, nil)
	})
	s.OnClick(rangeInput, func() {
		for _, pos := range []int{page.WeekOption, page.MonthOption} {
			sel := fmt.Sprintf(`vaadin-combo-box-item[aria-posinset="%d"]`, pos)
			s.Show(sel, nil)
			s.OnClick(sel, func() {
				p.mu.Lock()
				p.rangePos = pos
				p.mu.Unlock()
			})
		}
	})

	for sel, field := range map[string]string{
		page.FilterDateInput:  "filter",
		page.FormDateInput:    "date",
		projectInput:          "project",
		serviceInput:          "service",
		page.HoursInput:       "hours",
		page.DescriptionInput: "text",
	} {
		s.OnClick(sel, func() {
			p.mu.Lock()
			p.field = field
			p.mu.Unlock()
		})
	}
	s.OnType(func(text string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		switch p.field {
		case "filter":
			p.pendingFilter = text
		case "date":
			p.draft.Date = text
		case "project":
			p.draft.Project = text
		case "service":
			p.draft.ServiceType = text
		case "hours":
			p.draft.Hours = text
		case "text":
			p.draft.Text = text
		}
	})
	s.OnKey(vaadin.KeyEnter, func() {
		p.mu.Lock()
		apply := p.field == "filter"
		if apply {
			p.filter = p.pendingFilter
		}
		p.mu.Unlock()
		if apply {
			p.sync()
		}
	})

	s.OnClick(page.NewEntryButton, func() {
		p.mu.Lock()
		p.open, p.draft = openNew, Entry{}
		p.mu.Unlock()
		p.showForm()
	})
	s.OnClick(page.PanelSaveButton, p.save)
	s.OnClick(page.PanelActions, func() { s.Show(page.PanelDeleteItem, nil) })
	s.OnClick(page.PanelDeleteItem, func() {
		p.mu.Lock()
		p.confirming, p.pendingDelete = true, p.open
		p.mu.Unlock()
		s.Hide(page.PanelDeleteItem)
		s.Show(page.PrimaryButton, nil)
	})
	s.OnClick(page.InlineDeleteItem, func() {
		p.mu.Lock()
		p.confirming = true
		p.mu.Unlock()
		s.Hide(page.InlineDeleteItem)
		s.Show(page.PrimaryButton, nil)
	})
	s.OnClick(page.PrimaryButton, func() {
		p.mu.Lock()
		confirming := p.confirming
		p.mu.Unlock()
		if confirming {
			p.confirmDelete()
			return
		}
		p.save()
	})
	s.OnClick(page.SidePanelClose, p.hideForm)

	s.Handle("grid-rows", func(string) (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		out := []map[string]any{}
		for pos, i := range p.visible() {
			e := p.entries[i]
			out = append(out, map[string]any{
				"position": pos,
				"card":     []string{e.Date, e.Project, e.ServiceType},
				"text":     e.Text,
				"hours":    e.Hours,
				"status":   e.Status,
			})
		}
		return out, nil
	})
	rowPoint := func(x float64) vaadintest.Handler {
		return func(script string) (any, error) {
			i, ok := vaadintest.ScriptIndex(script)
			p.mu.Lock()
			n := len(p.visible())
			p.mu.Unlock()
			if !ok || i < 0 || i >= n {
				return nil, nil
			}
			return map[string]float64{"x": x, "y": rowY(i)}, nil
		}
	}
	s.Handle("grid-row-center", rowPoint(1000))
	s.Handle("row-menu-button", rowPoint(2000))

	s.Handle("weekly-totals", func(string) (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.Weekly == nil {
			return nil, nil
		}
		return p.Weekly, nil
	})
	s.Handle("panel-values", func(script string) (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		vals := p.Overtime
		if strings.Contains(script, "id_pnl_holiday") {
			vals = p.Vacation
		}
		if vals == nil {
			return nil, nil
		}
		return vals, nil
	})
	s.Handle("ui-language", func(string) (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		return map[string]string{"lang": p.Lang, "navTitle": p.NavTitle}, nil
	})
}

func rowY(i int) float64 { return float64(1000 + i*10) }

// sync updates the empty-state marker and the clickable row targets after
// the visible rows changed.
func (p *Portal) sync() {
	p.mu.Lock()
	n := len(p.visible())
	grow := n > p.targets
	from := p.targets
	if grow {
		p.targets = n
	}
	p.mu.Unlock()

	if n == 0 {
		p.Show(page.EmptyState, nil)
	} else {
		p.Hide(page.EmptyState)
	}
	for i := from; grow && i < n; i++ {
		row, menu := fmt.Sprintf("row %d", i), fmt.Sprintf("row menu %d", i)
		p.Target(1000, rowY(i), row)
		p.Target(2000, rowY(i), menu)
		p.OnClick(row, func() {
			p.mu.Lock()
			vis := p.visible()
			if i >= len(vis) {
				p.mu.Unlock()
				return
			}
			p.open, p.draft = i, p.entries[vis[i]]
			p.mu.Unlock()
			p.showForm()
		})
		p.OnClick(menu, func() {
			p.mu.Lock()
			p.pendingDelete = i
			p.mu.Unlock()
			p.Show(page.InlineDeleteItem, nil)
		})
	}
}

func (p *Portal) showForm() {
	for _, sel := range []string{
		page.FormDatePicker, page.FormDateInput,
		vaadin.ComboBoxSelector(page.ProjectComboID), projectInput,
		vaadin.ComboBoxSelector(page.ServiceComboID), serviceInput,
		page.HoursInput, page.DescriptionInput,
		page.SidePanel, page.SidePanelClose, page.PanelSaveButton, page.PanelActions,
	} {
		p.Show(sel, nil)
	}
}

func (p *Portal) hideForm() {
	for _, sel := range []string{
		page.FormDatePicker, page.FormDateInput,
		vaadin.ComboBoxSelector(page.ProjectComboID), projectInput,
		vaadin.ComboBoxSelector(page.ServiceComboID), serviceInput,
		page.HoursInput, page.DescriptionInput,
		page.SidePanel, page.SidePanelClose, page.PanelSaveButton, page.PanelActions,
	} {
		p.Hide(sel)
	}
	p.mu.Lock()
	p.open = openNone
	p.mu.Unlock()
}

func (p *Portal) save() {
	p.mu.Lock()
	switch {
	case p.open == openNew:
		e := p.draft
		e.Hours = fmt.Sprintf("%.2f", page.ParseHours(e.Hours))
		p.entries = append(p.entries, e)
		p.Created = append(p.Created, e)
	case p.open >= 0:
		vis := p.visible()
		if p.open < len(vis) {
			e := p.draft
			e.Hours = fmt.Sprintf("%.2f", page.ParseHours(e.Hours))
			p.entries[vis[p.open]] = e
			p.Updated = append(p.Updated, e)
		}
	}
	p.mu.Unlock()
	p.sync()
}

func (p *Portal) confirmDelete() {
	p.mu.Lock()
	vis := p.visible()
	if p.pendingDelete >= 0 && p.pendingDelete < len(vis) {
		i := vis[p.pendingDelete]
		p.Deleted = append(p.Deleted, p.entries[i])
		p.entries = append(p.entries[:i], p.entries[i+1:]...)
	}
	p.confirming = false
	p.mu.Unlock()
	p.Hide(page.PrimaryButton)
	p.hideForm()
	p.sync()
}
