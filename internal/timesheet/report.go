package timesheet

import (
	"context"
	"math"
	"time"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/page"
)

// Hint is a ready-to-run booking suggestion for missing days, seeded from
// the last booked entry.
type Hint struct {
	Project     string
	ServiceType string
	Text        string
	Hours       float64
	// Dates are the missing days, DD.MM.YYYY.
	Dates []string
}

// StatusReport is the weekly status of the week containing Date.
type StatusReport struct {
	Date   time.Time
	Week   int
	Monday time.Time
	Friday time.Time

	Weekly    models.WeeklyReport
	Remaining float64
	// MissingDays covers Monday through min(today, Friday).
	MissingDays []models.MissingDay
	Saldo       *models.SaldoData
	Vacation    *models.VacationData

	Entries []models.ExistingEntry
	Hint    *Hint
}

// Status reads the week containing date: the month's grid rows for
// missing days, then the weekly totals and balance panels. The status
// cache is rewritten when date falls in the current month.
func (s *Service) Status(ctx context.Context, date time.Time) (*StatusReport, error) {
	month := dates.MonthOf(date)
	type read struct {
		entries  []models.ExistingEntry
		weekly   *models.WeeklyReport
		saldo    *models.SaldoData
		vacation *models.VacationData
	}
	r, err := run(ctx, s, !s.Headed, func(ctx context.Context, nav *page.Navigator) outcome[read] {
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return failure[read](err)
		}
		if !ok {
			return captchaRequired[read]()
		}
		g, err := readMonth(ctx, nav, month)
		if err != nil {
			return failure[read](err)
		}
		s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingTimeReport))
		if err := nav.OpenWeeklyReport(ctx); err != nil {
			return failure[read](err)
		}
		var out read
		out.entries = g.Entries()
		if out.weekly, err = nav.ReadWeeklyTotals(ctx); err != nil {
			return failure[read](err)
		}
		if out.saldo, err = nav.ReadOvertimeBalance(ctx); err != nil {
			return failure[read](err)
		}
		if out.vacation, err = nav.ReadVacationBalance(ctx); err != nil {
			return failure[read](err)
		}
		return success(out)
	})
	if err != nil {
		return nil, err
	}
	if r.weekly == nil {
		return nil, ErrReportNotFound
	}

	today := s.today()
	monday, friday := dates.WeekBounds(date)
	rep := &StatusReport{
		Date:        dates.Day(date),
		Week:        dates.ISOWeek(date),
		Monday:      monday,
		Friday:      friday,
		Weekly:      *r.weekly,
		Remaining:   math.Max(0, r.weekly.Target-r.weekly.Worked),
		MissingDays: missingIn(r.entries, monday, dates.Min(today, friday), s.Loc.ShortDay),
		Saldo:       r.saldo,
		Vacation:    r.vacation,
		Entries:     r.entries,
	}

	if s.Cache != nil && month == dates.MonthOf(today) {
		err := s.Cache.WriteSnapshot(cache.Snapshot{
			Date:        date,
			Month:       month,
			Weekly:      rep.Weekly,
			Remaining:   rep.Remaining,
			MissingDays: cache.MissingDays(r.entries, month, today, s.Loc.ShortDay),
			Saldo:       r.saldo,
			Vacation:    r.vacation,
		})
		if err != nil {
			s.UI.VerboseLog("status cache write failed: %v", err)
		}
	}

	if rep.Weekly.Difference < 0 {
		hours := math.Min(math.Abs(rep.Weekly.Difference), 8)
		rep.Hint = s.hint(r.entries, missingDates(rep.MissingDays), hours)
	}
	return rep, nil
}

// missingIn lists the weekdays in [from, to] without any entry.
func missingIn(entries []models.ExistingEntry, from, to time.Time, name cache.DayNamer) []models.MissingDay {
	booked := bookedDays(entries)
	out := []models.MissingDay{}
	for _, d := range dates.Weekdays(from, to) {
		if ds := dates.Display(d); !booked[ds] {
			out = append(out, models.MissingDay{Date: ds, DayName: name(d)})
		}
	}
	return out
}

func bookedDays(entries []models.ExistingEntry) map[string]bool {
	booked := make(map[string]bool, len(entries))
	for _, e := range entries {
		booked[e.Date] = true
	}
	return booked
}

func missingDates(days []models.MissingDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Date
	}
	return out
}

// hint builds a booking suggestion from the last entry. It is nil when
// nothing is missing or there is no entry to copy.
func (s *Service) hint(entries []models.ExistingEntry, missing []string, hours float64) *Hint {
	if len(entries) == 0 || len(missing) == 0 {
		return nil
	}
	last := entries[len(entries)-1]
	text := last.Text
	if text == "" {
		text = "..."
	}
	return &Hint{
		Project:     s.shortName(aliases.KindProject, last.Project),
		ServiceType: s.shortName(aliases.KindServiceType, last.ServiceType),
		Text:        text,
		Hours:       hours,
		Dates:       missing,
	}
}

// ListingRow is one line of a month listing: a booked entry or a weekday
// without any.
type ListingRow struct {
	Entry   models.ExistingEntry
	Missing bool
	// Date is set on missing rows, DD.MM.YYYY.
	Date string
}

// MonthListing is a month's entries with the unbooked weekdays filled in.
type MonthListing struct {
	Month   dates.Month
	Entries []models.ExistingEntry
	Rows    []ListingRow
	// Missing are the weekdays without entries, DD.MM.YYYY.
	Missing []string
	Hint    *Hint
}

// BuildListing lays out entries for month: one row per entry or missing
// marker for every weekday from the 1st to min(today, month end), in date
// order, followed by entries on other days such as weekends.
func BuildListing(entries []models.ExistingEntry, month dates.Month, today time.Time) *MonthListing {
	byDate := map[string][]models.ExistingEntry{}
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	l := &MonthListing{Month: month, Entries: entries}
	rendered := map[string]bool{}
	for _, d := range dates.Weekdays(month.First(), dates.Min(dates.Day(today), month.Last())) {
		ds := dates.Display(d)
		rendered[ds] = true
		if day := byDate[ds]; len(day) > 0 {
			for _, e := range day {
				l.Rows = append(l.Rows, ListingRow{Entry: e})
			}
			continue
		}
		l.Rows = append(l.Rows, ListingRow{Missing: true, Date: ds})
		l.Missing = append(l.Missing, ds)
	}
	for _, e := range entries {
		if !rendered[e.Date] {
			l.Rows = append(l.Rows, ListingRow{Entry: e})
		}
	}
	return l
}

// List reads every entry of month. Listing the current month refreshes
// the status cache.
func (s *Service) List(ctx context.Context, month dates.Month) (*MonthListing, error) {
	entries, err := run(ctx, s, !s.Headed, func(ctx context.Context, nav *page.Navigator) outcome[[]models.ExistingEntry] {
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return failure[[]models.ExistingEntry](err)
		}
		if !ok {
			return captchaRequired[[]models.ExistingEntry]()
		}
		if err := nav.SetMonthFilter(ctx, month.Year, month.Month); err != nil {
			return failure[[]models.ExistingEntry](err)
		}
		s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingEntries))
		g, err := nav.ReadGridRows(ctx)
		if err != nil {
			return failure[[]models.ExistingEntry](err)
		}
		return success(g.Entries())
	})
	if err != nil {
		return nil, err
	}

	today := s.today()
	l := BuildListing(entries, month, today)
	l.Hint = s.hint(entries, l.Missing, 8)
	if s.Cache != nil && month == dates.MonthOf(today) {
		if err := s.Cache.UpdateFromEntries(entries, month, s.Loc.ShortDay); err != nil {
			s.UI.VerboseLog("status cache update failed: %v", err)
		}
	}
	return l, nil
}
