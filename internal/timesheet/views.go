package timesheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/output"
)

const labelWidth = 22

func (s *Service) label(key string) string {
	return fmt.Sprintf("%-*s", labelWidth, s.Loc.Sprintf(key)+":")
}

func hours(h float64) string { return fmt.Sprintf("%.2f", h) }

func days(h float64) string { return fmt.Sprintf("%.1f", h/8) }

// PrintStatus renders a weekly status report.
func (s *Service) PrintStatus(r *StatusReport) {
	u, unit := s.UI, s.Loc.Sprintf(i18n.MsgHoursUnit)
	d := s.Loc.Sprintf(i18n.MsgDaysUnit)

	u.Println("")
	u.Println("%s", output.Bold(s.Loc.Sprintf(i18n.MsgWeekHeader,
		strconv.Itoa(r.Week), dates.DayMonth(r.Monday), dates.Display(r.Friday))))
	u.Println("")
	u.Println("  %s %s / %s %s", s.label(i18n.MsgWorked), output.Bold(hours(r.Weekly.Worked)), hours(r.Weekly.Target), unit)
	remaining := hours(r.Remaining)
	if r.Remaining > 0 {
		remaining = output.Yellow(remaining)
	}
	u.Println("  %s %s %s", s.label(i18n.MsgRemaining), remaining, unit)
	if len(r.MissingDays) > 0 {
		names := make([]string, len(r.MissingDays))
		for i, m := range r.MissingDays {
			names[i] = m.DayName
		}
		u.Println("  %s %s", s.label(i18n.MsgMissingDays), output.Yellow(strings.Join(names, ", ")))
	}

	if sd := r.Saldo; sd != nil {
		u.Println("")
		u.Println("%s", output.Bold(s.Loc.Sprintf(i18n.MsgBalances)))
		u.Println("  %s %s %s (%s%s)", s.label(i18n.MsgOvertime), output.SignedHours(sd.Overtime), unit, days(sd.Overtime), d)
		u.Println("  %s %s %s (%s%s)", s.label(i18n.MsgExtraTime), output.SignedHours(sd.ExtraTime), unit, days(sd.ExtraTime), d)
	}
	if v := r.Vacation; v != nil {
		u.Println("")
		u.Println("%s", output.Bold(s.Loc.Sprintf(i18n.MsgVacation)))
		u.Println("  %s %s / %s %s (%s / %s%s)", s.label(i18n.MsgVacationRemaining),
			hours(v.Remaining), hours(v.Entitlement), unit, days(v.Remaining), days(v.Entitlement), d)
		u.Println("  %s %s %s (%s%s)", s.label(i18n.MsgPlannedByYearEnd),
			hours(v.PlannedByYearEnd), unit, days(v.PlannedByYearEnd), d)
	}
	s.PrintHint(r.Hint)
}

// PrintHint prints copy-paste commands that book the missing days.
func (s *Service) PrintHint(h *Hint) {
	u := s.UI
	u.Println("")
	if h == nil {
		return
	}
	args := fmt.Sprintf("--project %s --hours %s --service-type %s --text %q",
		h.Project, hours(h.Hours), h.ServiceType, h.Text)
	u.Println("%s", output.Dim("  "+s.Loc.Sprintf(i18n.MsgQuickActions)))
	u.Println("")
	u.Println("%s", output.Dim("  "+s.Loc.Sprintf(i18n.MsgHintLogSingle)))
	u.Println("    %s", output.Cyan(fmt.Sprintf("abacus time log %s --date %s", args, dates.DisplayToISO(h.Dates[0]))))
	if len(h.Dates) > 1 {
		u.Println("")
		u.Println("%s", output.Dim("  "+s.Loc.Sprintf(i18n.MsgHintBatchFill)))
		u.Println("    %s", output.Cyan("abacus time batch "+args))
		u.Println("")
		u.Println("%s", output.Dim("  "+s.Loc.Sprintf(i18n.MsgHintBatchGenerate)))
		u.Println("    %s", output.Cyan("abacus time batch --generate"))
		u.Println("    %s", output.Cyan("abacus time batch --file batch.json"))
	}
	u.Println("")
}

// PrintListing renders a month listing with missing weekdays highlighted.
func (s *Service) PrintListing(l *MonthListing) {
	u := s.UI
	u.Println("")
	table := u.Table([]string{
		s.Loc.Sprintf(i18n.MsgHeaderDate),
		s.Loc.Sprintf(i18n.MsgHeaderProject),
		s.Loc.Sprintf(i18n.MsgHeaderServiceType),
		s.Loc.Sprintf(i18n.MsgHeaderHours),
		s.Loc.Sprintf(i18n.MsgHeaderText),
	})
	for _, r := range l.Rows {
		if r.Missing {
			_ = table.Append([]string{output.Yellow(r.Date), output.Yellow("⚠ " + s.Loc.Sprintf(i18n.MsgNoEntriesRow)), "", "", ""})
			continue
		}
		e := r.Entry
		_ = table.Append([]string{e.Date, e.Project, e.ServiceType, e.Hours, e.Text})
	}
	_ = table.Render()
	u.Println("")
	u.Info("%s", s.Loc.Sprintf(i18n.MsgEntriesTotal, strconv.Itoa(len(l.Entries))))
	if len(l.Missing) > 0 {
		u.Warning("%s", s.Loc.Sprintf(i18n.MsgWorkdaysWithout, len(l.Missing)))
		s.PrintHint(l.Hint)
	}
}

// PrintPlan renders a dry-run preview.
func (s *Service) PrintPlan(p *DryRunPlan) {
	u := s.UI
	u.Println("")
	u.Println("%s", output.Bold(s.Loc.Sprintf(i18n.MsgBatchDryRun)))
	table := u.Table([]string{
		s.Loc.Sprintf(i18n.MsgHeaderDate),
		s.Loc.Sprintf(i18n.MsgHeaderProject),
		s.Loc.Sprintf(i18n.MsgHeaderServiceType),
		s.Loc.Sprintf(i18n.MsgHeaderHours),
		s.Loc.Sprintf(i18n.MsgHeaderText),
		s.Loc.Sprintf(i18n.MsgHeaderStatus),
	})
	for _, r := range p.Rows {
		row := []string{dates.Display(r.Date), r.Project, r.ServiceType, r.Hours, r.Text}
		switch r.Status {
		case PlanNew:
			for i := range row {
				row[i] = output.Green(row[i])
			}
			row = append(row, output.Green(s.Loc.Sprintf(i18n.MsgDryRunNew)))
		case PlanSkip:
			for i := range row {
				row[i] = output.Yellow(row[i])
			}
			row = append(row, output.Yellow(s.Loc.Sprintf(i18n.MsgDryRunSkip)))
		default:
			for i := range row {
				row[i] = output.Dim(row[i])
			}
			row = append(row, output.Dim(s.Loc.Sprintf(i18n.MsgDryRunExisting)))
		}
		_ = table.Append(row)
	}
	_ = table.Render()
	u.Println("")
	u.Info("%s", s.Loc.Sprintf(i18n.MsgDryRunSummary,
		strconv.Itoa(p.New), strconv.Itoa(p.Skipped), strconv.Itoa(p.Existing)))
}

// SummaryLines renders the cached status as the short summary block.
func SummaryLines(loc *i18n.Localizer, sc *models.StatusCache, now time.Time) []string {
	line := loc.Sprintf(i18n.MsgSummaryLine,
		strconv.Itoa(sc.WeekNumber), hours(sc.Worked), hours(sc.Target), hours(sc.Remaining))
	if n := len(sc.MissingDays); n > 0 {
		names := make([]string, n)
		for i, m := range sc.MissingDays {
			names[i] = m.DayName
		}
		line += loc.Sprintf(i18n.MsgSummaryMissing, strings.Join(names, ", "))
	}
	lines := []string{line}
	if sc.Saldo != nil || sc.Vacation != nil {
		var overtime, vacationDays float64
		if sc.Saldo != nil {
			overtime = sc.Saldo.Overtime
		}
		if sc.Vacation != nil {
			vacationDays = sc.Vacation.RemainingDays
		}
		lines = append(lines, loc.Sprintf(i18n.MsgSummaryBalances,
			signed(overtime), days(overtime), fmt.Sprintf("%.1f", vacationDays)))
	}
	lines = append(lines, loc.Sprintf(i18n.MsgUpdatedAgo, Ago(now.Sub(sc.UpdatedAt))))
	return lines
}

func signed(h float64) string {
	if h > 0 {
		return "+" + hours(h)
	}
	return hours(h)
}

// Ago renders an elapsed duration coarsely: 45s, 12m, 3h, 2d.
func Ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
