package timesheet

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/batchfile"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/page"
)

// PlanStatus says what a dry run would do with a row.
type PlanStatus int

const (
	PlanExisting PlanStatus = iota
	PlanNew
	PlanSkip
)

// PlanRow is one line of a dry-run preview.
type PlanRow struct {
	Date        time.Time
	Project     string
	ServiceType string
	Hours       string
	Text        string
	Status      PlanStatus
}

// DryRunPlan previews a batch: the rows already booked in the touched
// months plus the batch entries, sorted by date.
type DryRunPlan struct {
	Rows     []PlanRow
	New      int
	Skipped  int
	Existing int
}

// Plan merges existing rows with entries the way BatchLog would treat
// them. Entries matching an existing row on the same day are skips.
func Plan(existing []models.ExistingEntry, entries []models.TimeEntry) *DryRunPlan {
	p := &DryRunPlan{}
	rows := make([]page.Row, 0, len(existing))
	for _, e := range existing {
		rows = append(rows, page.Row{ExistingEntry: e})
		d, err := dates.ParseDisplay(e.Date)
		if err != nil {
			continue
		}
		p.Rows = append(p.Rows, PlanRow{
			Date:        d,
			Project:     e.Project,
			ServiceType: e.ServiceType,
			Hours:       hoursValue(e.Hours),
			Text:        e.Text,
			Status:      PlanExisting,
		})
		p.Existing++
	}
	for _, e := range entries {
		st := PlanNew
		if len(matching(rows, e.Date, e.Project)) > 0 {
			st = PlanSkip
			p.Skipped++
		} else {
			p.New++
		}
		p.Rows = append(p.Rows, PlanRow{
			Date:        dates.Day(e.Date),
			Project:     e.Project,
			ServiceType: e.ServiceType,
			Hours:       page.FormatHours(e.Hours),
			Text:        e.Description,
			Status:      st,
		})
	}
	slices.SortStableFunc(p.Rows, func(a, b PlanRow) int { return a.Date.Compare(b.Date) })
	return p
}

// DryRun reads the months touched by entries and previews what BatchLog
// would create and skip. Nothing is written.
func (s *Service) DryRun(ctx context.Context, entries []models.TimeEntry) (*DryRunPlan, error) {
	days := make([]time.Time, len(entries))
	for i, e := range entries {
		days[i] = e.Date
	}
	existing, err := s.FetchExistingEntries(ctx, days)
	if err != nil {
		return nil, err
	}
	return Plan(existing, entries), nil
}

// GenerateBatchFile writes a batch template with one row per weekday in
// [from, to] that has no entry yet. Rows default to the last booked
// entry's project, service type, hours and text. It returns the number of
// rows written; zero means no file was written.
func (s *Service) GenerateBatchFile(ctx context.Context, from, to time.Time, path string) (int, error) {
	existing, err := run(ctx, s, !s.Headed, func(ctx context.Context, nav *page.Navigator) outcome[[]models.ExistingEntry] {
		ok, err := openGrid(ctx, nav)
		if err != nil {
			return failure[[]models.ExistingEntry](err)
		}
		if !ok {
			return captchaRequired[[]models.ExistingEntry]()
		}
		var all []models.ExistingEntry
		for _, m := range dates.Months(from, to) {
			s.UI.Step("%s", s.Loc.Sprintf(i18n.MsgReadingEntries))
			g, err := readMonth(ctx, nav, m)
			if err != nil {
				return failure[[]models.ExistingEntry](err)
			}
			all = append(all, g.Entries()...)
		}
		return success(all)
	})
	if err != nil {
		return 0, err
	}

	rows := s.templateRows(existing, from, to)
	if len(rows) == 0 {
		s.UI.Info("%s", s.Loc.Sprintf(i18n.MsgBatchNoEntries))
		return 0, nil
	}
	if err := batchfile.WriteTemplate(path, rows); err != nil {
		return 0, err
	}
	s.UI.Success("%s", s.Loc.Sprintf(i18n.MsgBatchGenerated, path, strconv.Itoa(len(rows))))
	s.UI.Info("%s", s.Loc.Sprintf(i18n.MsgBatchGenerateHint, path))
	return len(rows), nil
}

func (s *Service) templateRows(existing []models.ExistingEntry, from, to time.Time) []batchfile.TemplateRow {
	def := batchfile.TemplateRow{Hours: 8, Text: s.Loc.DefaultText()}
	if len(existing) > 0 {
		last := existing[len(existing)-1]
		def.Project = s.shortName(aliases.KindProject, strings.TrimSpace(last.Project))
		def.ServiceType = s.shortName(aliases.KindServiceType, strings.TrimSpace(last.ServiceType))
		if t := strings.TrimSpace(last.Text); t != "" {
			def.Text = t
		}
		if h := page.ParseHours(last.Hours); h > 0 {
			def.Hours = h
		}
	}

	booked := bookedDays(existing)
	var rows []batchfile.TemplateRow
	for _, d := range dates.Weekdays(from, to) {
		if booked[dates.Display(d)] {
			continue
		}
		r := def
		r.Date = dates.ISO(d)
		rows = append(rows, r)
	}
	return rows
}
