package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/batchfile"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/notes"
	"github.com/joescharf/abacus/internal/timesheet"
)

var (
	batchFrom            string
	batchTo              string
	batchFile            string
	batchGenerate        bool
	batchOut             string
	batchNotes           string
	batchIncludeWeekends bool
)

var timeBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Book many entries in one browser session",
	Long: `Book several entries at once. Entries come from one of:

  --from/--to     the same hours for every weekday in a range
  --file          a JSON or CSV batch file
  --notes         free-form notes, turned into entries by Claude

Days that already have an entry for the project are skipped. With
--generate a batch file is written for every weekday still missing an
entry, ready to edit and pass back with --file. Use --dry-run to preview
what would be created.`,
	Example: `  abacus time batch --project internal --hours 8 --from 2025-01-06 --to 2025-01-10
  abacus time batch --generate --from 2025-01-01 --to 2025-01-31 --out january.json
  abacus time batch --file january.json --dry-run
  abacus time batch --notes week.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return timeBatchRun(cmd)
	},
}

func init() {
	f := timeBatchCmd.Flags()
	f.StringVar(&timeProject, "project", "", "Project number or alias")
	f.StringVar(&timeServiceType, "service-type", "", "Service type number or alias")
	f.Float64Var(&timeHours, "hours", 0, "Hours per day")
	f.StringVar(&timeText, "text", "", "Booking text")
	f.StringVar(&batchFrom, "from", "", "First day, YYYY-MM-DD (default: Monday of this week)")
	f.StringVar(&batchTo, "to", "", "Last day, YYYY-MM-DD (default: Friday of this week)")
	f.StringVar(&batchFile, "file", "", "Batch file (.json or .csv)")
	f.BoolVar(&batchGenerate, "generate", false, "Write a batch file for the missing days instead of booking")
	f.StringVar(&batchOut, "out", "batch.json", "Output path for --generate")
	f.StringVar(&batchNotes, "notes", "", "Notes file to extract entries from ('-' for stdin)")
	f.BoolVar(&batchIncludeWeekends, "include-weekends", false, "Keep Saturday and Sunday dates")
	timeBatchCmd.MarkFlagsMutuallyExclusive("file", "notes", "generate")

	timeCmd.AddCommand(timeBatchCmd)
}

func defaultServiceType() string {
	if st := viper.GetString("default_service_type"); st != "" {
		return st
	}
	return batchfile.DefaultServiceType
}

func timeEntry(project, serviceType string, hours float64, day time.Time, text string) models.TimeEntry {
	return models.TimeEntry{
		Project:     project,
		ServiceType: serviceType,
		Hours:       hours,
		Date:        day,
		Description: text,
	}
}

// batchRange resolves --from/--to, defaulting to this week's Monday and
// Friday.
func batchRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	monday, friday := dates.WeekBounds(now)
	start, end := monday, friday
	var err error
	if from != "" {
		if start, err = parseDay(from, now); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = parseDay(to, now); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", dates.ISO(end), dates.ISO(start))
	}
	return start, end, nil
}

// rangeEntries builds one entry per day in [from, to]. Weekend days are
// returned separately unless includeWeekends is set.
func rangeEntries(tmpl models.TimeEntry, from, to time.Time, includeWeekends bool) *batchfile.Result {
	res := &batchfile.Result{}
	for d := dates.Day(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		if dates.IsWeekend(d) && !includeWeekends {
			res.Weekends = append(res.Weekends, d)
			continue
		}
		e := tmpl
		e.Date = d
		res.Entries = append(res.Entries, e)
	}
	return res
}

func batchOptions(a *aliases.Set) batchfile.Options {
	return batchfile.Options{
		IncludeWeekends:    batchIncludeWeekends,
		DefaultServiceType: defaultServiceType(),
		Aliases:            a,
	}
}

func readNotes(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read notes: %w", err)
	}
	return string(data), nil
}

// entriesFromNotes asks the extractor for batch rows and runs them through
// the batch file rules.
func entriesFromNotes(cmd *cobra.Command, a *aliases.Set, content string) (*batchfile.Result, error) {
	x, err := newExtractor()
	if err != nil {
		return nil, err
	}
	ui.Step("Extracting entries from notes...")
	rows, err := x.Extract(cmd.Context(), content, notes.Known{
		Today:              dates.Today(),
		Projects:           a.List(aliases.KindProject),
		ServiceTypes:       a.List(aliases.KindServiceType),
		DefaultServiceType: defaultServiceType(),
	})
	if err != nil {
		return nil, err
	}
	return notes.ToEntries(rows, batchOptions(a))
}

// collectBatch gathers the entries for a batch run from the chosen source.
func collectBatch(cmd *cobra.Command, svc *timesheet.Service) (*batchfile.Result, error) {
	switch {
	case batchFile != "":
		return batchfile.ParseFile(batchFile, batchOptions(svc.Aliases))
	case batchNotes != "":
		content, err := readNotes(batchNotes, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return entriesFromNotes(cmd, svc.Aliases, content)
	}

	if timeHours <= 0 {
		return nil, errors.New("--hours is required (or use --file, --notes or --generate)")
	}
	from, to, err := batchRange(batchFrom, batchTo, time.Now())
	if err != nil {
		return nil, err
	}
	project, err := resolveID(svc, aliases.KindProject, timeProject)
	if err != nil {
		return nil, err
	}
	serviceType, err := resolveServiceType(svc, timeServiceType, defaultServiceType())
	if err != nil {
		return nil, err
	}
	text := timeText
	if text == "" {
		text = svc.Loc.DefaultText()
	}
	return rangeEntries(timeEntry(project, serviceType, timeHours, time.Time{}, text), from, to, batchIncludeWeekends), nil
}

func timeBatchRun(cmd *cobra.Command) error {
	svc, err := newService(serviceOptions{})
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if batchGenerate {
		from, to, err := batchRange(batchFrom, batchTo, time.Now())
		if err != nil {
			return err
		}
		if dryRun {
			ui.DryRunMsg("Would write a batch file for %s - %s to %s", dates.Display(from), dates.Display(to), batchOut)
			return nil
		}
		_, err = svc.GenerateBatchFile(ctx, from, to, batchOut)
		return err
	}

	res, err := collectBatch(cmd, svc)
	if err != nil {
		return err
	}
	for _, d := range res.Weekends {
		ui.Warning("%s", svc.Loc.Sprintf(i18n.MsgWeekendSkipped, dates.Display(d)))
	}
	if len(res.Entries) == 0 {
		ui.Info("%s", svc.Loc.Sprintf(i18n.MsgBatchNoEntries))
		return nil
	}

	if dryRun {
		plan, err := svc.DryRun(ctx, res.Entries)
		if err != nil {
			return err
		}
		svc.PrintPlan(plan)
		return nil
	}

	ui.Println("")
	for _, e := range res.Entries {
		ui.Println("  %s  %s  %s  %.2fh  %s", dates.Display(e.Date), e.Project, e.ServiceType, e.Hours, e.Description)
	}
	ui.Println("")
	_, err = svc.BatchLog(ctx, res.Entries)
	return err
}
