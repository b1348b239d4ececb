package cmd

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/timesheet"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a compact weekly status",
	Long: `Print worked hours, missing days and balances for the current week.

The status cache is used when it describes the current ISO week; otherwise
the time report is fetched from the portal first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return summaryRun(cmd)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Warn about missing days from the status cache (for shell startup)",
	Long: `Read the status cache and print a warning when weekdays of the current
month have no entry. Never opens a browser, so it is safe to run from
.zshrc or .bashrc.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkRun()
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(checkCmd)
}

func printSummary(loc *i18n.Localizer, sc *models.StatusCache, now time.Time) {
	lines := timesheet.SummaryLines(loc, sc, now)
	for i, l := range lines {
		if i == len(lines)-1 {
			l = output.Dim(l)
		}
		ui.Println("%s", l)
	}
}

func summaryRun(cmd *cobra.Command) error {
	c := statusCache()
	loc := localizer()
	sc, err := c.Load()
	if err != nil {
		ui.VerboseLog("status cache unreadable: %v", err)
	}
	now := time.Now()
	if cache.IsCurrent(sc, now) {
		printSummary(loc, sc, now)
		return nil
	}

	svc, err := newService(serviceOptions{noJournal: true})
	if err != nil {
		return err
	}
	ui.Step("%s", loc.Sprintf(i18n.MsgFetchingStatus))
	if _, err := svc.Status(cmd.Context(), dates.Day(now)); err != nil {
		return err
	}
	sc, err = c.Load()
	if err != nil {
		return err
	}
	if sc == nil {
		return fmt.Errorf("status cache was not written to %s", c.Path)
	}
	ui.Println("")
	printSummary(loc, sc, time.Now())
	return nil
}

// checkReport decides what check prints. A missing or stale cache yields
// the reminder alone; missing days yield the warning plus a log command
// for the first one. Everything empty means nothing to report.
func checkReport(loc *i18n.Localizer, sc *models.StatusCache, now time.Time) (reminder, warning, hint string) {
	if sc == nil || sc.UpdatedAt.IsZero() {
		return loc.Sprintf(i18n.MsgCheckReminder), "", ""
	}
	if !dates.Day(sc.UpdatedAt.In(now.Location())).Equal(dates.Day(now)) ||
		(sc.Month != "" && sc.Month != dates.MonthOf(now).String()) {
		return loc.Sprintf(i18n.MsgCheckReminder), "", ""
	}
	if len(sc.MissingDays) == 0 {
		return "", "", ""
	}

	names := make([]string, len(sc.MissingDays))
	for i, d := range sc.MissingDays {
		names[i] = d.DayName
	}
	warning = loc.Sprintf(i18n.MsgCheckWarning, strings.Join(names, ", "))

	hours := 8.0
	if sc.Remaining > 0 {
		hours = math.Min(sc.Remaining, 8)
	}
	hint = fmt.Sprintf("run: abacus time log --hours %.2f --text %q --date %s",
		hours, loc.DefaultText(), dates.DisplayToISO(sc.MissingDays[0].Date))
	return "", warning, hint
}

func checkRun() error {
	sc, err := statusCache().Load()
	if err != nil {
		ui.VerboseLog("status cache unreadable: %v", err)
		sc = nil
	}
	reminder, warning, hint := checkReport(localizer(), sc, time.Now())
	if reminder != "" {
		ui.Println("%s", output.Dim(reminder))
		return nil
	}
	if warning == "" {
		return nil
	}
	ui.Println("%s", output.Yellow("⚠ "+warning))
	ui.Println("%s", output.Dim("  "+hint))
	return nil
}
