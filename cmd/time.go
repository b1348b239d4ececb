package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/prompt"
	"github.com/joescharf/abacus/internal/timesheet"
)

var (
	timeMonth       string
	timeDate        string
	timeProject     string
	timeServiceType string
	timeHours       float64
	timeText        string
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "List, book and delete time entries",
}

var timeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the time entries of a month",
	Long: `List every entry of a month. Weekdays without any entry up to today are
shown as missing, followed by copy-paste commands to book them.`,
	Example: `  abacus time list
  abacus time list --month 01.2025`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return timeListRun(cmd)
	},
}

var timeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the weekly time report",
	Long: `Show worked and target hours for a week, the weekdays still missing an
entry, and the overtime and vacation balances.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return timeStatusRun(cmd)
	},
}

var timeLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Book a time entry",
	Long: `Book one entry. Without --project (or --service-type) you pick one of
your aliases. When the day already has an entry for the project you can
update it instead of adding another one.`,
	Example: `  abacus time log --project internal --hours 8 --text "Development"
  abacus time log --project 71100000001 --hours 4.5 --date 2025-01-06`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return timeLogRun(cmd)
	},
}

var timeDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete time entries",
	Long: `Without flags the entries of the current month are listed and the ones
you pick are deleted. With --date (and --project) the entries booked on
that day for the project are deleted after confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return timeDeleteRun(cmd)
	},
}

func init() {
	timeListCmd.Flags().StringVar(&timeMonth, "month", "", "Month as MM.YYYY (default: current month)")

	timeStatusCmd.Flags().StringVar(&timeDate, "date", "", "Any day of the target week, YYYY-MM-DD (default: today)")

	timeLogCmd.Flags().StringVar(&timeProject, "project", "", "Project number or alias")
	timeLogCmd.Flags().StringVar(&timeServiceType, "service-type", "", "Service type number or alias")
	timeLogCmd.Flags().Float64Var(&timeHours, "hours", 0, "Number of hours")
	timeLogCmd.Flags().StringVar(&timeText, "text", "", "Booking text")
	timeLogCmd.Flags().StringVar(&timeDate, "date", "", "Date, YYYY-MM-DD (default: today)")
	_ = timeLogCmd.MarkFlagRequired("hours")

	timeDeleteCmd.Flags().StringVar(&timeDate, "date", "", "Date of the entry, YYYY-MM-DD")
	timeDeleteCmd.Flags().StringVar(&timeProject, "project", "", "Project number or alias")

	timeCmd.AddCommand(timeListCmd)
	timeCmd.AddCommand(timeStatusCmd)
	timeCmd.AddCommand(timeLogCmd)
	timeCmd.AddCommand(timeDeleteCmd)
	rootCmd.AddCommand(timeCmd)
}

// parseDay reads a date flag as YYYY-MM-DD or DD.MM.YYYY; empty means today.
func parseDay(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return dates.Day(today), nil
	case strings.Contains(s, "."):
		return dates.ParseDisplay(s)
	default:
		return dates.ParseISO(s)
	}
}

// resolveID turns a flag value into an id through the alias table, or asks
// the user to pick an alias when the flag is empty.
func resolveID(svc *timesheet.Service, kind aliases.Kind, flag string) (string, error) {
	if flag != "" {
		return svc.Aliases.Resolve(kind, flag), nil
	}
	return prompt.SelectAlias(svc.Prompt, ui.Out, kind, svc.Aliases.List(kind))
}

// resolveServiceType falls back to the configured default when there are
// no service type aliases to choose from.
func resolveServiceType(svc *timesheet.Service, flag, def string) (string, error) {
	if flag == "" && len(svc.Aliases.List(aliases.KindServiceType)) == 0 {
		return def, nil
	}
	return resolveID(svc, aliases.KindServiceType, flag)
}

func timeListRun(cmd *cobra.Command) error {
	month := dates.MonthOf(time.Now())
	if timeMonth != "" {
		m, err := dates.ParseMonth(timeMonth)
		if err != nil {
			return err
		}
		month = m
	}
	svc, err := newService(serviceOptions{noJournal: true})
	if err != nil {
		return err
	}
	ui.Info("%s", svc.Loc.Sprintf(i18n.MsgListing, month.String()))

	l, err := svc.List(cmd.Context(), month)
	if err != nil {
		return err
	}
	svc.PrintListing(l)
	return nil
}

func timeStatusRun(cmd *cobra.Command) error {
	day, err := parseDay(timeDate, time.Now())
	if err != nil {
		return err
	}
	svc, err := newService(serviceOptions{noJournal: true})
	if err != nil {
		return err
	}
	r, err := svc.Status(cmd.Context(), day)
	if err != nil {
		return err
	}
	svc.PrintStatus(r)
	return nil
}

func timeLogRun(cmd *cobra.Command) error {
	day, err := parseDay(timeDate, time.Now())
	if err != nil {
		return err
	}
	svc, err := newService(serviceOptions{})
	if err != nil {
		return err
	}
	project, err := resolveID(svc, aliases.KindProject, timeProject)
	if err != nil {
		return err
	}
	serviceType, err := resolveServiceType(svc, timeServiceType, defaultServiceType())
	if err != nil {
		return err
	}
	text := timeText
	if text == "" {
		text = svc.Loc.DefaultText()
	}

	loc := svc.Loc
	ui.Println("")
	ui.Println("%s", output.Bold("Time entry"))
	ui.Println("  %-14s %s", loc.Sprintf(i18n.MsgHeaderProject)+":", output.Cyan(project))
	ui.Println("  %-14s %s", loc.Sprintf(i18n.MsgHeaderServiceType)+":", output.Cyan(serviceType))
	ui.Println("  %-14s %s", loc.Sprintf(i18n.MsgHeaderHours)+":", output.Cyan(fmt.Sprintf("%.2f", timeHours)))
	ui.Println("  %-14s %s", loc.Sprintf(i18n.MsgHeaderDate)+":", output.Cyan(dates.Display(day)))
	ui.Println("  %-14s %s", loc.Sprintf(i18n.MsgHeaderText)+":", output.Cyan(text))
	ui.Println("")

	entry := timeEntry(project, serviceType, timeHours, day, text)
	if dryRun {
		ui.DryRunMsg("Would book %.2fh on %s for %s", timeHours, dates.Display(day), project)
		return entry.Validate()
	}
	_, err = svc.Log(cmd.Context(), entry)
	return err
}

func timeDeleteRun(cmd *cobra.Command) error {
	if timeDate == "" && timeProject == "" {
		return timeDeleteInteractive(cmd)
	}
	if timeDate == "" {
		return fmt.Errorf("--date is required when --project is given")
	}
	day, err := parseDay(timeDate, time.Now())
	if err != nil {
		return err
	}
	svc, err := newService(serviceOptions{})
	if err != nil {
		return err
	}
	project, err := resolveID(svc, aliases.KindProject, timeProject)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would delete the entries on %s for project %s", dates.Display(day), project)
		return nil
	}
	_, err = svc.Delete(cmd.Context(), timeEntry(project, "", 0, day, ""))
	return err
}

func timeDeleteInteractive(cmd *cobra.Command) error {
	svc, err := newService(serviceOptions{})
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	m, err := svc.LoadMonthEntries(ctx)
	if err != nil {
		return err
	}
	defer m.Close(ctx)

	loc := svc.Loc
	if len(m.Entries) == 0 {
		ui.Info("%s", loc.Sprintf(i18n.MsgNoEntriesFound))
		return nil
	}
	opts := make([]prompt.Option, len(m.Entries))
	for i, e := range m.Entries {
		opts[i] = prompt.Option{
			Label:  fmt.Sprintf("%s  %s  %s  %s", e.Date, e.Project, e.ServiceType, e.Hours),
			Detail: e.Text,
		}
	}
	ui.Println("")
	picked, err := svc.Prompt.MultiSelect(loc.Sprintf(i18n.MsgSelectToDelete), opts)
	if err != nil {
		return err
	}
	if len(picked) == 0 {
		ui.Info("%s", loc.Sprintf(i18n.MsgNoEntriesSelected))
		return nil
	}
	if dryRun {
		for _, i := range picked {
			e := m.Entries[i]
			ui.DryRunMsg("Would delete %s %s %s", e.Date, e.Project, e.Hours)
		}
		return nil
	}
	ui.Println("")
	_, err = m.Delete(ctx, picked)
	return err
}
