package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/store"
)

var (
	historyAction  string
	historyProject string
	historyLimit   int
	historyDays    int
	historyPrune   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local journal of bookings made by abacus",
	Long: `Every entry abacus creates, updates, deletes or skips is recorded in a
local SQLite journal. The journal only knows about changes made through
abacus; use 'abacus time list' for the portal's view.`,
	Example: `  abacus history
  abacus history --action created --project internal --limit 50
  abacus history --prune 180`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyPrune > 0 {
			return historyPruneRun(cmd)
		}
		return historyRun(cmd)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyAction, "action", "", "Filter by action: created, updated, deleted, skipped")
	historyCmd.Flags().StringVar(&historyProject, "project", "", "Filter by project number or alias")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of bookings to show (0 = all)")
	historyCmd.Flags().IntVar(&historyDays, "days", 0, "Only show bookings from the last N days")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Delete journal records older than N days")
	rootCmd.AddCommand(historyCmd)
}

func parseAction(s string) (models.BookingAction, error) {
	switch a := models.BookingAction(s); a {
	case "", models.BookingCreated, models.BookingUpdated, models.BookingDeleted, models.BookingSkipped:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q, use created, updated, deleted or skipped", s)
}

func actionColor(a models.BookingAction) string {
	switch a {
	case models.BookingCreated:
		return output.Green(string(a))
	case models.BookingUpdated:
		return output.Cyan(string(a))
	case models.BookingDeleted:
		return output.Red(string(a))
	default:
		return output.Dim(string(a))
	}
}

func historyRun(cmd *cobra.Command) error {
	action, err := parseAction(historyAction)
	if err != nil {
		return err
	}
	s, err := getStore()
	if err != nil {
		return err
	}
	a, err := loadAliases()
	if err != nil {
		return err
	}

	filter := store.BookingFilter{Action: action, Limit: historyLimit}
	if historyProject != "" {
		filter.Project = a.Resolve(aliases.KindProject, historyProject)
	}
	if historyDays > 0 {
		filter.Since = time.Now().AddDate(0, 0, -historyDays)
	}

	bookings, err := s.ListBookings(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		ui.Info("No bookings recorded.")
		return nil
	}

	table := ui.Table([]string{"WHEN", "ACTION", "DATE", "PROJECT", "SERVICE TYPE", "HOURS", "TEXT"})
	for _, b := range bookings {
		_ = table.Append([]string{
			b.CreatedAt.Local().Format("2006-01-02 15:04"),
			actionColor(b.Action),
			b.Date,
			a.Reverse(aliases.KindProject, b.Project),
			a.Reverse(aliases.KindServiceType, b.ServiceType),
			b.Hours,
			b.Text,
		})
	}
	_ = table.Render()
	return nil
}

func historyPruneRun(cmd *cobra.Command) error {
	before := time.Now().AddDate(0, 0, -historyPrune)
	if dryRun {
		ui.DryRunMsg("Would delete journal records older than %s", before.Format("2006-01-02"))
		return nil
	}
	s, err := getStore()
	if err != nil {
		return err
	}
	n, err := s.PruneBookings(cmd.Context(), before)
	if err != nil {
		return err
	}
	ui.Success("Pruned %d journal records older than %s", n, before.Format("2006-01-02"))
	return nil
}
