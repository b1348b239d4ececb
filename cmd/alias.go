package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/output"
)

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage short names for project and service type ids",
	Long: `Aliases let you write "internal" instead of "71100000001". Every command
that takes --project or --service-type resolves them.

Types: project (p) and service-type (st).`,
}

var aliasAddCmd = &cobra.Command{
	Use:     "add <type> <alias> <id>",
	Short:   "Add or replace an alias",
	Example: `  abacus alias add project internal 71100000001
  abacus alias add st dev 1435`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return aliasAddRun(args[0], args[1], args[2])
	},
}

var aliasRemoveCmd = &cobra.Command{
	Use:     "remove <type> <alias>",
	Aliases: []string{"rm"},
	Short:   "Remove an alias",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return aliasRemoveRun(args[0], args[1])
	},
}

var aliasListCmd = &cobra.Command{
	Use:     "list [type]",
	Aliases: []string{"ls"},
	Short:   "List aliases",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}
		return aliasListRun(kind)
	},
}

func init() {
	aliasCmd.AddCommand(aliasAddCmd)
	aliasCmd.AddCommand(aliasRemoveCmd)
	aliasCmd.AddCommand(aliasListCmd)
	rootCmd.AddCommand(aliasCmd)
}

func saveAliases(a *aliases.Set) error {
	if err := ensureStateDir(); err != nil {
		return err
	}
	return a.Save(viper.GetString("aliases_path"))
}

func aliasAddRun(kindArg, alias, id string) error {
	kind, err := aliases.ParseKind(kindArg)
	if err != nil {
		return err
	}
	a, err := loadAliases()
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would add %s alias %s -> %s", kind, alias, id)
		return nil
	}
	a.Add(kind, alias, id)
	if err := saveAliases(a); err != nil {
		return err
	}
	ui.Success("Alias %s -> %s added", output.Cyan(alias), id)
	return nil
}

func aliasRemoveRun(kindArg, alias string) error {
	kind, err := aliases.ParseKind(kindArg)
	if err != nil {
		return err
	}
	a, err := loadAliases()
	if err != nil {
		return err
	}
	if err := a.Remove(kind, alias); err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would remove %s alias %s", kind, alias)
		return nil
	}
	if err := saveAliases(a); err != nil {
		return err
	}
	ui.Success("Alias %s removed", output.Cyan(alias))
	return nil
}

func aliasListRun(kindArg string) error {
	kinds := []aliases.Kind{aliases.KindProject, aliases.KindServiceType}
	if kindArg != "" {
		k, err := aliases.ParseKind(kindArg)
		if err != nil {
			return err
		}
		kinds = []aliases.Kind{k}
	}
	a, err := loadAliases()
	if err != nil {
		return err
	}

	table := ui.Table([]string{"TYPE", "ALIAS", "ID"})
	n := 0
	for _, k := range kinds {
		for _, p := range a.List(k) {
			_ = table.Append([]string{string(k), p.Alias, p.ID})
			n++
		}
	}
	if n == 0 {
		ui.Info("No aliases defined. Use 'abacus alias add project <alias> <id>' to create one.")
		return nil
	}
	_ = table.Render()
	return nil
}
