package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/scheduler"
	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/timesheet"
)

var (
	refreshInstall   bool
	refreshUninstall bool
	refreshInterval  int
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the portal in a browser window and save the session",
	Long: `Open the portal in a visible browser window. Log in as usual; the
session is saved once the portal menu appears or you press Enter.

The portal's display language is detected and saved as the locale when
none is configured yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginRun(cmd)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the saved session to keep it alive",
	Long: `Load the portal headlessly so the server extends the saved session.

With --install a launchd agent (macOS) or systemd user timer (Linux) runs
this every --interval minutes. Every run appends a line to the refresh log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case refreshUninstall:
			return refreshUninstallRun(cmd)
		case refreshInstall:
			return refreshInstallRun(cmd)
		default:
			return refreshRun(cmd)
		}
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshInstall, "install", false, "Install a background job that refreshes the session")
	refreshCmd.Flags().BoolVar(&refreshUninstall, "uninstall", false, "Remove the background refresh job")
	refreshCmd.Flags().IntVar(&refreshInterval, "interval", 0, "Refresh interval in minutes (default from refresh.interval, 15)")
	refreshCmd.MarkFlagsMutuallyExclusive("install", "uninstall")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(refreshCmd)
}

func loginRun(cmd *cobra.Command) error {
	svc, err := newService(serviceOptions{login: true, noJournal: true})
	if err != nil {
		return err
	}
	ui.Info("Opening %s", svc.BaseURL)

	res, err := svc.Login(cmd.Context())
	if err != nil {
		return err
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	fileValues := readConfigFileValues(cfgPath)
	// The background refresh does not see the shell environment.
	if !fileValues["url"] {
		if err := configSetRun("url", svc.BaseURL); err != nil {
			ui.Warning("could not save url: %v", err)
		}
	}
	if res.Detected && !fileValues["locale"] && os.Getenv(i18n.EnvVar) == "" {
		if err := configSetRun("locale", string(res.Locale)); err != nil {
			ui.Warning("could not save locale: %v", err)
		}
	}
	ui.Info("Session saved to %s", viper.GetString("state_path"))
	return nil
}

func refreshRun(cmd *cobra.Command) error {
	svc, err := newService(serviceOptions{noJournal: true})
	if err != nil {
		logRefresh("ERROR: %v", err)
		return err
	}

	status, err := svc.Refresh(cmd.Context(), timesheet.RefreshTimeout)
	switch status {
	case timesheet.RefreshOK:
		logRefresh("Session refreshed successfully")
		ui.Success("Session refreshed successfully")
		return nil
	case timesheet.RefreshBusy:
		logRefresh("Skipped: session in use by another abacus command")
		ui.Info("Session in use by another abacus command, skipped.")
		return nil
	case timesheet.RefreshCaptcha:
		logRefresh("ERROR: captcha required, run any abacus command interactively")
		return fmt.Errorf("captcha required, run any abacus command interactively to solve it")
	case timesheet.RefreshExpired:
		logRefresh("ERROR: Session expired, run 'abacus login'")
		return fmt.Errorf("session expired, run 'abacus login': %w", err)
	default:
		logRefresh("ERROR: %v", err)
		return err
	}
}

// logRefresh appends a timestamped line to the refresh log. Failures are
// ignored: the log is informational.
func logRefresh(format string, a ...any) {
	path := viper.GetString("refresh.log_path")
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		ui.VerboseLog("open refresh log: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, a...))
}

func refreshUnit() (scheduler.Unit, error) {
	exe, err := os.Executable()
	if err != nil {
		return scheduler.Unit{}, fmt.Errorf("locate abacus binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	interval := viper.GetDuration("refresh.interval")
	if refreshInterval > 0 {
		interval = time.Duration(refreshInterval) * time.Minute
	}
	return scheduler.Unit{
		Executable: exe,
		Args:       []string{"refresh"},
		Interval:   interval,
		LogPath:    viper.GetString("refresh.log_path"),
	}, nil
}

func refreshInstallRun(cmd *cobra.Command) error {
	if _, err := portalURL(); err != nil {
		return err
	}
	if !session.NewStore(viper.GetString("state_path")).Exists() {
		return &session.ConfigError{Msg: "no saved session found, run 'abacus login' first"}
	}
	unit, err := refreshUnit()
	if err != nil {
		return err
	}
	inst, err := scheduler.New(runtime.GOOS)
	if err != nil {
		return err
	}

	if dryRun {
		files, err := inst.Files(unit)
		if err != nil {
			return err
		}
		for _, f := range files {
			ui.DryRunMsg("Would write %s", f.Path)
			fmt.Fprintln(ui.Out)
			fmt.Fprint(ui.Out, f.Content)
		}
		return nil
	}

	paths, err := inst.Install(cmd.Context(), unit)
	if err != nil {
		return err
	}
	ui.Success("Refresh job installed (every %s)", unit.Interval)
	for _, p := range paths {
		ui.Info("Unit: %s", p)
	}
	ui.Info("Log:  %s", unit.LogPath)
	return nil
}

func refreshUninstallRun(cmd *cobra.Command) error {
	inst, err := scheduler.New(runtime.GOOS)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would remove the background refresh job")
		return nil
	}
	removed, err := inst.Uninstall(cmd.Context())
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		ui.Info("No refresh job was installed.")
		return nil
	}
	ui.Success("Refresh job uninstalled")
	for _, p := range removed {
		ui.VerboseLog("removed %s", p)
	}
	return nil
}
