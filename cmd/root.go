package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/batchfile"
	"github.com/joescharf/abacus/internal/browser"
	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/captcha"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/notes"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/prompt"
	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/store"
	"github.com/joescharf/abacus/internal/timesheet"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
	quiet   bool
	headed  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "Book working hours in the Abacus portal from the terminal",
	Long: `abacus drives the Abacus ERP web portal in a headless browser so that
time entries can be listed, booked and deleted from the command line.

Run 'abacus login' once to save a session, then use the 'time' commands.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress lines")
	rootCmd.PersistentFlags().BoolVar(&headed, "headed", false, "Show the browser window")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/abacus/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ABACUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	dir, _ := configDirFunc()
	setDefaults(dir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key. Paths default into stateDir.
func setDefaults(stateDir string) {
	viper.SetDefault("url", "")
	viper.SetDefault("locale", "")
	viper.SetDefault("headless", true)
	viper.SetDefault("semi_manual", false)
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("state_path", filepath.Join(stateDir, "state.json"))
	viper.SetDefault("profile_dir", "")
	viper.SetDefault("status_cache_path", filepath.Join(stateDir, "status.json"))
	viper.SetDefault("aliases_path", filepath.Join(stateDir, "aliases.json"))
	viper.SetDefault("db_path", filepath.Join(stateDir, "abacus.db"))
	viper.SetDefault("lock_path", filepath.Join(stateDir, "session.lock"))
	viper.SetDefault("refresh.interval", 15*time.Minute)
	viper.SetDefault("refresh.log_path", filepath.Join(stateDir, "refresh.log"))
	viper.SetDefault("browser.exec_path", "")
	viper.SetDefault("browser.idle_timeout", 15*time.Second)
	viper.SetDefault("captcha.timeout", captcha.DefaultTimeout)
	viper.SetDefault("lock.wait", 30*time.Second)
	viper.SetDefault("default_service_type", batchfile.DefaultServiceType)
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", notes.DefaultModel)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
	ui.Quiet = quiet

	// The journal is opened lazily, only when commands actually need it.
	// This allows config/version commands to run without a db.
}

// localizer resolves the display language from env, config and system.
func localizer() *i18n.Localizer {
	l, _ := i18n.Resolve(os.Getenv, viper.GetString("locale"))
	return i18n.New(l)
}

func statusCache() *cache.Cache {
	return cache.New(viper.GetString("status_cache_path"))
}

func loadAliases() (*aliases.Set, error) {
	return aliases.Load(viper.GetString("aliases_path"))
}

// portalURL returns the configured portal URL or a ConfigError.
func portalURL() (string, error) {
	u := strings.TrimRight(viper.GetString("url"), "/")
	if u == "" {
		return "", &session.ConfigError{Msg: "portal URL is not configured, run: abacus config set url https://abacus.example.com/portal/myabacus"}
	}
	return u, nil
}

// serviceOptions tweak newService for commands with special needs.
type serviceOptions struct {
	// login launches without requiring a saved session.
	login bool
	// noJournal skips opening the booking journal.
	noJournal bool
}

// newService wires the time-entry service from config.
func newService(opts serviceOptions) (*timesheet.Service, error) {
	baseURL, err := portalURL()
	if err != nil {
		return nil, err
	}
	if err := ensureStateDir(); err != nil {
		return nil, err
	}
	a, err := loadAliases()
	if err != nil {
		return nil, err
	}

	launcher := &browser.ChromeLauncher{
		Store:          session.NewStore(viper.GetString("state_path")),
		ExecPath:       viper.GetString("browser.exec_path"),
		ProfileDir:     viper.GetString("profile_dir"),
		RequireSession: !opts.login,
	}
	idle := viper.GetDuration("browser.idle_timeout")
	rec := captcha.NewRecoverer(launcher, ui)
	rec.Timeout = viper.GetDuration("captcha.timeout")
	rec.IdleTimeout = idle

	svc := &timesheet.Service{
		Launcher:    launcher,
		Recoverer:   rec,
		Prompt:      prompt.New(os.Stdin, ui.Out),
		Loc:         localizer(),
		UI:          ui,
		Cache:       statusCache(),
		Aliases:     a,
		Lock:        session.NewLock(viper.GetString("lock_path")),
		LockWait:    viper.GetDuration("lock.wait"),
		BaseURL:     baseURL,
		Headed:      headed || !viper.GetBool("headless"),
		SemiManual:  viper.GetBool("semi_manual"),
		IdleTimeout: idle,
	}
	if !opts.noJournal {
		if s, err := getStore(); err == nil {
			svc.Journal = s
		} else {
			ui.VerboseLog("booking journal unavailable: %v", err)
		}
	}
	return svc, nil
}

// ensureStateDir creates the state directory on first use.
func ensureStateDir() error {
	dir := viper.GetString("state_dir")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return nil
}

// getStore returns the shared journal, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}
	if err := ensureStateDir(); err != nil {
		return nil, err
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

func closeStore() {
	if dataStore != nil {
		_ = dataStore.Close()
		dataStore = nil
	}
}
