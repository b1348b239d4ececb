package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/session"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "abacus"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage abacus configuration.

Running bare 'abacus config' is the same as 'abacus config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value in the config file",
	Example: `  abacus config set url https://abacus.example.com/portal/myabacus
  abacus config set locale de
  abacus config set browser.idle_timeout 20s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetRun(args[0], args[1])
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# abacus configuration
# See: abacus config show (for effective values and sources)

# Portal root URL (required)
url: "{{ .URL }}"

# Display language: de, en, fr, it or es (default: from $LANG, else en)
locale: "{{ .Locale }}"

# Run the browser without a window (default: true)
headless: {{ .Headless }}

# Fill the form on 'time log' and let you press save yourself (default: false)
semi_manual: {{ .SemiManual }}

# Service type used when none is given (default: 1435)
default_service_type: "{{ .DefaultServiceType }}"

# State directory holding session, cache, aliases and journal (default: ~/.config/abacus)
# state_dir: {{ .StateDir }}

# Saved browser session (default: <state_dir>/state.json)
# state_path: {{ .StatePath }}

# Booking journal database (default: <state_dir>/abacus.db)
# db_path: {{ .DBPath }}

# Persistent Chrome profile directory, kept in addition to the session file
# profile_dir: ""

browser:
  # Chrome binary, empty for automatic lookup
  exec_path: "{{ .BrowserExecPath }}"
  # How long to wait for the portal to finish a server round trip
  idle_timeout: {{ .IdleTimeout }}

captcha:
  # How long you have to solve a captcha in the browser window
  timeout: {{ .CaptchaTimeout }}

lock:
  # How long a command waits for another abacus process to finish
  wait: {{ .LockWait }}

refresh:
  # Interval used by 'abacus refresh --install'
  interval: {{ .RefreshInterval }}

# Anthropic API, used by 'abacus time batch --notes'
anthropic:
  # api_key: ""   (or set ANTHROPIC_API_KEY)
  model: "{{ .AnthropicModel }}"
`

type configTemplateData struct {
	URL                string
	Locale             string
	Headless           bool
	SemiManual         bool
	DefaultServiceType string
	StateDir           string
	StatePath          string
	DBPath             string
	BrowserExecPath    string
	IdleTimeout        string
	CaptchaTimeout     string
	LockWait           string
	RefreshInterval    string
	AnthropicModel     string
}

func configFilePath() (string, error) {
	if f := viper.ConfigFileUsed(); f != "" {
		return f, nil
	}
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		URL:                viper.GetString("url"),
		Locale:             viper.GetString("locale"),
		Headless:           viper.GetBool("headless"),
		SemiManual:         viper.GetBool("semi_manual"),
		DefaultServiceType: viper.GetString("default_service_type"),
		StateDir:           viper.GetString("state_dir"),
		StatePath:          viper.GetString("state_path"),
		DBPath:             viper.GetString("db_path"),
		BrowserExecPath:    viper.GetString("browser.exec_path"),
		IdleTimeout:        viper.GetDuration("browser.idle_timeout").String(),
		CaptchaTimeout:     viper.GetDuration("captcha.timeout").String(),
		LockWait:           viper.GetDuration("lock.wait").String(),
		RefreshInterval:    viper.GetDuration("refresh.interval").String(),
		AnthropicModel:     viper.GetString("anthropic.model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
	// Secret values are masked by config show.
	Secret bool
}

var configKeys = []configKeyInfo{
	{Key: "url", EnvVar: "ABACUS_URL"},
	{Key: "locale", EnvVar: i18n.EnvVar},
	{Key: "headless", EnvVar: "ABACUS_HEADLESS"},
	{Key: "semi_manual", EnvVar: "ABACUS_SEMI_MANUAL"},
	{Key: "default_service_type", EnvVar: "ABACUS_DEFAULT_SERVICE_TYPE"},
	{Key: "state_dir", EnvVar: "ABACUS_STATE_DIR"},
	{Key: "state_path", EnvVar: "ABACUS_STATE_PATH"},
	{Key: "profile_dir", EnvVar: "ABACUS_PROFILE_DIR"},
	{Key: "status_cache_path", EnvVar: "ABACUS_STATUS_CACHE_PATH"},
	{Key: "aliases_path", EnvVar: "ABACUS_ALIASES_PATH"},
	{Key: "db_path", EnvVar: "ABACUS_DB_PATH"},
	{Key: "lock_path", EnvVar: "ABACUS_LOCK_PATH"},
	{Key: "browser.exec_path", EnvVar: "ABACUS_BROWSER_EXEC_PATH"},
	{Key: "browser.idle_timeout", EnvVar: "ABACUS_BROWSER_IDLE_TIMEOUT"},
	{Key: "captcha.timeout", EnvVar: "ABACUS_CAPTCHA_TIMEOUT"},
	{Key: "lock.wait", EnvVar: "ABACUS_LOCK_WAIT"},
	{Key: "refresh.interval", EnvVar: "ABACUS_REFRESH_INTERVAL"},
	{Key: "refresh.log_path", EnvVar: "ABACUS_REFRESH_LOG_PATH"},
	{Key: "anthropic.api_key", EnvVar: "ABACUS_ANTHROPIC_API_KEY", Secret: true},
	{Key: "anthropic.model", EnvVar: "ABACUS_ANTHROPIC_MODEL"},
}

func lookupConfigKey(key string) (configKeyInfo, bool) {
	i := slices.IndexFunc(configKeys, func(k configKeyInfo) bool { return k.Key == key })
	if i < 0 {
		return configKeyInfo{}, false
	}
	return configKeys[i], true
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := fmt.Sprint(viper.Get(k.Key))
		source := detectSource(k.Key, k.EnvVar, fileValues)
		if k.Key == "locale" {
			l, src := i18n.Resolve(os.Getenv, viper.GetString("locale"))
			val, source = string(l), fmt.Sprintf("(%s)", src)
		}
		if k.Secret && val != "" {
			val = mask(val)
		}
		if val == "" {
			val = "(not set)"
		}
		fmt.Fprintf(ui.Out, "  %-22s %s  %s\n", k.Key, val, source)
	}

	return nil
}

func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set, set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'abacus config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}

// configSetRun writes one key into the config file, keeping the rest of
// the file's values.
func configSetRun(key, value string) error {
	info, ok := lookupConfigKey(key)
	if !ok {
		names := make([]string, len(configKeys))
		for i, k := range configKeys {
			names[i] = k.Key
		}
		return &session.ConfigError{Msg: fmt.Sprintf("unknown config key %q, available keys: %s", key, strings.Join(names, ", "))}
	}
	if key == "locale" {
		l, ok := i18n.Parse(value)
		if !ok {
			return &session.ConfigError{Msg: fmt.Sprintf("unsupported locale %q, use one of: de, en, fr, it, es", value)}
		}
		value = string(l)
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	doc := map[string]any{}
	if data, err := os.ReadFile(cfgPath); err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", cfgPath, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", cfgPath, err)
	}
	setNested(doc, strings.Split(info.Key, "."), parseScalar(value))

	if dryRun {
		ui.DryRunMsg("Would set %s = %s in %s", key, value, cfgPath)
		return nil
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	viper.Set(key, value)
	ui.Success("Saved %s to %s", key, cfgPath)
	return nil
}

// setNested assigns value at the dotted path, creating maps as needed.
func setNested(m map[string]any, path []string, value any) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// parseScalar keeps booleans typed in the YAML file.
func parseScalar(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
