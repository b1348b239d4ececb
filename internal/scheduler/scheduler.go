// Package scheduler installs the periodic session refresh as a launchd
// agent on macOS or a systemd user timer on Linux.
package scheduler

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	// LaunchdLabel names the launchd agent.
	LaunchdLabel = "com.abacus-cli.refresh"
	// SystemdUnit is the base name of the systemd service and timer.
	SystemdUnit = "abacus-refresh"

	defaultPath = "/usr/local/bin:/usr/bin:/bin:/opt/homebrew/bin"
)

// ErrUnsupported is returned on platforms without a supported scheduler.
var ErrUnsupported = errors.New("background refresh is only supported on macOS (launchd) and Linux (systemd)")

// Unit describes the job to schedule.
type Unit struct {
	// Executable is the absolute path of the abacus binary.
	Executable string
	// Args follow the executable, usually just "refresh".
	Args     []string
	Interval time.Duration
	// LogPath receives stdout and stderr of every run.
	LogPath string
}

func (u Unit) validate() error {
	if u.Executable == "" {
		return fmt.Errorf("scheduler: executable path is empty")
	}
	if u.Interval < time.Minute {
		return fmt.Errorf("scheduler: interval %s is shorter than a minute", u.Interval)
	}
	return nil
}

// File is a rendered unit file and where it belongs.
type File struct {
	Path    string
	Content string
}

// Installer writes unit files and tells the platform scheduler about them.
type Installer struct {
	GOOS    string
	HomeDir string
	// Run executes a scheduler command; defaults to os/exec.
	Run func(ctx context.Context, name string, args ...string) error
}

// New returns an Installer for the running platform.
func New(goos string) (*Installer, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home directory: %w", err)
	}
	return &Installer{GOOS: goos, HomeDir: home, Run: runCommand}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (i *Installer) plistPath() string {
	return filepath.Join(i.HomeDir, "Library", "LaunchAgents", LaunchdLabel+".plist")
}

func (i *Installer) systemdDir() string {
	return filepath.Join(i.HomeDir, ".config", "systemd", "user")
}

// Files renders the unit files for u without touching the disk.
func (i *Installer) Files(u Unit) ([]File, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}
	switch i.GOOS {
	case "darwin":
		plist, err := RenderPlist(u)
		if err != nil {
			return nil, err
		}
		return []File{{Path: i.plistPath(), Content: plist}}, nil
	case "linux":
		service, err := RenderService(u)
		if err != nil {
			return nil, err
		}
		timer, err := RenderTimer(u)
		if err != nil {
			return nil, err
		}
		return []File{
			{Path: filepath.Join(i.systemdDir(), SystemdUnit+".service"), Content: service},
			{Path: filepath.Join(i.systemdDir(), SystemdUnit+".timer"), Content: timer},
		}, nil
	default:
		return nil, ErrUnsupported
	}
}

// Install writes the unit files and (re)loads them. It returns the paths
// written.
func (i *Installer) Install(ctx context.Context, u Unit) ([]string, error) {
	files, err := i.Files(u)
	if err != nil {
		return nil, err
	}

	if i.GOOS == "darwin" {
		// A loaded agent keeps its old interval until it is unloaded.
		_ = i.Run(ctx, "launchctl", "unload", i.plistPath())
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(f.Path), err)
		}
		if err := os.WriteFile(f.Path, []byte(f.Content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Path, err)
		}
		paths = append(paths, f.Path)
	}

	switch i.GOOS {
	case "darwin":
		if err := i.Run(ctx, "launchctl", "load", i.plistPath()); err != nil {
			return paths, err
		}
	case "linux":
		if err := i.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
			return paths, err
		}
		if err := i.Run(ctx, "systemctl", "--user", "enable", "--now", SystemdUnit+".timer"); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// Uninstall unloads the job and removes its unit files. Missing files are
// not an error. It returns the paths removed.
func (i *Installer) Uninstall(ctx context.Context) ([]string, error) {
	var candidates []string
	switch i.GOOS {
	case "darwin":
		_ = i.Run(ctx, "launchctl", "unload", i.plistPath())
		candidates = []string{i.plistPath()}
	case "linux":
		_ = i.Run(ctx, "systemctl", "--user", "disable", "--now", SystemdUnit+".timer")
		candidates = []string{
			filepath.Join(i.systemdDir(), SystemdUnit+".timer"),
			filepath.Join(i.systemdDir(), SystemdUnit+".service"),
		}
	default:
		return nil, ErrUnsupported
	}

	var removed []string
	for _, p := range candidates {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case errors.Is(err, os.ErrNotExist):
		default:
			return removed, fmt.Errorf("remove %s: %w", p, err)
		}
	}
	if i.GOOS == "linux" {
		_ = i.Run(ctx, "systemctl", "--user", "daemon-reload")
	}
	return removed, nil
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

var funcs = template.FuncMap{
	"xml": func(s string) string {
		var b bytes.Buffer
		_ = xml.EscapeText(&b, []byte(s))
		return b.String()
	},
	"quote": systemdQuote,
}

var plistTmpl = template.Must(template.New("plist").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Label</key>
  <string>{{.Label}}</string>
  <key>ProgramArguments</key>
  <array>
{{- range .Argv}}
    <string>{{xml .}}</string>
{{- end}}
  </array>
  <key>StartInterval</key>
  <integer>{{.Seconds}}</integer>
  <key>RunAtLoad</key>
  <true/>
{{- if .LogPath}}
  <key>StandardOutPath</key>
  <string>{{xml .LogPath}}</string>
  <key>StandardErrorPath</key>
  <string>{{xml .LogPath}}</string>
{{- end}}
  <key>EnvironmentVariables</key>
  <dict>
    <key>PATH</key>
    <string>{{.Path}}</string>
  </dict>
</dict>
</plist>
`))

var serviceTmpl = template.Must(template.New("service").Funcs(funcs).Parse(`[Unit]
Description=Keep the abacus portal session alive

[Service]
Type=oneshot
ExecStart={{range $i, $a := .Argv}}{{if $i}} {{end}}{{quote $a}}{{end}}
{{- if .LogPath}}
StandardOutput=append:{{.LogPath}}
StandardError=append:{{.LogPath}}
{{- end}}
`))

var timerTmpl = template.Must(template.New("timer").Parse(`[Unit]
Description=Refresh the abacus portal session every {{.Minutes}} minutes

[Timer]
OnBootSec=1min
OnUnitActiveSec={{.Seconds}}s
Persistent=true

[Install]
WantedBy=timers.target
`))

type unitData struct {
	Label   string
	Argv    []string
	Seconds int
	Minutes int
	LogPath string
	Path    string
}

func newUnitData(u Unit) unitData {
	return unitData{
		Label:   LaunchdLabel,
		Argv:    append([]string{u.Executable}, u.Args...),
		Seconds: int(u.Interval / time.Second),
		Minutes: int(u.Interval / time.Minute),
		LogPath: u.LogPath,
		Path:    defaultPath,
	}
}

func render(t *template.Template, u Unit) (string, error) {
	if err := u.validate(); err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, newUnitData(u)); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

// RenderPlist renders the launchd agent definition.
func RenderPlist(u Unit) (string, error) { return render(plistTmpl, u) }

// RenderService renders the systemd oneshot service.
func RenderService(u Unit) (string, error) { return render(serviceTmpl, u) }

// RenderTimer renders the systemd timer that triggers the service.
func RenderTimer(u Unit) (string, error) { return render(timerTmpl, u) }

// systemdQuote quotes an ExecStart argument when it contains whitespace or
// quotes.
func systemdQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	return strconv.Quote(s)
}
