// Package prompt asks the user questions. On a terminal it renders
// charmbracelet/huh widgets; otherwise it falls back to reading lines.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/joescharf/abacus/internal/aliases"
)

// ErrNoAnswer is returned when input ends before an answer was read.
var ErrNoAnswer = errors.New("no answer: input closed")

// Option is one selectable item.
type Option struct {
	Label  string
	Detail string
	Value  string
}

// Prompter is everything the orchestrator and commands ask interactively.
type Prompter interface {
	// Ask prints question and returns the trimmed answer line.
	Ask(question string) (string, error)
	// Select returns the value of one chosen option.
	Select(title string, options []Option) (string, error)
	// MultiSelect returns the indices of the chosen options.
	MultiSelect(title string, options []Option) ([]int, error)
	// WaitEnter prints message and blocks until a line is entered.
	WaitEnter(message string) error
}

// New returns a Terminal prompter when in is a terminal, else a Line one.
func New(in *os.File, out io.Writer) Prompter {
	line := NewLine(in, out)
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return &Terminal{Line: line}
	}
	return line
}

// Line reads answers line by line.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine returns a line-based prompter.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

func (l *Line) readLine() (string, error) {
	s, err := l.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		if err == io.EOF {
			return "", ErrNoAnswer
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (l *Line) Ask(question string) (string, error) {
	_, _ = fmt.Fprint(l.out, question)
	return l.readLine()
}

func (l *Line) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", errors.New("nothing to select")
	}
	_, _ = fmt.Fprintln(l.out, title)
	for i, o := range options {
		_, _ = fmt.Fprintf(l.out, "  %d) %s\n", i+1, describe(o))
	}
	answer, err := l.Ask(fmt.Sprintf("[1-%d] ", len(options)))
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return "", fmt.Errorf("invalid selection %q", answer)
	}
	return options[n-1].Value, nil
}

// MultiSelect accepts a comma or space separated list of numbers, or "a"
// for all.
func (l *Line) MultiSelect(title string, options []Option) ([]int, error) {
	_, _ = fmt.Fprintln(l.out, title)
	for i, o := range options {
		_, _ = fmt.Fprintf(l.out, "  %d) %s\n", i+1, describe(o))
	}
	answer, err := l.Ask(fmt.Sprintf("[1-%d, a=all, empty=none] ", len(options)))
	if err != nil {
		return nil, err
	}
	return ParseSelection(answer, len(options))
}

func (l *Line) WaitEnter(message string) error {
	_, _ = fmt.Fprint(l.out, message)
	_, err := l.readLine()
	return err
}

// ParseSelection turns "1, 3 5" or "a" into zero-based indices.
func ParseSelection(answer string, n int) ([]int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, nil
	}
	if strings.EqualFold(answer, "a") {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, f := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' }) {
		v, err := strconv.Atoi(f)
		if err != nil || v < 1 || v > n {
			return nil, fmt.Errorf("invalid selection %q", f)
		}
		if !seen[v-1] {
			seen[v-1] = true
			out = append(out, v-1)
		}
	}
	return out, nil
}

func describe(o Option) string {
	if o.Detail == "" {
		return o.Label
	}
	return o.Label + "  " + o.Detail
}

// Terminal renders selections with huh and keeps keyed questions
// line-based so locale answer keys work unchanged.
type Terminal struct {
	*Line
}

func (t *Terminal) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", errors.New("nothing to select")
	}
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(describe(o), o.Value)
	}
	var value string
	err := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&value).
		Run()
	if err != nil {
		return "", err
	}
	return value, nil
}

func (t *Terminal) MultiSelect(title string, options []Option) ([]int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(describe(o), i)
	}
	var picked []int
	err := huh.NewMultiSelect[int]().
		Title(title).
		Options(opts...).
		Value(&picked).
		Run()
	if err != nil {
		return nil, err
	}
	return picked, nil
}

// SelectAlias picks an id from an alias table. A single alias is chosen
// without asking.
func SelectAlias(p Prompter, out io.Writer, kind aliases.Kind, pairs []aliases.Pair) (string, error) {
	switch len(pairs) {
	case 0:
		return "", fmt.Errorf("no %s aliases configured, use 'abacus alias add' first", kind)
	case 1:
		_, _ = fmt.Fprintf(out, "%s: %s -> %s\n", kind, pairs[0].Alias, pairs[0].ID)
		return pairs[0].ID, nil
	}
	opts := make([]Option, len(pairs))
	for i, pr := range pairs {
		opts[i] = Option{Label: pr.Alias, Detail: pr.ID, Value: pr.ID}
	}
	return p.Select(fmt.Sprintf("Select %s:", kind), opts)
}
