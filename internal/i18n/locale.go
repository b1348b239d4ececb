// Package i18n resolves the user's locale and renders CLI messages through
// golang.org/x/text catalogs. Messages are keyed by their English format
// string; a missing translation falls back to the key itself.
package i18n

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is one of the languages the portal and the CLI support.
type Locale string

const (
	German  Locale = "de"
	English Locale = "en"
	French  Locale = "fr"
	Italian Locale = "it"
	Spanish Locale = "es"
)

// Supported lists every locale in display order.
var Supported = []Locale{German, English, French, Italian, Spanish}

// Source records where a resolved locale came from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceSystem  Source = "system"
	SourceDefault Source = "default"
)

// EnvVar overrides every other locale source.
const EnvVar = "ABACUS_LOCALE"

// Parse validates a locale string, accepting tags like "de_CH.UTF-8".
func Parse(s string) (Locale, bool) {
	short := strings.ToLower(s)
	if i := strings.IndexAny(short, "-_."); i >= 0 {
		short = short[:i]
	}
	l := Locale(short)
	if slices.Contains(Supported, l) {
		return l, true
	}
	return "", false
}

// Resolve picks the locale from the environment, then the configured value,
// then the system locale (LC_ALL, LANG), falling back to English.
func Resolve(getenv func(string) string, configured string) (Locale, Source) {
	if l, ok := Parse(getenv(EnvVar)); ok {
		return l, SourceEnv
	}
	if l, ok := Parse(configured); ok {
		return l, SourceFile
	}
	for _, key := range []string{"LC_ALL", "LANG"} {
		if l, ok := Parse(getenv(key)); ok {
			return l, SourceSystem
		}
	}
	return English, SourceDefault
}

func (l Locale) tag() language.Tag {
	switch l {
	case German:
		return language.German
	case French:
		return language.French
	case Italian:
		return language.Italian
	case Spanish:
		return language.Spanish
	default:
		return language.English
	}
}

// navTitles is the label of the services navigation link per locale.
var navTitles = map[Locale]string{
	German:  "Leistungen",
	English: "Services",
	French:  "Prestations",
	Italian: "Prestazioni",
	Spanish: "Servicios",
}

// FromUI maps what the portal reports about its own language to a Locale:
// the <html lang> attribute first, then the services navigation title.
func FromUI(lang, navTitle string) (Locale, bool) {
	if l, ok := Parse(lang); ok {
		return l, true
	}
	title := strings.TrimSpace(navTitle)
	for _, l := range Supported {
		if strings.EqualFold(navTitles[l], title) {
			return l, true
		}
	}
	return "", false
}

var confirmKeys = map[Locale]string{German: "j", English: "y", French: "o", Italian: "s", Spanish: "s"}

var updateKeys = map[Locale]string{German: "u", English: "u", French: "m", Italian: "a", Spanish: "a"}

var shortDays = map[Locale][7]string{
	German:  {"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."},
	English: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	French:  {"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
	Italian: {"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
	Spanish: {"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
}

var defaultTexts = map[Locale]string{
	German:  "Entwicklung",
	English: "Development",
	French:  "Développement",
	Italian: "Sviluppo",
	Spanish: "Desarrollo",
}

// Localizer renders messages and locale data for one locale. It is passed
// explicitly to every component that prints.
type Localizer struct {
	locale  Locale
	printer *message.Printer
}

// New returns a Localizer for l. Unknown locales fall back to English.
func New(l Locale) *Localizer {
	if _, ok := confirmKeys[l]; !ok {
		l = English
	}
	return &Localizer{
		locale:  l,
		printer: message.NewPrinter(l.tag(), message.Catalog(messages)),
	}
}

// Locale returns the localizer's locale.
func (l *Localizer) Locale() Locale { return l.locale }

// Sprintf renders the message keyed by format. Callers pass numbers
// preformatted as strings so output does not pick up digit grouping.
func (l *Localizer) Sprintf(format string, args ...any) string {
	return l.printer.Sprintf(format, args...)
}

// ConfirmKey is the answer that confirms a yes/no prompt (j, y, o, s).
func (l *Localizer) ConfirmKey() string { return confirmKeys[l.locale] }

// UpdateKey is the answer that picks "update existing" over "add new".
func (l *Localizer) UpdateKey() string { return updateKeys[l.locale] }

// ShortDay returns the abbreviated weekday name of t.
func (l *Localizer) ShortDay(t time.Time) string {
	return shortDays[l.locale][t.Weekday()]
}

// DefaultText is the booking text suggested for generated batch files.
func (l *Localizer) DefaultText() string { return defaultTexts[l.locale] }

// ConfirmPrompt appends the locale's [y/n] choice to question.
func (l *Localizer) ConfirmPrompt(question string) string {
	return fmt.Sprintf("%s [%s/n] ", l.Sprintf(question), l.ConfirmKey())
}
