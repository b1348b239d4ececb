package i18n

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		vars       map[string]string
		configured string
		want       Locale
		source     Source
	}{
		{"env wins", map[string]string{EnvVar: "fr", "LANG": "de_CH.UTF-8"}, "it", French, SourceEnv},
		{"invalid env ignored", map[string]string{EnvVar: "xx"}, "it", Italian, SourceFile},
		{"config", nil, "es", Spanish, SourceFile},
		{"LC_ALL before LANG", map[string]string{"LC_ALL": "it_IT.UTF-8", "LANG": "de_DE"}, "", Italian, SourceSystem},
		{"LANG", map[string]string{"LANG": "de_CH.UTF-8"}, "", German, SourceSystem},
		{"fallback", map[string]string{"LANG": "C.UTF-8"}, "", English, SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src := Resolve(env(tt.vars), tt.configured)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.source, src)
		})
	}
}

func TestParse(t *testing.T) {
	l, ok := Parse("de-CH")
	assert.True(t, ok)
	assert.Equal(t, German, l)

	_, ok = Parse("")
	assert.False(t, ok)
}

func TestFromUI(t *testing.T) {
	l, ok := FromUI("fr", "Leistungen")
	assert.True(t, ok)
	assert.Equal(t, French, l, "html lang takes precedence")

	l, ok = FromUI("", " Prestazioni ")
	assert.True(t, ok)
	assert.Equal(t, Italian, l)

	_, ok = FromUI("", "Dashboard")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	confirm := map[Locale]string{German: "j", English: "y", French: "o", Italian: "s", Spanish: "s"}
	update := map[Locale]string{German: "u", English: "u", French: "m", Italian: "a", Spanish: "a"}
	for _, l := range Supported {
		loc := New(l)
		assert.Equal(t, confirm[l], loc.ConfirmKey(), l)
		assert.Equal(t, update[l], loc.UpdateKey(), l)
	}
}

func TestNew_UnknownFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, English, New("xx").Locale())
}

func TestSprintf(t *testing.T) {
	assert.Equal(t, "Saved.", New(English).Sprintf(MsgSaved))
	assert.Equal(t, "Gespeichert.", New(German).Sprintf(MsgSaved))
	assert.Equal(t, "Kein Eintrag gefunden am 15.01.2025 für Projekt 711.",
		New(German).Sprintf(MsgNoEntryFound, "15.01.2025", "711"))
	assert.Equal(t, "Quick actions", New(Italian).Sprintf(MsgQuickActions), "untranslated keys render as English")
}

func TestSprintf_PluralWorkdays(t *testing.T) {
	en := New(English)
	assert.Equal(t, "1 workday without entries.", en.Sprintf(MsgWorkdaysWithout, 1))
	assert.Equal(t, "3 workdays without entries.", en.Sprintf(MsgWorkdaysWithout, 3))
	assert.Equal(t, "1 Arbeitstag ohne Einträge.", New(German).Sprintf(MsgWorkdaysWithout, 1))
	assert.Equal(t, "2 Arbeitstage ohne Einträge.", New(German).Sprintf(MsgWorkdaysWithout, 2))
}

func TestConfirmPrompt(t *testing.T) {
	assert.Equal(t, "Wirklich löschen? [j/n] ", New(German).ConfirmPrompt(MsgReallyDelete))
	assert.Equal(t, "Really delete? [y/n] ", New(English).ConfirmPrompt(MsgReallyDelete))
}

func TestShortDay(t *testing.T) {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mon", New(English).ShortDay(monday))
	assert.Equal(t, "Mo.", New(German).ShortDay(monday))
	assert.Equal(t, "ven.", New(French).ShortDay(monday.AddDate(0, 0, 4)))
}

func TestEveryTranslationHasFourLocales(t *testing.T) {
	for key, texts := range translations {
		for i, text := range texts {
			assert.NotEmpty(t, text, "%q missing translation %d", key, i)
		}
	}
}
