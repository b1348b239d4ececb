package timesheet

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/browser/browsertest"
	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/captcha"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/output"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/page/pagetest"
	"github.com/joescharf/abacus/internal/prompt"
	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/store"
	"github.com/joescharf/abacus/internal/vaadin/vaadintest"
)

var ctx = context.Background()

// friday is the fixed "today" of these tests: 10.01.2025, ISO week 2.
var friday = time.Date(2025, time.January, 10, 9, 30, 0, 0, time.Local)

func january() dates.Month { return dates.MonthOf(friday) }

func day(d int) time.Time { return time.Date(2025, time.January, d, 0, 0, 0, 0, time.Local) }

// scripted answers questions from a fixed list.
type scripted struct {
	mu      sync.Mutex
	answers []string
	asked   []string
	waited  []string
}

func (p *scripted) Ask(q string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, q)
	if len(p.answers) == 0 {
		return "", prompt.ErrNoAnswer
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scripted) Select(string, []prompt.Option) (string, error) {
	return "", errors.New("unexpected select")
}

func (p *scripted) MultiSelect(string, []prompt.Option) ([]int, error) {
	return nil, errors.New("unexpected multi-select")
}

func (p *scripted) WaitEnter(msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waited = append(p.waited, msg)
	return nil
}

func (p *scripted) questions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.asked...)
}

type fixture struct {
	svc      *Service
	portal   *pagetest.Portal
	launcher *browsertest.Launcher
	prompt   *scripted
	out      *bytes.Buffer
}

// newFixture wires a Service to a fake portal that every launched browser
// shares.
func newFixture(t *testing.T, portal *pagetest.Portal, answers ...string) *fixture {
	t.Helper()
	out := &bytes.Buffer{}
	ui := &output.UI{Out: out, ErrOut: out}
	l := &browsertest.Launcher{New: func(bool, int) *vaadintest.Surface { return portal.Surface }}
	p := &scripted{answers: answers}

	rec := captcha.NewRecoverer(l, ui)
	rec.IdleTimeout = time.Second

	set := aliases.Empty()
	set.Add(aliases.KindProject, "internal", "71100000001")
	set.Add(aliases.KindServiceType, "dev", "1000")

	svc := &Service{
		Launcher:    l,
		Recoverer:   rec,
		Prompt:      p,
		Loc:         i18n.New(i18n.English),
		UI:          ui,
		Aliases:     set,
		BaseURL:     pagetest.URL,
		IdleTimeout: time.Second,
		Now:         func() time.Time { return friday },
	}
	return &fixture{svc: svc, portal: portal, launcher: l, prompt: p, out: out}
}

func booked(date, text, hours string) pagetest.Entry {
	return pagetest.Entry{
		Date:        date,
		Project:     "71100000001 – Internal",
		ServiceType: "1000 – Development",
		Text:        text,
		Hours:       hours,
	}
}

func entry(d int, hours float64, text string) models.TimeEntry {
	return models.TimeEntry{
		Project:     "71100000001",
		ServiceType: "1000",
		Hours:       hours,
		Date:        day(d),
		Description: text,
	}
}

func headless(tabs []*browsertest.Tab) []bool {
	out := make([]bool, len(tabs))
	for i, t := range tabs {
		out[i] = t.Headless
	}
	return out
}

func TestRun_RecoversFromCaptchaAndStartsOver(t *testing.T) {
	portal := pagetest.New()
	f := newFixture(t, portal)
	f.launcher.New = func(headless bool, n int) *vaadintest.Surface {
		portal.Captcha = n == 0
		return portal.Surface
	}

	action, err := f.svc.Log(ctx, entry(8, 8, "Review"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingCreated, action)

	tabs := f.launcher.Launched()
	assert.Equal(t, []bool{true, false, true}, headless(tabs))
	for _, tab := range tabs {
		assert.True(t, tab.Closed)
	}
	assert.Equal(t, 1, tabs[1].Saves, "solved session persisted")
	require.Len(t, portal.Created, 1)
	assert.Equal(t, "08.01.2025", portal.Created[0].Date)
}

func TestRun_SecondCaptchaGivesUp(t *testing.T) {
	portal := pagetest.New()
	f := newFixture(t, portal)
	f.launcher.New = func(headless bool, n int) *vaadintest.Surface {
		portal.Captcha = headless
		return portal.Surface
	}

	_, err := f.svc.Log(ctx, entry(8, 8, "Review"))
	assert.ErrorIs(t, err, ErrCaptchaRepeated)
	assert.Len(t, f.launcher.Launched(), 3)
	assert.Empty(t, portal.Created)
}

func TestRun_LaunchError(t *testing.T) {
	f := newFixture(t, pagetest.New())
	f.launcher.Err = errors.New("no chrome")

	_, err := f.svc.List(ctx, january())
	assert.EqualError(t, err, "no chrome")
}

func TestRun_ReleasesSessionLock(t *testing.T) {
	f := newFixture(t, pagetest.New())
	lock := session.NewLock(filepath.Join(t.TempDir(), "session.lock"))
	f.svc.Lock = lock

	_, err := f.svc.List(ctx, january())
	require.NoError(t, err)
	_, err = lock.Read()
	assert.Error(t, err, "lock released after the operation")
}

func TestRun_ClosesBrowserOnPanic(t *testing.T) {
	f := newFixture(t, pagetest.New())
	lock := session.NewLock(filepath.Join(t.TempDir(), "session.lock"))
	f.svc.Lock = lock

	assert.Panics(t, func() {
		_, _ = run(ctx, f.svc, true, func(context.Context, *page.Navigator) outcome[int] {
			panic("grid exploded")
		})
	})

	tabs := f.launcher.Launched()
	require.Len(t, tabs, 1)
	assert.True(t, tabs[0].Closed)
	_, err := lock.Read()
	assert.Error(t, err, "lock released")
}

func TestRun_SavesSessionAfterSuccess(t *testing.T) {
	f := newFixture(t, pagetest.New(booked("06.01.2025", "", "8,00")))
	_, err := f.svc.List(ctx, january())
	require.NoError(t, err)

	tabs := f.launcher.Launched()
	require.Len(t, tabs, 1)
	assert.Equal(t, 1, tabs[0].Saves)
	assert.True(t, tabs[0].Headless)
}

func TestJournal_RecordsBookings(t *testing.T) {
	f := newFixture(t, pagetest.New())
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })
	f.svc.Journal = db

	_, err = f.svc.Log(ctx, entry(9, 7.5, "Planning"))
	require.NoError(t, err)

	got, err := db.ListBookings(ctx, store.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.BookingCreated, got[0].Action)
	assert.Equal(t, "2025-01-09", got[0].Date)
	assert.Equal(t, "7.5", got[0].Hours)
}

func TestRefreshCache_AfterWrite(t *testing.T) {
	f := newFixture(t, pagetest.New(booked("06.01.2025", "", "8,00")))
	c := cache.New(filepath.Join(t.TempDir(), "status.json"))
	c.Now = func() time.Time { return friday }
	f.svc.Cache = c

	_, err := f.svc.Log(ctx, entry(7, 8, "Review"))
	require.NoError(t, err)

	sc, err := c.Load()
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, "01.2025", sc.Month)
	assert.Equal(t, 16.0, sc.Worked)
	assert.Equal(t, 2, sc.WeekNumber)
}

func TestFetchExistingEntries_ReadsEveryTouchedMonth(t *testing.T) {
	portal := pagetest.New(
		booked("06.01.2025", "a", "8,00"),
		booked("03.02.2025", "b", "8,00"),
		booked("03.03.2025", "c", "8,00"),
	)
	f := newFixture(t, portal)

	got, err := f.svc.FetchExistingEntries(ctx, []time.Time{
		day(6), time.Date(2025, time.February, 4, 0, 0, 0, 0, time.Local), day(20),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "06.01.2025", got[0].Date)
	assert.Equal(t, "03.02.2025", got[1].Date)
}

func TestDistinctMonths(t *testing.T) {
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.Local)
	got := distinctMonths([]time.Time{day(3), feb, day(31), feb})
	require.Len(t, got, 2)
	assert.Equal(t, time.January, got[0].Month)
	assert.Equal(t, time.February, got[1].Month)
}
