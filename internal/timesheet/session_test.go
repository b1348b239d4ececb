package timesheet

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/page/pagetest"
	"github.com/joescharf/abacus/internal/session"
)

func TestLogin_DetectsLanguageAndSaves(t *testing.T) {
	p := pagetest.New()
	p.Lang = "fr"
	f := newFixture(t, p)

	res, err := f.svc.Login(ctx)
	require.NoError(t, err)
	assert.True(t, res.Detected)
	assert.Equal(t, i18n.French, res.Locale)

	tabs := f.launcher.Launched()
	require.Len(t, tabs, 1)
	assert.False(t, tabs[0].Headless)
	assert.Equal(t, 1, tabs[0].Saves)
	assert.True(t, tabs[0].Closed)
}

func TestLogin_UnknownLanguage(t *testing.T) {
	p := pagetest.New()
	p.Lang, p.NavTitle = "xx", "Unbekannt"
	f := newFixture(t, p)

	res, err := f.svc.Login(ctx)
	require.NoError(t, err)
	assert.False(t, res.Detected)
}

func TestRefresh_OK(t *testing.T) {
	f := newFixture(t, pagetest.New())

	st, err := f.svc.Refresh(ctx, RefreshTimeout)
	require.NoError(t, err)
	assert.Equal(t, RefreshOK, st)

	tabs := f.launcher.Launched()
	require.Len(t, tabs, 1)
	assert.True(t, tabs[0].Headless)
	assert.Equal(t, 1, tabs[0].Saves)
}

func TestRefresh_SavesWithoutTimeout(t *testing.T) {
	f := newFixture(t, pagetest.New())

	st, err := f.svc.Refresh(ctx, RefreshTimeout)
	require.NoError(t, err)
	assert.Equal(t, RefreshOK, st)

	tabs := f.launcher.Launched()
	require.Len(t, tabs, 1)
	assert.Equal(t, []bool{false}, tabs[0].SaveDeadlines)
}

func TestRefresh_Captcha(t *testing.T) {
	p := pagetest.New()
	p.Captcha = true
	f := newFixture(t, p)

	st, err := f.svc.Refresh(ctx, RefreshTimeout)
	require.NoError(t, err)
	assert.Equal(t, RefreshCaptcha, st)
	assert.Len(t, f.launcher.Launched(), 1, "no headed recovery when unattended")
}

func TestRefresh_Expired(t *testing.T) {
	p := pagetest.New()
	p.OnNavigate(func(string) { p.SetURL("https://login.example.com/sso") })
	f := newFixture(t, p)

	st, err := f.svc.Refresh(ctx, RefreshTimeout)
	assert.Equal(t, RefreshExpired, st)
	var se *page.SessionExpiredError
	assert.True(t, errors.As(err, &se))
	assert.Zero(t, f.launcher.Launched()[0].Saves)
}

func TestRefresh_BusyWhenLocked(t *testing.T) {
	f := newFixture(t, pagetest.New())
	lock := session.NewLock(filepath.Join(t.TempDir(), "session.lock"))
	require.NoError(t, lock.Acquire(ctx, time.Second))
	t.Cleanup(func() { _ = lock.Release() })
	f.svc.Lock = lock

	st, err := f.svc.Refresh(ctx, RefreshTimeout)
	require.NoError(t, err)
	assert.Equal(t, RefreshBusy, st)
	assert.Empty(t, f.launcher.Launched())
}
