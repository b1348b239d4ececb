package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
)

func currentCache(now time.Time) *models.StatusCache {
	monday, friday := dates.WeekBounds(now)
	return &models.StatusCache{
		UpdatedAt:  now.Add(-10 * time.Minute),
		Month:      dates.MonthOf(now).String(),
		WeekNumber: dates.ISOWeek(now),
		Monday:     dates.Display(monday),
		Friday:     dates.Display(friday),
		Worked:     24,
		Target:     40,
		Remaining:  16,
		MissingDays: []models.MissingDay{
			{Date: "09.01.2025", DayName: "Thu"},
			{Date: "10.01.2025", DayName: "Fri"},
		},
	}
}

func TestCheckReport(t *testing.T) {
	loc := i18n.New(i18n.English)
	now := time.Date(2025, 1, 10, 18, 0, 0, 0, time.Local)

	t.Run("no cache", func(t *testing.T) {
		reminder, warning, _ := checkReport(loc, nil, now)
		assert.Contains(t, reminder, "abacus summary")
		assert.Empty(t, warning)
	})

	t.Run("updated yesterday", func(t *testing.T) {
		sc := currentCache(now)
		sc.UpdatedAt = now.AddDate(0, 0, -1)
		reminder, _, _ := checkReport(loc, sc, now)
		assert.NotEmpty(t, reminder)
	})

	t.Run("other month", func(t *testing.T) {
		sc := currentCache(now)
		sc.Month = "12.2024"
		reminder, _, _ := checkReport(loc, sc, now)
		assert.NotEmpty(t, reminder)
	})

	t.Run("missing days", func(t *testing.T) {
		reminder, warning, hint := checkReport(loc, currentCache(now), now)
		assert.Empty(t, reminder)
		assert.Equal(t, "Abacus: Thu, Fri not logged", warning)
		assert.Equal(t, `run: abacus time log --hours 8.00 --text "Development" --date 2025-01-09`, hint)
	})

	t.Run("hours capped by remaining", func(t *testing.T) {
		sc := currentCache(now)
		sc.Remaining = 3.5
		_, _, hint := checkReport(loc, sc, now)
		assert.Contains(t, hint, "--hours 3.50")
	})

	t.Run("all booked", func(t *testing.T) {
		sc := currentCache(now)
		sc.MissingDays = nil
		reminder, warning, hint := checkReport(loc, sc, now)
		assert.Empty(t, reminder + warning + hint)
	})
}

func TestCheckRun_PrintsNothingWhenBooked(t *testing.T) {
	testEnv(t)
	t.Setenv("ABACUS_LOCALE", "en")
	out := captureUI(t)

	sc := currentCache(time.Now())
	sc.UpdatedAt = time.Now()
	sc.MissingDays = nil
	require.NoError(t, statusCache().Save(sc))

	require.NoError(t, checkRun())
	assert.Empty(t, out.String())
}

func TestCheckRun_Reminder(t *testing.T) {
	testEnv(t)
	t.Setenv("ABACUS_LOCALE", "en")
	out := captureUI(t)

	require.NoError(t, checkRun())
	assert.Contains(t, out.String(), "Did you log your hours this week?")
}

func TestSummary_FromCurrentCache(t *testing.T) {
	testEnv(t)
	t.Setenv("ABACUS_LOCALE", "en")
	out := captureUI(t)

	now := time.Now()
	sc := currentCache(now)
	sc.Saldo = &models.SaldoData{Overtime: 12}
	sc.Vacation = &models.CachedVacation{RemainingDays: 7.5}
	require.NoError(t, statusCache().Save(sc))

	// A current cache never reaches the portal, so no URL is needed.
	require.NoError(t, summaryRun(summaryCmd))
	assert.Contains(t, out.String(), "24.00 / 40.00h · 16.00h remaining")
	assert.Contains(t, out.String(), "Thu, Fri")
	assert.Contains(t, out.String(), "Overtime: +12.00h (1.5d) · Vacation: 7.5d left")
	assert.Contains(t, out.String(), "(updated 10m ago)")
}

func TestSummary_StaleCacheNeedsPortal(t *testing.T) {
	testEnv(t)
	captureUI(t)

	err := summaryRun(summaryCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portal URL is not configured")
}
