// Package cache persists the weekly status snapshot that summary, check and
// the MCP server read without opening a browser.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/session"
)

// DefaultTarget is the weekly target assumed before a status run has read
// the real one.
const DefaultTarget = 40.0

// DayNamer renders a short weekday name for missing-day lists.
type DayNamer func(time.Time) string

// Cache reads and writes the status cache file.
type Cache struct {
	Path string
	// Now defaults to time.Now.
	Now func() time.Time
}

// New returns a Cache for path.
func New(path string) *Cache {
	return &Cache{Path: path, Now: time.Now}
}

func (c *Cache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Load returns the cached snapshot, or nil when none was written yet.
func (c *Cache) Load() (*models.StatusCache, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read status cache: %w", err)
	}
	var sc models.StatusCache
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse status cache %s: %w", c.Path, err)
	}
	return &sc, nil
}

// Save replaces the cache file atomically.
func (c *Cache) Save(sc *models.StatusCache) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status cache: %w", err)
	}
	return session.WriteFileAtomic(c.Path, append(data, '\n'), 0o644)
}

// IsCurrent reports whether sc describes the ISO week containing now.
func IsCurrent(sc *models.StatusCache, now time.Time) bool {
	if sc == nil {
		return false
	}
	monday, _ := dates.WeekBounds(now)
	return sc.WeekNumber == dates.ISOWeek(now) && sc.Monday == dates.Display(monday)
}

// MissingDays lists the weekdays from the first of month through
// min(today, last of month) that have no entry in entries.
func MissingDays(entries []models.ExistingEntry, month dates.Month, today time.Time, name DayNamer) []models.MissingDay {
	booked := make(map[string]bool, len(entries))
	for _, e := range entries {
		booked[e.Date] = true
	}
	missing := []models.MissingDay{}
	for _, d := range dates.Weekdays(month.First(), dates.Min(dates.Day(today), month.Last())) {
		if ds := dates.Display(d); !booked[ds] {
			missing = append(missing, models.MissingDay{Date: ds, DayName: name(d)})
		}
	}
	return missing
}

// UpdateFromEntries rebuilds the snapshot from a month's grid rows. Worked
// hours cover Monday through Friday of the current week. Target, saldo and
// vacation carry over from the previous snapshot.
func (c *Cache) UpdateFromEntries(entries []models.ExistingEntry, month dates.Month, name DayNamer) error {
	now := c.now()
	today := dates.Day(now)
	monday, friday := dates.WeekBounds(today)

	week := make(map[string]bool, 5)
	for _, d := range dates.Weekdays(monday, friday) {
		week[dates.Display(d)] = true
	}
	var worked float64
	for _, e := range entries {
		if week[e.Date] {
			worked += page.ParseHours(e.Hours)
		}
	}

	prev, _ := c.Load()
	target := DefaultTarget
	var saldo *models.SaldoData
	var vacation *models.CachedVacation
	if prev != nil {
		if prev.Target > 0 {
			target = prev.Target
		}
		saldo = prev.Saldo
		vacation = prev.Vacation
	}

	return c.Save(&models.StatusCache{
		UpdatedAt:   now.UTC(),
		Month:       month.String(),
		WeekNumber:  dates.ISOWeek(today),
		Monday:      dates.Display(monday),
		Friday:      dates.Display(friday),
		Worked:      worked,
		Target:      target,
		Remaining:   math.Max(0, target-worked),
		MissingDays: MissingDays(entries, month, today, name),
		Saldo:       saldo,
		Vacation:    vacation,
	})
}

// Snapshot is what a status run read for the week of Date.
type Snapshot struct {
	Date        time.Time
	Month       dates.Month
	Weekly      models.WeeklyReport
	Remaining   float64
	MissingDays []models.MissingDay
	Saldo       *models.SaldoData
	Vacation    *models.VacationData
}

// WriteSnapshot stores the result of a status run.
func (c *Cache) WriteSnapshot(s Snapshot) error {
	monday, friday := dates.WeekBounds(s.Date)
	sc := &models.StatusCache{
		UpdatedAt:   c.now().UTC(),
		Month:       s.Month.String(),
		WeekNumber:  dates.ISOWeek(s.Date),
		Monday:      dates.Display(monday),
		Friday:      dates.Display(friday),
		Worked:      s.Weekly.Worked,
		Target:      s.Weekly.Target,
		Remaining:   s.Remaining,
		MissingDays: s.MissingDays,
		Saldo:       s.Saldo,
	}
	if sc.MissingDays == nil {
		sc.MissingDays = []models.MissingDay{}
	}
	if v := s.Vacation; v != nil {
		sc.Vacation = &models.CachedVacation{
			Remaining:       v.Remaining,
			Entitlement:     v.Entitlement,
			RemainingDays:   roundTenth(v.Remaining / 8),
			EntitlementDays: roundTenth(v.Entitlement / 8),
		}
	}
	return c.Save(sc)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
