package models

import "time"

// MissingDay is a weekday without any booked entry.
type MissingDay struct {
	Date    string `json:"date"`
	DayName string `json:"dayName"`
}

// CachedVacation is the vacation snapshot kept in the status cache.
type CachedVacation struct {
	Remaining       float64 `json:"remaining"`
	Entitlement     float64 `json:"entitlement"`
	RemainingDays   float64 `json:"remainingDays"`
	EntitlementDays float64 `json:"entitlementDays"`
}

// StatusCache is the locally persisted snapshot used by summary and check.
type StatusCache struct {
	UpdatedAt   time.Time       `json:"updatedAt"`
	Month       string          `json:"month"`
	WeekNumber  int             `json:"weekNumber"`
	Monday      string          `json:"monday"`
	Friday      string          `json:"friday"`
	Worked      float64         `json:"worked"`
	Target      float64         `json:"target"`
	Remaining   float64         `json:"remaining"`
	MissingDays []MissingDay    `json:"missingDays"`
	Saldo       *SaldoData      `json:"saldo"`
	Vacation    *CachedVacation `json:"vacation"`
}
