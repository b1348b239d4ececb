package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// TimeEntry is an entry to be written through the entry form.
type TimeEntry struct {
	Project     string
	ServiceType string
	Hours       float64
	Date        time.Time
	Description string
}

// Validate checks the invariants of an entry before it reaches the browser.
func (e TimeEntry) Validate() error {
	if e.Project == "" {
		return errors.New("project is required")
	}
	if !(e.Hours > 0) || math.IsInf(e.Hours, 0) {
		return fmt.Errorf("hours must be greater than 0 (got %v)", e.Hours)
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// ExistingEntry is a row scraped from the entries grid. RowIndex is only
// meaningful for the grid render it was read from.
type ExistingEntry struct {
	Date        string `json:"date"`
	Project     string `json:"project"`
	ServiceType string `json:"serviceType"`
	Text        string `json:"text"`
	Hours       string `json:"hours"`
	Status      string `json:"status"`
	RowIndex    int    `json:"rowIndex"`
}

// SameRow reports whether two scraped rows show the same content,
// ignoring their positions.
func (e ExistingEntry) SameRow(o ExistingEntry) bool {
	return e.Date == o.Date &&
		e.Project == o.Project &&
		e.ServiceType == o.ServiceType &&
		e.Text == o.Text &&
		e.Hours == o.Hours
}
