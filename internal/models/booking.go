package models

import "time"

// BookingAction describes what an operation did to an entry.
type BookingAction string

const (
	BookingCreated BookingAction = "created"
	BookingUpdated BookingAction = "updated"
	BookingDeleted BookingAction = "deleted"
	BookingSkipped BookingAction = "skipped"
)

// Booking is one line of the local booking journal.
type Booking struct {
	ID          string
	Action      BookingAction
	Date        string
	Project     string
	ServiceType string
	Hours       string
	Text        string
	CreatedAt   time.Time
}
