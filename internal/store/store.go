package store

import (
	"context"
	"time"

	"github.com/joescharf/abacus/internal/models"
)

// BookingFilter specifies filters for listing journal entries.
type BookingFilter struct {
	Action  models.BookingAction
	Project string
	// Since limits results to bookings recorded at or after this time.
	Since time.Time
	Limit int
}

// Store defines the persistence interface for the booking journal.
type Store interface {
	RecordBooking(ctx context.Context, b *models.Booking) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]*models.Booking, error)
	PruneBookings(ctx context.Context, before time.Time) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
