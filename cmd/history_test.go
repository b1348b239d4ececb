package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/store"
)

func seedJournal(t *testing.T) {
	t.Helper()
	s, err := getStore()
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, b := range []*models.Booking{
		{Action: models.BookingCreated, Date: "06.01.2025", Project: "71100000001", ServiceType: "1435", Hours: "8.00", Text: "Development", CreatedAt: now.Add(-2 * time.Hour)},
		{Action: models.BookingSkipped, Date: "07.01.2025", Project: "71100000001", ServiceType: "1435", Hours: "8.00", Text: "Development", CreatedAt: now.Add(-time.Hour)},
		{Action: models.BookingDeleted, Date: "08.01.2025", Project: "5000", ServiceType: "1435", Hours: "4.00", Text: "Support", CreatedAt: now.AddDate(0, 0, -400)},
	} {
		require.NoError(t, s.RecordBooking(ctx, b))
	}
}

func resetHistoryFlags(t *testing.T) {
	t.Helper()
	historyAction, historyProject, historyLimit, historyDays, historyPrune = "", "", 20, 0, 0
	t.Cleanup(func() {
		historyAction, historyProject, historyLimit, historyDays, historyPrune = "", "", 20, 0, 0
	})
	historyCmd.SetContext(context.Background())
}

func TestHistory_Empty(t *testing.T) {
	testEnv(t)
	resetHistoryFlags(t)
	out := captureUI(t)

	require.NoError(t, historyRun(historyCmd))
	assert.Contains(t, out.String(), "No bookings recorded.")
}

func TestHistory_FiltersAndAliases(t *testing.T) {
	testEnv(t)
	resetHistoryFlags(t)
	out := captureUI(t)
	require.NoError(t, aliasAddRun("project", "internal", "71100000001"))
	seedJournal(t)
	out.Reset()

	historyProject = "internal"
	require.NoError(t, historyRun(historyCmd))
	s := out.String()
	assert.Contains(t, s, "06.01.2025")
	assert.Contains(t, s, "07.01.2025")
	assert.NotContains(t, s, "08.01.2025")
	assert.Contains(t, s, "internal", "ids are shown by alias")
	assert.NotContains(t, s, "71100000001")

	out.Reset()
	historyProject = ""
	historyAction = "skipped"
	require.NoError(t, historyRun(historyCmd))
	assert.Contains(t, out.String(), "07.01.2025")
	assert.NotContains(t, out.String(), "06.01.2025")

	out.Reset()
	historyAction = ""
	historyDays = 30
	require.NoError(t, historyRun(historyCmd))
	assert.NotContains(t, out.String(), "08.01.2025")
}

func TestHistory_InvalidAction(t *testing.T) {
	testEnv(t)
	resetHistoryFlags(t)
	historyAction = "booked"

	err := historyRun(historyCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestHistory_Prune(t *testing.T) {
	testEnv(t)
	resetHistoryFlags(t)
	out := captureUI(t)
	seedJournal(t)

	historyPrune = 365
	require.NoError(t, historyPruneRun(historyCmd))
	assert.Contains(t, out.String(), "Pruned 1 journal records")

	s, err := getStore()
	require.NoError(t, err)
	left, err := s.ListBookings(context.Background(), store.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
