package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/store"
	"github.com/joescharf/abacus/internal/timesheet"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockReader implements Reader for testing.
type mockReader struct {
	listing *timesheet.MonthListing
	report  *timesheet.StatusReport
	err     error

	// Track calls for verification.
	listedMonths []dates.Month
	statusDates  []time.Time
}

func (m *mockReader) List(_ context.Context, month dates.Month) (*timesheet.MonthListing, error) {
	m.listedMonths = append(m.listedMonths, month)
	if m.err != nil {
		return nil, m.err
	}
	return m.listing, nil
}

func (m *mockReader) Status(_ context.Context, date time.Time) (*timesheet.StatusReport, error) {
	m.statusDates = append(m.statusDates, date)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

// mockStore implements store.Store for testing.
type mockStore struct {
	bookings   []*models.Booking
	lastFilter store.BookingFilter
	listErr    error
}

func (m *mockStore) RecordBooking(_ context.Context, b *models.Booking) error {
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *mockStore) ListBookings(_ context.Context, filter store.BookingFilter) ([]*models.Booking, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.bookings, nil
}

func (m *mockStore) PruneBookings(context.Context, time.Time) (int64, error) { return 0, nil }
func (m *mockStore) Migrate(context.Context) error                         { return nil }
func (m *mockStore) Close() error                                          { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	ctx    = context.Background()
	friday = time.Date(2025, time.January, 10, 9, 0, 0, 0, time.Local)
)

type testEnv struct {
	srv    *Server
	reader *mockReader
	cache  *cache.Cache
	store  *mockStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := &mockReader{}
	c := cache.New(filepath.Join(t.TempDir(), "status.json"))
	c.Now = func() time.Time { return friday }
	set := aliases.Empty()
	set.Add(aliases.KindProject, "internal", "71100000001")
	set.Add(aliases.KindServiceType, "dev", "1000")
	ms := &mockStore{}

	srv := NewServer(r, c, set, ms, i18n.New(i18n.English), "test")
	srv.now = func() time.Time { return friday }
	return &testEnv{srv: srv, reader: r, cache: c, store: ms}
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	text := resultText(t, result)
	err := json.Unmarshal([]byte(text), target)
	require.NoError(t, err, "failed to parse result JSON: %s", text)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

// listTools runs a tools/list request through srv and returns the raw response.
func listTools(t *testing.T, s *Server) string {
	t.Helper()
	resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(data)
}

func TestMCPServer_RegistersTools(t *testing.T) {
	env := newTestEnv(t)
	tools := listTools(t, env.srv)
	for _, name := range []string{"abacus_summary", "abacus_list_entries", "abacus_status", "abacus_aliases", "abacus_history"} {
		assert.Contains(t, tools, `"`+name+`"`)
	}

	noJournal := NewServer(env.reader, env.cache, aliases.Empty(), nil, i18n.New(i18n.English), "test")
	assert.NotContains(t, listTools(t, noJournal), "abacus_history")
}

func TestHandleSummary_NoCache(t *testing.T) {
	env := newTestEnv(t)
	result, err := env.srv.handleSummary(ctx, callToolReq("abacus_summary", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "abacus_status")
}

func TestHandleSummary(t *testing.T) {
	env := newTestEnv(t)
	monday, _ := dates.WeekBounds(friday)
	require.NoError(t, env.cache.Save(&models.StatusCache{
		UpdatedAt:  friday.Add(-time.Hour),
		WeekNumber: 2,
		Monday:     dates.Display(monday),
		Worked:     32,
		Target:     40,
		Remaining:  8,
	}))

	result, err := env.srv.handleSummary(ctx, callToolReq("abacus_summary", nil))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out struct {
		Current bool     `json:"current"`
		Lines   []string `json:"lines"`
	}
	resultJSON(t, result, &out)
	assert.True(t, out.Current)
	require.NotEmpty(t, out.Lines)
	assert.Equal(t, "Week 2 · 32.00 / 40.00h · 8.00h remaining", out.Lines[0])
}

func TestHandleListEntries_DefaultsToCurrentMonth(t *testing.T) {
	env := newTestEnv(t)
	env.reader.listing = &timesheet.MonthListing{
		Entries: []models.ExistingEntry{{Date: "06.01.2025", Project: "71100000001 – Internal", Hours: "8,00"}},
		Missing: []string{"07.01.2025"},
	}

	result, err := env.srv.handleListEntries(ctx, callToolReq("abacus_list_entries", nil))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out struct {
		Month   string `json:"month"`
		Entries []struct {
			Date    string `json:"date"`
			Project string `json:"project"`
		} `json:"entries"`
		MissingDays []string `json:"missingDays"`
	}
	resultJSON(t, result, &out)
	assert.Equal(t, "01.2025", out.Month)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "06.01.2025", out.Entries[0].Date)
	assert.Equal(t, []string{"07.01.2025"}, out.MissingDays)
}

func TestHandleListEntries_MonthArgument(t *testing.T) {
	env := newTestEnv(t)
	env.reader.listing = &timesheet.MonthListing{}

	result, err := env.srv.handleListEntries(ctx, callToolReq("abacus_list_entries", map[string]any{"month": "12.2024"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, env.reader.listedMonths, 1)
	assert.Equal(t, dates.Month{Year: 2024, Month: time.December}, env.reader.listedMonths[0])
	assert.Contains(t, resultText(t, result), `"missingDays":[]`)
}

func TestHandleListEntries_Errors(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.srv.handleListEntries(ctx, callToolReq("abacus_list_entries", map[string]any{"month": "2024-12"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, env.reader.listedMonths)

	env.reader.err = errors.New("session expired")
	result, err = env.srv.handleListEntries(ctx, callToolReq("abacus_list_entries", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "session expired")
}

func TestHandleStatus(t *testing.T) {
	env := newTestEnv(t)
	env.reader.report = &timesheet.StatusReport{
		Week:      2,
		Monday:    time.Date(2025, time.January, 6, 0, 0, 0, 0, time.Local),
		Friday:    time.Date(2025, time.January, 10, 0, 0, 0, 0, time.Local),
		Weekly:    models.WeeklyReport{Worked: 32, Target: 40, Difference: -8},
		Remaining: 8,
		Saldo:     &models.SaldoData{Overtime: 12.5},
	}

	for _, arg := range []string{"2025-01-08", "08.01.2025"} {
		result, err := env.srv.handleStatus(ctx, callToolReq("abacus_status", map[string]any{"date": arg}))
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		var out map[string]any
		resultJSON(t, result, &out)
		assert.Equal(t, float64(2), out["week"])
		assert.Equal(t, "06.01.2025", out["monday"])
		assert.Equal(t, []any{}, out["missingDays"])
	}
	require.Len(t, env.reader.statusDates, 2)
	assert.Equal(t, env.reader.statusDates[0], env.reader.statusDates[1])
}

func TestHandleStatus_DefaultsToToday(t *testing.T) {
	env := newTestEnv(t)
	env.reader.report = &timesheet.StatusReport{}

	_, err := env.srv.handleStatus(ctx, callToolReq("abacus_status", nil))
	require.NoError(t, err)
	require.Len(t, env.reader.statusDates, 1)
	assert.Equal(t, dates.Day(friday), env.reader.statusDates[0])
}

func TestHandleStatus_BadDate(t *testing.T) {
	env := newTestEnv(t)
	result, err := env.srv.handleStatus(ctx, callToolReq("abacus_status", map[string]any{"date": "tomorrow"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleAliases(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.srv.handleAliases(ctx, callToolReq("abacus_aliases", nil))
	require.NoError(t, err)
	var out map[string]map[string]string
	resultJSON(t, result, &out)
	assert.Equal(t, "71100000001", out["project"]["internal"])
	assert.Equal(t, "1000", out["service-type"]["dev"])

	result, err = env.srv.handleAliases(ctx, callToolReq("abacus_aliases", map[string]any{"kind": "st"}))
	require.NoError(t, err)
	out = nil
	resultJSON(t, result, &out)
	assert.NotContains(t, out, "project")

	result, err = env.srv.handleAliases(ctx, callToolReq("abacus_aliases", map[string]any{"kind": "x"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleHistory(t *testing.T) {
	env := newTestEnv(t)
	env.store.bookings = []*models.Booking{{
		ID: "01J", Action: models.BookingCreated, Date: "2025-01-08", Project: "71100000001",
		Hours: "8", CreatedAt: friday,
	}}

	result, err := env.srv.handleHistory(ctx, callToolReq("abacus_history", map[string]any{"action": "created", "limit": 5}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out []map[string]string
	resultJSON(t, result, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "created", out[0]["action"])
	assert.Equal(t, models.BookingCreated, env.store.lastFilter.Action)
	assert.Equal(t, 5, env.store.lastFilter.Limit)

	env.store.listErr = errors.New("disk full")
	result, err = env.srv.handleHistory(ctx, callToolReq("abacus_history", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
