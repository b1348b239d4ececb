package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/cache"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/i18n"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/store"
	"github.com/joescharf/abacus/internal/timesheet"
)

// Reader is the read side of the time-entry service.
type Reader interface {
	List(ctx context.Context, month dates.Month) (*timesheet.MonthListing, error)
	Status(ctx context.Context, date time.Time) (*timesheet.StatusReport, error)
}

// Server exposes the read-only abacus operations as MCP tools.
type Server struct {
	svc     Reader
	cache   *cache.Cache
	aliases *aliases.Set
	journal store.Store
	loc     *i18n.Localizer
	version string

	// now defaults to time.Now.
	now func() time.Time
}

// NewServer creates the MCP server wrapper. journal may be nil, which
// leaves out the history tool.
func NewServer(svc Reader, c *cache.Cache, a *aliases.Set, journal store.Store, loc *i18n.Localizer, version string) *Server {
	return &Server{
		svc:     svc,
		cache:   c,
		aliases: a,
		journal: journal,
		loc:     loc,
		version: version,
		now:     time.Now,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("abacus", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.summaryTool())
	srv.AddTool(s.listEntriesTool())
	srv.AddTool(s.statusTool())
	srv.AddTool(s.aliasesTool())
	if s.journal != nil {
		srv.AddTool(s.historyTool())
	}
	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal %s: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// abacus_summary
func (s *Server) summaryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("abacus_summary",
		mcp.WithDescription("Return the cached weekly summary without opening the portal: worked and target hours, remaining hours, missing days, overtime and vacation balances. 'current' is false when the cache belongs to an earlier week; run abacus_status to refresh it."),
	)
	return tool, s.handleSummary
}

func (s *Server) handleSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sc, err := s.cache.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read status cache: %v", err)), nil
	}
	if sc == nil {
		return mcp.NewToolResultError("no status cached yet; call abacus_status first"), nil
	}
	now := s.now()
	return jsonResult(map[string]any{
		"current": cache.IsCurrent(sc, now),
		"lines":   timesheet.SummaryLines(s.loc, sc, now),
		"cache":   sc,
	}, "summary")
}

// abacus_list_entries
func (s *Server) listEntriesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("abacus_list_entries",
		mcp.WithDescription("List the time entries booked in a month, with the weekdays that have no entry. Opens the portal in a headless browser, which takes a few seconds."),
		mcp.WithString("month", mcp.Description("Month as MM.YYYY; defaults to the current month")),
	)
	return tool, s.handleListEntries
}

type entryOut struct {
	Date        string `json:"date"`
	Project     string `json:"project"`
	ServiceType string `json:"serviceType"`
	Hours       string `json:"hours"`
	Text        string `json:"text"`
	Status      string `json:"status"`
}

func toEntries(in []models.ExistingEntry) []entryOut {
	out := make([]entryOut, len(in))
	for i, e := range in {
		out[i] = entryOut{
			Date:        e.Date,
			Project:     e.Project,
			ServiceType: e.ServiceType,
			Hours:       e.Hours,
			Text:        e.Text,
			Status:      e.Status,
		}
	}
	return out
}

func (s *Server) handleListEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month := dates.MonthOf(s.now())
	if arg := request.GetString("month", ""); arg != "" {
		m, err := dates.ParseMonth(arg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		month = m
	}

	l, err := s.svc.List(ctx, month)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list entries: %v", err)), nil
	}
	missing := l.Missing
	if missing == nil {
		missing = []string{}
	}
	return jsonResult(map[string]any{
		"month":       month.String(),
		"entries":     toEntries(l.Entries),
		"missingDays": missing,
	}, "entries")
}

// abacus_status
func (s *Server) statusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("abacus_status",
		mcp.WithDescription("Read the weekly time report for the week containing a date: worked, target and difference, missing days, overtime and vacation balances. Refreshes the cached summary when the date is in the current month."),
		mcp.WithString("date", mcp.Description("Any day of the week, as YYYY-MM-DD or DD.MM.YYYY; defaults to today")),
	)
	return tool, s.handleStatus
}

func parseDate(s string) (time.Time, error) {
	if strings.Contains(s, ".") {
		return dates.ParseDisplay(s)
	}
	return dates.ParseISO(s)
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := dates.Day(s.now())
	if arg := request.GetString("date", ""); arg != "" {
		d, err := parseDate(arg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		date = d
	}

	r, err := s.svc.Status(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read status: %v", err)), nil
	}
	missing := r.MissingDays
	if missing == nil {
		missing = []models.MissingDay{}
	}
	return jsonResult(map[string]any{
		"week":        r.Week,
		"monday":      dates.Display(r.Monday),
		"friday":      dates.Display(r.Friday),
		"weekly":      r.Weekly,
		"remaining":   r.Remaining,
		"missingDays": missing,
		"saldo":       r.Saldo,
		"vacation":    r.Vacation,
	}, "status")
}

// abacus_aliases
func (s *Server) aliasesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("abacus_aliases",
		mcp.WithDescription("List the configured project and service type aliases as alias to id maps."),
		mcp.WithString("kind", mcp.Description("Restrict to one table: project or service-type")),
	)
	return tool, s.handleAliases
}

func (s *Server) handleAliases(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kinds := []aliases.Kind{aliases.KindProject, aliases.KindServiceType}
	if arg := request.GetString("kind", ""); arg != "" {
		k, err := aliases.ParseKind(arg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kinds = []aliases.Kind{k}
	}

	out := map[string]map[string]string{}
	for _, k := range kinds {
		table := map[string]string{}
		for _, p := range s.aliases.List(k) {
			table[p.Alias] = p.ID
		}
		out[string(k)] = table
	}
	return jsonResult(out, "aliases")
}

// abacus_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("abacus_history",
		mcp.WithDescription("List bookings this machine made through abacus, newest first: created, updated, deleted and skipped entries."),
		mcp.WithString("action", mcp.Description("Filter by action: created, updated, deleted, skipped")),
		mcp.WithString("project", mcp.Description("Filter by project id")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of bookings (default 20)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.BookingFilter{
		Action:  models.BookingAction(request.GetString("action", "")),
		Project: request.GetString("project", ""),
		Limit:   request.GetInt("limit", 20),
	}
	bookings, err := s.journal.ListBookings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list bookings: %v", err)), nil
	}

	type bookingOut struct {
		ID          string `json:"id"`
		Action      string `json:"action"`
		Date        string `json:"date"`
		Project     string `json:"project"`
		ServiceType string `json:"serviceType"`
		Hours       string `json:"hours"`
		Text        string `json:"text"`
		RecordedAt  string `json:"recordedAt"`
	}
	out := make([]bookingOut, len(bookings))
	for i, b := range bookings {
		out[i] = bookingOut{
			ID:          b.ID,
			Action:      string(b.Action),
			Date:        b.Date,
			Project:     b.Project,
			ServiceType: b.ServiceType,
			Hours:       b.Hours,
			Text:        b.Text,
			RecordedAt:  b.CreatedAt.Format(time.RFC3339),
		}
	}
	return jsonResult(out, "bookings")
}
