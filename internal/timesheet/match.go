package timesheet

import (
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/page"
)

// MatchesProject reports whether a grid project label refers to project id.
// The id has to appear as a whole token: "71100000001 – Internal" matches
// "71100000001" but not "711".
func MatchesProject(label, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	for from := 0; from < len(label); {
		i := strings.Index(label[from:], id)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(id)
		if tokenEdge(label[:start], true) && tokenEdge(label[end:], false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(label[start:])
		from = start + size
	}
	return false
}

// tokenEdge reports whether the text adjacent to a match does not continue
// the token: empty, or a rune that is neither a letter nor a digit.
func tokenEdge(s string, before bool) bool {
	if s == "" {
		return true
	}
	var r rune
	if before {
		r, _ = utf8.DecodeLastRuneInString(s)
	} else {
		r, _ = utf8.DecodeRuneInString(s)
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// matching returns the rows booked on day for project, in grid order.
func matching(rows []page.Row, day time.Time, project string) []page.Row {
	want := dates.Display(day)
	var out []page.Row
	for _, r := range rows {
		if r.Date == want && MatchesProject(r.Project, project) {
			out = append(out, r)
		}
	}
	return out
}

// descending orders row references for deletion: highest index first, so
// every reference still to be used stays below the rows already removed.
// Duplicate references are dropped.
func descending(refs []page.RowRef) []page.RowRef {
	out := slices.Clone(refs)
	slices.SortFunc(out, func(a, b page.RowRef) int { return b.Index - a.Index })
	return slices.CompactFunc(out, func(a, b page.RowRef) bool { return a == b })
}

// firstToken returns the leading identifier of a label such as
// "71100000001 – Internal".
func firstToken(label string) string {
	f := strings.Fields(label)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// shortName returns the alias whose id the label refers to, else the
// label's leading identifier.
func (s *Service) shortName(k aliases.Kind, label string) string {
	if s.Aliases != nil {
		for _, p := range s.Aliases.List(k) {
			if MatchesProject(label, p.ID) {
				return p.Alias
			}
		}
	}
	if t := firstToken(label); t != "" {
		return t
	}
	return label
}

// hoursValue strips the unit suffix from a grid hours cell: "8,50 STD"
// becomes "8,50".
func hoursValue(cell string) string {
	return firstToken(cell)
}
