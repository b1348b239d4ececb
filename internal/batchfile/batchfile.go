// Package batchfile reads batch import files (JSON or CSV) and writes the
// editable templates produced by "time batch --generate".
package batchfile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/dates"
	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/session"
)

// DefaultServiceType is used for rows that leave the service type empty.
const DefaultServiceType = "1435"

// Format identifies a batch file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrInvalidFormat is returned for unsupported extensions and malformed
// documents.
var ErrInvalidFormat = errors.New("invalid file format, expected .json or .csv")

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", ErrInvalidFormat
}

// Options controls parsing.
type Options struct {
	// IncludeWeekends keeps Saturday and Sunday rows.
	IncludeWeekends bool
	// DefaultServiceType replaces empty service types; DefaultServiceType
	// when unset.
	DefaultServiceType string
	// Aliases resolves project and service type aliases when set.
	Aliases *aliases.Set
}

// Result is the outcome of parsing a batch file.
type Result struct {
	Entries []models.TimeEntry
	// Weekends lists the dates dropped because they fall on a weekend.
	Weekends []time.Time
}

// row is one record as written in a batch file.
type row struct {
	Date        string     `json:"date"`
	Project     flexString `json:"project"`
	ServiceType flexString `json:"serviceType"`
	Hours       flexFloat  `json:"hours"`
	Text        string     `json:"text"`
}

type jsonRow struct {
	row
	Leistungsart flexString `json:"leistungsart"`
	Description  string     `json:"description"`
}

// ParseFile reads and parses the batch file at path.
func ParseFile(path string, opts Options) (*Result, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, format, opts)
}

// Parse decodes rows from r and converts them to entries.
func Parse(r io.Reader, format Format, opts Options) (*Result, error) {
	var rows []row
	var err error
	switch format {
	case FormatJSON:
		rows, err = decodeJSON(r)
	case FormatCSV:
		rows, err = decodeCSV(r)
	default:
		err = ErrInvalidFormat
	}
	if err != nil {
		return nil, err
	}

	serviceDefault := opts.DefaultServiceType
	if serviceDefault == "" {
		serviceDefault = DefaultServiceType
	}

	res := &Result{}
	for i, rec := range rows {
		date, err := dates.ParseISO(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if !opts.IncludeWeekends && dates.IsWeekend(date) {
			res.Weekends = append(res.Weekends, date)
			continue
		}
		e := models.TimeEntry{
			Project:     string(rec.Project),
			ServiceType: string(rec.ServiceType),
			Hours:       float64(rec.Hours),
			Date:        date,
			Description: rec.Text,
		}
		if e.ServiceType == "" {
			e.ServiceType = serviceDefault
		}
		if opts.Aliases != nil {
			e.Project = opts.Aliases.Resolve(aliases.KindProject, e.Project)
			e.ServiceType = opts.Aliases.Resolve(aliases.KindServiceType, e.ServiceType)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, rec.Date, err)
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func decodeJSON(r io.Reader) ([]row, error) {
	var raw []jsonRow
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	rows := make([]row, 0, len(raw))
	for _, jr := range raw {
		rec := jr.row
		if rec.ServiceType == "" {
			rec.ServiceType = jr.Leistungsart
		}
		if rec.Text == "" {
			rec.Text = jr.Description
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func decodeCSV(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(records) < 2 {
		return nil, ErrInvalidFormat
	}

	col := make(map[string]int)
	for i, h := range records[0] {
		col[strings.TrimSpace(h)] = i
	}
	field := func(rec []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		var hours flexFloat
		if h := field(rec, "hours"); h != "" {
			v, err := strconv.ParseFloat(strings.Replace(h, ",", ".", 1), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid hours %q: %w", h, err)
			}
			hours = flexFloat(v)
		}
		rows = append(rows, row{
			Date:        field(rec, "date"),
			Project:     flexString(field(rec, "project")),
			ServiceType: flexString(field(rec, "serviceType", "leistungsart")),
			Hours:       hours,
			Text:        field(rec, "text", "description"),
		})
	}
	return rows, nil
}

// TemplateRow is one generated template line.
type TemplateRow struct {
	Date        string  `json:"date"`
	Project     string  `json:"project"`
	ServiceType string  `json:"serviceType"`
	Hours       float64 `json:"hours"`
	Text        string  `json:"text"`
}

// WriteTemplate writes rows as an indented JSON array with a trailing
// newline.
func WriteTemplate(path string, rows []TemplateRow) error {
	if rows == nil {
		rows = []TemplateRow{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	return session.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// flexString accepts JSON strings and numbers (project ids are often
// written unquoted).
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts JSON numbers and numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(str), ",", ".", 1), 64)
	if err != nil {
		return fmt.Errorf("invalid hours %q", str)
	}
	*f = flexFloat(v)
	return nil
}
