// Package aliases maps short names to project and service type ids.
package aliases

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/session"
)

// Kind selects one of the two alias tables.
type Kind string

const (
	KindProject     Kind = "project"
	KindServiceType Kind = "service-type"
)

// ParseKind accepts the long and short spellings (project|p,
// service-type|st).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "project", "p":
		return KindProject, nil
	case "service-type", "st":
		return KindServiceType, nil
	}
	return "", fmt.Errorf("unknown alias type %q, use \"project\" or \"service-type\"", s)
}

// NotFoundError is returned when removing an alias that does not exist.
type NotFoundError struct {
	Kind  Kind
	Alias string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s alias %q not found", e.Kind, e.Alias)
}

// Pair is one alias and the id it stands for.
type Pair struct {
	Alias string
	ID    string
}

// Set wraps an alias file with lookups.
type Set struct {
	models.AliasFile
}

// Empty returns a Set with no aliases.
func Empty() *Set {
	return &Set{models.AliasFile{Projects: map[string]string{}, ServiceTypes: map[string]string{}}}
}

func (s *Set) table(k Kind) map[string]string {
	if k == KindProject {
		return s.Projects
	}
	return s.ServiceTypes
}

// Resolve returns the id for input, or input itself when it is not an alias.
func (s *Set) Resolve(k Kind, input string) string {
	if id, ok := s.table(k)[input]; ok && id != "" {
		return id
	}
	return input
}

// Reverse returns an alias for id, or id itself when none exists. When
// several aliases map to id, the alphabetically first one wins.
func (s *Set) Reverse(k Kind, id string) string {
	for _, p := range s.List(k) {
		if p.ID == id {
			return p.Alias
		}
	}
	return id
}

// Add sets alias to id, replacing any previous mapping.
func (s *Set) Add(k Kind, alias, id string) {
	s.table(k)[alias] = id
}

// Remove deletes alias.
func (s *Set) Remove(k Kind, alias string) error {
	t := s.table(k)
	if _, ok := t[alias]; !ok {
		return &NotFoundError{Kind: k, Alias: alias}
	}
	delete(t, alias)
	return nil
}

// List returns the aliases of one table sorted by alias.
func (s *Set) List(k Kind) []Pair {
	t := s.table(k)
	pairs := make([]Pair, 0, len(t))
	for a, id := range t {
		pairs = append(pairs, Pair{Alias: a, ID: id})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Alias < pairs[j].Alias })
	return pairs
}

// fileFormat accepts the legacy "leistungsarten" key next to "serviceTypes".
type fileFormat struct {
	Projects       map[string]string `json:"projects"`
	ServiceTypes   map[string]string `json:"serviceTypes"`
	Leistungsarten map[string]string `json:"leistungsarten,omitempty"`
}

// Load reads the alias file at path. A missing file yields an empty Set.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse aliases %s: %w", path, err)
	}
	s := Empty()
	for a, id := range f.Projects {
		s.Projects[a] = id
	}
	for a, id := range f.Leistungsarten {
		s.ServiceTypes[a] = id
	}
	for a, id := range f.ServiceTypes {
		s.ServiceTypes[a] = id
	}
	return s, nil
}

// Save writes the Set to path, dropping the legacy key.
func (s *Set) Save(path string) error {
	data, err := json.MarshalIndent(s.AliasFile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal aliases: %w", err)
	}
	return session.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
