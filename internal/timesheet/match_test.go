package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/abacus/internal/aliases"
	"github.com/joescharf/abacus/internal/page"
	"github.com/joescharf/abacus/internal/page/pagetest"
)

func TestMatchesProject(t *testing.T) {
	tests := []struct {
		label, id string
		want      bool
	}{
		{"71100000001 – Internal", "71100000001", true},
		{"71100000001 – Internal", "711", false},
		{"Internal (71100000001)", "71100000001", true},
		{"P-4711 Support", "4711", true},
		{"P4711 Support", "4711", false},
		{"47110 Support", "4711", false},
		{"4711-47110", "47110", true},
		{"Ünterhalt 12", "12", true},
		{"anything", "", false},
		{"", "711", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesProject(tt.label, tt.id), "%q in %q", tt.id, tt.label)
	}
}

func TestDescending(t *testing.T) {
	refs := []page.RowRef{{Generation: 2, Index: 3}, {Generation: 2, Index: 5}, {Generation: 2, Index: 3}, {Generation: 2, Index: 0}}
	got := descending(refs)
	assert.Equal(t, []page.RowRef{{Generation: 2, Index: 5}, {Generation: 2, Index: 3}, {Generation: 2, Index: 0}}, got)
	assert.Equal(t, 3, refs[0].Index, "input untouched")
}

func TestShortName(t *testing.T) {
	f := newFixture(t, pagetest.New())
	assert.Equal(t, "internal", f.svc.shortName(aliases.KindProject, "71100000001 – Internal"))
	assert.Equal(t, "72200000002", f.svc.shortName(aliases.KindProject, "72200000002 – Customer"))
	assert.Equal(t, "dev", f.svc.shortName(aliases.KindServiceType, "1000 – Development"))
}

func TestHoursValue(t *testing.T) {
	assert.Equal(t, "8,50", hoursValue("8,50 STD"))
	assert.Equal(t, "8.00", hoursValue("8.00"))
	assert.Equal(t, "", hoursValue(""))
}
