package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/aliases"
)

func TestLine_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("  u \n"), &out)

	answer, err := p.Ask("Update? [u/n] ")
	require.NoError(t, err)
	assert.Equal(t, "u", answer)
	assert.Equal(t, "Update? [u/n] ", out.String())
}

func TestLine_AskWithoutTrailingNewline(t *testing.T) {
	p := NewLine(strings.NewReader("y"), &bytes.Buffer{})
	answer, err := p.Ask("? ")
	require.NoError(t, err)
	assert.Equal(t, "y", answer)
}

func TestLine_AskClosedInput(t *testing.T) {
	p := NewLine(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Ask("? ")
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestLine_Select(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("2\n"), &out)
	v, err := p.Select("Select project:", []Option{
		{Label: "dev", Value: "711"},
		{Label: "ops", Value: "712"},
	})
	require.NoError(t, err)
	assert.Equal(t, "712", v)
	assert.Contains(t, out.String(), "2) ops")
}

func TestLine_SelectOutOfRange(t *testing.T) {
	p := NewLine(strings.NewReader("3\n"), &bytes.Buffer{})
	_, err := p.Select("x", []Option{{Label: "a", Value: "a"}})
	assert.Error(t, err)
}

func TestLine_MultiSelect(t *testing.T) {
	p := NewLine(strings.NewReader("3, 1 3\n"), &bytes.Buffer{})
	got, err := p.MultiSelect("x", make([]Option, 4))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, got)
}

func TestParseSelection(t *testing.T) {
	got, err := ParseSelection("a", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	got, err = ParseSelection("", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseSelection("0", 3)
	assert.Error(t, err)
	_, err = ParseSelection("x", 3)
	assert.Error(t, err)
}

func TestLine_WaitEnter(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("\n"), &out)
	require.NoError(t, p.WaitEnter("Press Enter..."))
	assert.Equal(t, "Press Enter...", out.String())
}

func TestSelectAlias(t *testing.T) {
	var out bytes.Buffer
	_, err := SelectAlias(NewLine(strings.NewReader(""), &out), &out, aliases.KindProject, nil)
	assert.ErrorContains(t, err, "no project aliases configured")

	id, err := SelectAlias(NewLine(strings.NewReader(""), &out), &out, aliases.KindProject,
		[]aliases.Pair{{Alias: "dev", ID: "711"}})
	require.NoError(t, err)
	assert.Equal(t, "711", id)

	id, err = SelectAlias(NewLine(strings.NewReader("1\n"), &out), &out, aliases.KindServiceType,
		[]aliases.Pair{{Alias: "meet", ID: "1440"}, {Alias: "prog", ID: "1435"}})
	require.NoError(t, err)
	assert.Equal(t, "1440", id)
}
