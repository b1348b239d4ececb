package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would create %s", "file")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create file")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would create %s", "file")
	assert.Empty(t, errOut.String())
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
	assert.NotEmpty(t, Bold("test"))
	assert.NotEmpty(t, Dim("test"))
}

func TestSignedHours(t *testing.T) {
	assert.Contains(t, SignedHours(2.5), "+2.50")
	assert.Contains(t, SignedHours(-5.79), "-5.79")
	assert.Equal(t, "0.00", SignedHours(0))
}

func TestStep(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Step("Reading entries %d", 3)
	assert.Contains(t, errOut.String(), "Reading entries 3")

	errOut.Reset()
	u.Quiet = true
	u.Step("hidden")
	assert.Empty(t, errOut.String())
}

func TestPrintln(t *testing.T) {
	u, out, _ := newTestUI()
	u.Println("  %s: %d", "worked", 8)
	assert.Equal(t, "  worked: 8\n", out.String())
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Date", "Project"})
	require.NotNil(t, table)

	table.Append([]string{"06.01.2025", "71100000001"})
	table.Append([]string{"07.01.2025", "internal"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "71100000001"), "table output should contain project ids")
	assert.True(t, strings.Contains(result, "internal") || strings.Contains(result, "INTERNAL"),
		"table output should contain project names")
}
