package vaadin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/vaadin"
	"github.com/joescharf/abacus/internal/vaadin/vaadintest"
)

func TestScriptName(t *testing.T) {
	assert.Equal(t, "grid-rows", vaadin.ScriptName(vaadin.Script("grid-rows", "1+1")))
	assert.Equal(t, "", vaadin.ScriptName("1+1"))
	assert.Equal(t, "", vaadin.ScriptName("/* unterminated"))
}

func TestJSString(t *testing.T) {
	assert.Equal(t, `"a\"b"`, vaadin.JSString(`a"b`))
}

func TestWaitForIdle_PollsUntilIdle(t *testing.T) {
	s := vaadintest.New()
	busy := 3
	s.Handle("vaadin-idle", func(string) (any, error) {
		busy--
		return busy <= 0, nil
	})

	require.NoError(t, vaadin.WaitForIdle(context.Background(), s, time.Second))
	assert.Equal(t, 2*vaadin.PollInterval, s.Slept)
}

func TestWaitForIdle_Timeout(t *testing.T) {
	s := vaadintest.New()
	s.Handle("vaadin-idle", func(string) (any, error) { return false, nil })

	err := vaadin.WaitForIdle(context.Background(), s, 500*time.Millisecond)
	var te *vaadin.TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500*time.Millisecond, te.Timeout)
	assert.Contains(t, err.Error(), "server round-trips")
}

func TestWaitVisible_AppearsLater(t *testing.T) {
	s := vaadintest.New()
	polls := 0
	s.OnSleep(func(time.Duration) {
		polls++
		if polls == 2 {
			s.Show("#menu", map[string]string{"aria-expanded": "false"})
		}
	})

	el, err := vaadin.WaitVisible(context.Background(), s, "#menu", "menu", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "false", el.Attrs["aria-expanded"])
}

func TestWaitVisible_TimeoutCarriesSelector(t *testing.T) {
	s := vaadintest.New()
	_, err := vaadin.WaitVisible(context.Background(), s, "#missing", "menu", 300*time.Millisecond)
	var te *vaadin.TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "#missing", te.Selector)
}

func TestWaitHidden(t *testing.T) {
	s := vaadintest.New()
	s.Show("#dialog", nil)
	s.OnSleep(func(time.Duration) { s.Hide("#dialog") })
	require.NoError(t, vaadin.WaitHidden(context.Background(), s, "#dialog", "dialog", time.Second))
}

func TestClick_UsesElementCentre(t *testing.T) {
	s := vaadintest.New()
	s.Show("#save", nil)
	clicked := false
	s.OnClick("#save", func() { clicked = true })

	require.NoError(t, vaadin.Click(context.Background(), s, "#save", "save button"))
	assert.True(t, clicked)
	assert.Equal(t, []string{"click #save"}, s.Calls())
}

func TestTypeIntoFilterField_Sequence(t *testing.T) {
	s := vaadintest.New()
	input := vaadin.ComboBoxSelector("ProjNr2") + " input"
	s.Show(input, nil)

	err := vaadin.TypeIntoFilterField(context.Background(), s, "ProjNr2", "71100000001", time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"click " + input,
		"select " + input,
		"key Backspace",
		"type 71100000001",
		"key Enter",
	}, s.Calls())
	assert.Equal(t, vaadin.FilterSettle, s.Slept)
}

func TestSelectItemByPosition(t *testing.T) {
	s := vaadintest.New()
	input := vaadin.ComboBoxSelector("cmbDateRange") + " input"
	item := `vaadin-combo-box-item[aria-posinset="3"]`
	s.Show(input, nil)
	s.OnClick(input, func() { s.Show(item, nil) })

	require.NoError(t, vaadin.SelectItemByPosition(context.Background(), s, "cmbDateRange", 3, time.Second))
	assert.Equal(t, []string{"click " + input, "click " + item}, s.Calls())
	assert.Equal(t, vaadin.MenuSettle, s.Slept)
}

func TestClickGridRow(t *testing.T) {
	s := vaadintest.New()
	s.Handle("grid-row-center", func(script string) (any, error) {
		idx, ok := vaadintest.ScriptIndex(script)
		if !ok || idx > 1 {
			return nil, nil
		}
		return map[string]float64{"x": 50, "y": float64(100 + idx*40)}, nil
	})
	s.Target(50, 140, "row 1")

	require.NoError(t, vaadin.ClickGridRow(context.Background(), s, "vaadin-grid", 1))
	assert.Contains(t, s.Calls(), "click row 1")

	err := vaadin.ClickGridRow(context.Background(), s, "vaadin-grid", 7)
	var nf *vaadin.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 7, nf.RowIndex)
	assert.Equal(t, "grid row 7 not found (vaadin-grid)", err.Error())
}

func TestAttribute(t *testing.T) {
	s := vaadintest.New()
	s.Show("#menu", map[string]string{"aria-expanded": "true"})

	v, ok, err := vaadin.Attribute(context.Background(), s, "#menu", "aria-expanded")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, _, err = vaadin.Attribute(context.Background(), s, "#nope", "x")
	var nf *vaadin.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
