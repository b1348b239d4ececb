package page

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joescharf/abacus/internal/models"
	"github.com/joescharf/abacus/internal/vaadin"
)

var (
	hoursJunk     = regexp.MustCompile(`[^\d.,-]`)
	leadingNumber = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)
)

// ParseHours normalises a locale-formatted hours value such as "8,50 STD"
// or "-5.79". Only the first comma is treated as the decimal separator.
// Unparseable input yields 0.
func ParseHours(s string) float64 {
	cleaned := strings.Replace(hoursJunk.ReplaceAllString(s, ""), ",", ".", 1)
	v, err := strconv.ParseFloat(leadingNumber.FindString(cleaned), 64)
	if err != nil {
		return 0
	}
	return v
}

// OpenWeeklyReport switches to the weekly report page.
func (n *Navigator) OpenWeeklyReport(ctx context.Context) error {
	if err := n.require("open weekly report", func(s State) bool {
		return s == StateMenuReady || s == StateWeeklyReport || gridVisible(s)
	}); err != nil {
		return err
	}
	if err := n.expandMenu(ctx); err != nil {
		return err
	}
	n.step("Reading time report...")
	if err := vaadin.Click(ctx, n.s, WeeklyReportLink, "weekly report link"); err != nil {
		return err
	}
	if err := n.idle(ctx); err != nil {
		return err
	}
	n.rerender()
	n.view = ViewNone
	return n.move(StateWeeklyReport)
}

// weeklyTotalsScript collects the total column of the report grid. The
// grid is a flat list of single-cell layouts, eight per row: label, five
// weekdays, total and a spacer. Rows whose first weekday and total are
// numeric are value rows; the first three are worked, target and
// difference regardless of display language.
var weeklyTotalsScript = vaadin.Script("weekly-totals", fmt.Sprintf(`(() => {
  const content = document.querySelector(%s);
  if (!content) return null;
  const texts = Array.from(content.querySelectorAll("div.va-flex-layout")).map((el) => (el.textContent || "").trim());
  const num = /^-?\d+\.\d{2}$/;
  const totals = [];
  for (let i = 0; i + 6 < texts.length; i++) {
    if (texts[i] && !num.test(texts[i]) && num.test(texts[i + 1]) && num.test(texts[i + 6])) {
      totals.push(texts[i + 6]);
    }
  }
  return totals.slice(0, 3);
})()`, vaadin.JSString(ReportContent)))

func panelValuesScript(panel string) string {
	return vaadin.Script("panel-values", fmt.Sprintf(`(() => {
  const panel = document.querySelector(%s);
  if (!panel) return null;
  const out = [];
  for (const row of panel.querySelectorAll("vaadin-vertical-layout > vaadin-horizontal-layout")) {
    const labels = row.querySelectorAll("div.va-label");
    if (labels.length >= 2) out.push((labels[labels.length - 1].textContent || "").trim() || "0");
  }
  return out;
})()`, vaadin.JSString(panel)))
}

func (n *Navigator) readStrings(ctx context.Context, script, what string) ([]string, error) {
	if err := n.require("read "+what, func(s State) bool { return s == StateWeeklyReport }); err != nil {
		return nil, err
	}
	var vals []string
	if err := n.s.Eval(ctx, script, &vals); err != nil {
		return nil, fmt.Errorf("read %s: %w", what, err)
	}
	return vals, nil
}

// ReadWeeklyTotals returns nil when the report grid is not shown.
func (n *Navigator) ReadWeeklyTotals(ctx context.Context) (*models.WeeklyReport, error) {
	vals, err := n.readStrings(ctx, weeklyTotalsScript, "weekly totals")
	if err != nil || len(vals) < 2 {
		return nil, err
	}
	r := &models.WeeklyReport{Worked: ParseHours(vals[0]), Target: ParseHours(vals[1])}
	if len(vals) >= 3 {
		r.Difference = ParseHours(vals[2])
	}
	return r, nil
}

// ReadOvertimeBalance returns nil when the balance panel is absent.
func (n *Navigator) ReadOvertimeBalance(ctx context.Context) (*models.SaldoData, error) {
	vals, err := n.readStrings(ctx, panelValuesScript(OvertimePanel), "overtime balance")
	if err != nil || len(vals) < 2 {
		return nil, err
	}
	d := &models.SaldoData{Overtime: ParseHours(vals[0]), ExtraTime: ParseHours(vals[1])}
	if len(vals) >= 3 {
		d.Total = ParseHours(vals[2])
	}
	return d, nil
}

// ReadVacationBalance returns nil when the vacation panel is absent or
// incomplete.
func (n *Navigator) ReadVacationBalance(ctx context.Context) (*models.VacationData, error) {
	vals, err := n.readStrings(ctx, panelValuesScript(VacationPanel), "vacation balance")
	if err != nil || len(vals) < 5 {
		return nil, err
	}
	return &models.VacationData{
		Entitlement:        ParseHours(vals[0]),
		Used:               ParseHours(vals[1]),
		Remaining:          ParseHours(vals[2]),
		PlannedByYearEnd:   ParseHours(vals[3]),
		RemainingByYearEnd: ParseHours(vals[4]),
	}, nil
}

// UILanguage is what the portal reveals about its display language.
type UILanguage struct {
	Lang     string `json:"lang"`
	NavTitle string `json:"navTitle"`
}

var uiLanguageScript = vaadin.Script("ui-language", fmt.Sprintf(`(() => {
  const link = document.querySelector(%s);
  return {
    lang: (document.documentElement.lang || "").toLowerCase(),
    navTitle: link ? link.getAttribute("title") || "" : "",
  };
})()`, vaadin.JSString(EntriesLink)))

// DetectLanguage reads the document language and the services link title.
func (n *Navigator) DetectLanguage(ctx context.Context) (UILanguage, error) {
	var l UILanguage
	if err := n.s.Eval(ctx, uiLanguageScript, &l); err != nil {
		return l, fmt.Errorf("detect UI language: %w", err)
	}
	return l, nil
}
