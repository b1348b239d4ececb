package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/joescharf/abacus/internal/vaadin"
)

var keyCodes = map[vaadin.Key]string{
	vaadin.KeyEnter:     kb.Enter,
	vaadin.KeyTab:       kb.Tab,
	vaadin.KeyBackspace: kb.Backspace,
	vaadin.KeyEscape:    kb.Escape,
}

// deepFind resolves a selector in the document and then inside every open
// shadow root, depth first.
const deepFind = `const deepFind = (root, sel) => {
  const hit = root.querySelector(sel);
  if (hit) return hit;
  for (const n of root.querySelectorAll("*")) {
    if (n.shadowRoot) {
      const f = deepFind(n.shadowRoot, sel);
      if (f) return f;
    }
  }
  return null;
};`

func queryScript(selector string) string {
	return vaadin.Script("query", fmt.Sprintf(`(() => {
  %s
  const el = deepFind(document, %s);
  if (!el) return null;
  const st = getComputedStyle(el);
  let r = el.getBoundingClientRect();
  const visible = r.width > 0 && r.height > 0 && st.visibility !== "hidden" && st.display !== "none";
  if (visible) {
    el.scrollIntoView({ block: "nearest", inline: "nearest" });
    r = el.getBoundingClientRect();
  }
  const attrs = {};
  for (const a of el.attributes) attrs[a.name] = a.value;
  return { visible, x: r.x, y: r.y, width: r.width, height: r.height, attrs };
})()`, deepFind, vaadin.JSString(selector)))
}

func focusScript(selector string, selectAll bool) string {
	return vaadin.Script("focus", fmt.Sprintf(`(() => {
  %s
  const el = deepFind(document, %s);
  if (!el) return false;
  el.focus();
  if (%t && typeof el.select === "function") el.select();
  return true;
})()`, deepFind, vaadin.JSString(selector), selectAll))
}

func insertText(text string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return input.InsertText(text).Do(ctx)
	})
}
