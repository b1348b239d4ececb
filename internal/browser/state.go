package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/vaadin"
)

var localStorageScript = vaadin.Script("local-storage", `(() => {
  const items = [];
  try {
    for (let i = 0; i < localStorage.length; i++) {
      const name = localStorage.key(i);
      items.push({ name, value: localStorage.getItem(name) });
    }
  } catch (e) {}
  return { origin: location.origin, localStorage: items };
})()`)

func captureState(ctx context.Context, c *Chrome) (*session.State, error) {
	var cookies []*network.Cookie
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}

	st := &session.State{Cookies: fromNetworkCookies(cookies)}

	// Keep storage saved for origins this run never visited.
	if c.store.Exists() {
		if prev, err := c.store.Load(); err == nil {
			st.Origins = prev.Origins
		}
	}
	var cur session.Origin
	if err := c.Eval(ctx, localStorageScript, &cur); err == nil {
		st.Origins = mergeOrigin(st.Origins, cur)
	}
	return st, nil
}

// mergeOrigin replaces or appends the storage of one origin. Opaque
// origins such as about:blank are ignored.
func mergeOrigin(origins []session.Origin, o session.Origin) []session.Origin {
	if o.Origin == "" || o.Origin == "null" {
		return origins
	}
	for i := range origins {
		if origins[i].Origin == o.Origin {
			origins[i] = o
			return origins
		}
	}
	return append(origins, o)
}

func fromNetworkCookies(in []*network.Cookie) []session.Cookie {
	out := make([]session.Cookie, 0, len(in))
	for _, c := range in {
		out = append(out, session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

func toCookieParams(in []session.Cookie) []*network.CookieParam {
	out := make([]*network.CookieParam, 0, len(in))
	for _, c := range in {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: network.CookieSameSite(c.SameSite),
		}
		// Session cookies carry -1.
		if c.Expires > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(0, int64(c.Expires*float64(time.Second))))
			p.Expires = &exp
		}
		out = append(out, p)
	}
	return out
}

// storageRestoreScript seeds localStorage for the saved origins before any
// page script runs.
func storageRestoreScript(origins []session.Origin) (string, error) {
	b, err := json.Marshal(origins)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
  const saved = %s;
  for (const o of saved) {
    if (o.origin !== location.origin) continue;
    for (const it of o.localStorage || []) {
      try { localStorage.setItem(it.name, it.value); } catch (e) {}
    }
  }
})();`, b), nil
}

func restoreState(st *session.State) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if len(st.Cookies) > 0 {
			if err := network.SetCookies(toCookieParams(st.Cookies)).Do(ctx); err != nil {
				return fmt.Errorf("restore cookies: %w", err)
			}
		}
		if len(st.Origins) == 0 {
			return nil
		}
		src, err := storageRestoreScript(st.Origins)
		if err != nil {
			return err
		}
		_, err = page.AddScriptToEvaluateOnNewDocument(src).Do(ctx)
		return err
	})
}
