package captcha

import (
	"context"

	"github.com/joescharf/abacus/internal/browser"
	"github.com/joescharf/abacus/internal/browser/browsertest"
)

type launcherFunc func(ctx context.Context, headless bool) (*browsertest.Tab, error)

func (f launcherFunc) Launch(ctx context.Context, headless bool) (browser.Tab, error) {
	tab, err := f(ctx, headless)
	if err != nil {
		return nil, err
	}
	return tab, nil
}
