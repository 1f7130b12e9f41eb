package raster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        html, body { margin: 0; padding: 0; background: transparent; }
        svg { display: block; }
    </style>
</head>
<body>
%s
</body>
</html>`

// BrowserEngine renders the element in headless Chromium via playwright and
// screenshots it with the device scale factor set to opts.Scale.
// The browser is launched lazily on first use and shared between renders.
type BrowserEngine struct {
	enabled bool

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewBrowserEngine creates a browser engine. A disabled engine reports
// itself unavailable so a Chain skips it.
func NewBrowserEngine(enabled bool) *BrowserEngine {
	return &BrowserEngine{enabled: enabled}
}

// Name returns the name of this engine.
func (e *BrowserEngine) Name() string {
	return EngineBrowser
}

// Available reports whether the engine is enabled; the driver is installed lazily.
func (e *BrowserEngine) Available() bool {
	return e.enabled
}

// Render loads the markup into a fresh page and screenshots the <svg> element.
func (e *BrowserEngine) Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	if !e.enabled {
		return nil, NewConverterError(e.Name(), "convert", fmt.Errorf("browser engine disabled"))
	}

	browser, err := e.launch()
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		DeviceScaleFactor: playwright.Float(opts.Scale),
	})
	if err != nil {
		return nil, NewConverterError(e.Name(), "create page", err)
	}
	defer page.Close()

	if err := page.SetContent(fmt.Sprintf(pageTemplate, m.Markup()), playwright.PageSetContentOptions{
		Timeout: playwrightTimeout(ctx),
	}); err != nil {
		return nil, NewConverterError(e.Name(), "set content", err)
	}

	shot := playwright.LocatorScreenshotOptions{
		Type:           playwright.ScreenshotTypePng,
		OmitBackground: playwright.Bool(true),
	}
	shot.Timeout = playwrightTimeout(ctx)

	data, err := page.Locator("svg").First().Screenshot(shot)
	if err != nil {
		return nil, NewConverterError(e.Name(), "screenshot", err)
	}
	return data, nil
}

// playwrightTimeout converts the context deadline to playwright's millisecond
// timeout. Playwright reads 0 as "no timeout", so an expired or nearly
// expired deadline becomes 1ms. Nil keeps playwright's default.
func playwrightTimeout(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	return playwright.Float(float64(max(1, time.Until(deadline).Milliseconds())))
}

func (e *BrowserEngine) launch() (playwright.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	}); err != nil {
		return nil, NewConverterError(e.Name(), "install browsers", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, NewConverterError(e.Name(), "start playwright", err)
	}
	browser, err := pw.Chromium.Launch()
	if err != nil {
		pw.Stop()
		return nil, NewConverterError(e.Name(), "launch browser", err)
	}
	e.pw, e.browser = pw, browser
	return browser, nil
}

// Close shuts down the browser and the playwright driver.
func (e *BrowserEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			return err
		}
		e.browser = nil
	}
	if e.pw != nil {
		if err := e.pw.Stop(); err != nil {
			return err
		}
		e.pw = nil
	}
	return nil
}
