// Package testutil wraps Rod into the per-test browser session the
// regression suite drives: one fresh Chrome, one page, bounded waits.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/cleancity/bugbusters/pkg/config"
	"github.com/cleancity/bugbusters/pkg/testutil/internal"
)

// BrowserConfig configures Chrome launch options and wait windows.
type BrowserConfig struct {
	BaseURL      string        // Prefix for relative routes passed to Navigate
	Headless     bool          // Run in headless mode (default: true)
	ImplicitWait time.Duration // Applied to every element lookup (default: 10s)
	ExplicitWait time.Duration // Default for WaitElement/WaitURL callers (default: 10s)
	PageLoad     time.Duration // Navigation and reload timeout (default: 30s)
}

// DefaultBrowserConfig returns the wait windows the bug reports were reproduced with.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BaseURL:      config.DefaultBaseURL,
		Headless:     true,
		ImplicitWait: 10 * time.Second,
		ExplicitWait: 10 * time.Second,
		PageLoad:     30 * time.Second,
	}
}

// BrowserConfigFrom derives browser settings from the suite configuration.
func BrowserConfigFrom(cfg config.Config) BrowserConfig {
	bc := DefaultBrowserConfig()
	bc.BaseURL = cfg.BaseURL
	bc.Headless = cfg.Headless
	bc.ImplicitWait = cfg.ImplicitWait
	bc.ExplicitWait = cfg.ExplicitWait
	return bc
}

// Session is one browser instance and its single page, scoped to one test.
// Every browser action runs under the explicit wait as its deadline, so a
// stuck page fails the action instead of hanging the test.
type Session struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	clock      internal.Clock
	dialogs    *dialogLog
	stopEvents context.CancelFunc

	baseURL  string
	implicit time.Duration
	explicit time.Duration
	pageLoad time.Duration
}

// NewSession launches a brand-new Chrome and opens a blank page.
// The browser is configured with:
//   - No sandbox (for container compatibility)
//   - No GPU
//   - No first-run or default-browser prompts
//
// JavaScript dialogs are accepted as soon as they open and their text is
// recorded, see Dialogs.
func NewSession(cfg BrowserConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}
	track(l)

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		untrack(l)
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		untrack(l)
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	dialogs := &dialogLog{}
	ctx, stop := context.WithCancel(context.Background())
	go page.Context(ctx).EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		dialogs.add(e.Message)
		_ = proto.PageHandleJavaScriptDialog{Accept: true}.Call(page)
	})()

	explicit := cfg.ExplicitWait
	if explicit <= 0 {
		explicit = DefaultBrowserConfig().ExplicitWait
	}

	return &Session{
		launcher:   l,
		browser:    browser,
		page:       page,
		clock:      internal.MonotonicClock{},
		dialogs:    dialogs,
		stopEvents: stop,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		implicit:   cfg.ImplicitWait,
		explicit:   explicit,
		pageLoad:   cfg.PageLoad,
	}, nil
}

// Page returns the underlying Rod page for operations the session does not cover.
func (s *Session) Page() *rod.Page {
	return s.page
}

// ExplicitWait returns the configured explicit wait window.
func (s *Session) ExplicitWait() time.Duration {
	return s.explicit
}

// URLFor resolves a route like "/login" against the base URL. Absolute URLs
// are returned unchanged.
func (s *Session) URLFor(route string) string {
	if strings.HasPrefix(route, "http://") || strings.HasPrefix(route, "https://") || strings.HasPrefix(route, "about:") {
		return route
	}
	return s.baseURL + route
}

// bounded returns the page with the explicit wait as deadline. Callers
// must CancelTimeout the result.
func (s *Session) bounded() *rod.Page {
	return s.page.Timeout(s.explicit)
}

// Navigate opens a route and waits for the load event.
func (s *Session) Navigate(route string) error {
	if s.page == nil {
		return ErrNoPage
	}
	url := s.URLFor(route)

	p := s.page.Timeout(s.pageLoad)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("page %s did not load: %w", url, err)
	}
	return nil
}

// Reload refreshes the current page and waits for the load event.
func (s *Session) Reload() error {
	if s.page == nil {
		return ErrNoPage
	}
	p := s.page.Timeout(s.pageLoad)
	defer p.CancelTimeout()

	if err := p.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("reloaded page did not load: %w", err)
	}
	return nil
}

// Element finds the first match for a CSS selector, polling up to the
// implicit wait. A selector that never matches yields a timeout error.
func (s *Session) Element(selector string) (*rod.Element, error) {
	return s.WaitElement(selector, s.implicit)
}

// WaitElement finds the first match for a CSS selector within timeout.
// Use IsTimeout on the error to tell "never appeared" from other failures.
func (s *Session) WaitElement(selector string, timeout time.Duration) (*rod.Element, error) {
	if s.page == nil {
		return nil, ErrNoPage
	}
	el, err := s.page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", selector, err)
	}
	// The element inherits the lookup's deadline; detach it.
	return el.CancelTimeout(), nil
}

// withElement looks up selector and runs fn on the match under the
// explicit wait.
func (s *Session) withElement(selector string, fn func(el *rod.Element) error) error {
	el, err := s.Element(selector)
	if err != nil {
		return err
	}
	el = el.Timeout(s.explicit)
	defer el.CancelTimeout()
	return fn(el)
}

// Elements returns every match for a CSS selector. Like Element it polls up
// to the implicit wait, but for at least one match; when nothing appears in
// time the result is empty rather than an error.
func (s *Session) Elements(selector string) (rod.Elements, error) {
	if s.page == nil {
		return nil, ErrNoPage
	}
	els, err := findAll(s.clock, s.implicit, func() (rod.Elements, error) {
		p := s.bounded()
		defer p.CancelTimeout()

		els, err := p.Elements(selector)
		if err != nil {
			return nil, err
		}
		for i, el := range els {
			els[i] = el.CancelTimeout()
		}
		return els, nil
	})
	if err != nil {
		return nil, fmt.Errorf("elements %s: %w", selector, err)
	}
	return els, nil
}

// findAll polls lookup until it yields at least one element. Running out of
// time is not an error unless the last lookup itself failed.
func findAll(clock internal.Clock, timeout time.Duration, lookup func() (rod.Elements, error)) (rod.Elements, error) {
	var found rod.Elements
	var lastErr error
	err := Poll(clock, timeout, DefaultPollInterval, func() (bool, error) {
		els, err := lookup()
		lastErr = err
		if err != nil {
			return false, err
		}
		found = els
		return len(els) > 0, nil
	})
	switch {
	case err == nil:
		return found, nil
	case lastErr == nil:
		return rod.Elements{}, nil
	default:
		return nil, err
	}
}

// Count returns the number of matches for a CSS selector, see Elements.
func (s *Session) Count(selector string) (int, error) {
	els, err := s.Elements(selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// Fill types text into the input matched by selector.
func (s *Session) Fill(selector, text string) error {
	return s.withElement(selector, func(el *rod.Element) error {
		if err := el.Input(text); err != nil {
			return fmt.Errorf("input into %s: %w", selector, err)
		}
		return nil
	})
}

// clearJS empties a form control through the native value setter so that
// framework-controlled inputs observe the change.
const clearJS = `() => {
	const proto = Object.getPrototypeOf(this);
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (desc && desc.set) {
		desc.set.call(this, '');
	} else {
		this.value = '';
	}
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`

// Clear empties the input matched by selector.
func (s *Session) Clear(selector string) error {
	return s.withElement(selector, func(el *rod.Element) error {
		if _, err := el.Eval(clearJS); err != nil {
			return fmt.Errorf("clear %s: %w", selector, err)
		}
		return nil
	})
}

// SelectByText chooses the option of a <select> whose visible text is
// exactly text, surrounding whitespace aside.
func (s *Session) SelectByText(selector, text string) error {
	return s.withElement(selector, func(el *rod.Element) error {
		if err := el.Select([]string{exactText(text)}, true, rod.SelectorTypeRegex); err != nil {
			return fmt.Errorf("select %q in %s: %w", text, selector, err)
		}
		return nil
	})
}

// exactText is a pattern matching text as a whole option label.
func exactText(text string) string {
	return `^\s*` + regexp.QuoteMeta(text) + `\s*$`
}

// Click left-clicks the element matched by selector.
func (s *Session) Click(selector string) error {
	return s.withElement(selector, func(el *rod.Element) error {
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("click %s: %w", selector, err)
		}
		return nil
	})
}

// Submit clicks the form's submit button.
func (s *Session) Submit() error {
	return s.Click(`button[type="submit"]`)
}

// Value returns the current value property of the element matched by selector.
func (s *Session) Value(selector string) (string, error) {
	var value string
	err := s.withElement(selector, func(el *rod.Element) error {
		v, err := ValueOf(el)
		value = v
		return err
	})
	return value, err
}

// ValueOf returns the value property of an element already looked up.
func ValueOf(el *rod.Element) (string, error) {
	v, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("read value: %w", err)
	}
	return v.Str(), nil
}

// Texts returns the rendered text of every match for selector, see Elements.
func (s *Session) Texts(selector string) ([]string, error) {
	els, err := s.Elements(selector)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		bounded := el.Timeout(s.explicit)
		text, err := bounded.Text()
		bounded.CancelTimeout()
		if err != nil {
			return nil, fmt.Errorf("text of %s: %w", selector, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// URL returns the page's current URL from the target info, which stays
// readable while a navigation replaces the JS context.
func (s *Session) URL() (string, error) {
	if s.page == nil {
		return "", ErrNoPage
	}
	p := s.bounded()
	defer p.CancelTimeout()

	info, err := p.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// WaitURL blocks until cond holds for the current URL or timeout elapses.
func (s *Session) WaitURL(cond func(url string) bool, timeout time.Duration) error {
	if s.page == nil {
		return ErrNoPage
	}
	return Poll(s.clock, timeout, DefaultPollInterval, func() (bool, error) {
		url, err := s.URL()
		if err != nil {
			return false, err
		}
		return cond(url), nil
	})
}

// WaitURLChange blocks until the URL differs from from.
func (s *Session) WaitURLChange(from string, timeout time.Duration) error {
	if err := s.WaitURL(func(url string) bool { return url != from }, timeout); err != nil {
		return fmt.Errorf("url did not change from %s: %w", from, err)
	}
	return nil
}

// WaitURLContains blocks until the URL contains substr.
func (s *Session) WaitURLContains(substr string, timeout time.Duration) error {
	if err := s.WaitURL(func(url string) bool { return strings.Contains(url, substr) }, timeout); err != nil {
		return fmt.Errorf("url never contained %q: %w", substr, err)
	}
	return nil
}

// WaitMessage waits for a user-facing message: a JavaScript dialog opened
// after the since mark (see DialogCount), or the text of the first element
// matching selector. The dialog wins when both exist.
func (s *Session) WaitMessage(selector string, since int, timeout time.Duration) (string, error) {
	if s.page == nil {
		return "", ErrNoPage
	}
	dialogs := func() []string { return s.dialogs.since(since) }
	return waitMessage(s.clock, timeout, dialogs, func() (string, bool, error) {
		p := s.bounded()
		defer p.CancelTimeout()

		els, err := p.Elements(selector)
		if err != nil || len(els) == 0 {
			return "", false, err
		}
		text, err := els[0].Text()
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	})
}

func waitMessage(clock internal.Clock, timeout time.Duration, dialogs func() []string, dom func() (string, bool, error)) (string, error) {
	var msg string
	err := Poll(clock, timeout, DefaultPollInterval, func() (bool, error) {
		if d := dialogs(); len(d) > 0 {
			msg = d[0]
			return true, nil
		}
		text, ok, err := dom()
		if err != nil {
			return false, err
		}
		msg = text
		return ok, nil
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// HTML returns the current page source.
func (s *Session) HTML() (string, error) {
	if s.page == nil {
		return "", ErrNoPage
	}
	p := s.bounded()
	defer p.CancelTimeout()

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}
	return html, nil
}

// SetViewport emulates a device viewport of the given CSS pixel size.
func (s *Session) SetViewport(width, height int) error {
	if s.page == nil {
		return ErrNoPage
	}
	p := s.bounded()
	defer p.CancelTimeout()

	err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Eval executes a JavaScript function on the page and returns the result.
func (s *Session) Eval(js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	if s.page == nil {
		return nil, ErrNoPage
	}
	p := s.bounded()
	defer p.CancelTimeout()

	result, err := p.Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return result, nil
}

// Sleep pauses for a fixed settle delay.
func (s *Session) Sleep(d time.Duration) {
	s.clock.Sleep(d)
}

// Close cleans up browser resources.
// Always call this (via t.Cleanup) to prevent orphaned Chrome processes.
func (s *Session) Close() error {
	if s.stopEvents != nil {
		s.stopEvents()
		s.stopEvents = nil
	}
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
		s.page = nil
	}
	if s.launcher != nil {
		if err != nil {
			s.launcher.Kill()
		}
		s.launcher.Cleanup()
		untrack(s.launcher)
		s.launcher = nil
	}
	return err
}
