// Package config holds the settings shared by the regression suite and its
// command-line tools.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Targets the suite can run against.
const (
	TargetRemote = "remote" // the deployed application at BaseURL
	TargetStub   = "stub"   // a local cleancity-stub started by the suite
)

// DefaultBaseURL is the deployed application the bug reports were filed against.
const DefaultBaseURL = "https://clean-city-bug-busters.netlify.app"

// Bug identifiers understood by the local stub. Each one switches on the
// defect of the same number in the bug report.
const (
	BugEldoretFilter     = "eldoret-filter"     // BUG-001
	BugPlaintextPassword = "plaintext-password" // BUG-002
	BugDateUnvalidated   = "date-unvalidated"   // BUG-003
	BugEmptyComments     = "empty-comments"     // BUG-004
	BugShortName         = "short-name"         // BUG-005
	BugStaleSession      = "stale-session"      // BUG-006
	BugOpenAdmin         = "open-admin"         // BUG-007
	BugSilentLogin       = "silent-login"       // BUG-008
	BugTableOverflow     = "table-overflow"     // BUG-009
	BugFormReset         = "form-reset"         // BUG-010
)

// AllBugs lists every known bug identifier in report order.
var AllBugs = []string{
	BugEldoretFilter,
	BugPlaintextPassword,
	BugDateUnvalidated,
	BugEmptyComments,
	BugShortName,
	BugStaleSession,
	BugOpenAdmin,
	BugSilentLogin,
	BugTableOverflow,
	BugFormReset,
}

// Credentials is an email/password pair typed into the login form.
type Credentials struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// Viewport is an emulated device size in CSS pixels.
type Viewport struct {
	MobileWidth  int `mapstructure:"mobile_width"`
	MobileHeight int `mapstructure:"mobile_height"`
}

// Config is the effective suite configuration.
type Config struct {
	BaseURL  string   `mapstructure:"base_url"`
	Target   string   `mapstructure:"target"`
	StubBugs []string `mapstructure:"stub_bugs"`

	Headless     bool          `mapstructure:"headless"`
	ImplicitWait time.Duration `mapstructure:"implicit_wait"`
	ExplicitWait time.Duration `mapstructure:"explicit_wait"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`

	Login   Credentials `mapstructure:"login"`
	Regular Credentials `mapstructure:"regular"`

	Viewport Viewport `mapstructure:"viewport"`

	// StrictValidation turns the "nothing happened" fallback of the
	// validation checks into a failure.
	StrictValidation bool `mapstructure:"strict_validation"`

	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the settings the bug reports were reproduced with.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Target:       TargetRemote,
		Headless:     true,
		ImplicitWait: 10 * time.Second,
		ExplicitWait: 10 * time.Second,
		SettleDelay:  2 * time.Second,
		Login: Credentials{
			Email:    "test@example.com",
			Password: "testpass123",
		},
		Regular: Credentials{
			Email:    "regular@example.com",
			Password: "password",
		},
		Viewport: Viewport{
			MobileWidth:  400,
			MobileHeight: 800,
		},
		LogLevel: "info",
	}
}

// Validate reports the first setting that cannot be used.
func Validate(cfg Config) error {
	if cfg.BaseURL == "" && cfg.Target == TargetRemote {
		return errors.New("base_url must be set for the remote target")
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base_url %q: scheme must be http or https", cfg.BaseURL)
		}
	}
	switch cfg.Target {
	case TargetRemote, TargetStub:
	default:
		return fmt.Errorf("target %q: want %q or %q", cfg.Target, TargetRemote, TargetStub)
	}
	if cfg.ImplicitWait <= 0 {
		return fmt.Errorf("implicit_wait must be positive, got %v", cfg.ImplicitWait)
	}
	if cfg.ExplicitWait <= 0 {
		return fmt.Errorf("explicit_wait must be positive, got %v", cfg.ExplicitWait)
	}
	if cfg.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative, got %v", cfg.SettleDelay)
	}
	if cfg.Viewport.MobileWidth <= 0 || cfg.Viewport.MobileHeight <= 0 {
		return fmt.Errorf("viewport %dx%d must be positive", cfg.Viewport.MobileWidth, cfg.Viewport.MobileHeight)
	}
	for _, bug := range cfg.StubBugs {
		if !slices.Contains(AllBugs, bug) {
			return fmt.Errorf("stub_bugs: unknown bug %q", bug)
		}
	}
	return nil
}

// URL joins a route such as "/login" onto the base URL.
func (c Config) URL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
