// Package checks holds the acceptance rules of the bug regression suite as
// plain functions over values read from the browser. Keeping them free of
// the browser makes each rule testable on its own.
package checks

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// AuthMarkers are the key fragments that identify authentication state in
// browser storage.
var AuthMarkers = []string{"token", "user", "session", "auth"}

// ContainsAny reports whether text contains any of words, ignoring case.
func ContainsAny(text string, words ...string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// LocationMismatches returns the lower-cased location texts that do not
// mention want or that mention exclude.
func LocationMismatches(texts []string, want, exclude string) []string {
	want, exclude = strings.ToLower(want), strings.ToLower(exclude)

	var bad []string
	for _, text := range texts {
		lower := strings.ToLower(text)
		if !strings.Contains(lower, want) || (exclude != "" && strings.Contains(lower, exclude)) {
			bad = append(bad, lower)
		}
	}
	return bad
}

// PlaintextHits returns, sorted, the storage keys whose key or value holds
// secret, ignoring case.
func PlaintextHits(storage map[string]string, secret string) []string {
	if secret == "" {
		return nil
	}
	needle := strings.ToLower(secret)

	var hits []string
	for k, v := range storage {
		if strings.Contains(strings.ToLower(k), needle) || strings.Contains(strings.ToLower(v), needle) {
			hits = append(hits, k)
		}
	}
	slices.Sort(hits)
	return hits
}

// SessionKeys returns, sorted, the storage keys that contain any marker,
// ignoring case. With no markers, AuthMarkers is used.
func SessionKeys(storage map[string]string, markers ...string) []string {
	if len(markers) == 0 {
		markers = AuthMarkers
	}
	var keys []string
	for k := range storage {
		if ContainsAny(k, markers...) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// FieldDiff returns, sorted, the field names whose got value differs from
// want. Fields missing from got count as changed.
func FieldDiff(want, got map[string]string) []string {
	var changed []string
	for name, w := range want {
		if g, ok := got[name]; !ok || g != w {
			changed = append(changed, name)
		}
	}
	slices.Sort(changed)
	return changed
}

// AdminPage is what a non-admin user sees after opening the admin route.
type AdminPage struct {
	URL           string
	HTML          string
	AdminControls int // number of .admin-controls elements
}

// Problems lists the ways the page grants admin access. The route counts as
// protected when the user was redirected away from /admin or the page says
// access is denied; admin controls must be absent either way.
func (p AdminPage) Problems() []string {
	var problems []string

	onAdmin := strings.Contains(routeOf(p.URL), "/admin")
	denied := ContainsAny(p.HTML, "access denied", "unauthorized")
	if onAdmin && !denied {
		problems = append(problems, fmt.Sprintf("regular user has access to admin page (url %s)", p.URL))
	}
	if p.AdminControls > 0 {
		problems = append(problems, fmt.Sprintf("%d admin control block(s) visible to regular user", p.AdminControls))
	}
	return problems
}

// routeOf returns the path and fragment of a URL so that a host name
// containing "admin" does not count as being on the admin route.
func routeOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path + "#" + u.Fragment
}

// Overflow is the rendered layout of an element on a narrow viewport.
type Overflow struct {
	ElementWidth  float64
	ViewportWidth float64
	ScrollWidth   float64 // document.documentElement.scrollWidth
	ClientWidth   float64 // document.documentElement.clientWidth
}

// Problems lists each violated layout rule: the element must fit in the
// viewport and the document must not scroll horizontally.
func (o Overflow) Problems() []string {
	var problems []string
	if o.ElementWidth > o.ViewportWidth {
		problems = append(problems, fmt.Sprintf("table width (%.0fpx) exceeds viewport width (%.0fpx)", o.ElementWidth, o.ViewportWidth))
	}
	if o.ScrollWidth > o.ClientWidth {
		problems = append(problems, fmt.Sprintf("page has horizontal scrollbar (scrollWidth %.0fpx > clientWidth %.0fpx)", o.ScrollWidth, o.ClientWidth))
	}
	return problems
}

// Validation is what a form showed after an invalid submit.
type Validation struct {
	Message   string // first validation message or dialog text
	Shown     bool   // a message appeared within the wait
	Processed bool   // the application accepted the form anyway
}

// Problems lists the ways the submit went unvalidated. A shown message must
// mention one of words. Without one the form must at least not have been
// processed, and in strict mode the missing message is a problem by itself.
func (v Validation) Problems(strict bool, words ...string) []string {
	want := strings.Join(words, " or ")
	if v.Shown {
		if !ContainsAny(v.Message, words...) {
			return []string{fmt.Sprintf("expected a validation message mentioning %s, got %q", want, v.Message)}
		}
		return nil
	}

	var problems []string
	if strict {
		problems = append(problems, fmt.Sprintf("no validation message mentioning %s was shown", want))
	}
	if v.Processed {
		problems = append(problems, fmt.Sprintf("form was processed without a validation message mentioning %s", want))
	}
	return problems
}
