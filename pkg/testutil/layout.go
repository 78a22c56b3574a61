package testutil

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/cleancity/bugbusters/pkg/checks"
)

// layoutJS measures one element against the viewport and the document.
const layoutJS = `(selector) => {
	const el = document.querySelector(selector);
	const doc = document.documentElement;
	return JSON.stringify({
		found: el !== null,
		elementWidth: el ? el.getBoundingClientRect().width : 0,
		viewportWidth: window.innerWidth,
		scrollWidth: doc.scrollWidth,
		clientWidth: doc.clientWidth,
	});
}`

type layoutSample struct {
	Found         bool    `json:"found"`
	ElementWidth  float64 `json:"elementWidth"`
	ViewportWidth float64 `json:"viewportWidth"`
	ScrollWidth   float64 `json:"scrollWidth"`
	ClientWidth   float64 `json:"clientWidth"`
}

// Layout measures the rendered width of selector's first match together
// with the viewport and document scroll widths.
func (s *Session) Layout(selector string) (checks.Overflow, error) {
	result, err := s.Eval(layoutJS, selector)
	if err != nil {
		return checks.Overflow{}, fmt.Errorf("measure %s: %w", selector, err)
	}
	var sample layoutSample
	if err := json.Unmarshal([]byte(result.Value.Str()), &sample); err != nil {
		return checks.Overflow{}, fmt.Errorf("decode layout of %s: %w", selector, err)
	}
	if !sample.Found {
		return checks.Overflow{}, fmt.Errorf("measure %s: no matching element", selector)
	}
	return checks.Overflow{
		ElementWidth:  sample.ElementWidth,
		ViewportWidth: sample.ViewportWidth,
		ScrollWidth:   sample.ScrollWidth,
		ClientWidth:   sample.ClientWidth,
	}, nil
}
