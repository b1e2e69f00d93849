package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// Lookup outcome for a bounded element wait. Absence is an expected result,
// not an error: spaces legitimately omit descriptions, tools, or metadata.
type lookupResult int

const (
	lookupFound lookupResult = iota
	lookupNotFound
	lookupFailed
)

// waitElement waits up to timeout for selector to appear. It discriminates
// absence (the deadline passed without a match) from real page failures.
func waitElement(page *rod.Page, selector string, timeout time.Duration) (*rod.Element, lookupResult, error) {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, lookupNotFound, nil
		}
		return nil, lookupFailed, fmt.Errorf("export: wait for %q: %w", selector, err)
	}
	return el, lookupFound, nil
}

// findElements returns the elements currently matching selector, without
// waiting. Callers run this after the page settle window, so an empty result
// means the category is genuinely absent.
func findElements(page *rod.Page, selector string) (rod.Elements, error) {
	els, err := page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("export: query %q: %w", selector, err)
	}
	return els, nil
}
