//go:build js && wasm

package resource

import (
	"fmt"

	"github.com/hack-pad/safejs"
)

// pageOrigin returns window.location.origin of the hosting page.
func pageOrigin() (string, error) {
	location, err := safejs.Global().Get("location")
	if err != nil {
		return "", fmt.Errorf("reading window.location: %w", err)
	}
	origin, err := location.Get("origin")
	if err != nil {
		return "", fmt.Errorf("reading window.location.origin: %w", err)
	}
	s, err := origin.String()
	if err != nil {
		return "", fmt.Errorf("reading window.location.origin: %w", err)
	}
	if s == "" || s == "null" {
		return "", fmt.Errorf("page has no origin")
	}
	return s, nil
}
