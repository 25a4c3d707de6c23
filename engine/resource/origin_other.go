//go:build !(js && wasm)

package resource

import "errors"

// pageOrigin is only meaningful inside a browser.
func pageOrigin() (string, error) {
	return "", errors.New("no page origin outside a browser")
}
