// Package windowfx exposes platform-specific window chrome adjustments to
// the frontend. Only macOS needs any: the traffic-light buttons are nudged
// to line up with the in-app toolbar. Everywhere else this is a no-op.
package windowfx

import (
	"errors"

	"github.com/caw-hq/caw-desktop/pkg/shared/defs"
)

var ErrUnsupported = errors.New("titlebar adjustment is only supported on macOS")

// Hints returns the chrome adjustments for the current platform, or
// ErrUnsupported where there are none.
func Hints() (defs.WindowHints, error) {
	return hintsImpl()
}

// Supported reports whether this platform has any chrome adjustments.
func Supported() bool {
	_, err := hintsImpl()
	return err == nil
}
