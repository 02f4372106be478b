//go:build !darwin

package windowfx

import "github.com/caw-hq/caw-desktop/pkg/shared/defs"

func hintsImpl() (defs.WindowHints, error) {
	return defs.WindowHints{}, ErrUnsupported
}
