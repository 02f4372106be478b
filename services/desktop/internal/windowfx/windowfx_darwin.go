package windowfx

import "github.com/caw-hq/caw-desktop/pkg/shared/defs"

// Offsets line the traffic-light buttons up with the custom titlebar.
func hintsImpl() (defs.WindowHints, error) {
	return defs.WindowHints{
		TrafficLightInset: true,
		InsetX:            18,
		InsetY:            18,
	}, nil
}
