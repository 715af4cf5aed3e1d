// Package heading resolves the traveler's cardinal direction of travel
// from the available signals.
package heading

import (
	"math"

	"github.com/hiwaystop/server/internal/lib/geo"
)

// Inputs are the three direction sources, in priority order. Any of them
// may be absent.
type Inputs struct {
	// Manual is an explicit user override; when set it always wins
	Manual geo.Cardinal

	// DeviceHeading is the compass bearing reported by the device, in
	// degrees. Negative or non-finite values mean "unavailable".
	DeviceHeading float64
	HasHeading    bool

	// Previous and Current are the last two location fixes, used to infer
	// a bearing when no heading is available
	Previous    geo.Point
	HasPrevious bool
	Current     geo.Point
	HasCurrent  bool
}

// Resolve derives the travel direction from its inputs: manual override,
// else device heading, else the bearing between the two most recent fixes.
// The second return is false when no source can determine a direction,
// which is a valid terminal state; callers prompt for manual selection.
// Pure derivation, no state: recompute whenever any input changes.
func Resolve(in Inputs) (geo.Cardinal, bool) {
	if in.Manual != "" {
		return in.Manual, true
	}

	if in.HasHeading && headingValid(in.DeviceHeading) {
		return geo.CardinalFromBearing(in.DeviceHeading), true
	}

	if in.HasPrevious && in.HasCurrent {
		return geo.CardinalFromBearing(geo.BearingDegrees(in.Previous, in.Current)), true
	}

	return "", false
}

func headingValid(h float64) bool {
	return h >= 0 && !math.IsNaN(h) && !math.IsInf(h, 0)
}
