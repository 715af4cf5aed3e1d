// Package corridor decides whether facilities are actually on a highway,
// not just near one: buffer-distance membership for standalone stations and
// closest-highway detection for the traveler's position.
package corridor

import (
	"math"

	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/lib/spatial"
)

// ConfirmRadiusMeters is the maximum distance at which the traveler's
// position confirms a highway match
const ConfirmRadiusMeters = 2000

// Expanding search rings for closest-highway detection, meters. The final
// fallback is a full segment scan.
var detectionRadiiMeters = []float64{2000, 10000, 50000, 200000}

// Filter answers corridor-membership questions against a fixed set of
// highway polylines
type Filter struct {
	polylines map[string]geo.Polyline
	index     *spatial.SegmentIndex
}

// NewFilter builds a corridor filter, indexing every highway segment
func NewFilter(polylines map[string]geo.Polyline) *Filter {
	return &Filter{
		polylines: polylines,
		index:     spatial.NewSegmentIndex(polylines),
	}
}

// Contains reports whether the point is within bufferMeters of some segment
// of the named highway. Unknown highway ids are never matched against a
// different highway.
func (f *Filter) Contains(p geo.Point, highwayID string, bufferMeters float64) bool {
	if bufferMeters <= 0 {
		return false
	}
	if _, ok := f.polylines[highwayID]; !ok {
		return false
	}

	for _, seg := range f.index.Nearby(p, bufferMeters) {
		if seg.HighwayID != highwayID {
			continue
		}
		if geo.DistanceToSegmentMeters(p, seg.Start, seg.End) <= bufferMeters {
			return true
		}
	}
	return false
}

// FilterStats counts the outcomes of a highway-only filter pass. Rejections
// are a data-quality signal for the caller to log, not an error.
type FilterStats struct {
	Passed         int
	RNRLinked      int
	OutsideBuffer  int
	UnknownHighway int
}

// FilterHighwayOnly keeps stations that are verifiably on their own
// declared highway. RNR-linked stations pass unconditionally; standalone
// stations must lie within bufferMeters of their highway's polyline.
// Growing the buffer only ever adds stations, never removes them.
func (f *Filter) FilterHighwayOnly(stations []dataset.Station, bufferMeters float64) ([]dataset.Station, FilterStats) {
	var stats FilterStats
	out := make([]dataset.Station, 0, len(stations))

	for _, s := range stations {
		if s.Kind == dataset.RNRLinked {
			out = append(out, s)
			stats.Passed++
			stats.RNRLinked++
			continue
		}
		if _, ok := f.polylines[s.HighwayID]; !ok {
			stats.UnknownHighway++
			continue
		}
		if f.Contains(s.Location(), s.HighwayID, bufferMeters) {
			out = append(out, s)
			stats.Passed++
			continue
		}
		stats.OutsideBuffer++
	}

	return out, stats
}

// Detection reports the traveler's highway match. HighwayID is empty when
// the nearest highway is beyond the confirmation radius; NearestHighwayID
// and DistanceMeters are still populated so callers can render an
// "uncertain" status instead of failing.
type Detection struct {
	HighwayID        string
	NearestHighwayID string
	DistanceMeters   float64
}

// Confirmed reports whether the traveler is close enough to pin a highway
func (d Detection) Confirmed() bool {
	return d.HighwayID != ""
}

// ClosestHighway finds the highway whose polyline passes nearest the point.
// Search expands through the segment index ring by ring; a minimum found
// inside a ring is the global minimum because any unindexed-candidate
// segment is farther than the ring radius. Falls back to a full scan when
// every ring comes up empty.
func (f *Filter) ClosestHighway(p geo.Point) Detection {
	bestID := ""
	bestDistance := math.Inf(1)

	for _, radius := range detectionRadiiMeters {
		for _, seg := range f.index.Nearby(p, radius) {
			d := geo.DistanceToSegmentMeters(p, seg.Start, seg.End)
			if d < bestDistance {
				bestDistance = d
				bestID = seg.HighwayID
			}
		}
		if bestDistance <= radius {
			return f.detection(bestID, bestDistance)
		}
	}

	// Sparse region: scan every highway directly
	for id, line := range f.polylines {
		for i := 0; i < len(line.Points)-1; i++ {
			d := geo.DistanceToSegmentMeters(p, line.Points[i], line.Points[i+1])
			if d < bestDistance {
				bestDistance = d
				bestID = id
			}
		}
	}
	return f.detection(bestID, bestDistance)
}

func (f *Filter) detection(nearestID string, distanceMeters float64) Detection {
	d := Detection{
		NearestHighwayID: nearestID,
		DistanceMeters:   distanceMeters,
	}
	if nearestID != "" && distanceMeters <= ConfirmRadiusMeters {
		d.HighwayID = nearestID
	}
	return d
}
