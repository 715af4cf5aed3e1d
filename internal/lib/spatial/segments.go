package spatial

import (
	"math"

	"github.com/tidwall/rtree"

	"github.com/hiwaystop/server/internal/lib/geo"
)

// Segment is one straight piece of a highway polyline, indexed by its
// bounding box
type Segment struct {
	HighwayID string
	Index     int // segment position within the highway polyline
	Start     geo.Point
	End       geo.Point
}

// SegmentIndex is an R-tree over highway segments. It answers "which
// segments could be within this distance of this point" without scanning
// every segment of every highway; exact point-to-segment distance is the
// caller's job.
type SegmentIndex struct {
	tree  rtree.RTree
	count int
}

// NewSegmentIndex indexes every segment of every highway polyline by its
// lat/lng bounding box.
func NewSegmentIndex(highways map[string]geo.Polyline) *SegmentIndex {
	ix := &SegmentIndex{}
	for id, line := range highways {
		for i := 0; i < len(line.Points)-1; i++ {
			a := line.Points[i]
			b := line.Points[i+1]
			ix.tree.Insert(
				[2]float64{math.Min(a.Latitude, b.Latitude), math.Min(a.Longitude, b.Longitude)},
				[2]float64{math.Max(a.Latitude, b.Latitude), math.Max(a.Longitude, b.Longitude)},
				Segment{HighwayID: id, Index: i, Start: a, End: b},
			)
			ix.count++
		}
	}
	return ix
}

// Nearby returns segments whose bounding box intersects the box of
// radiusMeters around the point. Like Grid.Query this is a conservative
// superset of the segments truly within the radius.
func (ix *SegmentIndex) Nearby(p geo.Point, radiusMeters float64) []Segment {
	latDelta := radiusMeters / 111320
	cosLat := math.Max(math.Cos(p.Latitude*math.Pi/180), 0.1)
	lngDelta := radiusMeters / (111320 * cosLat)

	var out []Segment
	ix.tree.Search(
		[2]float64{p.Latitude - latDelta, p.Longitude - lngDelta},
		[2]float64{p.Latitude + latDelta, p.Longitude + lngDelta},
		func(min, max [2]float64, data interface{}) bool {
			if seg, ok := data.(Segment); ok {
				out = append(out, seg)
			}
			return true
		},
	)
	return out
}

// Len returns the number of indexed segments
func (ix *SegmentIndex) Len() int {
	return ix.count
}
