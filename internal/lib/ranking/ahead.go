package ranking

import (
	"math"
	"sort"

	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/geo"
)

// NextAhead projects the traveler and every candidate onto the highway
// polyline and returns the k candidates closest ahead by arc length. The
// polyline's point ordering is the NORTH/EAST-increasing direction by data
// contract, so travel toward SOUTH or WEST reverses the ahead test.
//
// Ordering is by progress along the road, not straight-line distance: a
// station 1km away as the crow flies but 40km further along a winding road
// ranks behind one 5km along the road. The returned places still carry
// true haversine distance for display.
//
// Candidates are expected to be pre-filtered to the traveler's highway and
// to bound sides matching the direction; this function only ranks.
func NextAhead(user geo.Point, line geo.Polyline, direction geo.Cardinal, candidates []dataset.Place, k int) []dataset.Place {
	userProgress := geo.ProjectOntoPolyline(user, line)
	forward := direction == geo.North || direction == geo.East

	type rankedPlace struct {
		place      dataset.Place
		deltaAlong float64
	}

	ahead := make([]rankedPlace, 0, len(candidates))
	for _, c := range candidates {
		itemProgress := geo.ProjectOntoPolyline(c.Location(), line)
		delta := itemProgress - userProgress
		if forward && delta <= 0 {
			continue
		}
		if !forward && delta >= 0 {
			continue
		}

		c.DistanceKm = geo.HaversineKm(user, c.Location())
		c.ETAMinutes = geo.ETAMinutes(c.DistanceKm, DefaultSpeedKmh)
		ahead = append(ahead, rankedPlace{place: c, deltaAlong: delta})
	}

	sort.SliceStable(ahead, func(i, j int) bool {
		return math.Abs(ahead[i].deltaAlong) < math.Abs(ahead[j].deltaAlong)
	})

	if k >= 0 && len(ahead) > k {
		ahead = ahead[:k]
	}

	out := make([]dataset.Place, len(ahead))
	for i, r := range ahead {
		out[i] = r.place
	}
	return out
}
