// Package ranking orders candidate places for a traveler: nearest by
// great-circle distance, or next ahead by progress along the highway.
package ranking

import (
	"sort"

	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/lib/spatial"
)

// DefaultSpeedKmh is the cruising speed assumed when deriving ETAs
const DefaultSpeedKmh = 100

// Expanding query radii for grid-backed candidate retrieval, km. Sized so
// dense corridors resolve on the first ring while sparse regions still
// terminate quickly.
var searchRadiiKm = []float64{80, 180, 350, 700}

// minCandidates is the unique-candidate count at which radius expansion
// stops
const minCandidates = 50

// SortMode selects the secondary ordering applied to nearest results
type SortMode string

const (
	SortDistance   SortMode = "DISTANCE"
	SortETA        SortMode = "ETA"
	SortAlpha      SortMode = "ALPHA"
	SortConfidence SortMode = "CONFIDENCE"
)

// ParseSortMode maps a query value onto a sort mode, defaulting to distance
func ParseSortMode(raw string) SortMode {
	switch SortMode(raw) {
	case SortETA, SortAlpha, SortConfidence:
		return SortMode(raw)
	default:
		return SortDistance
	}
}

// Nearest attaches true haversine distance and ETA to every candidate,
// sorts ascending by distance and truncates to k. Ties keep input order.
func Nearest(user geo.Point, candidates []dataset.Place, k int) []dataset.Place {
	ranked := make([]dataset.Place, len(candidates))
	for i, c := range candidates {
		c.DistanceKm = geo.HaversineKm(user, c.Location())
		c.ETAMinutes = geo.ETAMinutes(c.DistanceKm, DefaultSpeedKmh)
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// NearestCandidates narrows the candidate set through the grid index,
// growing the query radius until enough unique candidates are found. Falls
// back to the full unfiltered list when the radii are exhausted, so the
// result is always complete enough for a top-K query.
func NearestCandidates(user geo.Point, grid *spatial.Grid[dataset.Place], all []dataset.Place) []dataset.Place {
	for _, radius := range searchRadiiKm {
		hits := dataset.DedupeByID(grid.Query(user, radius))
		if len(hits) >= minCandidates {
			return hits
		}
	}
	return all
}

// Sort applies a secondary sort mode to places that already carry
// distance and ETA. Confidence ties break by distance; the other modes are
// total orderings on their own key.
func Sort(places []dataset.Place, mode SortMode) {
	switch mode {
	case SortAlpha:
		sort.SliceStable(places, func(i, j int) bool {
			return places[i].Name < places[j].Name
		})
	case SortETA:
		sort.SliceStable(places, func(i, j int) bool {
			return places[i].ETAMinutes < places[j].ETAMinutes
		})
	case SortConfidence:
		sort.SliceStable(places, func(i, j int) bool {
			ri, rj := places[i].Confidence.Rank(), places[j].Confidence.Rank()
			if ri != rj {
				return ri < rj
			}
			return places[i].DistanceKm < places[j].DistanceKm
		})
	default:
		sort.SliceStable(places, func(i, j int) bool {
			return places[i].DistanceKm < places[j].DistanceKm
		})
	}
}
