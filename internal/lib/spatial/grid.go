// Package spatial provides in-memory indexes that narrow candidate sets for
// interactive nearest-neighbor queries: a uniform lat/lng grid for point
// entities and an R-tree over highway segments.
package spatial

import (
	"math"

	"github.com/hiwaystop/server/internal/lib/geo"
)

// DefaultCellSizeDeg is the default grid cell size in degrees, roughly
// 25-28km at Malaysia's latitude.
const DefaultCellSizeDeg = 0.25

// Kilometers per degree of latitude
const kmPerDegree = 111

type cellKey struct {
	y int // floor(lat / cellSize)
	x int // floor(lng / cellSize)
}

// Grid buckets items by coordinate cell for cheap range queries. It owns no
// entity data beyond references and is rebuilt whenever the underlying item
// set changes.
type Grid[T any] struct {
	cellSizeDeg float64
	buckets     map[cellKey][]T
	location    func(T) geo.Point
}

// NewGrid buckets every item by its coordinate cell. A non-positive cell
// size falls back to DefaultCellSizeDeg.
func NewGrid[T any](items []T, cellSizeDeg float64, location func(T) geo.Point) *Grid[T] {
	if cellSizeDeg <= 0 {
		cellSizeDeg = DefaultCellSizeDeg
	}

	buckets := make(map[cellKey][]T)
	for _, item := range items {
		p := location(item)
		key := cellKey{
			y: int(math.Floor(p.Latitude / cellSizeDeg)),
			x: int(math.Floor(p.Longitude / cellSizeDeg)),
		}
		buckets[key] = append(buckets[key], item)
	}

	return &Grid[T]{
		cellSizeDeg: cellSizeDeg,
		buckets:     buckets,
		location:    location,
	}
}

// Query returns the union of all items in cells covering the radius around
// center. Cell coverage is rectangular while the true radius is circular, so
// the result is a conservative superset; callers needing exact membership
// filter downstream. No de-duplication is performed.
func (g *Grid[T]) Query(center geo.Point, radiusKm float64) []T {
	latDelta := radiusKm / kmPerDegree
	// Longitude degrees shrink with cos(lat); the clamp keeps the factor
	// from blowing up near the poles
	cosLat := math.Max(math.Cos(center.Latitude*math.Pi/180), 0.1)
	lngDelta := radiusKm / (kmPerDegree * cosLat)

	minY := int(math.Floor((center.Latitude - latDelta) / g.cellSizeDeg))
	maxY := int(math.Floor((center.Latitude + latDelta) / g.cellSizeDeg))
	minX := int(math.Floor((center.Longitude - lngDelta) / g.cellSizeDeg))
	maxX := int(math.Floor((center.Longitude + lngDelta) / g.cellSizeDeg))

	var out []T
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if bucket, ok := g.buckets[cellKey{y: y, x: x}]; ok {
				out = append(out, bucket...)
			}
		}
	}
	return out
}

// Len returns the number of indexed items
func (g *Grid[T]) Len() int {
	n := 0
	for _, bucket := range g.buckets {
		n += len(bucket)
	}
	return n
}
