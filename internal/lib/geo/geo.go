package geo

import (
	"math"
)

const (
	// Earth's mean radius in meters
	earthRadiusM = 6371000

	// Meters per degree of latitude, and of longitude at the equator
	metersPerDegree = 111320
)

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm calculates great-circle distance between two points in
// kilometers. Symmetric, zero for identical points.
func HaversineKm(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h)) / 1000
}

// BearingDegrees calculates the initial great-circle bearing from one point
// to another, normalized to [0, 360)
func BearingDegrees(from, to Point) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLng := toRadians(to.Longitude - from.Longitude)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

// CardinalFromBearing buckets a bearing into one of four quadrants with
// boundaries at 45/135/225/315 degrees. A bearing exactly on a boundary
// resolves to the higher quadrant (EAST at 45, SOUTH at 135, WEST at 225,
// NORTH at 315).
func CardinalFromBearing(bearing float64) Cardinal {
	normalized := math.Mod(math.Mod(bearing, 360)+360, 360)
	switch {
	case normalized >= 45 && normalized < 135:
		return East
	case normalized >= 135 && normalized < 225:
		return South
	case normalized >= 225 && normalized < 315:
		return West
	default:
		return North
	}
}

// localMeters projects a point into a flat east/north meter frame centered
// at origin using an equirectangular approximation. Valid for the short
// segment lengths found on a single highway; not valid across hemispheres
// or the anti-meridian.
func localMeters(origin, p Point) (x, y float64) {
	latFactor := float64(metersPerDegree)
	lngFactor := metersPerDegree * math.Cos(toRadians(origin.Latitude))
	x = (p.Longitude - origin.Longitude) * lngFactor
	y = (p.Latitude - origin.Latitude) * latFactor
	return x, y
}

// DistanceToSegmentMeters calculates the shortest planar distance from a
// point to the segment between start and end. A zero-length segment falls
// back to point-to-point distance.
func DistanceToSegmentMeters(point, start, end Point) float64 {
	origin := Point{
		Latitude:  (start.Latitude + end.Latitude) / 2,
		Longitude: (start.Longitude + end.Longitude) / 2,
	}

	px, py := localMeters(origin, point)
	ax, ay := localMeters(origin, start)
	bx, by := localMeters(origin, end)

	abx := bx - ax
	aby := by - ay
	ab2 := abx*abx + aby*aby

	if ab2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}

	t := ((px-ax)*abx + (py-ay)*aby) / ab2
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(px-(ax+t*abx), py-(ay+t*aby))
}

// DistanceToPolylineMeters calculates the minimum distance from a point to
// any segment of the polyline. Returns +Inf for a polyline with no segments
// rather than failing.
func DistanceToPolylineMeters(point Point, line Polyline) float64 {
	if len(line.Points) == 1 {
		return HaversineKm(point, line.Points[0]) * 1000
	}

	minDistance := math.Inf(1)
	for i := 0; i < len(line.Points)-1; i++ {
		d := DistanceToSegmentMeters(point, line.Points[i], line.Points[i+1])
		if d < minDistance {
			minDistance = d
		}
	}
	return minDistance
}

// ProjectOntoPolyline finds the polyline segment nearest to the point and
// returns the cumulative arc length in kilometers from the polyline's start
// to the projected position on that segment. Ties between equally distant
// segments resolve to the first one in iteration order. A polyline with no
// segments projects to 0.
func ProjectOntoPolyline(point Point, line Polyline) float64 {
	cumulative := 0.0
	bestDistance := math.Inf(1)
	bestAlong := 0.0

	for i := 0; i < len(line.Points)-1; i++ {
		a := line.Points[i]
		b := line.Points[i+1]

		origin := Point{
			Latitude:  (a.Latitude + b.Latitude) / 2,
			Longitude: (a.Longitude + b.Longitude) / 2,
		}
		px, py := localMeters(origin, point)
		ax, ay := localMeters(origin, a)
		bx, by := localMeters(origin, b)
		abx := bx - ax
		aby := by - ay
		ab2 := abx*abx + aby*aby

		segLenKm := HaversineKm(a, b)

		// Zero-length segment contributes no arc length and cannot host a
		// projection
		if ab2 == 0 {
			cumulative += segLenKm
			continue
		}

		t := ((px-ax)*abx + (py-ay)*aby) / ab2
		t = math.Max(0, math.Min(1, t))

		projected := Point{
			Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
			Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
		}

		d := HaversineKm(point, projected)
		if d < bestDistance {
			bestDistance = d
			bestAlong = cumulative + segLenKm*t
		}

		cumulative += segLenKm
	}

	return bestAlong
}

// ETAMinutes estimates travel time in whole minutes for a distance at the
// given cruising speed. Returns 0 for non-finite or non-positive distance,
// never a negative value.
func ETAMinutes(distanceKm, speedKmh float64) int {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm <= 0 {
		return 0
	}
	if speedKmh <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}
