package geo

// Point represents a geographic coordinate (WGS84 degrees, no altitude)
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Polyline is an ordered chain of straight segments between points.
// Point order encodes the highway's reference direction: increasing index
// is the NORTH/EAST-bound side by data contract.
type Polyline struct {
	Points []Point `json:"points"`
}

// Cardinal is a coarse travel-direction bucket derived from a bearing
type Cardinal string

const (
	North Cardinal = "NORTH"
	East  Cardinal = "EAST"
	South Cardinal = "SOUTH"
	West  Cardinal = "WEST"
)

// IsValidCoordinate reports whether latitude and longitude are in range
func IsValidCoordinate(p Point) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}
