package services

import (
	"fmt"
	"strconv"

	"github.com/hiwaystop/server/internal/lib/geo"
)

// NavigationURL builds a Google Maps driving-directions link to a place
// coordinate. Coordinates render with full precision so the destination
// pin lands exactly on the stored location.
func NavigationURL(p geo.Point) string {
	lat := strconv.FormatFloat(p.Latitude, 'f', -1, 64)
	lng := strconv.FormatFloat(p.Longitude, 'f', -1, 64)
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s,%s&travelmode=driving", lat, lng)
}
