// Package export renders the reference dataset into interchange formats
// for use in mapping tools.
package export

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml/v2"

	"github.com/hiwaystop/server/internal/dataset"
)

// WriteKML renders the highways, rest areas and fuel stations of a dataset
// as a KML document: one LineString placemark per highway centerline and
// one Point placemark per facility, grouped into folders. Output is
// indented so it stays diffable when the dataset changes.
func WriteKML(w io.Writer, ds *dataset.Dataset) error {
	doc := kml.Document(kml.Name("Highway facilities"))

	highways := kml.Folder(kml.Name("Highways"))
	for _, hw := range ds.Highways {
		coords := make([]kml.Coordinate, len(hw.Polyline.Points))
		for i, p := range hw.Polyline.Points {
			coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
		}
		highways.Add(kml.Placemark(
			kml.Name(fmt.Sprintf("%s %s", hw.Code, hw.Name)),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		))
	}
	doc.Add(highways)

	restAreas := kml.Folder(kml.Name("Rest areas"))
	for _, r := range ds.RestAreas {
		restAreas.Add(kml.Placemark(
			kml.Name(r.Name),
			kml.Description(fmt.Sprintf("%s, %s", r.HighwayID, r.Direction)),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: r.Longitude, Lat: r.Latitude})),
		))
	}
	doc.Add(restAreas)

	stations := kml.Folder(kml.Name("Fuel stations"))
	for _, s := range ds.Stations {
		stations.Add(kml.Placemark(
			kml.Name(s.Name),
			kml.Description(fmt.Sprintf("%s, %s, %s", s.Brand, s.HighwayID, s.Direction)),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: s.Longitude, Lat: s.Latitude})),
		))
	}
	doc.Add(stations)

	return kml.KML(doc).WriteIndent(w, "", "  ")
}
