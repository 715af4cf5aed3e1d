package dataset

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/twpayne/go-polyline"

	"github.com/hiwaystop/server/internal/lib/geo"
)

//go:embed data/*.json
var sampleFS embed.FS

// Dataset is the immutable collection of reference data loaded at startup
type Dataset struct {
	Highways  []Highway
	RestAreas []RestArea
	Stations  []Station

	byID map[string]Highway
}

// Load validates and assembles a dataset from the three JSON collections.
// Validation happens here at the boundary so the engine's math can stay
// total over its input: out-of-range or non-finite coordinates, bad enums
// and degenerate highway geometry are all rejected up front.
func Load(highwaysJSON, restAreasJSON, stationsJSON []byte) (*Dataset, error) {
	var highways []Highway
	if err := json.Unmarshal(highwaysJSON, &highways); err != nil {
		return nil, fmt.Errorf("failed to parse highways: %w", err)
	}

	var restAreas []RestArea
	if err := json.Unmarshal(restAreasJSON, &restAreas); err != nil {
		return nil, fmt.Errorf("failed to parse rest areas: %w", err)
	}

	var stations []Station
	if err := json.Unmarshal(stationsJSON, &stations); err != nil {
		return nil, fmt.Errorf("failed to parse stations: %w", err)
	}

	byID := make(map[string]Highway, len(highways))
	for i := range highways {
		h := &highways[i]
		if h.ID == "" {
			return nil, fmt.Errorf("highway %d has empty id", i)
		}
		if _, dup := byID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate highway id %q", h.ID)
		}

		if len(h.Polyline.Points) == 0 && h.EncodedPolyline != "" {
			coords, _, err := polyline.DecodeCoords([]byte(h.EncodedPolyline))
			if err != nil {
				return nil, fmt.Errorf("highway %q: failed to decode polyline: %w", h.ID, err)
			}
			points := make([]geo.Point, len(coords))
			for j, c := range coords {
				points[j] = geo.Point{Latitude: c[0], Longitude: c[1]}
			}
			h.Polyline = geo.Polyline{Points: points}
		}

		if len(h.Polyline.Points) < 2 {
			return nil, fmt.Errorf("highway %q: polyline needs at least 2 points, has %d", h.ID, len(h.Polyline.Points))
		}
		for _, p := range h.Polyline.Points {
			if !geo.IsValidCoordinate(p) {
				return nil, fmt.Errorf("highway %q: invalid coordinate %+v", h.ID, p)
			}
		}
		byID[h.ID] = *h
	}

	rnrIDs := make(map[string]bool, len(restAreas))
	for i, r := range restAreas {
		if r.ID == "" {
			return nil, fmt.Errorf("rest area %d has empty id", i)
		}
		if rnrIDs[r.ID] {
			return nil, fmt.Errorf("duplicate rest area id %q", r.ID)
		}
		rnrIDs[r.ID] = true
		if !geo.IsValidCoordinate(r.Location()) {
			return nil, fmt.Errorf("rest area %q: invalid coordinate", r.ID)
		}
		if !r.Direction.valid() {
			return nil, fmt.Errorf("rest area %q: unknown direction %q", r.ID, r.Direction)
		}
	}

	stationIDs := make(map[string]bool, len(stations))
	for i, s := range stations {
		if s.ID == "" {
			return nil, fmt.Errorf("station %d has empty id", i)
		}
		if stationIDs[s.ID] {
			return nil, fmt.Errorf("duplicate station id %q", s.ID)
		}
		stationIDs[s.ID] = true
		if !geo.IsValidCoordinate(s.Location()) {
			return nil, fmt.Errorf("station %q: invalid coordinate", s.ID)
		}
		if !s.Direction.valid() {
			return nil, fmt.Errorf("station %q: unknown direction %q", s.ID, s.Direction)
		}
		if !s.Kind.valid() {
			return nil, fmt.Errorf("station %q: unknown kind %q", s.ID, s.Kind)
		}
	}

	return &Dataset{
		Highways:  highways,
		RestAreas: restAreas,
		Stations:  stations,
		byID:      byID,
	}, nil
}

// LoadDir loads highways.json, rnr.json and stations.json from a directory
func LoadDir(dir string) (*Dataset, error) {
	highwaysJSON, err := os.ReadFile(filepath.Join(dir, "highways.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read highways.json: %w", err)
	}
	restAreasJSON, err := os.ReadFile(filepath.Join(dir, "rnr.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read rnr.json: %w", err)
	}
	stationsJSON, err := os.ReadFile(filepath.Join(dir, "stations.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read stations.json: %w", err)
	}
	return Load(highwaysJSON, restAreasJSON, stationsJSON)
}

// LoadSample loads the embedded sample dataset covering the PLUS
// expressway network
func LoadSample() (*Dataset, error) {
	highwaysJSON, err := sampleFS.ReadFile("data/highways.json")
	if err != nil {
		return nil, err
	}
	restAreasJSON, err := sampleFS.ReadFile("data/rnr.json")
	if err != nil {
		return nil, err
	}
	stationsJSON, err := sampleFS.ReadFile("data/stations.json")
	if err != nil {
		return nil, err
	}
	return Load(highwaysJSON, restAreasJSON, stationsJSON)
}

// HighwayByID looks up a highway by its id
func (d *Dataset) HighwayByID(id string) (Highway, bool) {
	h, ok := d.byID[id]
	return h, ok
}

// Polylines returns highway geometry keyed by highway id
func (d *Dataset) Polylines() map[string]geo.Polyline {
	out := make(map[string]geo.Polyline, len(d.Highways))
	for _, h := range d.Highways {
		out[h.ID] = h.Polyline
	}
	return out
}

// Brands returns the sorted set of fuel brands present in the station data
func (d *Dataset) Brands() []string {
	set := make(map[string]bool)
	for _, s := range d.Stations {
		if s.Brand != "" {
			set[s.Brand] = true
		}
	}
	brands := make([]string, 0, len(set))
	for b := range set {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands
}
