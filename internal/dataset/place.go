package dataset

import (
	"github.com/hiwaystop/server/internal/lib/geo"
)

// PlaceKind separates rest areas from fuel stations in merged result sets
type PlaceKind string

const (
	PlaceRNR  PlaceKind = "RNR"
	PlaceFuel PlaceKind = "FUEL"
)

// Confidence is a three-level trust ranking of whether a place is
// verifiably on-highway
type Confidence string

const (
	// ConfidenceRNRLinked: fuel station inside a known rest area
	ConfidenceRNRLinked Confidence = "RNR_LINKED"
	// ConfidenceCorridorVerified: standalone station that passed the
	// corridor buffer test
	ConfidenceCorridorVerified Confidence = "CORRIDOR_VERIFIED"
	// ConfidenceRestAreaSite: a rest area itself, declared but not
	// distance-verified
	ConfidenceRestAreaSite Confidence = "RNR_SITE"
)

// Rank orders confidence levels for sorting, lower is more trusted
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceRNRLinked:
		return 0
	case ConfidenceCorridorVerified:
		return 1
	default:
		return 2
	}
}

// Place is the transient union of RestArea and Station projected into a
// common shape for ranking and display. DistanceKm and ETAMinutes are only
// populated in the context of a specific user location at query time;
// Places are recomputed per query and never persisted.
type Place struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	HighwayID  string         `json:"highwayId"`
	Direction  Direction      `json:"direction"`
	Latitude   float64        `json:"lat"`
	Longitude  float64        `json:"lng"`
	Kind       PlaceKind      `json:"kind"`
	DistanceKm float64        `json:"distanceKm,omitempty"`
	ETAMinutes int            `json:"etaMinutes,omitempty"`
	Facilities *FacilityFlags `json:"facilities,omitempty"`
	FuelBrands []string       `json:"fuelBrands,omitempty"`
	Brand      string         `json:"brand,omitempty"`
	Confidence Confidence     `json:"confidence"`
	SourceID   string         `json:"sourceId"`
}

// Location returns the place's coordinate
func (p Place) Location() geo.Point {
	return geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
}

// RestAreaPlace projects a rest area into the common place shape. IDs are
// namespaced "rnr:" so merged result sets can de-duplicate by key without
// cross-kind collisions.
func RestAreaPlace(r RestArea) Place {
	facilities := r.Facilities
	return Place{
		ID:         "rnr:" + r.ID,
		Name:       r.Name,
		HighwayID:  r.HighwayID,
		Direction:  r.Direction,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Kind:       PlaceRNR,
		Facilities: &facilities,
		FuelBrands: r.FuelBrands,
		Confidence: ConfidenceRestAreaSite,
		SourceID:   r.ID,
	}
}

// StationPlace projects a fuel station into the common place shape. A
// station that reaches this point is either RNR-linked or has already
// passed the corridor buffer test.
func StationPlace(s Station) Place {
	confidence := ConfidenceCorridorVerified
	if s.Kind == RNRLinked {
		confidence = ConfidenceRNRLinked
	}
	return Place{
		ID:         "fuel:" + s.ID,
		Name:       s.Name,
		HighwayID:  s.HighwayID,
		Direction:  s.Direction,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		Kind:       PlaceFuel,
		Brand:      s.Brand,
		Confidence: confidence,
		SourceID:   s.ID,
	}
}

// DedupeByID keeps the last occurrence of each place ID, preserving first
// insertion order. The grid index may return duplicates when the same item
// was inserted twice or multi-grid results are merged.
func DedupeByID(places []Place) []Place {
	seen := make(map[string]int, len(places))
	out := make([]Place, 0, len(places))
	for _, p := range places {
		if i, ok := seen[p.ID]; ok {
			out[i] = p
			continue
		}
		seen[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
