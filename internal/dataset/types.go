// Package dataset holds the static reference data the engine runs against:
// highways, rest-and-service areas and fuel stations, loaded wholesale at
// startup and never mutated.
package dataset

import (
	"github.com/hiwaystop/server/internal/lib/geo"
)

// Direction is the bound side of a divided highway a facility serves
type Direction string

const (
	Northbound Direction = "NORTHBOUND"
	Southbound Direction = "SOUTHBOUND"
	Eastbound  Direction = "EASTBOUND"
	Westbound  Direction = "WESTBOUND"
)

// Matches reports whether this bound side serves travel in the given
// cardinal direction
func (d Direction) Matches(c geo.Cardinal) bool {
	switch c {
	case geo.North:
		return d == Northbound
	case geo.South:
		return d == Southbound
	case geo.East:
		return d == Eastbound
	case geo.West:
		return d == Westbound
	}
	return false
}

func (d Direction) valid() bool {
	switch d {
	case Northbound, Southbound, Eastbound, Westbound:
		return true
	}
	return false
}

// StationKind distinguishes stations inside a rest area from standalone
// stations along the highway
type StationKind string

const (
	// RNRLinked stations sit inside a rest area and are definitionally on
	// the corridor
	RNRLinked StationKind = "RNR_LINKED"
	// HighwayStandalone stations are subject to the corridor buffer test
	HighwayStandalone StationKind = "HIGHWAY_STANDALONE"
)

func (k StationKind) valid() bool {
	return k == RNRLinked || k == HighwayStandalone
}

// FacilityFlags records the amenities available at a rest area
type FacilityFlags struct {
	Surau     bool `json:"surau"`
	Toilet    bool `json:"toilet"`
	Foodcourt bool `json:"foodcourt"`
	EV        bool `json:"ev"`
}

// Highway is a tolled expressway with its reference polyline. Increasing
// point index is the NORTH/EAST-bound direction by data contract; the
// loader enforces geometry validity but the direction convention is the
// data pipeline's responsibility.
type Highway struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Code     string       `json:"code"`
	Polyline geo.Polyline `json:"polyline"`

	// EncodedPolyline optionally carries geometry as a Google encoded
	// polyline; the loader decodes it when Polyline is empty
	EncodedPolyline string `json:"encoded_polyline,omitempty"`
}

// RestArea is a rest-and-service (R&R) facility on a highway
type RestArea struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	HighwayID  string        `json:"highwayId"`
	Direction  Direction     `json:"direction"`
	Latitude   float64       `json:"lat"`
	Longitude  float64       `json:"lng"`
	Facilities FacilityFlags `json:"facilities"`
	HasFuel    bool          `json:"hasFuel"`
	FuelBrands []string      `json:"fuelBrands"`
}

// Location returns the rest area's coordinate
func (r RestArea) Location() geo.Point {
	return geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Station is a fuel station, either inside a rest area or standalone on
// the highway
type Station struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Brand     string      `json:"brand"`
	Kind      StationKind `json:"kind"`
	HighwayID string      `json:"highwayId"`
	Direction Direction   `json:"direction"`
	Latitude  float64     `json:"lat"`
	Longitude float64     `json:"lng"`

	// RestAreaID back-references the hosting rest area for RNR-linked
	// stations; empty for standalone stations
	RestAreaID string `json:"rnrId,omitempty"`
}

// Location returns the station's coordinate
func (s Station) Location() geo.Point {
	return geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
}
