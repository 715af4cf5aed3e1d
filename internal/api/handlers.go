// Package api exposes the matching engine over JSON HTTP endpoints
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hiwaystop/server/internal/config"
	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/export"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/lib/ranking"
	"github.com/hiwaystop/server/internal/services"
)

// Handler serves the places API from a PlacesService
type Handler struct {
	svc    *services.PlacesService
	ds     *dataset.Dataset
	engine config.EngineConfig
}

// NewHandler creates a Handler over the given service and dataset
func NewHandler(svc *services.PlacesService, ds *dataset.Dataset, engine config.EngineConfig) *Handler {
	return &Handler{svc: svc, ds: ds, engine: engine}
}

// Routes maps URL paths to their handler functions, for registration with
// whatever mux the server uses
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/api/v1/places/nearby": h.Nearby,
		"/api/v1/places/next":   h.Next,
		"/api/v1/trip":          h.Trip,
		"/api/v1/highways":      h.Highways,
		"/api/v1/highways.kml":  h.HighwaysKML,
	}
}

// ParseQuery extracts and normalizes the engine query from URL parameters.
// Malformed values degrade to their defaults instead of failing the
// request; a client with a broken GPS reading still gets filter results.
func (h *Handler) ParseQuery(q url.Values) services.Query {
	out := services.Query{
		View:        services.ParseViewMode(q.Get("view")),
		Sort:        ranking.ParseSortMode(q.Get("sort")),
		SelectedID:  q.Get("sel"),
		Destination: q.Get("dest"),
	}

	out.Location = parsePoint(q.Get("lat"), q.Get("lng"))
	out.PreviousLoc = parsePoint(q.Get("prevLat"), q.Get("prevLng"))

	if raw := q.Get("heading"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			out.HeadingDeg = &v
		}
	}

	switch d := geo.Cardinal(q.Get("dir")); d {
	case geo.North, geo.East, geo.South, geo.West:
		out.ManualDir = d
	}

	if raw := q.Get("brands"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out.Brands = append(out.Brands, b)
			}
		}
	}

	for _, f := range strings.Split(q.Get("fac"), ",") {
		switch strings.TrimSpace(f) {
		case "surau":
			out.Facilities.Surau = true
		case "toilet":
			out.Facilities.Toilet = true
		case "foodcourt":
			out.Facilities.Foodcourt = true
		case "ev":
			out.Facilities.EV = true
		}
	}

	if v, err := strconv.ParseFloat(q.Get("buffer"), 64); err == nil && v > 0 {
		if v < h.engine.BufferMinMeters {
			v = h.engine.BufferMinMeters
		}
		if v > h.engine.BufferMaxMeters {
			v = h.engine.BufferMaxMeters
		}
		out.BufferMeters = v
	}

	if v, err := strconv.ParseFloat(q.Get("range"), 64); err == nil && v > 0 {
		out.RangeKm = v
	}

	return out
}

func parsePoint(latRaw, lngRaw string) *geo.Point {
	if latRaw == "" || lngRaw == "" {
		return nil
	}
	lat, err1 := strconv.ParseFloat(latRaw, 64)
	lng, err2 := strconv.ParseFloat(lngRaw, 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	p := geo.Point{Latitude: lat, Longitude: lng}
	if !geo.IsValidCoordinate(p) {
		return nil
	}
	return &p
}

// Nearby runs the full evaluation and returns the complete result
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Evaluate(r.Context(), h.ParseQuery(r.URL.Query()))

	resp := struct {
		*services.Result
		NavigationURL string `json:"navigationUrl,omitempty"`
	}{Result: result}
	if result.Selected != nil {
		resp.NavigationURL = services.NavigationURL(result.Selected.Location())
	}
	writeJSON(w, resp)
}

// Next returns the direction-aware next stops only
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Evaluate(r.Context(), h.ParseQuery(r.URL.Query()))
	writeJSON(w, struct {
		Direction      geo.Cardinal    `json:"direction,omitempty"`
		DirectionKnown bool            `json:"directionKnown"`
		HighwayID      string          `json:"highwayId,omitempty"`
		NextRNR        []dataset.Place `json:"nextRnr"`
		NextFuel       []dataset.Place `json:"nextFuel"`
	}{
		Direction:      result.Direction,
		DirectionKnown: result.DirectionKnown,
		HighwayID:      result.HighwayID,
		NextRNR:        result.NextRNR,
		NextFuel:       result.NextFuel,
	})
}

// Trip returns the trip-planning summary and status lines, with a
// navigation link to the target stop when one is resolved
func (h *Handler) Trip(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Evaluate(r.Context(), h.ParseQuery(r.URL.Query()))

	resp := struct {
		Trip          services.TripStats `json:"trip"`
		Status        services.Status    `json:"status"`
		Counts        services.Counts    `json:"counts"`
		NavigationURL string             `json:"navigationUrl,omitempty"`
	}{Trip: result.Trip, Status: result.Status, Counts: result.Counts}

	if result.Trip.TargetID != "" {
		for _, p := range result.Places {
			if p.ID == result.Trip.TargetID {
				resp.NavigationURL = services.NavigationURL(p.Location())
				break
			}
		}
	}
	writeJSON(w, resp)
}

// Highways lists the loaded highways and the fuel brands present in the
// dataset, for populating client-side filter controls
func (h *Handler) Highways(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Highways []dataset.Highway `json:"highways"`
		Brands   []string          `json:"brands"`
	}{Highways: h.ds.Highways, Brands: h.ds.Brands()})
}

// HighwaysKML renders the dataset as a KML document
func (h *Handler) HighwaysKML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	if err := export.WriteKML(w, h.ds); err != nil {
		log.Println("KML export error:", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("JSON encode error:", err)
	}
}
