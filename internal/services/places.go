package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/hiwaystop/server/internal/cache"
	"github.com/hiwaystop/server/internal/config"
	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/corridor"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/lib/heading"
	"github.com/hiwaystop/server/internal/lib/ranking"
	"github.com/hiwaystop/server/internal/lib/spatial"
)

// ViewMode selects which place kinds a query returns
type ViewMode string

const (
	ViewAll  ViewMode = "ALL"
	ViewRNR  ViewMode = "RNR"
	ViewFuel ViewMode = "FUEL"
)

// ParseViewMode maps a query value onto a view mode, defaulting to ALL
func ParseViewMode(raw string) ViewMode {
	switch ViewMode(raw) {
	case ViewRNR, ViewFuel:
		return ViewMode(raw)
	default:
		return ViewAll
	}
}

// Query carries one evaluation's inputs: the traveler's situation plus the
// active filters. All fields are plain serializable values with defined
// defaults.
type Query struct {
	Location    *geo.Point
	PreviousLoc *geo.Point
	HeadingDeg  *float64
	ManualDir   geo.Cardinal

	View         ViewMode
	Destination  string // opaque label, never geocoded
	Brands       []string
	Facilities   dataset.FacilityFlags
	BufferMeters float64
	RangeKm      float64 // fuel range; 0 means unset
	Sort         ranking.SortMode
	SelectedID   string
}

// Counts lets callers distinguish "no data loaded" from "no matches for
// the current filters" without inspecting empty result lists
type Counts struct {
	Places      int `json:"places"`
	FuelTotal   int `json:"fuelTotal"`
	FuelInRange int `json:"fuelInRange"` // -1 when range or location unset
}

// TripStats is the trip-planning summary derived from the next stop and
// the fuel-range advisory
type TripStats struct {
	TargetID           string  `json:"targetId,omitempty"`
	TargetName         string  `json:"targetName,omitempty"`
	NextStopKm         float64 `json:"nextStopKm"`
	NextStopETAMinutes int     `json:"nextStopEtaMinutes"`
	RestAdviceMinutes  int     `json:"restAdviceMinutes"`
	RestSuggestion     string  `json:"restSuggestion"`
	FuelRisk           bool    `json:"fuelRisk"`
}

// Status carries the user-visible state lines; a failed or missing
// location degrades these strings, never the filter results
type Status struct {
	Highway    string `json:"highway"`
	Confidence string `json:"confidence"`
}

// Result is one full evaluation of the engine against a query
type Result struct {
	Places []dataset.Place `json:"places"`

	Nearest     []dataset.Place `json:"nearest"`
	NearestRNR  *dataset.Place  `json:"nearestRnr,omitempty"`
	NearestFuel *dataset.Place  `json:"nearestFuel,omitempty"`
	NextRNR     []dataset.Place `json:"nextRnr"`
	NextFuel    []dataset.Place `json:"nextFuel"`

	Direction      geo.Cardinal   `json:"direction,omitempty"`
	DirectionKnown bool           `json:"directionKnown"`
	HighwayID      string         `json:"highwayId,omitempty"`
	NearestHighway string         `json:"nearestHighwayId,omitempty"`
	HighwayMeters  float64        `json:"highwayDistanceMeters,omitempty"`
	Selected       *dataset.Place `json:"selected,omitempty"`

	Counts Counts    `json:"counts"`
	Trip   TripStats `json:"trip"`
	Status Status    `json:"status"`
}

// PlacesService evaluates traveler queries against the loaded dataset.
// All derived state (corridor-filtered stations, grids, rankings) is
// recomputed per query from immutable inputs; the only cross-query state
// is a memo of corridor filter output keyed by buffer distance.
type PlacesService struct {
	ds     *dataset.Dataset
	engine config.EngineConfig
	filter *corridor.Filter

	rnrPlaces []dataset.Place
	fuelMemo  *cache.Memo[[]dataset.Place]
}

// NewPlacesService creates a PlacesService over a validated dataset
func NewPlacesService(ds *dataset.Dataset, engine config.EngineConfig) *PlacesService {
	rnrPlaces := make([]dataset.Place, 0, len(ds.RestAreas))
	for _, r := range ds.RestAreas {
		rnrPlaces = append(rnrPlaces, dataset.RestAreaPlace(r))
	}

	return &PlacesService{
		ds:        ds,
		engine:    engine,
		filter:    corridor.NewFilter(ds.Polylines()),
		rnrPlaces: rnrPlaces,
		fuelMemo:  cache.NewMemo[[]dataset.Place](),
	}
}

// Brands returns the fuel brands present in the dataset
func (s *PlacesService) Brands() []string {
	return s.ds.Brands()
}

// Highways returns the loaded highways
func (s *PlacesService) Highways() []dataset.Highway {
	return s.ds.Highways
}

// fuelPlaces returns corridor-verified fuel places for a buffer distance,
// memoized per buffer since the station and highway data never change
func (s *PlacesService) fuelPlaces(ctx context.Context, bufferMeters float64) []dataset.Place {
	key := strconv.FormatFloat(bufferMeters, 'f', -1, 64)
	if cached, ok := s.fuelMemo.Get(key); ok {
		return cached
	}

	kept, stats := s.filter.FilterHighwayOnly(s.ds.Stations, bufferMeters)
	if stats.UnknownHighway > 0 {
		log.Printf("Corridor filter: %d stations reference unknown highways", stats.UnknownHighway)
	}

	places := make([]dataset.Place, 0, len(kept))
	for _, st := range kept {
		places = append(places, dataset.StationPlace(st))
	}
	s.fuelMemo.Set(ctx, key, places)
	return places
}

// Evaluate runs the full pipeline for one query: corridor filter, view and
// attribute filters, spatial index build, proximity and directional
// ranking, fuel-range advisory and status derivation
func (s *PlacesService) Evaluate(ctx context.Context, q Query) *Result {
	engine := s.engine
	buffer := q.BufferMeters
	if buffer <= 0 {
		buffer = engine.BufferMeters
	}
	if q.View == "" {
		q.View = ViewAll
	}
	if q.Sort == "" {
		q.Sort = ranking.SortDistance
	}

	fuelPlaces := s.fuelPlaces(ctx, buffer)
	places := s.mergePlaces(q, fuelPlaces)

	eligibleFuel := filterBrands(fuelPlaces, q.Brands)

	result := &Result{
		Places:   places,
		Nearest:  []dataset.Place{},
		NextRNR:  []dataset.Place{},
		NextFuel: []dataset.Place{},
		Counts: Counts{
			Places:      len(places),
			FuelTotal:   len(eligibleFuel),
			FuelInRange: -1,
		},
	}

	if dir, ok := s.resolveDirection(q); ok {
		result.Direction = dir
		result.DirectionKnown = true
	}

	if q.Location == nil {
		result.Status = Status{
			Highway:    "Highway: Not selected yet",
			Confidence: "Confidence: Waiting for location",
		}
		result.Trip = s.tripStats(nil, result.Counts, q)
		return result
	}
	user := *q.Location

	detection := s.filter.ClosestHighway(user)
	result.HighwayID = detection.HighwayID
	result.NearestHighway = detection.NearestHighwayID
	result.HighwayMeters = detection.DistanceMeters
	result.Status = s.status(detection)

	// Nearest top-K across the merged set, via the grid pre-filter
	grid := spatial.NewGrid(places, engine.GridCellSizeDeg, placeLocation)
	candidates := ranking.NearestCandidates(user, grid, places)
	pool := ranking.Nearest(user, candidates, engine.NearestPool)
	ranking.Sort(pool, q.Sort)
	if len(pool) > engine.NearestLimit {
		pool = pool[:engine.NearestLimit]
	}
	result.Nearest = pool

	// Closest single facility of each kind, unaffected by view mode
	rnrGrid := spatial.NewGrid(s.rnrPlaces, engine.GridCellSizeDeg, placeLocation)
	if top := ranking.Nearest(user, ranking.NearestCandidates(user, rnrGrid, s.rnrPlaces), 1); len(top) > 0 {
		result.NearestRNR = &top[0]
	}
	fuelGrid := spatial.NewGrid(fuelPlaces, engine.GridCellSizeDeg, placeLocation)
	if top := ranking.Nearest(user, ranking.NearestCandidates(user, fuelGrid, fuelPlaces), 1); len(top) > 0 {
		result.NearestFuel = &top[0]
	}

	// Direction-aware next stops need a confirmed highway and a direction
	if detection.Confirmed() && result.DirectionKnown {
		if hw, ok := s.ds.HighwayByID(detection.HighwayID); ok {
			var rnrAhead, fuelAhead []dataset.Place
			for _, p := range places {
				if p.HighwayID != hw.ID || !p.Direction.Matches(result.Direction) {
					continue
				}
				if p.Kind == dataset.PlaceRNR {
					rnrAhead = append(rnrAhead, p)
				} else {
					fuelAhead = append(fuelAhead, p)
				}
			}
			result.NextRNR = ranking.NextAhead(user, hw.Polyline, result.Direction, rnrAhead, engine.NextAheadLimit)
			result.NextFuel = ranking.NextAhead(user, hw.Polyline, result.Direction, fuelAhead, engine.NextAheadLimit)
		}
	}

	if q.RangeKm > 0 {
		inRange := 0
		for _, p := range eligibleFuel {
			if geo.HaversineKm(user, p.Location()) <= q.RangeKm {
				inRange++
			}
		}
		result.Counts.FuelInRange = inRange
	}

	result.Selected = s.findSelected(q.SelectedID, user, result)
	result.Trip = s.tripStats(result, result.Counts, q)
	return result
}

func placeLocation(p dataset.Place) geo.Point { return p.Location() }

// mergePlaces assembles the candidate set for a query: view mode decides
// the kinds, then brand and facility filters narrow within kind
func (s *PlacesService) mergePlaces(q Query, fuelPlaces []dataset.Place) []dataset.Place {
	var merged []dataset.Place
	if q.View == ViewAll || q.View == ViewRNR {
		merged = append(merged, s.rnrPlaces...)
	}
	if q.View == ViewAll || q.View == ViewFuel {
		merged = append(merged, fuelPlaces...)
	}

	merged = filterBrands(merged, q.Brands)

	if q.Facilities != (dataset.FacilityFlags{}) {
		want := q.Facilities
		filtered := merged[:0]
		for _, p := range merged {
			if p.Kind != dataset.PlaceRNR || p.Facilities == nil {
				continue
			}
			f := *p.Facilities
			if want.Surau && !f.Surau {
				continue
			}
			if want.Toilet && !f.Toilet {
				continue
			}
			if want.Foodcourt && !f.Foodcourt {
				continue
			}
			if want.EV && !f.EV {
				continue
			}
			filtered = append(filtered, p)
		}
		merged = filtered
	}

	return dataset.DedupeByID(merged)
}

// filterBrands keeps non-fuel places and fuel places whose brand is
// selected; an empty selection keeps everything
func filterBrands(places []dataset.Place, brands []string) []dataset.Place {
	if len(brands) == 0 {
		return places
	}
	selected := make(map[string]bool, len(brands))
	for _, b := range brands {
		selected[b] = true
	}
	out := make([]dataset.Place, 0, len(places))
	for _, p := range places {
		if p.Kind == dataset.PlaceFuel && !selected[p.Brand] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *PlacesService) resolveDirection(q Query) (geo.Cardinal, bool) {
	in := heading.Inputs{Manual: q.ManualDir}
	if q.HeadingDeg != nil {
		in.DeviceHeading = *q.HeadingDeg
		in.HasHeading = true
	}
	if q.PreviousLoc != nil {
		in.Previous = *q.PreviousLoc
		in.HasPrevious = true
	}
	if q.Location != nil {
		in.Current = *q.Location
		in.HasCurrent = true
	}
	return heading.Resolve(in)
}

// status renders the highway and confidence lines for a located traveler
func (s *PlacesService) status(d corridor.Detection) Status {
	if d.Confirmed() {
		code := d.HighwayID
		if hw, ok := s.ds.HighwayByID(d.HighwayID); ok {
			code = hw.Code
		}
		return Status{
			Highway:    fmt.Sprintf("Highway: %s", code),
			Confidence: "Confidence: High (inside corridor)",
		}
	}

	st := Status{Highway: "Highway: Uncertain", Confidence: "Confidence: Very low (far from corridor)"}
	if hw, ok := s.ds.HighwayByID(d.NearestHighwayID); ok {
		st.Highway = fmt.Sprintf("Highway: Uncertain (~%.1f km from %s)", d.DistanceMeters/1000, hw.Code)
	}
	if d.DistanceMeters <= corridor.ConfirmRadiusMeters+lowConfidenceMarginMeters {
		st.Confidence = "Confidence: Low (outside corridor)"
	}
	return st
}

// lowConfidenceMarginMeters extends the confirmation radius for the "low"
// confidence band: just outside the corridor is a GPS wobble, far outside
// is the wrong road entirely
const lowConfidenceMarginMeters = 1500

// tripStats derives the next-stop target and rest advice. When the fuel
// range is tight (at most one eligible station in range) the next fuel
// stop takes priority over closer rest areas.
func (s *PlacesService) tripStats(r *Result, counts Counts, q Query) TripStats {
	stats := TripStats{
		RestAdviceMinutes: 120,
		RestSuggestion:    "Every 120 min",
		FuelRisk:          q.RangeKm > 0 && counts.FuelInRange == 0,
	}
	if r == nil {
		return stats
	}

	target := r.Selected
	if target == nil {
		target = s.priorityNextStop(r, counts, q)
	}
	if target == nil {
		return stats
	}

	stats.TargetID = target.ID
	stats.TargetName = target.Name
	stats.NextStopKm = target.DistanceKm
	stats.NextStopETAMinutes = geo.ETAMinutes(target.DistanceKm, s.engine.TripSpeedKmh)

	switch {
	case stats.NextStopETAMinutes < 60:
		stats.RestSuggestion = "No immediate rest needed"
	case stats.NextStopETAMinutes <= 120:
		stats.RestSuggestion = "Plan short break"
	default:
		stats.RestSuggestion = "Take a break soon"
	}
	return stats
}

func (s *PlacesService) priorityNextStop(r *Result, counts Counts, q Query) *dataset.Place {
	byDistance := func(places []dataset.Place) []dataset.Place {
		out := append([]dataset.Place{}, places...)
		ranking.Sort(out, ranking.SortDistance)
		return out
	}

	nextFuel := byDistance(r.NextFuel)
	fuelTight := q.RangeKm > 0 && counts.FuelInRange >= 0 && counts.FuelInRange <= 1
	if fuelTight && len(nextFuel) > 0 {
		return &nextFuel[0]
	}

	directional := byDistance(append(append([]dataset.Place{}, r.NextFuel...), r.NextRNR...))
	if len(directional) > 0 {
		return &directional[0]
	}
	if len(r.Nearest) > 0 {
		return &r.Nearest[0]
	}
	return nil
}

// findSelected re-resolves a previously selected place id against the
// current results, enriching it with distance and ETA for display
func (s *PlacesService) findSelected(id string, user geo.Point, r *Result) *dataset.Place {
	if id == "" {
		return nil
	}

	pools := [][]dataset.Place{r.Nearest, r.NextRNR, r.NextFuel, r.Places}
	for _, pool := range pools {
		for _, p := range pool {
			if p.ID != id {
				continue
			}
			if p.DistanceKm == 0 && p.ETAMinutes == 0 {
				p.DistanceKm = geo.HaversineKm(user, p.Location())
				p.ETAMinutes = geo.ETAMinutes(p.DistanceKm, ranking.DefaultSpeedKmh)
			}
			return &p
		}
	}
	return nil
}
