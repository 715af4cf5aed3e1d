package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiwaystop/server/internal/config"
	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/lib/ranking"
)

func newTestService(t *testing.T) *PlacesService {
	t.Helper()
	ds, err := dataset.LoadSample()
	require.NoError(t, err)
	return NewPlacesService(ds, config.DefaultConfig().Engine)
}

// A traveler northbound on E1 just past the Sungai Buloh RSA
func northboundE1Query() Query {
	heading := 0.0
	return Query{
		Location:   &geo.Point{Latitude: 3.25, Longitude: 101.575},
		HeadingDeg: &heading,
	}
}

func TestEvaluate_NorthboundOnE1(t *testing.T) {
	svc := newTestService(t)
	r := svc.Evaluate(context.Background(), northboundE1Query())

	assert.Equal(t, "e1", r.HighwayID)
	assert.Equal(t, "Highway: E1", r.Status.Highway)
	assert.Equal(t, "Confidence: High (inside corridor)", r.Status.Confidence)

	assert.True(t, r.DirectionKnown)
	assert.Equal(t, geo.North, r.Direction)

	// 10 rest areas plus the 9 stations that survive the 400m corridor
	// buffer (Behrang sits ~600m off the centerline)
	assert.Equal(t, 19, r.Counts.Places)
	assert.Equal(t, 9, r.Counts.FuelTotal)
	for _, p := range r.Places {
		assert.NotEqual(t, "fuel:st-behrang-shell", p.ID)
	}

	require.NotNil(t, r.NearestRNR)
	assert.Equal(t, "rnr:rnr-sungai-buloh", r.NearestRNR.ID)
	require.NotNil(t, r.NearestFuel)
	assert.Equal(t, "fuel:st-sungai-buloh-petronas", r.NearestFuel.ID)

	// Sungai Buloh is behind the traveler, so the next stops start at Tapah
	require.NotEmpty(t, r.NextRNR)
	assert.Equal(t, "rnr:rnr-tapah-nb", r.NextRNR[0].ID)
	require.NotEmpty(t, r.NextFuel)
	assert.Equal(t, "fuel:st-tapah-nb-shell", r.NextFuel[0].ID)
	assert.InDelta(t, 108.2, r.NextFuel[0].DistanceKm, 2)

	require.NotEmpty(t, r.Nearest)
	assert.LessOrEqual(t, len(r.Nearest), 10)
	for i := 1; i < len(r.Nearest); i++ {
		assert.GreaterOrEqual(t, r.Nearest[i].DistanceKm, r.Nearest[i-1].DistanceKm)
	}
}

func TestEvaluate_FuelRangeAdvisory(t *testing.T) {
	svc := newTestService(t)

	q := northboundE1Query()
	q.RangeKm = 50
	r := svc.Evaluate(context.Background(), q)
	// Sungai Buloh and Genting Sempah stations are within 50km
	assert.Equal(t, 2, r.Counts.FuelInRange)
	assert.False(t, r.Trip.FuelRisk)

	// One station left in range: the next fuel stop outranks closer rest areas
	q.RangeKm = 5
	r = svc.Evaluate(context.Background(), q)
	assert.Equal(t, 1, r.Counts.FuelInRange)
	assert.Equal(t, "fuel:st-tapah-nb-shell", r.Trip.TargetID)
	assert.False(t, r.Trip.FuelRisk)

	// Range unset keeps the advisory disabled
	q.RangeKm = 0
	r = svc.Evaluate(context.Background(), q)
	assert.Equal(t, -1, r.Counts.FuelInRange)
	assert.False(t, r.Trip.FuelRisk)
}

func TestEvaluate_FuelRiskWhenNothingInRange(t *testing.T) {
	svc := newTestService(t)
	q := northboundE1Query()
	q.RangeKm = 1
	r := svc.Evaluate(context.Background(), q)
	assert.Equal(t, 0, r.Counts.FuelInRange)
	assert.True(t, r.Trip.FuelRisk)
}

func TestEvaluate_TripStats(t *testing.T) {
	svc := newTestService(t)
	r := svc.Evaluate(context.Background(), northboundE1Query())

	// Next stop is Tapah, roughly 108km at 90km/h
	assert.NotEmpty(t, r.Trip.TargetID)
	assert.InDelta(t, 108.2, r.Trip.NextStopKm, 2)
	assert.Equal(t, "Plan short break", r.Trip.RestSuggestion)
	assert.Equal(t, 120, r.Trip.RestAdviceMinutes)
}

func TestEvaluate_NoLocation(t *testing.T) {
	svc := newTestService(t)
	r := svc.Evaluate(context.Background(), Query{})

	assert.Equal(t, "Highway: Not selected yet", r.Status.Highway)
	assert.Equal(t, "Confidence: Waiting for location", r.Status.Confidence)
	assert.Empty(t, r.Nearest)
	assert.Empty(t, r.NextRNR)
	assert.Equal(t, -1, r.Counts.FuelInRange)
	assert.Equal(t, "Every 120 min", r.Trip.RestSuggestion)

	// Filters still apply without a location
	assert.Equal(t, 19, r.Counts.Places)
}

func TestEvaluate_ViewModes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	q := northboundE1Query()
	q.View = ViewRNR
	r := svc.Evaluate(ctx, q)
	assert.Equal(t, 10, r.Counts.Places)
	for _, p := range r.Places {
		assert.Equal(t, dataset.PlaceRNR, p.Kind)
	}

	q.View = ViewFuel
	r = svc.Evaluate(ctx, q)
	assert.Equal(t, 9, r.Counts.Places)
	for _, p := range r.Places {
		assert.Equal(t, dataset.PlaceFuel, p.Kind)
	}
}

func TestEvaluate_BrandFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	q := northboundE1Query()
	q.View = ViewFuel
	q.Brands = []string{"Shell"}
	r := svc.Evaluate(ctx, q)
	// Behrang is Shell but outside the default buffer
	assert.Equal(t, 2, r.Counts.Places)
	assert.Equal(t, 2, r.Counts.FuelTotal)

	// Widening the corridor buffer admits it
	q.BufferMeters = 800
	r = svc.Evaluate(ctx, q)
	assert.Equal(t, 3, r.Counts.Places)
	assert.Equal(t, 3, r.Counts.FuelTotal)
}

func TestEvaluate_FacilityFilter(t *testing.T) {
	svc := newTestService(t)
	q := northboundE1Query()
	q.Facilities = dataset.FacilityFlags{EV: true}
	r := svc.Evaluate(context.Background(), q)

	// Only EV-equipped rest areas survive; fuel stations carry no
	// facility data and drop out of the merged set
	assert.Equal(t, 4, r.Counts.Places)
	for _, p := range r.Places {
		assert.Equal(t, dataset.PlaceRNR, p.Kind)
		assert.True(t, p.Facilities.EV)
	}
}

func TestEvaluate_UnknownDirection(t *testing.T) {
	svc := newTestService(t)
	q := Query{Location: &geo.Point{Latitude: 3.25, Longitude: 101.575}}
	r := svc.Evaluate(context.Background(), q)

	assert.False(t, r.DirectionKnown)
	assert.Empty(t, r.NextRNR)
	assert.Empty(t, r.NextFuel)
	require.NotEmpty(t, r.Nearest)

	// Trip planning falls back to the plain nearest place
	assert.Equal(t, r.Nearest[0].ID, r.Trip.TargetID)
	assert.Equal(t, "No immediate rest needed", r.Trip.RestSuggestion)
}

func TestEvaluate_OffCorridor(t *testing.T) {
	svc := newTestService(t)
	heading := 0.0
	q := Query{
		Location:   &geo.Point{Latitude: 3.8, Longitude: 103.33}, // Kuantan
		HeadingDeg: &heading,
	}
	r := svc.Evaluate(context.Background(), q)

	assert.Empty(t, r.HighwayID)
	assert.NotEmpty(t, r.NearestHighway)
	assert.Contains(t, r.Status.Highway, "Uncertain")
	assert.Equal(t, "Confidence: Very low (far from corridor)", r.Status.Confidence)

	// No confirmed highway means no directional next stops
	assert.Empty(t, r.NextRNR)
	assert.Empty(t, r.NextFuel)
	assert.NotEmpty(t, r.Nearest)
}

func TestEvaluate_NearMiss(t *testing.T) {
	svc := newTestService(t)
	// Roughly 2.5km west of the E1 centerline: too far to confirm, close
	// enough to call it a wobble rather than the wrong road
	q := Query{Location: &geo.Point{Latitude: 3.68, Longitude: 101.493}}
	r := svc.Evaluate(context.Background(), q)

	assert.Empty(t, r.HighwayID)
	assert.Equal(t, "e1", r.NearestHighway)
	assert.Contains(t, r.Status.Highway, "E1")
	assert.Equal(t, "Confidence: Low (outside corridor)", r.Status.Confidence)
}

func TestEvaluate_SelectedPlace(t *testing.T) {
	svc := newTestService(t)
	q := northboundE1Query()
	q.SelectedID = "rnr:rnr-gurun"
	r := svc.Evaluate(context.Background(), q)

	require.NotNil(t, r.Selected)
	assert.Equal(t, "rnr:rnr-gurun", r.Selected.ID)
	assert.Greater(t, r.Selected.DistanceKm, 0.0)
	assert.Equal(t, "rnr:rnr-gurun", r.Trip.TargetID)

	q.SelectedID = "rnr:no-such-place"
	r = svc.Evaluate(context.Background(), q)
	assert.Nil(t, r.Selected)
}

func TestEvaluate_SortMode(t *testing.T) {
	svc := newTestService(t)
	q := northboundE1Query()
	q.Sort = ranking.SortAlpha
	r := svc.Evaluate(context.Background(), q)

	require.NotEmpty(t, r.Nearest)
	for i := 1; i < len(r.Nearest); i++ {
		assert.LessOrEqual(t, r.Nearest[i-1].Name, r.Nearest[i].Name)
	}
}

func TestParseViewMode(t *testing.T) {
	assert.Equal(t, ViewRNR, ParseViewMode("RNR"))
	assert.Equal(t, ViewFuel, ParseViewMode("FUEL"))
	assert.Equal(t, ViewAll, ParseViewMode("ALL"))
	assert.Equal(t, ViewAll, ParseViewMode(""))
	assert.Equal(t, ViewAll, ParseViewMode("bogus"))
}

func TestNavigationURL(t *testing.T) {
	got := NavigationURL(geo.Point{Latitude: 4.161, Longitude: 101.231})
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=4.161,101.231&travelmode=driving", got)
}
