package api

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiwaystop/server/internal/config"
	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/lib/ranking"
	"github.com/hiwaystop/server/internal/services"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	ds, err := dataset.LoadSample()
	require.NoError(t, err)
	engine := config.DefaultConfig().Engine
	return NewHandler(services.NewPlacesService(ds, engine), ds, engine)
}

func TestParseQuery(t *testing.T) {
	h := newTestHandler(t)

	q := h.ParseQuery(url.Values{
		"lat":     {"3.25"},
		"lng":     {"101.575"},
		"heading": {"45"},
		"view":    {"FUEL"},
		"brands":  {"Shell, Petronas"},
		"fac":     {"surau,ev"},
		"buffer":  {"500"},
		"range":   {"120"},
		"sort":    {"ETA"},
		"sel":     {"rnr:rnr-tapah-nb"},
	})

	require.NotNil(t, q.Location)
	assert.Equal(t, 3.25, q.Location.Latitude)
	require.NotNil(t, q.HeadingDeg)
	assert.Equal(t, 45.0, *q.HeadingDeg)
	assert.Equal(t, services.ViewFuel, q.View)
	assert.Equal(t, []string{"Shell", "Petronas"}, q.Brands)
	assert.True(t, q.Facilities.Surau)
	assert.True(t, q.Facilities.EV)
	assert.False(t, q.Facilities.Toilet)
	assert.Equal(t, 500.0, q.BufferMeters)
	assert.Equal(t, 120.0, q.RangeKm)
	assert.Equal(t, ranking.SortETA, q.Sort)
	assert.Equal(t, "rnr:rnr-tapah-nb", q.SelectedID)
}

func TestParseQuery_Defaults(t *testing.T) {
	h := newTestHandler(t)
	q := h.ParseQuery(url.Values{})

	assert.Nil(t, q.Location)
	assert.Nil(t, q.HeadingDeg)
	assert.Equal(t, services.ViewAll, q.View)
	assert.Equal(t, ranking.SortDistance, q.Sort)
	assert.Zero(t, q.BufferMeters)
	assert.Zero(t, q.RangeKm)
	assert.Empty(t, q.ManualDir)
}

func TestParseQuery_BufferClamped(t *testing.T) {
	h := newTestHandler(t)

	q := h.ParseQuery(url.Values{"buffer": {"50"}})
	assert.Equal(t, 200.0, q.BufferMeters)

	q = h.ParseQuery(url.Values{"buffer": {"5000"}})
	assert.Equal(t, 800.0, q.BufferMeters)
}

func TestParseQuery_MalformedValuesDegrade(t *testing.T) {
	h := newTestHandler(t)

	q := h.ParseQuery(url.Values{
		"lat":     {"not-a-number"},
		"lng":     {"101.5"},
		"heading": {"fast"},
		"buffer":  {"-100"},
		"dir":     {"UP"},
	})
	assert.Nil(t, q.Location)
	assert.Nil(t, q.HeadingDeg)
	assert.Zero(t, q.BufferMeters)
	assert.Empty(t, q.ManualDir)

	// Out-of-range coordinates are treated as absent
	q = h.ParseQuery(url.Values{"lat": {"95"}, "lng": {"101.5"}})
	assert.Nil(t, q.Location)
}

func TestNearbyHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/places/nearby?lat=3.25&lng=101.575&heading=0", nil)
	rec := httptest.NewRecorder()
	h.Nearby(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Places  []dataset.Place `json:"places"`
		Nearest []dataset.Place `json:"nearest"`
		Status  services.Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Places, 19)
	assert.NotEmpty(t, resp.Nearest)
	assert.Equal(t, "Highway: E1", resp.Status.Highway)
}

func TestNearbyHandler_SelectedNavigationURL(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/places/nearby?lat=3.25&lng=101.575&sel=rnr:rnr-tapah-nb", nil)
	rec := httptest.NewRecorder()
	h.Nearby(rec, req)

	var resp struct {
		NavigationURL string `json:"navigationUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.NavigationURL, "destination=4.161,101.231")
}

func TestNextHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/places/next?lat=3.25&lng=101.575&heading=0", nil)
	rec := httptest.NewRecorder()
	h.Next(rec, req)

	var resp struct {
		Direction geo.Cardinal    `json:"direction"`
		HighwayID string          `json:"highwayId"`
		NextRNR   []dataset.Place `json:"nextRnr"`
		NextFuel  []dataset.Place `json:"nextFuel"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, geo.North, resp.Direction)
	assert.Equal(t, "e1", resp.HighwayID)
	require.NotEmpty(t, resp.NextRNR)
	assert.Equal(t, "rnr:rnr-tapah-nb", resp.NextRNR[0].ID)
	require.NotEmpty(t, resp.NextFuel)
	assert.Equal(t, "fuel:st-tapah-nb-shell", resp.NextFuel[0].ID)
}

func TestTripHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/trip?lat=3.25&lng=101.575&heading=0&range=5", nil)
	rec := httptest.NewRecorder()
	h.Trip(rec, req)

	var resp struct {
		Trip          services.TripStats `json:"trip"`
		Counts        services.Counts    `json:"counts"`
		NavigationURL string             `json:"navigationUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fuel:st-tapah-nb-shell", resp.Trip.TargetID)
	assert.Equal(t, 1, resp.Counts.FuelInRange)
	assert.Contains(t, resp.NavigationURL, "travelmode=driving")
}

func TestHighwaysHandler(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Highways(rec, httptest.NewRequest("GET", "/api/v1/highways", nil))

	var resp struct {
		Highways []dataset.Highway `json:"highways"`
		Brands   []string          `json:"brands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Highways, 3)
	assert.Equal(t, []string{"BHPetrol", "Caltex", "Petron", "Petronas", "Shell"}, resp.Brands)
}

func TestHighwaysKMLHandler(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HighwaysKML(rec, httptest.NewRequest("GET", "/api/v1/highways.kml", nil))

	assert.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<kml")
}

func TestRoutes(t *testing.T) {
	h := newTestHandler(t)
	routes := h.Routes()
	for _, path := range []string{
		"/api/v1/places/nearby",
		"/api/v1/places/next",
		"/api/v1/trip",
		"/api/v1/highways",
		"/api/v1/highways.kml",
	} {
		assert.Contains(t, routes, path)
	}
}
