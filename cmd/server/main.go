package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/dpup/prefab"

	"github.com/hiwaystop/server/internal/api"
	"github.com/hiwaystop/server/internal/config"
	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/services"
)

func main() {
	appConfig := loadConfig()

	ds := loadDataset(appConfig)
	log.Printf("Dataset loaded: %d highways, %d rest areas, %d stations",
		len(ds.Highways), len(ds.RestAreas), len(ds.Stations))

	placesService := services.NewPlacesService(ds, appConfig.Engine)
	handler := api.NewHandler(placesService, ds, appConfig.Engine)

	opts := []prefab.ServerOption{
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
	}
	for path, fn := range handler.Routes() {
		opts = append(opts, prefab.WithHTTPHandlerFunc(path, fn))
	}

	log.Printf("Highway stop finder starting")

	// Server configuration (port, etc.) is loaded from prefab.yaml/env vars
	server := prefab.New(opts...)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig loads configuration using Prefab's config system.
// Configuration comes from prefab.yaml and environment variables with the
// PF__ prefix; unset engine values fall back to built-in defaults.
func loadConfig() *config.Config {
	appConfig := &config.Config{}

	if err := prefab.Config.Unmarshal("data", &appConfig.Data); err != nil {
		log.Fatalf("Failed to unmarshal data section: %v", err)
	}
	if err := prefab.Config.Unmarshal("engine", &appConfig.Engine); err != nil {
		log.Fatalf("Failed to unmarshal engine section: %v", err)
	}

	appConfig.Normalize()
	return appConfig
}

// loadDataset reads the reference dataset from the configured directory,
// falling back to the embedded sample when none is configured. Validation
// failures are fatal: the engine's guarantees assume a well-formed dataset.
func loadDataset(appConfig *config.Config) *dataset.Dataset {
	if appConfig.Data.Dir == "" {
		ds, err := dataset.LoadSample()
		if err != nil {
			log.Fatalf("Failed to load embedded sample dataset: %v", err)
		}
		log.Printf("Using embedded sample dataset")
		return ds
	}

	ds, err := dataset.LoadDir(appConfig.Data.Dir)
	if err != nil {
		log.Fatalf("Failed to load dataset from %s: %v", appConfig.Data.Dir, err)
	}
	return ds
}

// homepageHandler serves a simple HTML homepage at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	// Only handle the root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>hiwaystop</title>
    <style>
        body {
            font-family: 'Courier New', Consolas, monospace;
            background: #000;
            color: #0f0;
            padding: 20px;
            line-height: 1.4;
        }
        a { color: #0ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #ff0; }
    </style>
</head>
<body>
<pre>
<span class="header">hiwaystop</span>

Locator API for rest-and-service areas and fuel stations along
Malaysian highways.

<span class="header">API Endpoints:</span>

  <a href="/api/v1/places/nearby?lat=3.25&amp;lng=101.575&amp;heading=0">GET /api/v1/places/nearby</a>   - Ranked nearby places for a location
  <a href="/api/v1/places/next?lat=3.25&amp;lng=101.575&amp;heading=0">GET /api/v1/places/next</a>     - Next stops ahead in the travel direction
  <a href="/api/v1/trip?lat=3.25&amp;lng=101.575&amp;heading=0">GET /api/v1/trip</a>            - Trip planning summary and status
  <a href="/api/v1/highways">GET /api/v1/highways</a>        - Highways and fuel brands in the dataset
  <a href="/api/v1/highways.kml">GET /api/v1/highways.kml</a>    - Dataset as KML for mapping tools

<span class="header">Query Parameters:</span>

  lat, lng          Current location
  prevLat, prevLng  Previous fix, for movement-derived direction
  heading           Device compass bearing in degrees
  dir               Manual direction override (NORTH/SOUTH/EAST/WEST)
  view              ALL, RNR or FUEL
  brands            Comma-separated fuel brand filter
  fac               Comma-separated facilities (surau,toilet,foodcourt,ev)
  buffer            Corridor buffer in meters (200-800)
  range             Remaining fuel range in km
  sort              DISTANCE, ETA, ALPHA or CONFIDENCE
  sel               Selected place id

<span class="header">Example Usage:</span>
  curl '/api/v1/places/nearby?lat=3.25&amp;lng=101.575&amp;heading=0&amp;view=FUEL&amp;brands=Shell'
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		slog.Error("Failed to write homepage HTML", "error", err)
	}
}
