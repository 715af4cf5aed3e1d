package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hiwaystop/server/internal/config"
	"github.com/hiwaystop/server/internal/dataset"
	"github.com/hiwaystop/server/internal/lib/corridor"
	"github.com/hiwaystop/server/internal/lib/geo"
	"github.com/hiwaystop/server/internal/services"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "distance":
		handleDistance()
	case "locate":
		handleLocate()
	case "corridor":
		handleCorridor()
	case "next":
		handleNext()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func loadDataset(dir string) *dataset.Dataset {
	if dir == "" {
		ds, err := dataset.LoadSample()
		if err != nil {
			log.Fatalf("Error loading sample dataset: %v", err)
		}
		return ds
	}
	ds, err := dataset.LoadDir(dir)
	if err != nil {
		log.Fatalf("Error loading dataset from %s: %v", dir, err)
	}
	return ds
}

func handleDistance() {
	fs := flag.NewFlagSet("distance", flag.ExitOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")

	fs.Parse(os.Args[2:])

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-matcher distance --lat1 3.1578 --lng1 101.7117 --lat2 3.2379 --lng2 101.6840")
		fmt.Println("  (Distance between KLCC and Batu Caves)")
		os.Exit(1)
	}

	p1 := geo.Point{Latitude: *lat1, Longitude: *lng1}
	p2 := geo.Point{Latitude: *lat2, Longitude: *lng2}
	km := geo.HaversineKm(p1, p2)

	fmt.Printf("Distance between points:\n")
	fmt.Printf("  Point 1: (%.6f, %.6f)\n", p1.Latitude, p1.Longitude)
	fmt.Printf("  Point 2: (%.6f, %.6f)\n", p2.Latitude, p2.Longitude)
	fmt.Printf("  Distance: %.2f km\n", km)
	fmt.Printf("  Bearing: %.1f degrees (%s)\n",
		geo.BearingDegrees(p1, p2), geo.CardinalFromBearing(geo.BearingDegrees(p1, p2)))
}

func handleLocate() {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude")
	lng := fs.Float64("lng", 0, "Longitude")
	dataDir := fs.String("data", "", "Dataset directory (empty for embedded sample)")

	fs.Parse(os.Args[2:])

	if *lat == 0 && *lng == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-matcher locate --lat 3.25 --lng 101.575")
		fmt.Println("  (Detect the highway at a point on the E1)")
		os.Exit(1)
	}

	ds := loadDataset(*dataDir)
	filter := corridor.NewFilter(ds.Polylines())
	d := filter.ClosestHighway(geo.Point{Latitude: *lat, Longitude: *lng})

	fmt.Printf("Highway detection:\n")
	fmt.Printf("  Point: (%.6f, %.6f)\n", *lat, *lng)
	if d.Confirmed() {
		fmt.Printf("  Highway: %s (confirmed, %.0fm from centerline)\n", d.HighwayID, d.DistanceMeters)
	} else {
		fmt.Printf("  Highway: uncertain\n")
		fmt.Printf("  Nearest: %s at %.1f km\n", d.NearestHighwayID, d.DistanceMeters/1000)
	}
}

func handleCorridor() {
	fs := flag.NewFlagSet("corridor", flag.ExitOnError)
	buffer := fs.Float64("buffer", 400, "Corridor buffer in meters")
	dataDir := fs.String("data", "", "Dataset directory (empty for embedded sample)")

	fs.Parse(os.Args[2:])

	ds := loadDataset(*dataDir)
	filter := corridor.NewFilter(ds.Polylines())
	kept, stats := filter.FilterHighwayOnly(ds.Stations, *buffer)

	fmt.Printf("Corridor filter at %.0fm buffer:\n", *buffer)
	fmt.Printf("  Stations: %d total, %d passed\n", len(ds.Stations), stats.Passed)
	fmt.Printf("  RNR-linked (unconditional): %d\n", stats.RNRLinked)
	fmt.Printf("  Outside buffer: %d\n", stats.OutsideBuffer)
	fmt.Printf("  Unknown highway: %d\n", stats.UnknownHighway)
	for _, st := range kept {
		dist := geo.DistanceToPolylineMeters(st.Location(), ds.Polylines()[st.HighwayID])
		fmt.Printf("    %-28s %-10s %s  %.0fm\n", st.ID, st.Brand, st.Kind, dist)
	}
}

func handleNext() {
	fs := flag.NewFlagSet("next", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude")
	lng := fs.Float64("lng", 0, "Longitude")
	dir := fs.String("dir", "", "Travel direction (NORTH/SOUTH/EAST/WEST)")
	dataDir := fs.String("data", "", "Dataset directory (empty for embedded sample)")

	fs.Parse(os.Args[2:])

	if *lat == 0 && *lng == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-matcher next --lat 3.25 --lng 101.575 --dir NORTH")
		fmt.Println("  (Next stops ahead going north on the E1)")
		os.Exit(1)
	}

	ds := loadDataset(*dataDir)
	svc := services.NewPlacesService(ds, config.DefaultConfig().Engine)

	result := svc.Evaluate(context.Background(), services.Query{
		Location:  &geo.Point{Latitude: *lat, Longitude: *lng},
		ManualDir: geo.Cardinal(*dir),
	})

	fmt.Printf("%s\n", result.Status.Highway)
	fmt.Printf("%s\n", result.Status.Confidence)
	if !result.DirectionKnown {
		fmt.Printf("Direction unknown, pass --dir\n")
		return
	}
	fmt.Printf("Direction: %s\n", result.Direction)

	fmt.Printf("Next rest areas:\n")
	for _, p := range result.NextRNR {
		fmt.Printf("  %-28s %.1f km, %d min\n", p.Name, p.DistanceKm, p.ETAMinutes)
	}
	fmt.Printf("Next fuel:\n")
	for _, p := range result.NextFuel {
		fmt.Printf("  %-28s %-10s %.1f km, %d min\n", p.Name, p.Brand, p.DistanceKm, p.ETAMinutes)
	}
}

func printUsage() {
	fmt.Printf(`test-matcher - Matching engine diagnostics tool

USAGE:
    test-matcher <command> [options]

COMMANDS:
    distance    Great-circle distance and bearing between two points
    locate      Detect the highway at a coordinate
    corridor    Run the corridor filter over the station dataset
    next        Next stops ahead for a location and direction
    help        Show this help message

EXAMPLES:
    # Distance between KLCC and Batu Caves
    test-matcher distance --lat1 3.1578 --lng1 101.7117 --lat2 3.2379 --lng2 101.6840

    # Which highway is this point on?
    test-matcher locate --lat 3.25 --lng 101.575

    # Stations surviving a wider corridor buffer
    test-matcher corridor --buffer 800

    # Next stops going north on the E1
    test-matcher next --lat 3.25 --lng 101.575 --dir NORTH
`)
}
