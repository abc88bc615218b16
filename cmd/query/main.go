package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"

	"github.com/1F47E/point-within-poly/pkg/classify"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

type queryResult struct {
	Longitude  float64  `json:"longitude"`
	Latitude   float64  `json:"latitude"`
	Zone       string   `json:"zone"`
	Candidates []string `json:"candidates"`
}

func main() {
	var (
		zonesFile = flag.String("z", "zones.kml", "Zones KML file or .gob snapshot")
		lon       = flag.Float64("lon", 0, "Point longitude")
		lat       = flag.Float64("lat", 0, "Point latitude")
		boundary  = flag.String("boundary", "strict", "Boundary policy: strict, inclusive")
		useTree   = flag.Bool("rtree", false, "Filter zones through an envelope R-tree")
		// Output format
		outputJSON = flag.Bool("json", false, "Output result as JSON")
	)
	flag.Parse()

	contains, ok := classify.Policy(*boundary)
	if !ok {
		log.Fatalf("Unknown boundary policy: %s", *boundary)
	}

	var opts []zones.Option
	if *useTree {
		opts = append(opts, zones.WithEnvelopeTree())
	}

	log.Printf("Loading zones from %s...\n", *zonesFile)
	idx, err := zones.Load(*zonesFile, opts...)
	if err != nil {
		log.Fatalf("Failed to load zones: %v", err)
	}
	log.Printf("Loaded %d zones\n", idx.Len())

	p := orb.Point{*lon, *lat}
	cl := classify.New(idx, classify.WithContainment(contains))

	result := queryResult{
		Longitude:  *lon,
		Latitude:   *lat,
		Zone:       cl.Zone(p),
		Candidates: []string{},
	}
	for _, i := range idx.Candidates(p) {
		result.Candidates = append(result.Candidates, idx.At(i).Name)
	}

	if *outputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	fmt.Printf("(%.6f, %.6f): %s\n", result.Longitude, result.Latitude, result.Zone)
	for i, name := range result.Candidates {
		fmt.Printf("  %d. candidate %s\n", i+1, name)
	}
}
