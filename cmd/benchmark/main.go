package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"github.com/1F47E/point-within-poly/pkg/classify"
	"github.com/1F47E/point-within-poly/pkg/kml"
	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

type BenchmarkResult struct {
	Mode          string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	Matched       int64
	Zones         []string
}

func main() {
	var (
		zonesFile  = flag.String("z", "zones.kml", "Zones KML file")
		numQueries = flag.Int("n", 100000, "Number of random points to classify")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		margin     = flag.Float64("margin", 0.1, "Fraction of the zones extent added around it")
		seed       = flag.Int64("seed", 1, "Random seed")
	)
	flag.Parse()

	if *workers < 1 {
		*workers = 1
	}

	polygons, err := kml.ParsePolygonsFile(*zonesFile)
	if err != nil {
		log.Fatalf("Failed to parse zones: %v", err)
	}
	if len(polygons) == 0 {
		log.Fatal("Zones file has no polygons")
	}
	log.Printf("Loaded %d zones\n", len(polygons))

	points := randomPoints(extent(polygons, *margin), *numQueries, *seed)

	linear := benchmark("linear", zones.NewIndex(polygons), points, *workers)
	tree := benchmark("rtree", zones.NewIndex(polygons, zones.WithEnvelopeTree()), points, *workers)

	mismatches := 0
	for i := range linear.Zones {
		if linear.Zones[i] != tree.Zones[i] {
			mismatches++
		}
	}

	fmt.Println("\n=== Benchmark Results ===")
	for _, r := range []BenchmarkResult{linear, tree} {
		fmt.Printf("Mode: %s\n", r.Mode)
		fmt.Printf("  Total Queries: %d\n", r.TotalQueries)
		fmt.Printf("  Total Duration: %v\n", r.TotalDuration)
		fmt.Printf("  Average Duration: %v\n", r.AvgDuration)
		fmt.Printf("  Queries/Second: %.2f\n", r.QueriesPerSec)
		fmt.Printf("  Min Duration: %v\n", r.MinDuration)
		fmt.Printf("  Max Duration: %v\n", r.MaxDuration)
		fmt.Printf("  Inside a zone: %d\n", r.Matched)
	}
	fmt.Printf("Speedup: %.2fx\n", linear.TotalDuration.Seconds()/tree.TotalDuration.Seconds())
	fmt.Printf("Mismatches: %d\n", mismatches)
	fmt.Printf("Workers Used: %d\n", *workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func extent(polygons []models.ZonePolygon, margin float64) orb.Bound {
	bound := polygons[0].Polygon().Bound()
	for _, z := range polygons[1:] {
		bound = bound.Union(z.Polygon().Bound())
	}
	return bound.Pad(margin * (bound.Right() - bound.Left() + bound.Top() - bound.Bottom()) / 2)
}

func randomPoints(bound orb.Bound, n int, seed int64) []orb.Point {
	r := rand.New(rand.NewSource(seed))
	points := make([]orb.Point, n)
	for i := range points {
		points[i] = orb.Point{
			bound.Left() + r.Float64()*(bound.Right()-bound.Left()),
			bound.Bottom() + r.Float64()*(bound.Top()-bound.Bottom()),
		}
	}
	return points
}

func benchmark(mode string, idx *zones.Index, points []orb.Point, workers int) BenchmarkResult {
	if workers < 1 {
		workers = 1
	}
	cl := classify.New(idx)

	var (
		matched   int64
		durations = make([]time.Duration, len(points))
		assigned  = make([]string, len(points))
	)

	startTime := time.Now()

	// Worker pool
	queryCh := make(chan int, len(points))
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range queryCh {
				queryStart := time.Now()
				zone := cl.Zone(points[i])
				durations[i] = time.Since(queryStart)

				assigned[i] = zone
				if zone != models.NoZone {
					atomic.AddInt64(&matched, 1)
				}
			}
		}()
	}

	for i := range points {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var totalDur time.Duration
	for _, d := range sorted {
		totalDur += d
	}

	result := BenchmarkResult{
		Mode:          mode,
		TotalQueries:  len(points),
		TotalDuration: totalDuration,
		QueriesPerSec: float64(len(points)) / totalDuration.Seconds(),
		Matched:       matched,
		Zones:         assigned,
	}
	if len(sorted) > 0 {
		result.AvgDuration = totalDur / time.Duration(len(sorted))
		result.MinDuration = sorted[0]
		result.MaxDuration = sorted[len(sorted)-1]
	}
	return result
}
