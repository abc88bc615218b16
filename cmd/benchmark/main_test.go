package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

func TestBenchmarkWorkers(t *testing.T) {
	idx := zones.NewIndex([]models.ZonePolygon{{
		Name: "A",
		Ring: []models.Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
	}})
	points := []orb.Point{{5, 5}, {50, 50}, {1, 1}}

	testCases := []struct {
		name    string
		workers int
	}{
		{"zero", 0},
		{"negative", -3},
		{"one", 1},
		{"more than points", 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := benchmark("linear", idx, points, tc.workers)
			require.Len(t, result.Zones, len(points))
			assert.Equal(t, []string{"A", models.NoZone, "A"}, result.Zones)
			assert.Equal(t, int64(2), result.Matched)
			assert.Equal(t, len(points), result.TotalQueries)
		})
	}
}
