package zones

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/point-within-poly/pkg/models"
)

func rect(name string, minX, minY, maxX, maxY float64) models.ZonePolygon {
	return models.ZonePolygon{
		Name:   name,
		Folder: "Zonas",
		Ring: []models.Vertex{
			{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}, {X: minX, Y: minY},
		},
	}
}

func TestNewIndex(t *testing.T) {
	zs := []models.ZonePolygon{rect("A", 0, 0, 10, 10), rect("B", 10, 0, 20, 10)}
	idx := NewIndex(zs)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"A", "B"}, idx.Names())
	assert.Equal(t, "B", idx.At(1).Name)
	assert.False(t, idx.Tree())
	assert.Len(t, idx.Polygon(0)[0], 5)

	// Mutating the input or the returned copy does not affect the index
	zs[0].Name = "changed"
	out := idx.Zones()
	out[1].Name = "changed"
	assert.Equal(t, []string{"A", "B"}, idx.Names())
}

func TestCandidatesLinear(t *testing.T) {
	idx := NewIndex([]models.ZonePolygon{rect("A", 0, 0, 10, 10), rect("B", 10, 0, 20, 10), {Name: "empty"}})

	assert.Equal(t, []int{0, 1, 2}, idx.Candidates(orb.Point{5, 5}))
	assert.Equal(t, []int{0, 1, 2}, idx.Candidates(orb.Point{500, 500}))
}

func TestCandidatesTree(t *testing.T) {
	idx := NewIndex([]models.ZonePolygon{
		rect("big", 0, 0, 100, 100),
		{Name: "empty"},
		rect("A", 0, 0, 10, 10),
		rect("B", 10, 0, 20, 10),
		rect("far", 500, 500, 510, 510),
	}, WithEnvelopeTree())

	require.True(t, idx.Tree())

	testCases := []struct {
		name     string
		point    orb.Point
		expected []int
	}{
		{"inside A", orb.Point{5, 5}, []int{0, 2}},
		{"shared edge", orb.Point{10, 5}, []int{0, 2, 3}},
		{"only big", orb.Point{50, 50}, []int{0}},
		{"far", orb.Point{505, 505}, []int{4}},
		{"nowhere", orb.Point{-50, -50}, []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, idx.Candidates(tc.point))
		})
	}
}

func TestCandidatesOrderMatchesLinear(t *testing.T) {
	// Overlapping zones inserted in random positions
	var zs []models.ZonePolygon
	for i := 0; i < 200; i++ {
		x := rand.Float64() * 90
		y := rand.Float64() * 90
		zs = append(zs, rect(fmt.Sprintf("z%d", i), x, y, x+10, y+10))
	}

	linear := NewIndex(zs)
	tree := NewIndex(zs, WithEnvelopeTree())

	for i := 0; i < 1000; i++ {
		p := orb.Point{rand.Float64() * 100, rand.Float64() * 100}
		candidates := tree.Candidates(p)
		assert.IsIncreasing(t, append([]int{-1}, candidates...))

		// Every zone whose envelope holds p is a candidate
		var expected []int
		for _, pos := range linear.Candidates(p) {
			if linear.Polygon(pos).Bound().Contains(p) {
				expected = append(expected, pos)
			}
		}
		for _, pos := range expected {
			assert.Contains(t, candidates, pos)
		}
	}
}

func TestPersistence(t *testing.T) {
	idx := NewIndex([]models.ZonePolygon{rect("A", 0, 0, 10, 10), {Name: "empty", Description: "sin anillo"}})

	path := filepath.Join(t.TempDir(), "zones.gob")
	require.NoError(t, idx.SaveToFile(path))

	loaded, err := LoadFromFile(path, WithEnvelopeTree())
	require.NoError(t, err)

	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.Names(), loaded.Names())
	assert.Equal(t, idx.At(0).Ring, loaded.At(0).Ring)
	assert.Equal(t, "sin anillo", loaded.At(1).Description)
	assert.True(t, loaded.Tree())

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	kmlPath := filepath.Join(dir, "zonas.kml")
	require.NoError(t, os.WriteFile(kmlPath, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
<Folder><name>Comunas</name>
  <Placemark><name>A</name><Polygon><outerBoundaryIs><LinearRing>
    <coordinates>0,0,0 10,0,0 10,10,0 0,10,0 0,0,0</coordinates>
  </LinearRing></outerBoundaryIs></Polygon></Placemark>
  <Placemark><name>B</name><Polygon><outerBoundaryIs><LinearRing>
    <coordinates>10,0,0 20,0,0 20,10,0 10,10,0 10,0,0</coordinates>
  </LinearRing></outerBoundaryIs></Polygon></Placemark>
</Folder>
</Document></kml>`), 0644))

	fromKML, err := Load(kmlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, fromKML.Names())
	assert.False(t, fromKML.Tree())

	// Extension match is case-insensitive
	gobPath := filepath.Join(dir, "zonas.GOB")
	require.NoError(t, fromKML.SaveToFile(gobPath))
	assert.True(t, IsSnapshot(gobPath))
	assert.False(t, IsSnapshot(kmlPath))

	fromSnapshot, err := Load(gobPath, WithEnvelopeTree())
	require.NoError(t, err)
	assert.Equal(t, fromKML.Zones(), fromSnapshot.Zones())
	assert.True(t, fromSnapshot.Tree())

	// Missing files fail for both kinds
	_, err = Load(filepath.Join(dir, "otra.gob"))
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.kml"))
	assert.Error(t, err)
}

func BenchmarkCandidates(b *testing.B) {
	var zs []models.ZonePolygon
	for i := 0; i < 1000; i++ {
		x := rand.Float64()*350 - 175
		y := rand.Float64()*170 - 85
		zs = append(zs, rect(fmt.Sprintf("z%d", i), x, y, x+1, y+1))
	}
	idx := NewIndex(zs, WithEnvelopeTree())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Candidates(orb.Point{rand.Float64()*360 - 180, rand.Float64()*180 - 90})
	}
}
