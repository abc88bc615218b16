// Package zones holds the parsed zone polygons in declaration order.
// Lookups are an ordered linear scan unless the envelope R-tree is enabled;
// either way candidates are returned in declaration order so the first
// containing zone always wins.
package zones

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/1F47E/point-within-poly/pkg/models"
)

const (
	tolerance   = 1e-9
	minChildren = 2
	maxChildren = 8
	dimensions  = 2
)

// envelope wraps a zone position to implement rtreego.Spatial
type envelope struct {
	pos  int
	rect *rtreego.Rect
}

func (e *envelope) Bounds() *rtreego.Rect {
	return e.rect
}

// Index is an immutable, ordered collection of zones. It is safe to share
// between goroutines.
type Index struct {
	zones    []models.ZonePolygon
	polygons []orb.Polygon
	all      []int
	tree     *rtreego.Rtree
}

// Option configures an Index
type Option func(*Index)

// WithEnvelopeTree narrows candidate zones with an R-tree over zone
// bounding boxes instead of scanning every zone.
func WithEnvelopeTree() Option {
	return func(idx *Index) {
		idx.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	}
}

// NewIndex builds an index over zs, keeping their order
func NewIndex(zs []models.ZonePolygon, opts ...Option) *Index {
	idx := &Index{
		zones:    make([]models.ZonePolygon, len(zs)),
		polygons: make([]orb.Polygon, len(zs)),
		all:      make([]int, len(zs)),
	}
	copy(idx.zones, zs)
	for i, z := range idx.zones {
		idx.polygons[i] = z.Polygon()
		idx.all[i] = i
	}

	for _, opt := range opts {
		opt(idx)
	}

	if idx.tree != nil {
		for i, z := range idx.zones {
			if z.Degenerate() {
				continue
			}
			rect, err := boundsRect(idx.polygons[i].Bound())
			if err != nil {
				continue
			}
			idx.tree.Insert(&envelope{pos: i, rect: rect})
		}
	}

	return idx
}

// Len returns the number of zones
func (idx *Index) Len() int {
	return len(idx.zones)
}

// At returns the zone at position i
func (idx *Index) At(i int) models.ZonePolygon {
	return idx.zones[i]
}

// Polygon returns the planar polygon of the zone at position i
func (idx *Index) Polygon(i int) orb.Polygon {
	return idx.polygons[i]
}

// Zones returns a copy of the zones in declaration order
func (idx *Index) Zones() []models.ZonePolygon {
	out := make([]models.ZonePolygon, len(idx.zones))
	copy(out, idx.zones)
	return out
}

// Names returns the zone names in declaration order
func (idx *Index) Names() []string {
	names := make([]string, len(idx.zones))
	for i, z := range idx.zones {
		names[i] = z.Name
	}
	return names
}

// Tree reports whether the envelope R-tree is in use
func (idx *Index) Tree() bool {
	return idx.tree != nil
}

// Candidates returns, in ascending order, the positions of the zones that
// may contain p. The returned slice must not be modified.
func (idx *Index) Candidates(p orb.Point) []int {
	if idx.tree == nil {
		return idx.all
	}

	results := idx.tree.SearchIntersect(rtreego.Point{p[0], p[1]}.ToRect(tolerance))
	positions := make([]int, 0, len(results))
	for _, result := range results {
		if e, ok := result.(*envelope); ok {
			positions = append(positions, e.pos)
		}
	}
	sort.Ints(positions)
	return positions
}

// boundsRect pads b so that flat envelopes still make a valid rectangle
func boundsRect(b orb.Bound) (*rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0] - tolerance, b.Min[1] - tolerance},
		[]float64{b.Max[0] - b.Min[0] + 2*tolerance, b.Max[1] - b.Min[1] + 2*tolerance},
	)
}
