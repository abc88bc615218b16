package classify

import (
	"math"
	"math/big"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Containment decides whether a polygon contains a point. Implementations
// fix the boundary policy.
type Containment interface {
	Contains(poly orb.Polygon, p orb.Point) bool
}

// ContainmentFunc adapts a function to Containment
type ContainmentFunc func(poly orb.Polygon, p orb.Point) bool

func (f ContainmentFunc) Contains(poly orb.Polygon, p orb.Point) bool {
	return f(poly, p)
}

// Inclusive treats points on the outer ring as contained. Inner rings
// are ignored and rings with fewer than three vertices contain nothing.
var Inclusive Containment = ContainmentFunc(func(poly orb.Polygon, p orb.Point) bool {
	outer, ok := outerRing(poly)
	if !ok {
		return false
	}
	if onBoundary(outer, p) {
		return true
	}
	return planar.RingContains(outer, p)
})

// Strict only accepts points in the interior of the outer ring; a point
// lying on any edge, including the implicit closing edge, is outside.
var Strict Containment = ContainmentFunc(func(poly orb.Polygon, p orb.Point) bool {
	outer, ok := outerRing(poly)
	if !ok {
		return false
	}
	if onBoundary(outer, p) {
		return false
	}
	return planar.RingContains(outer, p)
})

// Policy returns the containment for a policy name, "strict" or "inclusive"
func Policy(name string) (Containment, bool) {
	switch name {
	case "strict", "":
		return Strict, true
	case "inclusive":
		return Inclusive, true
	}
	return nil, false
}

func outerRing(poly orb.Polygon) (orb.Ring, bool) {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return nil, false
	}
	return poly[0], true
}

// onBoundary reports whether p lies exactly on an edge of r, including the
// closing edge from the last vertex back to the first.
func onBoundary(r orb.Ring, p orb.Point) bool {
	for i := range r {
		if onSegment(r[i], r[(i+1)%len(r)], p) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	if p[0] < math.Min(a[0], b[0]) || p[0] > math.Max(a[0], b[0]) ||
		p[1] < math.Min(a[1], b[1]) || p[1] > math.Max(a[1], b[1]) {
		return false
	}
	return orientation(a, b, p) == 0
}

// orientationErrBound bounds the rounding error of the float determinant
// relative to the magnitude of its two products.
const orientationErrBound = (3 + 16*epsilon) * epsilon

const epsilon = 1.0 / (1 << 53)

// orientation returns the sign of the cross product (b-a) x (p-a). The float
// result is used when it is clear of the error bound; otherwise the sign is
// recomputed exactly.
func orientation(a, b, p orb.Point) int {
	left := (b[0] - a[0]) * (p[1] - a[1])
	right := (b[1] - a[1]) * (p[0] - a[0])
	det := left - right

	bound := orientationErrBound * (math.Abs(left) + math.Abs(right))
	switch {
	case math.IsNaN(det) || math.IsInf(det, 0):
		return 1
	case det > bound:
		return 1
	case det < -bound:
		return -1
	}
	return exactOrientation(a, b, p)
}

func exactOrientation(a, b, p orb.Point) int {
	rat := func(v float64) *big.Rat { return new(big.Rat).SetFloat64(v) }

	dx := new(big.Rat).Sub(rat(b[0]), rat(a[0]))
	dy := new(big.Rat).Sub(rat(b[1]), rat(a[1]))
	px := new(big.Rat).Sub(rat(p[0]), rat(a[0]))
	py := new(big.Rat).Sub(rat(p[1]), rat(a[1]))

	left := new(big.Rat).Mul(dx, py)
	right := new(big.Rat).Mul(dy, px)
	return left.Cmp(right)
}
