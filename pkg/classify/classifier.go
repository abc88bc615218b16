// Package classify assigns placemarks to the first zone that contains them
package classify

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

// Classifier looks up points in a shared, read-only zone index
type Classifier struct {
	zones    *zones.Index
	contains Containment
}

// Option configures a Classifier
type Option func(*Classifier)

// WithContainment replaces the default Strict containment
func WithContainment(c Containment) Option {
	return func(cl *Classifier) {
		if c != nil {
			cl.contains = c
		}
	}
}

// New creates a classifier over idx
func New(idx *zones.Index, opts ...Option) *Classifier {
	cl := &Classifier{
		zones:    idx,
		contains: Strict,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Zone returns the name of the first zone, in declaration order, that
// contains p, or models.NoZone.
func (c *Classifier) Zone(p orb.Point) string {
	for _, pos := range c.zones.Candidates(p) {
		if c.contains.Contains(c.zones.Polygon(pos), p) {
			return c.zones.At(pos).Name
		}
	}
	return models.NoZone
}

// Classify returns the zone of a placemark. Altitude is ignored.
func (c *Classifier) Classify(pt models.PlacemarkPoint) (string, error) {
	loc, err := pt.Location()
	if err != nil {
		return "", err
	}
	return c.Zone(loc), nil
}

// Enrich classifies every point, stopping at the first invalid coordinate
func (c *Classifier) Enrich(points []models.PlacemarkPoint) ([]models.EnrichedRecord, error) {
	records := make([]models.EnrichedRecord, len(points))
	if err := c.enrichRange(points, records, 0, len(points)); err != nil {
		return nil, err
	}
	return records, nil
}

// enrichRange fills records[start:end]; workers own disjoint ranges
func (c *Classifier) enrichRange(points []models.PlacemarkPoint, records []models.EnrichedRecord, start, end int) error {
	for i := start; i < end; i++ {
		zone, err := c.Classify(points[i])
		if err != nil {
			return fmt.Errorf("placemark %d (%q): %w", i, points[i].Name, err)
		}
		records[i] = models.EnrichedRecord{PlacemarkPoint: points[i], Zone: zone}
	}
	return nil
}
