package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// NoZone is the zone assigned to a placemark that no zone polygon contains
const NoZone = "Sin Zona"

// ErrInvalidCoordinate is returned when a coordinate field is not a number
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// PlacemarkPoint is a point of interest read from a layer document.
// Coordinates are kept as found in the source so that an absent altitude
// stays empty in the output.
type PlacemarkPoint struct {
	Longitude   string `json:"longitude"`
	Latitude    string `json:"latitude"`
	Altitude    string `json:"altitude,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Folder      string `json:"folder"`
}

// Location returns the planar (longitude, latitude) point
func (p PlacemarkPoint) Location() (orb.Point, error) {
	lon, err := parseCoordinate("longitude", p.Longitude)
	if err != nil {
		return orb.Point{}, err
	}
	lat, err := parseCoordinate("latitude", p.Latitude)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{lon, lat}, nil
}

// AltitudeValue returns the altitude, 0 when the source omitted it
func (p PlacemarkPoint) AltitudeValue() (float64, error) {
	if strings.TrimSpace(p.Altitude) == "" {
		return 0, nil
	}
	return parseCoordinate("altitude", p.Altitude)
}

// Vertex is one (x, y, z) coordinate of a zone ring
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ZonePolygon is a named zone with its outer boundary ring
type ZonePolygon struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Folder      string   `json:"folder"`
	Ring        []Vertex `json:"ring"`
}

// Polygon builds the planar polygon of the zone, ignoring altitude.
// The ring is used as parsed: no closing vertex is added and no
// simplicity check is made.
func (z ZonePolygon) Polygon() orb.Polygon {
	ring := make(orb.Ring, len(z.Ring))
	for i, v := range z.Ring {
		ring[i] = orb.Point{v.X, v.Y}
	}
	return orb.Polygon{ring}
}

// Degenerate reports whether the ring is too short to enclose any area
func (z ZonePolygon) Degenerate() bool {
	return len(z.Ring) < 3
}

// EnrichedRecord is a placemark with its assigned zone
type EnrichedRecord struct {
	PlacemarkPoint
	Zone string `json:"zone"`
}

// Layer is the set of enriched placemarks produced from one input document
type Layer struct {
	ID      string           `json:"id"`
	Records []EnrichedRecord `json:"records"`
}

// Len returns the number of placemarks in the layer
func (l Layer) Len() int {
	return len(l.Records)
}

// Columns is the column order of every tabular layer output
var Columns = []string{"Longitude", "Latitude", "Altitude", "Name", "Description", "Folder", "Zone"}

// Row returns the record's values in Columns order
func (r EnrichedRecord) Row() []string {
	return []string{r.Longitude, r.Latitude, r.Altitude, r.Name, r.Description, r.Folder, r.Zone}
}

func parseCoordinate(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidCoordinate, field, raw)
	}
	return v, nil
}
