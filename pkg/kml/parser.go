// Package kml extracts placemark points and zone polygons from KML documents.
// Records come out in folder-then-placemark document order, which the
// classifier relies on for its first-match tie-break.
package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/1F47E/point-within-poly/pkg/models"
)

// ErrMissingFolderName is returned when a <Folder> has no <name> child
var ErrMissingFolderName = errors.New("folder has no name")

// vertexArity is the number of components a polygon coordinate token must have
const vertexArity = 3

// ParsePoints returns every placemark with a point geometry
func ParsePoints(r io.Reader) ([]models.PlacemarkPoint, error) {
	var points []models.PlacemarkPoint
	err := walk(r, func(folderName string, pm placemark) error {
		pt := pm.pointGeometry()
		if pt == nil {
			return nil
		}

		name, description := pm.text()
		record := models.PlacemarkPoint{
			Name:        name,
			Description: description,
			Folder:      folderName,
		}
		if pt.Coordinates != nil {
			record.Longitude, record.Latitude, record.Altitude = splitPoint(*pt.Coordinates)
		}
		points = append(points, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// ParsePolygons returns every placemark with a polygon geometry. Only the
// outer boundary is read; coordinate tokens that do not have exactly three
// components are dropped.
func ParsePolygons(r io.Reader) ([]models.ZonePolygon, error) {
	var polygons []models.ZonePolygon
	err := walk(r, func(folderName string, pm placemark) error {
		poly := pm.polygonGeometry()
		if poly == nil {
			return nil
		}

		name, description := pm.text()
		zone := models.ZonePolygon{
			Name:        name,
			Description: description,
			Folder:      folderName,
		}
		if coords := poly.OuterBoundaryIs.LinearRing.Coordinates; coords != nil {
			ring, err := parseRing(*coords)
			if err != nil {
				return fmt.Errorf("zone %q in folder %q: %w", name, folderName, err)
			}
			zone.Ring = ring
		}
		polygons = append(polygons, zone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return polygons, nil
}

// ParsePointsFile opens path and parses its points
func ParsePointsFile(path string) ([]models.PlacemarkPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	points, err := ParsePoints(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return points, nil
}

// ParsePolygonsFile opens path and parses its polygons
func ParsePolygonsFile(path string) ([]models.ZonePolygon, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	polygons, err := ParsePolygons(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return polygons, nil
}

// walk decodes every top-level <Folder> found in the document and calls fn
// for each placemark, folder by folder.
func walk(r io.Reader, fn func(folderName string, pm placemark) error) error {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Folder" {
			continue
		}

		var f folder
		if err := decoder.DecodeElement(&f, &start); err != nil {
			return fmt.Errorf("failed to decode folder: %w", err)
		}
		if err := visitFolder(f, fn); err != nil {
			return err
		}
	}
}

func visitFolder(f folder, fn func(folderName string, pm placemark) error) error {
	if f.Name == nil {
		return ErrMissingFolderName
	}

	for _, pm := range f.Placemarks {
		if err := fn(*f.Name, pm); err != nil {
			return err
		}
	}
	for _, sub := range f.Folders {
		if err := visitFolder(sub, fn); err != nil {
			return err
		}
	}
	return nil
}

// splitPoint splits "lon,lat[,alt]" into its components. Missing
// components are left empty, extra ones ignored.
func splitPoint(text string) (lon, lat, alt string) {
	parts := strings.Split(strings.TrimSpace(text), ",")
	fields := make([]string, 3)
	for i := 0; i < len(parts) && i < len(fields); i++ {
		fields[i] = strings.TrimSpace(parts[i])
	}
	return fields[0], fields[1], fields[2]
}

// parseRing turns KML ring coordinate text into vertices. Newlines and tabs
// separate tokens just like spaces do.
func parseRing(text string) ([]models.Vertex, error) {
	var ring []models.Vertex
	for _, token := range strings.Fields(text) {
		parts := strings.Split(token, ",")
		values := make([]float64, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", models.ErrInvalidCoordinate, token)
			}
			values[i] = v
		}

		if len(values) != vertexArity {
			continue
		}
		ring = append(ring, models.Vertex{X: values[0], Y: values[1], Z: values[2]})
	}
	return ring, nil
}
