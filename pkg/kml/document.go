package kml

import "encoding/xml"

// folder is a KML <Folder>. Only the direct children are decoded here;
// nested folders are kept in Folders and walked after the placemarks.
type folder struct {
	XMLName    xml.Name    `xml:"Folder"`
	Name       *string     `xml:"name"`
	Placemarks []placemark `xml:"Placemark"`
	Folders    []folder    `xml:"Folder"`
}

type placemark struct {
	Name          *string        `xml:"name"`
	Description   *string        `xml:"description"`
	Point         *point         `xml:"Point"`
	Polygon       *polygon       `xml:"Polygon"`
	MultiGeometry *multiGeometry `xml:"MultiGeometry"`
}

type point struct {
	Coordinates *string `xml:"coordinates"`
}

type polygon struct {
	OuterBoundaryIs boundary   `xml:"outerBoundaryIs"`
	InnerBoundaryIs []boundary `xml:"innerBoundaryIs"`
}

type boundary struct {
	LinearRing linearRing `xml:"LinearRing"`
}

type linearRing struct {
	Coordinates *string `xml:"coordinates"`
}

type multiGeometry struct {
	Points   []point   `xml:"Point"`
	Polygons []polygon `xml:"Polygon"`
}

// pointGeometry returns the placemark's point, looking into a
// MultiGeometry when there is no direct one.
func (p placemark) pointGeometry() *point {
	if p.Point != nil {
		return p.Point
	}
	if p.MultiGeometry != nil && len(p.MultiGeometry.Points) > 0 {
		return &p.MultiGeometry.Points[0]
	}
	return nil
}

func (p placemark) polygonGeometry() *polygon {
	if p.Polygon != nil {
		return p.Polygon
	}
	if p.MultiGeometry != nil && len(p.MultiGeometry.Polygons) > 0 {
		return &p.MultiGeometry.Polygons[0]
	}
	return nil
}

func (p placemark) text() (name, description string) {
	if p.Name != nil {
		name = *p.Name
	}
	if p.Description != nil {
		description = *p.Description
	}
	return name, description
}
