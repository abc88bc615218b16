package kml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layerDoc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
	<name>Sucursales</name>
	<Folder>
		<name>Norte</name>
		<Placemark>
			<name>Local 1</name>
			<description><![CDATA[Abierto <b>24h</b>]]></description>
			<Point>
				<coordinates>-58.3816,-34.6037,0</coordinates>
			</Point>
		</Placemark>
		<Placemark>
			<name>Ruta</name>
			<LineString><coordinates>0,0,0 1,1,0</coordinates></LineString>
		</Placemark>
	</Folder>
	<Folder>
		<name>Sur</name>
		<Placemark>
			<Point><coordinates>
				5,6
			</coordinates></Point>
		</Placemark>
		<Placemark>
			<name>Sin coordenadas</name>
			<Point></Point>
		</Placemark>
	</Folder>
</Document>
</kml>`

const zoneDoc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
	<Folder>
		<name>Zonas</name>
		<Placemark>
			<name>A</name>
			<description>zona a</description>
			<Polygon>
				<outerBoundaryIs>
					<LinearRing>
						<coordinates>
							0,0,0 10,0,0 10,10,0
							0,10,0	0,0,0
						</coordinates>
					</LinearRing>
				</outerBoundaryIs>
				<innerBoundaryIs>
					<LinearRing><coordinates>2,2,0 3,2,0 3,3,0 2,2,0</coordinates></LinearRing>
				</innerBoundaryIs>
			</Polygon>
		</Placemark>
		<Placemark>
			<name>Punto suelto</name>
			<Point><coordinates>1,1,0</coordinates></Point>
		</Placemark>
		<Placemark>
			<name>B</name>
			<Polygon><outerBoundaryIs><LinearRing>
				<coordinates>10,0,0 20,0 20,0,0 20,10,0,7 20,10,0 10,10,0 10,0,0</coordinates>
			</LinearRing></outerBoundaryIs></Polygon>
		</Placemark>
	</Folder>
</Document>
</kml>`

func TestParsePoints(t *testing.T) {
	points, err := ParsePoints(strings.NewReader(layerDoc))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, models.PlacemarkPoint{
		Longitude:   "-58.3816",
		Latitude:    "-34.6037",
		Altitude:    "0",
		Name:        "Local 1",
		Description: "Abierto <b>24h</b>",
		Folder:      "Norte",
	}, points[0])

	// No name, no altitude
	assert.Equal(t, models.PlacemarkPoint{Longitude: "5", Latitude: "6", Folder: "Sur"}, points[1])

	// No coordinates at all
	assert.Equal(t, models.PlacemarkPoint{Name: "Sin coordenadas", Folder: "Sur"}, points[2])
	_, err = points[2].Location()
	assert.ErrorIs(t, err, models.ErrInvalidCoordinate)
}

func TestParsePolygons(t *testing.T) {
	zones, err := ParsePolygons(strings.NewReader(zoneDoc))
	require.NoError(t, err)
	require.Len(t, zones, 2)

	assert.Equal(t, "A", zones[0].Name)
	assert.Equal(t, "zona a", zones[0].Description)
	assert.Equal(t, "Zonas", zones[0].Folder)
	assert.Equal(t, []models.Vertex{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
	}, zones[0].Ring)

	// "20,0" and "20,10,0,7" are dropped
	assert.Equal(t, "B", zones[1].Name)
	assert.Equal(t, []models.Vertex{
		{X: 10, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0},
	}, zones[1].Ring)
}

func TestParsePolygonsEmptyRing(t *testing.T) {
	doc := `<kml><Folder><name>Z</name>
		<Placemark><name>vacia</name><Polygon><outerBoundaryIs><LinearRing>
			<coordinates>1,2 3,4,5,6</coordinates>
		</LinearRing></outerBoundaryIs></Polygon></Placemark>
		<Placemark><name>sin anillo</name><Polygon></Polygon></Placemark>
	</Folder></kml>`

	zones, err := ParsePolygons(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Empty(t, zones[0].Ring)
	assert.True(t, zones[0].Degenerate())
	assert.Empty(t, zones[1].Ring)
}

func TestParsePolygonsInvalidNumber(t *testing.T) {
	doc := `<kml><Folder><name>Z</name>
		<Placemark><name>mala</name><Polygon><outerBoundaryIs><LinearRing>
			<coordinates>0,0,0 x,1,0 1,1,0</coordinates>
		</LinearRing></outerBoundaryIs></Polygon></Placemark>
	</Folder></kml>`

	_, err := ParsePolygons(strings.NewReader(doc))
	assert.ErrorIs(t, err, models.ErrInvalidCoordinate)
}

func TestMissingFolderName(t *testing.T) {
	doc := `<kml><Document>
		<Folder><Placemark><name>p</name><Point><coordinates>1,2,0</coordinates></Point></Placemark></Folder>
	</Document></kml>`

	_, err := ParsePoints(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrMissingFolderName)

	_, err = ParsePolygons(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrMissingFolderName)
}

func TestFolderGrouping(t *testing.T) {
	doc := `<kml><Document>
		<Folder><name>Zeta</name>
			<Placemark><name>primero</name><Point><coordinates>1,1,0</coordinates></Point></Placemark>
		</Folder>
		<Folder><name>Alfa</name>
			<Placemark><name>segundo</name><Point><coordinates>2,2,0</coordinates></Point></Placemark>
		</Folder>
	</Document></kml>`

	points, err := ParsePoints(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "primero", points[0].Name)
	assert.Equal(t, "Zeta", points[0].Folder)
	assert.Equal(t, "segundo", points[1].Name)
	assert.Equal(t, "Alfa", points[1].Folder)
}

func TestNestedFoldersAndMultiGeometry(t *testing.T) {
	doc := `<kml><Document>
		<Folder><name>Padre</name>
			<Folder><name>Hijo</name>
				<Placemark><name>interno</name><Point><coordinates>3,3,0</coordinates></Point></Placemark>
			</Folder>
			<Placemark><name>externo</name>
				<MultiGeometry>
					<LineString><coordinates>0,0,0 1,1,0</coordinates></LineString>
					<Point><coordinates>4,4,1</coordinates></Point>
				</MultiGeometry>
			</Placemark>
		</Folder>
	</Document></kml>`

	points, err := ParsePoints(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "externo", points[0].Name)
	assert.Equal(t, "Padre", points[0].Folder)
	assert.Equal(t, "4", points[0].Longitude)
	assert.Equal(t, "interno", points[1].Name)
	assert.Equal(t, "Hijo", points[1].Folder)
}

func TestNoFolders(t *testing.T) {
	doc := `<kml><Document><Placemark><Point><coordinates>1,1,0</coordinates></Point></Placemark></Document></kml>`

	points, err := ParsePoints(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestMalformedDocument(t *testing.T) {
	_, err := ParsePoints(strings.NewReader(`<kml><Folder><name>a</name><Placemark>`))
	assert.Error(t, err)
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := ParsePolygons(strings.NewReader(zoneDoc))
	require.NoError(t, err)
	second, err := ParsePolygons(strings.NewReader(zoneDoc))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	p1, err := ParsePoints(strings.NewReader(layerDoc))
	require.NoError(t, err)
	p2, err := ParsePoints(strings.NewReader(layerDoc))
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	layerPath := filepath.Join(dir, "layer.kml")
	zonePath := filepath.Join(dir, "zones.kml")
	require.NoError(t, os.WriteFile(layerPath, []byte(layerDoc), 0644))
	require.NoError(t, os.WriteFile(zonePath, []byte(zoneDoc), 0644))

	points, err := ParsePointsFile(layerPath)
	require.NoError(t, err)
	assert.Len(t, points, 3)

	zones, err := ParsePolygonsFile(zonePath)
	require.NoError(t, err)
	assert.Len(t, zones, 2)

	_, err = ParsePointsFile(filepath.Join(dir, "missing.kml"))
	assert.Error(t, err)
}

func TestLatin1Document(t *testing.T) {
	// "Caf\xe9" is "Café" in ISO-8859-1
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<kml><Folder><name>Centro</name><Placemark><name>Caf\xe9</name>" +
		"<Point><coordinates>1,2,0</coordinates></Point></Placemark></Folder></kml>"

	points, err := ParsePoints(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Café", points[0].Name)
}
