package main

import (
	"context"
	"fmt"
	"log"

	"github.com/1F47E/point-within-poly/pkg/batch"
	"github.com/1F47E/point-within-poly/pkg/classify"
	"github.com/1F47E/point-within-poly/pkg/logging"
)

const zonesKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
<Folder><name>Comunas</name>
  <Placemark><name>A</name><Polygon><outerBoundaryIs><LinearRing>
    <coordinates>0,0,0 10,0,0 10,10,0 0,10,0 0,0,0</coordinates>
  </LinearRing></outerBoundaryIs></Polygon></Placemark>
  <Placemark><name>B</name><Polygon><outerBoundaryIs><LinearRing>
    <coordinates>10,0,0 20,0,0 20,10,0 10,10,0 10,0,0</coordinates>
  </LinearRing></outerBoundaryIs></Polygon></Placemark>
</Folder>
</Document></kml>`

const storesKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
<Folder><name>Locales</name>
  <Placemark><name>Centro</name><Point><coordinates>5,5,0</coordinates></Point></Placemark>
  <Placemark><name>Oriente</name><Point><coordinates>15,5,0</coordinates></Point></Placemark>
  <Placemark><name>Borde</name><Point><coordinates>10,5,0</coordinates></Point></Placemark>
  <Placemark><name>Lejos</name><Point><coordinates>50,50,0</coordinates></Point></Placemark>
</Folder>
</Document></kml>`

func main() {
	zones := batch.ReaderSource{Name: "zones", Data: []byte(zonesKML)}
	layers := []batch.Source{batch.ReaderSource{Name: "locales", Data: []byte(storesKML)}}

	// Example 1: strict boundaries, the point on the shared edge gets no zone
	run("strict", batch.New(batch.WithLogger(logging.New(logging.Config{Level: "info"}))), zones, layers)

	// Example 2: inclusive boundaries, the shared edge goes to the first zone
	run("inclusive", batch.New(batch.WithContainment(classify.Inclusive)), zones, layers)

	// Example 3: envelope R-tree keeps the same answers
	run("rtree", batch.New(batch.WithEnvelopeTree(), batch.WithWorkers(4)), zones, layers)
}

func run(label string, orch *batch.Orchestrator, zones batch.Source, layers []batch.Source) {
	result, err := orch.Run(context.Background(), zones, layers)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s:\n", label)
	for _, layer := range result.Layers {
		for _, record := range layer.Records {
			fmt.Printf("  %-8s (%s, %s) -> %s\n", record.Name, record.Longitude, record.Latitude, record.Zone)
		}
	}
	fmt.Printf("  total: %d\n\n", result.Total)
}
