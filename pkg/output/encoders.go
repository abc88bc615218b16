package output

import (
	"encoding/csv"
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/xuri/excelize/v2"

	"github.com/1F47E/point-within-poly/pkg/models"
)

func encodeXLSX(w io.Writer, layer models.Layer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, record := range layer.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := record.Row()
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func encodeCSV(w io.Writer, layer models.Layer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return err
	}
	for _, record := range layer.Records {
		if err := cw.Write(record.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeGeoJSON(w io.Writer, layer models.Layer) error {
	fc := geojson.NewFeatureCollection()

	for i, record := range layer.Records {
		loc, err := record.Location()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		coords := []float64{loc[0], loc[1]}
		if record.Altitude != "" {
			alt, err := record.AltitudeValue()
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			coords = append(coords, alt)
		}

		feature := geojson.NewPointFeature(coords)
		feature.SetProperty("name", record.Name)
		feature.SetProperty("description", record.Description)
		feature.SetProperty("folder", record.Folder)
		feature.SetProperty("zone", record.Zone)
		fc.AddFeature(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
