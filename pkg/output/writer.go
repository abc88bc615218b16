// Package output writes enriched layers as spreadsheet, CSV or GeoJSON files
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/1F47E/point-within-poly/pkg/models"
)

// Format names
const (
	FormatXLSX    = "xlsx"
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
)

// SheetName is the worksheet every xlsx layer is written to
const SheetName = "Hoja1"

type encoder func(w io.Writer, layer models.Layer) error

var encoders = map[string]encoder{
	FormatXLSX:    encodeXLSX,
	FormatCSV:     encodeCSV,
	FormatGeoJSON: encodeGeoJSON,
}

// Formats returns the supported format names
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Writer writes each layer to <dir>/<layer id>.<format>
type Writer struct {
	dir    string
	format string
	encode encoder
}

// New creates a writer for format into dir, creating dir if needed
func New(format, dir string) (*Writer, error) {
	enc, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %v)", format, Formats())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir, format: format, encode: enc}, nil
}

// Path returns the file a layer is written to
func (w *Writer) Path(layerID string) string {
	return filepath.Join(w.dir, layerID+"."+w.format)
}

// WriteLayer writes the layer to its file. A partially written file is
// removed on failure.
func (w *Writer) WriteLayer(ctx context.Context, layer models.Layer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := w.Path(layer.ID)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.encode(file, layer); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
