package zones

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1F47E/point-within-poly/pkg/kml"
	"github.com/1F47E/point-within-poly/pkg/models"
)

// SnapshotExt is the extension of files written by SaveToFile
const SnapshotExt = ".gob"

// IsSnapshot reports whether path names a snapshot rather than a KML document
func IsSnapshot(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SnapshotExt)
}

// Load reads a snapshot when path ends in SnapshotExt and parses it as a
// zones KML document otherwise.
func Load(path string, opts ...Option) (*Index, error) {
	if IsSnapshot(path) {
		return LoadFromFile(path, opts...)
	}
	polygons, err := kml.ParsePolygonsFile(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(polygons, opts...), nil
}

// Snapshot is the serializable form of an index
type Snapshot struct {
	Zones []models.ZonePolygon `json:"zones"`
	Count int                  `json:"count"`
}

// SaveToFile saves the zones to a binary file
func (idx *Index) SaveToFile(filename string) error {
	data := Snapshot{
		Zones: idx.Zones(),
		Count: idx.Len(),
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	return nil
}

// LoadFromFile rebuilds an index from a file written by SaveToFile
func LoadFromFile(filename string, opts ...Option) (*Index, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data Snapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	if data.Count != len(data.Zones) {
		return nil, fmt.Errorf("corrupt snapshot: %d zones, header says %d", len(data.Zones), data.Count)
	}

	return NewIndex(data.Zones, opts...), nil
}
