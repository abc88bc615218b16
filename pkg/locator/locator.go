// Package locator finds the layer documents to classify
package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1F47E/point-within-poly/pkg/batch"
)

// DefaultExtension is the extension of layer documents
const DefaultExtension = ".kml"

// Find returns a source for every regular file in dir whose extension
// matches ext (case-insensitive), sorted by file name.
func Find(dir, ext string) ([]batch.Source, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	sources := make([]batch.Source, len(names))
	for i, name := range names {
		sources[i] = batch.FileSource{Path: filepath.Join(dir, name)}
	}
	return sources, nil
}
