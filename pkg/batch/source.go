package batch

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/1F47E/point-within-poly/pkg/models"
)

// Source is one input document
type Source interface {
	ID() string
	Open() (io.ReadCloser, error)
}

// LayerWriter persists an enriched layer
type LayerWriter interface {
	WriteLayer(ctx context.Context, layer models.Layer) error
}

// LayerWriterFunc adapts a function to LayerWriter
type LayerWriterFunc func(ctx context.Context, layer models.Layer) error

func (f LayerWriterFunc) WriteLayer(ctx context.Context, layer models.Layer) error {
	return f(ctx, layer)
}

// FileSource reads a document from disk. Its ID is the file name without
// its extension.
type FileSource struct {
	Path string
}

func (s FileSource) ID() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// ReaderSource serves an in-memory document
type ReaderSource struct {
	Name string
	Data []byte
}

func (s ReaderSource) ID() string {
	return s.Name
}

func (s ReaderSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}
