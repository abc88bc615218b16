// Package batch runs the zone classification over a set of layer documents
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1F47E/point-within-poly/pkg/classify"
	"github.com/1F47E/point-within-poly/pkg/kml"
	"github.com/1F47E/point-within-poly/pkg/logging"
	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

// ErrZoneParse wraps any failure to load the zone document
var ErrZoneParse = errors.New("failed to load zones")

// LayerError is a failure confined to one layer
type LayerError struct {
	Layer string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %s: %v", e.Layer, e.Err)
}

func (e *LayerError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a run
type Result struct {
	Layers []models.Layer
	Total  int
	Failed []*LayerError
}

// Layer returns the layer with the given ID
func (r *Result) Layer(id string) (models.Layer, bool) {
	for _, l := range r.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return models.Layer{}, false
}

// Orchestrator loads zones once and classifies every layer against them
type Orchestrator struct {
	writer          LayerWriter
	logger          *slog.Logger
	containment     classify.Containment
	indexOpts       []zones.Option
	workers         int
	continueOnError bool
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWriter sets where finished layers are written
func WithWriter(w LayerWriter) Option {
	return func(o *Orchestrator) { o.writer = w }
}

// WithLogger sets the progress logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithContainment sets the boundary policy used by the classifier
func WithContainment(c classify.Containment) Option {
	return func(o *Orchestrator) { o.containment = c }
}

// WithEnvelopeTree enables the R-tree candidate filter on the zone index
func WithEnvelopeTree() Option {
	return func(o *Orchestrator) { o.indexOpts = append(o.indexOpts, zones.WithEnvelopeTree()) }
}

// WithWorkers sets how many goroutines classify the points of a layer
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithContinueOnError records failing layers and keeps going instead of
// aborting the run.
func WithContinueOnError(v bool) Option {
	return func(o *Orchestrator) { o.continueOnError = v }
}

// New creates an orchestrator
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:  logging.Noop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadZones parses the zone document into an index
func (o *Orchestrator) LoadZones(src Source) (*zones.Index, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrZoneParse, src.ID(), err)
	}
	defer rc.Close()

	polygons, err := kml.ParsePolygons(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrZoneParse, src.ID(), err)
	}

	idx := zones.NewIndex(polygons, o.indexOpts...)
	o.logger.Info("zones loaded", "source", src.ID(), "zones", idx.Len(), "rtree", idx.Tree())
	return idx, nil
}

// Run loads the zones and classifies every layer. Nothing is written when
// the zones cannot be loaded.
func (o *Orchestrator) Run(ctx context.Context, zoneSrc Source, layerSrcs []Source) (*Result, error) {
	idx, err := o.LoadZones(zoneSrc)
	if err != nil {
		return nil, err
	}
	return o.RunWithIndex(ctx, idx, layerSrcs)
}

// RunWithIndex classifies every layer against an already loaded index.
// Layers are processed and written in order. On the first layer failure
// the run stops and the partial result is returned with the error, unless
// the orchestrator continues on error.
func (o *Orchestrator) RunWithIndex(ctx context.Context, idx *zones.Index, layerSrcs []Source) (*Result, error) {
	cl := classify.New(idx, classify.WithContainment(o.containment))
	result := &Result{}

	for _, src := range layerSrcs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		layer, err := o.processLayer(ctx, cl, src)
		if err != nil {
			layerErr := &LayerError{Layer: src.ID(), Err: err}
			if !o.continueOnError {
				return result, layerErr
			}
			o.logger.Warn("layer skipped", "layer", src.ID(), "error", err)
			result.Failed = append(result.Failed, layerErr)
			continue
		}

		result.Layers = append(result.Layers, layer)
		result.Total += layer.Len()
	}

	o.logger.Info("run complete", "layers", len(result.Layers), "failed", len(result.Failed), "placemarks", result.Total)
	return result, nil
}

func (o *Orchestrator) processLayer(ctx context.Context, cl *classify.Classifier, src Source) (models.Layer, error) {
	start := time.Now()

	rc, err := src.Open()
	if err != nil {
		return models.Layer{}, fmt.Errorf("failed to open: %w", err)
	}
	points, err := kml.ParsePoints(rc)
	rc.Close()
	if err != nil {
		return models.Layer{}, fmt.Errorf("failed to parse: %w", err)
	}
	o.logger.Debug("layer parsed", "layer", src.ID(), "points", len(points))

	records, err := cl.EnrichConcurrent(ctx, points, o.workers)
	if err != nil {
		return models.Layer{}, fmt.Errorf("failed to classify: %w", err)
	}
	layer := models.Layer{ID: src.ID(), Records: records}

	if o.writer != nil {
		if err := o.writer.WriteLayer(ctx, layer); err != nil {
			return models.Layer{}, fmt.Errorf("failed to write: %w", err)
		}
	}

	o.logger.Info("layer done", "layer", layer.ID, "points", layer.Len(), "elapsed", time.Since(start))
	return layer, nil
}
