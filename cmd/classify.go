package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/1F47E/point-within-poly/pkg/batch"
	"github.com/1F47E/point-within-poly/pkg/classify"
	"github.com/1F47E/point-within-poly/pkg/config"
	"github.com/1F47E/point-within-poly/pkg/locator"
	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/1F47E/point-within-poly/pkg/output"
	"github.com/1F47E/point-within-poly/pkg/postgis"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

var classifyFlags struct {
	zones           string
	layers          string
	output          string
	format          string
	ext             string
	workers         int
	boundary        string
	rtree           bool
	continueOnError bool
	dsn             string
	table           string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every layer against the zones",
	Long: `Parse the zones document once, then classify every placemark of every layer
file in the layers directory and write one output file per layer.`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVarP(&classifyFlags.zones, "zones", "z", "", "Zones KML file or compiled .gob snapshot")
	f.StringVarP(&classifyFlags.layers, "layers", "l", "", "Directory with placemark layers")
	f.StringVarP(&classifyFlags.output, "output", "o", "", "Output directory")
	f.StringVar(&classifyFlags.format, "format", "", "Output format: "+strings.Join(output.Formats(), ", "))
	f.StringVar(&classifyFlags.ext, "ext", "", "Layer file extension")
	f.IntVarP(&classifyFlags.workers, "workers", "w", 0, "Number of classification workers per layer")
	f.StringVar(&classifyFlags.boundary, "boundary", "", "Boundary policy: strict, inclusive")
	f.BoolVar(&classifyFlags.rtree, "rtree", false, "Filter zones through an envelope R-tree")
	f.BoolVar(&classifyFlags.continueOnError, "continue-on-error", false, "Skip failing layers instead of aborting")
	f.StringVar(&classifyFlags.dsn, "postgis-dsn", "", "Also store results in PostGIS")
	f.StringVar(&classifyFlags.table, "postgis-table", "", "PostGIS table name")
}

func applyClassifyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("zones") {
		cfg.Zones = classifyFlags.zones
	}
	if f.Changed("layers") {
		cfg.Layers = classifyFlags.layers
	}
	if f.Changed("output") {
		cfg.Output = classifyFlags.output
	}
	if f.Changed("format") {
		cfg.Format = classifyFlags.format
	}
	if f.Changed("ext") {
		cfg.Extension = classifyFlags.ext
	}
	if f.Changed("workers") {
		cfg.Workers = classifyFlags.workers
	}
	if f.Changed("boundary") {
		cfg.Boundary = classifyFlags.boundary
	}
	if f.Changed("rtree") {
		cfg.RTree = classifyFlags.rtree
	}
	if f.Changed("continue-on-error") {
		cfg.ContinueOnError = classifyFlags.continueOnError
	}
	if f.Changed("postgis-dsn") {
		cfg.PostGIS.DSN = classifyFlags.dsn
	}
	if f.Changed("postgis-table") {
		cfg.PostGIS.Table = classifyFlags.table
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyClassifyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	layers, err := locator.Find(cfg.Layers, cfg.Extension)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		logger.Warn("no layers found", "dir", cfg.Layers, "ext", cfg.Extension)
	}

	writer, err := output.New(cfg.Format, cfg.Output)
	if err != nil {
		return err
	}

	var sink *postgis.Sink
	if cfg.PostGIS.DSN != "" {
		sink, err = postgis.NewSink(cfg.PostGIS.DSN, cfg.PostGIS.Table)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.InitSchema(ctx); err != nil {
			return err
		}
	}

	contains, _ := classify.Policy(cfg.Boundary)
	opts := []batch.Option{
		batch.WithWriter(layerWriters(writer, sink)),
		batch.WithLogger(logger),
		batch.WithContainment(contains),
		batch.WithWorkers(cfg.Workers),
		batch.WithContinueOnError(cfg.ContinueOnError),
	}
	if cfg.RTree {
		opts = append(opts, batch.WithEnvelopeTree())
	}
	orch := batch.New(opts...)

	start := time.Now()
	var result *batch.Result
	if zones.IsSnapshot(cfg.Zones) {
		var idxOpts []zones.Option
		if cfg.RTree {
			idxOpts = append(idxOpts, zones.WithEnvelopeTree())
		}
		idx, loadErr := zones.Load(cfg.Zones, idxOpts...)
		if loadErr != nil {
			return fmt.Errorf("%w: %w", batch.ErrZoneParse, loadErr)
		}
		result, err = orch.RunWithIndex(ctx, idx, layers)
	} else {
		result, err = orch.Run(ctx, batch.FileSource{Path: cfg.Zones}, layers)
	}

	if result != nil {
		printSummary(cmd.OutOrStdout(), result, writer, time.Since(start))
	}
	if err != nil {
		var layerErr *batch.LayerError
		if errors.As(err, &layerErr) {
			return fmt.Errorf("run aborted: %w", err)
		}
		return err
	}
	return nil
}

// layerWriters sends each layer to the file writer and then the database
// sink, when configured.
func layerWriters(w *output.Writer, sink *postgis.Sink) batch.LayerWriter {
	if sink == nil {
		return w
	}
	return batch.LayerWriterFunc(func(ctx context.Context, layer models.Layer) error {
		if err := w.WriteLayer(ctx, layer); err != nil {
			return err
		}
		return sink.WriteLayer(ctx, layer)
	})
}
