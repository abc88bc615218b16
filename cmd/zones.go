package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/1F47E/point-within-poly/pkg/classify"
	"github.com/1F47E/point-within-poly/pkg/kml"
	"github.com/1F47E/point-within-poly/pkg/zones"
)

var (
	zonesPath    string
	snapshotPath string
	boundary     string
	useTree      bool
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the zones in declaration order",
	RunE:  runZones,
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Parse a zones KML file into a snapshot",
	Long:  `Parse the zones document once and save it as a gob snapshot that classify and locate accept in place of the KML file.`,
	RunE:  runCompile,
}

var locateCmd = &cobra.Command{
	Use:   "locate <lon> <lat>",
	Short: "Print the zone containing a single point",
	Args:  cobra.ExactArgs(2),
	RunE:  runLocate,
}

func init() {
	zonesCmd.Flags().StringVarP(&zonesPath, "zones", "z", "", "Zones KML file or .gob snapshot")

	compileCmd.Flags().StringVarP(&zonesPath, "zones", "z", "", "Zones KML file")
	compileCmd.Flags().StringVarP(&snapshotPath, "out", "o", "zones.gob", "Snapshot file path")

	locateCmd.Flags().StringVarP(&zonesPath, "zones", "z", "", "Zones KML file or .gob snapshot")
	locateCmd.Flags().StringVar(&boundary, "boundary", "", "Boundary policy: strict, inclusive")
	locateCmd.Flags().BoolVar(&useTree, "rtree", false, "Filter zones through an envelope R-tree")
}

func resolveZonesPath() (string, error) {
	if zonesPath != "" {
		return zonesPath, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Zones, nil
}

func runZones(cmd *cobra.Command, args []string) error {
	path, err := resolveZonesPath()
	if err != nil {
		return err
	}
	idx, err := zones.Load(path)
	if err != nil {
		return err
	}
	printZones(cmd.OutOrStdout(), idx.Zones())
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	path, err := resolveZonesPath()
	if err != nil {
		return err
	}
	polygons, err := kml.ParsePolygonsFile(path)
	if err != nil {
		return err
	}
	idx := zones.NewIndex(polygons)
	if err := idx.SaveToFile(snapshotPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d zones saved to %s\n", idx.Len(), snapshotPath)
	return nil
}

func runLocate(cmd *cobra.Command, args []string) error {
	lon, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q: %w", args[0], err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q: %w", args[1], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if zonesPath != "" {
		cfg.Zones = zonesPath
	}
	if boundary != "" {
		cfg.Boundary = boundary
	}
	contains, ok := classify.Policy(cfg.Boundary)
	if !ok {
		return fmt.Errorf("unknown boundary policy: %s", cfg.Boundary)
	}

	var opts []zones.Option
	if useTree || cfg.RTree {
		opts = append(opts, zones.WithEnvelopeTree())
	}
	idx, err := zones.Load(cfg.Zones, opts...)
	if err != nil {
		return err
	}

	cl := classify.New(idx, classify.WithContainment(contains))
	fmt.Fprintln(cmd.OutOrStdout(), cl.Zone(orb.Point{lon, lat}))
	return nil
}
