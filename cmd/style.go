package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/1F47E/point-within-poly/pkg/batch"
	"github.com/1F47E/point-within-poly/pkg/models"
	"github.com/1F47E/point-within-poly/pkg/output"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)
)

var colored = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func render(style lipgloss.Style, s string) string {
	if !colored {
		return s
	}
	return style.Render(s)
}

func printSummary(w io.Writer, result *batch.Result, writer *output.Writer, elapsed time.Duration) {
	var b strings.Builder

	for _, layer := range result.Layers {
		fmt.Fprintf(&b, "%s %s %s\n",
			render(successStyle, "✓"),
			layer.ID,
			render(dimStyle, fmt.Sprintf("%d placemarks -> %s", layer.Len(), writer.Path(layer.ID))))
	}
	for _, failed := range result.Failed {
		fmt.Fprintf(&b, "%s %s %s\n",
			render(errorStyle, "✗"),
			failed.Layer,
			render(dimStyle, failed.Err.Error()))
	}

	fmt.Fprintf(&b, "\nNumero total de placemark a los que se les asigno una Zona: %s\n",
		render(statStyle, fmt.Sprint(result.Total)))
	fmt.Fprint(&b, render(dimStyle, fmt.Sprintf("%d layers in %v", len(result.Layers), elapsed.Round(time.Millisecond))))

	if !colored {
		fmt.Fprintln(w, b.String())
		return
	}
	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

func printZones(w io.Writer, zs []models.ZonePolygon) {
	fmt.Fprintln(w, render(titleStyle, fmt.Sprintf("%d zones", len(zs))))
	for i, z := range zs {
		line := fmt.Sprintf("%3d. %-30s %-20s %d vertices", i+1, z.Name, z.Folder, len(z.Ring))
		if z.Degenerate() {
			line += " " + render(errorStyle, "(degenerate)")
		}
		fmt.Fprintln(w, line)
	}
}
