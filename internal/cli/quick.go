package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/stream"
	"github.com/matzehuels/chartgeom/pkg/dataset"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
)

// =============================================================================
// radial
// =============================================================================

// radialCommand creates a quick radial chart from label=value arguments.
func (c *CLI) radialCommand() *cobra.Command {
	var (
		flags chartFlags
		cfg   radial.Config
		half  bool
		title string
	)

	cmd := &cobra.Command{
		Use:   "radial [label=value...]",
		Short: "Render a pie or donut chart from label=value pairs",
		Example: `  chartgeom radial go=60 rust=25 zig=15
  chartgeom radial --inner 0.6 --gap 2 -o donut.png -f png a=1 b=2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(flags.formats)); err != nil {
				return err
			}
			data, err := parseSegments(args)
			if err != nil {
				return err
			}
			if half {
				cfg.SweepDegrees = radial.HalfCircle
			}
			doc := dataset.Document{
				Kind:   chart.KindRadial,
				Title:  title,
				Radial: &dataset.RadialSpec{Data: data, Config: cfg},
			}
			return c.runDocument(cmd.Context(), doc, chart.KindRadial, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	cmd.Flags().Float64Var(&cfg.InnerRadiusRatio, "inner", 0, "inner radius as a fraction of the outer radius (0 = pie)")
	cmd.Flags().Float64Var(&cfg.GapPixels, "gap", 0, "gap between segments in pixels")
	cmd.Flags().Float64Var(&cfg.OuterRadius, "radius", 0, "outer radius (default: half the frame)")
	cmd.Flags().BoolVar(&half, "half", false, "lay out a half circle (gauge)")
	cmd.Flags().StringSliceVar(&cfg.Palette, "palette", nil, "segment colors (comma-separated hex)")

	return cmd
}

// parseSegments parses label=value arguments.
func parseSegments(args []string) ([]radial.DataSegment, error) {
	data := make([]radial.DataSegment, 0, len(args))
	for _, arg := range args {
		label, raw, ok := strings.Cut(arg, "=")
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid segment %q (want label=value)", arg)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", arg, err)
		}
		data = append(data, radial.DataSegment{Label: label, Value: v})
	}
	return data, nil
}

// =============================================================================
// hexbin
// =============================================================================

// hexbinCommand creates a quick hexbin chart from x,y arguments.
func (c *CLI) hexbinCommand() *cobra.Command {
	var (
		flags chartFlags
		cfg   hexbin.Config
		title string
	)

	cmd := &cobra.Command{
		Use:     "hexbin [x,y...]",
		Short:   "Render a hexagonal binning of x,y points",
		Example: `  chartgeom hexbin --radius 30 1,2 1.2,2.1 5,7 4.8,6.5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(flags.formats)); err != nil {
				return err
			}
			points, err := parsePoints(args)
			if err != nil {
				return err
			}
			if cfg.XDomain == [2]float64{} && cfg.YDomain == [2]float64{} {
				cfg.XDomain, cfg.YDomain = pointDomains(points)
			}
			doc := dataset.Document{
				Kind:   chart.KindHexbin,
				Title:  title,
				Hexbin: &dataset.HexbinSpec{Points: points, Config: cfg},
			}
			return c.runDocument(cmd.Context(), doc, chart.KindHexbin, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	cmd.Flags().Float64Var(&cfg.HexRadius, "radius", 20, "hexagon radius in pixels")
	cmd.Flags().StringSliceVar(&cfg.ColorScale, "colors", nil, "color scale from sparse to dense (comma-separated hex)")

	return cmd
}

// parsePoints parses x,y arguments.
func parsePoints(args []string) ([]hexbin.DataPoint, error) {
	points := make([]hexbin.DataPoint, 0, len(args))
	for _, arg := range args {
		xs, ys, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q (want x,y)", arg)
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("invalid point %q (want x,y)", arg)
		}
		points = append(points, hexbin.DataPoint{X: x, Y: y})
	}
	return points, nil
}

// pointDomains returns the finite extent of points, widened by one unit on
// each side when it collapses to a single value.
func pointDomains(points []hexbin.DataPoint) (x, y [2]float64) {
	x = [2]float64{math.Inf(1), math.Inf(-1)}
	y = x
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		x[0], x[1] = math.Min(x[0], p.X), math.Max(x[1], p.X)
		y[0], y[1] = math.Min(y[0], p.Y), math.Max(y[1], p.Y)
	}
	widen := func(d [2]float64) [2]float64 {
		if math.IsInf(d[0], 0) {
			return [2]float64{0, 1}
		}
		if d[0] == d[1] {
			return [2]float64{d[0] - 1, d[1] + 1}
		}
		return d
	}
	return widen(x), widen(y)
}

// =============================================================================
// stream
// =============================================================================

// streamCommand creates a quick stream chart from --series flags.
func (c *CLI) streamCommand() *cobra.Command {
	var (
		flags  chartFlags
		cfg    stream.Config
		series []string
		labels []string
		offset string
		curve  string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Render a stacked stream chart from series values",
		Example: `  chartgeom stream --series web=3,5,4 --series mobile=1,2,6 --labels mon,tue,wed
  chartgeom stream --offset silhouette --curve smooth --series a=1,2,3 --series b=3,2,1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(flags.formats)); err != nil {
				return err
			}
			rows, keys, err := parseSeries(series, labels)
			if err != nil {
				return err
			}
			cfg.Offset = stream.Offset(offset)
			cfg.Curve = stream.Curve(curve)
			doc := dataset.Document{
				Kind:   chart.KindStream,
				Title:  title,
				Stream: &dataset.StreamSpec{Rows: rows, Keys: keys, Config: cfg},
			}
			return c.runDocument(cmd.Context(), doc, chart.KindStream, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	cmd.Flags().StringArrayVar(&series, "series", nil, "series as key=v1,v2,... (repeatable)")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "x labels (comma-separated, default 0,1,2,...)")
	cmd.Flags().StringVar(&offset, "offset", string(stream.OffsetZero), "baseline: zero, silhouette, wiggle, expand")
	cmd.Flags().StringVar(&curve, "curve", string(stream.CurveLinear), "curve: linear, smooth, step")
	cmd.Flags().StringSliceVar(&cfg.Palette, "palette", nil, "layer colors (comma-separated hex)")

	return cmd
}

// parseSeries turns key=v1,v2,... specs into dataset rows. Series may have
// different lengths; missing values are left out of their row.
func parseSeries(specs, labels []string) ([]map[string]any, []string, error) {
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("at least one --series is required")
	}
	var (
		keys []string
		rows []map[string]any
	)
	for _, spec := range specs {
		key, raw, ok := strings.Cut(spec, "=")
		if !ok || key == "" {
			return nil, nil, fmt.Errorf("invalid series %q (want key=v1,v2,...)", spec)
		}
		keys = append(keys, key)
		for i, field := range strings.Split(raw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("series %q value %d: %w", key, i, err)
			}
			for len(rows) <= i {
				label := strconv.Itoa(len(rows))
				if len(rows) < len(labels) {
					label = labels[len(rows)]
				}
				rows = append(rows, map[string]any{stream.LabelField: label})
			}
			rows[i][key] = v
		}
	}
	return rows, keys, nil
}
