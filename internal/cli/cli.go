package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgeom/internal/config"
	"github.com/matzehuels/chartgeom/pkg/buildinfo"
	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Chartgeom computes chart geometry and renders it",
		Long: `Chartgeom turns datasets into chart geometry: radial (pie and donut)
segments, hexagonal bins and stacked stream layers. Geometry is cached and can
be rendered to SVG, PNG, PDF or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/chartgeom/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.radialCommand())
	root.AddCommand(c.hexbinCommand())
	root.AddCommand(c.streamCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner over the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, cfg, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), cfg, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		return nil, err
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// chartFlags are the output flags shared by every command that renders.
type chartFlags struct {
	output     string
	formats    string
	width      float64
	height     float64
	active     string
	hovered    string
	scale      float64
	background string
	noCache    bool
	refresh    bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "frame width (default from config, else 800)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "frame height (default from config, else 400)")
	cmd.Flags().StringVar(&f.active, "active", "", "key of the active (clicked) item")
	cmd.Flags().StringVar(&f.hovered, "hovered", "", "key of the hovered item")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG pixel density (default 1)")
	cmd.Flags().StringVar(&f.background, "background", "", "background color, e.g. #ffffff")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options converts the flags into pipeline options, falling back to the
// chart section of cfg for size and formats.
func (f *chartFlags) options(cfg config.Config) pipeline.Options {
	opts := pipeline.Options{
		Width:      f.width,
		Height:     f.height,
		Refresh:    f.refresh,
		Formats:    parseFormats(f.formats),
		Scale:      f.scale,
		Background: f.background,
	}
	opts.Selection.Active = f.active
	opts.Selection.Hovered = f.hovered
	if opts.Width == 0 {
		opts.Width = cfg.Chart.Width
	}
	if opts.Height == 0 {
		opts.Height = cfg.Chart.Height
	}
	if f.formats == "" && len(cfg.Chart.Formats) > 0 {
		opts.Formats = cfg.Chart.Formats
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
