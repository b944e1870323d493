package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgeom/pkg/dataset"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
)

// renderCommand creates the render command for a single dataset file.
func (c *CLI) renderCommand() *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Compute chart geometry from a dataset and render it",
		Long: `Compute chart geometry from a dataset and render it.

The dataset is a JSON, TOML or YAML document whose "kind" selects the chart:
radial, hexbin or stream. Output defaults to <dataset>.<format> next to the
input file.

Geometry and artifacts are cached; --refresh recomputes both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(flags.formats)); err != nil {
				return err
			}
			doc, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			if err := c.runDocument(cmd.Context(), doc, args[0], &flags); err != nil {
				return err
			}
			printNextStep("Explore the selection", appName+" explore "+args[0])
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// runDocument executes the pipeline for doc and writes the artifacts.
// input names the source for default output paths.
func (c *CLI) runDocument(ctx context.Context, doc dataset.Document, input string, flags *chartFlags) error {
	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := flags.options(cfg)
	opts.Logger = loggerFromContext(ctx)

	spinner := newChartSpinner(ctx, os.Stderr, doc.Kind)
	spinner.Start()

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		cacheHit:  res.CacheInfo.ComputeHit && res.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	logDiagnostics(opts.Logger, res.Geometry.Diagnostics())
	printStats(doc.Kind, res.Stats.Items, res.Stats.Diagnostics, res.CacheInfo.ComputeHit)
	printDiagnostics(res.Geometry.Diagnostics())
	return nil
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes one file per format. A single format goes to output
// verbatim; with several, output is a base path that gets the format as
// extension.
func writeArtifacts(p artifactWriteParams) error {
	paths := artifactPaths(p.formats, p.input, p.output)
	for _, f := range p.formats {
		data, ok := p.artifacts[f]
		if !ok {
			return fmt.Errorf("no %s artifact produced", f)
		}
		if err := writeFile(paths[f], data); err != nil {
			return err
		}
	}

	label := "Rendered"
	if p.cacheHit {
		label = "Rendered (cached)"
	}
	printSuccess("%s %s", label, strings.Join(p.formats, ", "))
	for _, f := range p.formats {
		printFile(paths[f])
	}
	return nil
}

// artifactPaths resolves the output path of each format.
func artifactPaths(formats []string, input, output string) map[string]string {
	if len(formats) == 1 && output != "" {
		return map[string]string{formats[0]: output}
	}
	base := output
	if base == "" {
		base = input
	}
	return derivePaths(formats, input, base)
}

// derivePaths swaps the extension of base for each format. A path that
// would overwrite input gets a ".chart" infix.
func derivePaths(formats []string, input, base string) map[string]string {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		paths[f] = base + "." + f
		if paths[f] == input {
			paths[f] = base + ".chart." + f
		}
	}
	return paths
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
