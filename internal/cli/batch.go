package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chartgeom/pkg/dataset"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
)

// batchResult is the outcome of one file in a batch.
type batchResult struct {
	input    string
	kind     string
	items    int
	diags    int
	cached   bool
	duration time.Duration
	err      error
}

// batchCommand creates the batch command for rendering many datasets.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		flags     chartFlags
		outDir    string
		jobs      int
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:   "batch [dataset...]",
		Short: "Render many datasets concurrently",
		Long: `Render many datasets concurrently.

Each dataset is rendered to <out-dir>/<name>.<format>, or next to its input
when --out-dir is not set. The first failure stops the batch unless
--keep-going is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(flags.formats)); err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), args, &flags, outDir, jobs, keepGoing)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for rendered files")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of datasets rendered in parallel")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue after a dataset fails")
	_ = cmd.Flags().MarkHidden("output")

	return cmd
}

// runBatch renders inputs with at most jobs concurrent pipeline runs sharing
// one runner and cache.
func (c *CLI) runBatch(ctx context.Context, inputs []string, flags *chartFlags, outDir string, jobs int, keepGoing bool) error {
	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	opts := flags.options(cfg)
	opts.Logger = logger

	spinner := newBatchSpinner(ctx, os.Stderr, len(inputs))
	spinner.Start()

	results := make([]batchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = renderOne(gctx, runner, input, outDir, opts)
			spinner.advance(filepath.Base(input))
			if results[i].err != nil && !keepGoing {
				return fmt.Errorf("%s: %w", input, results[i].err)
			}
			return nil
		})
	}
	waitErr := g.Wait()
	spinner.Stop()

	fmt.Println(batchTable(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}
	prog.done(fmt.Sprintf("Rendered %d of %d datasets", len(inputs)-failed, len(inputs)))

	if waitErr != nil {
		return waitErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(inputs))
	}
	return nil
}

func renderOne(ctx context.Context, runner *pipeline.Runner, input, outDir string, opts pipeline.Options) batchResult {
	start := time.Now()
	r := batchResult{input: input}
	if err := ctx.Err(); err != nil {
		r.err = err
		return r
	}

	doc, err := dataset.Load(input)
	if err != nil {
		r.err = err
		return r
	}
	r.kind = doc.Kind
	opts.Logger = opts.Logger.With("file", filepath.Base(input))

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		r.err = err
		return r
	}

	base := input
	if outDir != "" {
		base = filepath.Join(outDir, filepath.Base(input))
	}
	paths := derivePaths(opts.Formats, input, base)
	for _, f := range opts.Formats {
		if err := writeFile(paths[f], res.Artifacts[f]); err != nil {
			r.err = err
			return r
		}
	}

	logDiagnostics(opts.Logger, res.Geometry.Diagnostics())
	r.items = res.Stats.Items
	r.diags = res.Stats.Diagnostics
	r.cached = res.CacheInfo.ComputeHit
	r.duration = time.Since(start)
	return r
}

// batchTable renders the per-file summary.
func batchTable(results []batchResult) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		status := iconFresh
		if r.cached {
			status = iconCached
		}
		if r.err != nil {
			status = iconError + " " + r.err.Error()
		}
		rows[i] = []string{
			filepath.Base(r.input),
			r.kind,
			fmt.Sprint(r.items),
			fmt.Sprint(r.diags),
			r.duration.Round(time.Millisecond).String(),
			status,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Dataset", "Kind", "Items", "Diag", "Time", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(results) {
				return lipgloss.NewStyle()
			}
			r := results[row]
			switch {
			case r.err != nil:
				return lipgloss.NewStyle().Foreground(colorRed)
			case col == 3 && r.diags > 0:
				return lipgloss.NewStyle().Foreground(colorYellow)
			case col == 5 && r.cached:
				return styleCached
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
