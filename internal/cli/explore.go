package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
	"github.com/matzehuels/chartgeom/pkg/dataset"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the interactive selection explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "explore [dataset]",
		Short: "Browse a chart's items and toggle the selection",
		Long: `Browse a chart's items and toggle the selection.

Arrow keys move the hover through segments, bins or layers; enter toggles the
active item and s writes the chart with the current selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(flags.formats)); err != nil {
				return err
			}
			doc, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), doc, args[0], &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, doc dataset.Document, input string, flags *chartFlags) error {
	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := flags.options(cfg)
	opts.Logger = loggerFromContext(ctx)
	g, err := runner.Compute(ctx, doc, opts)
	if err != nil {
		return err
	}

	save := func(sel selection.Selection) (string, error) {
		o := opts
		o.Selection = sel
		artifacts, err := runner.Render(ctx, g, o)
		if err != nil {
			return "", err
		}
		paths := artifactPaths(o.Formats, input, flags.output)
		for _, f := range o.Formats {
			if err := writeFile(paths[f], artifacts[f]); err != nil {
				return "", err
			}
		}
		return paths[o.Formats[0]], nil
	}

	m := NewExploreModel(g, opts.Selection, save)
	m.Title = filepath.Base(input)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(ExploreModel); ok && !fm.Selection.Empty() {
		printInfo("Selection: active=%q hovered=%q", fm.Selection.Active, fm.Selection.Hovered)
	}
	return nil
}

// =============================================================================
// ExploreModel - Interactive selection over chart items
// =============================================================================

// exploreRow is one item as shown in the explorer.
type exploreRow struct {
	key, value, detail, color string
}

// savedMsg reports the outcome of a save.
type savedMsg struct {
	path string
	err  error
}

// ExploreModel is the bubbletea model for browsing chart items.
type ExploreModel struct {
	Title     string
	Kind      string
	Rows      []exploreRow
	Keys      []string
	Selection selection.Selection
	Height    int
	Offset    int
	Status    string

	save func(selection.Selection) (string, error)
}

// NewExploreModel creates an explorer over g. save may be nil, which
// disables the save key.
func NewExploreModel(g chart.Geometry, sel selection.Selection, save func(selection.Selection) (string, error)) ExploreModel {
	rows := exploreRows(g)
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.key
	}
	return ExploreModel{
		Title:     g.Title,
		Kind:      g.Kind,
		Rows:      rows,
		Keys:      keys,
		Selection: sel,
		Height:    15,
		save:      save,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.Selection = m.Selection.Step(m.Keys, -1)
		case "down", "j":
			m.Selection = m.Selection.Step(m.Keys, 1)
		case "enter", " ":
			if m.Selection.Hovered != "" {
				m.Selection = m.Selection.Toggle(m.Selection.Hovered)
			}
		case "esc":
			m.Selection = selection.Selection{}
		case "s":
			if m.save == nil {
				return m, nil
			}
			save, sel := m.save, m.Selection
			m.Status = "saving..."
			return m, func() tea.Msg {
				path, err := save(sel)
				return savedMsg{path: path, err: err}
			}
		}
		m.scrollToHover()
	case savedMsg:
		if msg.err != nil {
			m.Status = iconError + " " + msg.err.Error()
		} else {
			m.Status = iconSuccess + " saved " + msg.path
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// scrollToHover keeps the hovered row inside the visible window.
func (m *ExploreModel) scrollToHover() {
	cur := m.hoverIndex()
	if cur < 0 {
		return
	}
	if cur < m.Offset {
		m.Offset = cur
	}
	if cur >= m.Offset+m.Height {
		m.Offset = cur - m.Height + 1
	}
}

func (m ExploreModel) hoverIndex() int {
	for i, k := range m.Keys {
		if k == m.Selection.Hovered {
			return i
		}
	}
	return -1
}

func (m ExploreModel) View() string {
	var b strings.Builder

	title := m.Kind
	if m.Title != "" {
		title = m.Title + " · " + m.Kind
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	help := "↑/↓ hover  ⏎ toggle  esc clear  q quit"
	if m.save != nil {
		help = "↑/↓ hover  ⏎ toggle  esc clear  s save  q quit"
	}
	b.WriteString(listDimStyle.Render(help))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no items"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	visible := m.Rows[m.Offset:end]
	rows := make([][]string, len(visible))
	for i, r := range visible {
		cursor := "  "
		if r.key == m.Selection.Hovered {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, r.key, r.value, r.detail, stateLabel(m.Selection.FlagsFor(r.key))}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Key", "Value", "Detail", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(visible) {
				return lipgloss.NewStyle()
			}
			r := visible[row]
			f := m.Selection.FlagsFor(r.key)
			base := lipgloss.NewStyle().Foreground(colorWhite)
			switch {
			case col == 1 && r.color != "":
				base = base.Foreground(lipgloss.Color(r.color))
			case f.Dimmed:
				base = base.Foreground(colorDim)
			}
			if f.Active {
				base = base.Bold(true)
			}
			if f.Hovered {
				base = base.Underline(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := m.hoverIndex() + 1
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, len(m.Rows))))
	if m.Status != "" {
		b.WriteString("  " + m.Status)
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func stateLabel(f selection.Flags) string {
	var parts []string
	if f.Active {
		parts = append(parts, "active")
	}
	if f.Hovered {
		parts = append(parts, "hovered")
	}
	if f.Dimmed {
		parts = append(parts, "dimmed")
	}
	return strings.Join(parts, ", ")
}

// exploreRows lists the items of g in drawing order.
func exploreRows(g chart.Geometry) []exploreRow {
	var rows []exploreRow
	switch {
	case g.Radial != nil:
		for _, s := range g.Radial.Segments {
			rows = append(rows, exploreRow{
				key:    s.Label,
				value:  fmt.Sprintf("%g", s.Value),
				detail: fmt.Sprintf("%.1f%% · %.1f°", s.Percentage*100, s.SweptAngle),
				color:  s.Color,
			})
		}
	case g.Hexbin != nil:
		for _, b := range g.Hexbin.Bins {
			rows = append(rows, exploreRow{
				key:    b.Key(),
				value:  fmt.Sprintf("%d", b.Count),
				detail: fmt.Sprintf("center %.0f,%.0f", b.CenterX, b.CenterY),
				color:  b.Color,
			})
		}
	case g.Stream != nil:
		for _, l := range g.Stream.Layers {
			total, peak := 0.0, 0.0
			for _, p := range l.Points {
				h := p.Y1 - p.Y0
				total += h
				if h > peak {
					peak = h
				}
			}
			rows = append(rows, exploreRow{
				key:    l.Key,
				value:  fmt.Sprintf("%g", total),
				detail: fmt.Sprintf("peak %g", peak),
				color:  l.Color,
			})
		}
	}
	return rows
}
