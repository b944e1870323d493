package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
)

func testGeometry(t *testing.T) chart.Geometry {
	t.Helper()
	l, err := radial.Compute([]radial.DataSegment{
		{Label: "go", Value: 2},
		{Label: "rust", Value: 1},
		{Label: "zig", Value: 1},
	}, radial.Config{OuterRadius: 50})
	if err != nil {
		t.Fatalf("radial.Compute() error: %v", err)
	}
	return chart.FromRadial(l)
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestExploreModelNavigation(t *testing.T) {
	m := NewExploreModel(testGeometry(t), selection.Selection{}, nil)
	if len(m.Rows) != 3 || m.Keys[0] != "go" {
		t.Fatalf("rows = %+v", m.Rows)
	}

	tests := []struct {
		name string
		keys []string
		want selection.Selection
	}{
		{"first down hovers first", []string{"down"}, selection.Selection{Hovered: "go"}},
		{"up wraps to last", []string{"up"}, selection.Selection{Hovered: "zig"}},
		{"down twice", []string{"down", "j"}, selection.Selection{Hovered: "rust"}},
		{"enter toggles hovered", []string{"down", "enter"}, selection.Selection{Active: "go", Hovered: "go"}},
		{"enter twice clears active", []string{"down", "enter", "enter"}, selection.Selection{Hovered: "go"}},
		{"enter without hover", []string{"enter"}, selection.Selection{}},
		{"esc clears", []string{"down", "enter", "esc"}, selection.Selection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(m, tt.keys...).(ExploreModel)
			if got.Selection != tt.want {
				t.Errorf("Selection = %+v, want %+v", got.Selection, tt.want)
			}
		})
	}
}

func TestExploreModelScroll(t *testing.T) {
	m := NewExploreModel(testGeometry(t), selection.Selection{}, nil)
	m.Height = 2
	got := press(m, "down", "down", "down").(ExploreModel)
	if got.Offset != 1 {
		t.Errorf("Offset = %d, want 1 with the third row hovered", got.Offset)
	}
	got = press(got, "down").(ExploreModel)
	if got.Offset != 0 {
		t.Errorf("Offset = %d, want 0 after wrapping to the first row", got.Offset)
	}
}

func TestExploreModelSave(t *testing.T) {
	var saved selection.Selection
	save := func(sel selection.Selection) (string, error) {
		saved = sel
		return "out.svg", nil
	}
	m := NewExploreModel(testGeometry(t), selection.Selection{}, save)
	m = press(m, "down", "enter").(ExploreModel)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("save key should return a command")
	}
	next, _ = next.Update(cmd())
	if saved.Active != "go" {
		t.Errorf("saved selection = %+v", saved)
	}
	if status := next.(ExploreModel).Status; !strings.Contains(status, "out.svg") {
		t.Errorf("Status = %q", status)
	}

	failed, _ := next.Update(savedMsg{err: errors.New("disk full")})
	if status := failed.(ExploreModel).Status; !strings.Contains(status, "disk full") {
		t.Errorf("Status = %q", status)
	}
}

func TestExploreModelSaveDisabled(t *testing.T) {
	m := NewExploreModel(testGeometry(t), selection.Selection{}, nil)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}); cmd != nil {
		t.Error("save without a save func should be a no-op")
	}
}

func TestExploreModelQuit(t *testing.T) {
	m := NewExploreModel(testGeometry(t), selection.Selection{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestExploreModelView(t *testing.T) {
	m := NewExploreModel(testGeometry(t), selection.Selection{Active: "rust"}, nil)
	view := m.View()
	for _, want := range []string{"radial", "go", "rust", "active", "dimmed", "50.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	empty := NewExploreModel(chart.Geometry{Kind: chart.KindStream}, selection.Selection{}, nil)
	if !strings.Contains(empty.View(), "no items") {
		t.Error("empty geometry should say so")
	}
}

func TestStateLabel(t *testing.T) {
	if got := stateLabel(selection.Flags{Active: true, Hovered: true}); got != "active, hovered" {
		t.Errorf("stateLabel() = %q", got)
	}
	if got := stateLabel(selection.Flags{}); got != "" {
		t.Errorf("stateLabel() = %q, want empty", got)
	}
}
