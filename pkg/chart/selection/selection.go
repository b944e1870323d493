// Package selection flags chart geometry with caller-owned interaction state.
//
// A [Selection] is a plain value owned by whatever front end tracks pointer
// state. Engines never see it; [Decorate] and its typed helpers derive
// per-item flags from it without touching the geometry.
//
// Keys are segment labels for radial charts, series keys for stream charts
// and "col,row" for hexagon bins.
package selection

import (
	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/stream"
)

// Selection is the active (clicked) and hovered key. Empty means none.
type Selection struct {
	Active  string `json:"active,omitempty" yaml:"active,omitempty" toml:"active,omitempty"`
	Hovered string `json:"hovered,omitempty" yaml:"hovered,omitempty" toml:"hovered,omitempty"`
}

// Empty reports whether nothing is selected or hovered.
func (s Selection) Empty() bool { return s.Active == "" && s.Hovered == "" }

// Flags are the derived interaction flags for one item.
type Flags struct {
	Active  bool `json:"active,omitempty"`
	Hovered bool `json:"hovered,omitempty"`
	Dimmed  bool `json:"dimmed,omitempty"`
}

// FlagsFor derives the flags of the item with the given key. An item is
// dimmed when something else is selected or hovered and it is neither.
func (s Selection) FlagsFor(key string) Flags {
	f := Flags{
		Active:  s.Active != "" && key == s.Active,
		Hovered: s.Hovered != "" && key == s.Hovered,
	}
	f.Dimmed = !s.Empty() && !f.Active && !f.Hovered
	return f
}

// Toggle returns the selection with key activated, or cleared if key was
// already active.
func (s Selection) Toggle(key string) Selection {
	if s.Active == key {
		s.Active = ""
	} else {
		s.Active = key
	}
	return s
}

// Hover returns the selection with the hovered key replaced.
func (s Selection) Hover(key string) Selection {
	s.Hovered = key
	return s
}

// Step moves the hovered key by delta through keys, wrapping at both ends.
// With nothing hovered it starts from the first (delta > 0) or last key.
func (s Selection) Step(keys []string, delta int) Selection {
	if len(keys) == 0 {
		return s
	}
	cur := -1
	for i, k := range keys {
		if k == s.Hovered {
			cur = i
			break
		}
	}
	var next int
	switch {
	case cur < 0 && delta >= 0:
		next = 0
	case cur < 0:
		next = len(keys) - 1
	default:
		n := len(keys)
		next = ((cur+delta)%n + n) % n
	}
	s.Hovered = keys[next]
	return s
}

// Item pairs a geometry value with its key and flags.
type Item[T any] struct {
	Key   string `json:"key"`
	Value T      `json:"value"`
	Flags
}

// Decorate flags every item in order. It never modifies items.
func Decorate[T any](items []T, key func(T) string, sel Selection) []Item[T] {
	out := make([]Item[T], len(items))
	for i, it := range items {
		k := key(it)
		out[i] = Item[T]{Key: k, Value: it, Flags: sel.FlagsFor(k)}
	}
	return out
}

// Segments decorates radial segments by label.
func Segments(l radial.Layout, sel Selection) []Item[radial.Segment] {
	return Decorate(l.Segments, func(s radial.Segment) string { return s.Label }, sel)
}

// Layers decorates stream layers by series key.
func Layers(r stream.Result, sel Selection) []Item[stream.Layer] {
	return Decorate(r.Layers, func(l stream.Layer) string { return l.Key }, sel)
}

// Bins decorates hexagon bins by "col,row".
func Bins(r hexbin.Result, sel Selection) []Item[hexbin.Bin] {
	return Decorate(r.Bins, hexbin.Bin.Key, sel)
}
