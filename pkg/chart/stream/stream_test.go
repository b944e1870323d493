package stream

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/chartgeom/pkg/errors"
)

func row(x string, kv ...any) SeriesPoint {
	p := SeriesPoint{X: x, Values: map[string]float64{}}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Values[kv[i].(string)] = kv[i+1].(float64)
	}
	return p
}

func sample() []SeriesPoint {
	return []SeriesPoint{
		row("mon", "a", 1.0, "b", 2.0, "c", 3.0),
		row("tue", "a", 4.0, "b", 0.0, "c", 1.0),
		row("wed", "a", 2.0, "b", 2.0),
		row("thu", "a", 0.5, "b", 6.0, "c", 1.5),
	}
}

var keys = []string{"a", "b", "c"}

func TestStackScenarioC(t *testing.T) {
	res, err := Stack([]SeriesPoint{row("only", "a", 10.0, "b", 20.0)}, []string{"a", "b"}, OffsetExpand, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	a, b := res.Layers[0].Points[0], res.Layers[1].Points[0]
	if a.Y0 != 0 || math.Abs(a.Y1-100.0/3) > 1e-9 {
		t.Errorf("layer a = [%v, %v], want [0, 33.3]", a.Y0, a.Y1)
	}
	if math.Abs(b.Y0-100.0/3) > 1e-9 || math.Abs(b.Y1-100) > 1e-9 {
		t.Errorf("layer b = [%v, %v], want [33.3, 100]", b.Y0, b.Y1)
	}
	if a.Value != 10 || b.Value != 20 {
		t.Errorf("raw values = %v, %v", a.Value, b.Value)
	}
}

func TestStackZeroKeepsValueHeight(t *testing.T) {
	res, err := Stack(sample(), keys, OffsetZero, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	for _, l := range res.Layers {
		for _, p := range l.Points {
			if math.Abs((p.Y1-p.Y0)-p.Value) > 1e-12 {
				t.Errorf("layer %s index %d: height %v != value %v", l.Key, p.Index, p.Y1-p.Y0, p.Value)
			}
		}
	}
	// Stack order follows keys: c sits on top of a+b.
	if p := res.Layers[2].Points[0]; p.Y0 != 3 || p.Y1 != 6 {
		t.Errorf("layer c index 0 = [%v, %v], want [3, 6]", p.Y0, p.Y1)
	}
	if res.Layers[0].Points[0].Y0 != 0 {
		t.Error("zero offset must keep the baseline at 0")
	}
	// Missing value counts as 0.
	if p := res.Layers[2].Points[2]; p.Value != 0 || p.Y0 != p.Y1 {
		t.Errorf("missing value band = %+v", p)
	}
}

func TestStackOffsetsPreserveBandHeights(t *testing.T) {
	base, _ := Stack(sample(), keys, OffsetZero, CurveLinear)
	for _, off := range []Offset{OffsetSilhouette, OffsetWiggle} {
		t.Run(string(off), func(t *testing.T) {
			res, err := Stack(sample(), keys, off, CurveLinear)
			if err != nil {
				t.Fatalf("Stack() error: %v", err)
			}
			for k, l := range res.Layers {
				for i, p := range l.Points {
					bp := base.Layers[k].Points[i]
					if math.Abs((p.Y1-p.Y0)-(bp.Y1-bp.Y0)) > 1e-12 {
						t.Errorf("%s[%d] height changed", l.Key, i)
					}
				}
			}
		})
	}
}

func TestStackSilhouetteCenters(t *testing.T) {
	res, err := Stack(sample(), keys, OffsetSilhouette, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	// Column totals are 6, 5, 4, 8; the tallest (8) anchors the center at 4.
	top, bottom := res.Layers[2].Points, res.Layers[0].Points
	for i := range top {
		mid := (top[i].Y1 + bottom[i].Y0) / 2
		if math.Abs(mid-4) > 1e-12 {
			t.Errorf("column %d center = %v, want 4", i, mid)
		}
	}
	if bottom[3].Y0 != 0 {
		t.Errorf("tallest column baseline = %v, want 0", bottom[3].Y0)
	}
}

func TestStackWiggleShift(t *testing.T) {
	res, err := Stack(sample(), keys, OffsetWiggle, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	want := []float64{1, 1.5, 2, 0}
	for i, w := range want {
		if got := res.Layers[0].Points[i].Y0; math.Abs(got-w) > 1e-12 {
			t.Errorf("column %d baseline = %v, want %v", i, got, w)
		}
	}
}

func TestStackExpandSumsTo100(t *testing.T) {
	res, err := Stack(sample(), keys, OffsetExpand, CurveSmooth)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	for i := range sample() {
		sum := 0.0
		for _, l := range res.Layers {
			sum += l.Points[i].Y1 - l.Points[i].Y0
		}
		if math.Abs(sum-100) > 1e-6 {
			t.Errorf("column %d sums to %v, want 100", i, sum)
		}
	}
	if res.MinY != 0 || res.MaxY != 100 {
		t.Errorf("extent = [%v, %v], want [0, 100]", res.MinY, res.MaxY)
	}
}

func TestStackOverflowingColumns(t *testing.T) {
	data := []SeriesPoint{row("a", "a", 1e308, "b", 1e308), row("b", "a", 1.0, "b", 3.0)}
	for _, offset := range Offsets() {
		t.Run(string(offset), func(t *testing.T) {
			res, err := Stack(data, []string{"a", "b"}, offset, CurveLinear)
			if err != nil {
				t.Fatalf("Stack() error: %v", err)
			}
			for _, l := range res.Layers {
				for _, p := range l.Points {
					if !isFinite(p.Y0) || !isFinite(p.Y1) {
						t.Errorf("layer %s point %d = %+v", l.Key, p.Index, p)
					}
				}
				if strings.Contains(l.D, "NaN") || strings.Contains(l.D, "Inf") {
					t.Errorf("layer %s path = %q", l.Key, l.D)
				}
			}
			if res.Layers[0].Points[0].Value != 1e308 {
				t.Errorf("Value = %v, want the input value", res.Layers[0].Points[0].Value)
			}
			if offset == OffsetExpand {
				top := res.Layers[1].Points[0]
				if math.Abs(top.Y1-ExpandTotal) > 1e-9 || math.Abs(res.Layers[0].Points[0].Y1-50) > 1e-9 {
					t.Errorf("expand column = %+v", top)
				}
			}
			found := false
			for _, d := range res.Diagnostics {
				found = found || d.Code == errors.DiagTotalOverflow
			}
			if !found {
				t.Errorf("diagnostics = %v, want %s", res.Diagnostics, errors.DiagTotalOverflow)
			}
		})
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func TestStackExpandZeroColumn(t *testing.T) {
	data := []SeriesPoint{row("a", "a", 1.0), row("b", "a", 0.0)}
	res, err := Stack(data, []string{"a"}, OffsetExpand, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	if p := res.Layers[0].Points[1]; p.Y0 != 0 || p.Y1 != 0 {
		t.Errorf("zero column = %+v", p)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != errors.DiagZeroTotalIndex {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
	if strings.Contains(res.Layers[0].D, "NaN") {
		t.Errorf("path contains NaN: %q", res.Layers[0].D)
	}
}

func TestStackLinearPath(t *testing.T) {
	data := []SeriesPoint{row("0", "a", 1.0), row("1", "a", 2.0)}
	res, err := StackWithConfig(data, []string{"a"}, Config{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	want := "M0,50 L100,0 L100,100 L0,100 Z"
	if got := res.PathsByKey["a"]; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestStackStepPath(t *testing.T) {
	data := []SeriesPoint{row("0", "a", 1.0), row("1", "a", 2.0)}
	res, err := StackWithConfig(data, []string{"a"}, Config{Curve: CurveStep, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	want := "M0,50 L50,50 L50,0 L100,0 L100,100 L50,100 L50,100 L0,100 Z"
	if got := res.PathsByKey["a"]; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestStackSmoothPath(t *testing.T) {
	data := []SeriesPoint{row("0", "a", 1.0), row("1", "a", 2.0)}
	res, err := StackWithConfig(data, []string{"a"}, Config{Curve: CurveSmooth, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	want := "M0,50 C50,50 50,0 100,0 L100,100 C50,100 50,100 0,100 Z"
	if got := res.PathsByKey["a"]; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestStackSingleIndexCentered(t *testing.T) {
	res, err := StackWithConfig([]SeriesPoint{row("x", "a", 5.0)}, []string{"a"}, Config{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	if !strings.HasPrefix(res.PathsByKey["a"], "M100,") {
		t.Errorf("single column path = %q", res.PathsByKey["a"])
	}
}

func TestStackEmpty(t *testing.T) {
	res, err := Stack(nil, keys, OffsetExpand, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	if len(res.Layers) != 3 || len(res.Layers[0].Points) != 0 {
		t.Errorf("empty stack = %+v", res.Layers)
	}
	if res.PathsByKey["a"] != "" {
		t.Errorf("empty path = %q", res.PathsByKey["a"])
	}
}

func TestStackNegativeClamped(t *testing.T) {
	data := []SeriesPoint{row("0", "a", -3.0, "b", 2.0), row("1", "a", math.Inf(1), "b", 1.0)}
	res, err := Stack(data, []string{"a", "b"}, OffsetZero, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	if p := res.Layers[0].Points[0]; p.Value != 0 || p.Y1 != 0 {
		t.Errorf("negative value band = %+v", p)
	}
	codes := []errors.Code{res.Diagnostics[0].Code, res.Diagnostics[1].Code}
	if codes[0] != errors.DiagNegativeValue || codes[1] != errors.DiagNonFinite {
		t.Errorf("diagnostic codes = %v", codes)
	}
}

func TestStackUnknownSeries(t *testing.T) {
	res, err := Stack([]SeriesPoint{row("0", "a", 1.0, "zz", 5.0)}, []string{"a"}, OffsetZero, CurveLinear)
	if err != nil {
		t.Fatalf("Stack() error: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Key != "zz" {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestStackInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		cfg  Config
	}{
		{"unknown offset", keys, Config{Offset: "sideways"}},
		{"unknown curve", keys, Config{Curve: "bezier"}},
		{"negative width", keys, Config{Width: -5}},
		{"duplicate keys", []string{"a", "a"}, Config{}},
		{"empty key", []string{""}, Config{}},
		{"bad palette", keys, Config{Palette: []string{"#zzz"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StackWithConfig(sample(), tt.keys, tt.cfg)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("StackWithConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestStackDeterministic(t *testing.T) {
	for _, off := range Offsets() {
		for _, c := range Curves() {
			a, err := Stack(sample(), keys, off, c)
			if err != nil {
				t.Fatalf("Stack(%s, %s) error: %v", off, c, err)
			}
			b, _ := Stack(sample(), keys, off, c)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Stack(%s, %s) not deterministic", off, c)
			}
		}
	}
}

func TestSeriesPointJSON(t *testing.T) {
	var pts []SeriesPoint
	if err := json.Unmarshal([]byte(`[{"x": 2024, "a": 1, "b": 2.5}, {"x": "next", "a": 3}]`), &pts); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if pts[0].X != "2024" || pts[0].Values["b"] != 2.5 || pts[1].X != "next" {
		t.Errorf("decoded = %+v", pts)
	}
	if got := Keys(pts); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}

	var bad SeriesPoint
	err := json.Unmarshal([]byte(`{"x": "a", "v": "oops"}`), &bad)
	if !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("Unmarshal(non-numeric) error = %v, want INVALID_DATA", err)
	}
}
