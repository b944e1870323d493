package cli

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
)

func TestParseSegments(t *testing.T) {
	got, err := parseSegments([]string{"go=60", "rust=40.5"})
	if err != nil {
		t.Fatalf("parseSegments() error: %v", err)
	}
	want := []radial.DataSegment{{Label: "go", Value: 60}, {Label: "rust", Value: 40.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSegments() = %v, want %v", got, want)
	}

	for _, bad := range []string{"go", "=1", "go=x"} {
		if _, err := parseSegments([]string{bad}); err == nil {
			t.Errorf("parseSegments(%q) should fail", bad)
		}
	}
}

func TestParsePoints(t *testing.T) {
	got, err := parsePoints([]string{"1,2", "-3.5,4"})
	if err != nil {
		t.Fatalf("parsePoints() error: %v", err)
	}
	want := []hexbin.DataPoint{{X: 1, Y: 2}, {X: -3.5, Y: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePoints() = %v, want %v", got, want)
	}
	if _, err := parsePoints([]string{"1;2"}); err == nil {
		t.Error("parsePoints should reject a missing comma")
	}
}

func TestPointDomains(t *testing.T) {
	tests := []struct {
		name   string
		points []hexbin.DataPoint
		wantX  [2]float64
		wantY  [2]float64
	}{
		{"spread", []hexbin.DataPoint{{X: 1, Y: 5}, {X: 3, Y: 2}}, [2]float64{1, 3}, [2]float64{2, 5}},
		{"single point widens", []hexbin.DataPoint{{X: 2, Y: 2}}, [2]float64{1, 3}, [2]float64{1, 3}},
		{"non-finite ignored", []hexbin.DataPoint{{X: math.NaN(), Y: 0}, {X: 0, Y: 0}, {X: 4, Y: 1}}, [2]float64{0, 4}, [2]float64{0, 1}},
		{"nothing usable", []hexbin.DataPoint{{X: math.Inf(1), Y: 0}}, [2]float64{0, 1}, [2]float64{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := pointDomains(tt.points)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("pointDomains() = %v, %v, want %v, %v", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestParseSeries(t *testing.T) {
	rows, keys, err := parseSeries([]string{"web=3,5", "mobile=1,2,4"}, []string{"mon", "tue"})
	if err != nil {
		t.Fatalf("parseSeries() error: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"web", "mobile"}) {
		t.Errorf("keys = %v", keys)
	}
	want := []map[string]any{
		{"x": "mon", "web": 3.0, "mobile": 1.0},
		{"x": "tue", "web": 5.0, "mobile": 2.0},
		{"x": "2", "mobile": 4.0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}

	if _, _, err := parseSeries(nil, nil); err == nil {
		t.Error("parseSeries without series should fail")
	}
	if _, _, err := parseSeries([]string{"web=1,x"}, nil); err == nil {
		t.Error("parseSeries should reject non-numeric values")
	}
}
