package scale

import (
	"math"
	"testing"
)

func TestLinearMap(t *testing.T) {
	s, err := NewLinear(0, 10, 1, 99)
	if err != nil {
		t.Fatalf("NewLinear() error: %v", err)
	}

	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{10, 99},
		{5, 50},
		{-10, -97},
	}
	for _, tt := range tests {
		if got := s.Map(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLinearInvertedRange(t *testing.T) {
	s, err := NewLinear(0, 10, 99, 1)
	if err != nil {
		t.Fatalf("NewLinear() error: %v", err)
	}
	if got := s.Map(10); math.Abs(got-1) > 1e-9 {
		t.Errorf("Map(max) = %v, want 1 (top of plot)", got)
	}
	if got := s.Map(0); math.Abs(got-99) > 1e-9 {
		t.Errorf("Map(min) = %v, want 99 (bottom of plot)", got)
	}
	if got := s.Invert(s.Map(3.5)); math.Abs(got-3.5) > 1e-9 {
		t.Errorf("Invert(Map(3.5)) = %v", got)
	}
}

func TestLinearReversedDomain(t *testing.T) {
	s, err := NewLinear(10, 0, 0, 100)
	if err != nil {
		t.Fatalf("NewLinear() error: %v", err)
	}
	if got := s.Map(10); math.Abs(got) > 1e-9 {
		t.Errorf("Map(10) = %v, want 0", got)
	}
	lo, hi := s.Domain()
	if lo != 0 || hi != 10 {
		t.Errorf("Domain() = [%v, %v], want [0, 10]", lo, hi)
	}
}

func TestNewLinearErrors(t *testing.T) {
	tests := []struct {
		name           string
		d0, d1, r0, r1 float64
	}{
		{"degenerate", 5, 5, 0, 1},
		{"nan domain", math.NaN(), 1, 0, 1},
		{"inf range", 0, 1, 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLinear(tt.d0, tt.d1, tt.r0, tt.r1); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTicks(t *testing.T) {
	s, _ := NewLinear(0, 100, 0, 1)
	ticks := s.Ticks(6)
	if len(ticks) == 0 || len(ticks) > 6 {
		t.Fatalf("Ticks(6) returned %d ticks", len(ticks))
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] <= ticks[i-1] {
			t.Errorf("ticks not increasing: %v", ticks)
		}
	}
	if s.Ticks(0) != nil {
		t.Error("Ticks(0) should be nil")
	}
}
