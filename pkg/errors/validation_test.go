package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"positive", 1.5, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("radius", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidatePositive(%v) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("gap", 0); err != nil {
		t.Errorf("ValidateNonNegative(0) = %v", err)
	}
	if err := ValidateNonNegative("gap", -0.1); err == nil {
		t.Error("ValidateNonNegative(-0.1) should fail")
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		closed  bool
		wantErr bool
	}{
		{"low bound", 0, false, false},
		{"inside", 0.5, false, false},
		{"high bound open", 1, false, true},
		{"high bound closed", 1, true, false},
		{"below", -0.01, false, true},
		{"nan", math.NaN(), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("ratio", tt.v, 0, 1, tt.closed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		d       [2]float64
		wantErr bool
	}{
		{"valid", [2]float64{0, 10}, false},
		{"negative span", [2]float64{-5, -1}, false},
		{"empty", [2]float64{3, 3}, true},
		{"inverted", [2]float64{10, 0}, true},
		{"nan", [2]float64{math.NaN(), 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain("x domain", tt.d)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDomain(%v) error = %v, wantErr %v", tt.d, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "revenue", false},
		{"with spaces", "North America", false},
		{"unicode", "Größe", false},

		{"empty", "", true},
		{"too long", strings.Repeat("k", MaxKeyLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
