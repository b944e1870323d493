package errors

import (
	"math"
	"unicode"
)

// MaxKeyLength bounds segment labels and series keys.
const MaxKeyLength = 256

// ValidateFinite rejects NaN and infinite configuration values.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidatePositive requires v to be finite and strictly greater than zero.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative requires v to be finite and at least zero.
func ValidateNonNegative(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %g", name, v)
	}
	return nil
}

// ValidateRange requires v to lie in [lo, hi), or [lo, hi] when closed is set.
func ValidateRange(name string, v, lo, hi float64, closed bool) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi || (!closed && v == hi) {
		bracket := ")"
		if closed {
			bracket = "]"
		}
		return New(ErrCodeInvalidConfig, "%s must be in [%g, %g%s, got %g", name, lo, hi, bracket, v)
	}
	return nil
}

// ValidateDomain checks a [min, max] data domain: both ends finite and max > min.
func ValidateDomain(name string, d [2]float64) error {
	if err := ValidateFinite(name+" min", d[0]); err != nil {
		return err
	}
	if err := ValidateFinite(name+" max", d[1]); err != nil {
		return err
	}
	if d[1] <= d[0] {
		return New(ErrCodeInvalidConfig, "%s [%g, %g] is empty or inverted", name, d[0], d[1])
	}
	return nil
}

// ValidateKey validates a segment label or series key.
//
// Keys double as selection identifiers and SVG class fragments, so they
// must be non-empty, reasonably short and free of control characters.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidConfig, "key cannot be empty")
	}
	if len(key) > MaxKeyLength {
		return New(ErrCodeInvalidConfig, "key too long (max %d characters)", MaxKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "key %q contains control characters", key)
		}
	}
	return nil
}
