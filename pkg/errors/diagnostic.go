package errors

import "fmt"

// Diagnostic codes describe non-fatal data problems. Engines repair the
// input (clamping, dropping) and report what they did instead of failing.
const (
	DiagNegativeValue  Code = "NEGATIVE_VALUE"
	DiagNonFinite      Code = "NON_FINITE_VALUE"
	DiagTooNarrow      Code = "SEGMENT_TOO_NARROW"
	DiagOutOfBounds    Code = "POINT_OUT_OF_BOUNDS"
	DiagUnknownSeries  Code = "UNKNOWN_SERIES"
	DiagEmptyDataset   Code = "EMPTY_DATASET"
	DiagZeroTotalIndex Code = "ZERO_TOTAL_INDEX"
	DiagTotalOverflow  Code = "TOTAL_OVERFLOW"
)

// Diagnostic is a non-fatal note attached to computed geometry.
type Diagnostic struct {
	Code    Code   `json:"code" bson:"code"`
	Key     string `json:"key,omitempty" bson:"key,omitempty"`
	Message string `json:"message" bson:"message"`
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	if d.Key != "" {
		return fmt.Sprintf("%s [%s]: %s", d.Code, d.Key, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Note builds a Diagnostic with a formatted message.
func Note(code Code, key, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Key: key, Message: fmt.Sprintf(format, args...)}
}
