package stream

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/matzehuels/chartgeom/pkg/errors"
)

// LabelField is the row field holding the label of a SeriesPoint.
const LabelField = "x"

// SeriesPoint is one column of the stream: a label plus one value per series.
// Its position on the horizontal axis comes from its index in the input, never
// from X.
//
// In JSON a SeriesPoint is a flat object, {"x": "Mon", "a": 1, "b": 2}.
type SeriesPoint struct {
	X      string
	Values map[string]float64
}

// FromRow builds a SeriesPoint from a decoded row. The "x" field may be a
// string or a number; every other field must be numeric.
func FromRow(row map[string]any) (SeriesPoint, error) {
	sp := SeriesPoint{Values: make(map[string]float64, len(row))}
	for k, v := range row {
		if k == LabelField {
			sp.X = label(v)
			continue
		}
		f, ok := number(v)
		if !ok {
			return SeriesPoint{}, errors.New(errors.ErrCodeInvalidData,
				"series %q: value %v is not a number", k, v)
		}
		sp.Values[k] = f
	}
	return sp, nil
}

// Keys returns the series keys of rows in first-seen order. Keys within one
// row are taken in sorted order since maps carry none.
func Keys(rows []SeriesPoint) []string {
	var keys []string
	seen := map[string]bool{}
	for _, r := range rows {
		names := make([]string, 0, len(r.Values))
		for k := range r.Values {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// MarshalJSON flattens the point into a single object.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Values)+1)
	for k, v := range p.Values {
		m[k] = v
	}
	m[LabelField] = p.X
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat object form.
func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	sp, err := FromRow(row)
	if err != nil {
		return err
	}
	*p = sp
	return nil
}

func label(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	}
	if f, ok := number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
