// Package dataset reads chart documents: a chart kind, its data and its
// configuration in one JSON, TOML or YAML file.
//
// # Document Format
//
// A document names its kind and fills the matching section:
//
//	kind: stream
//	title: Weekly signups
//	stream:
//	  config: {offset: silhouette, curve: basis}
//	  rows:
//	    - {x: Mon, web: 3, mobile: 1}
//	    - {x: Tue, web: 5, mobile: 2}
//
// Stream rows are free-form tables. The "x" field is the label and every
// other field is a numeric series value. When keys are omitted they default
// to first-seen order.
//
// # Loading
//
// Use [Load] to read a file (format from its extension) or [Read] and
// [Decode] for readers and byte slices:
//
//	doc, err := dataset.Load("signups.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hash, _ := doc.Hash()
package dataset

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/stream"
	"github.com/matzehuels/chartgeom/pkg/errors"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Document is one chart request: kind, data and configuration.
type Document struct {
	Kind  string `json:"kind" yaml:"kind" toml:"kind"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	Radial *RadialSpec `json:"radial,omitempty" yaml:"radial,omitempty" toml:"radial,omitempty"`
	Hexbin *HexbinSpec `json:"hexbin,omitempty" yaml:"hexbin,omitempty" toml:"hexbin,omitempty"`
	Stream *StreamSpec `json:"stream,omitempty" yaml:"stream,omitempty" toml:"stream,omitempty"`
}

// RadialSpec holds the input of a radial chart.
type RadialSpec struct {
	Data   []radial.DataSegment `json:"data" yaml:"data" toml:"data"`
	Config radial.Config        `json:"config" yaml:"config" toml:"config"`
}

// HexbinSpec holds the input of a hexbin chart.
type HexbinSpec struct {
	Points []hexbin.DataPoint `json:"points" yaml:"points" toml:"points"`
	Config hexbin.Config      `json:"config" yaml:"config" toml:"config"`
}

// StreamSpec holds the input of a stream chart.
type StreamSpec struct {
	Rows   []map[string]any `json:"rows" yaml:"rows" toml:"rows"`
	Keys   []string         `json:"keys,omitempty" yaml:"keys,omitempty" toml:"keys,omitempty"`
	Config stream.Config    `json:"config" yaml:"config" toml:"config"`
}

// Series converts the rows to series points and resolves the keys.
func (s StreamSpec) Series() ([]stream.SeriesPoint, []string, error) {
	points := make([]stream.SeriesPoint, 0, len(s.Rows))
	for i, row := range s.Rows {
		sp, err := stream.FromRow(row)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidData, err, "row %d", i)
		}
		points = append(points, sp)
	}
	keys := s.Keys
	if len(keys) == 0 {
		keys = stream.Keys(points)
	}
	return points, keys, nil
}

// Validate checks that Kind is known and that its section is the only one set.
func (d Document) Validate() error {
	if !chart.ValidKind(d.Kind) {
		return errors.New(errors.ErrCodeInvalidKind,
			"unknown chart kind %q (must be one of: %s)", d.Kind, strings.Join(chart.Kinds, ", "))
	}
	sections := map[string]bool{
		chart.KindRadial: d.Radial != nil,
		chart.KindHexbin: d.Hexbin != nil,
		chart.KindStream: d.Stream != nil,
	}
	if !sections[d.Kind] {
		return errors.New(errors.ErrCodeInvalidDocument, "%s document is missing its %s section", d.Kind, d.Kind)
	}
	for kind, set := range sections {
		if set && kind != d.Kind {
			return errors.New(errors.ErrCodeInvalidDocument, "%s document also sets a %s section", d.Kind, kind)
		}
	}
	return nil
}

// Hash returns the content hash of the document used for geometry cache keys.
// The title does not affect geometry and is excluded.
func (d Document) Hash() (string, error) {
	d.Title = ""
	return cache.HashJSON(d)
}

// =============================================================================
// Decoding
// =============================================================================

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot infer document format from %q (use .json, .toml, .yaml or .yml)", path)
}

// Decode parses data in the given format and validates the result.
func Decode(data []byte, format string) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported document format %q (must be one of: json, toml, yaml)", format)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s document", format)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Read decodes a document from r.
func Read(r io.Reader, format string) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read document")
	}
	return Decode(data, format)
}

// Load reads the document at path, inferring its format from the extension.
func Load(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "open %s", path)
	}
	return Decode(data, format)
}
