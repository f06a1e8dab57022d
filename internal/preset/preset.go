// Package preset reads shareable category lists that are merged into a pool
// registry on start.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

var (
	// ErrInvalid is returned for preset documents that fail validation.
	ErrInvalid = errors.New("invalid preset")
	// ErrUnknownPrototype is returned when an entry names a prototype the catalog does not have.
	ErrUnknownPrototype = errors.New("unknown prototype")
	// ErrNoStore is returned when shared presets are requested without a redis store.
	ErrNoStore = errors.New("shared presets need a redis store")
)

// Entry is one category definition.
type Entry struct {
	Name      string `yaml:"name"      json:"name"      mapstructure:"name"`
	Capacity  int    `yaml:"capacity"  json:"capacity"  mapstructure:"capacity"`
	Prototype string `yaml:"prototype" json:"prototype" mapstructure:"prototype"`
}

// Document is a named list of category definitions.
type Document struct {
	Name       string  `yaml:"name"`
	Categories []Entry `yaml:"categories"`
}

// PrototypeSource resolves prototype names, e.g. *entity.Catalog.
type PrototypeSource interface {
	Prototype(kind string) (pool.Prototype, bool)
}

// Decode parses a YAML preset document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}
	return &doc, nil
}

// Encode renders doc as YAML.
func Encode(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preset: %w", err)
	}
	return data, nil
}

// LoadFile reads and validates a preset file. The document name defaults to the file name.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Validate checks that names are set and unique, capacities are not negative
// and every entry names a prototype.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Categories))
	for i, e := range d.Categories {
		switch {
		case e.Name == "":
			return fmt.Errorf("%w: entry %d has no name", ErrInvalid, i)
		case e.Capacity < 0:
			return fmt.Errorf("%w: %q has negative capacity %d", ErrInvalid, e.Name, e.Capacity)
		case e.Prototype == "":
			return fmt.Errorf("%w: %q has no prototype", ErrInvalid, e.Name)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: %q defined twice", ErrInvalid, e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	return nil
}

// Resolve turns doc into a pool preset, looking up prototypes in src.
func Resolve(doc *Document, src PrototypeSource) (*pool.Preset, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	defs, err := Definitions(doc.Categories, src)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", doc.Name, err)
	}

	return &pool.Preset{Name: doc.Name, Definitions: defs}, nil
}

// Definitions resolves entries into pool definitions.
func Definitions(entries []Entry, src PrototypeSource) ([]pool.Definition, error) {
	defs := make([]pool.Definition, 0, len(entries))
	for _, e := range entries {
		proto, ok := src.Prototype(e.Prototype)
		if !ok {
			return nil, fmt.Errorf("%q: %w %q", e.Name, ErrUnknownPrototype, e.Prototype)
		}
		defs = append(defs, pool.Definition{Name: e.Name, Capacity: e.Capacity, Prototype: proto})
	}

	return defs, nil
}
