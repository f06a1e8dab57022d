package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// ErrResourceNotFound is returned when a catalog has no template with the requested name.
var ErrResourceNotFound = errors.New("resource not found")

// Template builds entities of one kind.
type Template struct {
	Kind string
}

// Instantiate implements pool.Prototype.
func (t Template) Instantiate(name string, p pool.Placement) (pool.Instance, error) {
	return New(t.Kind, name, p), nil
}

// Catalog holds the templates available to a process by name. It is both the
// source of category prototypes and the loader for names that have no pool.
type Catalog struct {
	templates map[string]Template
}

// NewCatalog creates a catalog with one template per kind.
func NewCatalog(kinds ...string) *Catalog {
	c := &Catalog{templates: make(map[string]Template, len(kinds))}
	for _, k := range kinds {
		c.Register(Template{Kind: k})
	}
	return c
}

// Register adds or replaces a template.
func (c *Catalog) Register(t Template) {
	c.templates[t.Kind] = t
}

// Prototype returns the template registered under kind.
func (c *Catalog) Prototype(kind string) (pool.Prototype, bool) {
	t, ok := c.templates[kind]
	if !ok {
		return nil, false
	}
	return t, true
}

// Load implements pool.Loader: it builds a fresh entity from the template named name.
func (c *Catalog) Load(name string, p pool.Placement) (pool.Instance, error) {
	t, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", name, ErrResourceNotFound)
	}
	return t.Instantiate(name, p)
}

// Kinds returns the registered template kinds in order.
func (c *Catalog) Kinds() []string {
	kinds := make([]string, 0, len(c.templates))
	for k := range c.templates {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
