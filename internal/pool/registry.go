package pool

import (
	"fmt"
	"sort"
)

// Registry owns every category of a manager, in name order after bulk mutation.
type Registry struct {
	root       *Group
	categories []*Category
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetRoot sets the group category groups are created under and moves existing ones there.
func (r *Registry) SetRoot(g *Group) {
	r.root = g
	for _, c := range r.categories {
		if c.group != nil {
			c.group.parent = g
		}
	}
}

// Root returns the group category groups are created under.
func (r *Registry) Root() *Group {
	return r.root
}

// Add creates a category and initializes it immediately. Instantiation happens
// synchronously, so this is meant for load time rather than the hot path.
func (r *Registry) Add(prototype Prototype, name string, capacity int) (*Category, error) {
	if r.Find(name) != nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrDuplicateCategory)
	}
	c, err := NewCategory(name, capacity, prototype)
	if err != nil {
		return nil, err
	}
	c.group = NewGroup(name, r.root)
	if err := c.Initialize(); err != nil {
		c.group.destroy()
		return nil, err
	}
	r.categories = append(r.categories, c)

	return c, nil
}

// Merge appends uninitialized categories for the given definitions.
// Nothing is appended when any definition is invalid or its name is taken.
func (r *Registry) Merge(defs ...Definition) error {
	seen := make(map[string]struct{}, len(defs))
	added := make([]*Category, 0, len(defs))
	for _, d := range defs {
		if _, dup := seen[d.Name]; dup || r.Find(d.Name) != nil {
			return fmt.Errorf("category %q: %w", d.Name, ErrDuplicateCategory)
		}
		seen[d.Name] = struct{}{}

		c, err := NewCategory(d.Name, d.Capacity, d.Prototype)
		if err != nil {
			return err
		}
		added = append(added, c)
	}
	r.categories = append(r.categories, added...)

	return nil
}

// Remove shuts the category down and drops it from the registry.
func (r *Registry) Remove(c *Category) {
	if c == nil {
		return
	}
	c.Shutdown()
	if c.group != nil {
		c.group.destroy()
		c.group = nil
	}
	for i, cc := range r.categories {
		if cc == c {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return
		}
	}
}

// Sort orders categories by name.
func (r *Registry) Sort() {
	sort.SliceStable(r.categories, func(i, j int) bool {
		return r.categories[i].name < r.categories[j].name
	})
}

// Find returns the first category with the given name, or nil.
func (r *Registry) Find(name string) *Category {
	for _, c := range r.categories {
		if c.name == name {
			return c
		}
	}

	return nil
}

// InitializeAll creates a group for every category and initializes it.
func (r *Registry) InitializeAll() error {
	for _, c := range r.categories {
		if c.group == nil || c.group.destroyed {
			c.group = NewGroup(c.name, r.root)
		}
		if err := c.Initialize(); err != nil {
			return err
		}
	}

	return nil
}

// ShutdownAll shuts every category down and destroys its group.
// Categories stay registered and can be initialized again.
func (r *Registry) ShutdownAll() {
	for _, c := range r.categories {
		c.Shutdown()
		if c.group != nil {
			c.group.destroy()
			c.group = nil
		}
	}
}

// Categories returns the categories in their current order.
func (r *Registry) Categories() []*Category {
	out := make([]*Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Len returns the number of categories.
func (r *Registry) Len() int {
	return len(r.categories)
}
