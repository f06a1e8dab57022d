package pool

import "fmt"

// slot holds one pre-allocated instance and whether it is handed out.
type slot struct {
	instance Instance
	acquired bool
}

// Category owns the pre-allocated instances of one named kind.
type Category struct {
	name      string
	capacity  int
	prototype Prototype
	group     *Group
	slots     []*slot
}

// NewCategory returns an uninitialized category.
func NewCategory(name string, capacity int, prototype Prototype) (*Category, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("category %q: %w", name, ErrInvalidCapacity)
	}
	if prototype == nil && capacity > 0 {
		return nil, fmt.Errorf("category %q: %w", name, ErrNilPrototype)
	}

	return &Category{name: name, capacity: capacity, prototype: prototype}, nil
}

// Initialize creates capacity deactivated instances from the prototype.
// All instantiation cost is paid here. Calling it on an initialized category does nothing.
func (c *Category) Initialize() error {
	if c.slots != nil {
		return nil
	}

	slots := make([]*slot, 0, c.capacity)
	for i := 0; i < c.capacity; i++ {
		inst, err := c.prototype.Instantiate(c.name, Placement{})
		if err != nil {
			for _, s := range slots {
				s.instance.Destroy()
			}
			return fmt.Errorf("category %q: instantiate slot %d: %w", c.name, i, err)
		}
		inst.SetActive(false)
		inst.SetParent(c.group)
		slots = append(slots, &slot{instance: inst})
	}
	c.slots = slots

	return nil
}

// Shutdown destroys every pooled instance. Safe to call more than once.
func (c *Category) Shutdown() {
	for _, s := range c.slots {
		s.instance.Destroy()
	}
	c.slots = nil
}

// Acquire hands out the first free instance in slot order, or nil when exhausted.
func (c *Category) Acquire(p Placement) Instance {
	for _, s := range c.slots {
		if s.acquired {
			continue
		}
		inst := s.instance
		inst.SetActive(true)
		inst.SetPlacement(p)
		inst.OnAcquire()
		s.acquired = true

		return inst
	}

	return nil
}

// Release returns inst to its slot. It reports false when inst is not one of
// this category's pooled instances.
func (c *Category) Release(inst Instance, p Placement) bool {
	for _, s := range c.slots {
		if s.instance != inst {
			continue
		}
		if !s.acquired {
			return true
		}
		inst.SetActive(false)
		inst.SetPlacement(p)
		inst.OnRelease()
		inst.SetParent(c.group)
		s.acquired = false

		return true
	}

	return false
}

// Name returns the category name.
func (c *Category) Name() string { return c.name }

// Capacity returns the number of pre-allocated instances.
func (c *Category) Capacity() int { return c.capacity }

// Prototype returns the template instances are created from.
func (c *Category) Prototype() Prototype { return c.prototype }

// Group returns the grouping handle pooled instances are parented under.
func (c *Category) Group() *Group { return c.group }

// Initialized reports whether the pooled instances exist.
func (c *Category) Initialized() bool { return c.slots != nil }

// Free returns the number of instances available for Acquire.
func (c *Category) Free() int {
	n := 0
	for _, s := range c.slots {
		if !s.acquired {
			n++
		}
	}
	return n
}

// InUse returns the number of handed-out pooled instances.
func (c *Category) InUse() int {
	return len(c.slots) - c.Free()
}

// Len returns the number of slots, zero while not initialized.
func (c *Category) Len() int { return len(c.slots) }
