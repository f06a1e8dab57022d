// Package pool implements named object pools with pre-allocated slots,
// fallback instantiation policy and deferred releases.
package pool

// Placement is the position and orientation applied to an instance when it is
// acquired or returned to its pool.
type Placement struct {
	Position [3]float64
	Rotation [4]float64 // quaternion x, y, z, w
}

// IsZero reports whether no placement was given.
func (p Placement) IsZero() bool {
	return p == Placement{}
}

// Instance is an object that can live in a pool.
// Implementations must be comparable by identity (pointer types).
type Instance interface {
	// Name returns the logical name tag used to find the owning category on release.
	Name() string
	SetActive(active bool)
	SetPlacement(p Placement)
	// SetParent moves the instance under the given group, nil detaches it.
	SetParent(g *Group)
	Parent() *Group

	// OnAcquire is called every time the instance is handed out by its pool.
	OnAcquire()
	// OnRelease is called every time the instance is returned to its pool.
	OnRelease()

	// Destroy disposes of the instance for good.
	Destroy()
}

// Prototype creates new instances of one kind.
type Prototype interface {
	Instantiate(name string, p Placement) (Instance, error)
}

// PrototypeFunc adapts an ordinary function to the Prototype interface.
type PrototypeFunc func(name string, p Placement) (Instance, error)

// Instantiate calls f(name, p).
func (f PrototypeFunc) Instantiate(name string, p Placement) (Instance, error) {
	return f(name, p)
}

// Loader loads instances that have no pool category, addressed by name.
type Loader interface {
	Load(name string, p Placement) (Instance, error)
}

// Group is a grouping handle pooled instances are parented under.
type Group struct {
	name      string
	parent    *Group
	destroyed bool
}

// NewGroup creates a group under parent. parent may be nil.
func NewGroup(name string, parent *Group) *Group {
	return &Group{name: name, parent: parent}
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Parent returns the enclosing group or nil.
func (g *Group) Parent() *Group {
	return g.parent
}

// Destroyed reports whether the group was torn down with its category.
func (g *Group) Destroyed() bool {
	return g.destroyed
}

func (g *Group) destroy() {
	g.destroyed = true
	g.parent = nil
}

// Definition describes one category: the shareable preset triple.
type Definition struct {
	Name      string
	Capacity  int
	Prototype Prototype
}
