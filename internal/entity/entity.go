// Package entity provides the concrete pooled object used by the server and
// the catalog of templates entities are built from.
package entity

import (
	"github.com/google/uuid"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// Entity is a poolable object with a unique id.
type Entity struct {
	id        uuid.UUID
	name      string
	kind      string
	active    bool
	placement pool.Placement
	parent    *pool.Group
	acquired  int
	released  int
	destroyed bool
}

// New creates an inactive entity of the given kind, tagged with name.
func New(kind, name string, p pool.Placement) *Entity {
	return &Entity{
		id:        uuid.New(),
		name:      name,
		kind:      kind,
		placement: p,
	}
}

// ID returns the unique id of the entity.
func (e *Entity) ID() uuid.UUID { return e.id }

// Name returns the name tag used to find the entity's pool.
func (e *Entity) Name() string { return e.name }

// Kind returns the template kind the entity was built from.
func (e *Entity) Kind() string { return e.kind }

// Active reports whether the entity is in use.
func (e *Entity) Active() bool { return e.active }

// SetActive switches the entity on or off.
func (e *Entity) SetActive(active bool) { e.active = active }

// Placement returns the current placement.
func (e *Entity) Placement() pool.Placement { return e.placement }

// SetPlacement moves the entity.
func (e *Entity) SetPlacement(p pool.Placement) { e.placement = p }

// SetParent moves the entity under g, nil detaches it.
func (e *Entity) SetParent(g *pool.Group) { e.parent = g }

// Parent returns the group the entity is parented under.
func (e *Entity) Parent() *pool.Group { return e.parent }

// OnAcquire counts hand-outs.
func (e *Entity) OnAcquire() { e.acquired++ }

// OnRelease counts returns.
func (e *Entity) OnRelease() { e.released++ }

// Destroy marks the entity as disposed and detaches it.
func (e *Entity) Destroy() {
	e.destroyed = true
	e.active = false
	e.parent = nil
}

// Destroyed reports whether Destroy was called.
func (e *Entity) Destroyed() bool { return e.destroyed }

// Uses returns how many times the entity was acquired from and released to its pool.
func (e *Entity) Uses() (acquired, released int) {
	return e.acquired, e.released
}
