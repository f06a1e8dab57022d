package pool

import (
	"errors"
	"fmt"
)

type testObject struct {
	name      string
	active    bool
	placement Placement
	parent    *Group
	acquires  int
	releases  int
	destroyed bool
}

func (o *testObject) Name() string             { return o.name }
func (o *testObject) SetActive(active bool)    { o.active = active }
func (o *testObject) SetPlacement(p Placement) { o.placement = p }
func (o *testObject) SetParent(g *Group)       { o.parent = g }
func (o *testObject) Parent() *Group           { return o.parent }
func (o *testObject) OnAcquire()               { o.acquires++ }
func (o *testObject) OnRelease()               { o.releases++ }
func (o *testObject) Destroy()                 { o.destroyed = true }

// countingPrototype records every instance it creates.
type countingPrototype struct {
	created []*testObject
	failAt  int // fail the n-th instantiation (1-based), 0 never fails
}

func (p *countingPrototype) Instantiate(name string, pl Placement) (Instance, error) {
	if p.failAt > 0 && len(p.created)+1 == p.failAt {
		return nil, errors.New("prototype broken")
	}
	o := &testObject{name: name, placement: pl}
	p.created = append(p.created, o)
	return o, nil
}

type mapLoader map[string]bool

func (l mapLoader) Load(name string, p Placement) (Instance, error) {
	if !l[name] {
		return nil, fmt.Errorf("resource %q not found", name)
	}
	return &testObject{name: name, placement: p, active: true}, nil
}

type recordingObserver struct {
	acquired  []string
	exhausted []string
	released  []string
}

func (r *recordingObserver) Acquired(category string, src Source) {
	r.acquired = append(r.acquired, category+"/"+src.String())
}

func (r *recordingObserver) Exhausted(category string) {
	r.exhausted = append(r.exhausted, category)
}

func (r *recordingObserver) Released(category string, o Outcome) {
	r.released = append(r.released, category+"/"+o.String())
}
