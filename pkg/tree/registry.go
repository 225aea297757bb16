package tree

import (
	"fmt"
	"slices"
	"sync"
)

// Registry assigns identities to elements and resolves them again.
//
// A Registry is append-only: identities are 0-based registration indexes and
// are never reused, even after an element has been removed from its tree.
// One Registry is created at process start and shared by every tree built
// during the run.
type Registry struct {
	mu    sync.RWMutex
	nodes []Element
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewRoot creates a registered container that is the root of a new tree.
func (r *Registry) NewRoot(name string) (*Container, error) {
	if name == "" {
		return nil, fmt.Errorf("create root: %w", ErrEmptyName)
	}
	c := &Container{node: newNode(name)}
	c.root = true
	r.register(c)
	recompute(c)
	return c, nil
}

// NewContainer creates a registered container. With a nil parent the
// container starts unattached; otherwise it is appended to parent.
func (r *Registry) NewContainer(name string, parent *Container) (*Container, error) {
	c := &Container{node: newNode(name)}
	if err := r.create(c, parent); err != nil {
		return nil, err
	}
	return c, nil
}

// NewLeaf creates a registered leaf. With a nil parent the leaf starts
// unattached; otherwise it is appended to parent.
func (r *Registry) NewLeaf(name string, parent *Container) (*Leaf, error) {
	l := &Leaf{node: newNode(name)}
	if err := r.create(l, parent); err != nil {
		return nil, err
	}
	return l, nil
}

// create validates the attachment before registering so that a rejected
// element never consumes an identity.
func (r *Registry) create(e Element, parent *Container) error {
	if e.Name() == "" {
		return fmt.Errorf("create element: %w", ErrEmptyName)
	}
	if parent != nil {
		if err := parent.checkAttach(e, false); err != nil {
			return fmt.Errorf("create %q in %q: %w", e.Name(), parent.Name(), err)
		}
	}
	r.register(e)
	if parent != nil {
		parent.attach(e)
	}
	return nil
}

func (r *Registry) register(e Element) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := len(r.nodes)
	r.nodes = append(r.nodes, e)
	e.base().id = id
	return id
}

// LookupByName returns the first registered element named name. Names are
// only unique among siblings, so this is a debugging aid rather than a key.
func (r *Registry) LookupByName(name string) (Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.nodes {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// LookupByID returns the element registered under id.
func (r *Registry) LookupByID(id int) (Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.nodes) {
		return nil, false
	}
	return r.nodes[id], true
}

// Count returns the number of registered elements.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// IsEmpty reports whether nothing has been registered yet.
func (r *Registry) IsEmpty() bool {
	return r.Count() == 0
}

// All returns every registered element in registration order.
func (r *Registry) All() []Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.nodes)
}
