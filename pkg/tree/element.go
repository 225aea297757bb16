package tree

import (
	"fmt"
	"slices"
)

// Kind categorizes the two variants of Element.
type Kind string

const (
	KindLeaf      Kind = "leaf"      // a file
	KindContainer Kind = "container" // a directory
)

// NotFound is the position reported for elements that are not part of a tree
// and by position lookups that miss.
const NotFound = -1

// Element is a single node of the hierarchy: either a *Leaf or a *Container.
//
// Level, Position and Path are derived attributes. They are recomputed by the
// owning Container on every structural change and are never set directly.
type Element interface {
	Name() string
	ID() int
	Kind() Kind
	IsContainer() bool

	// Parent returns the owning container, or nil for roots and detached elements.
	Parent() *Container
	Level() int
	Position() int
	Path() string

	IsRoot() bool
	IsAttached() bool
	IsLast() bool

	String() string

	base() *node
}

// node holds the state shared by both variants.
type node struct {
	id       int
	name     string
	parent   *Container // non-owning; ownership flows through Container.children
	root     bool
	level    int
	position int
	path     string
}

func newNode(name string) node {
	return node{
		id:       NotFound,
		name:     name,
		level:    -1,
		position: NotFound,
		path:     name,
	}
}

func (n *node) Name() string       { return n.name }
func (n *node) ID() int            { return n.id }
func (n *node) Parent() *Container { return n.parent }
func (n *node) Level() int         { return n.level }
func (n *node) Position() int      { return n.position }
func (n *node) Path() string       { return n.path }
func (n *node) IsRoot() bool       { return n.parent == nil && n.root }

// IsAttached reports whether the element is reachable from a root.
func (n *node) IsAttached() bool { return n.level >= 0 }

// IsLast reports whether the element is the final child of its parent.
func (n *node) IsLast() bool {
	if n.parent == nil || len(n.parent.children) == 0 {
		return false
	}
	return n.parent.children[len(n.parent.children)-1].base() == n
}

// derive sets level, position and path from the parent, given the 1-based
// index of the element among its siblings.
func (n *node) derive(index int) {
	switch {
	case n.parent == nil && n.root:
		n.level, n.position, n.path = 0, 1, n.name
	case n.parent == nil:
		n.level, n.position, n.path = -1, NotFound, n.name
	case n.parent.level < 0:
		// Inside a detached subtree: keep the path readable, but nothing here
		// has a place in a tree.
		n.level, n.position, n.path = -1, NotFound, n.parent.path+"/"+n.name
	default:
		n.level, n.position, n.path = n.parent.level+1, index, n.parent.path+"/"+n.name
	}
}

// Leaf is an element without children. It represents a file.
type Leaf struct {
	node
}

func (l *Leaf) Kind() Kind        { return KindLeaf }
func (l *Leaf) IsContainer() bool { return false }

func (l *Leaf) String() string {
	return fmt.Sprintf("Leaf: (ID=%d) %s (Level: %d, Position: %d, Is Last: %t)",
		l.id, l.name, l.level, l.position, l.IsLast())
}

func (l *Leaf) base() *node {
	if l == nil {
		return nil
	}
	return &l.node
}

// Container is an element that owns an ordered sequence of children. It
// represents a directory. Insertion order is sibling order.
type Container struct {
	node
	children []Element
}

func (c *Container) Kind() Kind        { return KindContainer }
func (c *Container) IsContainer() bool { return true }

func (c *Container) String() string {
	return fmt.Sprintf("Container: (ID=%d) %s (Level: %d, Position: %d, Is Last: %t)",
		c.id, c.name, c.level, c.position, c.IsLast())
}

func (c *Container) base() *node {
	if c == nil {
		return nil
	}
	return &c.node
}

// Children returns a copy of the child sequence.
func (c *Container) Children() []Element {
	return slices.Clone(c.children)
}

// Child returns the first direct child named name.
func (c *Container) Child(name string) (Element, bool) {
	for _, child := range c.children {
		if child.Name() == name {
			return child, true
		}
	}
	return nil, false
}

// ChildAt returns the child at the zero-based index.
func (c *Container) ChildAt(index int) (Element, bool) {
	if index < 0 || index >= len(c.children) {
		return nil, false
	}
	return c.children[index], true
}

// Last returns the final child.
func (c *Container) Last() (Element, bool) {
	return c.ChildAt(len(c.children) - 1)
}

// Contains reports whether a direct child is named name.
func (c *Container) Contains(name string) bool {
	_, ok := c.Child(name)
	return ok
}

// ContainsElement reports whether e is a direct child, by identity.
func (c *Container) ContainsElement(e Element) bool {
	return c.index(e) >= 0
}

// IsEmpty reports whether the container has no children.
func (c *Container) IsEmpty() bool {
	return len(c.children) == 0
}

// Count returns the number of direct children, or of all descendants when deep is set.
func (c *Container) Count(deep bool) int {
	if !deep {
		return len(c.children)
	}
	count := 0
	for _, child := range c.children {
		count++
		if sub, ok := child.(*Container); ok {
			count += sub.Count(true)
		}
	}
	return count
}

// MaxDepth returns the greatest level distance between c and any of its
// descendants. An empty container has depth 0.
func (c *Container) MaxDepth() int {
	depth := 0
	for _, child := range c.children {
		d := 1
		if sub, ok := child.(*Container); ok {
			d += sub.MaxDepth()
		}
		depth = max(depth, d)
	}
	return depth
}

// PositionOf returns the 1-based position of e among the children, matched
// by identity, or NotFound.
func (c *Container) PositionOf(e Element) int {
	if i := c.index(e); i >= 0 {
		return i + 1
	}
	return NotFound
}

// PositionOfName returns the 1-based position of the first child named
// name, or NotFound.
func (c *Container) PositionOfName(name string) int {
	for i, child := range c.children {
		if child.Name() == name {
			return i + 1
		}
	}
	return NotFound
}

// IsLastChild reports whether e is the final child.
func (c *Container) IsLastChild(e Element) bool {
	i := c.index(e)
	return i >= 0 && i == len(c.children)-1
}

// IsLastName reports whether the first child named name is the final child.
func (c *Container) IsLastName(name string) bool {
	pos := c.PositionOfName(name)
	return pos != NotFound && pos == len(c.children)
}

// Append attaches child at the end of the children and recomputes its
// subtree. A rejected append leaves both elements untouched.
func (c *Container) Append(child Element) error {
	if err := c.checkAttach(child, false); err != nil {
		return fmt.Errorf("append %q to %q: %w", nameOf(child), c.name, err)
	}
	c.attach(child)
	return nil
}

// Remove detaches a direct child. The removed subtree becomes unattached and
// the positions of the following siblings shift down by one.
func (c *Container) Remove(child Element) error {
	i := c.index(child)
	if i < 0 {
		return fmt.Errorf("remove %q from %q: %w", nameOf(child), c.name, ErrNotAChild)
	}
	c.detach(i)
	return nil
}

// checkAttach validates child as a new direct child of c. With reparent set,
// a child owned by another container is accepted (Move detaches it first).
func (c *Container) checkAttach(child Element, reparent bool) error {
	if child == nil || child.base() == nil {
		return ErrNilElement
	}
	b := child.base()
	if b == &c.node {
		return ErrSelfAttach
	}
	if b.parent == c {
		return ErrAlreadyChild
	}
	if b.parent != nil && !reparent {
		return ErrAlreadyAttached
	}
	if sub, ok := child.(*Container); ok && c.hasAncestor(sub) {
		return ErrCycle
	}
	if c.Contains(b.name) {
		return ErrDuplicateName
	}
	return nil
}

// hasAncestor reports whether a is c or one of c's ancestors.
func (c *Container) hasAncestor(a *Container) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur == a {
			return true
		}
	}
	return false
}

func (c *Container) attach(child Element) {
	b := child.base()
	c.children = append(c.children, child)
	b.parent = c
	b.root = false
	recompute(child)
}

func (c *Container) detach(i int) {
	child := c.children[i]
	c.children = slices.Delete(c.children, i, i+1)
	child.base().parent = nil
	recompute(child)
	c.renumber(i)
}

// renumber refreshes the positions of the children from index i onwards.
func (c *Container) renumber(i int) {
	for ; i < len(c.children); i++ {
		c.children[i].base().derive(i + 1)
	}
}

// cascade re-derives every descendant in pre-order, using c as already correct.
func (c *Container) cascade() {
	for i, child := range c.children {
		child.base().derive(i + 1)
		if sub, ok := child.(*Container); ok {
			sub.cascade()
		}
	}
}

func (c *Container) index(e Element) int {
	if e == nil || e.base() == nil {
		return -1
	}
	b := e.base()
	for i, child := range c.children {
		if child.base() == b {
			return i
		}
	}
	return -1
}

// recompute derives level, position and path of e from its current parent and
// propagates the result through e's subtree.
func recompute(e Element) {
	b := e.base()
	pos := NotFound
	if b.parent != nil {
		pos = b.parent.PositionOf(e)
	}
	b.derive(pos)
	if c, ok := e.(*Container); ok {
		c.cascade()
	}
}

func nameOf(e Element) string {
	if e == nil || e.base() == nil {
		return "<nil>"
	}
	return e.Name()
}
