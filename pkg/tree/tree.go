package tree

import (
	"errors"
	"fmt"
	"strings"
)

// SkipChildren can be returned by a WalkFunc to skip the children of the
// current container. It is never returned by Walk.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every element visited by Tree.Walk. depth is the
// distance from the tree's root.
type WalkFunc func(e Element, depth int) error

// Entry is a flattened element for consumers that create the layout on disk.
type Entry struct {
	Path      string // slash-separated, starting with the root name
	Container bool
}

// Presenter renders an element as text. Implemented by the render package.
type Presenter interface {
	Present(e Element) string
}

// Tree is a named, navigable handle over a root container.
type Tree struct {
	root *Container
}

// New wraps root in a Tree. A detached container is promoted to a root; a
// container that still has a parent is rejected.
func New(root *Container) (*Tree, error) {
	if err := Promote(root); err != nil {
		return nil, fmt.Errorf("new tree: %w", err)
	}
	return &Tree{root: root}, nil
}

// Root returns the root container.
func (t *Tree) Root() *Container {
	return t.root
}

// Name returns the root name.
func (t *Tree) Name() string {
	return t.root.Name()
}

// Walk visits every element in pre-order, left to right.
func (t *Tree) Walk(fn WalkFunc) error {
	err := walk(t.root, 0, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(e Element, depth int, fn WalkFunc) error {
	if err := fn(e, depth); err != nil {
		return err
	}
	c, ok := e.(*Container)
	if !ok {
		return nil
	}
	for _, child := range c.children {
		err := walk(child, depth+1, fn)
		if err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
	}
	return nil
}

// Valid reports whether the handle still wraps a root. A root appended to
// another container, or removed from one, leaves its handle invalid until it
// is wrapped again with New.
func (t *Tree) Valid() error {
	if !t.root.IsRoot() {
		return fmt.Errorf("tree %q: %w", t.root.Name(), ErrNotRoot)
	}
	return nil
}

// Collect returns the elements whose level equals level, in document order.
// An invalid handle collects nothing.
func (t *Tree) Collect(level int) []Element {
	var found []Element
	if level < 0 || t.Valid() != nil {
		return found
	}
	_ = t.Walk(func(e Element, _ int) error {
		switch {
		case e.Level() == level:
			found = append(found, e)
			return SkipChildren
		case e.Level() > level:
			return SkipChildren
		}
		return nil
	})
	return found
}

// Levels groups every element by level; row i holds Collect(i). An invalid
// handle has no levels.
func (t *Tree) Levels() [][]Element {
	if t.Valid() != nil {
		return nil
	}
	rows := make([][]Element, t.MaxDepth()+1)
	_ = t.Walk(func(e Element, _ int) error {
		rows[e.Level()] = append(rows[e.Level()], e)
		return nil
	})
	return rows
}

// Entries flattens the tree in pre-order. The root is the first entry.
func (t *Tree) Entries() []Entry {
	var entries []Entry
	var visit func(e Element, prefix string)
	visit = func(e Element, prefix string) {
		p := e.Name()
		if prefix != "" {
			p = prefix + "/" + p
		}
		entries = append(entries, Entry{Path: p, Container: e.IsContainer()})
		if c, ok := e.(*Container); ok {
			for _, child := range c.children {
				visit(child, p)
			}
		}
	}
	visit(t.root, "")
	return entries
}

// MaxDepth returns the level of the deepest element.
func (t *Tree) MaxDepth() int {
	return t.root.MaxDepth()
}

// Count returns the number of elements, root included.
func (t *Tree) Count() int {
	return 1 + t.root.Count(true)
}

// Stats returns the number of containers (root included) and leaves.
func (t *Tree) Stats() (dirs, files int) {
	_ = t.Walk(func(e Element, _ int) error {
		if e.IsContainer() {
			dirs++
		} else {
			files++
		}
		return nil
	})
	return dirs, files
}

// GetByPath resolves a slash-separated path starting with the root name.
// Leading and trailing slashes are ignored.
func (t *Tree) GetByPath(path string) (Element, error) {
	if err := t.Valid(); err != nil {
		return nil, err
	}
	names := splitPath(path)
	if len(names) == 0 || names[0] != t.root.Name() {
		return nil, fmt.Errorf("path %q: %w", path, ErrNotFound)
	}

	var cur Element = t.root
	for _, name := range names[1:] {
		c, ok := cur.(*Container)
		if !ok {
			return nil, fmt.Errorf("path %q: %q is not a container: %w", path, cur.Name(), ErrNotFound)
		}
		next, ok := c.Child(name)
		if !ok {
			return nil, fmt.Errorf("path %q: %w", path, ErrNotFound)
		}
		cur = next
	}
	return cur, nil
}

// GetByID returns the element of this tree carrying the identity id.
func (t *Tree) GetByID(id int) (Element, error) {
	if err := t.Valid(); err != nil {
		return nil, err
	}
	var found Element
	_ = t.Walk(func(e Element, _ int) error {
		if e.ID() == id {
			found = e
			return errStop
		}
		return nil
	})
	if found == nil {
		return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return found, nil
}

// GetByCoordinates returns the element at the 1-based position among the
// elements of the given level.
func (t *Tree) GetByCoordinates(level, position int) (Element, error) {
	if err := t.Valid(); err != nil {
		return nil, err
	}
	for _, e := range t.Collect(level) {
		if e.Position() == position {
			return e, nil
		}
	}
	return nil, fmt.Errorf("level %d position %d: %w", level, position, ErrNotFound)
}

// Render presents the whole tree through p.
func (t *Tree) Render(p Presenter) string {
	return p.Present(t.root)
}

var errStop = errors.New("stop walk")

func splitPath(p string) []string {
	var names []string
	for _, s := range strings.Split(p, "/") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	return names
}
