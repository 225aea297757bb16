package tree

import "fmt"

// Move re-parents e under to: it is removed from its current parent, if any,
// and appended at the end of to's children. Every precondition is checked
// before the first mutation, so a rejected move changes nothing.
func Move(e Element, to *Container) error {
	if to == nil {
		return fmt.Errorf("move %q: %w", nameOf(e), ErrNilElement)
	}
	if err := to.checkAttach(e, true); err != nil {
		return fmt.Errorf("move %q to %q: %w", nameOf(e), to.Name(), err)
	}

	if from := e.Parent(); from != nil {
		from.detach(from.index(e))
	}
	to.attach(e)
	return nil
}

// Promote turns a parentless container into the root of its own tree. It is a
// no-op for containers that are already roots.
func Promote(c *Container) error {
	if c == nil {
		return fmt.Errorf("promote: %w", ErrNilElement)
	}
	if c.parent != nil {
		return fmt.Errorf("promote %q: %w", c.name, ErrNotRoot)
	}
	if c.root {
		return nil
	}
	c.root = true
	recompute(c)
	return nil
}
