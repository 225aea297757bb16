package tree

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a lookup or structural change
// matches exactly one of these through errors.Is.
var (
	// ErrNotFound indicates that a lookup by path, identity or coordinates missed.
	ErrNotFound = errors.New("element not found")

	// ErrInvalidOperation indicates a structural change that can never succeed,
	// such as attaching a container below itself.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrStructuralPrecondition indicates a change that conflicts with the
	// current shape of the tree, such as appending a child twice.
	ErrStructuralPrecondition = errors.New("structural precondition failed")
)

// Invalid operations
var (
	// ErrNilElement indicates that a nil element or container was passed.
	ErrNilElement = fmt.Errorf("%w: nil element", ErrInvalidOperation)

	// ErrSelfAttach indicates an attempt to attach an element to itself.
	ErrSelfAttach = fmt.Errorf("%w: element cannot be attached to itself", ErrInvalidOperation)

	// ErrCycle indicates that the target container is a descendant of the element.
	ErrCycle = fmt.Errorf("%w: target is a descendant of the element", ErrInvalidOperation)

	// ErrNotAChild indicates that the element is not a direct child of the container.
	ErrNotAChild = fmt.Errorf("%w: not a child", ErrInvalidOperation)

	// ErrNotRoot indicates that a container with a parent was used where a root is required.
	ErrNotRoot = fmt.Errorf("%w: container has a parent", ErrInvalidOperation)

	// ErrEmptyName indicates an element created without a name.
	ErrEmptyName = fmt.Errorf("%w: empty name", ErrInvalidOperation)
)

// Structural preconditions
var (
	// ErrAlreadyChild indicates that the element is already a direct child of the container.
	ErrAlreadyChild = fmt.Errorf("%w: already a child", ErrStructuralPrecondition)

	// ErrAlreadyAttached indicates that the element belongs to another container; use Move.
	ErrAlreadyAttached = fmt.Errorf("%w: already attached to another container", ErrStructuralPrecondition)

	// ErrDuplicateName indicates that a sibling with the same name exists.
	ErrDuplicateName = fmt.Errorf("%w: duplicate name among siblings", ErrStructuralPrecondition)
)
