package tree

import "fmt"

// Spec describes one element to create below the root. Depth 0 is a direct
// child of the root.
type Spec struct {
	Depth     int
	Name      string
	Container bool
}

// BuildError reports the spec that stopped Build.
type BuildError struct {
	Index int // 0-based index into the specs
	Spec  Spec
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("entry %d %q: %v", e.Index+1, e.Spec.Name, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Build creates a tree named rootName from specs given in document order.
//
// A stack holds the containers on the path to the current line: for each spec
// the stack is cut to depth+1 entries and the new element is appended under
// its top. Containers are pushed so that deeper specs can nest inside them.
func Build(reg *Registry, rootName string, specs []Spec) (*Tree, error) {
	root, err := reg.NewRoot(rootName)
	if err != nil {
		return nil, err
	}

	stack := []*Container{root}
	for i, s := range specs {
		if s.Depth < 0 || s.Depth >= len(stack) {
			err := fmt.Errorf("depth %d without an enclosing container at depth %d: %w",
				s.Depth, s.Depth-1, ErrInvalidOperation)
			return nil, &BuildError{Index: i, Spec: s, Err: err}
		}
		stack = stack[:s.Depth+1]
		parent := stack[len(stack)-1]

		if !s.Container {
			if _, err := reg.NewLeaf(s.Name, parent); err != nil {
				return nil, &BuildError{Index: i, Spec: s, Err: err}
			}
			continue
		}
		c, err := reg.NewContainer(s.Name, parent)
		if err != nil {
			return nil, &BuildError{Index: i, Spec: s, Err: err}
		}
		stack = append(stack, c)
	}

	return New(root)
}
