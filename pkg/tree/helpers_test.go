package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// exampleTree builds:
//
//	base_dir
//	├── env
//	├── src/
//	│   └── users/
//	│       ├── user_model.ts
//	│       ├── user_controller.ts
//	│       └── users_utils/
//	│           └── user_initialize.ts
//	├── config/
//	│   └── global_config/
//	│       ├── app_config.json
//	│       └── db_config.json
//	└── tsconfig.json
func exampleTree(t *testing.T) (*Registry, *Tree) {
	t.Helper()
	reg := NewRegistry()
	tr, err := Build(reg, "base_dir", []Spec{
		{Depth: 0, Name: "env"},
		{Depth: 0, Name: "src", Container: true},
		{Depth: 1, Name: "users", Container: true},
		{Depth: 2, Name: "user_model.ts"},
		{Depth: 2, Name: "user_controller.ts"},
		{Depth: 2, Name: "users_utils", Container: true},
		{Depth: 3, Name: "user_initialize.ts"},
		{Depth: 0, Name: "config", Container: true},
		{Depth: 1, Name: "global_config", Container: true},
		{Depth: 2, Name: "app_config.json"},
		{Depth: 2, Name: "db_config.json"},
		{Depth: 0, Name: "tsconfig.json"},
	})
	require.NoError(t, err)
	return reg, tr
}

func mustGet(t *testing.T, tr *Tree, path string) Element {
	t.Helper()
	e, err := tr.GetByPath(path)
	require.NoError(t, err)
	return e
}

func mustContainer(t *testing.T, tr *Tree, path string) *Container {
	t.Helper()
	c, ok := mustGet(t, tr, path).(*Container)
	require.True(t, ok, "%s is not a container", path)
	return c
}

// requireInvariants checks level, position and path of every element
// against its parent.
func requireInvariants(t *testing.T, tr *Tree) {
	t.Helper()
	root := tr.Root()
	require.Nil(t, root.Parent())
	require.Equal(t, 0, root.Level())
	require.Equal(t, 1, root.Position())
	require.Equal(t, root.Name(), root.Path())

	err := tr.Walk(func(e Element, depth int) error {
		require.Equal(t, depth, e.Level(), "level of %s", e.Path())
		p := e.Parent()
		if p == nil {
			return nil
		}
		require.Equal(t, p.Level()+1, e.Level(), "level of %s", e.Path())
		require.Equal(t, p.Path()+"/"+e.Name(), e.Path())
		for i, child := range p.Children() {
			if child == e {
				require.Equal(t, i+1, e.Position(), "position of %s", e.Path())
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func names(elems []Element) []string {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		out = append(out, e.Name())
	}
	return out
}
