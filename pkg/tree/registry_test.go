package tree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIdentities(t *testing.T) {
	reg := NewRegistry()
	root, err := reg.NewRoot("root")
	require.NoError(t, err)
	a, err := reg.NewContainer("a", root)
	require.NoError(t, err)
	b, err := reg.NewLeaf("b", a)
	require.NoError(t, err)

	assert.Equal(t, 0, root.ID())
	assert.Equal(t, 1, a.ID())
	assert.Equal(t, 2, b.ID())
	assert.Equal(t, 3, reg.Count())

	for _, e := range reg.All() {
		got, ok := reg.LookupByID(e.ID())
		require.True(t, ok)
		assert.Same(t, e.base(), got.base())
	}

	_, ok := reg.LookupByID(3)
	assert.False(t, ok)
	_, ok = reg.LookupByID(-1)
	assert.False(t, ok)
}

func TestRegistryIdentitiesSurviveRemoval(t *testing.T) {
	reg, tr := exampleTree(t)
	env := mustGet(t, tr, "base_dir/env")
	id := env.ID()

	require.NoError(t, tr.Root().Remove(env))

	got, ok := reg.LookupByID(id)
	require.True(t, ok)
	assert.Same(t, env.base(), got.base())

	next, err := reg.NewLeaf("env2", nil)
	require.NoError(t, err)
	assert.Equal(t, reg.Count()-1, next.ID())
	assert.NotEqual(t, id, next.ID())
}

func TestRegistryLookupByName(t *testing.T) {
	reg := NewRegistry()
	root, err := reg.NewRoot("root")
	require.NoError(t, err)
	first, err := reg.NewLeaf("dup", root)
	require.NoError(t, err)
	other, err := reg.NewContainer("other", root)
	require.NoError(t, err)
	_, err = reg.NewLeaf("dup", other)
	require.NoError(t, err)

	got, ok := reg.LookupByName("dup")
	require.True(t, ok)
	assert.Equal(t, first.ID(), got.ID())

	_, ok = reg.LookupByName("nope")
	assert.False(t, ok)
}

func TestRegistryRejectedCreateKeepsCount(t *testing.T) {
	reg := NewRegistry()
	root, err := reg.NewRoot("root")
	require.NoError(t, err)
	_, err = reg.NewLeaf("a", root)
	require.NoError(t, err)

	_, err = reg.NewLeaf("a", root)
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = reg.NewContainer("", root)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = reg.NewRoot("")
	assert.ErrorIs(t, err, ErrEmptyName)

	assert.Equal(t, 2, reg.Count())
	assert.Equal(t, 1, root.Count(false))
}

func TestRegistryConcurrentCreate(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := reg.NewLeaf("f", nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, reg.Count())
	seen := make(map[int]bool)
	for _, e := range reg.All() {
		assert.False(t, seen[e.ID()], "id %d assigned twice", e.ID())
		seen[e.ID()] = true
	}
}

func TestDescribe(t *testing.T) {
	_, tr := exampleTree(t)
	env := mustGet(t, tr, "base_dir/env")
	assert.Equal(t, "Leaf: (ID=1) env (Level: 1, Position: 1, Is Last: false)", env.String())

	cfg := mustGet(t, tr, "base_dir/config/global_config")
	assert.Equal(t, "Container: (ID=9) global_config (Level: 2, Position: 1, Is Last: true)", cfg.String())
	assert.Equal(t, KindContainer, cfg.Kind())
	assert.Equal(t, KindLeaf, env.Kind())
}
