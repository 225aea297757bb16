package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
		want  error
	}{
		{
			name:  "depth jump",
			specs: []Spec{{Depth: 0, Name: "a", Container: true}, {Depth: 2, Name: "b"}},
			want:  ErrInvalidOperation,
		},
		{
			name:  "child under leaf",
			specs: []Spec{{Depth: 0, Name: "a"}, {Depth: 1, Name: "b"}},
			want:  ErrInvalidOperation,
		},
		{
			name:  "negative depth",
			specs: []Spec{{Depth: -1, Name: "a"}},
			want:  ErrInvalidOperation,
		},
		{
			name:  "duplicate sibling",
			specs: []Spec{{Depth: 0, Name: "a"}, {Depth: 0, Name: "a", Container: true}},
			want:  ErrDuplicateName,
		},
		{
			name:  "empty name",
			specs: []Spec{{Depth: 0, Name: ""}},
			want:  ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(NewRegistry(), "root", tt.specs)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildEmptyRoot(t *testing.T) {
	tr, err := Build(NewRegistry(), "only", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Count())
	assert.True(t, tr.Root().IsEmpty())
	assert.True(t, tr.Root().IsRoot())

	_, err = Build(NewRegistry(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestBuildSharedRegistry(t *testing.T) {
	reg := NewRegistry()
	first, err := Build(reg, "one", []Spec{{Depth: 0, Name: "a"}})
	require.NoError(t, err)
	second, err := Build(reg, "two", []Spec{{Depth: 0, Name: "a"}})
	require.NoError(t, err)

	assert.Equal(t, 4, reg.Count())
	a1 := mustGet(t, first, "one/a")
	a2 := mustGet(t, second, "two/a")
	assert.NotEqual(t, a1.ID(), a2.ID())

	_, err = first.GetByID(a2.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}
