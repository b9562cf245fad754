package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentLookupWalksParentChain(t *testing.T) {
	root := NewEnvironment()
	root.Bind("x", Resolved(Int(1)))

	child := root.Extend()
	child.Bind("y", Resolved(Int(2)))

	th, ok := child.Lookup("x")
	require.True(t, ok)
	v, _ := th.Force()
	assert.Equal(t, Int(1), v)

	_, ok = root.Lookup("y")
	assert.False(t, ok, "parent scopes must not see child bindings")
}

func TestEnvironmentChildShadowsParent(t *testing.T) {
	root := NewEnvironment()
	root.Bind("x", Resolved(Int(1)))

	child := root.Extend()
	child.Bind("x", Resolved(Int(2)))

	th, ok := child.Lookup("x")
	require.True(t, ok)
	v, _ := th.Force()
	assert.Equal(t, Int(2), v)

	th, ok = root.Lookup("x")
	require.True(t, ok)
	v, _ = th.Force()
	assert.Equal(t, Int(1), v, "shadowing in a child scope must not mutate the parent's binding")
}

func TestEnvironmentNamesPreservesInsertionOrder(t *testing.T) {
	env := NewEnvironment()
	env.Bind("c", Resolved(Int(3)))
	env.Bind("a", Resolved(Int(1)))
	env.Bind("b", Resolved(Int(2)))

	assert.Equal(t, []string{"c", "a", "b"}, env.Names())
}

func TestEnvironmentNamesExcludesParentScope(t *testing.T) {
	root := NewEnvironment()
	root.Bind("x", Resolved(Int(1)))
	child := root.Extend()
	child.Bind("y", Resolved(Int(2)))

	assert.Equal(t, []string{"y"}, child.Names())
}

func TestEnvironmentRebindSameNameKeepsOriginalPosition(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", Resolved(Int(1)))
	env.Bind("y", Resolved(Int(2)))
	env.Bind("x", Resolved(Int(99)))

	assert.Equal(t, []string{"x", "y"}, env.Names())
	th, _ := env.Lookup("x")
	v, _ := th.Force()
	assert.Equal(t, Int(99), v)
}
