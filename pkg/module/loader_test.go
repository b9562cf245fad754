package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

func constEval(calls *int) Eval {
	return func(src, path string) (*value.Value, error) {
		if calls != nil {
			*calls++
		}
		var v value.Value = &value.Module{}
		return &v, nil
	}
}

func TestLoadModuleNotFound(t *testing.T) {
	l := New(constEval(nil))
	_, err := l.Load("does.not.exist")
	require.Error(t, err)
	me, ok := err.(*moduleError)
	require.True(t, ok)
	assert.Equal(t, diag.Runtime13, me.Code())
	assert.Contains(t, me.Error(), `"does.not.exist" wasn't found`)
}

func TestLoadCachesByResolvedPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.krait"), []byte("m\n"), 0o644))
	t.Setenv("KRAIT_PATH", dir)

	calls := 0
	l := New(constEval(&calls))

	m1, err := l.Load("m")
	require.NoError(t, err)
	m2, err := l.Load("m")
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.Equal(t, 1, calls)
}

func TestLoadDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.krait"), []byte("a\n"), 0o644))
	t.Setenv("KRAIT_PATH", dir)

	var l *Loader
	l = New(func(src, path string) (*value.Value, error) {
		m, err := l.Load("a")
		if err != nil {
			return nil, err
		}
		var v value.Value = m
		return &v, nil
	})

	_, err := l.Load("a")
	require.Error(t, err)
	me, ok := err.(*moduleError)
	require.True(t, ok)
	assert.Equal(t, diag.Runtime13, me.Code())
	assert.Contains(t, me.Error(), "Encountered an import cycle")
	assert.Contains(t, me.Error(), "↳")
}

func TestResolveDottedNameJoinsSegments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "foo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo", "bar.krait"), []byte("1\n"), 0o644))
	t.Setenv("KRAIT_PATH", dir)

	l := New(constEval(nil))
	path, err := l.Resolve("foo.bar")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "bar.krait", filepath.Base(path))
}

func TestResolveNotFoundError(t *testing.T) {
	l := New(constEval(nil))
	_, err := l.Resolve("nope")
	require.Error(t, err)
	var nfe *notFoundError
	require.ErrorAs(t, err, &nfe)
}
