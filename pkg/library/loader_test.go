package library

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

func TestOpenMissingLibraryIsRuntime15(t *testing.T) {
	l := New()
	l.SetBaseDir(t.TempDir())
	_, err := l.Open("nope")
	require.Error(t, err)
	le, ok := err.(*loadError)
	require.True(t, ok)
	assert.Equal(t, diag.Runtime15, le.Code())
	assert.Contains(t, le.Error(), `"nope" not found`)
}

func TestResolvePathUsesPlatformExtensionAndUnderscoreDir(t *testing.T) {
	l := New()
	l.SetBaseDir("/libs")
	path := l.resolvePath("math")

	var want string
	switch runtime.GOOS {
	case "darwin":
		want = "/libs/math_/math.dylib"
	case "windows":
		want = "/libs/math_/math.dll"
	default:
		want = "/libs/math_/math.so"
	}
	assert.Equal(t, want, path)
}

func TestResolveWithNonPluginHandleIsRuntime16(t *testing.T) {
	lib := value.NewLibrary("fake", "not-a-plugin")
	_, err := Resolve(lib, "anything")
	require.Error(t, err)
	le, ok := err.(*loadError)
	require.True(t, ok)
	assert.Equal(t, diag.Runtime16, le.Code())
}

func TestNativeOfConvertsPrimitives(t *testing.T) {
	assert.Equal(t, int64(5), nativeOf(value.Int(5)))
	assert.Equal(t, 1.5, nativeOf(value.Float(1.5)))
	assert.Equal(t, true, nativeOf(value.Bool(true)))
	assert.Equal(t, "hi", nativeOf(value.String("hi")))
}

func TestValueOfConvertsNativeReturns(t *testing.T) {
	v, err := valueOf(int64(7))
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), v)

	v, err = valueOf(2.5)
	require.NoError(t, err)
	assert.Equal(t, value.Float(2.5), v)

	v, err = valueOf(nil)
	require.NoError(t, err)
	assert.Equal(t, value.Unit{}, v)

	_, err = valueOf(struct{}{})
	require.Error(t, err)
	le, ok := err.(*loadError)
	require.True(t, ok)
	assert.Equal(t, diag.Runtime17, le.Code())
}
