package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThunkForceMemoizesResult(t *testing.T) {
	calls := 0
	th := NewThunk(func() (Value, error) {
		calls++
		return Int(42), nil
	})

	v1, err := th.Force()
	require.NoError(t, err)
	v2, err := th.Force()
	require.NoError(t, err)

	assert.Equal(t, Int(42), v1)
	assert.Equal(t, Int(42), v2)
	assert.Equal(t, 1, calls, "the evaluation closure must run at most once")
	assert.Equal(t, Evaluated, th.State())
}

func TestThunkForceMemoizesError(t *testing.T) {
	calls := 0
	sentinel := assert.AnError
	th := NewThunk(func() (Value, error) {
		calls++
		return nil, sentinel
	})

	_, err1 := th.Force()
	_, err2 := th.Force()
	assert.Equal(t, sentinel, err1)
	assert.Equal(t, sentinel, err2)
	assert.Equal(t, 1, calls)
}

func TestThunkForceDetectsSelfReferentialCycle(t *testing.T) {
	var th *Thunk
	th = NewThunk(func() (Value, error) {
		return th.Force()
	})

	_, err := th.Force()
	require.Error(t, err)
	_, ok := err.(*CyclicBindingError)
	assert.True(t, ok)
}

func TestResolvedThunkIsAlreadyEvaluated(t *testing.T) {
	th := Resolved(Bool(true))
	assert.Equal(t, Evaluated, th.State())
	v, err := th.Force()
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}
