package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireParam_Idempotent(t *testing.T) {
	params := Params{"scope": {"profile"}}

	v1, err1 := requireParam(params, "scope")
	v2, err2 := requireParam(params, "scope")

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
}

func TestRequireParam_AbsentFails(t *testing.T) {
	_, err := requireParam(Params{}, "client_id")
	require.Error(t, err)
}

func TestRequireParam_MultiValuedFails(t *testing.T) {
	_, err := requireParam(Params{"client_id": {"a", "b"}}, "client_id")
	require.Error(t, err)
}

func TestRequireParam_EmptyValueFails(t *testing.T) {
	_, err := requireParam(Params{"client_id": {""}}, "client_id")
	require.Error(t, err)
}

func TestMaybeParam_AbsentReturnsFalse(t *testing.T) {
	v, present, err := maybeParam(Params{}, "state")
	require.NoError(t, err)
	assert.False(t, present)
	assert.Empty(t, v)
}

func TestMaybeParam_MultiValuedFails(t *testing.T) {
	_, _, err := maybeParam(Params{"state": {"a", "b"}}, "state")
	require.Error(t, err)
}

func TestMaybeParam_SingleValueReturned(t *testing.T) {
	v, present, err := maybeParam(Params{"state": {"xyz"}}, "state")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "xyz", v)
}
