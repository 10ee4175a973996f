package keyopts

import (
	"testing"

	"github.com/mr-shifu/accumulator-lib/pkg/common/keyopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportKeys(t *testing.T) {
	kr := NewInMemoryKeyOpts()

	keyID := "1"
	keys := []keyopts.KeyData{
		{SKI: "ski1", Scope: "state"},
		{SKI: "ski2", Scope: "af37c1"},
	}
	for _, key := range keys {
		opts, err := NewOptions().Set("id", keyID, "scope", key.Scope)
		require.NoError(t, err)
		err = kr.Import(key.SKI, opts)
		assert.NoError(t, err, "Import should not return an error")
	}

	opts, err := NewOptions().Set("id", keyID)
	require.NoError(t, err)
	ks, err := kr.GetAll(opts)
	assert.NoError(t, err, "GetAll should not return an error")
	assert.Len(t, ks, len(keys))
}

func TestGetRoundTrip(t *testing.T) {
	kr := NewInMemoryKeyOpts()

	opts, err := NewOptions().Set("id", "1", "scope", "state")
	require.NoError(t, err)
	require.NoError(t, kr.Import("ski", opts))

	kd, err := kr.Get(opts)
	require.NoError(t, err)
	assert.Equal(t, "ski", kd.SKI)
	assert.Equal(t, "state", kd.Scope)

	other, err := NewOptions().Set("id", "1", "scope", "missing")
	require.NoError(t, err)
	_, err = kr.Get(other)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDelete(t *testing.T) {
	kr := NewInMemoryKeyOpts()

	opts, err := NewOptions().Set("id", "1", "scope", "state")
	require.NoError(t, err)
	require.NoError(t, kr.Import("ski", opts))
	require.NoError(t, kr.Delete(opts))

	_, err = kr.Get(opts)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteAll(t *testing.T) {
	kr := NewInMemoryKeyOpts()

	for _, scope := range []string{"state", "a1", "b2"} {
		opts, err := NewOptions().Set("id", "1", "scope", scope)
		require.NoError(t, err)
		require.NoError(t, kr.Import("ski-"+scope, opts))
	}

	idOnly, err := NewOptions().Set("id", "1")
	require.NoError(t, err)
	require.NoError(t, kr.DeleteAll(idOnly))

	ks, err := kr.GetAll(idOnly)
	assert.NoError(t, err)
	assert.Empty(t, ks)
}

func TestOptionsRejects(t *testing.T) {
	_, err := NewOptions().Set("id")
	assert.Error(t, err, "odd key/values must be rejected")

	_, err = NewOptions().Set(42, "x")
	assert.Error(t, err, "non-string keys must be rejected")

	kr := NewInMemoryKeyOpts()
	opts, err := NewOptions().Set("scope", "state")
	require.NoError(t, err)
	assert.ErrorIs(t, kr.Import("ski", opts), ErrInvalidParamsKeyID)

	opts, err = NewOptions().Set("id", "1")
	require.NoError(t, err)
	assert.ErrorIs(t, kr.Import("ski", opts), ErrInvalidParamsScope)
}
