package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "k", []byte("v1")))
	require.NoError(t, m.Put(ctx, "k", []byte("v2")))

	value, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("original")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'X'

	value, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), value)
}
