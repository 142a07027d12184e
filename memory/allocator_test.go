package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootAllocatorAccounting(t *testing.T) {
	alloc := NewRootAllocator(1024)

	a, err := alloc.Allocate(512)
	require.NoError(t, err)
	require.Len(t, a, 512)

	b, err := alloc.Allocate(512)
	require.NoError(t, err)

	stats := alloc.Stats()
	require.Equal(t, int64(1024), stats.Allocated)
	require.Equal(t, int64(1024), stats.Peak)
	require.Equal(t, int64(2), stats.Allocations)

	alloc.Release(a)
	alloc.Release(b)

	require.Equal(t, int64(0), alloc.Stats().Allocated)
	require.Equal(t, int64(1024), alloc.Stats().Peak)
}

func TestRootAllocatorLimit(t *testing.T) {
	alloc := NewRootAllocator(100)

	_, err := alloc.Allocate(101)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOutOfMemory))

	stats := alloc.Stats()
	require.Equal(t, int64(0), stats.Allocated)
	require.Equal(t, int64(1), stats.Failures)

	_, err = alloc.Allocate(100)
	require.NoError(t, err)
}

func TestRootAllocatorUnlimited(t *testing.T) {
	alloc := NewRootAllocator(0)

	buf, err := alloc.Allocate(1 << 20)
	require.NoError(t, err)
	require.Len(t, buf, 1<<20)
}
