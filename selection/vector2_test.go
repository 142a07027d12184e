package selection

import (
	"testing"

	"github.com/dot5enko/offload-filter/memory"
	"github.com/stretchr/testify/require"
)

func TestAllocateNewResetsState(t *testing.T) {
	alloc := memory.NewRootAllocator(0)
	sv := NewVector2(alloc)

	require.NoError(t, sv.AllocateNew(4))
	require.Equal(t, 4, sv.Capacity())

	sv.SetIndex(0, 3)
	sv.SetIndex(1, 9)
	sv.SetRecordCount(2)
	require.Equal(t, []uint16{3, 9}, sv.Indices())

	require.NoError(t, sv.AllocateNew(2))
	require.Equal(t, 0, sv.RecordCount())
	require.Equal(t, 2, sv.Capacity())

	// only the latest buffer stays accounted
	require.Equal(t, int64(4), alloc.Stats().Allocated)

	sv.Clear()
	require.Equal(t, int64(0), alloc.Stats().Allocated)
}

func TestAllocateNewRejectsOversize(t *testing.T) {
	sv := NewVector2(memory.NewRootAllocator(0))

	require.Error(t, sv.AllocateNew(MaxRecordCount+1))
	require.NoError(t, sv.AllocateNew(MaxRecordCount))
}

func TestAllocateNewHonoursBudget(t *testing.T) {
	sv := NewVector2(memory.NewRootAllocator(10))

	require.NoError(t, sv.AllocateNew(5))
	// the previous buffer is released before the new one is reserved
	require.NoError(t, sv.AllocateNew(5))
	require.ErrorIs(t, sv.AllocateNew(6), memory.ErrOutOfMemory)
}

func TestFromIndices(t *testing.T) {
	sv, err := NewVector2FromIndices(memory.NewRootAllocator(0), []uint16{2, 5, 7, 9})
	require.NoError(t, err)

	require.Equal(t, 4, sv.RecordCount())
	require.Equal(t, uint16(7), sv.GetIndex(2))
}
