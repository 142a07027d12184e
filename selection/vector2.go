package selection

import (
	"fmt"

	"github.com/dot5enko/offload-filter/bits"
	"github.com/dot5enko/offload-filter/memory"
)

// MaxRecordCount is the largest batch a two byte vector can address.
const MaxRecordCount = 1 << 16

const indexSize = 2

// Vector2 is an ordered list of uint16 positions into a record batch. Its
// memory comes from the fragment allocator and is replaced on every
// AllocateNew call.
type Vector2 struct {
	alloc memory.Allocator

	buf     []byte
	indices []uint16

	recordCount int
}

func NewVector2(alloc memory.Allocator) *Vector2 {
	return &Vector2{alloc: alloc}
}

// NewVector2FromIndices builds a vector holding exactly idx.
func NewVector2FromIndices(alloc memory.Allocator, idx []uint16) (*Vector2, error) {
	v := NewVector2(alloc)

	if err := v.AllocateNew(len(idx)); err != nil {
		return nil, err
	}

	copy(v.indices, idx)
	v.recordCount = len(idx)

	return v, nil
}

// AllocateNew drops the current buffer and reserves room for size indices.
// The record count is reset to zero.
func (v *Vector2) AllocateNew(size int) error {
	if size < 0 || size > MaxRecordCount {
		return fmt.Errorf("selection vector size %d out of range [0, %d]", size, MaxRecordCount)
	}

	v.Clear()

	if size == 0 {
		return nil
	}

	buf, err := v.alloc.Allocate(size * indexSize)
	if err != nil {
		return err
	}

	v.buf = buf
	v.indices = bits.BytesAsSlice[uint16](buf, size)

	return nil
}

func (v *Vector2) Capacity() int {
	return len(v.indices)
}

func (v *Vector2) SetIndex(pos int, idx uint16) {
	v.indices[pos] = idx
}

func (v *Vector2) GetIndex(pos int) uint16 {
	return v.indices[pos]
}

func (v *Vector2) SetRecordCount(n int) {
	if n > len(v.indices) {
		panic(fmt.Sprintf("record count %d exceeds selection vector capacity %d", n, len(v.indices)))
	}
	v.recordCount = n
}

func (v *Vector2) RecordCount() int {
	return v.recordCount
}

// Indices returns the live part of the vector. The slice aliases the
// vector memory and is valid until the next AllocateNew or Clear.
func (v *Vector2) Indices() []uint16 {
	return v.indices[:v.recordCount]
}

func (v *Vector2) Clear() {
	if v.buf != nil {
		v.alloc.Release(v.buf)
	}

	v.buf = nil
	v.indices = nil
	v.recordCount = 0
}
