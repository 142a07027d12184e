package bits

import (
	"fmt"
	"unsafe"
)

type FixedWidth interface {
	~uint64 | ~uint32 | ~uint16 | ~uint8 | ~int64 | ~int32 | ~int16 | ~int8 | ~float64 | ~float32
}

// BytesAsSlice views count values of T stored in data. No copy is made, the
// result aliases data.
func BytesAsSlice[T FixedWidth](data []byte, count int) []T {
	if count == 0 {
		return nil
	}

	var sample T
	valueSize := int(unsafe.Sizeof(sample))

	if len(data) < count*valueSize {
		panic(fmt.Sprintf("not enough data: %d bytes for %d values of size %d", len(data), count, valueSize))
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), count)
}

// SliceAsBytes is the reverse of BytesAsSlice.
func SliceAsBytes[T FixedWidth](arr []T) []byte {
	if len(arr) == 0 {
		return nil
	}

	var sample T
	byteLen := len(arr) * int(unsafe.Sizeof(sample))

	return unsafe.Slice((*byte)(unsafe.Pointer(&arr[0])), byteLen)
}
