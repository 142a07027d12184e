package ops

// comparison is implemented by zero sized operator types so every kernel
// instantiation gets its own code and the test inlines.
type comparison[T NumericTypes] interface {
	test(v, cmp T) bool
}

type equal[T NumericTypes] struct{}

func (equal[T]) test(v, cmp T) bool { return v == cmp }

type bigger[T NumericTypes] struct{}

func (bigger[T]) test(v, cmp T) bool { return v > cmp }

type smaller[T NumericTypes] struct{}

func (smaller[T]) test(v, cmp T) bool { return v < cmp }

// collect writes the positions of arr passing op into out, eight values per
// step without branches. out must hold len(arr) entries.
func collect[T NumericTypes, C comparison[T]](arr []T, cmp T, out []uint16) int {
	var op C

	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {
		block := arr[i : i+8 : i+8]

		for k, v := range block {
			out[filled] = uint16(i + k)
			filled += b2i(op.test(v, cmp))
		}
	}

	// Tail element
	for ; i < n; i++ {
		if op.test(arr[i], cmp) {
			out[filled] = uint16(i)
			filled++
		}
	}

	return filled
}

// CompareNumericValuesAreEqual writes positions of arr equal to cmp into out
// and returns how many were written. out must hold len(arr) entries.
func CompareNumericValuesAreEqual[T NumericTypes](arr []T, cmp T, out []uint16) int {
	return collect[T, equal[T]](arr, cmp, out)
}

// CompareValuesAreBigger collects positions of values strictly greater than cmp.
func CompareValuesAreBigger[T NumericTypes](arr []T, cmp T, out []uint16) int {
	return collect[T, bigger[T]](arr, cmp, out)
}

func CompareValuesAreSmaller[T NumericTypes](arr []T, cmp T, out []uint16) int {
	return collect[T, smaller[T]](arr, cmp, out)
}
