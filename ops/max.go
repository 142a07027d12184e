package ops

import "github.com/dot5enko/offload-filter/schema"

// GetMaxMin returns the bounds of a non empty array.
func GetMaxMin[T NumericTypes](arr []T) schema.Bounds[T] {

	resultBounds := schema.Bounds[T]{
		Min: arr[0],
		Max: arr[0],
	}

	for _, v := range arr[1:] {
		if v < resultBounds.Min {
			resultBounds.Min = v
		}
		if v > resultBounds.Max {
			resultBounds.Max = v
		}
	}
	return resultBounds
}
