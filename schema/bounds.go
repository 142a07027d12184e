package schema

import "golang.org/x/exp/constraints"

type NumericTypes interface {
	constraints.Integer | constraints.Float
}

type Bounds[T NumericTypes] struct {
	Min T
	Max T
}

func (b Bounds[T]) Contains(v T) bool {
	return v >= b.Min && v <= b.Max
}

type BoundsFilterMatchResult uint8

const (
	UnknownIntersection BoundsFilterMatchResult = iota
	NoIntersection
	PartialIntersection
	FullIntersection
)

func (r BoundsFilterMatchResult) String() string {
	switch r {
	case NoIntersection:
		return "none"
	case PartialIntersection:
		return "partial"
	case FullIntersection:
		return "full"
	default:
		return "unknown"
	}
}
