package predicate

import (
	"fmt"

	"github.com/dot5enko/offload-filter/schema"
)

// MatchBounds tells whether a condition keeps none, all or some of the
// values summarized by bounds.
func MatchBounds[T Numeric](c Condition, bounds schema.Bounds[T]) (schema.BoundsFilterMatchResult, error) {

	switch c.Operand {
	case RANGE:
		from, to, err := rangeArguments[T](c)
		if err != nil {
			return schema.UnknownIntersection, err
		}

		if to <= from || to <= bounds.Min || from > bounds.Max {
			return schema.NoIntersection, nil
		}

		if from <= bounds.Min && to > bounds.Max {
			return schema.FullIntersection, nil
		}

		return schema.PartialIntersection, nil

	case EQ:
		operand, err := argument[T](c, 0)
		if err != nil {
			return schema.UnknownIntersection, err
		}

		if !bounds.Contains(operand) {
			return schema.NoIntersection, nil
		}

		if bounds.Min == operand && bounds.Max == operand {
			return schema.FullIntersection, nil
		}

		return schema.PartialIntersection, nil

	case GT:
		operand, err := argument[T](c, 0)
		if err != nil {
			return schema.UnknownIntersection, err
		}

		if operand >= bounds.Max {
			return schema.NoIntersection, nil
		}

		if operand < bounds.Min {
			return schema.FullIntersection, nil
		}

		return schema.PartialIntersection, nil

	case LT:
		operand, err := argument[T](c, 0)
		if err != nil {
			return schema.UnknownIntersection, err
		}

		if operand <= bounds.Min {
			return schema.NoIntersection, nil
		}

		if operand > bounds.Max {
			return schema.FullIntersection, nil
		}

		return schema.PartialIntersection, nil

	default:
		return schema.UnknownIntersection, fmt.Errorf("unsupported operand type=%v while matching bounds", c.Operand)
	}
}
