package predicate

import (
	"fmt"

	"github.com/dot5enko/offload-filter/schema"
)

type Numeric interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Condition compares one bound column against constant arguments. Column
// is a position in Program.Bindings. Arguments must have the Go type of the
// bound column: RANGE takes [from, to), the others a single operand.
type Condition struct {
	Column    int
	Operand   CondOperand
	Arguments []any
}

func (c Condition) String() string {
	return fmt.Sprintf("#%d %s %v", c.Column, c.Operand.String(), c.Arguments)
}

func argument[T Numeric](c Condition, idx int) (T, error) {
	if idx >= len(c.Arguments) {
		var zero T
		return zero, fmt.Errorf("condition %s: missing argument %d", c.String(), idx)
	}

	v, ok := c.Arguments[idx].(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("condition %s: argument %d is %T, expected %T", c.String(), idx, c.Arguments[idx], zero)
	}

	return v, nil
}

func rangeArguments[T Numeric](c Condition) (from, to T, err error) {
	from, err = argument[T](c, 0)
	if err != nil {
		return
	}
	to, err = argument[T](c, 1)
	if err != nil {
		return
	}

	if from > to {
		from, to = to, from
	}

	return
}

// matcher compiles the condition into a per value test.
func matcher[T Numeric](c Condition) (func(v T) bool, error) {
	if c.Operand.Arity() != len(c.Arguments) {
		return nil, fmt.Errorf("condition %s: %s takes %d arguments, got %d", c.String(), c.Operand.String(), c.Operand.Arity(), len(c.Arguments))
	}

	switch c.Operand {
	case EQ:
		operand, err := argument[T](c, 0)
		if err != nil {
			return nil, err
		}
		return func(v T) bool { return v == operand }, nil
	case GT:
		operand, err := argument[T](c, 0)
		if err != nil {
			return nil, err
		}
		return func(v T) bool { return v > operand }, nil
	case LT:
		operand, err := argument[T](c, 0)
		if err != nil {
			return nil, err
		}
		return func(v T) bool { return v < operand }, nil
	case RANGE:
		from, to, err := rangeArguments[T](c)
		if err != nil {
			return nil, err
		}
		return func(v T) bool { return v >= from && v < to }, nil
	default:
		return nil, fmt.Errorf("unsupported operand %s", c.Operand.String())
	}
}

func checkCondition(c Condition, typ schema.FieldType) (err error) {
	switch typ {
	case schema.Int8FieldType:
		_, err = matcher[int8](c)
	case schema.Int16FieldType:
		_, err = matcher[int16](c)
	case schema.Int32FieldType:
		_, err = matcher[int32](c)
	case schema.Int64FieldType:
		_, err = matcher[int64](c)
	case schema.Uint8FieldType:
		_, err = matcher[uint8](c)
	case schema.Uint16FieldType:
		_, err = matcher[uint16](c)
	case schema.Uint32FieldType:
		_, err = matcher[uint32](c)
	case schema.Uint64FieldType:
		_, err = matcher[uint64](c)
	case schema.Float32FieldType:
		_, err = matcher[float32](c)
	case schema.Float64FieldType:
		_, err = matcher[float64](c)
	default:
		err = fmt.Errorf("unsupported field type %d", typ)
	}
	return
}
