package predicate

import "fmt"

type CondOperand byte

const (
	EQ CondOperand = iota
	GT
	LT
	RANGE
)

func (c CondOperand) String() string {
	switch c {
	case EQ:
		return "EQ"
	case GT:
		return "GT"
	case LT:
		return "LT"
	case RANGE:
		return "RANGE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", byte(c))
	}
}

func (c CondOperand) Arity() int {
	switch c {
	case EQ, GT, LT:
		return 1
	case RANGE:
		return 2
	default:
		return -1
	}
}
