package ops

import "golang.org/x/exp/constraints"

type SignedInts interface {
	constraints.Signed
}

type UnsignedInts interface {
	constraints.Unsigned
}

type Floats interface {
	constraints.Float
}

type NumericTypes interface {
	SignedInts | UnsignedInts | Floats
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
