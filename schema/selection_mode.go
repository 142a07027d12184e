package schema

import "fmt"

// SelectionVectorMode tells how the live records of a batch are addressed.
type SelectionVectorMode uint8

const (
	// every position of the batch is live
	NoSelection SelectionVectorMode = iota
	// live positions are listed by a two byte selection vector
	TwoByteSelection
	// live positions are listed by a four byte (batch, offset) vector
	FourByteSelection
)

func (m SelectionVectorMode) String() string {
	switch m {
	case NoSelection:
		return "NONE"
	case TwoByteSelection:
		return "TWO_BYTE"
	case FourByteSelection:
		return "FOUR_BYTE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(m))
	}
}
