package lists

import (
	"github.com/dot5enko/offload-filter/bits"
)

var (
	BitsetFull  = bits.NewFullBitfield()
	BitsetEmpty = bits.Bitfield{}
)

// IndiceUnmerged intersects the sorted position lists produced by several
// conditions over the same block of rows.
type IndiceUnmerged struct {
	initialized bool

	ResultBitset bits.Bitfield

	fullSkip bool
}

func (i *IndiceUnmerged) Reset() {

	i.fullSkip = false

	if i.initialized {
		for j := range i.ResultBitset {
			i.ResultBitset[j] = 0
		}
	}

	i.initialized = false
}

// FullSkip reports that a merge left no position, so further conditions
// cannot change the outcome.
func (i *IndiceUnmerged) FullSkip() bool {
	return i.fullSkip
}

func (i *IndiceUnmerged) With(input []uint16, isEmpty, isFull bool) {

	if isFull {
		i.withFull()
		return
	}

	if isEmpty || len(input) == 0 {
		i.withEmpty()
		return
	}

	if !i.initialized {
		i.ResultBitset.FromSorted(input)
		i.initialized = true
		return
	}

	var bitset bits.Bitfield
	bitset.FromSorted(input)

	i.ResultBitset = bits.MergeAND(i.ResultBitset, bitset)
}

// Matches reports whether position pos survived every merge so far. With no
// merges at all every position matches.
func (i *IndiceUnmerged) Matches(pos int) bool {
	if i.fullSkip {
		return false
	}
	if !i.initialized {
		return true
	}
	return i.ResultBitset.Get(pos) == 1
}

func (i *IndiceUnmerged) withFull() {

	if !i.initialized {
		i.ResultBitset = BitsetFull
		i.initialized = true
		return
	}

	i.ResultBitset = bits.MergeAND(i.ResultBitset, BitsetFull)

}

func (i *IndiceUnmerged) withEmpty() {

	i.ResultBitset = BitsetEmpty
	i.initialized = true
	i.fullSkip = true
}

func NewUnmerged() *IndiceUnmerged {

	return &IndiceUnmerged{
		initialized: false,
	}
}
