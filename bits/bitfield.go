package bits

const BitfieldWords = 64 * 8

// BitfieldBits is the number of positions a Bitfield can address.
const BitfieldBits = BitfieldWords * 64

type Bitfield [BitfieldWords]uint64

func NewFullBitfield() (b Bitfield) {
	for i := range b {
		b[i] = ^uint64(0)
	}
	return
}

func (b *Bitfield) FromSorted(bits []uint16) {
	arr := b[:] // removes bounds checks in indexing
	if len(bits) == 0 {
		return
	}

	currWord := bits[0] >> 6
	mask := uint64(0)

	for _, bit := range bits {
		w := bit >> 6
		if w != currWord {
			arr[currWord] |= mask
			currWord = w
			mask = 0
		}
		mask |= 1 << (bit & 63)
	}

	arr[currWord] |= mask
}

func (b *Bitfield) Get(bit int) uint64 {
	word := bit >> 6
	return (b[word] >> (bit & 63)) & 1
}

func MergeAND(a, b Bitfield) (out Bitfield) {
	for i := range a {
		out[i] = a[i] & b[i]
	}
	return
}
