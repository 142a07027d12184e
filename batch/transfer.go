package batch

import (
	"fmt"

	"github.com/dot5enko/offload-filter/schema"
)

// TransferPair moves the backing memory of From into To.
type TransferPair struct {
	From *Column
	To   *Column
}

func NewTransferPair(from, to *Column) (TransferPair, error) {
	if from.Field.Type != to.Field.Type {
		return TransferPair{}, fmt.Errorf("transfer %s -> %s: field types differ", from.Field.String(), to.Field.String())
	}
	return TransferPair{From: from, To: to}, nil
}

// Transfer hands ownership over. Values are not copied; the destination
// aliases the very memory the source held and the source is invalidated.
func (t TransferPair) Transfer() {
	t.To.data = t.From.data
	t.To.items = t.From.items
	t.To.valid = true

	t.From.data = nil
	t.From.items = 0
	t.From.valid = false
}

func TransferAll(pairs []TransferPair) {
	for _, t := range pairs {
		t.Transfer()
	}
}

// NewTransferTarget builds an empty two byte selection batch mirroring the
// fields of incoming, together with one transfer per column.
func NewTransferTarget(incoming *RecordBatch) (*RecordBatch, []TransferPair, error) {
	columns := make([]*Column, 0, len(incoming.columns))
	pairs := make([]TransferPair, 0, len(incoming.columns))

	for _, src := range incoming.columns {
		dst := NewEmptyColumn(src.Field)
		columns = append(columns, dst)

		pair, err := NewTransferPair(src, dst)
		if err != nil {
			return nil, nil, err
		}
		pairs = append(pairs, pair)
	}

	outgoing, err := New(incoming.schema.Name, schema.TwoByteSelection, columns...)
	if err != nil {
		return nil, nil, err
	}

	return outgoing, pairs, nil
}
