package offload

import (
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/bits"
)

// TransferBuffers are the fixed regions exchanged with a device. They are
// sized once for capacity records and reused for every batch.
type TransferBuffers struct {
	Columns     [][]byte
	SizeHeader  []byte
	CountHeader []byte
	Result      []byte

	width    int
	capacity int

	region []byte
}

func NewTransferBuffers(columns, width, capacity int) (*TransferBuffers, error) {
	if columns <= 0 || width <= 0 || capacity <= 0 {
		return nil, fmt.Errorf("invalid transfer buffer layout: %d columns of width %d, capacity %d", columns, width, capacity)
	}

	columnSize := width * capacity
	total := 2*HeaderSize + capacity + columns*columnSize

	region, err := allocRegion(total)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate %d bytes of transfer buffers: %w", total, err)
	}

	tb := &TransferBuffers{
		Columns:  make([][]byte, columns),
		width:    width,
		capacity: capacity,
		region:   region,
	}

	pos := 0
	take := func(n int) []byte {
		part := region[pos : pos+n : pos+n]
		pos += n
		return part
	}

	// column regions first so they keep the page alignment of the region
	for i := range tb.Columns {
		tb.Columns[i] = take(columnSize)
	}
	tb.SizeHeader = take(HeaderSize)
	tb.CountHeader = take(HeaderSize)
	tb.Result = take(capacity)

	return tb, nil
}

func (tb *TransferBuffers) Capacity() int {
	return tb.capacity
}

func (tb *TransferBuffers) Width() int {
	return tb.width
}

// WriteHeaders stores count and its byte size, little endian.
func (tb *TransferBuffers) WriteHeaders(count int) {
	countWriter := bits.NewEncodeBuffer(tb.CountHeader, binary.LittleEndian)
	countWriter.PutInt32(int32(count))

	sizeWriter := bits.NewEncodeBuffer(tb.SizeHeader, binary.LittleEndian)
	sizeWriter.PutInt32(int32(count * tb.width))
}

// Marshal copies records [base, base+count) of each column into the staging
// regions and writes both headers. It returns the column views to upload.
func (tb *TransferBuffers) Marshal(columns []*batch.Column, base, count int) ([][]byte, error) {
	if len(columns) != len(tb.Columns) {
		return nil, fmt.Errorf("expected %d device columns, got %d", len(tb.Columns), len(columns))
	}

	if count > tb.capacity {
		return nil, fmt.Errorf("%w: %d records, capacity %d", ErrCapacity, count, tb.capacity)
	}

	size := count * tb.width
	views := make([][]byte, len(columns))

	for idx, col := range columns {
		if !col.Valid() {
			return nil, fmt.Errorf("device column %s was transferred away", col.Field.String())
		}

		if col.Field.Type.Size() != tb.width {
			return nil, fmt.Errorf("device column %s has width %d, buffers expect %d", col.Field.String(), col.Field.Type.Size(), tb.width)
		}

		if base+count > col.Items() {
			return nil, fmt.Errorf("device column %s holds %d records, window [%d, %d) requested", col.Field.String(), col.Items(), base, base+count)
		}

		src := col.Bytes()[base*tb.width : (base+count)*tb.width]
		copy(tb.Columns[idx], src)

		views[idx] = tb.Columns[idx][:size]
	}

	tb.WriteHeaders(count)

	return views, nil
}

func (tb *TransferBuffers) Free() error {
	if tb.region == nil {
		return nil
	}

	err := freeRegion(tb.region)

	tb.region = nil
	tb.Columns = nil
	tb.SizeHeader = nil
	tb.CountHeader = nil
	tb.Result = nil

	return err
}
