package batch

import (
	"testing"

	"github.com/dot5enko/offload-filter/schema"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnequalColumns(t *testing.T) {
	a, err := NewColumn(schema.NewField("a", schema.Int64FieldType), []int64{1, 2, 3})
	require.NoError(t, err)

	b, err := NewColumn(schema.NewField("b", schema.Int64FieldType), []int64{1, 2})
	require.NoError(t, err)

	_, err = New("t", schema.NoSelection, a, b)
	require.Error(t, err)
}

func TestNewColumnChecksType(t *testing.T) {
	_, err := NewColumn(schema.NewField("a", schema.Int64FieldType), []uint64{1})
	require.Error(t, err)
}

func TestColumnLookup(t *testing.T) {
	field := schema.NewField("value", schema.Float64FieldType)

	col, err := NewColumn(field, []float64{0.5, 1.5})
	require.NoError(t, err)

	bat, err := New("t", schema.NoSelection, col)
	require.NoError(t, err)

	found, ok := bat.Column(field.Id)
	require.True(t, ok)
	require.Same(t, col, found)
	require.Equal(t, 2, bat.Len())

	_, ok = bat.Column(schema.NewField("other", schema.Int8FieldType).Id)
	require.False(t, ok)
}

func TestTransferMovesMemory(t *testing.T) {
	values := []uint32{10, 20, 30}

	src, err := NewColumn(schema.NewField("v", schema.Uint32FieldType), values)
	require.NoError(t, err)

	incoming, err := New("in", schema.NoSelection, src)
	require.NoError(t, err)

	outgoing, pairs, err := NewTransferTarget(incoming)
	require.NoError(t, err)
	require.Equal(t, schema.TwoByteSelection, outgoing.Mode())
	require.Len(t, pairs, 1)

	TransferAll(pairs)

	require.False(t, src.Valid())
	_, err = Values[uint32](src)
	require.Error(t, err)

	dst := outgoing.Columns()[0]
	moved, err := Values[uint32](dst)
	require.NoError(t, err)
	require.Equal(t, values, moved)

	// same memory, not a copy
	require.Same(t, &values[0], &moved[0])
}
