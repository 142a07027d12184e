package batch

import (
	"fmt"

	"github.com/dot5enko/offload-filter/schema"
	"github.com/dot5enko/offload-filter/selection"
	"github.com/google/uuid"
)

// RecordBatch is a set of equal length columns processed as one unit.
type RecordBatch struct {
	schema  schema.Schema
	columns []*Column
	byId    map[uuid.UUID]int

	sv2 *selection.Vector2
}

func New(name string, mode schema.SelectionVectorMode, columns ...*Column) (*RecordBatch, error) {

	b := &RecordBatch{
		schema: schema.Schema{
			Name:   name,
			Fields: make([]schema.Field, 0, len(columns)),
			Mode:   mode,
		},
		columns: columns,
		byId:    make(map[uuid.UUID]int, len(columns)),
	}

	for idx, col := range columns {
		if _, exists := b.byId[col.Field.Id]; exists {
			return nil, fmt.Errorf("duplicate column id %s in batch %s", col.Field.Id.String(), name)
		}

		if idx > 0 && col.items != columns[0].items {
			return nil, fmt.Errorf("column %s has %d values, expected %d", col.Field.String(), col.items, columns[0].items)
		}

		b.byId[col.Field.Id] = idx
		b.schema.Fields = append(b.schema.Fields, col.Field)
	}

	return b, nil
}

func (b *RecordBatch) Schema() schema.Schema {
	return b.schema
}

func (b *RecordBatch) Mode() schema.SelectionVectorMode {
	return b.schema.Mode
}

func (b *RecordBatch) Column(id uuid.UUID) (*Column, bool) {
	idx, ok := b.byId[id]
	if !ok {
		return nil, false
	}
	return b.columns[idx], true
}

func (b *RecordBatch) Columns() []*Column {
	return b.columns
}

// Len is the number of physical rows, regardless of any selection vector.
func (b *RecordBatch) Len() int {
	for _, col := range b.columns {
		if col.valid {
			return col.items
		}
	}
	return 0
}

func (b *RecordBatch) SelectionVector2() *selection.Vector2 {
	return b.sv2
}

func (b *RecordBatch) SetSelectionVector2(sv *selection.Vector2) {
	b.sv2 = sv
}
