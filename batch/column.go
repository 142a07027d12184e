package batch

import (
	"fmt"

	"github.com/dot5enko/offload-filter/bits"
	"github.com/dot5enko/offload-filter/schema"
)

// Column owns the raw memory of one fixed width column. Ownership moves
// between batches through TransferPair; after a move the source column is
// invalid and must not be read.
type Column struct {
	Field schema.Field

	data  []byte
	items int
	valid bool
}

func NewEmptyColumn(field schema.Field) *Column {
	return &Column{Field: field, valid: true}
}

// NewColumn wraps values without copying them. The column aliases values.
func NewColumn[T bits.FixedWidth](field schema.Field, values []T) (*Column, error) {
	var sample T

	typ, ok := schema.FieldTypeOf(sample)
	if !ok || typ != field.Type {
		return nil, fmt.Errorf("column %s: values of %T do not match field type %s", field.String(), sample, field.Type.String())
	}

	return &Column{
		Field: field,
		data:  bits.SliceAsBytes(values),
		items: len(values),
		valid: true,
	}, nil
}

// Values views the column as a typed slice. No copy is made.
func Values[T bits.FixedWidth](c *Column) ([]T, error) {
	var sample T

	if !c.valid {
		return nil, fmt.Errorf("column %s was transferred away", c.Field.String())
	}

	typ, ok := schema.FieldTypeOf(sample)
	if !ok || typ != c.Field.Type {
		return nil, fmt.Errorf("column %s: cannot view as %T", c.Field.String(), sample)
	}

	return bits.BytesAsSlice[T](c.data, c.items), nil
}

// Bytes is the backing memory of the column, Items()*Field.Type.Size() long.
func (c *Column) Bytes() []byte {
	return c.data
}

func (c *Column) Items() int {
	return c.items
}

func (c *Column) Valid() bool {
	return c.valid
}

// Fill hands new values to a column, the way an upstream operator refills
// its output between batches.
func Fill[T bits.FixedWidth](c *Column, values []T) error {
	var sample T

	typ, ok := schema.FieldTypeOf(sample)
	if !ok || typ != c.Field.Type {
		return fmt.Errorf("column %s: values of %T do not match field type %s", c.Field.String(), sample, c.Field.Type.String())
	}

	c.data = bits.SliceAsBytes(values)
	c.items = len(values)
	c.valid = true

	return nil
}
