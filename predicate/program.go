package predicate

import (
	"errors"
	"fmt"

	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/schema"
	"github.com/google/uuid"
)

// Binding names one input column of a device program. The order of
// Program.Bindings is the order of the column buffers on the wire.
type Binding struct {
	Id   uuid.UUID
	Type schema.FieldType
}

// Program is a predicate both the interpreter and an offload device can
// run: the conjunction of Conditions over the bound columns.
type Program struct {
	Bindings   []Binding
	Conditions []Condition
}

// Preparer is implemented by evaluators that must look at the incoming
// columns again before each batch.
type Preparer interface {
	Prepare() error
}

func (p *Program) Validate() error {
	if len(p.Bindings) == 0 {
		return errors.New("device program has no column bindings")
	}

	width := 0
	for idx, b := range p.Bindings {
		if !b.Type.Valid() {
			return fmt.Errorf("binding %d: unsupported field type %d", idx, b.Type)
		}

		if idx == 0 {
			width = b.Type.Size()
		} else if b.Type.Size() != width {
			return fmt.Errorf("binding %d: width %d differs from %d, device buffers must be equal length", idx, b.Type.Size(), width)
		}
	}

	for _, c := range p.Conditions {
		if c.Column < 0 || c.Column >= len(p.Bindings) {
			return fmt.Errorf("condition %s: column out of range [0, %d)", c.String(), len(p.Bindings))
		}

		if err := checkCondition(c, p.Bindings[c.Column].Type); err != nil {
			return err
		}
	}

	return nil
}

// Width is the per value size shared by all bound columns.
func (p *Program) Width() int {
	if len(p.Bindings) == 0 {
		return 0
	}
	return p.Bindings[0].Type.Size()
}

// Bind resolves the bindings against a batch layout.
func (p *Program) Bind(incoming *batch.RecordBatch) ([]*batch.Column, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	columns := make([]*batch.Column, len(p.Bindings))

	for idx, b := range p.Bindings {
		col, ok := incoming.Column(b.Id)
		if !ok {
			return nil, fmt.Errorf("binding %d: column %s not found in batch %s", idx, b.Id.String(), incoming.Schema().Name)
		}

		if col.Field.Type != b.Type {
			return nil, fmt.Errorf("binding %d: column %s is %s, program expects %s", idx, col.Field.String(), col.Field.Type.String(), b.Type.String())
		}

		columns[idx] = col
	}

	return columns, nil
}

// Setup makes the interpreted form of the program. The same conditions run
// one record at a time.
func (p *Program) Setup(incoming, _ *batch.RecordBatch) (Evaluator, error) {
	columns, err := p.Bind(incoming)
	if err != nil {
		return nil, err
	}

	return &interpreted{
		program: p,
		columns: columns,
		tests:   make([]Func, len(p.Conditions)),
	}, nil
}

type interpreted struct {
	program *Program
	columns []*batch.Column

	tests []Func
}

func (e *interpreted) Prepare() error {
	for idx, c := range e.program.Conditions {
		test, err := compileInterpreted(c, e.columns[c.Column])
		if err != nil {
			return err
		}
		e.tests[idx] = test
	}
	return nil
}

func (e *interpreted) Eval(index int) bool {
	for _, test := range e.tests {
		if !test(index) {
			return false
		}
	}
	return true
}

func compileTyped[T Numeric](c Condition, col *batch.Column) (Func, error) {
	values, err := batch.Values[T](col)
	if err != nil {
		return nil, err
	}

	test, err := matcher[T](c)
	if err != nil {
		return nil, err
	}

	return func(index int) bool {
		return test(values[index])
	}, nil
}

func compileInterpreted(c Condition, col *batch.Column) (Func, error) {
	switch col.Field.Type {
	case schema.Int8FieldType:
		return compileTyped[int8](c, col)
	case schema.Int16FieldType:
		return compileTyped[int16](c, col)
	case schema.Int32FieldType:
		return compileTyped[int32](c, col)
	case schema.Int64FieldType:
		return compileTyped[int64](c, col)
	case schema.Uint8FieldType:
		return compileTyped[uint8](c, col)
	case schema.Uint16FieldType:
		return compileTyped[uint16](c, col)
	case schema.Uint32FieldType:
		return compileTyped[uint32](c, col)
	case schema.Uint64FieldType:
		return compileTyped[uint64](c, col)
	case schema.Float32FieldType:
		return compileTyped[float32](c, col)
	case schema.Float64FieldType:
		return compileTyped[float64](c, col)
	default:
		return nil, fmt.Errorf("unsupported type %v", col.Field.Type.String())
	}
}
