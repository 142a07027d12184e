package predicate

import "github.com/dot5enko/offload-filter/batch"

// Evaluator decides whether the record at index survives.
type Evaluator interface {
	Eval(index int) bool
}

type Func func(index int) bool

func (f Func) Eval(index int) bool {
	return f(index)
}

// Generator is what query compilation hands to the filter: it binds a
// predicate to concrete batches once, at setup.
type Generator interface {
	Setup(incoming, outgoing *batch.RecordBatch) (Evaluator, error)
}

type GeneratorFunc func(incoming, outgoing *batch.RecordBatch) (Evaluator, error)

func (g GeneratorFunc) Setup(incoming, outgoing *batch.RecordBatch) (Evaluator, error) {
	return g(incoming, outgoing)
}

// Static wraps a predicate that only looks at the record index.
func Static(f Func) Generator {
	return GeneratorFunc(func(_, _ *batch.RecordBatch) (Evaluator, error) {
		return f, nil
	})
}
