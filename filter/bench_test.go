package filter

import (
	"math/rand"
	"testing"

	"github.com/dot5enko/offload-filter/schema"
)

func benchmarkStrategy(b *testing.B, device bool) {
	rng := rand.New(rand.NewSource(1))
	a, f := randomData(rng, 8192)

	ctx := newContext(b, nil)
	fx := newFixture(b, ctx, schema.NoSelection, a, f)

	filter := New(fx.program(testConditions...))
	if device {
		filter = New(nil, WithDeviceProgram(fx.program(testConditions...)))
	}

	if err := filter.Setup(ctx, fx.incoming, fx.outgoing, fx.transfers); err != nil {
		b.Fatal(err)
	}
	defer filter.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fx.refill(b, a, f)

		if err := filter.FilterBatch(len(a)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInterpreted(b *testing.B) {
	benchmarkStrategy(b, false)
}

func BenchmarkDevice(b *testing.B) {
	benchmarkStrategy(b, true)
}
