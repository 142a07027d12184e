package main

import (
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/filter"
	"github.com/dot5enko/offload-filter/fragment"
	"github.com/dot5enko/offload-filter/io"
	"github.com/dot5enko/offload-filter/predicate"
	"github.com/dot5enko/offload-filter/schema"
	"github.com/dot5enko/offload-filter/selection"
	"github.com/fatih/color"
)

const batchSize = 8192

func testCycles(n int, label string, testSize int, cb func()) {

	before := time.Now()

	for range n {
		cb()
	}

	after := time.Since(before)

	perCycle := after.Nanoseconds() / int64(testSize*n)
	log.Printf(" %s per record : %d/ns", label, perCycle)
}

func gen_fake_data(dir string, size int, created, value schema.Field) {

	createdAt := make([]int64, size)
	values := make([]float64, size)

	for i := 0; i < size; i++ {
		createdAt[i] = rand.Int63n(50000)
		values[i] = rand.Float64() * 100
	}

	log.Printf("generated %d items ", size)

	createdCol, err := batch.NewColumn(created, createdAt)
	if err != nil {
		panic(err)
	}
	valueCol, err := batch.NewColumn(value, values)
	if err != nil {
		panic(err)
	}

	if err := io.DumpColumn(filepath.Join(dir, "created_at.bin"), createdCol); err != nil {
		panic(err)
	}
	if err := io.DumpColumn(filepath.Join(dir, "value.bin"), valueCol); err != nil {
		panic(err)
	}
}

type pipeline struct {
	filter   *filter.Filterer
	incoming *batch.RecordBatch
	outgoing *batch.RecordBatch
	columns  []*batch.Column
}

func newPipeline(ctx *fragment.Context, f *filter.Filterer, columns ...*batch.Column) *pipeline {

	incoming, err := batch.New("health_checks", schema.NoSelection, columns...)
	if err != nil {
		panic(err)
	}

	outgoing, transfers, err := batch.NewTransferTarget(incoming)
	if err != nil {
		panic(err)
	}
	outgoing.SetSelectionVector2(selection.NewVector2(ctx.Allocator))

	if err := f.Setup(ctx, incoming, outgoing, transfers); err != nil {
		panic(err)
	}

	return &pipeline{filter: f, incoming: incoming, outgoing: outgoing, columns: columns}
}

func (p *pipeline) run(createdAt []int64, values []float64) []uint16 {

	if err := batch.Fill(p.columns[0], createdAt); err != nil {
		panic(err)
	}
	if err := batch.Fill(p.columns[1], values); err != nil {
		panic(err)
	}

	if err := p.filter.FilterBatch(len(createdAt)); err != nil {
		panic(err)
	}

	return p.outgoing.SelectionVector2().Indices()
}

func main() {

	cfg := fragment.DefaultConfig()

	if len(os.Args) > 1 {
		loaded, err := fragment.LoadConfig(os.Args[1])
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	created := schema.NewField("created_at", schema.Int64FieldType)
	value := schema.NewField("value", schema.Float64FieldType)

	dir, err := os.MkdirTemp("", "offload-filter")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	gen_fake_data(dir, batchSize, created, value)

	createdCol, err := io.LoadColumn[int64](filepath.Join(dir, "created_at.bin"), created, batchSize)
	if err != nil {
		panic(err)
	}
	valueCol, err := io.LoadColumn[float64](filepath.Join(dir, "value.bin"), value, batchSize)
	if err != nil {
		panic(err)
	}

	createdAt, _ := batch.Values[int64](createdCol)
	values, _ := batch.Values[float64](valueCol)

	program := &predicate.Program{
		Bindings: []predicate.Binding{
			{Id: created.Id, Type: created.Type},
			{Id: value.Id, Type: value.Type},
		},
		Conditions: []predicate.Condition{
			{Column: 0, Operand: predicate.GT, Arguments: []any{int64(10000)}},
			{Column: 1, Operand: predicate.RANGE, Arguments: []any{float64(25), float64(75)}},
		},
	}

	ctx := fragment.NewContext(cfg)

	interpreted := newPipeline(ctx, filter.New(program), batch.NewEmptyColumn(created), batch.NewEmptyColumn(value))
	device := newPipeline(ctx, filter.New(nil, filter.WithDeviceProgram(program)), batch.NewEmptyColumn(created), batch.NewEmptyColumn(value))
	defer device.filter.Close()

	interpretedResult := slices.Clone(interpreted.run(createdAt, values))
	deviceResult := slices.Clone(device.run(createdAt, values))

	if slices.Equal(interpretedResult, deviceResult) {
		color.Green(" strategies agree : %d of %d records survived", len(deviceResult), batchSize)
	} else {
		color.Red(" strategies disagree : interpreted %d, device %d survivors", len(interpretedResult), len(deviceResult))
	}

	testCycles(100, "interpreted", batchSize, func() {
		interpreted.run(createdAt, values)
	})

	testCycles(100, "device", batchSize, func() {
		device.run(createdAt, values)
	})

	stats := device.filter.Stats()
	color.Yellow(" device filter : %d batches, %d -> %d records, %d device calls", stats.Batches, stats.RecordsIn, stats.RecordsOut, stats.DeviceCalls)
}
