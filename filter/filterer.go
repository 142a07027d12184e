package filter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/fragment"
	"github.com/dot5enko/offload-filter/offload"
	"github.com/dot5enko/offload-filter/predicate"
	"github.com/dot5enko/offload-filter/schema"
	"github.com/dot5enko/offload-filter/selection"
)

// payloadDumpBytes limits how much of every device column a debug dump shows
const payloadDumpBytes = 64

// Stats counts the work done by a Filterer since it was created. Records
// are counted before and after the predicate, device calls once per chunk
// sent to the bridge.
type Stats struct {
	Batches     int64
	RecordsIn   int64
	RecordsOut  int64
	DeviceCalls int64
}

// Filterer keeps the records of a batch that satisfy a predicate. It never
// copies column data: survivors are listed in the outgoing two byte
// selection vector and the columns are moved to the outgoing batch.
//
// A Filterer is used by one goroutine and processes one batch at a time.
type Filterer struct {
	generator predicate.Generator
	program   *predicate.Program
	opener    DeviceOpener

	ctx    *fragment.Context
	logger *slog.Logger

	incoming  *batch.RecordBatch
	outgoing  *batch.RecordBatch
	transfers []batch.TransferPair

	mode        schema.SelectionVectorMode
	incomingSV2 *selection.Vector2
	outgoingSV2 *selection.Vector2

	evaluator predicate.Evaluator
	preparer  predicate.Preparer

	bridge        offload.Bridge
	buffers       *offload.TransferBuffers
	deviceColumns []*batch.Column

	stats Stats
}

// New creates a filter for the predicate produced by generator. A nil
// generator uses the interpreted form of the device program.
func New(generator predicate.Generator, opts ...Option) *Filterer {
	f := &Filterer{
		generator: generator,
		opener:    openDevice,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Setup binds the filter to its batches. The device, when configured, is
// initialized before the predicate is compiled. Calling Setup again
// releases the device of the previous binding first.
func (f *Filterer) Setup(ctx *fragment.Context, incoming, outgoing *batch.RecordBatch, transfers []batch.TransferPair) error {
	if err := f.releaseDevice(); err != nil {
		return fmt.Errorf("%w: release previous device: %w", ErrDeviceFailure, err)
	}

	f.evaluator = nil
	f.preparer = nil
	f.incomingSV2 = nil

	if err := ctx.Config.Validate(); err != nil {
		return err
	}

	f.ctx = ctx
	f.logger = ctx.Logger
	if f.logger == nil {
		f.logger = slog.Default()
	}

	f.outgoingSV2 = outgoing.SelectionVector2()
	if f.outgoingSV2 == nil {
		return fmt.Errorf("outgoing batch %s has no selection vector", outgoing.Schema().Name)
	}

	f.incoming = incoming
	f.outgoing = outgoing
	f.transfers = transfers

	f.mode = incoming.Mode()

	switch f.mode {
	case schema.NoSelection:
	case schema.TwoByteSelection:
		f.incomingSV2 = incoming.SelectionVector2()
		if f.incomingSV2 == nil {
			return fmt.Errorf("index filtered batch %s has no selection vector", incoming.Schema().Name)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedRepresentation, f.mode.String())
	}

	if f.program != nil {
		if err := f.setupDevice(); err != nil {
			return err
		}
	}

	generator := f.generator
	if generator == nil {
		if f.program == nil {
			return errors.New("filter has neither a predicate nor a device program")
		}
		generator = f.program
	}

	evaluator, err := generator.Setup(incoming, outgoing)
	if err != nil {
		f.releaseDevice()
		return fmt.Errorf("unable to compile predicate: %w", err)
	}

	f.evaluator = evaluator
	f.preparer, _ = evaluator.(predicate.Preparer)

	strategy := "interpreted"
	if f.bridge != nil && f.mode == schema.NoSelection {
		strategy = "device"
	}

	f.logger.Info("filter set up",
		"batch", incoming.Schema().Name,
		"mode", f.mode.String(),
		"strategy", strategy,
		"transfers", len(transfers),
	)

	return nil
}

func (f *Filterer) setupDevice() error {
	cfg := f.ctx.Config

	columns, err := f.program.Bind(f.incoming)
	if err != nil {
		return fmt.Errorf("unable to bind device program: %w", err)
	}

	bridge, err := f.opener(cfg, f.program)
	if err != nil {
		return fmt.Errorf("%w: open: %w", ErrDeviceFailure, err)
	}
	f.bridge = bridge

	if err := bridge.InitializeDevice(); err != nil {
		f.releaseDevice()
		return fmt.Errorf("%w: initialize: %w", ErrDeviceFailure, err)
	}

	buffers, err := offload.NewTransferBuffers(len(columns), f.program.Width(), cfg.ResultBufferCapacity)
	if err != nil {
		f.releaseDevice()
		return fmt.Errorf("%w: transfer buffers: %w", ErrAllocationFailure, err)
	}

	f.buffers = buffers
	f.deviceColumns = columns

	f.logger.Info("offload device ready",
		"columns", len(columns),
		"width", f.program.Width(),
		"capacity", cfg.ResultBufferCapacity,
		"chunking", cfg.ChunkOversizedBatches,
	)

	return nil
}

// FilterBatch filters the first recordCount records of the incoming batch,
// or of its selection vector in index filtered mode. On success the
// outgoing vector holds the survivors in ascending order and every column
// has been moved to the outgoing batch. An empty batch or any failure
// leaves the outgoing vector empty.
func (f *Filterer) FilterBatch(recordCount int) error {
	if f.outgoingSV2 != nil {
		f.outgoingSV2.Clear()
	}

	if recordCount == 0 {
		return nil
	}

	survivors, err := f.filterBatch(recordCount)
	if err != nil {
		if f.outgoingSV2 != nil {
			f.outgoingSV2.Clear()
		}
		return err
	}

	f.outgoingSV2.SetRecordCount(survivors)

	batch.TransferAll(f.transfers)

	f.stats.Batches++
	f.stats.RecordsIn += int64(recordCount)
	f.stats.RecordsOut += int64(survivors)

	f.logger.Debug("batch filtered", "records", recordCount, "survivors", survivors)

	return nil
}

func (f *Filterer) filterBatch(recordCount int) (int, error) {
	if f.evaluator == nil {
		return 0, errors.New("filter is not set up")
	}

	if recordCount < 0 {
		return 0, fmt.Errorf("negative record count %d", recordCount)
	}

	if f.mode == schema.TwoByteSelection {
		if available := f.incomingSV2.RecordCount(); recordCount > available {
			return 0, fmt.Errorf("record count %d exceeds %d incoming selected records", recordCount, available)
		}
	} else if rows := f.incoming.Len(); recordCount > rows {
		return 0, fmt.Errorf("record count %d exceeds %d rows of batch %s", recordCount, rows, f.incoming.Schema().Name)
	}

	if err := f.outgoingSV2.AllocateNew(recordCount); err != nil {
		return 0, fmt.Errorf("%w: %d records: %w", ErrAllocationFailure, recordCount, err)
	}

	switch {
	case f.mode == schema.TwoByteSelection:
		return f.filterIndexed(recordCount)
	case f.bridge != nil:
		return f.filterOnDevice(recordCount)
	default:
		return f.filterInterpreted(recordCount)
	}
}

func (f *Filterer) prepare() error {
	if f.preparer == nil {
		return nil
	}

	if err := f.preparer.Prepare(); err != nil {
		return fmt.Errorf("unable to prepare predicate: %w", err)
	}

	return nil
}

func (f *Filterer) filterInterpreted(recordCount int) (int, error) {
	if err := f.prepare(); err != nil {
		return 0, err
	}

	out := 0
	for i := 0; i < recordCount; i++ {
		if f.evaluator.Eval(i) {
			f.outgoingSV2.SetIndex(out, uint16(i))
			out++
		}
	}

	return out, nil
}

func (f *Filterer) filterIndexed(recordCount int) (int, error) {
	if err := f.prepare(); err != nil {
		return 0, err
	}

	rows := f.incoming.Len()

	out := 0
	for pos := 0; pos < recordCount; pos++ {
		idx := f.incomingSV2.GetIndex(pos)
		if int(idx) >= rows {
			return 0, fmt.Errorf("incoming selection %d points at row %d of %d", pos, idx, rows)
		}

		if f.evaluator.Eval(int(idx)) {
			f.outgoingSV2.SetIndex(out, idx)
			out++
		}
	}

	return out, nil
}

func (f *Filterer) filterOnDevice(recordCount int) (int, error) {
	capacity := f.buffers.Capacity()

	if recordCount > capacity {
		if !f.ctx.Config.ChunkOversizedBatches {
			return 0, fmt.Errorf("%w: %d records, capacity %d", ErrBatchTooLarge, recordCount, capacity)
		}

		f.logger.Warn("splitting oversized batch",
			"records", recordCount,
			"capacity", capacity,
			"calls", (recordCount+capacity-1)/capacity,
		)
	}

	out := 0

	for base := 0; base < recordCount; base += capacity {
		count := min(capacity, recordCount-base)

		views, err := f.buffers.Marshal(f.deviceColumns, base, count)
		if err != nil {
			return 0, fmt.Errorf("unable to marshal device operands: %w", err)
		}

		if f.ctx.Config.DebugDumpPayload {
			f.dumpPayload(views, base, count)
		}

		if err := f.bridge.UploadOperands(views, f.buffers.SizeHeader, f.buffers.CountHeader); err != nil {
			return 0, fmt.Errorf("%w: upload: %w", ErrDeviceFailure, err)
		}

		if err := f.bridge.ExecuteBatch(); err != nil {
			return 0, fmt.Errorf("%w: execute: %w", ErrDeviceFailure, err)
		}

		if err := f.bridge.DownloadResult(f.buffers.Result, f.buffers.CountHeader); err != nil {
			return 0, fmt.Errorf("%w: download: %w", ErrDeviceFailure, err)
		}

		f.stats.DeviceCalls++

		for i, passed := range f.buffers.Result[:count] {
			if passed != 0 {
				f.outgoingSV2.SetIndex(out, uint16(base+i))
				out++
			}
		}
	}

	return out, nil
}

func (f *Filterer) dumpPayload(views [][]byte, base, count int) {
	heads := make([][]byte, len(views))
	for idx, view := range views {
		heads[idx] = view[:min(len(view), payloadDumpBytes)]
	}

	f.logger.Debug("device payload",
		"base", base,
		"records", count,
		"columns", spew.Sdump(heads),
	)
}

// Stats returns a copy of the counters.
func (f *Filterer) Stats() Stats {
	return f.stats
}

func (f *Filterer) releaseDevice() error {
	var err error

	if f.bridge != nil {
		err = f.bridge.Close()
		f.bridge = nil
	}

	if f.buffers != nil {
		err = errors.Join(err, f.buffers.Free())
		f.buffers = nil
	}

	f.deviceColumns = nil

	return err
}

// Close releases the device and its transfer buffers.
func (f *Filterer) Close() error {
	return f.releaseDevice()
}
