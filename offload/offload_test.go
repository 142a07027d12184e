package offload

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/compression"
	"github.com/dot5enko/offload-filter/predicate"
	"github.com/dot5enko/offload-filter/schema"
	"github.com/stretchr/testify/require"
)

func testProgram(t *testing.T, conditions ...predicate.Condition) (*predicate.Program, *batch.Column, *batch.Column) {
	t.Helper()

	a := schema.NewField("a", schema.Int64FieldType)
	b := schema.NewField("b", schema.Int64FieldType)

	colA, err := batch.NewColumn(a, []int64{1, 5, 10, 15, 20, 25})
	require.NoError(t, err)
	colB, err := batch.NewColumn(b, []int64{0, 1, 0, 1, 0, 1})
	require.NoError(t, err)

	program := &predicate.Program{
		Bindings: []predicate.Binding{
			{Id: a.Id, Type: a.Type},
			{Id: b.Id, Type: b.Type},
		},
		Conditions: conditions,
	}

	return program, colA, colB
}

func runBatch(t *testing.T, device Bridge, tb *TransferBuffers, columns []*batch.Column, base, count int) []byte {
	t.Helper()

	views, err := tb.Marshal(columns, base, count)
	require.NoError(t, err)

	require.NoError(t, device.UploadOperands(views, tb.SizeHeader, tb.CountHeader))
	require.NoError(t, device.ExecuteBatch())
	require.NoError(t, device.DownloadResult(tb.Result, tb.CountHeader))

	return tb.Result[:count]
}

func TestTransferBuffersMarshal(t *testing.T) {
	program, colA, colB := testProgram(t)

	tb, err := NewTransferBuffers(len(program.Bindings), program.Width(), 4)
	require.NoError(t, err)
	defer tb.Free()

	views, err := tb.Marshal([]*batch.Column{colA, colB}, 2, 3)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Len(t, views[0], 24)

	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(tb.CountHeader))
	require.Equal(t, uint32(24), binary.LittleEndian.Uint32(tb.SizeHeader))
	require.Equal(t, int64(10), int64(binary.LittleEndian.Uint64(views[0][:8])))
	require.Equal(t, int64(1), int64(binary.LittleEndian.Uint64(views[1][8:16])))

	_, err = tb.Marshal([]*batch.Column{colA, colB}, 0, 5)
	require.ErrorIs(t, err, ErrCapacity)

	_, err = tb.Marshal([]*batch.Column{colA, colB}, 4, 3)
	require.Error(t, err)

	require.NoError(t, tb.Free())
	require.NoError(t, tb.Free())
}

func TestSoftwareDeviceEvaluatesConjunction(t *testing.T) {
	program, colA, colB := testProgram(t,
		predicate.Condition{Column: 0, Operand: predicate.GT, Arguments: []any{int64(5)}},
		predicate.Condition{Column: 1, Operand: predicate.EQ, Arguments: []any{int64(1)}},
	)

	device, err := NewSoftwareDevice(program, 8)
	require.NoError(t, err)
	defer device.Close()

	tb, err := NewTransferBuffers(2, 8, 8)
	require.NoError(t, err)
	defer tb.Free()

	require.NoError(t, device.InitializeDevice())

	result := runBatch(t, device, tb, []*batch.Column{colA, colB}, 0, 6)
	require.Equal(t, []byte{0, 0, 0, 1, 0, 1}, result)

	// windows start at zero on the device side
	result = runBatch(t, device, tb, []*batch.Column{colA, colB}, 3, 3)
	require.Equal(t, []byte{1, 0, 1}, result)
}

func TestSoftwareDeviceStopsAfterEmptyCondition(t *testing.T) {
	program, colA, colB := testProgram(t,
		predicate.Condition{Column: 0, Operand: predicate.GT, Arguments: []any{int64(100)}},
		predicate.Condition{Column: 1, Operand: predicate.EQ, Arguments: []any{int64(1)}},
	)

	device, err := NewSoftwareDevice(program, 8)
	require.NoError(t, err)
	defer device.Close()

	tb, err := NewTransferBuffers(2, 8, 8)
	require.NoError(t, err)
	defer tb.Free()

	require.NoError(t, device.InitializeDevice())

	require.Equal(t, []byte{0, 0, 0, 0, 0, 0}, runBatch(t, device, tb, []*batch.Column{colA, colB}, 0, 6))
	require.True(t, device.merger.FullSkip())

	// the next window starts from a clean merge
	require.NoError(t, batch.Fill(colA, []int64{101, 200, 0, 300, 5, 400}))
	require.Equal(t, []byte{0, 1, 0, 1, 0, 1}, runBatch(t, device, tb, []*batch.Column{colA, colB}, 0, 6))
	require.False(t, device.merger.FullSkip())
}

func TestSoftwareDeviceWithoutConditionsPassesAll(t *testing.T) {
	program, colA, colB := testProgram(t)

	device, err := NewSoftwareDevice(program, 8)
	require.NoError(t, err)

	tb, err := NewTransferBuffers(2, 8, 8)
	require.NoError(t, err)
	defer tb.Free()

	require.NoError(t, device.InitializeDevice())
	require.Equal(t, []byte{1, 1, 1, 1, 1, 1}, runBatch(t, device, tb, []*batch.Column{colA, colB}, 0, 6))
}

func TestSoftwareDeviceCallOrder(t *testing.T) {
	program, colA, colB := testProgram(t)

	device, err := NewSoftwareDevice(program, 8)
	require.NoError(t, err)

	tb, err := NewTransferBuffers(2, 8, 8)
	require.NoError(t, err)
	defer tb.Free()

	views, err := tb.Marshal([]*batch.Column{colA, colB}, 0, 6)
	require.NoError(t, err)

	require.ErrorIs(t, device.UploadOperands(views, tb.SizeHeader, tb.CountHeader), ErrDeviceState)
	require.ErrorIs(t, device.ExecuteBatch(), ErrDeviceState)

	require.NoError(t, device.InitializeDevice())
	require.ErrorIs(t, device.InitializeDevice(), ErrDeviceState)
	require.ErrorIs(t, device.DownloadResult(tb.Result, tb.CountHeader), ErrDeviceState)

	require.NoError(t, device.UploadOperands(views, tb.SizeHeader, tb.CountHeader))
	require.ErrorIs(t, device.UploadOperands(views, tb.SizeHeader, tb.CountHeader), ErrDeviceState)

	require.NoError(t, device.Close())
	require.ErrorIs(t, device.ExecuteBatch(), ErrDeviceState)
}

func TestSoftwareDeviceRejectsOversizedUpload(t *testing.T) {
	program, colA, colB := testProgram(t)

	device, err := NewSoftwareDevice(program, 4)
	require.NoError(t, err)
	require.NoError(t, device.InitializeDevice())

	tb, err := NewTransferBuffers(2, 8, 8)
	require.NoError(t, err)
	defer tb.Free()

	views, err := tb.Marshal([]*batch.Column{colA, colB}, 0, 5)
	require.NoError(t, err)

	require.ErrorIs(t, device.UploadOperands(views, tb.SizeHeader, tb.CountHeader), ErrCapacity)

	// a size header that disagrees with the count is refused
	binary.LittleEndian.PutUint32(tb.CountHeader, 2)
	require.Error(t, device.UploadOperands(views, tb.SizeHeader, tb.CountHeader))

	_, err = NewSoftwareDevice(program, 0)
	require.Error(t, err)
	_, err = NewSoftwareDevice(program, 1<<20)
	require.Error(t, err)
}

func TestTraceReplay(t *testing.T) {
	conditions := []predicate.Condition{
		{Column: 0, Operand: predicate.RANGE, Arguments: []any{int64(5), int64(21)}},
	}
	program, colA, colB := testProgram(t, conditions...)

	software, err := NewSoftwareDevice(program, 8)
	require.NoError(t, err)

	var trace bytes.Buffer
	recorder := NewRecordingBridge(software, &trace, compression.CodecLz4)

	tb, err := NewTransferBuffers(2, 8, 8)
	require.NoError(t, err)
	defer tb.Free()

	require.NoError(t, recorder.InitializeDevice())
	require.Equal(t, []byte{0, 1, 1, 1, 1, 0}, runBatch(t, recorder, tb, []*batch.Column{colA, colB}, 0, 6))
	require.Equal(t, []byte{1, 1}, runBatch(t, recorder, tb, []*batch.Column{colA, colB}, 2, 2))
	require.NoError(t, recorder.Close())

	recorded := trace.Bytes()

	reader := NewTraceReader(bytes.NewReader(recorded))
	frame, err := reader.Next()
	require.NoError(t, err)
	require.Equal(t, UploadFrame, frame.Kind)
	require.Equal(t, 6, frame.Count)
	require.Equal(t, 48, frame.Size)
	require.Len(t, frame.Columns, 2)
	require.Equal(t, colA.Bytes(), frame.Columns[0])

	same, err := NewSoftwareDevice(program, 8)
	require.NoError(t, err)

	report, err := Replay(bytes.NewReader(recorded), same)
	require.NoError(t, err)
	require.Nil(t, report.Mismatch)
	require.Equal(t, 2, report.Batches)
	require.Equal(t, 8, report.Records)

	other, _, _ := testProgram(t, predicate.Condition{Column: 0, Operand: predicate.GT, Arguments: []any{int64(12)}})
	different, err := NewSoftwareDevice(other, 8)
	require.NoError(t, err)

	report, err = Replay(bytes.NewReader(recorded), different)
	require.NoError(t, err)
	require.NotNil(t, report.Mismatch)
	require.Equal(t, 0, report.Mismatch.Batch)
	require.Equal(t, 1, report.Mismatch.Record)
	require.True(t, report.Mismatch.Recorded)
	require.False(t, report.Mismatch.Replayed)
	require.Equal(t, []uint32{1, 2, 5}, report.Mismatch.Diverged.ToArray())
}

func TestTraceCodecs(t *testing.T) {
	program, colA, colB := testProgram(t, predicate.Condition{Column: 1, Operand: predicate.EQ, Arguments: []any{int64(1)}})

	for _, codec := range []compression.Codec{compression.CodecNone, compression.CodecSnappy, compression.CodecZstd} {
		software, err := NewSoftwareDevice(program, 8)
		require.NoError(t, err)

		var trace bytes.Buffer
		recorder := NewRecordingBridge(software, &trace, codec)

		tb, err := NewTransferBuffers(2, 8, 8)
		require.NoError(t, err)

		require.NoError(t, recorder.InitializeDevice())
		require.Equal(t, []byte{0, 1, 0, 1, 0, 1}, runBatch(t, recorder, tb, []*batch.Column{colA, colB}, 0, 6))
		require.NoError(t, tb.Free())

		reader := NewTraceReader(bytes.NewReader(trace.Bytes()))
		upload, err := reader.Next()
		require.NoError(t, err)
		require.Equal(t, codec, reader.Codec())
		require.Equal(t, colB.Bytes(), upload.Columns[1])

		result, err := reader.Next()
		require.NoError(t, err)
		require.Equal(t, []byte{0, 1, 0, 1, 0, 1}, result.Result)

		_, err = reader.Next()
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestTraceReaderRejectsForeignInput(t *testing.T) {
	_, err := NewTraceReader(bytes.NewReader(nil)).Next()
	require.ErrorIs(t, err, io.EOF)

	_, err = NewTraceReader(bytes.NewReader([]byte("not a trace"))).Next()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}

func TestOpenPicksSoftwareDevice(t *testing.T) {
	program, _, _ := testProgram(t)

	device, err := Open(Options{Capacity: 16}, program)
	require.NoError(t, err)
	require.IsType(t, &SoftwareDevice{}, device)

	var trace bytes.Buffer
	device, err = Open(Options{Capacity: 16, Trace: &trace}, program)
	require.NoError(t, err)
	require.IsType(t, &RecordingBridge{}, device)

	_, err = Open(Options{Capacity: 0}, program)
	require.Error(t, err)
}
