package offload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dot5enko/offload-filter/bits"
	"github.com/dot5enko/offload-filter/compression"
)

// traceMagic opens every trace, followed by the codec of its frames.
var traceMagic = [4]byte{'O', 'F', 'T', 'R'}

type FrameKind uint8

const (
	UploadFrame FrameKind = 'U'
	ResultFrame FrameKind = 'R'
)

// TraceFrame is one recorded device exchange. Upload frames carry the
// operand columns, result frames the downloaded bytes.
type TraceFrame struct {
	Kind  FrameKind
	Count int

	Size    int
	Columns [][]byte

	Result []byte
}

// RecordingBridge passes every call to the wrapped device and appends the
// compressed operands and results to a trace.
type RecordingBridge struct {
	inner Bridge
	w     io.Writer
	codec compression.Codec

	headerWritten bool

	frame      bits.BitWriter
	compressed bytes.Buffer

	count int
}

func NewRecordingBridge(inner Bridge, w io.Writer, codec compression.Codec) *RecordingBridge {
	frame := bits.NewEncodeBuffer(make([]byte, 1024), binary.LittleEndian)
	frame.EnableGrowing()

	return &RecordingBridge{
		inner: inner,
		w:     w,
		codec: codec,
		frame: frame,
	}
}

func (r *RecordingBridge) InitializeDevice() error {
	return r.inner.InitializeDevice()
}

func (r *RecordingBridge) putCompressed(raw []byte) error {
	r.compressed.Reset()

	if err := compression.Compress(r.codec, raw, &r.compressed); err != nil {
		return err
	}

	r.frame.PutUint32(uint32(r.compressed.Len()))
	_, err := r.frame.Write(r.compressed.Bytes())

	return err
}

func (r *RecordingBridge) flush() error {
	if !r.headerWritten {
		header := append(traceMagic[:], byte(r.codec))
		if _, err := r.w.Write(header); err != nil {
			return fmt.Errorf("unable to write offload trace: %w", err)
		}
		r.headerWritten = true
	}

	_, err := r.w.Write(r.frame.Bytes())
	r.frame.Reset()

	if err != nil {
		return fmt.Errorf("unable to write offload trace: %w", err)
	}
	return nil
}

func (r *RecordingBridge) UploadOperands(columns [][]byte, sizeHeader, countHeader []byte) error {
	if err := r.inner.UploadOperands(columns, sizeHeader, countHeader); err != nil {
		return err
	}

	count := int(bits.ReadI32At(countHeader, binary.LittleEndian))
	size := int(bits.ReadI32At(sizeHeader, binary.LittleEndian))
	r.count = count

	r.frame.Reset()
	r.frame.PutUint8(uint8(UploadFrame))
	r.frame.PutUint32(uint32(count))
	r.frame.PutUint32(uint32(size))
	r.frame.PutUint16(uint16(len(columns)))

	for _, col := range columns {
		if err := r.putCompressed(col[:size]); err != nil {
			return err
		}
	}

	return r.flush()
}

func (r *RecordingBridge) ExecuteBatch() error {
	return r.inner.ExecuteBatch()
}

func (r *RecordingBridge) DownloadResult(result []byte, countHeader []byte) error {
	if err := r.inner.DownloadResult(result, countHeader); err != nil {
		return err
	}

	r.frame.Reset()
	r.frame.PutUint8(uint8(ResultFrame))
	r.frame.PutUint32(uint32(r.count))

	if err := r.putCompressed(result[:r.count]); err != nil {
		return err
	}

	return r.flush()
}

func (r *RecordingBridge) Close() error {
	err := r.inner.Close()

	if closer, ok := r.w.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}

	return err
}

type TraceReader struct {
	reader *bits.BitsReader
	buf    []byte

	codec      compression.Codec
	headerRead bool
}

func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{reader: bits.NewReader(r, binary.LittleEndian)}
}

func (t *TraceReader) readCompressed(rawSize int) ([]byte, error) {
	clen, err := t.reader.ReadU32()
	if err != nil {
		return nil, err
	}

	if cap(t.buf) < int(clen) {
		t.buf = make([]byte, clen)
	}
	compressed := t.buf[:clen]

	if err := t.reader.ReadBytes(int(clen), compressed); err != nil {
		return nil, err
	}

	out := make([]byte, rawSize)
	if rawSize == 0 {
		return out, nil
	}

	if err := compression.Decompress(t.codec, compressed, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (t *TraceReader) readHeader() error {
	var magic [4]byte

	if err := t.reader.ReadBytes(len(magic), magic[:]); err != nil {
		if errors.Is(err, bits.ErrReadMismatch) {
			return io.EOF
		}
		return err
	}

	if magic != traceMagic {
		return fmt.Errorf("not an offload trace: magic %v", magic)
	}

	codec, err := t.reader.ReadU8()
	if err != nil {
		return fmt.Errorf("truncated trace header: %w", err)
	}

	t.codec = compression.Codec(codec)
	t.headerRead = true

	return nil
}

// Codec is the compression of the frames. It is known after the first Next.
func (t *TraceReader) Codec() compression.Codec {
	return t.codec
}

// Next returns the following frame or io.EOF at the end of the trace.
func (t *TraceReader) Next() (*TraceFrame, error) {
	if !t.headerRead {
		if err := t.readHeader(); err != nil {
			return nil, err
		}
	}

	kind, err := t.reader.ReadU8()
	if err != nil {
		if errors.Is(err, bits.ErrEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	count, err := t.reader.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("truncated trace frame: %w", err)
	}

	frame := &TraceFrame{Kind: FrameKind(kind), Count: int(count)}

	switch frame.Kind {
	case UploadFrame:
		size, err := t.reader.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("truncated upload frame: %w", err)
		}
		ncols, err := t.reader.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("truncated upload frame: %w", err)
		}

		frame.Size = int(size)
		frame.Columns = make([][]byte, ncols)

		for idx := range frame.Columns {
			frame.Columns[idx], err = t.readCompressed(frame.Size)
			if err != nil {
				return nil, fmt.Errorf("upload frame column %d: %w", idx, err)
			}
		}
	case ResultFrame:
		frame.Result, err = t.readCompressed(frame.Count)
		if err != nil {
			return nil, fmt.Errorf("result frame: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown trace frame kind %q", kind)
	}

	return frame, nil
}

// Mismatch describes the first batch whose replayed result diverges.
type Mismatch struct {
	Batch  int
	Record int

	Recorded bool
	Replayed bool

	// Diverged holds every diverging record of the batch
	Diverged *roaring.Bitmap
}

type ReplayReport struct {
	Batches  int
	Records  int
	Mismatch *Mismatch
}

// Replay feeds a recorded trace to device and compares its answers with the
// recorded ones. It stops after the first diverging batch.
func Replay(trace io.Reader, device Bridge) (ReplayReport, error) {
	report := ReplayReport{}

	if err := device.InitializeDevice(); err != nil {
		return report, err
	}

	reader := NewTraceReader(trace)

	sizeHeader := make([]byte, HeaderSize)
	countHeader := make([]byte, HeaderSize)

	for {
		upload, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return report, err
		}

		if upload.Kind != UploadFrame {
			return report, fmt.Errorf("batch %d: expected upload frame, got %q", report.Batches, upload.Kind)
		}

		binary.LittleEndian.PutUint32(countHeader, uint32(upload.Count))
		binary.LittleEndian.PutUint32(sizeHeader, uint32(upload.Size))

		if err := device.UploadOperands(upload.Columns, sizeHeader, countHeader); err != nil {
			return report, err
		}
		if err := device.ExecuteBatch(); err != nil {
			return report, err
		}

		recorded, err := reader.Next()
		if err != nil {
			return report, fmt.Errorf("batch %d: missing result frame: %w", report.Batches, err)
		}
		if recorded.Kind != ResultFrame || recorded.Count != upload.Count {
			return report, fmt.Errorf("batch %d: result frame does not follow its upload", report.Batches)
		}

		replayed := make([]byte, upload.Count)
		if err := device.DownloadResult(replayed, countHeader); err != nil {
			return report, err
		}

		diverged := roaring.New()
		for i := range replayed {
			if (replayed[i] != 0) != (recorded.Result[i] != 0) {
				diverged.Add(uint32(i))
			}
		}

		if !diverged.IsEmpty() {
			first := int(diverged.Minimum())

			report.Mismatch = &Mismatch{
				Batch:    report.Batches,
				Record:   first,
				Recorded: recorded.Result[first] != 0,
				Replayed: replayed[first] != 0,
				Diverged: diverged,
			}
			return report, nil
		}

		report.Batches++
		report.Records += upload.Count
	}
}
