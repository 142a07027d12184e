package offload

import "errors"

// HeaderSize is the width of the record count and byte size headers.
const HeaderSize = 4

var (
	ErrDeviceState = errors.New("device call out of order")
	ErrCapacity    = errors.New("batch exceeds device buffer capacity")
)

// Bridge is a synchronous accelerator owned by a single filter. Calls are
// blocking and must follow InitializeDevice once, then UploadOperands,
// ExecuteBatch and DownloadResult for every batch. Any error is final for
// the batch; there is no partial result.
type Bridge interface {
	InitializeDevice() error
	// columns hold one equal length buffer per bound column. sizeHeader
	// carries the byte length of each buffer and countHeader the number of
	// records, both 4 byte little endian.
	UploadOperands(columns [][]byte, sizeHeader, countHeader []byte) error
	ExecuteBatch() error
	// DownloadResult writes one byte per record into result, nonzero when
	// the record passed.
	DownloadResult(result []byte, countHeader []byte) error
	Close() error
}

type deviceState uint8

const (
	stateCreated deviceState = iota
	stateReady
	stateUploaded
	stateExecuted
	stateClosed
)

func (s deviceState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateReady:
		return "ready"
	case stateUploaded:
		return "uploaded"
	case stateExecuted:
		return "executed"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
