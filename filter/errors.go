package filter

import "errors"

var (
	ErrUnsupportedRepresentation = errors.New("unsupported selection vector representation")
	ErrAllocationFailure         = errors.New("unable to allocate selection vector")
	ErrDeviceFailure             = errors.New("offload device failure")
	ErrBatchTooLarge             = errors.New("batch exceeds device result buffer capacity")
)
