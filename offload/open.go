package offload

import (
	"io"
	"log/slog"

	"github.com/dot5enko/offload-filter/compression"
	"github.com/dot5enko/offload-filter/predicate"
)

type Options struct {
	Capacity    int
	LibraryPath string

	// Trace receives a recording of every exchange when set
	Trace      io.Writer
	TraceCodec compression.Codec
}

// Open returns the device a filter offloads program to: the native library
// when a path is given, the software device otherwise.
func Open(opts Options, program *predicate.Program) (Bridge, error) {
	var (
		device Bridge
		err    error
	)

	if opts.LibraryPath != "" {
		device, err = OpenNative(opts.LibraryPath, opts.Capacity)
		if err != nil {
			return nil, err
		}
		slog.Info("offload device selected", "kind", "native", "library", opts.LibraryPath, "capacity", opts.Capacity)
	} else {
		device, err = NewSoftwareDevice(program, opts.Capacity)
		if err != nil {
			return nil, err
		}
		slog.Info("offload device selected", "kind", "software", "capacity", opts.Capacity)
	}

	if opts.Trace != nil {
		device = NewRecordingBridge(device, opts.Trace, opts.TraceCodec)
	}

	return device, nil
}
