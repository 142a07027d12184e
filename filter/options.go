package filter

import (
	"fmt"
	"io"
	"os"

	"github.com/dot5enko/offload-filter/compression"
	"github.com/dot5enko/offload-filter/fragment"
	"github.com/dot5enko/offload-filter/offload"
	"github.com/dot5enko/offload-filter/predicate"
)

// DeviceOpener creates the bridge a filter offloads its program to. The
// filter owns the returned bridge and closes it on Close.
type DeviceOpener func(cfg fragment.Config, program *predicate.Program) (offload.Bridge, error)

type Option func(f *Filterer)

// WithDeviceProgram makes dense batches go through an offload device
// running program.
func WithDeviceProgram(program *predicate.Program) Option {
	return func(f *Filterer) {
		f.program = program
	}
}

func WithDeviceOpener(opener DeviceOpener) Option {
	return func(f *Filterer) {
		f.opener = opener
	}
}

func openDevice(cfg fragment.Config, program *predicate.Program) (offload.Bridge, error) {
	opts := offload.Options{
		Capacity:    cfg.ResultBufferCapacity,
		LibraryPath: cfg.DeviceLibraryPath,
	}

	var trace io.WriteCloser

	if cfg.TracePath != "" {
		codec, err := compression.ParseCodec(cfg.TraceCompression)
		if err != nil {
			return nil, err
		}
		opts.TraceCodec = codec

		file, err := os.OpenFile(cfg.TracePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to create offload trace %s: %w", cfg.TracePath, err)
		}
		trace = file
		opts.Trace = file
	}

	bridge, err := offload.Open(opts, program)
	if err != nil {
		if trace != nil {
			trace.Close()
		}
		return nil, err
	}

	return bridge, nil
}
