//go:build darwin || linux

package offload

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/dot5enko/offload-filter/bits"
	"github.com/ebitengine/purego"
)

func openLibrary(path string) (*library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}

	lib := &library{path: path, handle: handle}

	register := func(fptr any, name string) error {
		sym, symErr := purego.Dlsym(handle, name)
		if symErr != nil {
			return fmt.Errorf("symbol %s: %w", name, symErr)
		}
		purego.RegisterFunc(fptr, sym)
		return nil
	}

	for _, entry := range []struct {
		fptr any
		name string
	}{
		{&lib.initDevice, symInitDevice},
		{&lib.writeData, symWriteData},
		{&lib.executeDevice, symExecuteDevice},
		{&lib.readResult, symReadResult},
	} {
		if err := register(entry.fptr, entry.name); err != nil {
			purego.Dlclose(handle)
			return nil, err
		}
	}

	return lib, nil
}

func closeLibrary(lib *library) error {
	return purego.Dlclose(lib.handle)
}

// NativeDevice forwards the bridge calls to an accelerator library. Buffers
// handed to it must live outside the Go heap, which TransferBuffers
// guarantees on this platform.
type NativeDevice struct {
	path     string
	capacity int

	lib   *library
	state deviceState

	columnPointers []uintptr
}

// OpenNative prepares a device backed by the library at path. The library
// itself is loaded on InitializeDevice.
func OpenNative(path string, capacity int) (*NativeDevice, error) {
	if path == "" {
		return nil, fmt.Errorf("native device needs a library path")
	}

	if capacity <= 0 {
		return nil, fmt.Errorf("native device capacity %d must be positive", capacity)
	}

	return &NativeDevice{path: path, capacity: capacity}, nil
}

func (d *NativeDevice) expect(call string, states ...deviceState) error {
	for _, s := range states {
		if d.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s while device is %s", ErrDeviceState, call, d.state.String())
}

func (d *NativeDevice) InitializeDevice() error {
	if err := d.expect("initialize", stateCreated); err != nil {
		return err
	}

	lib, err := acquireLibrary(d.path)
	if err != nil {
		return err
	}
	d.lib = lib

	if rc := lib.initDevice(); rc != 0 {
		return fmt.Errorf("%s returned %d", symInitDevice, rc)
	}

	d.state = stateReady

	return nil
}

func (d *NativeDevice) UploadOperands(columns [][]byte, sizeHeader, countHeader []byte) error {
	if err := d.expect("upload", stateReady); err != nil {
		return err
	}

	if len(columns) == 0 {
		return fmt.Errorf("no operand columns to upload")
	}

	if len(sizeHeader) < HeaderSize || len(countHeader) < HeaderSize {
		return fmt.Errorf("headers must be %d bytes", HeaderSize)
	}

	d.columnPointers = d.columnPointers[:0]
	for idx, col := range columns {
		if len(col) == 0 {
			return fmt.Errorf("operand column %d is empty", idx)
		}
		d.columnPointers = append(d.columnPointers, uintptr(unsafe.Pointer(&col[0])))
	}

	if rc := d.lib.writeData(&d.columnPointers[0], int32(len(columns)), &sizeHeader[0], &countHeader[0]); rc != 0 {
		return fmt.Errorf("%s returned %d", symWriteData, rc)
	}

	d.state = stateUploaded

	return nil
}

func (d *NativeDevice) ExecuteBatch() error {
	if err := d.expect("execute", stateUploaded); err != nil {
		return err
	}

	if rc := d.lib.executeDevice(); rc != 0 {
		return fmt.Errorf("%s returned %d", symExecuteDevice, rc)
	}

	d.state = stateExecuted

	return nil
}

func (d *NativeDevice) DownloadResult(result []byte, countHeader []byte) error {
	if err := d.expect("download", stateExecuted); err != nil {
		return err
	}

	if len(countHeader) < HeaderSize {
		return fmt.Errorf("count header must be %d bytes", HeaderSize)
	}

	count := int(bits.ReadI32At(countHeader, binary.LittleEndian))
	if count <= 0 || count > len(result) || count > d.capacity {
		return fmt.Errorf("%w: %d records, result buffer %d, capacity %d", ErrCapacity, count, len(result), d.capacity)
	}

	if rc := d.lib.readResult(&result[0], &countHeader[0]); rc != 0 {
		return fmt.Errorf("%s returned %d", symReadResult, rc)
	}

	d.state = stateReady

	return nil
}

func (d *NativeDevice) Close() error {
	if d.state == stateClosed {
		return nil
	}

	d.state = stateClosed

	if d.lib == nil {
		return nil
	}

	lib := d.lib
	d.lib = nil

	return releaseLibrary(lib)
}
