//go:build !(darwin || linux)

package offload

import (
	"errors"
	"runtime"
)

var errNoNativeLoader = errors.New("native offload is not supported on " + runtime.GOOS)

func openLibrary(path string) (*library, error) {
	return nil, errNoNativeLoader
}

func closeLibrary(lib *library) error {
	return nil
}

type NativeDevice struct{}

func OpenNative(path string, capacity int) (*NativeDevice, error) {
	return nil, errNoNativeLoader
}

func (d *NativeDevice) InitializeDevice() error { return errNoNativeLoader }

func (d *NativeDevice) UploadOperands(columns [][]byte, sizeHeader, countHeader []byte) error {
	return errNoNativeLoader
}

func (d *NativeDevice) ExecuteBatch() error { return errNoNativeLoader }

func (d *NativeDevice) DownloadResult(result []byte, countHeader []byte) error {
	return errNoNativeLoader
}

func (d *NativeDevice) Close() error { return nil }
