package offload

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Native entry points exported by an accelerator library. Each returns zero
// on success.
const (
	symInitDevice    = "offload_init_device"
	symWriteData     = "offload_write_data"
	symExecuteDevice = "offload_execute_device"
	symReadResult    = "offload_read_result"
)

type library struct {
	path   string
	handle uintptr
	refs   int

	initDevice    func() int32
	writeData     func(columns *uintptr, ncolumns int32, dataSize *byte, recordCount *byte) int32
	executeDevice func() int32
	readResult    func(result *byte, recordCount *byte) int32
}

// libraries are loaded once per path and shared; every device holds a
// reference and the last one to close unloads the library.
var libraries = struct {
	sync.Mutex
	loaded map[string]*library
	group  singleflight.Group
}{
	loaded: map[string]*library{},
}

func acquireLibrary(path string) (*library, error) {
	libraries.Lock()
	if lib, ok := libraries.loaded[path]; ok {
		lib.refs++
		libraries.Unlock()
		return lib, nil
	}
	libraries.Unlock()

	loaded, err, _ := libraries.group.Do(path, func() (any, error) {
		libraries.Lock()
		if lib, ok := libraries.loaded[path]; ok {
			libraries.Unlock()
			return lib, nil
		}
		libraries.Unlock()

		lib, err := openLibrary(path)
		if err != nil {
			return nil, err
		}

		slog.Info("offload library loaded", "path", path)

		libraries.Lock()
		libraries.loaded[path] = lib
		libraries.Unlock()

		return lib, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load offload library %s: %w", path, err)
	}

	lib := loaded.(*library)

	libraries.Lock()
	lib.refs++
	libraries.Unlock()

	return lib, nil
}

func releaseLibrary(lib *library) error {
	libraries.Lock()
	defer libraries.Unlock()

	lib.refs--
	if lib.refs > 0 {
		return nil
	}

	delete(libraries.loaded, lib.path)

	slog.Info("offload library unloaded", "path", lib.path)

	return closeLibrary(lib)
}
