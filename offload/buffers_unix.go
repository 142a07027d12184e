//go:build unix

package offload

import "golang.org/x/sys/unix"

// transfer buffers live outside the Go heap so a native device may keep
// raw pointers to them for the duration of a call
func allocRegion(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func freeRegion(region []byte) error {
	return unix.Munmap(region)
}
