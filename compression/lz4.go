package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	_, writeErr := zw.Write(src)
	if writeErr != nil {
		return writeErr
	}

	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 inflates a frame produced by CompressLz4 into out, which must
// be exactly the size of the original data.
func DecompressLz4(src []byte, out []byte) error {
	zr := lz4.NewReader(bytes.NewReader(src))

	readBytes, err := io.ReadFull(zr, out)
	if err != nil {
		return fmt.Errorf("unable to decompress lz4 frame: %w", err)
	}

	if readBytes != len(out) {
		return fmt.Errorf("lz4 frame size mismatch: %d != %d", readBytes, len(out))
	}

	var extra [1]byte
	if n, _ := zr.Read(extra[:]); n != 0 {
		return fmt.Errorf("lz4 frame holds more than %d bytes", len(out))
	}

	return nil
}
