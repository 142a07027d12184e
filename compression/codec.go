package compression

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

type Codec uint8

const (
	CodecNone   Codec = 0
	CodecSnappy Codec = 2
	CodecZstd   Codec = 3
	CodecLz4    Codec = 4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecSnappy:
		return "snappy"
	case CodecZstd:
		return "zstd"
	case CodecLz4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

func ParseCodec(name string) (Codec, error) {
	switch name {
	case "none":
		return CodecNone, nil
	case "snappy":
		return CodecSnappy, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4", "":
		return CodecLz4, nil
	default:
		return CodecNone, fmt.Errorf("unknown compression codec %q", name)
	}
}

// zstd coders are safe for concurrent EncodeAll/DecodeAll and costly to
// create, so one pair is shared.
var zstdCoders = sync.OnceValues(func() (*zstdPair, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &zstdPair{encoder: encoder, decoder: decoder}, nil
})

type zstdPair struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Compress appends the compressed form of src to output.
func Compress(codec Codec, src []byte, output *bytes.Buffer) error {
	switch codec {
	case CodecNone:
		_, err := output.Write(src)
		return err
	case CodecLz4:
		return CompressLz4(src, output)
	case CodecSnappy:
		_, err := output.Write(snappy.Encode(nil, src))
		return err
	case CodecZstd:
		coders, err := zstdCoders()
		if err != nil {
			return err
		}
		_, err = output.Write(coders.encoder.EncodeAll(src, nil))
		return err
	default:
		return fmt.Errorf("unknown compression codec %s", codec.String())
	}
}

// Decompress inflates src into out, which must be exactly the size of the
// original data.
func Decompress(codec Codec, src []byte, out []byte) error {
	var (
		decoded []byte
		err     error
	)

	switch codec {
	case CodecNone:
		decoded = src
	case CodecLz4:
		return DecompressLz4(src, out)
	case CodecSnappy:
		decoded, err = snappy.Decode(nil, src)
	case CodecZstd:
		coders, coderErr := zstdCoders()
		if coderErr != nil {
			return coderErr
		}
		decoded, err = coders.decoder.DecodeAll(src, nil)
	default:
		return fmt.Errorf("unknown compression codec %s", codec.String())
	}

	if err != nil {
		return fmt.Errorf("unable to decompress %s frame: %w", codec.String(), err)
	}

	if len(decoded) != len(out) {
		return fmt.Errorf("%s frame size mismatch: %d != %d", codec.String(), len(decoded), len(out))
	}

	copy(out, decoded)

	return nil
}
