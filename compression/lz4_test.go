package compression

import (
	"bytes"
	"testing"
)

func TestLz4RoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte{1, 2, 3, 4, 0, 0, 0, 0}, 512)

	var compressed bytes.Buffer
	if err := CompressLz4(src, &compressed); err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	out := make([]byte, len(src))
	if err := DecompressLz4(compressed.Bytes(), out); err != nil {
		t.Fatalf("decompress failed: %v", err)
	}

	if !bytes.Equal(src, out) {
		t.Errorf("round trip mismatch")
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte{9, 0, 0, 0, 0, 0, 0, 1}, 700)

	for _, codec := range []Codec{CodecNone, CodecSnappy, CodecZstd, CodecLz4} {
		var compressed bytes.Buffer
		if err := Compress(codec, src, &compressed); err != nil {
			t.Fatalf("%s compress failed: %v", codec.String(), err)
		}

		out := make([]byte, len(src))
		if err := Decompress(codec, compressed.Bytes(), out); err != nil {
			t.Fatalf("%s decompress failed: %v", codec.String(), err)
		}

		if !bytes.Equal(src, out) {
			t.Errorf("%s round trip mismatch", codec.String())
		}

		short := make([]byte, len(src)-1)
		if err := Decompress(codec, compressed.Bytes(), short); err == nil {
			t.Errorf("%s must reject a wrong output size", codec.String())
		}
	}
}

func TestParseCodec(t *testing.T) {
	for name, expected := range map[string]Codec{"": CodecLz4, "lz4": CodecLz4, "zstd": CodecZstd, "snappy": CodecSnappy, "none": CodecNone} {
		codec, err := ParseCodec(name)
		if err != nil || codec != expected {
			t.Errorf("%q parsed as %s (%v)", name, codec.String(), err)
		}
	}

	if _, err := ParseCodec("gzip"); err == nil {
		t.Errorf("unknown codec must fail")
	}
}
