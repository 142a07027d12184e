package fragment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dot5enko/offload-filter/compression"
	"github.com/dot5enko/offload-filter/selection"
)

const DefaultResultBufferCapacity = 8192

type Config struct {
	// ResultBufferCapacity is the largest batch a device call may carry.
	ResultBufferCapacity int `json:"result_buffer_capacity"`
	// ChunkOversizedBatches splits batches above the capacity into several
	// device calls instead of failing them.
	ChunkOversizedBatches bool `json:"chunk_oversized_batches"`

	DeviceLibraryPath string `json:"device_library_path"`
	DebugDumpPayload  bool   `json:"debug_dump_payload"`

	// trace compression is one of lz4, snappy, zstd or none
	TracePath        string `json:"trace_path"`
	TraceCompression string `json:"trace_compression"`

	// MemoryLimit caps selection vector memory, in bytes. Zero is unlimited.
	MemoryLimit int64 `json:"memory_limit"`
}

func DefaultConfig() Config {
	return Config{
		ResultBufferCapacity: DefaultResultBufferCapacity,
		TraceCompression:     compression.CodecLz4.String(),
	}
}

func (c Config) Validate() error {
	// a device call never carries more than one selection vector can list
	if c.ResultBufferCapacity <= 0 || c.ResultBufferCapacity > selection.MaxRecordCount {
		return fmt.Errorf("result_buffer_capacity %d out of range (0, %d]", c.ResultBufferCapacity, selection.MaxRecordCount)
	}

	if _, err := compression.ParseCodec(c.TraceCompression); err != nil {
		return err
	}

	if c.MemoryLimit < 0 {
		return fmt.Errorf("memory_limit %d must not be negative", c.MemoryLimit)
	}

	return nil
}

// LoadConfig reads a json config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}
