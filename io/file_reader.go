package io

import (
	"errors"
	"fmt"
	"os"

	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/bits"
	"github.com/dot5enko/offload-filter/schema"
)

type FileReader struct {
	path   string
	file   *os.File
	opened bool

	exists bool
}

func NewFileReader(path string) *FileReader {

	_, err := os.Stat(path)

	freader := &FileReader{
		path:   path,
		exists: err == nil,
	}

	return freader
}

func (f *FileReader) Exists() bool {
	return f.exists
}

func (f *FileReader) Open() (topErr error) {

	f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, 0644)

	if topErr == nil {
		f.opened = true
	}

	return topErr
}

func (f *FileReader) Close() error {
	if f.opened == false {
		return nil
	}

	f.opened = false

	return f.file.Close()
}

func (f *FileReader) ReadAt(out []byte, off int) (err error) {
	if f.opened == false {
		err = errors.New("file not opened")
		return err
	}

	var readBytes int
	readBytes, err = f.file.ReadAt(out, int64(off))

	if readBytes != len(out) {
		return fmt.Errorf("read bytes mismatch: %d of %d: %v", readBytes, len(out), err)
	}

	return nil
}

// LoadColumn reads items values of field from a file written by DumpColumn.
func LoadColumn[T bits.FixedWidth](path string, field schema.Field, items int) (*batch.Column, error) {

	reader := NewFileReader(path)
	if !reader.Exists() {
		return nil, fmt.Errorf("column file %s does not exist", path)
	}

	if err := reader.Open(); err != nil {
		return nil, err
	}
	defer reader.Close()

	values := make([]T, items)

	if err := reader.ReadAt(bits.SliceAsBytes(values), 0); err != nil {
		return nil, fmt.Errorf("unable to load column %s: %w", field.String(), err)
	}

	return batch.NewColumn(field, values)
}
