package io

import (
	"log"
	"os"

	"github.com/dot5enko/offload-filter/batch"
)

// DumpColumn writes the raw memory of a column to path, replacing the file.
func DumpColumn(path string, col *batch.Column) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	var writtenBytes int
	writtenBytes, err = f.Write(col.Bytes())

	log.Printf("written %d bytes of %s @ %s", writtenBytes, col.Field.String(), path)

	return err
}
