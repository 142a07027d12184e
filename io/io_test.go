package io

import (
	"path/filepath"
	"testing"

	"github.com/dot5enko/offload-filter/batch"
	"github.com/dot5enko/offload-filter/schema"
)

func TestDumpAndLoadColumn(t *testing.T) {
	field := schema.NewField("value", schema.Float64FieldType)

	col, err := batch.NewColumn(field, []float64{1.5, -2, 0, 1e9})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "value.bin")

	if err := DumpColumn(path, col); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadColumn[float64](path, field, 4)
	if err != nil {
		t.Fatal(err)
	}

	values, _ := batch.Values[float64](loaded)
	if len(values) != 4 || values[0] != 1.5 || values[3] != 1e9 {
		t.Errorf("loaded values differ: %v", values)
	}

	if _, err := LoadColumn[float64](path, field, 5); err == nil {
		t.Errorf("reading past the end of the file must fail")
	}

	if _, err := LoadColumn[int64](path, field, 4); err == nil {
		t.Errorf("loading with a mismatching type must fail")
	}

	if _, err := LoadColumn[float64](filepath.Join(t.TempDir(), "missing"), field, 1); err == nil {
		t.Errorf("missing file must fail")
	}
}
