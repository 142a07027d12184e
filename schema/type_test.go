package schema

import "testing"

func TestIsInteger(t *testing.T) {
	integers := []FieldType{
		Int8FieldType, Int16FieldType, Int32FieldType, Int64FieldType,
		Uint8FieldType, Uint16FieldType, Uint32FieldType, Uint64FieldType,
	}

	for _, typ := range integers {
		if !typ.IsInteger() {
			t.Errorf("%s should be an integer type", typ.String())
		}
	}

	for _, typ := range []FieldType{Float32FieldType, Float64FieldType, FieldType(200)} {
		if typ.IsInteger() {
			t.Errorf("%d should not be an integer type", typ)
		}
	}
}
