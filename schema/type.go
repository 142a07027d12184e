package schema

type FieldType uint8

const (
	Int8FieldType FieldType = iota
	Int16FieldType
	Int32FieldType
	Int64FieldType

	Float64FieldType
	Float32FieldType

	Uint64FieldType
	Uint8FieldType
	Uint32FieldType
	Uint16FieldType
)

func (f FieldType) String() string {
	switch f {
	case Int8FieldType:
		return "Int8"
	case Int16FieldType:
		return "Int16"
	case Int32FieldType:
		return "Int32"
	case Int64FieldType:
		return "Int64"
	case Float64FieldType:
		return "Float64"
	case Float32FieldType:
		return "Float32"
	case Uint64FieldType:
		return "Uint64"
	case Uint8FieldType:
		return "Uint8"
	case Uint32FieldType:
		return "Uint32"
	case Uint16FieldType:
		return "Uint16"
	default:
		return ""

	}
}

// Size is the fixed width of a single value in bytes.
func (f FieldType) Size() int {
	switch f {

	case Int8FieldType, Uint8FieldType:
		return 1
	case Int16FieldType, Uint16FieldType:
		return 2
	case Int32FieldType, Float32FieldType, Uint32FieldType:
		return 4
	case Int64FieldType, Float64FieldType, Uint64FieldType:
		return 8

	default:
		panic("unknown field type " + f.String())
	}
}

func (f FieldType) Valid() bool {
	return f <= Uint16FieldType
}

func (f FieldType) IsInteger() bool {
	switch f {
	case Float32FieldType, Float64FieldType:
		return false
	default:
		return f.Valid()
	}
}

// FieldTypeOf maps a Go value to the field type storing it.
func FieldTypeOf(v any) (FieldType, bool) {
	switch v.(type) {
	case int8:
		return Int8FieldType, true
	case int16:
		return Int16FieldType, true
	case int32:
		return Int32FieldType, true
	case int64:
		return Int64FieldType, true
	case uint8:
		return Uint8FieldType, true
	case uint16:
		return Uint16FieldType, true
	case uint32:
		return Uint32FieldType, true
	case uint64:
		return Uint64FieldType, true
	case float32:
		return Float32FieldType, true
	case float64:
		return Float64FieldType, true
	default:
		return 0, false
	}
}
