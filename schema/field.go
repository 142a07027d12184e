package schema

import "github.com/google/uuid"

type Field struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

func NewField(name string, typ FieldType) Field {
	return Field{
		Id:   uuid.New(),
		Name: name,
		Type: typ,
	}
}

func (f Field) String() string {
	return f.Name + "[" + f.Type.String() + "]"
}
