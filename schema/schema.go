package schema

type Schema struct {
	Name   string              `json:"name"`
	Fields []Field             `json:"fields"`
	Mode   SelectionVectorMode `json:"mode"`
}
