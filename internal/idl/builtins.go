package idl

// BaseTypes are the scalar keywords of the unified model.
var BaseTypes = map[string]bool{
	"byte":   true,
	"i8":     true,
	"i16":    true,
	"i32":    true,
	"i64":    true,
	"double": true,
	"binary": true,
	"string": true,
	"bool":   true,
}

// ProtobufScalars maps proto scalar keywords onto the unified base keywords.
var ProtobufScalars = map[string]string{
	"double":   "double",
	"float":    "double",
	"int32":    "i32",
	"sint32":   "i32",
	"sfixed32": "i32",
	"uint32":   "i32",
	"fixed32":  "i32",
	"int64":    "i64",
	"sint64":   "i64",
	"sfixed64": "i64",
	"uint64":   "i64",
	"fixed64":  "i64",
	"bool":     "bool",
	"string":   "string",
	"bytes":    "binary",
}

// NewBaseType returns a FieldType for a scalar keyword, translating proto
// scalars when needed. The boolean is false for non-scalar names.
func NewBaseType(name string) (*FieldType, bool) {
	if BaseTypes[name] {
		return &FieldType{Kind: FieldTypeBase, Name: name}, true
	}
	if v, ok := ProtobufScalars[name]; ok {
		return &FieldType{Kind: FieldTypeBase, Name: v}, true
	}
	return nil, false
}
