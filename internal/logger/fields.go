package logger

// Standard field names so log lines can be filtered the same way everywhere.
const (
	FieldFile     = "file"
	FieldInclude  = "include"
	FieldDialect  = "dialect"
	FieldEntry    = "entry"
	FieldPlugin   = "plugin"
	FieldHook     = "hook"
	FieldService  = "service"
	FieldFunction = "function"
	FieldField    = "field"
	FieldOutput   = "output"
	FieldCount    = "count"
	FieldError    = "error"
	FieldPath     = "path"
	FieldDuration = "duration"
)
