package program

import (
	"github.com/tidwall/btree"

	"gopkg.idlgen.dev/generator.go/internal/emit"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

// Hooks of the generation pipeline, in the order they fire.
var (
	ParseEntry   = NewHook[*ParseEntryContext]("PARSE_ENTRY")
	GenFileAST   = NewHook[*GenFileASTContext]("GEN_FILE_AST")
	GenMockField = NewHook[*GenMockFieldContext]("GEN_MOCK_FIELD")
	WriteFile    = NewHook[*WriteFileContext]("WRITE_FILE")
)

// Dist is one output file.
type Dist struct {
	Path    string
	Content string
}

// ParseEntryContext carries every parsed document before code generation.
// Plugins may rewrite the documents in place.
type ParseEntryContext struct {
	AST []*idl.Document
	// Files is the output set keyed by path.
	Files *btree.Map[string, *Dist]
	// Entries maps entry names to their document path.
	Entries  map[string]string
	Registry *Registry
}

// GenFileASTContext is raised once per service of an entry.
type GenFileASTContext struct {
	Entry    string
	Document *idl.Document
	Service  *idl.ServiceDefinition
	// Methods is filled by the meta stage and may be edited afterwards.
	Methods []*emit.MethodMeta
	// Imports are extra import statements for the service module.
	Imports  []string
	Registry *Registry
}

// GenMockFieldContext asks for the sample value of one response field.
type GenMockFieldContext struct {
	Struct string
	Field  *idl.FieldDefinition
	// Depth is the nesting level of the owning struct, starting at 0.
	Depth int
	// Value is the answer; nil leaves the field out of the sample.
	Value    any
	Registry *Registry
}

// WriteFileContext is raised for each output file before it is written.
type WriteFileContext struct {
	Filename string
	Content  string
	Registry *Registry
}
