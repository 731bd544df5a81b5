package program

import (
	"sync"

	"go.uber.org/zap"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/typemap"
)

// Registry is the state shared by the stages of one generation run. A new
// one is made for every run.
type Registry struct {
	Types   *typemap.Mapper
	Symbols *idl.SymbolTable
	Log     *zap.SugaredLogger

	lock  sync.Mutex
	hints map[string]bool
}

func NewRegistry(log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{
		Types:   typemap.New(),
		Symbols: idl.NewSymbolTable(),
		Log:     log,
		hints:   make(map[string]bool),
	}
}

// HintOnce logs a warning the first time key is seen in this run and
// reports whether it did.
func (r *Registry) HintOnce(key string, msg string, keysAndValues ...interface{}) bool {
	r.lock.Lock()
	shown := r.hints[key]
	r.hints[key] = true
	r.lock.Unlock()
	if shown {
		return false
	}
	r.Log.Warnw(msg, keysAndValues...)
	return true
}

// Resolver resolves identifier types as seen from doc.
func (r *Registry) Resolver(doc *idl.Document) typemap.Resolver {
	return docResolver{symbols: r.Symbols, doc: doc}
}

type docResolver struct {
	symbols *idl.SymbolTable
	doc     *idl.Document
}

func (d docResolver) Resolve(name string) (string, bool, bool) {
	st, decl, ok := d.symbols.Resolve(d.doc, name)
	if !ok {
		return "", false, false
	}
	switch v := st.(type) {
	case *idl.StructDefinition:
		return v.Name, false, true
	case *idl.EnumDefinition:
		return v.Name, true, true
	case *idl.TypedefDefinition:
		enum := false
		if v.Type != nil && v.Type.Kind == idl.FieldTypeIdentifier && v.Type.Name != name {
			_, enum, _ = docResolver{symbols: d.symbols, doc: decl}.Resolve(v.Type.Name)
		}
		return v.Name, enum, true
	default:
		return "", false, false
	}
}
