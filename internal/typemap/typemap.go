// Package typemap translates IDL types into TypeScript types.
package typemap

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

const (
	TSNumber  = "number"
	TSString  = "string"
	TSObject  = "object"
	TSBoolean = "boolean"
	TSAny     = "any"
)

// Mapper holds the scalar mapping of one generation run.
type Mapper struct {
	// I64 is the TypeScript type used for 64 bit integers.
	I64 string
}

func New() *Mapper {
	return &Mapper{I64: TSNumber}
}

// SetI64 switches the 64 bit integer mapping. Only "number" and "string"
// are accepted.
func (m *Mapper) SetI64(target string) error {
	switch target {
	case TSNumber, TSString:
		m.I64 = target
		return nil
	default:
		return errors.Newf("unsupported i64 mapping %q, want %q or %q", target, TSNumber, TSString)
	}
}

// Map returns the TypeScript type of a scalar keyword. Proto scalar names are
// accepted as well.
func (m *Mapper) Map(t string) (string, error) {
	base, ok := idl.NewBaseType(t)
	if !ok {
		return "", exc.NewUnknownType(exc.Location{}, t)
	}
	switch base.Name {
	case "byte", "i8", "i16", "i32", "double":
		return TSNumber, nil
	case "i64":
		if m.I64 == "" {
			return TSNumber, nil
		}
		return m.I64, nil
	case "string":
		return TSString, nil
	case "binary":
		return TSObject, nil
	case "bool":
		return TSBoolean, nil
	}
	return "", exc.NewUnknownType(exc.Location{}, t)
}

// Resolver names the TypeScript type of an identifier type.
type Resolver interface {
	// Resolve returns the TypeScript name and whether the identifier refers to
	// an enum. ok is false for names that cannot be found.
	Resolve(name string) (ts string, enum bool, ok bool)
}

// Options tune TSType.
type Options struct {
	// MapEnumKeyAsNumber types enum keyed maps with number keys.
	MapEnumKeyAsNumber bool
}

// TSType renders a full TypeScript type. Unresolved identifiers become any.
func (m *Mapper) TSType(t *idl.FieldType, r Resolver, opts Options) (string, error) {
	if t == nil {
		return "void", nil
	}
	switch t.Kind {
	case idl.FieldTypeBase:
		return m.Map(t.Name)
	case idl.FieldTypeIdentifier:
		if r == nil {
			return TSAny, nil
		}
		ts, _, ok := r.Resolve(t.Name)
		if !ok {
			return TSAny, nil
		}
		return ts, nil
	case idl.FieldTypeList, idl.FieldTypeSet:
		v, err := m.TSType(t.ValueType, r, opts)
		if err != nil {
			return "", err
		}
		if strings.ContainsAny(v, " |") {
			v = "(" + v + ")"
		}
		return v + "[]", nil
	case idl.FieldTypeMap:
		k, err := m.keyType(t.KeyType, r, opts)
		if err != nil {
			return "", err
		}
		v, err := m.TSType(t.ValueType, r, opts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Record<%s, %s>", k, v), nil
	}
	return "", exc.NewUnknownType(exc.Location{}, string(t.Kind))
}

// keyType narrows map keys to what a Record accepts.
func (m *Mapper) keyType(t *idl.FieldType, r Resolver, opts Options) (string, error) {
	if t == nil {
		return TSString, nil
	}
	switch t.Kind {
	case idl.FieldTypeBase:
		ts, err := m.Map(t.Name)
		if err != nil {
			return "", err
		}
		if ts == TSNumber {
			return TSNumber, nil
		}
		return TSString, nil
	case idl.FieldTypeIdentifier:
		if r != nil {
			if _, enum, ok := r.Resolve(t.Name); ok && enum && opts.MapEnumKeyAsNumber {
				return TSNumber, nil
			}
		}
	}
	return TSString, nil
}
