package plugins

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/program"
	"gopkg.idlgen.dev/generator.go/internal/typemap"
)

// mockEpochMillis anchors generated timestamps so samples are stable.
const mockEpochMillis = 1700000000000

// NewMock answers GEN_MOCK_FIELD for scalar fields that have no value yet.
func NewMock() program.Plugin {
	return Func{
		PluginName: "mock",
		ApplyFunc: func(p *program.Program) error {
			program.Register(p, program.GenMockField, program.PhaseOn, func(ctx context.Context, c *program.GenMockFieldContext) (*program.GenMockFieldContext, error) {
				if c.Value != nil || c.Field == nil {
					return c, nil
				}
				types := typemap.New()
				if c.Registry != nil {
					types = c.Registry.Types
				}
				c.Value = MockValue(c.Struct, c.Field, types)
				return c, nil
			}, PriorityLate)
			return nil
		},
	}
}

// MockValue picks a sample for a scalar field. The field name is read upper
// cased: an ID suffix gives a numeric id, EMAIL an address, a TIME suffix or
// TIMESTAMP epoch millis, a STATUS suffix or TYPE a small integer. Otherwise the declared default is used, then a sample of the
// type. Non scalar fields give nil.
func MockValue(owner string, f *idl.FieldDefinition, types *typemap.Mapper) any {
	if f.Type == nil || f.Type.Kind != idl.FieldTypeBase {
		return nil
	}
	ts, err := types.Map(f.Type.Name)
	if err != nil {
		return nil
	}
	seed := mockSeed(owner + "." + f.Name)
	key := strings.ToUpper(f.Name)
	number := func(n int64) any {
		if ts == typemap.TSString {
			return strconv.FormatInt(n, 10)
		}
		return n
	}
	if ts == typemap.TSNumber || ts == typemap.TSString {
		switch {
		case strings.HasSuffix(key, "ID"):
			return number(10000 + int64(seed%90000))
		case strings.Contains(key, "EMAIL"):
			return fmt.Sprintf("user%d@example.com", seed%1000)
		case strings.HasSuffix(key, "TIME") || strings.Contains(key, "TIMESTAMP"):
			return number(mockEpochMillis + int64(seed%86400000))
		case strings.HasSuffix(key, "STATUS") || strings.Contains(key, "TYPE"):
			return number(int64(seed % 4))
		}
	}
	if f.DefaultValue != nil {
		return ConstToValue(f.DefaultValue)
	}
	switch ts {
	case typemap.TSNumber:
		return int64(seed % 100)
	case typemap.TSString:
		if f.Type.Name == "i64" {
			return strconv.FormatInt(int64(seed%100), 10)
		}
		return strcase.ToLowerCamel(f.Name)
	case typemap.TSBoolean:
		return seed%2 == 0
	default:
		return ""
	}
}

func mockSeed(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// ConstToValue converts a literal into a JSON friendly value.
func ConstToValue(v *idl.ConstValue) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case idl.ConstValueInt:
		if n, err := strconv.ParseInt(v.Text, 0, 64); err == nil {
			return n
		}
		return v.Text
	case idl.ConstValueDouble:
		if n, err := strconv.ParseFloat(v.Text, 64); err == nil {
			return n
		}
		return v.Text
	case idl.ConstValueBool:
		return v.Text == "true"
	case idl.ConstValueList:
		out := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			out = append(out, ConstToValue(item))
		}
		return out
	case idl.ConstValueMap:
		out := make(map[string]any, len(v.Pairs))
		for _, pair := range v.Pairs {
			out[fmt.Sprint(ConstToValue(pair.Key))] = ConstToValue(pair.Value)
		}
		return out
	default:
		return v.Text
	}
}
