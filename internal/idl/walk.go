// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

// Walk visits every statement of the document depth first, including nested
// functions, params, fields and enum members.
func Walk(doc *Document, f func(Statement)) {
	for _, s := range doc.Statements {
		walkStatement(s, f)
	}
}

func walkStatement(s Statement, f func(Statement)) {
	f(s)
	switch v := s.(type) {
	case *ServiceDefinition:
		for _, fn := range v.Functions {
			walkStatement(fn, f)
		}
	case *FunctionDefinition:
		for _, p := range v.Params {
			walkStatement(p, f)
		}
	case *StructDefinition:
		for _, fd := range v.Fields {
			walkStatement(fd, f)
		}
	case *EnumDefinition:
		for _, m := range v.Members {
			walkStatement(m, f)
		}
	case *FieldDefinition, *EnumMember, *TypedefDefinition, *ConstDefinition:
	}
}

// Comments returns a pointer to the comment slice of any statement.
func Comments(s Statement) *[]Comment {
	switch v := s.(type) {
	case *ServiceDefinition:
		return &v.Comments
	case *FunctionDefinition:
		return &v.Comments
	case *StructDefinition:
		return &v.Comments
	case *FieldDefinition:
		return &v.Comments
	case *EnumDefinition:
		return &v.Comments
	case *EnumMember:
		return &v.Comments
	case *TypedefDefinition:
		return &v.Comments
	case *ConstDefinition:
		return &v.Comments
	default:
		return nil
	}
}
