// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"path"
	"slices"
	"strings"
)

// SymbolTable indexes the named type declarations of a set of documents so
// identifier field types can be resolved across includes.
type SymbolTable struct {
	docs  map[string]*Document
	types map[string]map[string]Statement
}

func NewSymbolTable(docs ...*Document) *SymbolTable {
	s := &SymbolTable{
		docs:  make(map[string]*Document),
		types: make(map[string]map[string]Statement),
	}
	for _, d := range docs {
		s.Collect(d)
	}
	return s
}

// Collect adds the document's structs, enums, typedefs and consts. Collecting
// the same path twice replaces the earlier entry.
func (s *SymbolTable) Collect(doc *Document) {
	s.docs[doc.IdlPath] = doc
	types := make(map[string]Statement)
	for _, st := range doc.Statements {
		switch v := st.(type) {
		case *StructDefinition, *EnumDefinition, *TypedefDefinition, *ConstDefinition:
			types[StatementName(v)] = v
		}
	}
	s.types[doc.IdlPath] = types
}

// Resolve finds the declaration a type name refers to from within doc. The
// returned document is the one that declares the symbol.
func (s *SymbolTable) Resolve(from *Document, name string) (Statement, *Document, bool) {
	if from == nil {
		return nil, nil, false
	}
	if st, ok := s.types[from.IdlPath][name]; ok {
		return st, from, true
	}
	if from.Dialect == FileKindProtobuf {
		return s.packageSearch(from, name)
	}
	prefix, base, ok := strings.Cut(name, ".")
	if !ok {
		return nil, nil, false
	}
	for _, inc := range from.Includes {
		target := s.includeTarget(from, inc)
		if target == nil {
			continue
		}
		if strings.TrimSuffix(path.Base(inc), path.Ext(inc)) != prefix {
			continue
		}
		if st, ok := s.types[target.IdlPath][base]; ok {
			return st, target, true
		}
	}
	return nil, nil, false
}

func (s *SymbolTable) includeTarget(from *Document, inc string) *Document {
	if d, ok := s.docs[path.Join(path.Dir(from.IdlPath), inc)]; ok {
		return d
	}
	if d, ok := s.docs[path.Join("/", inc)]; ok {
		return d
	}
	return nil
}

// packageSearch applies proto scoping: the name is tried in the current
// package, then each enclosing package. A leading dot makes it absolute.
func (s *SymbolTable) packageSearch(from *Document, name string) (Statement, *Document, bool) {
	segmentPackage := ""
	segmentPackages := []string{segmentPackage}
	if from.Namespace != "" {
		for _, segment := range strings.Split(from.Namespace, ".") {
			if segmentPackage == "" {
				segmentPackage = segment
			} else {
				segmentPackage = segmentPackage + "." + segment
			}
			segmentPackages = append(segmentPackages, segmentPackage)
		}
	}
	if !strings.HasPrefix(name, ".") {
		slices.Reverse(segmentPackages)
	} else {
		name = name[1:]
	}

	for _, pkg := range segmentPackages {
		full := name
		if pkg != "" {
			full = pkg + "." + name
		}
		for _, uri := range s.sortedURIs() {
			d := s.docs[uri]
			local := full
			if d.Namespace != "" {
				if !strings.HasPrefix(full, d.Namespace+".") {
					continue
				}
				local = strings.TrimPrefix(full, d.Namespace+".")
			}
			if st, ok := s.types[uri][strings.ReplaceAll(local, ".", "_")]; ok {
				return st, d, true
			}
		}
	}
	return nil, nil, false
}

func (s *SymbolTable) sortedURIs() []string {
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}
