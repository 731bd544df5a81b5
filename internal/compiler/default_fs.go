// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/fs"
)

// EnvIncludePath lists extra include roots, separated like PATH.
const EnvIncludePath = "IDLGEN_INCLUDE_PATH"

// NewDefaultFS layers the given roots, then the roots named by
// IDLGEN_INCLUDE_PATH, then the shared data directories of the platform.
// Earlier roots win when a path exists in more than one.
func NewDefaultFS(lookup func(string) (string, bool), roots ...string) (fs.FileSystemMulti, error) {
	all := append([]string{}, roots...)
	if extra, ok := lookup(EnvIncludePath); ok && extra != "" {
		all = append(all, strings.Split(extra, string(filepath.ListSeparator))...)
	}
	all = append(all, getDefaultRoots(lookup)...)
	f := make(fs.FileSystemMulti, 0, len(all))
	for _, root := range all {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
