// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package compiler

import (
	"path/filepath"
)

func getDefaultRoots(lookup func(string) (string, bool)) []string {
	var roots []string
	if local, ok := lookup("LOCALAPPDATA"); ok && local != "" {
		roots = append(roots, filepath.Join(local, "idlgen", "include"))
	}
	if data, ok := lookup("ProgramData"); ok && data != "" {
		roots = append(roots, filepath.Join(data, "idlgen", "include"))
	}
	return roots
}
