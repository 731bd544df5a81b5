// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package compiler

import (
	"os"
	"path/filepath"
	"strings"
)

// getDefaultRoots returns idlgen/include beneath XDG_DATA_HOME and every
// entry of XDG_DATA_DIRS.
func getDefaultRoots(lookup func(string) (string, bool)) []string {
	var dirs []string
	if home, ok := lookup("XDG_DATA_HOME"); ok && home != "" {
		dirs = append(dirs, home)
	} else if userHome, ok := lookup("HOME"); ok && userHome != "" {
		dirs = append(dirs, filepath.Join(userHome, ".local", "share"))
	}
	shared, ok := lookup("XDG_DATA_DIRS")
	if !ok || shared == "" {
		shared = "/usr/local/share/:/usr/share/"
	}
	dirs = append(dirs, strings.Split(shared, ":")...)
	roots := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		roots = append(roots, os.Expand(filepath.Join(dir, "idlgen", "include"), func(s string) string {
			v, _ := lookup(s)
			return v
		}))
	}
	return roots
}
