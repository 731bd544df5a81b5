// Package target normalizes the paths that name entries and includes.
package target

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Normalize converts an entry target into a rooted, slash separated path.
//
// Targets may be file paths or file URIs. Any other URI scheme is left as-is
// for a FileSystem that understands it.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	return path.Join("/", filepath.ToSlash(target))
}

// Relative rewrites an include so it is explicitly relative to the including
// file. Absolute paths and paths that already start with "./" or "../" are
// returned cleaned but otherwise unchanged.
func Relative(include string) string {
	include = filepath.ToSlash(include)
	if path.IsAbs(include) {
		return path.Clean(include)
	}
	cleaned := path.Clean(include)
	if strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return cleaned
	}
	return "./" + strings.TrimPrefix(cleaned, "./")
}
