package fs

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

var _ idl.FileSystem = (*FileSystemMemory)(nil)

// FileSystemMemory keeps file content in an ordered map. Opening a directory
// path returns every known file beneath it in lexical order.
type FileSystemMemory struct {
	lock  sync.RWMutex
	files btree.Map[string, string]
}

// NewFileSystemMemory seeds an in-memory file system. Keys are cleaned and
// rooted at "/".
func NewFileSystemMemory(files map[string]string) *FileSystemMemory {
	m := &FileSystemMemory{}
	for k, v := range files {
		m.files.Set(cleanURI(k), v)
	}
	return m
}

func (m *FileSystemMemory) Open(ctx context.Context, uri string) ([]idl.File, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	p := cleanURI(uri)
	if content, ok := m.files.Get(p); ok {
		return []idl.File{NewFileString(p, content, KindOf(p))}, nil
	}
	prefix := strings.TrimSuffix(p, "/") + "/"
	var out []idl.File
	m.files.Ascend(prefix, func(k string, v string) bool {
		if !strings.HasPrefix(k, prefix) {
			return false
		}
		if KindOf(k) != idl.FileKindNone {
			out = append(out, NewFileString(k, v, KindOf(k)))
		}
		return true
	})
	if len(out) < 1 {
		return nil, exc.NewFileNotFound(uri)
	}
	return out, nil
}

func (m *FileSystemMemory) Write(ctx context.Context, uri string, content string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.files.Set(cleanURI(uri), content)
	return nil
}

// Content returns the file at uri and whether it exists.
func (m *FileSystemMemory) Content(uri string) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.files.Get(cleanURI(uri))
}

// Paths lists every stored path in lexical order.
func (m *FileSystemMemory) Paths() []string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.files.Keys()
}

func cleanURI(uri string) string {
	return path.Join("/", uri)
}
