// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

// bodyFromIO exposes an open IDL file as an idl.FileBody. Read errors carry
// the file path so the reporter can name the file that failed.
func bodyFromIO(path string, v io.ReadCloser) idl.FileBody {
	return &ioFileBody{path: path, rc: v}
}

type ioFileBody struct {
	path string
	rc   io.ReadCloser
	b    []byte
}

// Read returns at most size bytes. The end of the file is an exception with
// code exc.CodeEOF that still matches io.EOF.
func (self *ioFileBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if len(self.b) < int(size) {
		self.b = make([]byte, size)
	}
	count, err := self.rc.Read(self.b[:size])
	switch {
	case err == nil:
		return self.b[:count], nil
	case errors.Is(err, io.EOF):
		return self.b[:count], exc.Wrap(exc.Location{URI: self.path}, exc.CodeEOF, io.EOF)
	default:
		return nil, fsErr(self.path, err)
	}
}

func (self *ioFileBody) Close(ctx context.Context) error {
	return self.rc.Close()
}
