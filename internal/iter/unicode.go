// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/optional"
)

const byteOrderMark = '\uFEFF'

// NewCodePoints reads an IDL file body as code points. A leading byte order
// mark is dropped and invalid UTF-8 reads as utf8.RuneError. ctx is used for
// every read of the body.
func NewCodePoints(ctx context.Context, b idl.FileBody) idl.Iterator[idl.CodePoint] {
	rc := &fileBodyIO{
		ctx:  ctx,
		body: b,
	}
	scanner := bufio.NewScanner(rc)
	scanner.Split(bufio.ScanRunes)
	return &codePoints{
		readCloser: rc,
		scanner:    scanner,
		first:      true,
	}
}

type codePoints struct {
	readCloser io.ReadCloser
	scanner    *bufio.Scanner
	first      bool
}

func (c *codePoints) Next(ctx context.Context) optional.Optional[idl.CodePoint] {
	if !c.scanner.Scan() {
		return optional.None[idl.CodePoint]()
	}
	r, _ := utf8.DecodeRune(c.scanner.Bytes())
	if c.first {
		c.first = false
		if r == byteOrderMark {
			return c.Next(ctx)
		}
	}
	return optional.Some(idl.CodePoint(r))
}

// Close releases the body and returns any read error other than EOF.
func (c *codePoints) Close(context.Context) error {
	_ = c.readCloser.Close()
	return c.scanner.Err()
}

// fileBodyIO adapts an idl.FileBody to io.Reader for bufio.
type fileBodyIO struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return n, io.EOF
	default:
		return n, err
	}
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
