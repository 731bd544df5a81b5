// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
}

type Location struct {
	idl.Location
	URI string
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.URI
	}
	return fmt.Sprintf("%s:%d:%d", l.URI, l.Line, l.Column)
}

type exc struct {
	code     string
	message  string
	location Location
}

// Error renders as "<code>: <message>(<uri>:<line>:<col>)". Exceptions
// without a line render only the URI in the suffix.
func (e *exc) Error() string {
	return fmt.Sprintf("%s: %s(%s)", e.code, e.message, e.location)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// NewIllegalToken reports a token the grammar does not allow at its position.
func NewIllegalToken(uri string, t *idl.Token) Exception {
	return New(Location{URI: uri, Location: *t.Span.Start}, CodeIllegalToken, fmt.Sprintf("illegal token '%s'", t.Value))
}

// NewFileNotFound reports a missing input or include.
func NewFileNotFound(path string) Exception {
	return New(Location{URI: path}, CodeFileNotFound, fmt.Sprintf("no such file: %s", path))
}

// NewUnknownType reports a keyword the type mapper cannot translate.
func NewUnknownType(loc Location, t string) Exception {
	return New(loc, CodeUnknownType, fmt.Sprintf("UnKnown type: %s", t))
}

// MultiException collects every fatal exception reported during a run.
type MultiException []Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
