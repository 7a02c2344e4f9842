// Package parse provides a small deterministic parser-combinator core over
// immutable byte slices. A Cursor tracks a single byte offset; combinators
// advance it on success and rewind it on failure, so alternatives can
// backtrack cheaply without copying input.
package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the sentinel wrapped by every *Error produced by this package.
	ErrParse = errors.New("parse error")
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// KindExpected reports input that did not match the grammar.
	KindExpected ErrorKind = iota
	// KindEndOfInput reports input that ended before the grammar did.
	KindEndOfInput
	// KindOverflow reports a matched region that exceeds a numeric or length bound.
	KindOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case KindExpected:
		return "expected"
	case KindEndOfInput:
		return "end of input"
	case KindOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Error is a parse failure at a byte offset.
type Error struct {
	Offset int
	Kind   ErrorKind
	Want   string
}

func (e *Error) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("%s at offset %d: want %s", e.Kind, e.Offset, e.Want)
	}
	return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
}

func (e *Error) Unwrap() error {
	return ErrParse
}

func failed(offset int, kind ErrorKind, want string) *Error {
	return &Error{Offset: offset, Kind: kind, Want: want}
}

// Cursor is a mutable position over an immutable byte slice.
// It is not safe for concurrent use.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Seek rewinds or advances the cursor to an absolute offset.
// Offsets outside the input are clamped.
func (c *Cursor) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.buf) {
		pos = len(c.buf)
	}
	c.pos = pos
}

// Len returns the total input length.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Eof reports whether the cursor has consumed all input.
func (c *Cursor) Eof() bool {
	return c.pos >= len(c.buf)
}

// Peek returns the byte at the cursor without advancing.
func (c *Cursor) Peek() (byte, bool) {
	if c.Eof() {
		return 0, false
	}
	return c.buf[c.pos], true
}

// Next returns the byte at the cursor and advances past it.
func (c *Cursor) Next() (byte, bool) {
	b, ok := c.Peek()
	if ok {
		c.pos++
	}
	return b, ok
}

// Slice returns the input bytes in [from, to). The returned slice aliases
// the input and must not be modified.
func (c *Cursor) Slice(from, to int) []byte {
	return c.buf[from:to]
}

// Rest returns all unconsumed input without advancing.
func (c *Cursor) Rest() []byte {
	return c.buf[c.pos:]
}
