package parse

import "bytes"

// Parser consumes input at the cursor. A nil return means the parser matched
// and the cursor has advanced past the consumed bytes. A non-nil return means
// the parser failed and the cursor is back where it started.
type Parser func(c *Cursor) error

// Unbounded may be passed as the upper bound of Times for unlimited repetition.
const Unbounded = -1

// Run applies p to input from offset zero.
func Run(p Parser, input []byte) error {
	return p(NewCursor(input))
}

// Ch matches exactly the byte b.
func Ch(b byte) Parser {
	return func(c *Cursor) error {
		got, ok := c.Peek()
		if !ok {
			return failed(c.Pos(), KindEndOfInput, string(rune(b)))
		}
		if got != b {
			return failed(c.Pos(), KindExpected, string(rune(b)))
		}
		c.pos++
		return nil
	}
}

// Any matches any single byte.
func Any() Parser {
	return func(c *Cursor) error {
		if _, ok := c.Next(); !ok {
			return failed(c.Pos(), KindEndOfInput, "any byte")
		}
		return nil
	}
}

// AnyOf matches a single byte contained in set.
func AnyOf(set string) Parser {
	return func(c *Cursor) error {
		got, ok := c.Peek()
		if !ok {
			return failed(c.Pos(), KindEndOfInput, "one of "+set)
		}
		if bytes.IndexByte([]byte(set), got) < 0 {
			return failed(c.Pos(), KindExpected, "one of "+set)
		}
		c.pos++
		return nil
	}
}

// NoneOf matches a single byte not contained in set.
// With an empty set it behaves like Any.
func NoneOf(set string) Parser {
	return func(c *Cursor) error {
		got, ok := c.Peek()
		if !ok {
			return failed(c.Pos(), KindEndOfInput, "none of "+set)
		}
		if bytes.IndexByte([]byte(set), got) >= 0 {
			return failed(c.Pos(), KindExpected, "none of "+set)
		}
		c.pos++
		return nil
	}
}

// Range matches a single byte in the inclusive range [lo, hi].
func Range(lo, hi byte) Parser {
	return func(c *Cursor) error {
		got, ok := c.Peek()
		if !ok {
			return failed(c.Pos(), KindEndOfInput, "byte in range")
		}
		if got < lo || got > hi {
			return failed(c.Pos(), KindExpected, "byte in range")
		}
		c.pos++
		return nil
	}
}

// Literal matches the exact byte sequence lit.
func Literal(lit string) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		rest := c.Rest()
		if len(rest) < len(lit) {
			return failed(start, KindEndOfInput, lit)
		}
		if string(rest[:len(lit)]) != lit {
			return failed(start, KindExpected, lit)
		}
		c.Seek(start + len(lit))
		return nil
	}
}

// Seq matches every parser in order. If any of them fails, the cursor rewinds
// to where Seq began.
func Seq(ps ...Parser) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		for _, p := range ps {
			if err := p(c); err != nil {
				c.Seek(start)
				return err
			}
		}
		return nil
	}
}

// Alt tries each parser in order and commits to the first match. Each failed
// alternative rewinds the cursor before the next is tried.
func Alt(ps ...Parser) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		var last error
		for _, p := range ps {
			err := p(c)
			if err == nil {
				return nil
			}
			c.Seek(start)
			last = err
		}
		if last == nil {
			last = failed(start, KindExpected, "alternative")
		}
		return last
	}
}

// Opt matches p if possible and succeeds either way.
func Opt(p Parser) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		if err := p(c); err != nil {
			c.Seek(start)
		}
		return nil
	}
}

// Times matches p at least lo and at most hi times. Pass Unbounded as hi for
// no upper limit. Fewer than lo matches rewinds and fails.
func Times(p Parser, lo, hi int) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		n := 0
		for hi == Unbounded || n < hi {
			mark := c.Pos()
			if err := p(c); err != nil {
				c.Seek(mark)
				break
			}
			// Zero-width match would loop forever.
			if c.Pos() == mark {
				break
			}
			n++
		}
		if n < lo {
			err := failed(c.Pos(), KindExpected, "more repetitions")
			if c.Eof() {
				err.Kind = KindEndOfInput
			}
			c.Seek(start)
			return err
		}
		return nil
	}
}

// Capture matches p and hands the consumed slice to accept. Returning false
// from accept rejects the match: the cursor rewinds and the failure
// propagates, which triggers Alt-level backtracking.
func Capture(p Parser, accept func(raw []byte) bool) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		if err := p(c); err != nil {
			return err
		}
		if accept != nil && !accept(c.Slice(start, c.Pos())) {
			err := failed(start, KindExpected, "acceptable capture")
			c.Seek(start)
			return err
		}
		return nil
	}
}

// Lookahead matches p without consuming input.
func Lookahead(p Parser) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		err := p(c)
		c.Seek(start)
		return err
	}
}

// Not succeeds without consuming input when p fails.
func Not(p Parser) Parser {
	return func(c *Cursor) error {
		start := c.Pos()
		err := p(c)
		c.Seek(start)
		if err == nil {
			return failed(start, KindExpected, "no match")
		}
		return nil
	}
}

// End matches only at end of input.
func End() Parser {
	return func(c *Cursor) error {
		if !c.Eof() {
			return failed(c.Pos(), KindExpected, "end of input")
		}
		return nil
	}
}
