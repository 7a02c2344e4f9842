package doc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/saylorsolutions/logframe/pkg/parse"
)

var (
	// ErrMalformed is the sentinel wrapped by every ParseError.
	ErrMalformed = errors.New("malformed JSON")
)

// ParseError reports a grammar violation at a byte offset.
type ParseError struct {
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed JSON at offset %d", e.Offset)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

func malformedAt(offset int) error {
	return &ParseError{Offset: offset}
}

func malformed(c *parse.Cursor, err error) error {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return malformedAt(perr.Offset)
	}
	return malformedAt(c.Pos())
}

// JSON number grammar per RFC 8259.
var (
	jsonDigits  = parse.Times(parse.Range('0', '9'), 1, parse.Unbounded)
	jsonInt     = parse.Alt(parse.Seq(parse.Range('1', '9'), parse.Times(parse.Range('0', '9'), 0, parse.Unbounded)), parse.Ch('0'))
	jsonFrac    = parse.Seq(parse.Ch('.'), jsonDigits)
	jsonExp     = parse.Seq(parse.AnyOf("eE"), parse.Opt(parse.AnyOf("+-")), jsonDigits)
	jsonNumber  = parse.Seq(parse.Opt(parse.Ch('-')), jsonInt, parse.Opt(jsonFrac), parse.Opt(jsonExp))
	litTrue     = parse.Literal("true")
	litFalse    = parse.Literal("false")
	litNull     = parse.Literal("null")
	litWS       = parse.Times(parse.AnyOf(" \t\r\n"), 0, parse.Unbounded)
)

// Parse decodes a complete RFC 8259 JSON document. Integer literals become
// Int, Long, or BigDecimal by magnitude; fraction and exponent literals
// become Double when the literal is exactly representable in binary64 and
// BigDecimal otherwise. Trailing non-space input is an error; there are no
// partial results.
func Parse(data []byte) (Value, error) {
	c := parse.NewCursor(data)
	_ = litWS(c)
	v, err := parseJSONValue(c)
	if err != nil {
		return nil, err
	}
	_ = litWS(c)
	if !c.Eof() {
		return nil, malformedAt(c.Pos())
	}
	return v, nil
}

// ParseString decodes a JSON document held in a string.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

func parseJSONValue(c *parse.Cursor) (Value, error) {
	b, ok := c.Peek()
	if !ok {
		return nil, malformedAt(c.Pos())
	}
	switch b {
	case '{':
		return parseJSONObject(c)
	case '[':
		return parseJSONArray(c)
	case '"':
		s, err := parseJSONString(c)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case 't':
		if err := litTrue(c); err != nil {
			return nil, malformed(c, err)
		}
		return Bool(true), nil
	case 'f':
		if err := litFalse(c); err != nil {
			return nil, malformed(c, err)
		}
		return Bool(false), nil
	case 'n':
		if err := litNull(c); err != nil {
			return nil, malformed(c, err)
		}
		return Null{}, nil
	default:
		return parseJSONNumber(c)
	}
}

func parseJSONNumber(c *parse.Cursor) (Value, error) {
	var (
		out Value
		bad bool
	)
	err := parse.Capture(jsonNumber, func(raw []byte) bool {
		v, ok := classifyNumber(string(raw))
		if !ok {
			bad = true
			return false
		}
		out = v
		return true
	})(c)
	if err != nil || bad {
		return nil, malformed(c, err)
	}
	return out, nil
}

func classifyNumber(lit string) (Value, bool) {
	if !strings.ContainsAny(lit, ".eE") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			if n >= -1<<31 && n < 1<<31 {
				return Int(int32(n)), true
			}
			return Long(n), true
		}
		bd, ok := ParseBigDecimal(lit)
		return bd, ok
	}
	bd, ok := ParseBigDecimal(lit)
	if !ok {
		return nil, false
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		if r := new(big.Rat).SetFloat64(f); r != nil && r.Cmp(bd.Rat()) == 0 {
			return Double(f), true
		}
	}
	return bd, true
}

func parseJSONString(c *parse.Cursor) (string, error) {
	if b, ok := c.Next(); !ok || b != '"' {
		return "", malformedAt(c.Pos())
	}
	var sb []byte
	for {
		b, ok := c.Next()
		if !ok {
			return "", malformedAt(c.Pos())
		}
		switch {
		case b == '"':
			return string(sb), nil
		case b == '\\':
			esc, err := parseEscape(c)
			if err != nil {
				return "", err
			}
			sb = append(sb, esc...)
		case b < 0x20:
			return "", malformedAt(c.Pos() - 1)
		default:
			sb = append(sb, b)
		}
	}
}

func parseEscape(c *parse.Cursor) ([]byte, error) {
	b, ok := c.Next()
	if !ok {
		return nil, malformedAt(c.Pos())
	}
	switch b {
	case '"', '\\', '/':
		return []byte{b}, nil
	case 'b':
		return []byte{'\b'}, nil
	case 'f':
		return []byte{'\f'}, nil
	case 'n':
		return []byte{'\n'}, nil
	case 'r':
		return []byte{'\r'}, nil
	case 't':
		return []byte{'\t'}, nil
	case 'u':
		r1, err := parseHex4(c)
		if err != nil {
			return nil, err
		}
		if utf16.IsSurrogate(rune(r1)) {
			mark := c.Pos()
			if b, ok := c.Next(); !ok || b != '\\' {
				return nil, malformedAt(mark)
			}
			if b, ok := c.Next(); !ok || b != 'u' {
				return nil, malformedAt(mark)
			}
			r2, err := parseHex4(c)
			if err != nil {
				return nil, err
			}
			r := utf16.DecodeRune(rune(r1), rune(r2))
			if r == utf8.RuneError {
				return nil, malformedAt(mark)
			}
			return utf8.AppendRune(nil, r), nil
		}
		return utf8.AppendRune(nil, rune(r1)), nil
	default:
		return nil, malformedAt(c.Pos() - 1)
	}
}

func parseHex4(c *parse.Cursor) (uint32, error) {
	var r uint32
	for i := 0; i < 4; i++ {
		b, ok := c.Next()
		if !ok {
			return 0, malformedAt(c.Pos())
		}
		switch {
		case b >= '0' && b <= '9':
			r = r<<4 | uint32(b-'0')
		case b >= 'a' && b <= 'f':
			r = r<<4 | uint32(b-'a'+10)
		case b >= 'A' && b <= 'F':
			r = r<<4 | uint32(b-'A'+10)
		default:
			return 0, malformedAt(c.Pos() - 1)
		}
	}
	return r, nil
}

func parseJSONObject(c *parse.Cursor) (Value, error) {
	if b, ok := c.Next(); !ok || b != '{' {
		return nil, malformedAt(c.Pos())
	}
	builder := NewObjectBuilder()
	_ = litWS(c)
	if b, ok := c.Peek(); ok && b == '}' {
		_, _ = c.Next()
		return builder.Result(), nil
	}
	for {
		_ = litWS(c)
		key, err := parseJSONString(c)
		if err != nil {
			return nil, err
		}
		_ = litWS(c)
		if b, ok := c.Next(); !ok || b != ':' {
			return nil, malformedAt(c.Pos())
		}
		_ = litWS(c)
		val, err := parseJSONValue(c)
		if err != nil {
			return nil, err
		}
		builder.Put(key, val)
		_ = litWS(c)
		b, ok := c.Next()
		if !ok {
			return nil, malformedAt(c.Pos())
		}
		if b == '}' {
			return builder.Result(), nil
		}
		if b != ',' {
			return nil, malformedAt(c.Pos() - 1)
		}
	}
}

func parseJSONArray(c *parse.Cursor) (Value, error) {
	if b, ok := c.Next(); !ok || b != '[' {
		return nil, malformedAt(c.Pos())
	}
	builder := NewArrayBuilder()
	_ = litWS(c)
	if b, ok := c.Peek(); ok && b == ']' {
		_, _ = c.Next()
		return builder.Result(), nil
	}
	for {
		_ = litWS(c)
		val, err := parseJSONValue(c)
		if err != nil {
			return nil, err
		}
		builder.Add(val)
		_ = litWS(c)
		b, ok := c.Next()
		if !ok {
			return nil, malformedAt(c.Pos())
		}
		if b == ']' {
			return builder.Result(), nil
		}
		if b != ',' {
			return nil, malformedAt(c.Pos() - 1)
		}
	}
}

// Stringify renders the canonical JSON form: object fields in insertion
// order, numbers in their shortest round-trip decimal form, Bytes as a
// base64 string. The output buffer is sized exactly by SizeHint.
func Stringify(v Value) []byte {
	return AppendJSON(make([]byte, 0, v.SizeHint()), v)
}

// AppendJSON appends the canonical JSON form of v to dst.
func AppendJSON(dst []byte, v Value) []byte {
	switch t := v.(type) {
	case nil, Null:
		return append(dst, "null"...)
	case Bool:
		if t {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case Int:
		return strconv.AppendInt(dst, int64(t), 10)
	case Long:
		return strconv.AppendInt(dst, int64(t), 10)
	case Float:
		return append(dst, formatFloat(float64(t), 32)...)
	case Double:
		return append(dst, formatFloat(float64(t), 64)...)
	case BigDecimal:
		return append(dst, t.String()...)
	case String:
		return appendQuoted(dst, string(t))
	case Bytes:
		dst = append(dst, '"')
		dst = append(dst, base64.StdEncoding.EncodeToString(t)...)
		return append(dst, '"')
	case Array:
		dst = append(dst, '[')
		for i, item := range t {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, item)
		}
		return append(dst, ']')
	case *Object:
		dst = append(dst, '{')
		first := true
		t.Each(func(name string, val Value) bool {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendQuoted(dst, name)
			dst = append(dst, ':')
			dst = AppendJSON(dst, val)
			return true
		})
		return append(dst, '}')
	default:
		return dst
	}
}

const hexDigits = "0123456789abcdef"

// appendQuoted must agree exactly with escapedLen.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
