// Package bind provides named typed projections between raw wire scalars and
// document fields. A binder is directional: the forward contract parses a raw
// scalar into an object builder field, and the reverse contract renders a
// document field back into an output buffer. Parsers and printers share one
// binder configuration, which keeps a codec's field mapping in a single place.
package bind

import (
	"bytes"
	"math"
	"strconv"

	"golang.org/x/text/encoding"

	"github.com/saylorsolutions/logframe/pkg/doc"
)

// Binder projects a value between the wire and a named document field.
//
// Bind converts raw into the binder's type and writes it under the binder's
// key, reporting success. A false return has no side effects, which lets a
// grammar backtrack past a rejected capture.
//
// BindOut evaluates the key in d and, when present with a usable variant,
// calls pre (typically to emit a separator) and appends the canonical text
// form to out. When the field is absent or mismatched, pre is never called.
type Binder interface {
	Key() string
	Bind(b *doc.ObjectBuilder, raw Raw) bool
	BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool
}

// None is the inert binder: it rejects every raw value and emits nothing.
// Grammars use it to capture and discard optional groups.
var None Binder = noneBinder{}

type noneBinder struct{}

func (noneBinder) Key() string                                   { return "" }
func (noneBinder) Bind(*doc.ObjectBuilder, Raw) bool             { return false }
func (noneBinder) BindOut(*bytes.Buffer, doc.Value, func()) bool { return false }

type rawKind int

const (
	rawBool rawKind = iota
	rawInt
	rawLong
	rawFloat
	rawDouble
	rawString
	rawBytes
)

// Raw is a wire-level scalar awaiting projection: one of bool, int, long,
// float, double, string, or bytes.
type Raw struct {
	kind rawKind
	b    bool
	i    int64
	f    float64
	s    string
	raw  []byte
}

func RawBool(v bool) Raw      { return Raw{kind: rawBool, b: v} }
func RawInt(v int32) Raw      { return Raw{kind: rawInt, i: int64(v)} }
func RawLong(v int64) Raw     { return Raw{kind: rawLong, i: v} }
func RawFloat(v float32) Raw  { return Raw{kind: rawFloat, f: float64(v)} }
func RawDouble(v float64) Raw { return Raw{kind: rawDouble, f: v} }
func RawString(v string) Raw  { return Raw{kind: rawString, s: v} }
func RawBytes(v []byte) Raw   { return Raw{kind: rawBytes, raw: v} }

func (r Raw) text() (string, bool) {
	switch r.kind {
	case rawString:
		return r.s, true
	case rawBytes:
		return string(r.raw), true
	default:
		return "", false
	}
}

// asLong coerces to int64: bool maps to 1/0, floats must be integral, text
// must be decimal ASCII.
func (r Raw) asLong() (int64, bool) {
	switch r.kind {
	case rawBool:
		if r.b {
			return 1, true
		}
		return 0, true
	case rawInt, rawLong:
		return r.i, true
	case rawFloat, rawDouble:
		if math.Trunc(r.f) != r.f || math.IsInf(r.f, 0) || math.IsNaN(r.f) {
			return 0, false
		}
		if r.f < math.MinInt64 || r.f >= math.MaxInt64 {
			return 0, false
		}
		return int64(r.f), true
	default:
		s, _ := r.text()
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
}

func (r Raw) asDouble() (float64, bool) {
	switch r.kind {
	case rawBool:
		if r.b {
			return 1, true
		}
		return 0, true
	case rawInt, rawLong:
		return float64(r.i), true
	case rawFloat, rawDouble:
		return r.f, true
	default:
		s, _ := r.text()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

func (r Raw) asTextBytes() []byte {
	switch r.kind {
	case rawBool:
		return []byte(strconv.FormatBool(r.b))
	case rawInt, rawLong:
		return []byte(strconv.FormatInt(r.i, 10))
	case rawFloat:
		return []byte(strconv.FormatFloat(r.f, 'g', -1, 32))
	case rawDouble:
		return []byte(strconv.FormatFloat(r.f, 'g', -1, 64))
	case rawString:
		return []byte(r.s)
	default:
		return r.raw
	}
}

type stringBinder struct {
	key string
	enc encoding.Encoding
}

// String binds UTF-8 text under key.
func String(key string) Binder {
	return &stringBinder{key: key}
}

// StringCharset binds text under key, decoding raw bytes with enc on the way
// in and encoding on the way out. A nil encoding means UTF-8.
func StringCharset(key string, enc encoding.Encoding) Binder {
	return &stringBinder{key: key, enc: enc}
}

func (s *stringBinder) Key() string { return s.key }

func (s *stringBinder) Bind(b *doc.ObjectBuilder, raw Raw) bool {
	if raw.kind == rawBytes {
		decoded, ok := s.decode(raw.raw)
		if !ok {
			return false
		}
		b.Put(s.key, doc.String(decoded))
		return true
	}
	b.Put(s.key, doc.String(raw.asTextBytes()))
	return true
}

func (s *stringBinder) decode(raw []byte) (string, bool) {
	if s.enc == nil {
		return string(raw), true
	}
	decoded, err := s.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func (s *stringBinder) BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool {
	v, ok := field(d, s.key)
	if !ok {
		return false
	}
	var text []byte
	switch t := v.(type) {
	case doc.String:
		text = []byte(t)
	case doc.Bytes:
		text = t
	default:
		return false
	}
	if s.enc != nil {
		encoded, err := s.enc.NewEncoder().Bytes(text)
		if err != nil {
			return false
		}
		text = encoded
	}
	pre()
	out.Write(text)
	return true
}

type bytesBinder struct {
	key string
}

// Bytes binds an opaque byte sequence under key. Strings are wrapped as
// UTF-8 bytes; numeric raws bind as their decimal text bytes.
func Bytes(key string) Binder {
	return &bytesBinder{key: key}
}

func (bb *bytesBinder) Key() string { return bb.key }

func (bb *bytesBinder) Bind(b *doc.ObjectBuilder, raw Raw) bool {
	buf := raw.asTextBytes()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	b.Put(bb.key, doc.Bytes(cp))
	return true
}

func (bb *bytesBinder) BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool {
	v, ok := field(d, bb.key)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case doc.Bytes:
		pre()
		out.Write(t)
		return true
	case doc.String:
		pre()
		out.WriteString(string(t))
		return true
	default:
		return false
	}
}

type intBinder struct {
	key string
}

// Int binds a 32-bit integer under key. Out-of-range values are rejected.
func Int(key string) Binder {
	return &intBinder{key: key}
}

func (ib *intBinder) Key() string { return ib.key }

func (ib *intBinder) Bind(b *doc.ObjectBuilder, raw Raw) bool {
	n, ok := raw.asLong()
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return false
	}
	b.Put(ib.key, doc.Int(int32(n)))
	return true
}

func (ib *intBinder) BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool {
	return numericOut(out, d, ib.key, pre)
}

type longBinder struct {
	key string
}

// Long binds a 64-bit integer under key.
func Long(key string) Binder {
	return &longBinder{key: key}
}

func (lb *longBinder) Key() string { return lb.key }

func (lb *longBinder) Bind(b *doc.ObjectBuilder, raw Raw) bool {
	n, ok := raw.asLong()
	if !ok {
		return false
	}
	b.Put(lb.key, doc.Long(n))
	return true
}

func (lb *longBinder) BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool {
	return numericOut(out, d, lb.key, pre)
}

type floatBinder struct {
	key string
}

// Float binds a 32-bit float under key.
func Float(key string) Binder {
	return &floatBinder{key: key}
}

func (fb *floatBinder) Key() string { return fb.key }

func (fb *floatBinder) Bind(b *doc.ObjectBuilder, raw Raw) bool {
	f, ok := raw.asDouble()
	if !ok {
		return false
	}
	f32 := float32(f)
	if math.IsInf(float64(f32), 0) && !math.IsInf(f, 0) {
		return false
	}
	b.Put(fb.key, doc.Float(f32))
	return true
}

func (fb *floatBinder) BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool {
	return floatOut(out, d, fb.key, pre, 32)
}

type doubleBinder struct {
	key string
}

// Double binds a 64-bit float under key.
func Double(key string) Binder {
	return &doubleBinder{key: key}
}

func (db *doubleBinder) Key() string { return db.key }

func (db *doubleBinder) Bind(b *doc.ObjectBuilder, raw Raw) bool {
	f, ok := raw.asDouble()
	if !ok {
		return false
	}
	b.Put(db.key, doc.Double(f))
	return true
}

func (db *doubleBinder) BindOut(out *bytes.Buffer, d doc.Value, pre func()) bool {
	return floatOut(out, d, db.key, pre, 64)
}

func field(d doc.Value, key string) (doc.Value, bool) {
	return doc.Root.Field(key).Evaluate(d)
}

func numericOut(out *bytes.Buffer, d doc.Value, key string, pre func()) bool {
	v, ok := field(d, key)
	if !ok {
		return false
	}
	n, ok := doc.AsLong(v)
	if !ok {
		return false
	}
	pre()
	out.WriteString(strconv.FormatInt(n, 10))
	return true
}

func floatOut(out *bytes.Buffer, d doc.Value, key string, pre func(), bits int) bool {
	v, ok := field(d, key)
	if !ok {
		return false
	}
	f, ok := doc.AsDouble(v)
	if !ok {
		return false
	}
	pre()
	out.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
	return true
}
