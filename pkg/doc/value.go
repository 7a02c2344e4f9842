// Package doc implements the structured document model shared by every stage
// of the pipeline: a JSON-shaped value tree with distinct numeric variants,
// one-shot builders, pointer evaluation, patch application, and merge.
//
// Values are immutable once handed out and safe to share read-only across
// goroutines. Builders are not.
package doc

import (
	"encoding/base64"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBigDecimal
	KindString
	KindBytes
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBigDecimal:
		return "bigdecimal"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a document tree node. Concrete types:
//
//   - Null
//   - Bool
//   - Int (32-bit), Long (64-bit)
//   - Float (32-bit), Double (64-bit)
//   - BigDecimal (arbitrary-precision decimal)
//   - String (UTF-8 text)
//   - Bytes (opaque byte sequence, base64 in JSON form)
//   - Array
//   - *Object (insertion-ordered fields)
//
// Numeric variants are distinct: Int(1) is not equal to Long(1). Use AsLong
// and AsDouble for cross-variant access.
type Value interface {
	Kind() Kind
	// SizeHint returns the exact byte length of the canonical JSON form,
	// letting encoders preallocate.
	SizeHint() int
	sealed()
}

type (
	Null   struct{}
	Bool   bool
	Int    int32
	Long   int64
	Float  float32
	Double float64
	String string
	Bytes  []byte
	Array  []Value
)

// Object holds fields in insertion order. Iteration observes that order;
// equality does not.
type Object struct {
	keys   []string
	fields map[string]Value
}

// BigDecimal is an arbitrary-precision decimal: unscaled × 10^-scale.
// The zero BigDecimal is the value 0.
type BigDecimal struct {
	unscaled *big.Int
	scale    int32
}

func (Null) sealed()       {}
func (Bool) sealed()       {}
func (Int) sealed()        {}
func (Long) sealed()       {}
func (Float) sealed()      {}
func (Double) sealed()     {}
func (BigDecimal) sealed() {}
func (String) sealed()     {}
func (Bytes) sealed()      {}
func (Array) sealed()      {}
func (*Object) sealed()    {}

func (Null) Kind() Kind       { return KindNull }
func (Bool) Kind() Kind       { return KindBool }
func (Int) Kind() Kind        { return KindInt }
func (Long) Kind() Kind       { return KindLong }
func (Float) Kind() Kind      { return KindFloat }
func (Double) Kind() Kind     { return KindDouble }
func (BigDecimal) Kind() Kind { return KindBigDecimal }
func (String) Kind() Kind     { return KindString }
func (Bytes) Kind() Kind      { return KindBytes }
func (Array) Kind() Kind      { return KindArray }
func (*Object) Kind() Kind    { return KindObject }

// Len returns the field count.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the field named name.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

// Has reports whether the field exists.
func (o *Object) Has(name string) bool {
	_, ok := o.fields[name]
	return ok
}

// Keys returns the field names in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Each calls fn for every field in insertion order until fn returns false.
func (o *Object) Each(fn func(name string, val Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// NewBigDecimal builds a decimal from an unscaled integer and a scale.
// The value is unscaled × 10^-scale.
func NewBigDecimal(unscaled *big.Int, scale int32) BigDecimal {
	return BigDecimal{unscaled: new(big.Int).Set(unscaled), scale: scale}
}

// ParseBigDecimal parses a plain or scientific decimal literal.
func ParseBigDecimal(s string) (BigDecimal, bool) {
	var (
		neg    bool
		digits []byte
		scale  int64
		i      int
	)
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		digits = append(digits, s[i])
		i++
	}
	intDigits := i - start
	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
			i++
		}
		scale = int64(i - fracStart)
		if i == fracStart && intDigits == 0 {
			return BigDecimal{}, false
		}
	}
	if intDigits == 0 && scale == 0 {
		return BigDecimal{}, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		expNeg := false
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			expNeg = s[i] == '-'
			i++
		}
		expStart := i
		var exp int64
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			exp = exp*10 + int64(s[i]-'0')
			if exp > math.MaxInt32 {
				return BigDecimal{}, false
			}
			i++
		}
		if i == expStart {
			return BigDecimal{}, false
		}
		if expNeg {
			scale += exp
		} else {
			scale -= exp
		}
	}
	if i != len(s) {
		return BigDecimal{}, false
	}
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		return BigDecimal{}, false
	}
	unscaled, ok := new(big.Int).SetString(string(digits), 10)
	if !ok {
		return BigDecimal{}, false
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	return BigDecimal{unscaled: unscaled, scale: int32(scale)}, true
}

// Unscaled returns a copy of the unscaled integer component.
func (d BigDecimal) Unscaled() *big.Int {
	if d.unscaled == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(d.unscaled)
}

// Scale returns the power-of-ten scale: the value is Unscaled × 10^-Scale.
func (d BigDecimal) Scale() int32 {
	return d.scale
}

// Rat returns the exact rational value of the decimal.
func (d BigDecimal) Rat() *big.Rat {
	r := new(big.Rat).SetInt(d.Unscaled())
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs32(d.scale))), nil)
	if d.scale > 0 {
		return r.Quo(r, new(big.Rat).SetInt(pow))
	}
	return r.Mul(r, new(big.Rat).SetInt(pow))
}

// Float64 converts to the nearest float64, rounding half-even.
func (d BigDecimal) Float64() float64 {
	f, _ := d.Rat().Float64()
	return f
}

// String renders the canonical decimal form: scientific E notation when the
// magnitude of the power-of-ten exponent exceeds the unscaled digit count,
// plain decimal otherwise.
func (d BigDecimal) String() string {
	var sb strings.Builder
	d.append(&sb)
	return sb.String()
}

func (d BigDecimal) append(sb *strings.Builder) {
	u := d.unscaled
	if u == nil {
		u = new(big.Int)
	}
	digits := u.String()
	if strings.HasPrefix(digits, "-") {
		sb.WriteByte('-')
		digits = digits[1:]
	}
	exp10 := -int64(d.scale)
	if abs64(exp10) > int64(len(digits)) {
		// Scientific notation with a single leading digit.
		sb.WriteString(digits[:1])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		adjusted := exp10 + int64(len(digits)) - 1
		sb.WriteByte('E')
		if adjusted >= 0 {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('-')
			adjusted = -adjusted
		}
		sb.WriteString(strconv.FormatInt(adjusted, 10))
		return
	}
	switch {
	case d.scale <= 0:
		sb.WriteString(digits)
		for i := int64(0); i < exp10; i++ {
			sb.WriteByte('0')
		}
	case int(d.scale) >= len(digits):
		sb.WriteString("0.")
		for i := int(d.scale) - len(digits); i > 0; i-- {
			sb.WriteByte('0')
		}
		sb.WriteString(digits)
	default:
		point := len(digits) - int(d.scale)
		sb.WriteString(digits[:point])
		sb.WriteByte('.')
		sb.WriteString(digits[point:])
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Equal reports structural equality. Object fields compare order-insensitively;
// arrays compare by position; numeric variants never compare equal across
// kinds.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Long:
		return av == b.(Long)
	case Float:
		return av == b.(Float)
	case Double:
		return av == b.(Double)
	case BigDecimal:
		bv := b.(BigDecimal)
		return av.scale == bv.scale && av.Unscaled().Cmp(bv.Unscaled()) == 0
	case String:
		return av == b.(String)
	case Bytes:
		bv := b.(Bytes)
		return string(av) == string(bv)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if len(av.keys) != len(bv.keys) {
			return false
		}
		for k, v := range av.fields {
			ov, ok := bv.fields[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// AsLong converts numeric and boolean variants to int64 when the conversion
// is exact. Bool maps to 1/0.
func AsLong(v Value) (int64, bool) {
	switch n := v.(type) {
	case Bool:
		if n {
			return 1, true
		}
		return 0, true
	case Int:
		return int64(n), true
	case Long:
		return int64(n), true
	case Float:
		return floatToLong(float64(n))
	case Double:
		return floatToLong(float64(n))
	case BigDecimal:
		r := n.Rat()
		if !r.IsInt() {
			return 0, false
		}
		num := r.Num()
		if !num.IsInt64() {
			return 0, false
		}
		return num.Int64(), true
	default:
		return 0, false
	}
}

func floatToLong(f float64) (int64, bool) {
	if math.Trunc(f) != f || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// AsDouble converts numeric and boolean variants to float64.
// BigDecimal rounds half-even.
func AsDouble(v Value) (float64, bool) {
	switch n := v.(type) {
	case Bool:
		if n {
			return 1, true
		}
		return 0, true
	case Int:
		return float64(n), true
	case Long:
		return float64(n), true
	case Float:
		return float64(n), true
	case Double:
		return float64(n), true
	case BigDecimal:
		return n.Float64(), true
	default:
		return 0, false
	}
}

// AsText extracts textual content: String as-is, Bytes decoded as UTF-8.
func AsText(v Value) (string, bool) {
	switch s := v.(type) {
	case String:
		return string(s), true
	case Bytes:
		return string(s), true
	default:
		return "", false
	}
}

func (Null) SizeHint() int { return 4 }

func (b Bool) SizeHint() int {
	if b {
		return 4
	}
	return 5
}

func (n Int) SizeHint() int  { return decimalLen(int64(n)) }
func (n Long) SizeHint() int { return decimalLen(int64(n)) }

func (n Float) SizeHint() int  { return len(formatFloat(float64(n), 32)) }
func (n Double) SizeHint() int { return len(formatFloat(float64(n), 64)) }

func (d BigDecimal) SizeHint() int { return len(d.String()) }

func (s String) SizeHint() int { return escapedLen(string(s)) + 2 }

func (b Bytes) SizeHint() int { return base64.StdEncoding.EncodedLen(len(b)) + 2 }

func (a Array) SizeHint() int {
	n := 2
	for i, v := range a {
		if i > 0 {
			n++
		}
		n += v.SizeHint()
	}
	return n
}

func (o *Object) SizeHint() int {
	n := 2
	for i, k := range o.keys {
		if i > 0 {
			n++
		}
		n += escapedLen(k) + 2 + 1 + o.fields[k].SizeHint()
	}
	return n
}

func decimalLen(n int64) int {
	if n == 0 {
		return 1
	}
	l := 0
	if n < 0 {
		l++
	}
	for ; n != 0; n /= 10 {
		l++
	}
	return l
}

// formatFloat renders the shortest round-trip decimal form, always carrying a
// fractional digit or exponent so the literal stays float-typed.
func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// escapedLen is the JSON-escaped byte length of s, excluding quotes.
// Must agree exactly with appendEscaped.
func escapedLen(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\' || c == '\b' || c == '\f' || c == '\n' || c == '\r' || c == '\t':
			n += 2
		case c < 0x20:
			n += 6
		default:
			n++
		}
	}
	return n
}
