package doc

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariants(t *testing.T) {
	tests := map[string]struct {
		in   string
		want Value
	}{
		"null":                      {in: `null`, want: Null{}},
		"true":                      {in: `true`, want: Bool(true)},
		"false":                     {in: `false`, want: Bool(false)},
		"small integer":             {in: `42`, want: Int(42)},
		"negative integer":          {in: `-7`, want: Int(-7)},
		"int32 boundary":            {in: `2147483647`, want: Int(2147483647)},
		"past int32 becomes long":   {in: `2147483648`, want: Long(2147483648)},
		"int64 boundary":            {in: `9223372036854775807`, want: Long(9223372036854775807)},
		"past int64 is bigdecimal":  {in: `9223372036854775808`, want: mustBigDecimal(t, "9223372036854775808")},
		"exact fraction is double":  {in: `1.5`, want: Double(1.5)},
		"exact exponent is double":  {in: `1e2`, want: Double(100)},
		"inexact fraction":          {in: `0.1`, want: mustBigDecimal(t, "0.1")},
		"huge exponent":             {in: `2e128`, want: mustBigDecimal(t, "2e128")},
		"string":                    {in: `"hi"`, want: String("hi")},
		"escapes": {
			in:   `"\"\\\/\b\f\n\r\t"`,
			want: String("\"\\/\b\f\n\r\t"),
		},
		"utf8 passthrough": {in: `"é"`, want: String("é")},
		"unicode escape":   {in: `"\u00e9"`, want: String("é")},
		"surrogate pair":   {in: `"\ud83d\ude00"`, want: String("😀")},
		"empty object":    {in: `{}`, want: NewObjectBuilder().Result()},
		"empty array":     {in: `[]`, want: Array{}},
		"whitespace":      {in: " {\n\t\"a\" : 1 } ", want: NewObjectBuilder().Put("a", Int(1)).Result()},
		"nested": {
			in: `{"a":[1,{"b":null}],"c":"x"}`,
			want: NewObjectBuilder().
				Put("a", Array{Int(1), NewObjectBuilder().Put("b", Null{}).Result()}).
				Put("c", String("x")).
				Result(),
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got, err := ParseString(tc.in)
			require.NoError(t, err)
			assert.True(t, Equal(tc.want, got), "got %s (%s)", Stringify(got), got.Kind())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":              ``,
		"bare word":          `nope`,
		"truncated object":   `{"a":1`,
		"trailing garbage":   `{} extra`,
		"missing colon":      `{"a" 1}`,
		"trailing comma":     `[1,]`,
		"leading zero":       `01`,
		"bare fraction":      `.5`,
		"unterminated str":   `"abc`,
		"bad escape":         `"\x"`,
		"lone surrogate":     `"\ud83d"`,
		"control in string":  "\"a\nb\"",
		"single quote":       `'a'`,
	}
	for name, in := range inputs {
		in := in
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(in)
			require.ErrorIs(t, err, ErrMalformed)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.GreaterOrEqual(t, perr.Offset, 0)
		})
	}
}

// Scenario: a large exponent literal survives the round trip as BigDecimal
// with canonical E notation.
func TestBigDecimalRoundTrip(t *testing.T) {
	v, err := ParseString(`{"bd":2e128}`)
	require.NoError(t, err)
	bd, ok := v.(*Object).Get("bd")
	require.True(t, ok)
	require.Equal(t, KindBigDecimal, bd.Kind())
	assert.Equal(t, `{"bd":2E+128}`, string(Stringify(v)))
}

func TestStringifyRoundTrip(t *testing.T) {
	values := []Value{
		Null{},
		Bool(true),
		Int(-12),
		Long(1 << 40),
		Double(1.5),
		Double(0.25),
		mustBigDecimal(t, "2e128"),
		mustBigDecimal(t, "0.1"),
		String("with \"escapes\" and\nnewlines"),
		String("😀 beyond BMP"),
		Array{Int(1), String("two"), Null{}, Array{}},
		NewObjectBuilder().
			Put("s", String("v")).
			Put("n", Double(2.5)).
			Put("deep", NewObjectBuilder().Put("x", Array{Bool(false)}).Result()).
			Result(),
	}
	for _, v := range values {
		out := Stringify(v)
		back, err := Parse(out)
		require.NoError(t, err, "round trip of %s", out)
		assert.True(t, Equal(v, back), "round trip of %s", out)
	}
}

// Bytes stringifies as a base64 JSON string and comes back as String.
func TestBytesRoundTripsAsBase64(t *testing.T) {
	v := NewObjectBuilder().Put("raw", Bytes("hello")).Result()
	out := Stringify(v)
	assert.Equal(t, `{"raw":"aGVsbG8="}`, string(out))

	back, err := Parse(out)
	require.NoError(t, err)
	s, _ := back.(*Object).Get("raw")
	assert.Equal(t, KindString, s.Kind())
}

func TestDoubleAlwaysCarriesFraction(t *testing.T) {
	assert.Equal(t, `1.0`, string(Stringify(Double(1))))
	assert.Equal(t, `100000.0`, string(Stringify(Double(100000))))
	assert.Equal(t, `1e+21`, string(Stringify(Double(1e21))))
}

// Emitted bytes must be valid JSON to an independent decoder, and object
// member order must survive.
func TestStringifyAgreesWithJx(t *testing.T) {
	v := NewObjectBuilder().
		Put("z", Int(1)).
		Put("a", Array{String("x"), Double(2.5), Null{}}).
		Put("m", NewObjectBuilder().Put("inner", Bool(true)).Result()).
		Result()
	out := Stringify(v)
	require.NoError(t, jx.DecodeBytes(out).Validate())

	d := jx.DecodeBytes(out)
	var keys []string
	require.NoError(t, d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		keys = append(keys, string(key))
		return d.Skip()
	}))
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}
