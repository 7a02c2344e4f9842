package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeShallow(t *testing.T) {
	a := obj(t, `{"x":{"a":1,"b":2},"keep":true}`)
	b := obj(t, `{"x":{"c":3}}`)
	got := Merge(a, b)
	assert.True(t, Equal(obj(t, `{"x":{"c":3},"keep":true}`), got),
		"shallow merge replaces whole top-level fields")

	assert.True(t, Equal(Int(5), Merge(a, Int(5))), "non-object b wins outright")
}

func TestDeepMerge(t *testing.T) {
	tests := map[string]struct {
		a, b string
		want string
	}{
		"nested precedence": {
			a:    `{"x":{"a":1,"b":2}}`,
			b:    `{"x":{"b":3,"c":4}}`,
			want: `{"x":{"a":1,"b":3,"c":4}}`,
		},
		"null overrides present value": {
			a:    `{"a":1}`,
			b:    `{"a":null}`,
			want: `{"a":null}`,
		},
		"arrays merge index-wise": {
			a:    `{"a":[{"x":1},{"y":2}]}`,
			b:    `{"a":[{"z":3}]}`,
			want: `{"a":[{"x":1,"z":3},{"y":2}]}`,
		},
		"scalar replaced by object": {
			a:    `{"a":1}`,
			b:    `{"a":{"b":2}}`,
			want: `{"a":{"b":2}}`,
		},
		"object replaced by scalar": {
			a:    `{"a":{"b":2}}`,
			b:    `{"a":1}`,
			want: `{"a":1}`,
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got := DeepMerge(obj(t, tc.a), obj(t, tc.b))
			assert.True(t, Equal(obj(t, tc.want), got), "got %s", Stringify(got))
		})
	}
}

func TestDeepMergeIdempotentWithEmpty(t *testing.T) {
	a := obj(t, `{"x":{"a":1},"list":[1,2]}`)
	empty := obj(t, `{}`)
	assert.True(t, Equal(a, DeepMerge(a, empty)))
}

func TestDeepMergeContainsAllOfB(t *testing.T) {
	a := obj(t, `{"a":1,"b":{"c":2}}`)
	b := obj(t, `{"b":{"d":3},"e":4}`)
	merged := DeepMerge(a, b).(*Object)
	bObj := b.(*Object)
	for _, k := range bObj.Keys() {
		require.True(t, merged.Has(k), "merged result must carry b's field %q", k)
	}
}
