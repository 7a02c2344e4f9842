package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(t *testing.T, src string) Value {
	t.Helper()
	v, err := ParseString(src)
	require.NoError(t, err)
	return v
}

func TestApplyPatch(t *testing.T) {
	tests := map[string]struct {
		start string
		patch Patch
		want  string
		err   error
	}{
		"add new field": {
			start: `{"a":1}`,
			patch: Patch{Add{Path: Root.Field("b"), Value: Int(2)}},
			want:  `{"a":1,"b":2}`,
		},
		"add overwrites existing field": {
			start: `{"a":1}`,
			patch: Patch{Add{Path: Root.Field("a"), Value: Int(9)}},
			want:  `{"a":9}`,
		},
		"add inserts into array": {
			start: `{"a":[1,3]}`,
			patch: Patch{Add{Path: Root.Field("a").Index(1), Value: Int(2)}},
			want:  `{"a":[1,2,3]}`,
		},
		"add appends at array length": {
			start: `{"a":[1]}`,
			patch: Patch{Add{Path: Root.Field("a").Index(1), Value: Int(2)}},
			want:  `{"a":[1,2]}`,
		},
		"add requires intermediate nodes": {
			start: `{"a":1}`,
			patch: Patch{Add{Path: Root.Field("x").Field("y"), Value: Int(2)}},
			err:   ErrMissing,
		},
		"remove existing": {
			start: `{"a":1,"b":2}`,
			patch: Patch{Remove{Path: Root.Field("a"), MustExist: true}},
			want:  `{"b":2}`,
		},
		"remove missing with must exist": {
			start: `{"a":1}`,
			patch: Patch{Remove{Path: Root.Field("x"), MustExist: true}},
			err:   ErrMissing,
		},
		"remove missing without must exist is a no-op": {
			start: `{"a":1}`,
			patch: Patch{Remove{Path: Root.Field("x")}},
			want:  `{"a":1}`,
		},
		"remove array element shifts": {
			start: `{"a":[1,2,3]}`,
			patch: Patch{Remove{Path: Root.Field("a").Index(1), MustExist: true}},
			want:  `{"a":[1,3]}`,
		},
		"replace existing": {
			start: `{"a":1}`,
			patch: Patch{Replace{Path: Root.Field("a"), Value: String("x")}},
			want:  `{"a":"x"}`,
		},
		"replace missing fails": {
			start: `{"a":1}`,
			patch: Patch{Replace{Path: Root.Field("x"), Value: Int(1)}},
			err:   ErrMissing,
		},
		"copy": {
			start: `{"a":{"deep":true}}`,
			patch: Patch{Copy{From: Root.Field("a").Field("deep"), To: Root.Field("b")}},
			want:  `{"a":{"deep":true},"b":true}`,
		},
		"move": {
			start: `{"a":1,"b":2}`,
			patch: Patch{Move{From: Root.Field("a"), To: Root.Field("c")}},
			want:  `{"b":2,"c":1}`,
		},
		"test pass": {
			start: `{"a":1}`,
			patch: Patch{Test{Path: Root.Field("a"), Value: Int(1)}},
			want:  `{"a":1}`,
		},
		"test failure": {
			start: `{"a":1}`,
			patch: Patch{Test{Path: Root.Field("a"), Value: Int(2)}},
			err:   ErrTestFailed,
		},
		"bulk groups ops": {
			start: `{"a":1}`,
			patch: Patch{Bulk{Ops: []PatchOp{
				Add{Path: Root.Field("b"), Value: Int(2)},
				Remove{Path: Root.Field("a"), MustExist: true},
			}}},
			want: `{"b":2}`,
		},
		"type mismatch on add through scalar": {
			start: `{"a":1}`,
			patch: Patch{Add{Path: Root.Field("a").Field("b"), Value: Int(2)}},
			err:   ErrTypeMismatch,
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			start := obj(t, tc.start)
			got, err := ApplyPatch(start, tc.patch)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, Equal(obj(t, tc.want), got), "got %s", Stringify(got))
		})
	}
}

// An intermediate failure must discard every prior modification.
func TestPatchAtomicity(t *testing.T) {
	start := obj(t, `{"a":1}`)
	got, err := ApplyPatch(start, Patch{
		Add{Path: Root.Field("b"), Value: Int(2)},
		Replace{Path: Root.Field("missing"), Value: Int(3)},
	})
	require.ErrorIs(t, err, ErrMissing)
	assert.True(t, Equal(start, got), "failed patch must hand back the original")
	assert.False(t, got.(*Object).Has("b"))
}

// Applying the inverse of a successful patch restores the original document.
func TestPatchInverse(t *testing.T) {
	start := obj(t, `{"a":1,"list":[1,2,3]}`)
	forward := Patch{
		Add{Path: Root.Field("b"), Value: String("new")},
		Remove{Path: Root.Field("list").Index(1), MustExist: true},
		Replace{Path: Root.Field("a"), Value: Int(9)},
	}
	inverse := Patch{
		Replace{Path: Root.Field("a"), Value: Int(1)},
		Add{Path: Root.Field("list").Index(1), Value: Int(2)},
		Remove{Path: Root.Field("b"), MustExist: true},
	}
	mid, err := ApplyPatch(start, forward)
	require.NoError(t, err)
	back, err := ApplyPatch(mid, inverse)
	require.NoError(t, err)
	assert.True(t, Equal(start, back))
}

func TestPatchNeverMutatesInput(t *testing.T) {
	start := obj(t, `{"nested":{"a":1}}`)
	_, err := ApplyPatch(start, Patch{Add{Path: Root.Field("nested").Field("b"), Value: Int(2)}})
	require.NoError(t, err)
	assert.True(t, Equal(obj(t, `{"nested":{"a":1}}`), start))
}

func TestSetAndDelete(t *testing.T) {
	start := obj(t, `{"a":{"b":1}}`)

	out, ok := Set(start, Root.Field("x").Field("y"), Int(2))
	require.True(t, ok, "set creates missing object intermediates")
	assert.True(t, Equal(obj(t, `{"a":{"b":1},"x":{"y":2}}`), out))

	_, ok = Set(start, Root.Field("a").Field("b").Field("c"), Int(3))
	assert.False(t, ok, "set must not tunnel through scalars")

	out, ok = Delete(start, Root.Field("a").Field("b"))
	require.True(t, ok)
	assert.True(t, Equal(obj(t, `{"a":{}}`), out))

	same, ok := Delete(start, Root.Field("zzz"))
	assert.False(t, ok)
	assert.True(t, Equal(start, same))
}
