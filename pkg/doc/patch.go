package doc

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing reports a required path that is absent.
	ErrMissing = errors.New("missing path")
	// ErrTypeMismatch reports a value whose variant does not fit the operation.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrTestFailed reports a Test op whose expectation did not hold.
	ErrTestFailed = errors.New("test failed")
)

// PatchOp is a single document edit. Concrete ops: Add, Remove, Replace,
// Copy, Move, Test, and Bulk.
type PatchOp interface {
	apply(v Value) (Value, error)
}

// Patch is an ordered sequence of ops applied all-or-nothing.
type Patch []PatchOp

// Add inserts or overwrites the value at Path. Object targets are set,
// array targets are inserted at the index (an index equal to the length
// appends). Intermediate nodes must exist.
type Add struct {
	Path  Pointer
	Value Value
}

// Remove deletes the value at Path. When MustExist is false, a missing
// target is a no-op rather than an error.
type Remove struct {
	Path      Pointer
	MustExist bool
}

// Replace overwrites the value at Path, which must exist.
type Replace struct {
	Path  Pointer
	Value Value
}

// Copy duplicates the value at From to To.
type Copy struct {
	From Pointer
	To   Pointer
}

// Move relocates the value at From to To.
type Move struct {
	From Pointer
	To   Pointer
}

// Test asserts that the value at Path equals Value.
type Test struct {
	Path  Pointer
	Value Value
}

// Bulk applies a group of ops in order.
type Bulk struct {
	Ops []PatchOp
}

// ApplyPatch applies every op in order. On any failure the original value is
// returned untouched along with the error: partial edits never escape.
func ApplyPatch(v Value, patch Patch) (Value, error) {
	out := v
	for _, op := range patch {
		var err error
		out, err = op.apply(out)
		if err != nil {
			return v, err
		}
	}
	return out, nil
}

func (op Add) apply(v Value) (Value, error) {
	return addAt(v, op.Path, op.Path.tokens, op.Value)
}

func (op Replace) apply(v Value) (Value, error) {
	if _, ok := op.Path.Evaluate(v); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissing, op.Path)
	}
	return replaceAt(v, op.Path, op.Path.tokens, op.Value)
}

func (op Remove) apply(v Value) (Value, error) {
	out, found, err := removeAt(v, op.Path, op.Path.tokens)
	if err != nil {
		if !op.MustExist && errors.Is(err, ErrMissing) {
			return v, nil
		}
		return nil, err
	}
	if !found {
		if op.MustExist {
			return nil, fmt.Errorf("%w: %s", ErrMissing, op.Path)
		}
		return v, nil
	}
	return out, nil
}

func (op Copy) apply(v Value) (Value, error) {
	src, ok := op.From.Evaluate(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissing, op.From)
	}
	return addAt(v, op.To, op.To.tokens, src)
}

func (op Move) apply(v Value) (Value, error) {
	src, ok := op.From.Evaluate(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissing, op.From)
	}
	out, found, err := removeAt(v, op.From, op.From.tokens)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMissing, op.From)
	}
	return addAt(out, op.To, op.To.tokens, src)
}

func (op Test) apply(v Value) (Value, error) {
	cur, ok := op.Path.Evaluate(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTestFailed, op.Path)
	}
	if !Equal(cur, op.Value) {
		return nil, fmt.Errorf("%w: %s", ErrTestFailed, op.Path)
	}
	return v, nil
}

func (op Bulk) apply(v Value) (Value, error) {
	out := v
	for _, sub := range op.Ops {
		var err error
		out, err = sub.apply(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func objectPut(o *Object, name string, v Value) *Object {
	keys := make([]string, len(o.keys), len(o.keys)+1)
	copy(keys, o.keys)
	fields := make(map[string]Value, len(o.fields)+1)
	for k, val := range o.fields {
		fields[k] = val
	}
	if _, ok := fields[name]; !ok {
		keys = append(keys, name)
	}
	fields[name] = v
	return &Object{keys: keys, fields: fields}
}

func objectDelete(o *Object, name string) *Object {
	keys := make([]string, 0, len(o.keys))
	fields := make(map[string]Value, len(o.fields))
	for _, k := range o.keys {
		if k == name {
			continue
		}
		keys = append(keys, k)
		fields[k] = o.fields[k]
	}
	return &Object{keys: keys, fields: fields}
}

func arrayInsert(a Array, i int, v Value) Array {
	out := make(Array, 0, len(a)+1)
	out = append(out, a[:i]...)
	out = append(out, v)
	out = append(out, a[i:]...)
	return out
}

func arrayReplace(a Array, i int, v Value) Array {
	out := make(Array, len(a))
	copy(out, a)
	out[i] = v
	return out
}

func arrayDelete(a Array, i int) Array {
	out := make(Array, 0, len(a)-1)
	out = append(out, a[:i]...)
	out = append(out, a[i+1:]...)
	return out
}

// addAt rebuilds v with val placed at the token path, sharing untouched
// subtrees with the input.
func addAt(v Value, full Pointer, toks []token, val Value) (Value, error) {
	if len(toks) == 0 {
		return val, nil
	}
	t := toks[0]
	if t.named {
		obj, ok := v.(*Object)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an object", ErrTypeMismatch, full)
		}
		if len(toks) == 1 {
			return objectPut(obj, t.name, val), nil
		}
		child, ok := obj.Get(t.name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissing, full)
		}
		sub, err := addAt(child, full, toks[1:], val)
		if err != nil {
			return nil, err
		}
		return objectPut(obj, t.name, sub), nil
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, full)
	}
	if len(toks) == 1 {
		if t.index < 0 || t.index > len(arr) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, full)
		}
		return arrayInsert(arr, t.index, val), nil
	}
	if t.index < 0 || t.index >= len(arr) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, full)
	}
	sub, err := addAt(arr[t.index], full, toks[1:], val)
	if err != nil {
		return nil, err
	}
	return arrayReplace(arr, t.index, sub), nil
}

// replaceAt rebuilds v with val overwriting the existing value at the path.
// The caller has already verified the target exists.
func replaceAt(v Value, full Pointer, toks []token, val Value) (Value, error) {
	if len(toks) == 0 {
		return val, nil
	}
	t := toks[0]
	if t.named {
		obj := v.(*Object)
		child, _ := obj.Get(t.name)
		sub, err := replaceAt(child, full, toks[1:], val)
		if err != nil {
			return nil, err
		}
		return objectPut(obj, t.name, sub), nil
	}
	arr := v.(Array)
	sub, err := replaceAt(arr[t.index], full, toks[1:], val)
	if err != nil {
		return nil, err
	}
	return arrayReplace(arr, t.index, sub), nil
}

// removeAt rebuilds v without the value at the token path. found is false
// when the target or an intermediate node is absent.
func removeAt(v Value, full Pointer, toks []token) (Value, bool, error) {
	if len(toks) == 0 {
		return nil, false, fmt.Errorf("%w: cannot remove the root", ErrTypeMismatch)
	}
	t := toks[0]
	if t.named {
		obj, ok := v.(*Object)
		if !ok {
			return nil, false, nil
		}
		child, ok := obj.Get(t.name)
		if !ok {
			return nil, false, nil
		}
		if len(toks) == 1 {
			return objectDelete(obj, t.name), true, nil
		}
		sub, found, err := removeAt(child, full, toks[1:])
		if err != nil || !found {
			return nil, found, err
		}
		return objectPut(obj, t.name, sub), true, nil
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, false, nil
	}
	if t.index < 0 || t.index >= len(arr) {
		return nil, false, nil
	}
	if len(toks) == 1 {
		return arrayDelete(arr, t.index), true, nil
	}
	sub, found, err := removeAt(arr[t.index], full, toks[1:])
	if err != nil || !found {
		return nil, found, err
	}
	return arrayReplace(arr, t.index, sub), true, nil
}

// Set is the lenient upsert used by transformers: missing intermediate
// objects are created for name tokens, array indexes may replace in-range
// elements or append at the end. It reports false when a path step hits an
// incompatible variant.
func Set(v Value, p Pointer, val Value) (Value, bool) {
	return setAt(v, p.tokens, val)
}

func setAt(v Value, toks []token, val Value) (Value, bool) {
	if len(toks) == 0 {
		return val, true
	}
	t := toks[0]
	if t.named {
		obj, ok := v.(*Object)
		if !ok {
			if v != nil && v.Kind() != KindNull {
				return nil, false
			}
			obj = &Object{fields: map[string]Value{}}
		}
		child, _ := obj.Get(t.name)
		sub, ok := setAt(child, toks[1:], val)
		if !ok {
			return nil, false
		}
		return objectPut(obj, t.name, sub), true
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, false
	}
	if t.index < 0 || t.index > len(arr) {
		return nil, false
	}
	if t.index == len(arr) {
		if len(toks) > 1 {
			return nil, false
		}
		return arrayInsert(arr, t.index, val), true
	}
	if len(toks) == 1 {
		return arrayReplace(arr, t.index, val), true
	}
	sub, ok := setAt(arr[t.index], toks[1:], val)
	if !ok {
		return nil, false
	}
	return arrayReplace(arr, t.index, sub), true
}

// Delete removes the value at p if present, reporting whether anything
// changed.
func Delete(v Value, p Pointer) (Value, bool) {
	out, found, err := removeAt(v, p, p.tokens)
	if err != nil || !found {
		return v, false
	}
	return out, true
}
