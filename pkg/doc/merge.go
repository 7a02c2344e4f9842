package doc

// Merge shallow-merges b into a. When both are objects, b's top-level fields
// override a's; appended fields keep b's insertion order. Otherwise b wins.
func Merge(a, b Value) Value {
	ao, aok := a.(*Object)
	bo, bok := b.(*Object)
	if !aok || !bok {
		return b
	}
	out := NewObjectBuilder().PutObject(ao).PutObject(bo)
	return out.Result()
}

// DeepMerge recursively merges b into a. Matching object fields merge
// recursively, matching arrays merge index-wise with the longer side's tail
// kept, and everything else (Null included) is overridden by b's value.
func DeepMerge(a, b Value) Value {
	if ao, ok := a.(*Object); ok {
		if bo, ok := b.(*Object); ok {
			return deepMergeObjects(ao, bo)
		}
	}
	if aa, ok := a.(Array); ok {
		if ba, ok := b.(Array); ok {
			return deepMergeArrays(aa, ba)
		}
	}
	return b
}

func deepMergeObjects(a, b *Object) Value {
	out := NewObjectBuilder().PutObject(a)
	for _, k := range b.keys {
		bv := b.fields[k]
		if av, ok := a.Get(k); ok {
			out.Put(k, DeepMerge(av, bv))
			continue
		}
		out.Put(k, bv)
	}
	return out.Result()
}

func deepMergeArrays(a, b Array) Value {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Array, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(a):
			out = append(out, b[i])
		case i >= len(b):
			out = append(out, a[i])
		default:
			out = append(out, DeepMerge(a[i], b[i]))
		}
	}
	return out
}
