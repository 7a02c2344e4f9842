package doc

// ObjectBuilder accumulates fields for an Object. It is a one-shot mutable
// accumulator: Result may be called repeatedly, and mutations after a Result
// never affect previously returned values. The builder freezes its backing
// storage on Result and reallocates on the next mutation.
type ObjectBuilder struct {
	keys   []string
	fields map[string]Value
	frozen bool
}

func NewObjectBuilder() *ObjectBuilder {
	return &ObjectBuilder{fields: map[string]Value{}}
}

func (b *ObjectBuilder) thaw() {
	if !b.frozen {
		return
	}
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	fields := make(map[string]Value, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	b.keys = keys
	b.fields = fields
	b.frozen = false
}

// Put sets a field, keeping the original insertion position when the name is
// already present.
func (b *ObjectBuilder) Put(name string, v Value) *ObjectBuilder {
	b.thaw()
	if _, ok := b.fields[name]; !ok {
		b.keys = append(b.keys, name)
	}
	b.fields[name] = v
	return b
}

// Remove deletes a field if present.
func (b *ObjectBuilder) Remove(name string) *ObjectBuilder {
	if _, ok := b.fields[name]; !ok {
		return b
	}
	b.thaw()
	delete(b.fields, name)
	for i, k := range b.keys {
		if k == name {
			b.keys = append(b.keys[:i:i], b.keys[i+1:]...)
			break
		}
	}
	return b
}

// PutAll copies every field of other into b in other's insertion order.
func (b *ObjectBuilder) PutAll(other *ObjectBuilder) *ObjectBuilder {
	for _, k := range other.keys {
		b.Put(k, other.fields[k])
	}
	return b
}

// PutObject copies every field of obj into b in obj's insertion order.
func (b *ObjectBuilder) PutObject(obj *Object) *ObjectBuilder {
	for _, k := range obj.keys {
		b.Put(k, obj.fields[k])
	}
	return b
}

func (b *ObjectBuilder) Get(name string) (Value, bool) {
	v, ok := b.fields[name]
	return v, ok
}

func (b *ObjectBuilder) Contains(name string) bool {
	_, ok := b.fields[name]
	return ok
}

func (b *ObjectBuilder) Len() int {
	return len(b.keys)
}

// Result snapshots the current fields as an Object.
func (b *ObjectBuilder) Result() Value {
	b.frozen = true
	return &Object{keys: b.keys, fields: b.fields}
}

// ArrayBuilder accumulates elements for an Array with the same freeze-on-result
// discipline as ObjectBuilder.
type ArrayBuilder struct {
	items  []Value
	frozen bool
}

func NewArrayBuilder() *ArrayBuilder {
	return &ArrayBuilder{}
}

func (b *ArrayBuilder) thaw() {
	if !b.frozen {
		return
	}
	items := make([]Value, len(b.items))
	copy(items, b.items)
	b.items = items
	b.frozen = false
}

// Add appends an element.
func (b *ArrayBuilder) Add(v Value) *ArrayBuilder {
	b.thaw()
	b.items = append(b.items, v)
	return b
}

// Remove deletes the element at i, shifting later elements down.
// Out-of-range indexes are ignored.
func (b *ArrayBuilder) Remove(i int) *ArrayBuilder {
	if i < 0 || i >= len(b.items) {
		return b
	}
	b.thaw()
	b.items = append(b.items[:i:i], b.items[i+1:]...)
	return b
}

func (b *ArrayBuilder) Get(i int) (Value, bool) {
	if i < 0 || i >= len(b.items) {
		return nil, false
	}
	return b.items[i], true
}

func (b *ArrayBuilder) Len() int {
	return len(b.items)
}

// Result snapshots the current elements as an Array.
func (b *ArrayBuilder) Result() Value {
	b.frozen = true
	return Array(b.items)
}
