package pipeline

import (
	"github.com/saylorsolutions/logframe/pkg/doc"
)

// JSONMode selects the direction of a JSON field transformer.
type JSONMode int

const (
	// Deserialize parses the text at Source into a document value.
	Deserialize JSONMode = iota
	// Serialize renders the value at Source as its JSON text.
	Serialize
)

// SuccessPolicy decides what happens to the source field after a write to a
// distinct target succeeded.
type SuccessPolicy int

const (
	SuccessSkip SuccessPolicy = iota
	SuccessRemove
)

// ErrorPolicy decides what happens when the codec rejects the field.
type ErrorPolicy int

const (
	// ErrorSkip passes the element through unchanged.
	ErrorSkip ErrorPolicy = iota
	// ErrorDiscard drops the element.
	ErrorDiscard
)

// JSONConfig configures a JSON field transformer. Target defaults to Source
// when nil.
type JSONConfig struct {
	Source    doc.Pointer
	Target    *doc.Pointer
	Mode      JSONMode
	OnSuccess SuccessPolicy
	OnError   ErrorPolicy
}

// JSON transforms one field of a document through the JSON codec. Inputs that
// cannot possibly transform (missing source, empty text, text that is not
// shaped like an object) pass through unchanged; actual codec failures follow
// the configured error policy.
type JSON struct {
	cfg JSONConfig
}

var _ Transformer[doc.Value, doc.Value] = (*JSON)(nil)

func NewJSON(cfg JSONConfig) *JSON {
	return &JSON{cfg: cfg}
}

func (t *JSON) target() doc.Pointer {
	if t.cfg.Target != nil {
		return *t.cfg.Target
	}
	return t.cfg.Source
}

func (t *JSON) Transform(in doc.Value) (doc.Value, bool) {
	if t.cfg.Mode == Serialize {
		return t.serialize(in)
	}
	return t.deserialize(in)
}

func (t *JSON) deserialize(in doc.Value) (doc.Value, bool) {
	src, ok := t.cfg.Source.Evaluate(in)
	if !ok {
		return in, true
	}
	var text []byte
	switch v := src.(type) {
	case doc.String:
		text = []byte(v)
	case doc.Bytes:
		text = v
	default:
		return in, true
	}
	if len(text) == 0 {
		return in, true
	}
	// Only object-shaped text deserializes; arrays, scalars, and text with
	// surrounding whitespace pass through.
	if text[0] != '{' || text[len(text)-1] != '}' {
		return in, true
	}
	parsed, err := doc.Parse(text)
	if err != nil {
		return t.fail(in)
	}
	out, ok := t.write(in, parsed)
	if !ok {
		return t.fail(in)
	}
	return t.finish(out)
}

func (t *JSON) serialize(in doc.Value) (doc.Value, bool) {
	src, ok := t.cfg.Source.Evaluate(in)
	if !ok {
		return in, true
	}
	out, ok := t.write(in, doc.String(doc.Stringify(src)))
	if !ok {
		return t.fail(in)
	}
	return t.finish(out)
}

// write places val at the target. A root target merges object fields into the
// top level, overwriting collisions; any other value replaces the root.
func (t *JSON) write(in, val doc.Value) (doc.Value, bool) {
	target := t.target()
	if target.IsRoot() {
		if _, ok := val.(*doc.Object); ok {
			return doc.Merge(in, val), true
		}
		return val, true
	}
	return doc.Set(in, target, val)
}

// finish applies the success policy. The source field is only removed when
// the write went somewhere else.
func (t *JSON) finish(out doc.Value) (doc.Value, bool) {
	if t.cfg.OnSuccess == SuccessRemove && !t.target().Equal(t.cfg.Source) {
		if removed, ok := doc.Delete(out, t.cfg.Source); ok {
			return removed, true
		}
	}
	return out, true
}

func (t *JSON) fail(in doc.Value) (doc.Value, bool) {
	if t.cfg.OnError == ErrorDiscard {
		return nil, false
	}
	return in, true
}
