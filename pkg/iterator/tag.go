package iterator

import (
	"github.com/saylorsolutions/logframe/pkg/doc"
)

// StandardTagField is the document field written by Tag.
const StandardTagField = "@tag"

// Tag sets the standard tag field on every document to the value specified
// in tag. If the field already exists as text, the parameter is appended
// with a period separator. A tag is intended to classify the log information
// in some way to make it easier to filter for later.
func Tag(iter Iterator, tag string) Iterator {
	return Func(func() (doc.Value, int, error) {
		d, i, err := iter.Next()
		if err != nil {
			return Err(err)
		}
		tagged := tag
		if prev, ok := doc.Root.Field(StandardTagField).Evaluate(d); ok {
			if s, ok := prev.(doc.String); ok && len(s) > 0 {
				tagged = string(s) + "." + tag
			}
		}
		out, ok := doc.Set(d, doc.Root.Field(StandardTagField), doc.String(tagged))
		if !ok {
			// Non-object documents have no fields to carry a tag.
			return d, i, nil
		}
		return out, i, nil
	})
}
