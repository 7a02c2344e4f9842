package iterator

import (
	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
)

// Transformed applies a document transformer to every element that passes
// through the Iterator. Dropped elements are skipped without disturbing the
// relative order of the rest; offsets renumber the surviving elements.
func Transformed(iter Iterator, tr pipeline.Transformer[doc.Value, doc.Value]) Iterator {
	var next int
	return Func(func() (doc.Value, int, error) {
		for {
			d, _, err := iter.Next()
			if err != nil {
				return Err(err)
			}
			out, ok := tr.Transform(d)
			if !ok {
				continue
			}
			cur := next
			next++
			return out, cur, nil
		}
	})
}

// Decoded turns a frame channel into a document Iterator through a source
// transformer. Frames the source drops are skipped.
func Decoded(frames <-chan []byte, src *pipeline.Source) Iterator {
	var next int
	return Func(func() (doc.Value, int, error) {
		for {
			frame, ok := <-frames
			if !ok {
				return End()
			}
			d, ok := src.Transform(frame)
			if !ok {
				continue
			}
			cur := next
			next++
			return d, cur, nil
		}
	})
}
