package iterator

import (
	"context"
	"sync"

	"github.com/saylorsolutions/logframe/pkg/doc"
)

// Filter wraps an Iterator with a function that - when it returns true -
// will allow the return values of Next through.
func Filter(iter Iterator, filter func(d doc.Value, i int) bool) Iterator {
	return Func(func() (doc.Value, int, error) {
		for {
			d, idx, err := iter.Next()
			if err != nil {
				return d, idx, err
			}
			if filter(d, idx) {
				return d, idx, nil
			}
		}
	})
}

// Cancellable wraps an iterator and makes it cancellable by context.
// When the context is cancelled and Next is called, all remaining documents
// are forwarded to Drain.
func Cancellable(ctx context.Context, iter Iterator) Iterator {
	var drain sync.Once
	return Func(func() (doc.Value, int, error) {
		if ctx.Err() != nil {
			drain.Do(func() {
				Drain(iter)
			})
			return End()
		}
		return iter.Next()
	})
}

// Concat returns documents from next after base has been exhausted.
func Concat(base, next Iterator) Iterator {
	var idx int
	return Func(func() (doc.Value, int, error) {
		d, i, err := base.Next()
		if err != nil {
			if IsEnd(err) {
				d, i, err := next.Next()
				if err != nil {
					return d, i, err
				}
				return d, i + idx, err
			}
			return d, i, err
		}
		idx++
		return d, i, err
	})
}
