// Package iterator provides a pull iterator over documents and the plumbing
// to branch, merge, and transform document streams.
package iterator

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/saylorsolutions/logframe/pkg/doc"
)

var (
	ErrStopIteration = errors.New("stop iterating")
)

type Iterator interface {
	// Next returns the next document and its offset in the stream.
	// Returns ErrStopIteration when the end of the stream is reached.
	Next() (doc.Value, int, error)
	// Iterate progresses through all documents in the stream, calling iter
	// for each one along with its offset. If iter returns ErrStopIteration,
	// iteration ceases with a nil error. Any other error ceases iteration
	// and is returned.
	Iterate(iter func(d doc.Value, i int) error) error
}

// Func adapts a Next-shaped function to an Iterator.
func Func(next func() (doc.Value, int, error)) Iterator {
	return &funcIterator{next: next}
}

var _ Iterator = (*funcIterator)(nil)

type funcIterator struct {
	next func() (doc.Value, int, error)
}

func (f *funcIterator) Next() (doc.Value, int, error) {
	return f.next()
}

func (f *funcIterator) Iterate(iter func(d doc.Value, i int) error) error {
	return iterate(f, iter)
}

func iterate(it Iterator, iter func(d doc.Value, i int) error) error {
	for {
		d, i, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
		if err := iter(d, i); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
}

// Err terminates a Next call with an error.
func Err(err error) (doc.Value, int, error) {
	return nil, -1, err
}

// End terminates a Next call with ErrStopIteration.
func End() (doc.Value, int, error) {
	return nil, -1, ErrStopIteration
}

// IsEnd reports whether err signals normal end of stream.
func IsEnd(err error) bool {
	return errors.Is(err, ErrStopIteration)
}

// Empty returns an Iterator that is already at its end.
func Empty() Iterator {
	return Func(End)
}

func FromSlice(docs []doc.Value) Iterator {
	return &docSlice{docs: docs}
}

func FromChannel(docs <-chan doc.Value) Iterator {
	return &docChannel{ch: docs}
}

func AsChannel(iter Iterator) <-chan doc.Value {
	if chi, ok := iter.(*docChannel); ok {
		return chi.ch
	}
	if chs, ok := iter.(*docSlice); ok {
		ch := make(chan doc.Value, len(chs.docs))
		defer close(ch)
		for i := 0; i < len(chs.docs); i++ {
			ch <- chs.docs[i]
		}
		return ch
	}
	ch := make(chan doc.Value)
	go func() {
		defer close(ch)
		_ = iter.Iterate(func(d doc.Value, i int) error {
			ch <- d
			return nil
		})
	}()
	return ch
}

// Merge takes over the passed in iterators and forwards all their documents
// to the new Iterator. It's advised not to read from an iterator that has
// been passed to Merge.
func Merge(a, b Iterator) Iterator {
	aCh := AsChannel(a)
	bCh := AsChannel(b)

	outCh := make(chan doc.Value)
	out := FromChannel(outCh)

	go func() {
		defer close(outCh)
		for aCh != nil || bCh != nil {
			select {
			case ad, ok := <-aCh:
				if !ok {
					aCh = nil
					continue
				}
				outCh <- ad
			case bd, ok := <-bCh:
				if !ok {
					bCh = nil
					continue
				}
				outCh <- bd
			}
		}
	}()
	return out
}

// Dupe takes control of iter and branches it into two identical iterators.
// Any document posted to the source Iterator is sent to both of the new
// iterators. This is useful when the same stream should be printed as well
// as written to a file. It's not advised to read from an Iterator that has
// been passed to Dupe, use one of the returned iterators instead.
func Dupe(iter Iterator) (Iterator, Iterator) {
	if iter == nil {
		ch := make(chan doc.Value)
		close(ch)
		return FromChannel(ch), FromChannel(ch)
	}

	a := make(chan doc.Value)
	b := make(chan doc.Value)
	aiter := FromChannel(a)
	biter := FromChannel(b)

	go func() {
		sem := semaphore.NewWeighted(2)
		ctx := context.Background()

		defer func() {
			_ = sem.Acquire(ctx, 2)
			close(a)
			close(b)
		}()
		_ = iter.Iterate(func(d doc.Value, i int) error {
			_ = sem.Acquire(ctx, 1)
			go func() {
				defer sem.Release(1)
				a <- d
			}()
			_ = sem.Acquire(ctx, 1)
			go func() {
				defer sem.Release(1)
				b <- d
			}()
			return nil
		})
	}()
	return aiter, biter
}

// Drain drains all documents from an Iterator in a new goroutine. This can
// be useful as an error fallback in case of an iteration error to prevent
// upstream blocking.
func Drain(iter Iterator) {
	ch := AsChannel(iter)
	go func() {
		for range ch {
		}
	}()
}
