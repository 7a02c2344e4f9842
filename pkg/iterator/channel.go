package iterator

import (
	"github.com/saylorsolutions/logframe/pkg/doc"
)

var _ Iterator = (*docChannel)(nil)

type docChannel struct {
	ch   <-chan doc.Value
	next int
}

func (e *docChannel) Next() (doc.Value, int, error) {
	d, ok := <-e.ch
	if !ok {
		return End()
	}
	cur := e.next
	e.next += 1
	return d, cur, nil
}

func (e *docChannel) Iterate(iter func(d doc.Value, i int) error) error {
	return iterate(e, iter)
}
