package iterator

import (
	"github.com/saylorsolutions/logframe/pkg/doc"
)

var _ Iterator = (*docSlice)(nil)

type docSlice struct {
	docs []doc.Value
	next int
}

func (e *docSlice) Next() (doc.Value, int, error) {
	cur := e.next
	if len(e.docs) > cur {
		e.next += 1
		return e.docs[cur], cur, nil
	}
	return End()
}

func (e *docSlice) Iterate(iter func(d doc.Value, i int) error) error {
	return iterate(e, iter)
}
