package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
)

const (
	createTable = `
create table if not exists %s (
	evt_id integer primary key
)`
)

var (
	ErrUnexpectedColumnType = errors.New("unexpected column type")
)

// newQueryIterator rebuilds one document per row. The evt_id key column
// binds as a long, every other column as text; NULL columns are absent from
// the document.
func newQueryIterator(log hclog.Logger, rows *sql.Rows) (iterator.Iterator, error) {
	cols, err := rows.Columns()
	if err != nil {
		log.Error("Failed to query parameters", "error", err)
		return nil, err
	}
	var rowNum int

	if len(cols) == 0 {
		return iterator.Empty(), nil
	}

	return iterator.Func(func() (doc.Value, int, error) {
		if !rows.Next() {
			_ = rows.Close()
			return iterator.End()
		}
		rowNum++
		var rowID int64
		vals := make([]any, len(cols))
		if cols[0] == "evt_id" {
			vals[0] = &rowID
			for i := 1; i < len(vals); i++ {
				vals[i] = &sql.NullString{}
			}
		} else {
			for i := range vals {
				vals[i] = &sql.NullString{}
			}
		}
		if err := rows.Scan(vals...); err != nil {
			_ = rows.Close()
			return iterator.Err(err)
		}

		b := doc.NewObjectBuilder()
		for i, v := range vals {
			switch s := v.(type) {
			case *sql.NullString:
				if s.Valid {
					b.Put(cols[i], doc.String(s.String))
				}
			case *int64:
				b.Put(cols[i], doc.Long(*s))
			default:
				return iterator.Err(fmt.Errorf("%w: %T", ErrUnexpectedColumnType, v))
			}
		}
		return b.Result(), rowNum, nil
	}), nil
}
