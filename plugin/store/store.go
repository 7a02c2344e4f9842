// Package store lands document streams in SQLite and reads them back.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
)

const defaultMessageField = "@message"

// SqliteStore is a store for documents using Sqlite3 as a storage engine.
// Top-level document fields map to table columns, added on the fly as new
// fields appear.
type SqliteStore struct {
	db  *sql.DB
	log hclog.Logger
}

func NewStore(log hclog.Logger, filename string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	log = log.Named("sqlite-document-store")
	return &SqliteStore{
		db:  db,
		log: log,
	}, nil
}

// QueryDocuments returns an iterator over all rows of the given table, one
// document per row.
func (s *SqliteStore) QueryDocuments(table string) (iterator.Iterator, error) {
	return s.CtxQueryDocuments(context.Background(), table)
}

func (s *SqliteStore) CtxQueryDocuments(ctx context.Context, table string) (iterator.Iterator, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	rows, err := s.db.QueryContext(ctx, "select * from "+table)
	if err != nil {
		return nil, err
	}
	return newQueryIterator(s.log, rows)
}

// Sink behaves the same as CtxSink, except that it will use context.Background as the context.
func (s *SqliteStore) Sink(iter iterator.Iterator, table string) error {
	return s.CtxSink(context.Background(), iter, table)
}

var (
	tablePattern = regexp.MustCompile(`^[\w\d]+(\.[\w\d]+)?$`)
	ErrBadTable  = errors.New("invalid table name")
)

// CtxSink lands every document from the iterator into the given table,
// creating the table and any missing columns as needed.
func (s *SqliteStore) CtxSink(ctx context.Context, iter iterator.Iterator, table string) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	s.log.Debug("Establishing connection")
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	s.log.Debug("Ensuring the specified table is present")
	if err := s.ensureTable(ctx, conn, table); err != nil {
		iterator.Drain(iter)
		_ = conn.Close()
		return err
	}
	s.log.Debug("Getting table columns")
	cols, err := s.getTableColumns(ctx, conn, table)
	if err != nil {
		iterator.Drain(iter)
		_ = conn.Close()
		return err
	}
	colMap := map[string]bool{}
	for _, c := range cols {
		colMap[c] = true
	}

	s.log.Debug("Starting sink operation")
	s.sink(ctx, conn, table, iter, colMap)
	return nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) ensureTable(ctx context.Context, conn *sql.Conn, table string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf(createTable, table))
	return err
}

func (s *SqliteStore) getTableColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "select * from "+table)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return rows.Columns()
}

// flatten maps the top-level fields of a document to column text values.
// Scalars store their canonical text, composites their JSON text. A
// non-object document lands whole under the @message column.
func flatten(d doc.Value) ([]string, []string) {
	obj, ok := d.(*doc.Object)
	if !ok {
		return []string{defaultMessageField}, []string{string(doc.Stringify(d))}
	}
	keys := obj.Keys()
	vals := make([]string, len(keys))
	for i, k := range keys {
		v, _ := obj.Get(k)
		if text, ok := doc.AsText(v); ok {
			vals[i] = text
			continue
		}
		vals[i] = string(doc.Stringify(v))
	}
	return keys, vals
}

func (s *SqliteStore) sink(ctx context.Context, conn *sql.Conn, table string, iter iterator.Iterator, colMap map[string]bool) {
	log := s.log.With("table", table).Named("sink")

	defer func() {
		_ = conn.Close()
		log.Debug("DB connection closed")
	}()

	err := iter.Iterate(func(d doc.Value, i int) error {
		if ctx.Err() != nil {
			log.Debug("Context cancelled")
			return iterator.ErrStopIteration
		}

		intoFields, vals := flatten(d)
		for _, k := range intoFields {
			if !colMap[k] {
				log.Debug("New field discovered, adding to table", "field", k)
				if err := s.addColumn(ctx, conn, table, k); err != nil {
					log.Error("Failed to add field to table", "field", k, "error", err)
					return err
				}
				colMap[k] = true
			}
		}

		var intoStr strings.Builder
		var params strings.Builder
		for i, f := range intoFields {
			if i > 0 {
				intoStr.WriteString(",")
				params.WriteString(",")
			}
			intoStr.WriteString("\"" + f + "\"")
			params.WriteString("?")
		}
		query := fmt.Sprintf("insert into %s (%s) values (%s)", table, intoStr.String(), params.String())
		log.Debug("Inserting document into table", "query", query)
		stmt, err := conn.PrepareContext(ctx, query)
		if err != nil {
			log.Error("Failed to prepare statement", "error", err)
			return err
		}
		defer func() {
			_ = stmt.Close()
		}()
		args := make([]any, len(vals))
		for i, v := range vals {
			args[i] = v
		}
		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			log.Error("Failed to insert into table", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		log.Error("Error sinking to DB, draining iterator", "error", err)
		iterator.Drain(iter)
		return
	}
}

func (s *SqliteStore) addColumn(ctx context.Context, conn *sql.Conn, table string, colName string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf("alter table %s add column \"%s\" text null", table, colName))
	if err != nil {
		return err
	}
	return nil
}
