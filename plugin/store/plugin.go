package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/plugin"
)

func Plugin() plugin.Plugin {
	return &sqlitePlugin{
		storeCache: map[string]*SqliteStore{},
	}
}

type sqlitePlugin struct {
	storeCache map[string]*SqliteStore
}

func (p *sqlitePlugin) ID() string {
	return "sqlite"
}

func (p *sqlitePlugin) Stopping() error {
	var errs []string
	for file, store := range p.storeCache {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", file, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("error closing SQLite plugin: %s", strings.Join(errs, ", "))
}

func (p *sqlitePlugin) store(file string) (*SqliteStore, error) {
	store, ok := p.storeCache[file]
	if ok {
		return store, nil
	}
	store, err := NewStore(hclog.Default(), file)
	if err != nil {
		return nil, err
	}
	p.storeCache[file] = store
	return store, nil
}

func tableArgs(args []plugin.Arg) (string, string, error) {
	if len(args) < 2 {
		return "", "", fmt.Errorf("%w: requires 2 arguments", plugin.ErrArgs)
	}
	file := args[0].String
	if file == "" {
		return "", "", fmt.Errorf("%w: file name string must be specified as first argument", plugin.ErrArgs)
	}
	table := args[1].String
	if table == "" {
		return "", "", fmt.Errorf("%w: table name string must be specified as second argument", plugin.ErrArgs)
	}
	return file, table, nil
}

func (p *sqlitePlugin) Register(reg *plugin.Registration) {
	reg.RegisterSource("sqlite", "Table", func(ctx context.Context, args ...plugin.Arg) (iterator.Iterator, error) {
		file, table, err := tableArgs(args)
		if err != nil {
			return nil, err
		}
		store, err := p.store(file)
		if err != nil {
			return nil, err
		}
		return store.CtxQueryDocuments(ctx, table)
	})
	reg.DocumentSource("sqlite", "Table", `sqlite.Table FILE_NAME TABLE_NAME

This source will query all rows from a table and return each row as a document.
It may not return continuously added rows, so it should be used for tables that represent a static snapshot of a stream.`)
	reg.RegisterSink("sqlite", "Table", func(ctx context.Context, src iterator.Iterator, args ...plugin.Arg) error {
		file, table, err := tableArgs(args)
		if err != nil {
			return err
		}
		store, err := p.store(file)
		if err != nil {
			return err
		}
		return store.CtxSink(ctx, src, table)
	})
	reg.DocumentSink("sqlite", "Table", `sqlite.Table FILE_NAME TABLE_NAME

This sink will land all documents into the SQLite database table specified. The TABLE_NAME argument may be prefixed with a schema name like "my_schema.my_table".
If the table does not exist, then it will be created with an integer primary key column called evt_id. Table columns will be created as needed, one for each top-level document field.
This means that the table may trend toward being sparsely populated if the input documents are largely heterogeneous.`)
}
