package file

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
	"github.com/saylorsolutions/logframe/pkg/syslog"
	"github.com/saylorsolutions/logframe/plugin"
)

func Plugin() plugin.Plugin {
	return new(filePlugin)
}

type filePlugin struct{}

func (*filePlugin) ID() string {
	return "file"
}

func (*filePlugin) Stopping() error {
	return nil
}

// sourceFor maps a format argument to a frame decoder.
func sourceFor(format string) (*pipeline.Source, error) {
	switch format {
	case "", "json":
		return pipeline.JSONSource(), nil
	case "rfc5424":
		return pipeline.RFC5424Source(syslog.Config{Binding: syslog.DefaultBinding()}), nil
	case "rfc3164":
		return pipeline.RFC3164Source(syslog.DefaultBinding()), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", plugin.ErrArgs, format)
	}
}

func sourceArgs(args []plugin.Arg) (string, *pipeline.Source, error) {
	if len(args) < 1 {
		return "", nil, fmt.Errorf("%w: requires a file name argument", plugin.ErrArgs)
	}
	format := ""
	if len(args) >= 2 {
		format = args[1].String
	}
	src, err := sourceFor(format)
	if err != nil {
		return "", nil, err
	}
	return args[0].String, src, nil
}

func (*filePlugin) Register(reg *plugin.Registration) {
	reg.RegisterSource("file", "Tail", func(ctx context.Context, args ...plugin.Arg) (iterator.Iterator, error) {
		name, src, err := sourceArgs(args)
		if err != nil {
			return nil, err
		}
		return CtxTailSource(ctx, name, src)
	})
	reg.DocumentSource("file", "Tail", `file.Tail FILE_NAME [FORMAT]

This source will watch the file specified by FILE_NAME for changes, producing a new document for each new line.
Just like the file.File source, FORMAT selects the line decoder: "json" (the default), "rfc5424", or "rfc3164".`)
	reg.RegisterSource("file", "File", func(ctx context.Context, args ...plugin.Arg) (iterator.Iterator, error) {
		name, src, err := sourceArgs(args)
		if err != nil {
			return nil, err
		}
		return CtxSource(ctx, name, src)
	})
	reg.DocumentSource("file", "File", `file.File FILE_NAME [FORMAT]

This source will read each line of the file specified by FILE_NAME, emitting a document for each one.
FORMAT selects the line decoder: "json" (the default), "rfc5424", or "rfc3164".
If a line cannot be decoded, it is emitted as-is in a document with a field "@message" containing the original line.
Every document carries additional fields specifying read timing.`)
	reg.RegisterSink("file", "File", func(_ context.Context, src iterator.Iterator, args ...plugin.Arg) error {
		if len(args) < 1 {
			return fmt.Errorf("%w: requires 1 or 2 arguments", plugin.ErrArgs)
		}

		if len(args) >= 2 {
			perms, err := strconv.ParseUint(args[1].String, 8, 32)
			if err != nil {
				return fmt.Errorf("%w: invalid file permission argument", plugin.ErrArgs)
			}
			return Sink(src, args[0].String, os.FileMode(perms))
		}
		return Sink(src, args[0].String, 0600)
	})
	reg.DocumentSink("file", "File", `file.File FILE_NAME [FILE_MODE]

This sink will append each document as a JSON line to a file specified by FILE_NAME, creating it if necessary.
If FILE_MODE is specified, and it's a string representing a valid octal file mode like "644", then this mode will be used to create the file if it doesn't already exist.
If FILE_MODE is specified but invalid, then the sink operation will fail.
If FILE_MODE is not specified, then a value of "600" will be assumed.
The file's permissions will not be modified if it already exists.`)
}
