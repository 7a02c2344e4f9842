// Package stdstream connects document streams to the standard streams of
// the process.
package stdstream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
	"github.com/saylorsolutions/logframe/plugin"
)

const defaultMessageField = "@message"

func Plugin() plugin.Plugin {
	return new(stdplugin)
}

var _ plugin.Plugin = (*stdplugin)(nil)

type stdplugin struct {
}

func (s *stdplugin) ID() string {
	return "std"
}

func (s *stdplugin) Register(reg *plugin.Registration) {
	reg.RegisterSource("std", "In", SourceIn)
	reg.DocumentSource("std", "In", `std.In

Reads each line of STDIN as a document. The input may be a valid JSON object, or completely unstructured.`)
	reg.RegisterSink("std", "Out", SinkOut)
	reg.DocumentSink("std", "Out", `std.Out

Writes each document as a JSON line to STDOUT.`)
	reg.RegisterSink("std", "Err", SinkErr)
	reg.DocumentSink("std", "Err", `std.Err

Writes each document as a JSON line to STDERR.`)
}

func (s *stdplugin) Stopping() error {
	return nil
}

func SourceIn(ctx context.Context, _ ...plugin.Arg) (iterator.Iterator, error) {
	src := pipeline.JSONSource()
	ch := make(chan doc.Value)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := scanner.Bytes()
			d, ok := src.Transform(line)
			if !ok {
				d = doc.NewObjectBuilder().Put(defaultMessageField, doc.String(line)).Result()
			}
			ch <- d
		}
	}()
	return iterator.FromChannel(ch), nil
}

func SinkOut(ctx context.Context, src iterator.Iterator, _ ...plugin.Arg) error {
	return sinkStream(ctx, src, os.Stdout)
}

func SinkErr(ctx context.Context, src iterator.Iterator, _ ...plugin.Arg) error {
	return sinkStream(ctx, src, os.Stderr)
}

func sinkStream(ctx context.Context, src iterator.Iterator, out io.Writer) error {
	err := src.Iterate(func(d doc.Value, i int) error {
		if ctx.Err() != nil {
			return iterator.ErrStopIteration
		}
		_, err := fmt.Fprintf(out, "%s\n", doc.Stringify(d))
		return err
	})
	if err != nil {
		iterator.Drain(src)
		return err
	}
	return nil
}
