package file

import (
	"context"
	"os"
	"time"

	"github.com/nxadm/tail"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
)

const (
	defaultMessageField = "@message"
	readTimeField       = "@read_timestamp"
	readLineField       = "@read_line_number"
)

// Source behaves the same as CtxSource, except that it will use context.Background as the context.
func Source(filename string, src *pipeline.Source) (iterator.Iterator, error) {
	return CtxSource(context.Background(), filename, src)
}

// CtxSource creates an iterator.Iterator over the lines of the given file,
// decoding each line with src. Lines the decoder cannot handle become a
// document with only a @message field. Every document is annotated with the
// read timestamp and line number.
func CtxSource(ctx context.Context, filename string, src *pipeline.Source) (iterator.Iterator, error) {
	return ctxSource(ctx, filename, src, false)
}

// CtxTailSource behaves like CtxSource, but keeps following the file for new
// lines until the context is cancelled, reopening it on rotation.
func CtxTailSource(ctx context.Context, filename string, src *pipeline.Source) (iterator.Iterator, error) {
	return ctxSource(ctx, filename, src, true)
}

func ctxSource(ctx context.Context, filename string, src *pipeline.Source, follow bool) (iterator.Iterator, error) {
	t, err := tail.TailFile(filename, tail.Config{
		ReOpen:    follow,
		MustExist: true,
		Follow:    follow,
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan doc.Value)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				ch <- annotate(decodeLine([]byte(l.Text), src), l.Time, l.Num)
			}
		}
	}()
	return iterator.FromChannel(ch), nil
}

func decodeLine(line []byte, src *pipeline.Source) doc.Value {
	if src != nil {
		if d, ok := src.Transform(line); ok {
			return d
		}
	}
	return doc.NewObjectBuilder().Put(defaultMessageField, doc.String(line)).Result()
}

// annotate stamps read metadata on the document. A decoded line that isn't an
// object has no fields to annotate, so it's wrapped under @message first.
func annotate(d doc.Value, readTime time.Time, line int) doc.Value {
	if _, ok := d.(*doc.Object); !ok {
		d = doc.NewObjectBuilder().Put(defaultMessageField, d).Result()
	}
	d, _ = doc.Set(d, doc.Root.Field(readTimeField), doc.String(readTime.Format(time.RFC3339)))
	d, _ = doc.Set(d, doc.Root.Field(readLineField), doc.Long(int64(line)))
	return d
}

// Sink appends each document in the iterator to the specified file as one
// JSON line, creating the file if necessary. If Sink is called
// asynchronously, it's recommended to wait until it returns to close down
// the application. In case of an error, Sink drains the iterator to prevent
// upstream blocking.
func Sink(iter iterator.Iterator, filename string, perms os.FileMode) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perms)
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	err = iter.Iterate(func(d doc.Value, _ int) error {
		line := append(doc.Stringify(d), '\n')
		_, err := f.Write(line)
		return err
	})
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	return nil
}
