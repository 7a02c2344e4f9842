package file

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
)

func _tempFile(t *testing.T, content string) string {
	t.Helper()
	td := t.TempDir()
	name := filepath.Join(td, "test.log")
	require.NoError(t, os.WriteFile(name, []byte(content), 0600))
	return name
}

func hasField(d doc.Value, key string) bool {
	_, ok := doc.Root.Field(key).Evaluate(d)
	return ok
}

func textField(t *testing.T, d doc.Value, key string) string {
	t.Helper()
	v, ok := doc.Root.Field(key).Evaluate(d)
	require.True(t, ok, "document should have %q field", key)
	s, ok := v.(doc.String)
	require.True(t, ok)
	return string(s)
}

func TestCtxSource_Structured(t *testing.T) {
	name := _tempFile(t, `{"message":"A"}
{"message":"B"}
{"message":"C"}
`)
	iter, err := CtxSource(context.Background(), name, pipeline.JSONSource())
	require.NoError(t, err)
	require.NotNil(t, iter)

	count := 0
	err = iter.Iterate(func(d doc.Value, i int) error {
		count++
		assert.True(t, hasField(d, "message"), "Document should have 'message' field")
		assert.True(t, hasField(d, readTimeField), "Document should have '@read_timestamp' field")
		assert.True(t, hasField(d, readLineField), "Document should have '@read_line_number' field")
		switch count {
		case 1:
			assert.Equal(t, "A", textField(t, d, "message"))
		case 2:
			assert.Equal(t, "B", textField(t, d, "message"))
		case 3:
			assert.Equal(t, "C", textField(t, d, "message"))
		default:
			t.Error("Should not have consumed 4+ documents")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCtxSource_Unstructured(t *testing.T) {
	name := _tempFile(t, "A\nB\nC\n")
	iter, err := CtxSource(context.Background(), name, pipeline.JSONSource())
	require.NoError(t, err)

	count := 0
	err = iter.Iterate(func(d doc.Value, i int) error {
		count++
		assert.True(t, hasField(d, defaultMessageField), "Document should have '@message' field")
		assert.True(t, hasField(d, readTimeField))
		assert.True(t, hasField(d, readLineField))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCtxSource_NonObjectLine(t *testing.T) {
	name := _tempFile(t, "[1,2,3]\n")
	iter, err := CtxSource(context.Background(), name, pipeline.JSONSource())
	require.NoError(t, err)

	d, _, err := iter.Next()
	require.NoError(t, err)
	msg, ok := doc.Root.Field(defaultMessageField).Evaluate(d)
	require.True(t, ok, "non-object line should land under '@message'")
	assert.True(t, doc.Equal(doc.Array{doc.Int(1), doc.Int(2), doc.Int(3)}, msg))
	assert.True(t, hasField(d, readTimeField))
	assert.True(t, hasField(d, readLineField))
}

func TestCtxSource_Syslog(t *testing.T) {
	name := _tempFile(t, "<34>Oct 11 22:14:15 mymachine su: failed\n")
	src, err := sourceFor("rfc3164")
	require.NoError(t, err)
	iter, err := CtxSource(context.Background(), name, src)
	require.NoError(t, err)

	d, _, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, "mymachine", textField(t, d, "hostname"))
	assert.Equal(t, "su", textField(t, d, "appName"))
	assert.Equal(t, "failed", textField(t, d, "message"))
}

func TestSink(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.log")
	iter := iterator.FromSlice([]doc.Value{
		doc.NewObjectBuilder().Put("A", doc.String("A")).Result(),
		doc.NewObjectBuilder().Put("B", doc.Int(2)).Result(),
	})
	require.NoError(t, Sink(iter, name, 0600))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)
	assert.Equal(t, `{"A":"A"}`, lines[0])
	assert.Equal(t, `{"B":2}`, lines[1])
}
