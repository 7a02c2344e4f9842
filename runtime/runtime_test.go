package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
	"github.com/saylorsolutions/logframe/plugin"
)

func TestSession_Lifecycle(t *testing.T) {
	p := newCollectPlugin()
	s := NewSession(hclog.NewNullLogger(), p)

	assert.ErrorIs(t, s.Stop(), ErrInvalidState, "cannot stop before start")
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrInvalidState, "cannot start twice")

	require.NoError(t, s.Source("in", "test", "Source"))
	require.NoError(t, s.Sink("in", "test", "Collect"))
	require.NoError(t, s.Stop())
	assert.True(t, p.stopped, "plugins see Stopping on session stop")
	assert.Len(t, p.collected(), 3)
}

func TestSession_TransformAndSink(t *testing.T) {
	p := newCollectPlugin()
	s := NewSession(hclog.NewNullLogger(), p)
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Source("in", "test", "Source"))
	require.NoError(t, s.Transform("in", pipeline.NewJSON(pipeline.JSONConfig{
		Source: doc.Root.Field("message"),
		Target: &doc.Root,
	})))
	require.NoError(t, s.Tag("in", "test-run"))
	require.NoError(t, s.Sink("in", "test", "Collect"))

	docs := p.collected()
	require.Len(t, docs, 3)
	for _, d := range docs {
		v, ok := doc.Root.Field(iterator.StandardTagField).Evaluate(d)
		require.True(t, ok)
		assert.True(t, doc.Equal(doc.String("test-run"), v))
	}
	v, ok := doc.Root.Field("n").Evaluate(docs[1])
	require.True(t, ok, "second document's message should have merged into the root")
	assert.True(t, doc.Equal(doc.Int(2), v))
}

func TestSession_ConsumedStreams(t *testing.T) {
	s := NewSession(hclog.NewNullLogger(), newCollectPlugin())
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Source("a", "test", "Source"))
	require.NoError(t, s.Source("b", "test", "Source"))
	require.NoError(t, s.Merge("both", "a", "b"))

	assert.ErrorIs(t, s.Sink("a", "test", "Collect"), ErrConsumed)
	assert.ErrorIs(t, s.Source("both", "test", "Source"), ErrAlreadyDefined)
	assert.ErrorIs(t, s.Sink("missing", "test", "Collect"), ErrUndefined)
	assert.ErrorIs(t, s.Sink("", "test", "Collect"), ErrEmptyID)
	assert.ErrorIs(t, s.Sink("both", "test", "Nope"), ErrUnknownSink)
	assert.ErrorIs(t, s.Source("c", "test", "Nope"), ErrUnknownSource)

	require.NoError(t, s.Sink("both", "test", "Collect"))
}

func TestSession_DupeAndAsyncSink(t *testing.T) {
	p := newCollectPlugin()
	s := NewSession(hclog.NewNullLogger(), p)
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Source("in", "test", "Source"))
	require.NoError(t, s.Dupe("in", "left", "right"))
	require.NoError(t, s.SinkAsync("left", "test", "Collect"))
	require.NoError(t, s.Sink("right", "test", "Collect"))
	require.NoError(t, s.Stop(), "stop waits for the async sink")
	assert.Len(t, p.collected(), 6)
}

var _ plugin.Plugin = (*collectPlugin)(nil)

// collectPlugin provides a fixed three-document source and a sink that
// gathers everything it sees.
type collectPlugin struct {
	mu      sync.Mutex
	docs    []doc.Value
	stopped bool
}

func newCollectPlugin() *collectPlugin {
	return &collectPlugin{}
}

func (p *collectPlugin) ID() string {
	return "test"
}

func (p *collectPlugin) Stopping() error {
	p.stopped = true
	return nil
}

func (p *collectPlugin) collected() []doc.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]doc.Value(nil), p.docs...)
}

func (p *collectPlugin) Register(reg *plugin.Registration) {
	reg.RegisterSource("test", "Source", func(ctx context.Context, args ...plugin.Arg) (iterator.Iterator, error) {
		return iterator.FromSlice([]doc.Value{
			doc.NewObjectBuilder().Put("message", doc.String(`{"n":1}`)).Result(),
			doc.NewObjectBuilder().Put("message", doc.String(`{"n":2}`)).Result(),
			doc.NewObjectBuilder().Put("message", doc.String(`{"n":3}`)).Result(),
		}), nil
	})
	reg.RegisterSink("test", "Collect", func(ctx context.Context, src iterator.Iterator, args ...plugin.Arg) error {
		return src.Iterate(func(d doc.Value, i int) error {
			p.mu.Lock()
			p.docs = append(p.docs, d)
			p.mu.Unlock()
			return nil
		})
	})
}
