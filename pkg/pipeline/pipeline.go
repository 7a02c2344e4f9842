// Package pipeline defines the per-element transformer contract and the
// codec-backed transformers built on it. A transformer maps one input to zero
// or one output; it never panics and never surfaces a codec error to the
// stream. Instances hold no shared state beyond their configuration, so one
// instance may serve one stream at a time.
package pipeline

import (
	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/syslog"
)

// Transformer is the unit of pipeline computation. Transform returns the
// output element and true, or the zero value and false to drop the element.
type Transformer[I, O any] interface {
	Transform(in I) (O, bool)
}

// Func adapts a plain function to a Transformer.
type Func[I, O any] func(in I) (O, bool)

func (f Func[I, O]) Transform(in I) (O, bool) {
	return f(in)
}

// Source decodes one wire frame into a document. A decode failure falls back
// to Fallback when set, otherwise the frame is dropped.
type Source struct {
	Decode   func(frame []byte) (doc.Value, error)
	Fallback func(frame []byte) (doc.Value, bool)
}

var _ Transformer[[]byte, doc.Value] = (*Source)(nil)

func (s *Source) Transform(frame []byte) (doc.Value, bool) {
	d, err := s.Decode(frame)
	if err == nil {
		return d, true
	}
	if s.Fallback != nil {
		return s.Fallback(frame)
	}
	return nil, false
}

// Sink encodes one document into a wire frame, dropping documents the
// encoder cannot express.
type Sink struct {
	Encode func(d doc.Value) ([]byte, error)
}

var _ Transformer[doc.Value, []byte] = (*Sink)(nil)

func (s *Sink) Transform(d doc.Value) ([]byte, bool) {
	frame, err := s.Encode(d)
	if err != nil {
		return nil, false
	}
	return frame, true
}

// JSONSource decodes each frame as one JSON document.
func JSONSource() *Source {
	return &Source{Decode: doc.Parse}
}

// RFC5424Source decodes each frame as an RFC 5424 syslog message.
func RFC5424Source(cfg syslog.Config) *Source {
	return &Source{Decode: func(frame []byte) (doc.Value, error) {
		return syslog.ParseRFC5424(frame, cfg)
	}}
}

// RFC3164Source decodes each frame as a BSD syslog message.
func RFC3164Source(binding syslog.Binding) *Source {
	return &Source{Decode: func(frame []byte) (doc.Value, error) {
		return syslog.ParseRFC3164(frame, binding)
	}}
}

// JSONSink encodes each document as its canonical JSON text.
func JSONSink() *Sink {
	return &Sink{Encode: func(d doc.Value) ([]byte, error) {
		return doc.Stringify(d), nil
	}}
}

// RFC5424Sink prints each document as an RFC 5424 frame.
func RFC5424Sink(binding syslog.Binding) *Sink {
	return &Sink{Encode: func(d doc.Value) ([]byte, error) {
		return syslog.PrintRFC5424(d, binding), nil
	}}
}

// RFC3164Sink prints each document as a BSD syslog frame.
func RFC3164Sink(binding syslog.Binding) *Sink {
	return &Sink{Encode: func(d doc.Value) ([]byte, error) {
		return syslog.PrintRFC3164(d, binding), nil
	}}
}
