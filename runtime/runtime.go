// Package runtime wires plugin sources, transformers, and sinks into a
// running session.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/iterator"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
	"github.com/saylorsolutions/logframe/plugin"
)

var (
	ErrEmptyID        = errors.New("empty ID")
	ErrUndefined      = errors.New("undefined identifier")
	ErrConsumed       = errors.New("identifier has been consumed")
	ErrAlreadyDefined = errors.New("identifier is already in use")
	ErrInvalidState   = errors.New("invalid state")
	ErrUnknownSource  = errors.New("unknown source class")
	ErrUnknownSink    = errors.New("unknown sink class")
)

type sessionState int

const (
	created sessionState = iota
	started
	stopping
	done
)

var (
	stateStrings = map[sessionState]string{
		created:  "Created",
		started:  "Started",
		stopping: "Stopping",
		done:     "Done",
	}
)

// Session owns a set of plugins and the named document streams flowing
// between their sources and sinks. Streams are identified by caller-chosen
// IDs; a stream that has been merged, duped, or appended into another is
// consumed and may not be read again.
type Session struct {
	log       hclog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	registry  *plugin.Registration
	plugins   []plugin.Plugin
	sources   []iterator.Iterator
	consumed  []bool
	sourceIDs map[string]int
	wg        sync.WaitGroup
	state     sessionState
}

func NewSession(log hclog.Logger, plugins ...plugin.Plugin) *Session {
	return &Session{
		log:       log.Named("session"),
		registry:  plugin.NewRegistration(),
		plugins:   plugins,
		sourceIDs: map[string]int{},
	}
}

// Docs returns the documentation of every source and sink registered by the
// session's plugins. Only valid after Start.
func (s *Session) Docs() string {
	return s.registry.AllDocs()
}

func (s *Session) Start(_ctx context.Context) error {
	start := time.Now()
	log := s.log
	log.Debug("Starting session")
	if s.state != created {
		err := fmt.Errorf("%w: invalid state for start operation: %s", ErrInvalidState, stateStrings[s.state])
		log.Error("Invalid state to start", "error", err)
		return err
	}
	log.Debug("Registering plugins")
	s.ctx, s.cancel = context.WithCancel(_ctx)
	for _, p := range s.plugins {
		start := time.Now()
		log := log.With("plugin-id", p.ID(), "started", start)
		log.Debug("Registering plugin")
		p.Register(s.registry)
		log.Debug("Done registering plugin", "duration", time.Since(start).String())
	}
	s.state = started
	completed := time.Now()
	log.Info("Session started", "start-duration", completed.Sub(start).String(), "started", completed)
	return nil
}

func (s *Session) Stop() (rerr error) {
	start := time.Now()
	log := s.log.With("stopping", start)
	log.Debug("Stopping session")
	if s.state != started {
		err := fmt.Errorf("%w: invalid state for stop operation: %s", ErrInvalidState, stateStrings[s.state])
		log.Error("Invalid state to stop session", "error", err)
		return err
	}
	s.state = stopping
	log.Debug("Cancelling session context")
	s.cancel()
	log.Debug("Waiting for operations to cease")
	s.wg.Wait()
	log.Debug("Shutting down plugins")
	for _, p := range s.plugins {
		log := log.With("plugin-id", p.ID())
		log.Debug("Stopping plugin")
		if err := p.Stopping(); err != nil {
			log.Error("Error stopping plugin", "error", err)
			if rerr == nil {
				rerr = err
			}
		}
		log.Debug("Plugin stopped")
	}
	s.state = done
	log.Info("Session stopped", "stop-duration", time.Since(start).String())
	return rerr
}

// Source creates a stream with the given ID from a registered plugin source
// like "file.Tail".
func (s *Session) Source(id, qualifier, class string, args ...string) error {
	if s.state != started {
		return fmt.Errorf("%w: session not started", ErrInvalidState)
	}
	if err := s.validateNewSourceID(id); err != nil {
		return err
	}
	src, _, ok := s.registry.Source(qualifier, class)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownSource, qualifier, class)
	}
	iter, err := src(s.ctx, plugin.Args(args...)...)
	if err != nil {
		s.log.Error("Failed to create source", "id", id, "error", err)
		return err
	}
	s.addSource(id, iter)
	return nil
}

// AddSource registers an externally constructed iterator under the given ID.
func (s *Session) AddSource(id string, iter iterator.Iterator) error {
	if err := s.validateNewSourceID(id); err != nil {
		return err
	}
	s.addSource(id, iter)
	return nil
}

// Sink feeds the identified stream to a registered plugin sink, consuming
// the stream. The call blocks until the sink finishes.
func (s *Session) Sink(id, qualifier, class string, args ...string) error {
	sink, iter, err := s.prepareSink(id, qualifier, class)
	if err != nil {
		return err
	}
	return sink(s.ctx, iter, plugin.Args(args...)...)
}

// SinkAsync behaves like Sink but runs the sink in its own goroutine. Stop
// waits for all async sinks to finish.
func (s *Session) SinkAsync(id, qualifier, class string, args ...string) error {
	sink, iter, err := s.prepareSink(id, qualifier, class)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := sink(s.ctx, iter, plugin.Args(args...)...); err != nil {
			s.log.Error("Async sink failed", "id", id, "error", err)
		}
	}()
	return nil
}

func (s *Session) prepareSink(id, qualifier, class string) (plugin.SinkFunc, iterator.Iterator, error) {
	if s.state != started {
		return nil, nil, fmt.Errorf("%w: session not started", ErrInvalidState)
	}
	if err := s.validateExistingSourceID(id); err != nil {
		return nil, nil, err
	}
	sink, _, ok := s.registry.Sink(qualifier, class)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownSink, qualifier, class)
	}
	iter := s.getSource(id)
	s.markConsumed(id)
	return sink, iter, nil
}

// Transform replaces the identified stream with one that routes every
// document through tr, dropping discarded documents.
func (s *Session) Transform(id string, tr pipeline.Transformer[doc.Value, doc.Value]) error {
	if err := s.validateExistingSourceID(id); err != nil {
		return err
	}
	s.replaceSource(id, iterator.Transformed(s.getSource(id), tr))
	return nil
}

// Tag sets the standard tag field on every document of the stream.
func (s *Session) Tag(id, tag string) error {
	if err := s.validateExistingSourceID(id); err != nil {
		return err
	}
	s.replaceSource(id, iterator.Tag(s.getSource(id), tag))
	return nil
}

// Merge combines two streams into a new one, consuming both.
func (s *Session) Merge(id, sourceA, sourceB string) error {
	if err := s.validateExistingSourceID(sourceA); err != nil {
		return err
	}
	if err := s.validateExistingSourceID(sourceB); err != nil {
		return err
	}
	if err := s.validateNewSourceID(id); err != nil {
		return err
	}
	a, b := s.getSource(sourceA), s.getSource(sourceB)
	s.markConsumed(sourceA, sourceB)
	s.addSource(id, iterator.Merge(a, b))
	return nil
}

// Dupe branches one stream into two identical ones, consuming the original.
func (s *Session) Dupe(source, targetA, targetB string) error {
	if err := s.validateExistingSourceID(source); err != nil {
		return err
	}
	if err := s.validateNewSourceID(targetA); err != nil {
		return err
	}
	if err := s.validateNewSourceID(targetB); err != nil {
		return err
	}
	src := s.getSource(source)
	s.markConsumed(source)
	a, b := iterator.Dupe(src)
	s.addSource(targetA, a)
	s.addSource(targetB, b)
	return nil
}

// Append consumes the source stream and schedules its documents after the
// target stream's own.
func (s *Session) Append(source, target string) error {
	if err := s.validateExistingSourceID(source); err != nil {
		return err
	}
	if err := s.validateExistingSourceID(target); err != nil {
		return err
	}
	s.markConsumed(source)
	src, tgt := s.getSource(source), s.getSource(target)
	s.replaceSource(target, iterator.Concat(tgt, src))
	return nil
}

func (s *Session) validateNewSourceID(id string) error {
	if emptyID(id) {
		return ErrEmptyID
	}
	_, ok := s.sourceIDs[id]
	if ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, id)
	}
	return nil
}

func (s *Session) validateExistingSourceID(id string) error {
	if emptyID(id) {
		return ErrEmptyID
	}
	i, ok := s.sourceIDs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUndefined, id)
	}
	if s.consumed[i] {
		return fmt.Errorf("%w: %s", ErrConsumed, id)
	}
	return nil
}

func (s *Session) getSource(id string) iterator.Iterator {
	i := s.sourceIDs[id]
	return s.sources[i]
}

func (s *Session) addSource(id string, iter iterator.Iterator) {
	i := len(s.sources)
	s.sources = append(s.sources, iter)
	s.consumed = append(s.consumed, false)
	s.sourceIDs[id] = i
}

func (s *Session) replaceSource(id string, iter iterator.Iterator) {
	s.sources[s.sourceIDs[id]] = iter
}

func (s *Session) markConsumed(ids ...string) {
	for _, id := range ids {
		i := s.sourceIDs[id]
		s.consumed[i] = true
	}
}

func emptyID(id string) bool {
	return len(strings.TrimSpace(id)) == 0
}
