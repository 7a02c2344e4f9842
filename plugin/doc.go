// Package plugin provides document sources and sinks that go beyond what
// iterators and the core codecs offer on their own. Each plugin lives in its
// own package under this one, so unneeded functionality can be omitted from a
// build.
//
// "Source" functions should take input and return an iterator.Iterator and
// potentially an error, and operate asynchronously. Sources should close any
// resources, like file handles or channels, and stop the associated goroutine
// when they have reached the end of their input.
//
// "Sink" functions should take an iterator.Iterator - and optionally other
// parameters - and operate synchronously (the user may decide to call a Sink
// function in a goroutine). Sink functions should use iterator.Drain on an
// iterator if they encounter an error to prevent upstream blocking.
//
//	Current Plugins:
//	- file provides source and sink for files, including tail support.
//	- stdstream provides stdin source and stdout/stderr sinks.
//	- store provides SQLite source and sink.
package plugin
