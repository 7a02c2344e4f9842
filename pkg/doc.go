// Package pkg provides the core functionality of working with structured
// documents and iterators over them.
// This package (and subpackages) is a dependency of anything in the plugin package.
//   - The doc package contains the document value model, pointers, patches, and the JSON codec.
//   - The parse package contains the byte-level parser combinators the codecs are built on.
//   - The bind package maps raw wire scalars to and from named document fields.
//   - The syslog package parses and prints RFC 5424 and RFC 3164 frames.
//   - The pipeline package defines the per-document transformer contract and its codec adapters.
//   - The iterator package contains functions for creating and altering the behavior of an iterator.Iterator.
package pkg
