// Package syslog parses and prints RFC 5424 and RFC 3164 frames. Both
// directions run off one Binding: the parser hands captured slices to each
// field's binder, and the printer replays the same binders in reverse over a
// document.
package syslog

import (
	"errors"
	"fmt"

	"github.com/saylorsolutions/logframe/pkg/bind"
	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/parse"
)

var (
	// ErrMalformed is the sentinel wrapped by every ParseError.
	ErrMalformed = errors.New("malformed syslog frame")
)

// ParseError reports a grammar violation at a byte offset within the frame.
type ParseError struct {
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed syslog frame at offset %d", e.Offset)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

func malformed(c *parse.Cursor, err error) error {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return &ParseError{Offset: perr.Offset}
	}
	return &ParseError{Offset: c.Pos()}
}

// Mode selects the RFC 5424 per-field length caps. Strict follows the RFC;
// Lenient doubles the appName and msgId caps for producers that run long.
type Mode int

const (
	Strict Mode = iota
	Lenient
)

type fieldLimits struct {
	hostname int
	appName  int
	procID   int
	msgID    int
}

func (m Mode) limits() fieldLimits {
	if m == Lenient {
		return fieldLimits{hostname: 255, appName: 96, procID: 128, msgID: 64}
	}
	return fieldLimits{hostname: 255, appName: 48, procID: 128, msgID: 32}
}

// Binding maps each syslog field to an optional binder. A nil binder means
// the field is captured and discarded. For RFC 3164, AppName binds the TAG
// and ProcID binds the bracketed PID.
type Binding struct {
	Facility   bind.Binder
	Severity   bind.Binder
	Timestamp  bind.Binder
	Hostname   bind.Binder
	AppName    bind.Binder
	ProcID     bind.Binder
	MsgID      bind.Binder
	StructData bind.Binder
	Message    bind.Binder
}

// Config carries everything an RFC 5424 parse needs.
type Config struct {
	Mode    Mode
	Binding Binding
}

// Standard document field names used by DefaultBinding.
const (
	FieldFacility   = "facility"
	FieldSeverity   = "severity"
	FieldTimestamp  = "timestamp"
	FieldHostname   = "hostname"
	FieldAppName    = "appName"
	FieldProcID     = "procId"
	FieldMsgID      = "msgId"
	FieldStructData = "structData"
	FieldMessage    = "message"
)

// DefaultBinding binds every field under its standard name.
func DefaultBinding() Binding {
	return Binding{
		Facility:   bind.Int(FieldFacility),
		Severity:   bind.Int(FieldSeverity),
		Timestamp:  bind.String(FieldTimestamp),
		Hostname:   bind.String(FieldHostname),
		AppName:    bind.String(FieldAppName),
		ProcID:     bind.String(FieldProcID),
		MsgID:      bind.String(FieldMsgID),
		StructData: bind.String(FieldStructData),
		Message:    bind.String(FieldMessage),
	}
}

// bindOrFail runs the binder against a captured raw scalar. A nil binder
// discards the capture; a rejection surfaces as a parse failure at offset.
func bindOrFail(b *doc.ObjectBuilder, binder bind.Binder, raw bind.Raw, offset int) error {
	if binder == nil {
		return nil
	}
	if !binder.Bind(b, raw) {
		return &ParseError{Offset: offset}
	}
	return nil
}

// parsePri consumes "<N>" with 0 <= N <= 191 and returns N.
func parsePri(c *parse.Cursor) (int, error) {
	pri := 0
	p := parse.Seq(
		parse.Ch('<'),
		parse.Capture(parse.Times(parse.Range('0', '9'), 1, 3), func(raw []byte) bool {
			n := 0
			for _, d := range raw {
				n = n*10 + int(d-'0')
			}
			if n > 191 {
				return false
			}
			pri = n
			return true
		}),
		parse.Ch('>'),
	)
	if err := p(c); err != nil {
		return 0, malformed(c, err)
	}
	return pri, nil
}

func bindPri(b *doc.ObjectBuilder, binding Binding, pri int) error {
	if err := bindOrFail(b, binding.Facility, bind.RawInt(int32(pri/8)), 0); err != nil {
		return err
	}
	return bindOrFail(b, binding.Severity, bind.RawInt(int32(pri%8)), 0)
}
