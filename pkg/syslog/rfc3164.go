package syslog

import (
	"github.com/saylorsolutions/logframe/pkg/bind"
	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/parse"
)

const maxTagLen = 32

var (
	month3164 = parse.Alt(
		parse.Literal("Jan"), parse.Literal("Feb"), parse.Literal("Mar"),
		parse.Literal("Apr"), parse.Literal("May"), parse.Literal("Jun"),
		parse.Literal("Jul"), parse.Literal("Aug"), parse.Literal("Sep"),
		parse.Literal("Oct"), parse.Literal("Nov"), parse.Literal("Dec"),
	)

	// TIMESTAMP: "Mmm dd hh:mm:ss" with a space-padded single-digit day.
	timestamp3164 = parse.Seq(
		month3164, parse.Ch(' '),
		parse.Alt(parse.Times(digit, 2, 2), parse.Seq(parse.Ch(' '), digit)),
		parse.Ch(' '),
		d2, parse.Ch(':'), d2, parse.Ch(':'), d2,
	)

	alnum   = parse.Alt(parse.Range('0', '9'), parse.Range('a', 'z'), parse.Range('A', 'Z'))
	tag3164 = parse.Times(alnum, 1, maxTagLen)
)

// ParseRFC3164 parses one BSD syslog frame:
// <PRI>TIMESTAMP SP HOSTNAME SP TAG[PID]: MSG. The TAG binds through
// AppName and the optional bracketed PID through ProcID.
func ParseRFC3164(frame []byte, binding Binding) (doc.Value, error) {
	c := parse.NewCursor(frame)
	b := doc.NewObjectBuilder()

	pri, err := parsePri(c)
	if err != nil {
		return nil, err
	}
	if err := bindPri(b, binding, pri); err != nil {
		return nil, err
	}

	start := c.Pos()
	if perr := timestamp3164(c); perr != nil {
		return nil, malformed(c, perr)
	}
	if err := bindOrFail(b, binding.Timestamp, bind.RawBytes(c.Slice(start, c.Pos())), start); err != nil {
		return nil, err
	}

	if perr := parse.Ch(' ')(c); perr != nil {
		return nil, malformed(c, perr)
	}
	start = c.Pos()
	if perr := parse.Times(parse.NoneOf(" "), 1, parse.Unbounded)(c); perr != nil {
		return nil, malformed(c, perr)
	}
	if err := bindOrFail(b, binding.Hostname, bind.RawBytes(c.Slice(start, c.Pos())), start); err != nil {
		return nil, err
	}

	if perr := parse.Ch(' ')(c); perr != nil {
		return nil, malformed(c, perr)
	}
	start = c.Pos()
	if perr := tag3164(c); perr != nil {
		return nil, malformed(c, perr)
	}
	if err := bindOrFail(b, binding.AppName, bind.RawBytes(c.Slice(start, c.Pos())), start); err != nil {
		return nil, err
	}

	if err := parsePid3164(c, b, binding.ProcID); err != nil {
		return nil, err
	}

	if perr := parse.Seq(parse.Ch(':'), parse.Opt(parse.Ch(' ')))(c); perr != nil {
		return nil, malformed(c, perr)
	}
	start = c.Pos()
	msg := c.Rest()
	c.Seek(c.Len())
	return finish3164(b, binding, msg, start)
}

func parsePid3164(c *parse.Cursor, b *doc.ObjectBuilder, binder bind.Binder) error {
	var (
		raw   []byte
		start int
	)
	p := parse.Seq(
		parse.Ch('['),
		parse.Capture(parse.Times(digit, 1, parse.Unbounded), func(got []byte) bool {
			raw = got
			return true
		}),
		parse.Ch(']'),
	)
	mark := c.Pos()
	if p(c) != nil {
		return nil
	}
	start = mark + 1
	return bindOrFail(b, binder, bind.RawBytes(raw), start)
}

func finish3164(b *doc.ObjectBuilder, binding Binding, msg []byte, at int) (doc.Value, error) {
	if err := bindOrFail(b, binding.Message, bind.RawBytes(msg), at); err != nil {
		return nil, err
	}
	return b.Result(), nil
}
