package syslog

import (
	"github.com/saylorsolutions/logframe/pkg/bind"
	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/parse"
)

// RFC 5424 lexical pieces.
var (
	sp5424     = parse.Ch(' ')
	digit      = parse.Range('0', '9')
	d2         = parse.Times(digit, 2, 2)
	d4         = parse.Times(digit, 4, 4)
	printascii = parse.Range('!', '~')

	// TIMESTAMP: date-time per RFC 3339 with up to six fractional digits.
	timestamp5424 = parse.Seq(
		d4, parse.Ch('-'), d2, parse.Ch('-'), d2,
		parse.Ch('T'), d2, parse.Ch(':'), d2, parse.Ch(':'), d2,
		parse.Opt(parse.Seq(parse.Ch('.'), parse.Times(digit, 1, 6))),
		parse.Alt(parse.Ch('Z'), parse.Seq(parse.AnyOf("+-"), d2, parse.Ch(':'), d2)),
	)

	// SD-ELEMENT: bracketed content where ']' may be escaped with '\'.
	sdElement = parse.Seq(
		parse.Ch('['),
		parse.Times(parse.Alt(parse.Seq(parse.Ch('\\'), parse.Any()), parse.NoneOf("]")), 1, parse.Unbounded),
		parse.Ch(']'),
	)
	structData5424 = parse.Times(sdElement, 1, parse.Unbounded)
)

// nilValue matches the NILVALUE "-" only when it stands alone as a field.
var nilValue = parse.Seq(parse.Ch('-'), parse.Lookahead(parse.Alt(parse.Ch(' '), parse.End())))

// ParseRFC5424 parses one RFC 5424 frame into a document, invoking the
// configured binder for every non-NILVALUE field. Binder rejections and
// over-limit fields fail the parse; they never produce partial documents.
func ParseRFC5424(frame []byte, cfg Config) (doc.Value, error) {
	var (
		c    = parse.NewCursor(frame)
		b    = doc.NewObjectBuilder()
		caps = cfg.Mode.limits()
		bd   = cfg.Binding
	)
	pri, err := parsePri(c)
	if err != nil {
		return nil, err
	}
	if err := bindPri(b, bd, pri); err != nil {
		return nil, err
	}
	if perr := parse.Seq(parse.Ch('1'), sp5424)(c); perr != nil {
		return nil, malformed(c, perr)
	}
	if err := parseTimestamp5424(c, b, bd.Timestamp); err != nil {
		return nil, err
	}
	for _, field := range []struct {
		binder bind.Binder
		max    int
	}{
		{bd.Hostname, caps.hostname},
		{bd.AppName, caps.appName},
		{bd.ProcID, caps.procID},
		{bd.MsgID, caps.msgID},
	} {
		if perr := sp5424(c); perr != nil {
			return nil, malformed(c, perr)
		}
		if err := parseHeaderField(c, b, field.binder, field.max); err != nil {
			return nil, err
		}
	}
	if perr := sp5424(c); perr != nil {
		return nil, malformed(c, perr)
	}
	if err := parseStructData(c, b, bd.StructData); err != nil {
		return nil, err
	}
	if err := parseMessage(c, b, bd.Message); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func parseTimestamp5424(c *parse.Cursor, b *doc.ObjectBuilder, binder bind.Binder) error {
	if nilValue(c) == nil {
		return nil
	}
	start := c.Pos()
	if err := timestamp5424(c); err != nil {
		return malformed(c, err)
	}
	return bindOrFail(b, binder, bind.RawBytes(c.Slice(start, c.Pos())), start)
}

// parseHeaderField consumes HOSTNAME/APP-NAME/PROCID/MSGID: either NILVALUE
// or a run of printable US-ASCII no longer than max.
func parseHeaderField(c *parse.Cursor, b *doc.ObjectBuilder, binder bind.Binder, max int) error {
	if nilValue(c) == nil {
		return nil
	}
	start := c.Pos()
	if err := parse.Times(printascii, 1, parse.Unbounded)(c); err != nil {
		return malformed(c, err)
	}
	raw := c.Slice(start, c.Pos())
	if len(raw) > max {
		return malformed(c, &parse.Error{Offset: start, Kind: parse.KindOverflow})
	}
	return bindOrFail(b, binder, bind.RawBytes(raw), start)
}

// parseStructData captures the raw [id k="v" ...]... sequence as one slice.
func parseStructData(c *parse.Cursor, b *doc.ObjectBuilder, binder bind.Binder) error {
	if nilValue(c) == nil {
		return nil
	}
	start := c.Pos()
	if err := structData5424(c); err != nil {
		return malformed(c, err)
	}
	return bindOrFail(b, binder, bind.RawBytes(c.Slice(start, c.Pos())), start)
}

// parseMessage consumes the optional SP-prefixed free-form tail.
func parseMessage(c *parse.Cursor, b *doc.ObjectBuilder, binder bind.Binder) error {
	if c.Eof() {
		return nil
	}
	if perr := sp5424(c); perr != nil {
		return malformed(c, perr)
	}
	start := c.Pos()
	msg := c.Rest()
	c.Seek(c.Len())
	return bindOrFail(b, binder, bind.RawBytes(msg), start)
}
