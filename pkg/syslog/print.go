package syslog

import (
	"bytes"
	"strconv"

	"github.com/saylorsolutions/logframe/pkg/bind"
	"github.com/saylorsolutions/logframe/pkg/doc"
)

// PrintRFC5424 renders a document as one RFC 5424 frame using the binding's
// reverse contract. Absent header fields print as NILVALUE, and an absent
// message elides the trailing separator entirely.
func PrintRFC5424(d doc.Value, binding Binding) []byte {
	var out bytes.Buffer
	out.WriteByte('<')
	out.WriteString(strconv.Itoa(priFrom(d, binding)))
	out.WriteString(">1")
	for _, binder := range []bind.Binder{
		binding.Timestamp,
		binding.Hostname,
		binding.AppName,
		binding.ProcID,
		binding.MsgID,
		binding.StructData,
	} {
		out.WriteByte(' ')
		if binder == nil || !binder.BindOut(&out, d, func() {}) {
			out.WriteByte('-')
		}
	}
	if binding.Message != nil {
		binding.Message.BindOut(&out, d, func() { out.WriteByte(' ') })
	}
	return out.Bytes()
}

// PrintRFC3164 renders a document as one BSD syslog frame. Separators are
// only emitted for fields that are present: the PID brackets follow the TAG,
// and the ':' only appears when a TAG was written.
func PrintRFC3164(d doc.Value, binding Binding) []byte {
	var out bytes.Buffer
	out.WriteByte('<')
	out.WriteString(strconv.Itoa(priFrom(d, binding)))
	out.WriteByte('>')
	if binding.Timestamp != nil {
		binding.Timestamp.BindOut(&out, d, func() {})
	}
	if binding.Hostname != nil {
		binding.Hostname.BindOut(&out, d, func() { out.WriteByte(' ') })
	}
	tagged := false
	if binding.AppName != nil {
		tagged = binding.AppName.BindOut(&out, d, func() { out.WriteByte(' ') })
	}
	if tagged {
		if binding.ProcID != nil && binding.ProcID.BindOut(&out, d, func() { out.WriteByte('[') }) {
			out.WriteByte(']')
		}
		out.WriteByte(':')
	}
	if binding.Message != nil {
		binding.Message.BindOut(&out, d, func() { out.WriteByte(' ') })
	}
	return out.Bytes()
}

// priFrom recomputes PRI from the bound facility and severity fields. A nil
// binder or absent field contributes zero.
func priFrom(d doc.Value, binding Binding) int {
	return int(boundLong(d, binding.Facility)*8 + boundLong(d, binding.Severity))
}

func boundLong(d doc.Value, binder bind.Binder) int64 {
	if binder == nil {
		return 0
	}
	v, ok := doc.Root.Field(binder.Key()).Evaluate(d)
	if !ok {
		return 0
	}
	n, ok := doc.AsLong(v)
	if !ok {
		return 0
	}
	return n
}
