package syslog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saylorsolutions/logframe/pkg/doc"
)

func TestParseRFC3164(t *testing.T) {
	tests := map[string]struct {
		frame string
		want  map[string]doc.Value
	}{
		"classic example": {
			frame: "<34>Oct 11 22:14:15 mymachine su: 'su root' failed for lonvick on /dev/pts/8",
			want: map[string]doc.Value{
				FieldFacility:  doc.Int(4),
				FieldSeverity:  doc.Int(2),
				FieldTimestamp: doc.String("Oct 11 22:14:15"),
				FieldHostname:  doc.String("mymachine"),
				FieldAppName:   doc.String("su"),
				FieldMessage:   doc.String("'su root' failed for lonvick on /dev/pts/8"),
			},
		},
		"tag with pid": {
			frame: "<13>Feb  5 17:32:18 10.0.0.99 myapp[1234]: Use the BFG!",
			want: map[string]doc.Value{
				FieldFacility:  doc.Int(1),
				FieldSeverity:  doc.Int(5),
				FieldTimestamp: doc.String("Feb  5 17:32:18"),
				FieldHostname:  doc.String("10.0.0.99"),
				FieldAppName:   doc.String("myapp"),
				FieldProcID:    doc.String("1234"),
				FieldMessage:   doc.String("Use the BFG!"),
			},
		},
		"no space after colon": {
			frame: "<5>Jan  1 00:00:00 host cron:wake",
			want: map[string]doc.Value{
				FieldFacility:  doc.Int(0),
				FieldSeverity:  doc.Int(5),
				FieldTimestamp: doc.String("Jan  1 00:00:00"),
				FieldHostname:  doc.String("host"),
				FieldAppName:   doc.String("cron"),
				FieldMessage:   doc.String("wake"),
			},
		},
		"empty message": {
			frame: "<5>Jan  1 00:00:00 host cron:",
			want: map[string]doc.Value{
				FieldFacility:  doc.Int(0),
				FieldSeverity:  doc.Int(5),
				FieldTimestamp: doc.String("Jan  1 00:00:00"),
				FieldHostname:  doc.String("host"),
				FieldAppName:   doc.String("cron"),
				FieldMessage:   doc.String(""),
			},
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got, err := ParseRFC3164([]byte(tc.frame), DefaultBinding())
			require.NoError(t, err)
			obj, ok := got.(*doc.Object)
			require.True(t, ok)
			assert.Equal(t, len(tc.want), obj.Len(), "got %s", doc.Stringify(got))
			for key, want := range tc.want {
				v, found := obj.Get(key)
				require.True(t, found, "missing %s", key)
				assert.True(t, doc.Equal(want, v), "%s: got %s", key, doc.Stringify(v))
			}
		})
	}
}

func TestParseRFC3164Malformed(t *testing.T) {
	tests := map[string]string{
		"bad month":         "<34>Okt 11 22:14:15 host su: msg",
		"missing timestamp": "<34>host su: msg",
		"tag too long":      "<34>Oct 11 22:14:15 host " + strings.Repeat("a", 33) + ": msg",
		"tag not alnum":     "<34>Oct 11 22:14:15 host my-app: msg",
		"unclosed pid":      "<34>Oct 11 22:14:15 host su[12: msg",
		"missing colon":     "<34>Oct 11 22:14:15 host su msg",
	}
	for name, frame := range tests {
		frame := frame
		t.Run(name, func(t *testing.T) {
			_, err := ParseRFC3164([]byte(frame), DefaultBinding())
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestPrintRFC3164RoundTrip(t *testing.T) {
	frames := []string{
		"<34>Oct 11 22:14:15 mymachine su: 'su root' failed for lonvick on /dev/pts/8",
		"<13>Feb  5 17:32:18 10.0.0.99 myapp[1234]: Use the BFG!",
	}
	for _, frame := range frames {
		d, err := ParseRFC3164([]byte(frame), DefaultBinding())
		require.NoError(t, err, frame)
		assert.Equal(t, frame, string(PrintRFC3164(d, DefaultBinding())))
	}
}

func TestPrintRFC3164Elision(t *testing.T) {
	tests := map[string]struct {
		doc  doc.Value
		want string
	}{
		"no tag means no colon": {
			doc: doc.NewObjectBuilder().
				Put(FieldSeverity, doc.Int(6)).
				Put(FieldTimestamp, doc.String("Oct 11 22:14:15")).
				Put(FieldHostname, doc.String("host")).
				Put(FieldMessage, doc.String("raw text")).
				Result(),
			want: "<6>Oct 11 22:14:15 host raw text",
		},
		"pid without tag is dropped": {
			doc: doc.NewObjectBuilder().
				Put(FieldFacility, doc.Int(2)).
				Put(FieldProcID, doc.String("99")).
				Put(FieldMessage, doc.String("orphan")).
				Result(),
			want: "<16> orphan",
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(PrintRFC3164(tc.doc, DefaultBinding())))
		})
	}
}
