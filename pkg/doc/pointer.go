package doc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrBadPointer = errors.New("malformed pointer")
)

type token struct {
	name  string
	index int
	named bool
}

// Pointer identifies a subtree of a document by an ordered sequence of field
// name and array index tokens. The zero Pointer is Root.
type Pointer struct {
	tokens []token
}

// Root is the empty pointer, identifying the whole document.
var Root = Pointer{}

// Field extends the pointer with an object field token.
func (p Pointer) Field(name string) Pointer {
	return p.extend(token{name: name, named: true})
}

// Index extends the pointer with an array index token.
func (p Pointer) Index(i int) Pointer {
	return p.extend(token{index: i})
}

func (p Pointer) extend(t token) Pointer {
	tokens := make([]token, len(p.tokens), len(p.tokens)+1)
	copy(tokens, p.tokens)
	return Pointer{tokens: append(tokens, t)}
}

// IsRoot reports whether the pointer has no tokens.
func (p Pointer) IsRoot() bool {
	return len(p.tokens) == 0
}

// Depth returns the token count.
func (p Pointer) Depth() int {
	return len(p.tokens)
}

// Equal reports whether both pointers have identical token sequences.
func (p Pointer) Equal(q Pointer) bool {
	if len(p.tokens) != len(q.tokens) {
		return false
	}
	for i, t := range p.tokens {
		if t != q.tokens[i] {
			return false
		}
	}
	return true
}

// String renders the pointer in RFC 6901 form, with ~0/~1 escaping.
func (p Pointer) String() string {
	if p.IsRoot() {
		return ""
	}
	var sb strings.Builder
	for _, t := range p.tokens {
		sb.WriteByte('/')
		if t.named {
			sb.WriteString(escapePointerToken(t.name))
		} else {
			sb.WriteString(strconv.Itoa(t.index))
		}
	}
	return sb.String()
}

// Evaluate walks the document along the pointer. A name token requires an
// Object with that field, an index token requires an Array with the index in
// range; any mismatch or absence yields false, never an error.
func (p Pointer) Evaluate(v Value) (Value, bool) {
	cur := v
	for _, t := range p.tokens {
		if cur == nil {
			return nil, false
		}
		if t.named {
			obj, ok := cur.(*Object)
			if !ok {
				return nil, false
			}
			next, ok := obj.Get(t.name)
			if !ok {
				return nil, false
			}
			cur = next
			continue
		}
		arr, ok := cur.(Array)
		if !ok {
			return nil, false
		}
		if t.index < 0 || t.index >= len(arr) {
			return nil, false
		}
		cur = arr[t.index]
	}
	return cur, true
}

// ParsePointer parses an RFC 6901 pointer string such as "/hosts/0/name".
// All-digit tokens become array index tokens; ~0 and ~1 unescape to ~ and /.
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Root, nil
	}
	if s[0] != '/' {
		return Root, fmt.Errorf("%w: must start with '/': %q", ErrBadPointer, s)
	}
	parts := strings.Split(s[1:], "/")
	tokens := make([]token, 0, len(parts))
	for _, part := range parts {
		if isDigits(part) {
			idx, err := strconv.Atoi(part)
			if err != nil {
				return Root, fmt.Errorf("%w: index %q: %v", ErrBadPointer, part, err)
			}
			tokens = append(tokens, token{index: idx})
			continue
		}
		tokens = append(tokens, token{name: unescapePointerToken(part), named: true})
	}
	return Pointer{tokens: tokens}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

var (
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
)

func unescapePointerToken(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	return pointerUnescaper.Replace(s)
}

func escapePointerToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	return pointerEscaper.Replace(s)
}
