package strictmodel

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: a field name or a sequence index.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

// String renders the segment as it appears in a JSON Pointer (unescaped).
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Field
}

// Path locates a value from the root of an input tree. The zero value is the
// root. Paths are values; Field and Index never mutate the receiver.
type Path []Segment

// Field returns a new path extended by a field name.
func (p Path) Field(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Field: name})
}

// Index returns a new path extended by a sequence index.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Index: i, IsIndex: true})
}

// Join returns p followed by q.
func (p Path) Join(q Path) Path {
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)
	return append(out, q...)
}

// Strings returns the segments as strings, e.g. ["pets", "0", "name"].
func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.String()
	}
	return out
}

// Pointer renders the path as an RFC 6901 JSON Pointer. The root is "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.Field, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// String implements fmt.Stringer using the JSON Pointer form.
func (p Path) String() string { return p.Pointer() }

// Equal reports whether two paths have the same segments.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}
