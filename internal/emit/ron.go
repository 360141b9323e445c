package emit

import (
	"strconv"
	"strings"
)

// A small writer for the subset of RON the asset loader reads: structs,
// inline records, tuples of floats, lists, options and scalars.

const ronIndent = "    "

type ronValue interface {
	writeRON(b *strings.Builder, depth int)
}

type (
	ronString string
	ronInt    int
	ronTuple  []float64
	ronList   []ronValue
	ronSome   struct{ v ronValue }
	ronNone   struct{}
)

// ronField is one named member of a struct or record.
type ronField struct {
	name  string
	value ronValue
}

// ronStruct renders one field per line.
type ronStruct []ronField

// ronRecord renders on a single line.
type ronRecord []ronField

func (s ronString) writeRON(b *strings.Builder, _ int) { b.WriteString(strconv.Quote(string(s))) }
func (n ronInt) writeRON(b *strings.Builder, _ int) { b.WriteString(strconv.Itoa(int(n))) }
func (ronNone) writeRON(b *strings.Builder, _ int) { b.WriteString("None") }

func (o ronSome) writeRON(b *strings.Builder, depth int) {
	b.WriteString("Some(")
	o.v.writeRON(b, depth)
	b.WriteByte(')')
}

func (t ronTuple) writeRON(b *strings.Builder, _ int) {
	b.WriteByte('(')
	for i, f := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ronFloat(f))
	}
	b.WriteByte(')')
}

func (l ronList) writeRON(b *strings.Builder, depth int) {
	if len(l) == 0 {
		b.WriteString("[]")
		return
	}
	if l.scalar() {
		b.WriteByte('[')
		for i, v := range l {
			if i > 0 {
				b.WriteString(", ")
			}
			v.writeRON(b, depth)
		}
		b.WriteByte(']')
		return
	}
	b.WriteString("[\n")
	for _, v := range l {
		b.WriteString(strings.Repeat(ronIndent, depth+1))
		v.writeRON(b, depth+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(ronIndent, depth))
	b.WriteByte(']')
}

func (l ronList) scalar() bool {
	for _, v := range l {
		switch v.(type) {
		case ronString, ronInt:
		default:
			return false
		}
	}
	return true
}

func (s ronStruct) writeRON(b *strings.Builder, depth int) {
	b.WriteString("(\n")
	for _, f := range s {
		b.WriteString(strings.Repeat(ronIndent, depth+1))
		b.WriteString(f.name)
		b.WriteString(": ")
		f.value.writeRON(b, depth+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(ronIndent, depth))
	b.WriteByte(')')
}

func (r ronRecord) writeRON(b *strings.Builder, depth int) {
	b.WriteByte('(')
	for i, f := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.name)
		b.WriteString(": ")
		f.value.writeRON(b, depth)
	}
	b.WriteByte(')')
}

// ronFloat formats f so that RON reads it back as a float.
func ronFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

func ronStrings(ss []string) ronList {
	l := make(ronList, len(ss))
	for i, s := range ss {
		l[i] = ronString(s)
	}
	return l
}

// optString is Some(s) for a non-empty s.
func optString(s string) ronValue {
	if s == "" {
		return ronNone{}
	}
	return ronSome{ronString(s)}
}

func optInt(n int) ronValue {
	if n == 0 {
		return ronNone{}
	}
	return ronSome{ronInt(n)}
}

// encodeRON renders v followed by a newline.
func encodeRON(v ronValue) []byte {
	var b strings.Builder
	v.writeRON(&b, 0)
	b.WriteByte('\n')
	return []byte(b.String())
}
