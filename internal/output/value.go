// Package output defines the polymorphic value that flows between
// processes. A Value is one of four variants — Raw, Text, Array, Object —
// each able to flatten to a string, render to a writer, and decompose into
// the items filters such as head/tail/grep operate on.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Value is the tagged sum type carried on every stream write.
type Value interface {
	// Str returns the flat string form of the value.
	Str() string
	// Render writes the value's display form to w. Text replaces embedded
	// ESC bytes with "^["; Raw writes its payload verbatim.
	Render(w io.Writer)
	// Items decomposes the value into its constituent sub-values. Text and
	// Raw split on line breaks; Array yields its members; Object yields a
	// single-element slice containing itself.
	Items() []Value
}

// layout is an Array rendering hint. The zero value lays members out one
// per line; multicolumn packs them into fixed-width columns.
type layout int

const (
	layoutLines layout = iota
	layoutMulticolumn
)

// ArrayOption configures an Array value at construction time.
type ArrayOption func(*arrayValue)

// WithLayout requests a named layout for an Array's Render. The only
// recognized name is "multicolumn"; anything else leaves the default
// one-per-line layout in place.
func WithLayout(name string) ArrayOption {
	return func(a *arrayValue) {
		if name == "multicolumn" {
			a.layout = layoutMulticolumn
		}
	}
}

// Text wraps s as a payload whose ESC bytes are neutralized on Render.
func Text(s string) Value { return textValue(s) }

// Raw wraps s as pre-escaped markup, written to Render verbatim.
func Raw(s string) Value { return rawValue(s) }

// Array wraps an ordered sequence of sub-values.
func Array(vs []Value, opts ...ArrayOption) Value {
	a := &arrayValue{members: vs}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Object wraps an opaque value, rendered through its fmt.Stringer or %v
// form.
func Object(v any) Value { return objectValue{v: v} }

type textValue string

func (t textValue) Str() string { return string(t) }

func (t textValue) Render(w io.Writer) {
	io.WriteString(w, escapeControl(string(t)))
}

func (t textValue) Items() []Value {
	return splitLines(string(t), Text)
}

type rawValue string

func (r rawValue) Str() string { return string(r) }

func (r rawValue) Render(w io.Writer) { io.WriteString(w, string(r)) }

func (r rawValue) Items() []Value {
	return splitLines(string(r), Raw)
}

type arrayValue struct {
	members []Value
	layout  layout
}

func (a *arrayValue) Str() string {
	parts := make([]string, len(a.members))
	for i, m := range a.members {
		parts[i] = m.Str()
	}
	return strings.Join(parts, "\n")
}

func (a *arrayValue) Render(w io.Writer) {
	if a.layout == layoutMulticolumn {
		renderMulticolumn(w, a.members)
		return
	}
	for i, m := range a.members {
		if i > 0 {
			io.WriteString(w, "\n")
		}
		m.Render(w)
	}
}

func (a *arrayValue) Items() []Value {
	out := make([]Value, len(a.members))
	copy(out, a.members)
	return out
}

type objectValue struct{ v any }

func (o objectValue) Str() string {
	if s, ok := o.v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", o.v)
}

func (o objectValue) Render(w io.Writer) { io.WriteString(w, o.Str()) }

func (o objectValue) Items() []Value { return []Value{o} }

func splitLines(s string, wrap func(string) Value) []Value {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make([]Value, len(lines))
	for i, l := range lines {
		out[i] = wrap(l)
	}
	return out
}

// escapeControl neutralizes ESC bytes so user data can never forge a
// terminal escape sequence when rendered as Text.
func escapeControl(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	return strings.ReplaceAll(s, "\x1b", "^[")
}

// renderMulticolumn lays members out in fixed-width columns sized to the
// widest member, filling columns before rows (ls(1)'s classic layout).
func renderMulticolumn(w io.Writer, members []Value) {
	if len(members) == 0 {
		return
	}
	width := 0
	strs := make([]string, len(members))
	for i, m := range members {
		strs[i] = m.Str()
		if len(strs[i]) > width {
			width = len(strs[i])
		}
	}
	const termWidth = 80
	cols := (termWidth) / (width + 2)
	if cols < 1 {
		cols = 1
	}
	rows := (len(strs) + cols - 1) / cols
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := c*rows + r
			if idx >= len(strs) {
				continue
			}
			fmt.Fprintf(w, "%-*s", width+2, strs[idx])
		}
		io.WriteString(w, "\n")
	}
}
