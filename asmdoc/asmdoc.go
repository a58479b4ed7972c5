// Package asmdoc is the append-only assembly builder of spec §4.5: three
// ordered segments (data, text, post-text), concatenated and spliced by
// the code generator as it walks the typed tree. Grounded on the
// teacher's reuse of `src.elv.sh/pkg/persistent/vector` for its runtime
// LIST value (source/vm/vm.go, source/values/iterator.go) -- the same
// persistent, structurally-shared vector gives this document's
// concatenation and "move text to post-text" operations the O(1)
// amortised append the spec calls for, without a Document ever owning
// (and risking mutation of) another Document's backing storage.
package asmdoc

import (
	"fmt"
	"strings"

	"src.elv.sh/pkg/persistent/vector"
)

// DataItem is one label+literal allocation in the .data segment (spec
// §4.5: "data (string/integer allocations)").
type DataItem struct {
	Label string
	Dir   string // ".asciiz", ".float", ".word", ...
	Value string
}

func (d DataItem) render() string {
	if d.Label == "" {
		return fmt.Sprintf("\t%s %s", d.Dir, d.Value)
	}
	return fmt.Sprintf("%s:\t%s %s", d.Label, d.Dir, d.Value)
}

// Instr is one instruction, a bare label, or a label-prefixed
// instruction, optionally commented (spec §4.5: "append to text
// (instruction + comment)").
type Instr struct {
	Label   string
	Op      string
	Comment string
}

func (i Instr) render() string {
	var b strings.Builder
	if i.Label != "" {
		b.WriteString(i.Label)
		b.WriteString(":")
		if i.Op == "" && i.Comment == "" {
			return b.String()
		}
	}
	if i.Op != "" {
		b.WriteString("\t")
		b.WriteString(i.Op)
	}
	if i.Comment != "" {
		b.WriteString("\t# ")
		b.WriteString(i.Comment)
	}
	return b.String()
}

// Label returns a bare-label Instr, used to mark a jump target with no
// instruction of its own.
func Label(name string) Instr { return Instr{Label: name} }

// Op returns a plain instruction with no label.
func Op(op string) Instr { return Instr{Op: op} }

// OpC returns an instruction with a trailing comment.
func OpC(op, comment string) Instr { return Instr{Op: op, Comment: comment} }

// LOp returns a labelled instruction.
func LOp(label, op string) Instr { return Instr{Label: label, Op: op} }

// Document is the three-segment builder described above. The zero value
// is not usable; start from Empty.
type Document struct {
	Data     vector.Vector
	Text     vector.Vector
	PostText vector.Vector
}

// Empty is the identity element of the Concat monoid.
var Empty = Document{Data: vector.Empty, Text: vector.Empty, PostText: vector.Empty}

// OneData wraps a single data item as a one-element Document.
func OneData(item DataItem) Document {
	return Document{Data: vector.Empty.Conj(item), Text: vector.Empty, PostText: vector.Empty}
}

// OneText wraps a single text instruction as a one-element Document.
func OneText(instr Instr) Document {
	return Document{Data: vector.Empty, Text: vector.Empty.Conj(instr), PostText: vector.Empty}
}

// OnePostText wraps a single post-text instruction as a one-element
// Document.
func OnePostText(instr Instr) Document {
	return Document{Data: vector.Empty, Text: vector.Empty, PostText: vector.Empty.Conj(instr)}
}

func appendAll(v vector.Vector, w vector.Vector) vector.Vector {
	for it := w.Iterator(); it.HasElem(); it.Next() {
		v = v.Conj(it.Elem())
	}
	return v
}

// Concat is the monoid operation spec §4.5 calls "the common operation
// used everywhere in code generation": segment-wise concatenation,
// preserving relative order within each segment.
func Concat(a, b Document) Document {
	return Document{
		Data:     appendAll(a.Data, b.Data),
		Text:     appendAll(a.Text, b.Text),
		PostText: appendAll(a.PostText, b.PostText),
	}
}

// ConcatAll folds Concat left-to-right over docs.
func ConcatAll(docs ...Document) Document {
	out := Empty
	for _, d := range docs {
		out = Concat(out, d)
	}
	return out
}

// MoveTextToPostText splices the current Text segment onto the end of
// PostText and empties Text, preserving relative order (spec §4.5: "A
// move operation splices text onto the end of post-text"). The code
// generator applies it to each compiled function body, so that every
// function lands after the main program's Text.
func (d Document) MoveTextToPostText() Document {
	return Document{
		Data:     d.Data,
		Text:     vector.Empty,
		PostText: appendAll(d.PostText, d.Text),
	}
}

// Render produces the final RARS-compatible assembly text: the .data
// section, then .text (main program followed by every moved function
// body), per spec §6's "Generated artefact".
func (d Document) Render() string {
	var b strings.Builder
	b.WriteString(".data\n")
	for it := d.Data.Iterator(); it.HasElem(); it.Next() {
		b.WriteString(it.Elem().(DataItem).render())
		b.WriteString("\n")
	}
	b.WriteString("\n.text\n")
	for it := d.Text.Iterator(); it.HasElem(); it.Next() {
		b.WriteString(it.Elem().(Instr).render())
		b.WriteString("\n")
	}
	for it := d.PostText.Iterator(); it.HasElem(); it.Next() {
		b.WriteString(it.Elem().(Instr).render())
		b.WriteString("\n")
	}
	return b.String()
}
