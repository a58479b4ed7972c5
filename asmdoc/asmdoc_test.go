package asmdoc

import (
	"strings"
	"testing"
)

func TestConcatPreservesOrder(t *testing.T) {
	a := OneText(Op("li a0, 1"))
	b := OneText(Op("li a0, 2"))
	c := Concat(a, b)
	if c.Text.Len() != 2 {
		t.Fatalf("got %d text items, want 2", c.Text.Len())
	}
	first, _ := c.Text.Index(0)
	second, _ := c.Text.Index(1)
	if first.(Instr).Op != "li a0, 1" || second.(Instr).Op != "li a0, 2" {
		t.Fatalf("concat reordered instructions: %v, %v", first, second)
	}
}

func TestConcatIsAssociative(t *testing.T) {
	a, b, c := OneText(Op("a")), OneText(Op("b")), OneText(Op("c"))
	left := Concat(Concat(a, b), c)
	right := Concat(a, Concat(b, c))
	if left.Text.Len() != right.Text.Len() {
		t.Fatalf("lengths differ")
	}
	for i := 0; i < left.Text.Len(); i++ {
		li, _ := left.Text.Index(i)
		ri, _ := right.Text.Index(i)
		if li.(Instr).Op != ri.(Instr).Op {
			t.Fatalf("mismatch at %d: %v vs %v", i, li, ri)
		}
	}
}

func TestMoveTextToPostTextPreservesOrderAndEmptiesText(t *testing.T) {
	doc := ConcatAll(OnePostText(Op("old")), OneText(Op("new1")), OneText(Op("new2")))
	moved := doc.MoveTextToPostText()
	if moved.Text.Len() != 0 {
		t.Fatalf("Text should be empty after move, got %d", moved.Text.Len())
	}
	if moved.PostText.Len() != 3 {
		t.Fatalf("got %d post-text items, want 3", moved.PostText.Len())
	}
	first, _ := moved.PostText.Index(0)
	if first.(Instr).Op != "old" {
		t.Fatalf("move did not preserve relative order: %v", first)
	}
}

func TestRenderIncludesAllSegments(t *testing.T) {
	doc := ConcatAll(
		OneData(DataItem{Label: "x", Dir: ".word", Value: "0"}),
		OneText(LOp("main", "li a0, 1")),
	).MoveTextToPostText()
	doc = Concat(doc, OnePostText(Op("ecall")))
	out := doc.Render()
	if !strings.Contains(out, ".data") || !strings.Contains(out, "x:") ||
		!strings.Contains(out, ".text") || !strings.Contains(out, "main:") ||
		!strings.Contains(out, "ecall") {
		t.Fatalf("render missing expected sections:\n%s", out)
	}
}
