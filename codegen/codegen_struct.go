package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/asmdoc"
)

// genStructCons allocates one word per field via the sbrk-like syscall
// (number 9, spec §4.6 "Struct/array construction obtains heap memory
// through a syscall"), then stores each field's value at its ordinal
// offset -- field order follows the resolved TRecord, not the literal's
// source order, so a field-select by name always lands on the position
// the checker assigned it.
func genStructCons(env *Env, n *ast.Node, e *ast.StructCons, target int) (asmdoc.Document, error) {
	rec, ok := n.Typ.(ast.TRecord)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "StructCons", "resolved type is not a record")
	}
	base, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	doc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li a0, %d", len(rec.Fields)*4))),
		asmdoc.OneText(asmdoc.Op("li a7, 9")),
		asmdoc.OneText(asmdoc.Op("ecall")),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, a0", base))),
	)
	for _, f := range e.Fields {
		idx := rec.FieldIndex(f.Name)
		if idx < 0 {
			return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "StructCons", fmt.Sprintf("no field %q in resolved type", f.Name))
		}
		off := idx * 4
		if isFloatTyp(f.Init.Typ) {
			valDoc, err := gen(env, f.Init, target+1, 0)
			if err != nil {
				return asmdoc.Empty, err
			}
			vr, err := fpReg(n.Pos, 0)
			if err != nil {
				return asmdoc.Empty, err
			}
			doc = asmdoc.ConcatAll(doc, valDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(%s)", vr, off, base))))
			continue
		}
		valDoc, err := gen(env, f.Init, target+1, 0)
		if err != nil {
			return asmdoc.Empty, err
		}
		vr, err := intReg(n.Pos, target+1)
		if err != nil {
			return asmdoc.Empty, err
		}
		doc = asmdoc.ConcatAll(doc, valDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(%s)", vr, off, base))))
	}
	return doc, nil
}

// genFieldSelect evaluates the record pointer into target, then loads
// (or flw's) the one field at its ordinal offset.
func genFieldSelect(env *Env, n *ast.Node, e *ast.FieldSelect, target, fptarget int) (asmdoc.Document, error) {
	baseDoc, err := gen(env, e.X, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	baseTyp, err := expand(e.X)
	if err != nil {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "FieldSelect", err.Error())
	}
	rec, ok := baseTyp.(ast.TRecord)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "FieldSelect", "base is not a record")
	}
	idx := rec.FieldIndex(e.Field)
	if idx < 0 {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "FieldSelect", fmt.Sprintf("no field %q", e.Field))
	}
	base, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	off := idx * 4
	if isFloatTyp(n.Typ) {
		r, err := fpReg(n.Pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.Concat(baseDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, %d(%s)", r, off, base)))), nil
	}
	r, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.Concat(baseDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, %d(%s)", r, off, base)))), nil
}

// genUnionCons implements the open-question resolution recorded in
// DESIGN.md: a two-cell {tag, value} heap layout, tagged with the case's
// integer ordinal rather than the string label that the evaluator's
// UnionCons values carry, since
// an integer tag turns Match dispatch into a plain beq chain instead of
// a string comparison the naive generator would otherwise have no way
// to emit.
func genUnionCons(env *Env, n *ast.Node, e *ast.UnionCons, target int) (asmdoc.Document, error) {
	un, ok := n.Typ.(ast.TUnion)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "UnionCons", "resolved type is not a union")
	}
	idx := un.CaseIndex(e.Label)
	if idx < 0 {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "UnionCons", fmt.Sprintf("no case %q", e.Label))
	}
	base, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	alloc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op("li a0, 8")),
		asmdoc.OneText(asmdoc.Op("li a7, 9")),
		asmdoc.OneText(asmdoc.Op("ecall")),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, a0", base))),
	)
	tagReg, err := intReg(n.Pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	tagDoc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li %s, %d", tagReg, idx))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, 0(%s)", tagReg, base))),
	)
	if isFloatTyp(e.X.Typ) {
		valDoc, err := gen(env, e.X, target+2, 0)
		if err != nil {
			return asmdoc.Empty, err
		}
		vr, err := fpReg(n.Pos, 0)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.ConcatAll(alloc, tagDoc, valDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, 4(%s)", vr, base)))), nil
	}
	valDoc, err := gen(env, e.X, target+2, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	vr, err := intReg(n.Pos, target+2)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(alloc, tagDoc, valDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, 4(%s)", vr, base)))), nil
}

// genMatch loads the union's tag and dispatches through a chain of
// beq comparisons against each case's integer ordinal (see
// genUnionCons). The checker does not require a case for every label of
// the union, so a tag that matches no case falls through the chain into
// a trap that exits the program.
func genMatch(env *Env, n *ast.Node, e *ast.Match, target, fptarget int) (asmdoc.Document, error) {
	xDoc, err := gen(env, e.X, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	baseTyp, err := expand(e.X)
	if err != nil {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Match", err.Error())
	}
	un, ok := baseTyp.(ast.TUnion)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Match", "scrutinee is not a union")
	}
	base, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	tagReg, err := intReg(n.Pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	idxReg, err := intReg(n.Pos, target+2)
	if err != nil {
		return asmdoc.Empty, err
	}
	loadTag := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, 0(%s)", tagReg, base)))

	endLbl := env.Lab.Next("match_end")
	type labeledCase struct {
		label string
		c     ast.MatchCase
		idx   int
	}
	var cases []labeledCase
	dispatch := asmdoc.Empty
	for _, c := range e.Cases {
		idx := un.CaseIndex(c.Label)
		if idx < 0 {
			return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Match", fmt.Sprintf("no case %q", c.Label))
		}
		caseLbl := env.Lab.Next("match_case")
		cases = append(cases, labeledCase{caseLbl, c, idx})
		dispatch = asmdoc.ConcatAll(dispatch,
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li %s, %d", idxReg, idx))),
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("beq %s, %s, %s", tagReg, idxReg, caseLbl))),
		)
	}
	trap := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op("li a0, 1")),
		asmdoc.OneText(asmdoc.Op("li a7, 93")),
		asmdoc.OneText(asmdoc.Op("ecall")),
	)

	bodies := asmdoc.Empty
	for _, lc := range cases {
		caseTyp := un.Cases[lc.idx].Type
		var bindDoc asmdoc.Document
		var inner *Env
		if isFloatTyp(caseTyp) {
			fr, err := fpReg(n.Pos, fptarget)
			if err != nil {
				return asmdoc.Empty, err
			}
			bindDoc = asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, 4(%s)", fr, base)))
			inner = env.With(lc.c.Var, FpRegStorage(fptarget))
		} else {
			ir, err := intReg(n.Pos, target)
			if err != nil {
				return asmdoc.Empty, err
			}
			bindDoc = asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, 4(%s)", ir, base)))
			inner = env.With(lc.c.Var, RegStorage(target))
		}
		bodyDoc, err := gen(inner, lc.c.Body, target, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		bodies = asmdoc.ConcatAll(bodies,
			asmdoc.OneText(asmdoc.Label(lc.label)),
			bindDoc,
			bodyDoc,
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("j %s", endLbl))),
		)
	}
	return asmdoc.ConcatAll(xDoc, loadTag, dispatch, trap, bodies, asmdoc.OneText(asmdoc.Label(endLbl))), nil
}

// genArrayCons implements the §9-preserved "suspicious behaviour":
// this naive generator only supports an array length given as a
// literal integer, since a runtime-computed length would need a
// dynamic loop bound this generator's straight-line store sequence
// does not provide. Word 0 of the allocation holds the length; the
// initializer is evaluated once and its value replicated into every
// element slot.
func genArrayCons(env *Env, n *ast.Node, e *ast.ArrayCons, target int) (asmdoc.Document, error) {
	lit, ok := e.Len.X.(*ast.IntLit)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/array-length", n.Pos, "ArrayCons", "array length must be an integer literal for this naive generator")
	}
	length := lit.Value
	arr, ok := n.Typ.(ast.TArray)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "ArrayCons", "resolved type is not an array")
	}
	base, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	alloc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li a0, %d", (length+1)*4))),
		asmdoc.OneText(asmdoc.Op("li a7, 9")),
		asmdoc.OneText(asmdoc.Op("ecall")),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, a0", base))),
	)
	lenReg, err := intReg(n.Pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	storeLen := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li %s, %d", lenReg, length))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, 0(%s)", lenReg, base))),
	)
	doc := asmdoc.ConcatAll(alloc, storeLen)
	if isFloatTyp(arr.Elem) {
		initDoc, err := gen(env, e.Init, target+1, 0)
		if err != nil {
			return asmdoc.Empty, err
		}
		vr, err := fpReg(n.Pos, 0)
		if err != nil {
			return asmdoc.Empty, err
		}
		doc = asmdoc.Concat(doc, initDoc)
		for i := 0; i < length; i++ {
			doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(%s)", vr, (i+1)*4, base))))
		}
		return doc, nil
	}
	initDoc, err := gen(env, e.Init, target+1, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	vr, err := intReg(n.Pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	doc = asmdoc.Concat(doc, initDoc)
	for i := 0; i < length; i++ {
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(%s)", vr, (i+1)*4, base))))
	}
	return doc, nil
}

// genArrayElem computes the element address as base + 4 + (index*4),
// word 0 being the length slot written by genArrayCons.
func genArrayElem(env *Env, n *ast.Node, e *ast.ArrayElem, target, fptarget int) (asmdoc.Document, error) {
	baseDoc, err := gen(env, e.Arr, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	idxDoc, err := gen(env, e.Index, target+1, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	base, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	idxReg, err := intReg(n.Pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	addr := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("slli %s, %s, 2", idxReg, idxReg))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi %s, %s, 4", idxReg, idxReg))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("add %s, %s, %s", idxReg, idxReg, base))),
	)
	if isFloatTyp(n.Typ) {
		fr, err := fpReg(n.Pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.ConcatAll(baseDoc, idxDoc, addr, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, 0(%s)", fr, idxReg)))), nil
	}
	ir, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(baseDoc, idxDoc, addr, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, 0(%s)", ir, idxReg)))), nil
}

// genArrayLength reads the length word stored at offset 0.
func genArrayLength(env *Env, n *ast.Node, e *ast.ArrayLength, target int) (asmdoc.Document, error) {
	doc, err := gen(env, e.Arr, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	r, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, 0(%s)", r, r)))), nil
}
