package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/asmdoc"
	"github.com/hygge-lang/hygge/token"
)

// genIf implements spec §4.6's far-jump shape: "on true jump to a true
// label, on false load the false label's address and jump-register
// (allowing far targets)" -- RISC-V conditional branches only reach
// +-4KiB, which a deeply nested compiled program can exceed, so the
// false edge goes through an indirect jump instead of a second branch.
func genIf(env *Env, n *ast.Node, e *ast.If, target, fptarget int) (asmdoc.Document, error) {
	condDoc, err := gen(env, e.Cond, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	cr, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	trueLbl := env.Lab.Next("if_true")
	falseLbl := env.Lab.Next("if_false")
	endLbl := env.Lab.Next("if_end")

	thenDoc, err := gen(env, e.Then, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	elseDoc, err := gen(env, e.Else, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}

	return asmdoc.ConcatAll(
		condDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("bnez %s, %s", cr, trueLbl))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", intLabelScratch, falseLbl))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("jr %s", intLabelScratch))),
		asmdoc.OneText(asmdoc.Label(trueLbl)),
		thenDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("j %s", endLbl))),
		asmdoc.OneText(asmdoc.Label(falseLbl)),
		elseDoc,
		asmdoc.OneText(asmdoc.Label(endLbl)),
	), nil
}

// genSeq concatenates each item's code in order; every item but the
// last writes (and has its result discarded by) the same target the
// last item's value is expected in, per spec §4.6 "Seq: concatenate
// generated snippets."
func genSeq(env *Env, n *ast.Node, e *ast.Seq, target, fptarget int) (asmdoc.Document, error) {
	if len(e.Items) == 0 {
		return unitInto(n.Pos, target), nil
	}
	doc := asmdoc.Empty
	for _, item := range e.Items {
		d, err := gen(env, item, target, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		doc = asmdoc.Concat(doc, d)
	}
	return doc, nil
}

// genAssertion implements spec §4.6: "Subtract 1; branch to a pass
// label if zero; else syscall Exit2 with a non-zero assertion exit
// code" -- the exit code is 42, per spec §6's documented propagated
// exit status for a runtime assertion violation.
func genAssertion(env *Env, pos token.Position, x *ast.Node, target int) (asmdoc.Document, error) {
	doc, err := gen(env, x, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	r, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	passLbl := env.Lab.Next("assert_pass")
	return asmdoc.ConcatAll(
		doc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi %s, %s, -1", r, r))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("beqz %s, %s", r, passLbl))),
		asmdoc.OneText(asmdoc.Op("li a0, 42")),
		asmdoc.OneText(asmdoc.Op("li a7, 93")),
		asmdoc.OneText(asmdoc.Op("ecall")),
		asmdoc.OneText(asmdoc.LOp(passLbl, fmt.Sprintf("li %s, 0", r))),
	), nil
}

// genCopy implements the §9-resolved rule: deep-copy recurses through
// record fields, but an array (or anything else) is copied shallow at
// the pointer level -- i.e. unchanged.
func genCopy(env *Env, n *ast.Node, e *ast.Copy, target int) (asmdoc.Document, error) {
	xDoc, err := gen(env, e.X, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	t, err := expand(e.X)
	if err != nil {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Copy", err.Error())
	}
	rec, ok := t.(ast.TRecord)
	if !ok {
		return xDoc, nil
	}
	var aliases ast.AliasTable
	if e.X.Env != nil {
		aliases = e.X.Env.AliasTable()
	}
	copyDoc, err := deepCopyRecord(n.Pos, aliases, rec, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.Concat(xDoc, copyDoc), nil
}

func deepCopyRecord(pos token.Position, aliases ast.AliasTable, rec ast.TRecord, target int) (asmdoc.Document, error) {
	oldBase, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	newBase, err := intReg(pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	fieldVal, err := intReg(pos, target+2)
	if err != nil {
		return asmdoc.Empty, err
	}

	doc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li a0, %d", len(rec.Fields)*4))),
		asmdoc.OneText(asmdoc.Op("li a7, 9")),
		asmdoc.OneText(asmdoc.Op("ecall")),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, a0", newBase))),
	)
	for i, f := range rec.Fields {
		off := i * 4
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, %d(%s)", fieldVal, off, oldBase))))
		if aliases != nil {
			if ft, ferr := ast.ExpandType(f.Type, aliases); ferr == nil {
				if nestedRec, ok := ft.(ast.TRecord); ok {
					nestedBase, err := intReg(pos, target+3)
					if err != nil {
						return asmdoc.Empty, err
					}
					moveIn := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, %s", nestedBase, fieldVal)))
					nestedDoc, err := deepCopyRecord(pos, aliases, nestedRec, target+3)
					if err != nil {
						return asmdoc.Empty, err
					}
					moveOut := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, %s", fieldVal, nestedBase)))
					doc = asmdoc.ConcatAll(doc, moveIn, nestedDoc, moveOut)
				}
			}
		}
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(%s)", fieldVal, off, newBase))))
	}
	doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, %s", oldBase, newBase))))
	return doc, nil
}

// genLet implements spec §4.6: "emit init into target; bind name to
// that register; recurse on scope into target+1 (or fptarget+1 for
// floats); copy scope result back into target" -- Let, LetT and LetMut
// are "identical ... in this naive generator" (spec §4.6), so all three
// dispatch here.
func genLet(env *Env, n *ast.Node, name string, init, scope *ast.Node, target, fptarget int) (asmdoc.Document, error) {
	if lam, ok := init.X.(*ast.Lambda); ok {
		return genLambdaLet(env, n, name, init, lam, scope, target, fptarget)
	}
	initDoc, err := gen(env, init, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}

	var inner *Env
	scopeTarget, scopeFp := target, fptarget
	if isFloatTyp(init.Typ) {
		inner = env.With(name, FpRegStorage(fptarget))
		scopeFp = fptarget + 1
	} else {
		inner = env.With(name, RegStorage(target))
		scopeTarget = target + 1
	}

	scopeDoc, err := gen(inner, scope, scopeTarget, scopeFp)
	if err != nil {
		return asmdoc.Empty, err
	}

	copyBack := asmdoc.Empty
	if isFloatTyp(scope.Typ) {
		if scopeFp != fptarget {
			dst, err := fpReg(n.Pos, fptarget)
			if err != nil {
				return asmdoc.Empty, err
			}
			src, err := fpReg(n.Pos, scopeFp)
			if err != nil {
				return asmdoc.Empty, err
			}
			copyBack = mvFpIfDiff(dst, src)
		}
	} else if scopeTarget != target {
		dst, err := intReg(n.Pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		src, err := intReg(n.Pos, scopeTarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		copyBack = mvIntIfDiff(dst, src)
	}
	return asmdoc.ConcatAll(initDoc, scopeDoc, copyBack), nil
}

// genAssign dispatches on the three admitted assignment targets of
// spec §4.3: Var, FieldSelect, ArrayElem.
func genAssign(env *Env, pos token.Position, targetNode, valueNode *ast.Node, target, fptarget int) (asmdoc.Document, error) {
	switch tgt := targetNode.X.(type) {
	case *ast.Var:
		return genVarAssign(env, pos, tgt.Name, valueNode, target, fptarget)
	case *ast.FieldSelect:
		return genFieldAssign(env, pos, tgt, valueNode, target, fptarget)
	case *ast.ArrayElem:
		return genArrayElemAssign(env, pos, tgt, valueNode, target, fptarget)
	default:
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Assign", "unsupported assignment target")
	}
}

func genVarAssign(env *Env, pos token.Position, name string, valueNode *ast.Node, target, fptarget int) (asmdoc.Document, error) {
	st, ok := env.Lookup(name)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Assign", fmt.Sprintf("unbound variable %q", name))
	}
	switch st.Kind {
	case InReg:
		valDoc, err := gen(env, valueNode, st.Reg, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.Concat(valDoc, unitInto(pos, target)), nil
	case InFpReg:
		valDoc, err := gen(env, valueNode, target, st.Reg)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.Concat(valDoc, unitInto(pos, target)), nil
	case InStack:
		valDoc, err := gen(env, valueNode, target, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		if isFloatTyp(valueNode.Typ) {
			r, err := fpReg(pos, fptarget)
			if err != nil {
				return asmdoc.Empty, err
			}
			return asmdoc.ConcatAll(valDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(sp)", r, st.Offset))), unitInto(pos, target)), nil
		}
		r, err := intReg(pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.ConcatAll(valDoc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(sp)", r, st.Offset))), unitInto(pos, target)), nil
	default:
		return asmdoc.Empty, bug("gen/bug/unsupported", pos, "assignment to a label-bound variable")
	}
}

func genFieldAssign(env *Env, pos token.Position, fs *ast.FieldSelect, valueNode *ast.Node, target, fptarget int) (asmdoc.Document, error) {
	baseDoc, err := gen(env, fs.X, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	baseTyp, err := expand(fs.X)
	if err != nil {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "FieldSelect", err.Error())
	}
	rec, ok := baseTyp.(ast.TRecord)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "FieldSelect", "assignment target is not a record")
	}
	idx := rec.FieldIndex(fs.Field)
	if idx < 0 {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "FieldSelect", fmt.Sprintf("no field %q", fs.Field))
	}
	base, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	if isFloatTyp(valueNode.Typ) {
		valDoc, err := gen(env, valueNode, target+1, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		vr, err := fpReg(pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		store := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(%s)", vr, idx*4, base)))
		return asmdoc.ConcatAll(baseDoc, valDoc, store, unitInto(pos, target)), nil
	}
	valDoc, err := gen(env, valueNode, target+1, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	vr, err := intReg(pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	store := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(%s)", vr, idx*4, base)))
	return asmdoc.ConcatAll(baseDoc, valDoc, store, unitInto(pos, target)), nil
}

func genArrayElemAssign(env *Env, pos token.Position, ae *ast.ArrayElem, valueNode *ast.Node, target, fptarget int) (asmdoc.Document, error) {
	baseDoc, err := gen(env, ae.Arr, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	idxDoc, err := gen(env, ae.Index, target+1, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	base, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	idxReg, err := intReg(pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	addrDoc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("slli %s, %s, 2", idxReg, idxReg))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi %s, %s, 4", idxReg, idxReg))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("add %s, %s, %s", idxReg, idxReg, base))),
	)
	if isFloatTyp(valueNode.Typ) {
		valDoc, err := gen(env, valueNode, target+2, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		vr, err := fpReg(pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		store := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, 0(%s)", vr, idxReg)))
		return asmdoc.ConcatAll(baseDoc, idxDoc, addrDoc, valDoc, store, unitInto(pos, target)), nil
	}
	valDoc, err := gen(env, valueNode, target+2, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	vr, err := intReg(pos, target+2)
	if err != nil {
		return asmdoc.Empty, err
	}
	store := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, 0(%s)", vr, idxReg)))
	return asmdoc.ConcatAll(baseDoc, idxDoc, addrDoc, valDoc, store, unitInto(pos, target)), nil
}

func unitInto(pos token.Position, target int) asmdoc.Document {
	r, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty
	}
	return asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li %s, 0", r)))
}

// genWhile implements spec §4.6: "begin label, cond, branch to body or
// load end label and jr; body; jump to begin; end label."
func genWhile(env *Env, n *ast.Node, e *ast.While, target int) (asmdoc.Document, error) {
	beginLbl := env.Lab.Next("while_begin")
	bodyLbl := env.Lab.Next("while_body")
	endLbl := env.Lab.Next("while_end")
	condDoc, err := gen(env, e.Cond, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	cr, err := intReg(n.Pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	bodyDoc, err := gen(env, e.Body, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Label(beginLbl)),
		condDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("bnez %s, %s", cr, bodyLbl))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", intLabelScratch, endLbl))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("jr %s", intLabelScratch))),
		asmdoc.OneText(asmdoc.Label(bodyLbl)),
		bodyDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("j %s", beginLbl))),
		asmdoc.OneText(asmdoc.Label(endLbl)),
		unitInto(n.Pos, target),
	), nil
}

// genFor reuses the evaluator's own desugaring (spec §4.4: "For
// rewrites to LetMut(ident, init, While(cond, Seq(body, step)))"),
// rather than re-deriving the iteration-variable binding shape for a
// second construct (spec §4.6: "For desugars as in the evaluator, then
// emits the while").
func genFor(env *Env, n *ast.Node, e *ast.For, target int) (asmdoc.Document, error) {
	stepSeq := &ast.Node{Pos: n.Pos, X: &ast.Seq{Items: []*ast.Node{e.Body, e.Step}}, Env: n.Env, Typ: ast.TUnit{}}
	whileNode := &ast.Node{Pos: n.Pos, X: &ast.While{Cond: e.Cond, Body: stepSeq}, Env: n.Env, Typ: ast.TUnit{}}
	return genLet(env, n, e.Ident, e.Init, whileNode, target, 0)
}
