package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/asmdoc"
	"github.com/hygge-lang/hygge/token"
)

func isRelOp(op ast.BinOp) bool {
	switch op {
	case ast.OpEq, ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		return true
	}
	return false
}

var intOpcodes = map[ast.BinOp]string{
	ast.OpAdd: "add", ast.OpSub: "sub", ast.OpMul: "mul", ast.OpDiv: "div", ast.OpRem: "rem",
	ast.OpBAnd: "and", ast.OpBOr: "or", ast.OpBXor: "xor", ast.OpBSL: "sll", ast.OpBSR: "srl",
	ast.OpAnd: "and", ast.OpOr: "or", ast.OpXor: "xor",
}

var floatOpcodes = map[ast.BinOp]string{
	ast.OpAdd: "fadd.s", ast.OpSub: "fsub.s", ast.OpMul: "fmul.s", ast.OpDiv: "fdiv.s",
}

// genBinary dispatches a Binary node to the short-circuit, relational,
// or straight-line arithmetic/bitwise/logical code paths of spec §4.6.
func genBinary(env *Env, n *ast.Node, e *ast.Binary, target, fptarget int) (asmdoc.Document, error) {
	switch e.Op {
	case ast.OpScAnd:
		return genScAnd(env, n.Pos, e.Left, e.Right, target)
	case ast.OpScOr:
		return genScOr(env, n.Pos, e.Left, e.Right, target)
	}
	if isRelOp(e.Op) {
		return genRelational(env, n.Pos, e, target, fptarget)
	}
	if isFloatTyp(e.Left.Typ) {
		return genFloatBinary(env, n.Pos, e, target, fptarget)
	}
	return genIntBinary(env, n.Pos, e, target, fptarget)
}

// genIntBinary recurses lhs into target, rhs into target+1, per spec
// §4.6 "Arithmetic: recurse on lhs into target, on rhs into target+1".
func genIntBinary(env *Env, pos token.Position, e *ast.Binary, target, fptarget int) (asmdoc.Document, error) {
	op, ok := intOpcodes[e.Op]
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Binary", fmt.Sprintf("no integer opcode for %v", e.Op))
	}
	lhs, err := gen(env, e.Left, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	rhs, err := gen(env, e.Right, target+1, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	rt, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	rr, err := intReg(pos, target+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(lhs, rhs, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("%s %s, %s, %s", op, rt, rt, rr)))), nil
}

func genFloatBinary(env *Env, pos token.Position, e *ast.Binary, target, fptarget int) (asmdoc.Document, error) {
	op, ok := floatOpcodes[e.Op]
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Binary", fmt.Sprintf("no float opcode for %v", e.Op))
	}
	lhs, err := gen(env, e.Left, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	rhs, err := gen(env, e.Right, target, fptarget+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	rt, err := fpReg(pos, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	rr, err := fpReg(pos, fptarget+1)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(lhs, rhs, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("%s %s, %s, %s", op, rt, rt, rr)))), nil
}

// genRelational implements spec §4.6 "Comparisons: the same shape, then
// a branch-and-set pattern using two fresh labels (true/end)". Float
// operands are first reduced to an integer flag with the F-extension
// set instructions (feq.s/flt.s/fle.s), since RISC-V branches only test
// integer registers.
func genRelational(env *Env, pos token.Position, e *ast.Binary, target, fptarget int) (asmdoc.Document, error) {
	trueLbl := env.Lab.Next("rel_true")
	endLbl := env.Lab.Next("rel_end")
	rt, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}

	var lhsDoc, rhsDoc, cmpDoc asmdoc.Document
	var branchInstr string

	if isFloatTyp(e.Left.Typ) {
		lhsDoc, err = gen(env, e.Left, target+1, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		rhsDoc, err = gen(env, e.Right, target+1, fptarget+1)
		if err != nil {
			return asmdoc.Empty, err
		}
		a, err := fpReg(pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		b, err := fpReg(pos, fptarget+1)
		if err != nil {
			return asmdoc.Empty, err
		}
		flag, err := intReg(pos, target+1)
		if err != nil {
			return asmdoc.Empty, err
		}
		var op string
		x, y := a, b
		switch e.Op {
		case ast.OpEq:
			op = "feq.s"
		case ast.OpLess:
			op = "flt.s"
		case ast.OpLessEq:
			op = "fle.s"
		case ast.OpGreater:
			op, x, y = "flt.s", b, a
		case ast.OpGreaterEq:
			op, x, y = "fle.s", b, a
		}
		cmpDoc = asmdoc.OneText(asmdoc.Op(fmt.Sprintf("%s %s, %s, %s", op, flag, x, y)))
		branchInstr = fmt.Sprintf("bnez %s, %s", flag, trueLbl)
	} else {
		lhsDoc, err = gen(env, e.Left, target+1, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		rhsDoc, err = gen(env, e.Right, target+2, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		a, err := intReg(pos, target+1)
		if err != nil {
			return asmdoc.Empty, err
		}
		b, err := intReg(pos, target+2)
		if err != nil {
			return asmdoc.Empty, err
		}
		var op string
		switch e.Op {
		case ast.OpEq:
			op = "beq"
		case ast.OpLess:
			op = "blt"
		case ast.OpLessEq:
			op = "ble"
		case ast.OpGreater:
			op = "bgt"
		case ast.OpGreaterEq:
			op = "bge"
		}
		branchInstr = fmt.Sprintf("%s %s, %s, %s", op, a, b, trueLbl)
	}

	return asmdoc.ConcatAll(
		lhsDoc, rhsDoc, cmpDoc,
		asmdoc.OneText(asmdoc.Op(branchInstr)),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li %s, 0", rt))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("j %s", endLbl))),
		asmdoc.OneText(asmdoc.LOp(trueLbl, fmt.Sprintf("li %s, 1", rt))),
		asmdoc.OneText(asmdoc.Label(endLbl)),
	), nil
}

// genScAnd/genScOr emit the early-out branch spec §4.6 calls for:
// "Short-circuit operators emit an early branch after the lhs code and
// skip rhs on the short-circuiting value."
func genScAnd(env *Env, pos token.Position, left, right *ast.Node, target int) (asmdoc.Document, error) {
	lhsDoc, err := gen(env, left, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	rt, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	rhsDoc, err := gen(env, right, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	falseLbl := env.Lab.Next("scand_false")
	endLbl := env.Lab.Next("scand_end")
	return asmdoc.ConcatAll(
		lhsDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("beqz %s, %s", rt, falseLbl))),
		rhsDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("j %s", endLbl))),
		asmdoc.OneText(asmdoc.LOp(falseLbl, fmt.Sprintf("li %s, 0", rt))),
		asmdoc.OneText(asmdoc.Label(endLbl)),
	), nil
}

func genScOr(env *Env, pos token.Position, left, right *ast.Node, target int) (asmdoc.Document, error) {
	lhsDoc, err := gen(env, left, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	rt, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	rhsDoc, err := gen(env, right, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	trueLbl := env.Lab.Next("scor_true")
	endLbl := env.Lab.Next("scor_end")
	return asmdoc.ConcatAll(
		lhsDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("bnez %s, %s", rt, trueLbl))),
		rhsDoc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("j %s", endLbl))),
		asmdoc.OneText(asmdoc.LOp(trueLbl, fmt.Sprintf("li %s, 1", rt))),
		asmdoc.OneText(asmdoc.Label(endLbl)),
	), nil
}

func genUnaryInt(env *Env, pos token.Position, x *ast.Node, target int, instr func(reg string) string) (asmdoc.Document, error) {
	doc, err := gen(env, x, target, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	r, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(instr(r)))), nil
}

func genSqrt(env *Env, pos token.Position, x *ast.Node, fptarget int) (asmdoc.Document, error) {
	doc, err := gen(env, x, 0, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	r, err := fpReg(pos, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsqrt.s %s, %s", r, r)))), nil
}

// genIncDec implements spec §9's resolved pre/post-increment rule: both
// operators return the documented pre/post value for both numeric
// types. Only register-resident variables are supported (spec §9
// "Preinc/Postinc require the operand to be a Var bound in the storage
// map"); a label- or stack-resident operand is rejected as unsupported
// by this naive generator, which never revisits a global or a stack
// argument in place.
func genIncDec(env *Env, pos token.Position, name string, delta int, target, fptarget int, pre bool) (asmdoc.Document, error) {
	st, ok := env.Lookup(name)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Preinc/Postinc", fmt.Sprintf("unbound variable %q", name))
	}
	switch st.Kind {
	case InReg:
		vr, err := intReg(pos, st.Reg)
		if err != nil {
			return asmdoc.Empty, err
		}
		rt, err := intReg(pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		update := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi %s, %s, %d", vr, vr, delta)))
		snapshot := mvIntIfDiff(rt, vr)
		if pre {
			return asmdoc.Concat(update, snapshot), nil
		}
		return asmdoc.Concat(snapshot, update), nil
	case InFpReg:
		vr, err := fpReg(pos, st.Reg)
		if err != nil {
			return asmdoc.Empty, err
		}
		rt, err := fpReg(pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		deltaLabel := env.Lab.Next("fdelta")
		load := asmdoc.ConcatAll(
			asmdoc.OneData(asmdoc.DataItem{Label: deltaLabel, Dir: ".float", Value: fmt.Sprintf("%d.0", delta)}),
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", intLabelScratch, deltaLabel))),
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, 0(%s)", fpLabelScratch, intLabelScratch))),
		)
		update := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fadd.s %s, %s, %s", vr, vr, fpLabelScratch)))
		snapshot := mvFpIfDiff(rt, vr)
		if pre {
			return asmdoc.ConcatAll(load, update, snapshot), nil
		}
		return asmdoc.ConcatAll(load, snapshot, update), nil
	default:
		return asmdoc.Empty, bug("gen/bug/unsupported", pos, "Preinc/Postinc on a non-register variable")
	}
}

// genCompoundAssign desugars exactly as the evaluator does (spec §4.4
// "Compound assignments desugar to Assign(lhs, bin_op(lhs, rhs)) before
// reduction"), so the code generator shares one desugaring with the
// evaluator rather than re-deriving the target-register shape for five
// more opcodes.
func genCompoundAssign(env *Env, n *ast.Node, e *ast.CompoundAssign, target, fptarget int) (asmdoc.Document, error) {
	bin := &ast.Node{Pos: n.Pos, X: &ast.Binary{Op: e.Op, Left: e.Target, Right: e.Value}, Env: n.Env, Typ: e.Target.Typ}
	assign := &ast.Assign{Target: e.Target, Value: bin}
	return genAssign(env, n.Pos, assign.Target, assign.Value, target, fptarget)
}
