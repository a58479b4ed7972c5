package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/asmdoc"
	"github.com/hygge-lang/hygge/token"
)

// genLambdaLet compiles the one function-definition shape this naive
// generator supports, per spec §4.6: "a lambda must be directly bound
// by a Let; bare lambdas are rejected." The function body is compiled
// into its own label in the post-text segment, with arguments moved on
// entry from a0../fa0.. into the callee-saved register tail (or read
// from a stack slot past the eighth of their kind) so
// the body's own scratch computation can restart at target index
// (0, 0) without colliding with an argument's permanent home.
func genLambdaLet(env *Env, n *ast.Node, name string, lambdaNode *ast.Node, lam *ast.Lambda, scope *ast.Node, target, fptarget int) (asmdoc.Document, error) {
	fnLabel := env.Lab.Next("fn_" + name)
	fnType, ok := lambdaNode.Typ.(ast.TFun)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Lambda", "let-bound lambda has a non-function type")
	}

	funcEnv := env.With(name, LabelStorage(fnLabel))

	argEnv := funcEnv
	nextInt, nextFp := 0, 0
	stackOff := 0
	argMoves := asmdoc.Empty
	// Stack-passed arguments sit just above the callee's own saved-register
	// frame, at the address the caller's sp held at the moment of jalr
	// (spec §4.6 "arguments beyond the eighth are passed on the stack").
	for i, arg := range lam.Args {
		argTyp := fnType.Args[i]
		if isFloatTyp(argTyp) {
			if nextFp < maxFpRegArgs {
				argEnv = argEnv.With(arg.Name, FpRegStorage(fpArgRegBase+nextFp))
				argMoves = asmdoc.Concat(argMoves, mvFpIfDiff(fpTargetRegs[fpArgRegBase+nextFp], argFpRegs[nextFp]))
				nextFp++
				continue
			}
		} else if nextInt < maxRegArgs {
			argEnv = argEnv.With(arg.Name, RegStorage(argRegBase+nextInt))
			argMoves = asmdoc.Concat(argMoves, mvIntIfDiff(intTargetRegs[argRegBase+nextInt], argIntRegs[nextInt]))
			nextInt++
			continue
		}
		argEnv = argEnv.With(arg.Name, StackStorage(frameBytes()+stackOff))
		stackOff += 4
	}

	bodyDoc, err := gen(argEnv, lam.Body, 0, 0)
	if err != nil {
		return asmdoc.Empty, err
	}
	retIsFloat := isFloatTyp(lam.Body.Typ)
	var moveRet asmdoc.Document
	if retIsFloat {
		moveRet = mvFpIfDiff("fa0", mustFpReg(n.Pos, 0))
	} else {
		moveRet = mvIntIfDiff("a0", mustIntReg(n.Pos, 0))
	}

	prologue := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.LOp(fnLabel, fmt.Sprintf("addi sp, sp, -%d", frameBytes()))),
		saveCalleeSaved(),
		argMoves,
	)
	epilogue := asmdoc.ConcatAll(
		restoreCalleeSaved(),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi sp, sp, %d", frameBytes()))),
		asmdoc.OneText(asmdoc.Op("jr ra")),
	)

	fnDoc := asmdoc.ConcatAll(prologue, bodyDoc, moveRet, epilogue)

	scopeDoc, err := gen(funcEnv, scope, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.Concat(fnDoc.MoveTextToPostText(), scopeDoc), nil
}

func frameBytes() int {
	return (len(calleeSavedInt) + len(calleeSavedFp)) * 4
}

func saveCalleeSaved() asmdoc.Document {
	doc := asmdoc.Empty
	off := 0
	for _, r := range calleeSavedInt {
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(sp)", r, off))))
		off += 4
	}
	for _, r := range calleeSavedFp {
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(sp)", r, off))))
		off += 4
	}
	return doc
}

func restoreCalleeSaved() asmdoc.Document {
	doc := asmdoc.Empty
	off := 0
	for _, r := range calleeSavedInt {
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, %d(sp)", r, off))))
		off += 4
	}
	for _, r := range calleeSavedFp {
		doc = asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, %d(sp)", r, off))))
		off += 4
	}
	return doc
}

func mustIntReg(pos token.Position, i int) string {
	r, err := intReg(pos, i)
	if err != nil {
		return "zero"
	}
	return r
}

func mustFpReg(pos token.Position, i int) string {
	r, err := fpReg(pos, i)
	if err != nil {
		return "ft0"
	}
	return r
}

// genApplication implements spec §4.6's caller-saves calling
// convention: save every register below the caller's own target
// (those are live values an outer expression still needs), evaluate
// each argument left to right into the matching a/fa register or a
// stack slot past the eighth, jalr to the callee's label, copy the
// return value into target/fptarget, then restore the saved registers.
func genApplication(env *Env, n *ast.Node, e *ast.Application, target, fptarget int) (asmdoc.Document, error) {
	fnName, ok := e.Fn.X.(*ast.Var)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Application", "callee is not a directly-named function")
	}
	st, ok := env.Lookup(fnName.Name)
	if !ok || st.Kind != InLabel {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Application", fmt.Sprintf("%q is not a let-bound function", fnName.Name))
	}

	saveDoc, restoreDoc, err := saveLiveRegisters(n.Pos, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}

	argsDoc := asmdoc.Empty
	nextInt, nextFp := 0, 0
	var stackArgs []*ast.Node
	scratchInt, scratchFp := target+1, fptarget+1
	for _, arg := range e.Args {
		if isFloatTyp(arg.Typ) {
			if nextFp < len(argFpRegs) {
				d, err := gen(env, arg, scratchInt, scratchFp)
				if err != nil {
					return asmdoc.Empty, err
				}
				argsDoc = asmdoc.ConcatAll(argsDoc, d, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fmv.s %s, %s", argFpRegs[nextFp], mustFpReg(n.Pos, scratchFp)))))
				nextFp++
				continue
			}
		} else if nextInt < len(argIntRegs) {
			d, err := gen(env, arg, scratchInt, scratchFp)
			if err != nil {
				return asmdoc.Empty, err
			}
			argsDoc = asmdoc.ConcatAll(argsDoc, d, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, %s", argIntRegs[nextInt], mustIntReg(n.Pos, scratchInt)))))
			nextInt++
			continue
		}
		stackArgs = append(stackArgs, arg)
	}

	spillDoc, unspillDoc := asmdoc.Empty, asmdoc.Empty
	if stackN := len(stackArgs); stackN > 0 {
		bytes := stackN * 4
		spillDoc = asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi sp, sp, -%d", bytes)))
		off := 0
		for _, arg := range stackArgs {
			d, err := gen(env, arg, scratchInt, scratchFp)
			if err != nil {
				return asmdoc.Empty, err
			}
			if isFloatTyp(arg.Typ) {
				spillDoc = asmdoc.ConcatAll(spillDoc, d, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(sp)", mustFpReg(n.Pos, scratchFp), off))))
			} else {
				spillDoc = asmdoc.ConcatAll(spillDoc, d, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(sp)", mustIntReg(n.Pos, scratchInt), off))))
			}
			off += 4
		}
		unspillDoc = asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi sp, sp, %d", bytes)))
	}

	callDoc := asmdoc.ConcatAll(
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", intLabelScratch, st.Label))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("jalr %s", intLabelScratch))),
	)

	var moveResult asmdoc.Document
	if isFloatTyp(n.Typ) {
		moveResult = mvFpIfDiff(mustFpReg(n.Pos, fptarget), "fa0")
	} else {
		moveResult = mvIntIfDiff(mustIntReg(n.Pos, target), "a0")
	}

	return asmdoc.ConcatAll(saveDoc, argsDoc, spillDoc, callDoc, unspillDoc, moveResult, restoreDoc), nil
}

// saveLiveRegisters pushes every integer/float target register below
// the caller's own target index, since the callee's body will reuse
// the whole low-index scratch pool indiscriminately starting at (0,0).
func saveLiveRegisters(pos token.Position, target, fptarget int) (asmdoc.Document, asmdoc.Document, error) {
	bytes := (target + fptarget) * 4
	if bytes == 0 {
		return asmdoc.Empty, asmdoc.Empty, nil
	}
	save := asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi sp, sp, -%d", bytes)))
	restore := asmdoc.Empty
	off := 0
	for i := 0; i < target; i++ {
		r, err := intReg(pos, i)
		if err != nil {
			return asmdoc.Empty, asmdoc.Empty, err
		}
		save = asmdoc.Concat(save, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("sw %s, %d(sp)", r, off))))
		restore = asmdoc.Concat(asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, %d(sp)", r, off))), restore)
		off += 4
	}
	for i := 0; i < fptarget; i++ {
		r, err := fpReg(pos, i)
		if err != nil {
			return asmdoc.Empty, asmdoc.Empty, err
		}
		save = asmdoc.Concat(save, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fsw %s, %d(sp)", r, off))))
		restore = asmdoc.Concat(asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, %d(sp)", r, off))), restore)
		off += 4
	}
	restore = asmdoc.Concat(restore, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("addi sp, sp, %d", bytes))))
	return save, restore, nil
}
