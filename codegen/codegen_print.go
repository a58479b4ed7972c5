package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/asmdoc"
	"github.com/hygge-lang/hygge/syscalls"
	"github.com/hygge-lang/hygge/token"
)

// genPrint dispatches Print/PrintLn to the matching RARS print syscall
// by the printed expression's resolved type (spec §4.6 "Print: dispatch
// on the printed type's runtime representation"); PrintLn additionally
// prints a newline literal through the same PrintString syscall.
func genPrint(env *Env, pos token.Position, x *ast.Node, target, fptarget int, newline bool) (asmdoc.Document, error) {
	doc, err := gen(env, x, target, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	var callDoc asmdoc.Document
	switch {
	case isFloatTyp(x.Typ):
		r, err := fpReg(pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		callDoc = asmdoc.ConcatAll(
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fmv.s fa0, %s", r))),
			asmdoc.OneText(asmdoc.Op("li a7, 2")),
			asmdoc.OneText(asmdoc.Op("ecall")),
		)
	default:
		r, err := intReg(pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		number := 1
		if _, ok := x.Typ.(ast.TString); ok {
			number = 4
		}
		callDoc = asmdoc.ConcatAll(
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv a0, %s", r))),
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li a7, %d", number))),
			asmdoc.OneText(asmdoc.Op("ecall")),
		)
	}
	if newline {
		nlLabel := env.Lab.Next("nl")
		callDoc = asmdoc.ConcatAll(callDoc,
			asmdoc.OneData(asmdoc.DataItem{Label: nlLabel, Dir: ".asciiz", Value: `"\n"`}),
			asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la a0, %s", nlLabel))),
			asmdoc.OneText(asmdoc.Op("li a7, 4")),
			asmdoc.OneText(asmdoc.Op("ecall")),
		)
	}
	return asmdoc.ConcatAll(doc, callDoc, unitInto(pos, target)), nil
}

// genSyscall evaluates arguments left to right into the a/fa registers
// the shared syscalls.Signature expects, invokes the raw ecall, then
// moves the a0/fa0 result into the caller's target (spec §4.5's
// registry is consulted here, not re-derived, so code generation can
// never hand a syscall a register bank its checked signature did not
// expect).
func genSyscall(env *Env, n *ast.Node, e *ast.Syscall, target, fptarget int) (asmdoc.Document, error) {
	sig, ok := syscalls.Lookup(e.Number)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Syscall", fmt.Sprintf("unknown syscall number %d", e.Number))
	}
	if len(sig.Args) != len(e.Args) {
		return asmdoc.Empty, bug("gen/bug/shape", n.Pos, "Syscall", "argument count mismatch with registry signature")
	}
	doc := asmdoc.Empty
	nextInt, nextFp := 0, 0
	scratchInt, scratchFp := target+1, fptarget+1
	for i, arg := range e.Args {
		if isFloatTyp(sig.Args[i]) {
			d, err := gen(env, arg, scratchInt, scratchFp)
			if err != nil {
				return asmdoc.Empty, err
			}
			vr, err := fpReg(n.Pos, scratchFp)
			if err != nil {
				return asmdoc.Empty, err
			}
			doc = asmdoc.ConcatAll(doc, d, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fmv.s %s, %s", argFpRegs[nextFp], vr))))
			nextFp++
			continue
		}
		d, err := gen(env, arg, scratchInt, scratchFp)
		if err != nil {
			return asmdoc.Empty, err
		}
		vr, err := intReg(n.Pos, scratchInt)
		if err != nil {
			return asmdoc.Empty, err
		}
		doc = asmdoc.ConcatAll(doc, d, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, %s", argIntRegs[nextInt], vr))))
		nextInt++
	}
	doc = asmdoc.ConcatAll(doc,
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("li a7, %d", e.Number))),
		asmdoc.OneText(asmdoc.Op("ecall")),
	)
	switch {
	case sig.Ret == nil:
		return asmdoc.Concat(doc, unitInto(n.Pos, target)), nil
	case isFloatTyp(sig.Ret):
		r, err := fpReg(n.Pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fmv.s %s, fa0", r)))), nil
	default:
		r, err := intReg(n.Pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.Concat(doc, asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, a0", r)))), nil
	}
}
