package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/asmdoc"
	"github.com/hygge-lang/hygge/token"
)

// genFloatLit emits a float literal as a data-segment label plus a
// two-instruction load through the reserved address scratch register
// (spec §4.6: "Literals: Li (integer) or load-word from a data label
// (float)").
func genFloatLit(env *Env, pos token.Position, value float64, fptarget int) (asmdoc.Document, error) {
	label := env.Lab.Next("flt")
	r, err := fpReg(pos, fptarget)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(
		asmdoc.OneData(asmdoc.DataItem{Label: label, Dir: ".float", Value: fmt.Sprintf("%v", value)}),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", intLabelScratch, label))),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, 0(%s)", r, intLabelScratch))),
	), nil
}

// genStringLit emits a string literal as a .asciiz data label; the
// target register simply holds the label's address, matching the
// runtime representation Print/PrintLn/syscalls expect for String.
func genStringLit(env *Env, pos token.Position, value string, target int) (asmdoc.Document, error) {
	label := env.Lab.Next("str")
	r, err := intReg(pos, target)
	if err != nil {
		return asmdoc.Empty, err
	}
	return asmdoc.ConcatAll(
		asmdoc.OneData(asmdoc.DataItem{Label: label, Dir: ".asciiz", Value: fmt.Sprintf("%q", value)}),
		asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", r, label))),
	), nil
}

// genVar dispatches on the four variable-storage cases of spec §4.6.
func genVar(env *Env, pos token.Position, name string, target, fptarget int, typ ast.Type) (asmdoc.Document, error) {
	st, ok := env.Lookup(name)
	if !ok {
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Var", fmt.Sprintf("unbound variable %q reached code generation", name))
	}
	switch st.Kind {
	case InReg:
		r, err := intReg(pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		src, err := intReg(pos, st.Reg)
		if err != nil {
			return asmdoc.Empty, err
		}
		return mvIntIfDiff(r, src), nil
	case InFpReg:
		r, err := fpReg(pos, fptarget)
		if err != nil {
			return asmdoc.Empty, err
		}
		src, err := fpReg(pos, st.Reg)
		if err != nil {
			return asmdoc.Empty, err
		}
		return mvFpIfDiff(r, src), nil
	case InLabel:
		r, err := intReg(pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.OneText(asmdoc.Op(fmt.Sprintf("la %s, %s", r, st.Label))), nil
	case InStack:
		if isFloatTyp(typ) {
			r, err := fpReg(pos, fptarget)
			if err != nil {
				return asmdoc.Empty, err
			}
			return asmdoc.OneText(asmdoc.Op(fmt.Sprintf("flw %s, %d(sp)", r, st.Offset))), nil
		}
		r, err := intReg(pos, target)
		if err != nil {
			return asmdoc.Empty, err
		}
		return asmdoc.OneText(asmdoc.Op(fmt.Sprintf("lw %s, %d(sp)", r, st.Offset))), nil
	default:
		return asmdoc.Empty, bug("gen/bug/shape", pos, "Var", "unknown storage kind")
	}
}

func mvIntIfDiff(dst, src string) asmdoc.Document {
	if dst == src {
		return asmdoc.Empty
	}
	return asmdoc.OneText(asmdoc.Op(fmt.Sprintf("mv %s, %s", dst, src)))
}

func mvFpIfDiff(dst, src string) asmdoc.Document {
	if dst == src {
		return asmdoc.Empty
	}
	return asmdoc.OneText(asmdoc.Op(fmt.Sprintf("fmv.s %s, %s", dst, src)))
}

// expand resolves n's type through the alias table captured in its own
// typing-environment snapshot (spec §3: "every node carries its own
// environment snapshot"), which is how this package avoids needing a
// separate alias table threaded through Env: the typed tree already
// carries everything the checker knew.
func expand(n *ast.Node) (ast.Type, error) {
	if n.Env == nil {
		return n.Typ, nil
	}
	return ast.ExpandType(n.Typ, n.Env.AliasTable())
}
