package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders n the way the teacher renders every node: a compact,
// fully-parenthesised expression, useful for dumping the untyped or
// typed tree from the CLI (spec §6 "parse"/"typecheck" subcommands).
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch e := n.X.(type) {
	case *UnitLit:
		return "()"
	case *BoolLit:
		return strconv.FormatBool(e.Value)
	case *IntLit:
		return strconv.Itoa(e.Value)
	case *FloatLit:
		return strconv.FormatFloat(e.Value, 'g', -1, 64) + "f"
	case *StringLit:
		return strconv.Quote(e.Value)
	case *Var:
		return e.Name
	case *Binary:
		return "(" + e.Left.String() + " " + string(e.Op) + " " + e.Right.String() + ")"
	case *CompoundAssign:
		return "(" + e.Target.String() + " " + string(e.Op) + "= " + e.Value.String() + ")"
	case *BNot:
		return "(~" + e.X.String() + ")"
	case *Not:
		return "(not " + e.X.String() + ")"
	case *Neg:
		return "(-" + e.X.String() + ")"
	case *Sqrt:
		return "sqrt(" + e.X.String() + ")"
	case *ReadInt:
		return "readInt()"
	case *ReadFloat:
		return "readFloat()"
	case *Print:
		return "print(" + e.X.String() + ")"
	case *PrintLn:
		return "println(" + e.X.String() + ")"
	case *Syscall:
		return fmt.Sprintf("syscall(%d%s)", e.Number, joinArgs(e.Args))
	case *Preinc:
		if e.Delta > 0 {
			return "++" + e.Target
		}
		return "--" + e.Target
	case *Postinc:
		if e.Delta > 0 {
			return e.Target + "++"
		}
		return e.Target + "--"
	case *If:
		return "if " + e.Cond.String() + " then " + e.Then.String() + " else " + e.Else.String()
	case *Seq:
		parts := make([]string, len(e.Items))
		for i, it := range e.Items {
			parts[i] = it.String()
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case *TypeDecl:
		return "type " + e.Name + " = " + e.Pretype.String() + "; " + e.Scope.String()
	case *Ascription:
		return e.X.String() + " : " + e.Pretype.String()
	case *Assertion:
		return "assert(" + e.X.String() + ")"
	case *Copy:
		return "copy(" + e.X.String() + ")"
	case *Let:
		return "let " + e.Name + " = " + e.Init.String() + "; " + e.Scope.String()
	case *LetT:
		return "let " + e.Name + ": " + e.Pretype.String() + " = " + e.Init.String() + "; " + e.Scope.String()
	case *LetMut:
		return "let mutable " + e.Name + " = " + e.Init.String() + "; " + e.Scope.String()
	case *Assign:
		return e.Target.String() + " <- " + e.Value.String()
	case *While:
		return "while " + e.Cond.String() + " do " + e.Body.String()
	case *For:
		return "for " + e.Ident + " = " + e.Init.String() + " while " + e.Cond.String() + " do " + e.Body.String() + " then " + e.Step.String()
	case *Lambda:
		names := make([]string, len(e.Args))
		for i, a := range e.Args {
			names[i] = a.Name + ": " + a.Pretype.String()
		}
		return "fun(" + strings.Join(names, ", ") + ") = " + e.Body.String()
	case *Application:
		return e.Fn.String() + joinArgs(e.Args)
	case *StructCons:
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Name + " = " + f.Init.String()
		}
		return "struct { " + strings.Join(parts, "; ") + " }"
	case *FieldSelect:
		return e.X.String() + "." + e.Field
	case *UnionCons:
		return e.Label + "{" + e.X.String() + "}"
	case *Match:
		parts := make([]string, len(e.Cases))
		for i, c := range e.Cases {
			parts[i] = c.Label + "{" + c.Var + "} -> " + c.Body.String()
		}
		return "match " + e.X.String() + " with { " + strings.Join(parts, "; ") + " }"
	case *ArrayCons:
		return "array(" + e.Len.String() + ", " + e.Init.String() + ")"
	case *ArrayElem:
		return e.Arr.String() + "[" + e.Index.String() + "]"
	case *ArrayLength:
		return "len(" + e.Arr.String() + ")"
	case *Pointer:
		return fmt.Sprintf("<ptr %d>", e.Addr)
	default:
		return "<?>"
	}
}

func joinArgs(args []*Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
