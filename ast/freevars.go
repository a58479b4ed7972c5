package ast

// FreeVars returns the free variables of n: the scope-minus-binders
// union over the tree (spec §4.1).
func FreeVars(n *Node) map[string]bool {
	out := map[string]bool{}
	freeVars(n, out)
	return out
}

func freeVars(n *Node, out map[string]bool) {
	if n == nil {
		return
	}
	switch e := n.X.(type) {
	case *Var:
		out[e.Name] = true
	case *Binary:
		freeVars(e.Left, out)
		freeVars(e.Right, out)
	case *CompoundAssign:
		freeVars(e.Target, out)
		freeVars(e.Value, out)
	case *BNot:
		freeVars(e.X, out)
	case *Not:
		freeVars(e.X, out)
	case *Neg:
		freeVars(e.X, out)
	case *Sqrt:
		freeVars(e.X, out)
	case *Print:
		freeVars(e.X, out)
	case *PrintLn:
		freeVars(e.X, out)
	case *Syscall:
		for _, a := range e.Args {
			freeVars(a, out)
		}
	case *Preinc:
		out[e.Target] = true
	case *Postinc:
		out[e.Target] = true
	case *If:
		freeVars(e.Cond, out)
		freeVars(e.Then, out)
		freeVars(e.Else, out)
	case *Seq:
		for _, it := range e.Items {
			freeVars(it, out)
		}
	case *TypeDecl:
		freeVars(e.Scope, out)
	case *Ascription:
		freeVars(e.X, out)
	case *Assertion:
		freeVars(e.X, out)
	case *Copy:
		freeVars(e.X, out)
	case *Let:
		freeVars(e.Init, out)
		sub := freeVarsMinus(e.Scope, e.Name)
		mergeInto(out, sub)
	case *LetT:
		freeVars(e.Init, out)
		mergeInto(out, freeVarsMinus(e.Scope, e.Name))
	case *LetMut:
		freeVars(e.Init, out)
		mergeInto(out, freeVarsMinus(e.Scope, e.Name))
	case *Assign:
		freeVars(e.Target, out)
		freeVars(e.Value, out)
	case *While:
		freeVars(e.Cond, out)
		freeVars(e.Body, out)
	case *For:
		freeVars(e.Init, out)
		inner := map[string]bool{}
		freeVars(e.Cond, inner)
		freeVars(e.Step, inner)
		freeVars(e.Body, inner)
		delete(inner, e.Ident)
		mergeInto(out, inner)
	case *Lambda:
		inner := map[string]bool{}
		freeVars(e.Body, inner)
		for _, a := range e.Args {
			delete(inner, a.Name)
		}
		mergeInto(out, inner)
	case *Application:
		freeVars(e.Fn, out)
		for _, a := range e.Args {
			freeVars(a, out)
		}
	case *StructCons:
		for _, f := range e.Fields {
			freeVars(f.Init, out)
		}
	case *FieldSelect:
		freeVars(e.X, out)
	case *UnionCons:
		freeVars(e.X, out)
	case *Match:
		freeVars(e.X, out)
		for _, c := range e.Cases {
			mergeInto(out, freeVarsMinus(c.Body, c.Var))
		}
	case *ArrayCons:
		freeVars(e.Len, out)
		freeVars(e.Init, out)
	case *ArrayElem:
		freeVars(e.Arr, out)
		freeVars(e.Index, out)
	case *ArrayLength:
		freeVars(e.Arr, out)
	}
}

func freeVarsMinus(n *Node, bound string) map[string]bool {
	s := map[string]bool{}
	freeVars(n, s)
	delete(s, bound)
	return s
}

func mergeInto(out, from map[string]bool) {
	for k := range from {
		out[k] = true
	}
}

// CapturedVars returns the union, over every Lambda anywhere in n, of
// that lambda's free variables -- a lambda is itself a value, so
// whatever it closes over must be captured wherever it's constructed
// (spec §4.1).
func CapturedVars(n *Node) map[string]bool {
	out := map[string]bool{}
	capturedVars(n, out)
	return out
}

func capturedVars(n *Node, out map[string]bool) {
	if n == nil {
		return
	}
	if lam, ok := n.X.(*Lambda); ok {
		inner := map[string]bool{}
		freeVars(lam.Body, inner)
		for _, a := range lam.Args {
			delete(inner, a.Name)
		}
		mergeInto(out, inner)
		capturedVars(lam.Body, out)
		return
	}
	switch e := n.X.(type) {
	case *Binary:
		capturedVars(e.Left, out)
		capturedVars(e.Right, out)
	case *CompoundAssign:
		capturedVars(e.Target, out)
		capturedVars(e.Value, out)
	case *BNot:
		capturedVars(e.X, out)
	case *Not:
		capturedVars(e.X, out)
	case *Neg:
		capturedVars(e.X, out)
	case *Sqrt:
		capturedVars(e.X, out)
	case *Print:
		capturedVars(e.X, out)
	case *PrintLn:
		capturedVars(e.X, out)
	case *Syscall:
		for _, a := range e.Args {
			capturedVars(a, out)
		}
	case *If:
		capturedVars(e.Cond, out)
		capturedVars(e.Then, out)
		capturedVars(e.Else, out)
	case *Seq:
		for _, it := range e.Items {
			capturedVars(it, out)
		}
	case *TypeDecl:
		capturedVars(e.Scope, out)
	case *Ascription:
		capturedVars(e.X, out)
	case *Assertion:
		capturedVars(e.X, out)
	case *Copy:
		capturedVars(e.X, out)
	case *Let:
		capturedVars(e.Init, out)
		capturedVars(e.Scope, out)
	case *LetT:
		capturedVars(e.Init, out)
		capturedVars(e.Scope, out)
	case *LetMut:
		capturedVars(e.Init, out)
		capturedVars(e.Scope, out)
	case *Assign:
		capturedVars(e.Target, out)
		capturedVars(e.Value, out)
	case *While:
		capturedVars(e.Cond, out)
		capturedVars(e.Body, out)
	case *For:
		capturedVars(e.Init, out)
		capturedVars(e.Cond, out)
		capturedVars(e.Step, out)
		capturedVars(e.Body, out)
	case *Application:
		capturedVars(e.Fn, out)
		for _, a := range e.Args {
			capturedVars(a, out)
		}
	case *StructCons:
		for _, f := range e.Fields {
			capturedVars(f.Init, out)
		}
	case *FieldSelect:
		capturedVars(e.X, out)
	case *UnionCons:
		capturedVars(e.X, out)
	case *Match:
		capturedVars(e.X, out)
		for _, c := range e.Cases {
			capturedVars(c.Body, out)
		}
	case *ArrayCons:
		capturedVars(e.Len, out)
		capturedVars(e.Init, out)
	case *ArrayElem:
		capturedVars(e.Arr, out)
		capturedVars(e.Index, out)
	case *ArrayLength:
		capturedVars(e.Arr, out)
	}
}
