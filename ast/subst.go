package ast

// Subst performs capture-avoiding substitution: it returns a new tree
// with every free occurrence of x replaced by v, respecting shadowing
// introduced by Let*, Lambda, Match binders, and For's iteration
// variable (spec §4.1). v is assumed already reduced to a value by the
// evaluator's call sites, so no renaming of v's own free variables is
// needed -- this mirrors the teacher's evaluator, which only ever
// substitutes values (never arbitrary open terms) into a scope.
func Subst(n *Node, x string, v *Node) *Node {
	if n == nil {
		return nil
	}
	switch e := n.X.(type) {
	case *Var:
		if e.Name == x {
			return v
		}
		return n
	case *Binary:
		return withX(n, &Binary{Op: e.Op, Left: Subst(e.Left, x, v), Right: Subst(e.Right, x, v)})
	case *CompoundAssign:
		return withX(n, &CompoundAssign{Op: e.Op, Target: Subst(e.Target, x, v), Value: Subst(e.Value, x, v)})
	case *BNot:
		return withX(n, &BNot{X: Subst(e.X, x, v)})
	case *Not:
		return withX(n, &Not{X: Subst(e.X, x, v)})
	case *Neg:
		return withX(n, &Neg{X: Subst(e.X, x, v)})
	case *Sqrt:
		return withX(n, &Sqrt{X: Subst(e.X, x, v)})
	case *Print:
		return withX(n, &Print{X: Subst(e.X, x, v)})
	case *PrintLn:
		return withX(n, &PrintLn{X: Subst(e.X, x, v)})
	case *Syscall:
		args := make([]*Node, len(e.Args))
		for i, a := range e.Args {
			args[i] = Subst(a, x, v)
		}
		return withX(n, &Syscall{Number: e.Number, Args: args})
	case *Preinc:
		if e.Target == x {
			return n // substitution never targets an assignable; stuck if this ever fires on reduction
		}
		return n
	case *Postinc:
		if e.Target == x {
			return n
		}
		return n
	case *If:
		return withX(n, &If{Cond: Subst(e.Cond, x, v), Then: Subst(e.Then, x, v), Else: Subst(e.Else, x, v)})
	case *Seq:
		items := make([]*Node, len(e.Items))
		for i, it := range e.Items {
			items[i] = Subst(it, x, v)
		}
		return withX(n, &Seq{Items: items})
	case *TypeDecl:
		// The alias name lives in a different namespace; the scope is
		// always substituted.
		return withX(n, &TypeDecl{Name: e.Name, Pretype: e.Pretype, Scope: Subst(e.Scope, x, v)})
	case *Ascription:
		return withX(n, &Ascription{X: Subst(e.X, x, v), Pretype: e.Pretype})
	case *Assertion:
		return withX(n, &Assertion{X: Subst(e.X, x, v)})
	case *Copy:
		return withX(n, &Copy{X: Subst(e.X, x, v)})
	case *Let:
		init := Subst(e.Init, x, v)
		scope := e.Scope
		if e.Name != x {
			scope = Subst(e.Scope, x, v)
		}
		return withX(n, &Let{Name: e.Name, Init: init, Scope: scope})
	case *LetT:
		init := Subst(e.Init, x, v)
		scope := e.Scope
		if e.Name != x {
			scope = Subst(e.Scope, x, v)
		}
		return withX(n, &LetT{Name: e.Name, Pretype: e.Pretype, Init: init, Scope: scope})
	case *LetMut:
		init := Subst(e.Init, x, v)
		scope := e.Scope
		if e.Name != x {
			scope = Subst(e.Scope, x, v)
		}
		return withX(n, &LetMut{Name: e.Name, Init: init, Scope: scope})
	case *Assign:
		return withX(n, &Assign{Target: Subst(e.Target, x, v), Value: Subst(e.Value, x, v)})
	case *While:
		return withX(n, &While{Cond: Subst(e.Cond, x, v), Body: Subst(e.Body, x, v)})
	case *For:
		init := Subst(e.Init, x, v)
		if e.Ident == x {
			return withX(n, &For{Ident: e.Ident, Init: init, Cond: e.Cond, Step: e.Step, Body: e.Body})
		}
		return withX(n, &For{Ident: e.Ident, Init: init, Cond: Subst(e.Cond, x, v), Step: Subst(e.Step, x, v), Body: Subst(e.Body, x, v)})
	case *Lambda:
		for _, a := range e.Args {
			if a.Name == x {
				return n // shadowed
			}
		}
		return withX(n, &Lambda{Args: e.Args, Body: Subst(e.Body, x, v)})
	case *Application:
		args := make([]*Node, len(e.Args))
		for i, a := range e.Args {
			args[i] = Subst(a, x, v)
		}
		return withX(n, &Application{Fn: Subst(e.Fn, x, v), Args: args})
	case *StructCons:
		fields := make([]StructField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = StructField{Name: f.Name, Init: Subst(f.Init, x, v)}
		}
		return withX(n, &StructCons{Fields: fields})
	case *FieldSelect:
		return withX(n, &FieldSelect{X: Subst(e.X, x, v), Field: e.Field})
	case *UnionCons:
		return withX(n, &UnionCons{Label: e.Label, X: Subst(e.X, x, v)})
	case *Match:
		cases := make([]MatchCase, len(e.Cases))
		for i, c := range e.Cases {
			if c.Var == x {
				cases[i] = c // shadowed in this branch only
			} else {
				cases[i] = MatchCase{Label: c.Label, Var: c.Var, Body: Subst(c.Body, x, v)}
			}
		}
		return withX(n, &Match{X: Subst(e.X, x, v), Cases: cases})
	case *ArrayCons:
		return withX(n, &ArrayCons{Len: Subst(e.Len, x, v), Init: Subst(e.Init, x, v)})
	case *ArrayElem:
		return withX(n, &ArrayElem{Arr: Subst(e.Arr, x, v), Index: Subst(e.Index, x, v)})
	case *ArrayLength:
		return withX(n, &ArrayLength{Arr: Subst(e.Arr, x, v)})
	default:
		// Literals, ReadInt/ReadFloat, Pointer: no subterms, nothing to do.
		return n
	}
}

// withX returns a shallow copy of n with its expression replaced, kept
// as one helper so that every case above preserves the position/typing
// slots of the original node.
func withX(n *Node, x Expr) *Node {
	return &Node{Pos: n.Pos, X: x, Env: n.Env, Typ: n.Typ}
}
