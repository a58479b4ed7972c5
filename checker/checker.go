// Package checker implements the bidirectional subtyping type checker
// described across spec §4.3, grounded throughout on the teacher's
// compiler.Compiler.compileNode dispatch (one case per AST node kind,
// each returning the node's inferred type and recursing into children
// with an extended Environment).
package checker

import (
	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/diag"
	"github.com/hygge-lang/hygge/syscalls"
)

// Check type-checks n under env and returns a new tree with every node's
// Env/Typ fields populated, plus the diagnostics accumulated across
// sibling subtrees (spec §4.3: "Errors accumulate across sibling
// subtrees" rather than stopping at the first one).
func Check(n *ast.Node, env *ast.Env) (*ast.Node, diag.List) {
	if n == nil {
		return nil, nil
	}
	typ, x, errs := checkExpr(n, env)
	return &ast.Node{Pos: n.Pos, X: x, Env: env, Typ: typ}, errs
}

func sub(env *ast.Env, a, b ast.Type) (bool, error) {
	return IsSubtype(a, b, env.AliasTable(), nil)
}

func checkExpr(n *ast.Node, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	switch e := n.X.(type) {
	case *ast.UnitLit:
		return ast.TUnit{}, e, nil
	case *ast.BoolLit:
		return ast.TBool{}, e, nil
	case *ast.IntLit:
		return ast.TInt{}, e, nil
	case *ast.FloatLit:
		return ast.TFloat{}, e, nil
	case *ast.StringLit:
		return ast.TString{}, e, nil

	case *ast.Var:
		t, ok := env.LookupVar(e.Name)
		if !ok {
			return nil, e, diag.List{diag.New("check/var/undefined", n.Pos, e.Name)}
		}
		return t, e, nil

	case *ast.Binary:
		return checkBinary(n, e, env)

	case *ast.CompoundAssign:
		return checkCompoundAssign(n, e, env)

	case *ast.BNot:
		x, errs := Check(e.X, env)
		if isInt(x.Typ) {
			return ast.TInt{}, &ast.BNot{X: x}, errs
		}
		return ast.TInt{}, &ast.BNot{X: x}, append(errs, diag.New("check/bitwise/notint", n.Pos, "BNot"))

	case *ast.Not:
		x, errs := Check(e.X, env)
		if isBool(x.Typ) {
			return ast.TBool{}, &ast.Not{X: x}, errs
		}
		return ast.TBool{}, &ast.Not{X: x}, append(errs, diag.New("check/logical/notbool", n.Pos, "Not"))

	case *ast.Neg:
		x, errs := Check(e.X, env)
		if isInt(x.Typ) {
			return ast.TInt{}, &ast.Neg{X: x}, errs
		}
		return ast.TInt{}, &ast.Neg{X: x}, append(errs, diag.New("check/neg/notint", n.Pos))

	case *ast.Sqrt:
		x, errs := Check(e.X, env)
		if isFloat(x.Typ) {
			return ast.TFloat{}, &ast.Sqrt{X: x}, errs
		}
		return ast.TFloat{}, &ast.Sqrt{X: x}, append(errs, diag.New("check/sqrt/notfloat", n.Pos))

	case *ast.ReadInt:
		return ast.TInt{}, e, nil
	case *ast.ReadFloat:
		return ast.TFloat{}, e, nil

	case *ast.Print:
		x, errs := Check(e.X, env)
		if !isPrintable(x.Typ) {
			errs = append(errs, diag.New("check/print/badtype", n.Pos, typeStr(x.Typ)))
		}
		return ast.TUnit{}, &ast.Print{X: x}, errs
	case *ast.PrintLn:
		x, errs := Check(e.X, env)
		if !isPrintable(x.Typ) {
			errs = append(errs, diag.New("check/print/badtype", n.Pos, typeStr(x.Typ)))
		}
		return ast.TUnit{}, &ast.PrintLn{X: x}, errs

	case *ast.Syscall:
		return checkSyscall(n, e, env)

	case *ast.Preinc:
		return checkIncDec(n, e.Target, e.Delta, env, func(delta int) ast.Expr { return &ast.Preinc{Target: e.Target, Delta: delta} })
	case *ast.Postinc:
		return checkIncDec(n, e.Target, e.Delta, env, func(delta int) ast.Expr { return &ast.Postinc{Target: e.Target, Delta: delta} })

	case *ast.If:
		return checkIf(n, e, env)

	case *ast.Seq:
		return checkSeq(n, e, env)

	case *ast.TypeDecl:
		return checkTypeDecl(n, e, env)

	case *ast.Ascription:
		return checkAscription(n, e, env)

	case *ast.Assertion:
		x, errs := Check(e.X, env)
		if !isBool(x.Typ) {
			errs = append(errs, diag.New("check/assert/notbool", n.Pos))
		}
		return ast.TUnit{}, &ast.Assertion{X: x}, errs

	case *ast.Copy:
		x, errs := Check(e.X, env)
		return x.Typ, &ast.Copy{X: x}, errs

	case *ast.Let:
		return checkLet(n, e, env)
	case *ast.LetT:
		return checkLetT(n, e, env)
	case *ast.LetMut:
		return checkLetMut(n, e, env)

	case *ast.Assign:
		return checkAssign(n, e, env)

	case *ast.While:
		return checkWhile(n, e, env)
	case *ast.For:
		return checkFor(n, e, env)

	case *ast.Lambda:
		return checkLambda(n, e, env)
	case *ast.Application:
		return checkApplication(n, e, env)

	case *ast.StructCons:
		return checkStructCons(n, e, env)
	case *ast.FieldSelect:
		return checkFieldSelect(n, e, env)

	case *ast.UnionCons:
		x, errs := Check(e.X, env)
		return ast.TUnion{Cases: []ast.UnionCase{{Label: e.Label, Type: x.Typ}}}, &ast.UnionCons{Label: e.Label, X: x}, errs

	case *ast.Match:
		return checkMatch(n, e, env)

	case *ast.ArrayCons:
		return checkArrayCons(n, e, env)
	case *ast.ArrayElem:
		return checkArrayElem(n, e, env)
	case *ast.ArrayLength:
		x, errs := Check(e.Arr, env)
		if _, ok := x.Typ.(ast.TArray); !ok {
			return ast.TInt{}, &ast.ArrayLength{Arr: x}, append(errs, diag.New("check/array/not-array", n.Pos, typeStr(x.Typ)))
		}
		return ast.TInt{}, &ast.ArrayLength{Arr: x}, errs

	case *ast.Pointer:
		return nil, e, diag.List{diag.New("check/pointer/in-source", n.Pos)}
	}
	return nil, n.X, nil
}

func typeStr(t ast.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

func isInt(t ast.Type) bool    { _, ok := t.(ast.TInt); return ok }
func isFloat(t ast.Type) bool  { _, ok := t.(ast.TFloat); return ok }
func isBool(t ast.Type) bool   { _, ok := t.(ast.TBool); return ok }
func isString(t ast.Type) bool { _, ok := t.(ast.TString); return ok }

func isPrintable(t ast.Type) bool {
	return isInt(t) || isFloat(t) || isBool(t) || isString(t)
}

var arithmeticOps = map[ast.BinOp]bool{ast.OpAdd: true, ast.OpSub: true, ast.OpMul: true, ast.OpDiv: true}
var bitwiseOps = map[ast.BinOp]bool{ast.OpBAnd: true, ast.OpBOr: true, ast.OpBXor: true, ast.OpBSL: true, ast.OpBSR: true}
var logicalOps = map[ast.BinOp]bool{ast.OpAnd: true, ast.OpOr: true, ast.OpXor: true, ast.OpScAnd: true, ast.OpScOr: true}
var relOps = map[ast.BinOp]bool{ast.OpLess: true, ast.OpLessEq: true, ast.OpGreater: true, ast.OpGreaterEq: true}

func checkBinary(n *ast.Node, e *ast.Binary, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	left, errs := Check(e.Left, env)
	right, errs2 := Check(e.Right, env)
	errs = append(errs, errs2...)
	out := &ast.Binary{Op: e.Op, Left: left, Right: right}

	switch {
	case e.Op == ast.OpRem:
		if !isInt(left.Typ) || !isInt(right.Typ) {
			errs = append(errs, diag.New("check/rem/notint", n.Pos))
		}
		return ast.TInt{}, out, errs
	case arithmeticOps[e.Op]:
		if isInt(left.Typ) && isInt(right.Typ) {
			return ast.TInt{}, out, errs
		}
		if isFloat(left.Typ) && isFloat(right.Typ) {
			return ast.TFloat{}, out, errs
		}
		return ast.TInt{}, out, append(errs, diag.New("check/binop/mismatch", n.Pos, e.Op, typeStr(left.Typ), typeStr(right.Typ)))
	case bitwiseOps[e.Op]:
		if !isInt(left.Typ) || !isInt(right.Typ) {
			errs = append(errs, diag.New("check/bitwise/notint", n.Pos, e.Op))
		}
		return ast.TInt{}, out, errs
	case logicalOps[e.Op]:
		if !isBool(left.Typ) || !isBool(right.Typ) {
			errs = append(errs, diag.New("check/logical/notbool", n.Pos, e.Op))
		}
		return ast.TBool{}, out, errs
	case relOps[e.Op]:
		if isInt(left.Typ) && isInt(right.Typ) {
			return ast.TBool{}, out, errs
		}
		if isFloat(left.Typ) && isFloat(right.Typ) {
			return ast.TBool{}, out, errs
		}
		return ast.TBool{}, out, append(errs, diag.New("check/binop/mismatch", n.Pos, e.Op, typeStr(left.Typ), typeStr(right.Typ)))
	case e.Op == ast.OpEq:
		if left.Typ != nil && right.Typ != nil && left.Typ.Equals(right.Typ) {
			return ast.TBool{}, out, errs
		}
		return ast.TBool{}, out, append(errs, diag.New("check/binop/mismatch", n.Pos, e.Op, typeStr(left.Typ), typeStr(right.Typ)))
	}
	return nil, out, errs
}

func checkCompoundAssign(n *ast.Node, e *ast.CompoundAssign, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	target, errs := Check(e.Target, env)
	value, errs2 := Check(e.Value, env)
	errs = append(errs, errs2...)
	out := &ast.CompoundAssign{Op: e.Op, Target: target, Value: value}
	if v, ok := e.Target.X.(*ast.Var); ok {
		if !env.IsMutable(v.Name) {
			errs = append(errs, diag.New("check/assign/immutable", n.Pos, v.Name))
		}
	} else {
		errs = append(errs, diag.New("check/assign/target", n.Pos))
	}
	if arithmeticOps[e.Op] || e.Op == ast.OpRem || bitwiseOps[e.Op] {
		if !(isInt(target.Typ) && isInt(value.Typ)) && !(isFloat(target.Typ) && isFloat(value.Typ)) {
			errs = append(errs, diag.New("check/binop/mismatch", n.Pos, e.Op, typeStr(target.Typ), typeStr(value.Typ)))
		}
	}
	return target.Typ, out, errs
}

func checkIncDec(n *ast.Node, name string, delta int, env *ast.Env, build func(int) ast.Expr) (ast.Type, ast.Expr, diag.List) {
	t, ok := env.LookupVar(name)
	if !ok {
		return nil, build(delta), diag.List{diag.New("check/var/undefined", n.Pos, name)}
	}
	var errs diag.List
	if !env.IsMutable(name) {
		errs = append(errs, diag.New("check/assign/immutable", n.Pos, name))
	}
	if !isInt(t) && !isFloat(t) {
		errs = append(errs, diag.New("check/binop/mismatch", n.Pos, "Preinc/Postinc", typeStr(t), typeStr(t)))
	}
	return t, build(delta), errs
}

func checkIf(n *ast.Node, e *ast.If, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	cond, errs := Check(e.Cond, env)
	then, errs2 := Check(e.Then, env)
	els, errs3 := Check(e.Else, env)
	errs = append(errs, errs2...)
	errs = append(errs, errs3...)
	if !isBool(cond.Typ) {
		errs = append(errs, diag.New("check/logical/notbool", n.Pos, "If"))
	}
	out := &ast.If{Cond: cond, Then: then, Else: els}
	if then.Typ != nil && els.Typ != nil {
		join, ok := joinBranches(env, then.Typ, els.Typ)
		if !ok {
			errs = append(errs, diag.New("check/if/branch-mismatch", n.Pos, typeStr(then.Typ), typeStr(els.Typ)))
			return then.Typ, out, errs
		}
		return join, out, errs
	}
	return then.Typ, out, errs
}

// joinBranches implements spec §4.3's If-join: the branches agree via
// either-direction subtyping, and the join is the lesser-specific of
// the two (the one the other is a subtype of).
func joinBranches(env *ast.Env, a, b ast.Type) (ast.Type, bool) {
	if a.Equals(b) {
		return a, true
	}
	if ok, _ := sub(env, a, b); ok {
		return b, true
	}
	if ok, _ := sub(env, b, a); ok {
		return a, true
	}
	return nil, false
}

func checkSeq(n *ast.Node, e *ast.Seq, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	items := make([]*ast.Node, len(e.Items))
	var errs diag.List
	var last ast.Type = ast.TUnit{}
	for i, it := range e.Items {
		checked, e2 := Check(it, env)
		items[i] = checked
		errs = append(errs, e2...)
		last = checked.Typ
	}
	return last, &ast.Seq{Items: items}, errs
}

func checkTypeDecl(n *ast.Node, e *ast.TypeDecl, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	var errs diag.List
	if _, isPrim := primitives[e.Name]; isPrim {
		errs = append(errs, diag.New("check/type/primitive-redefine", n.Pos, e.Name))
	} else if _, exists := env.LookupAlias(e.Name); exists {
		errs = append(errs, diag.New("check/type/redefined", n.Pos, e.Name))
	}

	resolveEnv := env.WithAlias(e.Name, ast.TVar{Name: e.Name})
	resolved, rerrs := ResolvePretype(e.Pretype, resolveEnv)
	errs = append(errs, rerrs...)
	if v, ok := resolved.(ast.TVar); ok && v.Name == e.Name {
		errs = append(errs, diag.New("check/type/self-recursive", n.Pos, e.Name))
	}
	if resolved == nil {
		resolved = ast.TVar{Name: e.Name}
	}

	scopeEnv := env.WithAlias(e.Name, resolved)
	scope, serrs := Check(e.Scope, scopeEnv)
	errs = append(errs, serrs...)

	if scope.Typ != nil && ast.FreeTypeVars(scope.Typ)[e.Name] {
		errs = append(errs, diag.New("check/type/escape", n.Pos, e.Name))
	}

	return scope.Typ, &ast.TypeDecl{Name: e.Name, Pretype: e.Pretype, Scope: scope}, errs
}

func checkAscription(n *ast.Node, e *ast.Ascription, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	resolved, errs := ResolvePretype(e.Pretype, env)
	x, xerrs := Check(e.X, env)
	errs = append(errs, xerrs...)
	out := &ast.Ascription{X: x, Pretype: e.Pretype}
	if resolved == nil || x.Typ == nil {
		return resolved, out, errs
	}
	ok, err := sub(env, x.Typ, resolved)
	if err != nil {
		errs = append(errs, diag.New("check/type/undefined", n.Pos, err.Error()))
	} else if !ok {
		errs = append(errs, diag.New("check/sub/fail", n.Pos, typeStr(x.Typ), typeStr(resolved)))
	}
	return resolved, out, errs
}

func checkLet(n *ast.Node, e *ast.Let, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	init, errs := Check(e.Init, env)
	scopeEnv := env.WithVar(e.Name, init.Typ, false)
	scope, serrs := Check(e.Scope, scopeEnv)
	errs = append(errs, serrs...)
	return scope.Typ, &ast.Let{Name: e.Name, Init: init, Scope: scope}, errs
}

func checkLetT(n *ast.Node, e *ast.LetT, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	resolved, errs := ResolvePretype(e.Pretype, env)
	init, ierrs := Check(e.Init, env)
	errs = append(errs, ierrs...)
	if resolved != nil && init.Typ != nil {
		ok, err := sub(env, init.Typ, resolved)
		if err != nil {
			errs = append(errs, diag.New("check/type/undefined", n.Pos, err.Error()))
		} else if !ok {
			errs = append(errs, diag.New("check/sub/fail", n.Pos, typeStr(init.Typ), typeStr(resolved)))
		}
	}
	scopeEnv := env.WithVar(e.Name, resolved, false)
	scope, serrs := Check(e.Scope, scopeEnv)
	errs = append(errs, serrs...)
	return scope.Typ, &ast.LetT{Name: e.Name, Pretype: e.Pretype, Init: init, Scope: scope}, errs
}

func checkLetMut(n *ast.Node, e *ast.LetMut, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	init, errs := Check(e.Init, env)
	scopeEnv := env.WithVar(e.Name, init.Typ, true)
	scope, serrs := Check(e.Scope, scopeEnv)
	errs = append(errs, serrs...)
	return scope.Typ, &ast.LetMut{Name: e.Name, Init: init, Scope: scope}, errs
}

func checkAssign(n *ast.Node, e *ast.Assign, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	value, errs := Check(e.Value, env)
	switch t := e.Target.X.(type) {
	case *ast.Var:
		target, terrs := Check(e.Target, env)
		errs = append(errs, terrs...)
		if !env.IsMutable(t.Name) {
			errs = append(errs, diag.New("check/assign/immutable", n.Pos, t.Name))
		}
		if target.Typ != nil && value.Typ != nil {
			if ok, err := sub(env, value.Typ, target.Typ); err == nil && !ok {
				errs = append(errs, diag.New("check/sub/fail", n.Pos, typeStr(value.Typ), typeStr(target.Typ)))
			}
		}
		return ast.TUnit{}, &ast.Assign{Target: target, Value: value}, errs
	case *ast.FieldSelect:
		target, terrs := Check(e.Target, env)
		errs = append(errs, terrs...)
		x, xerrs := Check(t.X, env)
		errs = append(errs, xerrs...)
		if rec, ok := x.Typ.(ast.TRecord); ok {
			idx := rec.FieldIndex(t.Field)
			if idx < 0 {
				errs = append(errs, diag.New("check/struct/field-missing", n.Pos, t.Field))
			} else if !rec.Fields[idx].Mutable {
				errs = append(errs, diag.New("check/assign/immutable-field", n.Pos, t.Field))
			} else if value.Typ != nil {
				if ok2, err := sub(env, value.Typ, rec.Fields[idx].Type); err == nil && !ok2 {
					errs = append(errs, diag.New("check/sub/fail", n.Pos, typeStr(value.Typ), typeStr(rec.Fields[idx].Type)))
				}
			}
		}
		return ast.TUnit{}, &ast.Assign{Target: target, Value: value}, errs
	case *ast.ArrayElem:
		target, terrs := Check(e.Target, env)
		errs = append(errs, terrs...)
		if target.Typ != nil && value.Typ != nil {
			if ok, err := sub(env, value.Typ, target.Typ); err == nil && !ok {
				errs = append(errs, diag.New("check/sub/fail", n.Pos, typeStr(value.Typ), typeStr(target.Typ)))
			}
		}
		return ast.TUnit{}, &ast.Assign{Target: target, Value: value}, errs
	default:
		target, terrs := Check(e.Target, env)
		errs = append(errs, terrs...)
		errs = append(errs, diag.New("check/assign/target", n.Pos))
		return ast.TUnit{}, &ast.Assign{Target: target, Value: value}, errs
	}
}

func checkWhile(n *ast.Node, e *ast.While, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	cond, errs := Check(e.Cond, env)
	body, berrs := Check(e.Body, env)
	errs = append(errs, berrs...)
	if !isBool(cond.Typ) {
		errs = append(errs, diag.New("check/logical/notbool", n.Pos, "While"))
	}
	return ast.TUnit{}, &ast.While{Cond: cond, Body: body}, errs
}

func checkFor(n *ast.Node, e *ast.For, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	init, errs := Check(e.Init, env)
	loopEnv := env.WithVar(e.Ident, ast.TInt{}, true)
	cond, cerrs := Check(e.Cond, loopEnv)
	errs = append(errs, cerrs...)
	var step *ast.Node
	if e.Step != nil {
		var serrs diag.List
		step, serrs = Check(e.Step, loopEnv)
		errs = append(errs, serrs...)
	}
	body, berrs := Check(e.Body, loopEnv)
	errs = append(errs, berrs...)
	if !isInt(init.Typ) {
		errs = append(errs, diag.New("check/array/index-notint", n.Pos))
	}
	if !isBool(cond.Typ) {
		errs = append(errs, diag.New("check/logical/notbool", n.Pos, "For"))
	}
	return ast.TUnit{}, &ast.For{Ident: e.Ident, Init: init, Cond: cond, Step: step, Body: body}, errs
}

func checkLambda(n *ast.Node, e *ast.Lambda, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	var errs diag.List
	seen := map[string]bool{}
	argTypes := make([]ast.Type, len(e.Args))
	bodyEnv := env
	for i, a := range e.Args {
		if seen[a.Name] {
			errs = append(errs, diag.New("check/arg/duplicate", n.Pos, a.Name))
		}
		seen[a.Name] = true
		t, rerrs := ResolvePretype(a.Pretype, env)
		errs = append(errs, rerrs...)
		argTypes[i] = t
		bodyEnv = bodyEnv.WithVar(a.Name, t, false)
	}
	body, berrs := Check(e.Body, bodyEnv)
	errs = append(errs, berrs...)
	return ast.TFun{Args: argTypes, Ret: body.Typ}, &ast.Lambda{Args: e.Args, Body: body}, errs
}

func checkApplication(n *ast.Node, e *ast.Application, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	fn, errs := Check(e.Fn, env)
	args := make([]*ast.Node, len(e.Args))
	for i, a := range e.Args {
		checked, aerrs := Check(a, env)
		args[i] = checked
		errs = append(errs, aerrs...)
	}
	out := &ast.Application{Fn: fn, Args: args}
	ft, ok := fn.Typ.(ast.TFun)
	if !ok {
		return nil, out, append(errs, diag.New("check/apply/notfun", n.Pos, typeStr(fn.Typ)))
	}
	if len(ft.Args) != len(args) {
		errs = append(errs, diag.New("check/lambda/arity", n.Pos, len(ft.Args), len(args)))
		return ft.Ret, out, errs
	}
	for i, a := range args {
		if a.Typ == nil || ft.Args[i] == nil {
			continue
		}
		if ok, err := sub(env, a.Typ, ft.Args[i]); err == nil && !ok {
			errs = append(errs, diag.New("check/sub/fail", n.Pos, typeStr(a.Typ), typeStr(ft.Args[i])))
		}
	}
	return ft.Ret, out, errs
}

func checkStructCons(n *ast.Node, e *ast.StructCons, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	var errs diag.List
	seen := map[string]bool{}
	fields := make([]ast.StructField, len(e.Fields))
	typFields := make([]ast.RecordField, len(e.Fields))
	for i, f := range e.Fields {
		if seen[f.Name] {
			errs = append(errs, diag.New("check/field/duplicate", n.Pos, f.Name))
		}
		seen[f.Name] = true
		checked, ferrs := Check(f.Init, env)
		errs = append(errs, ferrs...)
		fields[i] = ast.StructField{Name: f.Name, Init: checked}
		typFields[i] = ast.RecordField{Mutable: true, Name: f.Name, Type: checked.Typ}
	}
	return ast.TRecord{Fields: typFields}, &ast.StructCons{Fields: fields}, errs
}

func checkFieldSelect(n *ast.Node, e *ast.FieldSelect, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	x, errs := Check(e.X, env)
	out := &ast.FieldSelect{X: x, Field: e.Field}
	rec, ok := x.Typ.(ast.TRecord)
	if !ok {
		return nil, out, append(errs, diag.New("check/sub/fail", n.Pos, typeStr(x.Typ), "struct"))
	}
	idx := rec.FieldIndex(e.Field)
	if idx < 0 {
		return nil, out, append(errs, diag.New("check/struct/field-missing", n.Pos, e.Field))
	}
	return rec.Fields[idx].Type, out, errs
}

func checkMatch(n *ast.Node, e *ast.Match, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	x, errs := Check(e.X, env)
	union, ok := x.Typ.(ast.TUnion)
	if !ok {
		out := &ast.Match{X: x, Cases: e.Cases}
		return nil, out, append(errs, diag.New("check/match/not-union", n.Pos, typeStr(x.Typ)))
	}
	seen := map[string]bool{}
	cases := make([]ast.MatchCase, len(e.Cases))
	var resultType ast.Type
	for i, c := range e.Cases {
		if seen[c.Label] {
			errs = append(errs, diag.New("check/match/case-duplicate", n.Pos, c.Label))
		}
		seen[c.Label] = true
		idx := union.CaseIndex(c.Label)
		if idx < 0 {
			errs = append(errs, diag.New("check/match/label-missing", n.Pos, c.Label, typeStr(union)))
			cases[i] = c
			continue
		}
		caseEnv := env.WithVar(c.Var, union.Cases[idx].Type, false)
		body, berrs := Check(c.Body, caseEnv)
		errs = append(errs, berrs...)
		cases[i] = ast.MatchCase{Label: c.Label, Var: c.Var, Body: body}
		if resultType == nil {
			resultType = body.Typ
		} else if body.Typ != nil && !body.Typ.Equals(resultType) {
			if ok, _ := sub(env, body.Typ, resultType); !ok {
				errs = append(errs, diag.New("check/match/branch-mismatch", n.Pos, c.Label, typeStr(body.Typ), typeStr(resultType)))
			}
		}
	}
	return resultType, &ast.Match{X: x, Cases: cases}, errs
}

func checkArrayCons(n *ast.Node, e *ast.ArrayCons, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	length, errs := Check(e.Len, env)
	init, ierrs := Check(e.Init, env)
	errs = append(errs, ierrs...)
	if !isInt(length.Typ) {
		errs = append(errs, diag.New("check/array/cons-length", n.Pos))
	}
	return ast.TArray{Elem: init.Typ}, &ast.ArrayCons{Len: length, Init: init}, errs
}

func checkArrayElem(n *ast.Node, e *ast.ArrayElem, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	arr, errs := Check(e.Arr, env)
	index, ierrs := Check(e.Index, env)
	errs = append(errs, ierrs...)
	out := &ast.ArrayElem{Arr: arr, Index: index}
	if !isInt(index.Typ) {
		errs = append(errs, diag.New("check/array/index-notint", n.Pos))
	}
	at, ok := arr.Typ.(ast.TArray)
	if !ok {
		return nil, out, append(errs, diag.New("check/array/not-array", n.Pos, typeStr(arr.Typ)))
	}
	return at.Elem, out, errs
}

func checkSyscall(n *ast.Node, e *ast.Syscall, env *ast.Env) (ast.Type, ast.Expr, diag.List) {
	args := make([]*ast.Node, len(e.Args))
	var errs diag.List
	for i, a := range e.Args {
		checked, aerrs := Check(a, env)
		args[i] = checked
		errs = append(errs, aerrs...)
	}
	out := &ast.Syscall{Number: e.Number, Args: args}
	sig, ok := syscalls.Lookup(e.Number)
	if !ok {
		return nil, out, append(errs, diag.New("check/syscall/unknown", n.Pos, e.Number))
	}
	if len(sig.Args) != len(args) {
		return sig.Ret, out, append(errs, diag.New("check/syscall/argcount", n.Pos, syscalls.Name(e.Number), len(sig.Args), len(args)))
	}
	for i, a := range args {
		if a.Typ == nil || sig.Args[i] == nil {
			continue
		}
		if !a.Typ.Equals(sig.Args[i]) {
			errs = append(errs, diag.New("check/syscall/argtype", n.Pos, syscalls.Name(e.Number), i, typeStr(sig.Args[i]), typeStr(a.Typ)))
		}
	}
	if sig.Ret == nil {
		return ast.TUnit{}, out, errs
	}
	return sig.Ret, out, errs
}
