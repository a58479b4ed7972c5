package evaluator

import (
	"testing"

	"github.com/hygge-lang/hygge/ast"
)

func n(x ast.Expr) *ast.Node { return &ast.Node{X: x} }

func TestEvalLiterals(t *testing.T) {
	env := NewEnv(nil, nil)
	v, err := Eval(env, n(&ast.IntLit{Value: 5}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 5 {
		t.Fatalf("got %v, want 5", v.X)
	}
}

func TestEvalBinaryArithmetic(t *testing.T) {
	env := NewEnv(nil, nil)
	v, err := Eval(env, n(&ast.Binary{
		Op:    ast.OpAdd,
		Left:  n(&ast.IntLit{Value: 2}),
		Right: n(&ast.IntLit{Value: 3}),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 5 {
		t.Fatalf("got %v, want 5", v.X)
	}
}

func TestEvalDivByZero(t *testing.T) {
	env := NewEnv(nil, nil)
	_, err := Eval(env, n(&ast.Binary{
		Op:    ast.OpDiv,
		Left:  n(&ast.IntLit{Value: 1}),
		Right: n(&ast.IntLit{Value: 0}),
	}))
	if err == nil || err.ID != "eval/stuck/div-by-zero" {
		t.Fatalf("expected eval/stuck/div-by-zero, got %v", err)
	}
}

func TestEvalScAndShortCircuits(t *testing.T) {
	env := NewEnv(nil, nil)
	// false ScAnd (1/0) must never evaluate the right side.
	v, err := Eval(env, n(&ast.Binary{
		Op:   ast.OpScAnd,
		Left: n(&ast.BoolLit{Value: false}),
		Right: n(&ast.Binary{
			Op:    ast.OpDiv,
			Left:  n(&ast.IntLit{Value: 1}),
			Right: n(&ast.IntLit{Value: 0}),
		}),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.BoolLit).Value != false {
		t.Fatalf("got %v, want false", v.X)
	}
}

func TestEvalLetAndAssign(t *testing.T) {
	env := NewEnv(nil, nil)
	body := n(&ast.Seq{Items: []*ast.Node{
		n(&ast.Assign{Target: n(&ast.Var{Name: "x"}), Value: n(&ast.IntLit{Value: 9})}),
		n(&ast.Var{Name: "x"}),
	}})
	v, err := Eval(env, n(&ast.LetMut{Name: "x", Init: n(&ast.IntLit{Value: 1}), Scope: body}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 9 {
		t.Fatalf("got %v, want 9", v.X)
	}
}

func TestEvalWhile(t *testing.T) {
	env := NewEnv(nil, nil)
	// let mut i = 0; while i < 3 { i = i + 1 }; i
	loop := n(&ast.While{
		Cond: n(&ast.Binary{Op: ast.OpLess, Left: n(&ast.Var{Name: "i"}), Right: n(&ast.IntLit{Value: 3})}),
		Body: n(&ast.Assign{
			Target: n(&ast.Var{Name: "i"}),
			Value:  n(&ast.Binary{Op: ast.OpAdd, Left: n(&ast.Var{Name: "i"}), Right: n(&ast.IntLit{Value: 1})}),
		}),
	})
	scope := n(&ast.Seq{Items: []*ast.Node{loop, n(&ast.Var{Name: "i"})}})
	v, err := Eval(env, n(&ast.LetMut{Name: "i", Init: n(&ast.IntLit{Value: 0}), Scope: scope}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 3 {
		t.Fatalf("got %v, want 3", v.X)
	}
}

func TestEvalStructConsAndFieldSelect(t *testing.T) {
	env := NewEnv(nil, nil)
	rec := n(&ast.StructCons{Fields: []ast.StructField{
		{Name: "x", Init: n(&ast.IntLit{Value: 1})},
		{Name: "y", Init: n(&ast.IntLit{Value: 2})},
	}})
	scope := n(&ast.FieldSelect{X: n(&ast.Var{Name: "p"}), Field: "y"})
	v, err := Eval(env, n(&ast.Let{Name: "p", Init: rec, Scope: scope}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 2 {
		t.Fatalf("got %v, want 2", v.X)
	}
}

func TestEvalFieldAssignMutatesHeap(t *testing.T) {
	env := NewEnv(nil, nil)
	rec := n(&ast.StructCons{Fields: []ast.StructField{{Name: "x", Init: n(&ast.IntLit{Value: 1})}}})
	scope := n(&ast.Seq{Items: []*ast.Node{
		n(&ast.Assign{
			Target: n(&ast.FieldSelect{X: n(&ast.Var{Name: "p"}), Field: "x"}),
			Value:  n(&ast.IntLit{Value: 42}),
		}),
		n(&ast.FieldSelect{X: n(&ast.Var{Name: "p"}), Field: "x"}),
	}})
	v, err := Eval(env, n(&ast.Let{Name: "p", Init: rec, Scope: scope}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 42 {
		t.Fatalf("got %v, want 42", v.X)
	}
}

func TestEvalArrayConsElemAndLength(t *testing.T) {
	env := NewEnv(nil, nil)
	arr := n(&ast.ArrayCons{Len: n(&ast.IntLit{Value: 3}), Init: n(&ast.IntLit{Value: 7})})
	scope := n(&ast.Seq{Items: []*ast.Node{
		n(&ast.Assign{
			Target: n(&ast.ArrayElem{Arr: n(&ast.Var{Name: "a"}), Index: n(&ast.IntLit{Value: 1})}),
			Value:  n(&ast.IntLit{Value: 99}),
		}),
		n(&ast.ArrayLength{Arr: n(&ast.Var{Name: "a"})}),
	}})
	v, err := Eval(env, n(&ast.Let{Name: "a", Init: arr, Scope: scope}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 3 {
		t.Fatalf("got %v, want 3", v.X)
	}
}

func TestEvalArrayOutOfBounds(t *testing.T) {
	env := NewEnv(nil, nil)
	arr := n(&ast.ArrayCons{Len: n(&ast.IntLit{Value: 2}), Init: n(&ast.IntLit{Value: 0})})
	scope := n(&ast.ArrayElem{Arr: n(&ast.Var{Name: "a"}), Index: n(&ast.IntLit{Value: 5})})
	_, err := Eval(env, n(&ast.Let{Name: "a", Init: arr, Scope: scope}))
	if err == nil || err.ID != "eval/stuck/out-of-bounds" {
		t.Fatalf("expected eval/stuck/out-of-bounds, got %v", err)
	}
}

func TestEvalLambdaApplication(t *testing.T) {
	env := NewEnv(nil, nil)
	lambda := n(&ast.Lambda{
		Args: []ast.LambdaArg{{Name: "a", Pretype: &ast.PIdent{Name: "int"}}, {Name: "b", Pretype: &ast.PIdent{Name: "int"}}},
		Body: n(&ast.Binary{Op: ast.OpAdd, Left: n(&ast.Var{Name: "a"}), Right: n(&ast.Var{Name: "b"})}),
	})
	app := n(&ast.Application{Fn: lambda, Args: []*ast.Node{n(&ast.IntLit{Value: 4}), n(&ast.IntLit{Value: 5})}})
	v, err := Eval(env, app)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 9 {
		t.Fatalf("got %v, want 9", v.X)
	}
}

func TestEvalApplicationArityMismatch(t *testing.T) {
	env := NewEnv(nil, nil)
	lambda := n(&ast.Lambda{
		Args: []ast.LambdaArg{{Name: "a", Pretype: &ast.PIdent{Name: "int"}}},
		Body: n(&ast.Var{Name: "a"}),
	})
	app := n(&ast.Application{Fn: lambda, Args: []*ast.Node{}})
	_, err := Eval(env, app)
	if err == nil || err.ID != "eval/stuck/arity" {
		t.Fatalf("expected eval/stuck/arity, got %v", err)
	}
}

func TestEvalUnionAndMatch(t *testing.T) {
	env := NewEnv(nil, nil)
	u := n(&ast.UnionCons{Label: "Some", X: n(&ast.IntLit{Value: 7})})
	m := n(&ast.Match{X: u, Cases: []ast.MatchCase{
		{Label: "None", Var: "_", Body: n(&ast.IntLit{Value: 0})},
		{Label: "Some", Var: "v", Body: n(&ast.Var{Name: "v"})},
	}})
	v, err := Eval(env, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 7 {
		t.Fatalf("got %v, want 7", v.X)
	}
}

func TestEvalMatchNoCase(t *testing.T) {
	env := NewEnv(nil, nil)
	u := n(&ast.UnionCons{Label: "Some", X: n(&ast.IntLit{Value: 7})})
	m := n(&ast.Match{X: u, Cases: []ast.MatchCase{
		{Label: "None", Var: "_", Body: n(&ast.IntLit{Value: 0})},
	}})
	_, err := Eval(env, m)
	if err == nil || err.ID != "eval/stuck/match" {
		t.Fatalf("expected eval/stuck/match, got %v", err)
	}
}

func TestEvalAssertionFailure(t *testing.T) {
	env := NewEnv(nil, nil)
	_, err := Eval(env, n(&ast.Assertion{X: n(&ast.BoolLit{Value: false})}))
	if err == nil || err.ID != "eval/stuck/assert" {
		t.Fatalf("expected eval/stuck/assert, got %v", err)
	}
}

func TestEvalCopyIsDeepThroughRecordFields(t *testing.T) {
	env := NewEnv(nil, nil)
	rec := n(&ast.StructCons{Fields: []ast.StructField{{Name: "x", Init: n(&ast.IntLit{Value: 1})}}})
	scope := n(&ast.Seq{Items: []*ast.Node{
		n(&ast.Let{
			Name: "q",
			Init: n(&ast.Copy{X: n(&ast.Var{Name: "p"})}),
			Scope: n(&ast.Assign{
				Target: n(&ast.FieldSelect{X: n(&ast.Var{Name: "q"}), Field: "x"}),
				Value:  n(&ast.IntLit{Value: 99}),
			}),
		}),
		n(&ast.FieldSelect{X: n(&ast.Var{Name: "p"}), Field: "x"}),
	}})
	v, err := Eval(env, n(&ast.Let{Name: "p", Init: rec, Scope: scope}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.X.(*ast.IntLit).Value != 1 {
		t.Fatalf("copy through a record field must not alias the original, got %v", v.X)
	}
}

func TestEvalSyscallPrintInt(t *testing.T) {
	var out string
	env := NewEnv(func(s string) { out += s }, nil)
	_, err := Eval(env, n(&ast.Syscall{Number: 1, Args: []*ast.Node{n(&ast.IntLit{Value: 17})}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "17" {
		t.Fatalf("got %q, want %q", out, "17")
	}
}

func TestEvalReadIntInvalidInputYieldsUnit(t *testing.T) {
	env := NewEnv(nil, func() (string, bool) { return "not-a-number", true })
	v, err := Eval(env, n(&ast.ReadInt{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.X.(*ast.UnitLit); !ok {
		t.Fatalf("got %v, want unit", v.X)
	}
}
