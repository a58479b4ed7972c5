package checker

import (
	"testing"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/token"
)

func pos() token.Position { return token.Position{File: "t.hyg", Line: 1, StartCh: 0, EndCh: 1} }

func node(x ast.Expr) *ast.Node { return &ast.Node{Pos: pos(), X: x} }

func TestCheckLiterals(t *testing.T) {
	cases := []struct {
		name string
		x    ast.Expr
		want ast.Type
	}{
		{"unit", &ast.UnitLit{}, ast.TUnit{}},
		{"bool", &ast.BoolLit{Value: true}, ast.TBool{}},
		{"int", &ast.IntLit{Value: 3}, ast.TInt{}},
		{"float", &ast.FloatLit{Value: 3.5}, ast.TFloat{}},
		{"string", &ast.StringLit{Value: "hi"}, ast.TString{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			checked, errs := Check(node(c.x), ast.NewEnv())
			if errs.HasErrors() {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if !checked.Typ.Equals(c.want) {
				t.Fatalf("got %v, want %v", checked.Typ, c.want)
			}
		})
	}
}

func TestCheckVarUndefined(t *testing.T) {
	_, errs := Check(node(&ast.Var{Name: "x"}), ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/var/undefined" {
		t.Fatalf("expected check/var/undefined, got %v", errs)
	}
}

func TestCheckLetAndVar(t *testing.T) {
	n := node(&ast.Let{
		Name:  "x",
		Init:  node(&ast.IntLit{Value: 5}),
		Scope: node(&ast.Var{Name: "x"}),
	})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TInt{}) {
		t.Fatalf("got %v, want int", checked.Typ)
	}
}

func TestCheckBinaryArithmeticMismatch(t *testing.T) {
	n := node(&ast.Binary{
		Op:    ast.OpAdd,
		Left:  node(&ast.IntLit{Value: 1}),
		Right: node(&ast.FloatLit{Value: 1.0}),
	})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/binop/mismatch" {
		t.Fatalf("expected check/binop/mismatch, got %v", errs)
	}
}

func TestCheckIfBranchMismatch(t *testing.T) {
	n := node(&ast.If{
		Cond: node(&ast.BoolLit{Value: true}),
		Then: node(&ast.IntLit{Value: 1}),
		Else: node(&ast.StringLit{Value: "x"}),
	})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/if/branch-mismatch" {
		t.Fatalf("expected check/if/branch-mismatch, got %v", errs)
	}
}

func TestCheckAssignImmutable(t *testing.T) {
	n := node(&ast.Let{
		Name: "x",
		Init: node(&ast.IntLit{Value: 1}),
		Scope: node(&ast.Assign{
			Target: node(&ast.Var{Name: "x"}),
			Value:  node(&ast.IntLit{Value: 2}),
		}),
	})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/assign/immutable" {
		t.Fatalf("expected check/assign/immutable, got %v", errs)
	}
}

func TestCheckAssignMutableOk(t *testing.T) {
	n := node(&ast.LetMut{
		Name: "x",
		Init: node(&ast.IntLit{Value: 1}),
		Scope: node(&ast.Assign{
			Target: node(&ast.Var{Name: "x"}),
			Value:  node(&ast.IntLit{Value: 2}),
		}),
	})
	_, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckStructAndFieldSelect(t *testing.T) {
	n := node(&ast.Let{
		Name: "p",
		Init: node(&ast.StructCons{Fields: []ast.StructField{
			{Name: "x", Init: node(&ast.IntLit{Value: 1})},
			{Name: "y", Init: node(&ast.IntLit{Value: 2})},
		}}),
		Scope: node(&ast.FieldSelect{X: node(&ast.Var{Name: "p"}), Field: "y"}),
	})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TInt{}) {
		t.Fatalf("got %v, want int", checked.Typ)
	}
}

func TestCheckFieldSelectMissing(t *testing.T) {
	n := node(&ast.FieldSelect{
		X:     node(&ast.StructCons{Fields: []ast.StructField{{Name: "x", Init: node(&ast.IntLit{Value: 1})}}}),
		Field: "z",
	})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/struct/field-missing" {
		t.Fatalf("expected check/struct/field-missing, got %v", errs)
	}
}

func TestCheckLambdaAndApplication(t *testing.T) {
	n := node(&ast.Application{
		Fn: node(&ast.Lambda{
			Args: []ast.LambdaArg{{Name: "a", Pretype: &ast.PIdent{Name: "int"}}},
			Body: node(&ast.Var{Name: "a"}),
		}),
		Args: []*ast.Node{node(&ast.IntLit{Value: 7})},
	})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TInt{}) {
		t.Fatalf("got %v, want int", checked.Typ)
	}
}

func TestCheckApplicationArityMismatch(t *testing.T) {
	n := node(&ast.Application{
		Fn: node(&ast.Lambda{
			Args: []ast.LambdaArg{{Name: "a", Pretype: &ast.PIdent{Name: "int"}}},
			Body: node(&ast.Var{Name: "a"}),
		}),
		Args: []*ast.Node{},
	})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/lambda/arity" {
		t.Fatalf("expected check/lambda/arity, got %v", errs)
	}
}

func TestCheckUnionAndMatch(t *testing.T) {
	n := node(&ast.Match{
		X: node(&ast.UnionCons{Label: "Some", X: node(&ast.IntLit{Value: 1})}),
		Cases: []ast.MatchCase{
			{Label: "Some", Var: "v", Body: node(&ast.Var{Name: "v"})},
		},
	})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TInt{}) {
		t.Fatalf("got %v, want int", checked.Typ)
	}
}

func TestCheckMatchUnknownLabel(t *testing.T) {
	n := node(&ast.Match{
		X: node(&ast.UnionCons{Label: "Some", X: node(&ast.IntLit{Value: 1})}),
		Cases: []ast.MatchCase{
			{Label: "None", Var: "v", Body: node(&ast.Var{Name: "v"})},
		},
	})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/match/label-missing" {
		t.Fatalf("expected check/match/label-missing, got %v", errs)
	}
}

func TestCheckArrayConsAndElem(t *testing.T) {
	n := node(&ast.Let{
		Name: "a",
		Init: node(&ast.ArrayCons{Len: node(&ast.IntLit{Value: 3}), Init: node(&ast.IntLit{Value: 0})}),
		Scope: node(&ast.ArrayElem{
			Arr:   node(&ast.Var{Name: "a"}),
			Index: node(&ast.IntLit{Value: 1}),
		}),
	})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TInt{}) {
		t.Fatalf("got %v, want int", checked.Typ)
	}
}

func TestCheckSyscallArgCount(t *testing.T) {
	n := node(&ast.Syscall{Number: 1, Args: []*ast.Node{}})
	_, errs := Check(n, ast.NewEnv())
	if !errs.HasErrors() || errs[0].ID != "check/syscall/argcount" {
		t.Fatalf("expected check/syscall/argcount, got %v", errs)
	}
}

func TestCheckSyscallOk(t *testing.T) {
	n := node(&ast.Syscall{Number: 1, Args: []*ast.Node{node(&ast.IntLit{Value: 1})}})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TUnit{}) {
		t.Fatalf("got %v, want unit", checked.Typ)
	}
}

func TestCheckTypeDeclRecursiveAlias(t *testing.T) {
	// type IntList = struct { head: int; tail: IntList }; this must not
	// loop checking itself, and the alias must not escape the scope.
	listPretype := &ast.PRecord{Fields: []ast.PRecordField{
		{Mutable: false, Name: "head", Type: &ast.PIdent{Name: "int"}},
		{Mutable: false, Name: "tail", Type: &ast.PIdent{Name: "IntList"}},
	}}
	n := node(&ast.TypeDecl{
		Name:    "IntList",
		Pretype: listPretype,
		Scope:   node(&ast.IntLit{Value: 0}),
	})
	checked, errs := Check(n, ast.NewEnv())
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !checked.Typ.Equals(ast.TInt{}) {
		t.Fatalf("got %v, want int", checked.Typ)
	}
}

func TestCheckTypeDeclEscape(t *testing.T) {
	n := node(&ast.TypeDecl{
		Name:    "Local",
		Pretype: &ast.PIdent{Name: "int"},
		Scope: node(&ast.Ascription{
			X:       node(&ast.IntLit{Value: 1}),
			Pretype: &ast.PIdent{Name: "Local"},
		}),
	})
	_, errs := Check(n, ast.NewEnv())
	found := false
	for _, e := range errs {
		if e.ID == "check/type/escape" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected check/type/escape among %v", errs)
	}
}
