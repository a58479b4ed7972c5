package codegen

import (
	"strings"
	"testing"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/token"
)

func lit(v int) *ast.Node {
	return &ast.Node{X: &ast.IntLit{Value: v}, Typ: ast.TInt{}}
}

func TestGenerateUnitLiteralProducesNoInstructions(t *testing.T) {
	n := &ast.Node{X: &ast.UnitLit{}, Typ: ast.TUnit{}}
	out, err := Generate(n)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, ".data") || !strings.Contains(out, ".text") {
		t.Fatalf("expected both segments in render, got %q", out)
	}
	if !strings.Contains(out, "main:") {
		t.Fatalf("expected a main label, got %q", out)
	}
}

func TestGenerateRejectsUncheckedTree(t *testing.T) {
	n := &ast.Node{X: &ast.UnitLit{}}
	if _, err := Generate(n); err == nil {
		t.Fatal("expected an error for a node with no resolved type")
	}
}

func TestGenerateArithmeticEmitsAddInstruction(t *testing.T) {
	n := &ast.Node{
		X:   &ast.Binary{Op: ast.OpAdd, Left: lit(1), Right: lit(2)},
		Typ: ast.TInt{},
	}
	out, err := Generate(n)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "add t0, t0, t1") {
		t.Fatalf("expected an add of t0 and t1, got:\n%s", out)
	}
}

func TestGenerateIfEmitsBranchAndFarJumpForFalseEdge(t *testing.T) {
	n := &ast.Node{
		X: &ast.If{
			Cond: &ast.Node{X: &ast.BoolLit{Value: true}, Typ: ast.TBool{}},
			Then: lit(1),
			Else: lit(2),
		},
		Typ: ast.TInt{},
	}
	out, err := Generate(n)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "bnez t0, if_true_0") {
		t.Fatalf("expected a bnez to the true label, got:\n%s", out)
	}
	if !strings.Contains(out, "jr s11") {
		t.Fatalf("expected the false edge to jump indirectly through the label scratch register, got:\n%s", out)
	}
}

func TestGenerateLetBindsNameToRegisterAndShiftsScope(t *testing.T) {
	n := &ast.Node{
		X: &ast.Let{
			Name: "x",
			Init: lit(5),
			Scope: &ast.Node{
				X:   &ast.Binary{Op: ast.OpAdd, Left: &ast.Node{X: &ast.Var{Name: "x"}, Typ: ast.TInt{}}, Right: lit(1)},
				Typ: ast.TInt{},
			},
		},
		Typ: ast.TInt{},
	}
	out, err := Generate(n)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "li t0, 5") {
		t.Fatalf("expected the let-bound init to land in t0, got:\n%s", out)
	}
	if !strings.Contains(out, "add t1, t1, t2") {
		t.Fatalf("expected the scope's addition to run one register deeper, got:\n%s", out)
	}
}

func TestGenerateWhileEmitsBeginBodyAndEndLabels(t *testing.T) {
	n := &ast.Node{
		X: &ast.While{
			Cond: &ast.Node{X: &ast.BoolLit{Value: false}, Typ: ast.TBool{}},
			Body: &ast.Node{X: &ast.UnitLit{}, Typ: ast.TUnit{}},
		},
		Typ: ast.TUnit{},
	}
	out, err := Generate(n)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"while_begin_0:", "while_body_0:", "while_end_0:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected label %q in output:\n%s", want, out)
		}
	}
}

func TestGenerateAssertionTrapsOnFailure(t *testing.T) {
	n := &ast.Node{
		X:   &ast.Assertion{X: lit(1)},
		Typ: ast.TUnit{},
	}
	out, err := Generate(n)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "li a0, 42") {
		t.Fatalf("expected the assertion failure path to exit with code 42, got:\n%s", out)
	}
}

func TestGenerateStructConsAndFieldSelectRoundtrip(t *testing.T) {
	recType := ast.TRecord{Fields: []ast.RecordField{{Name: "a", Type: ast.TInt{}}, {Name: "b", Type: ast.TInt{}}}}
	consNode := &ast.Node{
		X: &ast.StructCons{Fields: []ast.StructField{
			{Name: "a", Init: lit(10)},
			{Name: "b", Init: lit(20)},
		}},
		Typ: recType,
	}
	selNode := &ast.Node{
		X:   &ast.FieldSelect{X: consNode, Field: "b"},
		Typ: ast.TInt{},
	}
	out, err := Generate(selNode)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "li a0, 8") {
		t.Fatalf("expected an 8-byte sbrk allocation for a two-field record, got:\n%s", out)
	}
	if !strings.Contains(out, "sw t1, 4(t0)") {
		t.Fatalf("expected field b to be stored at offset 4, got:\n%s", out)
	}
	if !strings.Contains(out, "lw t0, 4(t0)") {
		t.Fatalf("expected field b to be loaded back from offset 4, got:\n%s", out)
	}
}

func TestGenerateUnionConsAndMatchDispatchOnOrdinal(t *testing.T) {
	unionType := ast.TUnion{Cases: []ast.UnionCase{{Label: "Ok", Type: ast.TInt{}}, {Label: "Err", Type: ast.TInt{}}}}
	consNode := &ast.Node{X: &ast.UnionCons{Label: "Err", X: lit(7)}, Typ: unionType}
	matchNode := &ast.Node{
		X: &ast.Match{
			X: consNode,
			Cases: []ast.MatchCase{
				{Label: "Ok", Var: "v", Body: &ast.Node{X: &ast.Var{Name: "v"}, Typ: ast.TInt{}}},
				{Label: "Err", Var: "v", Body: &ast.Node{X: &ast.Var{Name: "v"}, Typ: ast.TInt{}}},
			},
		},
		Typ: ast.TInt{},
	}
	out, err := Generate(matchNode)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "li t1, 1") {
		t.Fatalf("expected Err's ordinal (1) to be tagged, got:\n%s", out)
	}
	if !strings.Contains(out, "beq t1, t2, match_case_1") {
		t.Fatalf("expected a beq dispatch to the second case label, got:\n%s", out)
	}
}

func TestGenerateArrayConsRejectsNonLiteralLength(t *testing.T) {
	n := &ast.Node{
		X:   &ast.ArrayCons{Len: &ast.Node{X: &ast.Var{Name: "n"}, Typ: ast.TInt{}}, Init: lit(0)},
		Typ: ast.TArray{Elem: ast.TInt{}},
	}
	if _, err := Generate(n); err == nil {
		t.Fatal("expected a non-literal array length to be rejected by this naive generator")
	}
}

func TestGenerateArrayConsAndElemRoundtrip(t *testing.T) {
	consNode := &ast.Node{
		X:   &ast.ArrayCons{Len: &ast.Node{X: &ast.IntLit{Value: 3}, Typ: ast.TInt{}}, Init: lit(9)},
		Typ: ast.TArray{Elem: ast.TInt{}},
	}
	elemNode := &ast.Node{
		X:   &ast.ArrayElem{Arr: consNode, Index: &ast.Node{X: &ast.IntLit{Value: 1}, Typ: ast.TInt{}}},
		Typ: ast.TInt{},
	}
	out, err := Generate(elemNode)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "li a0, 16") {
		t.Fatalf("expected a 16-byte allocation for a 3-element array (length word + 3 elements), got:\n%s", out)
	}
}

func TestGenerateApplicationCallsLabelAndCopiesReturn(t *testing.T) {
	fnType := ast.TFun{Args: []ast.Type{ast.TInt{}}, Ret: ast.TInt{}}
	lambdaNode := &ast.Node{
		X: &ast.Lambda{
			Args: []ast.LambdaArg{{Name: "x", Pretype: nil}},
			Body: &ast.Node{X: &ast.Var{Name: "x"}, Typ: ast.TInt{}},
		},
		Typ: fnType,
	}
	appNode := &ast.Node{
		X:   &ast.Application{Fn: &ast.Node{X: &ast.Var{Name: "f"}, Typ: fnType}, Args: []*ast.Node{lit(3)}},
		Typ: ast.TInt{},
	}
	letNode := &ast.Node{
		X:   &ast.Let{Name: "f", Init: lambdaNode, Scope: appNode},
		Typ: ast.TInt{},
	}
	out, err := Generate(letNode)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "jalr s11") {
		t.Fatalf("expected the call site to jalr through the label scratch register, got:\n%s", out)
	}
	if !strings.Contains(out, "mv a0, t1") {
		t.Fatalf("expected the single argument to be moved into a0, got:\n%s", out)
	}
}

func TestLabelerProducesUniqueSequentialNames(t *testing.T) {
	l := NewLabeler()
	if got := l.Next("loop"); got != "loop_0" {
		t.Fatalf("got %q, want loop_0", got)
	}
	if got := l.Next("loop"); got != "loop_1" {
		t.Fatalf("got %q, want loop_1", got)
	}
	if got := l.Next("other"); got != "other_0" {
		t.Fatalf("got %q, want other_0 (independent counter per prefix)", got)
	}
}

func TestIntRegRejectsOutOfRangeTarget(t *testing.T) {
	if _, err := intReg(token.Position{}, len(intTargetRegs)); err == nil {
		t.Fatal("expected an error once the target index exceeds the register pool")
	}
	if _, err := intReg(token.Position{}, 0); err != nil {
		t.Fatalf("intReg(0): %v", err)
	}
}

func TestEnvLookupChainsThroughParent(t *testing.T) {
	lab := NewLabeler()
	env := NewEnv(lab)
	env = env.With("a", RegStorage(0))
	inner := env.With("b", RegStorage(1))
	if _, ok := inner.Lookup("a"); !ok {
		t.Fatal("expected a lookup of an outer binding to succeed through the chain")
	}
	if st, ok := inner.Lookup("b"); !ok || st.Reg != 1 {
		t.Fatalf("expected b bound to register 1, got %+v ok=%v", st, ok)
	}
	if _, ok := env.Lookup("b"); ok {
		t.Fatal("expected the outer environment to not see the inner binding")
	}
}
