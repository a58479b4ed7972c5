package ast

import "github.com/hygge-lang/hygge/token"

// Node is the tree node described in spec §3: a tuple of {position,
// expression, typing environment slot, type slot}. Rather than
// parameterising the tree shape over "untyped" and "typed" flavours (as
// the spec allows), this implementation uses one Node shape throughout
// and leaves Env/Typ nil until the checker visits the node -- simpler in
// Go than threading a type parameter through every pass, and still
// gives every later pass (code generator, pretty printer) the node's
// own environment snapshot once Env is populated.
type Node struct {
	Pos token.Position
	X   Expr
	Env *Env // nil until the checker annotates this node
	Typ Type // nil until the checker annotates this node
}

// Expr is implemented by every expression variant in spec §3.
type Expr interface {
	exprMarker()
}

type base struct{}

func (base) exprMarker() {}

// Literals

type UnitLit struct{ base }
type BoolLit struct {
	base
	Value bool
}
type IntLit struct {
	base
	Value int
}
type FloatLit struct {
	base
	Value float64
}
type StringLit struct {
	base
	Value string
}

type Var struct {
	base
	Name string
}

// Arithmetic / bitwise / logical binary operators share one shape; the
// Op field distinguishes them the way the spec enumerates them.
type BinOp string

const (
	OpAdd BinOp = "Add"
	OpSub BinOp = "Sub"
	OpMul BinOp = "Mul"
	OpDiv BinOp = "Div"
	OpRem BinOp = "Rem"

	OpBAnd BinOp = "BAnd"
	OpBOr  BinOp = "BOr"
	OpBXor BinOp = "BXor"
	OpBSL  BinOp = "BSL"
	OpBSR  BinOp = "BSR"

	OpAnd   BinOp = "And"
	OpOr    BinOp = "Or"
	OpXor   BinOp = "Xor"
	OpScAnd BinOp = "ScAnd"
	OpScOr  BinOp = "ScOr"

	OpEq         BinOp = "Eq"
	OpLess       BinOp = "Less"
	OpLessEq     BinOp = "LessEq"
	OpGreater    BinOp = "Greater"
	OpGreaterEq  BinOp = "GreaterEq"
)

type Binary struct {
	base
	Op          BinOp
	Left, Right *Node
}

// CompoundAssign is Add=/Sub=/etc on a variable; desugared by the
// evaluator into Assign(lhs, bin_op(lhs,rhs)) per spec §4.4.
type CompoundAssign struct {
	base
	Op     BinOp
	Target *Node // the checker accepts only a mutable Var; the evaluator and code generator also handle FieldSelect/ArrayElem
	Value  *Node
}

type BNot struct {
	base
	X *Node
}
type Not struct {
	base
	X *Node
}
type Neg struct {
	base
	X *Node
}
type Sqrt struct {
	base
	X *Node
}

type ReadInt struct{ base }
type ReadFloat struct{ base }
type Print struct {
	base
	X *Node
}
type PrintLn struct {
	base
	X *Node
}

type Syscall struct {
	base
	Number int
	Args   []*Node
}

// Preinc/Postinc require the operand to be a Var (spec §9).
type Preinc struct {
	base
	Target string
	Delta  int // +1 or -1
}
type Postinc struct {
	base
	Target string
	Delta  int
}

type If struct {
	base
	Cond, Then, Else *Node
}

type Seq struct {
	base
	Items []*Node
}

// TypeDecl introduces a type alias (spec's Type(name, pretype, scope)).
type TypeDecl struct {
	base
	Name    string
	Pretype Pretype
	Scope   *Node
}

type Ascription struct {
	base
	X       *Node
	Pretype Pretype
}

type Assertion struct {
	base
	X *Node
}

type Copy struct {
	base
	X *Node
}

type Let struct {
	base
	Name  string
	Init  *Node
	Scope *Node
}
type LetT struct {
	base
	Name    string
	Pretype Pretype
	Init    *Node
	Scope   *Node
}
type LetMut struct {
	base
	Name  string
	Init  *Node
	Scope *Node
}

type Assign struct {
	base
	Target *Node
	Value  *Node
}

type While struct {
	base
	Cond, Body *Node
}

type For struct {
	base
	Ident      string
	Init, Cond *Node
	Step       *Node
	Body       *Node
}

type LambdaArg struct {
	Name    string
	Pretype Pretype
}

type Lambda struct {
	base
	Args []LambdaArg
	Body *Node
}

type Application struct {
	base
	Fn   *Node
	Args []*Node
}

type StructField struct {
	Name string
	Init *Node
}

type StructCons struct {
	base
	Fields []StructField
}

type FieldSelect struct {
	base
	X     *Node
	Field string
}

type UnionCons struct {
	base
	Label string
	X     *Node
}

type MatchCase struct {
	Label string
	Var   string
	Body  *Node
}

type Match struct {
	base
	X     *Node
	Cases []MatchCase
}

type ArrayCons struct {
	base
	Len  *Node
	Init *Node
}

type ArrayElem struct {
	base
	Arr, Index *Node
}

type ArrayLength struct {
	base
	Arr *Node
}

// Pointer is the runtime-only heap reference; it never appears in
// source and is rejected by both the checker and the code generator
// (spec §3).
type Pointer struct {
	base
	Addr int
}
