package ast

import (
	"encoding/json"
	"fmt"

	"github.com/hygge-lang/hygge/token"
)

// envelope is the wire format for a Node: a discriminator plus every
// field any variant might need, tagged omitempty so a given kind's
// JSON is no larger than it needs to be. This is the seam described in
// SPEC_FULL.md §6: since lexing/parsing live outside this repository,
// the external scanner/parser hands us (and our CLI reads) trees in
// this shape, grounded on the teacher's source/service/
// api_serialization.go tag-dispatch pattern.
type envelope struct {
	Kind  string         `json:"kind"`
	Pos   token.Position `json:"pos"`
	Bool  *bool          `json:"bool,omitempty"`
	Int   *int           `json:"int,omitempty"`
	Float *float64       `json:"float,omitempty"`
	Str   *string        `json:"str,omitempty"`
	Op    string         `json:"op,omitempty"`
	Name  string         `json:"name,omitempty"`
	Field string         `json:"field,omitempty"`
	Label string         `json:"label,omitempty"`

	Pretype json.RawMessage `json:"pretype,omitempty"`

	A *envelope   `json:"a,omitempty"` // primary child (X, target, left, cond, fn, arr...)
	B *envelope   `json:"b,omitempty"` // secondary child (right, value, then, init...)
	C *envelope   `json:"c,omitempty"` // tertiary child (else, step, index...)
	L []*envelope `json:"list,omitempty"`

	StructFields []structFieldJSON `json:"structFields,omitempty"`
	MatchCases   []matchCaseJSON   `json:"matchCases,omitempty"`
	LambdaArgs   []lambdaArgJSON   `json:"lambdaArgs,omitempty"`
}

type structFieldJSON struct {
	Name string    `json:"name"`
	Init *envelope `json:"init"`
}
type matchCaseJSON struct {
	Label string    `json:"label"`
	Var   string    `json:"var"`
	Body  *envelope `json:"body"`
}
type lambdaArgJSON struct {
	Name    string          `json:"name"`
	Pretype json.RawMessage `json:"pretype"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toEnvelope(n))
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	m, err := fromEnvelope(&env)
	if err != nil {
		return err
	}
	*n = *m
	return nil
}

func toEnvelope(n *Node) *envelope {
	if n == nil {
		return nil
	}
	e := &envelope{Pos: n.Pos}
	bp := func(b bool) *bool { return &b }
	ip := func(i int) *int { return &i }
	fp := func(f float64) *float64 { return &f }
	sp := func(s string) *string { return &s }
	switch x := n.X.(type) {
	case *UnitLit:
		e.Kind = "unit"
	case *BoolLit:
		e.Kind, e.Bool = "bool", bp(x.Value)
	case *IntLit:
		e.Kind, e.Int = "int", ip(x.Value)
	case *FloatLit:
		e.Kind, e.Float = "float", fp(x.Value)
	case *StringLit:
		e.Kind, e.Str = "string", sp(x.Value)
	case *Var:
		e.Kind, e.Name = "var", x.Name
	case *Binary:
		e.Kind, e.Op, e.A, e.B = "binary", string(x.Op), toEnvelope(x.Left), toEnvelope(x.Right)
	case *CompoundAssign:
		e.Kind, e.Op, e.A, e.B = "compoundAssign", string(x.Op), toEnvelope(x.Target), toEnvelope(x.Value)
	case *BNot:
		e.Kind, e.A = "bnot", toEnvelope(x.X)
	case *Not:
		e.Kind, e.A = "not", toEnvelope(x.X)
	case *Neg:
		e.Kind, e.A = "neg", toEnvelope(x.X)
	case *Sqrt:
		e.Kind, e.A = "sqrt", toEnvelope(x.X)
	case *ReadInt:
		e.Kind = "readInt"
	case *ReadFloat:
		e.Kind = "readFloat"
	case *Print:
		e.Kind, e.A = "print", toEnvelope(x.X)
	case *PrintLn:
		e.Kind, e.A = "println", toEnvelope(x.X)
	case *Syscall:
		e.Kind, e.Int = "syscall", ip(x.Number)
		for _, a := range x.Args {
			e.L = append(e.L, toEnvelope(a))
		}
	case *Preinc:
		e.Kind, e.Name, e.Int = "preinc", x.Target, ip(x.Delta)
	case *Postinc:
		e.Kind, e.Name, e.Int = "postinc", x.Target, ip(x.Delta)
	case *If:
		e.Kind, e.A, e.B, e.C = "if", toEnvelope(x.Cond), toEnvelope(x.Then), toEnvelope(x.Else)
	case *Seq:
		e.Kind = "seq"
		for _, it := range x.Items {
			e.L = append(e.L, toEnvelope(it))
		}
	case *TypeDecl:
		e.Kind, e.Name, e.Pretype, e.A = "typeDecl", x.Name, marshalPretype(x.Pretype), toEnvelope(x.Scope)
	case *Ascription:
		e.Kind, e.A, e.Pretype = "ascription", toEnvelope(x.X), marshalPretype(x.Pretype)
	case *Assertion:
		e.Kind, e.A = "assertion", toEnvelope(x.X)
	case *Copy:
		e.Kind, e.A = "copy", toEnvelope(x.X)
	case *Let:
		e.Kind, e.Name, e.A, e.B = "let", x.Name, toEnvelope(x.Init), toEnvelope(x.Scope)
	case *LetT:
		e.Kind, e.Name, e.Pretype, e.A, e.B = "letT", x.Name, marshalPretype(x.Pretype), toEnvelope(x.Init), toEnvelope(x.Scope)
	case *LetMut:
		e.Kind, e.Name, e.A, e.B = "letMut", x.Name, toEnvelope(x.Init), toEnvelope(x.Scope)
	case *Assign:
		e.Kind, e.A, e.B = "assign", toEnvelope(x.Target), toEnvelope(x.Value)
	case *While:
		e.Kind, e.A, e.B = "while", toEnvelope(x.Cond), toEnvelope(x.Body)
	case *For:
		e.Kind, e.Name = "for", x.Ident
		e.A, e.B, e.C = toEnvelope(x.Init), toEnvelope(x.Cond), toEnvelope(x.Step)
		e.L = []*envelope{toEnvelope(x.Body)}
	case *Lambda:
		e.Kind, e.A = "lambda", toEnvelope(x.Body)
		for _, a := range x.Args {
			e.LambdaArgs = append(e.LambdaArgs, lambdaArgJSON{Name: a.Name, Pretype: marshalPretype(a.Pretype)})
		}
	case *Application:
		e.Kind, e.A = "application", toEnvelope(x.Fn)
		for _, a := range x.Args {
			e.L = append(e.L, toEnvelope(a))
		}
	case *StructCons:
		e.Kind = "structCons"
		for _, f := range x.Fields {
			e.StructFields = append(e.StructFields, structFieldJSON{Name: f.Name, Init: toEnvelope(f.Init)})
		}
	case *FieldSelect:
		e.Kind, e.A, e.Field = "fieldSelect", toEnvelope(x.X), x.Field
	case *UnionCons:
		e.Kind, e.Label, e.A = "unionCons", x.Label, toEnvelope(x.X)
	case *Match:
		e.Kind, e.A = "match", toEnvelope(x.X)
		for _, c := range x.Cases {
			e.MatchCases = append(e.MatchCases, matchCaseJSON{Label: c.Label, Var: c.Var, Body: toEnvelope(c.Body)})
		}
	case *ArrayCons:
		e.Kind, e.A, e.B = "arrayCons", toEnvelope(x.Len), toEnvelope(x.Init)
	case *ArrayElem:
		e.Kind, e.A, e.B = "arrayElem", toEnvelope(x.Arr), toEnvelope(x.Index)
	case *ArrayLength:
		e.Kind, e.A = "arrayLength", toEnvelope(x.Arr)
	case *Pointer:
		e.Kind, e.Int = "pointer", ip(x.Addr)
	default:
		e.Kind = "unknown"
	}
	return e
}

func fromEnvelope(e *envelope) (*Node, error) {
	if e == nil {
		return nil, nil
	}
	n := &Node{Pos: e.Pos}
	child := func(c *envelope) *Node {
		m, _ := fromEnvelope(c)
		return m
	}
	pt, ptErr := unmarshalPretype(e.Pretype)
	switch e.Kind {
	case "unit":
		n.X = &UnitLit{}
	case "bool":
		n.X = &BoolLit{Value: derefBool(e.Bool)}
	case "int":
		n.X = &IntLit{Value: derefInt(e.Int)}
	case "float":
		n.X = &FloatLit{Value: derefFloat(e.Float)}
	case "string":
		n.X = &StringLit{Value: derefStr(e.Str)}
	case "var":
		n.X = &Var{Name: e.Name}
	case "binary":
		n.X = &Binary{Op: BinOp(e.Op), Left: child(e.A), Right: child(e.B)}
	case "compoundAssign":
		n.X = &CompoundAssign{Op: BinOp(e.Op), Target: child(e.A), Value: child(e.B)}
	case "bnot":
		n.X = &BNot{X: child(e.A)}
	case "not":
		n.X = &Not{X: child(e.A)}
	case "neg":
		n.X = &Neg{X: child(e.A)}
	case "sqrt":
		n.X = &Sqrt{X: child(e.A)}
	case "readInt":
		n.X = &ReadInt{}
	case "readFloat":
		n.X = &ReadFloat{}
	case "print":
		n.X = &Print{X: child(e.A)}
	case "println":
		n.X = &PrintLn{X: child(e.A)}
	case "syscall":
		args := make([]*Node, len(e.L))
		for i, c := range e.L {
			args[i] = child(c)
		}
		n.X = &Syscall{Number: derefInt(e.Int), Args: args}
	case "preinc":
		n.X = &Preinc{Target: e.Name, Delta: derefInt(e.Int)}
	case "postinc":
		n.X = &Postinc{Target: e.Name, Delta: derefInt(e.Int)}
	case "if":
		n.X = &If{Cond: child(e.A), Then: child(e.B), Else: child(e.C)}
	case "seq":
		items := make([]*Node, len(e.L))
		for i, c := range e.L {
			items[i] = child(c)
		}
		n.X = &Seq{Items: items}
	case "typeDecl":
		if ptErr != nil {
			return nil, ptErr
		}
		n.X = &TypeDecl{Name: e.Name, Pretype: pt, Scope: child(e.A)}
	case "ascription":
		if ptErr != nil {
			return nil, ptErr
		}
		n.X = &Ascription{X: child(e.A), Pretype: pt}
	case "assertion":
		n.X = &Assertion{X: child(e.A)}
	case "copy":
		n.X = &Copy{X: child(e.A)}
	case "let":
		n.X = &Let{Name: e.Name, Init: child(e.A), Scope: child(e.B)}
	case "letT":
		if ptErr != nil {
			return nil, ptErr
		}
		n.X = &LetT{Name: e.Name, Pretype: pt, Init: child(e.A), Scope: child(e.B)}
	case "letMut":
		n.X = &LetMut{Name: e.Name, Init: child(e.A), Scope: child(e.B)}
	case "assign":
		n.X = &Assign{Target: child(e.A), Value: child(e.B)}
	case "while":
		n.X = &While{Cond: child(e.A), Body: child(e.B)}
	case "for":
		var body *Node
		if len(e.L) == 1 {
			body = child(e.L[0])
		}
		n.X = &For{Ident: e.Name, Init: child(e.A), Cond: child(e.B), Step: child(e.C), Body: body}
	case "lambda":
		args := make([]LambdaArg, len(e.LambdaArgs))
		for i, a := range e.LambdaArgs {
			apt, err := unmarshalPretype(a.Pretype)
			if err != nil {
				return nil, err
			}
			args[i] = LambdaArg{Name: a.Name, Pretype: apt}
		}
		n.X = &Lambda{Args: args, Body: child(e.A)}
	case "application":
		args := make([]*Node, len(e.L))
		for i, c := range e.L {
			args[i] = child(c)
		}
		n.X = &Application{Fn: child(e.A), Args: args}
	case "structCons":
		fields := make([]StructField, len(e.StructFields))
		for i, f := range e.StructFields {
			fields[i] = StructField{Name: f.Name, Init: child(f.Init)}
		}
		n.X = &StructCons{Fields: fields}
	case "fieldSelect":
		n.X = &FieldSelect{X: child(e.A), Field: e.Field}
	case "unionCons":
		n.X = &UnionCons{Label: e.Label, X: child(e.A)}
	case "match":
		cases := make([]MatchCase, len(e.MatchCases))
		for i, c := range e.MatchCases {
			cases[i] = MatchCase{Label: c.Label, Var: c.Var, Body: child(c.Body)}
		}
		n.X = &Match{X: child(e.A), Cases: cases}
	case "arrayCons":
		n.X = &ArrayCons{Len: child(e.A), Init: child(e.B)}
	case "arrayElem":
		n.X = &ArrayElem{Arr: child(e.A), Index: child(e.B)}
	case "arrayLength":
		n.X = &ArrayLength{Arr: child(e.A)}
	case "pointer":
		n.X = &Pointer{Addr: derefInt(e.Int)}
	default:
		return nil, fmt.Errorf("ast: unknown node kind %q", e.Kind)
	}
	return n, nil
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
