package ast

import (
	"fmt"

	"github.com/hygge-lang/hygge/token"
)

// Pretype is the syntactic type as written by the user, before the
// checker resolves it against the alias table. Grounded on the
// teacher's ast/type_ast.go TypeNode variants, generalized with the
// record/union/array shapes this language needs.
type Pretype interface {
	Pos() token.Position
	String() string
}

type PIdent struct {
	Token token.Position
	Name  string
}

func (p *PIdent) Pos() token.Position { return p.Token }
func (p *PIdent) String() string      { return p.Name }

type PFun struct {
	Token token.Position
	Args  []Pretype
	Ret   Pretype
}

func (p *PFun) Pos() token.Position { return p.Token }
func (p *PFun) String() string {
	s := "("
	for i, a := range p.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ") -> " + p.Ret.String()
}

type PRecordField struct {
	Mutable bool
	Name    string
	Type    Pretype
}

type PRecord struct {
	Token  token.Position
	Fields []PRecordField
}

func (p *PRecord) Pos() token.Position { return p.Token }
func (p *PRecord) String() string {
	s := "struct { "
	for _, f := range p.Fields {
		if f.Mutable {
			s += f.Name + ": " + f.Type.String() + "; "
		} else {
			s += "immutable " + f.Name + ": " + f.Type.String() + "; "
		}
	}
	return s + "}"
}

// ValidateUnique returns an error if two fields share a name, per the
// spec's "duplicate field names are rejected at construction" rule.
func (p *PRecord) ValidateUnique() error {
	seen := map[string]bool{}
	for _, f := range p.Fields {
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

type PUnionCase struct {
	Label string
	Type  Pretype
}

type PUnion struct {
	Token token.Position
	Cases []PUnionCase
}

func (p *PUnion) Pos() token.Position { return p.Token }
func (p *PUnion) String() string {
	s := "union { "
	for _, c := range p.Cases {
		s += c.Label + ": " + c.Type.String() + "; "
	}
	return s + "}"
}

func (p *PUnion) ValidateUnique() error {
	seen := map[string]bool{}
	for _, c := range p.Cases {
		if seen[c.Label] {
			return fmt.Errorf("duplicate union label %q", c.Label)
		}
		seen[c.Label] = true
	}
	return nil
}

type PArray struct {
	Token token.Position
	Elem  Pretype
}

func (p *PArray) Pos() token.Position { return p.Token }
func (p *PArray) String() string      { return "array(" + p.Elem.String() + ")" }
