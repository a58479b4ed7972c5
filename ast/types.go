package ast

import "fmt"

// Type is the resolved type produced by the checker. Grounded on the
// teacher's compiler/types.go AbstractType, narrowed from an "abstract
// type = set of value types" lattice to the concrete structural types
// this spec requires: records and unions carry their full ordered
// field/case list rather than a bag of possible runtime tags.
type Type interface {
	Equals(Type) bool
	String() string
}

type TBool struct{}
type TInt struct{}
type TFloat struct{}
type TString struct{}
type TUnit struct{}

func (TBool) Equals(t Type) bool   { _, ok := t.(TBool); return ok }
func (TInt) Equals(t Type) bool    { _, ok := t.(TInt); return ok }
func (TFloat) Equals(t Type) bool  { _, ok := t.(TFloat); return ok }
func (TString) Equals(t Type) bool { _, ok := t.(TString); return ok }
func (TUnit) Equals(t Type) bool   { _, ok := t.(TUnit); return ok }

func (TBool) String() string   { return "bool" }
func (TInt) String() string    { return "int" }
func (TFloat) String() string  { return "float" }
func (TString) String() string { return "string" }
func (TUnit) String() string   { return "unit" }

// TVar is an as-yet-unexpanded reference to a type alias by name.
type TVar struct {
	Name string
}

func (v TVar) Equals(t Type) bool {
	w, ok := t.(TVar)
	return ok && v.Name == w.Name
}
func (v TVar) String() string { return v.Name }

type TFun struct {
	Args []Type
	Ret  Type
}

func (f TFun) Equals(t Type) bool {
	g, ok := t.(TFun)
	if !ok || len(f.Args) != len(g.Args) || !f.Ret.Equals(g.Ret) {
		return false
	}
	for i := range f.Args {
		if !f.Args[i].Equals(g.Args[i]) {
			return false
		}
	}
	return true
}
func (f TFun) String() string {
	s := "("
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ") -> " + f.Ret.String()
}

type RecordField struct {
	Mutable bool
	Name    string
	Type    Type
}

type TRecord struct {
	Fields []RecordField
}

func (r TRecord) Equals(t Type) bool {
	s, ok := t.(TRecord)
	if !ok || len(r.Fields) != len(s.Fields) {
		return false
	}
	for i := range r.Fields {
		if r.Fields[i].Name != s.Fields[i].Name || r.Fields[i].Mutable != s.Fields[i].Mutable || !r.Fields[i].Type.Equals(s.Fields[i].Type) {
			return false
		}
	}
	return true
}
func (r TRecord) String() string {
	s := "struct { "
	for _, f := range r.Fields {
		s += f.Name + ": " + f.Type.String() + "; "
	}
	return s + "}"
}

// FieldIndex returns the position of name in the ordered field list, or
// -1 if absent.
func (r TRecord) FieldIndex(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

type UnionCase struct {
	Label string
	Type  Type
}

type TUnion struct {
	Cases []UnionCase
}

func (u TUnion) Equals(t Type) bool {
	v, ok := t.(TUnion)
	if !ok || len(u.Cases) != len(v.Cases) {
		return false
	}
	for i := range u.Cases {
		if u.Cases[i].Label != v.Cases[i].Label || !u.Cases[i].Type.Equals(v.Cases[i].Type) {
			return false
		}
	}
	return true
}
func (u TUnion) String() string {
	s := "union { "
	for _, c := range u.Cases {
		s += c.Label + ": " + c.Type.String() + "; "
	}
	return s + "}"
}

func (u TUnion) CaseIndex(label string) int {
	for i, c := range u.Cases {
		if c.Label == label {
			return i
		}
	}
	return -1
}

type TArray struct {
	Elem Type
}

func (a TArray) Equals(t Type) bool {
	b, ok := t.(TArray)
	return ok && a.Elem.Equals(b.Elem)
}
func (a TArray) String() string { return "array(" + a.Elem.String() + ")" }

// AliasTable maps a type-alias name to the type it was most recently
// bound to (spec §3: "Type variables resolve to the most recent
// binding in the enclosing typing environment").
type AliasTable map[string]Type

// ExpandType resolves a type chain through alias bindings until a
// non-variable type is reached (spec §4.1 expandType). It fails if the
// chain is unbound.
func ExpandType(t Type, aliases AliasTable) (Type, error) {
	seen := map[string]bool{}
	for {
		v, ok := t.(TVar)
		if !ok {
			return t, nil
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("unbound or cyclic type alias %q", v.Name)
		}
		seen[v.Name] = true
		next, ok := aliases[v.Name]
		if !ok {
			return nil, fmt.Errorf("unbound type alias %q", v.Name)
		}
		t = next
	}
}

// FreeTypeVars returns the set of unbound type-variable names appearing
// in t (spec §4.1 freeTypeVars), without expanding through aliases --
// the caller decides what "unbound" means for its own alias table.
func FreeTypeVars(t Type) map[string]bool {
	out := map[string]bool{}
	collectFreeTypeVars(t, out)
	return out
}

func collectFreeTypeVars(t Type, out map[string]bool) {
	switch u := t.(type) {
	case TVar:
		out[u.Name] = true
	case TFun:
		for _, a := range u.Args {
			collectFreeTypeVars(a, out)
		}
		collectFreeTypeVars(u.Ret, out)
	case TRecord:
		for _, f := range u.Fields {
			collectFreeTypeVars(f.Type, out)
		}
	case TUnion:
		for _, c := range u.Cases {
			collectFreeTypeVars(c.Type, out)
		}
	case TArray:
		collectFreeTypeVars(u.Elem, out)
	}
}
