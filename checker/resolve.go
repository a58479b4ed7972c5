package checker

import (
	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/diag"
)

var primitives = map[string]ast.Type{
	"bool":   ast.TBool{},
	"int":    ast.TInt{},
	"float":  ast.TFloat{},
	"string": ast.TString{},
	"unit":   ast.TUnit{},
}

// ResolvePretype walks the pretype AST under env and resolves it to a
// Type (spec §4.3 "Pretype resolution"). An identifier resolves to a
// primitive if it names one, else to a TVar if the alias table
// contains it, else it is a name-resolution error.
func ResolvePretype(p ast.Pretype, env *ast.Env) (ast.Type, diag.List) {
	switch t := p.(type) {
	case *ast.PIdent:
		if prim, ok := primitives[t.Name]; ok {
			return prim, nil
		}
		if _, ok := env.LookupAlias(t.Name); ok {
			return ast.TVar{Name: t.Name}, nil
		}
		return nil, diag.List{diag.New("check/type/undefined", t.Token, t.Name)}
	case *ast.PFun:
		args := make([]ast.Type, len(t.Args))
		var errs diag.List
		for i, a := range t.Args {
			rt, e := ResolvePretype(a, env)
			args[i] = rt
			errs = append(errs, e...)
		}
		ret, e := ResolvePretype(t.Ret, env)
		errs = append(errs, e...)
		if errs.HasErrors() {
			return nil, errs
		}
		return ast.TFun{Args: args, Ret: ret}, nil
	case *ast.PRecord:
		if err := t.ValidateUnique(); err != nil {
			return nil, diag.List{diag.New("check/field/duplicate", t.Token, firstDup(t))}
		}
		fields := make([]ast.RecordField, len(t.Fields))
		var errs diag.List
		for i, f := range t.Fields {
			rt, e := ResolvePretype(f.Type, env)
			errs = append(errs, e...)
			fields[i] = ast.RecordField{Mutable: f.Mutable, Name: f.Name, Type: rt}
		}
		if errs.HasErrors() {
			return nil, errs
		}
		return ast.TRecord{Fields: fields}, nil
	case *ast.PUnion:
		if err := t.ValidateUnique(); err != nil {
			return nil, diag.List{diag.New("check/label/duplicate", t.Token, firstDupUnion(t))}
		}
		cases := make([]ast.UnionCase, len(t.Cases))
		var errs diag.List
		for i, c := range t.Cases {
			rt, e := ResolvePretype(c.Type, env)
			errs = append(errs, e...)
			cases[i] = ast.UnionCase{Label: c.Label, Type: rt}
		}
		if errs.HasErrors() {
			return nil, errs
		}
		return ast.TUnion{Cases: cases}, nil
	case *ast.PArray:
		elem, e := ResolvePretype(t.Elem, env)
		if e.HasErrors() {
			return nil, e
		}
		return ast.TArray{Elem: elem}, nil
	default:
		return nil, nil
	}
}

func firstDup(r *ast.PRecord) string {
	seen := map[string]bool{}
	for _, f := range r.Fields {
		if seen[f.Name] {
			return f.Name
		}
		seen[f.Name] = true
	}
	return ""
}

func firstDupUnion(u *ast.PUnion) string {
	seen := map[string]bool{}
	for _, c := range u.Cases {
		if seen[c.Label] {
			return c.Label
		}
		seen[c.Label] = true
	}
	return ""
}
