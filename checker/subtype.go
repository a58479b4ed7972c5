// Package checker implements the bidirectional subtyping type checker
// (spec §4.3), grounded on the teacher's compiler/types.go
// (AbstractType.IsSubtypeOf / IsMoreSpecific) for the subtyping shape
// and compiler/environment.go for the chained typing environment.
package checker

import "github.com/hygge-lang/hygge/ast"

// pair is an (unexpanded) type pair under the coinductive assumption
// set A, used as a greatest-fixed-point guard against infinite
// unfolding of mutually recursive aliases (spec §4.3, §9).
type pair struct{ sub, sup ast.Type }

func typeKey(t ast.Type) string { return t.String() }

func inAssumed(assumed []pair, sub, sup ast.Type) bool {
	for _, p := range assumed {
		if typeKey(p.sub) == typeKey(sub) && typeKey(p.sup) == typeKey(sup) {
			return true
		}
	}
	return false
}

// IsSubtype implements the coinductive predicate t1 <: t2 of spec
// §4.3/§9: the assumption set A must be checked *before* either side is
// expanded through an alias, so that a pair reached a second time via a
// cycle of recursive aliases is accepted rather than looping forever.
func IsSubtype(t1, t2 ast.Type, aliases ast.AliasTable, assumed []pair) (bool, error) {
	// Rule 1: reflexive on syntactic equality.
	if t1.Equals(t2) {
		return true, nil
	}
	// Rule 2: already assumed (greatest-fixed-point closure).
	if inAssumed(assumed, t1, t2) {
		return true, nil
	}
	// Rule 3: if either side is a type variable, expand it via the alias
	// table, remembering the original (unexpanded) pair in A before
	// recursing.
	if v1, ok := t1.(ast.TVar); ok {
		expanded, err := ast.ExpandType(v1, aliases)
		if err != nil {
			return false, err
		}
		return IsSubtype(expanded, t2, aliases, append(assumed, pair{t1, t2}))
	}
	if v2, ok := t2.(ast.TVar); ok {
		expanded, err := ast.ExpandType(v2, aliases)
		if err != nil {
			return false, err
		}
		return IsSubtype(t1, expanded, aliases, append(assumed, pair{t1, t2}))
	}

	switch sup := t2.(type) {
	case ast.TRecord:
		sub, ok := t1.(ast.TRecord)
		if !ok {
			return false, nil
		}
		return recordSubtype(sub, sup, aliases, assumed)
	case ast.TUnion:
		sub, ok := t1.(ast.TUnion)
		if !ok {
			return false, nil
		}
		return unionSubtype(sub, sup, aliases, assumed)
	case ast.TArray:
		sub, ok := t1.(ast.TArray)
		if !ok {
			return false, nil
		}
		// Rule 6: arrays are invariant in element type unless equal.
		return sub.Elem.Equals(sup.Elem), nil
	case ast.TFun:
		sub, ok := t1.(ast.TFun)
		if !ok || len(sub.Args) != len(sup.Args) {
			return false, nil
		}
		for i := range sub.Args {
			// Function types reach this branch whenever a function value
			// is passed, bound or ascribed at a function type. Argument
			// types are compared covariantly here (the same direction as
			// the return type), not contravariantly.
			if ok2, err := IsSubtype(sub.Args[i], sup.Args[i], aliases, assumed); err != nil || !ok2 {
				return false, err
			}
		}
		return IsSubtype(sub.Ret, sup.Ret, aliases, assumed)
	}
	// Rule 7: otherwise reject.
	return false, nil
}

// recordSubtype implements rule 4: the subtype must have >= the fields
// of the supertype, in matching positional order and names; mutable
// supertype fields require a mutable, subtype-field-type match on the
// subtype side; width subtyping (extra trailing fields) and immutable
// depth subtyping are admitted.
func recordSubtype(sub, sup ast.TRecord, aliases ast.AliasTable, assumed []pair) (bool, error) {
	if len(sub.Fields) < len(sup.Fields) {
		return false, nil
	}
	for i, supField := range sup.Fields {
		subField := sub.Fields[i]
		if subField.Name != supField.Name {
			return false, nil
		}
		if supField.Mutable {
			if !subField.Mutable {
				return false, nil
			}
			// Mutable-field variance is invariant, implemented here as
			// "subtype field must be mutable and field types subtype
			// each other" per spec §4.3 rule 4.
			ok1, err := IsSubtype(subField.Type, supField.Type, aliases, assumed)
			if err != nil || !ok1 {
				return false, err
			}
			ok2, err := IsSubtype(supField.Type, subField.Type, aliases, assumed)
			if err != nil || !ok2 {
				return false, err
			}
			continue
		}
		ok, err := IsSubtype(subField.Type, supField.Type, aliases, assumed)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// unionSubtype implements rule 5: the subtype's labels must be a subset
// of the supertype's; for each shared label the subtype's case type
// must be a subtype of the supertype's.
func unionSubtype(sub, sup ast.TUnion, aliases ast.AliasTable, assumed []pair) (bool, error) {
	supByLabel := map[string]ast.Type{}
	for _, c := range sup.Cases {
		supByLabel[c.Label] = c.Type
	}
	for _, c := range sub.Cases {
		supType, ok := supByLabel[c.Label]
		if !ok {
			return false, nil
		}
		ok2, err := IsSubtype(c.Type, supType, aliases, assumed)
		if err != nil || !ok2 {
			return false, err
		}
	}
	return true, nil
}
