package ast

// Env is the typing environment carried by every node: variable name ->
// current type, alias name -> resolved definition, and the set of
// variable names currently declared mutable (spec §3). It is a
// persistent, chained structure extended functionally at every binding
// and restored on scope exit by simply discarding the extended Env and
// going back to its parent -- grounded on the teacher's
// compiler.Environment{Data map[string]Variable, Ext *Environment}.
type Env struct {
	vars     map[string]Type
	parent   *Env
	aliases  map[string]Type
	aparent  *Env
	mutables map[string]bool
	mparent  *Env
}

// NewEnv returns the empty environment at program entry.
func NewEnv() *Env {
	return &Env{}
}

func (e *Env) LookupVar(name string) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (e *Env) LookupAlias(name string) (Type, bool) {
	for env := e; env != nil; env = env.aparent {
		if t, ok := env.aliases[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (e *Env) IsMutable(name string) bool {
	for env := e; env != nil; env = env.mparent {
		if m, ok := env.mutables[name]; ok {
			return m
		}
	}
	return false
}

// WithVar returns a new environment identical to e except that name now
// maps to t; this also shadows any mutable declaration of the same name
// unless mutable is true, matching the spec's "LetMut adds the name to
// the mutables set, the others remove it (shadowing)" rule.
func (e *Env) WithVar(name string, t Type, mutable bool) *Env {
	return &Env{
		vars:     map[string]Type{name: t},
		parent:   e,
		aliases:  e.aliases,
		aparent:  e.aparent,
		mutables: map[string]bool{name: mutable},
		mparent:  e,
	}
}

func (e *Env) WithAlias(name string, t Type) *Env {
	return &Env{
		vars:     e.vars,
		parent:   e.parent,
		aliases:  map[string]Type{name: t},
		aparent:  e,
		mutables: e.mutables,
		mparent:  e.mparent,
	}
}

// AliasTable flattens the alias chain into the flat map ExpandType
// expects.
func (e *Env) AliasTable() AliasTable {
	out := AliasTable{}
	var walk func(*Env)
	walk = func(env *Env) {
		if env == nil {
			return
		}
		walk(env.aparent)
		for k, v := range env.aliases {
			out[k] = v
		}
	}
	walk(e)
	return out
}
