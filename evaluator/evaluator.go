// Package evaluator is the semantic oracle of spec §4.4: a recursive
// tree-walking evaluator over the checked AST, grounded on the
// teacher's root-level evaluator.Eval (one switch case per node kind,
// recursing into children and propagating an *object.Error's Trace up
// through the call stack via node.GetToken()). Mutable variables live
// in one shared, save-and-restore map rather than the teacher's
// object.Environment chain, since this language's Let/LetMut/For/Match
// binders are all strictly stack-scoped; heap-allocated records and
// arrays live in a separate address-keyed store (spec §3 "Runtime
// values").
package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/diag"
	"github.com/hygge-lang/hygge/token"
)

// HeapObj is one heap-allocated value: a record (Fields non-nil) or an
// array (Elems non-nil), never both, grounded on spec §3's "two heap
// descriptor kinds, and a mismatch between the kind expected at a
// dereference site and the kind actually stored there is a stuck term."
type HeapObj struct {
	Fields map[string]*ast.Node
	Elems  []*ast.Node
}

// Env is the evaluator's mutable runtime state: the current variable
// bindings, the heap, and the two I/O side-channels the teacher's REPL
// also threads through (stdin reads, stdout writes).
type Env struct {
	vars     map[string]*ast.Node
	heap     map[int]*HeapObj
	nextAddr int

	Print    func(string)
	ReadLine func() (string, bool)

	Exited   bool
	ExitCode int
}

// NewEnv returns a fresh evaluator state; print and readLine may be nil,
// in which case Print/PrintLn are no-ops and ReadInt/ReadFloat always
// fail (return Unit), which is convenient for tests.
func NewEnv(print func(string), readLine func() (string, bool)) *Env {
	if print == nil {
		print = func(string) {}
	}
	if readLine == nil {
		readLine = func() (string, bool) { return "", false }
	}
	return &Env{vars: map[string]*ast.Node{}, heap: map[int]*HeapObj{}, Print: print, ReadLine: readLine}
}

func (env *Env) alloc(obj *HeapObj) *ast.Node {
	addr := env.nextAddr
	env.nextAddr++
	env.heap[addr] = obj
	return &ast.Node{X: &ast.Pointer{Addr: addr}}
}

func unit() *ast.Node             { return &ast.Node{X: &ast.UnitLit{}} }
func boolv(b bool) *ast.Node      { return &ast.Node{X: &ast.BoolLit{Value: b}} }
func intv(i int) *ast.Node        { return &ast.Node{X: &ast.IntLit{Value: i}} }
func floatv(f float64) *ast.Node  { return &ast.Node{X: &ast.FloatLit{Value: f}} }

// Eval fully evaluates n to a value under env, or returns a stuck-term
// diagnostic (spec §7 item 5). It is the recursive big-step evaluator
// the teacher's Eval function is grounded on; the small-step relation
// spec §4.4 specifies is realized as repeated application of this
// function to subterms, which is observationally equivalent for this
// deterministic language (a diverging while loop simply never returns).
func Eval(env *Env, n *ast.Node) (*ast.Node, *diag.Error) {
	if env.Exited {
		return n, nil
	}
	v, err := eval(env, n)
	if err != nil {
		err.AddToTrace(n.Pos)
	}
	return v, err
}

func eval(env *Env, n *ast.Node) (*ast.Node, *diag.Error) {
	switch e := n.X.(type) {
	case *ast.UnitLit, *ast.BoolLit, *ast.IntLit, *ast.FloatLit, *ast.StringLit:
		return n, nil

	case *ast.Var:
		v, ok := env.vars[e.Name]
		if !ok {
			return nil, diag.New("eval/stuck/generic", n.Pos, fmt.Sprintf("unbound variable %q", e.Name))
		}
		return v, nil

	case *ast.Binary:
		return evalBinary(env, n, e)

	case *ast.CompoundAssign:
		cur, err := Eval(env, e.Target)
		if err != nil {
			return nil, err
		}
		rhs, err := Eval(env, e.Value)
		if err != nil {
			return nil, err
		}
		newVal, err := applyBinary(n.Pos, e.Op, cur, rhs)
		if err != nil {
			return nil, err
		}
		if err := assignTo(env, e.Target, newVal); err != nil {
			return nil, err
		}
		return unit(), nil

	case *ast.BNot:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		return intv(^asInt(x)), nil

	case *ast.Not:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		return boolv(!asBool(x)), nil

	case *ast.Neg:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		return intv(-asInt(x)), nil

	case *ast.Sqrt:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		f := asFloat(x)
		if f < 0 {
			return nil, diag.New("eval/stuck/generic", n.Pos, "sqrt of a negative number")
		}
		return floatv(sqrt(f)), nil

	case *ast.ReadInt:
		line, ok := env.ReadLine()
		if !ok {
			return unit(), nil
		}
		i, perr := strconv.Atoi(strings.TrimSpace(line))
		if perr != nil {
			return unit(), nil
		}
		return intv(i), nil

	case *ast.ReadFloat:
		line, ok := env.ReadLine()
		if !ok {
			return unit(), nil
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if perr != nil {
			return unit(), nil
		}
		return floatv(f), nil

	case *ast.Print:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		env.Print(render(x))
		return unit(), nil

	case *ast.PrintLn:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		env.Print(render(x) + "\n")
		return unit(), nil

	case *ast.Syscall:
		return evalSyscall(env, n, e)

	case *ast.Preinc:
		old, ok := env.vars[e.Target]
		if !ok {
			return nil, diag.New("eval/stuck/generic", n.Pos, fmt.Sprintf("unbound variable %q", e.Target))
		}
		nv := stepInc(old, e.Delta)
		env.vars[e.Target] = nv
		return nv, nil

	case *ast.Postinc:
		old, ok := env.vars[e.Target]
		if !ok {
			return nil, diag.New("eval/stuck/generic", n.Pos, fmt.Sprintf("unbound variable %q", e.Target))
		}
		env.vars[e.Target] = stepInc(old, e.Delta)
		return old, nil

	case *ast.If:
		c, err := Eval(env, e.Cond)
		if err != nil {
			return nil, err
		}
		if asBool(c) {
			return Eval(env, e.Then)
		}
		return Eval(env, e.Else)

	case *ast.Seq:
		var last *ast.Node = unit()
		for _, it := range e.Items {
			v, err := Eval(env, it)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.TypeDecl:
		return Eval(env, e.Scope)

	case *ast.Ascription:
		return Eval(env, e.X)

	case *ast.Assertion:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		if !asBool(x) {
			return nil, diag.New("eval/stuck/assert", n.Pos)
		}
		return unit(), nil

	case *ast.Copy:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		return env.deepCopy(x), nil

	case *ast.Let:
		v, err := Eval(env, e.Init)
		if err != nil {
			return nil, err
		}
		return env.withBinding(e.Name, v, e.Scope)
	case *ast.LetT:
		v, err := Eval(env, e.Init)
		if err != nil {
			return nil, err
		}
		return env.withBinding(e.Name, v, e.Scope)
	case *ast.LetMut:
		v, err := Eval(env, e.Init)
		if err != nil {
			return nil, err
		}
		return env.withBinding(e.Name, v, e.Scope)

	case *ast.Assign:
		v, err := Eval(env, e.Value)
		if err != nil {
			return nil, err
		}
		if err := assignTo(env, e.Target, v); err != nil {
			return nil, err
		}
		return unit(), nil

	case *ast.While:
		for {
			c, err := Eval(env, e.Cond)
			if err != nil {
				return nil, err
			}
			if !asBool(c) {
				return unit(), nil
			}
			if _, err := Eval(env, e.Body); err != nil {
				return nil, err
			}
			if env.Exited {
				return unit(), nil
			}
		}

	case *ast.For:
		init, err := Eval(env, e.Init)
		if err != nil {
			return nil, err
		}
		old, had := env.vars[e.Ident]
		env.vars[e.Ident] = init
		defer func() {
			if had {
				env.vars[e.Ident] = old
			} else {
				delete(env.vars, e.Ident)
			}
		}()
		for {
			c, err := Eval(env, e.Cond)
			if err != nil {
				return nil, err
			}
			if !asBool(c) {
				return unit(), nil
			}
			if _, err := Eval(env, e.Body); err != nil {
				return nil, err
			}
			if env.Exited {
				return unit(), nil
			}
			if e.Step != nil {
				if _, err := Eval(env, e.Step); err != nil {
					return nil, err
				}
			}
		}

	case *ast.Lambda:
		return n, nil

	case *ast.Application:
		fn, err := Eval(env, e.Fn)
		if err != nil {
			return nil, err
		}
		lambda, ok := fn.X.(*ast.Lambda)
		if !ok {
			return nil, diag.New("eval/stuck/generic", n.Pos, "application target is not a function")
		}
		if len(lambda.Args) != len(e.Args) {
			return nil, diag.New("eval/stuck/arity", n.Pos, len(lambda.Args), len(e.Args))
		}
		body := lambda.Body
		for i, a := range lambda.Args {
			argVal, err := Eval(env, e.Args[i])
			if err != nil {
				return nil, err
			}
			body = ast.Subst(body, a.Name, argVal)
		}
		return Eval(env, body)

	case *ast.StructCons:
		fields := map[string]*ast.Node{}
		for _, f := range e.Fields {
			v, err := Eval(env, f.Init)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
		}
		return env.alloc(&HeapObj{Fields: fields}), nil

	case *ast.FieldSelect:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		obj, addr, err := env.derefStruct(x)
		if err != nil {
			return nil, err
		}
		v, ok := obj.Fields[e.Field]
		if !ok {
			return nil, diag.New("eval/stuck/generic", n.Pos, fmt.Sprintf("record at address %v has no field %q", addr, e.Field))
		}
		return v, nil

	case *ast.UnionCons:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		return &ast.Node{X: &ast.UnionCons{Label: e.Label, X: x}}, nil

	case *ast.Match:
		x, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		u, ok := x.X.(*ast.UnionCons)
		if !ok {
			return nil, diag.New("eval/stuck/generic", n.Pos, "match target is not a union value")
		}
		for _, c := range e.Cases {
			if c.Label == u.Label {
				return env.withBinding(c.Var, u.X, c.Body)
			}
		}
		return nil, diag.New("eval/stuck/match", n.Pos, u.Label)

	case *ast.ArrayCons:
		lenNode, err := Eval(env, e.Len)
		if err != nil {
			return nil, err
		}
		n0 := asInt(lenNode)
		if n0 < 0 {
			return nil, diag.New("eval/stuck/generic", n.Pos, "array length must be non-negative")
		}
		init, err := Eval(env, e.Init)
		if err != nil {
			return nil, err
		}
		elems := make([]*ast.Node, n0)
		for i := range elems {
			elems[i] = init
		}
		return env.alloc(&HeapObj{Elems: elems}), nil

	case *ast.ArrayElem:
		arr, err := Eval(env, e.Arr)
		if err != nil {
			return nil, err
		}
		idx, err := Eval(env, e.Index)
		if err != nil {
			return nil, err
		}
		obj, _, err := env.derefArray(arr)
		if err != nil {
			return nil, err
		}
		i := asInt(idx)
		if i < 0 || i >= len(obj.Elems) {
			return nil, diag.New("eval/stuck/out-of-bounds", n.Pos, i, len(obj.Elems))
		}
		return obj.Elems[i], nil

	case *ast.ArrayLength:
		arr, err := Eval(env, e.Arr)
		if err != nil {
			return nil, err
		}
		obj, _, err := env.derefArray(arr)
		if err != nil {
			return nil, err
		}
		return intv(len(obj.Elems)), nil

	case *ast.Pointer:
		return n, nil
	}
	return nil, diag.New("eval/stuck/generic", n.Pos, fmt.Sprintf("unhandled node %T", n.X))
}

// withBinding evaluates scope with name bound to v, restoring whatever
// binding name previously had (or removing it) before returning -- the
// stack-scoping rule common to Let/LetT/LetMut/Match arms/For.
func (env *Env) withBinding(name string, v *ast.Node, scope *ast.Node) (*ast.Node, *diag.Error) {
	old, had := env.vars[name]
	env.vars[name] = v
	result, err := Eval(env, scope)
	if had {
		env.vars[name] = old
	} else {
		delete(env.vars, name)
	}
	return result, err
}

func assignTo(env *Env, target *ast.Node, v *ast.Node) *diag.Error {
	switch t := target.X.(type) {
	case *ast.Var:
		env.vars[t.Name] = v
		return nil
	case *ast.FieldSelect:
		x, err := Eval(env, t.X)
		if err != nil {
			return err
		}
		obj, _, err := env.derefStruct(x)
		if err != nil {
			return err
		}
		obj.Fields[t.Field] = v
		return nil
	case *ast.ArrayElem:
		arr, err := Eval(env, t.Arr)
		if err != nil {
			return err
		}
		idx, err := Eval(env, t.Index)
		if err != nil {
			return err
		}
		obj, _, err := env.derefArray(arr)
		if err != nil {
			return err
		}
		i := asInt(idx)
		if i < 0 || i >= len(obj.Elems) {
			return diag.New("eval/stuck/out-of-bounds", target.Pos, i, len(obj.Elems))
		}
		obj.Elems[i] = v
		return nil
	default:
		return diag.New("eval/stuck/generic", target.Pos, "assignment target is not assignable")
	}
}

func (env *Env) derefStruct(x *ast.Node) (*HeapObj, int, *diag.Error) {
	ptr, ok := x.X.(*ast.Pointer)
	if !ok {
		return nil, 0, diag.New("eval/stuck/generic", x.Pos, "expected a record value")
	}
	obj := env.heap[ptr.Addr]
	if obj == nil || obj.Fields == nil {
		return nil, ptr.Addr, diag.New("eval/stuck/descriptor-mismatch", x.Pos, ptr.Addr, "record")
	}
	return obj, ptr.Addr, nil
}

func (env *Env) derefArray(x *ast.Node) (*HeapObj, int, *diag.Error) {
	ptr, ok := x.X.(*ast.Pointer)
	if !ok {
		return nil, 0, diag.New("eval/stuck/generic", x.Pos, "expected an array value")
	}
	obj := env.heap[ptr.Addr]
	if obj == nil || obj.Elems == nil {
		return nil, ptr.Addr, diag.New("eval/stuck/descriptor-mismatch", x.Pos, ptr.Addr, "array")
	}
	return obj, ptr.Addr, nil
}

// deepCopy implements the resolved open question on Copy (spec §9):
// shallow at the pointer for arrays (the copy shares the same backing
// heap object), deep through record fields (each field is itself
// copied, recursively).
func (env *Env) deepCopy(x *ast.Node) *ast.Node {
	ptr, ok := x.X.(*ast.Pointer)
	if !ok {
		return x
	}
	obj := env.heap[ptr.Addr]
	if obj == nil {
		return x
	}
	if obj.Elems != nil {
		return x
	}
	fields := make(map[string]*ast.Node, len(obj.Fields))
	for k, v := range obj.Fields {
		fields[k] = env.deepCopy(v)
	}
	return env.alloc(&HeapObj{Fields: fields})
}

func stepInc(old *ast.Node, delta int) *ast.Node {
	switch v := old.X.(type) {
	case *ast.FloatLit:
		return floatv(v.Value + float64(delta))
	default:
		return intv(asInt(old) + delta)
	}
}

func evalBinary(env *Env, n *ast.Node, e *ast.Binary) (*ast.Node, *diag.Error) {
	if e.Op == ast.OpScAnd {
		l, err := Eval(env, e.Left)
		if err != nil {
			return nil, err
		}
		if !asBool(l) {
			return boolv(false), nil
		}
		return Eval(env, e.Right)
	}
	if e.Op == ast.OpScOr {
		l, err := Eval(env, e.Left)
		if err != nil {
			return nil, err
		}
		if asBool(l) {
			return boolv(true), nil
		}
		return Eval(env, e.Right)
	}
	l, err := Eval(env, e.Left)
	if err != nil {
		return nil, err
	}
	r, err := Eval(env, e.Right)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.Pos, e.Op, l, r)
}

func applyBinary(pos token.Position, op ast.BinOp, l, r *ast.Node) (*ast.Node, *diag.Error) {
	_, lIsFloat := l.X.(*ast.FloatLit)
	_, rIsFloat := r.X.(*ast.FloatLit)
	useFloat := lIsFloat || rIsFloat

	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if useFloat {
			lf, rf := asFloat(l), asFloat(r)
			switch op {
			case ast.OpAdd:
				return floatv(lf + rf), nil
			case ast.OpSub:
				return floatv(lf - rf), nil
			case ast.OpMul:
				return floatv(lf * rf), nil
			case ast.OpDiv:
				if rf == 0 {
					return nil, diag.New("eval/stuck/div-by-zero", pos)
				}
				return floatv(lf / rf), nil
			}
		}
		li, ri := asInt(l), asInt(r)
		switch op {
		case ast.OpAdd:
			return intv(li + ri), nil
		case ast.OpSub:
			return intv(li - ri), nil
		case ast.OpMul:
			return intv(li * ri), nil
		case ast.OpDiv:
			if ri == 0 {
				return nil, diag.New("eval/stuck/div-by-zero", pos)
			}
			return intv(li / ri), nil
		}
	case ast.OpRem:
		ri := asInt(r)
		if ri == 0 {
			return nil, diag.New("eval/stuck/div-by-zero", pos)
		}
		return intv(asInt(l) % ri), nil
	case ast.OpBAnd:
		return intv(asInt(l) & asInt(r)), nil
	case ast.OpBOr:
		return intv(asInt(l) | asInt(r)), nil
	case ast.OpBXor:
		return intv(asInt(l) ^ asInt(r)), nil
	case ast.OpBSL:
		return intv(asInt(l) << uint(asInt(r))), nil
	case ast.OpBSR:
		return intv(asInt(l) >> uint(asInt(r))), nil
	case ast.OpAnd:
		return boolv(asBool(l) && asBool(r)), nil
	case ast.OpOr:
		return boolv(asBool(l) || asBool(r)), nil
	case ast.OpXor:
		return boolv(asBool(l) != asBool(r)), nil
	case ast.OpEq:
		return boolv(valuesEqual(l, r)), nil
	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		if useFloat {
			lf, rf := asFloat(l), asFloat(r)
			return boolv(compareFloat(op, lf, rf)), nil
		}
		return boolv(compareInt(op, asInt(l), asInt(r))), nil
	}
	return nil, diag.New("eval/stuck/generic", pos, fmt.Sprintf("unsupported operator %v", op))
}

func compareInt(op ast.BinOp, l, r int) bool {
	switch op {
	case ast.OpLess:
		return l < r
	case ast.OpLessEq:
		return l <= r
	case ast.OpGreater:
		return l > r
	default:
		return l >= r
	}
}

func compareFloat(op ast.BinOp, l, r float64) bool {
	switch op {
	case ast.OpLess:
		return l < r
	case ast.OpLessEq:
		return l <= r
	case ast.OpGreater:
		return l > r
	default:
		return l >= r
	}
}

func valuesEqual(l, r *ast.Node) bool {
	switch lv := l.X.(type) {
	case *ast.IntLit:
		rv, ok := r.X.(*ast.IntLit)
		return ok && lv.Value == rv.Value
	case *ast.FloatLit:
		rv, ok := r.X.(*ast.FloatLit)
		return ok && lv.Value == rv.Value
	case *ast.BoolLit:
		rv, ok := r.X.(*ast.BoolLit)
		return ok && lv.Value == rv.Value
	case *ast.StringLit:
		rv, ok := r.X.(*ast.StringLit)
		return ok && lv.Value == rv.Value
	case *ast.UnitLit:
		_, ok := r.X.(*ast.UnitLit)
		return ok
	default:
		return false
	}
}

func asInt(n *ast.Node) int {
	switch v := n.X.(type) {
	case *ast.IntLit:
		return v.Value
	case *ast.FloatLit:
		return int(v.Value)
	default:
		return 0
	}
}

func asFloat(n *ast.Node) float64 {
	switch v := n.X.(type) {
	case *ast.FloatLit:
		return v.Value
	case *ast.IntLit:
		return float64(v.Value)
	default:
		return 0
	}
}

func asBool(n *ast.Node) bool {
	v, ok := n.X.(*ast.BoolLit)
	return ok && v.Value
}

func render(n *ast.Node) string {
	switch v := n.X.(type) {
	case *ast.IntLit:
		return strconv.Itoa(v.Value)
	case *ast.FloatLit:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *ast.BoolLit:
		return strconv.FormatBool(v.Value)
	case *ast.StringLit:
		return v.Value
	case *ast.UnitLit:
		return "()"
	default:
		return n.String()
	}
}

func evalSyscall(env *Env, n *ast.Node, e *ast.Syscall) (*ast.Node, *diag.Error) {
	args := make([]*ast.Node, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(env, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch e.Number {
	case 1: // PrintInt
		env.Print(strconv.Itoa(asInt(args[0])))
		return unit(), nil
	case 2: // PrintFloat
		env.Print(strconv.FormatFloat(asFloat(args[0]), 'g', -1, 64))
		return unit(), nil
	case 4: // PrintString
		env.Print(render(args[0]))
		return unit(), nil
	case 5: // ReadInt
		return eval(env, &ast.Node{X: &ast.ReadInt{}})
	case 6: // ReadFloat
		return eval(env, &ast.Node{X: &ast.ReadFloat{}})
	case 9: // Sbrk
		addr := env.nextAddr
		env.nextAddr += asInt(args[0])
		return intv(addr), nil
	case 10: // Exit
		env.Exited = true
		env.ExitCode = 0
		return unit(), nil
	case 11: // PrintChar
		env.Print(string(rune(asInt(args[0]))))
		return unit(), nil
	case 93, 17: // Exit2
		env.Exited = true
		if len(args) > 0 {
			env.ExitCode = asInt(args[0])
		}
		return unit(), nil
	default:
		return unit(), nil
	}
}

func sqrt(f float64) float64 {
	if f == 0 {
		return 0
	}
	x := f
	for i := 0; i < 40; i++ {
		x = 0.5 * (x + f/x)
	}
	return x
}
