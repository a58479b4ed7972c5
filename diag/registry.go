package diag

import "fmt"

// MessageFunc renders a diagnostic's message from its arguments, the
// way the teacher's ErrorCreator.Message does.
type MessageFunc func(args ...any) string

// Registry maps a diagnostic id to the function that renders its
// message. Grounded on report.ErrorCreatorMap: ids are grouped by the
// pipeline stage that raises them (check/, eval/, gen/), and within each
// stage by the spec §7 taxonomy item they belong to.
var Registry = map[string]MessageFunc{
	// --- name resolution (spec §7 item 2) ---
	"check/var/undefined": func(a ...any) string {
		return fmt.Sprintf("undefined variable %q", a[0])
	},
	"check/type/undefined": func(a ...any) string {
		return fmt.Sprintf("undefined type %q", a[0])
	},
	"check/type/redefined": func(a ...any) string {
		return fmt.Sprintf("type %q is already defined in this scope", a[0])
	},
	"check/type/primitive-redefine": func(a ...any) string {
		return fmt.Sprintf("cannot redefine built-in type %q", a[0])
	},
	"check/type/self-recursive": func(a ...any) string {
		return fmt.Sprintf("invalid recursive definition: type %q is defined as itself", a[0])
	},
	"check/field/duplicate": func(a ...any) string {
		return fmt.Sprintf("duplicate field name %q", a[0])
	},
	"check/label/duplicate": func(a ...any) string {
		return fmt.Sprintf("duplicate union label %q", a[0])
	},
	"check/arg/duplicate": func(a ...any) string {
		return fmt.Sprintf("duplicate argument name %q", a[0])
	},

	// --- type mismatch (spec §7 item 3) ---
	"check/sub/fail": func(a ...any) string {
		return fmt.Sprintf("type %v is not a subtype of %v", a[0], a[1])
	},
	"check/binop/mismatch": func(a ...any) string {
		return fmt.Sprintf("operator %v requires both operands to be Int or both Float, got %v and %v", a[0], a[1], a[2])
	},
	"check/rem/notint": func(a ...any) string {
		return "Rem requires both operands to be Int"
	},
	"check/sqrt/notfloat": func(a ...any) string {
		return "Sqrt requires a Float operand"
	},
	"check/bitwise/notint": func(a ...any) string {
		return fmt.Sprintf("bitwise operator %v requires Int operands", a[0])
	},
	"check/logical/notbool": func(a ...any) string {
		return fmt.Sprintf("logical operator %v requires Bool operands", a[0])
	},
	"check/neg/notint": func(a ...any) string {
		return "Neg requires an Int operand (Float negation is not supported)"
	},
	"check/print/badtype": func(a ...any) string {
		return fmt.Sprintf("print/println cannot print a value of type %v", a[0])
	},
	"check/assert/notbool": func(a ...any) string {
		return "assert requires a Bool operand"
	},
	"check/syscall/unknown": func(a ...any) string {
		return fmt.Sprintf("unknown syscall number %v", a[0])
	},
	"check/syscall/argcount": func(a ...any) string {
		return fmt.Sprintf("syscall %v expects %v arguments, got %v", a[0], a[1], a[2])
	},
	"check/syscall/argtype": func(a ...any) string {
		return fmt.Sprintf("syscall %v argument %v: expected %v, got %v", a[0], a[1], a[2], a[3])
	},
	"check/if/branch-mismatch": func(a ...any) string {
		return fmt.Sprintf("if branches have incompatible types %v and %v", a[0], a[1])
	},
	"check/assign/target": func(a ...any) string {
		return "assignment target must be a mutable variable, a mutable field, or an array element"
	},
	"check/assign/immutable": func(a ...any) string {
		return fmt.Sprintf("cannot assign to immutable variable %q", a[0])
	},
	"check/assign/immutable-field": func(a ...any) string {
		return fmt.Sprintf("cannot assign to immutable field %q", a[0])
	},
	"check/lambda/arity": func(a ...any) string {
		return fmt.Sprintf("function expects %v arguments, got %v", a[0], a[1])
	},
	"check/apply/notfun": func(a ...any) string {
		return fmt.Sprintf("cannot apply a value of type %v, which is not a function", a[0])
	},
	"check/struct/field-missing": func(a ...any) string {
		return fmt.Sprintf("record has no field %q", a[0])
	},
	"check/match/label-missing": func(a ...any) string {
		return fmt.Sprintf("case label %q is not a label of union %v", a[0], a[1])
	},
	"check/match/not-union": func(a ...any) string {
		return fmt.Sprintf("match requires a union type, got %v", a[0])
	},
	"check/match/case-duplicate": func(a ...any) string {
		return fmt.Sprintf("duplicate match case label %q", a[0])
	},
	"check/match/branch-mismatch": func(a ...any) string {
		return fmt.Sprintf("match case for %q has a type incompatible with preceding cases: %v vs %v", a[0], a[1], a[2])
	},
	"check/array/cons-length": func(a ...any) string {
		return "array constructor length must be Int"
	},
	"check/array/not-array": func(a ...any) string {
		return fmt.Sprintf("expected an array type, got %v", a[0])
	},
	"check/array/index-notint": func(a ...any) string {
		return "array index must be Int"
	},
	"check/pointer/in-source": func(a ...any) string {
		return "a heap pointer cannot appear in source"
	},

	// --- escape (spec §7 item 4) ---
	"check/type/escape": func(a ...any) string {
		return fmt.Sprintf("type alias %q escapes the scope in which it was declared", a[0])
	},

	// --- runtime stuck (spec §7 item 5) ---
	"eval/stuck/generic": func(a ...any) string {
		return fmt.Sprintf("stuck: %v", a[0])
	},
	"eval/stuck/assert": func(a ...any) string {
		return "assertion failed"
	},
	"eval/stuck/assign-immutable": func(a ...any) string {
		return fmt.Sprintf("cannot assign to non-mutable %q", a[0])
	},
	"eval/stuck/out-of-bounds": func(a ...any) string {
		return fmt.Sprintf("array index %v out of bounds for length %v", a[0], a[1])
	},
	"eval/stuck/descriptor-mismatch": func(a ...any) string {
		return fmt.Sprintf("heap value at address %v is not a %v", a[0], a[1])
	},
	"eval/stuck/syscall": func(a ...any) string {
		return fmt.Sprintf("unhandled syscall %v", a[0])
	},
	"eval/stuck/match": func(a ...any) string {
		return fmt.Sprintf("no case matches label %q", a[0])
	},
	"eval/stuck/arity": func(a ...any) string {
		return fmt.Sprintf("function expects %v arguments, got %v", a[0], a[1])
	},
	"eval/stuck/div-by-zero": func(a ...any) string {
		return "division by zero"
	},

	// --- internal bug (spec §7 item 6) ---
	"gen/bug/pointer": func(a ...any) string {
		return "code generator assumption violated: a Pointer node reached code generation"
	},
	"gen/bug/shape": func(a ...any) string {
		return fmt.Sprintf("code generator assumption violated on construct %v: %v", a[0], a[1])
	},
	"gen/bug/array-length": func(a ...any) string {
		return "array constructor length must be an integer literal for code generation"
	},
	"gen/bug/unsupported": func(a ...any) string {
		return fmt.Sprintf("%v is not supported by this code generator", a[0])
	},
}
