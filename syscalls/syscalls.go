// Package syscalls holds the one static registry of RARS/SPIM syscall
// numbers shared by the checker (to validate argument/return types) and
// the code generator (to know which registers to load/store), so the
// two stages can never drift out of sync (spec §4.5/§4.6).
package syscalls

import (
	"fmt"

	"github.com/hygge-lang/hygge/ast"
)

// Signature describes one syscall's calling convention in Hygge terms:
// the argument types expected in a0..a(n-1) (or fa0.. for Float args)
// and the type returned in a0/fa0, if any.
type Signature struct {
	Number int
	Args   []ast.Type
	Ret    ast.Type // nil if the syscall returns nothing
}

// registry is keyed by syscall number. Numbers and signatures are
// grounded on the RARS/SPIM syscall table the teacher's code generator
// targets.
var registry = map[int]Signature{
	1:  {Number: 1, Args: []ast.Type{ast.TInt{}}},                 // PrintInt
	2:  {Number: 2, Args: []ast.Type{ast.TFloat{}}},                // PrintFloat
	4:  {Number: 4, Args: []ast.Type{ast.TString{}}},               // PrintString
	5:  {Number: 5, Ret: ast.TInt{}},                               // ReadInt
	6:  {Number: 6, Ret: ast.TFloat{}},                             // ReadFloat
	9:  {Number: 9, Args: []ast.Type{ast.TInt{}}, Ret: ast.TInt{}}, // Sbrk
	10: {Number: 10},                                               // Exit
	11: {Number: 11, Args: []ast.Type{ast.TInt{}}},                 // PrintChar
	93: {Number: 93, Args: []ast.Type{ast.TInt{}}},                 // Exit2

	// RARS extensions: file and time syscalls exposed unchanged, argument
	// shapes are all Int in Hygge's syscall calling convention since the
	// language has no separate pointer/handle type exposed to source.
	17: {Number: 17, Args: []ast.Type{ast.TInt{}}}, // Exit2 (legacy alias)
	30: {Number: 30, Ret: ast.TInt{}},               // Time (low word)
	31: {Number: 31, Args: []ast.Type{ast.TInt{}}},  // MIDI out (unused here, signature only)
	32: {Number: 32, Args: []ast.Type{ast.TInt{}}},  // Sleep
	33: {Number: 33, Args: []ast.Type{ast.TInt{}, ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	34: {Number: 34, Args: []ast.Type{ast.TInt{}}},
	35: {Number: 35, Ret: ast.TInt{}},
	36: {Number: 36, Args: []ast.Type{ast.TInt{}}},
	40: {Number: 40, Args: []ast.Type{ast.TInt{}}, Ret: ast.TInt{}},
	41: {Number: 41, Ret: ast.TInt{}},
	42: {Number: 42, Args: []ast.Type{ast.TInt{}, ast.TInt{}}, Ret: ast.TInt{}},
	43: {Number: 43, Args: []ast.Type{ast.TInt{}}},
	44: {Number: 44, Args: []ast.Type{ast.TInt{}}},
	50: {Number: 50, Ret: ast.TInt{}},
	51: {Number: 51, Args: []ast.Type{ast.TInt{}}, Ret: ast.TInt{}},
	52: {Number: 52, Args: []ast.Type{ast.TInt{}, ast.TInt{}}},
	53: {Number: 53, Args: []ast.Type{ast.TInt{}}},
	54: {Number: 54, Args: []ast.Type{ast.TInt{}}},
	55: {Number: 55, Args: []ast.Type{ast.TInt{}}},
	56: {Number: 56, Args: []ast.Type{ast.TInt{}}},
	57: {Number: 57, Args: []ast.Type{ast.TInt{}}},
	58: {Number: 58, Args: []ast.Type{ast.TInt{}}},
	59: {Number: 59, Args: []ast.Type{ast.TInt{}}},
	60: {Number: 60, Args: []ast.Type{ast.TInt{}}},
	61: {Number: 61, Args: []ast.Type{ast.TInt{}}},
	62: {Number: 62, Args: []ast.Type{ast.TInt{}}},
	63: {Number: 63, Args: []ast.Type{ast.TInt{}}},
	64: {Number: 64, Args: []ast.Type{ast.TInt{}}},

	1024: {Number: 1024, Args: []ast.Type{ast.TInt{}}}, // extended sandbox exit
}

// Lookup returns the signature for a syscall number and whether it was
// found in the registry.
func Lookup(n int) (Signature, bool) {
	sig, ok := registry[n]
	return sig, ok
}

// Name renders a human-readable name for a syscall number for use in
// diagnostics, falling back to a generic "syscall_<n>" for numbers this
// registry doesn't name individually (spec §7 error-message rules).
func Name(n int) string {
	names := map[int]string{
		1: "PrintInt", 2: "PrintFloat", 4: "PrintString", 5: "ReadInt",
		6: "ReadFloat", 9: "Sbrk", 10: "Exit", 11: "PrintChar", 93: "Exit2",
	}
	if name, ok := names[n]; ok {
		return name
	}
	return fmt.Sprintf("syscall_%d", n)
}
