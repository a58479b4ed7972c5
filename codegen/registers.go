package codegen

import (
	"fmt"

	"github.com/hygge-lang/hygge/token"
)

// Integer and floating-point register banks a target index can resolve
// to, ordered by the naive "pick the next free register" allocation
// discipline of spec §4.6: the caller-saved t-bank first, then spilling
// into the callee-saved s-bank once an expression (or a function's
// argument list) nests deeper than seven registers. s0 is reserved for
// the frame pointer alias `fp` and is never handed out by this pool;
// s11/fs11 are reserved as dedicated scratch registers for data-label
// address loads (see labelScratch below), one register short of the
// allocator's own depth limit -- a documented simplification rather
// than a real allocator's spill-to-stack.
var intTargetRegs = []string{
	"t0", "t1", "t2", "t3", "t4", "t5", "t6",
	"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10",
}

var fpTargetRegs = []string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7", "ft8", "ft9", "ft10", "ft11",
	"fs1", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7", "fs8", "fs9", "fs10",
}

// argRegBase is the first target-pool index handed to a directly
// let-bound function's arguments, so that the function body's own
// scratch computation can start at target index 0 (spec §4.6: "body is
// compiled starting at registers (0, 0)") without ever colliding with
// an argument's permanent home -- arguments instead occupy the
// callee-saved tail of the pool, which survives calls the body itself
// makes.
const argRegBase = 7 // intTargetRegs[7] == "s1"
const fpArgRegBase = 12 // fpTargetRegs[12] == "fs1"

// maxRegArgs is how many arguments of one kind (int or float) a call
// passes in registers, one per a/fa calling-convention register below;
// beyond this, an argument is bound to a stack frame slot instead (spec
// §4.6 "Variable storage").
var maxRegArgs = len(argIntRegs)
var maxFpRegArgs = len(argFpRegs)

// argIntRegs / argFpRegs are the caller/callee calling-convention
// registers (spec §4.6 "caller-saves convention over the register
// banks {a0-a7,t0-t6} and {fa0-fa7,ft0-ft11}").
var argIntRegs = []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}
var argFpRegs = []string{"fa0", "fa1", "fa2", "fa3", "fa4", "fa5", "fa6", "fa7"}

// intLabelScratch / fpLabelScratch hold the address of a data-segment
// label just long enough to load through it; reserved outside the
// normal target pool so a label load never clobbers a live value (spec
// §9 "Label counter" note: this repository's generator additionally
// reserves one scratch register per bank for this purpose).
const intLabelScratch = "s11"
const fpLabelScratch = "fs11"

// calleeSaved{Int,Fp} are pushed in every function prologue and popped
// in the epilogue (spec §4.6 "prologue saves all callee-saved
// registers"); `ra` is saved alongside them since any non-leaf function
// body will clobber it.
var calleeSavedInt = append(append([]string{}, intTargetRegs[argRegBase:]...), "ra")
var calleeSavedFp = append([]string{}, fpTargetRegs[fpArgRegBase:]...)

// intReg resolves a target index to a concrete integer register name,
// failing as an internal bug (spec §7 item 6) if an expression nests
// deeper than this naive allocator's register pool -- a real allocator
// would spill to the stack instead; this generator does not.
func intReg(pos token.Position, i int) (string, error) {
	if i < 0 || i >= len(intTargetRegs) {
		return "", fmt.Errorf("expression nests too deeply for the naive register allocator (target index %d)", i)
	}
	return intTargetRegs[i], nil
}

func fpReg(pos token.Position, i int) (string, error) {
	if i < 0 || i >= len(fpTargetRegs) {
		return "", fmt.Errorf("expression nests too deeply for the naive fp register allocator (target index %d)", i)
	}
	return fpTargetRegs[i], nil
}
