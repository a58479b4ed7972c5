// Command hygge is the thin subcommand dispatcher around the
// tokenize/parse/typecheck/interpret/compile pipeline, grounded on
// source/hub/hub.go's command loop and source/repl/repl.go's
// readline-backed REPL, plus an optional SQL audit trail (package
// audit) of every invocation, gated by -log-dsn or HYGGE_AUDIT_DSN,
// the way a production CLI logs what it was asked to do without that
// logging ever affecting what it did.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lmorg/readline"

	"github.com/hygge-lang/hygge/ast"
	"github.com/hygge-lang/hygge/audit"
	"github.com/hygge-lang/hygge/checker"
	"github.com/hygge-lang/hygge/codegen"
	"github.com/hygge-lang/hygge/evaluator"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("hygge", flag.ContinueOnError)
	logDSN := global.String("log-dsn", "", "DSN to append an audit row to (overrides HYGGE_AUDIT_DSN)")
	if err := global.Parse(args); err != nil {
		return 2
	}
	args = global.Args()
	if len(args) == 0 {
		usage()
		return 2
	}
	sub := args[0]
	rest := args[1:]

	start := time.Now()
	exitCode, input := dispatch(sub, rest)
	logInvocation(*logDSN, sub, input, exitCode, time.Since(start))
	return exitCode
}

func dispatch(sub string, rest []string) (code int, input string) {
	switch sub {
	case "tokenize":
		return cmdTokenize(rest)
	case "parse":
		return cmdParse(rest)
	case "typecheck":
		return cmdTypecheck(rest)
	case "interpret":
		return cmdInterpret(rest)
	case "compile":
		return cmdCompile(rest)
	case "repl":
		return cmdRepl(rest), ""
	case "audit":
		return cmdAudit(rest), ""
	default:
		usage()
		return 2, ""
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: hygge <subcommand> [args]

  tokenize   <file>           external scanner stub, see Non-goals
  parse      <file>           external parser stub, see Non-goals
  typecheck  <file.json>      read a serialized tree, print typed tree or diagnostics
  interpret  <file.json>      typecheck then evaluate, wiring stdin/stdout
  compile    <file.json> [-o out.s]   typecheck then emit RISC-V assembly
  repl                        interactive tokenize/parse/typecheck/interpret loop
  audit tail [-n N]           show the last N recorded invocations`)
}

// cmdTokenize and cmdParse are stubs: lexing and parsing are out of
// scope for this repository, so these subcommands only confirm that
// the file on disk already deserializes as an ast.Node, which is the
// seam an external scanner/parser is expected to produce.
func cmdTokenize(args []string) (int, string) {
	fs := flag.NewFlagSet("tokenize", flag.ContinueOnError)
	fs.Parse(args)
	path := fs.Arg(0)
	n, err := readTree(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	fmt.Println("ok: deserialized as a pre-parsed tree rooted at", fmt.Sprintf("%T", n.X))
	return 0, path
}

func cmdParse(args []string) (int, string) {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.Parse(args)
	path := fs.Arg(0)
	n, err := readTree(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	fmt.Println(n.String())
	return 0, path
}

func cmdTypecheck(args []string) (int, string) {
	fs := flag.NewFlagSet("typecheck", flag.ContinueOnError)
	fs.Parse(args)
	path := fs.Arg(0)
	n, err := readTree(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	checked, diags := checker.Check(n, ast.NewEnv())
	if diags.HasErrors() {
		fmt.Fprintln(os.Stderr, diags.Error())
		return 1, path
	}
	fmt.Println(checked.String())
	return 0, path
}

func cmdInterpret(args []string) (int, string) {
	fs := flag.NewFlagSet("interpret", flag.ContinueOnError)
	fs.Parse(args)
	path := fs.Arg(0)
	n, err := readTree(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	checked, diags := checker.Check(n, ast.NewEnv())
	if diags.HasErrors() {
		fmt.Fprintln(os.Stderr, diags.Error())
		return 1, path
	}
	stdin := bufio.NewScanner(os.Stdin)
	env := evaluator.NewEnv(
		func(s string) { fmt.Print(s) },
		func() (string, bool) {
			if !stdin.Scan() {
				return "", false
			}
			return stdin.Text(), true
		},
	)
	result, diagErr := evaluator.Eval(env, checked)
	if diagErr != nil {
		fmt.Fprintln(os.Stderr, diagErr.Error())
		return 1, path
	}
	if env.Exited {
		return env.ExitCode, path
	}
	fmt.Println(result.String())
	return 0, path
}

func cmdCompile(args []string) (int, string) {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	out := fs.String("o", "", "output assembly file (default: stdout)")
	fs.Parse(args)
	path := fs.Arg(0)
	if fs.NArg() > 1 {
		fs.Parse(fs.Args()[1:])
	}
	n, err := readTree(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	checked, diags := checker.Check(n, ast.NewEnv())
	if diags.HasErrors() {
		fmt.Fprintln(os.Stderr, diags.Error())
		return 1, path
	}
	asm, err := codegen.Generate(checked)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	if *out == "" {
		fmt.Println(asm)
		return 0, path
	}
	if err := os.WriteFile(*out, []byte(asm), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, path
	}
	return 0, path
}

// cmdRepl collapses tokenize -> parse -> typecheck -> interpret into one
// line-at-a-time loop: each line is a complete pre-parsed JSON
// expression, since this repository has no lexer/parser of its own to
// read raw Hygge source a character at a time.
func cmdRepl(args []string) int {
	rl := readline.NewInstance()
	rl.SetPrompt("hygge> ")
	env := evaluator.NewEnv(func(s string) { fmt.Print(s) }, nil)
	for {
		line, err := rl.Readline()
		if err != nil {
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n := &ast.Node{}
		if err := json.Unmarshal([]byte(line), n); err != nil {
			fmt.Fprintln(os.Stderr, "parse:", err)
			continue
		}
		checked, diags := checker.Check(n, ast.NewEnv())
		if diags.HasErrors() {
			fmt.Fprintln(os.Stderr, diags.Error())
			continue
		}
		result, diagErr := evaluator.Eval(env, checked)
		if diagErr != nil {
			fmt.Fprintln(os.Stderr, diagErr.Error())
			continue
		}
		if env.Exited {
			return env.ExitCode
		}
		fmt.Println(result.String())
	}
}

func cmdAudit(args []string) int {
	if len(args) == 0 || args[0] != "tail" {
		fmt.Fprintln(os.Stderr, "usage: hygge audit tail [-n N]")
		return 2
	}
	fs := flag.NewFlagSet("audit tail", flag.ContinueOnError)
	n := fs.Int("n", 20, "number of recent invocations to show")
	fs.Parse(args[1:])

	sink, err := audit.Open(resolveDSN())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sink.Close()
	records, err := sink.Tail(*n)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, r := range records {
		fmt.Printf("%s  %-10s  %-20s  exit=%d  %s\n",
			r.Time.Format(time.RFC3339), r.Subcommand, r.Input, r.ExitCode, r.Duration)
	}
	return 0
}

func readTree(path string) (*ast.Node, error) {
	if path == "" {
		return nil, fmt.Errorf("hygge: missing input file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hygge: reading %s: %w", path, err)
	}
	n := &ast.Node{}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("hygge: parsing %s as a serialized tree: %w", path, err)
	}
	return n, nil
}

// resolveDSN honors HYGGE_AUDIT_DSN, falling back to the default local
// sqlite file.
func resolveDSN() string {
	if dsn := os.Getenv("HYGGE_AUDIT_DSN"); dsn != "" {
		return dsn
	}
	return audit.DefaultDSN
}

// logInvocation appends one audit row if a DSN is configured (by
// -log-dsn or else HYGGE_AUDIT_DSN); it never returns an error to the
// caller, since the audit trail is a pure side channel that must never
// affect the exit code of the command it's observing.
func logInvocation(logDSN, sub, input string, exitCode int, dur time.Duration) {
	dsn := logDSN
	if dsn == "" {
		dsn = os.Getenv("HYGGE_AUDIT_DSN")
	}
	if dsn == "" || sub == "audit" {
		return
	}
	sink, err := audit.Open(dsn)
	if err != nil {
		return
	}
	defer sink.Close()
	sink.Append(audit.Record{
		Time:       time.Now(),
		Subcommand: sub,
		Input:      input,
		ExitCode:   exitCode,
		Duration:   dur,
	})
}
