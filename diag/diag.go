// Package diag implements the diagnostics taxonomy of spec §7 as one
// Error type keyed by a stable id string, grounded on the teacher's
// report.Error{ErrorId, Message, Args, Values, Trace, Token} plus its
// report.ErrorCreatorMap map[string]ErrorCreator.
package diag

import (
	"fmt"
	"strings"

	"github.com/hygge-lang/hygge/token"
)

// Error is a single diagnostic: an id, the position it was raised at,
// the rendered message, and (for the evaluator) a trace of positions
// the stuck term propagated through.
type Error struct {
	ID      string
	Pos     token.Position
	Message string
	Trace   []token.Position
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Message + " [" + e.ID + "]"
}

func (e *Error) AddToTrace(p token.Position) {
	e.Trace = append(e.Trace, p)
}

// New looks up id in the registry and renders its message with args,
// falling back to the id itself if it isn't registered -- this can
// only happen for a programming mistake in this repository, not for
// anything a user can trigger, so a fallback (rather than a panic) is
// deliberately there for registry typos.
func New(id string, pos token.Position, args ...any) *Error {
	create, ok := Registry[id]
	if !ok {
		return &Error{ID: id, Pos: pos, Message: fmt.Sprintf("unregistered diagnostic %q %v", id, args)}
	}
	return &Error{ID: id, Pos: pos, Message: create(args...)}
}

// List is an accumulated, ordered collection of diagnostics: the type
// checker gathers one of these across sibling subtrees per spec §4.3
// ("Errors accumulate across sibling subtrees").
type List []*Error

func (l List) Error() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func (l List) HasErrors() bool { return len(l) > 0 }
