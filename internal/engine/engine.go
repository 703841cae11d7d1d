// Package engine wraps the goja interpreter. It compiles app sources with
// structured syntax diagnostics and runs them inside isolated scopes, each
// backed by its own runtime, with a watchdog bounding every entry into
// script code.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"

	"github.com/roomkit/roomkit/internal/errdef"
)

// Program is a compiled app ready to run in any scope.
type Program struct {
	name string
	prg  *goja.Program
}

func (p *Program) Name() string { return p.name }

// Compile syntax-checks src without executing it. Failures carry an
// errdef.SyntaxError with the first reported position.
func Compile(name, src string) (*Program, error) {
	if _, err := parser.ParseFile(nil, name, src, 0); err != nil {
		return nil, errdef.Wrap(errdef.CodeSyntax, syntaxFromParser(err), "check %s", name)
	}
	prg, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeSyntax, syntaxFromCompiler(err), "compile %s", name)
	}
	return &Program{name: name, prg: prg}, nil
}

func syntaxFromParser(err error) *errdef.SyntaxError {
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &errdef.SyntaxError{
			Line:    first.Position.Line,
			Column:  first.Position.Column,
			Message: first.Message,
		}
	}
	var single *parser.Error
	if errors.As(err, &single) {
		return &errdef.SyntaxError{
			Line:    single.Position.Line,
			Column:  single.Position.Column,
			Message: single.Message,
		}
	}
	return &errdef.SyntaxError{Message: err.Error()}
}

func syntaxFromCompiler(err error) *errdef.SyntaxError {
	var cse *goja.CompilerSyntaxError
	if errors.As(err, &cse) {
		se := &errdef.SyntaxError{Message: cse.Message}
		if cse.File != nil {
			pos := cse.File.Position(cse.Offset)
			se.Line, se.Column = pos.Line, pos.Column
		}
		return se
	}
	var ref *goja.CompilerReferenceError
	if errors.As(err, &ref) {
		se := &errdef.SyntaxError{Message: ref.Message}
		if ref.File != nil {
			pos := ref.File.Position(ref.Offset)
			se.Line, se.Column = pos.Line, pos.Column
		}
		return se
	}
	return &errdef.SyntaxError{Message: err.Error()}
}

// scriptError converts whatever escaped a script run into a ScriptError.
func scriptError(err error) *errdef.ScriptError {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if te, ok := interrupted.Value().(timeoutError); ok {
			return &errdef.ScriptError{Message: te.Error()}
		}
		return &errdef.ScriptError{Message: "script interrupted: " + fmt.Sprint(interrupted.Value())}
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return &errdef.ScriptError{Message: strings.TrimSpace(ex.Error())}
	}
	return &errdef.ScriptError{Message: err.Error()}
}
