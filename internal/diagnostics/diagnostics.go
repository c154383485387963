// Package diagnostics formats lexer, parser, and runtime errors into
// single-line, tool-friendly messages, with ANSI color applied only
// when the destination is a terminal.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/aegis-lang/aegis/internal/token"
)

// Code identifies the class of a diagnostic, e.g. "P001" for a parser
// error or "R000" for a runtime error. Codes are stable across
// releases so tooling can key off them.
type Code string

const (
	ErrLexUnterminatedString  Code = "L001"
	ErrLexUnterminatedComment Code = "L002"
	ErrLexInvalidChar         Code = "L003"

	ErrParseUnexpectedToken Code = "P001"
	ErrParseExpectedToken   Code = "P002"
	ErrParseNoPrefixFn      Code = "P003"
	ErrParseInvalidAssign   Code = "P004"
	ErrParseTooDeep         Code = "P005"
	ErrParseBadLiteral      Code = "P006"

	ErrRuntimeGeneric Code = "R000"
)

// Error is a single diagnostic tied to a source position.
type Error struct {
	Code    Code
	File    string
	Line    int
	Message string
}

func NewError(code Code, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Line:    tok.Line,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewErrorAt(code Code, line int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d: [%s] %s", file, e.Line, e.Code, e.Message)
}

// colorEnabled reports whether w should receive ANSI escapes. Only a
// real *os.File that isatty reports as a terminal qualifies.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes err to w, in red when w is a terminal.
func Print(w io.Writer, err *Error) {
	if colorEnabled(w) {
		fmt.Fprintf(w, "\x1b[31merror\x1b[0m: %s\n", err.Error())
		return
	}
	fmt.Fprintf(w, "error: %s\n", err.Error())
}

// PrintAll writes every error in errs to w, one per line.
func PrintAll(w io.Writer, errs []*Error) {
	for _, e := range errs {
		Print(w, e)
	}
}
