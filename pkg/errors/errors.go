package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Diagnostic is the interface implemented by every positioned error the tool reports.
type Diagnostic interface {
	error
	Pos() Position
	Kind() string // "Syntax" or "Rewrite"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error
}

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }

// RewriteError reports a JSBI usage that cannot be turned into native BigInt syntax.
// It is always fatal to the compilation unit it was raised in.
type RewriteError struct {
	Position
	Msg   string
	Cause error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("Rewrite Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *RewriteError) Pos() Position   { return e.Position }
func (e *RewriteError) Kind() string    { return "Rewrite" }
func (e *RewriteError) Message() string { return e.Msg }
func (e *RewriteError) Unwrap() error   { return e.Cause }
func (e *RewriteError) CausedBy(cause error) *RewriteError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

const (
	ansiRed   = "\x1b[31;1m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// ShouldColor reports whether diagnostics written to f may use ANSI colors.
func ShouldColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DisplayErrors writes each diagnostic with its source line and a position marker.
// Format: <Kind> Error at <file>:<line>:<col>: <message>
func DisplayErrors(w io.Writer, errs []Diagnostic, color bool) {
	for _, err := range errs {
		pos := err.Pos()
		header := fmt.Sprintf("%s Error at %s: %s", err.Kind(), pos.String(), err.Message())
		if color {
			header = ansiRed + header + ansiReset
		}
		fmt.Fprintln(w, header)

		if pos.Source == nil || pos.Line < 1 {
			fmt.Fprintln(w)
			continue
		}
		sourceLine := strings.TrimRight(pos.Source.Line(pos.Line), "\t ")
		fmt.Fprintf(w, "  %s\n", sourceLine)

		width := pos.EndPos - pos.StartPos
		if width < 1 {
			width = 1
		}
		if pos.Column-1+width > len(sourceLine) {
			width = max(1, len(sourceLine)-(pos.Column-1))
		}
		marker := strings.Repeat(" ", max(0, pos.Column-1)) + "^" + strings.Repeat("~", width-1)
		if color {
			marker = ansiBold + marker + ansiReset
		}
		fmt.Fprintf(w, "  %s\n\n", marker)
	}
}
