package errors

import (
	"bytes"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"jsbi2bigint/pkg/source"
)

func TestErrorStrings(t *testing.T) {
	syntax := &SyntaxError{Position: Position{Line: 2, Column: 5}, Msg: "unexpected token )"}
	if got := syntax.Error(); got != "Syntax Error at 2:5: unexpected token )" {
		t.Errorf("unexpected syntax error string %q", got)
	}

	cause := stderrors.New("boom")
	rewrite := (&RewriteError{Position: Position{Line: 1, Column: 1}, Msg: "Unknown JSBI function 'x'"}).CausedBy(cause)
	if got := rewrite.Error(); got != "Rewrite Error at 1:1: Unknown JSBI function 'x'" {
		t.Errorf("unexpected rewrite error string %q", got)
	}
	if !stderrors.Is(rewrite, cause) {
		t.Errorf("cause not reachable through Unwrap")
	}

	var diag Diagnostic = rewrite
	if diag.Kind() != "Rewrite" || diag.Message() != "Unknown JSBI function 'x'" {
		t.Errorf("unexpected diagnostic %s / %s", diag.Kind(), diag.Message())
	}
}

func TestPositionString(t *testing.T) {
	src := source.FromFile("lib/math.js", "x")
	tests := []struct {
		pos      Position
		expected string
	}{
		{Position{Line: 3, Column: 7}, "3:7"},
		{Position{Line: 3, Column: 7, Source: src}, "lib/math.js:3:7"},
		{Position{Line: 1, Column: 1, Source: source.NewStdinSource("")}, "<stdin>:1:1"},
	}
	for _, tt := range tests {
		if got := tt.pos.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestDisplayErrors(t *testing.T) {
	src := source.FromFile("a.js", "import JSBI from 'jsbi';\n  JSBI.add(a);\n")
	errs := []Diagnostic{
		&RewriteError{
			Position: Position{Line: 2, Column: 3, StartPos: 27, EndPos: 31, Source: src},
			Msg:      "Binary operators must have exactly two arguments",
		},
		&SyntaxError{Position: Position{Line: 0, Column: 0}, Msg: "no position"},
	}

	var buf bytes.Buffer
	DisplayErrors(&buf, errs, false)
	out := buf.String()

	expected := "Rewrite Error at a.js:2:3: Binary operators must have exactly two arguments\n" +
		"    JSBI.add(a);\n" +
		"    ^~~~\n\n" +
		"Syntax Error at 0:0: no position\n\n"
	if out != expected {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out, expected)
	}

	buf.Reset()
	DisplayErrors(&buf, errs[:1], true)
	if !strings.Contains(buf.String(), ansiRed) || !strings.Contains(buf.String(), ansiReset) {
		t.Errorf("expected ANSI colors in %q", buf.String())
	}
}

func TestShouldColorHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ShouldColor(os.Stderr) {
		t.Errorf("NO_COLOR must disable colors")
	}
}
