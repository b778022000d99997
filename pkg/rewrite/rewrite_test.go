package rewrite

import (
	"fmt"
	"strings"
	"testing"

	"jsbi2bigint/pkg/errors"
	"jsbi2bigint/pkg/parser"
	"jsbi2bigint/pkg/scope"
	"jsbi2bigint/pkg/source"
)

const header = "import JSBI from \"jsbi\";\n"

func process(t *testing.T, input string, strict bool) (string, error) {
	t.Helper()
	program, errs := parser.ParseSource(source.NewEvalSource(input))
	if len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", input, errs)
	}
	matcher, err := NewModuleMatcher("jsbi", ".mjs")
	if err != nil {
		t.Fatalf("NewModuleMatcher: %v", err)
	}
	err = Process(program, scope.Analyze(program), Options{Matcher: matcher, Namespace: "JSBI", Strict: strict})
	return program.String(), err
}

func mustRewrite(t *testing.T, input string) string {
	t.Helper()
	out, err := process(t, input, false)
	if err != nil {
		t.Fatalf("rewriting %q: %v", input, err)
	}
	return out
}

func rewriteFailure(t *testing.T, input string, strict bool) *errors.RewriteError {
	t.Helper()
	_, err := process(t, input, strict)
	if err == nil {
		t.Fatalf("expected an error rewriting %q", input)
	}
	rerr, ok := err.(*errors.RewriteError)
	if !ok {
		t.Fatalf("expected *errors.RewriteError, got %T (%v)", err, err)
	}
	return rerr
}

func TestEndToEnd(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			header + "const a = JSBI.BigInt(1); const b = JSBI.BigInt(2); JSBI.add(a, b);",
			"const a = 1n;\nconst b = 2n;\na + b;\n",
		},
		{
			header + "JSBI.add(JSBI.BigInt(1), JSBI.BigInt(2));",
			"1n + 2n;\n",
		},
		{
			header + "const JSBigInt = JSBI.BigInt; const x = JSBigInt(Number.MAX_SAFE_INTEGER);",
			"const x = BigInt(Number.MAX_SAFE_INTEGER);\n",
		},
		{
			header + "JSBI.toNumber(a); JSBI.asIntN(64, a); JSBI.asUintN(64, JSBI.BigInt(42));",
			"Number(a);\nBigInt.asIntN(64, a);\nBigInt.asUintN(64, 42n);\n",
		},
		{
			header + "a.toString(); JSBI.unaryMinus(a); JSBI.bitwiseNot(a);",
			"a.toString();\n-a;\n~a;\n",
		},
		{
			// no import: JSBI is just some global
			"JSBI.add(a, b);",
			"JSBI.add(a, b);\n",
		},
		{
			header + "function f(x) { return JSBI.multiply(x, JSBI.BigInt(2)); }\nconst g = y => JSBI.GT(y, 0);",
			"function f(x) {\n  return x * 2n;\n}\nconst g = y => y > 0;\n",
		},
		{
			header + "export default JSBI.add(a, b);",
			"export default a + b;\n",
		},
	}

	for _, tt := range tests {
		if actual := mustRewrite(t, tt.input); actual != tt.expected {
			t.Errorf("input %q:\nexpected %q\n     got %q", tt.input, tt.expected, actual)
		}
	}
}

func TestAliasingEquivalence(t *testing.T) {
	calls := map[string]string{}
	for name := range binaryOperators {
		calls[name] = "(x, y)"
	}
	for name := range unaryOperators {
		calls[name] = "(x)"
	}
	for name := range staticMethods {
		calls[name] = "(64, x)"
	}
	calls[constructorName] = "(x)"
	calls[conversionName] = "(x)"

	for name, args := range calls {
		direct := mustRewrite(t, fmt.Sprintf("%sJSBI.%s%s;", header, name, args))
		dotted := mustRewrite(t, fmt.Sprintf("%sconst f = JSBI.%s; f%s;", header, name, args))
		computed := mustRewrite(t, fmt.Sprintf("%sconst f = JSBI['%s']; f%s;", header, name, args))
		member := mustRewrite(t, fmt.Sprintf("%sJSBI['%s']%s;", header, name, args))

		if dotted != direct || computed != direct || member != direct {
			t.Errorf("%s: forms differ:\n direct   %q\n dotted   %q\n computed %q\n member   %q",
				name, direct, dotted, computed, member)
		}
		if strings.Contains(direct, "JSBI") || strings.Contains(direct, "f(") {
			t.Errorf("%s: not rewritten: %q", name, direct)
		}
	}

	if out := mustRewrite(t, header+"JSBI.lessThanOrEqual(x, y);"); out != "x <= y;\n" {
		t.Errorf("lessThanOrEqual: got %q", out)
	}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"JSBI.multiply(JSBI.add(a, b), c);", "(a + b) * c;\n"},
		{"JSBI.exponentiate(JSBI.unaryMinus(a), b);", "(-a) ** b;\n"},
		{"JSBI.subtract(a, JSBI.subtract(b, c));", "a - (b - c);\n"},
		{"JSBI.subtract(JSBI.subtract(a, b), c);", "a - b - c;\n"},
		{"JSBI.unaryMinus(JSBI.unaryMinus(a));", "-(-a);\n"},
		{"JSBI.toNumber(JSBI.add(a, b));", "Number(a + b);\n"},
		{"JSBI.add(a, b).toString();", "(a + b).toString();\n"},
		{"JSBI.equal(JSBI.bitwiseAnd(a, b), c);", "(a & b) === c;\n"},
		{"!(x instanceof JSBI);", "!(typeof x === \"bigint\");\n"},
	}
	for _, tt := range tests {
		if actual := mustRewrite(t, header+tt.input); actual != tt.expected {
			t.Errorf("input %q:\nexpected %q\n     got %q", tt.input, tt.expected, actual)
		}
	}
}

func TestLiteralFolding(t *testing.T) {
	tests := []struct {
		arg      string
		expected string
	}{
		{"34", "34n"},
		{"'34'", "34n"},
		{"\"0\"", "0n"},
		{"0", "0n"},
		{"0x10", "16n"},
		{"1_000", "1000n"},
		{"1e21", "1000000000000000000000n"},
		{"'00034'", "BigInt('00034')"},
		{"'abc'", "BigInt('abc')"},
		{"'-1'", "BigInt('-1')"},
		{"1.5", "BigInt(1.5)"},
		{"-1", "BigInt(-1)"},
		{"x", "BigInt(x)"},
		{"", "BigInt()"},
		{"1, 2", "BigInt(1, 2)"},
	}
	for _, tt := range tests {
		input := header + "JSBI.BigInt(" + tt.arg + ");"
		if actual := mustRewrite(t, input); actual != tt.expected+";\n" {
			t.Errorf("BigInt(%s): expected %q, got %q", tt.arg, tt.expected+";\n", actual)
		}
	}
}

func TestImportErasure(t *testing.T) {
	recognized := []string{
		`"jsbi"`,
		`"JSBI"`,
		`'./x/jsbi.mjs'`,
		`"..\\x\\JSBI.MJS"`,
		`"/abs/path/Jsbi.Mjs"`,
	}
	for _, src := range recognized {
		input := "import JSBI, { add } from " + src + ";\nJSBI.add(a, b);"
		if actual := mustRewrite(t, input); actual != "a + b;\n" {
			t.Errorf("import from %s: got %q", src, actual)
		}
	}

	ignored := []string{
		`"jsbi-utils"`,
		`"./jsbi.js"`,
		`"./notjsbi.mjs"`,
		`"jsbi/extra"`,
		`"jsbi.mjs"`,
	}
	for _, src := range ignored {
		input := "import JSBI from " + src + ";\nJSBI.add(a, b);"
		expected := "import JSBI from " + src + ";\nJSBI.add(a, b);\n"
		if actual := mustRewrite(t, input); actual != expected {
			t.Errorf("import from %s should be kept, got %q", src, actual)
		}
	}

	// Bare imports and namespace imports of the module are dropped without creating a namespace.
	if actual := mustRewrite(t, `import "jsbi"; import * as J from "jsbi"; J.add(a, b);`); actual != "J.add(a, b);\n" {
		t.Errorf("namespace import: got %q", actual)
	}
}

func TestArityAndUnknownOperations(t *testing.T) {
	tests := []struct {
		call    string
		message string
	}{
		{"JSBI.add(a)", "Binary operators must have exactly two arguments"},
		{"JSBI.add(a, b, c)", "Binary operators must have exactly two arguments"},
		{"JSBI.EQ()", "Binary operators must have exactly two arguments"},
		{"JSBI.unaryMinus()", "Unary operators must have exactly one argument"},
		{"JSBI.bitwiseNot(a, b)", "Unary operators must have exactly one argument"},
		{"JSBI.asIntN(64)", "Static methods must have exactly two arguments"},
		{"JSBI.asUintN(64, a, b)", "Static methods must have exactly two arguments"},
		{"JSBI.toNumber(a, b)", "toNumber must have exactly one argument"},
		{"JSBI.toNumber()", "toNumber must have exactly one argument"},
		{"JSBI.sqrt(a)", "Unknown JSBI function 'sqrt'"},
		{"JSBI['toString'](a)", "Unknown JSBI function 'toString'"},
		{"JSBI.add(...xs, b)", "Spread arguments cannot be rewritten into operators"},
		{"JSBI.unaryMinus(...xs)", "Spread arguments cannot be rewritten into operators"},
	}
	for _, tt := range tests {
		rerr := rewriteFailure(t, header+tt.call+";", false)
		if rerr.Message() != tt.message {
			t.Errorf("%s: expected %q, got %q", tt.call, tt.message, rerr.Message())
		}
		if rerr.Kind() != "Rewrite" {
			t.Errorf("%s: expected Rewrite kind, got %s", tt.call, rerr.Kind())
		}
	}

	if out := mustRewrite(t, header+"JSBI.add(a, b);"); out != "a + b;\n" {
		t.Errorf("two arguments should succeed, got %q", out)
	}
}

func TestErrorPosition(t *testing.T) {
	rerr := rewriteFailure(t, header+"let x;\n  JSBI.add(a);", false)
	if rerr.Line != 3 || rerr.Column != 3 {
		t.Errorf("expected error at 3:3, got %d:%d", rerr.Line, rerr.Column)
	}
	if rerr.Source == nil || rerr.Source.DisplayPath() != "<eval>" {
		t.Errorf("expected source to be attached, got %v", rerr.Source)
	}
}

func TestInstanceOf(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{header + "x instanceof JSBI;", "typeof x === \"bigint\";\n"},
		{"x instanceof JSBI;", "typeof x === \"bigint\";\n"},
		{`import Big from "jsbi"; x instanceof Big;`, "typeof x === \"bigint\";\n"},
		{"const JSBI = foo; x instanceof JSBI;", "const JSBI = foo;\nx instanceof JSBI;\n"},
		{"x instanceof Y;", "x instanceof Y;\n"},
		{"function f(JSBI) { return x instanceof JSBI; }", "function f(JSBI) {\n  return x instanceof JSBI;\n}\n"},
		{header + "JSBI.add(a, b) instanceof JSBI;", "typeof (a + b) === \"bigint\";\n"},
	}
	for _, tt := range tests {
		if actual := mustRewrite(t, tt.input); actual != tt.expected {
			t.Errorf("input %q:\nexpected %q\n     got %q", tt.input, tt.expected, actual)
		}
	}
}

func TestRejectedAccessForms(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"JSBI?.add(a, b);", "Optional chaining cannot be used on the JSBI namespace"},
		{"JSBI.add?.(a, b);", "Optional chaining cannot be used on the JSBI namespace"},
		{"JSBI?.['add'](a, b);", "Optional chaining cannot be used on the JSBI namespace"},
		{"const f = JSBI?.add;", "Optional chaining cannot be used on the JSBI namespace"},
		{"const f = JSBI.add; f?.(a, b);", "Optional chaining cannot be used on the JSBI namespace"},
		{"JSBI[name](a, b);", "Only .BigInt or ['BigInt'] allowed here"},
		{"const f = JSBI[name];", "Only .BigInt or ['BigInt'] allowed here"},
		{"const f = JSBI[0];", "Only .BigInt or ['BigInt'] allowed here"},
	}
	for _, tt := range tests {
		rerr := rewriteFailure(t, header+tt.input, false)
		if rerr.Message() != tt.message {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.message, rerr.Message())
		}
	}

	// Other objects are not affected.
	if out := mustRewrite(t, header+"obj?.add(a, b); obj[name](a);"); out != "obj?.add(a, b);\nobj[name](a);\n" {
		t.Errorf("unexpected rewrite: %q", out)
	}
}

func TestHoistingAndScopes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"use before import",
			`JSBI.add(a, b); import JSBI from "jsbi";`,
			"a + b;\n",
		},
		{
			"use before var alias",
			`function f() { return add(a, b); } var add = JSBI.add; import JSBI from "jsbi";`,
			"function f() {\n  return a + b;\n}\n",
		},
		{
			"shadowed namespace",
			header + "function f(JSBI) { return JSBI.add(a, b); }",
			"function f(JSBI) {\n  return JSBI.add(a, b);\n}\n",
		},
		{
			"shadowed alias",
			header + "const add = JSBI.add; function g(add) { return add(1, 2); } add(1, 2);",
			"function g(add) {\n  return add(1, 2);\n}\n1 + 2;\n",
		},
		{
			"alias of alias",
			header + "const B = JSBI.BigInt; const C = B.asIntN; C(8, x);",
			"BigInt.asIntN(8, x);\n",
		},
		{
			"var cycle",
			"var a = b.x; var b = a.y; a(1);",
			"var a = b.x;\nvar b = a.y;\na(1);\n",
		},
		{
			"unrelated member alias",
			"const log = console.log; log(1);",
			"const log = console.log;\nlog(1);\n",
		},
	}
	for _, tt := range tests {
		if actual := mustRewrite(t, tt.input); actual != tt.expected {
			t.Errorf("%s:\nexpected %q\n     got %q", tt.name, tt.expected, actual)
		}
	}
}

func TestRemoval(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"partial declaration", "const add = JSBI.add, keep = 1; add(keep, 2);", "const keep = 1;\nkeep + 2;\n"},
		{"export wrapper", "export const add = JSBI.add; export const one = JSBI.BigInt(1);", "export const one = 1n;\n"},
		{"for head", "for (var add = JSBI.add; i < 3; i++) add(i, 1);", "for (; i < 3; i++) i + 1;\n"},
		{"if body", "if (c) var add = JSBI.add;", "if (c) ;\n"},
		{"nested block", "{ const sub = JSBI.subtract; sub(a, b); }", "{\n  a - b;\n}\n"},
		{"function body", "function f() { const n = JSBI.toNumber; return n(x); }", "function f() {\n  return Number(x);\n}\n"},
	}
	for _, tt := range tests {
		if actual := mustRewrite(t, header+tt.input); actual != tt.expected {
			t.Errorf("%s:\nexpected %q\n     got %q", tt.name, tt.expected, actual)
		}
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		header + "const a = JSBI.BigInt('7'); const add = JSBI.add; add(a, JSBI.BigInt(x)); x instanceof JSBI;",
		header + "export const f = n => JSBI.leftShift(n, JSBI.BigInt(3));",
		"const untouched = 1;",
	}
	for _, input := range inputs {
		once := mustRewrite(t, input)
		twice := mustRewrite(t, once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nfirst  %q\nsecond %q", input, once, twice)
		}
	}
}

func TestStrictDanglingReferences(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"foo(JSBI);", "'JSBI' still refers to a removed JSBI binding"},
		{"const add = JSBI.add; arr.map(add);", "'add' still refers to a removed JSBI binding"},
		{"export { JSBI };", "'JSBI' still refers to a removed JSBI binding"},
	}
	for _, tt := range tests {
		rerr := rewriteFailure(t, header+tt.input, true)
		if rerr.Message() != tt.message {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.message, rerr.Message())
		}

		// Without strict the same input rewrites silently.
		if _, err := process(t, header+tt.input, false); err != nil {
			t.Errorf("%q: unexpected error without strict: %v", tt.input, err)
		}
	}

	if _, err := process(t, header+"const add = JSBI.add; add(a, b);", true); err != nil {
		t.Errorf("clean program failed the strict check: %v", err)
	}
}

func TestCommitTwicePanics(t *testing.T) {
	program, errs := parser.ParseSource(source.NewEvalSource("let x;"))
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	r := newRemovals()
	r.commit(program)

	defer func() {
		if recover() == nil {
			t.Errorf("second commit did not panic")
		}
	}()
	r.commit(program)
}

func TestProcessRequiresMatcher(t *testing.T) {
	program, _ := parser.ParseSource(source.NewEvalSource("x;"))
	if err := Process(program, scope.Analyze(program), Options{}); err == nil {
		t.Errorf("expected an error without a module matcher")
	}
}
