package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "jsbi2bigint.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStdinToStdout(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "")
	code, stdout, stderr := runCLI(t, `import JSBI from "jsbi"; JSBI.add(a, b);`, "-config", cfg)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if stdout != "a + b;\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestStdinRewriteError(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "")
	code, stdout, stderr := runCLI(t, `import JSBI from "jsbi"; JSBI.add(a);`, "-config", cfg)
	if code != exitFailed {
		t.Errorf("expected exit %d, got %d", exitFailed, code)
	}
	if stdout != "" {
		t.Errorf("failed unit produced output %q", stdout)
	}
	want := "Rewrite Error at <stdin>:1:26: Binary operators must have exactly two arguments"
	if !strings.Contains(stderr, want) {
		t.Errorf("expected %q in stderr, got:\n%s", want, stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.js")
	b := filepath.Join(dir, "b.js")
	tests := [][]string{
		{"-w"},
		{"-l"},
		{"-o", filepath.Join(dir, "out.js"), a, b},
		{"-w", "-o", filepath.Join(dir, "out.js"), a},
		{"-j", "-2", a},
		{"-no-such-flag"},
	}
	for _, args := range tests {
		if code, _, _ := runCLI(t, "", args...); code != exitUsage {
			t.Errorf("%v: expected exit %d, got %d", args, exitUsage, code)
		}
	}
}

func TestWriteInPlaceAndList(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "workers: 2\n")
	files := map[string]string{
		"a.js": "import JSBI from './vendor/jsbi.mjs';\nexport const two = JSBI.BigInt(2);\n",
		"b.js": "// no JSBI here\nexport const three = 3n;\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	code, stdout, stderr := runCLI(t, "", "-config", cfg, "-l", dir)
	if code != exitOK {
		t.Fatalf("-l: exit %d, stderr: %s", code, stderr)
	}
	if stdout != filepath.Join(dir, "a.js")+"\n" {
		t.Errorf("-l: expected only a.js, got %q", stdout)
	}

	code, _, stderr = runCLI(t, "", "-config", cfg, "-w", "-v", dir)
	if code != exitOK {
		t.Fatalf("-w: exit %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stderr, "2 files, 1 rewritten, 0 failed") {
		t.Errorf("missing summary in stderr: %s", stderr)
	}

	a, _ := os.ReadFile(filepath.Join(dir, "a.js"))
	if string(a) != "export const two = 2n;\n" {
		t.Errorf("a.js not rewritten: %q", a)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "b.js"))
	if string(b) != files["b.js"] {
		t.Errorf("b.js should be untouched: %q", b)
	}
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "namespace: Big\n")
	in := filepath.Join(dir, "in.js")
	out := filepath.Join(dir, "out.js")
	if err := os.WriteFile(in, []byte("x instanceof Big;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, "", "-config", cfg, "-o", out, in)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "typeof x === \"bigint\";\n" {
		t.Errorf("unexpected output file %q", data)
	}
}

func TestStrictFlag(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "")
	input := `import JSBI from "jsbi"; register(JSBI);`

	if code, _, _ := runCLI(t, input, "-config", cfg); code != exitOK {
		t.Errorf("without -strict: expected exit 0, got %d", code)
	}
	code, _, stderr := runCLI(t, input, "-config", cfg, "-strict")
	if code != exitFailed {
		t.Errorf("with -strict: expected exit %d, got %d", exitFailed, code)
	}
	if !strings.Contains(stderr, "'JSBI' still refers to a removed JSBI binding") {
		t.Errorf("unexpected stderr: %s", stderr)
	}
}

func TestInternalFailures(t *testing.T) {
	dir := t.TempDir()
	bad := writeConfig(t, dir, "modul: jsbi\n")
	if code, _, _ := runCLI(t, "", "-config", bad); code != exitInternal {
		t.Errorf("bad config: expected exit %d, got %d", exitInternal, code)
	}

	good := writeConfig(t, t.TempDir(), "")
	if code, _, _ := runCLI(t, "", "-config", good, filepath.Join(dir, "missing.js")); code != exitInternal {
		t.Errorf("missing input: expected exit %d, got %d", exitInternal, code)
	}
}
