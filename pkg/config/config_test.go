package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("strict: true\nworkers: 4\n"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Module != "jsbi" || cfg.Extension != ".mjs" || cfg.Namespace != "JSBI" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !cfg.Strict || cfg.Workers != 4 {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestParseEmptyFile(t *testing.T) {
	cfg, err := Parse(nil, "empty.yaml")
	if err != nil {
		t.Fatalf("empty config should be valid: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestParseOverrides(t *testing.T) {
	data := `
module: big-polyfill
extension: .js
namespace: Big
extensions: [js, .ts]
`
	cfg, err := Parse([]byte(data), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Module != "big-polyfill" || cfg.Extension != ".js" || cfg.Namespace != "Big" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if want := []string{".js", ".ts"}; !reflect.DeepEqual(cfg.Extensions, want) {
		t.Errorf("expected extensions %v, got %v", want, cfg.Extensions)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		data    string
		message string
	}{
		{"modul: jsbi\n", "field modul not found"},
		{"module: ''\n", "module must not be empty"},
		{"module: lib/jsbi\n", "must be a bare name"},
		{"extension: mjs\n", "must start with '.'"},
		{"workers: -1\n", "workers must not be negative"},
		{"extensions: []\n", "at least one file extension"},
		{"strict: [\n", "parsing bad.yaml"},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.data), "bad.yaml")
		if err == nil {
			t.Errorf("%q: expected error", tt.data)
			continue
		}
		if !strings.Contains(err.Error(), tt.message) {
			t.Errorf("%q: expected error containing %q, got %q", tt.data, tt.message, err.Error())
		}
	}
}

func TestLoadAndFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "jsbi2bigint.yaml")
	if err := os.WriteFile(path, []byte("namespace: Polyfill\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != path {
		t.Fatalf("expected %s, got %s", path, found)
	}

	cfg, err := Load(found)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Namespace != "Polyfill" {
		t.Errorf("expected namespace Polyfill, got %q", cfg.Namespace)
	}

	if _, err := Load(filepath.Join(root, "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
