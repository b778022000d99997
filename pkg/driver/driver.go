// Package driver runs the JSBI rewrite over source text, files and batches of files.
package driver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"jsbi2bigint/pkg/config"
	"jsbi2bigint/pkg/errors"
	"jsbi2bigint/pkg/parser"
	"jsbi2bigint/pkg/rewrite"
	"jsbi2bigint/pkg/scope"
	"jsbi2bigint/pkg/source"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// Result is the outcome of rewriting one file.
type Result struct {
	Path   string
	Input  string
	Output string // equals Input when nothing was rewritten

	// Changed reports whether the rewrite altered the program.
	Changed bool

	// Diagnostics holds syntax or rewrite errors. Output is empty when any are present.
	Diagnostics []errors.Diagnostic

	// Err is set when the file could not be read.
	Err error
}

// Failed reports whether the file produced no usable output.
func (r *Result) Failed() bool {
	return r.Err != nil || len(r.Diagnostics) > 0
}

// RewriteSource parses, analyzes and rewrites one compilation unit and returns the
// emitted program. Nothing is emitted for a unit with errors.
func RewriteSource(src *source.SourceFile, cfg *config.Config) (string, []errors.Diagnostic) {
	out, _, errs := rewriteSource(src, cfg)
	return out, errs
}

func rewriteSource(src *source.SourceFile, cfg *config.Config) (string, bool, []errors.Diagnostic) {
	program, parseErrs := parser.ParseSource(src)
	if len(parseErrs) > 0 {
		return "", false, parseErrs
	}
	before := program.String()

	matcher, err := rewrite.NewModuleMatcher(cfg.Module, cfg.Extension)
	if err != nil {
		return "", false, []errors.Diagnostic{unitError(src, err)}
	}

	table := scope.Analyze(program)
	debugPrintf("[Driver] %s: %d declarations\n", src.DisplayPath(), len(table.Declarations()))

	err = rewrite.Process(program, table, rewrite.Options{
		Matcher:   matcher,
		Namespace: cfg.Namespace,
		Strict:    cfg.Strict,
	})
	if err != nil {
		var diag errors.Diagnostic
		if stderrors.As(err, &diag) {
			return "", false, []errors.Diagnostic{diag}
		}
		return "", false, []errors.Diagnostic{unitError(src, err)}
	}

	after := program.String()
	return after, after != before, nil
}

// unitError reports a failure that has no better position than the start of the unit.
func unitError(src *source.SourceFile, err error) errors.Diagnostic {
	rerr := &errors.RewriteError{
		Position: errors.Position{Line: 1, Column: 1, Source: src},
		Msg:      err.Error(),
	}
	return rerr.CausedBy(err)
}

// RewriteFile reads and rewrites one file. Unchanged files keep their original text.
func RewriteFile(path string, cfg *config.Config) *Result {
	res := &Result{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		return res
	}
	rewriteInto(res, source.FromFile(path, string(data)), cfg)
	return res
}

// Rewrite rewrites an in-memory unit such as standard input. Unchanged input is returned as is.
func Rewrite(src *source.SourceFile, cfg *config.Config) *Result {
	res := &Result{Path: src.DisplayPath()}
	rewriteInto(res, src, cfg)
	return res
}

func rewriteInto(res *Result, src *source.SourceFile, cfg *config.Config) {
	res.Input = src.Content
	out, changed, diags := rewriteSource(src, cfg)
	if len(diags) > 0 {
		res.Diagnostics = diags
		return
	}
	res.Changed = changed
	if changed {
		res.Output = out
	} else {
		res.Output = res.Input
	}
}

// RewriteFiles rewrites paths in parallel, at most cfg.Workers at a time (one per CPU when
// zero). Results are in the order of paths. A failing file does not stop the others;
// cancelling ctx stops scheduling, and files never started have a nil result.
func RewriteFiles(ctx context.Context, paths []string, cfg *config.Config) ([]*Result, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Result, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			debugPrintf("[Driver] rewriting %s\n", path)
			results[i] = RewriteFile(path, cfg)
			return nil
		})
	}
	_ = g.Wait() // workers never fail; per-file errors live in the results

	return results, ctx.Err()
}

// WriteResult writes a result's output to path, keeping the permissions of an existing file.
func WriteResult(res *Result, path string) error {
	if res.Failed() {
		return fmt.Errorf("refusing to write %s: rewrite failed", path)
	}
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(res.Output), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CollectFiles expands roots into the list of files to process. Files named directly are
// always included; directories are walked for files with one of cfg.Extensions,
// skipping node_modules and hidden directories. Duplicates are dropped.
func CollectFiles(roots []string, cfg *config.Config) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, cfg.Extensions) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", root, err)
		}
	}
	return files, nil
}

func skipDir(name string) bool {
	return name == "node_modules" || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
