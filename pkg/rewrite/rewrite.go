// Package rewrite replaces uses of the JSBI polyfill with native BigInt syntax.
//
// Process runs one pass over a parsed compilation unit:
//
//	import JSBI from "jsbi";          // removed
//	const add = JSBI.add;             // removed
//	const a = JSBI.BigInt(12);        // const a = 12n;
//	add(a, JSBI.BigInt("3"));         // a + 3n;
//	x instanceof JSBI;                // typeof x === "bigint";
//
// The namespace is the default import of the recognized module. Aliases are variables
// initialized from a member of the namespace or of another alias; calls through them are
// rewritten like direct member calls. Declarations are removed only after the whole
// program has been rewritten.
package rewrite

import (
	stderrors "errors"
	"fmt"

	"jsbi2bigint/pkg/errors"
	"jsbi2bigint/pkg/parser"
	"jsbi2bigint/pkg/scope"
)

// --- Debug Flag ---
const debugRewrite = false

func debugPrintf(format string, args ...interface{}) {
	if debugRewrite {
		fmt.Printf("[Rewrite Debug] "+format+"\n", args...)
	}
}

// --- End Debug Flag ---

// Bindings resolves identifiers to their declarations. *scope.Table implements it.
type Bindings interface {
	Lookup(id *parser.Identifier) (*scope.Declaration, bool)
}

// Options configures one pass.
type Options struct {
	// Matcher recognizes the polyfill import. Required.
	Matcher *ModuleMatcher

	// Namespace is the name `x instanceof <Namespace>` is rewritten for when unbound.
	Namespace string

	// Strict reports identifiers left referring to a removed declaration.
	Strict bool
}

// Process rewrites program in place. On error the program may be partially rewritten
// and must be discarded. The returned error is an *errors.RewriteError.
func Process(program *parser.Program, bindings Bindings, opts Options) error {
	if opts.Matcher == nil {
		return fmt.Errorf("rewrite: no module matcher configured")
	}

	v := &visitor{
		res:       newResolver(bindings, opts.Matcher),
		removals:  newRemovals(),
		namespace: opts.Namespace,
	}
	v.statements(program.Statements)
	if v.err != nil {
		return withSource(v.err, program)
	}

	removed := removedDeclarations(v.removals.nodes(), bindings)
	v.removals.commit(program)

	if opts.Strict {
		if err := checkDangling(program, bindings, removed); err != nil {
			return withSource(err, program)
		}
	}
	return nil
}

// removedDeclarations returns the declarations introduced by the scheduled nodes.
func removedDeclarations(nodes []parser.Node, bindings Bindings) map[*scope.Declaration]bool {
	removed := make(map[*scope.Declaration]bool)
	add := func(id *parser.Identifier) {
		if decl, ok := bindings.Lookup(id); ok {
			removed[decl] = true
		}
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.ImportDeclaration:
			for _, spec := range n.Specifiers {
				add(spec.LocalName())
			}
		case *parser.VariableDeclarator:
			add(n.Name)
		}
	}
	return removed
}

// checkDangling reports the first identifier that still refers to a removed declaration.
func checkDangling(program *parser.Program, bindings Bindings, removed map[*scope.Declaration]bool) error {
	if len(removed) == 0 {
		return nil
	}
	var dangling *parser.Identifier
	parser.Inspect(program, func(n parser.Node) bool {
		if dangling != nil {
			return false
		}
		id, ok := n.(*parser.Identifier)
		if !ok {
			return true
		}
		if decl, ok := bindings.Lookup(id); ok && removed[decl] {
			dangling = id
		}
		return true
	})
	if dangling == nil {
		return nil
	}
	return rewriteError(dangling.Token, "'%s' still refers to a removed JSBI binding", dangling.Value)
}

// withSource attaches the program's source file to a RewriteError.
func withSource(err error, program *parser.Program) error {
	var rerr *errors.RewriteError
	if stderrors.As(err, &rerr) && rerr.Source == nil {
		rerr.Source = program.Source
	}
	return err
}
