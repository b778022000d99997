package rewrite

import (
	"jsbi2bigint/pkg/parser"
	"jsbi2bigint/pkg/scope"
)

// resolver answers which namespace member an identifier stands for.
//
// The alias of a declaration is "" for the namespace itself and the member name for a
// variable initialized from a member of the namespace or of another alias. Results are
// memoized per declaration and never change once set.
type resolver struct {
	bindings Bindings
	matcher  *ModuleMatcher
	aliases  map[scope.DeclID]string
	active   map[scope.DeclID]bool // declarations being resolved, for var cycles
}

func newResolver(bindings Bindings, matcher *ModuleMatcher) *resolver {
	return &resolver{
		bindings: bindings,
		matcher:  matcher,
		aliases:  make(map[scope.DeclID]string),
		active:   make(map[scope.DeclID]bool),
	}
}

// resolve returns the alias id is bound to, or false when id does not denote the
// namespace or an alias of it.
func (r *resolver) resolve(id *parser.Identifier) (string, bool) {
	decl, ok := r.bindings.Lookup(id)
	if !ok {
		return "", false
	}
	return r.resolveDecl(decl)
}

func (r *resolver) resolveDecl(decl *scope.Declaration) (string, bool) {
	if alias, ok := r.aliases[decl.ID]; ok {
		return alias, true
	}
	if r.isNamespaceImport(decl) {
		// Imports are hoisted: uses can be visited before the import statement.
		r.mark(decl, "")
		return "", true
	}

	switch decl.Kind {
	case scope.Var, scope.Let, scope.Const:
	default:
		return "", false
	}
	object, member, ok := memberAccess(decl.Init)
	if !ok || r.active[decl.ID] {
		return "", false
	}

	r.active[decl.ID] = true
	defer delete(r.active, decl.ID)

	if _, ok := r.resolve(object); !ok {
		return "", false
	}
	debugPrintf("resolve: %s aliases %q", decl, member)
	r.mark(decl, member)
	return member, true
}

// isNamespaceImport reports whether decl is the default import of a recognized module.
func (r *resolver) isNamespaceImport(decl *scope.Declaration) bool {
	return decl.Kind == scope.ImportDefault && decl.Import != nil &&
		decl.Import.Source != nil && r.matcher.Match(decl.Import.Source.Value)
}

// isNamespace reports whether decl is the namespace binding itself, without following aliases.
func (r *resolver) isNamespace(decl *scope.Declaration) bool {
	if alias, ok := r.aliases[decl.ID]; ok {
		return alias == ""
	}
	if r.isNamespaceImport(decl) {
		r.mark(decl, "")
		return true
	}
	return false
}

// mark attaches an alias to decl. The first alias wins.
func (r *resolver) mark(decl *scope.Declaration, alias string) {
	if _, ok := r.aliases[decl.ID]; !ok {
		r.aliases[decl.ID] = alias
	}
}

// memberAccess splits `ident.member` and `ident['member']` into their parts. Optional
// and computed non-literal forms do not qualify.
func memberAccess(x parser.Expression) (*parser.Identifier, string, bool) {
	switch m := x.(type) {
	case *parser.MemberExpression:
		object, ok := m.Object.(*parser.Identifier)
		if !ok || m.Optional {
			return nil, "", false
		}
		return object, m.Property.Value, true
	case *parser.IndexExpression:
		object, ok := m.Left.(*parser.Identifier)
		if !ok || m.Optional {
			return nil, "", false
		}
		key, ok := m.Index.(*parser.StringLiteral)
		if !ok {
			return nil, "", false
		}
		return object, key.Value, true
	}
	return nil, "", false
}
