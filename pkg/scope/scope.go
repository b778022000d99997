// Package scope builds the lexical binding table of one compilation unit.
//
// Analyze runs before any rewriting and records every declaration together with the
// initializer it had at that moment, so later tree mutations never change what a
// declaration was.
package scope

import (
	"fmt"

	"jsbi2bigint/pkg/parser"
)

// DeclID identifies a declaration within one Table.
type DeclID int

// DeclKind classifies how a name was introduced.
type DeclKind int

const (
	ImportDefault DeclKind = iota
	ImportNamed
	ImportNamespace
	Var
	Let
	Const
	Function
	Param
)

var declKindNames = [...]string{
	ImportDefault:   "import-default",
	ImportNamed:     "import-named",
	ImportNamespace: "import-namespace",
	Var:             "var",
	Let:             "let",
	Const:           "const",
	Function:        "function",
	Param:           "param",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return fmt.Sprintf("DeclKind(%d)", int(k))
}

// Declaration is the analysis-time record of one binding.
type Declaration struct {
	ID    DeclID
	Name  string
	Kind  DeclKind
	Ident *parser.Identifier // the binding identifier

	// Node is the declaring node: the import specifier, the *parser.VariableDeclarator,
	// the *parser.FunctionDeclaration, or the function owning a parameter.
	Node parser.Node

	// Import is the owning declaration for import specifiers, nil otherwise.
	Import *parser.ImportDeclaration

	// Init is the declarator's initializer as parsed, nil for other kinds.
	Init parser.Expression
}

func (d *Declaration) String() string {
	return fmt.Sprintf("%s %s#%d", d.Kind, d.Name, d.ID)
}

// IsImport reports whether the declaration was introduced by an import specifier.
func (d *Declaration) IsImport() bool {
	return d.Kind == ImportDefault || d.Kind == ImportNamed || d.Kind == ImportNamespace
}

// Table maps identifiers of one program to the declarations they denote.
type Table struct {
	decls  []*Declaration
	refs   map[*parser.Identifier]*Declaration
	byNode map[parser.Node]*Declaration
}

// Lookup returns the declaration an identifier refers to. Binding identifiers resolve to
// their own declaration. Unbound names and property names report false.
func (t *Table) Lookup(id *parser.Identifier) (*Declaration, bool) {
	decl, ok := t.refs[id]
	return decl, ok
}

// DeclarationOf returns the declaration introduced by a declaring node such as an import
// specifier or a variable declarator.
func (t *Table) DeclarationOf(n parser.Node) (*Declaration, bool) {
	decl, ok := t.byNode[n]
	return decl, ok
}

// Declarations returns every declaration in source order.
func (t *Table) Declarations() []*Declaration {
	return t.decls
}

// Analyze builds the binding table for program.
//
// Declarations are collected for the whole program first and references are resolved in a
// second walk, so uses may precede hoisted declarations. var and function parameters belong
// to the nearest function; let, const and function declarations belong to their block.
func Analyze(program *parser.Program) *Table {
	t := &Table{
		refs:   make(map[*parser.Identifier]*Declaration),
		byNode: make(map[parser.Node]*Declaration),
	}
	a := &analyzer{table: t, envs: make(map[parser.Node]*environment)}

	a.declaring = true
	a.walkProgram(program)

	a.declaring = false
	a.walkProgram(program)

	return t
}
