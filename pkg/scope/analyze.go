package scope

import "jsbi2bigint/pkg/parser"

// environment is one lexical scope.
type environment struct {
	symbols  map[string]*Declaration
	outer    *environment
	function bool // function or program scope, target of var hoisting
}

func newEnclosedEnvironment(outer *environment, function bool) *environment {
	return &environment{symbols: make(map[string]*Declaration), outer: outer, function: function}
}

// resolve looks a name up through the enclosing environments.
func (e *environment) resolve(name string) (*Declaration, bool) {
	for env := e; env != nil; env = env.outer {
		if decl, ok := env.symbols[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

func (e *environment) functionScope() *environment {
	env := e
	for !env.function && env.outer != nil {
		env = env.outer
	}
	return env
}

// analyzer walks the program twice with the same traversal: once declaring, once resolving.
// Environments created in the first walk are looked up by node in the second.
type analyzer struct {
	table     *Table
	envs      map[parser.Node]*environment
	cur       *environment
	declaring bool
}

func (a *analyzer) enter(owner parser.Node, function bool) {
	if a.declaring {
		env := newEnclosedEnvironment(a.cur, function)
		a.envs[owner] = env
		a.cur = env
		return
	}
	a.cur = a.envs[owner]
}

func (a *analyzer) leave() {
	a.cur = a.cur.outer
}

// declare records a binding in env. A later declaration of the same name in the same
// environment (var redeclaration, duplicate function) shares the first declaration.
func (a *analyzer) declare(env *environment, d *Declaration) {
	if !a.declaring {
		return
	}
	t := a.table
	if existing, ok := env.symbols[d.Name]; ok {
		t.refs[d.Ident] = existing
		if d.Node != nil {
			t.byNode[d.Node] = existing
		}
		return
	}
	d.ID = DeclID(len(t.decls))
	t.decls = append(t.decls, d)
	env.symbols[d.Name] = d
	t.refs[d.Ident] = d
	if d.Node != nil {
		if _, taken := t.byNode[d.Node]; !taken {
			t.byNode[d.Node] = d
		}
	}
}

func (a *analyzer) reference(id *parser.Identifier) {
	if a.declaring || id == nil {
		return
	}
	if _, bound := a.table.refs[id]; bound {
		return // binding identifier
	}
	if decl, ok := a.cur.resolve(id.Value); ok {
		a.table.refs[id] = decl
	}
}

func (a *analyzer) walkProgram(program *parser.Program) {
	a.cur = nil
	a.enter(program, true)
	for _, stmt := range program.Statements {
		a.walkStatement(stmt)
	}
	a.leave()
}

func (a *analyzer) walkStatement(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.ImportDeclaration:
		for _, spec := range s.Specifiers {
			kind := ImportNamed
			switch spec.(type) {
			case *parser.ImportDefaultSpecifier:
				kind = ImportDefault
			case *parser.ImportNamespaceSpecifier:
				kind = ImportNamespace
			}
			local := spec.LocalName()
			// Imports are module scoped wherever they appear.
			a.declare(a.cur.functionScope(), &Declaration{
				Name: local.Value, Kind: kind, Ident: local, Node: spec, Import: s,
			})
		}
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			a.walkStatement(s.Declaration)
		}
		if s.Source == nil {
			for _, spec := range s.Specifiers {
				a.reference(spec.Local)
			}
		}
	case *parser.ExportDefaultDeclaration:
		a.walkExpression(s.Expression)
	case *parser.VariableDeclaration:
		a.walkVariableDeclaration(s)
	case *parser.FunctionDeclaration:
		fn := s.Function
		a.declare(a.cur, &Declaration{Name: fn.Name.Value, Kind: Function, Ident: fn.Name, Node: s})
		a.walkFunction(fn, false)
	case *parser.ExpressionStatement:
		a.walkExpression(s.Expression)
	case *parser.BlockStatement:
		a.enter(s, false)
		for _, inner := range s.Statements {
			a.walkStatement(inner)
		}
		a.leave()
	case *parser.IfStatement:
		a.walkExpression(s.Condition)
		a.walkStatement(s.Consequence)
		if s.Alternative != nil {
			a.walkStatement(s.Alternative)
		}
	case *parser.WhileStatement:
		a.walkExpression(s.Condition)
		a.walkStatement(s.Body)
	case *parser.ForStatement:
		a.enter(s, false)
		if s.Init != nil {
			a.walkStatement(s.Init)
		}
		a.walkExpression(s.Condition)
		a.walkExpression(s.Update)
		a.walkStatement(s.Body)
		a.leave()
	case *parser.ReturnStatement:
		a.walkExpression(s.ReturnValue)
	case *parser.ThrowStatement:
		a.walkExpression(s.Value)
	}
}

func (a *analyzer) walkVariableDeclaration(s *parser.VariableDeclaration) {
	for _, d := range s.Declarators {
		env := a.cur
		kind := Let
		switch s.Kind {
		case "var":
			kind = Var
			env = a.cur.functionScope()
		case "const":
			kind = Const
		}
		a.declare(env, &Declaration{Name: d.Name.Value, Kind: kind, Ident: d.Name, Node: d, Init: d.Value})
		a.walkExpression(d.Value)
	}
}

// walkFunction handles parameters and body in one function environment. A function
// expression's own name is visible only inside it.
func (a *analyzer) walkFunction(fn *parser.FunctionLiteral, bindName bool) {
	a.enter(fn, true)
	if bindName && fn.Name != nil {
		a.declare(a.cur, &Declaration{Name: fn.Name.Value, Kind: Function, Ident: fn.Name, Node: fn})
	}
	for _, param := range fn.Parameters {
		a.declare(a.cur, &Declaration{Name: param.Value, Kind: Param, Ident: param, Node: fn})
	}
	if fn.Body != nil {
		for _, stmt := range fn.Body.Statements {
			a.walkStatement(stmt)
		}
	}
	a.leave()
}

func (a *analyzer) walkExpression(expr parser.Expression) {
	switch x := expr.(type) {
	case nil:
		return
	case *parser.Identifier:
		a.reference(x)
	case *parser.ArrayLiteral:
		for _, el := range x.Elements {
			a.walkExpression(el)
		}
	case *parser.ObjectLiteral:
		for _, prop := range x.Properties {
			if prop.Computed {
				a.walkExpression(prop.Key)
			}
			a.walkExpression(prop.Value)
		}
	case *parser.FunctionLiteral:
		a.walkFunction(x, true)
	case *parser.ArrowFunctionLiteral:
		a.enter(x, true)
		for _, param := range x.Parameters {
			a.declare(a.cur, &Declaration{Name: param.Value, Kind: Param, Ident: param, Node: x})
		}
		switch body := x.Body.(type) {
		case *parser.BlockStatement:
			for _, stmt := range body.Statements {
				a.walkStatement(stmt)
			}
		case parser.Expression:
			a.walkExpression(body)
		}
		a.leave()
	case *parser.PrefixExpression:
		a.walkExpression(x.Right)
	case *parser.TypeofExpression:
		a.walkExpression(x.Operand)
	case *parser.UpdateExpression:
		a.walkExpression(x.Argument)
	case *parser.InfixExpression:
		a.walkExpression(x.Left)
		a.walkExpression(x.Right)
	case *parser.AssignmentExpression:
		a.walkExpression(x.Left)
		a.walkExpression(x.Value)
	case *parser.TernaryExpression:
		a.walkExpression(x.Condition)
		a.walkExpression(x.Consequence)
		a.walkExpression(x.Alternative)
	case *parser.CallExpression:
		a.walkExpression(x.Function)
		for _, arg := range x.Arguments {
			a.walkExpression(arg)
		}
	case *parser.NewExpression:
		a.walkExpression(x.Constructor)
		for _, arg := range x.Arguments {
			a.walkExpression(arg)
		}
	case *parser.MemberExpression:
		a.walkExpression(x.Object) // the property name is not a reference
	case *parser.IndexExpression:
		a.walkExpression(x.Left)
		a.walkExpression(x.Index)
	case *parser.SpreadElement:
		a.walkExpression(x.Argument)
	}
}
