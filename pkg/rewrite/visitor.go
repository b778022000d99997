package rewrite

import (
	"jsbi2bigint/pkg/lexer"
	"jsbi2bigint/pkg/parser"
)

// visitor rewrites one program bottom-up. Every expression visit returns the expression
// that takes its place; children are rewritten before their parent is examined, and a
// replacement is not visited again.
//
// The first RewriteError stops all further rewriting.
type visitor struct {
	res       *resolver
	removals  *removals
	namespace string
	err       error
}

func (v *visitor) fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

func (v *visitor) statements(stmts []parser.Statement) {
	for _, stmt := range stmts {
		if v.err != nil {
			return
		}
		v.statement(stmt)
	}
}

func (v *visitor) statement(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.ImportDeclaration:
		v.importDeclaration(s)
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			v.statement(s.Declaration)
		}
	case *parser.ExportDefaultDeclaration:
		s.Expression = v.expr(s.Expression)
	case *parser.VariableDeclaration:
		for _, d := range s.Declarators {
			d.Value = v.expr(d.Value)
			v.declarator(d)
		}
	case *parser.FunctionDeclaration:
		v.function(s.Function)
	case *parser.ExpressionStatement:
		s.Expression = v.expr(s.Expression)
	case *parser.BlockStatement:
		v.statements(s.Statements)
	case *parser.IfStatement:
		s.Condition = v.expr(s.Condition)
		v.statement(s.Consequence)
		if s.Alternative != nil {
			v.statement(s.Alternative)
		}
	case *parser.WhileStatement:
		s.Condition = v.expr(s.Condition)
		v.statement(s.Body)
	case *parser.ForStatement:
		if s.Init != nil {
			v.statement(s.Init)
		}
		s.Condition = v.expr(s.Condition)
		s.Update = v.expr(s.Update)
		v.statement(s.Body)
	case *parser.ReturnStatement:
		s.ReturnValue = v.expr(s.ReturnValue)
	case *parser.ThrowStatement:
		s.Value = v.expr(s.Value)
	default:
		// break, continue and empty statements hold no expressions
	}
}

func (v *visitor) function(fn *parser.FunctionLiteral) {
	if fn.Body != nil {
		v.statements(fn.Body.Statements)
	}
}

// expr rewrites x's subexpressions, then x itself, and returns the result.
func (v *visitor) expr(x parser.Expression) parser.Expression {
	if x == nil || v.err != nil {
		return x
	}

	switch e := x.(type) {
	case *parser.ArrayLiteral:
		v.exprs(e.Elements)
	case *parser.ObjectLiteral:
		for _, prop := range e.Properties {
			if prop.Computed {
				prop.Key = v.expr(prop.Key)
			}
			if prop.Shorthand {
				continue // rewriting the value would change the key
			}
			prop.Value = v.expr(prop.Value)
		}
	case *parser.FunctionLiteral:
		v.function(e)
	case *parser.ArrowFunctionLiteral:
		switch body := e.Body.(type) {
		case *parser.BlockStatement:
			v.statements(body.Statements)
		case parser.Expression:
			e.Body = v.expr(body)
		}
	case *parser.PrefixExpression:
		e.Right = v.expr(e.Right)
	case *parser.TypeofExpression:
		e.Operand = v.expr(e.Operand)
	case *parser.UpdateExpression:
		e.Argument = v.expr(e.Argument)
	case *parser.InfixExpression:
		e.Left = v.expr(e.Left)
		e.Right = v.expr(e.Right)
		if e.Operator == "instanceof" {
			return v.instanceOf(e)
		}
	case *parser.AssignmentExpression:
		e.Left = v.expr(e.Left)
		e.Value = v.expr(e.Value)
	case *parser.TernaryExpression:
		e.Condition = v.expr(e.Condition)
		e.Consequence = v.expr(e.Consequence)
		e.Alternative = v.expr(e.Alternative)
	case *parser.CallExpression:
		e.Function = v.expr(e.Function)
		v.exprs(e.Arguments)
		return v.call(e)
	case *parser.NewExpression:
		e.Constructor = v.expr(e.Constructor)
		v.exprs(e.Arguments)
	case *parser.MemberExpression:
		e.Object = v.expr(e.Object)
	case *parser.IndexExpression:
		e.Left = v.expr(e.Left)
		e.Index = v.expr(e.Index)
	case *parser.SpreadElement:
		e.Argument = v.expr(e.Argument)
	default:
		// identifiers and literals
	}
	return x
}

func (v *visitor) exprs(list []parser.Expression) {
	for i, x := range list {
		list[i] = v.expr(x)
	}
}

// importDeclaration marks the default import of the polyfill as the namespace and
// schedules the whole declaration for removal.
func (v *visitor) importDeclaration(decl *parser.ImportDeclaration) {
	if decl.Source == nil || !v.res.matcher.Match(decl.Source.Value) {
		return
	}
	for _, spec := range decl.Specifiers {
		if _, ok := spec.(*parser.ImportDefaultSpecifier); !ok {
			continue
		}
		if d, ok := v.res.bindings.Lookup(spec.LocalName()); ok {
			v.res.mark(d, "")
		}
	}
	debugPrintf("visit: removing import of %q", decl.Source.Value)
	v.removals.schedule(decl)
}

// declarator handles `const x = <namespace>.member` and its aliases. The declarator is
// removed; uses of x are rewritten through the resolver.
func (v *visitor) declarator(d *parser.VariableDeclarator) {
	var (
		object   parser.Expression
		optional bool
		access   lexer.Token
	)
	switch init := d.Value.(type) {
	case *parser.MemberExpression:
		object, optional, access = init.Object, init.Optional, init.Token
	case *parser.IndexExpression:
		object, optional, access = init.Left, init.Optional, init.Token
	default:
		return
	}
	id, ok := object.(*parser.Identifier)
	if !ok {
		return
	}
	if _, ok := v.res.resolve(id); !ok {
		return
	}
	if optional {
		v.fail(rewriteError(access, "Optional chaining cannot be used on the JSBI namespace"))
		return
	}
	_, member, ok := memberAccess(d.Value)
	if !ok {
		v.fail(rewriteError(access, "Only .BigInt or ['BigInt'] allowed here"))
		return
	}
	decl, ok := v.res.bindings.Lookup(d.Name)
	if !ok {
		return
	}
	v.res.mark(decl, member)
	v.removals.schedule(d)
}

// call rewrites calls of namespace members and of aliases.
func (v *visitor) call(call *parser.CallExpression) parser.Expression {
	if v.err != nil {
		return call
	}

	var (
		name     string
		optional = call.Optional
		object   *parser.Identifier
	)
	switch callee := call.Function.(type) {
	case *parser.MemberExpression:
		id, ok := callee.Object.(*parser.Identifier)
		if !ok {
			return call
		}
		object, name = id, callee.Property.Value
		optional = optional || callee.Optional
	case *parser.IndexExpression:
		id, ok := callee.Left.(*parser.Identifier)
		if !ok {
			return call
		}
		if _, ok := v.res.resolve(id); !ok {
			return call
		}
		key, ok := callee.Index.(*parser.StringLiteral)
		if !ok {
			v.fail(rewriteError(callee.Token, "Only .BigInt or ['BigInt'] allowed here"))
			return call
		}
		object, name = id, key.Value
		optional = optional || callee.Optional
	case *parser.Identifier:
		alias, ok := v.res.resolve(callee)
		if !ok || alias == "" {
			return call
		}
		if optional {
			v.fail(rewriteError(call.Token, "Optional chaining cannot be used on the JSBI namespace"))
			return call
		}
		return v.synthesize(alias, call)
	default:
		return call
	}

	if _, ok := v.res.resolve(object); !ok {
		return call
	}
	if optional {
		v.fail(rewriteError(parser.StartToken(call), "Optional chaining cannot be used on the JSBI namespace"))
		return call
	}
	return v.synthesize(name, call)
}

func (v *visitor) synthesize(name string, call *parser.CallExpression) parser.Expression {
	replacement, err := synthesize(name, call.Arguments, call)
	if err != nil {
		v.fail(err)
		return call
	}
	debugPrintf("visit: %s -> %s", call, replacement)
	return replacement
}

// instanceOf rewrites `x instanceof JSBI` to a typeof check. Only the namespace binding
// itself qualifies, or an unbound identifier spelled like the namespace.
func (v *visitor) instanceOf(e *parser.InfixExpression) parser.Expression {
	right, ok := e.Right.(*parser.Identifier)
	if !ok {
		return e
	}
	if decl, bound := v.res.bindings.Lookup(right); bound {
		if !v.res.isNamespace(decl) {
			return e
		}
	} else if right.Value != v.namespace {
		return e
	}

	at := parser.StartToken(e)
	return &parser.InfixExpression{
		Token:    synthToken(e.Token, lexer.STRICT_EQ, "==="),
		Operator: "===",
		Left: &parser.TypeofExpression{
			Token:   synthToken(at, lexer.TYPEOF, "typeof"),
			Operand: e.Left,
		},
		Right: &parser.StringLiteral{
			Token: synthToken(right.Token, lexer.STRING, "bigint"),
			Value: "bigint",
			Quote: '"',
		},
	}
}
