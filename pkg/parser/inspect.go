package parser

// Inspect traverses an AST in depth-first order: it calls f(node); if f returns true, Inspect
// is called recursively for each of the non-nil children of node.
//
// Identifiers in property position (a.b, { b: 1 }, import/export clauses) are visited too;
// callers that care about references must look at the parent.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Inspect(s, f)
		}

	// Statements
	case *ImportDeclaration:
		for _, spec := range n.Specifiers {
			Inspect(spec, f)
		}
		if n.Source != nil {
			Inspect(n.Source, f)
		}
	case *ImportDefaultSpecifier:
		Inspect(n.Local, f)
	case *ImportNamedSpecifier:
		Inspect(n.Imported, f)
		if n.Local != n.Imported {
			Inspect(n.Local, f)
		}
	case *ImportNamespaceSpecifier:
		Inspect(n.Local, f)
	case *ExportNamedDeclaration:
		if n.Declaration != nil {
			Inspect(n.Declaration, f)
		}
		for _, spec := range n.Specifiers {
			Inspect(spec, f)
		}
		if n.Source != nil {
			Inspect(n.Source, f)
		}
	case *ExportSpecifier:
		Inspect(n.Local, f)
		if n.Exported != n.Local {
			Inspect(n.Exported, f)
		}
	case *ExportDefaultDeclaration:
		inspectExpr(n.Expression, f)
	case *VariableDeclaration:
		for _, d := range n.Declarators {
			Inspect(d, f)
		}
	case *VariableDeclarator:
		Inspect(n.Name, f)
		inspectExpr(n.Value, f)
	case *FunctionDeclaration:
		Inspect(n.Function, f)
	case *ExpressionStatement:
		inspectExpr(n.Expression, f)
	case *BlockStatement:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *IfStatement:
		inspectExpr(n.Condition, f)
		Inspect(n.Consequence, f)
		if n.Alternative != nil {
			Inspect(n.Alternative, f)
		}
	case *WhileStatement:
		inspectExpr(n.Condition, f)
		Inspect(n.Body, f)
	case *ForStatement:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
		inspectExpr(n.Condition, f)
		inspectExpr(n.Update, f)
		Inspect(n.Body, f)
	case *ReturnStatement:
		inspectExpr(n.ReturnValue, f)
	case *ThrowStatement:
		inspectExpr(n.Value, f)

	// Expressions
	case *ArrayLiteral:
		for _, el := range n.Elements {
			inspectExpr(el, f)
		}
	case *ObjectLiteral:
		for _, prop := range n.Properties {
			// A shorthand property's key and value are separate nodes with the same name.
			if !prop.Shorthand {
				inspectExpr(prop.Key, f)
			}
			inspectExpr(prop.Value, f)
		}
	case *FunctionLiteral:
		if n.Name != nil {
			Inspect(n.Name, f)
		}
		for _, param := range n.Parameters {
			Inspect(param, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *ArrowFunctionLiteral:
		for _, param := range n.Parameters {
			Inspect(param, f)
		}
		Inspect(n.Body, f)
	case *PrefixExpression:
		inspectExpr(n.Right, f)
	case *TypeofExpression:
		inspectExpr(n.Operand, f)
	case *UpdateExpression:
		inspectExpr(n.Argument, f)
	case *InfixExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *AssignmentExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Value, f)
	case *TernaryExpression:
		inspectExpr(n.Condition, f)
		inspectExpr(n.Consequence, f)
		inspectExpr(n.Alternative, f)
	case *CallExpression:
		inspectExpr(n.Function, f)
		for _, arg := range n.Arguments {
			inspectExpr(arg, f)
		}
	case *NewExpression:
		inspectExpr(n.Constructor, f)
		for _, arg := range n.Arguments {
			inspectExpr(arg, f)
		}
	case *MemberExpression:
		inspectExpr(n.Object, f)
		Inspect(n.Property, f)
	case *IndexExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Index, f)
	case *SpreadElement:
		inspectExpr(n.Argument, f)
	}
}

// inspectExpr visits an optional child expression.
func inspectExpr(x Expression, f func(Node) bool) {
	if x != nil {
		Inspect(x, f)
	}
}
